// Package disputes implements §4.6: verdict tallying into ψ's
// good/bad/wonky sets, culprit/fault processing into ψ.punish, and the
// resulting invalidation of any core whose pending report is now judged
// bad.
//
// Grounded on beacon-chain/slasher/process_slashings.go's
// verify-then-record idiom (each slashing-like report is independently
// signature-checked before it is allowed to mutate shared state) and
// beacon-chain/core/blocks/validity_conditions.go's per-rule early
// return.
package disputes

import (
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "disputes")

// Vote is one validator's ed25519 vote within a verdict.
type Vote struct {
	ValidatorIndex state.ValidatorIndex
	Valid          bool
	Signature      state.Ed25519Signature
}

// Verdict judges a single work-report hash.
type Verdict struct {
	Target state.Hash
	Age    uint32 // epoch the vote was cast in, for κ-vs-λ selection
	Votes  []Vote
}

// Culprit names a validator who guaranteed a report that a verdict this
// block (or a prior block) judged bad.
type Culprit struct {
	Target    state.Hash
	Key       state.Ed25519Key
	Signature state.Ed25519Signature
}

// Fault names a validator whose verdict vote dissented from a report a
// verdict this block (or a prior block) judged good.
type Fault struct {
	Target    state.Hash
	Key       state.Ed25519Key
	Vote      bool // the dissenting vote cast
	Signature state.Ed25519Signature
}

// Extrinsic bundles the three dispute input kinds named in §4.6.
type Extrinsic struct {
	Verdicts []Verdict
	Culprits []Culprit
	Faults   []Fault
}

// Outcome records which cores had their ρ entry cleared by Process
// (§4.3 step 3); the driver only reports their count.
type Outcome struct {
	InvalidatedCores []state.CoreIndex
}

// Process applies ex (§4.6) to tr, producing ψ.good/bad/wonky/punish and
// clearing ρ for any core whose report now lands in ψ.bad_set.
// currentEpochAge is the age value of verdicts considered to vote
// against the *current* rotation (κ); any other age is checked against
// the previous rotation (λ).
func Process(
	tr *overlay.Transition,
	ex Extrinsic,
	currentEpochAge uint32,
	superMajority int,
	verifier crypto.Ed25519Verifier,
) (Outcome, error) {
	psi := tr.EnsurePsi()

	newlyBad := map[state.Hash]struct{}{}
	newlyGood := map[state.Hash]struct{}{}

	for _, v := range ex.Verdicts {
		if err := verifyVerdict(tr, v, currentEpochAge, superMajority, verifier); err != nil {
			return Outcome{}, err
		}
		if _, already := psi.Good[v.Target]; already {
			return Outcome{}, ErrVerdictTargetAlreadyJudged
		}
		if _, already := psi.Bad[v.Target]; already {
			return Outcome{}, ErrVerdictTargetAlreadyJudged
		}
		if _, already := psi.Wonky[v.Target]; already {
			return Outcome{}, ErrVerdictTargetAlreadyJudged
		}

		validCount := 0
		for _, vote := range v.Votes {
			if vote.Valid {
				validCount++
			}
		}
		switch {
		case validCount == len(v.Votes):
			psi.Good[v.Target] = struct{}{}
			newlyGood[v.Target] = struct{}{}
		case validCount == 0:
			psi.Bad[v.Target] = struct{}{}
			newlyBad[v.Target] = struct{}{}
		default:
			psi.Wonky[v.Target] = struct{}{}
		}
	}

	for _, c := range ex.Culprits {
		if _, ok := psi.Bad[c.Target]; !ok {
			return Outcome{}, ErrCulpritNotForBadVerdict
		}
		if _, already := psi.Punish[c.Key]; already {
			return Outcome{}, ErrCulpritAlreadyPunished
		}
		if !verifier.Verify(c.Key, crypto.AvailabilityContext(c.Target), c.Signature) {
			return Outcome{}, ErrCulpritBadSignature
		}
		psi.Punish[c.Key] = struct{}{}
	}

	for _, f := range ex.Faults {
		if _, ok := psi.Good[f.Target]; !ok {
			return Outcome{}, ErrFaultNotForGoodVerdict
		}
		if _, already := psi.Punish[f.Key]; already {
			return Outcome{}, ErrFaultAlreadyPunished
		}
		if f.Vote {
			return Outcome{}, ErrFaultVoteNotInverted
		}
		if !verifier.Verify(f.Key, crypto.ValidatorVoteContext(f.Vote, f.Target), f.Signature) {
			return Outcome{}, ErrFaultBadSignature
		}
		psi.Punish[f.Key] = struct{}{}
	}

	var outcome Outcome
	if len(newlyBad) > 0 {
		rho := tr.Rho()
		for c, pending := range rho {
			if pending == nil {
				continue
			}
			if _, bad := newlyBad[pending.Report.PackageHash]; bad {
				outcome.InvalidatedCores = append(outcome.InvalidatedCores, state.CoreIndex(c))
			}
		}
		if len(outcome.InvalidatedCores) > 0 {
			rhoPrime := tr.EnsureRho()
			for _, c := range outcome.InvalidatedCores {
				(*rhoPrime)[c] = nil
			}
		}
	}

	log.WithField("bad", len(newlyBad)).WithField("good", len(newlyGood)).Debug("disputes: processed")
	return outcome, nil
}

func verifyVerdict(tr *overlay.Transition, v Verdict, currentEpochAge uint32, superMajority int, verifier crypto.Ed25519Verifier) error {
	if len(v.Votes) < superMajority {
		return ErrVerdictVoteCountMismatch
	}
	set := tr.Kappa()
	if v.Age != currentEpochAge {
		set = tr.Lambda()
	}
	for i, vote := range v.Votes {
		if int(vote.ValidatorIndex) >= len(set) {
			return ErrVerdictBadSignature
		}
		if i > 0 && v.Votes[i-1].ValidatorIndex >= vote.ValidatorIndex {
			return ErrVerdictVotesNotOrdered
		}
		key := set[vote.ValidatorIndex].Ed25519
		if !verifier.Verify(key, crypto.ValidatorVoteContext(vote.Valid, v.Target), vote.Signature) {
			return ErrVerdictBadSignature
		}
	}
	return nil
}
