// Package safrole implements the epoch-rotation and slot-sealing pipeline
// named in spec §4.4: entropy buffer update, ticket accumulator, ring-root
// derivation, and the tickets/fallback slot-sealer series.
//
// Grounded on beacon-chain/core/helpers/randao.go's seed/mix rotation idiom
// and beacon-chain/core/epoch/epoch_processing.go's epoch-boundary
// registry-rotation structure, adapted from eth2's randao mixes to JAM's
// entropy buffer and validator-set rotation.
package safrole

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "safrole")

// TicketEnvelope is one entry of the tickets extrinsic: a ring-VRF proof of
// candidacy plus its declared attempt index.
type TicketEnvelope struct {
	Attempt   uint8
	Signature state.BandersnatchRingSignature
}

// Result carries the markers the header validator must see emitted.
type Result struct {
	NewEpoch       bool
	EpochMarker    *EpochMarker
	TicketsMarker  []state.Hash // outside-in ordered, only when emitted
}

// EpochMarker is emitted exactly when a new epoch begins.
type EpochMarker struct {
	Entropy    state.Hash
	Validators []state.BandersnatchKey
}

// Process runs the Safrole algorithm (§4.4) as a pure function of tr's
// current base/prime state, advancing τ, η, and the γ_* sub-components.
// blockEntropy is Y(H_v), the block's own entropy-source contribution.
// On any validation failure tr is left with no additional primes ensured
// beyond what earlier, successful steps already touched; the driver is
// responsible for discarding the whole Transition on error (§4.4 "Failure
// mode").
func Process(
	tr *overlay.Transition,
	slot state.TimeSlot,
	blockEntropy state.Hash,
	tickets []TicketEnvelope,
	cfg *params.Config,
	ring crypto.RingVRFVerifier,
) (Result, error) {
	if uint64(slot) <= uint64(tr.Base().Tau) {
		return Result{}, ErrBadSlot
	}
	*tr.EnsureTau() = slot

	// Step 2-5: validate the ticket extrinsic against the PRE-rotation
	// entropy/ring-root. The rotation (step 6) only happens after the
	// extrinsic is proven valid.
	if uint32(len(tickets)) > cfg.MaxTicketsPerExtrinsic {
		return Result{}, ErrTooManyTicketsInExtrinsic
	}

	epochSlot := uint32(uint64(slot) % uint64(cfg.EpochLength))
	if epochSlot >= cfg.TicketSubmissionEndOffset && len(tickets) > 0 {
		return Result{}, ErrUnexpectedTicket
	}

	eta := tr.Base().Eta
	gammaZ := tr.Base().GammaZ
	validatorCount := len(tr.Base().Kappa)

	verified := make([]state.Ticket, len(tickets))
	for i, env := range tickets {
		if env.Attempt >= cfg.MaxTicketAttempts {
			return Result{}, ErrBadTicketAttempt
		}
		input := append(append([]byte{}, []byte("jam_ticket_seal")...), eta[2][:]...)
		input = append(input, env.Attempt)
		output, err := ring.Verify(gammaZ, validatorCount, input, nil, env.Signature)
		if err != nil {
			return Result{}, ErrBadTicketProof
		}
		verified[i] = state.Ticket{ID: state.Hash(output), Attempt: env.Attempt, Envelope: env.Signature}
	}
	for i := 1; i < len(verified); i++ {
		if !lessHash(verified[i-1].ID, verified[i].ID) {
			return Result{}, ErrBadTicketOrder
		}
	}
	existing := tr.Base().GammaA
	for _, nt := range verified {
		for _, ot := range existing {
			if nt.ID == ot.ID {
				return Result{}, ErrDuplicateTicket
			}
		}
	}

	timeInfo := tr.Time
	result := Result{NewEpoch: timeInfo.IsNewEpoch()}

	if result.NewEpoch {
		// Step 6a: shift entropy.
		newEta := [4]state.Hash{eta[0], eta[0], eta[1], eta[2]}
		*tr.EnsureEta() = newEta

		// Step 6b: rotate validator sets, zeroing offenders by Ed25519
		// membership in ψ.punish.
		punish := tr.Base().Psi.Punish
		lambda := tr.Base().Kappa.Clone()
		kappa := tr.Base().GammaK.Clone()
		gammaK := zeroOffenders(tr.Base().Iota.Clone(), punish)
		*tr.EnsureLambda() = lambda
		*tr.EnsureKappa() = kappa
		*tr.EnsureGammaK() = gammaK

		// Step 6c: ring root from the new γ_k.
		keys := make([][crypto.BandersnatchKeySize]byte, len(gammaK))
		for i, v := range gammaK {
			keys[i] = v.Bandersnatch
		}
		*tr.EnsureGammaZ() = state.BandersnatchVrfRoot(crypto.RingRoot(keys))

		// Step 6d: γ_s, tickets if the handover conditions hold, else
		// fallback keys derived from η2 by indexed hashing into κ.
		useTickets := timeInfo.PriorWasInTicketSubmissionTail() &&
			timeInfo.IsConsecutiveEpoch() &&
			uint32(len(existing)) == cfg.EpochLength
		var series state.SealerSeries
		if useTickets {
			series = state.SealerSeries{IsTickets: true, Tickets: OutsideIn(existing)}
		} else {
			series = fallbackSeries(newEta[2], kappa, cfg.EpochLength)
		}
		*tr.EnsureGammaS() = series

		// Step 6e: clear the ticket accumulator.
		*tr.EnsureGammaA() = nil

		result.EpochMarker = &EpochMarker{Entropy: newEta[0]}
		for _, v := range kappa {
			result.EpochMarker.Validators = append(result.EpochMarker.Validators, v.Bandersnatch)
		}
	}

	// Step 7: η0 ← H(η0 ‖ Y(H_v)).
	curEta := tr.Eta()
	curEta[0] = state.Hash(hashutil.HashConcat(curEta[0][:], blockEntropy[:]))
	*tr.EnsureEta() = curEta

	// Step 8: merge verified tickets into γ_a, id-sorted, truncated at E.
	if epochSlot < cfg.TicketSubmissionEndOffset {
		merged := append(append([]state.Ticket(nil), tr.GammaA()...), verified...)
		sort.Slice(merged, func(i, j int) bool { return lessHash(merged[i].ID, merged[j].ID) })
		if uint32(len(merged)) > cfg.EpochLength {
			merged = merged[:cfg.EpochLength]
		}
		*tr.EnsureGammaA() = merged
	}

	// Step 9: winning-tickets marker, same-epoch crossing of Y with a full
	// accumulator (strict equality with E, per SPEC_FULL.md's Open Question
	// resolution).
	if !result.NewEpoch && timeInfo.DidCrossTicketSubmissionEnd() && uint32(len(tr.GammaA())) == cfg.EpochLength {
		result.TicketsMarker = OutsideIn(ticketIDs(tr.GammaA()))
	}

	log.WithField("slot", slot).WithField("newEpoch", result.NewEpoch).Debug("safrole: processed")
	return result, nil
}

func lessHash(a, b state.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func ticketIDs(ts []state.Ticket) []state.Hash {
	out := make([]state.Hash, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func zeroOffenders(vs state.ValidatorSet, punish map[state.Ed25519Key]struct{}) state.ValidatorSet {
	out := make(state.ValidatorSet, len(vs))
	for i, v := range vs {
		if _, bad := punish[v.Ed25519]; bad {
			out[i] = state.Validator{}
			continue
		}
		out[i] = v
	}
	return out
}

// fallbackSeries derives E fallback sealer keys from η2 by indexed hashing
// into κ, per §4.4 step 6d.
func fallbackSeries(eta2 state.Hash, kappa state.ValidatorSet, epochLength uint32) state.SealerSeries {
	out := make([]state.BandersnatchKey, epochLength)
	for i := uint32(0); i < epochLength; i++ {
		h := hashutil.HashConcat([]byte("jam_fallback_seal_index"), eta2[:], []byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)})
		idx := 0
		if len(kappa) > 0 {
			var v uint64
			for _, b := range h[:8] {
				v = v<<8 | uint64(b)
			}
			idx = int(v % uint64(len(kappa)))
		}
		out[i] = kappa[idx].Bandersnatch
	}
	return state.SealerSeries{IsTickets: false, Fallback: out}
}
