// Package transition implements the §4.12 STF driver: the deterministic
// ten-step pipeline that turns one block plus a pre-state into a committed
// post-state, using the delta overlay's copy-on-write guarantee so any
// failing step discards every prime without touching base.
//
// Grounded on beacon-chain/core/state/state_transition.go's
// ExecuteStateTransition/ProcessBlock orchestration: a fixed call sequence
// through each sub-package, logrus field logging per stage, and
// opencensus span wrapping around the whole transition.
package transition

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jamzig/jamzig-sub002/accumulation"
	"github.com/jamzig/jamzig-sub002/assurances"
	"github.com/jamzig/jamzig-sub002/authorizations"
	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/disputes"
	"github.com/jamzig/jamzig-sub002/header"
	"github.com/jamzig/jamzig-sub002/history"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/reports"
	"github.com/jamzig/jamzig-sub002/safrole"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "transition")

// Block bundles a block's header with four extrinsics: tickets, disputes,
// guarantees and assurances. It carries no preimages extrinsic, so the
// pipeline processes no preimages.
type Block struct {
	Header         header.Header
	ExtrinsicBytes []byte // canonical encoding of the combined extrinsic, for H.extrinsic_hash
	Tickets        []safrole.TicketEnvelope
	Disputes       disputes.Extrinsic
	Guarantees     []reports.Guarantee
	Assurances     []assurances.Assurance
}

// Verifiers bundles the cryptographic and PVM oracles the pipeline's
// sub-steps call through; production wiring supplies real Bandersnatch/
// ring-VRF/PVM backends, tests supply the package's reference/stub
// implementations.
type Verifiers struct {
	Ed25519 crypto.Ed25519Verifier
	VRF     crypto.VRFVerifier
	Ring    crypto.RingVRFVerifier
	PVM     accumulation.PVM
}

// Result carries the committed post-state plus the header-hash/state-root
// pair the next block's Block.Header must reference.
type Result struct {
	State      *state.State
	HeaderHash state.Hash
	StateRoot  state.Hash
}

// Process runs the full §4.12 pipeline over base and blk, returning the
// committed post-state or the first validation error encountered. base is
// never mutated on error (the overlay's copy-on-write guarantee); on
// success base itself is mutated in place via MergePrimeOntoBase and
// returned as Result.State.
func Process(ctx context.Context, base *state.State, parentHeaderHash state.Hash, blk *Block, cfg *params.Config, v Verifiers) (Result, error) {
	_, span := trace.StartSpan(ctx, "transition.Process")
	defer span.End()

	t := overlay.Time{
		ParentSlot:  base.Tau,
		CurrentSlot: blk.Header.Slot,
		EpochLength: cfg.EpochLength,
		TicketEnd:   cfg.TicketSubmissionEndOffset,
		Rotation:    cfg.RotationPeriod,
	}
	tr := overlay.New(base, t)

	// §4.12 step 2's entropy input, Y(H_v), is the VRF output of the
	// entropy-source signature against whichever validator set this slot's
	// author belongs to. That set is the NEW κ (γ_k) if this block starts a
	// new epoch, since the new epoch's validator identities are already
	// active for its first slot — determined here from Base() alone so it
	// can be computed before Safrole has run.
	authorSet := base.Kappa
	if t.IsNewEpoch() {
		authorSet = base.GammaK
	}
	if int(blk.Header.AuthorIndex) >= len(authorSet) {
		return Result{}, errors.Wrap(header.ErrInvalidAuthorIndex, "header: author index out of range")
	}
	author := authorSet[blk.Header.AuthorIndex]
	entropyInput := append(append([]byte{}, []byte("jam_entropy")...), blk.Header.Seal[:]...)
	blockEntropy, _ := v.VRF.Verify(author.Bandersnatch, entropyInput, nil, blk.Header.VrfSignature)

	safroleResult, err := safrole.Process(tr, blk.Header.Slot, blockEntropy, blk.Tickets, cfg, v.Ring)
	if err != nil {
		return Result{}, errors.Wrapf(err, "safrole: slot %d", blk.Header.Slot)
	}

	if err := header.ValidateStructure(tr, &blk.Header, parentHeaderHash, blk.ExtrinsicBytes, safroleResult); err != nil {
		return Result{}, errors.Wrap(err, "header: structure validation failed")
	}

	currentEpochAge := uint32(uint64(blk.Header.Slot) / uint64(cfg.EpochLength))
	disputesOutcome, err := disputes.Process(tr, blk.Disputes, currentEpochAge, int(cfg.SuperMajority()), v.Ed25519)
	if err != nil {
		return Result{}, errors.Wrap(err, "disputes: extrinsic processing failed")
	}

	if _, err := reports.Process(tr, blk.Guarantees, cfg, v.Ed25519); err != nil {
		return Result{}, errors.Wrap(err, "reports: guarantees processing failed")
	}

	assuranceOutcome, err := assurances.Process(tr, blk.Assurances, parentHeaderHash, cfg, v.Ed25519)
	if err != nil {
		return Result{}, errors.Wrap(err, "assurances: extrinsic processing failed")
	}

	var availableHashes []state.Hash
	for _, r := range assuranceOutcome.AvailableReports {
		availableHashes = append(availableHashes, r.PackageHash)
	}

	if _, err := accumulation.Process(tr, assuranceOutcome.AvailableReports, safroleResult.NewEpoch, cfg, v.PVM); err != nil {
		return Result{}, errors.Wrapf(err, "accumulation: slot %d", blk.Header.Slot)
	}

	var used []authorizations.Used
	for _, g := range blk.Guarantees {
		used = append(used, authorizations.Used{Core: g.CoreIndex, Hash: g.Report.AuthorizerHash})
	}
	authorizations.Process(tr, used, cfg)

	headerHash := header.Hash(&blk.Header)
	history.Process(tr, headerHash, state.Hash(tr.Belt().SuperPeak()), availableHashes, blk.Header.ParentStateRoot, cfg)

	if err := header.ValidateSeal(tr, &blk.Header, safroleResult.NewEpoch, v.VRF); err != nil {
		return Result{}, errors.Wrap(err, "header: seal validation failed")
	}

	tr.MergePrimeOntoBase()
	stateRoot := base.StateRoot()

	log.WithFields(logrus.Fields{
		"slot":              blk.Header.Slot,
		"new_epoch":         safroleResult.NewEpoch,
		"invalidated_cores": len(disputesOutcome.InvalidatedCores),
		"available_reports": len(availableHashes),
	}).Info("transition: committed")

	return Result{State: base, HeaderHash: headerHash, StateRoot: stateRoot}, nil
}

// ForkCandidate is one competing block proposed against the same parent.
type ForkCandidate struct {
	ParentHeaderHash state.Hash
	Block            *Block
}

// ProcessForks evaluates every candidate independently against its own
// clone of base, bounded to GOMAXPROCS concurrent evaluations, and returns
// one Result (or error) per candidate in input order. No candidate's
// effects reach base itself — each runs against state.Clone(), so the
// caller picks whichever candidate wins fork-choice and adopts its
// Result.State as the new canonical base.
//
// Grounded on the teacher's rpc/validator/sync_committee.go pattern of
// fanning independent per-item work out over errgroup.WithContext, bounded
// here to runtime.GOMAXPROCS(0) concurrent evaluations via a counting
// semaphore since the pinned errgroup version predates Group.SetLimit.
func ProcessForks(ctx context.Context, base *state.State, candidates []ForkCandidate, cfg *params.Config, v Verifiers) ([]Result, []error) {
	results := make([]Result, len(candidates))
	errs := make([]error, len(candidates))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			clone := base.Clone()
			res, err := Process(ctx, clone, c.ParentHeaderHash, c.Block, cfg, v)
			results[i], errs[i] = res, err
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}
