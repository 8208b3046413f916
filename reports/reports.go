// Package reports implements §4.7: per-core guarantee validation,
// rotation-aware guarantor→core assignment, and the ρ mutation that
// records a newly-reported work-report as pending availability.
//
// Grounded on beacon-chain/core/blocks/attestation.go-style per-item
// validation (each guarantee is checked independently against a shared
// pre-state before any of them mutate it) and
// beacon-chain/core/helpers/committee.go's shuffled-committee-assignment
// idiom, adapted to guarantor/core rotation via rotation.go.
package reports

import (
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "reports")

// GuarantorSignature is one guarantor's availability attestation over a
// work-report.
type GuarantorSignature struct {
	ValidatorIndex state.ValidatorIndex
	Signature      state.Ed25519Signature
}

// Guarantee is one core's reported work-report plus its guarantor
// signatures, §4.7.
type Guarantee struct {
	CoreIndex  state.CoreIndex
	Report     state.WorkReport
	Slot       state.TimeSlot
	Signatures []GuarantorSignature
}

var globalAssignments = newAssignmentCache()

// Process validates and applies guarantees against tr, mutating ρ for
// every core with a successful guarantee. Validation is all-or-nothing
// across the batch: the first failing rule aborts before any ρ mutation.
func Process(
	tr *overlay.Transition,
	guarantees []Guarantee,
	cfg *params.Config,
	verifier crypto.Ed25519Verifier,
) ([]state.Ed25519Key, error) {
	if err := checkCoreOrdering(guarantees, cfg); err != nil {
		return nil, err
	}

	recentHashes, recentReports := recentHistoryIndex(tr.Beta())
	batchHashes := map[state.Hash]struct{}{}

	var reporters []state.Ed25519Key
	for _, g := range guarantees {
		if err := checkShape(&g, cfg); err != nil {
			return nil, err
		}
		if err := checkTiming(tr, &g, cfg); err != nil {
			return nil, err
		}
		if err := checkAnchor(tr.Beta(), &g); err != nil {
			return nil, err
		}
		signers, err := checkSignatures(tr, &g, cfg, verifier)
		if err != nil {
			return nil, err
		}
		if err := checkResults(tr, &g); err != nil {
			return nil, err
		}
		if err := checkDependencies(recentHashes, &g); err != nil {
			return nil, err
		}
		if err := checkCoreAvailability(tr, &g, cfg); err != nil {
			return nil, err
		}
		if err := checkDuplicatePackage(recentReports, batchHashes, &g); err != nil {
			return nil, err
		}
		if err := checkAuthorizer(tr, &g); err != nil {
			return nil, err
		}

		batchHashes[g.Report.PackageHash] = struct{}{}
		reporters = append(reporters, signers...)
	}

	rho := tr.EnsureRho()
	pi := tr.EnsurePi()
	for _, g := range guarantees {
		cp := cloneReport(g.Report)
		(*rho)[g.CoreIndex] = &state.PendingReport{Report: cp, Timeout: tr.Tau()}
		if int(g.CoreIndex) < len(pi.Cores) {
			pi.Cores[g.CoreIndex].Bundles++
		}
		for _, sig := range g.Signatures {
			growValidatorStats(pi, int(sig.ValidatorIndex))
			pi.CurrentValidators[sig.ValidatorIndex].Guarantees++
		}
	}

	log.WithField("count", len(guarantees)).Debug("reports: processed")
	return reporters, nil
}

func growValidatorStats(pi *state.Statistics, idx int) {
	for len(pi.CurrentValidators) <= idx {
		pi.CurrentValidators = append(pi.CurrentValidators, state.ValidatorStats{})
	}
}

func cloneReport(r state.WorkReport) state.WorkReport {
	cp := r
	cp.AuthOutput = append([]byte(nil), r.AuthOutput...)
	cp.Prerequisites = append([]state.Hash(nil), r.Prerequisites...)
	cp.SegmentRootLookup = append([]state.Hash(nil), r.SegmentRootLookup...)
	cp.Results = append([]state.WorkResult(nil), r.Results...)
	for i := range cp.Results {
		cp.Results[i].Output = append([]byte(nil), r.Results[i].Output...)
	}
	return cp
}

func checkCoreOrdering(guarantees []Guarantee, cfg *params.Config) error {
	for i, g := range guarantees {
		if uint16(g.CoreIndex) >= cfg.CoreCount {
			return ErrBadCoreIndex
		}
		if i > 0 && guarantees[i-1].CoreIndex >= g.CoreIndex {
			return ErrCoresNotIncreasing
		}
	}
	return nil
}

func checkShape(g *Guarantee, cfg *params.Config) error {
	size := uint64(len(g.Report.AuthOutput))
	for _, res := range g.Report.Results {
		size += uint64(len(res.Output))
	}
	if size > cfg.MaxWorkReportSize {
		return ErrWorkReportTooBig
	}

	var gasSum state.Gas
	for _, res := range g.Report.Results {
		gasSum += res.AccumulateGas
	}
	if uint64(gasSum) > cfg.CoreAccumulateGasBudget {
		return ErrAccumulateGasOverBudget
	}

	deps := uint32(len(g.Report.Prerequisites) + len(g.Report.SegmentRootLookup))
	if deps > cfg.MaxWorkReportDependencies {
		return ErrTooManyDependencies
	}
	return nil
}

func checkTiming(tr *overlay.Transition, g *Guarantee, cfg *params.Config) error {
	current := tr.Tau()
	if g.Slot > current {
		return ErrFutureSlot
	}
	if uint64(g.Slot)/uint64(cfg.EpochLength)+1 < uint64(current)/uint64(cfg.EpochLength) {
		return ErrSlotTooOld
	}
	return nil
}

func checkAnchor(beta []state.BlockInfo, g *Guarantee) error {
	for _, b := range beta {
		if b.HeaderHash == g.Report.AnchorHash {
			if b.StateRoot != g.Report.AnchorStateRoot {
				return ErrBadStateRoot
			}
			if b.BeefyRoot != g.Report.AnchorBeefyRoot {
				return ErrBadBeefyMmrRoot
			}
			return nil
		}
	}
	return ErrAnchorNotRecent
}

func checkSignatures(tr *overlay.Transition, g *Guarantee, cfg *params.Config, verifier crypto.Ed25519Verifier) ([]state.Ed25519Key, error) {
	validatorCount := int(cfg.ValidatorCount)
	coreCount := int(cfg.CoreCount)
	assigned := validatorCount / coreCount
	lower := assigned/2 + 1
	upper := assigned
	if len(g.Signatures) < lower || len(g.Signatures) > upper {
		return nil, ErrGuarantorCountOutOfRange
	}

	set := tr.Kappa()
	if !tr.Time.SameRotation(g.Slot) {
		set = tr.Lambda()
	}

	rotationIndex := rotationIndexForSlot(g.Slot, cfg)
	entropy := tr.Eta()[2]
	assignment := globalAssignments.assignment(entropy, rotationIndex, validatorCount, coreCount)

	payloadHash := hashutil.Hash(EncodeWorkReport(&g.Report))
	message := crypto.AvailabilityContext(payloadHash)

	signers := make([]state.Ed25519Key, 0, len(g.Signatures))
	for i, sig := range g.Signatures {
		if int(sig.ValidatorIndex) >= len(set) {
			return nil, ErrBadGuarantorSignature
		}
		if i > 0 && g.Signatures[i-1].ValidatorIndex >= sig.ValidatorIndex {
			return nil, ErrGuarantorsNotIncreasing
		}
		if assignment[sig.ValidatorIndex] != g.CoreIndex {
			return nil, ErrBadCoreAssignment
		}
		key := set[sig.ValidatorIndex].Ed25519
		if !verifier.Verify(key, message, sig.Signature) {
			return nil, ErrBadGuarantorSignature
		}
		signers = append(signers, key)
	}
	return signers, nil
}

func rotationIndexForSlot(slot state.TimeSlot, cfg *params.Config) uint32 {
	epochSlot := uint32(uint64(slot) % uint64(cfg.EpochLength))
	return epochSlot / cfg.RotationPeriod
}

func checkResults(tr *overlay.Transition, g *Guarantee) error {
	delta := tr.Delta()
	for _, res := range g.Report.Results {
		svc, ok := delta[res.ServiceId]
		if !ok {
			return ErrUnknownService
		}
		if svc.CodeHash != res.CodeHash {
			return ErrBadCodeHash
		}
		if res.AccumulateGas < svc.MinGasAccumulate {
			return ErrServiceGasUnderMinimum
		}
	}
	return nil
}

func checkDependencies(recentHashes map[state.Hash]struct{}, g *Guarantee) error {
	for _, h := range g.Report.Prerequisites {
		if _, ok := recentHashes[h]; !ok {
			return ErrDependencyNotRecent
		}
	}
	for _, h := range g.Report.SegmentRootLookup {
		if _, ok := recentHashes[h]; !ok {
			return ErrDependencyNotRecent
		}
	}
	return nil
}

func checkCoreAvailability(tr *overlay.Transition, g *Guarantee, cfg *params.Config) error {
	rho := tr.Rho()
	pending := rho[g.CoreIndex]
	if pending == nil {
		return nil
	}
	if uint64(tr.Tau()) < uint64(pending.Timeout)+uint64(cfg.WorkReplacementPeriod) {
		return ErrCoreNotFree
	}
	return nil
}

func checkDuplicatePackage(recentReports, batchHashes map[state.Hash]struct{}, g *Guarantee) error {
	if _, ok := recentReports[g.Report.PackageHash]; ok {
		return ErrDuplicatePackageHash
	}
	if _, ok := batchHashes[g.Report.PackageHash]; ok {
		return ErrDuplicatePackageHash
	}
	return nil
}

func checkAuthorizer(tr *overlay.Transition, g *Guarantee) error {
	for _, h := range tr.Alpha()[g.CoreIndex] {
		if h == g.Report.AuthorizerHash {
			return nil
		}
	}
	return ErrAuthorizerNotInPool
}

func recentHistoryIndex(beta []state.BlockInfo) (hashes, reports map[state.Hash]struct{}) {
	hashes = map[state.Hash]struct{}{}
	reports = map[state.Hash]struct{}{}
	for _, b := range beta {
		for _, h := range b.WorkReports {
			hashes[h] = struct{}{}
			reports[h] = struct{}{}
		}
	}
	return hashes, reports
}
