// Package accumulation implements §4.9: folding newly-available work-reports
// into ϑ's ready lanes, walking them oldest-to-newest to find reports whose
// dependencies are already satisfied, dispatching those to the PVM oracle,
// applying successful results to δ, and rotating ξ/emitting θ′ and the
// belt's accumulate_root.
//
// Grounded on beacon-chain/core/epoch/epoch_processing.go's
// ProcessFinalUpdates, which shifts a fixed-width per-epoch array one slot
// and discards the oldest entry; the same shape here rotates ϑ/ξ's E lanes
// instead of eth2's slashings/randao-mixes vectors.
package accumulation

import (
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
	"github.com/jamzig/jamzig-sub002/trie"
)

var log = logrus.WithField("prefix", "accumulation")

// Process enqueues available into the current slot's ϑ lane, accumulates
// every ready report across all E lanes, rotates ξ (shifting it down by one
// lane on an epoch boundary), emits θ′ and appends its Merkle root to the
// BEEFY belt. It returns θ′.
func Process(tr *overlay.Transition, available []state.WorkReport, newEpoch bool, cfg *params.Config, pvm PVM) ([]state.AccumulationOutput, error) {
	epochLength := int(cfg.EpochLength)
	currentLane := int(uint64(tr.Tau()) % uint64(epochLength))

	vartheta := tr.EnsureVartheta()
	for _, report := range available {
		deps := make([]state.Hash, 0, len(report.Prerequisites)+len(report.SegmentRootLookup))
		deps = append(deps, report.Prerequisites...)
		deps = append(deps, report.SegmentRootLookup...)
		(*vartheta)[currentLane] = append((*vartheta)[currentLane], state.ReadyItem{
			Report:       report,
			Dependencies: deps,
		})
	}

	accumulated := map[state.Hash]struct{}{}
	for _, lane := range tr.Xi() {
		for _, h := range lane {
			accumulated[h] = struct{}{}
		}
	}

	delta := tr.EnsureDelta()
	var thetaPrime []state.AccumulationOutput
	var newlyAccumulated []state.Hash

	for _, lane := range laneOrder(currentLane, epochLength) {
		remaining := (*vartheta)[lane][:0:0]
		for _, item := range (*vartheta)[lane] {
			if !depsSatisfied(item.Dependencies, accumulated) {
				remaining = append(remaining, item)
				continue
			}
			outputs, err := accumulateReport(delta, &item.Report, pvm)
			if err != nil {
				return nil, err
			}
			thetaPrime = append(thetaPrime, outputs...)
			newlyAccumulated = append(newlyAccumulated, item.Report.PackageHash)
			accumulated[item.Report.PackageHash] = struct{}{}
		}
		(*vartheta)[lane] = remaining
	}

	xi := tr.EnsureXi()
	if newEpoch {
		shifted := make([][]state.Hash, epochLength)
		for i := 0; i < epochLength-1; i++ {
			shifted[i] = (*xi)[i+1]
		}
		*xi = shifted
	}
	(*xi)[currentLane] = append(append([]state.Hash(nil), (*xi)[currentLane]...), newlyAccumulated...)

	*tr.EnsureTheta() = thetaPrime

	root := accumulateRoot(thetaPrime)
	tr.SetBelt(tr.EnsureBelt().Append(root))

	log.WithField("accumulated", len(newlyAccumulated)).Debug("accumulation: processed ready lanes")

	return thetaPrime, nil
}

// laneOrder returns ϑ/ξ's E lane indices ordered oldest-first relative to
// current: the lane immediately after current (the one least recently
// written) through current itself (the most recently written, this block).
func laneOrder(current, epochLength int) []int {
	order := make([]int, epochLength)
	for i := range order {
		order[i] = (current + 1 + i) % epochLength
	}
	return order
}

func depsSatisfied(deps []state.Hash, accumulated map[state.Hash]struct{}) bool {
	for _, d := range deps {
		if _, ok := accumulated[d]; !ok {
			return false
		}
	}
	return true
}

// accumulateReport dispatches every result of report to the PVM oracle in
// turn, applying each successful next-account to δ; a result naming a
// service absent from δ aborts the whole batch, an out-of-gas or otherwise
// failed result is simply skipped (no θ entry, δ left untouched for it).
func accumulateReport(delta *map[state.ServiceId]state.ServiceAccount, report *state.WorkReport, pvm PVM) ([]state.AccumulationOutput, error) {
	var outputs []state.AccumulationOutput
	for i := range report.Results {
		result := &report.Results[i]
		svc, ok := (*delta)[result.ServiceId]
		if !ok {
			return nil, ErrUnknownService
		}
		next, _, outputHash, ok := pvm.Accumulate(svc, report, result, result.AccumulateGas)
		if !ok {
			continue
		}
		(*delta)[result.ServiceId] = next
		outputs = append(outputs, state.AccumulationOutput{
			ServiceId:  result.ServiceId,
			OutputHash: outputHash,
		})
	}
	return outputs, nil
}

// accumulateRoot computes M_b(θ′): θ is keyed by its position in the
// emission order since service IDs may repeat across a block's results.
func accumulateRoot(theta []state.AccumulationOutput) [32]byte {
	entries := make([]trie.Entry, len(theta))
	for i, o := range theta {
		var key [32]byte
		key[28] = byte(i >> 24)
		key[29] = byte(i >> 16)
		key[30] = byte(i >> 8)
		key[31] = byte(i)
		entries[i] = trie.Entry{Key: key, Value: append([]byte(nil), o.OutputHash[:]...)}
	}
	return trie.MerkleRoot(entries)
}
