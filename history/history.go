// Package history implements §4.11: appending the current block's
// descriptor to β's recent-history ring, evicting the oldest entry once the
// ring is full, and patching the previously-newest entry's state_root with
// this block's parent_state_root once it becomes known.
//
// Grounded on beacon-chain/core/state/state_transition.go's
// CalculateNewBlockHashes, which derives a new recent-block-hash ring from
// the previous one each slot; here the ring holds a richer BlockInfo
// (header hash, BEEFY root, work-report hashes) instead of a bare hash, and
// carries the state_root "patch a block behind" pattern named in §4.11
// rule 3 / graypaper eqs 31-43.
package history

import (
	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
)

// Process appends a new BlockInfo for this block (state_root left zero,
// per §3's "the newest block's state_root is initially zero and is
// overwritten by the next block"), evicts the oldest entry once |β| = H,
// and patches the previously-newest entry's state_root with
// parentStateRoot — the root of the state this block was built against,
// which only becomes nameable once this block exists.
func Process(tr *overlay.Transition, headerHash state.Hash, beefySuperPeak state.Hash, workReports []state.Hash, parentStateRoot state.Hash, cfg *params.Config) {
	beta := tr.EnsureBeta()

	if len(*beta) > 0 {
		last := len(*beta) - 1
		(*beta)[last].StateRoot = parentStateRoot
	}

	*beta = append(*beta, state.BlockInfo{
		HeaderHash:  headerHash,
		BeefyRoot:   beefySuperPeak,
		StateRoot:   state.Hash{},
		WorkReports: append([]state.Hash(nil), workReports...),
	})

	if uint32(len(*beta)) > cfg.RecentHistoryDepth {
		*beta = (*beta)[len(*beta)-int(cfg.RecentHistoryDepth):]
	}
}
