// Package authorizations implements §4.10: removing an authorizer hash
// from a core's pool once it has been used by a guarantee, then rotating
// in the next queued authorizer for every core.
//
// Grounded on beacon-chain/core/epoch/epoch_processing.go's bounded
// index-rotation style (a fixed-width per-epoch array advanced by one
// slot and the oldest entry evicted once full), applied here to α's
// per-core pool/queue instead of eth2's slashings vector.
package authorizations

import (
	"github.com/sirupsen/logrus"

	"github.com/jamzig/jamzig-sub002/overlay"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
)

var log = logrus.WithField("prefix", "authorizations")

// Used names one core's authorizer hash as consumed by this block's
// guarantee (§4.7 rule 13 already confirmed it belonged to α[core]).
type Used struct {
	Core state.CoreIndex
	Hash state.Hash
}

// Process removes each used authorizer from its core's pool, then for
// every core rotates in φ[core][current_slot mod Q], evicting the oldest
// pool entry once |α[core]| = O.
func Process(tr *overlay.Transition, used []Used, cfg *params.Config) {
	alpha := tr.EnsureAlpha()
	for _, u := range used {
		pool := (*alpha)[u.Core]
		(*alpha)[u.Core] = removeHash(pool, u.Hash)
	}

	phi := tr.Phi()
	slot := uint64(tr.Tau())
	for c := 0; c < len(*alpha); c++ {
		queue := phi[c]
		if len(queue) == 0 {
			continue
		}
		next := queue[slot%uint64(len(queue))]
		pool := append((*alpha)[c], next)
		if uint32(len(pool)) > cfg.MaxAuthPoolItems {
			pool = pool[len(pool)-int(cfg.MaxAuthPoolItems):]
		}
		(*alpha)[c] = pool
	}

	log.WithField("used", len(used)).Debug("authorizations: rotated")
}

func removeHash(pool state.AuthPool, h state.Hash) state.AuthPool {
	out := make(state.AuthPool, 0, len(pool))
	removed := false
	for _, v := range pool {
		if !removed && v == h {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out
}
