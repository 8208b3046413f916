package header

import (
	"github.com/jamzig/jamzig-sub002/codec"
	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

// Hash canonically encodes h and returns its content hash, used as the
// next block's expected parent_hash and as β's per-block header_hash
// (§4.11).
func Hash(h *Header) state.Hash {
	w := codec.NewWriter()
	w.WriteFixedBytes(h.ParentHash[:])
	w.WriteFixedBytes(h.ParentStateRoot[:])
	w.WriteFixedBytes(h.ExtrinsicHash[:])
	w.WriteUint32(uint32(h.Slot))
	w.WriteOptional(h.EpochMarker != nil, func(w *codec.Writer) {
		w.WriteFixedBytes(h.EpochMarker.Entropy[:])
		w.WriteSequence(len(h.EpochMarker.Validators), func(w *codec.Writer, i int) {
			w.WriteFixedBytes(h.EpochMarker.Validators[i][:])
		})
	})
	w.WriteSequence(len(h.TicketsMarker), func(w *codec.Writer, i int) {
		w.WriteFixedBytes(h.TicketsMarker[i][:])
	})
	w.WriteUint16(uint16(h.AuthorIndex))
	w.WriteFixedBytes(h.VrfSignature[:])
	w.WriteFixedBytes(h.Seal[:])
	return state.Hash(hashutil.Hash(w.Bytes()))
}
