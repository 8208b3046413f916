package reports

import (
	"github.com/jamzig/jamzig-sub002/codec"
	"github.com/jamzig/jamzig-sub002/state"
)

// EncodeWorkReport canonically serializes a work-report for hashing into
// the guarantor availability-signature payload ("jam_available" ‖
// H(serialize(work_report)), §4.7 rule 7).
func EncodeWorkReport(r *state.WorkReport) []byte {
	w := codec.NewWriter()
	w.WriteFixedBytes(r.PackageHash[:])
	w.WriteUint16(uint16(r.CoreIndex))
	w.WriteFixedBytes(r.AuthorizerHash[:])
	w.WriteSequence(len(r.AuthOutput), func(w *codec.Writer, i int) { w.WriteUint8(r.AuthOutput[i]) })
	w.WriteFixedBytes(r.AnchorHash[:])
	w.WriteFixedBytes(r.AnchorStateRoot[:])
	w.WriteFixedBytes(r.AnchorBeefyRoot[:])
	w.WriteUint32(uint32(r.LookupAnchorSlot))
	w.WriteSequence(len(r.Prerequisites), func(w *codec.Writer, i int) { w.WriteFixedBytes(r.Prerequisites[i][:]) })
	w.WriteSequence(len(r.SegmentRootLookup), func(w *codec.Writer, i int) { w.WriteFixedBytes(r.SegmentRootLookup[i][:]) })
	w.WriteSequence(len(r.Results), func(w *codec.Writer, i int) {
		res := r.Results[i]
		w.WriteUint32(uint32(res.ServiceId))
		w.WriteFixedBytes(res.CodeHash[:])
		w.WriteFixedBytes(res.PayloadHash[:])
		w.WriteUint64(uint64(res.AccumulateGas))
		w.WriteSequence(len(res.Output), func(w *codec.Writer, j int) { w.WriteUint8(res.Output[j]) })
	})
	return w.Bytes()
}
