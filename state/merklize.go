package state

import (
	"encoding/binary"

	"github.com/jamzig/jamzig-sub002/codec"
	"github.com/jamzig/jamzig-sub002/trie"
)

// Component tags for the state-merklization dictionary (§4.2): every
// dictionary key is one tag byte followed by a component-specific subkey,
// zero-padded to StateKey's 32 bytes. Two implementations agree on M_sigma
// iff every entry matches byte-for-byte, so this layout is fixed once
// chosen and never reordered.
const (
	tagTau byte = iota
	tagEta
	tagIota
	tagKappa
	tagLambda
	tagGammaK
	tagGammaZ
	tagGammaS
	tagGammaA
	tagAlpha
	tagPhi
	tagRho
	tagBeta
	tagBeefyBelt
	tagDelta
	tagChi
	tagPsi
	tagPi
	tagVartheta
	tagXi
	tagTheta
)

func componentKey(tag byte, index ...byte) StateKey {
	var k StateKey
	k[0] = tag
	copy(k[1:], index)
	return k
}

func indexBytes(i int) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(i))
	return b[:]
}

func serviceIndexBytes(id ServiceId) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

// Merklize builds M_sigma's dictionary: one (StateKey, bytes) entry per
// singleton component, and one entry per index for the per-core, per-lane
// and per-service components (α, φ, ρ, ϑ, ξ, δ).
func (s *State) Merklize() []trie.Entry {
	var entries []trie.Entry
	add := func(k StateKey, v []byte) {
		entries = append(entries, trie.Entry{Key: k, Value: v})
	}

	tauW := codec.NewWriter()
	tauW.WriteUint32(uint32(s.Tau))
	add(componentKey(tagTau), tauW.Bytes())

	etaW := codec.NewWriter()
	for _, e := range s.Eta {
		etaW.WriteFixedBytes(e[:])
	}
	add(componentKey(tagEta), etaW.Bytes())

	add(componentKey(tagIota), encodeValidatorSet(s.Iota))
	add(componentKey(tagKappa), encodeValidatorSet(s.Kappa))
	add(componentKey(tagLambda), encodeValidatorSet(s.Lambda))
	add(componentKey(tagGammaK), encodeValidatorSet(s.GammaK))
	add(componentKey(tagGammaZ), append([]byte(nil), s.GammaZ[:]...))
	add(componentKey(tagGammaS), encodeSealerSeries(s.GammaS))
	add(componentKey(tagGammaA), encodeTickets(s.GammaA))

	for c, pool := range s.Alpha {
		add(componentKey(tagAlpha, indexBytes(c)...), encodeHashes(pool))
	}
	for c, q := range s.Phi {
		add(componentKey(tagPhi, indexBytes(c)...), encodeHashes(q))
	}
	for c, r := range s.Rho {
		add(componentKey(tagRho, indexBytes(c)...), encodePendingReport(r))
	}

	add(componentKey(tagBeta), encodeRecentHistory(s.Beta))
	add(componentKey(tagBeefyBelt), encodeBelt(s.BeefyBelt))

	for id, acc := range s.Delta {
		add(componentKey(tagDelta, serviceIndexBytes(id)...), encodeServiceAccount(acc))
	}

	add(componentKey(tagChi), encodePrivileges(s.Chi))
	add(componentKey(tagPsi), encodeDisputes(s.Psi))
	add(componentKey(tagPi), encodeStatistics(s.Pi))

	for lane, items := range s.Vartheta {
		add(componentKey(tagVartheta, indexBytes(lane)...), encodeReadyLane(items))
	}
	for lane, hashes := range s.Xi {
		add(componentKey(tagXi, indexBytes(lane)...), encodeHashes(hashes))
	}
	add(componentKey(tagTheta), encodeTheta(s.Theta))

	return entries
}

// StateRoot computes M_sigma over s's merklization dictionary.
func (s *State) StateRoot() Hash {
	return Hash(trie.MerkleRoot(s.Merklize()))
}

func encodeValidatorSet(vs ValidatorSet) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(vs), func(w *codec.Writer, i int) {
		v := vs[i]
		w.WriteFixedBytes(v.Ed25519[:])
		w.WriteFixedBytes(v.Bandersnatch[:])
		w.WriteFixedBytes(v.Bls[:])
		w.WriteFixedBytes(v.Metadata[:])
	})
	return w.Bytes()
}

func encodeTickets(tickets []Ticket) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(tickets), func(w *codec.Writer, i int) {
		t := tickets[i]
		w.WriteFixedBytes(t.ID[:])
		w.WriteUint8(t.Attempt)
		w.WriteFixedBytes(t.Envelope[:])
	})
	return w.Bytes()
}

func encodeSealerSeries(s SealerSeries) []byte {
	w := codec.NewWriter()
	discriminant := uint8(0)
	if s.IsTickets {
		discriminant = 1
	}
	w.WriteEnum(discriminant, func(w *codec.Writer) {
		if s.IsTickets {
			w.WriteFixedBytes(encodeTickets(s.Tickets))
			return
		}
		w.WriteSequence(len(s.Fallback), func(w *codec.Writer, i int) {
			w.WriteFixedBytes(s.Fallback[i][:])
		})
	})
	return w.Bytes()
}

func encodeHashes(hs []Hash) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(hs), func(w *codec.Writer, i int) { w.WriteFixedBytes(hs[i][:]) })
	return w.Bytes()
}

// encodeWorkReport mirrors the reports package's EncodeWorkReport (which
// this package cannot import, being lower in the dependency order); both
// encode the same canonical shape because they serialize the same type.
func encodeWorkReport(w *codec.Writer, r *WorkReport) {
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
}

func encodePendingReport(r *PendingReport) []byte {
	w := codec.NewWriter()
	w.WriteOptional(r != nil, func(w *codec.Writer) {
		encodeWorkReport(w, &r.Report)
		w.WriteUint32(uint32(r.Timeout))
	})
	return w.Bytes()
}

func encodeRecentHistory(beta []BlockInfo) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(beta), func(w *codec.Writer, i int) {
		b := beta[i]
		w.WriteFixedBytes(b.HeaderHash[:])
		w.WriteFixedBytes(b.BeefyRoot[:])
		w.WriteFixedBytes(b.StateRoot[:])
		w.WriteFixedBytes(encodeHashes(b.WorkReports))
	})
	return w.Bytes()
}

func encodeBelt(belt *trie.MMR) []byte {
	w := codec.NewWriter()
	if belt == nil {
		w.WriteSequence(0, func(*codec.Writer, int) {})
		return w.Bytes()
	}
	w.WriteSequence(len(belt.Peaks), func(w *codec.Writer, i int) {
		peak := belt.Peaks[i]
		w.WriteOptional(peak != nil, func(w *codec.Writer) {
			w.WriteFixedBytes(peak[:])
		})
	})
	return w.Bytes()
}

func encodeServiceAccount(a ServiceAccount) []byte {
	w := codec.NewWriter()
	w.WriteUint64(a.Balance)
	w.WriteFixedBytes(a.CodeHash[:])
	w.WriteUint64(uint64(a.MinGasAccumulate))
	w.WriteUint64(uint64(a.MinGasOnTransfer))
	w.WriteUint64(a.StorageFootprint)
	w.WriteUint64(a.ItemCount)

	keys := make([]Hash, 0, len(a.PreimageAvailable))
	for k := range a.PreimageAvailable {
		keys = append(keys, k)
	}
	sortHashes(keys)
	w.WriteSequence(len(keys), func(w *codec.Writer, i int) {
		w.WriteFixedBytes(keys[i][:])
		w.WriteUint32(uint32(a.PreimageAvailable[keys[i]]))
	})
	return w.Bytes()
}

func encodePrivileges(c Privileges) []byte {
	w := codec.NewWriter()
	w.WriteOptional(c.Manager != nil, func(w *codec.Writer) { w.WriteUint32(uint32(*c.Manager)) })
	w.WriteSequence(len(c.Assign), func(w *codec.Writer, i int) { w.WriteUint32(uint32(c.Assign[i])) })
	w.WriteOptional(c.Designate != nil, func(w *codec.Writer) { w.WriteUint32(uint32(*c.Designate)) })

	ids := make([]ServiceId, 0, len(c.AlwaysAccumulate))
	for id := range c.AlwaysAccumulate {
		ids = append(ids, id)
	}
	sortServiceIDs(ids)
	w.WriteSequence(len(ids), func(w *codec.Writer, i int) {
		w.WriteUint32(uint32(ids[i]))
		w.WriteUint64(uint64(c.AlwaysAccumulate[ids[i]]))
	})
	return w.Bytes()
}

func encodeDisputes(d Disputes) []byte {
	w := codec.NewWriter()
	writeHashSet := func(set map[Hash]struct{}) {
		keys := make([]Hash, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sortHashes(keys)
		w.WriteSequence(len(keys), func(w *codec.Writer, i int) { w.WriteFixedBytes(keys[i][:]) })
	}
	writeHashSet(d.Good)
	writeHashSet(d.Bad)
	writeHashSet(d.Wonky)

	keys := make([]Ed25519Key, 0, len(d.Punish))
	for k := range d.Punish {
		keys = append(keys, k)
	}
	sortEd25519Keys(keys)
	w.WriteSequence(len(keys), func(w *codec.Writer, i int) { w.WriteFixedBytes(keys[i][:]) })
	return w.Bytes()
}

func encodeStatistics(pi Statistics) []byte {
	w := codec.NewWriter()
	writeValidatorStats := func(vs []ValidatorStats) {
		w.WriteSequence(len(vs), func(w *codec.Writer, i int) {
			v := vs[i]
			w.WriteUint32(v.Blocks)
			w.WriteUint32(v.Tickets)
			w.WriteUint32(v.PreImages)
			w.WriteUint64(v.PreImageBytes)
			w.WriteUint32(v.Guarantees)
			w.WriteUint32(v.Assurances)
		})
	}
	writeValidatorStats(pi.CurrentValidators)
	writeValidatorStats(pi.PreviousValidators)
	w.WriteSequence(len(pi.Cores), func(w *codec.Writer, i int) {
		c := pi.Cores[i]
		w.WriteUint64(uint64(c.GasUsed))
		w.WriteUint32(c.Imports)
		w.WriteUint32(c.Exports)
		w.WriteUint64(c.ExtrinsicSize)
		w.WriteUint32(c.Bundles)
	})

	ids := make([]ServiceId, 0, len(pi.Services))
	for id := range pi.Services {
		ids = append(ids, id)
	}
	sortServiceIDs(ids)
	w.WriteSequence(len(ids), func(w *codec.Writer, i int) {
		id := ids[i]
		svc := pi.Services[id]
		w.WriteUint32(uint32(id))
		w.WriteUint32(svc.AccumulateCount)
		w.WriteUint64(uint64(svc.AccumulateGas))
		w.WriteUint32(svc.OnTransferCount)
	})
	return w.Bytes()
}

func encodeReadyLane(items []ReadyItem) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(items), func(w *codec.Writer, i int) {
		item := items[i]
		encodeWorkReport(w, &item.Report)
		w.WriteFixedBytes(encodeHashes(item.Dependencies))
	})
	return w.Bytes()
}

func encodeTheta(theta []AccumulationOutput) []byte {
	w := codec.NewWriter()
	w.WriteSequence(len(theta), func(w *codec.Writer, i int) {
		w.WriteUint32(uint32(theta[i].ServiceId))
		w.WriteFixedBytes(theta[i].OutputHash[:])
	})
	return w.Bytes()
}

func sortHashes(hs []Hash) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && lessHash(hs[j], hs[j-1]); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
}

func lessHash(a, b Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortEd25519Keys(ks []Ed25519Key) {
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && lessKey(ks[j], ks[j-1]); j-- {
			ks[j], ks[j-1] = ks[j-1], ks[j]
		}
	}
}

func lessKey(a, b Ed25519Key) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortServiceIDs(ids []ServiceId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
