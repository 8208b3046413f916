package trie

import "github.com/jamzig/jamzig-sub002/shared/hashutil"

// MMR is a Merkle-Mountain-Range over Keccak-256, used for the BEEFY belt
// (§4.2, §4.11). It is represented as a flat sequence of optional peaks,
// per the §9 design note ("no cycles... a flat sequence of optional
// peaks"): Peaks[i] holds the root of a subtree of 2^i leaves, or nil when
// the belt currently has no subtree of that height.
type MMR struct {
	Peaks []*[32]byte
}

// NewMMR returns an empty belt.
func NewMMR() *MMR { return &MMR{} }

// Append folds leaf into the MMR, merging equal-height peaks bottom-up, and
// returns the resulting belt (the receiver is not mutated in place so
// callers can keep the pre-append belt alive, matching the delta overlay's
// copy-on-write discipline).
func (m *MMR) Append(leaf [32]byte) *MMR {
	peaks := make([]*[32]byte, len(m.Peaks))
	copy(peaks, m.Peaks)

	carry := leaf
	height := 0
	for {
		if height >= len(peaks) {
			peaks = append(peaks, &carry)
			break
		}
		if peaks[height] == nil {
			p := carry
			peaks[height] = &p
			break
		}
		merged := hashutil.Keccak256Concat(peaks[height][:], carry[:])
		peaks[height] = nil
		carry = merged
		height++
	}
	return &MMR{Peaks: peaks}
}

// SuperPeak combines every present peak, in ascending height order (the
// newest leaves first), into a single Keccak-256 commitment certifying the
// whole belt.
//
// Spec reference: §4.2 ("super_peak(peaks, H)"), §8 property 8.
func (m *MMR) SuperPeak() [32]byte {
	if len(m.Peaks) == 0 {
		return hashutil.Keccak256(nil)
	}
	var acc [32]byte
	first := true
	for _, p := range m.Peaks {
		if p == nil {
			continue
		}
		if first {
			acc = *p
			first = false
			continue
		}
		acc = hashutil.Keccak256Concat([]byte("mmr_super_peak"), acc[:], p[:])
	}
	if first {
		return hashutil.Keccak256(nil)
	}
	return acc
}

// Clone returns a deep copy of the belt.
func (m *MMR) Clone() *MMR {
	peaks := make([]*[32]byte, len(m.Peaks))
	for i, p := range m.Peaks {
		if p == nil {
			continue
		}
		v := *p
		peaks[i] = &v
	}
	return &MMR{Peaks: peaks}
}
