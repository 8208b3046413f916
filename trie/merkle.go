// Package trie implements the two Merkle primitives named in §4.2: a binary
// Merkle root over sorted key/value pairs (m_sigma, used for the state
// root) and a Merkle-Mountain-Range append/super-peak (used for the BEEFY
// belt).
//
// Grounded on shared/trieutil/sparse_merkle.go's layered-branch,
// zero-hash-padded construction, adapted from a fixed-depth sparse trie to
// a sorted pairwise binary Merkle root over variable-length entries.
package trie

import (
	"bytes"
	"sort"

	"github.com/jamzig/jamzig-sub002/shared/hashutil"
)

// Entry is one (StateKey, value) pair in the merklization dictionary.
type Entry struct {
	Key   [32]byte
	Value []byte
}

// leafHash and branchHash use distinct domain tags so a leaf can never be
// mistaken for a branch at a different tree level, a property the
// teacher's fixed-depth sparse trie gets for free from its depth parameter
// but which a variable-shape binary root over arbitrary entries must
// enforce explicitly.
func leafHash(e Entry) [32]byte {
	return hashutil.HashConcat([]byte{0x00}, e.Key[:], e.Value)
}

func branchHash(left, right [32]byte) [32]byte {
	return hashutil.HashConcat([]byte{0x01}, left[:], right[:])
}

// MerkleRoot computes m_sigma: order entries by key, then combine pairwise
// with a Blake2b-256 leaf/branch construction. An odd node at any level is
// promoted unchanged to the next level (no synthetic padding leaf).
func MerkleRoot(entries []Entry) [32]byte {
	if len(entries) == 0 {
		return hashutil.Hash(nil)
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Key[:], sorted[j].Key[:]) < 0
	})

	level := make([][32]byte, len(sorted))
	for i, e := range sorted {
		level[i] = leafHash(e)
	}
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, branchHash(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}
