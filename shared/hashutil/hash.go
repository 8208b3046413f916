// Package hashutil wraps the two hash functions the spec names: Blake2b-256
// for everything except the BEEFY belt, and Keccak-256 for the BEEFY belt.
package hashutil

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hash returns the Blake2b-256 digest of data, used by m_sigma leaf/branch
// construction and by every other hashing call in the spec except the BEEFY
// belt.
//
// Spec reference: §4.2, "combine pairwise using a Blake2b-256-based
// leaf/branch construction".
func Hash(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// HashConcat hashes the concatenation of its arguments without an
// intermediate allocation per call site.
func HashConcat(parts ...[]byte) [32]byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return Hash(buf)
}

// Keccak256 returns the Keccak-256 digest of data, used exclusively by the
// BEEFY Merkle-Mountain-Range belt.
//
// Spec reference: §4.2, "mmr_append(peaks, leaf, H)... Keccak-256 for
// BEEFY".
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	// The hash.Hash interface never returns an error from Write or Sum.
	h.Write(data)
	h.Sum(out[:0])
	return out
}

// Keccak256Concat hashes the concatenation of its arguments under Keccak-256.
func Keccak256Concat(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}
