package reports

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"

	"github.com/jamzig/jamzig-sub002/shared/hashutil"
	"github.com/jamzig/jamzig-sub002/state"
)

// assignmentCacheSize bounds the number of distinct (entropy, rotation)
// assignment tables memoized at once; a node only ever needs the current
// and immediately-prior rotation's worth.
const assignmentCacheSize = 4

// assignmentCache memoizes the rotation-permuted guarantor→core table so
// repeated guarantees within the same block/rotation don't re-shuffle.
type assignmentCache struct {
	cache *lru.Cache
}

func newAssignmentCache() *assignmentCache {
	c, err := lru.New(assignmentCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which assignmentCacheSize never is
	}
	return &assignmentCache{cache: c}
}

type assignmentKey struct {
	entropy  state.Hash
	rotation uint32
}

// assignment returns, for each validator index, the core it is assigned to
// guarantee under the rotation identified by (entropy, rotationIndex),
// deriving it from a seeded swap-or-not shuffle over [0, validatorCount)
// and then splitting the shuffled order into coreCount contiguous bands.
func (c *assignmentCache) assignment(entropy state.Hash, rotationIndex uint32, validatorCount, coreCount int) []state.CoreIndex {
	key := assignmentKey{entropy: entropy, rotation: rotationIndex}
	if v, ok := c.cache.Get(key); ok {
		return v.([]state.CoreIndex)
	}

	seed := hashutil.HashConcat([]byte("jam_guarantor_rotation"), entropy[:], rotationBytes(rotationIndex))
	out := make([]state.CoreIndex, validatorCount)
	for i := 0; i < validatorCount; i++ {
		shuffled := shuffledIndex(uint64(i), uint64(validatorCount), seed, 10)
		out[i] = state.CoreIndex(shuffled * uint64(coreCount) / uint64(validatorCount))
	}

	c.cache.Add(key, out)
	return out
}

func rotationBytes(r uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, r)
	return b
}

// shuffledIndex computes the swap-or-not permutation of index within
// [0, indexCount) under seed, run for the given number of rounds. Mirrors
// the shape of the eth2 compute_shuffled_index algorithm the teacher's
// committee helpers call through (ShuffledIndex(i, count, seed)).
func shuffledIndex(index, indexCount uint64, seed [32]byte, rounds int) uint64 {
	if indexCount <= 1 {
		return index
	}
	for round := 0; round < rounds; round++ {
		pivotSource := hashutil.HashConcat(seed[:], []byte{byte(round)})
		pivot := binary.LittleEndian.Uint64(pivotSource[:8]) % indexCount

		flip := (pivot + indexCount - index) % indexCount
		position := index
		if flip > position {
			position = flip
		}

		source := hashutil.HashConcat(seed[:], []byte{byte(round)}, []byte{byte(position / 256)})
		bit := (source[(position%256)/8] >> (position % 8)) & 1
		if bit == 1 {
			index = flip
		}
	}
	return index
}
