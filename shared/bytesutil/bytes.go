// Package bytesutil provides small byte/integer conversion helpers. The
// state package's key helpers are its only caller.
package bytesutil

import "encoding/binary"

// ToBytes32 truncates or zero-pads x into a 32-byte array.
func ToBytes32(x []byte) [32]byte {
	var out [32]byte
	copy(out[:], x)
	return out
}

// Bytes8 returns the little-endian byte encoding of x.
func Bytes8(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

// Bytes4 returns the little-endian byte encoding of x.
func Bytes4(x uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, x)
	return b
}

// PadTo copies src into a newly allocated slice of length n, zero-padding on
// the right. Used to build fixed-width merklization subkeys.
func PadTo(src []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, src)
	return out
}

// SafeCopy2d deep-copies a [][]byte slice so the copy shares no backing
// array with its source.
func SafeCopy2d(src [][]byte) [][]byte {
	out := make([][]byte, len(src))
	for i, s := range src {
		c := make([]byte, len(s))
		copy(c, s)
		out[i] = c
	}
	return out
}
