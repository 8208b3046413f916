// Package crypto defines the verification oracles the STF treats as pure,
// stateless, thread-safe primitives: Ed25519 signature verification and
// Bandersnatch VRF / ring-VRF verification. Per spec §1/§9 these are
// "typed verification oracles" — the STF never implements the underlying
// curve arithmetic itself, only calls through these interfaces.
package crypto

import (
	"golang.org/x/crypto/ed25519"
)

// Ed25519PublicKeySize and Ed25519SignatureSize match the protocol's fixed
// key/signature widths (§3).
const (
	Ed25519PublicKeySize = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
)

// Ed25519Verifier verifies Ed25519 signatures. Implementations must be pure
// and safe for concurrent use (§5: "Crypto oracles are thread-safe and
// stateless").
type Ed25519Verifier interface {
	Verify(pubKey [Ed25519PublicKeySize]byte, message []byte, sig [Ed25519SignatureSize]byte) bool
}

// StdEd25519Verifier is the default Ed25519Verifier, backed directly by
// golang.org/x/crypto/ed25519.
type StdEd25519Verifier struct{}

// Verify reports whether sig is a valid Ed25519 signature over message by
// pubKey.
func (StdEd25519Verifier) Verify(pubKey [Ed25519PublicKeySize]byte, message []byte, sig [Ed25519SignatureSize]byte) bool {
	return ed25519.Verify(pubKey[:], message, sig[:])
}

// ValidatorVoteContext builds the signed payload for a dispute vote:
// "jam_valid" or "jam_invalid" concatenated with the target work-report
// hash, per spec §4.6.
func ValidatorVoteContext(valid bool, target [32]byte) []byte {
	tag := []byte("jam_invalid")
	if valid {
		tag = []byte("jam_valid")
	}
	return append(append([]byte{}, tag...), target[:]...)
}

// AvailabilityContext builds the signed payload for a guarantor or assurer
// availability signature: "jam_available" ‖ H(...), per spec §4.7/§4.8.
func AvailabilityContext(inner [32]byte) []byte {
	return append(append([]byte{}, []byte("jam_available")...), inner[:]...)
}
