package assurances

import "errors"

// Error kinds named in spec §4.8/§7.
var (
	ErrBadBitfieldLength   = errors.New("assurances: bitfield length does not match core count")
	ErrValidatorsNotOrdered = errors.New("assurances: assurances not strictly validator-index-increasing")
	ErrBadAnchor            = errors.New("assurances: anchor hash does not equal parent header hash")
	ErrBitSetForEmptyCore   = errors.New("assurances: set bit references a core with no pending report")
	ErrBadAssuranceSignature = errors.New("assurances: signature failed verification")
)
