package header

import "errors"

// Error kinds named in spec §4.5/§7.
var (
	ErrInvalidParentHash              = errors.New("header: parent hash does not match recent history")
	ErrInvalidPriorStateRoot          = errors.New("header: parent_state_root does not match pre-state root")
	ErrInvalidExtrinsicHash           = errors.New("header: extrinsic_hash does not match serialized extrinsic")
	ErrSlotNotGreaterThanParent       = errors.New("header: slot not greater than current slot")
	ErrInvalidAuthorIndex             = errors.New("header: author_index >= V")
	ErrInvalidEpochMarkerTiming       = errors.New("header: epoch marker presence does not match epoch transition")
	ErrInvalidTicketsMarkerTiming     = errors.New("header: tickets marker presence does not match crossing of Y")
	ErrTicketSealVerificationFailed   = errors.New("header: ticket-mode seal verification failed")
	ErrFallbackSealVerificationFailed = errors.New("header: fallback-mode seal verification failed")
	ErrInvalidTicketId                = errors.New("header: seal vrf output does not match ticket id")
	ErrEntropySourceVerificationFailed = errors.New("header: entropy-source vrf verification failed")
)
