package safrole

import "errors"

// Error kinds named in spec §4.4/§7.
var (
	ErrBadSlot                  = errors.New("safrole: slot not greater than current slot")
	ErrBadTicketAttempt         = errors.New("safrole: ticket attempt >= N")
	ErrTooManyTicketsInExtrinsic = errors.New("safrole: more than K tickets in extrinsic")
	ErrUnexpectedTicket         = errors.New("safrole: ticket submitted at or after Y")
	ErrBadTicketProof           = errors.New("safrole: ring-VRF verification failed")
	ErrDuplicateTicket          = errors.New("safrole: ticket id collides with accumulator")
	ErrBadTicketOrder           = errors.New("safrole: tickets not strictly id-increasing")
)
