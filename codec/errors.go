package codec

import "errors"

// Error kinds surfaced by serialize/deserialize, per spec §4.1/§7.
var (
	ErrUnexpectedEOF          = errors.New("codec: unexpected end of input")
	ErrInvalidEncoding        = errors.New("codec: invalid encoding")
	ErrExceededMaximumSize    = errors.New("codec: length exceeds configured maximum")
	ErrInvalidExistenceMarker = errors.New("codec: optional existence marker not in {0,1}")
)
