package accumulation

import "errors"

// ErrUnknownService is returned when a ready result names a service not
// present in δ; the batch aborts rather than silently dropping it, since
// §4.7 rule 9 already requires guarantees to reference a known service
// and a missing entry here means δ was mutated inconsistently upstream.
var ErrUnknownService = errors.New("accumulation: ready result references a service not in delta")
