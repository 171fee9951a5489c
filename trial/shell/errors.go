package shell

import "errors"

var (
	// ErrIdempotentOperation is a sentinel error to indicate an idempotent operation that should be recorded in metrics.
	ErrIdempotentOperation = errors.New("idempotent operation - no state change needed")

	// ErrInvalidCommandPayload is returned when a dispatched command has the wrong concrete type.
	ErrInvalidCommandPayload = errors.New("command payload has the wrong type for this handler")
)
