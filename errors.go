package edslib

import "errors"

// Error taxonomy. Every public entry point returns either a valid result
// or an error wrapping exactly one of these sentinels; match with
// errors.Is.
var (
	// ErrType marks a wrong kind of value or operand for an operation.
	ErrType = errors.New("edslib: type error")
	// ErrValue marks a well-typed but semantically invalid input.
	ErrValue = errors.New("edslib: value error")
	// ErrIndex marks a sequence index out of bounds.
	ErrIndex = errors.New("edslib: index out of range")
	// ErrBuffer marks a missing, read-only or undersized buffer.
	ErrBuffer = errors.New("edslib: buffer error")
	// ErrRuntime marks schema-service or codec failures.
	ErrRuntime = errors.New("edslib: runtime error")
	// ErrOutOfMemory marks an allocation failure.
	ErrOutOfMemory = errors.New("edslib: out of memory")
)
