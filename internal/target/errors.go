package target

import "errors"

// Accessor-level failure kinds. Every failure is fatal for the invocation
// that hit it; the engine never retries a read.
var (
	// ErrNoSymbol means a named variable is absent from the symbol table.
	ErrNoSymbol = errors.New("symbol not found")

	// ErrNoType means a struct layout is absent from the type table.
	ErrNoType = errors.New("type not found")

	// ErrNoField means a struct layout has no field by the given name.
	ErrNoField = errors.New("field not found")

	// ErrBadType means an operation does not apply to the handle's type,
	// e.g. Field on a scalar or Deref on a struct.
	ErrBadType = errors.New("operation not supported by type")

	// ErrUnmapped means a read touched memory outside the snapshot.
	ErrUnmapped = errors.New("address not mapped")

	// ErrBadList means an intrusive list walk exceeded the sanity bound
	// without returning to its head, i.e. the snapshot captured a torn or
	// corrupt list.
	ErrBadList = errors.New("list not terminated")
)
