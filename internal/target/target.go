// Package target defines the typed-memory-read capability the run-queue
// engine consumes. Implementations resolve kernel symbols and struct layouts
// against some source of bytes (a recorded core image, a paused live target)
// and hand back typed object handles. The engine never touches raw pointer
// arithmetic; every structural step goes through this contract.
package target

// Target resolves named kernel variables into typed object handles.
type Target interface {
	// OnlineCPUs returns the online CPU indices in ascending order.
	OnlineCPUs() ([]int, error)

	// Symbol resolves a named global variable.
	Symbol(name string) (Object, error)

	// PerCPU resolves a per-CPU variable instance for the given CPU.
	PerCPU(name string, cpu int) (Object, error)
}

// Object is a typed handle to one structure, scalar, or array inside the
// target's memory. Handles are cheap and read-only; reads happen when a
// scalar accessor is called, never at navigation time.
//
// Identity between handles is address identity: two handles refer to the
// same object exactly when their Address values match. Value fields must
// never be used as identity keys.
type Object interface {
	// TypeName reports the layout type this handle is viewed as.
	TypeName() string

	// Address is the structural address of the object in target memory.
	Address() uint64

	// Field navigates to a named field of a struct-typed object. The name
	// may be a dotted path ("se.group_node") descending through embedded
	// structs.
	Field(name string) (Object, error)

	// Index navigates to element i of an array-typed object.
	Index(i int) (Object, error)

	// Len reports the element count of an array-typed object.
	Len() (int, error)

	// Deref follows a pointer-typed object to its pointee.
	Deref() (Object, error)

	// Int reads a signed scalar.
	Int() (int64, error)

	// Uint reads an unsigned scalar or pointer value.
	Uint() (uint64, error)

	// Bytes reads a fixed-length byte buffer field (e.g. task comm).
	Bytes() ([]byte, error)

	// List traverses an intrusive linked list anchored at this object,
	// which must be a list head. Each visited link node is resolved back
	// to its containing structure of type elemType via the embedded
	// linkField (dotted paths allowed), the container_of operation.
	List(elemType, linkField string) ListIter

	// Owner resolves this object, assumed embedded at field linkField of
	// owningType, to a handle of the containing structure.
	Owner(owningType, linkField string) (Object, error)
}

// ListIter walks an intrusive list lazily. The sequence is finite and
// non-restartable; after Next returns false, Err reports whether the walk
// ended at the list head or failed.
type ListIter interface {
	Next() bool
	Object() Object
	Err() error
}

// Same reports whether two handles refer to the same target object.
func Same(a, b Object) bool {
	return a != nil && b != nil && a.Address() == b.Address()
}
