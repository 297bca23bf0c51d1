package membership

import "errors"

var (
	// ErrNotFound reports that no membership exists for the requested
	// triple.
	ErrNotFound = errors.New("membership not found")

	// ErrDuplicate is returned by the repository when the storage layer
	// rejects a triple that already exists. The store treats it as an
	// invariant failure because its own lookup should have caught the
	// duplicate first.
	ErrDuplicate = errors.New("membership already exists")
)
