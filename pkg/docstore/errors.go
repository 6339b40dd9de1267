package docstore

import "errors"

var (
	// ErrNotFound indicates no document matched the identifier or filter
	ErrNotFound = errors.New("docstore.not_found")

	// ErrNotInitialized indicates an operation on a closed or unopened database handle
	ErrNotInitialized = errors.New("docstore.not_initialized")

	// ErrInvalidDocument indicates a nil document was passed to a write operation
	ErrInvalidDocument = errors.New("docstore.invalid_document")
)
