package document

import "errors"

var (
	// ErrDocumentNotFound indicates the document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNotIndexed indicates an operation that requires a live remote file
	// was attempted on a PENDING or FAILED document.
	ErrNotIndexed = errors.New("document is not indexed")
	// ErrAlreadyIndexed indicates a retry was attempted on a document that
	// is already live in the remote index.
	ErrAlreadyIndexed = errors.New("document is already indexed")
	// ErrInvalidInput indicates invalid upload input.
	ErrInvalidInput = errors.New("invalid document input")
)
