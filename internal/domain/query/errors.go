package query

import "errors"

var (
	// ErrInvalidQuestion indicates a malformed question (blank). Rejected
	// before any lookup or remote call.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrEmptyProject indicates the project cannot answer: it is archived
	// or has no indexed documents yet. Checked before any remote call.
	ErrEmptyProject = errors.New("project has no queryable index")
	// ErrAnswerService indicates the external answer service failed. The
	// failure is surfaced verbatim; no fallback answer is synthesized.
	ErrAnswerService = errors.New("answer service failed")
)
