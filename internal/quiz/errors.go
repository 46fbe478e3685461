package quiz

import "errors"

// Error kinds surfaced to callers. All of them are recoverable at the
// transport boundary and map to a user-facing message; none should crash
// the process.
var (
	// ErrNotFound means the store has zero candidates even after the
	// single filter-relaxation retry.
	ErrNotFound = errors.New("no questions available")

	// ErrInvalidInput rejects empty or whitespace-only answer text before
	// any lookup happens.
	ErrInvalidInput = errors.New("answer cannot be empty")

	// ErrNoActiveSession means no quiz session exists for the user, or the
	// session already completed.
	ErrNoActiveSession = errors.New("no active quiz session")

	// ErrUnknownQuestion means an answer check referenced an id absent
	// from the store.
	ErrUnknownQuestion = errors.New("unknown question id")
)
