package ai

import "errors"

var (
	// ErrEmptyPrompt is returned for empty or whitespace-only input.
	// No backend is contacted.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrInsufficientTokens is returned when the user's balance cannot
	// cover the request cost. No backend is contacted.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrServiceUnavailable is the generic failure surfaced when the
	// backends could not produce a response. Upstream error details are
	// logged, never returned to the caller.
	ErrServiceUnavailable = errors.New("AI service temporarily unavailable")

	// ErrUnknownBackend is returned when a caller names a backend that
	// is not configured.
	ErrUnknownBackend = errors.New("unknown AI backend")

	// ErrNoProviders is a configuration failure: no backend has a
	// credential. Raised at construction, not per request.
	ErrNoProviders = errors.New("no AI backend credentials configured")
)
