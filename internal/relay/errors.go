package relay

import "errors"

// Failure kinds surfaced to the HTTP boundary. Anything else coming out of
// the coordinator is a generic upstream/persistence failure.
var (
	// ErrMissingInput reports an absent user identifier or message text,
	// detected before any remote call is made.
	ErrMissingInput = errors.New("missing userId or message")

	// ErrRunFailed reports a run that reached the terminal "failed" status.
	ErrRunFailed = errors.New("assistant run failed")

	// ErrRunTimeout reports a run that did not reach a terminal status
	// within the configured deadline.
	ErrRunTimeout = errors.New("assistant run timed out")
)
