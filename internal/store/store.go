// Package store provides the durable userId→threadId session mapping and its
// persistence backends.
package store

import "context"

// CreateThreadFunc creates a conversation thread on the remote service and
// returns its handle. Invoked by GetOrCreate at most once per call.
type CreateThreadFunc func(ctx context.Context) (string, error)

// SessionStore is the durable mapping from user identifier to conversation
// thread handle. It is the single source of truth for whether a user has an
// open conversation.
type SessionStore interface {
	// Get looks up the thread handle for a user. A missing entry is not an
	// error; ok reports presence.
	Get(ctx context.Context, userID string) (threadID string, ok bool, err error)

	// GetOrCreate returns the existing handle for userID, or invokes create
	// exactly once, persists the result, and returns it. Callers serialize
	// concurrent requests for the same user; GetOrCreate itself only
	// guarantees a single create per invocation.
	GetOrCreate(ctx context.Context, userID string, create CreateThreadFunc) (string, error)

	// Reset removes the user's entry if present and reports whether one
	// existed. An absent entry is not an error.
	Reset(ctx context.Context, userID string) (bool, error)

	// Close releases backend resources.
	Close() error
}
