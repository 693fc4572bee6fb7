// Package relay drives one request-response cycle against the remote
// conversational service: resolve the user's thread, append the message,
// start a run, poll it to a terminal status, and extract the reply.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bensooter/readai/internal/assistant"
	"github.com/bensooter/readai/internal/store"
)

// NoReplySentinel is returned as a successful reply when a completed run left
// no assistant-authored message on the thread.
const NoReplySentinel = "No assistant reply found."

// AssistantClient is the slice of the remote service contract the
// coordinator consumes. *assistant.Client implements it.
type AssistantClient interface {
	CreateThread(ctx context.Context) (*assistant.Thread, error)
	CreateMessage(ctx context.Context, threadID, text string) (*assistant.Message, error)
	CreateRun(ctx context.Context, threadID, assistantID string) (*assistant.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*assistant.Run, error)
	ListMessages(ctx context.Context, threadID string) ([]assistant.Message, error)
}

// Options tune the run poll loop.
type Options struct {
	PollInterval time.Duration // default 1s
	RunTimeout   time.Duration // 0 = no deadline
}

// Coordinator orchestrates the asynchronous run lifecycle per inbound
// message. It keeps no per-request state beyond the duration of a call.
type Coordinator struct {
	store        store.SessionStore
	client       AssistantClient
	assistantID  string
	pollInterval time.Duration
	runTimeout   time.Duration

	// userLocks serializes requests per user so two simultaneous messages
	// from one user queue instead of interleaving runs on a shared thread.
	userLocks sync.Map
}

// New creates a Coordinator running every conversation against the fixed
// assistant identity.
func New(sessions store.SessionStore, client AssistantClient, assistantID string, opts Options) *Coordinator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Coordinator{
		store:        sessions,
		client:       client,
		assistantID:  assistantID,
		pollInterval: opts.PollInterval,
		runTimeout:   opts.RunTimeout,
	}
}

// SendMessage relays one user message and returns the assistant's reply.
func (c *Coordinator) SendMessage(ctx context.Context, userID, message string) (string, error) {
	if userID == "" || message == "" {
		return "", ErrMissingInput
	}

	unlock := c.lockUser(userID)
	defer unlock()

	threadID, err := c.store.GetOrCreate(ctx, userID, func(ctx context.Context) (string, error) {
		thread, err := c.client.CreateThread(ctx)
		if err != nil {
			return "", fmt.Errorf("create thread: %w", err)
		}
		slog.Info("Created thread", "user_id", userID, "thread_id", thread.ID)
		return thread.ID, nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Relaying message", "user_id", userID, "thread_id", threadID)

	if _, err := c.client.CreateMessage(ctx, threadID, message); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	run, err := c.client.CreateRun(ctx, threadID, c.assistantID)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}

	run, err = c.waitForRun(ctx, threadID, run)
	if err != nil {
		return "", err
	}

	if run.Status == assistant.RunStatusFailed {
		return "", fmt.Errorf("%w: run %s", ErrRunFailed, run.ID)
	}

	messages, err := c.client.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("fetch messages: %w", err)
	}

	reply, ok := latestAssistantReply(messages)
	if !ok {
		slog.Warn("Run completed without assistant reply", "user_id", userID, "thread_id", threadID, "run_id", run.ID)
		return NoReplySentinel, nil
	}

	slog.Info("Assistant replied", "user_id", userID, "thread_id", threadID, "run_id", run.ID)
	return reply, nil
}

// ResetUser clears the user's conversation mapping. It reports false, not an
// error, for an unknown or empty user.
func (c *Coordinator) ResetUser(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	unlock := c.lockUser(userID)
	defer unlock()

	removed, err := c.store.Reset(ctx, userID)
	if err != nil {
		return false, err
	}
	if removed {
		slog.Info("Reset thread", "user_id", userID)
	}
	return removed, nil
}

// lockUser acquires the per-user mutex, creating it on first use. Locks are
// never removed; their footprint is bounded by the number of distinct users.
func (c *Coordinator) lockUser(userID string) func() {
	lock, _ := c.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// waitForRun polls the run until it reaches a terminal status, the configured
// deadline expires, or the context is canceled. It stops at the first
// terminal observation.
func (c *Coordinator) waitForRun(ctx context.Context, threadID string, run *assistant.Run) (*assistant.Run, error) {
	if run.Terminal() {
		return run, nil
	}

	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: run %s still %q after %s", ErrRunTimeout, run.ID, run.Status, c.runTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}

		next, err := c.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: run %s still %q after %s", ErrRunTimeout, run.ID, run.Status, c.runTimeout)
			}
			return nil, fmt.Errorf("poll run: %w", err)
		}
		run = next
		if run.Terminal() {
			return run, nil
		}
	}
}

// latestAssistantReply selects the assistant-authored message with the latest
// creation time. The service's list order is not assumed; ties keep it.
func latestAssistantReply(messages []assistant.Message) (string, bool) {
	var replies []assistant.Message
	for _, m := range messages {
		if m.Role == "assistant" {
			replies = append(replies, m)
		}
	}
	if len(replies) == 0 {
		return "", false
	}

	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].CreatedAt < replies[j].CreatedAt
	})
	return replies[len(replies)-1].Text(), true
}
