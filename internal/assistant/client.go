// Package assistant provides a typed HTTP client for the remote Assistants
// v2 REST API: threads, thread messages, and asynchronous runs.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const betaHeader = "assistants=v2"

// Option configures the Client.
type Option func(*Client)

// Client talks to an Assistants-v2-compatible endpoint. All requests carry
// the bearer credential and the beta version marker header.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// WithHTTPClient overrides the underlying *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithBaseURL points the client at a different API root, e.g. a test server
// or a compatible proxy. The default is the public OpenAI endpoint.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(u, "/")
	}
}

// New constructs a Client authenticated with the given API key.
func New(apiKey string, opts ...Option) *Client {
	cl := &Client{
		baseURL: "https://api.openai.com/v1",
		apiKey:  apiKey,
		// Per-call timeout. The run poll loop carries its own deadline and
		// issues many short requests through this client.
		http: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cl)
		}
	}
	if cl.http == nil {
		cl.http = &http.Client{Timeout: 60 * time.Second}
	}
	return cl
}

// CreateThread creates a new empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", nil, &thread); err != nil {
		return nil, err
	}
	if thread.ID == "" {
		return nil, fmt.Errorf("create thread: response missing thread id")
	}
	return &thread, nil
}

// CreateMessage appends a user message to the thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, text string) (*Message, error) {
	body := map[string]string{"role": "user", "content": text}
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateRun starts an asynchronous run of the given assistant against the
// thread and returns its handle and initial status.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	body := map[string]string{"assistant_id": assistantID}
	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &run); err != nil {
		return nil, err
	}
	if run.ID == "" || run.Status == "" {
		return nil, fmt.Errorf("create run: response missing run id or status")
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	if run.Status == "" {
		return nil, fmt.Errorf("get run: response missing status")
	}
	return &run, nil
}

// ListMessages fetches the full message list for a thread.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var list messageList
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// do issues one API request and strictly decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, envelope.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
