package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func checkHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Expected bearer credential, got %q", got)
	}
	if got := r.Header.Get("OpenAI-Beta"); got != "assistants=v2" {
		t.Errorf("Expected beta marker header, got %q", got)
	}
}

func TestCreateThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkHeaders(t, r)
		if r.Method != http.MethodPost || r.URL.Path != "/threads" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, map[string]any{"id": "thread_abc", "object": "thread"})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	thread, err := c.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	if thread.ID != "thread_abc" {
		t.Errorf("Expected thread_abc, got %q", thread.ID)
	}
}

func TestCreateThreadMissingIDIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"object": "thread"})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	if _, err := c.CreateThread(context.Background()); err == nil {
		t.Fatal("Expected error for response without thread id")
	}
}

func TestCreateMessageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkHeaders(t, r)
		if r.URL.Path != "/threads/thread_abc/messages" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		if body["role"] != "user" || body["content"] != "hello" {
			t.Errorf("Unexpected body %v", body)
		}
		writeJSON(w, map[string]any{"id": "msg_1", "role": "user"})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	if _, err := c.CreateMessage(context.Background(), "thread_abc", "hello"); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
}

func TestCreateRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/thread_abc/runs" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		if body["assistant_id"] != "asst_1" {
			t.Errorf("Expected assistant_id asst_1, got %q", body["assistant_id"])
		}
		writeJSON(w, map[string]any{"id": "run_1", "status": "queued"})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	run, err := c.CreateRun(context.Background(), "thread_abc", "asst_1")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.Status != "queued" {
		t.Errorf("Expected queued, got %q", run.Status)
	}
	if run.Terminal() {
		t.Error("queued must not be terminal")
	}
}

func TestGetRunMissingStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "run_1"})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	if _, err := c.GetRun(context.Background(), "thread_abc", "run_1"); err == nil {
		t.Fatal("Expected error for run response without status")
	}
}

func TestListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/threads/thread_abc/messages" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, map[string]any{
			"object": "list",
			"data": []map[string]any{
				{
					"id": "msg_2", "role": "assistant", "created_at": 20,
					"content": []map[string]any{
						{"type": "text", "text": map[string]string{"value": "hi there"}},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	messages, err := c.ListMessages(context.Background(), "thread_abc")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if got := messages[0].Text(); got != "hi there" {
		t.Errorf("Expected text payload, got %q", got)
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	_, err := c.CreateThread(context.Background())
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Errorf("Expected upstream message in error, got %v", err)
	}
}

func TestMalformedResponseIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	if _, err := c.CreateThread(context.Background()); err == nil {
		t.Fatal("Expected error for malformed response body")
	}
}

// writeJSON is a test helper writing v as a JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}
