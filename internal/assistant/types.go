package assistant

// Thread is a durable server-side conversation log.
type Thread struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
}

// Run statuses the coordinator treats as terminal. Any other value is
// non-terminal and keeps the poll loop going.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one asynchronous job instance processing a thread.
type Run struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	ThreadID  string `json:"thread_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// Terminal reports whether the run has reached a status after which no
// further transition occurs.
func (r *Run) Terminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Message is one entry in a thread's message log.
type Message struct {
	ID        string        `json:"id"`
	Object    string        `json:"object"`
	ThreadID  string        `json:"thread_id"`
	Role      string        `json:"role"`
	CreatedAt int64         `json:"created_at"`
	Content   []ContentPart `json:"content"`
}

// ContentPart is one piece of a message body. Only "text" parts carry a
// payload this service cares about.
type ContentPart struct {
	Type string     `json:"type"`
	Text *TextValue `json:"text,omitempty"`
}

// TextValue holds the textual payload of a "text" content part.
type TextValue struct {
	Value string `json:"value"`
}

// Text returns the message's first textual payload, or "" if the message
// carries no text part.
func (m *Message) Text() string {
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}

// messageList is the list envelope returned by the messages endpoint.
type messageList struct {
	Object string    `json:"object"`
	Data   []Message `json:"data"`
}

// apiError is the error envelope returned by the remote service.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
