package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role tags a transcript message with its origin.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// Message is one transcript entry.
type Message struct {
	Role    Role
	Content string
	Time    time.Time
}

// Transcript is the append-only conversation history for one session.
type Transcript struct {
	id      string
	started time.Time

	mu       sync.RWMutex
	messages []Message
}

// NewTranscript creates an empty transcript with a fresh session ID.
func NewTranscript() *Transcript {
	return &Transcript{
		id:      uuid.New().String(),
		started: time.Now(),
	}
}

// ID returns the session identifier.
func (t *Transcript) ID() string {
	return t.id
}

// StartedAt returns the session start time.
func (t *Transcript) StartedAt() time.Time {
	return t.started
}

// Append adds a message and returns it with its timestamp set.
func (t *Transcript) Append(role Role, content string) Message {
	msg := Message{Role: role, Content: content, Time: time.Now()}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()

	return msg
}

// Messages returns a copy of the history in append order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
