package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender int

const (
	User Sender = iota
	Bot
)

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// Message is an immutable entry of the conversation log.
type Message struct {
	ID        string
	Seq       int
	Content   string
	Sender    Sender
	CreatedAt time.Time
}

// Log is an ordered, append-only message history. It lives in memory only.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message at the end of the log and returns it.
func (l *Log) Append(sender Sender, content string) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := Message{
		ID:        newMessageID(),
		Seq:       len(l.messages),
		Content:   content,
		Sender:    sender,
		CreatedAt: time.Now(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// Messages returns a copy of the log in insertion order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// newMessageID returns a time-ordered id, falling back to a random one.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
