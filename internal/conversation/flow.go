package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/api"
)

// User-facing messages.
const (
	MsgNoAnswer    = "unable to get an answer, please retry"
	MsgAnswerError = "error while getting the answer"
)

var (
	// ErrEmptyQuery is returned for blank questions.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoSession is returned when no session handle is available.
	ErrNoSession = errors.New("no session")
)

// Querier asks the service a question about an uploaded document.
type Querier interface {
	Chat(ctx context.Context, sessionID, query string) (*api.ChatResponse, error)
}

// Observer receives the flow's status transitions.
type Observer interface {
	ChatLoading(loading bool)
	AnswerReceived(msg Message)
	ChatFailed(message string)
}

// Turn is a question appended to the log and still waiting for its answer.
type Turn struct {
	SessionID string
	Query     Message
	log       *Log
}

// Flow sends questions and records the exchange in its log.
type Flow struct {
	mu       sync.RWMutex
	client   Querier
	observer Observer
	log      *Log
	logger   *log.Logger
}

// NewFlow creates a conversation flow with an empty log.
func NewFlow(client Querier, observer Observer, logger *log.Logger) *Flow {
	if logger == nil {
		logger = log.Default()
	}
	return &Flow{
		client:   client,
		observer: observer,
		log:      NewLog(),
		logger:   logger.WithPrefix("chat"),
	}
}

// Log returns the current message log.
func (f *Flow) Log() *Log {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.log
}

// ResetLog replaces the log with an empty one.
func (f *Flow) ResetLog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = NewLog()
}

// Begin validates the question, appends it to the log and reports loading.
// Validation failures make no request and leave the log untouched.
func (f *Flow) Begin(sessionID, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if sessionID == "" {
		return nil, ErrNoSession
	}

	l := f.Log()
	msg := l.Append(User, text)
	f.observer.ChatLoading(true)
	return &Turn{SessionID: sessionID, Query: msg, log: l}, nil
}

// Complete issues the query for turn and records its outcome. The observer
// sees exactly one outcome followed by loading=false.
func (f *Flow) Complete(ctx context.Context, turn *Turn) (answer Message, err error) {
	if turn == nil {
		return Message{}, errors.New("chat: no pending turn")
	}
	defer f.observer.ChatLoading(false)

	reported := false
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("chat panicked", "session_id", turn.SessionID, "panic", r)
			if !reported {
				f.observer.ChatFailed(MsgAnswerError)
			}
			answer, err = Message{}, fmt.Errorf("chat: panic: %v", r)
		}
	}()

	// Answers go to the log the question was asked in, even if it has
	// been replaced since.
	target := turn.log
	if target == nil {
		target = f.Log()
	}

	resp, err := f.client.Chat(ctx, turn.SessionID, turn.Query.Content)
	if err != nil && !errors.Is(err, api.ErrMalformedResponse) {
		reported = true
		f.observer.ChatFailed(api.DetailOr(err, MsgAnswerError))
		return Message{}, fmt.Errorf("chat: %w", err)
	}
	if err != nil || resp == nil || resp.Answer == "" {
		reported = true
		f.logger.Warn("chat response has no answer", "session_id", turn.SessionID)
		f.observer.ChatFailed(MsgNoAnswer)
		return Message{}, fmt.Errorf("chat: %w", api.ErrMalformedResponse)
	}

	msg := target.Append(Bot, resp.Answer)
	reported = true
	f.observer.AnswerReceived(msg)
	return msg, nil
}

// Send runs Begin and Complete in sequence.
func (f *Flow) Send(ctx context.Context, sessionID, text string) (Message, error) {
	turn, err := f.Begin(sessionID, text)
	if err != nil {
		return Message{}, err
	}
	return f.Complete(ctx, turn)
}
