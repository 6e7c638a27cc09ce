// Package coordinator ties the session store, the upload flow and the
// conversation flow together behind one shared loading/error/status slot.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/conversation"
	"github.com/entrepeneur4lyf/docchat/internal/events"
	"github.com/entrepeneur4lyf/docchat/internal/session"
	"github.com/entrepeneur4lyf/docchat/internal/upload"
)

// ErrBusy is returned when an operation is started while another one is in flight.
var ErrBusy = errors.New("another request is in progress")

// Client is the external service used by both flows.
type Client interface {
	upload.Uploader
	conversation.Querier
}

// Coordinator owns the session store, both flows and the shared slot.
// At most one upload or chat request is in flight at a time.
type Coordinator struct {
	mu            sync.RWMutex
	state         State
	uploadLoading bool
	chatLoading   bool
	inflight      bool

	store  *session.Store
	upload *upload.Flow
	chat   *conversation.Flow
	broker *events.Broker[State]
	logger *log.Logger
}

// New wires the flows to client and store.
func New(store *session.Store, client Client, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	c := &Coordinator{
		store:  store,
		broker: events.NewBroker[State](events.WithLogger(logger)),
		logger: logger.WithPrefix("coordinator"),
	}
	c.upload = upload.NewFlow(client, uploadObserver{c}, logger)
	c.chat = conversation.NewFlow(client, chatObserver{c}, logger)
	return c
}

// Start loads the persisted session. Storage problems leave the session
// Empty without reporting an error.
func (c *Coordinator) Start(ctx context.Context) State {
	sess, ok := c.store.Load(ctx)
	return c.update(events.StateChanged, func(s *State) {
		if ok {
			s.SessionID = sess.ID
			s.Status = StatusLoaded
		}
	})
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe delivers a State snapshot after every change until ctx is done.
func (c *Coordinator) Subscribe(ctx context.Context) <-chan events.Event[State] {
	return c.broker.Subscribe(ctx)
}

// Messages returns the conversation of the current session.
func (c *Coordinator) Messages() []conversation.Message {
	return c.chat.Log().Messages()
}

// Candidate returns the file waiting to be uploaded.
func (c *Coordinator) Candidate() (upload.File, bool) {
	return c.upload.Candidate()
}

// SelectFile makes f the upload candidate.
func (c *Coordinator) SelectFile(f upload.File) error {
	return c.upload.Select(f)
}

// SelectPath makes the file at path the upload candidate.
func (c *Coordinator) SelectPath(path string) error {
	return c.upload.SelectPath(path)
}

// ClearFile drops the upload candidate.
func (c *Coordinator) ClearFile() {
	c.upload.Clear()
}

// CanUpload reports whether the upload trigger should be enabled.
func (c *Coordinator) CanUpload() bool {
	_, ok := c.upload.Candidate()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ok && !c.inflight
}

// CanSend reports whether the send trigger should be enabled for text.
func (c *Coordinator) CanSend(text string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.inflight && c.state.HasSession() && strings.TrimSpace(text) != ""
}

// SubmitUpload uploads the candidate. On success the new session is committed
// and the conversation starts over.
func (c *Coordinator) SubmitUpload(ctx context.Context) (string, error) {
	if !c.acquire() {
		return "", ErrBusy
	}
	defer c.release()
	return c.upload.Submit(ctx)
}

// BeginSend appends text to the conversation and reserves the request slot.
// Every successful BeginSend must be followed by CompleteSend.
func (c *Coordinator) BeginSend(text string) (*conversation.Turn, error) {
	if !c.acquire() {
		return nil, ErrBusy
	}
	turn, err := c.chat.Begin(c.store.ID(), text)
	if err != nil {
		c.release()
		return nil, err
	}
	c.publish(events.MessageAppended)
	return turn, nil
}

// CompleteSend asks the question of turn and releases the request slot.
func (c *Coordinator) CompleteSend(ctx context.Context, turn *conversation.Turn) (conversation.Message, error) {
	defer c.release()
	return c.chat.Complete(ctx, turn)
}

// Send asks one question and waits for the answer.
func (c *Coordinator) Send(ctx context.Context, text string) (conversation.Message, error) {
	turn, err := c.BeginSend(text)
	if err != nil {
		return conversation.Message{}, err
	}
	return c.CompleteSend(ctx, turn)
}

// Close shuts down subscriptions and the session backend.
func (c *Coordinator) Close() error {
	c.broker.Shutdown()
	return c.store.Close()
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight {
		return false
	}
	c.inflight = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false
}

func (c *Coordinator) update(eventType events.EventType, fn func(*State)) State {
	c.mu.Lock()
	fn(&c.state)
	c.state.Loading = c.uploadLoading || c.chatLoading
	snapshot := c.state
	c.mu.Unlock()

	c.broker.Publish(eventType, snapshot)
	return snapshot
}

func (c *Coordinator) publish(eventType events.EventType) {
	c.broker.Publish(eventType, c.State())
}

func (c *Coordinator) setLoading(src Source, loading bool) {
	c.update(events.StateChanged, func(s *State) {
		switch src {
		case SourceUpload:
			c.uploadLoading = loading
		case SourceChat:
			c.chatLoading = loading
		}
		if loading {
			s.Source = src
		}
	})
}

func (c *Coordinator) fail(src Source, message string) {
	c.update(events.StateChanged, func(s *State) {
		s.Source = src
		s.Error = message
		s.Status = ""
	})
}

type uploadObserver struct{ c *Coordinator }

func (o uploadObserver) UploadLoading(loading bool) {
	o.c.setLoading(SourceUpload, loading)
}

func (o uploadObserver) UploadSucceeded(ctx context.Context, sessionID string) {
	c := o.c
	if err := c.store.Commit(ctx, sessionID); err != nil {
		c.logger.Warn("session not persisted", "session_id", sessionID, "err", err)
	}
	c.chat.ResetLog()
	c.update(events.SessionCommitted, func(s *State) {
		s.Source = SourceUpload
		s.SessionID = c.store.ID()
		s.Error = ""
		s.Status = StatusUploaded
	})
}

func (o uploadObserver) UploadFailed(message string) {
	o.c.fail(SourceUpload, message)
}

type chatObserver struct{ c *Coordinator }

func (o chatObserver) ChatLoading(loading bool) {
	o.c.setLoading(SourceChat, loading)
}

func (o chatObserver) AnswerReceived(msg conversation.Message) {
	o.c.update(events.MessageAppended, func(s *State) {
		s.Source = SourceChat
		s.Error = ""
	})
}

func (o chatObserver) ChatFailed(message string) {
	o.c.fail(SourceChat, message)
}
