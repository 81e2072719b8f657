// Package widget holds the chat widget's per-session state: the ordered
// transcript, the typing indicator and the inline error, and runs the
// submit cycle against the chat service.
package widget

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"pathvest-web/internal/models"
)

var ErrEmptyMessage = errors.New("message is empty")

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// HistoryRole is the role name the chat service expects for this sender.
func (r Role) HistoryRole() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// State is a point-in-time copy of a widget. It shares nothing with the widget.
type State struct {
	Messages []Message `json:"messages"`
	Typing   bool      `json:"typing"`
	Error    string    `json:"error"`
}

// Replier produces a bot reply for the user's input and the turns before it.
type Replier interface {
	Reply(ctx context.Context, userInput string, history []models.ChatMessage) (string, error)
}

// Observer is called with a fresh snapshot after every state change.
type Observer func(State)

type Option func(*Widget)

func WithObserver(o Observer) Option {
	return func(w *Widget) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

// WithClock overrides the time source used for message IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		if now != nil {
			w.now = now
		}
	}
}

type Widget struct {
	mu        sync.Mutex
	messages  []Message
	pending   int
	errMsg    string
	seq       uint64
	replier   Replier
	now       func() time.Time
	observers []Observer

	// notifyMu orders observer calls; delivered is the newest seq they saw.
	notifyMu  sync.Mutex
	delivered uint64
}

func New(replier Replier, opts ...Option) *Widget {
	w := &Widget{
		messages: make([]Message, 0),
		replier:  replier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit runs one chat turn. Blank input returns ErrEmptyMessage and leaves
// the widget untouched. Any other error has already been recorded as the
// widget's error string by the time Submit returns.
func (w *Widget) Submit(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return ErrEmptyMessage
	}

	w.mu.Lock()
	history := toHistory(w.messages)
	w.messages = append(w.messages, w.newMessage(text, RoleUser))
	w.pending++
	w.errMsg = ""
	seq, snap := w.changedLocked()
	w.mu.Unlock()
	w.notify(seq, snap)

	reply, err := w.replier.Reply(ctx, text, history)

	w.mu.Lock()
	w.pending--
	if err != nil {
		w.errMsg = err.Error()
	} else {
		w.messages = append(w.messages, w.newMessage(reply, RoleBot))
	}
	seq, snap = w.changedLocked()
	w.mu.Unlock()
	w.notify(seq, snap)

	if err != nil {
		log.Printf("Error fetching bot response: %v", err)
		return err
	}
	return nil
}

// ClearError drops the inline error, as editing the input does.
func (w *Widget) ClearError() {
	w.mu.Lock()
	if w.errMsg == "" {
		w.mu.Unlock()
		return
	}
	w.errMsg = ""
	seq, snap := w.changedLocked()
	w.mu.Unlock()
	w.notify(seq, snap)
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Widget) Messages() []Message {
	return w.State().Messages
}

func (w *Widget) Typing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending > 0
}

func (w *Widget) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// stateLocked must be called with mu held.
func (w *Widget) stateLocked() State {
	msgs := make([]Message, len(w.messages))
	copy(msgs, w.messages)
	return State{
		Messages: msgs,
		Typing:   w.pending > 0,
		Error:    w.errMsg,
	}
}

// changedLocked must be called with mu held. It stamps the snapshot so
// observers never receive it after a newer one.
func (w *Widget) changedLocked() (uint64, State) {
	w.seq++
	return w.seq, w.stateLocked()
}

// newMessage must be called with mu held. IDs are the creation time in
// milliseconds, so two messages in the same millisecond share an ID.
func (w *Widget) newMessage(content string, role Role) Message {
	now := w.now()
	return Message{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Content:   content,
		Role:      role,
		Timestamp: now,
	}
}

// notify delivers snapshots in the order they were taken, dropping any
// that a concurrent turn has already superseded. Observers must not call
// back into Submit or ClearError.
func (w *Widget) notify(seq uint64, s State) {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	if seq <= w.delivered {
		return
	}
	w.delivered = seq
	for _, o := range w.observers {
		o(s)
	}
}

func toHistory(msgs []Message) []models.ChatMessage {
	history := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, models.ChatMessage{
			Role:    m.Role.HistoryRole(),
			Content: m.Content,
		})
	}
	return history
}
