package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pathvest-web/internal/models"
)

type stubReplier struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	lastIn   string
	lastHist []models.ChatMessage
}

func (s *stubReplier) Reply(ctx context.Context, userInput string, history []models.ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastIn = userInput
	s.lastHist = history
	return s.reply, s.err
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestSubmit_EmptyInputIsIgnored(t *testing.T) {
	inputs := []string{"", "   ", "\n\t "}

	for _, in := range inputs {
		replier := &stubReplier{reply: "unused"}
		w := New(replier)

		if err := w.Submit(context.Background(), in); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", in, err)
		}
		if len(w.Messages()) != 0 {
			t.Fatalf("expected no messages for %q", in)
		}
		if replier.calls != 0 {
			t.Fatalf("expected no upstream call for %q", in)
		}
	}
}

func TestSubmit_SuccessAppendsBotReply(t *testing.T) {
	replier := &stubReplier{reply: "Hi there"}
	w := New(replier, WithClock(fixedClock()))

	if err := w.Submit(context.Background(), "  Hello "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := w.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Hello" {
		t.Fatalf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != RoleBot || msgs[1].Content != "Hi there" {
		t.Fatalf("unexpected bot message: %+v", msgs[1])
	}
	if msgs[0].ID == msgs[1].ID {
		t.Fatalf("expected distinct IDs with an advancing clock")
	}
	if replier.lastIn != "Hello" {
		t.Fatalf("expected trimmed input upstream, got %q", replier.lastIn)
	}
	if w.Err() != "" {
		t.Fatalf("expected no error, got %q", w.Err())
	}
	if w.Typing() {
		t.Fatalf("expected typing to be false after reply")
	}
}

func TestSubmit_HistoryExcludesNewMessage(t *testing.T) {
	replier := &stubReplier{reply: "first answer"}
	w := New(replier, WithClock(fixedClock()))

	if err := w.Submit(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replier.lastHist) != 0 {
		t.Fatalf("expected empty history on first turn, got %+v", replier.lastHist)
	}

	replier.reply = "second answer"
	if err := w.Submit(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "first answer"},
	}
	if len(replier.lastHist) != len(want) {
		t.Fatalf("expected %d history turns, got %d", len(want), len(replier.lastHist))
	}
	for i := range want {
		if replier.lastHist[i] != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, replier.lastHist[i], want[i])
		}
	}
}

func TestSubmit_UpstreamFailureSetsError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"status error", errors.New("API error: 500")},
		{"network failure", errors.New("chat request failed: connection refused")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(&stubReplier{err: tc.err})

			err := w.Submit(context.Background(), "Test")
			if err == nil {
				t.Fatalf("expected error from Submit")
			}

			msgs := w.Messages()
			if len(msgs) != 1 || msgs[0].Role != RoleUser {
				t.Fatalf("expected only the user message, got %+v", msgs)
			}
			if w.Err() != tc.err.Error() {
				t.Fatalf("expected error %q, got %q", tc.err.Error(), w.Err())
			}
			if w.Typing() {
				t.Fatalf("expected typing to return to false")
			}
		})
	}
}

func TestSubmit_NewSubmissionClearsError(t *testing.T) {
	replier := &stubReplier{err: errors.New("API error: 502")}
	w := New(replier)

	w.Submit(context.Background(), "one")
	if w.Err() == "" {
		t.Fatalf("expected error after failed turn")
	}

	replier.err = nil
	replier.reply = "ok"
	if err := w.Submit(context.Background(), "two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Err() != "" {
		t.Fatalf("expected error cleared, got %q", w.Err())
	}
	if n := len(w.Messages()); n != 3 {
		t.Fatalf("expected 3 messages, got %d", n)
	}
}

func TestClearError(t *testing.T) {
	var notified int
	w := New(&stubReplier{err: errors.New("boom")}, WithObserver(func(State) { notified++ }))

	w.Submit(context.Background(), "hi")
	before := notified

	w.ClearError()
	if w.Err() != "" {
		t.Fatalf("expected error cleared")
	}
	if notified != before+1 {
		t.Fatalf("expected one notification for clearing, got %d", notified-before)
	}

	w.ClearError()
	if notified != before+1 {
		t.Fatalf("expected no notification when there is nothing to clear")
	}
}

type blockingReplier struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingReplier) Reply(ctx context.Context, userInput string, history []models.ChatMessage) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return "reply to " + userInput, nil
}

func TestSubmit_TypingWhileAnyRequestOutstanding(t *testing.T) {
	replier := &blockingReplier{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := New(replier)

	var wg sync.WaitGroup
	for _, in := range []string{"a", "b"} {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			w.Submit(context.Background(), in)
		}(in)
	}

	<-replier.started
	<-replier.started
	if !w.Typing() {
		t.Fatalf("expected typing while requests are outstanding")
	}

	replier.release <- struct{}{}
	// One request is still in flight.
	for i := 0; i < 100 && len(w.Messages()) < 3; i++ {
		time.Sleep(time.Millisecond)
	}
	if !w.Typing() {
		t.Fatalf("expected typing while one request remains")
	}

	replier.release <- struct{}{}
	wg.Wait()

	if w.Typing() {
		t.Fatalf("expected typing false after both replies")
	}
	if n := len(w.Messages()); n != 4 {
		t.Fatalf("expected 4 messages, got %d", n)
	}
}

func TestObserverNeverSeesStaleSnapshotLast(t *testing.T) {
	replier := &blockingReplier{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	var (
		mu      sync.Mutex
		last    State
		once    sync.Once
		stalled = make(chan struct{})
	)
	observer := func(s State) {
		if s.Typing && len(s.Messages) == 3 {
			// Hold the first completion's delivery while the second lands.
			once.Do(func() {
				close(stalled)
				time.Sleep(50 * time.Millisecond)
			})
		}
		mu.Lock()
		last = s
		mu.Unlock()
	}
	w := New(replier, WithObserver(observer))

	var wg sync.WaitGroup
	for _, in := range []string{"a", "b"} {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			w.Submit(context.Background(), in)
		}(in)
	}

	<-replier.started
	<-replier.started

	replier.release <- struct{}{}
	<-stalled
	replier.release <- struct{}{}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if last.Typing {
		t.Fatalf("expected last delivered snapshot to have typing false")
	}
	if n := len(last.Messages); n != 4 {
		t.Fatalf("expected last delivered snapshot to hold 4 messages, got %d", n)
	}
}

func TestObserverSeesTypingTransitions(t *testing.T) {
	var states []State
	w := New(&stubReplier{reply: "pong"}, WithObserver(func(s State) { states = append(states, s) }))

	w.Submit(context.Background(), "ping")

	if len(states) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(states))
	}
	if !states[0].Typing || len(states[0].Messages) != 1 {
		t.Fatalf("expected first snapshot typing with the user message, got %+v", states[0])
	}
	if states[1].Typing || len(states[1].Messages) != 2 {
		t.Fatalf("expected second snapshot idle with the reply, got %+v", states[1])
	}
}

func TestStateIsACopy(t *testing.T) {
	w := New(&stubReplier{reply: "pong"})
	w.Submit(context.Background(), "ping")

	s := w.State()
	s.Messages[0].Content = "mutated"

	if w.Messages()[0].Content != "ping" {
		t.Fatalf("snapshot mutation leaked into the widget")
	}
}
