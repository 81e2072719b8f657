package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pathvest-web/internal/widget"
)

// Factory builds the widget for a new browser session.
type Factory func(id uuid.UUID) *widget.Widget

type entry struct {
	widget   *widget.Widget
	lastSeen time.Time
}

// Store maps browser sessions to their chat widget. Nothing is persisted;
// a swept session starts over with an empty transcript.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	idle     time.Duration
	factory  Factory
	now      func() time.Time
}

func NewStore(idle time.Duration, factory Factory) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*entry),
		idle:     idle,
		factory:  factory,
		now:      time.Now,
	}
}

// Widget returns the session's widget, creating it on first use.
func (s *Store) Widget(id uuid.UUID) *widget.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{widget: s.factory(id)}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return e.widget
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle longer than the store's timeout. Sessions with
// a reply still outstanding are kept.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if s.now().Sub(e.lastSeen) > s.idle && !e.widget.Typing() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps once per idle period until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("Swept %d idle chat sessions", n)
			}
		}
	}
}
