package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
)

var ErrEmptyMessage = errors.New("message content is required")

// Responder produces the assistant reply for the full transcript.
type Responder interface {
	Respond(ctx context.Context, turns []chat.Turn) (string, error)
}

// TranscriptStore persists the transcript on explicit save/load.
type TranscriptStore interface {
	Save(turns []chat.Turn) error
	Load() (Snapshot, error)
}

// Option customises a Session.
type Option func(*Session)

// WithClock overrides the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session owns the in-memory transcript and exposes the shell's commands.
// Each command runs to completion under the session lock, so callers observe the
// same one-interaction-at-a-time behaviour regardless of how many requests arrive.
type Session struct {
	mu         sync.Mutex
	id         string
	transcript *chat.Transcript
	store      TranscriptStore
	responder  Responder
	now        func() time.Time
}

// NewSession creates an empty session. Call Start to pick up a saved transcript.
func NewSession(store TranscriptStore, responder Responder, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		transcript: chat.NewTranscript(nil),
		store:      store,
		responder:  responder,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Start loads the saved transcript, if any, at session start.
func (s *Session) Start() (LoadState, error) {
	return s.Load()
}

// Turns returns the current transcript.
func (s *Session) Turns() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Turns()
}

// Submit appends the user's turn, asks the responder and appends the reply.
// When the responder fails the user's turn stays and no assistant turn is added.
func (s *Session) Submit(ctx context.Context, content string) (chat.Turn, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Turn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript.Append(chat.NewTurn(chat.RoleUser, content, s.now()))

	reply, err := s.responder.Respond(ctx, s.transcript.Turns())
	if err != nil {
		log.Printf("[chat] session=%s completion failed, keeping user turn: %v", s.id, err)
		return chat.Turn{}, err
	}

	assistant := chat.NewTurn(chat.RoleAssistant, reply, s.now())
	s.transcript.Append(assistant)

	log.Printf("[chat] session=%s turns=%d", s.id, s.transcript.Len())
	return assistant, nil
}

// Save writes the transcript to the store. The in-memory transcript is unaffected by failures.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(s.transcript.Turns()); err != nil {
		log.Printf("[chat] session=%s save failed: %v", s.id, err)
		return err
	}

	log.Printf("[chat] session=%s saved %d turns", s.id, s.transcript.Len())
	return nil
}

// Load replaces the transcript with the saved one. A missing file empties the
// transcript and reports StateEmpty; a failed load leaves the transcript untouched.
func (s *Session) Load() (LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load()
	if err != nil {
		log.Printf("[chat] session=%s load failed: %v", s.id, err)
		return StateEmpty, err
	}

	switch snapshot.State {
	case StateFound:
		s.transcript.Replace(snapshot.Turns)
		log.Printf("[chat] session=%s loaded %d turns", s.id, s.transcript.Len())
	default:
		s.transcript.Reset()
		log.Printf("[chat] session=%s no saved chat history found", s.id)
	}
	return snapshot.State, nil
}

// Clear empties the in-memory transcript. The saved file is left alone.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript.Reset()
	log.Printf("[chat] session=%s cleared", s.id)
}
