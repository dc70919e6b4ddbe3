package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericlbarreto/conta-ai/internal/domain/analysis"
	"github.com/ericlbarreto/conta-ai/internal/domain/document"
)

// Role identifies who wrote a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation transcript.
type Turn struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds one conversation: its uploaded documents and an
// append-only transcript. Replies are committed in the order their
// questions were submitted, even when answers finish out of order; Begin
// hands out a ticket and Commit blocks until every earlier ticket has
// committed.
type Session struct {
	id string

	mu         sync.Mutex
	cond       *sync.Cond
	docs       []document.Document
	turns      []Turn
	nextTicket uint64
	nextCommit uint64
	lastActive time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	s := &Session{id: id, lastActive: time.Now()}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddDocument attaches a processed document to the session.
func (s *Session) AddDocument(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	s.lastActive = time.Now()
}

// Documents returns a copy of the attached documents in upload order.
func (s *Session) Documents() []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Document(nil), s.docs...)
}

// Datasets returns the per-document datasets in upload order.
func (s *Session) Datasets() []analysis.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	sets := make([]analysis.Dataset, 0, len(s.docs))
	for _, doc := range s.docs {
		sets = append(sets, doc.Dataset)
	}
	return sets
}

// Begin appends the user turn to the transcript and returns the commit
// ticket for its reply along with the turn as appended.
func (s *Session) Begin(text string) (uint64, Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Turn{
		ID:        uuid.New(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
	s.turns = append(s.turns, turn)
	ticket := s.nextTicket
	s.nextTicket++
	s.lastActive = time.Now()
	return ticket, turn
}

// Reserve takes a commit ticket without appending a user turn, for
// system-generated transcript entries.
func (s *Session) Reserve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket := s.nextTicket
	s.nextTicket++
	return ticket
}

// Commit appends the assistant reply for the given ticket, waiting until
// all earlier tickets have committed.
func (s *Session) Commit(ticket uint64, reply Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.nextCommit != ticket {
		s.cond.Wait()
	}
	s.turns = append(s.turns, reply)
	s.nextCommit++
	s.lastActive = time.Now()
	s.cond.Broadcast()
}

// History returns a copy of the transcript.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// ClearHistory drops the transcript but keeps the documents.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.lastActive = time.Now()
}

// ClearDocuments drops the uploaded documents but keeps the transcript.
func (s *Session) ClearDocuments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.lastActive = time.Now()
}

// LastActive reports the time of the last session mutation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
