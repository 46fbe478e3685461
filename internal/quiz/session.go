package quiz

import (
	"sync"

	"github.com/example/quizbot/pkg/models"
)

// Session holds one user's in-flight quiz: a fixed question sequence
// captured at start, a cursor, and the running score. Sessions live only
// in process memory; the registry owns their lifetime.
type Session struct {
	UserID       string
	Questions    []models.Question
	CurrentIdx   int
	CorrectCount int

	// filter labels captured at start, for the result log row
	subject    string
	difficulty string

	// mu serializes answer submissions for this session. It must be held
	// across the verify-advance-complete sequence so two concurrent
	// submissions can never both advance from the same index.
	mu sync.Mutex
}

// completed reports whether the cursor has run past the last question.
// Callers must hold mu.
func (s *Session) completed() bool {
	return s.CurrentIdx >= len(s.Questions)
}

// Registry is the process-wide mapping from user id to active session.
// One active quiz per user: starting a new one overwrites the old with no
// warning.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Start creates or overwrites the session for a user
func (r *Registry) Start(userID string, questions []models.Question) *Session {
	s := &Session{UserID: userID, Questions: questions}
	r.mu.Lock()
	r.sessions[userID] = s
	r.mu.Unlock()
	return s
}

// Get returns the user's session, or nil when none is active
func (r *Registry) Get(userID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID]
}

// Remove drops the user's session if present
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}

// Len returns the number of active sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
