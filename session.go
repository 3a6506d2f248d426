package cubebot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState represents the lifecycle state of a solve session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionSolving
	SessionFaulted
	SessionAborted
	SessionDone
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionSolving:
		return "solving"
	case SessionFaulted:
		return "faulted"
	case SessionAborted:
		return "aborted"
	case SessionDone:
		return "done"
	default:
		return "unknown"
	}
}

// Session aggregates one solve attempt: the authoritative cube state, the
// pending move queue, and execution progress. It is created at the start
// of a solve and discarded on completion or abort.
//
// The cube and queue are mutated only through Commit and Fault, called by
// the sync monitor after the orchestrator confirms physical completion.
// That single-writer discipline is the concurrency model; the mutex only
// protects reads from other goroutines (status displays, the web surface).
type Session struct {
	id      string
	started time.Time

	mu        sync.RWMutex
	state     SessionState
	cube      *Cube
	queue     []Move
	completed int
	fault     error
	ended     time.Time
}

// NewSession creates a session holding the given cube state and the move
// queue that should bring it to solved.
func NewSession(cube *Cube, queue []Move) *Session {
	state := SessionSolving
	if len(queue) == 0 {
		// Nothing to execute.
		state = SessionDone
	}
	return &Session{
		id:      uuid.New().String(),
		started: time.Now(),
		state:   state,
		cube:    cube.Clone(),
		queue:   append([]Move(nil), queue...),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns the session creation time.
func (s *Session) StartedAt() time.Time {
	return s.started
}

// State returns the session lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Cube returns a copy of the authoritative cube state: the state after
// the last fully confirmed move, never ahead of physical reality.
func (s *Session) Cube() *Cube {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cube.Clone()
}

// Queue returns a copy of the full move queue.
func (s *Session) Queue() []Move {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Move(nil), s.queue...)
}

// Completed returns how many moves have been confirmed and committed.
func (s *Session) Completed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// Current returns the next move to execute, or false when the queue is
// exhausted or the session is no longer solving.
func (s *Session) Current() (Move, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != SessionSolving || s.completed >= len(s.queue) {
		return Move{}, false
	}
	return s.queue[s.completed], true
}

// Fault returns the fault that halted the session, if any.
func (s *Session) Fault() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fault
}

// commit applies the confirmed move to the authoritative cube and
// advances progress. Only the sync monitor calls this.
func (s *Session) commit(m Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionSolving {
		return ErrNoActiveSession
	}
	next, err := s.cube.Apply(m)
	if err != nil {
		return err
	}
	s.cube = next
	s.completed++
	if s.completed >= len(s.queue) {
		s.state = SessionDone
		s.ended = time.Now()
	}
	return nil
}

// setFault halts the session with the given fault. The cube state stays
// at the last confirmed move.
func (s *Session) setFault(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionSolving {
		s.state = SessionFaulted
		s.fault = err
		s.ended = time.Now()
	}
}

// abort marks the session aborted between actions.
func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionSolving {
		s.state = SessionAborted
		s.ended = time.Now()
	}
}

// resume returns a faulted or desynced session to solving after an
// explicit recovery. The remaining queue is replaced because a resync may
// have produced a fresh solution.
func (s *Session) resume(cube *Cube, queue []Move) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionSolving
	if len(queue) == 0 {
		s.state = SessionDone
	}
	s.fault = nil
	s.cube = cube.Clone()
	s.queue = append([]Move(nil), queue...)
	s.completed = 0
}

// Progress summarizes the session for display surfaces.
type Progress struct {
	SessionID string       `json:"session_id"`
	State     SessionState `json:"-"`
	StateName string       `json:"state"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Current   string       `json:"current,omitempty"`
	Fault     string       `json:"fault,omitempty"`
	Facelets  string       `json:"facelets"`
}

// Progress returns a point-in-time summary of the session.
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := Progress{
		SessionID: s.id,
		State:     s.state,
		StateName: s.state.String(),
		Completed: s.completed,
		Total:     len(s.queue),
		Facelets:  s.cube.FaceletString(),
	}
	if s.state == SessionSolving && s.completed < len(s.queue) {
		p.Current = s.queue[s.completed].Notation()
	}
	if s.fault != nil {
		p.Fault = s.fault.Error()
	}
	return p
}
