package cubebot

import (
	"testing"
)

func TestNewSessionStartsSolving(t *testing.T) {
	queue := []Move{R, U, RPrime, UPrime}
	cube := NewCube().MustApply(queue...)
	s := NewSession(cube, []Move{U, R, UPrime, RPrime})

	if s.State() != SessionSolving {
		t.Errorf("state = %v, want solving", s.State())
	}
	if s.ID() == "" {
		t.Error("session should have an ID")
	}
	if s.Completed() != 0 {
		t.Errorf("completed = %d, want 0", s.Completed())
	}
	if m, ok := s.Current(); !ok || m != U {
		t.Errorf("Current() = %v, %v; want U, true", m, ok)
	}
}

func TestNewSessionEmptyQueueIsDone(t *testing.T) {
	s := NewSession(NewCube(), nil)
	if s.State() != SessionDone {
		t.Errorf("state = %v, want done", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Error("done session should have no current move")
	}
}

func TestSessionQueueAndCubeAreCopies(t *testing.T) {
	cube := NewCube()
	queue := []Move{R, U}
	s := NewSession(cube, queue)

	queue[0] = L
	if got := s.Queue()[0]; got != R {
		t.Errorf("session queue changed with caller slice: got %v", got)
	}

	cube.Facelets[0][0] = Green
	if s.Cube().Facelets[0][0] == Green {
		t.Error("session cube changed with caller cube")
	}
}

func TestSessionProgress(t *testing.T) {
	scramble := []Move{R, U}
	cube := NewCube().MustApply(scramble...)
	s := NewSession(cube, []Move{UPrime, RPrime})

	p := s.Progress()
	if p.SessionID != s.ID() {
		t.Error("progress should carry the session ID")
	}
	if p.StateName != "solving" || p.Total != 2 || p.Completed != 0 {
		t.Errorf("unexpected progress: %+v", p)
	}
	if p.Current != "U'" {
		t.Errorf("current = %q, want U'", p.Current)
	}
	if p.Facelets != cube.FaceletString() {
		t.Error("progress facelets should match the session cube")
	}
}
