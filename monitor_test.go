package cubebot

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubSensor returns a fixed cube, or an error.
type stubSensor struct {
	cube *Cube
	err  error
}

func (s *stubSensor) Observe(ctx context.Context) (*Cube, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cube.Clone(), nil
}

func confirmed(actions []Action) []Confirmation {
	confs := make([]Confirmation, len(actions))
	for i, a := range actions {
		measured := a.Angle
		if a.Kind != ActionRotate {
			measured = a.Width
		}
		confs[i] = Confirmation{OK: true, Measured: measured, At: time.Now()}
	}
	return confs
}

func rotateActions() []Action {
	return []Action{
		{Arm: ArmLeft, Kind: ActionRelease, Width: 1},
		{Arm: ArmRight, Kind: ActionRotate, Angle: 180},
		{Arm: ArmRight, Kind: ActionRotate, Angle: 90},
		{Arm: ArmLeft, Kind: ActionGrip, Width: 0},
	}
}

func TestCommitAdvancesSession(t *testing.T) {
	solution := []Move{UPrime, RPrime}
	cube := NewCube().MustApply(R, U)
	s := NewSession(cube, solution)
	m := NewMonitor(s, nil)

	for _, mv := range solution {
		actions := rotateActions()
		if err := m.Commit(mv, actions, confirmed(actions)); err != nil {
			t.Fatalf("Commit(%s): %v", mv, err)
		}
	}
	if s.State() != SessionDone {
		t.Errorf("state = %v, want done", s.State())
	}
	if !s.Cube().IsSolved() {
		t.Error("cube should be solved after committing the queue")
	}
}

func TestCommitOutOfToleranceDesyncs(t *testing.T) {
	cube := NewCube().MustApply(R)
	s := NewSession(cube, []Move{RPrime})
	m := NewMonitor(s, nil)

	actions := rotateActions()
	confs := confirmed(actions)
	confs[1].Measured += 30 // well past the angle tolerance

	err := m.Commit(RPrime, actions, confs)
	if !errors.Is(err, ErrDesyncSuspected) {
		t.Fatalf("Commit = %v, want ErrDesyncSuspected", err)
	}
	var desync *DesyncError
	if !errors.As(err, &desync) {
		t.Fatal("error should be a *DesyncError")
	}
	if desync.Move != RPrime {
		t.Errorf("desync move = %v, want R'", desync.Move)
	}
	if s.State() != SessionFaulted {
		t.Errorf("state = %v, want faulted", s.State())
	}
	// The logical cube must stay at the last confirmed move.
	if s.Cube().IsSolved() {
		t.Error("unconfirmed move must not be applied")
	}
}

func TestCommitMissingConfirmationDesyncs(t *testing.T) {
	cube := NewCube().MustApply(R)
	s := NewSession(cube, []Move{RPrime})
	m := NewMonitor(s, nil)

	actions := rotateActions()
	confs := confirmed(actions)[:len(actions)-1]
	if err := m.Commit(RPrime, actions, confs); !errors.Is(err, ErrDesyncSuspected) {
		t.Errorf("Commit = %v, want ErrDesyncSuspected", err)
	}
}

func TestCommitWithinToleranceAccepts(t *testing.T) {
	cube := NewCube().MustApply(R)
	s := NewSession(cube, []Move{RPrime})
	m := NewMonitor(s, nil)

	actions := rotateActions()
	confs := confirmed(actions)
	confs[1].Measured += 4   // inside the 6 degree default
	confs[3].Measured = 0.05 // inside the width default

	if err := m.Commit(RPrime, actions, confs); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !s.Cube().IsSolved() {
		t.Error("committed move should be applied")
	}
}

func TestFaultHaltsAtLastConfirmedMove(t *testing.T) {
	cube := NewCube().MustApply(R, U)
	s := NewSession(cube, []Move{UPrime, RPrime})
	m := NewMonitor(s, nil)

	actions := rotateActions()
	if err := m.Commit(UPrime, actions, confirmed(actions)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	m.Fault(&ActuationFault{Arm: ArmRight, Reason: "confirmation timeout"})

	if s.State() != SessionFaulted {
		t.Errorf("state = %v, want faulted", s.State())
	}
	if s.Completed() != 1 {
		t.Errorf("completed = %d, want 1", s.Completed())
	}
	want := NewCube().MustApply(R).FaceletString()
	if got := s.Cube().FaceletString(); got != want {
		t.Error("cube should stay at the last confirmed move")
	}
}

func TestAbortBetweenActions(t *testing.T) {
	s := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m := NewMonitor(s, nil)
	m.Abort()
	if s.State() != SessionAborted {
		t.Errorf("state = %v, want aborted", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Error("aborted session should have no current move")
	}
}

func TestResyncReturnsObservedCube(t *testing.T) {
	physical := NewCube().MustApply(R, U, F)
	s := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m := NewMonitor(s, &stubSensor{cube: physical})

	got, err := m.Resync(context.Background())
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if got.FaceletString() != physical.FaceletString() {
		t.Error("resync should return the observed state")
	}
}

func TestResyncWithoutSensorFails(t *testing.T) {
	s := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m := NewMonitor(s, nil)
	if _, err := m.Resync(context.Background()); !errors.Is(err, ErrSensingUncertain) {
		t.Errorf("Resync = %v, want ErrSensingUncertain", err)
	}
}

func TestResyncPropagatesSensingUncertain(t *testing.T) {
	s := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m := NewMonitor(s, &stubSensor{err: ErrSensingUncertain})
	if _, err := m.Resync(context.Background()); !errors.Is(err, ErrSensingUncertain) {
		t.Errorf("Resync = %v, want ErrSensingUncertain", err)
	}
}

func TestResyncRejectsIllegalObservation(t *testing.T) {
	bad := NewCube()
	bad.Facelets[0][7], bad.Facelets[2][1] = bad.Facelets[2][1], bad.Facelets[0][7]
	s := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m := NewMonitor(s, &stubSensor{cube: bad})
	if _, err := m.Resync(context.Background()); err == nil {
		t.Error("Resync should reject an unverifiable observation")
	}
}

func TestResumeAfterDesync(t *testing.T) {
	cube := NewCube().MustApply(R)
	s := NewSession(cube, []Move{RPrime})
	m := NewMonitor(s, nil)

	actions := rotateActions()
	confs := confirmed(actions)
	confs[1].OK = false
	if err := m.Commit(RPrime, actions, confs); err == nil {
		t.Fatal("expected desync")
	}

	// Pretend the camera saw the move had actually completed.
	m.Resume(NewCube(), nil)
	if s.State() != SessionDone {
		t.Errorf("state = %v, want done", s.State())
	}
	if s.Fault() != nil {
		t.Error("resume should clear the fault")
	}

	// And the other way: the move never happened, keep solving.
	s2 := NewSession(NewCube().MustApply(R), []Move{RPrime})
	m2 := NewMonitor(s2, nil)
	m2.Fault(&ActuationFault{Arm: ArmLeft, Reason: "confirmation timeout"})
	m2.Resume(NewCube().MustApply(R), []Move{RPrime})
	if s2.State() != SessionSolving {
		t.Errorf("state = %v, want solving", s2.State())
	}
	if mv, ok := s2.Current(); !ok || mv != RPrime {
		t.Errorf("Current = %v, %v; want R', true", mv, ok)
	}
}
