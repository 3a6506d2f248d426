package cubebot

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the cubebot package.
var (
	// Move and state errors
	ErrInvalidMove      = errors.New("cubebot: move is not a canonical face turn")
	ErrInvalidNotation  = errors.New("cubebot: invalid move notation")
	ErrInvalidFacelets  = errors.New("cubebot: invalid facelet string")
	ErrUnsolvableState  = errors.New("cubebot: cube state is not a legal configuration")
	ErrSolverTimeout    = errors.New("cubebot: solver exceeded its search budget")
	ErrDesyncSuspected  = errors.New("cubebot: physical cube may have diverged from logical state")
	ErrSensingUncertain = errors.New("cubebot: camera could not observe the cube with confidence")

	// Session errors
	ErrSessionActive   = errors.New("cubebot: a solve session is already active")
	ErrNoActiveSession = errors.New("cubebot: no active solve session")
	ErrSessionAborted  = errors.New("cubebot: solve session aborted")
	ErrArmFaulted      = errors.New("cubebot: arm is faulted and requires recovery")
)

// ActuationFault reports a physical action that failed to confirm.
// The arm that executed it transitions to Faulted and stays there until an
// explicit recovery signal; the solve queue does not advance.
type ActuationFault struct {
	Arm    ArmID
	Action Action
	Reason string
}

func (e *ActuationFault) Error() string {
	return fmt.Sprintf("cubebot: actuation fault on %s arm during %s: %s",
		e.Arm, e.Action.Kind, e.Reason)
}

// Is reports true for ErrArmFaulted so callers can match with errors.Is.
func (e *ActuationFault) Is(target error) bool {
	return target == ErrArmFaulted
}

// DesyncError reports a move whose confirmation fell outside tolerance.
// The logical cube was not updated; a resync observation is required.
type DesyncError struct {
	Move     Move
	Measured float64
	Expected float64
	At       time.Time
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("cubebot: desync suspected after %s: measured %.0f, expected %.0f",
		e.Move.Notation(), e.Measured, e.Expected)
}

// Is reports true for ErrDesyncSuspected so callers can match with errors.Is.
func (e *DesyncError) Is(target error) bool {
	return target == ErrDesyncSuspected
}
