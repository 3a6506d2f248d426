package cubebot

import (
	"context"
	"fmt"
	"time"
)

// ArmID identifies one of the two physical arms.
type ArmID string

const (
	ArmLeft  ArmID = "left"
	ArmRight ArmID = "right"
)

// Other returns the opposite arm.
func (a ArmID) Other() ArmID {
	if a == ArmLeft {
		return ArmRight
	}
	return ArmLeft
}

// ActionKind is the kind of an atomic arm instruction.
type ActionKind int

const (
	ActionGrip    ActionKind = iota // close the gripper onto the cube
	ActionRelease                   // open the gripper clear of the cube
	ActionRotate                    // rotate the wrist to a target angle
)

func (k ActionKind) String() string {
	switch k {
	case ActionGrip:
		return "grip"
	case ActionRelease:
		return "release"
	case ActionRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Action is one atomic arm instruction. Immutable value, produced by the
// move translator and consumed by the orchestrator.
type Action struct {
	Arm  ArmID
	Kind ActionKind

	// Angle is the absolute wrist target in degrees for ActionRotate,
	// within the servo span [0, 270].
	Angle float64

	// Width is the gripper target for ActionGrip/ActionRelease as a
	// fraction of travel: 0 fully closed, 1 fully open.
	Width float64

	// Est is the expected completion time, used for confirmation
	// timeouts and simulation.
	Est time.Duration
}

func (a Action) String() string {
	switch a.Kind {
	case ActionRotate:
		return fmt.Sprintf("%s rotate->%.0f°", a.Arm, a.Angle)
	default:
		return fmt.Sprintf("%s %s", a.Arm, a.Kind)
	}
}

// Confirmation is the actuation collaborator's report that an action
// physically completed. Measured carries the position read back from the
// controller in the action's own units (degrees for rotations, width
// fraction for grips).
type Confirmation struct {
	OK       bool
	Measured float64
	At       time.Time
}

// Sensor is the external sensing collaborator (camera). Observe returns
// the physical cube state, or ErrSensingUncertain when detection
// confidence is too low to trust.
type Sensor interface {
	Observe(ctx context.Context) (*Cube, error)
}
