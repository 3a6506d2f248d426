// internal/translate turns cube moves into gripper action sequences for a
// pair of perpendicular arms. The left arm grips the cube along the L axis
// and the right arm along the F axis. Faces on either gripped axis turn
// directly; any other face is first brought onto one of those axes by
// rotating the whole cube, and the translator tracks that reorientation so
// callers keep issuing moves in the cube's logical frame.
package translate

import (
	"time"

	"github.com/SeamusWaldron/cubebot"
)

// Physical slots in the robot frame. The left gripper faces slotLeft and
// the right gripper faces slotFront.
type slot int

const (
	slotUp slot = iota
	slotDown
	slotFront
	slotBack
	slotRight
	slotLeft
)

// rotation is a whole-cube reposition performed by one arm while the other
// releases. The angle is relative to the wrist home position.
type rotation struct {
	arm   cubebot.ArmID
	delta float64
	perm  [6]slot // perm[s] is where the face at slot s ends up
}

// z rotates about the F axis, clockwise as seen from the front, and is
// driven by the right wrist. x rotates about the L axis and is driven by
// the left wrist; only its double form is ever needed.
var (
	zPerm  = [6]slot{slotUp: slotRight, slotRight: slotDown, slotDown: slotLeft, slotLeft: slotUp, slotFront: slotFront, slotBack: slotBack}
	zPrime = [6]slot{slotUp: slotLeft, slotLeft: slotDown, slotDown: slotRight, slotRight: slotUp, slotFront: slotFront, slotBack: slotBack}
	zTwice = [6]slot{slotUp: slotDown, slotDown: slotUp, slotLeft: slotRight, slotRight: slotLeft, slotFront: slotFront, slotBack: slotBack}
	xTwice = [6]slot{slotFront: slotBack, slotBack: slotFront, slotUp: slotDown, slotDown: slotUp, slotLeft: slotLeft, slotRight: slotRight}
)

// Nominal action durations, used by the orchestrator for timeout scaling.
const (
	estRotate = 600 * time.Millisecond
	estGrip   = 300 * time.Millisecond
)

const defaultHome = 90

// Options tune the generated sequences.
type Options struct {
	// LeftHome and RightHome are the wrist rest angles in degrees. Turns
	// are issued relative to the turning arm's own home, so the usable
	// throw is home+180 clockwise and home counterclockwise on a 270
	// degree servo. The two arms are calibrated independently.
	LeftHome  float64
	RightHome float64

	// Wiggle inserts a small back and forth rotation after each regrip to
	// settle cube alignment. WiggleDegrees is its amplitude.
	Wiggle        bool
	WiggleDegrees float64
}

// Translator converts logical cube moves into arm actions. Not safe for
// concurrent use; the solve loop owns it.
type Translator struct {
	opts Options

	// orient[s] is the logical face currently at physical slot s.
	orient [6]cubebot.Face
}

// New returns a translator for a cube loaded in its logical orientation.
func New(opts Options) *Translator {
	if opts.LeftHome == 0 {
		opts.LeftHome = defaultHome
	}
	if opts.RightHome == 0 {
		opts.RightHome = defaultHome
	}
	if opts.Wiggle && opts.WiggleDegrees == 0 {
		opts.WiggleDegrees = 4
	}
	t := &Translator{opts: opts}
	t.Reset()
	return t
}

// Reset restores the identity orientation, for use after the cube is
// reinserted or re-observed in a known pose.
func (t *Translator) Reset() {
	t.orient = [6]cubebot.Face{
		slotUp:    cubebot.FaceU,
		slotDown:  cubebot.FaceD,
		slotFront: cubebot.FaceF,
		slotBack:  cubebot.FaceB,
		slotRight: cubebot.FaceR,
		slotLeft:  cubebot.FaceL,
	}
}

// FaceAt reports the logical face currently held against the given arm's
// gripper.
func (t *Translator) FaceAt(arm cubebot.ArmID) cubebot.Face {
	if arm == cubebot.ArmLeft {
		return t.orient[slotLeft]
	}
	return t.orient[slotFront]
}

// home returns the wrist rest angle for the given arm.
func (t *Translator) home(arm cubebot.ArmID) float64 {
	if arm == cubebot.ArmLeft {
		return t.opts.LeftHome
	}
	return t.opts.RightHome
}

// slotOf finds the physical slot holding the logical face.
func (t *Translator) slotOf(f cubebot.Face) slot {
	for s, face := range t.orient {
		if face == f {
			return slot(s)
		}
	}
	// orient is a permutation of all six faces; unreachable.
	panic("translate: face not in orientation")
}

// Translate emits the action sequence realizing one move. Every sequence
// leaves both wrists at home with both grippers closed, so sequences from
// consecutive moves concatenate freely.
func (t *Translator) Translate(m cubebot.Move) ([]cubebot.Action, error) {
	if !m.IsCanonical() {
		return nil, cubebot.ErrInvalidMove
	}

	var acts []cubebot.Action
	switch t.slotOf(m.Face) {
	case slotUp:
		acts = t.rotateCube(rotation{cubebot.ArmRight, -90, zPrime})
	case slotDown:
		acts = t.rotateCube(rotation{cubebot.ArmRight, 90, zPerm})
	case slotRight:
		acts = t.rotateCube(rotation{cubebot.ArmRight, 180, zTwice})
	case slotBack:
		acts = t.rotateCube(rotation{cubebot.ArmLeft, 180, xTwice})
	}

	turner := cubebot.ArmRight
	if t.slotOf(m.Face) == slotLeft {
		turner = cubebot.ArmLeft
	}
	return append(acts, t.turnFace(turner, m.Turn)...), nil
}

// turnFace turns the gripped face by the requested amount and resets the
// wrist. The opposite arm keeps the rest of the cube still.
func (t *Translator) turnFace(arm cubebot.ArmID, turn cubebot.Turn) []cubebot.Action {
	home := t.home(arm)
	var target float64
	switch turn {
	case cubebot.CW:
		target = home + 90
	case cubebot.CCW:
		target = home - 90
	case cubebot.Double:
		target = home + 180
	}

	acts := []cubebot.Action{
		{Arm: arm, Kind: cubebot.ActionRotate, Angle: target, Est: estRotate},
		{Arm: arm, Kind: cubebot.ActionRelease, Width: 1, Est: estGrip},
		{Arm: arm, Kind: cubebot.ActionRotate, Angle: home, Est: estRotate},
		{Arm: arm, Kind: cubebot.ActionGrip, Width: 0, Est: estGrip},
	}
	return append(acts, t.wiggle(arm)...)
}

// rotateCube repositions the whole cube with one arm while the other lets
// go, then updates the tracked orientation.
func (t *Translator) rotateCube(r rotation) []cubebot.Action {
	other := r.arm.Other()
	home := t.home(r.arm)

	acts := []cubebot.Action{
		{Arm: other, Kind: cubebot.ActionRelease, Width: 1, Est: estGrip},
		{Arm: r.arm, Kind: cubebot.ActionRotate, Angle: home + r.delta, Est: estRotate},
		{Arm: other, Kind: cubebot.ActionGrip, Width: 0, Est: estGrip},
		{Arm: r.arm, Kind: cubebot.ActionRelease, Width: 1, Est: estGrip},
		{Arm: r.arm, Kind: cubebot.ActionRotate, Angle: home, Est: estRotate},
		{Arm: r.arm, Kind: cubebot.ActionGrip, Width: 0, Est: estGrip},
	}
	acts = append(acts, t.wiggle(r.arm)...)

	var next [6]cubebot.Face
	for s, face := range t.orient {
		next[r.perm[s]] = face
	}
	t.orient = next
	return acts
}

// wiggle rocks the wrist around home to settle layer alignment.
func (t *Translator) wiggle(arm cubebot.ArmID) []cubebot.Action {
	if !t.opts.Wiggle {
		return nil
	}
	home, w := t.home(arm), t.opts.WiggleDegrees
	return []cubebot.Action{
		{Arm: arm, Kind: cubebot.ActionRotate, Angle: home + w, Est: estRotate / 4},
		{Arm: arm, Kind: cubebot.ActionRotate, Angle: home - w, Est: estRotate / 4},
		{Arm: arm, Kind: cubebot.ActionRotate, Angle: home, Est: estRotate / 4},
	}
}
