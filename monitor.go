package cubebot

import (
	"context"
	"math"
)

// Tolerances for confirmation checking. A confirmed position outside
// tolerance does not mean the action failed; it means we can no longer
// trust that the logical and physical cube agree.
const (
	DefaultAngleTolerance = 6.0  // degrees
	DefaultWidthTolerance = 0.12 // fraction of gripper travel
)

// Monitor keeps the logical cube state in sync with the physical cube.
// It is the only writer of the session's cube: a move is applied to the
// logical state strictly after the orchestrator reports the move's whole
// action sequence confirmed within tolerance (confirm-then-commit).
type Monitor struct {
	session  *Session
	sensor   Sensor
	angleTol float64
	widthTol float64
}

// NewMonitor creates a monitor owning the given session. sensor may be
// nil when no camera is attached; Resync then fails with
// ErrSensingUncertain.
func NewMonitor(session *Session, sensor Sensor) *Monitor {
	return &Monitor{
		session:  session,
		sensor:   sensor,
		angleTol: DefaultAngleTolerance,
		widthTol: DefaultWidthTolerance,
	}
}

// SetTolerances overrides the confirmation tolerances.
func (m *Monitor) SetTolerances(angle, width float64) {
	m.angleTol = angle
	m.widthTol = width
}

// Session returns the monitored session.
func (m *Monitor) Session() *Session {
	return m.session
}

// Commit verifies the confirmations for one move's action sequence and,
// when all are within tolerance, applies the move to the authoritative
// cube state and advances progress.
//
// A partial or out-of-tolerance confirmation leaves the cube untouched
// and halts the session with a DesyncError: the physical cube may or may
// not hold the move, so nothing is assumed until a resync observation.
func (m *Monitor) Commit(move Move, actions []Action, confs []Confirmation) error {
	if len(confs) != len(actions) {
		err := &DesyncError{Move: move}
		m.session.setFault(err)
		return err
	}
	for i, conf := range confs {
		if ok, expected := m.withinTolerance(actions[i], conf); !ok {
			err := &DesyncError{
				Move:     move,
				Measured: conf.Measured,
				Expected: expected,
				At:       conf.At,
			}
			m.session.setFault(err)
			return err
		}
	}
	return m.session.commit(move)
}

func (m *Monitor) withinTolerance(a Action, c Confirmation) (bool, float64) {
	if !c.OK {
		return false, a.Angle
	}
	switch a.Kind {
	case ActionRotate:
		return math.Abs(c.Measured-a.Angle) <= m.angleTol, a.Angle
	case ActionGrip, ActionRelease:
		return math.Abs(c.Measured-a.Width) <= m.widthTol, a.Width
	default:
		return false, 0
	}
}

// Fault halts the session with an actuation fault. The cube state stays
// at the last fully confirmed move.
func (m *Monitor) Fault(err error) {
	m.session.setFault(err)
}

// Abort marks the session aborted. Called between actions only.
func (m *Monitor) Abort() {
	m.session.abort()
}

// Resync asks the sensing collaborator for the true physical cube state.
// It returns the observed, verified cube; the caller re-solves from it
// and resumes the session with the fresh queue.
func (m *Monitor) Resync(ctx context.Context) (*Cube, error) {
	if m.sensor == nil {
		return nil, ErrSensingUncertain
	}
	cube, err := m.sensor.Observe(ctx)
	if err != nil {
		return nil, err
	}
	if err := cube.Verify(); err != nil {
		return nil, err
	}
	return cube, nil
}

// Resume replaces the session's cube and queue after a successful resync
// or fault recovery and returns it to solving.
func (m *Monitor) Resume(cube *Cube, queue []Move) {
	m.session.resume(cube, queue)
}
