package maestro

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/config"
)

// Servo positions within deadband of the target count as arrived. 16
// quarter microseconds is 4us of pulse width, well under a degree.
const deadbandQUS = 16

const pollInterval = 20 * time.Millisecond

// Arms executes gripper actions on a Maestro board and confirms them by
// reading servo positions back. It implements the orchestrator's Driver.
type Arms struct {
	ctrl   *Controller
	left   config.ArmConfig
	right  config.ArmConfig
	settle time.Duration
	log    *zap.Logger
}

// NewArms binds a controller to the two arm calibrations.
func NewArms(ctrl *Controller, profile *config.Profile, log *zap.Logger) *Arms {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arms{
		ctrl:   ctrl,
		left:   profile.Left,
		right:  profile.Right,
		settle: profile.Motion.SettleDelay,
		log:    log,
	}
}

func (d *Arms) arm(id cubebot.ArmID) config.ArmConfig {
	if id == cubebot.ArmLeft {
		return d.left
	}
	return d.right
}

// Init applies speed and acceleration limits and parks both arms at home
// with grippers open, the pose the cube is loaded into.
func (d *Arms) Init() error {
	for _, id := range []cubebot.ArmID{cubebot.ArmLeft, cubebot.ArmRight} {
		a := d.arm(id)
		for _, ch := range []int{a.WristChannel, a.GripChannel} {
			if err := d.ctrl.SetSpeed(ch, a.Speed); err != nil {
				return err
			}
			if err := d.ctrl.SetAccel(ch, a.Accel); err != nil {
				return err
			}
		}
		if err := d.ctrl.SetTarget(a.WristChannel, a.Wrist.QUS(a.HomeDegrees)); err != nil {
			return err
		}
		if err := d.ctrl.SetTarget(a.GripChannel, a.Grip.QUS(1)); err != nil {
			return err
		}
	}
	return nil
}

// Park opens both grippers and returns wrists to home so the cube can be
// removed, then stops driving the servos.
func (d *Arms) Park() error {
	for _, id := range []cubebot.ArmID{cubebot.ArmLeft, cubebot.ArmRight} {
		a := d.arm(id)
		if err := d.ctrl.SetTarget(a.GripChannel, a.Grip.QUS(1)); err != nil {
			return err
		}
		if err := d.ctrl.SetTarget(a.WristChannel, a.Wrist.QUS(a.HomeDegrees)); err != nil {
			return err
		}
	}
	return nil
}

// Do commands one action and blocks until the servo reports arrival or ctx
// expires. The confirmation carries the measured position converted back
// to the action's units.
func (d *Arms) Do(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
	arm := d.arm(a.Arm)

	var channel, target int
	switch a.Kind {
	case cubebot.ActionRotate:
		channel, target = arm.WristChannel, arm.Wrist.QUS(a.Angle)
	case cubebot.ActionGrip, cubebot.ActionRelease:
		channel, target = arm.GripChannel, arm.Grip.QUS(a.Width)
	default:
		return cubebot.Confirmation{}, fmt.Errorf("maestro: unknown action kind %v", a.Kind)
	}

	d.log.Debug("servo target",
		zap.Stringer("action", a),
		zap.Int("channel", channel),
		zap.Int("qus", target))

	if err := d.ctrl.SetTarget(channel, target); err != nil {
		return cubebot.Confirmation{}, err
	}

	pos, err := d.waitSettled(ctx, channel, target)
	measured := d.measured(arm, a.Kind, pos)
	if err != nil {
		return cubebot.Confirmation{OK: false, Measured: measured, At: time.Now()}, err
	}

	if d.settle > 0 {
		select {
		case <-time.After(d.settle):
		case <-ctx.Done():
			return cubebot.Confirmation{OK: false, Measured: measured, At: time.Now()}, ctx.Err()
		}
	}
	return cubebot.Confirmation{OK: true, Measured: measured, At: time.Now()}, nil
}

// Nudge drives one calibration axis to a raw quarter-microsecond target
// and waits for the servo to arrive, so an operator can walk an end stop
// in while watching the hardware. The cached arm calibration picks up the
// new value once it settles.
func (d *Arms) Nudge(ctx context.Context, id cubebot.ArmID, axis string, qus int) error {
	arm := d.arm(id)

	var channel int
	switch axis {
	case config.AxisWristMin, config.AxisWristMax:
		channel = arm.WristChannel
	case config.AxisGripOpen, config.AxisGripClosed:
		channel = arm.GripChannel
	default:
		return fmt.Errorf("maestro: unknown calibration axis %q", axis)
	}

	d.log.Info("calibration nudge",
		zap.String("arm", string(id)),
		zap.String("axis", axis),
		zap.Int("channel", channel),
		zap.Int("qus", qus))

	if err := d.ctrl.SetTarget(channel, qus); err != nil {
		return err
	}
	if _, err := d.waitSettled(ctx, channel, qus); err != nil {
		return err
	}

	cached := &d.right
	if id == cubebot.ArmLeft {
		cached = &d.left
	}
	switch axis {
	case config.AxisWristMin:
		cached.Wrist.MinQUS = qus
	case config.AxisWristMax:
		cached.Wrist.MaxQUS = qus
	case config.AxisGripOpen:
		cached.Grip.OpenQUS = qus
	case config.AxisGripClosed:
		cached.Grip.ClosedQUS = qus
	}
	return nil
}

func (d *Arms) measured(arm config.ArmConfig, kind cubebot.ActionKind, qus int) float64 {
	if kind == cubebot.ActionRotate {
		return arm.Wrist.Degrees(qus)
	}
	return arm.Grip.Width(qus)
}

// waitSettled polls the channel position until it enters the deadband.
func (d *Arms) waitSettled(ctx context.Context, channel, target int) (int, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	pos := -1
	for {
		p, err := d.ctrl.Position(channel)
		if err != nil {
			return pos, err
		}
		pos = p
		if diff := pos - target; diff >= -deadbandQUS && diff <= deadbandQUS {
			return pos, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return pos, ctx.Err()
		}
	}
}
