// internal/orchestrator serializes gripper actions onto the two arms. It
// owns the per-arm state machines, enforces workspace exclusion between
// arms whose regions overlap, and converts confirmation timeouts into
// faults that stop the arm until an operator clears it.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot"
)

// ArmState is the lifecycle state of one arm.
type ArmState int

const (
	StateIdle ArmState = iota
	StateGripping
	StateRotating
	StateReleasing
	StateFaulted
)

func (s ArmState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGripping:
		return "gripping"
	case StateRotating:
		return "rotating"
	case StateReleasing:
		return "releasing"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Driver executes a single action on the hardware and reports back the
// measured position. Implementations block until the action settles or
// ctx expires.
type Driver interface {
	Do(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error)
}

// Config wires an orchestrator.
type Config struct {
	Driver Driver

	// ActionTimeout is added to each action's own estimate to bound how
	// long a confirmation may take before the arm faults.
	ActionTimeout time.Duration

	// Regions maps each arm to the workspace volume it sweeps. Two arms
	// whose regions intersect never act at the same time.
	Regions map[cubebot.ArmID]cubebot.Region

	Logger *zap.Logger
}

const defaultActionTimeout = 3 * time.Second

type armStatus struct {
	state ArmState
	fault error
}

// Orchestrator dispatches actions to the driver under the exclusion and
// fault rules. Safe for concurrent use.
type Orchestrator struct {
	driver  Driver
	timeout time.Duration
	regions map[cubebot.ArmID]cubebot.Region
	log     *zap.Logger

	mu   sync.Mutex
	cond *sync.Cond
	arms map[cubebot.ArmID]*armStatus
}

// New builds an orchestrator with both arms idle.
func New(cfg Config) *Orchestrator {
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = defaultActionTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	o := &Orchestrator{
		driver:  cfg.Driver,
		timeout: cfg.ActionTimeout,
		regions: cfg.Regions,
		log:     cfg.Logger,
		arms: map[cubebot.ArmID]*armStatus{
			cubebot.ArmLeft:  {},
			cubebot.ArmRight: {},
		},
	}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// State reports the current state of an arm.
func (o *Orchestrator) State(arm cubebot.ArmID) ArmState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.arms[arm].state
}

// Fault returns the fault holding an arm in StateFaulted, or nil.
func (o *Orchestrator) Fault(arm cubebot.ArmID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.arms[arm].fault
}

// ClearFault returns a faulted arm to idle. Callers are expected to have
// physically recovered the arm first.
func (o *Orchestrator) ClearFault(arm cubebot.ArmID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.arms[arm]
	if st.state == StateFaulted {
		o.log.Info("fault cleared", zap.String("arm", string(arm)))
		st.state = StateIdle
		st.fault = nil
		o.cond.Broadcast()
	}
}

func stateFor(k cubebot.ActionKind) ArmState {
	switch k {
	case cubebot.ActionGrip:
		return StateGripping
	case cubebot.ActionRelease:
		return StateReleasing
	default:
		return StateRotating
	}
}

// busy reports whether an arm currently occupies its region. A faulted
// arm froze mid-action at an unknown pose, so it keeps occupying its
// workspace until the fault is cleared.
func (st *armStatus) busy() bool {
	return st.state != StateIdle
}

// Do runs one action to completion. It blocks while the action's workspace
// is occupied by the other arm, so overlapping regions serialize and
// disjoint regions run concurrently. ctx cancellation is honored while
// waiting for clearance; once the action is dispatched it runs until it
// confirms or times out.
func (o *Orchestrator) Do(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
	if err := o.acquire(ctx, a); err != nil {
		return cubebot.Confirmation{}, err
	}

	// Dispatched actions are never interrupted; abort takes effect
	// between actions. The deadline keeps a dead servo from wedging us.
	dctx, cancel := context.WithTimeout(context.Background(), o.timeout+a.Est)
	conf, err := o.driver.Do(dctx, a)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.cond.Broadcast()
	st := o.arms[a.Arm]

	if err != nil || !conf.OK {
		reason := "confirmation missing"
		if err != nil {
			reason = err.Error()
			if dctx.Err() != nil {
				reason = "confirmation timeout"
			}
		}
		fault := &cubebot.ActuationFault{Arm: a.Arm, Action: a, Reason: reason}
		st.state = StateFaulted
		st.fault = fault
		o.log.Warn("arm faulted",
			zap.String("arm", string(a.Arm)),
			zap.Stringer("action", a),
			zap.String("reason", reason))
		return conf, fault
	}

	st.state = StateIdle
	o.log.Debug("action confirmed",
		zap.Stringer("action", a),
		zap.Float64("measured", conf.Measured))
	return conf, nil
}

// acquire waits for workspace clearance and marks the arm active.
func (o *Orchestrator) acquire(ctx context.Context, a cubebot.Action) error {
	// A goroutine wakes the cond wait if ctx ends first.
	stop := context.AfterFunc(ctx, func() {
		o.mu.Lock()
		o.cond.Broadcast()
		o.mu.Unlock()
	})
	defer stop()

	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.arms[a.Arm]
	other := o.arms[a.Arm.Other()]
	region := o.regions[a.Arm]
	otherRegion := o.regions[a.Arm.Other()]

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.state == StateFaulted {
			return fmt.Errorf("%s arm: %w", a.Arm, cubebot.ErrArmFaulted)
		}
		if !st.busy() && !(other.busy() && region.Intersects(otherRegion)) {
			break
		}
		if other.busy() && region.Intersects(otherRegion) {
			o.log.Debug("dispatch deferred, workspace occupied",
				zap.String("arm", string(a.Arm)),
				zap.String("held_by", string(a.Arm.Other())))
		}
		o.cond.Wait()
	}

	st.state = stateFor(a.Kind)
	return nil
}

// Execute runs a full action sequence in order, checking for abort between
// actions. It returns the confirmations gathered so far together with the
// first error.
func (o *Orchestrator) Execute(ctx context.Context, actions []cubebot.Action) ([]cubebot.Confirmation, error) {
	confs := make([]cubebot.Confirmation, 0, len(actions))
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return confs, err
		}
		conf, err := o.Do(ctx, a)
		if err != nil {
			return confs, err
		}
		confs = append(confs, conf)
	}
	return confs, nil
}
