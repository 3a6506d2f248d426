// internal/bot wires the solving pipeline together: camera observation,
// the two-phase solver, move translation, arm orchestration and the sync
// monitor that keeps the logical cube honest. It exposes the operations
// the control surfaces (CLI, TUI, web) call.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/config"
	"github.com/SeamusWaldron/cubebot/internal/orchestrator"
	"github.com/SeamusWaldron/cubebot/internal/solver"
	"github.com/SeamusWaldron/cubebot/internal/storage"
	"github.com/SeamusWaldron/cubebot/internal/translate"
)

// Config assembles a Bot's collaborators. Driver and Sensor are required;
// Repo is optional history recording.
type Config struct {
	Profile *config.Profile
	Driver  orchestrator.Driver
	Sensor  cubebot.Sensor
	Repo    *storage.SolveRepository
	Logger  *zap.Logger
}

// Bot is the solve engine. One solve runs at a time; operations are safe
// to call from any goroutine.
type Bot struct {
	profile *config.Profile
	orch    *orchestrator.Orchestrator
	driver  orchestrator.Driver
	solver  *solver.Solver
	sensor  cubebot.Sensor
	repo    *storage.SolveRepository
	log     *zap.Logger

	mu      sync.RWMutex
	session *cubebot.Session
	monitor *cubebot.Monitor
	trans   *translate.Translator
	solveID string
	cancel  context.CancelFunc
	running bool

	onMove  func(cubebot.Move, cubebot.Progress)
	onState func(cubebot.Progress)
	onFault func(error)
}

// New assembles a bot from the profile and collaborators.
func New(cfg Config) *Bot {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	p := cfg.Profile
	return &Bot{
		profile: p,
		orch: orchestrator.New(orchestrator.Config{
			Driver:        cfg.Driver,
			ActionTimeout: p.Motion.ActionTimeout,
			Regions: map[cubebot.ArmID]cubebot.Region{
				cubebot.ArmLeft:  p.Left.Region,
				cubebot.ArmRight: p.Right.Region,
			},
			Logger: log.Named("orchestrator"),
		}),
		solver: solver.New(
			solver.WithMaxLength(p.Solver.MaxLength),
			solver.WithNodeBudget(p.Solver.NodeBudget),
		),
		driver: cfg.Driver,
		sensor: cfg.Sensor,
		repo:   cfg.Repo,
		log:    log,
		trans: translate.New(translate.Options{
			LeftHome:      p.Left.HomeDegrees,
			RightHome:     p.Right.HomeDegrees,
			Wiggle:        p.Motion.Wiggle,
			WiggleDegrees: p.Motion.WiggleDegrees,
		}),
	}
}

// OnMove sets a callback that fires after each committed move.
func (b *Bot) OnMove(cb func(cubebot.Move, cubebot.Progress)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMove = cb
}

// OnProgress sets a callback that fires when the session changes state.
func (b *Bot) OnProgress(cb func(cubebot.Progress)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onState = cb
}

// OnFault sets a callback for actuation faults and desyncs.
func (b *Bot) OnFault(cb func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFault = cb
}

// Session returns the current solve session, or nil.
func (b *Bot) Session() *cubebot.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Status summarizes the bot for display surfaces.
type Status struct {
	Session *cubebot.Progress `json:"session,omitempty"`
	Left    string            `json:"left_arm"`
	Right   string            `json:"right_arm"`
	Fault   string            `json:"fault,omitempty"`
}

// Status reports the session progress and arm states.
func (b *Bot) Status() Status {
	b.mu.RLock()
	sess := b.session
	b.mu.RUnlock()

	st := Status{
		Left:  b.orch.State(cubebot.ArmLeft).String(),
		Right: b.orch.State(cubebot.ArmRight).String(),
	}
	if sess != nil {
		p := sess.Progress()
		st.Session = &p
		if f := sess.Fault(); f != nil {
			st.Fault = f.Error()
		}
	}
	for _, arm := range []cubebot.ArmID{cubebot.ArmLeft, cubebot.ArmRight} {
		if f := b.orch.Fault(arm); f != nil && st.Fault == "" {
			st.Fault = f.Error()
		}
	}
	return st
}

// StartSolve observes the cube, plans a solution and starts executing it
// in the background. It returns the new session once execution begins, or
// ErrSessionActive while a previous solve is still running.
func (b *Bot) StartSolve(ctx context.Context) (*cubebot.Session, error) {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil, cubebot.ErrSessionActive
	}
	b.running = true
	b.mu.Unlock()

	sess, err := b.plan(ctx)
	if err != nil {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	go b.run(runCtx)
	return sess, nil
}

// plan observes, solves and installs a fresh session.
func (b *Bot) plan(ctx context.Context) (*cubebot.Session, error) {
	if b.sensor == nil {
		return nil, fmt.Errorf("bot: no camera attached: %w", cubebot.ErrSensingUncertain)
	}
	cube, err := b.sensor.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("bot: observe cube: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, b.profile.Solver.Timeout)
	defer cancel()
	moves, err := b.solver.Solve(solveCtx, cube)
	if err != nil {
		return nil, fmt.Errorf("bot: plan solution: %w", err)
	}
	b.log.Info("solution planned",
		zap.Int("moves", len(moves)),
		zap.String("solution", cubebot.FormatMoves(moves)))

	sess := cubebot.NewSession(cube, moves)
	b.trans.Reset()

	var solveID string
	if b.repo != nil {
		if id, err := b.repo.Create(cube.FaceletString(), cubebot.FormatMoves(moves)); err != nil {
			b.log.Warn("history disabled for this solve", zap.Error(err))
		} else {
			solveID = id
		}
	}

	b.mu.Lock()
	b.session = sess
	b.monitor = cubebot.NewMonitor(sess, b.sensor)
	b.monitor.SetTolerances(b.profile.Tolerance.AngleDegrees, b.profile.Tolerance.WidthFraction)
	b.solveID = solveID
	b.mu.Unlock()
	return sess, nil
}

// run executes the session's queue until it finishes, faults or aborts.
func (b *Bot) run(ctx context.Context) {
	b.mu.RLock()
	sess, monitor := b.session, b.monitor
	b.mu.RUnlock()

	for {
		move, ok := sess.Current()
		if !ok {
			break
		}

		actions, err := b.trans.Translate(move)
		if err != nil {
			monitor.Fault(err)
			b.fireFault(err)
			break
		}

		confs, err := b.orch.Execute(ctx, actions)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				monitor.Abort()
				b.log.Info("solve aborted", zap.String("session", sess.ID()))
			} else {
				monitor.Fault(err)
				b.recordFault(err)
				b.fireFault(err)
			}
			break
		}

		if err := monitor.Commit(move, actions, confs); err != nil {
			b.recordFault(err)
			b.log.Warn("desync suspected", zap.Error(err))
			if rerr := b.resync(ctx, monitor); rerr != nil {
				b.fireFault(err)
				break
			}
			continue
		}

		p := sess.Progress()
		b.recordMove(move, p.Completed-1)
		b.fireMove(move, p)
	}

	b.finish(sess)
}

// resync re-observes the physical cube after a suspected desync, plans a
// fresh solution from it and resumes the session.
func (b *Bot) resync(ctx context.Context, monitor *cubebot.Monitor) error {
	cube, err := monitor.Resync(ctx)
	if err != nil {
		b.log.Warn("resync failed", zap.Error(err))
		return err
	}
	solveCtx, cancel := context.WithTimeout(ctx, b.profile.Solver.Timeout)
	defer cancel()
	moves, err := b.solver.Solve(solveCtx, cube)
	if err != nil {
		return err
	}
	b.log.Info("resynced from camera",
		zap.Int("remaining", len(moves)),
		zap.String("solution", cubebot.FormatMoves(moves)))
	monitor.Resume(cube, moves)
	return nil
}

// finish closes out history and fires the final progress callback.
func (b *Bot) finish(sess *cubebot.Session) {
	b.mu.Lock()
	b.running = false
	b.cancel = nil
	solveID := b.solveID
	onState := b.onState
	b.mu.Unlock()

	p := sess.Progress()
	if b.repo != nil && solveID != "" {
		status := storage.StatusDone
		switch sess.State() {
		case cubebot.SessionAborted:
			status = storage.StatusAborted
		case cubebot.SessionFaulted:
			status = storage.StatusFaulted
		}
		if err := b.repo.End(solveID, status, p.Completed); err != nil {
			b.log.Warn("failed to close solve history", zap.Error(err))
		}
	}
	b.log.Info("solve finished",
		zap.String("session", sess.ID()),
		zap.String("state", p.StateName),
		zap.Int("moves", p.Completed))
	if onState != nil {
		onState(p)
	}
}

// Abort requests a stop. The in-flight action completes; the session ends
// between actions.
func (b *Bot) Abort() error {
	b.mu.RLock()
	cancel, running := b.cancel, b.running
	b.mu.RUnlock()
	if !running || cancel == nil {
		return cubebot.ErrNoActiveSession
	}
	cancel()
	return nil
}

// ClearFault returns a faulted arm to service. The session, if faulted,
// stays down until Recover.
func (b *Bot) ClearFault(arm cubebot.ArmID) {
	b.orch.ClearFault(arm)
}

// Recover restarts a faulted session: clears arm faults, re-observes the
// cube, plans a fresh solution and resumes execution.
func (b *Bot) Recover(ctx context.Context) error {
	b.mu.RLock()
	sess, monitor, running := b.session, b.monitor, b.running
	b.mu.RUnlock()
	if sess == nil || monitor == nil {
		return cubebot.ErrNoActiveSession
	}
	if running {
		return cubebot.ErrSessionActive
	}
	if sess.State() != cubebot.SessionFaulted {
		return fmt.Errorf("bot: session is %s, nothing to recover", sess.State())
	}

	b.orch.ClearFault(cubebot.ArmLeft)
	b.orch.ClearFault(cubebot.ArmRight)
	b.trans.Reset()
	if err := b.resync(ctx, monitor); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.running = true
	b.cancel = cancel
	b.mu.Unlock()
	go b.run(runCtx)
	return nil
}

// ManualMove executes one move on the hardware without a solve session,
// for jogging and calibration checks. The logical state is not tracked;
// the next StartSolve observes the cube fresh.
func (b *Bot) ManualMove(ctx context.Context, m cubebot.Move) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return cubebot.ErrSessionActive
	}
	b.mu.Unlock()

	actions, err := b.trans.Translate(m)
	if err != nil {
		return err
	}
	_, err = b.orch.Execute(ctx, actions)
	return err
}

// Calibrate exercises both arms through their full range so an operator
// can verify the servo calibration against the physical cube.
func (b *Bot) Calibrate(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return cubebot.ErrSessionActive
	}
	b.mu.Unlock()

	for _, arm := range []cubebot.ArmID{cubebot.ArmLeft, cubebot.ArmRight} {
		home := b.profile.Arm(arm).HomeDegrees
		seq := []cubebot.Action{
			{Arm: arm, Kind: cubebot.ActionRelease, Width: 1},
			{Arm: arm, Kind: cubebot.ActionRotate, Angle: home - 90},
			{Arm: arm, Kind: cubebot.ActionRotate, Angle: home + 90},
			{Arm: arm, Kind: cubebot.ActionRotate, Angle: home},
			{Arm: arm, Kind: cubebot.ActionGrip, Width: 0},
		}
		if _, err := b.orch.Execute(ctx, seq); err != nil {
			return fmt.Errorf("bot: calibrate %s arm: %w", arm, err)
		}
	}
	return nil
}

// Nudger is the optional driver capability behind CalibratePoint: driving
// a single servo to a raw target outside the action vocabulary. The
// Maestro driver implements it; the simulator fakes it.
type Nudger interface {
	Nudge(ctx context.Context, arm cubebot.ArmID, axis string, qus int) error
}

// CalibratePoint nudges one calibration axis of one arm to a raw servo
// target and records the value in the profile, so a subsequent save
// persists it. Axes are the config.Axis* names.
func (b *Bot) CalibratePoint(ctx context.Context, arm cubebot.ArmID, axis string, qus int) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return cubebot.ErrSessionActive
	}
	b.mu.Unlock()

	n, ok := b.driver.(Nudger)
	if !ok {
		return fmt.Errorf("bot: driver cannot nudge servos")
	}
	if err := b.profile.SetCalibration(arm, axis, qus); err != nil {
		return err
	}
	if err := n.Nudge(ctx, arm, axis, qus); err != nil {
		return fmt.Errorf("bot: nudge %s %s: %w", arm, axis, err)
	}
	b.log.Info("calibration point set",
		zap.String("arm", string(arm)),
		zap.String("axis", axis),
		zap.Int("qus", qus))
	return nil
}

func (b *Bot) fireMove(m cubebot.Move, p cubebot.Progress) {
	b.mu.RLock()
	cb := b.onMove
	b.mu.RUnlock()
	if cb != nil {
		cb(m, p)
	}
}

func (b *Bot) fireFault(err error) {
	b.mu.RLock()
	cb := b.onFault
	b.mu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

func (b *Bot) recordMove(m cubebot.Move, index int) {
	b.mu.RLock()
	solveID := b.solveID
	b.mu.RUnlock()
	if b.repo == nil || solveID == "" {
		return
	}
	if err := b.repo.RecordMove(solveID, index, m.Notation()); err != nil {
		b.log.Warn("failed to record move", zap.Error(err))
	}
}

func (b *Bot) recordFault(err error) {
	b.mu.RLock()
	solveID := b.solveID
	b.mu.RUnlock()
	if b.repo == nil || solveID == "" {
		return
	}
	arm := ""
	var fault *cubebot.ActuationFault
	if errors.As(err, &fault) {
		arm = string(fault.Arm)
	}
	if rerr := b.repo.RecordFault(solveID, arm, err.Error()); rerr != nil {
		b.log.Warn("failed to record fault", zap.Error(rerr))
	}
}
