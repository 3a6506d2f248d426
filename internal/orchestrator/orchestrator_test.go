package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SeamusWaldron/cubebot"
)

type span struct {
	action     cubebot.Action
	start, end time.Time
}

// fakeDriver records dispatch windows and lets tests inject behavior.
type fakeDriver struct {
	mu    sync.Mutex
	spans []span
	hook  func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error)
}

func (d *fakeDriver) Do(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
	start := time.Now()
	var conf cubebot.Confirmation
	var err error
	if d.hook != nil {
		conf, err = d.hook(ctx, a)
	} else {
		measured := a.Angle
		if a.Kind != cubebot.ActionRotate {
			measured = a.Width
		}
		conf = cubebot.Confirmation{OK: true, Measured: measured, At: time.Now()}
	}
	d.mu.Lock()
	d.spans = append(d.spans, span{action: a, start: start, end: time.Now()})
	d.mu.Unlock()
	return conf, err
}

var (
	overlapping = map[cubebot.ArmID]cubebot.Region{
		cubebot.ArmLeft:  {MinX: -100, MinY: -50, MaxX: 20, MaxY: 50},
		cubebot.ArmRight: {MinX: -20, MinY: -50, MaxX: 100, MaxY: 50},
	}
	disjoint = map[cubebot.ArmID]cubebot.Region{
		cubebot.ArmLeft:  {MinX: -100, MinY: -50, MaxX: -10, MaxY: 50},
		cubebot.ArmRight: {MinX: 10, MinY: -50, MaxX: 100, MaxY: 50},
	}
)

func newTestOrchestrator(d Driver, regions map[cubebot.ArmID]cubebot.Region) *Orchestrator {
	return New(Config{Driver: d, ActionTimeout: time.Second, Regions: regions})
}

func TestDoConfirmsAndReturnsToIdle(t *testing.T) {
	d := &fakeDriver{}
	o := newTestOrchestrator(d, overlapping)

	a := cubebot.Action{Arm: cubebot.ArmLeft, Kind: cubebot.ActionRotate, Angle: 180}
	conf, err := o.Do(context.Background(), a)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !conf.OK || conf.Measured != 180 {
		t.Errorf("confirmation = %+v", conf)
	}
	if got := o.State(cubebot.ArmLeft); got != StateIdle {
		t.Errorf("state after confirm = %v, want idle", got)
	}
}

func TestTimeoutFaultsArm(t *testing.T) {
	// Only the right arm's servo is dead.
	d := &fakeDriver{hook: func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		if a.Arm == cubebot.ArmRight {
			<-ctx.Done()
			return cubebot.Confirmation{}, ctx.Err()
		}
		return cubebot.Confirmation{OK: true, Measured: a.Width, At: time.Now()}, nil
	}}
	o := New(Config{Driver: d, ActionTimeout: 20 * time.Millisecond, Regions: overlapping})

	a := cubebot.Action{Arm: cubebot.ArmRight, Kind: cubebot.ActionGrip}
	_, err := o.Do(context.Background(), a)

	var fault *cubebot.ActuationFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected ActuationFault, got %v", err)
	}
	if fault.Arm != cubebot.ArmRight {
		t.Errorf("fault arm = %s", fault.Arm)
	}
	if got := o.State(cubebot.ArmRight); got != StateFaulted {
		t.Errorf("state = %v, want faulted", got)
	}

	// A faulted arm refuses further work until the fault is cleared.
	if _, err := o.Do(context.Background(), a); !errors.Is(err, cubebot.ErrArmFaulted) {
		t.Errorf("expected ErrArmFaulted, got %v", err)
	}

	// The frozen arm still occupies its workspace: the other arm's
	// overlapping dispatch stays deferred until the fault clears.
	leftDone := make(chan error, 1)
	go func() {
		_, err := o.Do(context.Background(), cubebot.Action{Arm: cubebot.ArmLeft, Kind: cubebot.ActionGrip})
		leftDone <- err
	}()
	select {
	case err := <-leftDone:
		t.Fatalf("left arm dispatched into the faulted arm's workspace (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	o.ClearFault(cubebot.ArmRight)
	if err := <-leftDone; err != nil {
		t.Errorf("left arm after fault clear: %v", err)
	}
	if got := o.State(cubebot.ArmRight); got != StateIdle {
		t.Errorf("state after clear = %v, want idle", got)
	}
	if o.Fault(cubebot.ArmRight) != nil {
		t.Error("fault not cleared")
	}
}

// A faulted arm in a disjoint workspace does not gate the other arm.
func TestFaultedArmFreesDisjointWorkspace(t *testing.T) {
	d := &fakeDriver{hook: func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		if a.Arm == cubebot.ArmRight {
			<-ctx.Done()
			return cubebot.Confirmation{}, ctx.Err()
		}
		return cubebot.Confirmation{OK: true, Measured: a.Width, At: time.Now()}, nil
	}}
	o := New(Config{Driver: d, ActionTimeout: 20 * time.Millisecond, Regions: disjoint})

	if _, err := o.Do(context.Background(), cubebot.Action{Arm: cubebot.ArmRight, Kind: cubebot.ActionGrip}); err == nil {
		t.Fatal("expected right arm to fault")
	}
	if _, err := o.Do(context.Background(), cubebot.Action{Arm: cubebot.ArmLeft, Kind: cubebot.ActionGrip}); err != nil {
		t.Errorf("left arm in its own workspace: %v", err)
	}
}

func TestUnconfirmedActionFaults(t *testing.T) {
	d := &fakeDriver{hook: func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		return cubebot.Confirmation{OK: false}, nil
	}}
	o := newTestOrchestrator(d, overlapping)

	_, err := o.Do(context.Background(), cubebot.Action{Arm: cubebot.ArmLeft, Kind: cubebot.ActionRotate, Angle: 90})
	var fault *cubebot.ActuationFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected ActuationFault, got %v", err)
	}
}

// Overlapping workspaces must never see both arms active at once, however
// the dispatch order falls out.
func TestOverlappingRegionsSerialize(t *testing.T) {
	d := &fakeDriver{hook: func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		time.Sleep(5 * time.Millisecond)
		return cubebot.Confirmation{OK: true, Measured: a.Angle, At: time.Now()}, nil
	}}
	o := newTestOrchestrator(d, overlapping)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		arm := cubebot.ArmLeft
		if i%2 == 1 {
			arm = cubebot.ArmRight
		}
		wg.Add(1)
		go func(arm cubebot.ArmID) {
			defer wg.Done()
			if _, err := o.Do(context.Background(), cubebot.Action{Arm: arm, Kind: cubebot.ActionRotate, Angle: 90}); err != nil {
				t.Errorf("Do(%s): %v", arm, err)
			}
		}(arm)
	}
	wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range d.spans {
		for _, b := range d.spans[i+1:] {
			if a.action.Arm == b.action.Arm {
				continue
			}
			if a.start.Before(b.end) && b.start.Before(a.end) {
				t.Fatalf("arms overlapped: %s [%v,%v] vs %s [%v,%v]",
					a.action.Arm, a.start, a.end, b.action.Arm, b.start, b.end)
			}
		}
	}
}

// Disjoint workspaces may run concurrently. Each driver call waits for the
// other arm's call to start, which deadlocks if dispatch serializes.
func TestDisjointRegionsRunConcurrently(t *testing.T) {
	leftStarted := make(chan struct{})
	rightStarted := make(chan struct{})
	d := &fakeDriver{hook: func(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		if a.Arm == cubebot.ArmLeft {
			close(leftStarted)
			select {
			case <-rightStarted:
			case <-ctx.Done():
				return cubebot.Confirmation{}, ctx.Err()
			}
		} else {
			close(rightStarted)
			select {
			case <-leftStarted:
			case <-ctx.Done():
				return cubebot.Confirmation{}, ctx.Err()
			}
		}
		return cubebot.Confirmation{OK: true, At: time.Now()}, nil
	}}
	o := newTestOrchestrator(d, disjoint)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, arm := range []cubebot.ArmID{cubebot.ArmLeft, cubebot.ArmRight} {
		wg.Add(1)
		go func(arm cubebot.ArmID) {
			defer wg.Done()
			_, err := o.Do(context.Background(), cubebot.Action{Arm: arm, Kind: cubebot.ActionGrip})
			errs <- err
		}(arm)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent dispatch failed: %v", err)
		}
	}
}

func TestExecuteAbortsBetweenActions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &fakeDriver{hook: func(_ context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
		cancel() // abort arrives while the first action is in flight
		return cubebot.Confirmation{OK: true, Measured: a.Angle, At: time.Now()}, nil
	}}
	o := newTestOrchestrator(d, overlapping)

	actions := []cubebot.Action{
		{Arm: cubebot.ArmLeft, Kind: cubebot.ActionRotate, Angle: 180},
		{Arm: cubebot.ArmLeft, Kind: cubebot.ActionRelease, Width: 1},
	}
	confs, err := o.Execute(ctx, actions)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// The in-flight action completed; the next one never dispatched.
	if len(confs) != 1 {
		t.Fatalf("got %d confirmations, want 1", len(confs))
	}
	if len(d.spans) != 1 {
		t.Fatalf("driver saw %d actions, want 1", len(d.spans))
	}
	if got := o.State(cubebot.ArmLeft); got != StateIdle {
		t.Errorf("abort must not fault the arm, state = %v", got)
	}
}
