package bot

import (
	"context"
	"sync"
	"time"

	"github.com/SeamusWaldron/cubebot"
)

// Simulator stands in for the hardware and camera so solves can run dry.
// The driver confirms every action instantly at its commanded position;
// the sensor replays a seeded cube state.
type Simulator struct {
	mu    sync.Mutex
	cube  *cubebot.Cube
	delay time.Duration
}

// NewSimulator seeds a simulator with the cube the camera should report.
func NewSimulator(cube *cubebot.Cube) *Simulator {
	return &Simulator{cube: cube.Clone(), delay: time.Millisecond}
}

// SetDelay makes simulated actions take the given time, for exercising
// timeouts and the TUI.
func (s *Simulator) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetCube replaces the state the simulated camera reports.
func (s *Simulator) SetCube(cube *cubebot.Cube) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cube = cube.Clone()
}

// Do implements the orchestrator driver: every action lands exactly on
// target after the configured delay.
func (s *Simulator) Do(ctx context.Context, a cubebot.Action) (cubebot.Confirmation, error) {
	s.mu.Lock()
	delay := s.delay
	s.mu.Unlock()

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return cubebot.Confirmation{}, ctx.Err()
	}

	measured := a.Angle
	if a.Kind != cubebot.ActionRotate {
		measured = a.Width
	}
	return cubebot.Confirmation{OK: true, Measured: measured, At: time.Now()}, nil
}

// Nudge implements the calibration hook; the simulated servo is always
// already wherever it was sent.
func (s *Simulator) Nudge(ctx context.Context, arm cubebot.ArmID, axis string, qus int) error {
	return ctx.Err()
}

// Observe implements the camera sensor.
func (s *Simulator) Observe(ctx context.Context) (*cubebot.Cube, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cube.Clone(), nil
}
