package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/SeamusWaldron/cubebot"
)

func applyAll(t *testing.T, c *cubebot.Cube, moves []cubebot.Move) *cubebot.Cube {
	t.Helper()
	for _, m := range moves {
		next, err := c.Apply(m)
		if err != nil {
			t.Fatalf("apply %s: %v", m.Notation(), err)
		}
		c = next
	}
	return c
}

func TestSolveSolvedCube(t *testing.T) {
	sol, err := New().Solve(context.Background(), cubebot.NewCube())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(sol) != 0 {
		t.Errorf("expected empty solution for solved cube, got %s", cubebot.FormatMoves(sol))
	}
}

func TestSolveSexyMove(t *testing.T) {
	c := applyAll(t, cubebot.NewCube(), []cubebot.Move{
		cubebot.R, cubebot.U, cubebot.RPrime, cubebot.UPrime,
	})

	sol, err := New().Solve(context.Background(), c)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(sol) == 0 || len(sol) > MaxLength {
		t.Fatalf("solution length %d out of range", len(sol))
	}
	if !applyAll(t, c, sol).IsSolved() {
		t.Errorf("solution %s does not solve the cube", cubebot.FormatMoves(sol))
	}
}

func TestSolveScrambles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping solver search in short mode")
	}
	s := New()
	for i := 0; i < 5; i++ {
		scramble := cubebot.Scramble(20)
		c := applyAll(t, cubebot.NewCube(), scramble)

		sol, err := s.Solve(context.Background(), c)
		if err != nil {
			t.Fatalf("Solve(%s): %v", cubebot.FormatMoves(scramble), err)
		}
		if len(sol) > MaxLength {
			t.Errorf("solution for %s has %d moves, want <= %d",
				cubebot.FormatMoves(scramble), len(sol), MaxLength)
		}
		if !applyAll(t, c, sol).IsSolved() {
			t.Errorf("solution %s does not solve scramble %s",
				cubebot.FormatMoves(sol), cubebot.FormatMoves(scramble))
		}
	}
}

func TestSolveIllegalState(t *testing.T) {
	c := cubebot.NewCube()
	// Twist a single corner in place; the state becomes unreachable.
	c.Facelets[0][8], c.Facelets[4][0], c.Facelets[2][2] =
		c.Facelets[2][2], c.Facelets[0][8], c.Facelets[4][0]

	_, err := New().Solve(context.Background(), c)
	if !errors.Is(err, cubebot.ErrUnsolvableState) {
		t.Errorf("expected ErrUnsolvableState, got %v", err)
	}
}

func hardScramble(t *testing.T) *cubebot.Cube {
	t.Helper()
	moves, err := cubebot.ParseMoves("R U2 F' L D B2 R' U F2 L' D2 B R2 U' F")
	if err != nil {
		t.Fatalf("ParseMoves: %v", err)
	}
	return applyAll(t, cubebot.NewCube(), moves)
}

func TestSolveBudgetExhausted(t *testing.T) {
	_, err := New(WithNodeBudget(10)).Solve(context.Background(), hardScramble(t))
	if !errors.Is(err, cubebot.ErrSolverTimeout) {
		t.Errorf("expected ErrSolverTimeout, got %v", err)
	}
}

func TestSolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Solve(ctx, hardScramble(t))
	if !errors.Is(err, cubebot.ErrSolverTimeout) {
		t.Errorf("expected ErrSolverTimeout, got %v", err)
	}
}
