package solver

import (
	"context"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/cubie"
)

const (
	// MaxLength is the documented worst-case solution bound.
	MaxLength = 30

	maxPhase1 = 12
	maxPhase2 = 18

	// DefaultNodeBudget caps the total nodes visited across both phases
	// before the solver gives up rather than hang.
	DefaultNodeBudget = 4_000_000

	ctxCheckInterval = 1 << 12
)

// faceOrder maps cubie face indices to notation faces.
var faceOrder = [6]cubebot.Face{
	cubebot.FaceU, cubebot.FaceD, cubebot.FaceF,
	cubebot.FaceB, cubebot.FaceR, cubebot.FaceL,
}

// moveOf converts a cubie move index to a canonical Move.
func moveOf(m int) cubebot.Move {
	face, power := m/3, m%3+1
	turn := cubebot.CW
	switch power {
	case 2:
		turn = cubebot.Double
	case 3:
		turn = cubebot.CCW
	}
	return cubebot.Move{Face: faceOrder[face], Turn: turn}
}

// Solver finds move sequences that bring a legal cube state to solved.
// The zero value is not usable; call New.
type Solver struct {
	maxLength  int
	nodeBudget int64
}

// Option configures a Solver.
type Option func(*Solver)

// WithMaxLength lowers the accepted solution length. Values below the
// subgroup diameter make some states take longer to solve or time out.
func WithMaxLength(n int) Option {
	return func(s *Solver) { s.maxLength = n }
}

// WithNodeBudget caps search effort before ErrSolverTimeout.
func WithNodeBudget(n int64) Option {
	return func(s *Solver) { s.nodeBudget = n }
}

// New creates a solver. The shared move and pruning tables are built on
// the first Solve call and reused by every solver in the process.
func New(opts ...Option) *Solver {
	s := &Solver{
		maxLength:  MaxLength,
		nodeBudget: DefaultNodeBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// search carries the mutable state of one solve attempt.
type search struct {
	t      *tables
	ctx    context.Context
	nodes  int64
	budget int64

	start  cubie.Cube
	maxLen int

	moves1 [maxPhase1]int
	moves2 [maxPhase2]int
	depth1 int

	solution []cubebot.Move
}

// Solve returns a move sequence that brings state to solved, of length at
// most the configured bound (30 by default, typically much shorter). A
// solved input yields an empty sequence. It fails with
// cubebot.ErrUnsolvableState for illegal states and
// cubebot.ErrSolverTimeout when the search budget or ctx expires.
func (s *Solver) Solve(ctx context.Context, state *cubebot.Cube) ([]cubebot.Move, error) {
	if err := state.Verify(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, cubebot.ErrSolverTimeout
	default:
	}

	var f [6][9]uint8
	for face := 0; face < 6; face++ {
		for i := 0; i < 9; i++ {
			f[face][i] = uint8(state.Facelets[face][i])
		}
	}
	cc, err := cubie.FromFacelets(f)
	if err != nil {
		return nil, cubebot.ErrUnsolvableState
	}
	if cc.IsSolved() {
		return []cubebot.Move{}, nil
	}

	sr := &search{
		t:      getTables(),
		ctx:    ctx,
		budget: s.nodeBudget,
		start:  cc,
		maxLen: s.maxLength,
	}

	tw, fl, sl := twist(cc), flip(cc), sliceCombo(cc)
	for depth1 := 0; depth1 <= maxPhase1; depth1++ {
		sr.depth1 = depth1
		found, err := sr.phase1(tw, fl, sl, depth1, -1)
		if err != nil {
			return nil, err
		}
		if found {
			return sr.solution, nil
		}
	}
	return nil, cubebot.ErrSolverTimeout
}

// tick counts a node and checks the budget and context.
func (sr *search) tick() error {
	sr.nodes++
	if sr.nodes > sr.budget {
		return cubebot.ErrSolverTimeout
	}
	if sr.nodes%ctxCheckInterval == 0 {
		select {
		case <-sr.ctx.Done():
			return cubebot.ErrSolverTimeout
		default:
		}
	}
	return nil
}

// allowedAfter canonicalizes successor moves: no second turn of the same
// face, and within an axis the higher face index must come first.
func allowedAfter(face, lastFace int) bool {
	if lastFace < 0 {
		return true
	}
	if face == lastFace {
		return false
	}
	if face/2 == lastFace/2 && face > lastFace {
		return false
	}
	return true
}

// phase1 runs depth-limited IDA* toward the subgroup. remaining counts
// moves still available at this node.
func (sr *search) phase1(tw, fl, sl, remaining, lastFace int) (bool, error) {
	if err := sr.tick(); err != nil {
		return false, err
	}

	h1 := sr.t.pruneTwistSlice[tw*numSlice+sl]
	if h2 := sr.t.pruneFlipSlice[fl*numSlice+sl]; h2 > h1 {
		h1 = h2
	}
	if int(h1) > remaining {
		return false, nil
	}
	if remaining == 0 {
		// In the subgroup. A tail move that is itself a subgroup move
		// means a shorter phase-1 solution already covered this state.
		if sr.depth1 > 0 && isPhase2Move(sr.moves1[sr.depth1-1]) {
			return false, nil
		}
		return sr.startPhase2(lastFace)
	}

	for m := 0; m < 18; m++ {
		if !allowedAfter(m/3, lastFace) {
			continue
		}
		sr.moves1[sr.depth1-remaining] = m
		found, err := sr.phase1(
			int(sr.t.twistMove[tw][m]),
			int(sr.t.flipMove[fl][m]),
			int(sr.t.sliceMove[sl][m]),
			remaining-1, m/3)
		if found || err != nil {
			return found, err
		}
	}
	return false, nil
}

// startPhase2 applies the phase-1 moves and searches the subgroup for a
// finishing sequence within the remaining length allowance.
func (sr *search) startPhase2(lastFace int) (bool, error) {
	c := sr.start
	for i := 0; i < sr.depth1; i++ {
		c = c.Move(sr.moves1[i])
	}

	cp, ep, sp := cornerPerm(c), edgePerm(c), slicePerm(c)
	cap2 := sr.maxLen - sr.depth1
	if cap2 > maxPhase2 {
		cap2 = maxPhase2
	}
	for depth2 := 0; depth2 <= cap2; depth2++ {
		found, err := sr.phase2(cp, ep, sp, depth2, depth2, lastFace)
		if err != nil {
			return false, err
		}
		if found {
			sol := make([]cubebot.Move, 0, sr.depth1+depth2)
			for i := 0; i < sr.depth1; i++ {
				sol = append(sol, moveOf(sr.moves1[i]))
			}
			for i := 0; i < depth2; i++ {
				sol = append(sol, moveOf(sr.moves2[i]))
			}
			sr.solution = cubebot.Simplify(sol)
			return true, nil
		}
	}
	return false, nil
}

// phase2 runs depth-limited IDA* inside the subgroup.
func (sr *search) phase2(cp, ep, sp, remaining, depth2, lastFace int) (bool, error) {
	if err := sr.tick(); err != nil {
		return false, err
	}

	h := sr.t.pruneCPermSPerm[cp*numSPerm+sp]
	if h2 := sr.t.pruneEPermSPerm[ep*numSPerm+sp]; h2 > h {
		h = h2
	}
	if int(h) > remaining {
		return false, nil
	}
	if remaining == 0 {
		return cp == 0 && ep == 0 && sp == 0, nil
	}

	for i, m := range phase2Moves {
		if !allowedAfter(m/3, lastFace) {
			continue
		}
		sr.moves2[depth2-remaining] = m
		found, err := sr.phase2(
			int(sr.t.cpermMove[cp][i]),
			int(sr.t.epermMove[ep][i]),
			int(sr.t.spermMove[sp][i]),
			remaining-1, depth2, m/3)
		if found || err != nil {
			return found, err
		}
	}
	return false, nil
}
