package solver

import (
	"sync"

	"github.com/SeamusWaldron/cubebot/internal/cubie"
)

// phase2Moves are the move indices allowed inside the subgroup:
// all U and D turns plus the half turns of the other faces.
var phase2Moves = []int{
	cubie.MoveIndex(cubie.FaceIdxU, 1), cubie.MoveIndex(cubie.FaceIdxU, 2), cubie.MoveIndex(cubie.FaceIdxU, 3),
	cubie.MoveIndex(cubie.FaceIdxD, 1), cubie.MoveIndex(cubie.FaceIdxD, 2), cubie.MoveIndex(cubie.FaceIdxD, 3),
	cubie.MoveIndex(cubie.FaceIdxF, 2),
	cubie.MoveIndex(cubie.FaceIdxB, 2),
	cubie.MoveIndex(cubie.FaceIdxR, 2),
	cubie.MoveIndex(cubie.FaceIdxL, 2),
}

// isPhase2Move reports whether move m stays inside the subgroup.
func isPhase2Move(m int) bool {
	face, power := m/3, m%3+1
	return face <= cubie.FaceIdxD || power == 2
}

// tables holds every precomputed move and pruning table. Built once,
// lazily, on first solve; construction takes well under a second.
type tables struct {
	// Phase 1 move tables: coordinate x move -> coordinate.
	twistMove [numTwist][18]uint16
	flipMove  [numFlip][18]uint16
	sliceMove [numSlice][18]uint16

	// Phase 2 move tables, indexed by position in phase2Moves.
	cpermMove [numCPerm][10]uint16
	epermMove [numEPerm][10]uint16
	spermMove [numSPerm][10]uint16

	// Pruning tables: lower bounds on remaining moves, from joint BFS.
	pruneTwistSlice []uint8 // twist*numSlice + slice
	pruneFlipSlice  []uint8 // flip*numSlice + slice
	pruneCPermSPerm []uint8 // cperm*numSPerm + sperm
	pruneEPermSPerm []uint8 // eperm*numSPerm + sperm
}

var (
	tabOnce sync.Once
	tab     *tables
)

func getTables() *tables {
	tabOnce.Do(func() {
		t := &tables{}
		t.buildMoveTables()
		t.buildPruneTables()
		tab = t
	})
	return tab
}

func (t *tables) buildMoveTables() {
	for coord := 0; coord < numTwist; coord++ {
		c := cubie.Solved()
		setTwist(&c, coord)
		for m := 0; m < 18; m++ {
			t.twistMove[coord][m] = uint16(twist(c.Move(m)))
		}
	}
	for coord := 0; coord < numFlip; coord++ {
		c := cubie.Solved()
		setFlip(&c, coord)
		for m := 0; m < 18; m++ {
			t.flipMove[coord][m] = uint16(flip(c.Move(m)))
		}
	}
	for coord := 0; coord < numSlice; coord++ {
		c := cubie.Solved()
		setSliceCombo(&c, coord)
		for m := 0; m < 18; m++ {
			t.sliceMove[coord][m] = uint16(sliceCombo(c.Move(m)))
		}
	}
	for coord := 0; coord < numCPerm; coord++ {
		c := cubie.Solved()
		setCornerPerm(&c, coord)
		for i, m := range phase2Moves {
			t.cpermMove[coord][i] = uint16(cornerPerm(c.Move(m)))
		}
	}
	for coord := 0; coord < numEPerm; coord++ {
		c := cubie.Solved()
		setEdgePerm(&c, coord)
		for i, m := range phase2Moves {
			t.epermMove[coord][i] = uint16(edgePerm(c.Move(m)))
		}
	}
	for coord := 0; coord < numSPerm; coord++ {
		c := cubie.Solved()
		setSlicePerm(&c, coord)
		for i, m := range phase2Moves {
			t.spermMove[coord][i] = uint16(slicePerm(c.Move(m)))
		}
	}
}

func (t *tables) buildPruneTables() {
	solved := cubie.Solved()

	t.pruneTwistSlice = bfs(numTwist*numSlice,
		twist(solved)*numSlice+sliceCombo(solved),
		func(state int, out []int) []int {
			tw, sl := state/numSlice, state%numSlice
			for m := 0; m < 18; m++ {
				out = append(out, int(t.twistMove[tw][m])*numSlice+int(t.sliceMove[sl][m]))
			}
			return out
		})

	t.pruneFlipSlice = bfs(numFlip*numSlice,
		flip(solved)*numSlice+sliceCombo(solved),
		func(state int, out []int) []int {
			fl, sl := state/numSlice, state%numSlice
			for m := 0; m < 18; m++ {
				out = append(out, int(t.flipMove[fl][m])*numSlice+int(t.sliceMove[sl][m]))
			}
			return out
		})

	t.pruneCPermSPerm = bfs(numCPerm*numSPerm,
		0, // identity permutations rank 0
		func(state int, out []int) []int {
			cp, sp := state/numSPerm, state%numSPerm
			for i := range phase2Moves {
				out = append(out, int(t.cpermMove[cp][i])*numSPerm+int(t.spermMove[sp][i]))
			}
			return out
		})

	t.pruneEPermSPerm = bfs(numEPerm*numSPerm,
		0,
		func(state int, out []int) []int {
			ep, sp := state/numSPerm, state%numSPerm
			for i := range phase2Moves {
				out = append(out, int(t.epermMove[ep][i])*numSPerm+int(t.spermMove[sp][i]))
			}
			return out
		})
}

// bfs computes distances from the goal state over the whole coordinate
// space. Unreachable entries stay at 0xFF; they only occur for coordinate
// pairs that no legal cube produces.
func bfs(size, start int, succ func(state int, out []int) []int) []uint8 {
	dist := make([]uint8, size)
	for i := range dist {
		dist[i] = 0xFF
	}
	dist[start] = 0
	frontier := []int{start}
	buf := make([]int, 0, 18)
	for depth := uint8(0); len(frontier) > 0; depth++ {
		var next []int
		for _, s := range frontier {
			buf = succ(s, buf[:0])
			for _, n := range buf {
				if dist[n] == 0xFF {
					dist[n] = depth + 1
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return dist
}
