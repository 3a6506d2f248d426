// Package solver produces near-optimal solutions for legal cube states
// using a two-phase reduction: phase 1 searches the full group for a path
// into the <U,D,R2,L2,F2,B2> subgroup, phase 2 finishes the solve inside
// it. Both phases run IDA* over small coordinate spaces with precomputed
// move and pruning tables.
package solver

import "github.com/SeamusWaldron/cubebot/internal/cubie"

// Coordinate space sizes.
const (
	numTwist = 2187  // 3^7 corner orientations
	numFlip  = 2048  // 2^11 edge orientations
	numSlice = 495   // C(12,4) positions of the four E-slice edges
	numCPerm = 40320 // 8! corner permutations
	numEPerm = 40320 // 8! permutations of the U/D edges (phase 2)
	numSPerm = 24    // 4! permutations of the slice edges (phase 2)
)

// twist encodes the corner orientations. 0 when solved.
func twist(c cubie.Cube) int {
	t := 0
	for i := 0; i < 7; i++ {
		t = t*3 + int(c.CO[i])
	}
	return t
}

// setTwist writes corner orientations for the given coordinate. The last
// corner's twist is forced by the group parity rule.
func setTwist(c *cubie.Cube, t int) {
	sum := 0
	for i := 6; i >= 0; i-- {
		c.CO[i] = uint8(t % 3)
		sum += t % 3
		t /= 3
	}
	c.CO[7] = uint8((3 - sum%3) % 3)
}

// flip encodes the edge orientations. 0 when solved.
func flip(c cubie.Cube) int {
	f := 0
	for i := 0; i < 11; i++ {
		f = f*2 + int(c.EO[i])
	}
	return f
}

// setFlip writes edge orientations for the given coordinate.
func setFlip(c *cubie.Cube, f int) {
	sum := 0
	for i := 10; i >= 0; i-- {
		c.EO[i] = uint8(f % 2)
		sum += f % 2
		f /= 2
	}
	c.EO[11] = uint8(sum % 2)
}

// binomial coefficient table for slice ranking, C[n][k] for n,k <= 12.
var choose = buildChoose()

func buildChoose() [13][5]int {
	var c [13][5]int
	for n := 0; n <= 12; n++ {
		c[n][0] = 1
		for k := 1; k <= 4 && k <= n; k++ {
			c[n][k] = c[n-1][k-1]
			if n-1 >= k {
				c[n][k] += c[n-1][k]
			}
		}
	}
	return c
}

// sliceCombo ranks which four edge slots hold the E-slice edges
// (colex rank of the occupied slot set). The solved cube ranks 494.
func sliceCombo(c cubie.Cube) int {
	rank, k := 0, 0
	for slot := 0; slot < 12; slot++ {
		if c.EP[slot] >= cubie.FR {
			k++
			rank += choose[slot][k]
		}
	}
	return rank
}

// setSliceCombo places the four slice edges into the slots encoded by
// rank, filling the remaining slots with U/D edges in index order. Only
// the permutation's slice membership is meaningful afterwards.
func setSliceCombo(c *cubie.Cube, rank int) {
	occupied := [12]bool{}
	for k := 4; k >= 1; k-- {
		slot := 11
		for choose[slot][k] > rank {
			slot--
		}
		occupied[slot] = true
		rank -= choose[slot][k]
	}
	slice, other := cubie.FR, 0
	for slot := 0; slot < 12; slot++ {
		if occupied[slot] {
			c.EP[slot] = uint8(slice)
			slice++
		} else {
			c.EP[slot] = uint8(other)
			other++
		}
	}
}

// permRank computes the Lehmer rank of a permutation. Identity ranks 0.
func permRank(p []uint8) int {
	rank := 0
	for i := 0; i < len(p); i++ {
		smaller := 0
		for j := i + 1; j < len(p); j++ {
			if p[j] < p[i] {
				smaller++
			}
		}
		rank = rank*(len(p)-i) + smaller
	}
	return rank
}

// permUnrank writes the permutation with the given Lehmer rank.
func permUnrank(rank int, p []uint8) {
	n := len(p)
	factor := 1
	for i := 2; i < n; i++ {
		factor *= i
	}
	used := make([]bool, n)
	for i := 0; i < n; i++ {
		smaller := 0
		if factor > 0 {
			smaller = rank / factor
			rank %= factor
		}
		for v := 0; v < n; v++ {
			if used[v] {
				continue
			}
			if smaller == 0 {
				p[i] = uint8(v)
				used[v] = true
				break
			}
			smaller--
		}
		if n-1-i > 0 {
			factor /= n - 1 - i
		}
	}
}

// cornerPerm encodes the corner permutation (phase 2). 0 when solved.
func cornerPerm(c cubie.Cube) int {
	return permRank(c.CP[:])
}

func setCornerPerm(c *cubie.Cube, rank int) {
	permUnrank(rank, c.CP[:])
}

// edgePerm encodes the permutation of the eight U/D edges across the
// eight U/D slots. Valid only inside the phase-2 subgroup.
func edgePerm(c cubie.Cube) int {
	return permRank(c.EP[:8])
}

func setEdgePerm(c *cubie.Cube, rank int) {
	permUnrank(rank, c.EP[:8])
	for i := 8; i < 12; i++ {
		c.EP[i] = uint8(i)
	}
}

// slicePerm encodes the permutation of the four slice edges within the
// slice. Valid only inside the phase-2 subgroup.
func slicePerm(c cubie.Cube) int {
	var p [4]uint8
	for i := 0; i < 4; i++ {
		p[i] = c.EP[8+i] - cubie.FR
	}
	return permRank(p[:])
}

func setSlicePerm(c *cubie.Cube, rank int) {
	var p [4]uint8
	permUnrank(rank, p[:])
	for i := 0; i < 4; i++ {
		c.EP[8+i] = p[i] + cubie.FR
	}
	for i := 0; i < 8; i++ {
		c.EP[i] = uint8(i)
	}
}
