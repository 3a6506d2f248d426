// Package cubie provides the cubie-level (permutation + orientation) model
// of a 3x3 cube. It backs the legality check on cube states and the
// coordinate math used by the two-phase solver.
package cubie

import "errors"

// Validation errors. The public API surfaces these as a single
// "unsolvable state" condition; the split exists for tests and logs.
var (
	ErrMissingCorner = errors.New("cubie: not all corner pieces present")
	ErrMissingEdge   = errors.New("cubie: not all edge pieces present")
	ErrTwistParity   = errors.New("cubie: corner twist sum not divisible by 3")
	ErrFlipParity    = errors.New("cubie: edge flip sum not divisible by 2")
	ErrPermParity    = errors.New("cubie: corner and edge permutation parity differ")
	ErrBadFacelets   = errors.New("cubie: facelets do not form recognizable pieces")
)

// Corner slots/pieces, in the fixed order used throughout the package.
const (
	URF = iota
	UFL
	ULB
	UBR
	DFR
	DLF
	DBL
	DRB
)

// Edge slots/pieces. FR..BR are the four E-slice edges.
const (
	UR = iota
	UF
	UL
	UB
	DR
	DF
	DL
	DB
	FR
	FL
	BL
	BR
)

// Cube is a cubie-level cube state: corner permutation and orientation,
// edge permutation and orientation. The zero value is NOT solved; use
// Solved().
type Cube struct {
	CP [8]uint8  // corner permutation: piece occupying each corner slot
	CO [8]uint8  // corner orientation: twist 0..2 per slot
	EP [12]uint8 // edge permutation: piece occupying each edge slot
	EO [12]uint8 // edge orientation: flip 0..1 per slot
}

// Solved returns the identity cube.
func Solved() Cube {
	var c Cube
	for i := range c.CP {
		c.CP[i] = uint8(i)
	}
	for i := range c.EP {
		c.EP[i] = uint8(i)
	}
	return c
}

// IsSolved reports whether the cube is the identity.
func (c Cube) IsSolved() bool {
	return c == Solved()
}

// Multiply returns c * b: the state reached by applying b's permutation
// after c's. Applying a move is Multiply with the move's cube.
func (c Cube) Multiply(b Cube) Cube {
	var r Cube
	for i := 0; i < 8; i++ {
		r.CP[i] = c.CP[b.CP[i]]
		r.CO[i] = (c.CO[b.CP[i]] + b.CO[i]) % 3
	}
	for i := 0; i < 12; i++ {
		r.EP[i] = c.EP[b.EP[i]]
		r.EO[i] = (c.EO[b.EP[i]] + b.EO[i]) % 2
	}
	return r
}

// Verify checks that the cube is a legal member of the cube group:
// every piece present exactly once, twist sum divisible by 3, flip sum
// even, and corner/edge permutation parities equal.
func (c Cube) Verify() error {
	var cseen, eseen [12]bool
	for _, p := range c.CP {
		if p >= 8 || cseen[p] {
			return ErrMissingCorner
		}
		cseen[p] = true
	}
	for _, p := range c.EP {
		if p >= 12 || eseen[p] {
			return ErrMissingEdge
		}
		eseen[p] = true
	}

	twist := 0
	for _, o := range c.CO {
		if o > 2 {
			return ErrTwistParity
		}
		twist += int(o)
	}
	if twist%3 != 0 {
		return ErrTwistParity
	}

	flip := 0
	for _, o := range c.EO {
		if o > 1 {
			return ErrFlipParity
		}
		flip += int(o)
	}
	if flip%2 != 0 {
		return ErrFlipParity
	}

	if permParity(c.CP[:]) != permParity(c.EP[:]) {
		return ErrPermParity
	}
	return nil
}

// permParity returns 0 for even permutations, 1 for odd.
func permParity(p []uint8) int {
	parity := 0
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if p[i] > p[j] {
				parity ^= 1
			}
		}
	}
	return parity
}
