package cubebot

import (
	"fmt"

	"github.com/SeamusWaldron/cubebot/internal/cubie"
)

// Verify checks that the cube is a physically reachable configuration: all
// twenty movable pieces present exactly once, corner twist divisible by 3,
// edge flip even, and matching permutation parity. It fails with
// ErrUnsolvableState otherwise.
//
// Apply preserves legality, so a cube built from NewCube and mutated only
// through Apply always verifies; this check matters for sensed states.
func (c *Cube) Verify() error {
	cc, err := c.toCubie()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsolvableState, err)
	}
	if err := cc.Verify(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsolvableState, err)
	}
	return nil
}

// toCubie converts the facelet model to the cubie-level model. Color
// values are home-face indices by construction, so the conversion is a
// plain copy.
func (c *Cube) toCubie() (cubie.Cube, error) {
	var f [6][9]uint8
	for face := 0; face < 6; face++ {
		for i := 0; i < 9; i++ {
			f[face][i] = uint8(c.Facelets[face][i])
		}
	}
	return cubie.FromFacelets(f)
}
