package cubebot

import "strings"

// Color represents a face color.
type Color byte

const (
	White  Color = 0 // Up face when solved
	Yellow Color = 1 // Down face when solved
	Green  Color = 2 // Front face when solved
	Blue   Color = 3 // Back face when solved
	Red    Color = 4 // Right face when solved
	Orange Color = 5 // Left face when solved
)

func (c Color) String() string {
	switch c {
	case White:
		return "W"
	case Yellow:
		return "Y"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Red:
		return "R"
	case Orange:
		return "O"
	default:
		return "?"
	}
}

// CubeFace indexes a face in the facelet model.
// This is distinct from Face which is used for move notation.
type CubeFace int

const (
	CubeFaceU CubeFace = 0 // Up (White)
	CubeFaceD CubeFace = 1 // Down (Yellow)
	CubeFaceF CubeFace = 2 // Front (Green)
	CubeFaceB CubeFace = 3 // Back (Blue)
	CubeFaceR CubeFace = 4 // Right (Red)
	CubeFaceL CubeFace = 5 // Left (Orange)
)

func (f CubeFace) String() string {
	switch f {
	case CubeFaceU:
		return "U"
	case CubeFaceD:
		return "D"
	case CubeFaceF:
		return "F"
	case CubeFaceB:
		return "B"
	case CubeFaceR:
		return "R"
	case CubeFaceL:
		return "L"
	default:
		return "?"
	}
}

// Cube represents a 3x3 Rubik's cube.
// Each face has 9 facelets indexed as:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// The center (index 4) defines the face color and never moves.
//
// Cube values are immutable through the public API: Apply returns a new
// cube and never partially mutates its receiver.
type Cube struct {
	// Facelets[face][position] = color
	Facelets [6][9]Color
}

// NewCube creates a solved cube with standard orientation:
// White on top, Green in front.
func NewCube() *Cube {
	c := &Cube{}
	for face := CubeFace(0); face < 6; face++ {
		color := faceToSolvedColor(face)
		for i := 0; i < 9; i++ {
			c.Facelets[face][i] = color
		}
	}
	return c
}

// faceToSolvedColor returns the color of a face when solved.
func faceToSolvedColor(f CubeFace) Color {
	switch f {
	case CubeFaceU:
		return White
	case CubeFaceD:
		return Yellow
	case CubeFaceF:
		return Green
	case CubeFaceB:
		return Blue
	case CubeFaceR:
		return Red
	case CubeFaceL:
		return Orange
	default:
		return White
	}
}

// colorToFace maps a facelet color letter to its home face.
var colorToFace = map[byte]CubeFace{
	'W': CubeFaceU, 'Y': CubeFaceD, 'G': CubeFaceF,
	'B': CubeFaceB, 'R': CubeFaceR, 'O': CubeFaceL,
}

// faceletOrder is the face order used by the camera wire format and the
// Facelets/ParseFacelets string form.
var faceletOrder = [6]CubeFace{CubeFaceU, CubeFaceD, CubeFaceL, CubeFaceR, CubeFaceF, CubeFaceB}

// ParseFacelets builds a cube from a 54-character color string in face
// order U D L R F B, 9 facelets per face, colors W Y G B R O.
// It fails with ErrInvalidFacelets on malformed input; the result is not
// checked for group legality (use Verify for that).
func ParseFacelets(s string) (*Cube, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 54 {
		return nil, ErrInvalidFacelets
	}
	c := &Cube{}
	for i := 0; i < 54; i++ {
		face := faceletOrder[i/9]
		col, ok := colorLetter(s[i])
		if !ok {
			return nil, ErrInvalidFacelets
		}
		c.Facelets[face][i%9] = col
	}
	return c, nil
}

func colorLetter(b byte) (Color, bool) {
	switch b {
	case 'W':
		return White, true
	case 'Y':
		return Yellow, true
	case 'G':
		return Green, true
	case 'B':
		return Blue, true
	case 'R':
		return Red, true
	case 'O':
		return Orange, true
	}
	return 0, false
}

// FaceletString returns the 54-character color string in face order
// U D L R F B, the inverse of ParseFacelets.
func (c *Cube) FaceletString() string {
	var sb strings.Builder
	sb.Grow(54)
	for _, face := range faceletOrder {
		for i := 0; i < 9; i++ {
			sb.WriteString(c.Facelets[face][i].String())
		}
	}
	return sb.String()
}

// Clone creates a deep copy of the cube.
func (c *Cube) Clone() *Cube {
	clone := *c
	return &clone
}

// IsSolved returns true if the cube is in the solved state.
func (c *Cube) IsSolved() bool {
	for face := CubeFace(0); face < 6; face++ {
		expectedColor := faceToSolvedColor(face)
		for i := 0; i < 9; i++ {
			if c.Facelets[face][i] != expectedColor {
				return false
			}
		}
	}
	return true
}

// Apply returns a new cube with the move applied. The receiver is never
// modified. It fails with ErrInvalidMove if m is not one of the 18
// canonical face turns.
func (c *Cube) Apply(m Move) (*Cube, error) {
	if !m.IsCanonical() {
		return nil, ErrInvalidMove
	}
	next := c.Clone()
	next.apply(m)
	return next, nil
}

// ApplyAll applies a sequence of moves, returning the resulting cube.
// The receiver is never modified.
func (c *Cube) ApplyAll(moves ...Move) (*Cube, error) {
	next := c.Clone()
	for _, m := range moves {
		if !m.IsCanonical() {
			return nil, ErrInvalidMove
		}
		next.apply(m)
	}
	return next, nil
}

// MustApply is Apply for canonical moves known at compile time; it panics
// on a non-canonical move.
func (c *Cube) MustApply(moves ...Move) *Cube {
	next, err := c.ApplyAll(moves...)
	if err != nil {
		panic(err)
	}
	return next
}

// apply mutates the cube in place. Internal use only; the public API is
// immutable.
func (c *Cube) apply(m Move) {
	face := moveFaceToCubeFace(m.Face)
	switch m.Turn {
	case CW:
		c.moveCW(face)
	case CCW:
		c.moveCCW(face)
	case Double:
		c.moveCW(face)
		c.moveCW(face)
	}
}

// moveFaceToCubeFace converts notation Face to model CubeFace.
func moveFaceToCubeFace(f Face) CubeFace {
	switch f {
	case FaceU:
		return CubeFaceU
	case FaceD:
		return CubeFaceD
	case FaceF:
		return CubeFaceF
	case FaceB:
		return CubeFaceB
	case FaceR:
		return CubeFaceR
	case FaceL:
		return CubeFaceL
	default:
		return CubeFaceU
	}
}

// rotateFaceCW rotates a face 90 degrees clockwise.
func (c *Cube) rotateFaceCW(face CubeFace) {
	f := &c.Facelets[face]
	// Corner rotation: 0->2->8->6->0
	// Edge rotation: 1->5->7->3->1
	temp := f[0]
	f[0] = f[6]
	f[6] = f[8]
	f[8] = f[2]
	f[2] = temp

	temp = f[1]
	f[1] = f[3]
	f[3] = f[7]
	f[7] = f[5]
	f[5] = temp
}

// rotateFaceCCW rotates a face 90 degrees counter-clockwise.
func (c *Cube) rotateFaceCCW(face CubeFace) {
	f := &c.Facelets[face]
	temp := f[0]
	f[0] = f[2]
	f[2] = f[8]
	f[8] = f[6]
	f[6] = temp

	temp = f[1]
	f[1] = f[5]
	f[5] = f[7]
	f[7] = f[3]
	f[3] = temp
}

// moveCW applies a clockwise move.
func (c *Cube) moveCW(face CubeFace) {
	c.rotateFaceCW(face)
	c.cycleEdgesCW(face)
}

// moveCCW applies a counter-clockwise move.
func (c *Cube) moveCCW(face CubeFace) {
	c.rotateFaceCCW(face)
	c.cycleEdgesCCW(face)
}

// cycleEdgesCW cycles the edge facelets around a face (clockwise).
func (c *Cube) cycleEdgesCW(face CubeFace) {
	// Each face affects 4 adjacent faces' edges
	switch face {
	case CubeFaceU:
		// U affects F, L, B, R top rows
		c.cycle4(
			[3]int{int(CubeFaceF), 0, 1}, [3]int{int(CubeFaceF), 1, 1}, [3]int{int(CubeFaceF), 2, 1},
			[3]int{int(CubeFaceL), 0, 1}, [3]int{int(CubeFaceL), 1, 1}, [3]int{int(CubeFaceL), 2, 1},
			[3]int{int(CubeFaceB), 0, 1}, [3]int{int(CubeFaceB), 1, 1}, [3]int{int(CubeFaceB), 2, 1},
			[3]int{int(CubeFaceR), 0, 1}, [3]int{int(CubeFaceR), 1, 1}, [3]int{int(CubeFaceR), 2, 1},
		)
	case CubeFaceD:
		// D affects F, R, B, L bottom rows (opposite direction)
		c.cycle4(
			[3]int{int(CubeFaceF), 6, 1}, [3]int{int(CubeFaceF), 7, 1}, [3]int{int(CubeFaceF), 8, 1},
			[3]int{int(CubeFaceR), 6, 1}, [3]int{int(CubeFaceR), 7, 1}, [3]int{int(CubeFaceR), 8, 1},
			[3]int{int(CubeFaceB), 6, 1}, [3]int{int(CubeFaceB), 7, 1}, [3]int{int(CubeFaceB), 8, 1},
			[3]int{int(CubeFaceL), 6, 1}, [3]int{int(CubeFaceL), 7, 1}, [3]int{int(CubeFaceL), 8, 1},
		)
	case CubeFaceF:
		// F affects U bottom, R left, D top, L right
		c.cycle4Edge(
			int(CubeFaceU), []int{6, 7, 8},
			int(CubeFaceR), []int{0, 3, 6},
			int(CubeFaceD), []int{2, 1, 0},
			int(CubeFaceL), []int{8, 5, 2},
		)
	case CubeFaceB:
		// B affects U top, L left, D bottom, R right
		c.cycle4Edge(
			int(CubeFaceU), []int{2, 1, 0},
			int(CubeFaceL), []int{0, 3, 6},
			int(CubeFaceD), []int{6, 7, 8},
			int(CubeFaceR), []int{8, 5, 2},
		)
	case CubeFaceR:
		// R affects U right, B left, D right, F right
		c.cycle4Edge(
			int(CubeFaceU), []int{2, 5, 8},
			int(CubeFaceB), []int{6, 3, 0},
			int(CubeFaceD), []int{2, 5, 8},
			int(CubeFaceF), []int{2, 5, 8},
		)
	case CubeFaceL:
		// L affects U left, F left, D left, B right
		c.cycle4Edge(
			int(CubeFaceU), []int{0, 3, 6},
			int(CubeFaceF), []int{0, 3, 6},
			int(CubeFaceD), []int{0, 3, 6},
			int(CubeFaceB), []int{8, 5, 2},
		)
	}
}

// cycleEdgesCCW cycles the edge facelets around a face (counter-clockwise).
func (c *Cube) cycleEdgesCCW(face CubeFace) {
	// CCW is just CW three times
	c.cycleEdgesCW(face)
	c.cycleEdgesCW(face)
	c.cycleEdgesCW(face)
}

// cycle4 cycles 4 groups of 3 facelets (for U and D moves).
func (c *Cube) cycle4(a1, a2, a3, b1, b2, b3, c1, c2, c3, d1, d2, d3 [3]int) {
	t1 := c.Facelets[a1[0]][a1[1]]
	t2 := c.Facelets[a2[0]][a2[1]]
	t3 := c.Facelets[a3[0]][a3[1]]

	// a <- d
	c.Facelets[a1[0]][a1[1]] = c.Facelets[d1[0]][d1[1]]
	c.Facelets[a2[0]][a2[1]] = c.Facelets[d2[0]][d2[1]]
	c.Facelets[a3[0]][a3[1]] = c.Facelets[d3[0]][d3[1]]

	// d <- c
	c.Facelets[d1[0]][d1[1]] = c.Facelets[c1[0]][c1[1]]
	c.Facelets[d2[0]][d2[1]] = c.Facelets[c2[0]][c2[1]]
	c.Facelets[d3[0]][d3[1]] = c.Facelets[c3[0]][c3[1]]

	// c <- b
	c.Facelets[c1[0]][c1[1]] = c.Facelets[b1[0]][b1[1]]
	c.Facelets[c2[0]][c2[1]] = c.Facelets[b2[0]][b2[1]]
	c.Facelets[c3[0]][c3[1]] = c.Facelets[b3[0]][b3[1]]

	// b <- a (saved)
	c.Facelets[b1[0]][b1[1]] = t1
	c.Facelets[b2[0]][b2[1]] = t2
	c.Facelets[b3[0]][b3[1]] = t3
}

// cycle4Edge cycles 4 edges with arbitrary indices.
func (c *Cube) cycle4Edge(f1 int, i1 []int, f2 int, i2 []int, f3 int, i3 []int, f4 int, i4 []int) {
	t := [3]Color{
		c.Facelets[f1][i1[0]],
		c.Facelets[f1][i1[1]],
		c.Facelets[f1][i1[2]],
	}

	// 1 <- 4
	c.Facelets[f1][i1[0]] = c.Facelets[f4][i4[0]]
	c.Facelets[f1][i1[1]] = c.Facelets[f4][i4[1]]
	c.Facelets[f1][i1[2]] = c.Facelets[f4][i4[2]]

	// 4 <- 3
	c.Facelets[f4][i4[0]] = c.Facelets[f3][i3[0]]
	c.Facelets[f4][i4[1]] = c.Facelets[f3][i3[1]]
	c.Facelets[f4][i4[2]] = c.Facelets[f3][i3[2]]

	// 3 <- 2
	c.Facelets[f3][i3[0]] = c.Facelets[f2][i2[0]]
	c.Facelets[f3][i3[1]] = c.Facelets[f2][i2[1]]
	c.Facelets[f3][i3[2]] = c.Facelets[f2][i2[2]]

	// 2 <- 1 (saved)
	c.Facelets[f2][i2[0]] = t[0]
	c.Facelets[f2][i2[1]] = t[1]
	c.Facelets[f2][i2[2]] = t[2]
}

// String returns a text rendering of the cube as an unfolded net.
func (c *Cube) String() string {
	var sb strings.Builder

	// U face (indented)
	for row := 0; row < 3; row++ {
		sb.WriteString("      ")
		for col := 0; col < 3; col++ {
			sb.WriteString(c.Facelets[CubeFaceU][row*3+col].String() + " ")
		}
		sb.WriteString("\n")
	}

	// L, F, R, B faces (side by side)
	for row := 0; row < 3; row++ {
		for _, face := range []CubeFace{CubeFaceL, CubeFaceF, CubeFaceR, CubeFaceB} {
			for col := 0; col < 3; col++ {
				sb.WriteString(c.Facelets[face][row*3+col].String() + " ")
			}
		}
		sb.WriteString("\n")
	}

	// D face (indented)
	for row := 0; row < 3; row++ {
		sb.WriteString("      ")
		for col := 0; col < 3; col++ {
			sb.WriteString(c.Facelets[CubeFaceD][row*3+col].String() + " ")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
