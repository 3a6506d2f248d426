package cubie

// Move indices. A move is face*3 + (power-1) where power counts quarter
// turns clockwise: U = 0, U2 = 1, U' = 2, D = 3, ... L' = 17.
// Face order matches the facelet model: U D F B R L.
const (
	FaceIdxU = 0
	FaceIdxD = 1
	FaceIdxF = 2
	FaceIdxB = 3
	FaceIdxR = 4
	FaceIdxL = 5

	NumMoves = 18
)

// MoveIndex composes a move index from a face index and a clockwise
// quarter-turn power in 1..3.
func MoveIndex(face, power int) int {
	return face*3 + power - 1
}

// basic holds the six generator move cubes, indexed by face.
var basic = [6]Cube{
	// U
	{
		CP: [8]uint8{UBR, URF, UFL, ULB, DFR, DLF, DBL, DRB},
		EP: [12]uint8{UB, UR, UF, UL, DR, DF, DL, DB, FR, FL, BL, BR},
	},
	// D
	{
		CP: [8]uint8{URF, UFL, ULB, UBR, DLF, DBL, DRB, DFR},
		EP: [12]uint8{UR, UF, UL, UB, DF, DL, DB, DR, FR, FL, BL, BR},
	},
	// F
	{
		CP: [8]uint8{UFL, DLF, ULB, UBR, URF, DFR, DBL, DRB},
		CO: [8]uint8{1, 2, 0, 0, 2, 1, 0, 0},
		EP: [12]uint8{UR, FL, UL, UB, DR, FR, DL, DB, UF, DF, BL, BR},
		EO: [12]uint8{0, 1, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0},
	},
	// B
	{
		CP: [8]uint8{URF, UFL, UBR, DRB, DFR, DLF, ULB, DBL},
		CO: [8]uint8{0, 0, 1, 2, 0, 0, 2, 1},
		EP: [12]uint8{UR, UF, UL, BR, DR, DF, DL, BL, FR, FL, UB, DB},
		EO: [12]uint8{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 1, 1},
	},
	// R
	{
		CP: [8]uint8{DFR, UFL, ULB, URF, DRB, DLF, DBL, UBR},
		CO: [8]uint8{2, 0, 0, 1, 1, 0, 0, 2},
		EP: [12]uint8{FR, UF, UL, UB, BR, DF, DL, DB, DR, FL, BL, UR},
	},
	// L
	{
		CP: [8]uint8{URF, ULB, DBL, UBR, DFR, UFL, DLF, DRB},
		CO: [8]uint8{0, 1, 2, 0, 0, 2, 1, 0},
		EP: [12]uint8{UR, UF, BL, UB, DR, DF, FL, DB, FR, UL, DL, BR},
	},
}

// moveCubes holds all 18 move cubes, built from the generators.
var moveCubes = buildMoveCubes()

func buildMoveCubes() [NumMoves]Cube {
	var out [NumMoves]Cube
	for face := 0; face < 6; face++ {
		c := Solved()
		for power := 1; power <= 3; power++ {
			c = c.Multiply(basic[face])
			out[MoveIndex(face, power)] = c
		}
	}
	return out
}

// Move returns the cube reached by applying move m (0..17).
func (c Cube) Move(m int) Cube {
	return c.Multiply(moveCubes[m])
}

// cornerFacelets lists, per corner slot, the (face, index) of its three
// stickers. The first entry is on the U or D face; the rest follow
// clockwise. Face indices are the facelet-model order U D F B R L and
// positions use the 0..8 row-major layout per face.
var cornerFacelets = [8][3][2]int{
	URF: {{FaceIdxU, 8}, {FaceIdxR, 0}, {FaceIdxF, 2}},
	UFL: {{FaceIdxU, 6}, {FaceIdxF, 0}, {FaceIdxL, 2}},
	ULB: {{FaceIdxU, 0}, {FaceIdxL, 0}, {FaceIdxB, 2}},
	UBR: {{FaceIdxU, 2}, {FaceIdxB, 0}, {FaceIdxR, 2}},
	DFR: {{FaceIdxD, 2}, {FaceIdxF, 8}, {FaceIdxR, 6}},
	DLF: {{FaceIdxD, 0}, {FaceIdxL, 8}, {FaceIdxF, 6}},
	DBL: {{FaceIdxD, 6}, {FaceIdxB, 8}, {FaceIdxL, 6}},
	DRB: {{FaceIdxD, 8}, {FaceIdxR, 8}, {FaceIdxB, 6}},
}

// edgeFacelets lists, per edge slot, the (face, index) of its two stickers.
var edgeFacelets = [12][2][2]int{
	UR: {{FaceIdxU, 5}, {FaceIdxR, 1}},
	UF: {{FaceIdxU, 7}, {FaceIdxF, 1}},
	UL: {{FaceIdxU, 3}, {FaceIdxL, 1}},
	UB: {{FaceIdxU, 1}, {FaceIdxB, 1}},
	DR: {{FaceIdxD, 5}, {FaceIdxR, 7}},
	DF: {{FaceIdxD, 1}, {FaceIdxF, 7}},
	DL: {{FaceIdxD, 3}, {FaceIdxL, 7}},
	DB: {{FaceIdxD, 7}, {FaceIdxB, 7}},
	FR: {{FaceIdxF, 5}, {FaceIdxR, 3}},
	FL: {{FaceIdxF, 3}, {FaceIdxL, 5}},
	BL: {{FaceIdxB, 5}, {FaceIdxL, 3}},
	BR: {{FaceIdxB, 3}, {FaceIdxR, 5}},
}

// FromFacelets builds a cubie cube from a facelet array where each value
// is the home-face index (0..5, order U D F B R L) of the sticker's color.
// It fails with ErrBadFacelets when the stickers do not form the twenty
// recognizable cube pieces; group legality is checked separately by Verify.
func FromFacelets(f [6][9]uint8) (Cube, error) {
	var c Cube

	for slot := 0; slot < 8; slot++ {
		// Find the twist that puts a U/D sticker first.
		ori := -1
		for o := 0; o < 3; o++ {
			fc := cornerFacelets[slot][o]
			if v := f[fc[0]][fc[1]]; v == FaceIdxU || v == FaceIdxD {
				ori = o
				break
			}
		}
		if ori < 0 {
			return Cube{}, ErrBadFacelets
		}
		c1 := f[cornerFacelets[slot][(ori+1)%3][0]][cornerFacelets[slot][(ori+1)%3][1]]
		c2 := f[cornerFacelets[slot][(ori+2)%3][0]][cornerFacelets[slot][(ori+2)%3][1]]

		piece := -1
		for p := 0; p < 8; p++ {
			// Solved colors of piece p, in the same sticker order.
			if c1 == uint8(cornerFacelets[p][1][0]) && c2 == uint8(cornerFacelets[p][2][0]) {
				piece = p
				break
			}
		}
		if piece < 0 {
			return Cube{}, ErrBadFacelets
		}
		c.CP[slot] = uint8(piece)
		c.CO[slot] = uint8(ori)
	}

	for slot := 0; slot < 12; slot++ {
		c0 := f[edgeFacelets[slot][0][0]][edgeFacelets[slot][0][1]]
		c1 := f[edgeFacelets[slot][1][0]][edgeFacelets[slot][1][1]]

		piece, flip := -1, 0
		for p := 0; p < 12; p++ {
			h0, h1 := uint8(edgeFacelets[p][0][0]), uint8(edgeFacelets[p][1][0])
			if c0 == h0 && c1 == h1 {
				piece, flip = p, 0
				break
			}
			if c0 == h1 && c1 == h0 {
				piece, flip = p, 1
				break
			}
		}
		if piece < 0 {
			return Cube{}, ErrBadFacelets
		}
		c.EP[slot] = uint8(piece)
		c.EO[slot] = uint8(flip)
	}

	return c, nil
}
