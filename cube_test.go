package cubebot

import (
	"testing"
)

func TestNewCubeIsSolved(t *testing.T) {
	c := NewCube()
	if !c.IsSolved() {
		t.Error("New cube should be solved")
	}
}

func TestSingleMoveBreaksSolved(t *testing.T) {
	c := NewCube().MustApply(R)
	if c.IsSolved() {
		t.Error("Cube should not be solved after R move")
	}
}

func TestRRRR_ReturnsToSolved(t *testing.T) {
	// R R R R = identity
	c := NewCube().MustApply(R, R, R, R)
	if !c.IsSolved() {
		t.Error("R R R R should return to solved")
		t.Log(c.String())
	}
}

func TestR2R2_ReturnsToSolved(t *testing.T) {
	c := NewCube().MustApply(R2, R2)
	if !c.IsSolved() {
		t.Error("R2 R2 should return to solved")
		t.Log(c.String())
	}
}

func TestQuadTurn_ReturnsToSolved_AllFaces(t *testing.T) {
	for _, face := range []Face{FaceU, FaceD, FaceF, FaceB, FaceR, FaceL} {
		m := Move{Face: face, Turn: CW}
		c := NewCube().MustApply(m, m, m, m)
		if !c.IsSolved() {
			t.Errorf("%v x 4 should return to solved", face)
			t.Log(c.String())
		}
	}
}

func TestSexyMove_6Times_ReturnsToSolved(t *testing.T) {
	// (R U R' U') x 6 = identity
	c := NewCube()
	for i := 0; i < 6; i++ {
		c = c.MustApply(SexyMove...)
	}
	if !c.IsSolved() {
		t.Error("Sexy move x 6 should return to solved")
		t.Log(c.String())
	}
}

func TestMoveThenInverse_ReturnsToSolved(t *testing.T) {
	for _, m := range AllMoves {
		c := NewCube().MustApply(m, m.Inverse())
		if !c.IsSolved() {
			t.Errorf("%s then %s should return to solved", m, m.Inverse())
		}
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	c := NewCube()
	if _, err := c.Apply(R); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !c.IsSolved() {
		t.Error("Apply should leave the original cube untouched")
	}
}

func TestApplyRejectsInvalidMove(t *testing.T) {
	c := NewCube()
	if _, err := c.Apply(Move{Face: "X", Turn: CW}); err == nil {
		t.Error("Apply should reject an unknown face")
	}
	if _, err := c.Apply(Move{Face: FaceR, Turn: 3}); err == nil {
		t.Error("Apply should reject an unknown turn")
	}
}

func TestFaceletStringRoundTrip(t *testing.T) {
	c := NewCube().MustApply(Scramble(20)...)
	parsed, err := ParseFacelets(c.FaceletString())
	if err != nil {
		t.Fatalf("ParseFacelets: %v", err)
	}
	if parsed.FaceletString() != c.FaceletString() {
		t.Errorf("round trip mismatch:\n got %s\nwant %s",
			parsed.FaceletString(), c.FaceletString())
	}
}

func TestParseFaceletsRejectsBadInput(t *testing.T) {
	if _, err := ParseFacelets("WWW"); err == nil {
		t.Error("short string should be rejected")
	}
	bad := NewCube().FaceletString()
	bad = "X" + bad[1:]
	if _, err := ParseFacelets(bad); err == nil {
		t.Error("unknown color letter should be rejected")
	}
}

func TestVerifySolvedAndScrambled(t *testing.T) {
	if err := NewCube().Verify(); err != nil {
		t.Errorf("solved cube should verify: %v", err)
	}
	c := NewCube().MustApply(Scramble(25)...)
	if err := c.Verify(); err != nil {
		t.Errorf("legally scrambled cube should verify: %v", err)
	}
}

func TestVerifyRejectsIllegalState(t *testing.T) {
	c := NewCube()
	// Swapping two stickers of one edge flips it, which no move
	// sequence can produce.
	c.Facelets[0][7], c.Facelets[2][1] = c.Facelets[2][1], c.Facelets[0][7]
	if err := c.Verify(); err == nil {
		t.Error("flipped edge should fail verification")
	}
}

func TestScrambleLengthAndCanonical(t *testing.T) {
	moves := Scramble(20)
	if len(moves) != 20 {
		t.Fatalf("Scramble(20) returned %d moves", len(moves))
	}
	for i, m := range moves {
		if !m.IsCanonical() {
			t.Errorf("move %d (%s) is not canonical", i, m)
		}
		if i > 0 && moves[i-1].Face == m.Face {
			t.Errorf("moves %d and %d turn the same face", i-1, i)
		}
	}
}
