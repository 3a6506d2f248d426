package translate

import (
	"testing"

	"github.com/SeamusWaldron/cubebot"
)

func TestGrippedFacesTurnDirectly(t *testing.T) {
	for _, face := range []cubebot.Face{cubebot.FaceL, cubebot.FaceF} {
		tr := New(Options{})
		acts, err := tr.Translate(cubebot.Move{Face: face, Turn: cubebot.CW})
		if err != nil {
			t.Fatalf("Translate(%s): %v", face, err)
		}
		// A direct turn starts with the wrist rotation, no repositioning.
		if acts[0].Kind != cubebot.ActionRotate {
			t.Errorf("%s: first action %v, want rotate", face, acts[0].Kind)
		}
		if got := tr.FaceAt(cubebot.ArmLeft); got != cubebot.FaceL {
			t.Errorf("%s: orientation changed, left arm now at %s", face, got)
		}
	}
}

func TestTranslateRepositionsHiddenFaces(t *testing.T) {
	cases := []struct {
		face   cubebot.Face
		turner cubebot.ArmID
	}{
		{cubebot.FaceU, cubebot.ArmLeft}, // U comes to the left gripper
		{cubebot.FaceD, cubebot.ArmLeft},
		{cubebot.FaceR, cubebot.ArmLeft},
		{cubebot.FaceB, cubebot.ArmRight}, // B flips onto the right gripper
	}
	for _, tc := range cases {
		tr := New(Options{})
		acts, err := tr.Translate(cubebot.Move{Face: tc.face, Turn: cubebot.CW})
		if err != nil {
			t.Fatalf("Translate(%s): %v", tc.face, err)
		}
		// Repositioning begins by releasing the holding arm.
		if acts[0].Kind != cubebot.ActionRelease {
			t.Errorf("%s: first action %v, want release", tc.face, acts[0].Kind)
		}
		if got := tr.FaceAt(tc.turner); got != tc.face {
			t.Errorf("%s: expected face at %s gripper, got %s", tc.face, tc.turner, got)
		}
	}
}

func TestOrientationStaysPermutation(t *testing.T) {
	tr := New(Options{})
	moves, err := cubebot.ParseMoves("U R B D L F U2 B' R'")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range moves {
		if _, err := tr.Translate(m); err != nil {
			t.Fatalf("Translate(%s): %v", m.Notation(), err)
		}
		seen := map[cubebot.Face]bool{}
		for _, f := range tr.orient {
			if seen[f] {
				t.Fatalf("after %s: face %s occupies two slots", m.Notation(), f)
			}
			seen[f] = true
		}
	}
}

func TestSequencesEndAtHome(t *testing.T) {
	tr := New(Options{Wiggle: true})
	moves, err := cubebot.ParseMoves("R U2 B' D L'")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range moves {
		acts, err := tr.Translate(m)
		if err != nil {
			t.Fatalf("Translate(%s): %v", m.Notation(), err)
		}
		last := map[cubebot.ArmID]cubebot.Action{}
		angle := map[cubebot.ArmID]float64{
			cubebot.ArmLeft:  defaultHome,
			cubebot.ArmRight: defaultHome,
		}
		for _, a := range acts {
			if a.Kind == cubebot.ActionRotate {
				angle[a.Arm] = a.Angle
			} else {
				last[a.Arm] = a
			}
			if a.Angle < 0 || a.Angle > 270 {
				t.Errorf("%s: wrist target %v outside servo span", m.Notation(), a.Angle)
			}
		}
		for arm, deg := range angle {
			if deg != defaultHome {
				t.Errorf("%s: %s wrist left at %v, want %v", m.Notation(), arm, deg, defaultHome)
			}
		}
		for arm, a := range last {
			if a.Kind != cubebot.ActionGrip {
				t.Errorf("%s: %s last grip action is %v, want grip", m.Notation(), arm, a.Kind)
			}
		}
	}
}

func TestPerArmHomeAngles(t *testing.T) {
	tr := New(Options{LeftHome: 60, RightHome: 120})

	// L turns on the left wrist relative to the left home.
	acts, err := tr.Translate(cubebot.L)
	if err != nil {
		t.Fatal(err)
	}
	if acts[0].Arm != cubebot.ArmLeft || acts[0].Angle != 150 {
		t.Errorf("L first rotate = %s %v, want left wrist to 150", acts[0].Arm, acts[0].Angle)
	}
	if last := acts[2]; last.Angle != 60 {
		t.Errorf("L wrist reset to %v, want left home 60", last.Angle)
	}

	// F turns on the right wrist relative to the right home.
	acts, err = tr.Translate(cubebot.FPrime)
	if err != nil {
		t.Fatal(err)
	}
	if acts[0].Arm != cubebot.ArmRight || acts[0].Angle != 30 {
		t.Errorf("F' first rotate = %s %v, want right wrist to 30", acts[0].Arm, acts[0].Angle)
	}
	if last := acts[2]; last.Angle != 120 {
		t.Errorf("F' wrist reset to %v, want right home 120", last.Angle)
	}

	// A repositioning sequence drives the moving wrist around its own
	// home and leaves both arms where they started.
	acts, err = tr.Translate(cubebot.U)
	if err != nil {
		t.Fatal(err)
	}
	final := map[cubebot.ArmID]float64{cubebot.ArmLeft: 60, cubebot.ArmRight: 120}
	got := map[cubebot.ArmID]float64{cubebot.ArmLeft: 60, cubebot.ArmRight: 120}
	for _, a := range acts {
		if a.Kind == cubebot.ActionRotate {
			got[a.Arm] = a.Angle
		}
	}
	for arm, want := range final {
		if got[arm] != want {
			t.Errorf("U: %s wrist left at %v, want its home %v", arm, got[arm], want)
		}
	}
}

func TestTranslateRejectsNonCanonicalMove(t *testing.T) {
	tr := New(Options{})
	if _, err := tr.Translate(cubebot.Move{Face: "X", Turn: cubebot.CW}); err == nil {
		t.Error("expected error for unknown face")
	}
}

func TestResetRestoresIdentity(t *testing.T) {
	tr := New(Options{})
	if _, err := tr.Translate(cubebot.U); err != nil {
		t.Fatal(err)
	}
	tr.Reset()
	if got := tr.FaceAt(cubebot.ArmLeft); got != cubebot.FaceL {
		t.Errorf("after reset left gripper at %s, want L", got)
	}
	if got := tr.FaceAt(cubebot.ArmRight); got != cubebot.FaceF {
		t.Errorf("after reset right gripper at %s, want F", got)
	}
}
