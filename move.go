package cubebot

import "strings"

// Face represents a cube face in standard notation.
type Face string

const (
	FaceU Face = "U" // Up
	FaceD Face = "D" // Down
	FaceF Face = "F" // Front
	FaceB Face = "B" // Back
	FaceR Face = "R" // Right
	FaceL Face = "L" // Left
)

// Faces lists the six faces in model order.
var Faces = []Face{FaceU, FaceD, FaceF, FaceB, FaceR, FaceL}

// Turn represents the direction and magnitude of a face turn.
type Turn int

const (
	CW     Turn = 1  // Clockwise (90 degrees)
	CCW    Turn = -1 // Counter-clockwise (90 degrees)
	Double Turn = 2  // Half turn (180 degrees)
)

// Move represents a single canonical face turn. Immutable value.
type Move struct {
	Face Face // Which face to turn
	Turn Turn // Direction and amount
}

// IsCanonical reports whether the move is one of the 18 canonical face
// turns.
func (m Move) IsCanonical() bool {
	switch m.Face {
	case FaceU, FaceD, FaceF, FaceB, FaceR, FaceL:
	default:
		return false
	}
	switch m.Turn {
	case CW, CCW, Double:
		return true
	}
	return false
}

// Notation returns the standard cube notation string for this move.
// Examples: R, R', R2, U, U', U2
func (m Move) Notation() string {
	suffix := ""
	switch m.Turn {
	case CCW:
		suffix = "'"
	case Double:
		suffix = "2"
	}
	return string(m.Face) + suffix
}

// Inverse returns the inverse of this move.
// R becomes R', R' becomes R, R2 stays R2.
func (m Move) Inverse() Move {
	inv := m
	switch m.Turn {
	case CW:
		inv.Turn = CCW
	case CCW:
		inv.Turn = CW
	}
	// Double is its own inverse.
	return inv
}

// IsCancellation reports whether other undoes this move exactly.
func (m Move) IsCancellation(other Move) bool {
	return m.Face == other.Face && other.Turn == m.Inverse().Turn
}

// Angle returns the turn as signed degrees, normalized to the
// minimal-friction direction: 90 for CW, -90 for CCW, 180 for Double.
func (m Move) Angle() float64 {
	switch m.Turn {
	case CCW:
		return -90
	case Double:
		return 180
	default:
		return 90
	}
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// ParseMove parses a standard notation string into a Move.
// Examples: R, R', R2, U, U', U2
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return Move{}, ErrInvalidNotation
	}

	var face Face
	switch s[0] {
	case 'U', 'u':
		face = FaceU
	case 'D', 'd':
		face = FaceD
	case 'F', 'f':
		face = FaceF
	case 'B', 'b':
		face = FaceB
	case 'R', 'r':
		face = FaceR
	case 'L', 'l':
		face = FaceL
	default:
		return Move{}, ErrInvalidNotation
	}

	turn := CW
	if len(s) > 1 {
		switch s[1:] {
		case "'", "`":
			turn = CCW
		case "2", "2'", "2`":
			turn = Double
		default:
			return Move{}, ErrInvalidNotation
		}
	}

	return Move{Face: face, Turn: turn}, nil
}

// ParseMoves parses a space-separated sequence of moves.
// Example: "R U R' U'"
func ParseMoves(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))
	for _, part := range parts {
		move, err := ParseMove(part)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	return moves, nil
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}
	return strings.Join(parts, " ")
}

// Simplify merges consecutive turns of the same face and drops turns that
// cancel to identity. The result reaches the same state in no more moves.
func Simplify(moves []Move) []Move {
	out := make([]Move, 0, len(moves))
	for _, m := range moves {
		if !m.IsCanonical() {
			out = append(out, m)
			continue
		}
		if n := len(out); n > 0 && out[n-1].Face == m.Face {
			quarters := (int(out[n-1].Turn) + int(m.Turn)) % 4
			if quarters < 0 {
				quarters += 4
			}
			out = out[:n-1]
			switch quarters {
			case 1:
				out = append(out, Move{Face: m.Face, Turn: CW})
			case 2:
				out = append(out, Move{Face: m.Face, Turn: Double})
			case 3:
				out = append(out, Move{Face: m.Face, Turn: CCW})
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
