package cubebot

import "math/rand/v2"

// Scramble returns n random canonical moves with no two consecutive turns
// of the same face. Applying the result to a solved cube gives a
// uniformly messy, always-legal state.
func Scramble(n int) []Move {
	moves := make([]Move, 0, n)
	lastFace := Face("")
	for len(moves) < n {
		m := AllMoves[rand.IntN(len(AllMoves))]
		if m.Face == lastFace {
			continue
		}
		moves = append(moves, m)
		lastFace = m.Face
	}
	return moves
}
