// Package cubebot provides the cube-state and solve-orchestration model for
// a two-armed Rubik's cube solving robot.
//
// # Overview
//
// The package holds the pure domain types shared by every layer of the
// robot:
//
//   - Cube: a 3x3 facelet model whose Apply method is a pure permutation
//     transform over canonical face turns
//   - Move: one of the 18 canonical face turns with notation support
//   - Action: one atomic gripper instruction (grip, release, rotate)
//   - Session: a single solve attempt with its pending move queue
//   - Monitor: the confirm-then-commit bridge between physical execution
//     and the logical cube state
//
// Machinery that talks to hardware or runs searches lives under internal/:
// the two-phase solver, the move-to-action translator, the dual-arm
// orchestrator, and the Maestro servo driver.
//
// # Quick Start
//
// Track a cube through a sequence of moves:
//
//	cube := cubebot.NewCube()
//	cube, err := cube.Apply(cubebot.R)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Solved:", cube.IsSolved())
//
// Or from notation:
//
//	moves, _ := cubebot.ParseMoves("R U R' U'")
//	for _, m := range moves {
//	    cube, _ = cube.Apply(m)
//	}
//
// # Physical execution
//
// The logical cube state is never mutated optimistically. A Monitor owns
// the Session and commits a move only after the orchestrator reports the
// full action sequence confirmed within tolerance; anything ambiguous
// halts the queue with ErrDesyncSuspected until the sensing collaborator
// re-observes the physical cube.
package cubebot
