package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Observe the cube and solve it",
	Long: `Observe the loaded cube through the camera, plan a solution and execute
it. Progress is printed move by move; Ctrl-C aborts between actions and
leaves the cube where it is.`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	done := make(chan cubebot.Progress, 1)
	h.Bot.OnProgress(func(p cubebot.Progress) { done <- p })
	h.Bot.OnMove(func(m cubebot.Move, p cubebot.Progress) {
		fmt.Printf("  %-3s (%d/%d)\n", m.Notation(), p.Completed, p.Total)
	})
	h.Bot.OnFault(func(err error) {
		fmt.Fprintf(os.Stderr, "fault: %v\n", err)
	})

	fmt.Println("Observing cube...")
	start := time.Now()
	sess, err := h.Bot.StartSolve(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Solution: %s (%d moves)\n", cubebot.FormatMoves(sess.Queue()), len(sess.Queue()))

	// Ctrl-C aborts the solve; a second one kills the process.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		select {
		case <-sigs:
			fmt.Println("aborting after current action...")
			_ = h.Bot.Abort()
		case p := <-done:
			fmt.Printf("Session %s: %s after %d moves in %s\n",
				p.SessionID, p.StateName, p.Completed, time.Since(start).Round(time.Millisecond))
			if p.StateName != "done" {
				return fmt.Errorf("solve ended %s", p.StateName)
			}
			return nil
		}
	}
}

// cubeForDryRun builds the scrambled cube the simulator reports.
func cubeForDryRun() *cubebot.Cube {
	cube := cubebot.NewCube()
	for _, m := range cubebot.Scramble(20) {
		cube = cube.MustApply(m)
	}
	return cube
}
