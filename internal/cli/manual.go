package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot"
)

var manualCmd = &cobra.Command{
	Use:   "manual <moves...>",
	Short: "Execute moves directly on the robot",
	Long: `Execute one or more moves in standard notation, e.g.:

  cubebot manual R U R' U'

The logical cube state is not tracked; the next solve observes the cube
fresh through the camera.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runManual,
}

func init() {
	rootCmd.AddCommand(manualCmd)
}

func runManual(cmd *cobra.Command, args []string) error {
	moves, err := cubebot.ParseMoves(strings.Join(args, " "))
	if err != nil {
		return err
	}

	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	for _, m := range moves {
		fmt.Printf("  %s\n", m.Notation())
		if err := h.Bot.ManualMove(cmd.Context(), m); err != nil {
			return fmt.Errorf("move %s: %w", m.Notation(), err)
		}
	}
	return nil
}
