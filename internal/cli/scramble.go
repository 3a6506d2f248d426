package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot"
)

var (
	scrambleLen     int
	scrambleExecute bool
)

var scrambleCmd = &cobra.Command{
	Use:   "scramble",
	Short: "Generate a scramble, optionally executing it",
	Long: `Generate a random scramble sequence. With --execute the robot applies it
to the loaded cube, which is handy before demo solves.`,
	RunE: runScramble,
}

func init() {
	rootCmd.AddCommand(scrambleCmd)
	scrambleCmd.Flags().IntVarP(&scrambleLen, "moves", "n", 20, "Scramble length")
	scrambleCmd.Flags().BoolVar(&scrambleExecute, "execute", false, "Execute the scramble on the robot")
}

func runScramble(cmd *cobra.Command, args []string) error {
	moves := cubebot.Scramble(scrambleLen)
	fmt.Println(cubebot.FormatMoves(moves))

	if !scrambleExecute {
		return nil
	}

	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	for i, m := range moves {
		fmt.Printf("  %-3s (%d/%d)\n", m.Notation(), i+1, len(moves))
		if err := h.Bot.ManualMove(cmd.Context(), m); err != nil {
			return fmt.Errorf("move %s: %w", m.Notation(), err)
		}
	}
	return nil
}
