package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot/internal/analysis"
)

var (
	historyLimit int
	historyShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded solves",
	Long: `Display recent solve sessions with their outcome. Use --show with a
solve ID for full details including the committed move sequence.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of solves to display")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Show full details for a solve ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	db, repo, err := openHistory(profile)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyShow != "" {
		s, err := repo.Get(historyShow)
		if err != nil {
			return err
		}
		fmt.Printf("Solve:    %s\n", s.SolveID)
		fmt.Printf("Started:  %s\n", s.StartedAt.Format(time.RFC3339))
		fmt.Printf("Status:   %s\n", s.Status)
		sum := analysis.Summarize(*s)
		if sum.DurationMs > 0 {
			fmt.Printf("Duration: %s\n", time.Duration(sum.DurationMs)*time.Millisecond)
		}
		if sum.MovesPerSec > 0 {
			fmt.Printf("Pace:     %.2f moves/s (%.0f ms/move)\n", sum.MovesPerSec, sum.AvgMoveTimeMs)
		}
		fmt.Printf("State:    %s\n", s.InitialState)
		if s.SolutionText != nil {
			fmt.Printf("Plan:     %s\n", *s.SolutionText)
		}
		moves, err := repo.Moves(s.SolveID)
		if err != nil {
			return err
		}
		if len(moves) > 0 {
			fmt.Printf("Executed: %s\n", strings.Join(moves, " "))
		}
		return nil
	}

	solves, err := repo.List(historyLimit)
	if err != nil {
		return err
	}
	if len(solves) == 0 {
		fmt.Println("No solves recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-8s  %6s  %9s\n", "SOLVE ID", "STARTED", "STATUS", "MOVES", "DURATION")
	for _, s := range solves {
		movesStr, durStr := "-", "-"
		if s.MoveCount != nil {
			movesStr = fmt.Sprintf("%d", *s.MoveCount)
		}
		if s.DurationMs != nil {
			durStr = (time.Duration(*s.DurationMs) * time.Millisecond).Round(time.Millisecond).String()
		}
		fmt.Printf("%-36s  %-20s  %-8s  %6s  %9s\n",
			s.SolveID, s.StartedAt.Format("2006-01-02 15:04:05"), s.Status, movesStr, durStr)
	}
	return nil
}
