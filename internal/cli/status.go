package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot/internal/analysis"
	"github.com/SeamusWaldron/cubebot/internal/config"
	"github.com/SeamusWaldron/cubebot/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show robot configuration and solve statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}

	fmt.Println("cubebot status")
	fmt.Println("==============")
	fmt.Println()
	path := configPath
	if path == "" {
		path = config.DefaultFileName
	}
	fmt.Printf("Profile:   %s\n", path)
	fmt.Printf("Serial:    %s @ %d baud (device %d)\n",
		profile.Serial.Port, profile.Serial.Baud, profile.Serial.Device)
	fmt.Printf("Camera:    %s\n", profile.Camera.URL)
	fmt.Printf("Web:       %s\n", profile.Web.Listen)
	fmt.Printf("Database:  %s\n", profile.History.Path)

	db, err := storage.Open(profile.History.Path)
	if err != nil {
		fmt.Printf("\nHistory unavailable: %v\n", err)
		return nil
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		fmt.Printf("\nHistory unavailable: %v\n", err)
		return nil
	}

	repo := storage.NewSolveRepository(db)
	solves, err := repo.List(10000)
	if err != nil {
		return err
	}
	report := analysis.Analyze(solves)
	fmt.Println()
	fmt.Printf("Total solves: %d (done %d, aborted %d, faulted %d)\n",
		report.TotalSolves, report.Completed, report.Aborted, report.Faulted)
	if len(solves) > 0 {
		last := solves[0]
		fmt.Printf("Last solve:   %s (%s)\n", last.StartedAt.Format(time.RFC3339), last.Status)
	}
	if report.Completed > 0 {
		fmt.Printf("Success rate: %.0f%%\n", report.SuccessRate)
		fmt.Printf("Avg duration: %s over %.1f moves\n",
			(time.Duration(report.AvgDurationMs) * time.Millisecond).Round(time.Millisecond),
			report.AvgMoves)
		if report.BestSolve != nil {
			fmt.Printf("Best solve:   %s (%d moves)\n",
				(time.Duration(report.BestSolve.DurationMs) * time.Millisecond).Round(time.Millisecond),
				report.BestSolve.MoveCount)
		}
		fmt.Printf("Consistency:  %.0f/100\n", report.ConsistencyScore)
	}
	return nil
}
