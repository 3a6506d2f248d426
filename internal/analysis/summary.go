// Package analysis computes statistics over recorded robot solves.
package analysis

import (
	"math"
	"time"

	"github.com/SeamusWaldron/cubebot/internal/storage"
)

// SolveSummary contains statistics for a single robot solve.
type SolveSummary struct {
	SolveID       string  `json:"solve_id"`
	StartedAt     string  `json:"started_at"`
	EndedAt       string  `json:"ended_at,omitempty"`
	Status        string  `json:"status"`
	DurationMs    int64   `json:"duration_ms"`
	MoveCount     int     `json:"move_count"`
	MovesPerSec   float64 `json:"moves_per_sec"`
	AvgMoveTimeMs float64 `json:"avg_move_time_ms"`
}

// Summarize computes per-solve statistics from a stored record.
func Summarize(s storage.Solve) SolveSummary {
	sum := SolveSummary{
		SolveID:   s.SolveID,
		StartedAt: s.StartedAt.Format(time.RFC3339),
		Status:    s.Status,
	}
	if s.EndedAt != nil {
		sum.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	if s.DurationMs != nil {
		sum.DurationMs = *s.DurationMs
	}
	if s.MoveCount != nil {
		sum.MoveCount = *s.MoveCount
	}
	if sum.DurationMs > 0 && sum.MoveCount > 0 {
		sum.MovesPerSec = float64(sum.MoveCount) / (float64(sum.DurationMs) / 1000.0)
		sum.AvgMoveTimeMs = float64(sum.DurationMs) / float64(sum.MoveCount)
	}
	return sum
}

// Report aggregates statistics across multiple solves.
type Report struct {
	TotalSolves   int           `json:"total_solves"`
	Completed     int           `json:"completed"`
	Aborted       int           `json:"aborted"`
	Faulted       int           `json:"faulted"`
	SuccessRate   float64       `json:"success_rate"`
	AvgDurationMs float64       `json:"avg_duration_ms"`
	AvgMoves      float64       `json:"avg_moves"`
	BestSolve     *SolveSummary `json:"best_solve,omitempty"`
	WorstSolve    *SolveSummary `json:"worst_solve,omitempty"`

	// ConsistencyScore is 100 minus the coefficient of variation of
	// completed-solve durations, floored at 0. A machine that always
	// takes the same time scores near 100.
	ConsistencyScore float64 `json:"consistency_score"`
}

// Analyze aggregates statistics across the given solves. Only completed
// solves contribute to duration and move averages; aborted and faulted
// runs count toward their own totals.
func Analyze(solves []*storage.Solve) *Report {
	report := &Report{TotalSolves: len(solves)}
	if len(solves) == 0 {
		return report
	}

	var durations []float64
	var totalMoves int
	for _, s := range solves {
		switch s.Status {
		case storage.StatusAborted:
			report.Aborted++
			continue
		case storage.StatusFaulted:
			report.Faulted++
			continue
		case storage.StatusDone:
			report.Completed++
		default:
			// Still solving, or an unfinished row from a crash.
			continue
		}

		sum := Summarize(*s)
		if sum.DurationMs > 0 {
			durations = append(durations, float64(sum.DurationMs))
		}
		totalMoves += sum.MoveCount

		if report.BestSolve == nil || sum.DurationMs < report.BestSolve.DurationMs {
			best := sum
			report.BestSolve = &best
		}
		if report.WorstSolve == nil || sum.DurationMs > report.WorstSolve.DurationMs {
			worst := sum
			report.WorstSolve = &worst
		}
	}

	finished := report.Completed + report.Aborted + report.Faulted
	if finished > 0 {
		report.SuccessRate = float64(report.Completed) / float64(finished) * 100
	}
	if report.Completed > 0 {
		report.AvgMoves = float64(totalMoves) / float64(report.Completed)
	}
	if len(durations) > 0 {
		report.AvgDurationMs = mean(durations)
		report.ConsistencyScore = consistency(durations)
	}
	return report
}

func mean(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// consistency maps the coefficient of variation to a 0..100 score.
func consistency(xs []float64) float64 {
	if len(xs) < 2 {
		return 100
	}
	m := mean(xs)
	if m == 0 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		d := x - m
		variance += d * d
	}
	variance /= float64(len(xs))
	cv := math.Sqrt(variance) / m * 100
	score := 100 - cv
	if score < 0 {
		score = 0
	}
	return score
}
