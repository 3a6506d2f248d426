package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Solve statuses as stored in the solves table.
const (
	StatusSolving = "solving"
	StatusDone    = "done"
	StatusAborted = "aborted"
	StatusFaulted = "faulted"
)

// Solve represents a solve session row.
type Solve struct {
	SolveID      string
	StartedAt    time.Time
	EndedAt      *time.Time
	DurationMs   *int64
	InitialState string
	SolutionText *string
	MoveCount    *int
	Status       string
}

// SolveRepository provides CRUD operations for solves.
type SolveRepository struct {
	db *DB
}

// NewSolveRepository creates a new solve repository.
func NewSolveRepository(db *DB) *SolveRepository {
	return &SolveRepository{db: db}
}

// Create records the start of a solve and returns its ID. initialState is
// the observed facelet string, solution the planned move sequence.
func (r *SolveRepository) Create(initialState, solution string) (string, error) {
	id := uuid.New().String()
	startedAt := time.Now().UTC()

	var solutionPtr *string
	if solution != "" {
		solutionPtr = &solution
	}

	_, err := r.db.Exec(`
		INSERT INTO solves (solve_id, started_at, initial_state, solution_text, status)
		VALUES (?, ?, ?, ?, ?)
	`, id, startedAt.Format(time.RFC3339), initialState, solutionPtr, StatusSolving)

	if err != nil {
		return "", fmt.Errorf("failed to create solve: %w", err)
	}

	return id, nil
}

// RecordMove appends one committed move to the solve's history.
func (r *SolveRepository) RecordMove(solveID string, index int, notation string) error {
	_, err := r.db.Exec(`
		INSERT INTO solve_moves (solve_id, move_index, notation, committed_at)
		VALUES (?, ?, ?, ?)
	`, solveID, index, notation, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}
	return nil
}

// RecordFault logs a fault against a solve.
func (r *SolveRepository) RecordFault(solveID, arm, detail string) error {
	var armPtr *string
	if arm != "" {
		armPtr = &arm
	}
	_, err := r.db.Exec(`
		INSERT INTO faults (solve_id, occurred_at, arm, detail)
		VALUES (?, ?, ?, ?)
	`, solveID, time.Now().UTC().Format(time.RFC3339), armPtr, detail)
	if err != nil {
		return fmt.Errorf("failed to record fault: %w", err)
	}
	return nil
}

// End marks a solve complete with the given status and move count.
func (r *SolveRepository) End(solveID, status string, moveCount int) error {
	endedAt := time.Now().UTC()

	// Get start time to calculate duration
	var startedAtStr string
	err := r.db.QueryRow("SELECT started_at FROM solves WHERE solve_id = ?", solveID).Scan(&startedAtStr)
	if err != nil {
		return fmt.Errorf("failed to get solve start time: %w", err)
	}

	startedAt, err := time.Parse(time.RFC3339, startedAtStr)
	if err != nil {
		return fmt.Errorf("failed to parse start time: %w", err)
	}

	durationMs := endedAt.Sub(startedAt).Milliseconds()

	_, err = r.db.Exec(`
		UPDATE solves
		SET ended_at = ?, duration_ms = ?, move_count = ?, status = ?
		WHERE solve_id = ?
	`, endedAt.Format(time.RFC3339), durationMs, moveCount, status, solveID)

	if err != nil {
		return fmt.Errorf("failed to end solve: %w", err)
	}

	return nil
}

// Get retrieves a solve by ID.
func (r *SolveRepository) Get(solveID string) (*Solve, error) {
	row := r.db.QueryRow(`
		SELECT solve_id, started_at, ended_at, duration_ms, initial_state,
		       solution_text, move_count, status
		FROM solves WHERE solve_id = ?
	`, solveID)
	s, err := scanSolve(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("solve %s not found", solveID)
	}
	return s, err
}

// List returns the most recent solves, newest first.
func (r *SolveRepository) List(limit int) ([]*Solve, error) {
	rows, err := r.db.Query(`
		SELECT solve_id, started_at, ended_at, duration_ms, initial_state,
		       solution_text, move_count, status
		FROM solves ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list solves: %w", err)
	}
	defer rows.Close()

	var solves []*Solve
	for rows.Next() {
		s, err := scanSolve(rows)
		if err != nil {
			return nil, err
		}
		solves = append(solves, s)
	}
	return solves, rows.Err()
}

// Moves returns a solve's committed moves in order.
func (r *SolveRepository) Moves(solveID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT notation FROM solve_moves
		WHERE solve_id = ? ORDER BY move_index
	`, solveID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	defer rows.Close()

	var moves []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		moves = append(moves, n)
	}
	return moves, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSolve(row scanner) (*Solve, error) {
	var s Solve
	var startedAt string
	var endedAt *string
	if err := row.Scan(&s.SolveID, &startedAt, &endedAt, &s.DurationMs,
		&s.InitialState, &s.SolutionText, &s.MoveCount, &s.Status); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time: %w", err)
	}
	s.StartedAt = t
	if endedAt != nil {
		e, err := time.Parse(time.RFC3339, *endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end time: %w", err)
		}
		s.EndedAt = &e
	}
	return &s, nil
}
