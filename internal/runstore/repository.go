package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeFormat sorts lexically in UTC, unlike RFC3339Nano which trims
// trailing zeros.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// List limits.
const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Repository defines the interface for run persistence.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	CompleteRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	AddSolution(ctx context.Context, runID string, ordinal int, layout string) error
	ListSolutions(ctx context.Context, runID string) ([]Solution, error)
}

// runColumns is the SELECT column list for run queries.
const runColumns = `id, problem, problem_digest, budget, workers, rules,
			trials, candidates, solutions, status, error,
			started_at, completed_at, duration_ms`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository. The schema
// comes from the migrations package.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateRun inserts a new run.
func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" || run.Problem == "" {
		return fmt.Errorf("%w: id and problem are required", ErrInvalidRun)
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO solver_runs (
			id, problem, problem_digest, budget, workers, rules,
			trials, candidates, solutions, status, error,
			started_at, completed_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Problem,
		run.ProblemDigest,
		run.Budget,
		run.Workers,
		run.Rules,
		clampInt64(run.Trials),
		clampInt64(run.Candidates),
		run.Solutions,
		string(run.Status),
		nullableString(run.Error),
		run.StartedAt.UTC().Format(timeFormat),
		nullableTime(run.CompletedAt),
		nullableInt64(run.DurationMS),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrRunExists
		}
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// CompleteRun writes a run's final counters and status.
func (r *SQLiteRepository) CompleteRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE solver_runs SET
			trials = ?, candidates = ?, solutions = ?, status = ?, error = ?,
			completed_at = ?, duration_ms = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		clampInt64(run.Trials),
		clampInt64(run.Candidates),
		run.Solutions,
		string(run.Status),
		nullableString(run.Error),
		nullableTime(run.CompletedAt),
		nullableInt64(run.DurationMS),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM solver_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + runColumns + ` FROM solver_runs ORDER BY started_at DESC, id LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning run: %w", scanErr)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// AddSolution stores one solution layout of a run.
func (r *SQLiteRepository) AddSolution(ctx context.Context, runID string, ordinal int, layout string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO solver_solutions (run_id, ordinal, layout) VALUES (?, ?, ?)`,
		runID, ordinal, layout,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrRunNotFound
		}
		return fmt.Errorf("inserting solution: %w", err)
	}
	return nil
}

// ListSolutions retrieves a run's solutions in ordinal order.
func (r *SQLiteRepository) ListSolutions(ctx context.Context, runID string) ([]Solution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, ordinal, layout FROM solver_solutions WHERE run_id = ? ORDER BY ordinal`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying solutions: %w", err)
	}
	defer rows.Close()

	var out []Solution
	for rows.Next() {
		var s Solution
		if err := rows.Scan(&s.RunID, &s.Ordinal, &s.Layout); err != nil {
			return nil, fmt.Errorf("scanning solution: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating solutions: %w", err)
	}
	return out, nil
}

// ─── Row Scanning Helpers ───────────────────────────────────────────────────

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var run Run
	var status, startedAt string
	var trials, candidates int64
	var errText, completedAt sql.NullString
	var durationMS sql.NullInt64

	err := scanner.Scan(
		&run.ID,
		&run.Problem,
		&run.ProblemDigest,
		&run.Budget,
		&run.Workers,
		&run.Rules,
		&trials,
		&candidates,
		&run.Solutions,
		&status,
		&errText,
		&startedAt,
		&completedAt,
		&durationMS,
	)
	if err != nil {
		return nil, err
	}

	run.Trials = uint64(trials)
	run.Candidates = uint64(candidates)
	run.Status = Status(status)
	run.Error = errText.String

	if t, parseErr := time.Parse(timeFormat, startedAt); parseErr == nil {
		run.StartedAt = t
	}
	if completedAt.Valid {
		if t, parseErr := time.Parse(timeFormat, completedAt.String); parseErr == nil {
			run.CompletedAt = &t
		}
	}
	if durationMS.Valid {
		ms := durationMS.Int64
		run.DurationMS = &ms
	}
	return &run, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueConstraintError(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
