package runstore

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/database"
	"github.com/nerrad567/prelogate-core/migrations"
)

// testRepo opens a migrated run store in a temporary directory.
func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "runs.db"),
		WALMode:     true,
		BusyTimeout: 5,
		Migrations:  migrations.FS,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

// ─── Runs ───────────────────────────────────────────────────────────────────

func TestCreateRun_GetRun(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run := NewRun("scenario-a", "abc123", 1, 4, "walls,emitters,receivers,rows")
	run.Trials = 3
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Problem != "scenario-a" || got.ProblemDigest != "abc123" {
		t.Errorf("GetRun() problem = %q/%q", got.Problem, got.ProblemDigest)
	}
	if got.Budget != 1 || got.Workers != 4 || got.Trials != 3 {
		t.Errorf("GetRun() budget/workers/trials = %d/%d/%d", got.Budget, got.Workers, got.Trials)
	}
	if got.Status != StatusRunning {
		t.Errorf("Status = %q, want %q", got.Status, StatusRunning)
	}
	if got.CompletedAt != nil || got.DurationMS != nil {
		t.Error("running run should have no completion fields")
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
}

func TestCreateRun_Invalid(t *testing.T) {
	repo := testRepo(t)

	tests := []struct {
		name string
		run  *Run
	}{
		{"nil", nil},
		{"missing id", &Run{Problem: "p"}},
		{"missing problem", &Run{ID: "run-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateRun(context.Background(), tt.run)
			if !errors.Is(err, ErrInvalidRun) {
				t.Errorf("CreateRun() error = %v, want ErrInvalidRun", err)
			}
		})
	}
}

func TestCreateRun_Duplicate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run := NewRun("p", "d", 0, 1, "")
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := repo.CreateRun(ctx, run); !errors.Is(err, ErrRunExists) {
		t.Errorf("CreateRun() duplicate error = %v, want ErrRunExists", err)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	repo := testRepo(t)

	if _, err := repo.GetRun(context.Background(), "run-missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestCompleteRun(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run := NewRun("p", "d", 2, 1, "walls")
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	run.Candidates = 12
	run.Solutions = 2
	run.Finish(StatusFailed, errors.New("visit: disk full"))
	if err := repo.CompleteRun(ctx, run); err != nil {
		t.Fatalf("CompleteRun() error = %v", err)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Status != StatusFailed || !got.Status.IsTerminal() {
		t.Errorf("Status = %q, want failed", got.Status)
	}
	if got.Error != "visit: disk full" {
		t.Errorf("Error = %q", got.Error)
	}
	if got.Candidates != 12 || got.Solutions != 2 {
		t.Errorf("Candidates/Solutions = %d/%d, want 12/2", got.Candidates, got.Solutions)
	}
	if got.CompletedAt == nil || got.DurationMS == nil {
		t.Fatal("completion fields not stored")
	}
	if *got.DurationMS < 0 {
		t.Errorf("DurationMS = %d, want >= 0", *got.DurationMS)
	}
}

func TestCompleteRun_NotFound(t *testing.T) {
	repo := testRepo(t)

	run := NewRun("p", "d", 0, 1, "")
	run.Finish(StatusCompleted, nil)
	if err := repo.CompleteRun(context.Background(), run); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("CompleteRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestCreateRun_SaturatedTrials(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run := NewRun("huge", "d", 9, 1, "")
	run.Trials = math.MaxUint64
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Trials != math.MaxInt64 {
		t.Errorf("Trials = %d, want %d", got.Trials, uint64(math.MaxInt64))
	}
}

func TestListRuns(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		run := NewRun("p", "d", i, 1, "")
		// Whole seconds and fractions must still sort correctly.
		run.StartedAt = base.Add(time.Duration(i) * 500 * time.Millisecond)
		if err := repo.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := repo.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	for i, run := range runs {
		if want := ids[len(ids)-1-i]; run.ID != want {
			t.Errorf("runs[%d].ID = %s, want %s (newest first)", i, run.ID, want)
		}
	}

	limited, err := repo.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != ids[2] {
		t.Errorf("ListRuns(1) = %v", limited)
	}
}

// ─── Solutions ──────────────────────────────────────────────────────────────

func TestSolutions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	run := NewRun("p", "d", 1, 1, "")
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	layouts := []string{"E\tMIRROR\nEMPTY\tR", "E\tEMPTY\nMIRROR\tR"}
	for i := len(layouts) - 1; i >= 0; i-- {
		if err := repo.AddSolution(ctx, run.ID, i, layouts[i]); err != nil {
			t.Fatalf("AddSolution(%d) error = %v", i, err)
		}
	}

	got, err := repo.ListSolutions(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListSolutions() error = %v", err)
	}
	if len(got) != len(layouts) {
		t.Fatalf("ListSolutions() returned %d, want %d", len(got), len(layouts))
	}
	for i, s := range got {
		if s.Ordinal != i || s.Layout != layouts[i] || s.RunID != run.ID {
			t.Errorf("solution %d = %+v", i, s)
		}
	}
}

func TestAddSolution_UnknownRun(t *testing.T) {
	repo := testRepo(t)

	err := repo.AddSolution(context.Background(), "run-missing", 0, "E\tR")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("AddSolution() error = %v, want ErrRunNotFound", err)
	}
}

func TestListSolutions_Empty(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.ListSolutions(context.Background(), "run-none")
	if err != nil {
		t.Fatalf("ListSolutions() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListSolutions() = %v, want empty", got)
	}
}
