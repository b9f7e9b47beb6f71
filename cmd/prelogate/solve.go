package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/puzzle"
	"github.com/nerrad567/prelogate-core/internal/runstore"
	"github.com/nerrad567/prelogate-core/internal/solver"
)

// errLimitReached stops a search once --limit solutions were printed.
var errLimitReached = errors.New("solution limit reached")

type searchFlags struct {
	budget       int
	workers      int
	disableRules []string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.budget, "budget", 0, "exact number of non-trivial devices to place")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent evaluators (default solver.workers, else one per CPU)")
	cmd.Flags().StringSliceVar(&f.disableRules, "disable-rule", nil, "pruning rule to skip: walls, emitters, receivers, rows")
	_ = cmd.MarkFlagRequired("budget") //nolint:errcheck // Flag is registered above
}

// prepare parses the problem and builds the engine.
func (f *searchFlags) prepare(a *app, path string) (*solver.Engine, error) {
	reg := device.NewRegistry()
	p, err := puzzle.ParseFile(path, reg)
	if err != nil {
		return nil, err
	}

	disabled, err := solver.ParseRules(append(append([]string{}, a.cfg.Solver.DisabledRules...), f.disableRules...))
	if err != nil {
		return nil, err
	}

	workers := f.workers
	if workers <= 0 {
		workers = a.cfg.Solver.Workers
	}

	return solver.New(p, reg, f.budget, solver.Options{
		Workers:  workers,
		Disabled: disabled,
		Logger:   a.log.With("problem", p.Name()),
	})
}

func newCountCmd(root *rootFlags) *cobra.Command {
	flags := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "count <problem>",
		Short: "Print how many candidate grids a solve would evaluate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			eng, err := flags.prepare(a, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d states to check\n", eng.CountTrials())
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

type solveFlags struct {
	searchFlags
	limit   int
	noStore bool
}

func newSolveCmd(root *rootFlags) *cobra.Command {
	flags := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve <problem>",
		Short: "Search a problem for every layout placing exactly the device budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()
			return solve(cmd.Context(), a, flags, args[0], cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "stop after this many solutions (0 = all)")
	cmd.Flags().BoolVar(&flags.noStore, "no-store", false, "do not record the run in the database")
	return cmd
}

// solve runs one search, printing each solution as it is found and
// recording the run in the store and sinks.
func solve(ctx context.Context, a *app, flags *solveFlags, path string, out io.Writer) error {
	eng, err := flags.prepare(a, path)
	if err != nil {
		return err
	}
	p := eng.Problem()

	var store runstore.Repository
	if !flags.noStore {
		if store, err = a.openStore(ctx); err != nil {
			return err
		}
	}
	rep := a.reporter()

	run := runstore.NewRun(p.Name(), p.Digest(), eng.Budget(), eng.Workers(), eng.Rules().String())
	run.Trials = eng.CountTrials()
	if store != nil {
		if err := store.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}
	rep.Started(run, eng.PruneStats())

	found := 0
	stats, searchErr := eng.SearchFunc(ctx, func(s solver.Solution) error {
		lines := s.Lines(p)
		if found > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, strings.Join(lines, "\n"))

		if store != nil {
			if err := store.AddSolution(ctx, run.ID, found, strings.Join(lines, "\n")); err != nil {
				return fmt.Errorf("recording solution: %w", err)
			}
		}
		rep.Solution(run, found, lines)

		found++
		if flags.limit > 0 && found >= flags.limit {
			return errLimitReached
		}
		return nil
	})

	status, runErr := runOutcome(searchErr)
	run.Candidates = stats.Candidates
	run.Solutions = found
	run.Finish(status, runErr)

	if store != nil {
		// The search context may already be cancelled.
		if err := store.CompleteRun(context.WithoutCancel(ctx), run); err != nil {
			a.log.Error("recording run completion failed", "run_id", run.ID, "error", err)
		}
	}
	rep.Finished(run, stats)

	a.log.Info("run finished",
		"run_id", run.ID,
		"status", run.Status,
		"solutions", found,
		"candidates", stats.Candidates,
		"elapsed", stats.Elapsed.Round(time.Millisecond),
	)
	fmt.Fprintf(out, "%d solution(s), %d of %d candidates checked\n", found, stats.Candidates, run.Trials)
	return runErr
}

// runOutcome maps a search error to the run status and the error the
// command returns. Reaching --limit is a normal finish.
func runOutcome(err error) (runstore.Status, error) {
	switch {
	case err == nil, errors.Is(err, errLimitReached):
		return runstore.StatusCompleted, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return runstore.StatusCancelled, err
	default:
		return runstore.StatusFailed, err
	}
}
