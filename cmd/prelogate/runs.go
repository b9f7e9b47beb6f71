package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/prelogate-core/internal/runstore"
)

// errStoreDisabled is returned by commands that need the run store.
var errStoreDisabled = errors.New("run store is disabled (database.enabled: false)")

func newRunsCmd(root *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded solver runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return errStoreDisabled
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROBLEM\tBUDGET\tSTATUS\tSOLUTIONS\tCANDIDATES\tSTARTED\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%s\t%s\n",
					r.ID, r.Problem, r.Budget, r.Status, r.Solutions, r.Candidates,
					r.StartedAt.Local().Format(time.DateTime), formatDuration(r.DurationMS))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.AddCommand(newRunsShowCmd(root))
	return cmd
}

func newRunsShowCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a recorded run and its solutions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return errStoreDisabled
			}

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			solutions, err := store.ListSolutions(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRun(cmd, run)
			for _, s := range solutions {
				fmt.Fprintf(out, "\n# solution %d\n%s\n", s.Ordinal+1, s.Layout)
			}
			return nil
		},
	}
}

func printRun(cmd *cobra.Command, r *runstore.Run) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 1, ' ', 0)
	fmt.Fprintf(w, "run:\t%s\n", r.ID)
	fmt.Fprintf(w, "problem:\t%s (%s)\n", r.Problem, r.ProblemDigest)
	fmt.Fprintf(w, "budget:\t%d\n", r.Budget)
	fmt.Fprintf(w, "rules:\t%s\n", r.Rules)
	fmt.Fprintf(w, "workers:\t%d\n", r.Workers)
	fmt.Fprintf(w, "status:\t%s\n", r.Status)
	if r.Error != "" {
		fmt.Fprintf(w, "error:\t%s\n", r.Error)
	}
	fmt.Fprintf(w, "candidates:\t%d of %d\n", r.Candidates, r.Trials)
	fmt.Fprintf(w, "solutions:\t%d\n", r.Solutions)
	fmt.Fprintf(w, "duration:\t%s\n", formatDuration(r.DurationMS))
	w.Flush() //nolint:errcheck // Output errors surface on the next write
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	if *ms < 1000 {
		return strconv.FormatInt(*ms, 10) + "ms"
	}
	return (time.Duration(*ms) * time.Millisecond).Round(time.Millisecond).String()
}
