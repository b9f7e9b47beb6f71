package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "prelogate",
		Short:         "Solve beam and logic-gate grid puzzles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default $PRELOGATE_CONFIG, else built-in defaults)")

	root.AddCommand(
		newSolveCmd(flags),
		newCountCmd(flags),
		newRunsCmd(flags),
		newWatchCmd(flags),
		newServeCmd(flags),
		newTokenCmd(flags),
		newDBCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "prelogate %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}
