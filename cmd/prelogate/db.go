package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newDBCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and manage the run store schema",
	}
	cmd.AddCommand(newDBStatusCmd(root), newDBMigrateCmd(root), newDBRollbackCmd(root))
	return cmd
}

func newDBStatusCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List schema migrations and whether each is applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			statuses, err := db.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATE\tAPPLIED")
			for _, st := range statuses {
				name, state, applied := st.Name, "pending", "-"
				if name == "" {
					name = "(unknown)"
				}
				if st.Applied {
					state = "applied"
					applied = st.AppliedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.Version, name, state, applied)
			}
			return w.Flush()
		},
	}
}

func newDBMigrateCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return err
		},
	}
}

func newDBRollbackCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the newest applied schema migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			m, ok, err := db.Rollback(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				_, err = fmt.Fprintln(out, "nothing to roll back")
				return err
			}
			a.log.Info("migration rolled back", "version", m.Version, "name", m.Name)
			_, err = fmt.Fprintf(out, "rolled back %s (%s)\n", m.Version, m.Name)
			return err
		},
	}
}
