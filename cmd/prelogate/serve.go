package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/prelogate-core/internal/api"
)

// errNoJWTSecret is returned by token when api.jwt_secret is unset.
var errNoJWTSecret = errors.New("api.jwt_secret is not set")

func newServeCmd(root *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history and live run events over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("port") {
				a.cfg.API.Port = port
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return errStoreDisabled
			}

			deps := api.Deps{
				Config:  a.cfg.API,
				Logger:  a.log,
				Runs:    store,
				Version: version,
				Checks:  map[string]api.HealthChecker{"database": a.db},
			}
			if client, err := a.connectMQTT(); err != nil {
				a.log.Warn("MQTT unavailable, event streams disabled", "error", err)
			} else if client != nil {
				deps.Events = client
				deps.Checks["mqtt"] = client
			}

			srv, err := api.New(deps)
			if err != nil {
				return err
			}
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			a.onClose(func() {
				if closeErr := srv.Close(); closeErr != nil {
					a.log.Error("error closing API server", "error", closeErr)
				}
			})

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides api.port)")
	return cmd
}

func newTokenCmd(root *rootFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the run history API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.API.JWTSecret == "" {
				return errNoJWTSecret
			}
			token, err := api.GenerateToken(subject, a.cfg.API.JWTSecret, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (who the token is for)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject") //nolint:errcheck // Flag is registered above
	return cmd
}
