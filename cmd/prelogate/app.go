package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/database"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/logging"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/prelogate-core/internal/reporting"
	"github.com/nerrad567/prelogate-core/internal/runstore"
	"github.com/nerrad567/prelogate-core/migrations"
)

// configEnv names the config file when --config is not given.
const configEnv = "PRELOGATE_CONFIG"

// app holds what every command needs once configuration is loaded.
// Close releases whatever was opened, in reverse order.
type app struct {
	cfg *config.Config
	log *logging.Logger
	db  *database.DB

	closers []func()
}

// loadApp reads configuration and builds the logger.
func loadApp(flags *rootFlags) (*app, error) {
	path := flags.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	if path != "" {
		log.Debug("configuration loaded", "path", path)
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close runs the registered cleanups, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openDB opens the run store database without migrating it. It returns
// errStoreDisabled when the database is switched off.
func (a *app) openDB() (*database.DB, error) {
	if !a.cfg.Database.Enabled {
		return nil, errStoreDisabled
	}
	if a.db != nil {
		return a.db, nil
	}

	db, err := database.Open(database.Config{
		Path:        a.cfg.Database.Path,
		WALMode:     a.cfg.Database.WALMode,
		BusyTimeout: a.cfg.Database.BusyTimeout,
		Migrations:  migrations.FS,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.onClose(func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	})
	a.db = db
	return db, nil
}

// openStore opens and migrates the run store. It returns nil without error
// when the database is disabled.
func (a *app) openStore(ctx context.Context) (runstore.Repository, error) {
	db, err := a.openDB()
	if errors.Is(err, errStoreDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	a.log.Debug("run store ready", "path", db.Path())
	return runstore.NewSQLiteRepository(db.DB), nil
}

// connectMQTT returns nil when MQTT is disabled. Connection failures are
// returned so callers can decide whether the broker is optional.
func (a *app) connectMQTT() (*mqtt.Client, error) {
	client, err := mqtt.Connect(a.cfg.MQTT, mqtt.Hooks{
		Logger: a.log,
		Lost: func(err error) {
			a.log.Warn("MQTT disconnected", "error", err)
		},
		Reconnected: func() {
			a.log.Info("MQTT reconnected, subscriptions restored")
		},
	})
	if errors.Is(err, mqtt.ErrDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.onClose(func() {
		if closeErr := client.Close(); closeErr != nil {
			a.log.Error("error closing MQTT", "error", closeErr)
		}
	})
	a.log.Debug("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
		"client_id", a.cfg.MQTT.Broker.ClientID,
	)
	return client, nil
}

// connectInflux returns nil when InfluxDB is disabled.
func (a *app) connectInflux() (*influxdb.Client, error) {
	client, err := influxdb.Connect(a.cfg.InfluxDB, func(err error) {
		a.log.Error("InfluxDB write error", "error", err)
	})
	if errors.Is(err, influxdb.ErrDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.onClose(func() {
		if closeErr := client.Close(); closeErr != nil {
			a.log.Error("error closing InfluxDB", "error", closeErr)
		}
	})
	a.log.Debug("InfluxDB connected", "url", a.cfg.InfluxDB.URL, "bucket", a.cfg.InfluxDB.Bucket)
	return client, nil
}

// reporter wires whichever sinks are reachable. An unreachable broker or
// metrics server is logged and skipped; it never blocks a solve.
func (a *app) reporter() *reporting.Reporter {
	opts := reporting.Options{Logger: a.log}

	if client, err := a.connectMQTT(); err != nil {
		a.log.Warn("MQTT unavailable, run events will not be published", "error", err)
	} else if client != nil {
		opts.Publisher = client
	}

	if client, err := a.connectInflux(); err != nil {
		a.log.Warn("InfluxDB unavailable, metrics will not be written", "error", err)
	} else if client != nil {
		opts.Metrics = client
	}

	return reporting.New(opts)
}
