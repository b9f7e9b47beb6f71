package influxdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
)

const (
	pingTimeout = 10 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Client batches solver metrics into one bucket. Writes never block the
// solver; failures reach the onError callback given to Connect.
//
// A zero Client behaves as a closed one: writes are dropped.
type Client struct {
	client influxdb2.Client
	writes api.WriteAPI
	open   atomic.Bool
}

// Connect pings the server and starts the batched writer. onError may be
// nil. It returns ErrDisabled when metrics are switched off.
func Connect(cfg config.InfluxDBConfig, onError func(error)) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	switch {
	case err != nil:
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	case !healthy:
		client.Close()
		return nil, fmt.Errorf("%w: %s reports unhealthy", ErrConnectionFailed, cfg.URL)
	}

	c := &Client{client: client, writes: client.WriteAPI(cfg.Org, cfg.Bucket)}
	c.open.Store(true)

	errs := c.writes.Errors()
	go func() {
		for err := range errs {
			if onError != nil {
				onError(err)
			}
		}
	}()
	return c, nil
}

// writeOptions sizes batches from the config, falling back to 100 points
// or ten seconds, whichever comes first.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := uint(defaultBatchSize)
	if cfg.BatchSize > 0 {
		batch = uint(cfg.BatchSize)
	}
	flush := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}
	// #nosec G115 -- flush interval is a small positive number of milliseconds
	return influxdb2.DefaultOptions().
		SetBatchSize(batch).
		SetFlushInterval(uint(flush.Milliseconds()))
}

// Flush blocks until buffered points are sent.
func (c *Client) Flush() {
	if c.open.Load() {
		c.writes.Flush()
	}
}

// Close flushes pending points and releases the client. Later writes are
// dropped.
func (c *Client) Close() error {
	if !c.open.Swap(false) {
		return nil
	}
	c.writes.Flush()
	c.client.Close()
	return nil
}

func (c *Client) writePoint(p *write.Point) {
	if c.open.Load() {
		c.writes.WritePoint(p)
	}
}
