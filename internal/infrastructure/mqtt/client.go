package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
)

// Logger is the subset of logging.Logger the client reports through.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Hooks are optional callbacks fixed at Connect time. They run on paho
// goroutines and must not block.
type Hooks struct {
	Logger Logger

	// Reconnected fires after a dropped connection is re-established and
	// routes are restored. The first connection does not fire it.
	Reconnected func()

	// Lost fires when the broker connection drops.
	Lost func(err error)
}

// Client publishes solver run events and follows them on a broker.
// Routes registered with Subscribe survive reconnects.
type Client struct {
	conn   pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics
	hooks  Hooks

	mu     sync.Mutex
	routes map[string]route

	// sessions counts successful connections, reconnects included.
	sessions atomic.Int64
}

// Connect dials the broker and waits for the first session. The broker is
// told to publish a retained offline presence if this process dies.
// It returns ErrDisabled when MQTT is switched off.
func Connect(cfg config.MQTTConfig, hooks Hooks) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	c := &Client{
		cfg:    cfg,
		topics: Topics{Prefix: cfg.TopicPrefix},
		hooks:  hooks,
		routes: make(map[string]route),
	}

	opts := pahoOptions(cfg, c.topics)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.sessionStarted() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if c.hooks.Lost != nil {
			c.hooks.Lost(err)
		}
	})
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		c.warn("MQTT reconnecting", "client_id", cfg.Broker.ClientID)
	})

	c.conn = pahomqtt.NewClient(opts)
	if err := wait(c.conn.Connect(), connectTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// sessionStarted announces presence and, after a reconnect, re-registers
// every route. A clean session drops them on the broker side.
func (c *Client) sessionStarted() {
	c.conn.Publish(c.topics.SystemStatus(), c.qos(), true, presence(c.cfg.Broker.ClientID, statusOnline, ""))

	if c.sessions.Add(1) == 1 {
		return
	}
	c.mu.Lock()
	for filter, rt := range c.routes {
		c.conn.Subscribe(filter, rt.qos, c.dispatch(rt.handler))
	}
	c.mu.Unlock()

	if c.hooks.Reconnected != nil {
		c.hooks.Reconnected()
	}
}

// Close leaves a retained offline presence and disconnects.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if c.IsConnected() {
		token := c.conn.Publish(c.topics.SystemStatus(), c.qos(), true,
			presence(c.cfg.Broker.ClientID, statusOffline, "graceful_shutdown"))
		token.WaitTimeout(publishTimeout)
	}
	c.conn.Disconnect(disconnectQuiesceMS)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether a broker session is currently open.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnectionOpen()
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) warn(msg string, args ...any) {
	if c.hooks.Logger != nil {
		c.hooks.Logger.Warn(msg, args...)
	}
}
