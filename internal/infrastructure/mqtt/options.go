package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
)

const (
	connectTimeout      = 10 * time.Second
	publishTimeout      = 5 * time.Second
	disconnectQuiesceMS = 1000
	keepAlive           = 60 * time.Second

	maxQoS = 2
)

// Presence states published on {prefix}/system/status.
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// pahoOptions maps the broker configuration onto paho. Sessions are clean
// and reconnect automatically; the Last Will marks a crashed solver.
func pahoOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetBinaryWill(topics.SystemStatus(), presence(cfg.Broker.ClientID, statusOffline, "unexpected_disconnect"), 1, true)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username).SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

// presenceMessage is the retained solver presence.
type presenceMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func presence(clientID, status, reason string) []byte {
	//nolint:errcheck // A struct of strings always encodes
	b, _ := json.Marshal(presenceMessage{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}

// wait blocks on a paho token for at most d.
func wait(token pahomqtt.Token, d time.Duration) error {
	if !token.WaitTimeout(d) {
		return fmt.Errorf("timeout after %v", d)
	}
	return token.Error()
}
