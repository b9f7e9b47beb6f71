package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler is called for each received message, on a paho goroutine.
// A returned error is logged and otherwise ignored.
type MessageHandler func(topic string, payload []byte) error

// route is a registered topic filter, kept so it can be restored after a
// reconnect.
type route struct {
	qos     byte
	handler MessageHandler
}

// Subscribe routes messages matching filter to handler. "+" matches one
// level and "#" the rest, so AllRunStatus follows every run.
//
// Example:
//
//	err := client.Subscribe(client.Topics().AllRunStatus(), 1,
//	    func(topic string, payload []byte) error {
//	        fmt.Printf("%s %s\n", topic, payload)
//	        return nil
//	    })
func (c *Client) Subscribe(filter string, qos byte, handler MessageHandler) error {
	switch {
	case filter == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	case handler == nil:
		return fmt.Errorf("%w: nil handler", ErrSubscribeFailed)
	case !c.IsConnected():
		return ErrNotConnected
	}

	c.mu.Lock()
	c.routes[filter] = route{qos: qos, handler: handler}
	c.mu.Unlock()

	if err := wait(c.conn.Subscribe(filter, qos, c.dispatch(handler)), publishTimeout); err != nil {
		c.mu.Lock()
		delete(c.routes, filter)
		c.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, filter, err)
	}
	return nil
}

// Unsubscribe drops the route for filter. Messages already in flight may
// still reach its handler.
func (c *Client) Unsubscribe(filter string) error {
	if filter == "" {
		return ErrInvalidTopic
	}

	c.mu.Lock()
	delete(c.routes, filter)
	c.mu.Unlock()

	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := wait(c.conn.Unsubscribe(filter), publishTimeout); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, filter, err)
	}
	return nil
}

// dispatch adapts handler to paho. Handler errors and panics are logged;
// neither may take down the paho router goroutine.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil && c.hooks.Logger != nil {
				c.hooks.Logger.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.warn("MQTT handler failed", "topic", msg.Topic(), "error", err)
		}
	}
}
