// Package mqtt publishes solver run events to an MQTT broker and lets
// other processes follow them.
//
// The client keeps a retained presence on {prefix}/system/status, backed
// by a Last Will so a crashed solver shows as offline. Routes registered
// with Subscribe accept wildcards and are restored after every reconnect.
//
// # Topics
//
//	{prefix}/system/status          retained, online/offline
//	{prefix}/run/{run_id}/status    retained, run lifecycle JSON
//	{prefix}/run/{run_id}/solution  one JSON message per solution
//
// The prefix comes from mqtt.topic_prefix and defaults to "prelogate".
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) for brokers outside the local host
//   - Payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.Hooks{Logger: log})
//	if errors.Is(err, mqtt.ErrDisabled) {
//	    // publishing is optional
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(client.Topics().RunStatus(run.ID), event, true)
package mqtt
