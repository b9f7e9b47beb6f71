package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nerrad567/prelogate-core/internal/reporting"
)

var errMQTTDisabled = errors.New("mqtt is disabled (mqtt.enabled: false)")

func newWatchCmd(root *rootFlags) *cobra.Command {
	var solutions bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow run status events published by other solvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.connectMQTT()
			if err != nil {
				return err
			}
			if client == nil {
				return errMQTTDisabled
			}

			topics := client.Topics()
			var mu sync.Mutex
			out := cmd.OutOrStdout()

			handler := func(topic string, payload []byte) error {
				line, err := describeEvent(topic, payload)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				_, err = fmt.Fprintln(out, line)
				return err
			}

			pattern := topics.AllRunStatus()
			if solutions {
				pattern = topics.AllRuns()
			}
			if err := client.Subscribe(pattern, byte(a.cfg.MQTT.QoS), handler); err != nil {
				return err
			}
			a.log.Info("watching runs", "topic", pattern)

			<-cmd.Context().Done()
			if err := client.Unsubscribe(pattern); err != nil {
				a.log.Warn("unsubscribing on exit", "topic", pattern, "error", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&solutions, "solutions", false, "also print solutions as they are published")
	return cmd
}

// describeEvent renders one status or solution message as a line.
func describeEvent(topic string, payload []byte) (string, error) {
	var status reporting.StatusEvent
	if err := json.Unmarshal(payload, &status); err != nil {
		return "", fmt.Errorf("decoding %s: %w", topic, err)
	}
	if status.Status == "" {
		var sol reporting.SolutionEvent
		if err := json.Unmarshal(payload, &sol); err != nil {
			return "", fmt.Errorf("decoding %s: %w", topic, err)
		}
		return fmt.Sprintf("%s solution %d: %v", sol.RunID, sol.Ordinal+1, sol.Rows), nil
	}

	line := fmt.Sprintf("%s %s %s budget=%d solutions=%d candidates=%d/%d",
		status.Timestamp.Local().Format("15:04:05"), status.RunID, status.Status,
		status.Budget, status.Solutions, status.Candidates, status.Trials)
	if status.Error != "" {
		line += " error=" + status.Error
	}
	return line, nil
}
