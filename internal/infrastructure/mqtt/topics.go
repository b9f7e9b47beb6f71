package mqtt

import "strings"

// DefaultTopicPrefix is used when the configuration leaves topic_prefix empty.
const DefaultTopicPrefix = "prelogate"

// Topics builds the run event topics under a prefix:
//
//	{prefix}/system/status          retained online/offline status
//	{prefix}/run/{run_id}/status    retained run lifecycle event
//	{prefix}/run/{run_id}/solution  one message per solution found
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// SystemStatus returns the retained online/offline topic.
//
// Example: prelogate/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// RunStatus returns the lifecycle topic of one run.
//
// Example: prelogate/run/run-1f0c.../status
func (t Topics) RunStatus(runID string) string {
	return t.prefix() + "/run/" + runID + "/status"
}

// RunSolution returns the topic solutions of one run are published on.
func (t Topics) RunSolution(runID string) string {
	return t.prefix() + "/run/" + runID + "/solution"
}

// AllRunStatus matches the status topic of every run.
//
// Pattern: prelogate/run/+/status
func (t Topics) AllRunStatus() string {
	return t.prefix() + "/run/+/status"
}

// AllRuns matches every run topic.
//
// Pattern: prelogate/run/#
func (t Topics) AllRuns() string {
	return t.prefix() + "/run/#"
}

// RunIDFromTopic extracts the run ID from a run topic. ok is false for
// topics outside {prefix}/run/.
func (t Topics) RunIDFromTopic(topic string) (runID string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.prefix()+"/run/")
	if !found {
		return "", false
	}
	runID, _, found = strings.Cut(rest, "/")
	if !found || runID == "" {
		return "", false
	}
	return runID, true
}
