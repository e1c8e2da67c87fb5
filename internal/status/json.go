package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Outputs       []OutputJSON `json:"outputs"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// OutputJSON is the JSON representation of one output.
type OutputJSON struct {
	Name       string `json:"name"`
	Effect     string `json:"effect"`
	State      uint8  `json:"state"`
	On         bool   `json:"on"`
	Brightness uint8  `json:"brightness"`
	Changes    int    `json:"changes"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs     int64  `json:"poll_ms"`
	Broker     string `json:"broker"`
	HTTPAddr   string `json:"http_addr"`
	ConfigPath string `json:"config_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	outputs := make([]OutputJSON, len(snap.Outputs))
	for i, o := range snap.Outputs {
		outputs[i] = OutputJSON{
			Name:       o.Name,
			Effect:     o.Effect,
			State:      o.State,
			On:         o.On(),
			Brightness: o.Brightness,
			Changes:    o.Changes,
		}
	}

	return StatusInner{
		Outputs:       outputs,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:     snap.Config.PollMs,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
			ConfigPath: snap.Config.ConfigPath,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
