// Package metrics defines the instrumentation contract for the decision
// core. Sinks live in infra/metrics; the core records through this interface
// and never depends on a concrete backend.
package metrics

import "time"

// CycleRecord captures one completed decision cycle.
type CycleRecord struct {
	MissionID      string
	Trigger        string
	Decision       string
	Outcome        string
	Options        int
	Score          float64
	Confidence     float64
	DegradedFields int
	Duration       time.Duration
	Time           time.Time
}

// Sink receives cycle records.
type Sink interface {
	RecordCycle(rec CycleRecord) error
}

// ActiveMissionsRecorder is implemented by sinks that track the number of
// missions with a running scheduler.
type ActiveMissionsRecorder interface {
	RecordActiveMissions(n int) error
}

// TriggerRecorder is implemented by sinks that count queue behavior: offered,
// debounced and dropped triggers.
type TriggerRecorder interface {
	RecordTrigger(kind string, disposition string) error
}

// Config selects and configures the metric backends.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    int    `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordCycle(CycleRecord) error      { return nil }
func (NopSink) RecordActiveMissions(int) error     { return nil }
func (NopSink) RecordTrigger(string, string) error { return nil }
