package metrics

import (
	coremetrics "github.com/Jainil7227/AlphaNeuron/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records decision cycles in Prometheus metrics.
type PromSink struct {
	cycles     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	confidence *prometheus.GaugeVec
	triggers   *prometheus.CounterVec
	missions   prometheus.Gauge
}

// NewPromSink registers cycle metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_cycles_total",
		Help: "Total number of completed decision cycles",
	}, []string{"trigger", "decision", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_cycle_duration_seconds",
		Help:    "Duration of a full decision cycle",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	confidence := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "agent_snapshot_confidence",
		Help: "Confidence of the last snapshot per mission",
	}, []string{"mission_id"})
	triggers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_triggers_total",
		Help: "Trigger queue dispositions",
	}, []string{"kind", "disposition"})
	missions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "agent_active_missions",
		Help: "Number of missions with a running scheduler",
	})

	s := &PromSink{cycles: cycles, duration: duration, confidence: confidence, triggers: triggers, missions: missions}
	for _, c := range []prometheus.Collector{cycles, duration, confidence, triggers, missions} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordCycle increments the cycle counter and observes its duration.
func (s *PromSink) RecordCycle(rec coremetrics.CycleRecord) error {
	s.cycles.WithLabelValues(rec.Trigger, rec.Decision, rec.Outcome).Inc()
	s.duration.WithLabelValues(rec.Trigger).Observe(rec.Duration.Seconds())
	s.confidence.WithLabelValues(rec.MissionID).Set(rec.Confidence)
	return nil
}

// RecordActiveMissions sets the active missions gauge.
func (s *PromSink) RecordActiveMissions(n int) error {
	s.missions.Set(float64(n))
	return nil
}

// RecordTrigger counts a trigger queue disposition.
func (s *PromSink) RecordTrigger(kind, disposition string) error {
	s.triggers.WithLabelValues(kind, disposition).Inc()
	return nil
}
