package metrics

import (
	coremetrics "github.com/Jainil7227/AlphaNeuron/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// FromConfig assembles the configured sinks. With nothing enabled the
// returned sink discards records.
func FromConfig(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		prom, err := NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
