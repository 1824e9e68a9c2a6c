package metrics

import coremetrics "github.com/Jainil7227/AlphaNeuron/core/metrics"

// MultiSink fans cycle records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordCycle(rec coremetrics.CycleRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordCycle(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordActiveMissions forwards the gauge to sinks that support it.
func (m *MultiSink) RecordActiveMissions(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ActiveMissionsRecorder); ok {
			if err := rec.RecordActiveMissions(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTrigger forwards trigger dispositions to sinks that support them.
func (m *MultiSink) RecordTrigger(kind, disposition string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TriggerRecorder); ok {
			if err := rec.RecordTrigger(kind, disposition); err != nil {
				return err
			}
		}
	}
	return nil
}
