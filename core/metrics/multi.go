package metrics

import "github.com/kilianp07/tacho/core/shift"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCompliance forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCompliance(ev ComplianceEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCompliance(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordShiftEvent forwards shift events when supported by the sink.
func (m *MultiSink) RecordShiftEvent(ev shift.Event) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ShiftEventRecorder); ok {
			if err := rec.RecordShiftEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordIngest forwards ingest counts when supported by the sink.
func (m *MultiSink) RecordIngest(vehicleID string, minutes int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(IngestRecorder); ok {
			if err := rec.RecordIngest(vehicleID, minutes); err != nil {
				return err
			}
		}
	}
	return nil
}
