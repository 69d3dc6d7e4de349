package metrics

import (
	"time"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/shift"
)

// ComplianceEvent is a compliance report recorded at a given time.
type ComplianceEvent struct {
	Report compliance.Report
	Time   time.Time
}

// MetricsSink records compliance reports for observability purposes.
type MetricsSink interface {
	RecordCompliance(ev ComplianceEvent) error
}

// ShiftEventRecorder records country entries applied to shift trackers.
type ShiftEventRecorder interface {
	RecordShiftEvent(ev shift.Event) error
}

// IngestRecorder records the number of activity minutes stored per vehicle.
type IngestRecorder interface {
	RecordIngest(vehicleID string, minutes int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCompliance(ComplianceEvent) error { return nil }
func (NopSink) RecordShiftEvent(shift.Event) error     { return nil }
func (NopSink) RecordIngest(string, int) error         { return nil }
