package timeline

import (
	"errors"
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// ErrUnknownVehicle is returned when a store holds no data for a vehicle.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Store persists recorder minutes and manual boundary entries per vehicle.
// Range and Boundaries return data sorted by time.
type Store interface {
	// Append upserts records; a record for an existing minute replaces it.
	Append(vehicleID string, recs ...model.ActivityRecord) error
	// Range returns the records with minute in [start, end).
	Range(vehicleID string, start, end time.Time) (model.Timeline, error)
	AppendBoundary(vehicleID string, seg model.ManualBoundarySegment) error
	// Boundaries returns the entries with time in [start, end).
	Boundaries(vehicleID string, start, end time.Time) ([]model.ManualBoundarySegment, error)
	Vehicles() ([]string, error)
}

// Minute aligns t to the start of its UTC minute.
func Minute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
