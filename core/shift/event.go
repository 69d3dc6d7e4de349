package shift

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// Event describes a country entry applied to a tracker.
type Event struct {
	ID        string             `json:"id"`
	VehicleID string             `json:"vehicle_id"`
	Slot      model.Slot         `json:"slot"`
	Activity  model.BoundaryKind `json:"activity"`
	At        time.Time          `json:"at"`
	// Logged is false for a repeated start entry that did not open a new shift.
	Logged bool `json:"logged"`
}
