package model

import (
	"fmt"
	"time"
)

// Durations aggregates time spent per activity kind.
type Durations struct {
	Driving      time.Duration `json:"driving"`
	Rest         time.Duration `json:"rest"`
	OtherWork    time.Duration `json:"other_work"`
	Availability time.Duration `json:"availability"`
}

// Add accounts one minute of the given kind. ActivityNone is ignored.
func (d *Durations) Add(kind ActivityKind) {
	switch kind {
	case ActivityDriving:
		d.Driving += MinuteUnit
	case ActivityRest:
		d.Rest += MinuteUnit
	case ActivityOtherWork:
		d.OtherWork += MinuteUnit
	case ActivityAvailability:
		d.Availability += MinuteUnit
	case ActivityNone:
	}
}

// Total returns the sum of all categories.
func (d Durations) Total() time.Duration {
	return d.Driving + d.Rest + d.OtherWork + d.Availability
}

// WeeklyRestType classifies the length of a weekly rest period.
type WeeklyRestType int

const (
	WeeklyRestShort WeeklyRestType = iota
	WeeklyRestReduced
	WeeklyRestStandard
)

func (w WeeklyRestType) String() string {
	switch w {
	case WeeklyRestStandard:
		return "standard"
	case WeeklyRestReduced:
		return "reduced"
	default:
		return "short"
	}
}

func (w WeeklyRestType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *WeeklyRestType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "standard":
		*w = WeeklyRestStandard
	case "reduced":
		*w = WeeklyRestReduced
	case "short":
		*w = WeeklyRestShort
	default:
		return fmt.Errorf("unknown weekly rest type %q", b)
	}
	return nil
}
