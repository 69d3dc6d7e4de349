package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// ClassifyWeeklyRest maps a rest length to standard (>=45h), reduced
// ([24h,45h)) or short (<24h).
func ClassifyWeeklyRest(d time.Duration) model.WeeklyRestType {
	switch {
	case d >= WeeklyRestStandardMin:
		return model.WeeklyRestStandard
	case d >= WeeklyRestReducedMin:
		return model.WeeklyRestReduced
	default:
		return model.WeeklyRestShort
	}
}

// WeeklyDrivingExceeded reports a calendar week driving sum above 56h.
func WeeklyDrivingExceeded(d time.Duration) bool { return d > WeeklyDrivingCap }

// TwoWeekDrivingExceeded reports a two week driving sum above 90h.
func TwoWeekDrivingExceeded(d time.Duration) bool { return d > TwoWeekDrivingCap }
