package rules

import "time"

// Driving block.
const (
	BlockLimit      = 4*time.Hour + 30*time.Minute
	BlockWarning    = 4*time.Hour + 15*time.Minute
	FullBreak       = 45 * time.Minute
	SplitFirstPart  = 15 * time.Minute
	SplitSecondPart = 30 * time.Minute
)

// Daily limits.
const (
	DailyDrivingLimit    = 9 * time.Hour
	ExtendedDrivingLimit = 10 * time.Hour
	ExtendedDayThreshold = 9*time.Hour + time.Minute
	MaxExtendedDays      = 2

	RegularDailyRest     = 11 * time.Hour
	ReducedDailyRest     = 9 * time.Hour
	CrewDailyRest        = 9 * time.Hour
	InShiftRestThreshold = 3 * time.Hour
	MaxReducedDailyRests = 3
)

// Weekly limits.
const (
	WeeklyRestStandardMin = 45 * time.Hour
	WeeklyRestReducedMin  = 24 * time.Hour
	WeeklyDrivingCap      = 56 * time.Hour
	TwoWeekDrivingCap     = 90 * time.Hour

	// FloatingWeekCeiling is the regulatory maximum distance between two
	// weekly rests. CountReducedDailyRests does not enforce it.
	FloatingWeekCeiling = 144 * time.Hour
)

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
