package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// RequiredDailyRest returns the daily rest due at the end of a shift: 9h in
// crew mode or when the shift already contained a rest of at least 3h, 11h
// otherwise.
func RequiredDailyRest(tl model.Timeline, slot model.Slot, crew bool, shiftStart, shiftEnd time.Time) (time.Duration, error) {
	if err := slot.Validate(); err != nil {
		return 0, err
	}
	if crew {
		return CrewDailyRest, nil
	}
	if hasInShiftRest(tl.Between(shiftStart, shiftEnd), slot) {
		return ReducedDailyRest, nil
	}
	return RegularDailyRest, nil
}

// ExtendedDays counts the days of ref's calendar week (Monday to Sunday) on
// which driving reached 9h01.
func ExtendedDays(tl model.Timeline, slot model.Slot, ref time.Time) (int, error) {
	if err := slot.Validate(); err != nil {
		return 0, err
	}
	monday := MondayOf(ref)
	n := 0
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		d, err := Aggregate(tl, slot, day, day.AddDate(0, 0, 1))
		if err != nil {
			return 0, err
		}
		if d.Driving >= ExtendedDayThreshold {
			n++
		}
	}
	return n, nil
}

// ExtendedAvailable reports whether the 10h limit may still be used this week.
func ExtendedAvailable(extendedDays int) bool {
	return extendedDays < MaxExtendedDays
}

// RemainingDailyDriving returns the driving time left in the current shift.
// Past 9h only the extended allowance counts; below it the result is also
// capped by what remains of the driving block.
func RemainingDailyDriving(shiftDriving, blockRemaining time.Duration, extendedAvailable bool) time.Duration {
	if shiftDriving >= DailyDrivingLimit {
		if extendedAvailable {
			return clamp(ExtendedDrivingLimit - shiftDriving)
		}
		return 0
	}
	limit := DailyDrivingLimit
	if extendedAvailable {
		limit = ExtendedDrivingLimit
	}
	return min(clamp(blockRemaining), clamp(limit-shiftDriving))
}
