package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// Aggregate sums the slot's activities over the half-open window [start, end).
// Each record contributes one minute to the category of its kind.
func Aggregate(tl model.Timeline, slot model.Slot, start, end time.Time) (model.Durations, error) {
	var d model.Durations
	if err := slot.Validate(); err != nil {
		return d, err
	}
	for _, r := range tl.Between(start, end) {
		d.Add(r.Kind(slot))
	}
	return d, nil
}

// DayStart returns UTC midnight of the day containing t.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOf returns 00:00 UTC of the Monday starting the calendar week of t.
// Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	day := DayStart(t)
	wd := int(day.Weekday())
	offset := 1 - wd
	if wd == 0 {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}

// DayDurations sums the UTC calendar day containing ref.
func DayDurations(tl model.Timeline, slot model.Slot, ref time.Time) (model.Durations, error) {
	start := DayStart(ref)
	return Aggregate(tl, slot, start, start.AddDate(0, 0, 1))
}

// WeekDriving returns driving time in the calendar week (Monday to Monday) of ref.
func WeekDriving(tl model.Timeline, slot model.Slot, ref time.Time) (time.Duration, error) {
	monday := MondayOf(ref)
	d, err := Aggregate(tl, slot, monday, monday.AddDate(0, 0, 7))
	return d.Driving, err
}

// TwoWeekDriving returns driving time over the current and the preceding
// calendar week, summed day by day.
func TwoWeekDriving(tl model.Timeline, slot model.Slot, ref time.Time) (time.Duration, error) {
	if err := slot.Validate(); err != nil {
		return 0, err
	}
	start := MondayOf(ref).AddDate(0, 0, -7)
	var sum time.Duration
	for i := 0; i < 14; i++ {
		day := start.AddDate(0, 0, i)
		d, err := Aggregate(tl, slot, day, day.AddDate(0, 0, 1))
		if err != nil {
			return 0, err
		}
		sum += d.Driving
	}
	return sum, nil
}

// ShiftDurations sums [shiftStart, now+1m) so the minute containing now counts.
func ShiftDurations(tl model.Timeline, slot model.Slot, shiftStart, now time.Time) (model.Durations, error) {
	end := now.Truncate(model.MinuteUnit).Add(model.MinuteUnit)
	return Aggregate(tl, slot, shiftStart, end)
}
