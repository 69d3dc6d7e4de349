package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// FloatingWeek returns the interval between the end of the first weekly rest
// (a rest block of at least 24h) and the start of the second one.
func FloatingWeek(tl model.Timeline, slot model.Slot) (start, end time.Time, ok bool, err error) {
	if err = slot.Validate(); err != nil {
		return
	}
	start, end, ok = floatingWeek(segment(tl, slot))
	return
}

func floatingWeek(blocks []Block) (time.Time, time.Time, bool) {
	var weekly []Block
	for _, b := range blocks {
		if b.Kind == model.ActivityRest && b.Duration() >= WeeklyRestReducedMin {
			weekly = append(weekly, b)
			if len(weekly) == 2 {
				return weekly[0].End, weekly[1].Start, true
			}
		}
	}
	return time.Time{}, time.Time{}, false
}

// CountReducedDailyRests counts daily rests in [9h, 11h) taken inside the
// floating week, capped at three. A rest only counts when the span since the
// previous long rest held real activity and no in-shift rest of 3h already
// made 9h the regular requirement.
func CountReducedDailyRests(tl model.Timeline, slot model.Slot, crew bool) (int, error) {
	if err := slot.Validate(); err != nil {
		return 0, err
	}
	if crew || len(tl) == 0 {
		return 0, nil
	}
	start, end, ok := floatingWeek(segment(tl, slot))
	if !ok {
		return 0, nil
	}
	window := tl.Between(start, end)
	lastLongRestEnd := start
	count := 0
	for _, b := range segment(window, slot) {
		if b.Kind != model.ActivityRest || b.Duration() < ReducedDailyRest {
			continue
		}
		if b.Duration() < RegularDailyRest {
			shift := window.Between(lastLongRestEnd, b.Start)
			if hasActivity(shift, slot) && !hasInShiftRest(shift, slot) {
				count++
				if count >= MaxReducedDailyRests {
					return MaxReducedDailyRests, nil
				}
			}
		}
		lastLongRestEnd = b.End
	}
	return count, nil
}
