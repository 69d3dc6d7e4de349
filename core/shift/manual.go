package shift

import (
	"sort"
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// Source tells where a resolved shift start came from.
type Source string

const (
	SourceNone      Source = "none"
	SourceLive      Source = "live"
	SourceManualLog Source = "manual_log"
	// SourceDayStart marks a shift assumed to start at UTC midnight because
	// neither the tracker nor the manual log had one open.
	SourceDayStart Source = "day_start"
)

// ShiftStartFromManualLog recovers the open shift start from the manual entry
// log: the latest START_COUNTRY at or before now that no later END_COUNTRY at
// or before now cancelled.
func ShiftStartFromManualLog(segments []model.ManualBoundarySegment, now time.Time) (time.Time, bool) {
	sorted := make([]model.ManualBoundarySegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	var (
		start time.Time
		open  bool
	)
	for _, s := range sorted {
		if s.At.After(now) {
			break
		}
		switch s.Activity {
		case model.BoundaryStartCountry:
			start, open = s.At, true
		case model.BoundaryEndCountry:
			open = false
		case model.BoundaryOther:
		}
	}
	if !open {
		return time.Time{}, false
	}
	return start, true
}

// ResolveShiftStart prefers the live tracker state and only falls back to the
// manual log when the tracker has no open shift for the slot. A nil tracker
// goes straight to the log.
func ResolveShiftStart(t *Tracker, slot model.Slot, segments []model.ManualBoundarySegment, now time.Time) (time.Time, Source, error) {
	if err := slot.Validate(); err != nil {
		return time.Time{}, SourceNone, err
	}
	if t != nil {
		if start, ok, err := t.ShiftStart(slot); err != nil {
			return time.Time{}, SourceNone, err
		} else if ok {
			return start, SourceLive, nil
		}
	}
	if start, ok := ShiftStartFromManualLog(segments, now); ok {
		return start, SourceManualLog, nil
	}
	return time.Time{}, SourceNone, nil
}
