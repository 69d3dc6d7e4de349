package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// RemainingToBlockLimit returns the driving time left before the 4h30 block limit.
func RemainingToBlockLimit(drivingSinceBreak time.Duration) time.Duration {
	return clamp(BlockLimit - drivingSinceBreak)
}

// BlockWarningReached reports whether the informational 4h15 threshold is hit.
func BlockWarningReached(drivingSinceBreak time.Duration) bool {
	return drivingSinceBreak >= BlockWarning
}

// MinimumRequiredRest returns the rest still needed to complete the current
// part of a split break: 15m for the first part, 30m for the second.
func MinimumRequiredRest(restSoFar time.Duration, isSecondPart bool) time.Duration {
	target := SplitFirstPart
	if isSecondPart {
		target = SplitSecondPart
	}
	return clamp(target - restSoFar)
}

// BlockState is the driving block position derived from a timeline.
type BlockState struct {
	DrivingSinceBreak time.Duration `json:"driving_since_break"`
	// RestSoFar is the length of the rest run in progress at the reference minute.
	RestSoFar time.Duration `json:"rest_so_far"`
	// SecondPartPending is set once a first split part (>=15m) was taken and
	// the block still awaits its 30m second part.
	SecondPartPending bool `json:"second_part_pending"`
}

// EvaluateBlock replays [since, now+1m) and applies the break rules: one
// continuous 45m rest, or 15m followed later by 30m, resets the block. A gap
// or any non-rest minute ends a rest run.
func EvaluateBlock(tl model.Timeline, slot model.Slot, since, now time.Time) (BlockState, error) {
	var st BlockState
	if err := slot.Validate(); err != nil {
		return st, err
	}
	end := now.Truncate(model.MinuteUnit).Add(model.MinuteUnit)

	var (
		run       time.Duration
		qualified bool
		prev      time.Time
	)
	endRun := func() {
		if run > 0 && !qualified && run >= SplitFirstPart {
			st.SecondPartPending = true
		}
		run = 0
		qualified = false
	}
	for _, r := range tl.Between(since, end) {
		if !prev.IsZero() && !r.Minute.Equal(prev.Add(model.MinuteUnit)) {
			endRun()
		}
		prev = r.Minute
		kind := r.Kind(slot)
		if kind != model.ActivityRest {
			endRun()
			if kind == model.ActivityDriving {
				st.DrivingSinceBreak += model.MinuteUnit
			}
			continue
		}
		run += model.MinuteUnit
		if qualified {
			continue
		}
		if run >= FullBreak || (st.SecondPartPending && run >= SplitSecondPart) {
			st.DrivingSinceBreak = 0
			st.SecondPartPending = false
			qualified = true
		}
	}
	// A gap between the last record and the reference minute interrupts the run.
	if !prev.IsZero() && !prev.Add(model.MinuteUnit).Equal(end) {
		endRun()
	}
	st.RestSoFar = run
	return st, nil
}
