// Package compliance composes the rules package into a single report for one
// driver slot at a reference instant.
package compliance

import (
	"fmt"
	"time"

	"github.com/kilianp07/tacho/core/model"
	"github.com/kilianp07/tacho/core/rules"
	"github.com/kilianp07/tacho/core/shift"
)

// blockLookback bounds the replay used to locate the last qualifying break.
const blockLookback = 24 * time.Hour

// Input gathers everything one evaluation reads.
type Input struct {
	VehicleID  string
	Timeline   model.Timeline
	Boundaries []model.ManualBoundarySegment
	// Tracker holds the live shift state. It may be nil.
	Tracker *shift.Tracker
	Slot    model.Slot
	Now     time.Time
	Crew    bool
	// SplitSecondPart forces the 30m second part target even when the
	// timeline shows no first part.
	SplitSecondPart bool
}

// Report is the outcome of an evaluation.
type Report struct {
	VehicleID string       `json:"vehicle_id"`
	Slot      model.Slot   `json:"slot"`
	At        time.Time    `json:"at"`
	Crew      bool         `json:"crew"`
	ShiftFrom time.Time    `json:"shift_start"`
	Source    shift.Source `json:"shift_source"`

	Today model.Durations `json:"today"`
	Shift model.Durations `json:"shift"`

	Block          rules.BlockState `json:"block"`
	BlockRemaining time.Duration    `json:"block_remaining"`
	BlockWarning   bool             `json:"block_warning"`
	MinimumRest    time.Duration    `json:"minimum_rest"`

	ExtendedDays        int           `json:"extended_days"`
	ExtendedAvailable   bool          `json:"extended_available"`
	ExtendedUnavailable bool          `json:"extended_unavailable"`
	RemainingDriving    time.Duration `json:"remaining_driving"`
	RequiredDailyRest   time.Duration `json:"required_daily_rest"`

	WeekDriving      time.Duration `json:"week_driving"`
	WeekRemaining    time.Duration `json:"week_remaining"`
	WeekExceeded     bool          `json:"week_exceeded"`
	TwoWeekDriving   time.Duration `json:"two_week_driving"`
	TwoWeekRemaining time.Duration `json:"two_week_remaining"`
	TwoWeekExceeded  bool          `json:"two_week_exceeded"`

	ReducedRests          int `json:"reduced_rests"`
	ReducedRestsRemaining int `json:"reduced_rests_remaining"`

	CurrentRest     time.Duration        `json:"current_rest"`
	CurrentRestType model.WeeklyRestType `json:"current_rest_type"`
}

// Evaluate runs the window sums and block evaluation first, then the daily and
// weekly rules against the resolved shift, then the floating week counter.
func Evaluate(in Input) (Report, error) {
	rep := Report{VehicleID: in.VehicleID, Slot: in.Slot, At: in.Now, Crew: in.Crew}
	if err := in.Slot.Validate(); err != nil {
		return rep, err
	}
	tl, slot, now := in.Timeline, in.Slot, in.Now
	end := now.Truncate(model.MinuteUnit).Add(model.MinuteUnit)

	start, src, err := shift.ResolveShiftStart(in.Tracker, slot, in.Boundaries, now)
	if err != nil {
		return rep, fmt.Errorf("resolve shift start: %w", err)
	}
	if src == shift.SourceNone {
		start, src = rules.DayStart(now), shift.SourceDayStart
	}
	rep.ShiftFrom, rep.Source = start, src

	if rep.Today, err = rules.DayDurations(tl, slot, now); err != nil {
		return rep, err
	}
	if rep.Shift, err = rules.ShiftDurations(tl, slot, start, now); err != nil {
		return rep, err
	}
	if rep.Block, err = rules.EvaluateBlock(tl, slot, now.Add(-blockLookback), now); err != nil {
		return rep, err
	}
	rep.BlockRemaining = rules.RemainingToBlockLimit(rep.Block.DrivingSinceBreak)
	rep.BlockWarning = rules.BlockWarningReached(rep.Block.DrivingSinceBreak)
	rep.MinimumRest = rules.MinimumRequiredRest(rep.Block.RestSoFar, in.SplitSecondPart || rep.Block.SecondPartPending)

	if rep.ExtendedDays, err = rules.ExtendedDays(tl, slot, now); err != nil {
		return rep, err
	}
	rep.ExtendedAvailable = rules.ExtendedAvailable(rep.ExtendedDays)
	rep.ExtendedUnavailable = !rep.ExtendedAvailable
	rep.RemainingDriving = rules.RemainingDailyDriving(rep.Shift.Driving, rep.BlockRemaining, rep.ExtendedAvailable)

	blocks, err := rules.Segment(tl.Between(now.Add(-rules.WeeklyRestStandardMin), end), slot)
	if err != nil {
		return rep, err
	}
	if n := len(blocks); n > 0 && blocks[n-1].Kind == model.ActivityRest && blocks[n-1].End.Equal(end) {
		rep.CurrentRest = blocks[n-1].Duration()
	}
	rep.CurrentRestType = rules.ClassifyWeeklyRest(rep.CurrentRest)

	// A rest in progress closes the shift; it is not an in-shift rest.
	shiftEnd := end.Add(-rep.CurrentRest)
	if shiftEnd.Before(start) {
		shiftEnd = start
	}
	if rep.RequiredDailyRest, err = rules.RequiredDailyRest(tl, slot, in.Crew, start, shiftEnd); err != nil {
		return rep, err
	}

	if rep.WeekDriving, err = rules.WeekDriving(tl, slot, now); err != nil {
		return rep, err
	}
	if rep.TwoWeekDriving, err = rules.TwoWeekDriving(tl, slot, now); err != nil {
		return rep, err
	}
	rep.WeekExceeded = rules.WeeklyDrivingExceeded(rep.WeekDriving)
	rep.TwoWeekExceeded = rules.TwoWeekDrivingExceeded(rep.TwoWeekDriving)
	rep.WeekRemaining = max(0, rules.WeeklyDrivingCap-rep.WeekDriving)
	rep.TwoWeekRemaining = max(0, rules.TwoWeekDrivingCap-rep.TwoWeekDriving)

	if rep.ReducedRests, err = rules.CountReducedDailyRests(tl, slot, in.Crew); err != nil {
		return rep, err
	}
	rep.ReducedRestsRemaining = max(0, rules.MaxReducedDailyRests-rep.ReducedRests)
	return rep, nil
}
