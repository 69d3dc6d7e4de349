package scenarios

import (
	"fmt"
	"time"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
)

// Check evaluates one slot at one instant. Only the fields set in Expect are compared.
type Check struct {
	At     time.Time  `yaml:"at"`
	Slot   model.Slot `yaml:"slot,omitempty"`
	Crew   bool       `yaml:"crew,omitempty"`
	Expect Expect     `yaml:"expect"`
}

type Expect struct {
	TodayDriving      *time.Duration `yaml:"today_driving"`
	ShiftDriving      *time.Duration `yaml:"shift_driving"`
	DrivingSinceBreak *time.Duration `yaml:"driving_since_break"`
	BlockRemaining    *time.Duration `yaml:"block_remaining"`
	BlockWarning      *bool          `yaml:"block_warning"`
	MinimumRest       *time.Duration `yaml:"minimum_rest"`
	RemainingDriving  *time.Duration `yaml:"remaining_driving"`
	RequiredDailyRest *time.Duration `yaml:"required_daily_rest"`
	ExtendedDays      *int           `yaml:"extended_days"`
	ExtendedAvailable *bool          `yaml:"extended_available"`
	WeekDriving       *time.Duration `yaml:"week_driving"`
	WeekExceeded      *bool          `yaml:"week_exceeded"`
	TwoWeekDriving    *time.Duration `yaml:"two_week_driving"`
	TwoWeekExceeded   *bool          `yaml:"two_week_exceeded"`
	ReducedRests      *int           `yaml:"reduced_rests"`
	CurrentRest       *time.Duration `yaml:"current_rest"`
	CurrentRestType   *string        `yaml:"current_rest_type"`
	ShiftSource       *string        `yaml:"shift_source"`
}

// Run evaluates every check and returns one message per mismatch.
func Run(sc *Scenario) ([]string, error) {
	tl, err := sc.Timeline()
	if err != nil {
		return nil, err
	}
	var problems []string
	for i, c := range sc.Checks {
		tr, err := sc.Tracker()
		if err != nil {
			return nil, err
		}
		slot := c.Slot
		if slot == 0 {
			slot = model.Driver1
		}
		rep, err := compliance.Evaluate(compliance.Input{
			VehicleID:  sc.Vehicle,
			Timeline:   tl,
			Boundaries: sc.Boundaries,
			Tracker:    tr,
			Slot:       slot,
			Now:        c.At,
			Crew:       c.Crew,
		})
		if err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
		for _, p := range c.Expect.Compare(rep) {
			problems = append(problems, fmt.Sprintf("check %d at %s: %s", i, c.At.Format(time.RFC3339), p))
		}
	}
	return problems, nil
}

// Compare lists the expected fields that differ from the report.
func (e Expect) Compare(rep compliance.Report) []string {
	var out []string
	dur := func(name string, want *time.Duration, got time.Duration) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %s, got %s", name, *want, got))
		}
	}
	boolean := func(name string, want *bool, got bool) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %t, got %t", name, *want, got))
		}
	}
	integer := func(name string, want *int, got int) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %d, got %d", name, *want, got))
		}
	}
	str := func(name string, want *string, got string) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %s, got %s", name, *want, got))
		}
	}
	dur("today_driving", e.TodayDriving, rep.Today.Driving)
	dur("shift_driving", e.ShiftDriving, rep.Shift.Driving)
	dur("driving_since_break", e.DrivingSinceBreak, rep.Block.DrivingSinceBreak)
	dur("block_remaining", e.BlockRemaining, rep.BlockRemaining)
	boolean("block_warning", e.BlockWarning, rep.BlockWarning)
	dur("minimum_rest", e.MinimumRest, rep.MinimumRest)
	dur("remaining_driving", e.RemainingDriving, rep.RemainingDriving)
	dur("required_daily_rest", e.RequiredDailyRest, rep.RequiredDailyRest)
	integer("extended_days", e.ExtendedDays, rep.ExtendedDays)
	boolean("extended_available", e.ExtendedAvailable, rep.ExtendedAvailable)
	dur("week_driving", e.WeekDriving, rep.WeekDriving)
	boolean("week_exceeded", e.WeekExceeded, rep.WeekExceeded)
	dur("two_week_driving", e.TwoWeekDriving, rep.TwoWeekDriving)
	boolean("two_week_exceeded", e.TwoWeekExceeded, rep.TwoWeekExceeded)
	integer("reduced_rests", e.ReducedRests, rep.ReducedRests)
	dur("current_rest", e.CurrentRest, rep.CurrentRest)
	str("current_rest_type", e.CurrentRestType, rep.CurrentRestType.String())
	str("shift_source", e.ShiftSource, string(rep.Source))
	return out
}
