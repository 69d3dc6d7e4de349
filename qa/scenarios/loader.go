// Package scenarios reads run-length timeline files and checks compliance
// expectations against them.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tacho/core/model"
	"github.com/kilianp07/tacho/core/shift"
)

// RunDef is a stretch of identical minutes, or a gap when Gap is set.
type RunDef struct {
	Driver1  model.ActivityKind `yaml:"driver1"`
	Driver2  model.ActivityKind `yaml:"driver2"`
	Duration time.Duration      `yaml:"duration"`
	Gap      time.Duration      `yaml:"gap,omitempty"`
}

// ShiftDef is a country entry fed to the live tracker.
type ShiftDef struct {
	Slot     model.Slot         `yaml:"slot"`
	Activity model.BoundaryKind `yaml:"activity"`
	At       time.Time          `yaml:"at"`
}

type Scenario struct {
	Name        string                        `yaml:"name"`
	Description string                        `yaml:"description,omitempty"`
	Vehicle     string                        `yaml:"vehicle,omitempty"`
	Start       time.Time                     `yaml:"start"`
	Runs        []RunDef                      `yaml:"runs"`
	Boundaries  []model.ManualBoundarySegment `yaml:"boundaries,omitempty"`
	Shift       []ShiftDef                    `yaml:"shift,omitempty"`
	Checks      []Check                       `yaml:"checks,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Vehicle == "" {
		sc.Vehicle = "vehicle"
	}
	return &sc, nil
}

// Timeline expands the runs into one record per minute starting at Start.
func (sc *Scenario) Timeline() (model.Timeline, error) {
	if sc.Start.IsZero() {
		return nil, fmt.Errorf("scenario %q: start is required", sc.Name)
	}
	t := sc.Start.UTC()
	if !t.Equal(t.Truncate(model.MinuteUnit)) {
		return nil, fmt.Errorf("scenario %q: start %s is not minute aligned", sc.Name, sc.Start)
	}
	var tl model.Timeline
	for i, r := range sc.Runs {
		switch {
		case r.Gap != 0 && r.Duration != 0:
			return nil, fmt.Errorf("scenario %q: run %d sets both duration and gap", sc.Name, i)
		case r.Gap != 0:
			if err := minutes(r.Gap); err != nil {
				return nil, fmt.Errorf("scenario %q: run %d gap: %w", sc.Name, i, err)
			}
			t = t.Add(r.Gap)
			continue
		}
		if err := minutes(r.Duration); err != nil {
			return nil, fmt.Errorf("scenario %q: run %d duration: %w", sc.Name, i, err)
		}
		for end := t.Add(r.Duration); t.Before(end); t = t.Add(model.MinuteUnit) {
			tl = append(tl, model.ActivityRecord{Minute: t, Driver1: r.Driver1, Driver2: r.Driver2})
		}
	}
	return tl, nil
}

// Tracker replays the shift entries into a new tracker.
func (sc *Scenario) Tracker() (*shift.Tracker, error) {
	tr := shift.NewTracker()
	for i, s := range sc.Shift {
		var err error
		switch s.Activity {
		case model.BoundaryStartCountry:
			_, err = tr.OnStartCountry(s.Slot, s.At)
		case model.BoundaryEndCountry:
			_, err = tr.OnEndCountry(s.Slot, s.At)
		default:
			err = fmt.Errorf("unsupported activity %s", s.Activity)
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %q: shift entry %d: %w", sc.Name, i, err)
		}
	}
	return tr, nil
}

func minutes(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	if d%model.MinuteUnit != 0 {
		return fmt.Errorf("must be whole minutes, got %s", d)
	}
	return nil
}
