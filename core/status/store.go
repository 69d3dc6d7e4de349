// Package status keeps the latest compliance report of every vehicle.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
)

// State summarises a report for listings.
type State string

const (
	StateOK       State = "ok"
	StateResting  State = "resting"
	StateWarning  State = "warning"
	StateBreakDue State = "break_due"
	StateExceeded State = "exceeded"
)

var rank = map[State]int{
	StateResting:  0,
	StateOK:       1,
	StateWarning:  2,
	StateBreakDue: 3,
	StateExceeded: 4,
}

// Classify maps a report to its State.
func Classify(rep compliance.Report) State {
	switch {
	case rep.WeekExceeded || rep.TwoWeekExceeded:
		return StateExceeded
	case rep.BlockRemaining == 0:
		return StateBreakDue
	case rep.BlockWarning || rep.ExtendedUnavailable && rep.RemainingDriving == 0:
		return StateWarning
	case rep.CurrentRest > 0:
		return StateResting
	default:
		return StateOK
	}
}

// Status captures the latest known compliance of a vehicle.
type Status struct {
	VehicleID string              `json:"vehicle_id"`
	State     State               `json:"state"`
	UpdatedAt time.Time           `json:"updated_at"`
	Drivers   []compliance.Report `json:"drivers"`
}

type Filter struct {
	State State
	// Crew limits the listing to vehicles evaluated in crew mode.
	Crew *bool
}

type Store interface {
	RecordReport(rep compliance.Report)
	Get(vehicleID string) (Status, bool)
	List(Filter) []Status
	Delete(vehicleID string)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

// RecordReport replaces the report for the report's slot and recomputes the
// vehicle state as the worst state across its drivers.
func (s *MemoryStore) RecordReport(rep compliance.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data[rep.VehicleID]
	st.VehicleID = rep.VehicleID
	replaced := false
	for i, r := range st.Drivers {
		if r.Slot == rep.Slot {
			st.Drivers[i] = rep
			replaced = true
		}
	}
	if !replaced {
		st.Drivers = append(st.Drivers, rep)
		sort.Slice(st.Drivers, func(i, j int) bool { return st.Drivers[i].Slot < st.Drivers[j].Slot })
	}
	st.State = StateResting
	for _, r := range st.Drivers {
		if c := Classify(r); rank[c] > rank[st.State] {
			st.State = c
		}
	}
	if rep.At.After(st.UpdatedAt) {
		st.UpdatedAt = rep.At
	}
	s.data[rep.VehicleID] = st
}

func (s *MemoryStore) Get(vehicleID string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[vehicleID]
	if ok {
		st.Drivers = append([]compliance.Report(nil), st.Drivers...)
	}
	return st, ok
}

func (s *MemoryStore) Delete(vehicleID string) {
	s.mu.Lock()
	delete(s.data, vehicleID)
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.State != "" && st.State != f.State {
			continue
		}
		if f.Crew != nil && crew(st) != *f.Crew {
			continue
		}
		st.Drivers = append([]compliance.Report(nil), st.Drivers...)
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleID < res[j].VehicleID })
	return res
}

func crew(st Status) bool {
	for _, r := range st.Drivers {
		if r.Crew {
			return true
		}
	}
	return false
}

// Driver returns the report for the slot, if recorded.
func (st Status) Driver(slot model.Slot) (compliance.Report, bool) {
	for _, r := range st.Drivers {
		if r.Slot == slot {
			return r, true
		}
	}
	return compliance.Report{}, false
}
