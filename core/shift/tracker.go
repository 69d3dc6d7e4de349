package shift

import (
	"sync"
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// InputKind is the last country entry made for a slot.
type InputKind int

const (
	InputNone InputKind = iota
	InputStart
	InputEnd
)

func (k InputKind) String() string {
	switch k {
	case InputStart:
		return "start"
	case InputEnd:
		return "end"
	default:
		return "none"
	}
}

// State is the shift bookkeeping of one driver slot.
type State struct {
	LastInput   InputKind
	FirstStart  time.Time
	SecondStart time.Time
}

// Tracker records start and end country entries for both slots of one
// vehicle. It is safe for concurrent use. Callers own one Tracker per
// simulated vehicle.
type Tracker struct {
	mu    sync.Mutex
	slots [2]State
}

// NewTracker returns a Tracker with both slots idle.
func NewTracker() *Tracker { return &Tracker{} }

func index(slot model.Slot) (int, error) {
	if err := slot.Validate(); err != nil {
		return 0, err
	}
	return int(slot) - 1, nil
}

// OnStartCountry opens a shift. A second start without an intervening end
// only records the bookkeeping timestamp and keeps the original shift start;
// the returned flag is then false to signal the entry must not be logged.
func (t *Tracker) OnStartCountry(slot model.Slot, at time.Time) (logToHistory bool, err error) {
	i, err := index(slot)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	st := &t.slots[i]
	if st.LastInput == InputStart {
		st.SecondStart = at
		return false, nil
	}
	st.LastInput = InputStart
	st.FirstStart = at
	st.SecondStart = time.Time{}
	return true, nil
}

// OnEndCountry closes the shift. End entries are always logged.
func (t *Tracker) OnEndCountry(slot model.Slot, at time.Time) (logToHistory bool, err error) {
	i, err := index(slot)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[i] = State{LastInput: InputEnd}
	return true, nil
}

// Reset clears the given slots, or both when none are given.
func (t *Tracker) Reset(slots ...model.Slot) error {
	if len(slots) == 0 {
		slots = []model.Slot{model.Driver1, model.Driver2}
	}
	idx := make([]int, 0, len(slots))
	for _, s := range slots {
		i, err := index(s)
		if err != nil {
			return err
		}
		idx = append(idx, i)
	}
	t.mu.Lock()
	for _, i := range idx {
		t.slots[i] = State{}
	}
	t.mu.Unlock()
	return nil
}

// ShiftStart returns the live shift start of the slot, if any.
func (t *Tracker) ShiftStart(slot model.Slot) (time.Time, bool, error) {
	st, err := t.State(slot)
	if err != nil {
		return time.Time{}, false, err
	}
	return st.FirstStart, !st.FirstStart.IsZero(), nil
}

// State returns a copy of the slot state.
func (t *Tracker) State(slot model.Slot) (State, error) {
	i, err := index(slot)
	if err != nil {
		return State{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slots[i], nil
}

// Restore puts back a state previously read with State.
func (t *Tracker) Restore(slot model.Slot, st State) error {
	i, err := index(slot)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.slots[i] = st
	t.mu.Unlock()
	return nil
}
