package shift

import (
	"sort"
	"sync"
)

// Registry hands out one Tracker per vehicle.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: map[string]*Tracker{}}
}

// Get returns the vehicle's tracker, creating it on first use.
func (r *Registry) Get(vehicleID string) *Tracker {
	r.mu.RLock()
	t, ok := r.trackers[vehicleID]
	r.mu.RUnlock()
	if ok {
		return t
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok = r.trackers[vehicleID]; ok {
		return t
	}
	t = NewTracker()
	r.trackers[vehicleID] = t
	return t
}

// Lookup returns the tracker without creating one.
func (r *Registry) Lookup(vehicleID string) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackers[vehicleID]
	return t, ok
}

// Vehicles lists vehicles with a tracker, sorted.
func (r *Registry) Vehicles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.trackers))
	for id := range r.trackers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResetAll clears every slot of every tracker, as an ignition off would.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.trackers {
		_ = t.Reset()
	}
}
