package timeline

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// MemoryStore keeps timelines in memory for tests or lightweight usage.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[string]model.Timeline
	boundaries map[string][]model.ManualBoundarySegment
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    map[string]model.Timeline{},
		boundaries: map[string][]model.ManualBoundarySegment{},
	}
}

func (s *MemoryStore) Append(vehicleID string, recs ...model.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tl := s.records[vehicleID]
	for _, r := range recs {
		r.Minute = Minute(r.Minute)
		i := sort.Search(len(tl), func(i int) bool { return !tl[i].Minute.Before(r.Minute) })
		switch {
		case i < len(tl) && tl[i].Minute.Equal(r.Minute):
			tl[i] = r
		case i == len(tl):
			tl = append(tl, r)
		default:
			tl = append(tl, model.ActivityRecord{})
			copy(tl[i+1:], tl[i:])
			tl[i] = r
		}
	}
	s.records[vehicleID] = tl
	return nil
}

func (s *MemoryStore) Range(vehicleID string, start, end time.Time) (model.Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub := s.records[vehicleID].Between(start, end)
	out := make(model.Timeline, len(sub))
	copy(out, sub)
	return out, nil
}

func (s *MemoryStore) AppendBoundary(vehicleID string, seg model.ManualBoundarySegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := append(s.boundaries[vehicleID], seg)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].At.Before(segs[j].At) })
	s.boundaries[vehicleID] = segs
	return nil
}

func (s *MemoryStore) Boundaries(vehicleID string, start, end time.Time) ([]model.ManualBoundarySegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.ManualBoundarySegment
	for _, b := range s.boundaries[vehicleID] {
		if b.At.Before(start) || !b.At.Before(end) {
			continue
		}
		res = append(res, b)
	}
	return res, nil
}

func (s *MemoryStore) Vehicles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for id := range s.records {
		seen[id] = struct{}{}
	}
	for id := range s.boundaries {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
