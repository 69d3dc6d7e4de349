package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

// Block is a maximal run of contiguous minutes with the same activity kind.
// End is exclusive.
type Block struct {
	Kind  model.ActivityKind `json:"kind"`
	Start time.Time          `json:"start"`
	End   time.Time          `json:"end"`
}

// Duration returns the length of the block.
func (b Block) Duration() time.Duration { return b.End.Sub(b.Start) }

// Segment collapses the slot's view of the timeline into blocks. A missing
// minute or a change of kind starts a new block.
func Segment(tl model.Timeline, slot model.Slot) ([]Block, error) {
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	return segment(tl, slot), nil
}

func segment(tl model.Timeline, slot model.Slot) []Block {
	var blocks []Block
	for _, r := range tl {
		k := r.Kind(slot)
		if n := len(blocks); n > 0 && blocks[n-1].Kind == k && blocks[n-1].End.Equal(r.Minute) {
			blocks[n-1].End = r.Minute.Add(model.MinuteUnit)
			continue
		}
		blocks = append(blocks, Block{Kind: k, Start: r.Minute, End: r.Minute.Add(model.MinuteUnit)})
	}
	return blocks
}

// HasInShiftRest reports whether [start, end) contains a continuous rest of
// at least three hours.
func HasInShiftRest(tl model.Timeline, slot model.Slot, start, end time.Time) (bool, error) {
	if err := slot.Validate(); err != nil {
		return false, err
	}
	return hasInShiftRest(tl.Between(start, end), slot), nil
}

func hasInShiftRest(window model.Timeline, slot model.Slot) bool {
	for _, b := range segment(window, slot) {
		if b.Kind == model.ActivityRest && b.Duration() >= InShiftRestThreshold {
			return true
		}
	}
	return false
}

func hasActivity(window model.Timeline, slot model.Slot) bool {
	for _, r := range window {
		if r.Kind(slot).IsActivity() {
			return true
		}
	}
	return false
}
