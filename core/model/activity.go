package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MinuteUnit is the duration represented by a single timeline record.
const MinuteUnit = time.Minute

// ErrInvalidSlot is returned when a driver slot is neither 1 nor 2.
var ErrInvalidSlot = errors.New("invalid driver slot")

// ErrUnsupportedBoundary is returned when a boundary entry is neither a start
// nor an end country entry.
var ErrUnsupportedBoundary = errors.New("unsupported boundary activity")

// ActivityKind is the activity a driver performed during one recorded minute.
type ActivityKind int

const (
	ActivityNone ActivityKind = iota
	ActivityDriving
	ActivityRest
	ActivityOtherWork
	ActivityAvailability
)

// String returns the wire name of the activity kind.
func (k ActivityKind) String() string {
	switch k {
	case ActivityDriving:
		return "driving"
	case ActivityRest:
		return "rest"
	case ActivityOtherWork:
		return "otherWork"
	case ActivityAvailability:
		return "availability"
	default:
		return "none"
	}
}

// ParseActivityKind converts a wire name into an ActivityKind.
func ParseActivityKind(s string) (ActivityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ActivityNone, nil
	case "driving":
		return ActivityDriving, nil
	case "rest":
		return ActivityRest, nil
	case "otherwork", "work":
		return ActivityOtherWork, nil
	case "availability":
		return ActivityAvailability, nil
	default:
		return ActivityNone, fmt.Errorf("unknown activity kind %q", s)
	}
}

func (k ActivityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ActivityKind) UnmarshalText(b []byte) error {
	v, err := ParseActivityKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// IsActivity reports whether the kind is real, non-rest activity.
func (k ActivityKind) IsActivity() bool {
	return k == ActivityDriving || k == ActivityOtherWork || k == ActivityAvailability
}

// Slot selects one of the two driver card slots of the recorder.
type Slot int

const (
	Driver1 Slot = 1
	Driver2 Slot = 2
)

// Validate rejects anything other than slot 1 or 2.
func (s Slot) Validate() error {
	if s != Driver1 && s != Driver2 {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, int(s))
	}
	return nil
}

func (s Slot) String() string { return fmt.Sprintf("driver%d", int(s)) }

// ActivityRecord is one elapsed minute for both driver slots.
type ActivityRecord struct {
	Minute  time.Time    `json:"minute" yaml:"minute"`
	Driver1 ActivityKind `json:"driver1" yaml:"driver1"`
	Driver2 ActivityKind `json:"driver2" yaml:"driver2"`
}

// Kind returns the activity recorded for the given slot. The slot must have
// been validated by the caller.
func (r ActivityRecord) Kind(slot Slot) ActivityKind {
	if slot == Driver1 {
		return r.Driver1
	}
	return r.Driver2
}

// Timeline is an ordered sequence of minute records. Gaps are legal.
type Timeline []ActivityRecord

// Between returns the records whose minute lies in [start, end).
func (t Timeline) Between(start, end time.Time) Timeline {
	if !start.Before(end) {
		return nil
	}
	lo := sort.Search(len(t), func(i int) bool { return !t[i].Minute.Before(start) })
	hi := sort.Search(len(t), func(i int) bool { return !t[i].Minute.Before(end) })
	if lo >= hi {
		return nil
	}
	return t[lo:hi]
}

// BoundaryKind identifies an entry of the manual boundary log.
type BoundaryKind int

const (
	BoundaryOther BoundaryKind = iota
	BoundaryStartCountry
	BoundaryEndCountry
)

func (b BoundaryKind) String() string {
	switch b {
	case BoundaryStartCountry:
		return "START_COUNTRY"
	case BoundaryEndCountry:
		return "END_COUNTRY"
	default:
		return "OTHER"
	}
}

// ParseBoundaryKind accepts START_COUNTRY / END_COUNTRY in any case.
func ParseBoundaryKind(s string) (BoundaryKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "START_COUNTRY", "START":
		return BoundaryStartCountry, nil
	case "END_COUNTRY", "END":
		return BoundaryEndCountry, nil
	case "OTHER":
		return BoundaryOther, nil
	default:
		return BoundaryOther, fmt.Errorf("unknown boundary activity %q", s)
	}
}

func (b BoundaryKind) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BoundaryKind) UnmarshalText(p []byte) error {
	v, err := ParseBoundaryKind(string(p))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ManualBoundarySegment is an entry of the caller-owned manual entry log.
type ManualBoundarySegment struct {
	Activity BoundaryKind `json:"activity" yaml:"activity"`
	At       time.Time    `json:"at" yaml:"at"`
}
