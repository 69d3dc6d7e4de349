package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityKind(t *testing.T) {
	cases := map[string]ActivityKind{
		"driving":      ActivityDriving,
		"REST":         ActivityRest,
		"otherWork":    ActivityOtherWork,
		"work":         ActivityOtherWork,
		"availability": ActivityAvailability,
		"":             ActivityNone,
		"none":         ActivityNone,
	}
	for in, want := range cases {
		got, err := ParseActivityKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseActivityKind("sleeping")
	assert.Error(t, err)
}

func TestActivityRecordJSON(t *testing.T) {
	var r ActivityRecord
	err := json.Unmarshal([]byte(`{"minute":"2024-03-05T08:00:00Z","driver1":"driving","driver2":"availability"}`), &r)
	require.NoError(t, err)
	assert.Equal(t, ActivityDriving, r.Kind(Driver1))
	assert.Equal(t, ActivityAvailability, r.Kind(Driver2))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"minute":"2024-03-05T08:00:00Z","driver1":"driving","driver2":"availability"}`, string(out))
}

func TestSlotValidate(t *testing.T) {
	assert.NoError(t, Driver1.Validate())
	assert.NoError(t, Driver2.Validate())
	assert.ErrorIs(t, Slot(0).Validate(), ErrInvalidSlot)
	assert.ErrorIs(t, Slot(3).Validate(), ErrInvalidSlot)
}

func TestTimelineBetween(t *testing.T) {
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	var tl Timeline
	for i := 0; i < 10; i++ {
		tl = append(tl, ActivityRecord{Minute: base.Add(time.Duration(i) * time.Minute)})
	}
	got := tl.Between(base.Add(2*time.Minute), base.Add(5*time.Minute))
	require.Len(t, got, 3)
	assert.Equal(t, base.Add(2*time.Minute), got[0].Minute)
	assert.Empty(t, tl.Between(base.Add(5*time.Minute), base.Add(5*time.Minute)))
	assert.Empty(t, tl.Between(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.Len(t, tl.Between(base.Add(-time.Hour), base.Add(time.Hour)), 10)
}

func TestDurationsAdd(t *testing.T) {
	var d Durations
	for _, k := range []ActivityKind{ActivityDriving, ActivityDriving, ActivityRest, ActivityNone, ActivityOtherWork, ActivityAvailability} {
		d.Add(k)
	}
	assert.Equal(t, 2*time.Minute, d.Driving)
	assert.Equal(t, 5*time.Minute, d.Total())
}

func TestBoundaryKindText(t *testing.T) {
	var s ManualBoundarySegment
	require.NoError(t, json.Unmarshal([]byte(`{"activity":"start_country","at":"2024-03-05T06:00:00Z"}`), &s))
	assert.Equal(t, BoundaryStartCountry, s.Activity)
	_, err := ParseBoundaryKind("LUNCH")
	assert.Error(t, err)
}

func TestWeeklyRestTypeText(t *testing.T) {
	for _, w := range []WeeklyRestType{WeeklyRestShort, WeeklyRestReduced, WeeklyRestStandard} {
		b, err := w.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", w, err)
		}
		var got WeeklyRestType
		if err := got.UnmarshalText(b); err != nil || got != w {
			t.Fatalf("round trip %s: got %v err %v", b, got, err)
		}
	}
	var w WeeklyRestType
	if err := w.UnmarshalText([]byte("long")); err == nil {
		t.Fatalf("expected error")
	}
}
