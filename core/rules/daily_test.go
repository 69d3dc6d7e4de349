package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tacho/core/model"
)

func TestRequiredDailyRest(t *testing.T) {
	start := utc("2024-03-05T06:00:00Z")
	withBreak := build(start, run(drv, hm(4, 0)), run(rst, hm(3, 0)), run(drv, hm(4, 0)))
	shortBreak := build(start, run(drv, hm(4, 0)), run(rst, hm(2, 59)), run(drv, hm(4, 0)))
	end := start.Add(12 * time.Hour)

	got, err := RequiredDailyRest(withBreak, slot1, false, start, end)
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour, got)

	got, err = RequiredDailyRest(shortBreak, slot1, false, start, end)
	require.NoError(t, err)
	assert.Equal(t, 11*time.Hour, got)

	got, err = RequiredDailyRest(shortBreak, slot1, true, start, end)
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour, got)

	_, err = RequiredDailyRest(shortBreak, 0, true, start, end)
	assert.ErrorIs(t, err, model.ErrInvalidSlot)
}

func TestExtendedDays(t *testing.T) {
	tl := build(utc("2024-03-04T06:00:00Z"), run(drv, hm(9, 1)))                 // Monday
	tl = append(tl, build(utc("2024-03-05T06:00:00Z"), run(drv, hm(9, 0)))...)   // Tuesday
	tl = append(tl, build(utc("2024-03-07T06:00:00Z"), run(drv, hm(10, 0)))...)  // Thursday
	tl = append(tl, build(utc("2024-03-11T06:00:00Z"), run(drv, hm(10, 0)))...)  // next Monday

	n, err := ExtendedDays(tl, slot1, utc("2024-03-08T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, ExtendedAvailable(n))

	n, err = ExtendedDays(tl, slot1, utc("2024-03-05T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the whole calendar week counts")

	n, err = ExtendedDays(tl, slot1, utc("2024-03-12T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, ExtendedAvailable(n))
}

func TestRemainingDailyDriving(t *testing.T) {
	tests := []struct {
		name     string
		shift    time.Duration
		block    time.Duration
		extended bool
		want     time.Duration
	}{
		{"extended after 9h01", hm(9, 1), 0, true, 59 * time.Minute},
		{"no extension after 9h", hm(9, 0), hm(4, 30), false, 0},
		{"block limited", hm(2, 0), hm(1, 0), false, hm(1, 0)},
		{"daily limited", hm(8, 0), hm(3, 0), false, hm(1, 0)},
		{"extended ceiling", hm(8, 0), hm(3, 0), true, hm(2, 0)},
		{"over extended", hm(10, 30), 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingDailyDriving(tt.shift, tt.block, tt.extended))
		})
	}
}

func TestExtendedShiftScenario(t *testing.T) {
	// 9h01 of driving today with no earlier extended day this week.
	start := utc("2024-03-06T05:00:00Z")
	tl := build(start,
		run(drv, hm(4, 30)), run(rst, 45*time.Minute),
		run(drv, hm(4, 30)), run(rst, 45*time.Minute),
		run(drv, time.Minute),
	)
	now := tl[len(tl)-1].Minute

	shift, err := ShiftDurations(tl, slot1, start, now)
	require.NoError(t, err)
	require.Equal(t, hm(9, 1), shift.Driving)

	n, err := ExtendedDays(tl, slot1, now)
	require.NoError(t, err)
	require.True(t, ExtendedAvailable(n))

	block, err := EvaluateBlock(tl, slot1, start, now)
	require.NoError(t, err)
	got := RemainingDailyDriving(shift.Driving, RemainingToBlockLimit(block.DrivingSinceBreak), ExtendedAvailable(n))
	assert.Equal(t, 59*time.Minute, got)
}
