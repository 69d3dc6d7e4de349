package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingToBlockLimit(t *testing.T) {
	assert.Equal(t, time.Second, RemainingToBlockLimit(4*time.Hour+29*time.Minute+59*time.Second))
	assert.Equal(t, int64(1000), RemainingToBlockLimit(4*time.Hour+29*time.Minute+59*time.Second).Milliseconds())
	assert.Zero(t, RemainingToBlockLimit(BlockLimit))
	assert.Zero(t, RemainingToBlockLimit(6*time.Hour))
	assert.Equal(t, BlockLimit, RemainingToBlockLimit(0))
}

func TestBlockWarningReached(t *testing.T) {
	assert.False(t, BlockWarningReached(hm(4, 14)))
	assert.True(t, BlockWarningReached(hm(4, 15)))
}

func TestMinimumRequiredRest(t *testing.T) {
	assert.Equal(t, 15*time.Minute, MinimumRequiredRest(0, false))
	assert.Equal(t, 5*time.Minute, MinimumRequiredRest(10*time.Minute, false))
	assert.Zero(t, MinimumRequiredRest(20*time.Minute, false))
	assert.Equal(t, 30*time.Minute, MinimumRequiredRest(0, true))
	assert.Equal(t, 10*time.Minute, MinimumRequiredRest(20*time.Minute, true))
	assert.Zero(t, MinimumRequiredRest(time.Hour, true))
}

func TestEvaluateBlock(t *testing.T) {
	start := utc("2024-03-05T06:00:00Z")
	tests := []struct {
		name  string
		spans []span
		want  BlockState
	}{
		{
			name:  "continuous driving",
			spans: []span{run(drv, hm(3, 0)), run(wrk, 20*time.Minute), run(drv, hm(1, 0))},
			want:  BlockState{DrivingSinceBreak: hm(4, 0)},
		},
		{
			name:  "full break resets",
			spans: []span{run(drv, hm(2, 0)), run(rst, 45*time.Minute), run(drv, hm(1, 0))},
			want:  BlockState{DrivingSinceBreak: hm(1, 0)},
		},
		{
			name:  "short rest does not count",
			spans: []span{run(drv, hm(2, 0)), run(rst, 10*time.Minute), run(drv, hm(1, 0))},
			want:  BlockState{DrivingSinceBreak: hm(3, 0)},
		},
		{
			name:  "split break resets",
			spans: []span{run(drv, hm(2, 0)), run(rst, 15*time.Minute), run(drv, hm(1, 0)), run(rst, 30*time.Minute), run(drv, 30*time.Minute)},
			want:  BlockState{DrivingSinceBreak: 30 * time.Minute},
		},
		{
			name:  "first part taken",
			spans: []span{run(drv, hm(2, 0)), run(rst, 20*time.Minute), run(drv, hm(1, 0))},
			want:  BlockState{DrivingSinceBreak: hm(3, 0), SecondPartPending: true},
		},
		{
			name:  "30 minutes without first part",
			spans: []span{run(drv, hm(2, 0)), run(rst, 30*time.Minute), run(drv, hm(1, 0))},
			want:  BlockState{DrivingSinceBreak: hm(3, 0), SecondPartPending: true},
		},
		{
			name:  "rest in progress",
			spans: []span{run(drv, hm(1, 0)), run(rst, 20*time.Minute)},
			want:  BlockState{DrivingSinceBreak: hm(1, 0), RestSoFar: 20 * time.Minute},
		},
		{
			name:  "gap splits rest runs",
			spans: []span{run(drv, hm(1, 0)), run(rst, 25*time.Minute), gap(5 * time.Minute), run(rst, 25*time.Minute), run(drv, 10*time.Minute)},
			want:  BlockState{DrivingSinceBreak: hm(1, 10), SecondPartPending: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := build(start, tt.spans...)
			now := tl[len(tl)-1].Minute
			got, err := EvaluateBlock(tl, slot1, start, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateBlock_TrailingGapEndsRun(t *testing.T) {
	start := utc("2024-03-05T06:00:00Z")
	tl := build(start, run(drv, hm(1, 0)), run(rst, 20*time.Minute))
	got, err := EvaluateBlock(tl, slot1, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, got.RestSoFar)
	assert.True(t, got.SecondPartPending)
}
