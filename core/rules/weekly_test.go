package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/tacho/core/model"
)

func TestClassifyWeeklyRest(t *testing.T) {
	assert.Equal(t, model.WeeklyRestStandard, ClassifyWeeklyRest(45*time.Hour))
	assert.Equal(t, model.WeeklyRestReduced, ClassifyWeeklyRest(45*time.Hour-time.Second))
	assert.Equal(t, model.WeeklyRestReduced, ClassifyWeeklyRest(hm(44, 59)))
	assert.Equal(t, model.WeeklyRestReduced, ClassifyWeeklyRest(24*time.Hour))
	assert.Equal(t, model.WeeklyRestShort, ClassifyWeeklyRest(24*time.Hour-time.Second))
	assert.Equal(t, model.WeeklyRestShort, ClassifyWeeklyRest(0))
}

func TestDrivingCapsAreStrict(t *testing.T) {
	assert.False(t, WeeklyDrivingExceeded(56*time.Hour))
	assert.True(t, WeeklyDrivingExceeded(56*time.Hour+time.Minute))
	assert.False(t, TwoWeekDrivingExceeded(90*time.Hour))
	assert.True(t, TwoWeekDrivingExceeded(90*time.Hour+time.Minute))
}
