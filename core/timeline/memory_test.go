package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tacho/core/model"
)

func rec(ts time.Time, k model.ActivityKind) model.ActivityRecord {
	return model.ActivityRecord{Minute: ts, Driver1: k, Driver2: model.ActivityRest}
}

func TestMemoryStore_AppendKeepsOrderAndUpserts(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append("v1",
		rec(base.Add(2*time.Minute), model.ActivityDriving),
		rec(base, model.ActivityDriving),
		rec(base.Add(time.Minute+20*time.Second), model.ActivityRest),
	))
	require.NoError(t, s.Append("v1", rec(base, model.ActivityOtherWork)))

	tl, err := s.Range("v1", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, tl, 3)
	assert.Equal(t, model.ActivityOtherWork, tl[0].Driver1)
	assert.Equal(t, base.Add(time.Minute), tl[1].Minute)
	assert.Equal(t, base.Add(2*time.Minute), tl[2].Minute)

	tl, err = s.Range("v1", base.Add(time.Minute), base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, tl, 1)

	tl, err = s.Range("nope", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, tl)
}

func TestMemoryStore_Boundaries(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendBoundary("v2", model.ManualBoundarySegment{Activity: model.BoundaryEndCountry, At: base.Add(10 * time.Hour)}))
	require.NoError(t, s.AppendBoundary("v2", model.ManualBoundarySegment{Activity: model.BoundaryStartCountry, At: base}))

	segs, err := s.Boundaries("v2", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, model.BoundaryStartCountry, segs[0].Activity)

	segs, err = s.Boundaries("v2", base.Add(time.Hour), base.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, segs)

	require.NoError(t, s.Append("v1", rec(base, model.ActivityDriving)))
	ids, err := s.Vehicles()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids)
}
