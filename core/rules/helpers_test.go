package rules

import (
	"time"

	"github.com/kilianp07/tacho/core/model"
)

var (
	drv   = model.ActivityDriving
	rst   = model.ActivityRest
	wrk   = model.ActivityOtherWork
	avl   = model.ActivityAvailability
	none  = model.ActivityNone
	slot1 = model.Driver1
	slot2 = model.Driver2
)

type span struct {
	d1, d2 model.ActivityKind
	dur    time.Duration
	gap    bool
}

func run(k model.ActivityKind, d time.Duration) span { return span{d1: k, dur: d} }

func pair(k1, k2 model.ActivityKind, d time.Duration) span { return span{d1: k1, d2: k2, dur: d} }

func gap(d time.Duration) span { return span{gap: true, dur: d} }

// build expands runs into one record per minute starting at start.
func build(start time.Time, spans ...span) model.Timeline {
	var tl model.Timeline
	at := start
	for _, s := range spans {
		n := int(s.dur / time.Minute)
		for i := 0; i < n; i++ {
			if !s.gap {
				tl = append(tl, model.ActivityRecord{Minute: at, Driver1: s.d1, Driver2: s.d2})
			}
			at = at.Add(time.Minute)
		}
	}
	return tl
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func hm(h, m int) time.Duration { return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute }
