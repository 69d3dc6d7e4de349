package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/tacho/core/metrics"
	"github.com/kilianp07/tacho/core/shift"
	"github.com/kilianp07/tacho/infra/logger"
	"github.com/kilianp07/tacho/internal/eventbus"
)

// StartShiftCollector subscribes to the bus and records shift events on sinks
// that support them. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has exited.
func StartShiftCollector(ctx context.Context, bus *eventbus.Bus[shift.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.ShiftEventRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("shift-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordShiftEvent(ev); err != nil {
					log.Warnf("record shift event %s: %v", ev.ID, err)
				}
			}
		}
	}()
	return done
}
