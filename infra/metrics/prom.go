package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tacho/core/metrics"
	"github.com/kilianp07/tacho/core/shift"
)

// PromSink exposes compliance reports as Prometheus metrics.
type PromSink struct {
	remaining      *prometheus.GaugeVec
	blockRemaining *prometheus.GaugeVec
	weekDriving    *prometheus.GaugeVec
	twoWeekDriving *prometheus.GaugeVec
	reducedRests   *prometheus.GaugeVec
	exceeded       *prometheus.CounterVec
	shiftEvents    *prometheus.CounterVec
	ingested       *prometheus.CounterVec
}

// NewPromSink registers compliance metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"vehicle_id", "slot"}
	s := &PromSink{
		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tacho_remaining_driving_seconds",
			Help: "Driving time left in the current shift",
		}, labels),
		blockRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tacho_block_remaining_seconds",
			Help: "Driving time left before a break is due",
		}, labels),
		weekDriving: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tacho_week_driving_seconds",
			Help: "Driving time in the current calendar week",
		}, labels),
		twoWeekDriving: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tacho_two_week_driving_seconds",
			Help: "Driving time in the current and preceding calendar weeks",
		}, labels),
		reducedRests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tacho_reduced_daily_rests",
			Help: "Reduced daily rests taken in the floating week",
		}, labels),
		exceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacho_limit_exceeded_total",
			Help: "Evaluations that found a limit exceeded",
		}, []string{"vehicle_id", "slot", "limit"}),
		shiftEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacho_shift_events_total",
			Help: "Country entries applied to shift trackers",
		}, []string{"vehicle_id", "slot", "activity", "logged"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacho_ingested_minutes_total",
			Help: "Activity minutes stored per vehicle",
		}, []string{"vehicle_id"}),
	}
	var err error
	if s.remaining, err = register(reg, s.remaining); err != nil {
		return nil, err
	}
	if s.blockRemaining, err = register(reg, s.blockRemaining); err != nil {
		return nil, err
	}
	if s.weekDriving, err = register(reg, s.weekDriving); err != nil {
		return nil, err
	}
	if s.twoWeekDriving, err = register(reg, s.twoWeekDriving); err != nil {
		return nil, err
	}
	if s.reducedRests, err = register(reg, s.reducedRests); err != nil {
		return nil, err
	}
	if s.exceeded, err = register(reg, s.exceeded); err != nil {
		return nil, err
	}
	if s.shiftEvents, err = register(reg, s.shiftEvents); err != nil {
		return nil, err
	}
	if s.ingested, err = register(reg, s.ingested); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCompliance updates the gauges for the report's vehicle and slot.
func (s *PromSink) RecordCompliance(ev coremetrics.ComplianceEvent) error {
	r := ev.Report
	slot := strconv.Itoa(int(r.Slot))
	s.remaining.WithLabelValues(r.VehicleID, slot).Set(r.RemainingDriving.Seconds())
	s.blockRemaining.WithLabelValues(r.VehicleID, slot).Set(r.BlockRemaining.Seconds())
	s.weekDriving.WithLabelValues(r.VehicleID, slot).Set(r.WeekDriving.Seconds())
	s.twoWeekDriving.WithLabelValues(r.VehicleID, slot).Set(r.TwoWeekDriving.Seconds())
	s.reducedRests.WithLabelValues(r.VehicleID, slot).Set(float64(r.ReducedRests))
	if r.WeekExceeded {
		s.exceeded.WithLabelValues(r.VehicleID, slot, "week").Inc()
	}
	if r.TwoWeekExceeded {
		s.exceeded.WithLabelValues(r.VehicleID, slot, "two_week").Inc()
	}
	if r.RemainingDriving == 0 && r.Shift.Driving > 0 {
		s.exceeded.WithLabelValues(r.VehicleID, slot, "daily").Inc()
	}
	return nil
}

// RecordShiftEvent counts a country entry.
func (s *PromSink) RecordShiftEvent(ev shift.Event) error {
	s.shiftEvents.WithLabelValues(ev.VehicleID, strconv.Itoa(int(ev.Slot)), ev.Activity.String(), strconv.FormatBool(ev.Logged)).Inc()
	return nil
}

// RecordIngest adds stored activity minutes.
func (s *PromSink) RecordIngest(vehicleID string, minutes int) error {
	s.ingested.WithLabelValues(vehicleID).Add(float64(minutes))
	return nil
}
