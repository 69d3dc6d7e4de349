package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tacho/api/vehicles"
	"github.com/kilianp07/tacho/app/plugins"
	"github.com/kilianp07/tacho/config"
	"github.com/kilianp07/tacho/core/compliance"
	coremetrics "github.com/kilianp07/tacho/core/metrics"
	"github.com/kilianp07/tacho/core/model"
	coremon "github.com/kilianp07/tacho/core/monitoring"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
	"github.com/kilianp07/tacho/core/shift"
	"github.com/kilianp07/tacho/core/status"
	"github.com/kilianp07/tacho/core/timeline"
	"github.com/kilianp07/tacho/infra/logger"
	"github.com/kilianp07/tacho/infra/metrics"
	"github.com/kilianp07/tacho/infra/mqtt"
	"github.com/kilianp07/tacho/internal/eventbus"
)

// Service wires the timeline store, shift trackers, metrics sinks, MQTT
// transport and HTTP API around the compliance evaluator.
type Service struct {
	Store    timeline.Store
	Trackers *shift.Registry
	Status   status.Store
	Sink     coremetrics.MetricsSink
	Bus      *eventbus.Bus[shift.Event]

	cfg       *config.Config
	publisher coremqtt.Publisher
	client    *mqtt.PahoClient
	log       logger.Logger
	now       func() time.Time
}

// Option customises a Service built by New.
type Option func(*Service)

// WithStore replaces the configured timeline store.
func WithStore(s timeline.Store) Option { return func(svc *Service) { svc.Store = s } }

// WithPublisher replaces the MQTT publisher.
func WithPublisher(p coremqtt.Publisher) Option { return func(svc *Service) { svc.publisher = p } }

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.Sink = s } }

// WithClock sets the time source used by the publish loop.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// New creates a Service from the configuration. MQTT is only connected when
// a broker is configured and no publisher was injected.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	svc := &Service{
		Trackers: shift.NewRegistry(),
		Status:   status.NewMemoryStore(),
		Bus:      eventbus.New[shift.Event](),
		cfg:      cfg,
		log:      logger.New("service"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.Store == nil {
		st, err := plugins.NewStore(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("timeline store: %w", err)
		}
		svc.Store = st
	}
	if svc.Sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.Sink = sink
	}
	if svc.publisher == nil && cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT, svc)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		svc.publisher = client
	}
	return svc, nil
}

// HandleActivity stores one recorder minute received from a vehicle.
func (s *Service) HandleActivity(vehicleID string, rec model.ActivityRecord) error {
	rec.Minute = timeline.Minute(rec.Minute)
	if err := s.Store.Append(vehicleID, rec); err != nil {
		return fmt.Errorf("append activity for %s: %w", vehicleID, err)
	}
	if r, ok := s.Sink.(coremetrics.IngestRecorder); ok {
		if err := r.RecordIngest(vehicleID, 1); err != nil {
			s.log.Warnf("record ingest: %v", err)
		}
	}
	return nil
}

// HandleBoundary applies a country entry received over MQTT.
func (s *Service) HandleBoundary(vehicleID string, msg coremqtt.BoundaryMessage) error {
	_, err := s.ApplyBoundary(vehicleID, msg)
	return err
}

// ApplyBoundary feeds a start or end country entry to the vehicle's tracker,
// appends it to the manual log when the tracker asks for it and publishes
// the resulting event on the bus. The tracker is rolled back when the log
// write fails.
func (s *Service) ApplyBoundary(vehicleID string, msg coremqtt.BoundaryMessage) (shift.Event, error) {
	if err := msg.Slot.Validate(); err != nil {
		return shift.Event{}, err
	}
	tr := s.Trackers.Get(vehicleID)
	prev, err := tr.State(msg.Slot)
	if err != nil {
		return shift.Event{}, err
	}
	var logged bool
	switch msg.Activity {
	case model.BoundaryStartCountry:
		logged, err = tr.OnStartCountry(msg.Slot, msg.At)
	case model.BoundaryEndCountry:
		logged, err = tr.OnEndCountry(msg.Slot, msg.At)
	default:
		return shift.Event{}, fmt.Errorf("%w: %s", model.ErrUnsupportedBoundary, msg.Activity)
	}
	if err != nil {
		return shift.Event{}, err
	}
	if logged {
		seg := model.ManualBoundarySegment{Activity: msg.Activity, At: msg.At}
		if err := s.Store.AppendBoundary(vehicleID, seg); err != nil {
			// keep live state and the manual log in step
			if rerr := tr.Restore(msg.Slot, prev); rerr != nil {
				s.log.Errorf("restore tracker for %s: %v", vehicleID, rerr)
			}
			return shift.Event{}, fmt.Errorf("append boundary for %s: %w", vehicleID, err)
		}
	}
	ev := shift.Event{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		Slot:      msg.Slot,
		Activity:  msg.Activity,
		At:        msg.At,
		Logged:    logged,
	}
	s.Bus.Publish(ev)
	s.log.Debugw("boundary applied", map[string]any{"vehicle_id": vehicleID, "slot": int(msg.Slot), "activity": msg.Activity.String(), "logged": logged})
	return ev, nil
}

// Reset clears live shift state for the given slots, or both when none are given.
func (s *Service) Reset(vehicleID string, slots ...model.Slot) error {
	for _, sl := range slots {
		if err := sl.Validate(); err != nil {
			return err
		}
	}
	tr, ok := s.Trackers.Lookup(vehicleID)
	if !ok {
		return nil
	}
	return tr.Reset(slots...)
}

// Evaluate reads the vehicle's timeline over the configured lookback and
// returns the compliance report for the slot at the given instant. The
// report is recorded in the status store and the metrics sinks unless an
// evaluation at a later instant is already stored.
func (s *Service) Evaluate(ctx context.Context, vehicleID string, slot model.Slot, at time.Time, crew bool) (compliance.Report, error) {
	if err := slot.Validate(); err != nil {
		return compliance.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return compliance.Report{}, err
	}
	at = at.UTC()
	end := timeline.Minute(at).Add(model.MinuteUnit)
	start := end.Add(-s.cfg.Engine.Lookback())
	tl, err := s.Store.Range(vehicleID, start, end)
	if err != nil {
		return compliance.Report{}, fmt.Errorf("read timeline for %s: %w", vehicleID, err)
	}
	if len(tl) == 0 {
		ids, err := s.Store.Vehicles()
		if err != nil {
			return compliance.Report{}, err
		}
		if !slices.Contains(ids, vehicleID) {
			return compliance.Report{}, fmt.Errorf("evaluate %s: %w", vehicleID, timeline.ErrUnknownVehicle)
		}
	}
	bounds, err := s.Store.Boundaries(vehicleID, start, end)
	if err != nil {
		return compliance.Report{}, fmt.Errorf("read boundaries for %s: %w", vehicleID, err)
	}
	tr, _ := s.Trackers.Lookup(vehicleID)
	rep, err := compliance.Evaluate(compliance.Input{
		VehicleID:  vehicleID,
		Timeline:   tl,
		Boundaries: bounds,
		Tracker:    tr,
		Slot:       slot,
		Now:        at,
		Crew:       crew || s.cfg.Engine.IsCrew(vehicleID),
	})
	if err != nil {
		return rep, err
	}
	if s.supersedes(rep) {
		s.Status.RecordReport(rep)
		if err := s.Sink.RecordCompliance(coremetrics.ComplianceEvent{Report: rep, Time: at}); err != nil {
			s.log.Warnf("record compliance for %s: %v", vehicleID, err)
		}
	}
	return rep, nil
}

// supersedes reports whether rep is at least as recent as the stored report
// of its slot. Historical queries do not touch status or metrics.
func (s *Service) supersedes(rep compliance.Report) bool {
	st, ok := s.Status.Get(rep.VehicleID)
	if !ok {
		return true
	}
	prev, ok := st.Driver(rep.Slot)
	return !ok || !rep.At.Before(prev.At)
}

// PublishAll evaluates both slots of every known vehicle and publishes the
// reports. Failures are logged and reported; the first one is returned.
func (s *Service) PublishAll(ctx context.Context) error {
	ids, err := s.Store.Vehicles()
	if err != nil {
		return fmt.Errorf("list vehicles: %w", err)
	}
	now := s.now()
	var first error
	for _, id := range ids {
		for _, slot := range []model.Slot{model.Driver1, model.Driver2} {
			if err := s.publishOne(ctx, id, slot, now); err != nil {
				s.log.Errorf("publish %s/%s: %v", id, slot, err)
				coremon.CaptureException(err, map[string]string{"vehicle_id": id, "module": "service"})
				if first == nil {
					first = err
				}
			}
		}
	}
	return first
}

func (s *Service) publishOne(ctx context.Context, id string, slot model.Slot, now time.Time) error {
	rep, err := s.Evaluate(ctx, id, slot, now, false)
	if err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	_, err = s.publisher.PublishReport(id, rep)
	return err
}

// Run starts the metrics collector, the Prometheus and API servers and the
// publish loop, and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	collected := metrics.StartShiftCollector(ctx, s.Bus, s.Sink)

	errc := make(chan error, 2)
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				errc <- fmt.Errorf("prom server: %w", err)
			}
		}()
	}
	if addr := s.cfg.HTTP.Addr; addr != "" {
		go func() {
			if err := s.serveAPI(ctx, addr); err != nil {
				errc <- fmt.Errorf("api server: %w", err)
			}
		}()
	}

	var tick <-chan time.Time
	if iv := s.cfg.Engine.PublishInterval(); iv > 0 {
		t := time.NewTicker(iv)
		defer t.Stop()
		tick = t.C
	}
	s.log.Infof("service started")
	for {
		select {
		case <-ctx.Done():
			<-collected
			return nil
		case err := <-errc:
			s.log.Errorf("%v", err)
			coremon.CaptureException(err, map[string]string{"module": "service"})
			return err
		case <-tick:
			_ = s.PublishAll(ctx)
		}
	}
}

// Handler returns the HTTP API backed by this service.
func (s *Service) Handler() http.Handler {
	return vehicles.NewRouter(s, s.Status, s.cfg.HTTP.Token)
}

func (s *Service) serveAPI(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	s.Bus.Close()
	if c, ok := s.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
