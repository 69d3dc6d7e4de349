package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/tacho/core/metrics"
	"github.com/kilianp07/tacho/core/shift"
	"github.com/kilianp07/tacho/infra/logger"
)

// InfluxSink writes compliance reports to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCompliance writes the report as a compliance_report point.
func (s *InfluxSink) RecordCompliance(ev coremetrics.ComplianceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, compliancePoint(ev))
}

// RecordShiftEvent writes a shift_event point.
func (s *InfluxSink) RecordShiftEvent(ev shift.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, shiftPoint(ev))
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func compliancePoint(ev coremetrics.ComplianceEvent) *write.Point {
	r := ev.Report
	return write.NewPointWithMeasurement("compliance_report").
		AddTag("vehicle_id", r.VehicleID).
		AddTag("slot", strconv.Itoa(int(r.Slot))).
		AddTag("crew", strconv.FormatBool(r.Crew)).
		AddTag("shift_source", string(r.Source)).
		AddField("today_driving_min", minutes(r.Today.Driving)).
		AddField("shift_driving_min", minutes(r.Shift.Driving)).
		AddField("block_remaining_min", minutes(r.BlockRemaining)).
		AddField("remaining_driving_min", minutes(r.RemainingDriving)).
		AddField("week_driving_min", minutes(r.WeekDriving)).
		AddField("two_week_driving_min", minutes(r.TwoWeekDriving)).
		AddField("week_exceeded", r.WeekExceeded).
		AddField("two_week_exceeded", r.TwoWeekExceeded).
		AddField("extended_days", r.ExtendedDays).
		AddField("reduced_rests", r.ReducedRests).
		AddField("current_rest_min", minutes(r.CurrentRest)).
		SetTime(ev.Time)
}

func shiftPoint(ev shift.Event) *write.Point {
	return write.NewPointWithMeasurement("shift_event").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("slot", strconv.Itoa(int(ev.Slot))).
		AddTag("activity", ev.Activity.String()).
		AddField("logged", ev.Logged).
		AddField("event_id", ev.ID).
		SetTime(ev.At)
}

func minutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}
