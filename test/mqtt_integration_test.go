package test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tacho/app"
	"github.com/kilianp07/tacho/config"
	"github.com/kilianp07/tacho/core/model"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
	"github.com/kilianp07/tacho/infra/metrics"
	"github.com/kilianp07/tacho/test/util"
)

func TestMQTTRoundTrip(t *testing.T) {
	if testing.Short() || !util.DockerAvailable() {
		t.Skip("docker not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	metricsSrv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer metricsSrv.Close()

	start := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)
	last := start.Add(29 * time.Minute)

	cfg := config.Default()
	cfg.MQTT.Broker = broker
	cfg.MQTT.ClientID = "tacho-it"
	svc, err := app.New(cfg, app.WithSink(sink), app.WithClock(func() time.Time { return last }))
	require.NoError(t, err)
	defer svc.Close()

	probe, err := util.Connect(broker, "tacho-it-probe")
	require.NoError(t, err)
	defer probe.Close()
	require.NoError(t, probe.Subscribe(coremqtt.Topic("tacho", "truck-1", coremqtt.KindCompliance)))

	// the service subscribes from its OnConnect callback
	time.Sleep(500 * time.Millisecond)
	topic := coremqtt.Topic("tacho", "truck-1", coremqtt.KindActivity)
	for i := 0; i < 30; i++ {
		rec := model.ActivityRecord{Minute: start.Add(time.Duration(i) * time.Minute), Driver1: model.ActivityDriving}
		payload, err := json.Marshal(rec)
		require.NoError(t, err)
		require.NoError(t, probe.Publish(topic, payload))
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer waitCancel()
	require.NoError(t, util.WaitForMetric(waitCtx, metricsSrv.URL, `tacho_ingested_minutes_total{vehicle_id="truck-1"} 30`))

	require.NoError(t, svc.PublishAll(ctx))
	timeout := time.After(5 * time.Second)
	for {
		select {
		case payload := <-probe.Messages:
			var msg coremqtt.ReportMessage
			require.NoError(t, json.Unmarshal(payload, &msg))
			if msg.Report.Slot != model.Driver1 {
				continue
			}
			assert.Equal(t, "truck-1", msg.VehicleID)
			assert.NotEmpty(t, msg.MessageID)
			assert.Equal(t, 30*time.Minute, msg.Report.Today.Driving)
			return
		case <-timeout:
			t.Fatalf("no compliance report received")
		}
	}
}
