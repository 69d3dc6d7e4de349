package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `store:
  backend: sqlite
  path: /var/lib/tacho/tacho.db
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "fleet/tacho"
  use_tls: false
  qos:
    compliance: 1
metrics:
  prometheus_port: ":2112"
  sinks:
    - type: "nop"
http:
  addr: ":8080"
engine:
  lookback_days: 35
  publish_interval_seconds: 60
  crew_vehicles: ["truck-2"]
sentry:
  dsn: "https://key@example.invalid/1"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "/var/lib/tacho/tacho.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "fleet/tacho"},
		{"qos", cfg.MQTT.QoS["compliance"], byte(1)},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":2112"},
		{"http.addr", cfg.HTTP.Addr, ":8080"},
		{"engine.lookback_days", cfg.Engine.LookbackDays, 35},
		{"engine.crew", cfg.Engine.IsCrew("truck-2"), true},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@example.invalid/1"},
		{"sentry.environment", cfg.Sentry.Environment, "production"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"http":{"addr":":9000"}}`))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 28, cfg.Engine.LookbackDays)
	assert.False(t, cfg.Engine.IsCrew("truck-1"))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_STORE__BACKEND", "sqlite")
	t.Setenv("K_STORE__PATH", "/tmp/override.db")
	cfg, err := Load(writeConfig(t, "config.yaml", "store:\n  backend: memory\n"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
}

func TestLoadRejects(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "store:\n  backend: redis\n")); err == nil {
		t.Fatal("expected unknown backend error")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "engine:\n  lookback_days: 7\n")); err == nil {
		t.Fatal("expected lookback error")
	}
	if _, err := Load(writeConfig(t, "config.yaml", "sentry:\n  traces_sample_rate: 2\n")); err == nil {
		t.Fatal("expected sample rate error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 28*24, int(cfg.Engine.Lookback().Hours()))
}
