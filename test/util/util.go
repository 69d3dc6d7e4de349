// Package util holds helpers for the container-backed integration tests:
// a disposable Mosquitto broker, an MQTT topic recorder and a Prometheus
// endpoint poller.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
connection_messages true
`

// DockerAvailable reports whether a docker binary is on the PATH.
func DockerAvailable() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// WaitForMetric polls metricsURL until the body contains substr.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		if resp, err := http.DefaultClient.Do(req); err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// StartMosquitto launches an anonymous Mosquitto broker in Docker and returns
// its URL once it accepts connections.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForBroker(waitCtx, endpoint); err != nil {
		cleanup()
		return "", nil, err
	}
	return endpoint, cleanup, nil
}

// Recorder is a probe client that keeps every payload received on a topic.
type Recorder struct {
	cli      paho.Client
	Messages chan []byte
}

// Connect opens a probe client on broker.
func Connect(broker, clientID string) (*Recorder, error) {
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID(clientID))
	if err := await(cli.Connect()); err != nil {
		return nil, err
	}
	return &Recorder{cli: cli, Messages: make(chan []byte, 64)}, nil
}

// Subscribe records the payloads published on topic.
func (r *Recorder) Subscribe(topic string) error {
	return await(r.cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		select {
		case r.Messages <- m.Payload():
		default:
		}
	}))
}

// Publish sends payload on topic with QoS 1.
func (r *Recorder) Publish(topic string, payload []byte) error {
	return await(r.cli.Publish(topic, 1, false, payload))
}

// Close disconnects the probe.
func (r *Recorder) Close() { r.cli.Disconnect(100) }

func await(tok paho.Token) error {
	if !tok.WaitTimeout(MosquittoReadyTimeout) {
		return fmt.Errorf("mqtt operation timed out")
	}
	return tok.Error()
}

func waitForBroker(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		if tok := cli.Connect(); tok.Wait() && tok.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
