package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
	coremon "github.com/kilianp07/tacho/core/monitoring"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
	"github.com/kilianp07/tacho/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker" koanf:"broker"`
	ClientID    string          `json:"client_id" koanf:"client_id"`
	Username    string          `json:"username" koanf:"username"`
	Password    string          `json:"password" koanf:"password"`
	TopicPrefix string          `json:"topic_prefix" koanf:"topic_prefix"`
	UseTLS      bool            `json:"use_tls" koanf:"use_tls"`
	ClientCert  string          `json:"client_cert" koanf:"client_cert"`
	ClientKey   string          `json:"client_key" koanf:"client_key"`
	CABundle    string          `json:"ca_bundle" koanf:"ca_bundle"`
	AuthMethod  string          `json:"auth_method" koanf:"auth_method"`
	QoS         map[string]byte `json:"qos" koanf:"qos"`
	Retain      bool            `json:"retain" koanf:"retain"`
	LWTTopic    string          `json:"lwt_topic" koanf:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload" koanf:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos" koanf:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain" koanf:"lwt_retain"`
	MaxRetries  int             `json:"max_retries" koanf:"max_retries"`
	BackoffMS   int             `json:"backoff_ms" koanf:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-" koanf:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient receives activity and boundary messages and publishes
// compliance reports using Eclipse Paho.
type PahoClient struct {
	cli     pahoClient
	prefix  string
	qos     map[string]byte
	retain  bool
	handler coremqtt.Handler

	mu         sync.Mutex
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and, when h is not nil,
// subscribes to the activity and boundary topics of every vehicle.
func NewPahoClient(cfg Config, h coremqtt.Handler) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		handler:    h,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}
	if pc.prefix == "" {
		pc.prefix = "tacho"
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if pc.handler == nil {
			return
		}
		for _, kind := range []string{coremqtt.KindActivity, coremqtt.KindBoundary} {
			topic := coremqtt.Wildcard(pc.prefix, kind)
			if token := c.Subscribe(topic, pc.qosFor(kind), pc.onMessage); token.Wait() && token.Error() != nil {
				logger.Errorf("subscribe %s error: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) onMessage(_ paho.Client, msg paho.Message) {
	vehicleID, kind, err := coremqtt.ParseTopic(p.prefix, msg.Topic())
	if err != nil {
		p.logger.Warnf("ignoring message on %s: %v", msg.Topic(), err)
		return
	}
	switch kind {
	case coremqtt.KindActivity:
		var rec model.ActivityRecord
		if err = json.Unmarshal(msg.Payload(), &rec); err == nil {
			err = p.handler.HandleActivity(vehicleID, rec)
		}
	case coremqtt.KindBoundary:
		var b coremqtt.BoundaryMessage
		if err = json.Unmarshal(msg.Payload(), &b); err == nil {
			err = p.handler.HandleBoundary(vehicleID, b)
		}
	default:
		p.logger.Debugf("ignoring %s message for %s", kind, vehicleID)
		return
	}
	if err != nil {
		p.logger.Errorf("handle %s for %s: %v", kind, vehicleID, err)
		coremon.CaptureException(err, map[string]string{"vehicle_id": vehicleID, "module": "mqtt", "kind": kind})
	}
}

// PublishReport sends the report to <prefix>/<vehicle>/compliance with
// exponential backoff between attempts and returns the message ID.
func (p *PahoClient) PublishReport(vehicleID string, rep compliance.Report) (string, error) {
	msgID := uuid.NewString()
	payload, err := json.Marshal(coremqtt.ReportMessage{
		MessageID: msgID,
		VehicleID: vehicleID,
		SentAt:    p.now().UTC(),
		Report:    rep,
	})
	if err != nil {
		return "", err
	}

	topic := coremqtt.Topic(p.prefix, vehicleID, coremqtt.KindCompliance)
	qos := p.qosFor(coremqtt.KindCompliance)
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("sent report %s to %s", msgID, topic)
			return msgID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"vehicle_id": vehicleID, "module": "mqtt"})
	return "", fmt.Errorf("publish report for %s: %w", vehicleID, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
