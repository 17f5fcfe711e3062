package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/core/report"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool        `json:"enabled"`
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	AuthMethod  string      `json:"auth_method"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	LWTQoS      byte        `json:"lwt_qos"`
	LWTRetain   bool        `json:"lwt_retain"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "gridsim"
	}
	if c.ClientID == "" {
		c.ClientID = "gridsim-" + uuid.NewString()[:8]
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return errors.New("mqtt broker is required")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	switch c.AuthMethod {
	case "", "username_password", "tls", "both":
	default:
		return fmt.Errorf("unknown mqtt auth method %q", c.AuthMethod)
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoPublisher publishes cycle reports through Eclipse Paho.
type PahoPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config, log logger.Logger) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	p := &PahoPublisher{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
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
	if cfg.UseTLS || cfg.AuthMethod == "tls" || cfg.AuthMethod == "both" {
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
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s contains no certificate", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PublishReport sends the cycle summary to <prefix>/cycle and the status of
// every area to <prefix>/area/<name>.
func (p *PahoPublisher) PublishReport(ctx context.Context, r report.Report) error {
	msgs, err := Messages(p.prefix, r)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "run_id": r.RunID})
		return err
	}
	for _, m := range msgs {
		if err := p.publish(ctx, m.Topic, m.Payload); err != nil {
			monitoring.CaptureException(err, map[string]string{"module": "mqtt", "topic": m.Topic, "run_id": r.RunID})
			return err
		}
	}
	p.logger.Infof("published run %s to %s", r.RunID, p.prefix)
	return nil
}

func (p *PahoPublisher) publish(ctx context.Context, topic string, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			return nil
		}
		p.logger.Errorf("publish to %s attempt %d failed: %v", topic, attempt+1, err)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Close gracefully closes the MQTT connection.
func (p *PahoPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}

// CycleMessage is the payload published on <prefix>/cycle.
type CycleMessage struct {
	RunID         string    `json:"run_id"`
	Grid          string    `json:"grid"`
	Percent       float64   `json:"percent"`
	Passes        int       `json:"passes"`
	StopReason    string    `json:"stop_reason"`
	TotalDemand   float64   `json:"total_demand_mw"`
	TotalSupplied float64   `json:"total_supplied_mw"`
	PercentMet    float64   `json:"percent_met"`
	Profit        string    `json:"profit"`
	Finished      time.Time `json:"finished"`
}

// AreaMessage is the payload published on <prefix>/area/<name>.
type AreaMessage struct {
	RunID           string  `json:"run_id"`
	Area            string  `json:"area"`
	Required        float64 `json:"required_mw"`
	Supplied        float64 `json:"supplied_mw"`
	PercentSupplied float64 `json:"percent_supplied"`
	Status          string  `json:"status"`
}

// Message is an encoded payload and its topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Messages encodes r into the messages published for a cycle, summary first.
// Non-finite figures cannot be encoded and are reported as an error.
func Messages(prefix string, r report.Report) ([]Message, error) {
	out := make([]Message, 0, len(r.Areas)+1)
	m, err := encode(prefix+"/cycle", CycleMessage{
		RunID:         r.RunID,
		Grid:          r.GridName,
		Percent:       r.Percent,
		Passes:        r.Summary.Passes,
		StopReason:    r.Summary.StopReason,
		TotalDemand:   r.Summary.TotalDemand,
		TotalSupplied: r.Summary.TotalSupplied,
		PercentMet:    r.Summary.PercentMet,
		Profit:        r.Summary.Profit.StringFixed(2),
		Finished:      r.Finished,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, m)
	for _, a := range r.Areas {
		m, err := encode(prefix+"/area/"+TopicSegment(a.Name), AreaMessage{
			RunID:           r.RunID,
			Area:            a.Name,
			Required:        a.Required,
			Supplied:        a.Supplied,
			PercentSupplied: a.PercentSupplied,
			Status:          a.Status,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func encode(topic string, v any) (Message, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s: %w", topic, err)
	}
	return Message{Topic: topic, Payload: b}, nil
}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// TopicSegment makes name safe for use as a single topic level.
func TopicSegment(name string) string {
	return topicReplacer.Replace(strings.TrimSpace(name))
}
