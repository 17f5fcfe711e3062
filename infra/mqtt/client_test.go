package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/core/report"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func testReport() report.Report {
	return report.Report{
		GridName: "reference",
		RunID:    "run-1",
		Percent:  100,
		Areas: []report.AreaRow{
			{Name: "Kent", Required: 100, Supplied: 100, PercentSupplied: 100, Status: "met"},
			{Name: "North/East", Required: 40, Supplied: 10, PercentSupplied: 25, Status: "partial"},
		},
		Summary: report.Summary{TotalDemand: 140, TotalSupplied: 110, Profit: decimal.RequireFromString("700"), StopReason: "lines_exhausted", Passes: 2},
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", AuthMethod: "tls", Username: "u", TLSConfig: tlsConfigStub})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
	assert.Same(t, tlsConfigStub, opts.TLSConfig)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b:1883", QoS: 3}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b:1883", AuthMethod: "token"}.Validate())
	assert.NoError(t, Config{Enabled: true, Broker: "tcp://b:1883", QoS: 1}.Validate())

	var c Config
	c.SetDefaults()
	assert.Equal(t, "gridsim", c.TopicPrefix)
	assert.Equal(t, 3, c.MaxRetries)
	assert.NotEmpty(t, c.ClientID)
}

func TestPublishReport(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "grid/", QoS: 1, Retain: true}, nil)
	require.NoError(t, err)
	require.NoError(t, pub.PublishReport(context.Background(), testReport()))

	require.Len(t, mc.published, 3)
	assert.Equal(t, "grid/cycle", mc.published[0].topic)
	assert.Equal(t, "grid/area/Kent", mc.published[1].topic)
	assert.Equal(t, "grid/area/North_East", mc.published[2].topic)
	assert.Equal(t, byte(1), mc.published[0].qos)
	assert.True(t, mc.published[0].retained)

	var cm CycleMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &cm))
	assert.Equal(t, "run-1", cm.RunID)
	assert.Equal(t, "700.00", cm.Profit)
	assert.Equal(t, 2, cm.Passes)

	var am AreaMessage
	require.NoError(t, json.Unmarshal(mc.published[2].payload, &am))
	assert.Equal(t, "North/East", am.Area)
	assert.Equal(t, 25.0, am.PercentSupplied)

	require.NoError(t, pub.Close())
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}, nil)
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	require.NoError(t, pub.Close())
	assert.Empty(t, mc.published)
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, pub.PublishReport(context.Background(), report.Report{RunID: "r"}))
	assert.Len(t, mc.published, 2)
}

type recordMonitor struct {
	coremon.NopMonitor
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}

func TestPublishErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(nil)

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1}, nil)
	require.NoError(t, err)
	err = pub.PublishReport(context.Background(), testReport())
	require.ErrorIs(t, err, fail)
	assert.Len(t, mc.published, 3)
	require.Error(t, mon.err)
	assert.Equal(t, "mqtt", mon.tags["module"])
	assert.Equal(t, "gridsim/cycle", mon.tags["topic"])
	assert.Equal(t, "run-1", mon.tags["run_id"])
}

func TestPublishCancelledDuringBackoff(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail")}}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 5, BackoffMS: 60000}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.PublishReport(ctx, testReport()), context.Canceled)
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher("p")
	require.NoError(t, m.PublishReport(context.Background(), testReport()))
	assert.Len(t, m.Published(), 3)
	m.Fail = true
	assert.Error(t, m.PublishReport(context.Background(), testReport()))
	assert.NoError(t, NopPublisher{}.PublishReport(context.Background(), testReport()))
}

func TestPublishReport_UnencodablePayload(t *testing.T) {
	r := testReport()
	r.Areas[1].Required = math.Inf(1)
	_, err := Messages("grid", r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid/area/North_East")

	mc := &mockClient{}
	useMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(nil)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "grid/"}, nil)
	require.NoError(t, err)
	require.Error(t, pub.PublishReport(context.Background(), r))
	assert.Empty(t, mc.published)
	require.Error(t, mon.err)
	assert.Equal(t, "run-1", mon.tags["run_id"])

	m := NewMockPublisher("p")
	assert.Error(t, m.PublishReport(context.Background(), r))
	assert.Empty(t, m.Published())
}

var tlsConfigStub = &tls.Config{MinVersion: tls.VersionTLS12}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts      *paho.ClientOptions
	published []struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
