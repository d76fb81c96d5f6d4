package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"piweather/internal/config"
	"piweather/internal/types"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	connected  bool
	publishErr error
	msgs       []published
}

func (f *fakeClient) IsConnected() bool      { return f.connected }
func (f *fakeClient) IsConnectionOpen() bool { return f.connected }
func (f *fakeClient) Connect() paho.Token    { f.connected = true; return newToken(nil) }
func (f *fakeClient) Disconnect(uint)        { f.connected = false }
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.msgs = append(f.msgs, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return newToken(f.publishErr)
}
func (f *fakeClient) Subscribe(string, byte, paho.MessageHandler) paho.Token { return newToken(nil) }
func (f *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return newToken(nil)
}
func (f *fakeClient) Unsubscribe(...string) paho.Token      { return newToken(nil) }
func (f *fakeClient) AddRoute(string, paho.MessageHandler)  {}
func (f *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func newTestClient(fc *fakeClient) *Client {
	return &Client{
		client: fc,
		cfg:    config.Config{StationID: "KXX1"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stopCh: make(chan struct{}),
	}
}

func testReading() types.Reading {
	return types.Reading{
		ID:           uuid.MustParse("3f2504e0-4f89-41d3-9a0c-0305e82c3301"),
		Sequence:     7,
		Timestamp:    time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC),
		TempC:        21.5,
		HumidityPct:  40,
		PressureInHg: 29.53,
		OneWireStale: true,
	}
}

func TestTelemetryFromReading(t *testing.T) {
	tel := TelemetryFromReading("KXX1", testReading())
	if tel.StationID != "KXX1" || *tel.Sequence != 7 {
		t.Errorf("telemetry = %+v", tel)
	}
	if *tel.Temperature != 21.5 || *tel.Humidity != 40 {
		t.Errorf("temperature/humidity = %v/%v", *tel.Temperature, *tel.Humidity)
	}
	if math.Abs(*tel.Pressure-1000) > 0.01 {
		t.Errorf("pressure = %v hPa, want 1000", *tel.Pressure)
	}
}

func TestPublish_NotConnected(t *testing.T) {
	c := newTestClient(&fakeClient{})
	if err := c.Publish(context.Background(), testReading()); err == nil {
		t.Fatal("Publish() error = nil, want not connected")
	}
}

func TestPublish_TelemetryAndHealth(t *testing.T) {
	fc := &fakeClient{}
	c := newTestClient(fc)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	c.setConnected(true)

	if err := c.Publish(context.Background(), testReading()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fc.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(fc.msgs))
	}

	tel := fc.msgs[0]
	if tel.topic != "stations/KXX1/telemetry" || tel.qos != 1 || tel.retained {
		t.Errorf("telemetry message = %+v", tel)
	}
	var got Telemetry
	if err := json.Unmarshal(tel.payload, &got); err != nil {
		t.Fatalf("unmarshal telemetry: %v", err)
	}
	if got.Reading.ID != testReading().ID {
		t.Errorf("reading id = %v", got.Reading.ID)
	}

	health := fc.msgs[1]
	if health.topic != "stations/KXX1/health" || !health.retained {
		t.Errorf("health message = %+v", health)
	}
	var h StationHealth
	if err := json.Unmarshal(health.payload, &h); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if h.Healthy {
		t.Error("health should be false when the probe is stale")
	}
}

func TestPublish_BrokerError(t *testing.T) {
	fc := &fakeClient{connected: true, publishErr: errors.New("not authorized")}
	c := newTestClient(fc)
	c.setConnected(true)

	if err := c.Publish(context.Background(), testReading()); err == nil {
		t.Fatal("Publish() error = nil, want broker error")
	}
	if len(fc.msgs) != 1 {
		t.Errorf("health should not be sent after a telemetry failure, got %d messages", len(fc.msgs))
	}
}

func TestConnect_AfterDisconnect(t *testing.T) {
	c := newTestClient(&fakeClient{})
	c.Disconnect()
	c.Disconnect()
	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("Connect() after Disconnect error = nil, want client stopped")
	}
}
