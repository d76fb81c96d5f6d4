//go:build e2e

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"piweather/internal/config"
)

const brokerPort = nat.Port("1883/tcp")

func startMosquitto(t *testing.T) (string, int) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2",
		ExposedPorts: []string{string(brokerPort)},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort(brokerPort).WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start mosquitto container: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, brokerPort)
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return host, port.Int()
}

func TestE2E_PublishReading(t *testing.T) {
	host, port := startMosquitto(t)

	cfg := config.Config{
		StationID:    "KXXE2E",
		MQTTBroker:   host,
		MQTTPort:     port,
		MQTTClientID: "piweather-e2e",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	received := make(chan Telemetry, 1)
	subOpts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", host, port)).
		SetClientID("piweather-e2e-sub")
	sub := paho.NewClient(subOpts)
	if tok := sub.Connect(); !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(250)

	tok := sub.Subscribe("stations/KXXE2E/telemetry", 1, func(_ paho.Client, m paho.Message) {
		var tel Telemetry
		if err := json.Unmarshal(m.Payload(), &tel); err == nil {
			received <- tel
		}
	})
	if !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	c, err := NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// OnConnectHandler runs asynchronously after CONNACK.
	for !c.IsConnected() {
		select {
		case <-ctx.Done():
			t.Fatal("client never reported connected")
		case <-time.After(50 * time.Millisecond):
		}
	}

	r := testReading()
	if err := c.Publish(ctx, r); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case tel := <-received:
		if tel.Reading.ID != r.ID || tel.StationID != "KXXE2E" {
			t.Errorf("received %+v", tel)
		}
	case <-ctx.Done():
		t.Fatal("telemetry not received")
	}
}
