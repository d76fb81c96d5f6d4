// Package dht reads a DHT11 temperature/humidity sensor by bit-banging a GPIO
// pin.
//
// The host holds the line low for at least 18ms, then releases it. The sensor
// answers with 80us low and 80us high, then sends 40 bits, each a 50us low
// followed by a high pulse of ~27us (0) or ~70us (1).
package dht

import (
	"context"
	"fmt"
	"time"

	"piweather/internal/sensor"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

const (
	startLow       = 18 * time.Millisecond
	idleTimeout    = 2 * time.Millisecond
	captureTimeout = 50 * time.Millisecond
	bitThreshold   = 50 * time.Microsecond

	// MinInterval is the fastest the DHT11 can be polled.
	MinInterval = time.Second

	frameBits = 40
)

// DHT11 is a sensor on one GPIO pin.
type DHT11 struct {
	pin      gpio.PinIO
	lastRead time.Time
	now      func() time.Time
}

// Open looks up the pin by name, e.g. "GPIO26".
func Open(pinName string) (*DHT11, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("dht: unknown pin %q", pinName)
	}
	return New(pin), nil
}

func New(pin gpio.PinIO) *DHT11 {
	return &DHT11{pin: pin, now: time.Now}
}

// Read returns a sample. A timing or checksum failure, or a poll faster than
// MinInterval, yields Valid=false rather than an error. Errors are reserved
// for failures to drive the pin.
func (d *DHT11) Read(ctx context.Context) (sensor.TempHumidity, error) {
	if err := ctx.Err(); err != nil {
		return sensor.TempHumidity{}, err
	}
	if !d.lastRead.IsZero() && d.now().Sub(d.lastRead) < MinInterval {
		return sensor.TempHumidity{}, nil
	}
	d.lastRead = d.now()

	if err := d.pin.Out(gpio.Low); err != nil {
		return sensor.TempHumidity{}, fmt.Errorf("dht: drive pin low: %w", err)
	}
	time.Sleep(startLow)
	if err := d.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return sensor.TempHumidity{}, fmt.Errorf("dht: release pin: %w", err)
	}

	highs := capture(d.pin)
	frame, err := decodeBits(highs)
	if err != nil {
		return sensor.TempHumidity{}, nil
	}
	reading, ok := decodeFrame(frame)
	if !ok {
		return sensor.TempHumidity{}, nil
	}
	return reading, nil
}

// capture samples the pin as fast as possible and returns the durations of
// the completed high pulses.
func capture(pin gpio.PinIO) []time.Duration {
	var highs []time.Duration
	start := time.Now()
	level := pin.Read()
	changed := start
	for {
		now := time.Now()
		l := pin.Read()
		if l != level {
			if level == gpio.High {
				highs = append(highs, now.Sub(changed))
			}
			level = l
			changed = now
			continue
		}
		if now.Sub(changed) > idleTimeout || now.Sub(start) > captureTimeout {
			return highs
		}
	}
}

// decodeBits turns the trailing 40 high pulses into a 5 byte frame.
func decodeBits(highs []time.Duration) ([5]byte, error) {
	var frame [5]byte
	if len(highs) < frameBits {
		return frame, fmt.Errorf("dht: got %d pulses, want %d", len(highs), frameBits)
	}
	bits := highs[len(highs)-frameBits:]
	for i, d := range bits {
		if d > bitThreshold {
			frame[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return frame, nil
}

// decodeFrame validates the checksum and converts the payload.
func decodeFrame(frame [5]byte) (sensor.TempHumidity, bool) {
	sum := frame[0] + frame[1] + frame[2] + frame[3]
	if sum != frame[4] {
		return sensor.TempHumidity{}, false
	}
	if frame[0] == 0 && frame[2] == 0 && frame[4] == 0 {
		// all-zero frames come from a floating line
		return sensor.TempHumidity{}, false
	}
	temp := float64(frame[2]) + float64(frame[3]&0x7f)/10
	if frame[3]&0x80 != 0 {
		temp = -temp
	}
	return sensor.TempHumidity{
		TempC:       temp,
		HumidityPct: float64(frame[0]) + float64(frame[1])/10,
		Valid:       true,
	}, true
}
