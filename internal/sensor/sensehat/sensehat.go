// Package sensehat drives the environment sensors on the Astro Pi Sense HAT.
package sensehat

import (
	"context"
	"fmt"

	"piweather/internal/sensor"

	"periph.io/x/conn/v3/i2c"
)

// Register sub-address bit enabling auto-increment on multi-byte reads.
const autoIncrement = 0x80

const whoAmIReg = 0x0f

// SenseHAT combines the HTS221 and LPS25H into one ambient sensor.
type SenseHAT struct {
	hts *HTS221
	lps *LPS25H
}

// Open initializes both sensors on bus.
func Open(bus i2c.Bus) (*SenseHAT, error) {
	hts, err := NewHTS221(bus)
	if err != nil {
		return nil, err
	}
	lps, err := NewLPS25H(bus)
	if err != nil {
		return nil, err
	}
	return &SenseHAT{hts: hts, lps: lps}, nil
}

func (s *SenseHAT) Sense(ctx context.Context) (sensor.Ambient, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Ambient{}, err
	}
	humidity, tHum, err := s.hts.Sense()
	if err != nil {
		return sensor.Ambient{}, err
	}
	pressure, tPress, err := s.lps.Sense()
	if err != nil {
		return sensor.Ambient{}, err
	}
	return sensor.Ambient{
		TempFromHumidityC: tHum,
		TempFromPressureC: tPress,
		HumidityPct:       humidity,
		PressureMbar:      pressure,
	}, nil
}

func checkWhoAmI(dev *i2c.Dev, want byte) error {
	var id [1]byte
	if err := dev.Tx([]byte{whoAmIReg}, id[:]); err != nil {
		return fmt.Errorf("read WHO_AM_I: %w", err)
	}
	if id[0] != want {
		return fmt.Errorf("unexpected WHO_AM_I 0x%02x (want 0x%02x)", id[0], want)
	}
	return nil
}
