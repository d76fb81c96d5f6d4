// Package bme280 adapts a Bosch BME280 breakout as the station's ambient
// sensor, for boards without a Sense HAT.
package bme280

import (
	"context"
	"fmt"

	"piweather/internal/sensor"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// Sensor wraps a bmxx80 device.
type Sensor struct {
	dev *bmxx80.Dev
}

func Open(bus i2c.Bus, addr uint16) (*Sensor, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("bmxx80.NewI2C: %w", err)
	}
	return &Sensor{dev: dev}, nil
}

// Sense reports the single die temperature for both temperature fields.
func (s *Sensor) Sense(ctx context.Context) (sensor.Ambient, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Ambient{}, err
	}
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return sensor.Ambient{}, fmt.Errorf("bme280 sense: %w", err)
	}
	return fromEnv(env), nil
}

func fromEnv(env physic.Env) sensor.Ambient {
	temperature := env.Temperature.Celsius()
	return sensor.Ambient{
		TempFromHumidityC: temperature,
		TempFromPressureC: temperature,
		// env.Humidity is fixed point at 0.00001%rH.
		HumidityPct: float64(env.Humidity) / float64(physic.PercentRH),
		// env.Pressure is in nano Pascal; 1 hPa = 100 Pa.
		PressureMbar: float64(env.Pressure) / float64(100*physic.Pascal),
	}
}

// Halt stops the device.
func (s *Sensor) Halt() error {
	return s.dev.Halt()
}
