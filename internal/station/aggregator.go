package station

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"piweather/internal/sensor"
	"piweather/internal/types"
	"piweather/internal/units"
)

// Sample is the latest ambient sub-sample fed to the estimator.
type Sample struct {
	Time       time.Time
	Ambient    sensor.Ambient
	CPUTempC   float64
	CorrectedC float64
}

// Aggregator assembles official readings from the latest sub-sample and the
// sensors that are only read on official ticks.
type Aggregator struct {
	probe  ProbeSensor
	gpio   GPIOSensor
	logger *slog.Logger
	newID  func() uuid.UUID
	seq    int
}

func NewAggregator(probe ProbeSensor, gpio GPIOSensor, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{probe: probe, gpio: gpio, logger: logger, newID: uuid.New}
}

// Build returns the reading for now. prev supplies the values kept when the
// probe times out or the DHT11 has no valid sample. The only error is
// cancellation of ctx.
func (a *Aggregator) Build(ctx context.Context, now time.Time, sample Sample, prev types.Reading) (types.Reading, error) {
	a.seq++
	r := types.Reading{
		ID:                a.newID(),
		Sequence:          a.seq,
		Timestamp:         now,
		TempC:             sample.CorrectedC,
		TempF:             units.CelsiusToFahrenheit(sample.CorrectedC),
		TempFromHumidityF: units.CelsiusToFahrenheit(sample.Ambient.TempFromHumidityC),
		TempFromPressureF: units.CelsiusToFahrenheit(sample.Ambient.TempFromPressureC),
		PressureInHg:      units.MillibarsToInchesHg(sample.Ambient.PressureMbar),
		HumidityPct:       sample.Ambient.HumidityPct,
		CPUTempF:          units.CelsiusToFahrenheit(sample.CPUTempC),
	}

	probeC, err := a.probe.ReadCelsius(ctx)
	switch {
	case err == nil:
		r.OneWireTempF = units.CelsiusToFahrenheit(probeC)
	case ctx.Err() != nil:
		return types.Reading{}, ctx.Err()
	default:
		a.logger.Warn("one-wire read failed, keeping previous value", "error", err)
		r.OneWireTempF = prev.OneWireTempF
		r.OneWireStale = true
	}

	th, err := a.gpio.Read(ctx)
	if err != nil && ctx.Err() != nil {
		return types.Reading{}, ctx.Err()
	}
	if err != nil || !th.Valid {
		if err != nil {
			a.logger.Warn("dht11 read failed", "error", err)
		}
		r.GPIOTempF = prev.GPIOTempF
		r.GPIOHumidity = prev.GPIOHumidity
		r.GPIODewPointF = prev.GPIODewPointF
		r.BlendedDewPointF = prev.BlendedDewPointF
		r.GPIOStale = true
		return r, nil
	}

	r.GPIOTempF = units.CelsiusToFahrenheit(th.TempC)
	r.GPIOHumidity = th.HumidityPct
	r.GPIODewPointF = units.DewPoint(r.GPIOTempF, th.HumidityPct)
	r.BlendedDewPointF = units.DewPoint(r.OneWireTempF, th.HumidityPct)
	return r, nil
}
