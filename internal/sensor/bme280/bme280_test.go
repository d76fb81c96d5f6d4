package bme280

import (
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestFromEnv(t *testing.T) {
	env := physic.Env{
		Temperature: physic.ZeroCelsius + 21500*physic.MilliKelvin,
		Pressure:    101325 * physic.Pascal,
		Humidity:    45 * physic.PercentRH,
	}
	got := fromEnv(env)

	if math.Abs(got.TempFromPressureC-21.5) > 1e-6 {
		t.Errorf("TempFromPressureC = %v, want 21.5", got.TempFromPressureC)
	}
	if got.TempFromHumidityC != got.TempFromPressureC {
		t.Errorf("temperatures differ: %v vs %v", got.TempFromHumidityC, got.TempFromPressureC)
	}
	if math.Abs(got.PressureMbar-1013.25) > 1e-9 {
		t.Errorf("PressureMbar = %v, want 1013.25", got.PressureMbar)
	}
	if math.Abs(got.HumidityPct-45) > 1e-9 {
		t.Errorf("HumidityPct = %v, want 45", got.HumidityPct)
	}
}
