package types

import (
	"time"

	"github.com/google/uuid"
)

// Reading is the composite record produced on each official tick. It is
// not modified after it is handed to the sinks.
type Reading struct {
	ID        uuid.UUID `json:"id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	// Sense HAT temperature corrected for CPU heat and smoothed.
	TempF float64 `json:"temp_f"`
	TempC float64 `json:"temp_c"`

	TempFromHumidityF float64 `json:"temp_from_humidity_f"`
	TempFromPressureF float64 `json:"temp_from_pressure_f"`
	PressureInHg      float64 `json:"pressure_inhg"`
	HumidityPct       float64 `json:"humidity_pct"`
	CPUTempF          float64 `json:"cpu_temp_f"`

	// DHT11 values. Kept from the previous reading when the sensor had no
	// valid sample at this tick.
	GPIOTempF     float64 `json:"gpio_temp_f"`
	GPIOHumidity  float64 `json:"gpio_humidity_pct"`
	GPIODewPointF float64 `json:"gpio_dew_point_f"`
	GPIOStale     bool    `json:"gpio_stale"`

	// DS18B20 probe temperature.
	OneWireTempF float64 `json:"one_wire_temp_f"`
	OneWireStale bool    `json:"one_wire_stale"`

	// Dew point from the probe temperature and the DHT11 humidity.
	BlendedDewPointF float64 `json:"blended_dew_point_f"`

	// Trend of the key temperature against the previous official reading.
	Trend string `json:"trend"`
}

// KeyTempF is the temperature used for trend comparison.
func (r Reading) KeyTempF() float64 {
	return r.OneWireTempF
}
