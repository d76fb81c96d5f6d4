// Package sensor holds the value types shared by the station's sensor
// drivers.
package sensor

// Ambient is one read of the board-mounted environment sensor.
type Ambient struct {
	// Temperature from the humidity sensor die.
	TempFromHumidityC float64
	// Temperature from the pressure sensor die.
	TempFromPressureC float64
	HumidityPct       float64
	// Pressure in millibars (hPa).
	PressureMbar float64
}

// TempHumidity is a sample from a combined temperature/humidity sensor that
// may not have a fresh value on every poll.
type TempHumidity struct {
	TempC       float64
	HumidityPct float64
	Valid       bool
}
