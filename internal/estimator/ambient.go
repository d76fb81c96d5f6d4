package estimator

// DefaultCompensationFactor scales how much of the CPU/sensor temperature
// difference is subtracted from the sensor reading.
const DefaultCompensationFactor = 1.5

// Ambient corrects the Sense HAT temperature for heat soaked from the CPU and
// smooths the result. It is a first-order linear correction, not a calibrated
// model.
type Ambient struct {
	factor float64
	smooth *Smoothing
}

// NewAmbient returns an estimator using factor as the compensation divisor.
// A non-positive factor falls back to DefaultCompensationFactor.
func NewAmbient(factor float64) *Ambient {
	if factor <= 0 {
		factor = DefaultCompensationFactor
	}
	return &Ambient{factor: factor, smooth: NewSmoothing()}
}

// Estimate returns the smoothed, compensated temperature. Both inputs and the
// result share a unit (Celsius in this program).
func (a *Ambient) Estimate(sensorTemp, cpuTemp float64) float64 {
	return a.smooth.Ingest(Compensate(sensorTemp, cpuTemp, a.factor))
}

// Value returns the last estimate without ingesting anything.
func (a *Ambient) Value() float64 {
	return a.smooth.Value()
}

// Compensate applies t - (cpu - t)/factor.
func Compensate(sensorTemp, cpuTemp, factor float64) float64 {
	return sensorTemp - ((cpuTemp - sensorTemp) / factor)
}
