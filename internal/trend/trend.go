// Package trend classifies how the key temperature moved between two official
// readings.
package trend

import "math"

// DefaultTolerance is the band, in degrees, inside which a change counts as
// steady.
const DefaultTolerance = 0.2

// Direction of a temperature change.
type Direction int

const (
	Steady Direction = iota
	Rising
	Falling
)

func (d Direction) String() string {
	switch d {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "steady"
	}
}

// Classify compares next against prev. The change is Steady when it is
// strictly smaller than tolerance.
func Classify(prev, next, tolerance float64) Direction {
	if math.Abs(prev-next) < tolerance {
		return Steady
	}
	if next > prev {
		return Rising
	}
	return Falling
}
