// Package units holds the conversions used between the raw sensor values and
// the figures that end up in logs and uploads.
package units

import "math"

// CelsiusToFahrenheit converts a temperature in degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*1.8 + 32
}

// FahrenheitToCelsius converts a temperature in degrees Fahrenheit to Celsius.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) / 1.8
}

const inchesHgPerMillibar = 0.02953

// MillibarsToInchesHg converts barometric pressure in millibars (hPa) to
// inches of mercury.
func MillibarsToInchesHg(mbar float64) float64 {
	return mbar * inchesHgPerMillibar
}

// PascalsToInchesHg applies the same coefficient as MillibarsToInchesHg.
// The Sense HAT reports millibars despite the name; callers feeding real
// Pascals get values 100x too large.
func PascalsToInchesHg(p float64) float64 {
	return p * inchesHgPerMillibar
}

// MillimetersToInches converts rainfall in millimeters to inches.
func MillimetersToInches(mm float64) float64 {
	return mm * 0.0393701
}

// KphToMph converts a speed in km/h to miles per hour.
func KphToMph(kph float64) float64 {
	return kph * 0.621371
}

// DewPoint approximates the dew point in Fahrenheit from a temperature in
// Fahrenheit and a relative humidity percentage (0-100). It is a linear
// approximation, good to a few degrees above 50% RH.
func DewPoint(tempF, rh float64) float64 {
	return tempF - (0.36 * (100 - rh))
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
