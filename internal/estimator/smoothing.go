// Package estimator turns noisy board temperatures into a usable ambient
// estimate.
package estimator

// windowSize is the number of compensated samples averaged together.
const windowSize = 3

// Smoothing is a moving average over the last three ingested values. The
// zero value is ready to use and unseeded.
type Smoothing struct {
	window [windowSize]float64
	seeded bool
}

// NewSmoothing returns an unseeded estimator.
func NewSmoothing() *Smoothing {
	return &Smoothing{}
}

// Ingest adds x to the window and returns the mean of the window. The first
// value seeds every slot so there is no bias toward zero.
func (s *Smoothing) Ingest(x float64) float64 {
	if !s.seeded {
		for i := range s.window {
			s.window[i] = x
		}
		s.seeded = true
		return x
	}
	copy(s.window[1:], s.window[:windowSize-1])
	s.window[0] = x
	return s.Value()
}

// Value returns the current mean, or 0 if nothing was ingested yet.
func (s *Smoothing) Value() float64 {
	if !s.seeded {
		return 0
	}
	var sum float64
	for _, v := range s.window {
		sum += v
	}
	return sum / windowSize
}

// Seeded reports whether at least one value has been ingested.
func (s *Smoothing) Seeded() bool {
	return s.seeded
}
