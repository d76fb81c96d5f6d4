// Package scheduler decides, from wall-clock time, when to take a smoothing
// sub-sample and when a sub-sample is also an official measurement.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// SubSamplePeriod is the spacing, in seconds of the minute, between
	// sub-samples.
	SubSamplePeriod = 5

	MinInterval = 1
	MaxInterval = 60

	// DefaultPoll is how often Run looks at the clock.
	DefaultPoll = time.Second
)

var ErrInvalidInterval = errors.New("measurement interval out of range")

// Tick is the outcome of observing the clock once.
type Tick struct {
	Time      time.Time
	SubSample bool
	Official  bool
}

// Scheduler tracks the last minute and second it acted on. It is not safe
// for concurrent use; Run serializes all observations.
type Scheduler struct {
	interval   int
	lastMinute int
	lastSample time.Time

	poll time.Duration
	now  func() time.Time
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithPoll sets the period between clock observations in Run.
func WithPoll(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// New returns a scheduler that emits an official tick on minutes divisible by
// intervalMinutes (and always on minute 0). intervalMinutes must be in [1,60].
func New(intervalMinutes int, opts ...Option) (*Scheduler, error) {
	if err := ValidateInterval(intervalMinutes); err != nil {
		return nil, err
	}
	s := &Scheduler{
		interval:   intervalMinutes,
		lastMinute: -1,
		poll:       DefaultPoll,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ValidateInterval reports whether minutes is an accepted interval.
func ValidateInterval(minutes int) error {
	if minutes < MinInterval || minutes > MaxInterval {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidInterval, minutes, MinInterval, MaxInterval)
	}
	return nil
}

// Interval returns the configured interval in minutes.
func (s *Scheduler) Interval() int {
	return s.interval
}

// Observe advances the state machine to now. The last-seen minute is
// recorded before the tick is returned, so whatever the caller does with an
// official tick cannot produce a second one in the same minute.
func (s *Scheduler) Observe(now time.Time) Tick {
	tick := Tick{Time: now}

	if now.Second()%SubSamplePeriod != 0 {
		return tick
	}
	second := now.Truncate(time.Second)
	if second.Equal(s.lastSample) {
		return tick
	}
	s.lastSample = second
	tick.SubSample = true

	minute := now.Minute()
	if minute == s.lastMinute {
		return tick
	}
	s.lastMinute = minute
	if minute == 0 || minute%s.interval == 0 {
		tick.Official = true
	}
	return tick
}

// Run observes the clock every poll period and calls fn for each sub-sample
// until ctx is done. It returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context, fn func(context.Context, Tick)) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick := s.Observe(s.now())
			if tick.SubSample {
				fn(ctx, tick)
			}
		}
	}
}
