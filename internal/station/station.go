// Package station runs the measurement pipeline: sub-samples feed the
// ambient estimator and official ticks produce readings for the sinks.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"piweather/internal/display"
	"piweather/internal/estimator"
	"piweather/internal/scheduler"
	"piweather/internal/sensor"
	"piweather/internal/sink/wunderground"
	"piweather/internal/trend"
	"piweather/internal/types"
	"piweather/internal/units"
)

var (
	ErrDisplayInit = errors.New("display init failed")
	ErrPrimingRead = errors.New("priming one-wire read failed")
)

const DefaultSpinStep = time.Second

type AmbientSensor interface {
	Sense(ctx context.Context) (sensor.Ambient, error)
}

// CPUSensor and ProbeSensor both report degrees Celsius.
type CPUSensor interface {
	ReadCelsius(ctx context.Context) (float64, error)
}

type ProbeSensor interface {
	ReadCelsius(ctx context.Context) (float64, error)
}

type GPIOSensor interface {
	Read(ctx context.Context) (sensor.TempHumidity, error)
}

type LogSink interface {
	Write(r types.Reading) error
}

type Uploader interface {
	Upload(ctx context.Context, r types.Reading) (wunderground.Result, error)
}

// Publisher is an optional sink such as MQTT or sqlite storage.
type Publisher interface {
	Publish(ctx context.Context, r types.Reading) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, r types.Reading) error

func (f PublisherFunc) Publish(ctx context.Context, r types.Reading) error { return f(ctx, r) }

type NamedPublisher struct {
	Name string
	Publisher
}

// Deps are the collaborators of a Station. Uploader may be nil, which
// disables uploads; the log sink is always written.
type Deps struct {
	Scheduler  *scheduler.Scheduler
	Ambient    AmbientSensor
	CPU        CPUSensor
	Probe      ProbeSensor
	GPIO       GPIOSensor
	Display    display.Display
	Log        LogSink
	Uploader   Uploader
	Publishers []NamedPublisher
	Logger     *slog.Logger

	CompensationFactor float64
	Tolerance          float64
	SpinStep           time.Duration
}

type Station struct {
	sched      *scheduler.Scheduler
	ambient    AmbientSensor
	cpu        CPUSensor
	probe      ProbeSensor
	estimator  *estimator.Ambient
	agg        *Aggregator
	display    display.Display
	log        LogSink
	uploader   Uploader
	publishers []NamedPublisher
	logger     *slog.Logger
	tolerance  float64
	spinStep   time.Duration

	sample     Sample
	haveSample bool
	prev       types.Reading
	lastKeyF   float64

	mu        sync.RWMutex
	latest    types.Reading
	hasLatest bool
}

func New(d Deps) *Station {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tol := d.Tolerance
	if tol <= 0 {
		tol = trend.DefaultTolerance
	}
	step := d.SpinStep
	if step == 0 {
		step = DefaultSpinStep
	}
	return &Station{
		sched:      d.Scheduler,
		ambient:    d.Ambient,
		cpu:        d.CPU,
		probe:      d.Probe,
		estimator:  estimator.NewAmbient(d.CompensationFactor),
		agg:        NewAggregator(d.Probe, d.GPIO, logger),
		display:    d.Display,
		log:        d.Log,
		uploader:   d.Uploader,
		publishers: d.Publishers,
		logger:     logger,
		tolerance:  tol,
		spinStep:   step,
	}
}

// Prime shows the startup splash and takes the initial probe reading used
// as the first trend reference.
func (s *Station) Prime(ctx context.Context) error {
	if err := s.display.ShowMessage(ctx, "Init", display.Yellow, display.Navy); err != nil {
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}
	if err := s.display.Clear(); err != nil {
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}

	c, err := s.probe.ReadCelsius(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrimingRead, err)
	}
	s.lastKeyF = units.Round(units.CelsiusToFahrenheit(c), 1)
	s.prev.OneWireTempF = s.lastKeyF
	s.logger.Info("station primed", "one_wire_temp_f", s.lastKeyF)
	return nil
}

// Run blocks until ctx is cancelled.
func (s *Station) Run(ctx context.Context) error {
	return s.sched.Run(ctx, s.HandleTick)
}

// HandleTick processes one scheduler tick.
func (s *Station) HandleTick(ctx context.Context, tick scheduler.Tick) {
	if !tick.SubSample {
		return
	}
	s.subSample(ctx, tick.Time)

	if !tick.Official {
		return
	}
	if !s.haveSample {
		s.logger.Warn("skipping official reading, no ambient sample yet", "minute", tick.Time.Minute())
		return
	}
	s.official(ctx, tick.Time)
}

// Latest returns the most recent official reading.
func (s *Station) Latest() (types.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

func (s *Station) subSample(ctx context.Context, now time.Time) {
	amb, err := s.ambient.Sense(ctx)
	if err != nil {
		s.logger.Warn("ambient read failed", "error", err)
		return
	}
	cpuC, err := s.cpu.ReadCelsius(ctx)
	if err != nil {
		s.logger.Warn("cpu temperature read failed", "error", err)
		return
	}
	corrected := s.estimator.Estimate(amb.TempFromPressureC, cpuC)
	s.sample = Sample{Time: now, Ambient: amb, CPUTempC: cpuC, CorrectedC: corrected}
	s.haveSample = true
	s.logger.Debug("sub-sample",
		"temp_c", units.Round(corrected, 2),
		"pressure_temp_c", amb.TempFromPressureC,
		"cpu_temp_c", cpuC,
	)
}

func (s *Station) official(ctx context.Context, now time.Time) {
	r, err := s.agg.Build(ctx, now, s.sample, s.prev)
	if err != nil {
		s.logger.Debug("official reading interrupted", "error", err)
		return
	}

	dir := trend.Classify(s.lastKeyF, r.KeyTempF(), s.tolerance)
	r.Trend = dir.String()

	s.logger.Info("official reading",
		"sequence", r.Sequence,
		"temp_f", units.Round(r.TempF, 1),
		"one_wire_temp_f", units.Round(r.OneWireTempF, 1),
		"humidity_pct", r.GPIOHumidity,
		"pressure_inhg", units.Round(r.PressureInHg, 2),
		"trend", r.Trend,
		"gpio_stale", r.GPIOStale,
		"one_wire_stale", r.OneWireStale,
	)

	s.showTrend(ctx, dir, r.OneWireStale)
	s.showStatus(ctx, r)

	s.mu.Lock()
	s.latest, s.hasLatest = r, true
	s.mu.Unlock()

	s.deliver(ctx, r)

	s.prev = r
	s.lastKeyF = r.KeyTempF()
}

func (s *Station) showTrend(ctx context.Context, dir trend.Direction, stale bool) {
	var err error
	switch {
	case stale:
		err = s.display.SetPixels(display.QuestionMark)
	case dir == trend.Rising:
		err = s.display.SetPixels(display.ArrowUp)
	case dir == trend.Falling:
		err = s.display.SetPixels(display.ArrowDown)
	default:
		if err = s.display.SetPixels(display.EqualBars); err == nil {
			err = display.Spin(ctx, s.display, s.spinStep)
		}
	}
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("display trend failed", "error", err)
	}
}

func (s *Station) showStatus(ctx context.Context, r types.Reading) {
	avg := units.Round((r.OneWireTempF+units.Round(r.TempF, 1))/2, 1)
	fg := display.White
	if r.Timestamp.Minute()%2 == 0 {
		fg = display.Red
	}
	if err := s.display.ShowMessage(ctx, strconv.FormatFloat(avg, 'f', 1, 64)+"F", fg, display.Off); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("display status failed", "error", err)
		}
		return
	}
	humidity := strconv.FormatFloat(r.GPIOHumidity, 'f', -1, 64) + "%"
	if err := s.display.ShowMessage(ctx, humidity, display.Green, display.Off); err != nil && ctx.Err() == nil {
		s.logger.Warn("display status failed", "error", err)
	}
}

// deliver hands r to every sink. A failing sink never stops the others.
func (s *Station) deliver(ctx context.Context, r types.Reading) {
	if err := s.log.Write(r); err != nil {
		s.logger.Error("log write failed", "error", err)
	}

	if s.uploader != nil {
		res, err := s.uploader.Upload(ctx, r)
		if err != nil {
			s.logger.Error("upload failed", "error_type", fmt.Sprintf("%T", err), "error", err)
		} else {
			s.logger.Info("upload complete", "status", res.StatusCode, "response", res.Body)
		}
	} else {
		s.logger.Debug("skipping weather upload")
	}

	for _, p := range s.publishers {
		if err := p.Publish(ctx, r); err != nil {
			s.logger.Warn("publish failed", "sink", p.Name, "error", err)
		}
	}
}
