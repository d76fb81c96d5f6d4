// Package onewire reads a DS18B20 probe through the Linux w1-therm driver.
//
// The driver exposes each probe as /sys/bus/w1/devices/28-*/w1_slave with a
// two line frame:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
//
// The first line ends in YES once the conversion has a valid CRC.
package onewire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseDir = "/sys/bus/w1/devices"
	DefaultPoll    = 200 * time.Millisecond
	DefaultTimeout = 5 * time.Second

	familyGlob = "28*"
	slaveFile  = "w1_slave"
)

var (
	ErrNoDevice = errors.New("onewire: no DS18B20 device found")
	ErrTimeout  = errors.New("onewire: timed out waiting for a valid frame")
	errNotReady = errors.New("onewire: frame not ready")
)

// Probe is a single DS18B20.
type Probe struct {
	path    string
	poll    time.Duration
	timeout time.Duration
}

// Discover returns the first probe under baseDir.
func Discover(baseDir string, poll, timeout time.Duration) (*Probe, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	matches, err := filepath.Glob(filepath.Join(baseDir, familyGlob))
	if err != nil {
		return nil, fmt.Errorf("onewire glob: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoDevice, baseDir)
	}
	sort.Strings(matches)
	return NewProbe(filepath.Join(matches[0], slaveFile), poll, timeout), nil
}

// NewProbe reads the frame at path. Zero durations select the defaults.
func NewProbe(path string, poll, timeout time.Duration) *Probe {
	if poll <= 0 {
		poll = DefaultPoll
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{path: path, poll: poll, timeout: timeout}
}

// Path returns the w1_slave file being read.
func (p *Probe) Path() string {
	return p.path
}

// ReadCelsius polls the frame until it is valid, the timeout elapses
// (ErrTimeout) or ctx is done.
func (p *Probe) ReadCelsius(ctx context.Context) (float64, error) {
	deadline := time.NewTimer(p.timeout)
	defer deadline.Stop()

	for {
		b, err := os.ReadFile(p.path)
		if err != nil {
			return 0, fmt.Errorf("onewire read %s: %w", p.path, err)
		}
		temp, err := ParseFrame(string(b))
		if err == nil {
			return temp, nil
		}
		if !errors.Is(err, errNotReady) {
			return 0, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, ErrTimeout
		case <-time.After(p.poll):
		}
	}
}

// ParseFrame extracts the temperature in Celsius from a w1_slave frame.
func ParseFrame(frame string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(frame), "\n")
	if len(lines) < 2 || !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, errNotReady
	}
	_, raw, ok := strings.Cut(lines[1], "t=")
	if !ok {
		return 0, fmt.Errorf("onewire: no temperature in frame %q", lines[1])
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("onewire: invalid temperature %q: %w", raw, err)
	}
	return float64(milli) / 1000, nil
}
