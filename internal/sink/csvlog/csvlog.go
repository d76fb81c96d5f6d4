// Package csvlog appends official readings to a daily text log.
package csvlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"piweather/internal/types"
	"piweather/internal/units"
)

const timestampLayout = "2006-01-02 15:04:05.000000"

type Logger struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	return &Logger{dir: dir}, nil
}

// FileName returns the log file for the local date of r.
func (l *Logger) FileName(r types.Reading) string {
	return filepath.Join(l.dir, "log_weather-"+r.Timestamp.Format("20060102")+".log")
}

// Write appends one line for r to the file of its day.
func (l *Logger) Write(r types.Reading) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.FileName(r)
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", name, err)
	}
	if _, err := f.WriteString(Line(r)); err != nil {
		f.Close()
		return fmt.Errorf("write log %s: %w", name, err)
	}
	return f.Close()
}

// Line formats r as a single log line, newline included.
func Line(r types.Reading) string {
	fields := []string{
		r.Timestamp.Format(timestampLayout),
		num(r.TempF),
		num(r.TempFromHumidityF),
		num(r.TempFromPressureF),
		num(r.PressureInHg),
		num(r.HumidityPct) + "%",
		num(r.CPUTempF),
		num(r.GPIOTempF),
		num(r.GPIOHumidity) + "%",
		num(r.GPIODewPointF),
		num(r.OneWireTempF),
		num(r.BlendedDewPointF),
	}
	return strings.Join(fields, ", ") + " \n"
}

func num(v float64) string {
	return fmt.Sprintf("%.1f", units.Round(v, 1))
}
