// Package cpu reads the SoC temperature of the Raspberry Pi.
package cpu

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const DefaultPath = "/sys/class/thermal/thermal_zone0/temp"

// Thermal reads a thermal zone file.
type Thermal struct {
	path string
}

func NewThermal(path string) *Thermal {
	if path == "" {
		path = DefaultPath
	}
	return &Thermal{path: path}
}

// ReadCelsius returns the current CPU temperature.
func (t *Thermal) ReadCelsius(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b, err := os.ReadFile(t.path)
	if err != nil {
		return 0, fmt.Errorf("read cpu temperature: %w", err)
	}
	return Parse(string(b))
}

// Parse accepts either the sysfs millidegree format ("48312") or the
// vcgencmd format ("temp=48.3'C").
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutPrefix(s, "temp="); ok {
		v = strings.TrimSuffix(v, "'C")
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cpu temperature %q: %w", s, err)
		}
		return c, nil
	}
	milli, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cpu temperature %q: %w", s, err)
	}
	return float64(milli) / 1000, nil
}
