package csvlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"piweather/internal/types"
)

func sampleReading(ts time.Time) types.Reading {
	return types.Reading{
		Timestamp:         ts,
		TempF:             71.26,
		TempFromHumidityF: 80.1,
		TempFromPressureF: 79.94,
		PressureInHg:      29.92,
		HumidityPct:       41.04,
		CPUTempF:          120.5,
		GPIOTempF:         71.6,
		GPIOHumidity:      45,
		GPIODewPointF:     51.8,
		OneWireTempF:      70.25,
		BlendedDewPointF:  50.46,
	}
}

func TestLine(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 0, 123456000, time.Local)
	got := Line(sampleReading(ts))
	want := "2024-03-07 09:05:00.123456, 71.3, 80.1, 79.9, 29.9, 41.0%, 120.5, 71.6, 45.0%, 51.8, 70.3, 50.5 \n"
	if got != want {
		t.Errorf("Line() =\n%q\nwant\n%q", got, want)
	}
}

func TestWrite_AppendsToDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	day1 := time.Date(2024, 3, 7, 23, 59, 0, 0, time.Local)
	day2 := day1.Add(2 * time.Minute)
	for _, ts := range []time.Time{day1, day1.Add(time.Second), day2} {
		if err := l.Write(sampleReading(ts)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	b, err := os.ReadFile(filepath.Join(dir, "log_weather-20240307.log"))
	if err != nil {
		t.Fatalf("read day 1: %v", err)
	}
	if n := strings.Count(string(b), "\n"); n != 2 {
		t.Errorf("day 1 lines = %d, want 2", n)
	}

	b, err = os.ReadFile(filepath.Join(dir, "log_weather-20240308.log"))
	if err != nil {
		t.Fatalf("read day 2: %v", err)
	}
	if !strings.HasPrefix(string(b), "2024-03-08 00:01:00") {
		t.Errorf("day 2 content = %q", b)
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	l := &Logger{dir: filepath.Join(dir, "missing", "deeper")}
	if err := l.Write(sampleReading(time.Now())); err == nil {
		t.Fatal("Write() error = nil, want non-nil")
	}
}
