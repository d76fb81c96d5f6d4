package app

import (
	"context"
	"errors"
	"testing"

	"piweather/internal/config"
	"piweather/internal/display"
	"piweather/internal/scheduler"
)

func TestRun_InvalidInterval(t *testing.T) {
	cfg := config.Config{MeasurementInterval: 0}
	if err := Run(context.Background(), cfg); !errors.Is(err, scheduler.ErrInvalidInterval) {
		t.Fatalf("Run() error = %v, want ErrInvalidInterval", err)
	}
}

func TestOpenDisplay_None(t *testing.T) {
	d, err := openDisplay(config.Config{Display: config.DisplayNone})
	if err != nil {
		t.Fatalf("openDisplay: %v", err)
	}
	if _, ok := d.(*display.LogDisplay); !ok {
		t.Errorf("display = %T, want *display.LogDisplay", d)
	}
}
