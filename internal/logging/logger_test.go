package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"piweather/internal/config"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo, StationID: "KXX1"}
	logger := NewWithWriter(&buf, cfg, "1.2.3", "piweather")

	logger.Debug("hidden")
	logger.Info("reading", "temp_f", 71.5)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]any{"app": "piweather", "version": "1.2.3", "env": "prod", "station": "KXX1", "msg": "reading"} {
		if rec[key] != want {
			t.Errorf("%s = %v, want %v", key, rec[key], want)
		}
	}
}

func TestNew_DevUsesTint(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}
	logger := NewWithWriter(&buf, cfg, "dev", "piweather")

	logger.Debug("sub-sample")

	out := buf.String()
	if !strings.Contains(out, "sub-sample") || !strings.Contains(out, "piweather") {
		t.Errorf("unexpected dev output %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}
