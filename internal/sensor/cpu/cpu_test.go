package cpu

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "sysfs", in: "48312\n", want: 48.312},
		{name: "vcgencmd", in: "temp=45.0'C\n", want: 45.0},
		{name: "negative sysfs", in: "-1500", want: -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "hot", "temp=warm'C"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) error = nil, want non-nil", in)
		}
	}
}

func TestThermal_ReadCelsius(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(path, []byte("51000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewThermal(path).ReadCelsius(context.Background())
	if err != nil {
		t.Fatalf("ReadCelsius: %v", err)
	}
	if got != 51 {
		t.Errorf("ReadCelsius = %v, want 51", got)
	}
}

func TestThermal_MissingFile(t *testing.T) {
	th := NewThermal(filepath.Join(t.TempDir(), "nope"))
	if _, err := th.ReadCelsius(context.Background()); err == nil {
		t.Fatal("ReadCelsius on missing file: error = nil")
	}
}
