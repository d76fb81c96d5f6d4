package sensehat

import (
	"context"
	"math"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

// Calibration: 20%-80% RH over 0..6000 counts, 10-30C over 0..2000 counts.
var testCalibration = []byte{
	40, 160, 80, 240, // H0_rH_x2, H1_rH_x2, T0_degC_x8, T1_degC_x8
	0, 0, // reserved, T1/T0 msb
	0x00, 0x00, // H0_T0_OUT
	0, 0, // reserved
	0x70, 0x17, // H1_T0_OUT = 6000
	0x00, 0x00, // T0_OUT
	0xd0, 0x07, // T1_OUT = 2000
}

func openOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: hts221Addr, W: []byte{whoAmIReg}, R: []byte{hts221WhoAmI}},
		{Addr: hts221Addr, W: []byte{hts221CtrlReg1, hts221Ctrl1On}},
		{Addr: hts221Addr, W: []byte{hts221CalStart | autoIncrement}, R: testCalibration},
		{Addr: lps25hAddr, W: []byte{whoAmIReg}, R: []byte{lps25hWhoAmI}},
		{Addr: lps25hAddr, W: []byte{lps25hCtrlReg1, lps25hCtrl1On}},
	}
}

func TestSenseHAT_Sense(t *testing.T) {
	ops := append(openOps(),
		// humidity 3000 counts, temperature 1000 counts
		i2ctest.IO{Addr: hts221Addr, W: []byte{hts221HumOutL | autoIncrement}, R: []byte{0xb8, 0x0b, 0xe8, 0x03}},
		// 1013.25 hPa, 20.0C
		i2ctest.IO{Addr: lps25hAddr, W: []byte{lps25hPressOutX | autoIncrement}, R: []byte{0x00, 0x54, 0x3f, 0xd0, 0xd5}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	hat, err := Open(bus)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := hat.Sense(context.Background())
	if err != nil {
		t.Fatalf("Sense: %v", err)
	}

	if math.Abs(got.HumidityPct-50) > 1e-9 {
		t.Errorf("HumidityPct = %v, want 50", got.HumidityPct)
	}
	if math.Abs(got.TempFromHumidityC-20) > 1e-9 {
		t.Errorf("TempFromHumidityC = %v, want 20", got.TempFromHumidityC)
	}
	if math.Abs(got.PressureMbar-1013.25) > 1e-9 {
		t.Errorf("PressureMbar = %v, want 1013.25", got.PressureMbar)
	}
	if math.Abs(got.TempFromPressureC-20) > 1e-9 {
		t.Errorf("TempFromPressureC = %v, want 20", got.TempFromPressureC)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("unused playback ops: %v", err)
	}
}

func TestOpen_WrongDevice(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: hts221Addr, W: []byte{whoAmIReg}, R: []byte{0x42}}},
		DontPanic: true,
	}
	if _, err := Open(bus); err == nil {
		t.Fatal("Open with wrong WHO_AM_I: error = nil, want non-nil")
	}
}

func TestSense_CancelledContext(t *testing.T) {
	bus := &i2ctest.Playback{Ops: openOps(), DontPanic: true}
	hat, err := Open(bus)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := hat.Sense(ctx); err == nil {
		t.Fatal("Sense with cancelled context: error = nil")
	}
}

func TestDecodeLPS25H_Negative(t *testing.T) {
	// 0xFFF000 is -4096 counts: -1 hPa; temperature 0 counts is 42.5C
	p, temp := decodeLPS25H([]byte{0x00, 0xf0, 0xff, 0x00, 0x00})
	if p != -1 {
		t.Errorf("pressure = %v, want -1", p)
	}
	if temp != 42.5 {
		t.Errorf("temp = %v, want 42.5", temp)
	}
}

func TestHTS221Calibration_MSBBits(t *testing.T) {
	raw := make([]byte, 16)
	raw[2], raw[3] = 0x10, 0x20
	raw[5] = 0x01 | 0x04 // T0 bit 8, T1 bit 8
	cal := parseHTS221Calibration(raw)
	if cal.t0degC != float64(0x110)/8 {
		t.Errorf("t0degC = %v", cal.t0degC)
	}
	if cal.t1degC != float64(0x120)/8 {
		t.Errorf("t1degC = %v", cal.t1degC)
	}
}
