package sensehat

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// ST HTS221 humidity and temperature sensor.
const (
	hts221Addr     = 0x5f
	hts221WhoAmI   = 0xbc
	hts221CtrlReg1 = 0x20
	hts221Ctrl1On  = 0x85 // PD=1, BDU=1, ODR=1Hz
	hts221HumOutL  = 0x28
	hts221CalStart = 0x30
)

type hts221Calibration struct {
	h0rH, h1rH       float64
	t0degC, t1degC   float64
	h0t0Out, h1t0Out float64
	t0Out, t1Out     float64
}

// HTS221 reads relative humidity and the humidity die temperature.
type HTS221 struct {
	dev *i2c.Dev
	cal hts221Calibration
}

func NewHTS221(bus i2c.Bus) (*HTS221, error) {
	dev := &i2c.Dev{Bus: bus, Addr: hts221Addr}
	if err := checkWhoAmI(dev, hts221WhoAmI); err != nil {
		return nil, fmt.Errorf("hts221: %w", err)
	}
	if err := dev.Tx([]byte{hts221CtrlReg1, hts221Ctrl1On}, nil); err != nil {
		return nil, fmt.Errorf("hts221: power on: %w", err)
	}

	raw := make([]byte, 16)
	if err := dev.Tx([]byte{hts221CalStart | autoIncrement}, raw); err != nil {
		return nil, fmt.Errorf("hts221: read calibration: %w", err)
	}
	return &HTS221{dev: dev, cal: parseHTS221Calibration(raw)}, nil
}

func parseHTS221Calibration(raw []byte) hts221Calibration {
	msb := raw[5]
	return hts221Calibration{
		h0rH:    float64(raw[0]) / 2,
		h1rH:    float64(raw[1]) / 2,
		t0degC:  float64(uint16(raw[2])|uint16(msb&0x03)<<8) / 8,
		t1degC:  float64(uint16(raw[3])|uint16(msb&0x0c)<<6) / 8,
		h0t0Out: float64(int16(binary.LittleEndian.Uint16(raw[6:8]))),
		h1t0Out: float64(int16(binary.LittleEndian.Uint16(raw[10:12]))),
		t0Out:   float64(int16(binary.LittleEndian.Uint16(raw[12:14]))),
		t1Out:   float64(int16(binary.LittleEndian.Uint16(raw[14:16]))),
	}
}

// Sense returns humidity in percent and temperature in Celsius.
func (h *HTS221) Sense() (humidity, tempC float64, err error) {
	out := make([]byte, 4)
	if err := h.dev.Tx([]byte{hts221HumOutL | autoIncrement}, out); err != nil {
		return 0, 0, fmt.Errorf("hts221: read output: %w", err)
	}
	hOut := float64(int16(binary.LittleEndian.Uint16(out[0:2])))
	tOut := float64(int16(binary.LittleEndian.Uint16(out[2:4])))
	humidity, tempC = h.cal.apply(hOut, tOut)
	return humidity, tempC, nil
}

func (c hts221Calibration) apply(hOut, tOut float64) (humidity, tempC float64) {
	hSlope := (c.h1rH - c.h0rH) / (c.h1t0Out - c.h0t0Out)
	tSlope := (c.t1degC - c.t0degC) / (c.t1Out - c.t0Out)
	humidity = (hOut-c.h0t0Out)*hSlope + c.h0rH
	tempC = (tOut-c.t0Out)*tSlope + c.t0degC
	return humidity, tempC
}
