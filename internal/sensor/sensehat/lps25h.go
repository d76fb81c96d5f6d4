package sensehat

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// ST LPS25H pressure and temperature sensor.
const (
	lps25hAddr      = 0x5c
	lps25hWhoAmI    = 0xbd
	lps25hCtrlReg1  = 0x20
	lps25hCtrl1On   = 0x90 // PD=1, ODR=1Hz
	lps25hPressOutX = 0x28
)

// LPS25H reads barometric pressure and the pressure die temperature.
type LPS25H struct {
	dev *i2c.Dev
}

func NewLPS25H(bus i2c.Bus) (*LPS25H, error) {
	dev := &i2c.Dev{Bus: bus, Addr: lps25hAddr}
	if err := checkWhoAmI(dev, lps25hWhoAmI); err != nil {
		return nil, fmt.Errorf("lps25h: %w", err)
	}
	if err := dev.Tx([]byte{lps25hCtrlReg1, lps25hCtrl1On}, nil); err != nil {
		return nil, fmt.Errorf("lps25h: power on: %w", err)
	}
	return &LPS25H{dev: dev}, nil
}

// Sense returns pressure in millibars and temperature in Celsius.
func (l *LPS25H) Sense() (pressureMbar, tempC float64, err error) {
	out := make([]byte, 5)
	if err := l.dev.Tx([]byte{lps25hPressOutX | autoIncrement}, out); err != nil {
		return 0, 0, fmt.Errorf("lps25h: read output: %w", err)
	}
	pressureMbar, tempC = decodeLPS25H(out)
	return pressureMbar, tempC, nil
}

func decodeLPS25H(out []byte) (pressureMbar, tempC float64) {
	p := int32(uint32(out[2])<<16 | uint32(out[1])<<8 | uint32(out[0]))
	// sign-extend the 24-bit value
	p = p << 8 >> 8
	t := int16(uint16(out[4])<<8 | uint16(out[3]))
	return float64(p) / 4096, 42.5 + float64(t)/480
}
