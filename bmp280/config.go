// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"strconv"
	"time"
)

const (
	// Address is the default I²C address, SDO pulled high.
	Address uint16 = 0x77
	// AlternateAddress is the I²C address with SDO pulled low.
	AlternateAddress uint16 = 0x76
	// ChipID is the content of the id register of a production BMP280.
	ChipID byte = 0x58

	regDigT1     byte = 0x88
	regDigT2     byte = 0x8A
	regDigP1     byte = 0x8E
	regDigP2     byte = 0x90
	regChipID    byte = 0xD0
	regSoftReset byte = 0xE0
	regStatus    byte = 0xF3
	regCtrlMeas  byte = 0xF4
	regConfig    byte = 0xF5
	regPress     byte = 0xF7
	regTemp      byte = 0xFA

	softResetCode   byte = 0xB6
	statusMeasuring byte = 1 << 3
)

// Oversampling affects how much time is taken to measure pressure or
// temperature and the noise of the result.
type Oversampling uint8

// Possible oversampling values.
//
// Codes 0b101 to 0b111 all select 16x.
const (
	Off  Oversampling = 0
	O1x  Oversampling = 1
	O2x  Oversampling = 2
	O4x  Oversampling = 3
	O8x  Oversampling = 4
	O16x Oversampling = 7
)

func (o Oversampling) String() string {
	switch o {
	case Off:
		return "Off"
	case O1x:
		return "1x"
	case O2x:
		return "2x"
	case O4x:
		return "4x"
	case O8x:
		return "8x"
	case 5, 6, O16x:
		return "16x"
	default:
		return "Oversampling(" + strconv.Itoa(int(o)) + ")"
	}
}

// factor returns the number of conversions done for one measurement.
func (o Oversampling) factor() int {
	switch {
	case o == Off:
		return 0
	case o >= 5:
		return 16
	default:
		return 1 << (o - 1)
	}
}

// Mode is the power mode of the device.
type Mode uint8

// Possible power modes.
const (
	// Sleep is the power on mode; no measurement is done.
	Sleep Mode = 0
	// Forced does one measurement on request then goes back to Sleep. The
	// driver triggers it on each read.
	Forced Mode = 1
	// Normal measures continuously, pausing Standby between measurements.
	Normal Mode = 3
)

func (m Mode) String() string {
	switch m {
	case Sleep:
		return "Sleep"
	case Forced, 2:
		return "Forced"
	case Normal:
		return "Normal"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Filter specifies the internal IIR filter to get steadier measurements.
//
// Oversampling will get better measurements than filtering but at a larger
// power consumption cost.
type Filter uint8

// Possible filtering values.
const (
	NoFilter Filter = 0
	F2       Filter = 1
	F4       Filter = 2
	F8       Filter = 3
	F16      Filter = 4
)

func (f Filter) String() string {
	switch f {
	case NoFilter:
		return "NoFilter"
	case F2, F4, F8, F16:
		return "F" + strconv.Itoa(1<<f)
	default:
		return "Filter(" + strconv.Itoa(int(f)) + ")"
	}
}

// Standby is the inactive time between two measurements in Normal mode.
type Standby uint8

// Possible standby values.
const (
	S0_5ms  Standby = 0
	S62_5ms Standby = 1
	S125ms  Standby = 2
	S250ms  Standby = 3
	S500ms  Standby = 4
	S1s     Standby = 5
	S2s     Standby = 6
	S4s     Standby = 7
)

var standbyDurations = [...]time.Duration{
	500 * time.Microsecond,
	62500 * time.Microsecond,
	125 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
	2 * time.Second,
	4 * time.Second,
}

// Duration returns the standby time.
func (s Standby) Duration() time.Duration {
	if int(s) >= len(standbyDurations) {
		return 0
	}
	return standbyDurations[s]
}

func (s Standby) String() string {
	return s.Duration().String()
}

// ctrlMeas is the content of register 0xF4.
type ctrlMeas struct {
	temperature Oversampling
	pressure    Oversampling
	mode        Mode
}

func (c ctrlMeas) bytes() byte {
	return byte(c.temperature&7)<<5 | byte(c.pressure&7)<<2 | byte(c.mode&3)
}

func parseCtrlMeas(b byte) ctrlMeas {
	return ctrlMeas{temperature: Oversampling(b >> 5), pressure: Oversampling((b >> 2) & 7), mode: Mode(b & 3)}
}

// config is the content of register 0xF5. Bit 0 enables the 3 wire SPI
// interface, which isn't supported.
type config struct {
	standby Standby
	filter  Filter
}

func (c config) bytes() byte {
	return byte(c.standby&7)<<5 | byte(c.filter&7)<<2
}

func parseConfig(b byte) config {
	return config{standby: Standby(b >> 5), filter: Filter((b >> 2) & 7)}
}

// measurementTime returns the maximum duration of one measurement, as listed
// in section 3.8.1 of the datasheet.
func measurementTime(t, p Oversampling) time.Duration {
	us := 1250 + 2300*t.factor()
	if n := p.factor(); n != 0 {
		us += 2300*n + 575
	}
	return time.Duration(us) * time.Microsecond
}
