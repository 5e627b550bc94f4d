// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import "fmt"

// Calibration is the set of factory trimming coefficients stored in the
// device NVM. It is read once when the Dev is created.
type Calibration struct {
	T1                             uint16
	T2, T3                         int16
	P1                             uint16
	P2, P3, P4, P5, P6, P7, P8, P9 int16
}

// loadCalibration reads the 12 coefficients from 0x88~0x9F. No validation is
// done; a blank NVM yields a zero Calibration.
func loadCalibration(r *registers) (Calibration, error) {
	var c Calibration
	var err error
	if c.T1, err = r.read16LE(regDigT1); err != nil {
		return c, err
	}
	signed := []*int16{&c.T2, &c.T3}
	for i, p := range signed {
		if *p, err = r.readS16LE(regDigT2 + byte(2*i)); err != nil {
			return c, err
		}
	}
	if c.P1, err = r.read16LE(regDigP1); err != nil {
		return c, err
	}
	signed = []*int16{&c.P2, &c.P3, &c.P4, &c.P5, &c.P6, &c.P7, &c.P8, &c.P9}
	for i, p := range signed {
		if *p, err = r.readS16LE(regDigP2 + byte(2*i)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// CompensateTemperature returns the temperature in °C, with a resolution of
// 0.01°C, and the fine temperature needed by CompensatePressure.
//
// raw is the content of the 24 bits temperature register; the 4 least
// significant bits are not part of the measurement.
func (c *Calibration) CompensateTemperature(raw int32) (float64, int32) {
	t, tFine := c.compensateTempInt(raw)
	return float64(t) / 100, tFine
}

// CompensatePressure returns the pressure in Pa, with a resolution of
// 1/256Pa. tFine must come from CompensateTemperature called on the
// temperature of the same measurement.
//
// ok is false when the calibration makes the formula undefined, in which case
// the returned pressure is 0.
func (c *Calibration) CompensatePressure(raw, tFine int32) (pa float64, ok bool) {
	p, ok := c.compensatePressureInt(raw, tFine)
	return float64(p) / 256, ok
}

// compensateTempInt returns temperature in °C, resolution is 0.01 °C.
// Output value of 5123 equals 51.23 C.
//
// The intermediate values are 32 bits and rely on wrapping; do not widen.
func (c *Calibration) compensateTempInt(raw int32) (int32, int32) {
	raw >>= 4
	var1 := (((raw >> 3) - (int32(c.T1) << 1)) * int32(c.T2)) >> 11
	x := (raw >> 4) - int32(c.T1)
	var2 := (((x * x) >> 12) * int32(c.T3)) >> 14
	tFine := var1 + var2
	return (tFine*5 + 128) >> 8, tFine
}

// compensatePressureInt returns pressure in Pa in Q24.8 format (24 integer
// bits and 8 fractional bits). Output value of 24674867
// represents 24674867/256 = 96386.2 Pa = 963.862 hPa.
//
// The operation order follows the Bosch reference code; it keeps every
// intermediate value within 64 bits.
func (c *Calibration) compensatePressureInt(raw, tFine int32) (int64, bool) {
	raw >>= 4
	var1 := int64(tFine) - 128000
	var2 := var1 * var1 * int64(c.P6)
	var2 += (var1 * int64(c.P5)) << 17
	var2 += int64(c.P4) << 35
	var1 = ((var1 * var1 * int64(c.P3)) >> 8) + ((var1 * int64(c.P2)) << 12)
	var1 = (((int64(1) << 47) + var1) * int64(c.P1)) >> 33
	if var1 == 0 {
		return 0, false
	}
	p := 1048576 - int64(raw)
	p = (((p << 31) - var2) * 3125) / var1
	var1 = (int64(c.P9) * (p >> 13) * (p >> 13)) >> 25
	var2 = (int64(c.P8) * p) >> 19
	p = ((p + var1 + var2) >> 8) + (int64(c.P7) << 4)
	return p, true
}

func (c Calibration) String() string {
	return fmt.Sprintf("T1=%d T2=%d T3=%d P1=%d P2=%d P3=%d P4=%d P5=%d P6=%d P7=%d P8=%d P9=%d",
		c.T1, c.T2, c.T3, c.P1, c.P2, c.P3, c.P4, c.P5, c.P6, c.P7, c.P8, c.P9)
}
