// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/physic"
)

var errPressureOff = errors.New("bmp280: pressure measurement is off")

type sampleKind int

const (
	senseTemperature sampleKind = iota
	senseTemperaturePressure
)

// rawSample holds uncompensated register values. It is consumed right away
// and never kept.
type rawSample struct {
	temp  int32
	press int32
}

// acquire fetches the raw values with a single burst so that temperature
// and pressure belong to the same measurement cycle.
//
// Pressure: 0xF7~0xF9
// Temperature: 0xFA~0xFC
//
// It must be called with d.mu lock held.
func (d *Dev) acquire(kind sampleKind) (rawSample, error) {
	var s rawSample
	if d.opts.Mode != Normal {
		if err := d.measureForced(); err != nil {
			return s, err
		}
	}
	if kind == senseTemperature {
		b, err := d.r.burst(regTemp, 3)
		if err != nil {
			return s, err
		}
		s.temp = field24(b)
		return s, nil
	}
	b, err := d.r.burst(regPress, 6)
	if err != nil {
		return s, err
	}
	s.press = field24(b[0:3])
	s.temp = field24(b[3:6])
	return s, nil
}

func field24(b []byte) int32 {
	return int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
}

// measureForced starts one measurement and waits for it to complete.
//
// It must be called with d.mu lock held.
func (d *Dev) measureForced() error {
	c := ctrlMeas{temperature: d.opts.Temperature, pressure: d.opts.Pressure, mode: Forced}
	if err := d.r.write8(regCtrlMeas, c.bytes()); err != nil {
		return err
	}
	wait := measurementTime(d.opts.Temperature, d.opts.Pressure)
	time.Sleep(wait)
	// The status bit may lag behind the nominal conversion time, give it a
	// few more chances before giving up.
	for i := 0; i < 10; i++ {
		s, err := d.r.read8(regStatus)
		if err != nil {
			return err
		}
		if s&statusMeasuring == 0 {
			return nil
		}
		time.Sleep(wait / 4)
	}
	return ErrNotReady
}

// readTemperature reads the temperature registers only.
//
// It must be called with d.mu lock held.
func (d *Dev) readTemperature() (physic.Temperature, error) {
	s, err := d.acquire(senseTemperature)
	if err != nil {
		return 0, err
	}
	t, _ := d.cal.compensateTempInt(s.temp)
	return centiCelsius(t), nil
}

// readBoth reads temperature then pressure from the same sample.
//
// It must be called with d.mu lock held.
func (d *Dev) readBoth() (physic.Temperature, physic.Pressure, error) {
	if d.opts.Pressure == Off {
		return 0, 0, errPressureOff
	}
	s, err := d.acquire(senseTemperaturePressure)
	if err != nil {
		return 0, 0, err
	}
	t, tFine := d.cal.compensateTempInt(s.temp)
	p, ok := d.cal.compensatePressureInt(s.press, tFine)
	if !ok {
		return centiCelsius(t), 0, ErrUndefinedPressure
	}
	return centiCelsius(t), q248Pascal(p), nil
}

// centiCelsius converts the compensated temperature to Kelvin.
func centiCelsius(t int32) physic.Temperature {
	return physic.Temperature(t)*10*physic.MilliKelvin + physic.ZeroCelsius
}

// q248Pascal converts the compensated pressure with 8 bits of fractional
// Pascal.
func q248Pascal(p int64) physic.Pressure {
	return physic.Pressure(p) * 3906250 * physic.NanoPascal
}
