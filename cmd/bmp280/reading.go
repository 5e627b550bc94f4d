// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/barometer/bmp280"
	"periph.io/x/conn/v3/physic"
)

// Reading is one measurement as published by every output.
type Reading struct {
	Time time.Time `json:"time"`
	// Temperature in °C.
	Temperature float64 `json:"temperature"`
	// Pressure in hPa. Omitted when pressure measurement is off.
	Pressure float64 `json:"pressure,omitempty"`
	// Altitude in m, from Pressure and the configured sea level pressure.
	Altitude float64 `json:"altitude,omitempty"`

	env physic.Env
}

func newReading(e physic.Env, seaLevelHPa float64, t time.Time) Reading {
	r := Reading{
		Time:        t.UTC(),
		Temperature: float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Kelvin),
		env:         e,
	}
	if e.Pressure != 0 {
		r.Pressure = float64(e.Pressure) / float64(100*physic.Pascal)
		r.Altitude = bmp280.AltitudeFromPressure(seaLevelHPa, r.Pressure)
	}
	return r
}

func (r Reading) String() string {
	if r.env.Pressure == 0 {
		return r.env.Temperature.String()
	}
	return fmt.Sprintf("%s %s %.1fm", r.env.Temperature, r.env.Pressure, r.Altitude)
}

// latest holds the most recent reading for the HTTP handlers.
type latest struct {
	mu sync.Mutex
	r  Reading
	ok bool
}

func (l *latest) set(r Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r = r
	l.ok = true
}

func (l *latest) get() (Reading, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r, l.ok
}
