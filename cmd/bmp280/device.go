// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/GermanBionicSystems/barometer/bmp280"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// openDevice opens the bus selected by a and initializes the sensor on it.
// The returned function closes the bus.
func openDevice(a *Args) (*bmp280.Dev, func() error, error) {
	opts, err := a.sensorOpts()
	if err != nil {
		return nil, nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	switch a.Bus {
	case "i2c":
		b, err := i2creg.Open(a.I2C)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open I²C: %w", err)
		}
		d, err := bmp280.NewI2C(b, a.Addr, opts)
		if err != nil {
			b.Close()
			return nil, nil, err
		}
		return d, b.Close, nil
	case "spi":
		p, err := spireg.Open(a.SPI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SPI: %w", err)
		}
		d, err := bmp280.NewSPI(p, opts)
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		return d, p.Close, nil
	case "softspi":
		pins := make([]gpio.PinIO, 4)
		for i, name := range []string{a.CLK, a.MOSI, a.MISO, a.CS} {
			if pins[i] = gpioreg.ByName(name); pins[i] == nil {
				return nil, nil, fmt.Errorf("unknown pin %q", name)
			}
		}
		d, err := bmp280.NewSoftSPI(pins[0], pins[1], pins[2], pins[3], opts)
		if err != nil {
			return nil, nil, err
		}
		return d, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown bus %q", a.Bus)
	}
}
