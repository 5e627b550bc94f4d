// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbangtest simulates a SPI peripheral wired to fake GPIO pins, to
// test code clocking a bus in software.
//
// The peripheral samples MOSI on the rising clock edge and changes MISO on
// the falling edge, so it works with SPI modes 0 and 3.
package bitbangtest

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Device is a simulated SPI peripheral.
type Device struct {
	// Respond returns the next byte to shift out, given the bytes received
	// so far in the current transaction.
	Respond func(in []byte) byte
	// Done is called when the chip select line is released, with the bytes
	// received during the transaction. It may be nil.
	Done func(in []byte)

	CLK  *ClockPin
	MOSI *gpiotest.Pin
	MISO *gpiotest.Pin
	CS   *SelectPin

	mu        sync.Mutex
	selected  bool
	in        []byte
	cur       byte
	sampled   int
	presented int
	ops       [][]byte
}

// NewDevice returns a Device with its four pins.
func NewDevice(respond func(in []byte) byte) *Device {
	d := &Device{
		Respond: respond,
		MOSI:    &gpiotest.Pin{N: "MOSI", Num: 2},
		MISO:    &gpiotest.Pin{N: "MISO", Num: 3},
	}
	d.CLK = &ClockPin{Pin: gpiotest.Pin{N: "CLK", Num: 1}, d: d}
	d.CS = &SelectPin{Pin: gpiotest.Pin{N: "CS", Num: 4, L: gpio.High}, d: d}
	return d
}

// Ops returns the bytes received, one slice per transaction.
func (d *Device) Ops() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.ops))
	copy(out, d.ops)
	return out
}

func (d *Device) chipSelect(l gpio.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l == gpio.Low && !d.selected {
		d.selected = true
		d.in = nil
		d.cur = 0
		d.sampled = 0
		d.presented = 0
		if d.CLK.Read() == gpio.Low {
			// Mode 0: the first bit must be ready before the first edge.
			d.present()
		}
		return
	}
	if l == gpio.High && d.selected {
		d.selected = false
		in := d.in
		d.ops = append(d.ops, in)
		if d.Done != nil {
			d.Done(in)
		}
	}
}

func (d *Device) clock(l gpio.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.selected {
		return
	}
	if l == gpio.High {
		d.cur <<= 1
		if d.MOSI.Read() {
			d.cur |= 1
		}
		d.sampled++
		if d.sampled%8 == 0 {
			d.in = append(d.in, d.cur)
			d.cur = 0
		}
		return
	}
	if d.presented == d.sampled {
		d.present()
	}
}

// present drives MISO with the next bit.
func (d *Device) present() {
	b := byte(0xFF)
	if d.Respond != nil {
		b = d.Respond(d.in)
	}
	bit := uint(7 - d.presented%8)
	d.MISO.Lock()
	d.MISO.L = gpio.Level(b&(1<<bit) != 0)
	d.MISO.Unlock()
	d.presented++
}

// ClockPin is the clock input of the Device.
type ClockPin struct {
	gpiotest.Pin
	d *Device
}

// Out implements gpio.PinOut.
func (p *ClockPin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.d.clock(l)
	return nil
}

// SelectPin is the active low chip select input of the Device.
type SelectPin struct {
	gpiotest.Pin
	d *Device
}

// Out implements gpio.PinOut.
func (p *SelectPin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.d.chipSelect(l)
	return nil
}
