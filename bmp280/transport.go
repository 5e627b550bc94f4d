// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// DebugF the debug function type.
type DebugF func(string, ...interface{})

// Bus is the transport the device is wired to.
type Bus uint8

const (
	// I2C is the two wire bus.
	I2C Bus = iota
	// SPI is a hardware four wire bus.
	SPI
	// SoftSPI is a four wire bus clocked by GPIO pins, see package bitbang.
	SoftSPI
)

func (b Bus) String() string {
	switch b {
	case I2C:
		return "I²C"
	case SPI:
		return "SPI"
	case SoftSPI:
		return "SoftSPI"
	default:
		return fmt.Sprintf("Bus(%d)", uint8(b))
	}
}

// transport moves register contents over one of the supported buses.
type transport interface {
	readReg(reg byte, b []byte) error
	writeReg(reg, value byte) error
	String() string
}

type i2cTransport struct {
	d *i2c.Dev
}

func (t *i2cTransport) readReg(reg byte, b []byte) error {
	return t.d.Tx([]byte{reg}, b)
}

func (t *i2cTransport) writeReg(reg, value byte) error {
	return t.d.Tx([]byte{reg, value}, nil)
}

func (t *i2cTransport) String() string {
	return t.d.String()
}

// spiTransport serves both the hardware and the bit banged bus. Bit 7 of the
// register address selects a read.
type spiTransport struct {
	c spi.Conn
}

func (t *spiTransport) readReg(reg byte, b []byte) error {
	w := make([]byte, len(b)+1)
	r := make([]byte, len(b)+1)
	w[0] = reg | 0x80
	if err := t.c.Tx(w, r); err != nil {
		return err
	}
	copy(b, r[1:])
	return nil
}

func (t *spiTransport) writeReg(reg, value byte) error {
	return t.c.Tx([]byte{reg &^ 0x80, value}, nil)
}

func (t *spiTransport) String() string {
	return t.c.String()
}

// timeoutTransport fails a transaction that doesn't complete within d. The
// underlying transaction is not cancelled; its result is discarded.
type timeoutTransport struct {
	t transport
	d time.Duration
}

func (t *timeoutTransport) readReg(reg byte, b []byte) error {
	tmp := make([]byte, len(b))
	if err := t.run(func() error { return t.t.readReg(reg, tmp) }); err != nil {
		return err
	}
	copy(b, tmp)
	return nil
}

func (t *timeoutTransport) writeReg(reg, value byte) error {
	return t.run(func() error { return t.t.writeReg(reg, value) })
}

func (t *timeoutTransport) String() string {
	return t.t.String()
}

func (t *timeoutTransport) run(f func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- f()
	}()
	timer := time.NewTimer(t.d)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrBusTimeout
	}
}

// registers implements the register level accessors used by the driver on
// top of a transport.
type registers struct {
	t     transport
	debug DebugF
}

func (r *registers) read8(reg byte) (byte, error) {
	var b [1]byte
	if err := r.t.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	r.debug("read register %#x value %#x", reg, b[0])
	return b[0], nil
}

// read16 returns the two bytes starting at reg, most significant first.
func (r *registers) read16(reg byte) (uint16, error) {
	var b [2]byte
	if err := r.t.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	v := uint16(b[0])<<8 | uint16(b[1])
	r.debug("read register %#x value %#04x", reg, v)
	return v, nil
}

// read16LE is used for the calibration words, stored least significant byte
// first.
func (r *registers) read16LE(reg byte) (uint16, error) {
	v, err := r.read16(reg)
	if err != nil {
		return 0, err
	}
	return v>>8 | v<<8, nil
}

func (r *registers) readS16LE(reg byte) (int16, error) {
	v, err := r.read16LE(reg)
	return int16(v), err
}

// burst reads n consecutive registers in a single transaction.
func (r *registers) burst(reg byte, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := r.t.readReg(reg, b); err != nil {
		return nil, err
	}
	r.debug("burst read register %#x % x", reg, b)
	return b, nil
}

func (r *registers) write8(reg, value byte) error {
	r.debug("write register %#x value %#x", reg, value)
	return r.t.writeReg(reg, value)
}

func noop(string, ...interface{}) {}
