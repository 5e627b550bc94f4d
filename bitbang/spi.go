// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements a SPI port over plain GPIO pins.
//
// It is much slower than a SPI controller and its timing depends on the
// scheduler, but it works with any pin that can be driven and read. The
// receiving device clocks data on edges so an irregular clock is harmless.
package bitbang

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/cpu"
)

// SPI is a SPI port clocked by software.
type SPI struct {
	clk  gpio.PinOut
	mosi gpio.PinOut
	miso gpio.PinIn
	cs   gpio.PinOut

	mu        sync.Mutex
	maxHz     physic.Frequency
	halfCycle time.Duration
	idle      gpio.Level
	cpha      bool
	lsbFirst  bool
	noCS      bool
	connected bool
}

// New returns a SPI port using the pins provided.
//
// cs may be nil if the chip select line is handled by the caller or the bus
// has a single device with its select tied low.
func New(clk, mosi gpio.PinOut, miso gpio.PinIn, cs gpio.PinOut) (*SPI, error) {
	if clk == nil || mosi == nil || miso == nil {
		return nil, errors.New("bitbang: clk, mosi and miso pins are required")
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("bitbang: %w", err)
		}
	}
	if err := mosi.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bitbang: %w", err)
	}
	if err := miso.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("bitbang: %w", err)
	}
	return &SPI{clk: clk, mosi: mosi, miso: miso, cs: cs}, nil
}

func (s *SPI) String() string {
	cs := "none"
	if s.cs != nil {
		cs = s.cs.String()
	}
	return fmt.Sprintf("bitbang-spi(%s, %s, %s, %s)", s.clk, s.mosi, s.miso, cs)
}

// Close deasserts the chip select line.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.cs == nil {
		return nil
	}
	return s.cs.Out(gpio.High)
}

// LimitSpeed implements spi.Port.
func (s *SPI) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return errors.New("bitbang: invalid frequency")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxHz = f
	if s.connected && f.Period()/2 > s.halfCycle {
		s.halfCycle = f.Period() / 2
	}
	return nil
}

// Connect implements spi.Port.
//
// The 4 clock modes are supported, with 8 bits words only. f may be 0 to
// clock as fast as the pins can be toggled.
func (s *SPI) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, errors.New("bitbang: only 8 bits words are supported")
	}
	if mode&spi.HalfDuplex != 0 {
		return nil, errors.New("bitbang: half duplex is not supported")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil, errors.New("bitbang: Connect() can only be called once")
	}
	if s.maxHz != 0 && (f == 0 || f > s.maxHz) {
		f = s.maxHz
	}
	if f > 0 {
		s.halfCycle = f.Period() / 2
	}
	s.noCS = mode&spi.NoCS != 0 || s.cs == nil
	s.lsbFirst = mode&spi.LSBFirst != 0
	m := mode &^ (spi.NoCS | spi.LSBFirst)
	s.idle = gpio.Level(m == spi.Mode2 || m == spi.Mode3)
	s.cpha = m == spi.Mode1 || m == spi.Mode3
	if err := s.clk.Out(s.idle); err != nil {
		return nil, fmt.Errorf("bitbang: %w", err)
	}
	s.connected = true
	return s, nil
}

// Duplex implements conn.Conn.
func (s *SPI) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn.
//
// r may be nil. Otherwise w and r must have the same length.
func (s *SPI) Tx(w, r []byte) error {
	if len(r) != 0 && len(r) != len(w) {
		return errors.New("bitbang: w and r must have the same length")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return errors.New("bitbang: not connected")
	}
	if err := s.selectDev(true); err != nil {
		return err
	}
	if err := s.transfer(w, r); err != nil {
		_ = s.selectDev(false)
		return err
	}
	return s.selectDev(false)
}

// TxPackets implements spi.Conn.
//
// The chip select line is released between packets unless KeepCS is set.
func (s *SPI) TxPackets(p []spi.Packet) error {
	for i := range p {
		if p[i].BitsPerWord != 0 && p[i].BitsPerWord != 8 {
			return errors.New("bitbang: only 8 bits words are supported")
		}
		if len(p[i].R) != 0 && len(p[i].R) != len(p[i].W) {
			return errors.New("bitbang: w and r must have the same length")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return errors.New("bitbang: not connected")
	}
	selected := false
	for i := range p {
		if !selected {
			if err := s.selectDev(true); err != nil {
				return err
			}
			selected = true
		}
		if err := s.transfer(p[i].W, p[i].R); err != nil {
			_ = s.selectDev(false)
			return err
		}
		if !p[i].KeepCS {
			if err := s.selectDev(false); err != nil {
				return err
			}
			selected = false
		}
	}
	if selected {
		return s.selectDev(false)
	}
	return nil
}

// CLK implements spi.Pins.
func (s *SPI) CLK() gpio.PinOut {
	return s.clk
}

// MOSI implements spi.Pins.
func (s *SPI) MOSI() gpio.PinOut {
	return s.mosi
}

// MISO implements spi.Pins.
func (s *SPI) MISO() gpio.PinIn {
	return s.miso
}

// CS implements spi.Pins.
func (s *SPI) CS() gpio.PinOut {
	return s.cs
}

func (s *SPI) selectDev(active bool) error {
	if s.noCS {
		return nil
	}
	return s.cs.Out(gpio.Level(!active))
}

func (s *SPI) transfer(w, r []byte) error {
	for i := range w {
		b, err := s.xfer(w[i])
		if err != nil {
			return err
		}
		if len(r) != 0 {
			r[i] = b
		}
	}
	return nil
}

// xfer shifts out one byte on MOSI while shifting in one from MISO.
func (s *SPI) xfer(out byte) (byte, error) {
	var in byte
	for i := 0; i < 8; i++ {
		shift := uint(7 - i)
		if s.lsbFirst {
			shift = uint(i)
		}
		bit := gpio.Level(out&(1<<shift) != 0)
		if s.cpha {
			// Data changes on the leading edge and is sampled on the trailing
			// one.
			if err := s.clk.Out(!s.idle); err != nil {
				return 0, err
			}
			if err := s.mosi.Out(bit); err != nil {
				return 0, err
			}
			s.wait()
			if err := s.clk.Out(s.idle); err != nil {
				return 0, err
			}
			if s.miso.Read() {
				in |= 1 << shift
			}
			s.wait()
		} else {
			if err := s.mosi.Out(bit); err != nil {
				return 0, err
			}
			s.wait()
			if err := s.clk.Out(!s.idle); err != nil {
				return 0, err
			}
			if s.miso.Read() {
				in |= 1 << shift
			}
			s.wait()
			if err := s.clk.Out(s.idle); err != nil {
				return 0, err
			}
		}
	}
	return in, nil
}

// wait spins for half a clock cycle.
func (s *SPI) wait() {
	if s.halfCycle <= 0 {
		return
	}
	cpu.Nanospin(s.halfCycle)
}

var _ spi.PortCloser = &SPI{}
var _ spi.Conn = &SPI{}
var _ spi.Pins = &SPI{}
