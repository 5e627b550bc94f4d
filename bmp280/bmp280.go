// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/barometer/bitbang"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts is optional options to pass to the constructor.
//
// The zero value selects Sleep mode with both measurements off, use
// DefaultOpts as a starting point.
type Opts struct {
	// ChipID is the expected content of the id register. Engineering samples
	// report 0x56 or 0x57. Leave 0 for ChipID.
	ChipID byte
	// Temperature oversampling. Must not be Off, pressure compensation needs
	// the temperature.
	Temperature Oversampling
	// Pressure oversampling. Off disables pressure measurement.
	Pressure Oversampling
	// Mode is Normal for continuous measurement or Forced to measure on each
	// read.
	Mode Mode
	// Filter is the IIR filter coefficient.
	Filter Filter
	// Standby is the pause between two measurements in Normal mode.
	Standby Standby
	// BusTimeout bounds each bus transaction. 0 means no timeout.
	BusTimeout time.Duration
}

// DefaultOpts is the recommended default options. It sets control register
// 0xF4 to 0x3F.
var DefaultOpts = Opts{
	ChipID:      ChipID,
	Temperature: O1x,
	Pressure:    O16x,
	Mode:        Normal,
	Filter:      NoFilter,
	Standby:     S0_5ms,
}

// Dev is a handle to an initialized BMP280 device.
type Dev struct {
	r    registers
	bus  Bus
	opts Opts
	cal  Calibration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewI2C returns an object that communicates over I²C to a BMP280
// environmental sensor.
//
// The address is normally Address; AlternateAddress when SDO is pulled low.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return newDev(&i2cTransport{d: &i2c.Dev{Bus: b, Addr: addr}}, I2C, opts)
}

// NewSPI returns an object that communicates over SPI to a BMP280
// environmental sensor.
//
// The chip select line is handled by the SPI port.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	// It works both in Mode0 and Mode3.
	c, err := p.Connect(5*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("bmp280: %w", err)
	}
	return newDev(&spiTransport{c: c}, SPI, opts)
}

// NewSoftSPI returns an object that communicates to a BMP280 over SPI clocked
// by the GPIO pins provided. Use it on boards without a SPI controller or
// when its pins are already taken.
func NewSoftSPI(clk, mosi gpio.PinOut, miso gpio.PinIn, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	s, err := bitbang.New(clk, mosi, miso, cs)
	if err != nil {
		return nil, fmt.Errorf("bmp280: %w", err)
	}
	c, err := s.Connect(500*physic.KiloHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("bmp280: %w", err)
	}
	return newDev(&spiTransport{c: c}, SoftSPI, opts)
}

func newDev(t transport, bus Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{bus: bus, opts: *opts}
	if d.opts.ChipID == 0 {
		d.opts.ChipID = ChipID
	}
	if d.opts.BusTimeout > 0 {
		t = &timeoutTransport{t: t, d: d.opts.BusTimeout}
	}
	d.r = registers{t: t, debug: noop}
	if err := d.makeDev(); err != nil {
		return nil, err
	}
	return d, nil
}

// makeDev verifies the chip id, loads the calibration then configures the
// device.
func (d *Dev) makeDev() error {
	if d.opts.Temperature == Off {
		return errors.New("bmp280: temperature measurement is required")
	}
	id, err := d.r.read8(regChipID)
	if err != nil {
		return fmt.Errorf("bmp280: failed to read chip id: %w", err)
	}
	if id != d.opts.ChipID {
		return &DeviceNotFoundError{Want: d.opts.ChipID, Got: id}
	}
	if d.cal, err = loadCalibration(&d.r); err != nil {
		return fmt.Errorf("bmp280: failed to read calibration: %w", err)
	}
	if err = d.configure(); err != nil {
		return fmt.Errorf("bmp280: failed to configure: %w", err)
	}
	return nil
}

// configure writes config before ctrl_meas, writes to config may be ignored
// in Normal mode.
func (d *Dev) configure() error {
	cfg := config{standby: d.opts.Standby, filter: d.opts.Filter}
	if err := d.r.write8(regConfig, cfg.bytes()); err != nil {
		return err
	}
	mode := d.opts.Mode
	if mode != Normal {
		// Forced measurements are started by each read.
		mode = Sleep
	}
	c := ctrlMeas{temperature: d.opts.Temperature, pressure: d.opts.Pressure, mode: mode}
	return d.r.write8(regCtrlMeas, c.bytes())
}

// EnableDebug traces every register access with f.
func (d *Dev) EnableDebug(f DebugF) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f == nil {
		f = noop
	}
	d.r.debug = f
}

// Bus returns the transport used to talk to the device.
func (d *Dev) Bus() Bus {
	return d.bus
}

// Calibration returns the coefficients read from the device.
func (d *Dev) Calibration() Calibration {
	return d.cal
}

// ReadSampling returns the sampling configuration as currently set in the
// device registers.
func (d *Dev) ReadSampling() (Opts, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := Opts{ChipID: d.opts.ChipID, BusTimeout: d.opts.BusTimeout}
	b, err := d.r.burst(regCtrlMeas, 2)
	if err != nil {
		return o, err
	}
	c := parseCtrlMeas(b[0])
	cfg := parseConfig(b[1])
	o.Temperature, o.Pressure, o.Mode = c.temperature, c.pressure, c.mode
	o.Filter, o.Standby = cfg.filter, cfg.standby
	if o.Mode == Sleep && d.opts.Mode == Forced {
		o.Mode = Forced
	}
	return o, nil
}

// SetSampling changes the measurement configuration of the device.
func (d *Dev) SetSampling(mode Mode, temperature, pressure Oversampling, filter Filter, standby Standby) error {
	if temperature == Off {
		return errors.New("bmp280: temperature measurement is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Mode = mode
	d.opts.Temperature = temperature
	d.opts.Pressure = pressure
	d.opts.Filter = filter
	d.opts.Standby = standby
	return d.configure()
}

// Reset does a soft reset of the device then restores the sampling
// configuration. The calibration is kept.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.r.write8(regSoftReset, softResetCode); err != nil {
		return err
	}
	// Start-up time is 2ms per datasheet.
	time.Sleep(2 * time.Millisecond)
	return d.configure()
}

// ReadTemperature returns the temperature. Only the temperature registers are
// read.
func (d *Dev) ReadTemperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readTemperature()
}

// ReadPressure returns the pressure.
//
// Pressure compensation needs the temperature of the same measurement so
// both are read.
func (d *Dev) ReadPressure() (physic.Pressure, error) {
	_, p, err := d.ReadBoth()
	return p, err
}

// ReadBoth returns temperature and pressure from a single measurement.
func (d *Dev) ReadBoth() (physic.Temperature, physic.Pressure, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readBoth()
}

// ReadAltitude returns the altitude computed from the current pressure and
// the pressure at sea level. Use SeaLevel when the local value isn't known.
func (d *Dev) ReadAltitude(seaLevel physic.Pressure) (physic.Distance, error) {
	p, err := d.ReadPressure()
	if err != nil {
		return 0, err
	}
	m := AltitudeFromPressure(hectoPascal(seaLevel), hectoPascal(p))
	return physic.Distance(m * float64(physic.Metre)), nil
}

// Sense requests a one time measurement. Temperature has a resolution of
// 0.01°C and pressure 1/256 Pa.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sense(e)
}

// SenseContinuous returns measurements on a continuous basis, with the same
// resolution as Sense.
//
// The application must call Halt() to stop the sensing when done to stop the
// sensor and close the channel.
//
// It's the responsibility of the caller to retrieve the values from the
// channel as fast as possible, otherwise the interval may not be respected.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m := measurementTime(d.opts.Temperature, d.opts.Pressure); interval < m {
		return nil, fmt.Errorf("bmp280: interval must be at least %s", m)
	}
	if d.stop != nil {
		return nil, errors.New("bmp280: already sensing continuously")
	}
	sensing := make(chan physic.Env)
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer d.wg.Done()
		defer close(sensing)
		d.sensingContinuous(interval, sensing, stop)
	}(d.stop)
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	if d.opts.Pressure != Off {
		e.Pressure = 3906250 * physic.NanoPascal
	}
}

// Halt stops the BMP280 from acquiring measurements as initiated by
// SenseContinuous() and puts it to sleep.
//
// It is recommended to call this function before terminating the process to
// reduce idle power usage and a goroutine leak.
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
		d.mu.Unlock()
		d.wg.Wait()
		d.mu.Lock()
	}
	defer d.mu.Unlock()
	c := ctrlMeas{temperature: d.opts.Temperature, pressure: d.opts.Pressure, mode: Sleep}
	return d.r.write8(regCtrlMeas, c.bytes())
}

func (d *Dev) String() string {
	return fmt.Sprintf("BMP280{%s}", d.r.t)
}

func (d *Dev) sensingContinuous(interval time.Duration, sensing chan<- physic.Env, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		// Do one initial sensing right away.
		e := physic.Env{}
		d.mu.Lock()
		err := d.sense(&e)
		d.mu.Unlock()
		if err == nil {
			select {
			case sensing <- e:
			case <-stop:
				return
			}
		}
		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}

// sense leaves Pressure untouched when pressure measurement is off.
//
// It must be called with d.mu lock held.
func (d *Dev) sense(e *physic.Env) error {
	if d.opts.Pressure == Off {
		t, err := d.readTemperature()
		if err != nil {
			return err
		}
		e.Temperature = t
		return nil
	}
	t, p, err := d.readBoth()
	if err != nil {
		return err
	}
	e.Temperature = t
	e.Pressure = p
	return nil
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
