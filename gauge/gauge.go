// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge implements a one line display.Drawer that outputs to a
// terminal using ANSI color codes, and draws environmental readings on it.
//
// The bar length follows the pressure and its color the temperature.
package gauge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for this display.
type Opts struct {
	// Width is the number of cells of the bar.
	Width int
	// Min and Max are the pressures shown as an empty and a full bar.
	Min, Max physic.Pressure
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// W defaults to stdout.
	W io.Writer
}

// DefaultOpts covers the usual barometric range at low altitude.
var DefaultOpts = Opts{
	Width: 40,
	Min:   950 * 100 * physic.Pascal,
	Max:   1050 * 100 * physic.Pascal,
}

// Dev is a single line gauge that outputs to the console.
type Dev struct {
	w        io.Writer
	l        int
	min, max physic.Pressure
	palette  ansi256.Palette

	pixels []byte
	label  string
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 0 {
		return nil, errors.New("gauge: width must be positive")
	}
	if opts.Max <= opts.Min {
		return nil, errors.New("gauge: max must be above min")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		l:       opts.Width,
		min:     opts.Min,
		max:     opts.Max,
		palette: *p,
		pixels:  make([]byte, 3*opts.Width),
	}, nil
}

func (d *Dev) String() string {
	return "Gauge"
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show draws the environmental reading.
//
// The bar is filled in proportion to the pressure between Min and Max, in a
// color going from blue at 0°C to red at 40°C.
func (d *Dev) Show(e physic.Env) error {
	n := d.cells(e.Pressure)
	c := temperatureColor(e.Temperature)
	for i := 0; i < d.l; i++ {
		var r, g, b byte
		if i < n {
			r, g, b = c.R, c.G, c.B
		}
		d.pixels[3*i] = r
		d.pixels[3*i+1] = g
		d.pixels[3*i+2] = b
	}
	d.label = fmt.Sprintf("%s %s", e.Temperature, e.Pressure)
	_, err := d.refresh()
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("gauge: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

// cells returns how many cells are lit for p.
func (d *Dev) cells(p physic.Pressure) int {
	switch {
	case p <= d.min:
		return 0
	case p >= d.max:
		return d.l
	}
	return int(int64(d.l) * int64(p-d.min) / int64(d.max-d.min))
}

func temperatureColor(t physic.Temperature) color.NRGBA {
	c := float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
	switch {
	case c < 0:
		c = 0
	case c > 40:
		c = 40
	}
	r := byte(255 * c / 40)
	return color.NRGBA{R: r, B: 255 - r, A: 255}
}

func (d *Dev) refresh() (int, error) {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(d.label)
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
