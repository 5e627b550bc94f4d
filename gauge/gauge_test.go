// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gauge

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
	"periph.io/x/conn/v3/physic"
)

func newGauge(t *testing.T, buf *bytes.Buffer, width int) *Dev {
	d, err := New(&Opts{
		Width: width,
		Min:   90 * physic.KiloPascal,
		Max:   110 * physic.KiloPascal,
		W:     buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func expected(cells []color.NRGBA, label string) string {
	s := "\r\033[0m"
	for _, c := range cells {
		s += ansi256.Default.Block(c)
	}
	return s + "\033[0m " + label
}

func TestShow(t *testing.T) {
	buf := bytes.Buffer{}
	d := newGauge(t, &buf, 4)
	e := physic.Env{
		Temperature: physic.ZeroCelsius + 40*physic.Kelvin,
		Pressure:    100 * physic.KiloPascal,
	}
	if err := d.Show(e); err != nil {
		t.Fatal(err)
	}
	red := color.NRGBA{R: 255, A: 255}
	black := color.NRGBA{A: 255}
	want := expected([]color.NRGBA{red, red, black, black}, "40°C 100kPa")
	if got := buf.String(); got != want {
		t.Fatalf("%q\n!=\n%q", got, want)
	}
}

func TestShow_clamp(t *testing.T) {
	buf := bytes.Buffer{}
	d := newGauge(t, &buf, 3)
	e := physic.Env{
		Temperature: physic.ZeroCelsius - 10*physic.Kelvin,
		Pressure:    200 * physic.KiloPascal,
	}
	if err := d.Show(e); err != nil {
		t.Fatal(err)
	}
	blue := color.NRGBA{B: 255, A: 255}
	if !strings.HasPrefix(buf.String(), expected([]color.NRGBA{blue, blue, blue}, "")) {
		t.Fatalf("%q", buf.String())
	}
	if n := d.cells(0); n != 0 {
		t.Fatal(n)
	}
}

func TestTemperatureColor(t *testing.T) {
	c := temperatureColor(physic.ZeroCelsius + 20*physic.Kelvin)
	if c.R != 127 || c.B != 128 || c.G != 0 {
		t.Fatalf("%+v", c)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(&Opts{Width: 0, Max: 1}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(&Opts{Width: 1, Min: 2, Max: 1}); err == nil {
		t.Fatal("expected error")
	}
	d, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Bounds() != image.Rect(0, 0, 40, 1) {
		t.Fatal(d.Bounds())
	}
	if d.String() != "Gauge" {
		t.Fatal(d.String())
	}
}

func TestDraw(t *testing.T) {
	buf := bytes.Buffer{}
	d := newGauge(t, &buf, 2)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	g := color.NRGBA{G: 255, A: 255}
	img.SetNRGBA(1, 0, g)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if want := expected([]color.NRGBA{{A: 255}, g}, ""); buf.String() != want {
		t.Fatalf("%q != %q", buf.String(), want)
	}
	buf.Reset()
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Fatal("expected error")
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Fatalf("%q", buf.String())
	}
}
