// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

// vendorCal is the example calibration from the datasheet section 8.1.
var vendorCal = Calibration{
	T1: 27504, T2: 26435, T3: -1000,
	P1: 36477, P2: -10685, P3: 3024, P4: 2855, P5: 140,
	P6: -7, P7: 15500, P8: -14600, P9: 6000,
}

// Raw register values matching the datasheet example, 20 bits ADC output in
// the upper bits of the 24 bits registers.
const (
	vendorRawTemp  int32 = 519888 << 4
	vendorRawPress int32 = 415148 << 4
)

func TestCompensateTemperature(t *testing.T) {
	c := vendorCal
	temp, tFine := c.CompensateTemperature(vendorRawTemp)
	if temp != 25.08 {
		t.Fatalf("temperature %g, want 25.08", temp)
	}
	if tFine != 128422 {
		t.Fatalf("t_fine %d, want 128422", tFine)
	}
	for i := 0; i < 3; i++ {
		if temp2, tFine2 := c.CompensateTemperature(vendorRawTemp); temp2 != temp || tFine2 != tFine {
			t.Fatalf("not deterministic: %g/%d != %g/%d", temp2, tFine2, temp, tFine)
		}
	}
}

func TestCompensatePressure(t *testing.T) {
	c := vendorCal
	_, tFine := c.CompensateTemperature(vendorRawTemp)
	p, ok := c.CompensatePressure(vendorRawPress, tFine)
	if !ok {
		t.Fatal("unexpected undefined pressure")
	}
	if math.Abs(p-100653.27) > 0.1 {
		t.Fatalf("pressure %g, want 100653.27", p)
	}
	if q, _ := c.compensatePressureInt(vendorRawPress, tFine); q != 25767233 {
		t.Fatalf("Q24.8 pressure %d, want 25767233", q)
	}
}

func TestCompensatePressure_undefined(t *testing.T) {
	c := vendorCal
	c.P1 = 0
	p, ok := c.CompensatePressure(vendorRawPress, 0)
	if ok {
		t.Fatal("expected the division guard to fire")
	}
	if p != 0 {
		t.Fatalf("pressure %g, want 0", p)
	}
}

func TestCompensate_extremes(t *testing.T) {
	data := []struct {
		name      string
		raw       int32
		wantTFine int32
	}{
		{"zero", 0, -721301},
		{"ones", 0xFFFFF0, 960246},
		{"all bits", 0xFFFFFF, 960246},
	}
	c := vendorCal
	for _, line := range data {
		temp, tFine := c.CompensateTemperature(line.raw)
		if tFine != line.wantTFine {
			t.Errorf("%s: t_fine %d, want %d", line.name, tFine, line.wantTFine)
		}
		p, ok := c.CompensatePressure(line.raw, tFine)
		if !ok {
			t.Errorf("%s: unexpected undefined pressure", line.name)
		}
		if math.IsNaN(temp) || math.IsInf(temp, 0) || math.IsNaN(p) || math.IsInf(p, 0) {
			t.Errorf("%s: non finite result %g %g", line.name, temp, p)
		}
	}
}

func TestCompensate_zeroCalibration(t *testing.T) {
	var c Calibration
	temp, tFine := c.CompensateTemperature(vendorRawTemp)
	if temp != 0 || tFine != 0 {
		t.Fatalf("got %g/%d", temp, tFine)
	}
	if _, ok := c.CompensatePressure(vendorRawPress, tFine); ok {
		t.Fatal("blank calibration must not yield a pressure")
	}
}

func TestCalibration_String(t *testing.T) {
	want := "T1=27504 T2=26435 T3=-1000 P1=36477 P2=-10685 P3=3024 P4=2855 P5=140 P6=-7 P7=15500 P8=-14600 P9=6000"
	if s := vendorCal.String(); s != want {
		t.Fatalf("%q != %q", s, want)
	}
}

func TestQ248Pascal_wide(t *testing.T) {
	c := vendorCal
	c.P1 = 1
	_, tFine := c.CompensateTemperature(vendorRawTemp)
	q, ok := c.compensatePressureInt(0, tFine)
	if !ok {
		t.Fatal("unexpected undefined pressure")
	}
	if q != 1560090374724 {
		t.Fatalf("Q24.8 pressure %d, want 1560090374724", q)
	}
	p := q248Pascal(q)
	if want := physic.Pressure(q) * 3906250; p != want {
		t.Fatalf("pressure %s, want %s", p, want)
	}
	if pa := int64(p / physic.Pascal); pa != 6094103026 {
		t.Fatalf("pressure %d Pa, want 6094103026", pa)
	}
	if f, _ := c.CompensatePressure(0, tFine); math.Abs(f-float64(p)/float64(physic.Pascal)) > f*1e-3 {
		t.Fatalf("float %g and integer %s disagree", f, p)
	}
}
