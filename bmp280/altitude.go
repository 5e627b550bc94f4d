// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

// SeaLevel is the standard atmospheric pressure at sea level.
const SeaLevel = 101325 * physic.Pascal

// AltitudeFromPressure returns the altitude in meters for the atmospheric
// pressure measured, given the pressure at sea level. Both pressures are in
// hPa.
//
// The equation comes from the BMP180 datasheet, page 16. It is more accurate
// at high altitude than the one usually found on wikipedia.
func AltitudeFromPressure(seaLevelHPa, atmosphericHPa float64) float64 {
	return 44330 * (1 - math.Pow(atmosphericHPa/seaLevelHPa, 0.1903))
}

// SeaLevelForAltitude returns the pressure at sea level in hPa given the
// altitude in meters and the atmospheric pressure in hPa measured there.
func SeaLevelForAltitude(altitudeMeters, atmosphericHPa float64) float64 {
	return atmosphericHPa / math.Pow(1-altitudeMeters/44330, 5.255)
}

func hectoPascal(p physic.Pressure) float64 {
	return float64(p) / float64(100*physic.Pascal)
}
