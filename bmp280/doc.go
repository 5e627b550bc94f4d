// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bmp280 controls a Bosch BMP280 barometric pressure and temperature
// sensor over I²C, SPI or a software SPI clocked over GPIO pins.
//
// The device carries 12 factory calibration coefficients that are read once
// when the Dev is created. Raw readings are compensated with the fixed point
// formulas published by Bosch; temperature compensation yields a fine
// temperature term that pressure compensation requires, so pressure is always
// read together with temperature from a single burst.
//
// Range: -40°C - 85°C, 300hPa - 1100hPa
//
// Resolution: 0.01°C, 1/256Pa
//
// # Datasheet
//
// The URLs tend to rot, visit https://www.bosch-sensortec.com if they become
// invalid.
//
// https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bmp280-ds001.pdf
//
// A [command line example] is available in cmd/bmp280.
//
// [command line example]: https://github.com/GermanBionicSystems/barometer/tree/main/cmd/bmp280/
package bmp280
