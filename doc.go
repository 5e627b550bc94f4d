// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package barometer is a container for the BMP280 driver and its tooling.
//
// The driver is in bmp280, the software SPI port it can use in bitbang, the
// terminal display in gauge and the command line tool in cmd/bmp280.
package barometer
