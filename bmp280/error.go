// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmp280

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedPressure is returned when the pressure compensation divisor
	// computes to zero. It happens with blank or corrupted calibration data.
	ErrUndefinedPressure = errors.New("bmp280: pressure compensation divisor is zero")
	// ErrBusTimeout is returned when a bus transaction takes longer than
	// Opts.BusTimeout.
	ErrBusTimeout = errors.New("bmp280: bus transaction timed out")
	// ErrNotReady is returned when a forced measurement is still running
	// well past its nominal conversion time.
	ErrNotReady = errors.New("bmp280: measurement did not complete")
)

// DeviceNotFoundError is returned when the chip id register doesn't hold the
// expected value.
type DeviceNotFoundError struct {
	Want byte
	Got  byte
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("bmp280: unexpected chip id 0x%02x; is this a BMP280? want 0x%02x", e.Got, e.Want)
}
