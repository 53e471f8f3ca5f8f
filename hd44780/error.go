// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// BusError is returned when the bus carrying the display fails: the bus could
// not be opened, or a write was not acknowledged.
type BusError struct {
	Addr uint16
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("hd44780: bus error at %#x: %v", e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
