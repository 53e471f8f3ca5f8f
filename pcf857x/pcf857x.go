// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides a driver for the TI/NXP PCF857X I2C I/O Expander.
// These devices provide 8 pins (PCF8574) or 16 pins (PCF8575) of
// "quasi-bidirectional" input/output. This device is commonly used in LCD
// backpacks, particularly those sold as LCD2004, LCD1602.
//
// The PCF8575 is functionally identical to the PCF8574. Reads and writes are 2
// bytes wide on the PCF8575, and one byte wide on the PCF8574.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// # Notes
//
// This chip doesn't implement normal i2c register architectures. You write 8 or
// 16 bits out, and that sets the corresponding pins, or you read 8/16 bits and
// get the state of the pins. Setting a pin to Low activates an Open Drain to
// ground.
package pcf857x

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address of most PCF8574 LCD backpacks with all
	// address jumpers open.
	DefaultAddress uint16 = 0x27
)

// Dev is representation of a PCF857x device.
type Dev struct {
	mu       sync.Mutex
	d        *i2c.Dev
	chipType Variant
	width    int
	mask     gpio.GPIOValue
	value    gpio.GPIOValue
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	if chip != PCF8574 && chip != PCF8575 {
		return nil, fmt.Errorf("pcf857x: unknown variant %q", chip)
	}
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip, width: 8}
	if chip == PCF8575 {
		dev.width = 16
	}
	dev.mask = gpio.GPIOValue((1 << dev.width) - 1)
	return dev, nil
}

// Out writes value to the whole port.
//
// Unlike a register based expander, every call results in an I²C transaction,
// even when value matches what the port already holds. Devices strobed
// through the port depend on seeing each write.
func (dev *Dev) Out(value gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	value &= dev.mask
	w := make([]byte, dev.width/8)
	for ix := range w {
		w[ix] = byte(value >> (ix * 8))
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = value
	return nil
}

// Read returns the state of the pins.
//
// Before you can read a pin, you must have set it to high. If nothing pulls
// that down, then it's high. If it's pulled down, it's low. Read drives all the
// pins high first, so the latched output value is lost.
func (dev *Dev) Read() (gpio.GPIOValue, error) {
	if err := dev.Out(dev.mask); err != nil {
		return 0, err
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	r := make([]byte, dev.width/8)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	var result gpio.GPIOValue
	for ix, b := range r {
		result |= gpio.GPIOValue(b) << (ix * 8)
	}
	return result, nil
}

// Value returns the last value written to the port.
func (dev *Dev) Value() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Halt drives all the pins low.
func (dev *Dev) Halt() error {
	return dev.Out(0)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}

var _ conn.Resource = &Dev{}
