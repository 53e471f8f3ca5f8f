// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/lcdwriter/pcf857x"
	"periph.io/x/conn/v3/i2c"
)

// NewPCF8574Backpack returns a display wired to a pcf8574 i2c backpack.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// The backpack maps the expander pins as P0=RS, P1=R/W, P2=E, P3=backlight and
// P4-P7=D4-D7. R/W is always driven low. To use this, get an I2C bus, and call
// this function with the bus and i2c address, then call Init.
func NewPCF8574Backpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, &BusError{Addr: address, Err: err}
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	o.Addr = address
	return New(pcf, &o), nil
}
