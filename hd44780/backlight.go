// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
)

// BacklightBit is the backlight transistor line, bit 3 of the port. It is
// written along with every nibble, so each write re-latches the backlight.
type BacklightBit byte

const (
	BacklightOff BacklightBit = 0x00
	BacklightOn  BacklightBit = 0x08
)

// BacklightFor returns the bit matching on.
func BacklightFor(on bool) BacklightBit {
	if on {
		return BacklightOn
	}
	return BacklightOff
}

// SetBacklight turns the backlight on or off by sending a no-op command with
// only the backlight bit changed. Display content is not altered.
func (dev *Dev) SetBacklight(on bool) error {
	return dev.SendByte(CmdNoop, ModeCommand, BacklightFor(on))
}

// Backlight implements display.DisplayBacklight. The backpack can only switch
// the backlight, so any intensity above 0 turns it on.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.SetBacklight(intensity > 0)
}

// BacklightState returns the backlight bit sent with the last command.
func (dev *Dev) BacklightState() BacklightBit {
	return dev.backlight
}

var _ display.DisplayBacklight = &Dev{}
