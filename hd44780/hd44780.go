// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 through an
// 8 bit output port, typically the PCF8574 found on I²C LCD backpacks.
//
// The controller is driven open-loop in 4 bit mode. The busy flag is never
// read; fixed delays around each enable pulse satisfy the controller's timing.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Mode selects the controller register a byte is written to. It is carried on
// the RS line, bit 0 of the port.
type Mode byte

const (
	ModeCommand   Mode = 0x00
	ModeCharacter Mode = 0x01
)

// Controller commands.
const (
	CmdNoop                 byte = 0x00
	CmdClear                byte = 0x01
	CmdHome                 byte = 0x02
	CmdEntryMode            byte = 0x06 // increment, no shift
	CmdDisplayOn            byte = 0x0c // display on, cursor off, blink off
	CmdDisplayOnCursorBlink byte = 0x0d // display on, cursor off, blink on
	CmdFunctionSet4Bit2Line byte = 0x28 // 4 bit, 2 lines, 5x8 font
	CmdInit8Bit             byte = 0x33
	CmdInit4Bit             byte = 0x32
	CmdLine1                byte = 0x80 // DDRAM address 0x00
	CmdLine2                byte = 0xc0 // DDRAM address 0x40
)

// Port bits of the backpack.
const (
	bitRS     byte = 0x01
	bitEnable byte = 0x04
	nibble    byte = 0xf0
)

const (
	// Rows is the number of display rows in 2 line mode.
	Rows = 2
	// RowLength is the number of DDRAM addresses per row in 2 line mode.
	RowLength = 40
)

const (
	// EnablePulse is the minimum time the enable line is held high.
	EnablePulse = 500 * time.Microsecond
	// EnableDelay is the minimum setup and hold time around the enable pulse.
	EnableDelay = 500 * time.Microsecond
)

var initSequence = []byte{
	CmdInit8Bit,
	CmdInit4Bit,
	CmdEntryMode,
	CmdDisplayOn,
	CmdFunctionSet4Bit2Line,
	CmdClear,
}

// Port is the 8 bit output latch the controller is wired to. *pcf857x.Dev
// implements it.
type Port interface {
	Out(value gpio.GPIOValue) error
}

// Opts represents the options available for the display.
type Opts struct {
	// Clock is used for the delays around the enable pulse. Defaults to the
	// wall clock.
	Clock clockwork.Clock
	// Addr is only used for diagnostics.
	Addr uint16
}

// Dev is a HD44780 display wired to an 8 bit port.
//
// Implements display.DisplayBacklight and conn.Resource.
type Dev struct {
	port      Port
	clock     clockwork.Clock
	addr      uint16
	backlight BacklightBit
}

// New returns a Dev that writes through port. The display isn't initialized,
// call Init before writing text.
func New(port Port, opts *Opts) *Dev {
	dev := &Dev{port: port, backlight: BacklightOn}
	if opts != nil {
		dev.clock = opts.Clock
		dev.addr = opts.Addr
	}
	if dev.clock == nil {
		dev.clock = clockwork.NewRealClock()
	}
	return dev
}

// SendByte writes bits to the controller as two nibbles, high nibble first.
// Each nibble carries the mode and backlight bits and is latched by an enable
// pulse.
func (dev *Dev) SendByte(bits byte, mode Mode, bl BacklightBit) error {
	high := byte(mode) | (bits & nibble) | byte(bl)
	low := byte(mode) | ((bits << 4) & nibble) | byte(bl)
	for _, b := range [2]byte{high, low} {
		if err := dev.out(b); err != nil {
			return err
		}
		if err := dev.toggleEnable(b); err != nil {
			return err
		}
	}
	dev.backlight = bl
	return nil
}

// toggleEnable strobes the enable line with bits on the data lines.
func (dev *Dev) toggleEnable(bits byte) error {
	dev.clock.Sleep(EnableDelay)
	if err := dev.out(bits | bitEnable); err != nil {
		return err
	}
	dev.clock.Sleep(EnablePulse)
	if err := dev.out(bits &^ bitEnable); err != nil {
		return err
	}
	dev.clock.Sleep(EnableDelay)
	return nil
}

// Init runs the controller initialization sequence. The controller may be in
// 8 bit mode or halfway through a 4 bit transfer; 0x33, 0x32 brings it to 4
// bit mode from either state.
func (dev *Dev) Init(bl BacklightBit) error {
	for _, cmd := range initSequence {
		if err := dev.SendByte(cmd, ModeCommand, bl); err != nil {
			return err
		}
	}
	dev.clock.Sleep(EnableDelay)
	return nil
}

// WriteLine moves the cursor to the start of line 1 or 2 and writes message.
//
// Bytes are sent as is, there is no translation to the controller's character
// ROM. For a line other than 1 or 2 the cursor isn't moved and message is
// written at the current position.
func (dev *Dev) WriteLine(message string, line int, bl BacklightBit) error {
	if line == 1 || line == 2 {
		if err := dev.moveTo(line, 1, bl); err != nil {
			return err
		}
	}
	_, err := dev.write(message, bl)
	return err
}

// MoveTo moves the cursor to row, col. Rows are 1 or 2, columns 1 to 40, the
// length of a DDRAM row in 2 line mode.
func (dev *Dev) MoveTo(row, col int) error {
	return dev.moveTo(row, col, dev.backlight)
}

// WriteString writes text at the cursor position with the current backlight
// state. It returns the number of bytes written.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.write(text, dev.backlight)
}

func (dev *Dev) moveTo(row, col int, bl BacklightBit) error {
	if row < 1 || row > Rows || col < 1 || col > RowLength {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	cmd := CmdLine1
	if row == 2 {
		cmd = CmdLine2
	}
	return dev.SendByte(cmd+byte(col-1), ModeCommand, bl)
}

func (dev *Dev) write(text string, bl BacklightBit) (int, error) {
	for i := 0; i < len(text); i++ {
		if err := dev.SendByte(text[i], ModeCharacter, bl); err != nil {
			return i, err
		}
	}
	return len(text), nil
}

// SetCursorBlink turns the blinking block cursor on or off. The display is
// left on.
func (dev *Dev) SetCursorBlink(enable bool, bl BacklightBit) error {
	cmd := CmdDisplayOn
	if enable {
		cmd = CmdDisplayOnCursorBlink
	}
	return dev.SendByte(cmd, ModeCommand, bl)
}

// Clear clears the display and moves the cursor home.
func (dev *Dev) Clear(bl BacklightBit) error {
	return dev.SendByte(CmdClear, ModeCommand, bl)
}

// Halt implements conn.Resource.
//
// It clears the display and turns the backlight off.
func (dev *Dev) Halt() error {
	return dev.Clear(BacklightOff)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("HD44780{%#x}", dev.addr)
}

func (dev *Dev) out(b byte) error {
	if err := dev.port.Out(gpio.GPIOValue(b)); err != nil {
		return &BusError{Addr: dev.addr, Err: err}
	}
	return nil
}

var _ conn.Resource = &Dev{}
