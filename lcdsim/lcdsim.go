// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim implements an I²C bus with a simulated HD44780 character
// display behind a PCF8574 backpack. The display is drawn on the terminal
// using ANSI color codes.
//
// Useful to try out text before wiring the display, and as a bus double in
// tests: the controller protocol is decoded the way the chip would latch it,
// so tests can check what ends up on screen instead of comparing bus traces.
package lcdsim

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Port bits of the backpack.
const (
	bitRS        byte = 0x01
	bitEnable    byte = 0x04
	bitBacklight byte = 0x08
)

const (
	row1Addr  byte = 0x00
	row2Addr  byte = 0x40
	row1End   byte = 0x28
	row2End   byte = 0x68
	oneLine   byte = 0x50
	ddramSize      = 0x80
)

var (
	backlightOn  = color.NRGBA{0x30, 0xc0, 0x30, 0xff}
	backlightOff = color.NRGBA{0x10, 0x10, 0x10, 0xff}
)

// Opts represents the options available for the simulated display.
type Opts struct {
	// Addr is the address the backpack answers on. Defaults to 0x27.
	Addr uint16
	// Cols is the number of visible columns, at most 40. Defaults to 16.
	Cols    int
	Palette *ansi256.Palette
	// Out receives the rendered display. Defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Bus is a simulated I²C bus with one LCD backpack on it.
type Bus struct {
	mu      sync.Mutex
	addr    uint16
	cols    int
	w       io.Writer
	palette ansi256.Palette

	port      byte
	writes    int
	fourBit   bool
	pending   bool
	half      byte
	ddram     [ddramSize]byte
	ac        byte
	increment bool
	twoLines  bool
	displayOn bool
	cursor    bool
	blink     bool
	commands  []byte
	chars     int

	buf bytes.Buffer
}

// New returns a Bus with a display in its power-on state: 8 bit interface,
// display off.
func New(opts *Opts) *Bus {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = 0x27
	}
	if o.Cols <= 0 {
		o.Cols = 16
	}
	if o.Cols > int(row1End) {
		o.Cols = int(row1End)
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := o.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	b := &Bus{addr: o.Addr, cols: o.Cols, w: w, palette: *p, increment: true}
	b.clear()
	return b
}

func (b *Bus) String() string {
	return fmt.Sprintf("lcdsim{%#x}", b.addr)
}

// Tx implements i2c.Bus.
//
// Each written byte is latched on the expander port. Reads return the port
// value. Transactions to any other address fail as if no device acknowledged.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr != b.addr {
		return fmt.Errorf("lcdsim: no device at %#x", addr)
	}
	for _, v := range w {
		b.latch(v)
	}
	for ix := range r {
		r[ix] = b.port
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser. It draws the display a last time.
func (b *Bus) Close() error {
	return b.Render()
}

// Render draws the visible part of the display.
func (b *Bus) Render() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := backlightOff
	if b.port&bitBacklight != 0 {
		c = backlightOn
	}
	edge := b.palette.Block(c)
	b.buf.Reset()
	for _, start := range []byte{row1Addr, row2Addr} {
		_, _ = b.buf.WriteString("\033[0m")
		_, _ = io.WriteString(&b.buf, edge)
		_, _ = b.buf.WriteString("\033[0m")
		_, _ = b.buf.WriteString(b.visible(start))
		_, _ = io.WriteString(&b.buf, edge)
		_, _ = b.buf.WriteString("\033[0m\n")
	}
	_, err := b.buf.WriteTo(b.w)
	return err
}

// Line returns the visible text of row 1 or 2 with trailing blanks removed.
func (b *Bus) Line(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := row1Addr
	if row == 2 {
		start = row2Addr
	}
	return strings.TrimRight(string(b.ddram[start:int(start)+b.cols]), " ")
}

// Backlight reports whether the backlight bit is set on the port.
func (b *Bus) Backlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port&bitBacklight != 0
}

// DisplayOn reports whether the display is on.
func (b *Bus) DisplayOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displayOn
}

// Blink reports whether the character at the cursor blinks. The B bit blinks
// the whole character block on its own, independent of the underline cursor.
func (b *Bus) Blink() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blink
}

// Cursor reports whether the underline cursor is shown.
func (b *Bus) Cursor() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// FourBit reports whether the controller is in 4 bit interface mode.
func (b *Bus) FourBit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fourBit
}

// TwoLines reports whether the controller is in 2 line mode.
func (b *Bus) TwoLines() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.twoLines
}

// Commands returns the instructions the controller executed, in order.
// Before the switch to 4 bit mode, each strobe is one instruction.
func (b *Bus) Commands() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.commands...)
}

// Chars returns the number of characters written to the display.
func (b *Bus) Chars() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chars
}

// Writes returns the number of bytes written to the expander port.
func (b *Bus) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// latch updates the port. The controller samples the data lines on the
// falling edge of the enable line.
func (b *Bus) latch(v byte) {
	prev := b.port
	b.port = v
	b.writes++
	if prev&bitEnable != 0 && v&bitEnable == 0 {
		b.strobe(prev)
	}
}

func (b *Bus) strobe(v byte) {
	rs := v&bitRS != 0
	n := v >> 4
	if !b.fourBit {
		// D0-D3 aren't wired, they read as 0.
		b.exec(rs, n<<4)
		return
	}
	if !b.pending {
		b.half = n
		b.pending = true
		return
	}
	b.pending = false
	b.exec(rs, b.half<<4|n)
}

func (b *Bus) exec(rs bool, v byte) {
	if rs {
		b.ddram[b.ac&(ddramSize-1)] = v
		b.chars++
		b.advance()
		return
	}
	b.commands = append(b.commands, v)
	switch {
	case v&0x80 != 0:
		b.ac = v & 0x7f
	case v&0x40 != 0:
		// CGRAM address, custom characters aren't simulated.
	case v&0x20 != 0:
		b.fourBit = v&0x10 == 0
		b.twoLines = v&0x08 != 0
		b.pending = false
	case v&0x10 != 0:
		// Cursor or display shift.
	case v&0x08 != 0:
		b.displayOn = v&0x04 != 0
		b.cursor = v&0x02 != 0
		b.blink = v&0x01 != 0
	case v&0x04 != 0:
		b.increment = v&0x02 != 0
	case v&0x02 != 0:
		b.ac = 0
	case v&0x01 != 0:
		b.clear()
	}
}

func (b *Bus) clear() {
	for ix := range b.ddram {
		b.ddram[ix] = ' '
	}
	b.ac = 0
	b.increment = true
}

// advance moves the address counter, wrapping the way DDRAM is laid out.
func (b *Bus) advance() {
	if b.increment {
		b.ac++
	} else {
		b.ac--
	}
	if !b.twoLines {
		switch b.ac {
		case oneLine:
			b.ac = 0
		case 0xff:
			b.ac = oneLine - 1
		}
		return
	}
	switch b.ac {
	case row1End:
		b.ac = row2Addr
	case row2End:
		b.ac = row1Addr
	case row2Addr - 1:
		b.ac = row1End - 1
	case 0xff:
		b.ac = row2End - 1
	}
}

func (b *Bus) visible(start byte) string {
	if !b.displayOn {
		return strings.Repeat(" ", b.cols)
	}
	var sb strings.Builder
	for _, c := range b.ddram[start : int(start)+b.cols] {
		if c < 0x20 || c > 0x7e {
			c = ' '
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

var _ i2c.BusCloser = &Bus{}
var _ fmt.Stringer = &Bus{}
