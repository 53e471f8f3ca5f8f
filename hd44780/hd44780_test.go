// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const testAddr uint16 = 0x27

// stepClock advances instead of blocking, so delays are measured without
// waiting for them.
type stepClock struct {
	clockwork.FakeClock
}

func (c stepClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// timedBus records every transaction along with the simulated time it
// happened at.
type timedBus struct {
	i2ctest.Record
	clock clockwork.Clock
	at    []time.Time
}

func (b *timedBus) Tx(addr uint16, w, r []byte) error {
	b.at = append(b.at, b.clock.Now())
	return b.Record.Tx(addr, w, r)
}

// nibbleOps returns the three port writes of one strobed nibble.
func nibbleOps(b byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: testAddr, W: []byte{b}},
		{Addr: testAddr, W: []byte{b | bitEnable}},
		{Addr: testAddr, W: []byte{b &^ bitEnable}},
	}
}

func byteOps(bits byte, mode Mode, bl BacklightBit) []i2ctest.IO {
	high := byte(mode) | bits&0xf0 | byte(bl)
	low := byte(mode) | (bits<<4)&0xf0 | byte(bl)
	return append(nibbleOps(high), nibbleOps(low)...)
}

func commandOps(bl BacklightBit, cmds ...byte) []i2ctest.IO {
	var ops []i2ctest.IO
	for _, c := range cmds {
		ops = append(ops, byteOps(c, ModeCommand, bl)...)
	}
	return ops
}

func getLCD(t *testing.T, ops []i2ctest.IO) (*Dev, *i2ctest.Playback) {
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, err := NewPCF8574Backpack(bus, testAddr, &Opts{Clock: stepClock{clockwork.NewFakeClock()}})
	if err != nil {
		t.Fatal(err)
	}
	return dev, bus
}

func TestSendByteNibbles(t *testing.T) {
	// 'H' = 0x48, character mode, backlight on.
	ops := []i2ctest.IO{
		{Addr: testAddr, W: []byte{0x49}},
		{Addr: testAddr, W: []byte{0x4d}},
		{Addr: testAddr, W: []byte{0x49}},
		{Addr: testAddr, W: []byte{0x89}},
		{Addr: testAddr, W: []byte{0x8d}},
		{Addr: testAddr, W: []byte{0x89}},
	}
	dev, bus := getLCD(t, ops)
	if err := dev.SendByte('H', ModeCharacter, BacklightOn); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestInit(t *testing.T) {
	dev, bus := getLCD(t, commandOps(BacklightOn, 0x33, 0x32, 0x06, 0x0c, 0x28, 0x01))
	if err := dev.Init(BacklightOn); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
	if bus.Count != 36 {
		t.Errorf("expected 36 port writes, received %d", bus.Count)
	}
}

func TestEnableTiming(t *testing.T) {
	clock := stepClock{clockwork.NewFakeClock()}
	bus := &timedBus{clock: clock}
	dev, err := NewPCF8574Backpack(bus, testAddr, &Opts{Clock: clock})
	if err != nil {
		t.Fatal(err)
	}
	start := clock.Now()
	if err = dev.Init(BacklightOn); err != nil {
		t.Fatal(err)
	}
	if len(bus.Ops) != 36 || len(bus.at) != 36 {
		t.Fatalf("expected 36 writes, received %d", len(bus.Ops))
	}
	for ix := 0; ix < len(bus.Ops); ix += 3 {
		data, high, low := bus.Ops[ix].W[0], bus.Ops[ix+1].W[0], bus.Ops[ix+2].W[0]
		if data&bitEnable != 0 {
			t.Errorf("write #%d: enable set on data write 0x%02x", ix, data)
		}
		if high != data|bitEnable || low != data {
			t.Errorf("write #%d: expected pulse 0x%02x,0x%02x, received 0x%02x,0x%02x", ix, data|bitEnable, data, high, low)
		}
		if d := bus.at[ix+1].Sub(bus.at[ix]); d < EnableDelay {
			t.Errorf("write #%d: setup %s < %s", ix, d, EnableDelay)
		}
		if d := bus.at[ix+2].Sub(bus.at[ix+1]); d < EnablePulse {
			t.Errorf("write #%d: pulse %s < %s", ix, d, EnablePulse)
		}
		if ix+3 < len(bus.at) {
			if d := bus.at[ix+3].Sub(bus.at[ix+2]); d < EnableDelay {
				t.Errorf("write #%d: hold %s < %s", ix, d, EnableDelay)
			}
		}
	}
	if d := clock.Now().Sub(bus.at[len(bus.at)-1]); d < 2*EnableDelay {
		t.Errorf("expected hold and settle delay after last write, received %s", d)
	}
	if d := clock.Now().Sub(start); d != 12*(2*EnableDelay+EnablePulse)+EnableDelay {
		t.Errorf("unexpected Init duration %s", d)
	}
}

func TestWriteLine(t *testing.T) {
	var ops []i2ctest.IO
	ops = append(ops, commandOps(BacklightOn, 0x80)...)
	for _, c := range []byte("HI") {
		ops = append(ops, byteOps(c, ModeCharacter, BacklightOn)...)
	}
	ops = append(ops, commandOps(BacklightOn, 0xc0)...)
	for _, c := range []byte("THERE") {
		ops = append(ops, byteOps(c, ModeCharacter, BacklightOn)...)
	}
	dev, bus := getLCD(t, ops)
	if err := dev.WriteLine("HI", 1, BacklightOn); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteLine("THERE", 2, BacklightOn); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestWriteLineOtherLine(t *testing.T) {
	// No address command, the text lands at the current cursor position.
	dev, bus := getLCD(t, byteOps('X', ModeCharacter, BacklightOff))
	if err := dev.WriteLine("X", 3, BacklightOff); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestMoveToWriteString(t *testing.T) {
	var ops []i2ctest.IO
	ops = append(ops, commandOps(BacklightOn, 0xc2)...)
	for _, c := range []byte("OK") {
		ops = append(ops, byteOps(c, ModeCharacter, BacklightOn)...)
	}
	ops = append(ops, commandOps(BacklightOn, 0x80+39)...)
	dev, bus := getLCD(t, ops)
	if err := dev.MoveTo(2, 3); err != nil {
		t.Fatal(err)
	}
	n, err := dev.WriteString("OK")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("WriteString() expected 2, received %d", n)
	}
	if err = dev.MoveTo(1, RowLength); err != nil {
		t.Fatal(err)
	}
	if err = bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestMoveToOutOfRange(t *testing.T) {
	dev, bus := getLCD(t, nil)
	for _, pos := range [][2]int{{0, 1}, {3, 1}, {1, 0}, {2, RowLength + 1}} {
		if err := dev.MoveTo(pos[0], pos[1]); err == nil {
			t.Errorf("MoveTo(%d,%d) expected error", pos[0], pos[1])
		}
	}
	if bus.Count != 0 {
		t.Errorf("expected no writes, received %d", bus.Count)
	}
}

func TestWriteStringError(t *testing.T) {
	// The first character is acknowledged, the second isn't.
	dev, _ := getLCD(t, byteOps('A', ModeCharacter, BacklightOn))
	n, err := dev.WriteString("AB")
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("WriteString() expected 1 byte written, received %d", n)
	}
}

func TestSetCursorBlink(t *testing.T) {
	ops := append(commandOps(BacklightOn, 0x0d), commandOps(BacklightOn, 0x0c)...)
	dev, bus := getLCD(t, ops)
	if err := dev.SetCursorBlink(true, BacklightOn); err != nil {
		t.Error(err)
	}
	if err := dev.SetCursorBlink(false, BacklightOn); err != nil {
		t.Error(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestBacklights(t *testing.T) {
	ops := []i2ctest.IO{}
	ops = append(ops, nibbleOps(0x00)...)
	ops = append(ops, nibbleOps(0x00)...)
	ops = append(ops, nibbleOps(0x08)...)
	ops = append(ops, nibbleOps(0x08)...)
	ops = append(ops, commandOps(BacklightOff, 0x00)...)
	ops = append(ops, commandOps(BacklightOn, 0x00)...)
	dev, bus := getLCD(t, ops)

	if err := dev.SetBacklight(false); err != nil {
		t.Error(err)
	}
	if dev.BacklightState() != BacklightOff {
		t.Error("expected backlight off")
	}
	if err := dev.SetBacklight(true); err != nil {
		t.Error(err)
	}
	if err := dev.Backlight(0); err != nil {
		t.Error(err)
	}
	if err := dev.Backlight(0xff); err != nil {
		t.Error(err)
	}
	if dev.BacklightState() != BacklightOn {
		t.Error("expected backlight on")
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestHalt(t *testing.T) {
	dev, bus := getLCD(t, commandOps(BacklightOff, 0x01))
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestBusError(t *testing.T) {
	// Init fails on the very first port write, nothing is retried.
	dev, bus := getLCD(t, nil)
	err := dev.Init(BacklightOn)
	if err == nil {
		t.Fatal("expected error")
	}
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BusError, received %T", err)
	}
	if be.Addr != testAddr {
		t.Errorf("expected address %#x, received %#x", testAddr, be.Addr)
	}
	if !strings.Contains(err.Error(), "pcf857x") {
		t.Errorf("expected wrapped expander error, received %v", err)
	}
	if bus.Count != 0 {
		t.Errorf("expected no completed writes, received %d", bus.Count)
	}
}

func TestString(t *testing.T) {
	dev, _ := getLCD(t, nil)
	if s := dev.String(); !strings.Contains(s, "0x27") {
		t.Errorf("String() expected address, received %s", s)
	}
}

func TestRecordedInit(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, err := NewPCF8574Backpack(bus, testAddr, &Opts{Clock: stepClock{clockwork.NewFakeClock()}})
	if err != nil {
		t.Fatal(err)
	}
	if err = dev.Init(BacklightOff); err != nil {
		t.Fatal(err)
	}
	for ix, op := range bus.Ops {
		if op.Addr != testAddr {
			t.Errorf("write #%d to %#x", ix, op.Addr)
		}
		if op.W[0]&byte(BacklightOn) != 0 {
			t.Errorf("write #%d: backlight bit set in 0x%02x", ix, op.W[0])
		}
		if op.W[0]&bitRS != 0 {
			t.Errorf("write #%d: character mode in 0x%02x", ix, op.W[0])
		}
	}
	// The first nibble latched is 0x3 of 0x33.
	if !bytes.Equal(bus.Ops[1].W, []byte{0x34}) {
		t.Errorf("expected first strobe 0x34, received %#v", bus.Ops[1].W)
	}
}
