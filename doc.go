// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdwriter writes text to HD44780 character displays on PCF8574 I²C
// backpacks.
//
// The driver lives in hd44780, the expander in pcf857x and a terminal
// simulator usable as a bus in lcdsim. The command is cmd/lcd-writer.
package lcdwriter
