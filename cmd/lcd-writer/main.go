// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcd-writer writes one or two lines of text to a HD44780 character LCD behind
// a PCF8574 I²C backpack.
//
//	lcd-writer <message> [blink_cursor]
//
// Separate the two lines with \n, pass true to show a blinking cursor.
package main

import (
	"os"

	"github.com/GermanBionicSystems/lcdwriter/internal/cli"
	"github.com/mattn/go-colorable"
)

func main() {
	app := &cli.App{
		Stdout: colorable.NewColorableStdout(),
		Stderr: colorable.NewColorableStderr(),
	}
	os.Exit(app.Run(os.Args[1:]))
}
