// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cli

import "strings"

// LineBreak is the marker separating the two display rows in a message, typed
// as a backslash followed by n on the command line.
const LineBreak = `\n`

// MaxLines is the number of rows of the display.
const MaxLines = 2

// SplitLines splits message on LineBreak. A newline character counts as a
// LineBreak too. The result always holds at least one, possibly empty, line.
func SplitLines(message string) []string {
	return strings.Split(strings.ReplaceAll(message, "\n", LineBreak), LineBreak)
}

// ParseBlink reports whether arg enables the blinking cursor. Only "true" in
// any letter case does.
func ParseBlink(arg string) bool {
	return strings.ToLower(arg) == "true"
}
