// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cli

import (
	"io"

	"github.com/GermanBionicSystems/lcdwriter/internal/config"
	"github.com/GermanBionicSystems/lcdwriter/lcdsim"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// BusOpener opens the I²C bus described by cfg.
type BusOpener func(cfg config.Config) (i2c.BusCloser, error)

// OpenBus loads the periph host drivers and opens the bus named cfg.Bus.
func OpenBus(cfg config.Config) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(cfg.Bus)
}

// simulatorOpener returns a BusOpener for a simulated display drawn on w.
func simulatorOpener(w io.Writer) BusOpener {
	return func(cfg config.Config) (i2c.BusCloser, error) {
		return lcdsim.New(&lcdsim.Opts{Addr: cfg.Address, Out: w}), nil
	}
}
