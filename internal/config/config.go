// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config holds the settings of lcd-writer. Settings come from
// defaults, optionally overridden by a TOML file, then by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultBus is the I²C bus exposed on the header of most single board
// computers.
const DefaultBus = "1"

// DefaultAddress is the address of PCF8574 backpacks with all address jumpers
// open.
const DefaultAddress uint16 = 0x27

var (
	ErrNoBus          = errors.New("config: bus name is empty")
	ErrAddressInvalid = errors.New("config: address is not a valid 7 bit I²C address")
)

// Config is the lcd-writer configuration.
type Config struct {
	// Bus is the periph i2creg bus name or number.
	Bus string `toml:"bus"`
	// Address is the 7 bit I²C address of the backpack.
	Address uint16 `toml:"address"`
	// Backlight is the backlight state used for every write.
	Backlight bool `toml:"backlight"`
	// DryRun draws the display on the terminal instead of using the bus.
	DryRun bool `toml:"dry_run"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Bus:       DefaultBus,
		Address:   DefaultAddress,
		Backlight: true,
	}
}

// Load returns the defaults overridden by the TOML file at path. Keys missing
// from the file keep their default. An empty path returns the defaults.
//
// The result isn't validated; callers apply their overrides first and then
// call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err = toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the bus name and address. Addresses 0x00-0x07 and
// 0x78-0x7f are reserved by the I²C specification.
func (c Config) Validate() error {
	if c.Bus == "" {
		return ErrNoBus
	}
	if c.Address < 0x08 || c.Address > 0x77 {
		return fmt.Errorf("%w: %#x", ErrAddressInvalid, c.Address)
	}
	return nil
}
