// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cli implements the lcd-writer command: it writes one or two lines of
// text to a HD44780 display behind a PCF8574 I²C backpack.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/GermanBionicSystems/lcdwriter/hd44780"
	"github.com/GermanBionicSystems/lcdwriter/internal/config"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

const (
	usage = "Usage: lcd-writer <message> [blink_cursor]\n" +
		"Flags go before the message. Put -- before a message starting with -."
	tooManyLinesMsg = "Message should not exceed 2 lines."
)

var (
	// ErrUsage is returned for a wrong number of arguments or an unknown flag.
	ErrUsage = errors.New("usage error")
	// ErrTooManyLines is returned when the message splits into more lines than
	// the display has.
	ErrTooManyLines = errors.New("message should not exceed 2 lines")
)

// App runs lcd-writer. The zero value writes to the process stdout/stderr and
// opens the hardware bus.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	// Open opens the bus when not in dry run mode. Defaults to OpenBus.
	Open BusOpener
	// Clock times the display writes. Defaults to the wall clock.
	Clock clockwork.Clock
}

type flags struct {
	configPath string
	bus        string
	addr       uint16
	backlight  bool
	dryRun     bool
	verbose    bool
}

// Run executes the command line args, without the program name, and returns
// the process exit status.
func (a *App) Run(args []string) int {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(a.stderr(), &slog.HandlerOptions{Level: level}))

	cmd := a.newRootCmd(logger, level)
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		logger.Debug("invalid invocation", "err", err)
		fmt.Fprintln(a.stdout(), usage)
	case errors.Is(err, ErrTooManyLines):
		fmt.Fprintln(a.stdout(), tooManyLinesMsg)
	default:
		logger.Error("lcd-writer failed", "err", err)
	}
	return 1
}

func (a *App) newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "lcd-writer [flags] [--] <message> [blink_cursor]",
		Short: "Write text to a HD44780 character LCD on a PCF8574 I²C backpack",
		Long: `Write one or two lines of text to a HD44780 character LCD.

Separate the two lines of message with \n. Pass "true" as blink_cursor to
show a blinking cursor, any other value turns it off.

Flags are only recognized before the message; everything after it is text.
Put -- before a message starting with a dash:

  lcd-writer -- -5C`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("%w: expected 1 or 2 arguments, received %d", ErrUsage, len(args))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				level.Set(slog.LevelDebug)
			}
			blink := len(args) == 2 && ParseBlink(args[1])
			return a.write(logger, cfg, args[0], blink)
		},
	}
	cmd.SetOut(a.stdout())
	cmd.SetErr(a.stderr())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	fs := cmd.Flags()
	// The message and blink_cursor are free text.
	fs.SetInterspersed(false)
	fs.StringVar(&f.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&f.bus, "bus", config.DefaultBus, "I²C bus name or number")
	fs.Uint16Var(&f.addr, "addr", config.DefaultAddress, "I²C address of the backpack")
	fs.BoolVar(&f.backlight, "backlight", true, "turn the backlight on")
	fs.BoolVar(&f.dryRun, "dry-run", false, "draw the display on the terminal instead of the bus")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every step")
	return cmd
}

// resolve loads the configuration file and applies the flags set on the
// command line on top of it.
func (f *flags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	fs := cmd.Flags()
	if fs.Changed("bus") {
		cfg.Bus = f.bus
	}
	if fs.Changed("addr") {
		cfg.Address = f.addr
	}
	if fs.Changed("backlight") {
		cfg.Backlight = f.backlight
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, cfg.Validate()
}

// write opens the bus, sets up the display and writes message. The bus is
// closed before returning.
func (a *App) write(logger *slog.Logger, cfg config.Config, message string, blink bool) error {
	open := a.Open
	if open == nil {
		open = OpenBus
	}
	if cfg.DryRun {
		open = simulatorOpener(a.stdout())
	}
	bus, err := open(cfg)
	if err != nil {
		return &hd44780.BusError{Addr: cfg.Address, Err: err}
	}
	logger.Debug("opened bus", "bus", bus.String(), "addr", fmt.Sprintf("%#x", cfg.Address))
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			logger.Warn("closing bus", "err", cerr)
		}
	}()

	dev, err := hd44780.NewPCF8574Backpack(bus, cfg.Address, &hd44780.Opts{Clock: a.Clock})
	if err != nil {
		return err
	}
	bl := hd44780.BacklightFor(cfg.Backlight)
	if err = dev.Init(bl); err != nil {
		return err
	}
	if err = dev.SetCursorBlink(blink, bl); err != nil {
		return err
	}
	if !cfg.Backlight {
		if err = dev.SetBacklight(false); err != nil {
			return err
		}
	}
	logger.Debug("initialized display", "device", dev.String(), "blink", blink, "backlight", cfg.Backlight)

	lines := SplitLines(message)
	if len(lines) > MaxLines {
		return fmt.Errorf("%w: %d lines", ErrTooManyLines, len(lines))
	}
	for ix, line := range lines {
		if err = dev.WriteLine(line, ix+1, bl); err != nil {
			return err
		}
		logger.Debug("wrote line", "row", ix+1, "text", line)
	}
	return nil
}

func (a *App) stdout() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr == nil {
		return os.Stderr
	}
	return a.Stderr
}
