/*
 * apple1 - Command-line configuration and file loading.
 *
 * Copyright 2026, go-emu
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config parses the emulator's flat CLI surface and loads the
// ROM, extra-RAM and binary images it names. Apple I has no equivalent
// of a multi-device configuration file: every setting is a single flag.
package config

import (
	"errors"
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"
)

// ErrHelp is returned by Parse when -h/--help was given; the usage
// text has already been printed, and the caller should exit 0.
var ErrHelp = errors.New("config: help requested")

// defaultRAMSize is used when -m/--memory is not given: the whole user
// RAM window up to the PIA's first register.
const defaultRAMSize = 0xD010

// defaultSavePath is where F6/F7 save and load a snapshot when no
// other path is configured, matching the original's dump_file target.
const defaultSavePath = "savestate"

// Config is the fully parsed and file-loaded result of one invocation.
type Config struct {
	ROM      []uint8
	ExtraRAM []uint8
	Binary   []uint8

	RAMSize   int
	StartAddr uint16
	LoadAddr  uint16

	LogPath  string
	SavePath string
}

// Parse reads args (normally os.Args[1:]) and loads the files it
// names. Help requests and argument errors are both reported by
// returning a non-nil error; callers distinguish the former by
// checking ErrHelp.
func Parse(args []string) (*Config, error) {
	set := getopt.New()
	romPath := set.StringLong("rom", 'r', "", "Boot ROM image")
	extraPath := set.StringLong("extra", 'e', "", "Extra RAM image ($E000-$EFFF)")
	binaryPath := set.StringLong("binary", 'b', "", "Raw binary image, replaces ROM/PIA with flat RAM")
	ramSize := set.IntLong("memory", 'm', defaultRAMSize, "User RAM size in bytes")
	startAddr := set.IntLong("start-addr", 'a', 0, "Reset vector target in binary mode")
	loadAddr := set.IntLong("load-addr", 'l', 0, "Load address in binary mode")
	logPath := set.StringLong("log", 0, "", "Log file")
	savePath := set.StringLong("save", 0, defaultSavePath, "Snapshot save/load path")
	help := set.BoolLong("help", 'h', "Print usage")

	if err := set.Getopt(args, nil); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if *help {
		set.PrintUsage(os.Stdout)
		return nil, ErrHelp
	}

	cfg := &Config{
		RAMSize:   *ramSize,
		StartAddr: uint16(*startAddr),
		LoadAddr:  uint16(*loadAddr),
		LogPath:   *logPath,
		SavePath:  *savePath,
	}

	switch {
	case *binaryPath != "":
		data, err := os.ReadFile(*binaryPath)
		if err != nil {
			return nil, fmt.Errorf("config: reading binary image: %w", err)
		}
		cfg.Binary = data

	case *romPath != "":
		data, err := os.ReadFile(*romPath)
		if err != nil {
			return nil, fmt.Errorf("config: reading ROM image: %w", err)
		}
		cfg.ROM = data
		if *extraPath != "" {
			extra, err := os.ReadFile(*extraPath)
			if err != nil {
				return nil, fmt.Errorf("config: reading extra RAM image: %w", err)
			}
			cfg.ExtraRAM = extra
		}

	default:
		return nil, fmt.Errorf("config: one of --rom or --binary is required")
	}

	if cfg.RAMSize <= 0 || cfg.RAMSize > defaultRAMSize {
		return nil, fmt.Errorf("config: --memory %d exceeds the %#04x PIA boundary", cfg.RAMSize, defaultRAMSize)
	}

	return cfg, nil
}
