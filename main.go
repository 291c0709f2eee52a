/*
 * apple1 - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-emu/apple1/config"
	"github.com/go-emu/apple1/machine"
	"github.com/go-emu/apple1/pia"
	logger "github.com/go-emu/apple1/util/logger"
)

const greeting = `                   _        _
  __ _ _ __  _ __ | | ___  / |   ___ _ __ ___  _   _
 / _` + "`" + ` | '_ \| '_ \| |/ _ \ | |  / _ \ '_ ` + "`" + ` _ \| | | |
| (_| | |_) | |_) | |  __/ | | |  __/ | | | | | |_| |
 \__,_| .__/| .__/|_|\___| |_|  \___|_| |_| |_|\__,_|
      |_|   |_|

` + "`" + `: Clear screen                         TAB: Toggle turbo mode
F5: Resume execution                  F8: Reset
F6: Save state                        F9: Break
F7: Load state                        F12: Print cycle count
`

var Logger *slog.Logger

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if err == config.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var logFile *os.File
	if cfg.LogPath != "" {
		logFile, _ = os.Create(cfg.LogPath)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(Logger)

	fmt.Print(greeting)
	Logger.Info("apple1 started")

	term, err := pia.NewTerminal(int(os.Stdin.Fd()))
	if err != nil {
		Logger.Error("acquiring terminal", "error", err)
		os.Exit(1)
	}
	defer term.Restore()

	m, err := machine.New(machine.Config{
		RAMSize:   cfg.RAMSize,
		ExtraRAM:  cfg.ExtraRAM,
		ROM:       cfg.ROM,
		Binary:    cfg.Binary,
		LoadAddr:  cfg.LoadAddr,
		StartAddr: cfg.StartAddr,
		SavePath:  cfg.SavePath,
		Out:       os.Stdout,
		Logger:    Logger,
	})
	if err != nil {
		Logger.Error("building machine", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	stopInput := make(chan struct{})
	go m.Run()
	if p := m.PIA(); p != nil {
		go term.Run(func() bool {
			select {
			case <-stopInput:
				return true
			default:
				return false
			}
		}, p, os.Stdout, func(cmd pia.Command) {
			m.Control() <- cmd
		})
	}

	exitCode := 0
	select {
	case <-sigChan:
		Logger.Info("shutting down")
	case <-m.Crashed():
		Logger.Error("shutting down: CPU crashed")
		exitCode = 1
	}
	close(stopInput)
	m.Stop()
	term.Restore()
	Logger.Info("shutdown complete")
	os.Exit(exitCode)
}
