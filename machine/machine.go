/*
 * apple1 - System orchestration: wires Bus, Clock, CPU, memory and PIA.
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

// Package machine assembles the Bus, Clock, CPU, memory devices and
// PIA into one runnable Apple I, and runs its clock loop the same way
// the teacher's emu/core package runs the S/370 CPU thread: coordinated
// by a done channel and a control-packet channel. The keyboard
// goroutine that posts on that channel is started by the caller.
package machine

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-emu/apple1/bus"
	"github.com/go-emu/apple1/clock"
	"github.com/go-emu/apple1/cpu"
	"github.com/go-emu/apple1/memory"
	"github.com/go-emu/apple1/pia"
)

// PIA register addresses, fixed by the Apple I's wiring.
const (
	KBDAddr   uint16 = 0xD010
	KBDCRAddr uint16 = 0xD011
	DSPAddr   uint16 = 0xD012
	DSPCRAddr uint16 = 0xD013
)

// romStart is the first address of the boot ROM window in ROM mode.
const romStart uint16 = 0xFF00

// extraStart/extraEnd bound the extra RAM window in ROM mode.
const (
	extraStart uint16 = 0xE000
	extraEnd   uint16 = 0xEFFF
)

// ClockHz is the 6502's nominal clock rate on the original hardware.
const ClockHz = 1_000_000

// Config supplies everything needed to build a Machine. In binary
// mode (Binary non-empty) RAM is mapped across the whole address
// space and ROM/extra-RAM/PIA do not exist; in ROM mode the fixed
// address map in spec applies.
type Config struct {
	RAMSize   int
	ExtraRAM  []uint8
	ROM       []uint8
	Binary    []uint8
	LoadAddr  uint16
	StartAddr uint16
	SavePath  string
	Out       pia.Writer
	Logger    *slog.Logger
}

// Machine is a fully wired Apple I: a Bus, Clock, CPU and however many
// memory devices and PIA the Config called for.
type Machine struct {
	wg      sync.WaitGroup
	done    chan struct{}
	control chan pia.Command
	crashed chan struct{}

	b   *bus.Bus
	clk *clock.Clock
	c   *cpu.CPU
	p   *pia.PIA

	devices []*memory.Device

	savePath string
	logger   *slog.Logger
}


// New builds a Machine from cfg but does not start it; call Run to
// start the clock and begin execution.
func New(cfg Config) (*Machine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Machine{
		done:     make(chan struct{}),
		control:  make(chan pia.Command, 16),
		crashed:  make(chan struct{}),
		b:        bus.New(),
		savePath: cfg.SavePath,
		logger:   logger,
	}
	m.clk = clock.New(ClockHz)
	m.c = cpu.New(m.b, logger)

	if len(cfg.Binary) > 0 {
		if err := m.wireBinary(cfg); err != nil {
			return nil, err
		}
	} else {
		if err := m.wireROM(cfg); err != nil {
			return nil, err
		}
	}

	if err := m.clk.Attach(m.c.PhiTwo); err != nil {
		return nil, fmt.Errorf("machine: attaching CPU: %w", err)
	}
	for _, dev := range m.devices {
		dev := dev
		if err := m.clk.Attach(func(rising bool) {
			if rising {
				dev.Clock(m.b)
			}
		}); err != nil {
			return nil, fmt.Errorf("machine: attaching %s: %w", dev.Name(), err)
		}
	}
	if m.p != nil {
		if err := m.clk.Attach(func(rising bool) { m.p.Clock(m.b, rising) }); err != nil {
			return nil, fmt.Errorf("machine: attaching PIA: %w", err)
		}
	}

	return m, nil
}

// wireROM lays out the ROM-mode address map: user RAM, extra RAM, PIA
// and boot ROM, each disjoint per spec's memory-window invariant.
func (m *Machine) wireROM(cfg Config) error {
	if cfg.RAMSize <= 0 || cfg.RAMSize > int(KBDAddr) {
		return fmt.Errorf("machine: user RAM size %d exceeds %#04x", cfg.RAMSize, KBDAddr)
	}
	ram, err := memory.New("user RAM", 0x0000, uint16(cfg.RAMSize-1), true)
	if err != nil {
		return err
	}
	m.devices = append(m.devices, ram)

	extra, err := memory.New("extra RAM", extraStart, extraEnd, true)
	if err != nil {
		return err
	}
	if err := extra.LoadData(cfg.ExtraRAM, 0); err != nil {
		return fmt.Errorf("machine: loading extra RAM: %w", err)
	}
	m.devices = append(m.devices, extra)

	rom, err := memory.New("boot ROM", romStart, 0xFFFF, false)
	if err != nil {
		return err
	}
	if err := rom.LoadData(cfg.ROM, 0); err != nil {
		return fmt.Errorf("machine: loading ROM: %w", err)
	}
	m.devices = append(m.devices, rom)

	m.p = pia.New(cfg.Out, KBDAddr, KBDCRAddr, DSPAddr, DSPCRAddr)
	return nil
}

// wireBinary maps RAM across the whole address space, deposits the
// binary image at LoadAddr, and pokes the reset vector to StartAddr
// rather than reading it out of a boot ROM.
func (m *Machine) wireBinary(cfg Config) error {
	ram, err := memory.New("binary RAM", 0x0000, 0xFFFF, true)
	if err != nil {
		return err
	}
	if err := ram.LoadData(cfg.Binary, int(cfg.LoadAddr)); err != nil {
		return fmt.Errorf("machine: loading binary image: %w", err)
	}
	ram.WriteDirect(cpu.ResetVector, uint8(cfg.StartAddr))
	ram.WriteDirect(cpu.ResetVector+1, uint8(cfg.StartAddr>>8))
	m.devices = append(m.devices, ram)
	return nil
}

// PIA returns the machine's PIA, or nil in binary mode where there is
// none. The input thread uses it to post keystrokes.
func (m *Machine) PIA() *pia.PIA {
	return m.p
}

// Control returns the channel the keyboard thread posts Commands on.
func (m *Machine) Control() chan<- pia.Command {
	return m.control
}

// Crashed is closed once the CPU hits an unimplemented opcode. main
// selects on it alongside the OS signal channel so a crash terminates
// the process instead of leaving the clock thread spinning forever.
func (m *Machine) Crashed() <-chan struct{} {
	return m.crashed
}


// Run starts the clock thread and blocks, servicing control Commands
// until Stop is called. It mirrors the teacher's core.Start: a select
// loop over the done channel and the control channel, running the
// clock synchronously on every iteration the machine isn't paused.
func (m *Machine) Run() {
	m.wg.Add(1)
	defer m.wg.Done()

	running := true
	for {
		select {
		case <-m.done:
			m.logger.Info("machine: shutdown")
			return
		case cmd := <-m.control:
			running = m.handleCommand(cmd, running)
		default:
		}

		if !running {
			time.Sleep(time.Millisecond)
			continue
		}
		m.clk.SingleStep()
		if m.c.Crashed() {
			// Terminal: no resumption. This runs outside step(), so
			// saveState's Halt/Resume quiesce (which waits for the
			// CPU to go idle between cycles) does not wait on its own
			// caller the way it would from inside crash() itself.
			m.logger.Error("machine: CPU crashed, halting")
			if err := m.saveState(); err != nil {
				m.logger.Error("machine: crash snapshot", "error", err)
			}
			close(m.crashed)
			return
		}
	}
}

func (m *Machine) handleCommand(cmd pia.Command, running bool) bool {
	switch cmd {
	case pia.Continue:
		return true
	case pia.Break:
		return false
	case pia.Reset:
		m.c.AssertReset(true)
		return true
	case pia.StepInstruction:
		for !m.c.SYNC() {
			m.clk.SingleStep()
		}
		m.clk.SingleStep()
		return false
	case pia.StepClock:
		m.clk.SingleStep()
		return false
	case pia.PrintCycles:
		fmt.Fprintf(os.Stderr, "cycles: %d\n", m.c.TickCount())
		return running
	case pia.Turbo:
		m.clk.SetTurbo(!m.clk.Turbo())
		return running
	case pia.SaveState:
		if err := m.saveState(); err != nil {
			m.logger.Error("machine: save state", "error", err)
		}
		return running
	case pia.LoadState:
		if err := m.loadState(); err != nil {
			m.logger.Error("machine: load state", "error", err)
		}
		return running
	default:
		return running
	}
}

func (m *Machine) saveState() error {
	f, err := os.Create(m.savePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", m.savePath, err)
	}
	defer f.Close()
	return m.c.Snapshot(f, m.readDirect)
}

func (m *Machine) loadState() error {
	f, err := os.Open(m.savePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", m.savePath, err)
	}
	defer f.Close()
	if err := m.c.Restore(f, m.writeDirect); err != nil {
		return err
	}
	m.c.Resume()
	return nil
}

func (m *Machine) readDirect(addr uint16) uint8 {
	for _, dev := range m.devices {
		if dev.Enabled(addr) {
			return dev.ReadDirect(addr)
		}
	}
	return 0
}

func (m *Machine) writeDirect(addr uint16, v uint8) {
	for _, dev := range m.devices {
		if dev.Enabled(addr) {
			dev.WriteDirect(addr, v)
			return
		}
	}
}

// Stop signals the clock thread to exit and waits up to one second for
// it to do so, the same bounded-wait pattern as the teacher's
// core.Stop.
func (m *Machine) Stop() {
	close(m.done)
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		m.logger.Warn("machine: timed out waiting for clock thread")
	}
}
