/*
 * apple1 - MOS 6502 cycle-accurate core.
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

// Package cpu implements a cycle-accurate MOS 6502: every call to
// PhiTwo advances the machine by exactly one clock phase, the same
// granularity the real part operates at. The instruction register
// doubles as a micro-program counter: its low three bits track which
// cycle of the current opcode is executing.
package cpu

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-emu/apple1/bus"
)

// Stack page addresses, fixed on the 6502.
const (
	stackTop  uint16 = 0x0100
	stackBase uint16 = 0x01FF
)

// Interrupt vector addresses.
const (
	NMIVector   uint16 = 0xFFFA
	ResetVector uint16 = 0xFFFC
	IRQVector   uint16 = 0xFFFE
)

// break_status bits, set from the pins every cycle and cleared once
// the vector sequence has latched AD with the chosen vector address.
const (
	breakIRQ uint8 = 0x01
	breakNMI uint8 = 0x02
	breakRST uint8 = 0x04
)

// Processor status flag bits.
const (
	FlagC uint8 = 0x01
	FlagZ uint8 = 0x02
	FlagI uint8 = 0x04
	FlagD uint8 = 0x08
	FlagB uint8 = 0x10
	FlagX uint8 = 0x20 // unused, always reads back as 1
	FlagV uint8 = 0x40
	FlagN uint8 = 0x80
)

// irStatusMask isolates the micro-cycle index out of IR; the opcode
// itself lives in the high bits.
const irStatusMask uint16 = 0x07

// CPU is the programmer-visible register file plus the internal
// latches needed to step the part one clock phase at a time.
type CPU struct {
	A, X, Y uint8
	PC      uint16
	S       uint8
	P       uint8

	IR          uint16
	AD          uint16
	breakStatus uint8
	rw          bool
	addr        uint16
	sync        bool

	irq atomic.Bool
	nmi atomic.Bool
	res atomic.Bool
	rdy atomic.Bool
	so  atomic.Bool

	b *bus.Bus

	// enabled/active form the quiesce handshake a snapshot uses to
	// pause the CPU between cycles without stopping the clock.
	enabled atomic.Bool
	active  atomic.Bool

	tickCount uint64
	crashed   atomic.Bool

	logger *slog.Logger
}

// New returns a CPU wired to b. Its RES pin is asserted at
// construction, so the first cycles executed will run the reset
// vector sequence, matching power-up behaviour.
func New(b *bus.Bus, logger *slog.Logger) *CPU {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CPU{
		b:      b,
		rw:     true,
		sync:   true,
		logger: logger,
	}
	c.enabled.Store(true)
	c.rdy.Store(true)
	c.res.Store(true)
	return c
}

// Halt pauses the CPU before its next cycle and blocks until it has
// gone idle. Snapshot save/restore use this to freeze the machine
// without stopping the clock goroutine driving the other chips.
func (c *CPU) Halt() {
	c.enabled.Store(false)
	for c.active.Load() {
	}
}

// Resume re-enables cycle processing after Halt.
func (c *CPU) Resume() {
	c.enabled.Store(true)
}

// AssertIRQ, AssertNMI and AssertReset drive the corresponding input
// pin. All three are sampled as level inputs every cycle, including
// NMI: this deviates from real 6502 hardware (where NMI is
// edge-triggered) but matches the documented behaviour of this core,
// which is not to be "fixed" to edge semantics.
func (c *CPU) AssertIRQ(level bool)   { c.irq.Store(level) }
func (c *CPU) AssertNMI(level bool)   { c.nmi.Store(level) }
func (c *CPU) AssertReset(level bool) { c.res.Store(level) }
func (c *CPU) SetReady(level bool)    { c.rdy.Store(level) }
func (c *CPU) SetOverflow(level bool) { c.so.Store(level) }

// SYNC reports whether the current cycle is an opcode fetch.
func (c *CPU) SYNC() bool { return c.sync }

// Crashed reports whether the CPU hit an unimplemented opcode. The
// owning Machine polls this from outside step() (never from within
// it: Snapshot's Halt quiesce would deadlock waiting for a cycle that
// is itself the caller) to trigger the snapshot write and stop signal
// cpu_crash performs inline in the original.
func (c *CPU) Crashed() bool { return c.crashed.Load() }

// TickCount returns the number of cycles the CPU has executed.
func (c *CPU) TickCount() uint64 { return atomic.LoadUint64(&c.tickCount) }

// setAddr stages the address the current micro-step wants to present;
// it is copied onto the bus once the step function returns, mirroring
// the original always assigning *cpu->addr_bus inside every case arm.
func (c *CPU) setAddr(addr uint16) {
	c.addr = addr
}

// PhiTwo is the Clock callback: the CPU does its work entirely on the
// phi2 half, matching the original's clock_cpu/cpu_cycle split (phi1
// exists only to give other chips a chance to settle ahead of it).
func (c *CPU) PhiTwo(rising bool) {
	if !rising || !c.enabled.Load() {
		return
	}
	c.active.Store(true)
	c.step()
	atomic.AddUint64(&c.tickCount, 1)
	c.active.Store(false)
}

// step samples the interrupt pins, drives the bus for the current
// micro-cycle, and dispatches to the active opcode's handler.
func (c *CPU) step() {
	if c.res.Load() {
		c.breakStatus |= breakRST
	}
	if c.nmi.Load() {
		c.breakStatus |= breakNMI
	}
	if c.irq.Load() {
		c.breakStatus |= breakIRQ
	}

	if c.rw && !c.rdy.Load() {
		// RDY only stalls read cycles; a write always completes.
		return
	}

	// Level-sampled like NMI/IRQ/RST above: V is set every cycle SO is
	// held asserted, not just on a falling edge.
	if c.so.Load() {
		c.P |= FlagV
	}

	if c.sync {
		if c.breakStatus != 0 {
			c.IR = 0x00 // forced BRK
		} else {
			c.IR = uint16(c.b.Data) << 3
			c.PC++
		}
		c.sync = false
	}

	c.rw = true
	op := uint8(c.IR >> 3)
	dispatch(c, op, c.IR&irStatusMask)
	c.IR++

	c.b.RW = c.rw
	c.b.Addr = c.addr
}

// fetch requests the next opcode: it presents PC on the bus and
// reasserts SYNC. PC itself advances in step, once the opcode byte has
// actually been read off the bus.
func (c *CPU) fetch() {
	c.setAddr(c.PC)
	c.sync = true
}

// pushStack writes data to the hardware stack page at S and
// decrements S, matching push_stack in the original.
func (c *CPU) pushStack(data uint8) {
	c.setAddr(stackTop | uint16(c.S))
	c.b.Data = data
	c.rw = false
	c.S--
}

// updateFlagsNZ sets Z and N from the given value, the pattern shared
// by every load/transfer/logical/arithmetic instruction.
func (c *CPU) updateFlagsNZ(v uint8) {
	if v == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
	if v&0x80 != 0 {
		c.P |= FlagN
	} else {
		c.P &^= FlagN
	}
}

// crash dumps the full register/internal/external state tuple
// cpu_crash dumps to stderr in the original, then latches crashed.
// It deliberately does not itself write a snapshot or halt anything:
// it runs synchronously inside step(), and Snapshot's Halt quiesce
// would spin forever waiting for a step() call that is its own
// caller. The owning Machine notices Crashed() from its outer loop,
// outside any step() call, and performs the snapshot write and stop
// signal there instead.
func (c *CPU) crash(op uint8) {
	c.crashed.Store(true)
	c.logger.Error("cpu: unimplemented opcode, crashing",
		"opcode", op,
		slog.Group("registers",
			"pc", c.PC, "s", c.S, "p", c.P, "a", c.A, "x", c.X, "y", c.Y),
		slog.Group("internal",
			"ad", c.AD, "break_status", c.breakStatus, "ir", c.IR, "tick_count", c.TickCount()),
		slog.Group("external",
			"addr_bus", c.b.Addr, "data_bus", c.b.Data,
			"irq", c.irq.Load(), "nmi", c.nmi.Load(), "res", c.res.Load(),
			"rdy", c.rdy.Load(), "rw", c.b.RW, "so", c.so.Load(), "sync", c.sync))
}
