/*
 * apple1 - CPU snapshot save/restore.
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

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const memSize = 0x10000

// snapshotHeader is the fixed-size register/latch record that precedes
// the 64 KiB memory image, in the order the snapshot tuple names them:
// (A, X, Y, S, P, PC, data_bus, addr_bus, rw, SYNC, tick_count, IR,
// break_status, AD). binary.Write/Read serialize it field by field, so
// no manual padding is needed.
type snapshotHeader struct {
	A, X, Y, S, P uint8
	PC            uint16
	DataBus       uint8
	AddrBus       uint16
	RW            bool
	Sync          bool
	TickCount     uint64
	IR            uint16
	BreakStatus   uint8
	AD            uint16
}

// Snapshot quiesces the CPU, then writes the register/latch record
// followed by a full 64 KiB memory image to w. read supplies one
// memory byte at addr; the caller (the machine package, which owns the
// memory devices) decides how that byte is fetched, letting this code
// stay ignorant of the address map's device windows.
func (c *CPU) Snapshot(w io.Writer, read func(addr uint16) uint8) error {
	c.Halt()
	defer c.Resume()

	hdr := snapshotHeader{
		A: c.A, X: c.X, Y: c.Y, S: c.S, P: c.P,
		PC:          c.PC,
		DataBus:     c.b.Data,
		AddrBus:     c.addr,
		RW:          c.rw,
		Sync:        c.sync,
		TickCount:   c.TickCount(),
		IR:          c.IR,
		BreakStatus: c.breakStatus,
		AD:          c.AD,
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("cpu: writing snapshot header: %w", err)
	}

	var mem [memSize]byte
	for addr := 0; addr < memSize; addr++ {
		mem[addr] = read(uint16(addr))
	}
	if err := binary.Write(bw, binary.LittleEndian, mem); err != nil {
		return fmt.Errorf("cpu: writing snapshot memory image: %w", err)
	}
	return bw.Flush()
}

// Restore quiesces the CPU, reloads the memory image via write, then
// restores every register and internal latch from the header. The CPU
// is left halted; callers that want it running again must call Resume.
func (c *CPU) Restore(r io.Reader, write func(addr uint16, v uint8)) error {
	c.Halt()

	var hdr snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("cpu: reading snapshot header: %w", err)
	}

	var mem [memSize]byte
	if err := binary.Read(r, binary.LittleEndian, &mem); err != nil {
		return fmt.Errorf("cpu: reading snapshot memory image: %w", err)
	}
	for addr := 0; addr < memSize; addr++ {
		write(uint16(addr), mem[addr])
	}

	c.A, c.X, c.Y, c.S, c.P = hdr.A, hdr.X, hdr.Y, hdr.S, hdr.P
	c.PC = hdr.PC
	c.b.Data = hdr.DataBus
	c.addr = hdr.AddrBus
	c.b.Addr = hdr.AddrBus
	c.rw = hdr.RW
	c.b.RW = hdr.RW
	c.sync = hdr.Sync
	c.tickCount = hdr.TickCount
	c.IR = hdr.IR
	c.breakStatus = hdr.BreakStatus
	c.AD = hdr.AD

	return nil
}
