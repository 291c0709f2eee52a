/*
 * apple1 - Addressable memory device attached to the bus.
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

// Package memory implements a flat, windowed memory device: RAM, extra
// RAM, or ROM, each occupying a fixed address range and attached to the
// shared bus on the CPU's phi2 phase.
package memory

import (
	"fmt"

	"github.com/go-emu/apple1/bus"
)

// Device is one contiguous, fixed-size window of address space.
// Writable is false for ROM: clock_mem's write path never fires for it.
type Device struct {
	name     string
	start    uint16
	end      uint16
	cells    []uint8
	writable bool
}

// New allocates a Device covering [start, end] inclusive. end must be
// >= start; the window size is end-start+1 bytes.
func New(name string, start, end uint16, writable bool) (*Device, error) {
	if end < start {
		return nil, fmt.Errorf("memory: %s: end %#04x precedes start %#04x", name, end, start)
	}
	return &Device{
		name:     name,
		start:    start,
		end:      end,
		cells:    make([]uint8, int(end)-int(start)+1),
		writable: writable,
	}, nil
}

// Name returns the device's label, used in logging and crash dumps.
func (d *Device) Name() string {
	return d.name
}

// Start returns the device's first mapped address.
func (d *Device) Start() uint16 {
	return d.start
}

// End returns the device's last mapped address, inclusive.
func (d *Device) End() uint16 {
	return d.end
}

// Enabled reports whether addr falls inside this device's window.
func (d *Device) Enabled(addr uint16) bool {
	return addr >= d.start && addr <= d.end
}

// LoadData copies data into the device starting at offset bytes past
// start. It is an error for the data to run past the device's window;
// this is the Go analogue of the original's range-checked load_data.
func (d *Device) LoadData(data []uint8, offset int) error {
	if offset < 0 || offset+len(data) > len(d.cells) {
		return fmt.Errorf("memory: %s: load of %d bytes at offset %d overflows %d-byte window",
			d.name, len(data), offset, len(d.cells))
	}
	copy(d.cells[offset:], data)
	return nil
}

// Clock is the phi2 callback: on a read it drives Data, on a write it
// latches Data, only for addresses inside this device's window. Writes
// to a non-writable device (ROM) are silently ignored, matching the
// original's read_only branch in clock_mem.
func (d *Device) Clock(b *bus.Bus) {
	if !d.Enabled(b.Addr) {
		return
	}
	idx := b.Addr - d.start
	if b.RW {
		b.Data = d.cells[idx]
		return
	}
	if d.writable {
		d.cells[idx] = b.Data
	}
}

// ReadDirect returns the byte at addr without going through the bus,
// used by snapshot walking and crash dumps.
func (d *Device) ReadDirect(addr uint16) uint8 {
	return d.cells[addr-d.start]
}

// WriteDirect stores a byte at addr without going through the bus,
// bypassing the writable flag. Used by snapshot restore and by the
// binary-load path that pokes the reset vector directly into RAM.
func (d *Device) WriteDirect(addr uint16, v uint8) {
	d.cells[addr-d.start] = v
}
