/*
 * apple1 - Shared address/data bus.
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

// Package bus carries the 16-bit address line, 8-bit data line and
// read/write direction bit shared by the CPU and its attached devices.
// It is a passive carrier: it never computes, it only holds state that
// the CPU and devices read and write during a clock phase.
package bus

// Bus is the shared state every chip sees during a clock phase.
//
// RW = true means the CPU is reading: a device drives Data.
// RW = false means the CPU is writing: a device latches Data.
type Bus struct {
	Addr uint16
	Data uint8
	RW   bool
}

// New returns a bus in its post-power-up state: reading, address 0.
func New() *Bus {
	return &Bus{RW: true}
}
