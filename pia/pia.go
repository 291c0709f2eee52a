/*
 * apple1 - Motorola 6821 PIA register model for keyboard and display.
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

// Package pia models the Motorola 6821 Peripheral Interface Adapter as
// wired in the Apple I: side A drives the keyboard, side B drives a
// column-wrapped character display. It bridges the emulated bus to a
// host terminal.
package pia

import (
	"sync/atomic"

	"github.com/go-emu/apple1/bus"
)

// DDRFlag is control-register bit 2: when set, the data register
// address selects the peripheral register instead of the data
// direction register.
const DDRFlag = 0x04

// MaxColumns is the display's line width before an implicit wrap.
const MaxColumns = 40

// Writer is the destination for translated display output. *os.File
// satisfies it; tests can substitute a bytes.Buffer.
type Writer interface {
	Write(p []byte) (int, error)
}

// PIA holds the 6821's register file and the host-facing keyboard
// mailbox. PA/PB/CRA/CRB/DDRA/DDRB mirror the chip's four addressable
// registers, DDR-flag-selected between peripheral and direction view.
type PIA struct {
	PA, PB     uint8
	CRA, CRB   uint8
	DDRA, DDRB uint8

	PAAddr, PBAddr   uint16
	CRAAddr, CRBAddr uint16

	out Writer
	col int

	pressedKey atomic.Uint32
	dataReady  atomic.Bool
}

// New returns a PIA with its four registers mapped at the given
// addresses, writing translated display output to out.
func New(out Writer, paAddr, craAddr, pbAddr, crbAddr uint16) *PIA {
	return &PIA{
		out:     out,
		PAAddr:  paAddr,
		CRAAddr: craAddr,
		PBAddr:  pbAddr,
		CRBAddr: crbAddr,
	}
}

// PostKey stages a raw host keystroke for the keyboard side. It is a
// no-op if the previous key has not yet been consumed by the CPU,
// matching the original's data_ready gate — the input reader is
// expected to check Ready() before calling PostKey again.
func (p *PIA) PostKey(b byte) {
	if p.dataReady.Load() {
		return
	}
	p.pressedKey.Store(uint32(b))
	p.dataReady.Store(true)
}

// Ready reports whether a staged keystroke is still waiting to be
// latched into PA. The input reader polls this before reading stdin
// again, so it never overwrites an unconsumed key.
func (p *PIA) Ready() bool {
	return p.dataReady.Load()
}

func (p *PIA) processKeyboard() {
	if !p.dataReady.Load() || p.CRA&0x80 != 0 {
		return
	}
	raw := byte(p.pressedKey.Load())
	translated := asciiToApple[raw]
	if translated == 0 {
		return
	}
	// PA7 is tied high on the Apple I.
	p.PA = translated | 0x80
	p.CRA |= 0x80
	p.dataReady.Store(false)
}

func (p *PIA) processDisplay() {
	if p.PB&0x80 == 0 {
		return
	}
	p.PB &= 0x7F
	translated := appleToASCII[p.PB]
	if translated == 0 {
		return
	}
	if translated == 0x0A {
		p.col = 0
	} else if p.col == MaxColumns {
		p.out.Write([]byte{'\n'})
		p.col = 1
	} else {
		p.col++
	}
	p.out.Write([]byte{translated})
}

// Clock is the phi2 callback. It only acts on the rising half (status
// true), matching clock_pia in the original: it services the keyboard
// and display latches, then answers or accepts one register access on
// the bus if the address matches one of the four PIA registers.
func (p *PIA) Clock(b *bus.Bus, rising bool) {
	if !rising {
		return
	}

	selectedA := &p.DDRA
	selectedB := &p.DDRB
	if p.CRA&DDRFlag != 0 {
		selectedA = &p.PA
	}
	if p.CRB&DDRFlag != 0 {
		selectedB = &p.PB
	}

	p.processKeyboard()
	p.processDisplay()

	if b.RW {
		switch b.Addr {
		case p.CRAAddr:
			b.Data = p.CRA
		case p.CRBAddr:
			b.Data = p.CRB
		case p.PAAddr:
			b.Data = *selectedA
			// Reading PA signals the keyboard register has been
			// consumed and is available for the next keystroke.
			p.CRA &= 0x7F
		case p.PBAddr:
			b.Data = *selectedB
		}
		return
	}

	switch b.Addr {
	case p.CRAAddr:
		p.CRA = b.Data & 0x3F
	case p.CRBAddr:
		p.CRB = b.Data
	case p.PAAddr:
		*selectedA = b.Data
	case p.PBAddr:
		// Setting PB from the CPU side also raises the strobe bit.
		*selectedB = b.Data | 0x80
	}
}
