/*
 * apple1 - Emulator control commands decoded from the keyboard stream.
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

package pia

// Command is an emulator-level control request, decoded out of the
// host keystroke stream rather than delivered to the emulated keyboard
// register.
type Command int

const (
	NoCommand Command = iota
	UnknownCommand
	Continue
	Reset
	Break
	StepInstruction
	StepClock
	PrintCycles
	SaveState
	LoadState
	Turbo
)

const (
	tildeKey = 0x60
	tabKey   = 0x09
	escKey   = 0x1B
)

// decodeEscape maps the trailing bytes of a CSI sequence (already
// stripped of ESC) to a Command, mirroring read_escape_sequence's
// memcmp ladder for F5-F12.
func decodeEscape(seq []byte) Command {
	if len(seq) == 0 {
		return NoCommand
	}
	switch string(seq) {
	case "[15~":
		return Continue
	case "[17~":
		return SaveState
	case "[18~":
		return LoadState
	case "[19~":
		return Reset
	case "[20~":
		return Break
	case "[21~":
		return StepInstruction
	case "[23~":
		return StepClock
	case "[24~":
		return PrintCycles
	}
	return UnknownCommand
}
