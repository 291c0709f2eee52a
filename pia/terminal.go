/*
 * apple1 - Raw-mode terminal front end for the PIA's keyboard side.
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

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"
)

// escapeDrainWindow bounds how long the reader waits for the
// continuation bytes of a CSI sequence after seeing ESC, the Go
// analogue of the original's ioctl(FIONREAD) drain loop.
const escapeDrainWindow = 10 * time.Millisecond

// Terminal puts stdin into raw mode for the lifetime of the emulator
// and turns the host keystroke stream into PIA keyboard input plus
// out-of-band emulator Commands (the backtick, Tab and F5-F12 keys).
type Terminal struct {
	fd       int
	restore  *term.State
	bytes    chan byte
	readErrs chan error
}

// NewTerminal puts fd (normally int(os.Stdin.Fd())) into raw mode and
// starts the low-level byte reader goroutine. Callers must call
// Restore when done, typically via defer.
func NewTerminal(fd int) (*Terminal, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("pia: entering raw mode: %w", err)
	}
	t := &Terminal{
		fd:       fd,
		restore:  state,
		bytes:    make(chan byte),
		readErrs: make(chan error, 1),
	}
	go t.readLoop()
	return t, nil
}

// readLoop reads one byte at a time and hands it to Run over an
// unbuffered channel, so the send blocks until Run is ready to take
// it. Run only receives while the PIA's keyboard slot is empty, which
// means this loop cannot call Read again until then either: an
// unconsumed keystroke stays sitting in the kernel's tty queue rather
// than an internal buffer, the same place input_run's data_ready gate
// leaves it in the original.
func (t *Terminal) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n == 1 {
			t.bytes <- buf[0]
		}
		if err != nil {
			if err != io.EOF {
				t.readErrs <- err
			}
			return
		}
	}
}

// Restore returns the terminal to its original (cooked) mode.
func (t *Terminal) Restore() {
	if t.restore != nil {
		term.Restore(t.fd, t.restore)
	}
}

// ClearScreen emits the same ANSI sequence the original's
// clear_screen wrote: clear the viewport and home the cursor.
func ClearScreen(out Writer) {
	out.Write([]byte("\x1b[2J\x1b[1;1H"))
}

// Run blocks, translating host keystrokes into either staged PIA
// keyboard input (via p.PostKey) or emulator Commands delivered to
// dispatch, until stop reports true. It never reads ahead of the PIA:
// while a previous keystroke is still unconsumed it does not dequeue
// from readLoop at all, so nothing already typed is lost, matching
// input_run's data_ready gate on the read() call itself rather than
// discarding a byte already read.
func (t *Terminal) Run(stop func() bool, p *PIA, out Writer, dispatch func(Command)) {
	for !stop() {
		var byteCh chan byte
		if !p.Ready() {
			byteCh = t.bytes
		}

		var b byte
		select {
		case b = <-byteCh:
		case err := <-t.readErrs:
			slog.Error("pia: reading from stdin", "error", err)
			return
		case <-time.After(50 * time.Millisecond):
			continue
		}

		switch b {
		case tildeKey:
			ClearScreen(out)
			continue
		case tabKey:
			dispatch(Turbo)
			continue
		case escKey:
			seq := t.drainEscape()
			cmd := decodeEscape(seq)
			if cmd != NoCommand {
				dispatch(cmd)
				continue
			}
		}

		p.PostKey(b)
	}
}

// drainEscape collects whatever continuation bytes arrive within
// escapeDrainWindow of an ESC byte, the same bound the original
// enforces via a nonblocking ioctl(FIONREAD) poll loop.
func (t *Terminal) drainEscape() []byte {
	var seq []byte
	deadline := time.After(escapeDrainWindow)
	for {
		select {
		case b := <-t.bytes:
			seq = append(seq, b)
		case <-deadline:
			return seq
		}
	}
}
