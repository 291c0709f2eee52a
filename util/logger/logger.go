/*
 * apple1 - Wrapper for slog
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

// Package logger implements a plain-text slog.Handler: one timestamped
// line per record to an optional log file, mirrored to stderr. The
// stderr copy is written with explicit CRLF line endings and its
// group-valued attrs (the register/internal/external triples a CPU
// crash dump records) are flattened to dotted "key=value" pairs rather
// than Go's default struct formatting, since that copy is meant to be
// read on the same raw-mode terminal the PIA front end owns.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

// LogHandler writes slog records as "time level message key=value...",
// one line per record, guarded by a shared mutex since multiple
// goroutines (clock, input, machine orchestrator) all log concurrently.
type LogHandler struct {
	out       io.Writer
	h         slog.Handler
	mu        *sync.Mutex
	mirrorAll bool
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{h: h.h.WithAttrs(attrs), mu: h.mu, mirrorAll: h.mirrorAll, out: h.out}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{h: h.h.WithGroup(name), mu: h.mu, mirrorAll: h.mirrorAll, out: h.out}
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}

	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			strs = appendAttr(strs, "", a)
			return true
		})
	}
	line := strings.Join(strs, " ")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write([]byte(line + "\n"))
	}

	if h.mirrorAll || r.Level >= slog.LevelWarn {
		// The PIA front end puts stdin into raw mode for the life of the
		// process; on most hosts stderr shares that same tty, and raw
		// mode disables the kernel's \n -> \r\n translation. Without the
		// explicit \r a crash dump or warning stairsteps down the screen
		// instead of starting each line at the left margin.
		_, err = os.Stderr.Write([]byte(line + "\r\n"))
	}
	return err
}

// appendAttr flattens a onto strs as "key=value", descending into
// group-valued attrs (cpu.crash records the register/internal/external
// state tuple as three nested groups) under a dotted key so every leaf
// prints as plain text instead of Go's default formatting for a
// []slog.Attr.
func appendAttr(strs []string, prefix string, a slog.Attr) []string {
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			strs = appendAttr(strs, key, ga)
		}
		return strs
	}
	return append(strs, key+"="+strconv.Quote(a.Value.String()))
}

// SetMirrorAll toggles whether every record, not just warnings and
// errors, is mirrored to stderr.
func (h *LogHandler) SetMirrorAll(mirrorAll bool) {
	h.mirrorAll = mirrorAll
}

// NewHandler returns a LogHandler writing to file (nil discards the
// file copy) at the level and source-inclusion opts specifies.
func NewHandler(file io.Writer, opts *slog.HandlerOptions) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LogHandler{
		out: file,
		h: slog.NewTextHandler(file, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: nil,
		}),
		mu: &sync.Mutex{},
	}
}
