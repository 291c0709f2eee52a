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

package machine

import (
	"bytes"
	"path/filepath"
	"testing"
)

// ROM mode wires a PIA; binary mode does not.
func TestROMModeWiresPIA(t *testing.T) {
	rom := make([]uint8, 0x100)
	m, err := New(Config{
		RAMSize: 0x1000,
		ROM:     rom,
		Out:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.PIA() == nil {
		t.Error("ROM mode should wire a PIA")
	}
}

func TestBinaryModeHasNoPIA(t *testing.T) {
	m, err := New(Config{
		Binary:    []uint8{0xA9, 0x42},
		LoadAddr:  0x8000,
		StartAddr: 0x8000,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.PIA() != nil {
		t.Error("binary mode should have no PIA")
	}
}

// A RAM size that collides with the fixed keyboard address is
// rejected rather than silently overlapping the PIA window.
func TestROMModeRejectsOversizedRAM(t *testing.T) {
	_, err := New(Config{
		RAMSize: int(KBDAddr) + 1,
		ROM:     make([]uint8, 0x100),
		Out:     &bytes.Buffer{},
	})
	if err == nil {
		t.Error("New should reject user RAM overlapping the PIA window")
	}
}

// Binary mode pokes the reset vector to StartAddr instead of reading
// it out of a boot ROM, so after the 7-cycle reset sequence the CPU is
// fetching at the address the caller asked for.
func TestBinaryModeBootsAtStartAddr(t *testing.T) {
	m, err := New(Config{
		Binary:    []uint8{0xEA}, // NOP
		LoadAddr:  0x8000,
		StartAddr: 0x8000,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 7; i++ {
		m.clk.SingleStep()
	}
	if m.c.SYNC() == false {
		t.Fatal("setup: CPU should be at a SYNC boundary after boot")
	}
	if m.c.PC != 0x8000 {
		t.Errorf("PC = %#04x, want StartAddr $8000", m.c.PC)
	}
}

// Save then load round-trips register and memory state through the
// configured save path.
func TestSaveAndLoadStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	savePath := filepath.Join(dir, "state.bin")

	m, err := New(Config{
		Binary:    []uint8{0xA9, 0x42, 0x8D, 0x00, 0x90}, // LDA #$42; STA $9000
		LoadAddr:  0x8000,
		StartAddr: 0x8000,
		SavePath:  savePath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Run the reset sequence plus enough cycles for LDA and STA to
	// complete: 7 + 2 + 4.
	for i := 0; i < 13; i++ {
		m.clk.SingleStep()
	}
	if got := m.readDirect(0x9000); got != 0x42 {
		t.Fatalf("setup: memory[$9000] = %#02x, want $42", got)
	}

	if err := m.saveState(); err != nil {
		t.Fatalf("saveState: %v", err)
	}

	m.writeDirect(0x9000, 0x00)
	if err := m.loadState(); err != nil {
		t.Fatalf("loadState: %v", err)
	}

	if got := m.readDirect(0x9000); got != 0x42 {
		t.Errorf("memory[$9000] after restore = %#02x, want $42", got)
	}
	if m.c.Crashed() {
		t.Error("CPU should not be left crashed after a restore")
	}
}
