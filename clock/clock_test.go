/*
 * apple1 - Two-phase clock driving the attached chips.
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

package clock

import "testing"

// Attach refuses a chip once MaxChips is already attached.
func TestAttachRejectsPastCapacity(t *testing.T) {
	c := New(1_000_000)
	for i := 0; i < MaxChips; i++ {
		if err := c.Attach(func(rising bool) {}); err != nil {
			t.Fatalf("Attach #%d: unexpected error: %v", i, err)
		}
	}
	if err := c.Attach(func(rising bool) {}); err == nil {
		t.Error("Attach should fail once MaxChips chips are already attached")
	}
}

// Tick invokes every chip with rising=true, in attach order; Tock with
// rising=false.
func TestTickTockOrderAndPhase(t *testing.T) {
	c := New(1_000_000)
	var order []int
	var phases []bool
	for i := 0; i < 3; i++ {
		i := i
		c.Attach(func(rising bool) {
			order = append(order, i)
			phases = append(phases, rising)
		})
	}

	c.Tick()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("Tick order = %v, want [0 1 2]", order)
	}
	for _, rising := range phases {
		if !rising {
			t.Error("every callback during Tick should see rising=true")
		}
	}

	order = nil
	phases = nil
	c.Tock()
	for _, rising := range phases {
		if rising {
			t.Error("every callback during Tock should see rising=false")
		}
	}
}

// SingleStep runs exactly one tick+tock pair and advances TickCount by one.
func TestSingleStepAdvancesTickCount(t *testing.T) {
	c := New(1_000_000)
	var ticks, tocks int
	c.Attach(func(rising bool) {
		if rising {
			ticks++
		} else {
			tocks++
		}
	})

	c.SingleStep()
	c.SingleStep()

	if ticks != 2 || tocks != 2 {
		t.Errorf("ticks=%d tocks=%d, want 2 and 2", ticks, tocks)
	}
	if c.TickCount() != 2 {
		t.Errorf("TickCount() = %d, want 2", c.TickCount())
	}
}

// Turbo toggles independent of whether chips fire; it only affects
// Run's pacing sleep.
func TestTurboToggle(t *testing.T) {
	c := New(1_000_000)
	if c.Turbo() {
		t.Fatal("Turbo should default to false")
	}
	c.SetTurbo(true)
	if !c.Turbo() {
		t.Error("Turbo should report true after SetTurbo(true)")
	}
	c.SetTurbo(false)
	if c.Turbo() {
		t.Error("Turbo should report false after SetTurbo(false)")
	}
}

// Run with turbo set drains as fast as the host allows and stops as
// soon as stop reports true, with no pacing sleep in the loop.
func TestRunStopsPromptlyUnderTurbo(t *testing.T) {
	c := New(1_000_000)
	c.SetTurbo(true)
	var n int
	c.Attach(func(rising bool) {
		if rising {
			n++
		}
	})

	c.Run(func() bool { return n >= 5000 })

	if n != 5000 {
		t.Errorf("n = %d, want exactly 5000 (Run should stop as soon as stop() reports true)", n)
	}
}
