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

// Package clock drives a fixed, ordered list of chip callbacks through two
// half-phases per tick, pacing wall-clock time to a target frequency.
package clock

import (
	"errors"
	"sync/atomic"
	"time"
)

// MaxChips bounds how many devices one Clock can drive.
const MaxChips = 255

// ticksPerSync is how many ticks pass between pacing samples.
const ticksPerSync = 1000

// Callback is invoked once per half-phase. rising is true on the tick
// half, false on the tock half.
type Callback func(rising bool)

// Clock drives its attached chips in insertion order, every half-phase.
type Clock struct {
	targetHz  uint32
	chips     []Callback
	adjustNs  int64
	turbo     atomic.Bool
	tickCount uint64
}

// New returns a Clock paced to targetHz (0 keeps the zero-value default
// of the caller's choosing; callers normally pass 1_000_000 for 1 MHz).
func New(targetHz uint32) *Clock {
	return &Clock{targetHz: targetHz}
}

// Attach registers a chip callback, invoked in the order attached.
// It fails once the fixed capacity is exceeded; this is a startup-time
// configuration error, never a runtime one.
func (c *Clock) Attach(cb Callback) error {
	if len(c.chips) >= MaxChips {
		return errors.New("clock: too many chips attached")
	}
	c.chips = append(c.chips, cb)
	return nil
}

// SetTurbo enables or disables the pacing sleep; chips still run at full
// host speed either way.
func (c *Clock) SetTurbo(on bool) {
	c.turbo.Store(on)
}

// Turbo reports whether pacing sleeps are currently suppressed.
func (c *Clock) Turbo() bool {
	return c.turbo.Load()
}

// AdjustNs nudges the computed pacing sleep by a signed offset that is
// subtracted from it: positive shortens the sleep and speeds the clock
// up, negative lengthens it and slows the clock down.
func (c *Clock) AdjustNs(delta int64) {
	c.adjustNs += delta
}

// Tick invokes every attached chip with rising=true, in insertion order.
func (c *Clock) Tick() {
	for _, cb := range c.chips {
		cb(true)
	}
}

// Tock invokes every attached chip with rising=false, in insertion order.
func (c *Clock) Tock() {
	for _, cb := range c.chips {
		cb(false)
	}
}

// SingleStep runs one tick+tock pair, used by the debugger control
// surface for single-cycle stepping.
func (c *Clock) SingleStep() {
	c.Tick()
	c.Tock()
	c.tickCount++
}

// TickCount returns the number of tick+tock pairs executed so far.
func (c *Clock) TickCount() uint64 {
	return atomic.LoadUint64(&c.tickCount)
}

// Run blocks, driving tick/tock pairs until stop reports true. Every
// ticksPerSync ticks it sleeps to pace wall-clock time to targetHz,
// skipping the sleep when turbo is set or the computed duration is
// negative (clamped to zero, never a negative nanosleep).
func (c *Clock) Run(stop func() bool) {
	var count int
	begin := time.Now()
	for !stop() {
		c.Tick()
		c.Tock()
		c.tickCount++
		if c.turbo.Load() {
			continue
		}
		count++
		if count == ticksPerSync {
			elapsed := time.Since(begin)
			periodNs := int64(1e9/float64(c.targetHz)) * ticksPerSync
			sleepNs := periodNs - elapsed.Nanoseconds() - c.adjustNs
			if sleepNs > 0 {
				time.Sleep(time.Duration(sleepNs))
			}
			begin = time.Now()
			count = 0
		}
	}
}
