/*
 * apple1 - 6502 ALU operations shared across addressing modes.
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

func (c *CPU) doORA(v uint8) {
	c.A |= v
	c.updateFlagsNZ(c.A)
}

func (c *CPU) doAND(v uint8) {
	c.A &= v
	c.updateFlagsNZ(c.A)
}

func (c *CPU) doEOR(v uint8) {
	c.A ^= v
	c.updateFlagsNZ(c.A)
}

// doBIT sets Z from A&v, and copies v's N and V bits straight into P,
// the one instruction where the tested operand's high bits leak into
// status rather than the result's.
func (c *CPU) doBIT(v uint8) {
	c.P &^= FlagZ | FlagN | FlagV
	if c.A&v == 0 {
		c.P |= FlagZ
	}
	c.P = (c.P & 0x3F) | (v & 0xC0)
}

// doADC implements both binary and BCD addition; decimal mode splits
// each nibble, corrects each independently past 9, then repacks.
func (c *CPU) doADC(v uint8) {
	prev := c.A
	var result uint16
	if c.P&FlagD != 0 {
		lo := (prev & 0x0F) + (v & 0x0F) + (c.P & FlagC)
		hi := (prev >> 4) + (v >> 4)
		c.P &^= FlagV | FlagC
		if lo > 9 {
			lo += 6
			hi++
		}
		if hi > 9 {
			hi += 6
			c.P |= FlagC
		}
		result = uint16(lo&0x0F) | uint16(hi&0x0F)<<4
	} else {
		result = uint16(prev) + uint16(v) + uint16(c.P&FlagC)
		c.P &^= FlagV | FlagC
		if result&0xFF00 != 0 {
			c.P |= FlagC
		}
	}
	if ^(prev^v)&uint8(prev^uint8(result))&0x80 != 0 {
		c.P |= FlagV
	}
	c.A = uint8(result)
	c.updateFlagsNZ(c.A)
}

// doSBC mirrors doADC; the carry flag doubles as the inverted borrow,
// per the 6502 convention (SEC before a single-precision subtraction).
func (c *CPU) doSBC(v uint8) {
	prev := c.A
	var result uint16
	if c.P&FlagD != 0 {
		lo := int16(prev&0x0F) - int16(v&0x0F) - int16((^c.P)&FlagC)
		hi := (int16(prev&0xF0) - int16(v&0xF0)) >> 4
		c.P &^= FlagV | FlagC
		if lo < 0 {
			lo += 10
			hi--
		}
		if hi < 0 {
			hi += 10
		} else {
			c.P |= FlagC
		}
		result = uint16(lo&0x0F) | uint16(hi&0x0F)<<4
	} else {
		result = uint16(prev) - uint16(v) - uint16((^c.P)&FlagC)
		c.P &^= FlagV | FlagC
		if result&0xFF00 == 0 {
			c.P |= FlagC
		}
	}
	if (prev^v)&uint8(prev^uint8(result))&0x80 != 0 {
		c.P |= FlagV
	}
	c.A = uint8(result)
	c.updateFlagsNZ(c.A)
}

func (c *CPU) doLoad(reg *uint8, v uint8) {
	*reg = v
	c.updateFlagsNZ(*reg)
}

func (c *CPU) doCMP(a, b uint8) {
	result := uint16(a) - uint16(b)
	c.updateFlagsNZ(uint8(result))
	c.P &^= FlagC
	if result&0xFF00 == 0 {
		c.P |= FlagC
	}
}

func (c *CPU) doASL(x uint8) uint8 {
	res := x << 1
	c.P &^= FlagC
	if x&0x80 != 0 {
		c.P |= FlagC
	}
	c.updateFlagsNZ(res)
	return res
}

func (c *CPU) doROL(x uint8) uint8 {
	res := x<<1 | (c.P & FlagC)
	c.P &^= FlagC
	if x&0x80 != 0 {
		c.P |= FlagC
	}
	c.updateFlagsNZ(res)
	return res
}

func (c *CPU) doLSR(x uint8) uint8 {
	res := x >> 1
	c.P &^= FlagC
	if x&0x01 != 0 {
		c.P |= FlagC
	}
	c.updateFlagsNZ(res)
	return res
}

func (c *CPU) doROR(x uint8) uint8 {
	res := x>>1 | (c.P&FlagC)<<7
	c.P &^= FlagC
	if x&0x01 != 0 {
		c.P |= FlagC
	}
	c.updateFlagsNZ(res)
	return res
}
