/*
 * apple1 - 6502 addressing-mode micro-cycle sequences.
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

// writeOpcodes is the static set of opcodes that end in a bus write.
// It only changes behaviour inside argAbsoluteIndexed and
// argIndirectIndex: those two modes skip their speculative extra
// cycle when the effective address turns out not to cross a page,
// unless the opcode is going to write, in which case real hardware
// always takes the extra cycle regardless of the page crossing.
var writeOpcodes = map[uint8]bool{
	0x0A: true, 0x06: true, 0x16: true, 0x0E: true, 0x1E: true,
	0x85: true, 0x95: true, 0x8D: true, 0x9D: true, 0x99: true,
	0x81: true, 0x91: true,
	0xC6: true, 0xD6: true, 0xCE: true, 0xDE: true,
	0xE6: true, 0xF6: true, 0xEE: true, 0xFE: true,
	0x4A: true, 0x46: true, 0x56: true, 0x4E: true, 0x5E: true,
	0x6A: true, 0x66: true, 0x76: true, 0x6E: true, 0x7E: true,
	0x2A: true, 0x26: true, 0x36: true, 0x2E: true, 0x3E: true,
}

// argZeroPage sets up a one-byte zero-page address. Addressing takes
// cycles 0 and 1; the effective address is on the bus from cycle 1
// onward, same as get_arg_zero_page.
func (c *CPU) argZeroPage(step uint16) (done bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.AD = uint16(c.b.Data)
		c.setAddr(c.AD)
		return true
	}
	return false
}

// argZeroPageIndexed adds index to a zero-page pointer, wrapping
// within the page. Cycles 0-1 reuse argZeroPage, cycle 2 applies the
// index, matching get_arg_zero_page_index.
func (c *CPU) argZeroPageIndexed(step uint16, index uint8) (done bool) {
	if step < 2 {
		c.argZeroPage(step)
		return false
	}
	c.setAddr((c.AD + uint16(index)) & 0x00FF)
	return true
}

// argAbsolute fetches a two-byte little-endian address over cycles
// 0-2, matching get_arg_absolute.
func (c *CPU) argAbsolute(step uint16) (done bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.setAddr(c.PC)
		c.PC++
		c.AD = uint16(c.b.Data)
	case 2:
		c.AD |= uint16(c.b.Data) << 8
		c.setAddr(c.AD)
		return true
	}
	return false
}

// argAbsoluteIndexed fetches a two-byte address then adds index,
// matching get_arg_absolute_index including its same-page fast path:
// opcodes that never write skip the extra cycle when the indexed
// address does not cross a page boundary.
func (c *CPU) argAbsoluteIndexed(step uint16, op uint8, index uint8) (done bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.setAddr(c.PC)
		c.PC++
		c.AD = uint16(c.b.Data)
	case 2:
		c.AD |= uint16(c.b.Data) << 8
		c.setAddr(c.AD + uint16(index))
		if (c.AD&0x00FF)+uint16(index) <= 0xFF && !writeOpcodes[op] {
			c.IR++
			return true
		}
	case 3:
		c.setAddr(c.AD + uint16(index))
		return true
	}
	return false
}

// argIndexIndirect implements (zp,X): the pointer's zero page address
// is indexed by X before the two pointer bytes are read, matching
// get_arg_index_indirect.
func (c *CPU) argIndexIndirect(step uint16) (done bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.AD = uint16(c.b.Data)
		c.setAddr(c.AD)
	case 2:
		c.AD = (c.AD + uint16(c.X)) & 0x00FF
		c.setAddr(c.AD)
	case 3:
		c.setAddr((c.AD + 1) & 0x00FF)
		c.AD = uint16(c.b.Data)
	case 4:
		c.setAddr(uint16(c.b.Data)<<8 | c.AD)
		return true
	}
	return false
}

// argIndirectIndex implements (zp),Y: the pointer is read first, then
// Y is added to the 16-bit result, matching get_arg_indirect_index
// including its same-page fast path.
func (c *CPU) argIndirectIndex(step uint16, op uint8) (done bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.AD = uint16(c.b.Data)
		c.setAddr(c.AD)
	case 2:
		c.setAddr((c.AD + 1) & 0x00FF)
		c.AD = uint16(c.b.Data)
	case 3:
		c.AD |= uint16(c.b.Data) << 8
		c.setAddr((c.AD & 0xFF00) | ((c.AD + uint16(c.Y)) & 0xFF))
		if (c.AD&0x00FF)+uint16(c.Y) <= 0xFF && !writeOpcodes[op] {
			c.IR++
			return true
		}
	case 4:
		c.setAddr(c.AD + uint16(c.Y))
		return true
	}
	return false
}

// branch implements the relative-addressing conditional jump. The
// branch-taken/page-cross cycle counts are exactly those of the real
// part: 2 cycles not taken, 3 taken same page, 4 taken across a page.
func (c *CPU) branch(step uint16, condition bool) {
	switch step {
	case 0:
		c.setAddr(c.PC)
		c.PC++
	case 1:
		c.setAddr(c.PC)
		c.AD = c.PC + uint16(int8(c.b.Data))
		if !condition {
			c.fetch()
		}
	case 2:
		c.setAddr((c.PC & 0xFF00) | (c.AD & 0x00FF))
		if c.AD&0xFF00 == c.PC&0xFF00 {
			c.PC = c.AD
			c.fetch()
		}
	case 3:
		c.PC = c.AD
		c.fetch()
	}
}
