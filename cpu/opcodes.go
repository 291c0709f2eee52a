/*
 * apple1 - 6502 opcode dispatch table.
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

// stepFunc runs one micro-cycle of an opcode already latched into IR.
type stepFunc func(c *CPU, step uint16)

// Addressing-mode cycle lengths, counted the same way the original's
// per-opcode `IR & mask < N` literals do: the number of cycles the
// mode consumes before an operand is ready to read off the bus.
const (
	lenImmediate = 1
	lenZeroPage  = 2
	lenZPIndexed = 3
	lenAbsolute  = 3
	lenAbsIndex  = 4
	lenIndexInd  = 5
	lenIndIndex  = 5
)

var table [256]stepFunc

func init() {
	buildTable()
}

func dispatch(c *CPU, op uint8, step uint16) {
	fn := table[op]
	if fn == nil {
		c.crash(op)
		c.fetch()
		return
	}
	fn(c, step)
}

// -- generic addressing-mode wrappers --------------------------------

func readOp(addrLen uint16, mode func(c *CPU, step uint16), operate func(c *CPU, v uint8)) stepFunc {
	return func(c *CPU, step uint16) {
		if step < addrLen {
			mode(c, step)
			return
		}
		operate(c, c.b.Data)
		c.fetch()
	}
}

func rmwOp(addrLen uint16, mode func(c *CPU, step uint16), operate func(c *CPU, v uint8) uint8) stepFunc {
	return func(c *CPU, step uint16) {
		switch {
		case step < addrLen:
			mode(c, step)
		case step == addrLen:
			c.AD = uint16(c.b.Data)
			c.rw = false
		case step == addrLen+1:
			c.b.Data = operate(c, uint8(c.AD))
			c.rw = false
		default:
			c.fetch()
		}
	}
}

func storeOp(addrLen uint16, mode func(c *CPU, step uint16), getValue func(c *CPU) uint8) stepFunc {
	return func(c *CPU, step uint16) {
		switch {
		case step < addrLen-1:
			mode(c, step)
		case step == addrLen-1:
			mode(c, step)
			c.b.Data = getValue(c)
			c.rw = false
		default:
			c.fetch()
		}
	}
}

func immediateOp(operate func(c *CPU, v uint8)) stepFunc {
	return func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
			c.PC++
		default:
			operate(c, c.b.Data)
			c.fetch()
		}
	}
}

func accumulatorOp(operate func(c *CPU, v uint8) uint8) stepFunc {
	return func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		default:
			c.A = operate(c, c.A)
			c.fetch()
		}
	}
}

func impliedOp(effect func(c *CPU)) stepFunc {
	return func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		default:
			if effect != nil {
				effect(c)
			}
			c.fetch()
		}
	}
}

func branchOp(condition func(c *CPU) bool) stepFunc {
	return func(c *CPU, step uint16) {
		c.branch(step, condition(c))
	}
}

// -- addressing-mode adapters, closing over the opcode byte ----------

func zp(c *CPU, s uint16)  { c.argZeroPage(s) }
func zpx(c *CPU, s uint16) { c.argZeroPageIndexed(s, c.X) }
func zpy(c *CPU, s uint16) { c.argZeroPageIndexed(s, c.Y) }
func abs(c *CPU, s uint16) { c.argAbsolute(s) }
func indx(c *CPU, s uint16) { c.argIndexIndirect(s) }

func absx(op uint8) func(c *CPU, s uint16) {
	return func(c *CPU, s uint16) { c.argAbsoluteIndexed(s, op, c.X) }
}

func absy(op uint8) func(c *CPU, s uint16) {
	return func(c *CPU, s uint16) { c.argAbsoluteIndexed(s, op, c.Y) }
}

func indy(op uint8) func(c *CPU, s uint16) {
	return func(c *CPU, s uint16) { c.argIndirectIndex(s, op) }
}

// -- table construction ------------------------------------------------

func buildTable() {
	// ORA / AND / EOR / ADC / SBC / CMP share the same eight-mode
	// family of read opcodes.
	type readFamily struct {
		imm, zpOp, zpxOp, absOp            uint8
		absxOp, absyOp, indxOp, indyOp     uint8
		operate                            func(c *CPU, v uint8)
	}
	families := []readFamily{
		{0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11, (*CPU).doORA},
		{0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31, (*CPU).doAND},
		{0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51, (*CPU).doEOR},
		{0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71, (*CPU).doADC},
		{0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, (*CPU).doSBC},
	}
	for _, f := range families {
		table[f.imm] = immediateOp(f.operate)
		table[f.zpOp] = readOp(lenZeroPage, zp, f.operate)
		table[f.zpxOp] = readOp(lenZPIndexed, zpx, f.operate)
		table[f.absOp] = readOp(lenAbsolute, abs, f.operate)
		table[f.absxOp] = readOp(lenAbsIndex, absx(f.absxOp), f.operate)
		table[f.absyOp] = readOp(lenAbsIndex, absy(f.absyOp), f.operate)
		table[f.indxOp] = readOp(lenIndexInd, indx, f.operate)
		table[f.indyOp] = readOp(lenIndIndex, indy(f.indyOp), f.operate)
	}

	// CMP/CPX/CPY compare against a register: CMP has the full
	// eight-mode read family, CPX and CPY three modes each.
	cmpA := func(c *CPU, v uint8) { c.doCMP(c.A, v) }
	table[0xC9] = immediateOp(cmpA)
	table[0xC5] = readOp(lenZeroPage, zp, cmpA)
	table[0xD5] = readOp(lenZPIndexed, zpx, cmpA)
	table[0xCD] = readOp(lenAbsolute, abs, cmpA)
	table[0xDD] = readOp(lenAbsIndex, absx(0xDD), cmpA)
	table[0xD9] = readOp(lenAbsIndex, absy(0xD9), cmpA)
	table[0xC1] = readOp(lenIndexInd, indx, cmpA)
	table[0xD1] = readOp(lenIndIndex, indy(0xD1), cmpA)

	cmpX := func(c *CPU, v uint8) { c.doCMP(c.X, v) }
	table[0xE0] = immediateOp(cmpX)
	table[0xE4] = readOp(lenZeroPage, zp, cmpX)
	table[0xEC] = readOp(lenAbsolute, abs, cmpX)

	cmpY := func(c *CPU, v uint8) { c.doCMP(c.Y, v) }
	table[0xC0] = immediateOp(cmpY)
	table[0xC4] = readOp(lenZeroPage, zp, cmpY)
	table[0xCC] = readOp(lenAbsolute, abs, cmpY)

	table[0x24] = readOp(lenZeroPage, zp, (*CPU).doBIT)
	table[0x2C] = readOp(lenAbsolute, abs, (*CPU).doBIT)

	// Loads.
	ldA := func(c *CPU, v uint8) { c.doLoad(&c.A, v) }
	table[0xA9] = immediateOp(ldA)
	table[0xA5] = readOp(lenZeroPage, zp, ldA)
	table[0xB5] = readOp(lenZPIndexed, zpx, ldA)
	table[0xAD] = readOp(lenAbsolute, abs, ldA)
	table[0xBD] = readOp(lenAbsIndex, absx(0xBD), ldA)
	table[0xB9] = readOp(lenAbsIndex, absy(0xB9), ldA)
	table[0xA1] = readOp(lenIndexInd, indx, ldA)
	table[0xB1] = readOp(lenIndIndex, indy(0xB1), ldA)

	ldX := func(c *CPU, v uint8) { c.doLoad(&c.X, v) }
	table[0xA2] = immediateOp(ldX)
	table[0xA6] = readOp(lenZeroPage, zp, ldX)
	table[0xB6] = readOp(lenZPIndexed, zpy, ldX)
	table[0xAE] = readOp(lenAbsolute, abs, ldX)
	table[0xBE] = readOp(lenAbsIndex, absy(0xBE), ldX)

	ldY := func(c *CPU, v uint8) { c.doLoad(&c.Y, v) }
	table[0xA0] = immediateOp(ldY)
	table[0xA4] = readOp(lenZeroPage, zp, ldY)
	table[0xB4] = readOp(lenZPIndexed, zpx, ldY)
	table[0xAC] = readOp(lenAbsolute, abs, ldY)
	table[0xBC] = readOp(lenAbsIndex, absx(0xBC), ldY)

	// Stores.
	getA := func(c *CPU) uint8 { return c.A }
	table[0x85] = storeOp(lenZeroPage, zp, getA)
	table[0x95] = storeOp(lenZPIndexed, zpx, getA)
	table[0x8D] = storeOp(lenAbsolute, abs, getA)
	table[0x9D] = storeOp(lenAbsIndex, absx(0x9D), getA)
	table[0x99] = storeOp(lenAbsIndex, absy(0x99), getA)
	table[0x81] = storeOp(lenIndexInd, indx, getA)
	table[0x91] = storeOp(lenIndIndex, indy(0x91), getA)

	getX := func(c *CPU) uint8 { return c.X }
	table[0x86] = storeOp(lenZeroPage, zp, getX)
	table[0x96] = storeOp(lenZPIndexed, zpy, getX)
	table[0x8E] = storeOp(lenAbsolute, abs, getX)

	getY := func(c *CPU) uint8 { return c.Y }
	table[0x84] = storeOp(lenZeroPage, zp, getY)
	table[0x94] = storeOp(lenZPIndexed, zpx, getY)
	table[0x8C] = storeOp(lenAbsolute, abs, getY)

	// Shift/rotate, accumulator and memory forms.
	type shiftFamily struct {
		acc, zpOp, zpxOp, absOp, absxOp uint8
		operate                         func(c *CPU, v uint8) uint8
	}
	shifts := []shiftFamily{
		{0x0A, 0x06, 0x16, 0x0E, 0x1E, (*CPU).doASL},
		{0x2A, 0x26, 0x36, 0x2E, 0x3E, (*CPU).doROL},
		{0x4A, 0x46, 0x56, 0x4E, 0x5E, (*CPU).doLSR},
		{0x6A, 0x66, 0x76, 0x6E, 0x7E, (*CPU).doROR},
	}
	for _, s := range shifts {
		table[s.acc] = accumulatorOp(s.operate)
		table[s.zpOp] = rmwOp(lenZeroPage, zp, s.operate)
		table[s.zpxOp] = rmwOp(lenZPIndexed, zpx, s.operate)
		table[s.absOp] = rmwOp(lenAbsolute, abs, s.operate)
		table[s.absxOp] = rmwOp(lenAbsIndex, absx(s.absxOp), s.operate)
	}

	incDec := func(delta int) func(c *CPU, v uint8) uint8 {
		return func(c *CPU, v uint8) uint8 {
			v += uint8(delta)
			c.updateFlagsNZ(v)
			return v
		}
	}
	table[0xE6] = rmwOp(lenZeroPage, zp, incDec(1))
	table[0xF6] = rmwOp(lenZPIndexed, zpx, incDec(1))
	table[0xEE] = rmwOp(lenAbsolute, abs, incDec(1))
	table[0xFE] = rmwOp(lenAbsIndex, absx(0xFE), incDec(1))
	table[0xC6] = rmwOp(lenZeroPage, zp, incDec(-1))
	table[0xD6] = rmwOp(lenZPIndexed, zpx, incDec(-1))
	table[0xCE] = rmwOp(lenAbsolute, abs, incDec(-1))
	table[0xDE] = rmwOp(lenAbsIndex, absx(0xDE), incDec(-1))

	// Register/flag implied-mode opcodes.
	table[0xE8] = impliedOp(func(c *CPU) { c.X++; c.updateFlagsNZ(c.X) })
	table[0xC8] = impliedOp(func(c *CPU) { c.Y++; c.updateFlagsNZ(c.Y) })
	table[0xCA] = impliedOp(func(c *CPU) { c.X--; c.updateFlagsNZ(c.X) })
	table[0x88] = impliedOp(func(c *CPU) { c.Y--; c.updateFlagsNZ(c.Y) })
	table[0xAA] = impliedOp(func(c *CPU) { c.X = c.A; c.updateFlagsNZ(c.X) })
	table[0xA8] = impliedOp(func(c *CPU) { c.Y = c.A; c.updateFlagsNZ(c.Y) })
	table[0x8A] = impliedOp(func(c *CPU) { c.A = c.X; c.updateFlagsNZ(c.A) })
	table[0x98] = impliedOp(func(c *CPU) { c.A = c.Y; c.updateFlagsNZ(c.A) })
	table[0xBA] = impliedOp(func(c *CPU) { c.X = c.S; c.updateFlagsNZ(c.X) })
	table[0x9A] = impliedOp(func(c *CPU) { c.S = c.X })
	table[0xEA] = impliedOp(nil)

	table[0x18] = impliedOp(func(c *CPU) { c.P &^= FlagC })
	table[0x38] = impliedOp(func(c *CPU) { c.P |= FlagC })
	table[0x58] = impliedOp(func(c *CPU) { c.P &^= FlagI })
	table[0x78] = impliedOp(func(c *CPU) { c.P |= FlagI })
	table[0xB8] = impliedOp(func(c *CPU) { c.P &^= FlagV })
	table[0xD8] = impliedOp(func(c *CPU) { c.P &^= FlagD })
	table[0xF8] = impliedOp(func(c *CPU) { c.P |= FlagD })

	// Branches.
	table[0x10] = branchOp(func(c *CPU) bool { return c.P&FlagN == 0 })
	table[0x30] = branchOp(func(c *CPU) bool { return c.P&FlagN != 0 })
	table[0x50] = branchOp(func(c *CPU) bool { return c.P&FlagV == 0 })
	table[0x70] = branchOp(func(c *CPU) bool { return c.P&FlagV != 0 })
	table[0x90] = branchOp(func(c *CPU) bool { return c.P&FlagC == 0 })
	table[0xB0] = branchOp(func(c *CPU) bool { return c.P&FlagC != 0 })
	table[0xD0] = branchOp(func(c *CPU) bool { return c.P&FlagZ == 0 })
	table[0xF0] = branchOp(func(c *CPU) bool { return c.P&FlagZ != 0 })

	// Stack.
	table[0x48] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.pushStack(c.A)
		default:
			c.fetch()
		}
	}
	table[0x08] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.pushStack(c.P | FlagB | FlagX)
		default:
			c.fetch()
		}
	}
	table[0x68] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 2:
			c.setAddr(stackTop | uint16(c.S))
		default:
			c.A = c.b.Data
			c.updateFlagsNZ(c.A)
			c.fetch()
		}
	}
	table[0x28] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 2:
			c.setAddr(stackTop | uint16(c.S))
		default:
			c.P = c.b.Data &^ FlagB
			c.fetch()
		}
	}

	// Control flow.
	table[0x4C] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
			c.PC++
		case 1:
			c.setAddr(c.PC)
			c.PC++
			c.AD = uint16(c.b.Data)
		default:
			c.PC = uint16(c.b.Data)<<8 | c.AD
			c.fetch()
		}
	}
	table[0x6C] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
			c.PC++
		case 1:
			c.AD = uint16(c.b.Data)
			c.setAddr(c.PC)
			c.PC++
		case 2:
			c.AD |= uint16(c.b.Data) << 8
			c.setAddr(c.AD)
		case 3:
			// The page-wrap bug: the pointer's high byte is fetched
			// from (AD & 0xFF00) | ((AD+1) & 0xFF), never crossing
			// into the next page.
			c.setAddr((c.AD & 0xFF00) | ((c.AD + 1) & 0x00FF))
			c.AD = uint16(c.b.Data)
		default:
			c.PC = uint16(c.b.Data)<<8 | c.AD
			c.fetch()
		}
	}
	table[0x20] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
			c.PC++
		case 1:
			c.AD = uint16(c.b.Data)
			c.setAddr(stackTop | uint16(c.S))
		case 2:
			c.pushStack(uint8(c.PC >> 8))
		case 3:
			c.pushStack(uint8(c.PC))
		case 4:
			c.setAddr(c.PC)
		default:
			c.PC = uint16(c.b.Data)<<8 | c.AD
			c.fetch()
		}
	}
	table[0x60] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 2:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 3:
			c.AD = uint16(c.b.Data)
			c.setAddr(stackTop | uint16(c.S))
		case 4:
			c.PC = c.AD | uint16(c.b.Data)<<8
			c.setAddr(c.PC)
			c.PC++
		default:
			c.fetch()
		}
	}
	table[0x40] = func(c *CPU, step uint16) {
		switch step {
		case 0:
			c.setAddr(c.PC)
		case 1:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 2:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
		case 3:
			c.setAddr(stackTop | uint16(c.S))
			c.S++
			c.P = (c.b.Data | FlagB) &^ FlagX
		case 4:
			c.AD = uint16(c.b.Data)
			c.setAddr(stackTop | uint16(c.S))
		default:
			c.PC = c.AD | uint16(c.b.Data)<<8
			c.fetch()
		}
	}
	table[0x00] = brk
}

// brk runs the shared BRK/IRQ/NMI/RESET seven-cycle vector sequence.
// break_status disambiguates a real interrupt from a software BRK: a
// software BRK advances PC past its signature byte on cycle 1, and the
// vector taken is resolved from whichever break_status bit is set on
// cycle 3, highest priority RESET first.
func brk(c *CPU, step uint16) {
	switch step {
	case 0:
		c.setAddr(c.PC)
	case 1:
		if c.breakStatus == 0 {
			c.PC++
		}
		c.pushStack(uint8(c.PC >> 8))
		if c.breakStatus&breakRST != 0 {
			c.rw = true
		}
	case 2:
		c.pushStack(uint8(c.PC))
		if c.breakStatus&breakRST != 0 {
			c.rw = true
		}
	case 3:
		c.pushStack(c.P | FlagB | FlagX)
		switch {
		case c.breakStatus&breakRST != 0:
			c.rw = true
			c.AD = ResetVector
		case c.breakStatus&breakNMI != 0:
			c.AD = NMIVector
		default:
			c.AD = IRQVector
		}
		c.breakStatus = 0
		c.res.Store(false)
	case 4:
		c.setAddr(c.AD)
		c.AD++
		c.P |= FlagI
	case 5:
		c.setAddr(c.AD)
		c.AD = uint16(c.b.Data)
	default:
		c.PC = uint16(c.b.Data)<<8 | c.AD
		c.fetch()
	}
}
