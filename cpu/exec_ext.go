// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cpu

import "github.com/master-g/m68k/size"

// raiseException pushes PC and SR and jumps through the exception vector
// table entry at vector*4, the same frame shape serviceInterrupt builds
// for a hardware interrupt, minus the interrupt mask update: software
// traps and CHK/zero-divide exceptions do not raise the current priority.
func (c *CPU) raiseException(vector uint32) error {
	addr := vector * 4
	target, ok := c.bus.ReadLong(addr)
	if !ok {
		return newError(BusAbsent, addr, "exception vector: no device present")
	}
	sr := c.Registers.SR()
	c.Registers.SetSupervisor(true)
	if err := c.pushLong(c.Registers.PC); err != nil {
		return err
	}
	if err := c.pushWord(sr); err != nil {
		return err
	}
	c.Registers.PC = target
	return nil
}

// execTRAP raises a software trap. A real OpTRAP carries its vector
// number (0-15) relative to the user trap range starting at vector 32;
// the synthetic instruction TRAPV builds for an overflow trap already
// names the absolute vector (7) and is not itself an OpTRAP, so it skips
// the offset.
func (c *CPU) execTRAP(inst Instruction) error {
	vector := inst.Src.Raw
	if inst.Op == OpTRAP {
		vector = 32 + inst.Src.Raw
	}
	return c.raiseException(vector)
}

// execCHK traps (vector 6) if the tested register is negative or exceeds
// the upper bound named by the source operand.
func (c *CPU) execCHK(inst Instruction) error {
	bound, err := c.ReadAddressingMode(size.Word, inst.Src)
	if err != nil {
		return err
	}
	value := int16(c.Registers.D[inst.Register])

	cc := c.Registers.CCR()
	switch {
	case value < 0:
		cc.N = true
		c.Registers.SetCCR(cc)
		return c.raiseException(6)
	case value > int16(bound.Uint32()):
		cc.N = false
		c.Registers.SetCCR(cc)
		return c.raiseException(6)
	}
	return nil
}

// execMul implements MULU/MULS: Dst always names a data register holding
// the 16-bit multiplicand, overwritten with the 32-bit product.
func (c *CPU) execMul(inst Instruction) error {
	src, err := c.ReadAddressingMode(size.Word, inst.Src)
	if err != nil {
		return err
	}
	dn := c.Registers.D[inst.Dst.Reg]

	var product uint32
	if inst.Op == OpMULU {
		product = (dn & 0xFFFF) * (src.Uint32() & 0xFFFF)
	} else {
		product = uint32(int32(int16(dn)) * int32(int16(src.Uint32())))
	}
	c.Registers.D[inst.Dst.Reg] = product

	cc := c.Registers.CCR()
	cc.Z = product == 0
	cc.N = int32(product) < 0
	cc.V = false
	cc.C = false
	c.Registers.SetCCR(cc)
	return nil
}

// execDiv implements DIVU/DIVS: Dst names the 32-bit dividend register,
// replaced on success with remainder:quotient packed into the high and
// low words. Division by zero raises vector 5; a quotient that overflows
// 16 bits sets V and leaves the dividend register untouched, per the
// architecture's documented abort-in-place behavior.
func (c *CPU) execDiv(inst Instruction) error {
	divisorVal, err := c.ReadAddressingMode(size.Word, inst.Src)
	if err != nil {
		return err
	}
	divisor := divisorVal.Uint32() & 0xFFFF
	if divisor == 0 {
		return c.raiseException(5)
	}
	dividend := c.Registers.D[inst.Dst.Reg]
	cc := c.Registers.CCR()

	if inst.Op == OpDIVU {
		quotient := dividend / divisor
		remainder := dividend % divisor
		if quotient > 0xFFFF {
			cc.V = true
			c.Registers.SetCCR(cc)
			return nil
		}
		cc.V, cc.C = false, false
		cc.Z = quotient == 0
		cc.N = quotient&0x8000 != 0
		c.Registers.SetCCR(cc)
		c.Registers.D[inst.Dst.Reg] = (remainder << 16) | (quotient & 0xFFFF)
		return nil
	}

	sDividend := int32(dividend)
	sDivisor := int32(int16(uint16(divisor)))
	quotient := sDividend / sDivisor
	remainder := sDividend % sDivisor
	if quotient > 32767 || quotient < -32768 {
		cc.V = true
		c.Registers.SetCCR(cc)
		return nil
	}
	cc.V, cc.C = false, false
	cc.Z = quotient == 0
	cc.N = quotient < 0
	c.Registers.SetCCR(cc)
	c.Registers.D[inst.Dst.Reg] = uint32(uint16(remainder))<<16 | uint32(uint16(quotient))
	return nil
}

// bcdAdd adds two packed-BCD bytes plus an extend bit, applying the
// standard decimal correction.
func bcdAdd(dst, src uint8, x bool) (result uint8, carry bool) {
	var xi uint16
	if x {
		xi = 1
	}
	sum := uint16(dst) + uint16(src) + xi
	if (uint16(dst&0x0F) + uint16(src&0x0F) + xi) > 9 {
		sum += 6
	}
	if sum > 0x99 {
		sum += 0x60
		carry = true
	}
	return uint8(sum), carry
}

// bcdSub subtracts src and an extend bit from dst, both packed BCD.
func bcdSub(dst, src uint8, x bool) (result uint8, borrow bool) {
	xi := 0
	if x {
		xi = 1
	}
	diff := int(dst) - int(src) - xi
	if int(dst&0x0F)-int(src&0x0F)-xi < 0 {
		diff -= 6
	}
	if diff < 0 {
		diff -= 0x60
		borrow = true
	}
	return uint8(diff), borrow
}

// execBCD implements ABCD (isNBCD=false) and NBCD (isNBCD=true, called
// with a synthetic zero source, meaning "subtract from zero").
func (c *CPU) execBCD(dstMode, srcMode AddressingMode, isNBCD bool) error {
	dstOp, err := c.Resolve(size.Byte, dstMode)
	if err != nil {
		return err
	}
	dst, err := c.ReadOperand(size.Byte, dstOp)
	if err != nil {
		return err
	}

	x := c.Registers.CCR().X
	var result uint8
	var carry bool
	if isNBCD {
		result, carry = bcdSub(0, uint8(dst.Uint32()), x)
	} else {
		srcOp, err := c.Resolve(size.Byte, srcMode)
		if err != nil {
			return err
		}
		src, err := c.ReadOperand(size.Byte, srcOp)
		if err != nil {
			return err
		}
		result, carry = bcdAdd(uint8(dst.Uint32()), uint8(src.Uint32()), x)
	}

	cc := c.Registers.CCR()
	cc.C = carry
	cc.X = carry
	if result != 0 {
		cc.Z = false
	}
	cc.N = result&0x80 != 0
	c.Registers.SetCCR(cc)
	return c.WriteOperand(size.Byte, dstOp, size.NewValue(size.Byte, uint32(result)))
}

// execSBCD implements SBCD Dst <- Dst - Src - X in packed BCD.
func (c *CPU) execSBCD(inst Instruction) error {
	dstOp, err := c.Resolve(size.Byte, inst.Dst)
	if err != nil {
		return err
	}
	srcOp, err := c.Resolve(size.Byte, inst.Src)
	if err != nil {
		return err
	}
	dst, err := c.ReadOperand(size.Byte, dstOp)
	if err != nil {
		return err
	}
	src, err := c.ReadOperand(size.Byte, srcOp)
	if err != nil {
		return err
	}

	x := c.Registers.CCR().X
	result, borrow := bcdSub(uint8(dst.Uint32()), uint8(src.Uint32()), x)

	cc := c.Registers.CCR()
	cc.C = borrow
	cc.X = borrow
	if result != 0 {
		cc.Z = false
	}
	cc.N = result&0x80 != 0
	c.Registers.SetCCR(cc)
	return c.WriteOperand(size.Byte, dstOp, size.NewValue(size.Byte, uint32(result)))
}

// execMOVEP transfers Size bytes between a data register and alternating
// bytes of memory starting at the displacement address named by Dst,
// high byte first. It is the one instruction whose memory access pattern
// the generic read/write-bus helpers cannot express.
func (c *CPU) execMOVEP(inst Instruction) error {
	addr, err := c.ReadAddressingModeAddress(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	n := 2
	if inst.Size == size.LongWord {
		n = 4
	}

	if inst.Direction {
		reg := c.Registers.D[inst.Register]
		for i := 0; i < n; i++ {
			shift := uint(n-1-i) * 8
			if !c.bus.WriteByte(addr+uint32(i*2), uint8(reg>>shift)) {
				return newError(BusAbsent, addr+uint32(i*2), "MOVEP: no device present")
			}
		}
		return nil
	}

	var v uint32
	for i := 0; i < n; i++ {
		b, ok := c.bus.ReadByte(addr + uint32(i*2))
		if !ok {
			return newError(BusAbsent, addr+uint32(i*2), "MOVEP: no device present")
		}
		v = v<<8 | uint32(b)
	}
	mask := inst.Size.Mask()
	c.Registers.D[inst.Register] = (c.Registers.D[inst.Register] &^ mask) | (v & mask)
	return nil
}

// execMOVEM transfers the registers named by a mask word (fetched here,
// immediately after the opcode and before any addressing-mode extension
// word, mirroring the hardware fetch order) to or from memory.
func (c *CPU) execMOVEM(inst Instruction) error {
	mask, err := c.fetchWord()
	if err != nil {
		return err
	}

	switch inst.Dst.Kind {
	case AddressIndirectPreDecrement:
		return c.execMOVEMStorePredecrement(inst, mask)
	case AddressIndirectPostIncrement:
		return c.execMOVEMLoadPostincrement(inst, mask)
	default:
		addr, err := c.ReadAddressingModeAddress(inst.Size, inst.Dst)
		if err != nil {
			return err
		}
		if inst.Direction {
			return c.execMOVEMLoad(addr, mask, inst.Size)
		}
		return c.execMOVEMStore(addr, mask, inst.Size)
	}
}

// execMOVEMStorePredecrement stores registers to memory through -(An).
// The mask's bit order is reversed (bit 0 names A7, bit 15 names D0) and
// An is decremented before each write, matching the hardware's
// store-highest-register-first convention for this mode.
func (c *CPU) execMOVEMStorePredecrement(inst Instruction, mask uint16) error {
	reg := inst.Dst.Reg
	addr := c.Registers.A[reg]
	step := inst.Size.Bytes()
	dSnap := c.Registers.D
	aSnap := c.Registers.A

	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		regNum := 15 - i
		addr -= step
		var v uint32
		if regNum < 8 {
			v = dSnap[regNum]
		} else {
			v = aSnap[regNum-8]
		}
		if err := c.writeBus(inst.Size, addr, size.NewValue(inst.Size, v)); err != nil {
			return err
		}
	}
	c.Registers.A[reg] = addr
	return nil
}

func (c *CPU) execMOVEMStore(addr uint32, mask uint16, sz size.DataSize) error {
	step := sz.Bytes()
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		var v uint32
		if i < 8 {
			v = c.Registers.D[i]
		} else {
			v = c.Registers.A[i-8]
		}
		if err := c.writeBus(sz, addr, size.NewValue(sz, v)); err != nil {
			return err
		}
		addr += step
	}
	return nil
}

func (c *CPU) execMOVEMLoad(addr uint32, mask uint16, sz size.DataSize) error {
	step := sz.Bytes()
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		v, err := c.readBus(sz, addr)
		if err != nil {
			return err
		}
		full := uint32(v.SignExtend(size.LongWord).Int32())
		if i < 8 {
			c.Registers.D[i] = full
		} else {
			c.Registers.A[i-8] = full
		}
		addr += step
	}
	return nil
}

func (c *CPU) execMOVEMLoadPostincrement(inst Instruction, mask uint16) error {
	addr := c.Registers.A[inst.Dst.Reg]
	step := inst.Size.Bytes()
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		v, err := c.readBus(inst.Size, addr)
		if err != nil {
			return err
		}
		full := uint32(v.SignExtend(size.LongWord).Int32())
		if i < 8 {
			c.Registers.D[i] = full
		} else {
			c.Registers.A[i-8] = full
		}
		addr += step
	}
	c.Registers.A[inst.Dst.Reg] = addr
	return nil
}

// execBitOp implements BTST/BCHG/BCLR/BSET: Z reflects the tested bit
// before any mutation, and BTST performs no write.
func (c *CPU) execBitOp(inst Instruction) error {
	bitNumVal, err := c.ReadAddressingMode(size.Byte, inst.Src)
	if err != nil {
		return err
	}
	bit := bitNumVal.Uint32() % inst.Size.Bits()
	mask := uint32(1) << bit

	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	v, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}

	cc := c.Registers.CCR()
	cc.Z = v.Uint32()&mask == 0
	c.Registers.SetCCR(cc)

	if inst.Op == OpBTST {
		return nil
	}

	result := v.Uint32()
	switch inst.Op {
	case OpBCHG:
		result ^= mask
	case OpBCLR:
		result &^= mask
	case OpBSET:
		result |= mask
	}
	return c.WriteOperand(inst.Size, dstOp, size.NewValue(inst.Size, result))
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// rotateValue implements ROL/ROR/ROXL/ROXR bit-by-bit. ROL/ROR leave X
// untouched; ROXL/ROXR fold the extend bit into the rotation.
func rotateValue(op Opcode, v size.Value, sz size.DataSize, count uint32, prevX bool) (size.Value, size.ConditionCode, bool) {
	raw := v.WithSize(sz).Uint32()
	x := prevX
	var c bool
	shifted := false

	for i := uint32(0); i < count; i++ {
		shifted = true
		switch op {
		case OpROL:
			msb := raw&sz.MSB() != 0
			raw = ((raw << 1) | boolBit(msb)) & sz.Mask()
			c = msb
		case OpROR:
			lsb := raw&1 != 0
			raw >>= 1
			if lsb {
				raw |= sz.MSB()
			}
			raw &= sz.Mask()
			c = lsb
		case OpROXL:
			msb := raw&sz.MSB() != 0
			raw = ((raw << 1) | boolBit(x)) & sz.Mask()
			x = msb
			c = msb
		case OpROXR:
			lsb := raw&1 != 0
			raw >>= 1
			if x {
				raw |= sz.MSB()
			}
			raw &= sz.Mask()
			x = lsb
			c = lsb
		}
	}

	cc := size.ConditionCode{X: x, C: c, Z: raw == 0, N: raw&sz.MSB() != 0}
	return size.NewValue(sz, raw), cc, shifted
}

// execShift implements the eight shift/rotate opcodes, register and
// memory forms alike: Src carries the count (an immediate 1-8, or a data
// register whose value is taken mod 64), Dst the operand resolved once
// through the shared Resolve/ReadOperand/WriteOperand path.
func (c *CPU) execShift(inst Instruction) error {
	countVal, err := c.ReadAddressingMode(size.Byte, inst.Src)
	if err != nil {
		return err
	}
	count := countVal.Uint32()
	if inst.Src.Kind == DataDirect {
		count %= 64
	}

	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	v, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}

	prevCC := c.Registers.CCR()
	var result size.Value
	var cc size.ConditionCode
	var shifted bool

	switch inst.Op {
	case OpASL:
		result, cc, shifted = v.ShiftLeft(inst.Size, count, prevCC.X)
	case OpLSL:
		result, cc, shifted = v.ShiftLeft(inst.Size, count, prevCC.X)
	case OpASR:
		result, cc, shifted = v.ShiftRight(inst.Size, count, true, prevCC.X)
	case OpLSR:
		result, cc, shifted = v.ShiftRight(inst.Size, count, false, prevCC.X)
	default:
		result, cc, shifted = rotateValue(inst.Op, v, inst.Size, count, prevCC.X)
	}

	if !shifted {
		result = v
		cc = prevCC
	}
	if inst.Op == OpROL || inst.Op == OpROR {
		cc.X = prevCC.X
	}
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

// execBranch implements BRA/BSR/Bcc. The branch base is always the
// current PC, which already reflects the in-opcode-byte fast path or the
// extension-word fetch branchDisplacement performs.
func (c *CPU) execBranch(inst Instruction) error {
	disp, err := c.branchDisplacement(inst.Src)
	if err != nil {
		return err
	}
	target := uint32(int32(c.Registers.PC) + disp)

	if inst.Op == OpBSR {
		if err := c.pushLong(c.Registers.PC); err != nil {
			return err
		}
		c.Registers.PC = target
		return nil
	}

	take := true
	if inst.Op == OpBcc {
		cc := c.Registers.CCR()
		take = inst.Cond.Evaluate(cc.X, cc.N, cc.Z, cc.V, cc.C)
	}
	if take {
		c.Registers.PC = target
	}
	return nil
}

// branchDisplacement resolves a branch's target offset relative to
// c.Registers.PC as it reads immediately after this call: the decoder's
// sign-extended ValueOperand when the in-opcode byte was nonzero, or a
// word fetched fresh from the instruction stream when it was zero. The
// word form's displacement is defined relative to the address of that
// extension word itself, two bytes before PC lands once the fetch has
// advanced it, so the returned value is biased by -2 to compensate.
func (c *CPU) branchDisplacement(mode AddressingMode) (int32, error) {
	if mode.Kind == Immediate {
		w, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return int32(int16(w)) - 2, nil
	}
	return int32(mode.Raw), nil
}

// execDBcc decrements the loop counter and branches back while the
// condition is false and the counter has not wrapped past -1.
func (c *CPU) execDBcc(inst Instruction) error {
	dispWord, err := c.fetchWord()
	if err != nil {
		return err
	}

	cc := c.Registers.CCR()
	if inst.Cond.Evaluate(cc.X, cc.N, cc.Z, cc.V, cc.C) {
		return nil
	}

	counter := int16(c.Registers.D[inst.Src.Reg]) - 1
	c.Registers.D[inst.Src.Reg] = (c.Registers.D[inst.Src.Reg] &^ 0xFFFF) | uint32(uint16(counter))
	if counter != -1 {
		// The displacement is relative to the extension word's own
		// address, two bytes behind PC now that fetchWord has advanced it.
		c.Registers.PC = uint32(int32(c.Registers.PC) + int32(int16(dispWord)) - 2)
	}
	return nil
}

// execScc sets Dst to all-ones if the condition holds, all-zeros otherwise.
func (c *CPU) execScc(inst Instruction) error {
	cc := c.Registers.CCR()
	v := uint32(0)
	if inst.Cond.Evaluate(cc.X, cc.N, cc.Z, cc.V, cc.C) {
		v = 0xFF
	}
	return c.WriteAddressingMode(size.Byte, inst.Dst, size.NewValue(size.Byte, v))
}
