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

// execute realizes one decoded Instruction's side effects on registers,
// condition codes and mapped memory. opcodePC is the address the opcode
// word was fetched from, used to annotate any error that escapes.
func (c *CPU) execute(inst Instruction, opcodePC uint32) error {
	err := c.dispatch(inst)
	if err != nil {
		if merr, ok := err.(*Error); ok && merr.PC == 0 {
			merr.PC = opcodePC
		}
	}
	return err
}

func (c *CPU) dispatch(inst Instruction) error {
	switch inst.Op {
	case OpNOP:
		return nil
	case OpMOVE:
		return c.execMove(inst)
	case OpMOVEA:
		return c.execMove(inst)
	case OpMOVEQ:
		v, err := c.ReadAddressingMode(size.LongWord, inst.Src)
		if err != nil {
			return err
		}
		c.Registers.D[inst.Dst.Reg] = v.Uint32()
		cc := c.Registers.CCR()
		cc.Z = v.Uint32() == 0
		cc.N = v.Int32() < 0
		cc.V = false
		cc.C = false
		c.Registers.SetCCR(cc)
		return nil
	case OpLEA:
		addr, err := c.ReadAddressingModeAddress(size.LongWord, inst.Src)
		if err != nil {
			return err
		}
		c.Registers.A[inst.Register] = addr
		return nil
	case OpPEA:
		addr, err := c.ReadAddressingModeAddress(size.LongWord, inst.Dst)
		if err != nil {
			return err
		}
		return c.pushLong(addr)
	case OpCLR:
		return c.execUnary(inst, func(v size.Value) (size.Value, size.ConditionCode) {
			return size.NewValue(inst.Size, 0), size.ConditionCode{Z: true}
		})
	case OpNOT:
		return c.execUnary(inst, func(v size.Value) (size.Value, size.ConditionCode) {
			result := size.NewValue(inst.Size, ^v.Uint32())
			return result, size.ConditionCode{Z: result.Uint32() == 0, N: result.Int32() < 0}
		})
	case OpNEG:
		return c.execUnaryX(inst, func(v size.Value, _ bool) (size.Value, size.ConditionCode) {
			zero := size.NewValue(inst.Size, 0)
			return zero.SubCC(inst.Size, v)
		})
	case OpNEGX:
		return c.execUnaryX(inst, func(v size.Value, x bool) (size.Value, size.ConditionCode) {
			zero := size.NewValue(inst.Size, 0)
			res, cc := zero.SubCC(inst.Size, v)
			if x {
				res, cc = res.SubCC(inst.Size, size.NewValue(inst.Size, 1))
			}
			if res.Uint32() != 0 {
				cc.Z = false
			}
			return res, cc
		})
	case OpTST:
		v, err := c.ReadAddressingMode(inst.Size, inst.Dst)
		if err != nil {
			return err
		}
		cc := c.Registers.CCR()
		cc.Z = v.Uint32() == 0
		cc.N = v.Int32() < 0
		cc.V = false
		cc.C = false
		c.Registers.SetCCR(cc)
		return nil
	case OpADD, OpADDI, OpADDQ:
		return c.execBinaryArith(inst, size.Value.AddCC, true)
	case OpSUB, OpSUBI, OpSUBQ:
		return c.execBinaryArith(inst, size.Value.SubCC, true)
	case OpADDA:
		return c.execAddrArith(inst, true)
	case OpSUBA:
		return c.execAddrArith(inst, false)
	case OpADDX:
		return c.execBinaryArithX(inst, true)
	case OpSUBX:
		return c.execBinaryArithX(inst, false)
	case OpCMP, OpCMPI, OpCMPM:
		src, err := c.ReadAddressingMode(inst.Size, inst.Src)
		if err != nil {
			return err
		}
		dst, err := c.ReadAddressingMode(inst.Size, inst.Dst)
		if err != nil {
			return err
		}
		cc := dst.CmpCC(inst.Size, src)
		prevX := c.Registers.CCR().X
		cc.X = prevX
		c.Registers.SetCCR(cc)
		return nil
	case OpCMPA:
		src, err := c.ReadAddressingMode(inst.Size, inst.Src)
		if err != nil {
			return err
		}
		dst := size.NewValue(size.LongWord, c.Registers.A[inst.Register])
		cc := dst.CmpCC(size.LongWord, src.SignExtend(size.LongWord))
		cc.X = c.Registers.CCR().X
		c.Registers.SetCCR(cc)
		return nil
	case OpAND, OpANDI:
		return c.execLogical(inst, size.Value.AndCC)
	case OpOR, OpORI:
		return c.execLogical(inst, size.Value.OrCC)
	case OpEOR, OpEORI:
		return c.execLogical(inst, size.Value.EorCC)
	case OpEXG:
		return c.execEXG(inst)
	case OpSWAP:
		v := c.Registers.D[inst.Dst.Reg]
		swapped := (v << 16) | (v >> 16)
		c.Registers.D[inst.Dst.Reg] = swapped
		cc := c.Registers.CCR()
		cc.Z = swapped == 0
		cc.N = int32(swapped) < 0
		cc.V = false
		cc.C = false
		c.Registers.SetCCR(cc)
		return nil
	case OpEXT:
		from := size.Byte
		to := size.Word
		if inst.Size == size.LongWord {
			from, to = size.Word, size.LongWord
		}
		v := size.NewValue(from, c.Registers.D[inst.Dst.Reg]).SignExtend(to)
		mask := to.Mask()
		c.Registers.D[inst.Dst.Reg] = (c.Registers.D[inst.Dst.Reg] &^ mask) | v.Uint32()
		cc := c.Registers.CCR()
		cc.Z = v.Uint32() == 0
		cc.N = v.Int32() < 0
		cc.V = false
		cc.C = false
		c.Registers.SetCCR(cc)
		return nil
	case OpTAS:
		op, err := c.Resolve(size.Byte, inst.Dst)
		if err != nil {
			return err
		}
		v, err := c.ReadOperand(size.Byte, op)
		if err != nil {
			return err
		}
		cc := c.Registers.CCR()
		cc.Z = v.Uint32() == 0
		cc.N = v.Int32() < 0
		cc.V = false
		cc.C = false
		c.Registers.SetCCR(cc)
		return c.WriteOperand(size.Byte, op, size.NewValue(size.Byte, v.Uint32()|0x80))
	case OpNBCD:
		return c.execBCD(inst.Dst, AddressingMode{Kind: ValueOperand, Raw: 0}, true)
	case OpABCD:
		return c.execBCD(inst.Dst, inst.Src, false)
	case OpSBCD:
		return c.execSBCD(inst)
	case OpMULU, OpMULS:
		return c.execMul(inst)
	case OpDIVU, OpDIVS:
		return c.execDiv(inst)
	case OpCHK:
		return c.execCHK(inst)
	case OpMOVEfromSR:
		v, _ := c.ReadAddressingMode(size.Word, inst.Src)
		return c.WriteAddressingMode(size.Word, inst.Dst, v)
	case OpMOVEtoSR:
		if !c.Registers.Supervisor() {
			return newError(IllegalStateUse, c.Registers.PC, "MOVE to SR outside supervisor mode")
		}
		v, err := c.ReadAddressingMode(size.Word, inst.Src)
		if err != nil {
			return err
		}
		c.Registers.SetSR(uint16(v.Uint32()))
		return nil
	case OpMOVEtoCCR:
		v, err := c.ReadAddressingMode(size.Word, inst.Src)
		if err != nil {
			return err
		}
		c.Registers.SetCCR(bitsToCCR(uint16(v.Uint32())))
		return nil
	case OpMOVEUSP:
		if !c.Registers.Supervisor() {
			return newError(IllegalStateUse, c.Registers.PC, "MOVE USP outside supervisor mode")
		}
		if inst.Direction {
			c.Registers.A[inst.Register] = c.Registers.UserSP()
		} else {
			c.Registers.SetUserSP(c.Registers.A[inst.Register])
		}
		return nil
	case OpMOVEP:
		return c.execMOVEP(inst)
	case OpMOVEM:
		return c.execMOVEM(inst)
	case OpLINK:
		return c.execLINK(inst)
	case OpUNLK:
		sp, err := c.popLongFrom(c.Registers.A[inst.Register])
		if err != nil {
			return err
		}
		c.Registers.SetSP(c.Registers.A[inst.Register] + 4)
		c.Registers.A[inst.Register] = sp
		return nil
	case OpTRAP:
		return c.execTRAP(inst)
	case OpTRAPV:
		if c.Registers.CCR().V {
			return c.execTRAP(Instruction{Src: AddressingMode{Kind: VectorOperand, Raw: 7}})
		}
		return nil
	case OpBTST, OpBCHG, OpBCLR, OpBSET:
		return c.execBitOp(inst)
	case OpASL, OpASR, OpLSL, OpLSR, OpROL, OpROR, OpROXL, OpROXR:
		return c.execShift(inst)
	case OpBRA, OpBSR, OpBcc:
		return c.execBranch(inst)
	case OpDBcc:
		return c.execDBcc(inst)
	case OpScc:
		return c.execScc(inst)
	case OpJMP:
		addr, err := c.ReadAddressingModeAddress(size.LongWord, inst.Dst)
		if err != nil {
			return err
		}
		c.Registers.PC = addr
		return nil
	case OpJSR:
		addr, err := c.ReadAddressingModeAddress(size.LongWord, inst.Dst)
		if err != nil {
			return err
		}
		if err := c.pushLong(c.Registers.PC); err != nil {
			return err
		}
		c.Registers.PC = addr
		return nil
	case OpRTS:
		pc, err := c.popLong()
		if err != nil {
			return err
		}
		c.Registers.PC = pc
		return nil
	case OpRTE:
		if !c.Registers.Supervisor() {
			return newError(IllegalStateUse, c.Registers.PC, "RTE outside supervisor mode")
		}
		sr, err := c.popWord()
		if err != nil {
			return err
		}
		pc, err := c.popLong()
		if err != nil {
			return err
		}
		c.Registers.SetSR(sr)
		c.Registers.PC = pc
		return nil
	case OpRTR:
		ccBits, err := c.popWord()
		if err != nil {
			return err
		}
		pc, err := c.popLong()
		if err != nil {
			return err
		}
		c.Registers.SetCCR(bitsToCCR(ccBits & 0x1F))
		c.Registers.PC = pc
		return nil
	case OpRESET:
		if !c.Registers.Supervisor() {
			return newError(IllegalStateUse, c.Registers.PC, "RESET outside supervisor mode")
		}
		return nil
	case OpSTOP:
		if !c.Registers.Supervisor() {
			return newError(IllegalStateUse, c.Registers.PC, "STOP outside supervisor mode")
		}
		v, err := c.ReadAddressingMode(size.Word, inst.Src)
		if err != nil {
			return err
		}
		c.Registers.SetSR(uint16(v.Uint32()))
		c.stopped = true
		return nil
	default:
		return newError(DecodeFailure, c.Registers.PC, "unimplemented opcode %v", inst.Op)
	}
}

func (c *CPU) execMove(inst Instruction) error {
	v, err := c.ReadAddressingMode(inst.Size, inst.Src)
	if err != nil {
		return err
	}
	if err := c.WriteAddressingMode(inst.Size, inst.Dst, v); err != nil {
		return err
	}
	if inst.Op == OpMOVEA {
		return nil
	}
	cc := c.Registers.CCR()
	cc.Z = v.Uint32() == 0
	cc.N = v.Int32() < 0
	cc.V = false
	cc.C = false
	c.Registers.SetCCR(cc)
	return nil
}

type binOp func(size.Value, size.DataSize, size.Value) (size.Value, size.ConditionCode)

// execBinaryArith implements ADD/SUB family where Dst is read-modified-written.
func (c *CPU) execBinaryArith(inst Instruction, op binOp, setX bool) error {
	src, err := c.ReadAddressingMode(inst.Size, inst.Src)
	if err != nil {
		return err
	}
	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	dst, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}
	result, cc := op(dst, inst.Size, src)
	if !setX {
		cc.X = c.Registers.CCR().X
	}
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

func (c *CPU) execAddrArith(inst Instruction, add bool) error {
	src, err := c.ReadAddressingMode(inst.Size, inst.Src)
	if err != nil {
		return err
	}
	cur := c.Registers.A[inst.Register]
	delta := src.SignExtend(size.LongWord).Uint32()
	if add {
		c.Registers.A[inst.Register] = cur + delta
	} else {
		c.Registers.A[inst.Register] = cur - delta
	}
	return nil
}

func (c *CPU) execBinaryArithX(inst Instruction, add bool) error {
	srcOp, err := c.Resolve(inst.Size, inst.Src)
	if err != nil {
		return err
	}
	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	src, err := c.ReadOperand(inst.Size, srcOp)
	if err != nil {
		return err
	}
	dst, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}
	x := c.Registers.CCR().X
	var result size.Value
	var cc size.ConditionCode
	if add {
		result, cc = dst.AddCC(inst.Size, src)
		if x {
			result, cc = result.AddCC(inst.Size, size.NewValue(inst.Size, 1))
		}
	} else {
		result, cc = dst.SubCC(inst.Size, src)
		if x {
			result, cc = result.SubCC(inst.Size, size.NewValue(inst.Size, 1))
		}
	}
	if result.Uint32() != 0 {
		cc.Z = false
	} else {
		cc.Z = c.Registers.CCR().Z
	}
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

func (c *CPU) execLogical(inst Instruction, op binOp) error {
	src, err := c.ReadAddressingMode(inst.Size, inst.Src)
	if err != nil {
		return err
	}
	if inst.Dst.Kind == NamedRegisterSR || inst.Dst.Kind == NamedRegisterCCR {
		return c.execLogicalToStatus(inst, src, op)
	}
	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	dst, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}
	result, cc := op(dst, inst.Size, src)
	cc.X = c.Registers.CCR().X
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

func (c *CPU) execLogicalToStatus(inst Instruction, src size.Value, op binOp) error {
	if inst.Dst.Kind == NamedRegisterCCR {
		cur := size.NewValue(size.Word, uint32(ccrToBits(c.Registers.CCR())))
		result, _ := op(cur, size.Word, src)
		c.Registers.SetCCR(bitsToCCR(uint16(result.Uint32())))
		return nil
	}
	if !c.Registers.Supervisor() {
		return newError(IllegalStateUse, c.Registers.PC, "logical op on SR outside supervisor mode")
	}
	cur := size.NewValue(size.Word, uint32(c.Registers.SR()))
	result, _ := op(cur, size.Word, src)
	c.Registers.SetSR(uint16(result.Uint32()))
	return nil
}

func (c *CPU) execUnary(inst Instruction, op func(size.Value) (size.Value, size.ConditionCode)) error {
	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	cur, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}
	result, cc := op(cur)
	cc.X = c.Registers.CCR().X
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

func (c *CPU) execUnaryX(inst Instruction, op func(size.Value, bool) (size.Value, size.ConditionCode)) error {
	dstOp, err := c.Resolve(inst.Size, inst.Dst)
	if err != nil {
		return err
	}
	cur, err := c.ReadOperand(inst.Size, dstOp)
	if err != nil {
		return err
	}
	result, cc := op(cur, c.Registers.CCR().X)
	c.Registers.SetCCR(cc)
	return c.WriteOperand(inst.Size, dstOp, result)
}

func (c *CPU) execEXG(inst Instruction) error {
	a, err := c.ReadAddressingMode(size.LongWord, inst.Src)
	if err != nil {
		return err
	}
	b, err := c.ReadAddressingMode(size.LongWord, inst.Dst)
	if err != nil {
		return err
	}
	if err := c.WriteAddressingMode(size.LongWord, inst.Src, b); err != nil {
		return err
	}
	return c.WriteAddressingMode(size.LongWord, inst.Dst, a)
}

// popLongFrom pops a longword off an arbitrary stack address without
// touching A7, used by UNLK which restores An from the frame before
// adjusting SP.
func (c *CPU) popLongFrom(addr uint32) (uint32, error) {
	v, ok := c.bus.ReadLong(addr)
	if !ok {
		return 0, newError(BusAbsent, addr, "UNLK: no device present")
	}
	return v, nil
}

func (c *CPU) execLINK(inst Instruction) error {
	if err := c.pushLong(c.Registers.A[inst.Register]); err != nil {
		return err
	}
	c.Registers.A[inst.Register] = c.Registers.SP()
	disp, err := c.fetchImmediate(size.Word)
	if err != nil {
		return err
	}
	c.Registers.DisplaceSP(disp)
	return nil
}
