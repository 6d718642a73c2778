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

// stackStep returns how far a post-increment/pre-decrement on register reg
// moves the address register for sz, accounting for the SP word-alignment
// special case.
func stackStep(reg uint8, sz size.DataSize) uint32 {
	if reg == 7 && sz == size.Byte {
		return 2
	}
	return sz.Bytes()
}

// calcIndex decodes a brief-format extension word and computes
// base + sext?(Xn)*scale + sext8(disp).
func (c *CPU) calcIndex(base uint32, ext uint16) (uint32, error) {
	if ext&0x0100 != 0 {
		return 0, newError(DecodeFailure, c.Registers.PC, "full-format extension words are not supported")
	}
	disp := int32(int8(ext & 0xFF))
	xn := uint8((ext >> 12) & 0x7)

	var idx int32
	if ext&0x8000 != 0 {
		idx = int32(c.Registers.A[xn])
	} else {
		idx = int32(c.Registers.D[xn])
	}
	if ext&0x0800 == 0 {
		idx = int32(int16(idx))
	}

	scale := int32(1) << ((ext >> 9) & 0x3)
	return uint32(int32(base) + idx*scale + disp), nil
}

// ReadAddressingModeAddress resolves the effective memory address of mode
// without performing the final data access. Post-increment and
// pre-decrement registers are updated here, at resolution time, exactly
// once per call. It is an IllegalStateUse error to call this for a mode
// that does not denote a memory address (register-direct or immediate
// modes).
func (c *CPU) ReadAddressingModeAddress(sz size.DataSize, mode AddressingMode) (uint32, error) {
	switch mode.Kind {
	case AddressIndirect:
		return c.Registers.A[mode.Reg], nil

	case AddressIndirectPostIncrement:
		addr := c.Registers.A[mode.Reg]
		c.Registers.A[mode.Reg] += stackStep(mode.Reg, sz)
		return addr, nil

	case AddressIndirectPreDecrement:
		c.Registers.A[mode.Reg] -= stackStep(mode.Reg, sz)
		return c.Registers.A[mode.Reg], nil

	case AddressIndirectDisplacement:
		disp, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return uint32(int32(c.Registers.A[mode.Reg]) + int32(int16(disp))), nil

	case AddressIndirectIndexedAndDisplacement:
		ext, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return c.calcIndex(c.Registers.A[mode.Reg], ext)

	case AbsoluteAddressWord:
		w, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return uint32(int32(int16(w))), nil

	case AbsoluteAddressLong:
		return c.fetchLong()

	case PCIndirectDisplacementMode:
		pc := c.Registers.PC
		disp, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return uint32(int32(pc) + int32(int16(disp))), nil

	case PCIndirectIndexed:
		pc := c.Registers.PC
		ext, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return c.calcIndex(pc, ext)

	default:
		return 0, newError(IllegalStateUse, c.Registers.PC, "mode %s has no effective address", mode)
	}
}

// ReadAddressingMode reads an operand of size sz through mode, performing
// register access directly and memory/immediate access through the bus.
func (c *CPU) ReadAddressingMode(sz size.DataSize, mode AddressingMode) (size.Value, error) {
	switch mode.Kind {
	case DataDirect:
		return size.NewValue(sz, c.Registers.D[mode.Reg]), nil

	case AddressDirect:
		return size.NewValue(sz, c.Registers.A[mode.Reg]), nil

	case Immediate:
		return c.fetchImmediate(sz)

	case ValueOperand, VectorOperand:
		return size.NewValue(sz, mode.Raw), nil

	case NamedRegisterSR:
		return size.NewValue(size.Word, uint32(c.Registers.SR())), nil

	case NamedRegisterCCR:
		cc := c.Registers.CCR()
		return size.NewValue(size.Word, uint32(ccrToBits(cc))), nil

	case NamedRegisterUSP:
		return size.NewValue(size.LongWord, c.Registers.UserSP()), nil

	default:
		addr, err := c.ReadAddressingModeAddress(sz, mode)
		if err != nil {
			return size.Value{}, err
		}
		return c.readBus(sz, addr)
	}
}

// WriteAddressingMode writes an operand of size sz through mode.
func (c *CPU) WriteAddressingMode(sz size.DataSize, mode AddressingMode, v size.Value) error {
	switch mode.Kind {
	case DataDirect:
		mask := sz.Mask()
		c.Registers.D[mode.Reg] = (c.Registers.D[mode.Reg] &^ mask) | v.Uint32()
		return nil

	case AddressDirect:
		// Address registers are always written full-width, sign-extended
		// for sub-long sizes (MOVEA semantics).
		c.Registers.A[mode.Reg] = uint32(v.SignExtend(size.LongWord).Int32())
		return nil

	case NamedRegisterSR:
		c.Registers.SetSR(uint16(v.Uint32()))
		return nil

	case NamedRegisterCCR:
		c.Registers.SetCCR(bitsToCCR(uint16(v.Uint32())))
		return nil

	case NamedRegisterUSP:
		c.Registers.SetUserSP(v.Uint32())
		return nil

	case Immediate, ValueOperand, VectorOperand:
		return newError(IllegalStateUse, c.Registers.PC, "mode %s is not writable", mode)

	default:
		addr, err := c.ReadAddressingModeAddress(sz, mode)
		if err != nil {
			return err
		}
		return c.writeBus(sz, addr, v)
	}
}

func (c *CPU) readBus(sz size.DataSize, addr uint32) (size.Value, error) {
	switch sz {
	case size.Byte:
		v, ok := c.bus.ReadByte(addr)
		if !ok {
			return size.Value{}, newError(BusAbsent, addr, "read byte: no device present")
		}
		return size.NewValue(sz, uint32(v)), nil
	case size.Word:
		v, ok := c.bus.ReadWord(addr)
		if !ok {
			return size.Value{}, newError(BusAbsent, addr, "read word: no device present")
		}
		return size.NewValue(sz, uint32(v)), nil
	default:
		v, ok := c.bus.ReadLong(addr)
		if !ok {
			return size.Value{}, newError(BusAbsent, addr, "read long: no device present")
		}
		return size.NewValue(sz, v), nil
	}
}

func (c *CPU) writeBus(sz size.DataSize, addr uint32, v size.Value) error {
	switch sz {
	case size.Byte:
		if !c.bus.WriteByte(addr, uint8(v.Uint32())) {
			return newError(BusAbsent, addr, "write byte: no device present")
		}
	case size.Word:
		if !c.bus.WriteWord(addr, uint16(v.Uint32())) {
			return newError(BusAbsent, addr, "write word: no device present")
		}
	default:
		if !c.bus.WriteLong(addr, v.Uint32()) {
			return newError(BusAbsent, addr, "write long: no device present")
		}
	}
	return nil
}

// Operand is an effective address resolved exactly once. Read-modify-write
// instructions (ADD, CLR, the shifts, BSET and friends) go through Resolve
// so that a memory address is computed a single time: resolving twice
// would double-fetch extension words and double-step postincrement or
// predecrement registers.
type Operand struct {
	mode AddressingMode
	addr uint32
	isMemory bool
}

// Resolve computes and caches the effective address of mode, if any. It
// performs exactly the side effects (extension-word fetch, register
// step) that a single access to mode is entitled to.
func (c *CPU) Resolve(sz size.DataSize, mode AddressingMode) (Operand, error) {
	switch mode.Kind {
	case DataDirect, AddressDirect, Immediate, ValueOperand, VectorOperand,
		NamedRegisterSR, NamedRegisterCCR, NamedRegisterUSP:
		return Operand{mode: mode}, nil
	default:
		addr, err := c.ReadAddressingModeAddress(sz, mode)
		if err != nil {
			return Operand{}, err
		}
		return Operand{mode: mode, addr: addr, isMemory: true}, nil
	}
}

// ReadOperand returns the current value of a resolved operand.
func (c *CPU) ReadOperand(sz size.DataSize, op Operand) (size.Value, error) {
	if op.isMemory {
		return c.readBus(sz, op.addr)
	}
	return c.ReadAddressingMode(sz, op.mode)
}

// WriteOperand stores v into a resolved operand.
func (c *CPU) WriteOperand(sz size.DataSize, op Operand, v size.Value) error {
	if op.isMemory {
		return c.writeBus(sz, op.addr, v)
	}
	return c.WriteAddressingMode(sz, op.mode, v)
}

func ccrToBits(cc size.ConditionCode) uint16 {
	var v uint16
	if cc.C {
		v |= 1 << 0
	}
	if cc.V {
		v |= 1 << 1
	}
	if cc.Z {
		v |= 1 << 2
	}
	if cc.N {
		v |= 1 << 3
	}
	if cc.X {
		v |= 1 << 4
	}
	return v
}

func bitsToCCR(v uint16) size.ConditionCode {
	return size.ConditionCode{
		C: v&(1<<0) != 0,
		V: v&(1<<1) != 0,
		Z: v&(1<<2) != 0,
		N: v&(1<<3) != 0,
		X: v&(1<<4) != 0,
	}
}
