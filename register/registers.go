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

// Package register models the M68000 register file: the eight data and
// eight address registers, the program counter, the condition-code and
// supervisor-status flags, and the three shadow stack pointers.
package register

import "github.com/master-g/m68k/size"

// Condition code bits within the low byte of the status register.
const (
	FlagC uint16 = 1 << 0
	FlagV uint16 = 1 << 1
	FlagZ uint16 = 1 << 2
	FlagN uint16 = 1 << 3
	FlagX uint16 = 1 << 4
)

// Supervisor status bits within the high byte of the status register.
const (
	FlagIM0 uint16 = 1 << 8
	FlagIM1 uint16 = 1 << 9
	FlagIM2 uint16 = 1 << 10
	FlagM   uint16 = 1 << 12
	FlagS   uint16 = 1 << 13
	FlagT   uint16 = 1 << 15
)

// StackPointer identifies one of the three shadow stack pointers.
type StackPointer int

const (
	USP StackPointer = iota
	ISP
	MSP
)

func (sp StackPointer) String() string {
	switch sp {
	case USP:
		return "USP"
	case ISP:
		return "ISP"
	case MSP:
		return "MSP"
	default:
		return "?SP"
	}
}

// Registers is the complete M68000 register file.
type Registers struct {
	D [8]uint32
	A [8]uint32
	PC uint32

	ccr uint16 // low 5 bits: X V Z N C encoded via Flag* constants
	ssr uint16 // T S M IM0-2

	usp uint32
	isp uint32
	msp uint32
}

// New returns a zeroed register file, as the CPU has at construction
// before RESET has run.
func New() *Registers {
	return &Registers{}
}

// ActiveStack reports which shadow stack pointer A7 currently mirrors:
// the user stack when not in supervisor mode, otherwise the master stack
// when M is set, otherwise the interrupt stack.
func (r *Registers) ActiveStack() StackPointer {
	if r.ssr&FlagS == 0 {
		return USP
	}
	if r.ssr&FlagM != 0 {
		return MSP
	}
	return ISP
}

// SaveActiveStack copies the current A7 into its shadow register.
func (r *Registers) SaveActiveStack() {
	switch r.ActiveStack() {
	case USP:
		r.usp = r.A[7]
	case ISP:
		r.isp = r.A[7]
	case MSP:
		r.msp = r.A[7]
	}
}

// LoadActiveStack copies the shadow register for the now-active stack
// back into A7.
func (r *Registers) LoadActiveStack() {
	switch r.ActiveStack() {
	case USP:
		r.A[7] = r.usp
	case ISP:
		r.A[7] = r.isp
	case MSP:
		r.A[7] = r.msp
	}
}

// SP returns A7, the current stack pointer.
func (r *Registers) SP() uint32 {
	return r.A[7]
}

// SetSP writes A7 and mirrors it into the active shadow register.
func (r *Registers) SetSP(v uint32) {
	r.A[7] = v
	r.SaveActiveStack()
}

// USP, ISP and MSP expose the shadow stack pointers directly, independent
// of which one is currently active in A7.
func (r *Registers) UserSP() uint32       { return r.usp }
func (r *Registers) InterruptSP() uint32  { return r.isp }
func (r *Registers) MasterSP() uint32     { return r.msp }
func (r *Registers) SetUserSP(v uint32)   { r.usp = v; r.syncIfActive(USP) }
func (r *Registers) SetInterruptSP(v uint32) { r.isp = v; r.syncIfActive(ISP) }
func (r *Registers) SetMasterSP(v uint32) { r.msp = v; r.syncIfActive(MSP) }

func (r *Registers) syncIfActive(sp StackPointer) {
	if r.ActiveStack() == sp {
		r.LoadActiveStack()
	}
}

// CCR returns the five condition-code flags.
func (r *Registers) CCR() size.ConditionCode {
	return size.ConditionCode{
		X: r.ccr&FlagX != 0,
		N: r.ccr&FlagN != 0,
		Z: r.ccr&FlagZ != 0,
		V: r.ccr&FlagV != 0,
		C: r.ccr&FlagC != 0,
	}
}

// SetCCR overwrites the five condition-code flags.
func (r *Registers) SetCCR(cc size.ConditionCode) {
	r.ccr = 0
	if cc.X {
		r.ccr |= FlagX
	}
	if cc.N {
		r.ccr |= FlagN
	}
	if cc.Z {
		r.ccr |= FlagZ
	}
	if cc.V {
		r.ccr |= FlagV
	}
	if cc.C {
		r.ccr |= FlagC
	}
}

// SR returns the full 16-bit status register (supervisor byte + CCR).
func (r *Registers) SR() uint16 {
	return r.ssr | r.ccr
}

// SetSR writes the full status register. Because the S/M bits select the
// active shadow stack, the previous stack is saved before the write and
// the newly selected one is loaded afterward.
func (r *Registers) SetSR(v uint16) {
	r.SaveActiveStack()
	r.ssr = v &^ 0x1F
	r.ccr = v & 0x1F
	r.LoadActiveStack()
}

// Supervisor reports whether the S bit is set.
func (r *Registers) Supervisor() bool {
	return r.ssr&FlagS != 0
}

// SetSupervisor sets or clears the S bit, re-selecting the active stack.
func (r *Registers) SetSupervisor(on bool) {
	r.SaveActiveStack()
	if on {
		r.ssr |= FlagS
	} else {
		r.ssr &^= FlagS
	}
	r.LoadActiveStack()
}

// InterruptMask returns the IM0-2 field as a 0-7 priority level.
func (r *Registers) InterruptMask() uint8 {
	return uint8((r.ssr >> 8) & 0x7)
}

// SetInterruptMask writes the IM0-2 field, clamping to 0-7.
func (r *Registers) SetInterruptMask(level uint8) {
	if level > 7 {
		level = 7
	}
	r.ssr = (r.ssr &^ (FlagIM0 | FlagIM1 | FlagIM2)) | (uint16(level) << 8)
}

// DisplacePC adds a sign-extended Byte or Word displacement to PC.
// A LongWord displacement here is an operator error, not a hardware
// possibility, and is reported to the caller rather than silently
// truncated.
func (r *Registers) DisplacePC(v size.Value) (ok bool) {
	if v.Size == size.LongWord {
		return false
	}
	r.PC = uint32(int32(r.PC) + v.Int32())
	return true
}

// DisplaceSP behaves like DisplacePC but targets A7/SP.
func (r *Registers) DisplaceSP(v size.Value) (ok bool) {
	if v.Size == size.LongWord {
		return false
	}
	r.SetSP(uint32(int32(r.SP()) + v.Int32()))
	return true
}
