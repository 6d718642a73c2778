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

import "fmt"

// AddressingModeKind enumerates the seventeen variants an operand's
// AddressingMode can take.
type AddressingModeKind int

const (
	DataDirect AddressingModeKind = iota
	AddressDirect
	AddressIndirect
	AddressIndirectPostIncrement
	AddressIndirectPreDecrement
	AddressIndirectDisplacement
	AddressIndirectIndexedAndDisplacement
	AbsoluteAddressWord
	AbsoluteAddressLong
	PCIndirectDisplacementMode
	PCIndirectIndexed
	Immediate
	ValueOperand // synthetic: decoded quick immediate (MOVEQ, ADDQ, Scc, etc.)
	VectorOperand
	NamedRegisterSR
	NamedRegisterCCR
	NamedRegisterUSP
)

// AddressingMode is a fully decoded operand specification.
type AddressingMode struct {
	Kind AddressingModeKind
	Reg  uint8 // register number, valid for the DataDirect/AddressDirect/AddressIndirect* kinds
	Raw  uint32 // literal payload: ValueOperand/VectorOperand constant
}

func (m AddressingMode) String() string {
	switch m.Kind {
	case DataDirect:
		return fmt.Sprintf("D%d", m.Reg)
	case AddressDirect:
		return fmt.Sprintf("A%d", m.Reg)
	case AddressIndirect:
		return fmt.Sprintf("(A%d)", m.Reg)
	case AddressIndirectPostIncrement:
		return fmt.Sprintf("(A%d)+", m.Reg)
	case AddressIndirectPreDecrement:
		return fmt.Sprintf("-(A%d)", m.Reg)
	case AddressIndirectDisplacement:
		return fmt.Sprintf("d16(A%d)", m.Reg)
	case AddressIndirectIndexedAndDisplacement:
		return fmt.Sprintf("d8(A%d,Xn)", m.Reg)
	case AbsoluteAddressWord:
		return "abs.W"
	case AbsoluteAddressLong:
		return "abs.L"
	case PCIndirectDisplacementMode:
		return "d16(PC)"
	case PCIndirectIndexed:
		return "d8(PC,Xn)"
	case Immediate:
		return "#imm"
	case ValueOperand:
		return fmt.Sprintf("#%d", m.Raw)
	case VectorOperand:
		return fmt.Sprintf("#%d", m.Raw)
	case NamedRegisterSR:
		return "SR"
	case NamedRegisterCCR:
		return "CCR"
	case NamedRegisterUSP:
		return "USP"
	default:
		return "?"
	}
}

// DecodeAddressingMode splits a 6-bit EA field (mode in bits 5-3, register
// in bits 2-0) into an AddressingMode. Mode 7 multiplexes on the register
// field to select one of the special variants.
func DecodeAddressingMode(bits uint8) (AddressingMode, error) {
	mode := (bits >> 3) & 0x7
	reg := bits & 0x7

	switch mode {
	case 0:
		return AddressingMode{Kind: DataDirect, Reg: reg}, nil
	case 1:
		return AddressingMode{Kind: AddressDirect, Reg: reg}, nil
	case 2:
		return AddressingMode{Kind: AddressIndirect, Reg: reg}, nil
	case 3:
		return AddressingMode{Kind: AddressIndirectPostIncrement, Reg: reg}, nil
	case 4:
		return AddressingMode{Kind: AddressIndirectPreDecrement, Reg: reg}, nil
	case 5:
		return AddressingMode{Kind: AddressIndirectDisplacement, Reg: reg}, nil
	case 6:
		return AddressingMode{Kind: AddressIndirectIndexedAndDisplacement, Reg: reg}, nil
	case 7:
		switch reg {
		case 0:
			return AddressingMode{Kind: AbsoluteAddressWord}, nil
		case 1:
			return AddressingMode{Kind: AbsoluteAddressLong}, nil
		case 2:
			return AddressingMode{Kind: PCIndirectDisplacementMode}, nil
		case 3:
			return AddressingMode{Kind: PCIndirectIndexed}, nil
		case 4:
			return AddressingMode{Kind: Immediate}, nil
		default:
			return AddressingMode{}, newError(DecodeFailure, 0, "reserved mode 7 register field %d", reg)
		}
	}
	return AddressingMode{}, newError(DecodeFailure, 0, "unreachable EA mode %d", mode)
}

// Condition is the 4-bit predicate used by Bcc, DBcc and Scc.
type Condition uint8

const (
	CondT Condition = iota
	CondF
	CondHI
	CondLS
	CondCC
	CondCS
	CondNE
	CondEQ
	CondVC
	CondVS
	CondPL
	CondMI
	CondGE
	CondLT
	CondGT
	CondLE
)

func (c Condition) String() string {
	names := [...]string{"T", "F", "HI", "LS", "CC", "CS", "NE", "EQ", "VC", "VS", "PL", "MI", "GE", "LT", "GT", "LE"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Evaluate tests the condition against the five CCR flags.
func (c Condition) Evaluate(x, n, z, v, cFlag bool) bool {
	switch c {
	case CondT:
		return true
	case CondF:
		return false
	case CondHI:
		return !cFlag && !z
	case CondLS:
		return cFlag || z
	case CondCC:
		return !cFlag
	case CondCS:
		return cFlag
	case CondNE:
		return !z
	case CondEQ:
		return z
	case CondVC:
		return !v
	case CondVS:
		return v
	case CondPL:
		return !n
	case CondMI:
		return n
	case CondGE:
		return (n && v) || (!n && !v)
	case CondLT:
		return (n && !v) || (!n && v)
	case CondGT:
		return (n && v && !z) || (!n && !v && !z)
	case CondLE:
		return z || (n && !v) || (!n && v)
	default:
		return false
	}
}
