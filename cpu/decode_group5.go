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

// decodeGroup5 handles ADDQ/SUBQ, Scc and DBcc.
func decodeGroup5(word uint16) (Instruction, error) {
	part2 := (word >> 6) & 0x3F
	part3 := word & 0x3F
	part2h := (part2 & 0x38) >> 3
	part2l := part2 & 0x7
	part3h := (part3 & 0x38) >> 3
	part3l := part3 & 0x7
	cond := Condition(part2 >> 2)

	if part2l&0x3 == 0x3 {
		if part3h == 0b001 {
			return Instruction{
				Op:   OpDBcc,
				Cond: cond,
				Src:  AddressingMode{Kind: DataDirect, Reg: uint8(part3l)},
				Dst:  AddressingMode{Kind: Immediate},
			}, nil
		}
		ea, err := DecodeAddressingMode(uint8(part3))
		return Instruction{Op: OpScc, Size: size.Byte, Cond: cond, Dst: mustEA(ea, err)}, err
	}

	ea, err := DecodeAddressingMode(uint8(part3))
	if err != nil {
		return Instruction{}, err
	}
	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in ADDQ/SUBQ %04X", word)
	}
	value := uint32(part2h)
	if value == 0 {
		value = 8
	}
	op := OpADDQ
	if part2l>>2 == 1 {
		op = OpSUBQ
	}
	return Instruction{Op: op, Size: sz, Src: AddressingMode{Kind: ValueOperand, Raw: value}, Dst: ea}, nil
}
