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

var shiftOpsRight = [4]Opcode{OpASR, OpLSR, OpROXR, OpROR}
var shiftOpsLeft = [4]Opcode{OpASL, OpLSL, OpROXL, OpROL}

// decodeGroupE handles the shift/rotate family: the fixed single-bit
// memory forms and the register-form immediate/register-count variants.
func decodeGroupE(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)
	part2 := (part2h << 3) | part2l

	switch part2 {
	case 0b000011:
		return memShift(OpASR, ea, eaErr)
	case 0b000111:
		return memShift(OpASL, ea, eaErr)
	case 0b001011:
		return memShift(OpLSR, ea, eaErr)
	case 0b001111:
		return memShift(OpLSL, ea, eaErr)
	case 0b010011:
		return memShift(OpROXR, ea, eaErr)
	case 0b010111:
		return memShift(OpROXL, ea, eaErr)
	case 0b011011:
		return memShift(OpROR, ea, eaErr)
	case 0b011111:
		return memShift(OpROL, ea, eaErr)
	}

	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in shift %04X", word)
	}
	left := part2l&0x4 != 0
	kind := part3h & 0x3
	var op Opcode
	if left {
		op = shiftOpsLeft[kind]
	} else {
		op = shiftOpsRight[kind]
	}

	var src AddressingMode
	if part3h>>2 == 0 {
		count := uint32(part2h)
		if count == 0 {
			count = 8
		}
		src = AddressingMode{Kind: ValueOperand, Raw: count}
	} else {
		src = dn(part2h)
	}

	return Instruction{Op: op, Size: sz, Src: src, Dst: dn(part3l)}, nil
}

func memShift(op Opcode, ea AddressingMode, err error) (Instruction, error) {
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Op:       op,
		Size:     size.Word,
		Src:      AddressingMode{Kind: ValueOperand, Raw: 1},
		Dst:      ea,
		ToMemory: true,
	}, nil
}
