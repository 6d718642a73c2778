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

func splitParts(word uint16) (part2h, part2l, part3h, part3l uint16, ea AddressingMode, eaErr error) {
	part2 := (word >> 6) & 0x3F
	part3 := word & 0x3F
	part2h = (part2 & 0x38) >> 3
	part2l = part2 & 0x7
	part3h = (part3 & 0x38) >> 3
	part3l = part3 & 0x7
	ea, eaErr = DecodeAddressingMode(uint8(part3))
	return
}

func dn(reg uint16) AddressingMode { return AddressingMode{Kind: DataDirect, Reg: uint8(reg)} }
func an(reg uint16) AddressingMode { return AddressingMode{Kind: AddressDirect, Reg: uint8(reg)} }
func predec(reg uint16) AddressingMode {
	return AddressingMode{Kind: AddressIndirectPreDecrement, Reg: uint8(reg)}
}
func postinc(reg uint16) AddressingMode {
	return AddressingMode{Kind: AddressIndirectPostIncrement, Reg: uint8(reg)}
}

// decodeGroup8 handles OR, DIVU, DIVS and SBCD.
func decodeGroup8(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)

	switch part2l {
	case 0b011:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpDIVU, Size: size.Word, Src: ea, Dst: dn(part2h)}, nil
	case 0b111:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpDIVS, Size: size.Word, Src: ea, Dst: dn(part2h)}, nil
	case 0b100:
		if part3h == 0b000 {
			return Instruction{Op: OpSBCD, Src: dn(part3l), Dst: dn(part2h)}, nil
		}
		if part3h == 0b001 {
			return Instruction{Op: OpSBCD, Src: predec(part3l), Dst: predec(part2h)}, nil
		}
	}

	if eaErr != nil {
		return Instruction{}, eaErr
	}
	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in OR %04X", word)
	}
	if (part2l>>2)&1 == 0 {
		return Instruction{Op: OpOR, Size: sz, Src: ea, Dst: dn(part2h)}, nil
	}
	return Instruction{Op: OpOR, Size: sz, Src: dn(part2h), Dst: ea}, nil
}

// decodeGroup9 handles SUB, SUBA and SUBX.
func decodeGroup9(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)

	if part2l == 0b011 || part2l == 0b111 {
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		sz := size.DecodeOneBit(part2l >> 2)
		return Instruction{Op: OpSUBA, Size: sz, Src: ea, Register: uint8(part2h)}, nil
	}

	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in SUB %04X", word)
	}
	bit := part2l >> 2
	switch {
	case bit == 1 && part3h == 0b000:
		return Instruction{Op: OpSUBX, Size: sz, Src: dn(part3l), Dst: dn(part2h)}, nil
	case bit == 1 && part3h == 0b001:
		return Instruction{Op: OpSUBX, Size: sz, Src: predec(part3l), Dst: predec(part2h)}, nil
	case bit == 0:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpSUB, Size: sz, Src: ea, Dst: dn(part2h)}, nil
	default:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpSUB, Size: sz, Src: dn(part2h), Dst: ea}, nil
	}
}

// decodeGroupB handles CMP, CMPA, CMPM and EOR.
func decodeGroupB(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)

	if part2l&0x3 == 0x3 {
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		sz := size.DecodeOneBit(part2l >> 2)
		return Instruction{Op: OpCMPA, Size: sz, Src: ea, Register: uint8(part2h)}, nil
	}

	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in CMP/EOR %04X", word)
	}

	if part2l&0x4 == 0 {
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpCMP, Size: sz, Src: ea, Dst: dn(part2h)}, nil
	}

	if part3h == 0b001 {
		return Instruction{Op: OpCMPM, Size: sz, Src: postinc(part3l), Dst: postinc(part2h)}, nil
	}
	if eaErr != nil {
		return Instruction{}, eaErr
	}
	return Instruction{Op: OpEOR, Size: sz, Src: dn(part2h), Dst: ea}, nil
}

// decodeGroupC handles AND, MULU, MULS, ABCD and EXG.
func decodeGroupC(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)

	switch {
	case part2l == 0b011:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpMULU, Size: size.Word, Src: ea, Dst: dn(part2h)}, nil
	case part2l == 0b111:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpMULS, Size: size.Word, Src: ea, Dst: dn(part2h)}, nil
	case part2l == 0b100 && part3h == 0b000:
		return Instruction{Op: OpABCD, Src: dn(part3l), Dst: dn(part2h)}, nil
	case part2l == 0b100 && part3h == 0b001:
		return Instruction{Op: OpABCD, Src: predec(part3l), Dst: predec(part2h)}, nil
	case part2l == 0b101 && part3h == 0b000:
		return Instruction{Op: OpEXG, Size: size.LongWord, Src: dn(part3l), Dst: dn(part2h)}, nil
	case part2l == 0b101 && part3h == 0b001:
		return Instruction{Op: OpEXG, Size: size.LongWord, Src: an(part3l), Dst: an(part2h)}, nil
	case part2l == 0b110 && part3h == 0b001:
		return Instruction{Op: OpEXG, Size: size.LongWord, Src: an(part3l), Dst: dn(part2h)}, nil
	}

	if eaErr != nil {
		return Instruction{}, eaErr
	}
	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in AND %04X", word)
	}
	if part2l>>2 == 0 {
		return Instruction{Op: OpAND, Size: sz, Src: ea, Dst: dn(part2h)}, nil
	}
	return Instruction{Op: OpAND, Size: sz, Src: dn(part2h), Dst: ea}, nil
}

// decodeGroupD handles ADD, ADDA and ADDX.
func decodeGroupD(word uint16) (Instruction, error) {
	part2h, part2l, part3h, part3l, ea, eaErr := splitParts(word)

	if part2l&0x3 == 0x3 {
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		sz := size.DecodeOneBit(part2l >> 2)
		return Instruction{Op: OpADDA, Size: sz, Src: ea, Register: uint8(part2h)}, nil
	}

	sz, ok := size.DecodeTwoBit(part2l & 0x3)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size in ADD %04X", word)
	}
	bit := part2l >> 2
	switch {
	case bit == 1 && part3h == 0b000:
		return Instruction{Op: OpADDX, Size: sz, Src: dn(part3l), Dst: dn(part2h)}, nil
	case bit == 1 && part3h == 0b001:
		return Instruction{Op: OpADDX, Size: sz, Src: predec(part3l), Dst: predec(part2h)}, nil
	case bit == 0:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpADD, Size: sz, Src: ea, Dst: dn(part2h)}, nil
	default:
		if eaErr != nil {
			return Instruction{}, eaErr
		}
		return Instruction{Op: OpADD, Size: sz, Src: dn(part2h), Dst: ea}, nil
	}
}
