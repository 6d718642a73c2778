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

// decodeGroup4 handles the dense 0100 major group: the single-operand
// arithmetic/logic ops, MOVE to/from SR/CCR, NBCD/SWAP/PEA/EXT/MOVEM/TST/
// TAS, LINK/UNLK, MOVE with USP, TRAP/JSR/JMP/LEA/CHK, and the aliased
// singleton opcodes at $4E70-$4E77.
func decodeGroup4(word uint16) (Instruction, error) {
	switch word {
	case 0x4E70:
		return Instruction{Op: OpRESET}, nil
	case 0x4E71:
		return Instruction{Op: OpNOP}, nil
	case 0x4E72:
		return Instruction{Op: OpSTOP, Src: AddressingMode{Kind: Immediate}}, nil
	case 0x4E73:
		return Instruction{Op: OpRTE}, nil
	case 0x4E75:
		return Instruction{Op: OpRTS}, nil
	case 0x4E76:
		return Instruction{Op: OpTRAPV}, nil
	case 0x4E77:
		return Instruction{Op: OpRTR}, nil
	}

	part2 := (word >> 6) & 0x3F
	part3 := word & 0x3F
	part2h := (part2 & 0x38) >> 3
	part2l := part2 & 0x7
	part3h := (part3 & 0x38) >> 3
	part3l := part3 & 0x7

	ea, eaErr := DecodeAddressingMode(uint8(part3))
	dReg3 := AddressingMode{Kind: DataDirect, Reg: uint8(part3l)}

	oneBitSz := size.DecodeOneBit(part2l & 0x1)
	twoBitSz, twoBitOk := size.DecodeTwoBit(part2l & 0x3)

	if part2l>>2 == 0 {
		switch part2h {
		case 0b000:
			if part2l == 0b011 {
				return Instruction{Op: OpMOVEfromSR, Size: size.Word, Src: AddressingMode{Kind: NamedRegisterSR}, Dst: mustEA(ea, eaErr)}, eaErr
			}
			if !twoBitOk {
				return Instruction{}, newError(DecodeFailure, 0, "reserved size in NEGX %04X", word)
			}
			return Instruction{Op: OpNEGX, Size: twoBitSz, Dst: mustEA(ea, eaErr)}, eaErr
		case 0b001:
			if !twoBitOk {
				return Instruction{}, newError(DecodeFailure, 0, "reserved size in CLR %04X", word)
			}
			return Instruction{Op: OpCLR, Size: twoBitSz, Dst: mustEA(ea, eaErr)}, eaErr
		case 0b010:
			if part2l == 0b011 {
				return Instruction{Op: OpMOVEtoCCR, Size: size.Word, Src: mustEA(ea, eaErr), Dst: AddressingMode{Kind: NamedRegisterCCR}}, eaErr
			}
			if !twoBitOk {
				return Instruction{}, newError(DecodeFailure, 0, "reserved size in NEG %04X", word)
			}
			return Instruction{Op: OpNEG, Size: twoBitSz, Dst: mustEA(ea, eaErr)}, eaErr
		case 0b011:
			if part2l == 0b011 {
				return Instruction{Op: OpMOVEtoSR, Size: size.Word, Src: mustEA(ea, eaErr), Dst: AddressingMode{Kind: NamedRegisterSR}}, eaErr
			}
			if !twoBitOk {
				return Instruction{}, newError(DecodeFailure, 0, "reserved size in NOT %04X", word)
			}
			return Instruction{Op: OpNOT, Size: twoBitSz, Dst: mustEA(ea, eaErr)}, eaErr
		case 0b100:
			switch part2l {
			case 0b000:
				return Instruction{Op: OpNBCD, Dst: mustEA(ea, eaErr)}, eaErr
			case 0b001:
				if part3h == 0 {
					return Instruction{Op: OpSWAP, Size: size.Word, Dst: dReg3}, nil
				}
				return Instruction{Op: OpPEA, Dst: mustEA(ea, eaErr)}, eaErr
			default:
				if part3h == 0 {
					return Instruction{Op: OpEXT, Size: oneBitSz, Dst: dReg3}, nil
				}
				return Instruction{Op: OpMOVEM, Size: oneBitSz, Dst: mustEA(ea, eaErr), Direction: false}, eaErr
			}
		case 0b101:
			if part2l == 0b011 {
				return Instruction{Op: OpTAS, Size: size.Byte, Dst: mustEA(ea, eaErr)}, eaErr
			}
			if !twoBitOk {
				return Instruction{}, newError(DecodeFailure, 0, "reserved size in TST %04X", word)
			}
			return Instruction{Op: OpTST, Size: twoBitSz, Dst: mustEA(ea, eaErr)}, eaErr
		case 0b110:
			return Instruction{Op: OpMOVEM, Size: oneBitSz, Dst: mustEA(ea, eaErr), Direction: true}, eaErr
		case 0b111:
			switch part2l {
			case 0b001:
				switch part3h {
				case 0b010:
					return Instruction{Op: OpLINK, Register: uint8(part3l), Src: AddressingMode{Kind: Immediate}}, nil
				case 0b011:
					return Instruction{Op: OpUNLK, Register: uint8(part3l)}, nil
				case 0b100:
					return Instruction{Op: OpMOVEUSP, Register: uint8(part3l), Direction: false}, nil
				case 0b101:
					return Instruction{Op: OpMOVEUSP, Register: uint8(part3l), Direction: true}, nil
				default:
					return Instruction{Op: OpTRAP, Src: AddressingMode{Kind: VectorOperand, Raw: uint32(part3)}}, nil
				}
			case 0b010:
				return Instruction{Op: OpJSR, Dst: mustEA(ea, eaErr)}, eaErr
			case 0b011:
				return Instruction{Op: OpJMP, Dst: mustEA(ea, eaErr)}, eaErr
			default:
				return Instruction{}, newError(DecodeFailure, 0, "reserved group-4 opcode %04X", word)
			}
		}
		return Instruction{}, newError(DecodeFailure, 0, "unreachable group-4 opcode %04X", word)
	}

	switch part2l {
	case 0b110:
		return Instruction{Op: OpCHK, Size: size.Word, Src: mustEA(ea, eaErr), Register: uint8(part2h)}, eaErr
	case 0b111:
		return Instruction{Op: OpLEA, Src: mustEA(ea, eaErr), Register: uint8(part2h)}, eaErr
	default:
		return Instruction{}, newError(DecodeFailure, 0, "reserved group-4 opcode %04X", word)
	}
}

func mustEA(ea AddressingMode, err error) AddressingMode {
	if err != nil {
		return AddressingMode{}
	}
	return ea
}
