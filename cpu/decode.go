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

// Decode classifies a 16-bit opcode word into a typed Instruction. It
// never panics: an unrecognized bit pattern comes back as a DecodeFailure
// error.
func Decode(word uint16) (Instruction, error) {
	switch word >> 12 {
	case 0x0:
		return decodeGroup0(word)
	case 0x1:
		return decodeMove(word, size.Byte)
	case 0x2:
		return decodeMove(word, size.LongWord)
	case 0x3:
		return decodeMove(word, size.Word)
	case 0x4:
		return decodeGroup4(word)
	case 0x5:
		return decodeGroup5(word)
	case 0x6:
		return decodeGroup6(word)
	case 0x7:
		return decodeMOVEQ(word)
	case 0x8:
		return decodeGroup8(word)
	case 0x9:
		return decodeGroup9(word)
	case 0xB:
		return decodeGroupB(word)
	case 0xC:
		return decodeGroupC(word)
	case 0xD:
		return decodeGroupD(word)
	case 0xE:
		return decodeGroupE(word)
	default:
		return Instruction{}, newError(DecodeFailure, 0, "reserved opcode group %X", word>>12)
	}
}

func twoBitSize(word uint16, shift uint) (size.DataSize, bool) {
	return size.DecodeTwoBit(word >> shift)
}

// decodeGroup0 handles the 0000 major group: immediate arithmetic, the
// static and dynamic bit instructions, and MOVEP.
func decodeGroup0(word uint16) (Instruction, error) {
	switch word {
	case 0x003C:
		return Instruction{Op: OpORI, Size: size.Byte, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterCCR}}, nil
	case 0x007C:
		return Instruction{Op: OpORI, Size: size.Word, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterSR}}, nil
	case 0x023C:
		return Instruction{Op: OpANDI, Size: size.Byte, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterCCR}}, nil
	case 0x027C:
		return Instruction{Op: OpANDI, Size: size.Word, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterSR}}, nil
	case 0x0A3C:
		return Instruction{Op: OpEORI, Size: size.Byte, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterCCR}}, nil
	case 0x0A7C:
		return Instruction{Op: OpEORI, Size: size.Word, Src: AddressingMode{Kind: Immediate}, Dst: AddressingMode{Kind: NamedRegisterSR}}, nil
	}

	if word&0x0138 == 0x0108 { // bits 8=1, bits 5-3=001 -> MOVEP
		dReg := uint8((word >> 9) & 0x7)
		aReg := uint8(word & 0x7)
		opmode := (word >> 6) & 0x7
		sz := size.Word
		if opmode == 7 || opmode == 5 {
			sz = size.LongWord
		}
		toMemory := opmode >= 6
		inst := Instruction{
			Op:        OpMOVEP,
			Size:      sz,
			Register:  dReg,
			Dst:       AddressingMode{Kind: AddressIndirectDisplacement, Reg: aReg},
			Direction: toMemory,
		}
		return inst, nil
	}

	if word&0x0F00 == 0x0800 { // static bit instructions: bits 11-8 = 1000
		op := opFromBitField((word >> 6) & 0x3)
		eaBits := uint8(word & 0x3F)
		ea, err := DecodeAddressingMode(eaBits)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: bitOpSize(ea), Src: AddressingMode{Kind: Immediate}, Dst: ea}, nil
	}

	if word&0x0100 == 0x0100 { // dynamic bit instructions: bit 8 = 1
		op := opFromBitField((word >> 6) & 0x3)
		dReg := uint8((word >> 9) & 0x7)
		eaBits := uint8(word & 0x3F)
		ea, err := DecodeAddressingMode(eaBits)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: bitOpSize(ea), Src: AddressingMode{Kind: DataDirect, Reg: dReg}, Dst: ea}, nil
	}

	// Immediate arithmetic: ORI/ANDI/SUBI/ADDI/EORI/CMPI
	selector := (word >> 9) & 0x7
	var op Opcode
	switch selector {
	case 0:
		op = OpORI
	case 1:
		op = OpANDI
	case 2:
		op = OpSUBI
	case 3:
		op = OpADDI
	case 5:
		op = OpEORI
	case 6:
		op = OpCMPI
	default:
		return Instruction{}, newError(DecodeFailure, 0, "reserved group-0 selector %03b", selector)
	}
	sz, ok := twoBitSize(word, 6)
	if !ok {
		return Instruction{}, newError(DecodeFailure, 0, "reserved size field in immediate opcode %04X", word)
	}
	eaBits := uint8(word & 0x3F)
	ea, err := DecodeAddressingMode(eaBits)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Op: op, Size: sz, Src: AddressingMode{Kind: Immediate}, Dst: ea}, nil
}

// bitOpSize reports the operand size BTST/BCHG/BCLR/BSET use: Long when
// the destination is a data register (the bit number is taken mod 32),
// Byte otherwise (mod 8).
func bitOpSize(dst AddressingMode) size.DataSize {
	if dst.Kind == DataDirect {
		return size.LongWord
	}
	return size.Byte
}

func opFromBitField(bits uint16) Opcode {
	switch bits {
	case 0:
		return OpBTST
	case 1:
		return OpBCHG
	case 2:
		return OpBCLR
	default:
		return OpBSET
	}
}

// decodeMove handles the 0001/0010/0011 MOVE groups. The destination EA
// field carries mode and register swapped relative to the source field.
func decodeMove(word uint16, sz size.DataSize) (Instruction, error) {
	srcBits := uint8(word & 0x3F)
	src, err := DecodeAddressingMode(srcBits)
	if err != nil {
		return Instruction{}, err
	}
	dstReg := uint8((word >> 9) & 0x7)
	dstMode := uint8((word >> 6) & 0x7)
	dst, err := DecodeAddressingMode((dstMode << 3) | dstReg)
	if err != nil {
		return Instruction{}, err
	}
	op := OpMOVE
	if dst.Kind == AddressDirect {
		op = OpMOVEA
	}
	return Instruction{Op: op, Size: sz, Src: src, Dst: dst}, nil
}

// decodeMOVEQ handles the 0111 group.
func decodeMOVEQ(word uint16) (Instruction, error) {
	if word&0x0100 != 0 {
		return Instruction{}, newError(DecodeFailure, 0, "reserved MOVEQ bit 8 set: %04X", word)
	}
	dReg := uint8((word >> 9) & 0x7)
	imm := int32(int8(word & 0xFF))
	return Instruction{
		Op:   OpMOVEQ,
		Size: size.LongWord,
		Src:  AddressingMode{Kind: ValueOperand, Raw: uint32(imm)},
		Dst:  AddressingMode{Kind: DataDirect, Reg: dReg},
	}, nil
}
