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

// Package disasm renders registers and decoded instructions as text: a
// scratch walk over a bus image that never touches live CPU state.
package disasm

import (
	"fmt"
	"strings"

	"github.com/master-g/m68k/bus"
	"github.com/master-g/m68k/cpu"
	"github.com/master-g/m68k/register"
	"github.com/master-g/m68k/size"
)

// Line is one disassembled instruction.
type Line struct {
	Addr     uint32
	Bytes    []byte
	Mnemonic string
	Operands string
}

func (l Line) String() string {
	if l.Operands == "" {
		return fmt.Sprintf("$%08X  %-8s", l.Addr, l.Mnemonic)
	}
	return fmt.Sprintf("$%08X  %-8s %s", l.Addr, l.Mnemonic, l.Operands)
}

// fetcher walks a bus image without mutating any register, consuming
// extension words exactly the way the live EA resolver would.
type fetcher struct {
	b  *bus.Bus
	pc uint32
}

func (f *fetcher) word() (uint16, error) {
	v, ok := f.b.ReadWord(f.pc)
	if !ok {
		return 0, &cpu.Error{Kind: cpu.BusAbsent, PC: f.pc, Msg: "disasm: no device present"}
	}
	f.pc += 2
	return v, nil
}

func (f *fetcher) long() (uint32, error) {
	hi, err := f.word()
	if err != nil {
		return 0, err
	}
	lo, err := f.word()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// Decode decodes one instruction starting at addr without mutating any
// CPU state: it drives its own fetcher over the given bus. It returns the
// rendered Line and the address of the next instruction.
func Decode(b *bus.Bus, addr uint32) (Line, uint32, error) {
	f := &fetcher{b: b, pc: addr}
	word, err := f.word()
	if err != nil {
		return Line{}, addr, err
	}
	inst, err := cpu.Decode(word)
	if err != nil {
		if merr, ok := err.(*cpu.Error); ok {
			merr.PC = addr
		}
		return Line{}, addr + 2, err
	}

	// MOVEM's register mask is a live-fetched extension word, not a
	// decode-time field (cpu.execMOVEM fetches it the same way, right
	// after the opcode and before any addressing-mode extension word).
	var movemMask uint16
	if inst.Op == cpu.OpMOVEM {
		movemMask, err = f.word()
		if err != nil {
			return Line{}, f.pc, err
		}
	}

	srcText, err := formatOperand(f, inst.Src, inst.Size, addr)
	if err != nil {
		return Line{}, f.pc, err
	}
	dstText, err := formatOperand(f, inst.Dst, inst.Size, addr)
	if err != nil {
		return Line{}, f.pc, err
	}

	line := Line{
		Addr:     addr,
		Mnemonic: mnemonic(inst),
		Operands: operandText(inst, srcText, dstText, movemMask),
	}
	for a := addr; a < f.pc; a++ {
		bb, ok := b.ReadByte(a)
		if !ok {
			break
		}
		line.Bytes = append(line.Bytes, bb)
	}
	return line, f.pc, nil
}

// Range walks [start, end), decoding one instruction at a time and
// skipping over any bytes a prior instruction consumed as opcode or
// extension words. Decoding stops (without error) at the first address
// that fails to decode, since a disassembly range commonly runs past the
// end of code into data.
func Range(b *bus.Bus, start, end uint32) []Line {
	var lines []Line
	addr := start
	for addr < end {
		line, next, err := Decode(b, addr)
		if err != nil {
			break
		}
		lines = append(lines, line)
		if next <= addr {
			break
		}
		addr = next
	}
	return lines
}

// formatOperand renders mode as M68k assembler operand syntax, consuming
// whatever extension words the mode requires from f. opcodeAddr is the
// address of the base opcode word, used for PC-relative text.
func formatOperand(f *fetcher, mode cpu.AddressingMode, sz size.DataSize, opcodeAddr uint32) (string, error) {
	switch mode.Kind {
	case cpu.DataDirect:
		return fmt.Sprintf("D%d", mode.Reg), nil
	case cpu.AddressDirect:
		return fmt.Sprintf("A%d", mode.Reg), nil
	case cpu.AddressIndirect:
		return fmt.Sprintf("(A%d)", mode.Reg), nil
	case cpu.AddressIndirectPostIncrement:
		return fmt.Sprintf("(A%d)+", mode.Reg), nil
	case cpu.AddressIndirectPreDecrement:
		return fmt.Sprintf("-(A%d)", mode.Reg), nil
	case cpu.AddressIndirectDisplacement:
		disp, err := f.word()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X(A%d)", disp, mode.Reg), nil
	case cpu.AddressIndirectIndexedAndDisplacement:
		ext, err := f.word()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%02X(A%d,%s)", ext&0xFF, mode.Reg, indexRegText(ext)), nil
	case cpu.AbsoluteAddressWord:
		w, err := f.word()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X.W", w), nil
	case cpu.AbsoluteAddressLong:
		l, err := f.long()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%08X.L", l), nil
	case cpu.PCIndirectDisplacementMode:
		disp, err := f.word()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X(PC)", disp), nil
	case cpu.PCIndirectIndexed:
		ext, err := f.word()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%02X(PC,%s)", ext&0xFF, indexRegText(ext)), nil
	case cpu.Immediate:
		switch sz {
		case size.Byte, size.Word:
			w, err := f.word()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("#$%X", w), nil
		default:
			l, err := f.long()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("#$%X", l), nil
		}
	case cpu.ValueOperand, cpu.VectorOperand:
		return fmt.Sprintf("#%d", int32(mode.Raw)), nil
	case cpu.NamedRegisterSR:
		return "SR", nil
	case cpu.NamedRegisterCCR:
		return "CCR", nil
	case cpu.NamedRegisterUSP:
		return "USP", nil
	default:
		return "", nil
	}
}

func indexRegText(ext uint16) string {
	reg := (ext >> 12) & 0x7
	kind := "D"
	if ext&0x8000 != 0 {
		kind = "A"
	}
	width := "W"
	if ext&0x0800 != 0 {
		width = "L"
	}
	scale := uint16(1) << ((ext >> 9) & 0x3)
	if scale == 1 {
		return fmt.Sprintf("%s%d.%s", kind, reg, width)
	}
	return fmt.Sprintf("%s%d.%s*%d", kind, reg, width, scale)
}

// sizeSuffix returns ".B"/".W"/".L" for opcodes whose mnemonic carries an
// explicit size suffix in standard M68k assembler syntax.
func sizeSuffix(sz size.DataSize) string {
	switch sz {
	case size.Byte:
		return ".B"
	case size.Word:
		return ".W"
	default:
		return ".L"
	}
}

var baseMnemonic = map[cpu.Opcode]string{
	cpu.OpORI: "ORI", cpu.OpANDI: "ANDI", cpu.OpSUBI: "SUBI", cpu.OpADDI: "ADDI",
	cpu.OpEORI: "EORI", cpu.OpCMPI: "CMPI",
	cpu.OpBTST: "BTST", cpu.OpBCHG: "BCHG", cpu.OpBCLR: "BCLR", cpu.OpBSET: "BSET",
	cpu.OpMOVEP: "MOVEP", cpu.OpMOVE: "MOVE", cpu.OpMOVEA: "MOVEA",
	cpu.OpNEGX: "NEGX", cpu.OpCLR: "CLR", cpu.OpNEG: "NEG", cpu.OpNOT: "NOT",
	cpu.OpMOVEfromSR: "MOVE", cpu.OpMOVEtoCCR: "MOVE", cpu.OpMOVEtoSR: "MOVE",
	cpu.OpNBCD: "NBCD", cpu.OpSWAP: "SWAP", cpu.OpPEA: "PEA", cpu.OpEXT: "EXT",
	cpu.OpMOVEM: "MOVEM", cpu.OpTST: "TST", cpu.OpTAS: "TAS",
	cpu.OpLINK: "LINK", cpu.OpUNLK: "UNLK", cpu.OpMOVEUSP: "MOVE",
	cpu.OpTRAP: "TRAP", cpu.OpJSR: "JSR", cpu.OpJMP: "JMP", cpu.OpLEA: "LEA",
	cpu.OpCHK: "CHK",
	cpu.OpRESET: "RESET", cpu.OpNOP: "NOP", cpu.OpSTOP: "STOP", cpu.OpRTE: "RTE",
	cpu.OpRTS: "RTS", cpu.OpTRAPV: "TRAPV", cpu.OpRTR: "RTR",
	cpu.OpADDQ: "ADDQ", cpu.OpSUBQ: "SUBQ",
	cpu.OpMOVEQ: "MOVEQ",
	cpu.OpOR: "OR", cpu.OpDIVU: "DIVU", cpu.OpDIVS: "DIVS", cpu.OpSBCD: "SBCD",
	cpu.OpSUB: "SUB", cpu.OpSUBA: "SUBA", cpu.OpSUBX: "SUBX",
	cpu.OpCMP: "CMP", cpu.OpCMPA: "CMPA", cpu.OpCMPM: "CMPM", cpu.OpEOR: "EOR",
	cpu.OpAND: "AND", cpu.OpMULU: "MULU", cpu.OpMULS: "MULS", cpu.OpABCD: "ABCD",
	cpu.OpEXG: "EXG", cpu.OpADD: "ADD", cpu.OpADDA: "ADDA", cpu.OpADDX: "ADDX",
	cpu.OpASL: "ASL", cpu.OpASR: "ASR", cpu.OpLSL: "LSL", cpu.OpLSR: "LSR",
	cpu.OpROL: "ROL", cpu.OpROR: "ROR", cpu.OpROXL: "ROXL", cpu.OpROXR: "ROXR",
}

// sizelessOps never carry an assembler size suffix: either their size is
// fixed (MOVEQ is always long, LEA/PEA/JSR/JMP operate on addresses) or
// the condition mnemonic already encodes everything the reader needs.
var sizelessOps = map[cpu.Opcode]bool{
	cpu.OpMOVEQ: true, cpu.OpLEA: true, cpu.OpPEA: true, cpu.OpJSR: true,
	cpu.OpJMP: true, cpu.OpRTS: true, cpu.OpRTE: true, cpu.OpRTR: true,
	cpu.OpNOP: true, cpu.OpRESET: true, cpu.OpTRAPV: true, cpu.OpTRAP: true,
	cpu.OpSWAP: true, cpu.OpUNLK: true, cpu.OpLINK: true, cpu.OpEXG: true,
	cpu.OpNBCD: true, cpu.OpSBCD: true, cpu.OpABCD: true, cpu.OpTAS: true,
	cpu.OpMOVEfromSR: true, cpu.OpMOVEtoCCR: true, cpu.OpMOVEtoSR: true,
	cpu.OpMOVEUSP: true, cpu.OpCHK: true, cpu.OpSTOP: true,
}

func mnemonic(inst cpu.Instruction) string {
	switch inst.Op {
	case cpu.OpBRA:
		return "BRA"
	case cpu.OpBSR:
		return "BSR"
	case cpu.OpBcc:
		return "B" + inst.Cond.String()
	case cpu.OpDBcc:
		return "DB" + inst.Cond.String()
	case cpu.OpScc:
		return "S" + inst.Cond.String()
	}

	name, ok := baseMnemonic[inst.Op]
	if !ok {
		return fmt.Sprintf("?OP%d", int(inst.Op))
	}
	if sizelessOps[inst.Op] {
		return name
	}
	return name + sizeSuffix(inst.Size)
}

// operandText joins the rendered source/destination text in the right
// order for the mnemonic, handling the handful of ops whose operand order
// or count does not follow the plain "src,dst" pattern.
func operandText(inst cpu.Instruction, src, dst string, movemMask uint16) string {
	switch inst.Op {
	case cpu.OpNOP, cpu.OpRESET, cpu.OpRTS, cpu.OpRTE, cpu.OpRTR, cpu.OpTRAPV:
		return ""
	case cpu.OpBRA, cpu.OpBSR, cpu.OpBcc:
		return src
	case cpu.OpDBcc:
		return src + "," + dst
	case cpu.OpScc, cpu.OpCLR, cpu.OpNEG, cpu.OpNEGX, cpu.OpNOT, cpu.OpTST,
		cpu.OpSWAP, cpu.OpEXT, cpu.OpNBCD, cpu.OpTAS, cpu.OpPEA, cpu.OpJMP,
		cpu.OpJSR, cpu.OpUNLK:
		return dst
	case cpu.OpTRAP:
		return src
	case cpu.OpLINK:
		return fmt.Sprintf("A%d,%s", inst.Register, src)
	case cpu.OpEXG:
		return src + "," + dst
	case cpu.OpLEA:
		return fmt.Sprintf("%s,A%d", src, inst.Register)
	case cpu.OpCHK:
		return fmt.Sprintf("%s,D%d", src, inst.Register)
	case cpu.OpADDA, cpu.OpSUBA, cpu.OpCMPA:
		return fmt.Sprintf("%s,A%d", src, inst.Register)
	case cpu.OpMOVEUSP:
		if inst.Direction {
			return fmt.Sprintf("USP,A%d", inst.Register)
		}
		return fmt.Sprintf("A%d,USP", inst.Register)
	case cpu.OpMOVEM:
		list := movemRegisterList(movemMask, inst.Dst.Kind == cpu.AddressIndirectPreDecrement)
		if inst.Direction {
			return dst + "," + list
		}
		return list + "," + dst
	}
	if src == "" {
		return dst
	}
	if dst == "" {
		return src
	}
	return src + "," + dst
}

// movemRegisterList renders a MOVEM mask as a comma-separated register
// list. In predecrement mode the mask's bit order is reversed (A7 is bit
// 0 of the low half) to match the order the core stores in.
func movemRegisterList(mask uint16, predecrement bool) string {
	var names []string
	for i := 0; i < 16; i++ {
		bit := i
		if predecrement {
			bit = 15 - i
		}
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		if i < 8 {
			names = append(names, fmt.Sprintf("D%d", i))
		} else {
			names = append(names, fmt.Sprintf("A%d", i-8))
		}
	}
	return strings.Join(names, "/")
}

// FormatRegisters renders the complete register file as a multi-line
// string: the eight data registers, the eight address registers, then
// PC/SR with the CCR flags spelled out letter-by-letter, upper-case when
// set and lower-case when clear.
func FormatRegisters(r *register.Registers) string {
	sb := &strings.Builder{}

	sb.WriteString("D: ")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(sb, "D%d=$%08X ", i, r.D[i])
	}
	sb.WriteRune('\n')

	sb.WriteString("A: ")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(sb, "A%d=$%08X ", i, r.A[i])
	}
	sb.WriteRune('\n')

	cc := r.CCR()
	fmt.Fprintf(sb, "PC=$%08X SR=$%04X [%s][%s][%s][%s][%s]\n",
		r.PC, r.SR(),
		flagLetter('X', cc.X), flagLetter('N', cc.N), flagLetter('Z', cc.Z),
		flagLetter('V', cc.V), flagLetter('C', cc.C))
	return sb.String()
}

func flagLetter(letter byte, set bool) string {
	if set {
		return string(letter)
	}
	return strings.ToLower(string(letter))
}
