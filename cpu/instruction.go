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

// Opcode names every instruction the decoder recognizes.
type Opcode int

const (
	OpORI Opcode = iota
	OpANDI
	OpSUBI
	OpADDI
	OpEORI
	OpCMPI
	OpBTST
	OpBCHG
	OpBCLR
	OpBSET
	OpMOVEP
	OpMOVE
	OpMOVEA
	OpNEGX
	OpCLR
	OpNEG
	OpNOT
	OpMOVEfromSR
	OpMOVEtoCCR
	OpMOVEtoSR
	OpNBCD
	OpSWAP
	OpPEA
	OpEXT
	OpMOVEM
	OpTST
	OpTAS
	OpLINK
	OpUNLK
	OpMOVEUSP
	OpTRAP
	OpJSR
	OpJMP
	OpLEA
	OpCHK
	OpRESET
	OpNOP
	OpSTOP
	OpRTE
	OpRTS
	OpTRAPV
	OpRTR
	OpADDQ
	OpSUBQ
	OpScc
	OpDBcc
	OpBRA
	OpBSR
	OpBcc
	OpMOVEQ
	OpOR
	OpDIVU
	OpDIVS
	OpSBCD
	OpSUB
	OpSUBA
	OpSUBX
	OpCMP
	OpCMPA
	OpCMPM
	OpEOR
	OpAND
	OpMULU
	OpMULS
	OpABCD
	OpEXG
	OpADD
	OpADDA
	OpADDX
	OpASL
	OpASR
	OpLSL
	OpLSR
	OpROL
	OpROR
	OpROXL
	OpROXR
)

// Instruction is the typed result of decoding one opcode word. Not every
// field is meaningful for every Op; the decoder only populates the ones
// its semantics need.
type Instruction struct {
	Op   Opcode
	Size size.DataSize

	Src AddressingMode
	Dst AddressingMode

	Cond Condition // Bcc/DBcc/Scc

	Register uint8  // an explicit Dn/An not carried by Src/Dst (e.g. LEA, CHK, ADDA, LINK, MOVEP)
	Register2 uint8 // not set by Decode

	Displacement int32 // not set by Decode; branch displacements travel in Src.Raw
	Mask         uint16 // not set by Decode; MOVEM fetches its mask at execution time

	Direction bool // per-op: MOVEP true = register->memory; MOVEM true = memory->registers; MOVE USP true = USP->An
	ToMemory  bool // shift/rotate memory form vs register form
}
