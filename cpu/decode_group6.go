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

// decodeGroup6 handles BRA, BSR and the fourteen Bcc variants. The
// condition field occupies bits 11-8; the low byte is either a literal
// short displacement or, when zero, a request to fetch a following word.
func decodeGroup6(word uint16) (Instruction, error) {
	cond := Condition((word >> 8) & 0xF)
	label := uint8(word & 0xFF)

	inst := Instruction{Cond: cond}
	if label == 0 {
		inst.Src = AddressingMode{Kind: Immediate}
	} else {
		inst.Src = AddressingMode{Kind: ValueOperand, Raw: uint32(int32(int8(label)))}
	}

	switch cond {
	case CondT:
		inst.Op = OpBRA
	case CondF:
		inst.Op = OpBSR
	default:
		inst.Op = OpBcc
	}
	return inst, nil
}
