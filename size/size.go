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

// Package size defines the width-tagged value type shared by the M68k
// register file, bus, and execution engine.
package size

import "fmt"

// DataSize is the operand width of a memory access or ALU operation.
type DataSize int

const (
	Byte DataSize = iota
	Word
	LongWord
)

// String returns a human-readable name for the size.
func (s DataSize) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case LongWord:
		return "long"
	default:
		return "unknown"
	}
}

// Bytes returns how many bytes the size occupies.
func (s DataSize) Bytes() uint32 {
	switch s {
	case Byte:
		return 1
	case Word:
		return 2
	case LongWord:
		return 4
	default:
		return 0
	}
}

// Bits returns how many bits the size occupies.
func (s DataSize) Bits() uint32 {
	return s.Bytes() * 8
}

// Mask returns a bitmask covering the valid bits of the size.
func (s DataSize) Mask() uint32 {
	switch s {
	case Byte:
		return 0xFF
	case Word:
		return 0xFFFF
	case LongWord:
		return 0xFFFFFFFF
	default:
		return 0
	}
}

// MSB returns the position of the most significant (sign) bit for the size.
func (s DataSize) MSB() uint32 {
	switch s {
	case Byte:
		return 0x80
	case Word:
		return 0x8000
	case LongWord:
		return 0x80000000
	default:
		return 0
	}
}

// DecodeOneBit decodes a one-bit size field: 0 -> Word, 1 -> LongWord.
func DecodeOneBit(bit uint16) DataSize {
	if bit == 0 {
		return Word
	}
	return LongWord
}

// DecodeTwoBit decodes a two-bit size field: 00 -> Byte, 01 -> Word,
// 10 -> LongWord. 11 is reported as invalid via ok=false.
func DecodeTwoBit(bits uint16) (sz DataSize, ok bool) {
	switch bits & 0x3 {
	case 0:
		return Byte, true
	case 1:
		return Word, true
	case 2:
		return LongWord, true
	default:
		return Byte, false
	}
}

// ConditionCode holds the five M68k arithmetic flags.
type ConditionCode struct {
	X bool
	N bool
	Z bool
	V bool
	C bool
}

// Value is a width-tagged integer operand. Only the low Size.Bits() bits
// are meaningful; callers must not rely on upper bits being zero.
type Value struct {
	Size DataSize
	Raw  uint32
}

// NewValue constructs a Value, masking raw to the given size.
func NewValue(sz DataSize, raw uint32) Value {
	return Value{Size: sz, Raw: raw & sz.Mask()}
}

// Uint32 returns the zero-extended unsigned representation.
func (v Value) Uint32() uint32 {
	return v.Raw & v.Size.Mask()
}

// Int32 returns the sign-extended signed representation.
func (v Value) Int32() int32 {
	raw := v.Uint32()
	if raw&v.Size.MSB() != 0 {
		return int32(raw | ^v.Size.Mask())
	}
	return int32(raw)
}

// WithSize returns the same raw value re-tagged and masked at the given size.
func (v Value) WithSize(sz DataSize) Value {
	return NewValue(sz, v.Raw)
}

// SignExtend widens v to a new (larger or equal) size, preserving sign.
func (v Value) SignExtend(to DataSize) Value {
	return NewValue(to, uint32(v.Int32()))
}

func (v Value) String() string {
	switch v.Size {
	case Byte:
		return fmt.Sprintf("$%02X", v.Uint32())
	case Word:
		return fmt.Sprintf("$%04X", v.Uint32())
	default:
		return fmt.Sprintf("$%08X", v.Uint32())
	}
}

func signBit(raw uint32, sz DataSize) bool {
	return raw&sz.MSB() != 0
}

// AddCC adds other to v at the given size and returns the result together
// with the condition codes the addition produces. X mirrors C.
func (v Value) AddCC(sz DataSize, other Value) (Value, ConditionCode) {
	a := v.WithSize(sz).Uint32()
	b := other.WithSize(sz).Uint32()
	sum := (a + b) & sz.Mask()
	carry := (uint64(a) + uint64(b)) > uint64(sz.Mask())
	overflow := signBit(a, sz) == signBit(b, sz) && signBit(sum, sz) != signBit(a, sz)
	cc := ConditionCode{
		X: carry,
		C: carry,
		V: overflow,
		Z: sum == 0,
		N: signBit(sum, sz),
	}
	return NewValue(sz, sum), cc
}

// SubCC computes v-other at the given size (v is the minuend).
func (v Value) SubCC(sz DataSize, other Value) (Value, ConditionCode) {
	a := v.WithSize(sz).Uint32()
	b := other.WithSize(sz).Uint32()
	diff := (a - b) & sz.Mask()
	borrow := uint64(a) < uint64(b)
	overflow := signBit(a, sz) != signBit(b, sz) && signBit(diff, sz) != signBit(a, sz)
	cc := ConditionCode{
		X: borrow,
		C: borrow,
		V: overflow,
		Z: diff == 0,
		N: signBit(diff, sz),
	}
	return NewValue(sz, diff), cc
}

// CmpCC returns SubCC's flags and discards the difference. X in the
// result mirrors C; CMP callers restore the previous X themselves.
func (v Value) CmpCC(sz DataSize, other Value) ConditionCode {
	_, cc := v.SubCC(sz, other)
	return cc
}

// logicalCC is the shared flag computation for AND/OR/EOR: Z/N from the
// result, V and C cleared, X left for the caller to preserve.
func logicalCC(result uint32, sz DataSize) ConditionCode {
	return ConditionCode{
		Z: result == 0,
		N: signBit(result, sz),
	}
}

// OrCC computes the bitwise OR of v and other.
func (v Value) OrCC(sz DataSize, other Value) (Value, ConditionCode) {
	result := v.WithSize(sz).Uint32() | other.WithSize(sz).Uint32()
	return NewValue(sz, result), logicalCC(result, sz)
}

// AndCC computes the bitwise AND of v and other.
func (v Value) AndCC(sz DataSize, other Value) (Value, ConditionCode) {
	result := v.WithSize(sz).Uint32() & other.WithSize(sz).Uint32()
	return NewValue(sz, result), logicalCC(result, sz)
}

// EorCC computes the bitwise exclusive-OR of v and other.
func (v Value) EorCC(sz DataSize, other Value) (Value, ConditionCode) {
	result := v.WithSize(sz).Uint32() ^ other.WithSize(sz).Uint32()
	return NewValue(sz, result), logicalCC(result, sz)
}

// ShiftLeft performs a logical/arithmetic left shift by count bits.
// The last bit shifted out of the MSB sets C and X; if count is zero X
// is left unchanged by the caller (the third result reports whether a
// shift actually occurred).
func (v Value) ShiftLeft(sz DataSize, count uint32, prevX bool) (Value, ConditionCode, bool) {
	raw := v.WithSize(sz).Uint32()
	cc := ConditionCode{X: prevX}
	shifted := false
	for i := uint32(0); i < count; i++ {
		carry := signBit(raw, sz)
		raw = (raw << 1) & sz.Mask()
		cc.C = carry
		cc.X = carry
		shifted = true
	}
	cc.Z = raw == 0
	cc.N = signBit(raw, sz)
	return NewValue(sz, raw), cc, shifted
}

// ShiftRight performs a shift right by count bits. If arithmetic is true
// the sign bit is replicated (ASR); otherwise the fill is zero (LSR).
func (v Value) ShiftRight(sz DataSize, count uint32, arithmetic bool, prevX bool) (Value, ConditionCode, bool) {
	raw := v.WithSize(sz).Uint32()
	sign := signBit(raw, sz)
	cc := ConditionCode{X: prevX}
	shifted := false
	for i := uint32(0); i < count; i++ {
		carry := raw&1 != 0
		raw >>= 1
		if arithmetic && sign {
			raw |= sz.MSB()
		}
		cc.C = carry
		cc.X = carry
		shifted = true
	}
	raw &= sz.Mask()
	cc.Z = raw == 0
	cc.N = signBit(raw, sz)
	return NewValue(sz, raw), cc, shifted
}
