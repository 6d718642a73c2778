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

// Kind classifies why a step failed.
type Kind int

const (
	// DecodeFailure means the opcode word did not match any recognized
	// instruction bit pattern.
	DecodeFailure Kind = iota
	// BusAbsent means a required bus read or write found no device
	// present at the requested address.
	BusAbsent
	// IllegalStateUse means an instruction was used in a way the
	// architecture forbids: a bad addressing mode for the operation, a
	// privileged instruction outside supervisor mode, or similar.
	IllegalStateUse
)

func (k Kind) String() string {
	switch k {
	case DecodeFailure:
		return "decode failure"
	case BusAbsent:
		return "bus absent"
	case IllegalStateUse:
		return "illegal state use"
	default:
		return "unknown error"
	}
}

// Error is the single error type the core surfaces. It is never a panic:
// every fatal condition the decoder, EA resolver, or execution engine can
// hit is reported through this type instead.
type Error struct {
	Kind Kind
	PC   uint32
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at PC=$%08X: %s", e.Kind, e.PC, e.Msg)
}

func newError(kind Kind, pc uint32, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, PC: pc, Msg: fmt.Sprintf(format, args...)}
}
