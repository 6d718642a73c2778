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

package bus

// RAM is a flat, contiguous memory device mapped starting at Origin.
// It is the default device a vm.Machine maps at address zero.
type RAM struct {
	Origin uint32
	mem    []uint8
	cycles int
}

// NewRAM allocates size bytes of RAM starting at origin.
func NewRAM(origin uint32, size uint32) *RAM {
	return &RAM{Origin: origin, mem: make([]uint8, size)}
}

// Reset fills RAM with 0xFF, the conventional pattern for uninitialized
// memory on power-up.
func (r *RAM) Reset() {
	for i := range r.mem {
		r.mem[i] = 0xFF
	}
}

func (r *RAM) inRange(addr uint32, width uint32) bool {
	if addr < r.Origin {
		return false
	}
	off := addr - r.Origin
	return off+width <= uint32(len(r.mem))
}

func (r *RAM) ReadByte(addr uint32) (uint8, bool) {
	if !r.inRange(addr, 1) {
		return 0, false
	}
	return r.mem[addr-r.Origin], true
}

func (r *RAM) ReadWord(addr uint32) (uint16, bool) {
	if !r.inRange(addr, 2) {
		return 0, false
	}
	off := addr - r.Origin
	return uint16(r.mem[off])<<8 | uint16(r.mem[off+1]), true
}

func (r *RAM) ReadLong(addr uint32) (uint32, bool) {
	hi, ok := r.ReadWord(addr)
	if !ok {
		return 0, false
	}
	lo, ok := r.ReadWord(addr + 2)
	if !ok {
		return 0, false
	}
	return uint32(hi)<<16 | uint32(lo), true
}

func (r *RAM) WriteByte(addr uint32, v uint8) bool {
	if !r.inRange(addr, 1) {
		return false
	}
	r.mem[addr-r.Origin] = v
	return true
}

func (r *RAM) WriteWord(addr uint32, v uint16) bool {
	if !r.inRange(addr, 2) {
		return false
	}
	off := addr - r.Origin
	r.mem[off] = uint8(v >> 8)
	r.mem[off+1] = uint8(v)
	return true
}

func (r *RAM) WriteLong(addr uint32, v uint32) bool {
	if !r.WriteWord(addr, uint16(v>>16)) {
		return false
	}
	return r.WriteWord(addr+2, uint16(v))
}

func (r *RAM) Tick(cycles int) {
	r.cycles += cycles
}

// Cycles returns the coarse tick count accumulated since the RAM was
// created; Reset does not clear it.
func (r *RAM) Cycles() int {
	return r.cycles
}

// Len returns the device's window size in bytes.
func (r *RAM) Len() int {
	return len(r.mem)
}

// LoadAt copies data into RAM starting at absolute address addr, returning
// false if any byte would fall outside the device's window.
func (r *RAM) LoadAt(addr uint32, data []byte) bool {
	if !r.inRange(addr, uint32(len(data))) {
		return false
	}
	copy(r.mem[addr-r.Origin:], data)
	return true
}
