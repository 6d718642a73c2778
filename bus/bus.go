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

// Package bus defines the memory-mapped I/O contract the M68k core talks
// to, plus an aggregate bus that dispatches across an ordered list of
// mapped devices.
package bus

// Device is one piece of mapped hardware. Reads/writes that fall outside
// a device's window return ok=false so the aggregate Bus can try the next
// device in line.
//
// Every Device implements its byte reads/writes itself: the package
// provides no default that derives byte access from ReadWord/WriteWord.
type Device interface {
	ReadByte(addr uint32) (v uint8, ok bool)
	ReadWord(addr uint32) (v uint16, ok bool)
	ReadLong(addr uint32) (v uint32, ok bool)

	WriteByte(addr uint32, v uint8) (ok bool)
	WriteWord(addr uint32, v uint16) (ok bool)
	WriteLong(addr uint32, v uint32) (ok bool)

	// Tick advances the device's coarse cycle counter. It is not
	// cycle-accurate; it exists so a device can account for how much
	// time has elapsed since it was last touched.
	Tick(cycles int)
}

// Writer is the narrow slice of Device a program loader needs: the
// ability to deposit bytes at arbitrary addresses. Both *Bus and *RAM
// satisfy it.
type Writer interface {
	WriteByte(addr uint32, v uint8) (ok bool)
}

// Bus is an ordered aggregate of mapped Devices. The first device that
// answers present wins; if none do, the access is absent.
type Bus struct {
	devices []Device
}

// New returns an empty aggregate bus.
func New() *Bus {
	return &Bus{}
}

// Map appends a device to the dispatch list. Devices mapped earlier take
// priority over devices mapped later when their windows overlap.
func (b *Bus) Map(d Device) {
	b.devices = append(b.devices, d)
}

func (b *Bus) ReadByte(addr uint32) (uint8, bool) {
	for _, d := range b.devices {
		if v, ok := d.ReadByte(addr); ok {
			return v, true
		}
	}
	return 0, false
}

func (b *Bus) ReadWord(addr uint32) (uint16, bool) {
	for _, d := range b.devices {
		if v, ok := d.ReadWord(addr); ok {
			return v, true
		}
	}
	return 0, false
}

func (b *Bus) ReadLong(addr uint32) (uint32, bool) {
	for _, d := range b.devices {
		if v, ok := d.ReadLong(addr); ok {
			return v, true
		}
	}
	return 0, false
}

func (b *Bus) WriteByte(addr uint32, v uint8) bool {
	for _, d := range b.devices {
		if d.WriteByte(addr, v) {
			return true
		}
	}
	return false
}

func (b *Bus) WriteWord(addr uint32, v uint16) bool {
	for _, d := range b.devices {
		if d.WriteWord(addr, v) {
			return true
		}
	}
	return false
}

func (b *Bus) WriteLong(addr uint32, v uint32) bool {
	for _, d := range b.devices {
		if d.WriteLong(addr, v) {
			return true
		}
	}
	return false
}

// Tick advances every mapped device's cycle counter.
func (b *Bus) Tick(cycles int) {
	for _, d := range b.devices {
		d.Tick(cycles)
	}
}
