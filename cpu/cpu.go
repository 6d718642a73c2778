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

// Package cpu implements the M68000 instruction decoder, effective-address
// resolver and execution engine. The three are kept in one package
// deliberately: the EA resolver needs to fetch extension words through the
// same PC-advancing path the engine uses to fetch opcodes, and modeling
// that as a cross-package interface would buy nothing but ceremony.
package cpu

import (
	"github.com/master-g/m68k/bus"
	"github.com/master-g/m68k/internal/logx"
	"github.com/master-g/m68k/register"
	"github.com/master-g/m68k/size"
)

// interruptRequest is one pending entry in the CPU's interrupt FIFO.
type interruptRequest struct {
	level      uint8
	vector     uint32
	hasVector  bool
}

// CPU is the M68000 execution core: register file, attached bus, and
// interrupt queue.
type CPU struct {
	Registers *register.Registers
	bus       *bus.Bus

	stopped   bool
	pending   []interruptRequest
}

// New returns a CPU with a zeroed register file and no attached bus. Call
// Reset to attach a bus and run the power-up sequence.
func New() *CPU {
	return &CPU{Registers: register.New()}
}

// Reset runs the M68000 RESET protocol against b: it reads the initial
// supervisor stack pointer from address 0 and the initial program counter
// from address 4, then clears the interrupt queue and the stopped flag.
func (c *CPU) Reset(b *bus.Bus) error {
	c.bus = b
	c.Registers.SetSR(register.FlagS | (7 << 8))
	ssp, ok := b.ReadLong(0)
	if !ok {
		return newError(BusAbsent, 0, "reset vector: no device mapped at address 0")
	}
	pc, ok := b.ReadLong(4)
	if !ok {
		return newError(BusAbsent, 4, "reset vector: no device mapped at address 4")
	}
	c.Registers.SetSP(ssp)
	c.Registers.PC = pc
	c.pending = nil
	c.stopped = false
	logx.Logf("cpu: reset, SSP=$%08X PC=$%08X", ssp, pc)
	return nil
}

// SetPC overrides the program counter directly, bypassing RESET. Useful
// for loading a program at a fixed entry point in tests and tooling.
func (c *CPU) SetPC(pc uint32) {
	c.Registers.PC = pc
}

// SetSP overrides the active stack pointer directly.
func (c *CPU) SetSP(sp uint32) {
	c.Registers.SetSP(sp)
}

// Halted reports whether STOP has suspended instruction fetch. Pending
// interrupts can still wake the CPU on the next Step call.
func (c *CPU) Halted() bool {
	return c.stopped
}

// RequestAutoInterrupt enqueues an autovectored interrupt: its vector
// address is computed from level when serviced, per the M68000 vector
// table layout (0x60 + 4*level).
func (c *CPU) RequestAutoInterrupt(level uint8) {
	c.pending = append(c.pending, interruptRequest{level: level})
}

// RequestInterrupt enqueues an interrupt with an explicit vector address,
// bypassing the autovector table (used for vectored peripheral interrupts).
func (c *CPU) RequestInterrupt(level uint8, vectorAddr uint32) {
	c.pending = append(c.pending, interruptRequest{level: level, vector: vectorAddr, hasVector: true})
}

func (c *CPU) fetchWord() (uint16, error) {
	v, ok := c.bus.ReadWord(c.Registers.PC)
	if !ok {
		return 0, newError(BusAbsent, c.Registers.PC, "fetch word: no device present")
	}
	c.Registers.PC += 2
	c.bus.Tick(4)
	return v, nil
}

func (c *CPU) fetchLong() (uint32, error) {
	hi, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	lo, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *CPU) pushWord(v uint16) error {
	sp := c.Registers.SP() - 2
	if !c.bus.WriteWord(sp, v) {
		return newError(BusAbsent, sp, "push word: no device present")
	}
	c.Registers.SetSP(sp)
	return nil
}

func (c *CPU) pushLong(v uint32) error {
	sp := c.Registers.SP() - 4
	if !c.bus.WriteLong(sp, v) {
		return newError(BusAbsent, sp, "push long: no device present")
	}
	c.Registers.SetSP(sp)
	return nil
}

func (c *CPU) popWord() (uint16, error) {
	sp := c.Registers.SP()
	v, ok := c.bus.ReadWord(sp)
	if !ok {
		return 0, newError(BusAbsent, sp, "pop word: no device present")
	}
	c.Registers.SetSP(sp + 2)
	return v, nil
}

func (c *CPU) popLong() (uint32, error) {
	sp := c.Registers.SP()
	v, ok := c.bus.ReadLong(sp)
	if !ok {
		return 0, newError(BusAbsent, sp, "pop long: no device present")
	}
	c.Registers.SetSP(sp + 4)
	return v, nil
}

// ExecuteNextInstruction services at most one pending interrupt, then (if
// still running) fetches, decodes and executes exactly one instruction.
func (c *CPU) ExecuteNextInstruction() error {
	if err := c.serviceInterrupt(); err != nil {
		return err
	}
	if c.stopped {
		return nil
	}

	opcodePC := c.Registers.PC
	word, err := c.fetchWord()
	if err != nil {
		return err
	}
	inst, err := Decode(word)
	if err != nil {
		if merr, ok := err.(*Error); ok {
			merr.PC = opcodePC
			return merr
		}
		return err
	}
	return c.execute(inst, opcodePC)
}

func (c *CPU) serviceInterrupt() error {
	if len(c.pending) == 0 {
		return nil
	}
	req := c.pending[0]
	c.pending = c.pending[1:]

	vector := req.vector
	if !req.hasVector {
		vector = 0x60 + 4*uint32(req.level)
	}
	target, ok := c.bus.ReadLong(vector)
	if !ok {
		return newError(BusAbsent, vector, "interrupt vector: no device present")
	}

	sr := c.Registers.SR()
	c.Registers.SetSupervisor(true)
	if err := c.pushLong(c.Registers.PC); err != nil {
		return err
	}
	if err := c.pushWord(sr); err != nil {
		return err
	}

	c.Registers.SetInterruptMask(req.level)
	c.Registers.PC = target
	c.stopped = false
	logx.Logf("cpu: servicing interrupt level=%d vector=$%08X target=$%08X", req.level, vector, target)
	return nil
}

// fetchImmediate reads an operand-sized immediate directly from the
// instruction stream: Byte and Word immediates consume one word, Long
// immediates consume two. This is the sole place an "immediate cache"
// might otherwise have lived; instead every caller fetches fresh, per
// word, with no retained state between calls.
func (c *CPU) fetchImmediate(sz size.DataSize) (size.Value, error) {
	switch sz {
	case size.Byte, size.Word:
		w, err := c.fetchWord()
		if err != nil {
			return size.Value{}, err
		}
		return size.NewValue(sz, uint32(w)), nil
	default:
		l, err := c.fetchLong()
		if err != nil {
			return size.Value{}, err
		}
		return size.NewValue(sz, l), nil
	}
}
