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

// Package vm wires the register file, bus, and execution engine together
// into a runnable machine: construct a CPU, map a RAM device on a bus,
// and hand the pair to a caller that drives Step or Run.
package vm

import (
	"context"
	"fmt"

	"github.com/master-g/m68k/bus"
	"github.com/master-g/m68k/cpu"
	"github.com/master-g/m68k/internal/logx"
	"github.com/master-g/m68k/loader"
)

// Machine owns one CPU core and the bus it is attached to, plus the RAM
// device mapped at address zero that most loaded images target.
type Machine struct {
	CPU *cpu.CPU
	Bus *bus.Bus
	RAM *bus.RAM
}

// New allocates a Machine with ramSize bytes of RAM mapped at address 0.
// The CPU is constructed but not reset; call Load then Reset (or Reset
// directly if the RAM already holds a valid reset vector at address 0).
func New(ramSize uint32) *Machine {
	ram := bus.NewRAM(0, ramSize)
	ram.Reset()
	b := bus.New()
	b.Map(ram)
	return &Machine{
		CPU: cpu.New(),
		Bus: b,
		RAM: ram,
	}
}

// Load deposits img's bytes into the machine's bus. It does not reset the
// CPU; callers that load a fresh program generally want to call Reset
// afterward so the core picks up the image's reset vectors.
func (m *Machine) Load(img loader.Image) error {
	if err := img.WriteTo(m.Bus); err != nil {
		return fmt.Errorf("vm: load image: %w", err)
	}
	logx.Logf("vm: loaded %d bytes at $%08X", len(img.Data), img.Origin)
	return nil
}

// Reset runs the M68000 power-up sequence against the machine's bus.
func (m *Machine) Reset() error {
	return m.CPU.Reset(m.Bus)
}

// Step services at most one pending interrupt (the interrupt mask is not
// consulted) and then executes one instruction unless the CPU is stopped.
func (m *Machine) Step() error {
	return m.CPU.ExecuteNextInstruction()
}

// Run steps the machine until ctx is cancelled, the CPU halts on STOP
// (pending interrupts do not keep it running), or a step reports an error. A
// cancelled context is reported as nil: stopping on request is not a
// machine fault.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := m.Step(); err != nil {
			return err
		}
		if m.CPU.Halted() {
			return nil
		}
	}
}

// RequestAutoInterrupt passes an autovectored interrupt request through to
// the CPU's interrupt queue.
func (m *Machine) RequestAutoInterrupt(level uint8) {
	m.CPU.RequestAutoInterrupt(level)
}

// RequestInterrupt passes an explicitly vectored interrupt request through
// to the CPU's interrupt queue.
func (m *Machine) RequestInterrupt(level uint8, vector uint32) {
	m.CPU.RequestInterrupt(level, vector)
}
