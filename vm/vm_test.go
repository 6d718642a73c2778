package vm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/master-g/m68k/loader"
)

// program is a tiny image: reset vectors (SSP=$00002000, PC=$00001000)
// followed by MOVEQ #$01,D0 ; MOVEQ #$02,D1 ; BRA *-2 (self branch, an
// infinite loop) at the PC the vectors name.
func selfLoopingProgram() []byte {
	img := make([]byte, 0x1008)
	copy(img[0:4], []byte{0x00, 0x00, 0x20, 0x00}) // SSP
	copy(img[4:8], []byte{0x00, 0x00, 0x10, 0x00}) // PC
	copy(img[0x1000:], []byte{
		0x70, 0x01, // MOVEQ #1,D0
		0x72, 0x02, // MOVEQ #2,D1
		0x60, 0xFE, // BRA *-2 (branch back to itself)
	})
	return img
}

func TestMachine_LoadResetStep(t *testing.T) {
	m := New(0x2000)
	img, err := loader.FlatBinary(strings.NewReader(string(selfLoopingProgram())), 0)
	if err != nil {
		t.Fatalf("FlatBinary() error = %v", err)
	}
	if err := m.Load(img); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if m.CPU.Registers.PC != 0x1000 {
		t.Fatalf("PC after reset = $%X, want $1000", m.CPU.Registers.PC)
	}

	if err := m.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if m.CPU.Registers.D[0] != 1 {
		t.Errorf("D0 = %d, want 1", m.CPU.Registers.D[0])
	}
	if err := m.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if m.CPU.Registers.D[1] != 2 {
		t.Errorf("D1 = %d, want 2", m.CPU.Registers.D[1])
	}
}

func TestMachine_RunRespectsCancellation(t *testing.T) {
	m := New(0x2000)
	img, err := loader.FlatBinary(strings.NewReader(string(selfLoopingProgram())), 0)
	if err != nil {
		t.Fatalf("FlatBinary() error = %v", err)
	}
	if err := m.Load(img); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation, want it to stop spinning")
	}
}

func TestMachine_RequestAutoInterruptPassesThrough(t *testing.T) {
	m := New(0x2000)
	// Should not panic even with nothing mapped at the vector table; the
	// request is only serviced on the next Step.
	m.RequestAutoInterrupt(2)
	m.RequestInterrupt(3, 0x9000)
}
