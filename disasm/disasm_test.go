package disasm

import (
	"strings"
	"testing"

	"github.com/master-g/m68k/bus"
	"github.com/master-g/m68k/register"
)

func newTestBus(t *testing.T, origin uint32, words ...uint16) *bus.Bus {
	t.Helper()
	ram := bus.NewRAM(origin, uint32(len(words))*2)
	for i, w := range words {
		ram.WriteWord(origin+uint32(i)*2, w)
	}
	b := bus.New()
	b.Map(ram)
	return b
}

func TestDecode_MOVEQ(t *testing.T) {
	b := newTestBus(t, 0x1000, 0x723A) // MOVEQ #$3A, D1
	line, next, err := Decode(b, 0x1000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if next != 0x1002 {
		t.Errorf("next = $%X, want $1002", next)
	}
	if line.Mnemonic != "MOVEQ" {
		t.Errorf("Mnemonic = %q, want MOVEQ", line.Mnemonic)
	}
	if !strings.Contains(line.Operands, "D1") {
		t.Errorf("Operands = %q, want it to mention D1", line.Operands)
	}
}

func TestDecode_ConsumesExtensionWord(t *testing.T) {
	// MOVE.W $1234(A2), D0
	b := newTestBus(t, 0x2000, 0x302A, 0x1234)
	line, next, err := Decode(b, 0x2000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if next != 0x2004 {
		t.Errorf("next = $%X, want $2004 (opcode word + extension word)", next)
	}
	if !strings.Contains(line.Operands, "A2") || !strings.Contains(line.Operands, "1234") {
		t.Errorf("Operands = %q, want it to mention A2 and the $1234 displacement", line.Operands)
	}
	if len(line.Bytes) != 4 {
		t.Errorf("Bytes len = %d, want 4", len(line.Bytes))
	}
}

func TestDecode_BranchMnemonicCarriesCondition(t *testing.T) {
	b := newTestBus(t, 0x3000, 0x6704) // BEQ +4
	line, _, err := Decode(b, 0x3000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if line.Mnemonic != "BEQ" {
		t.Errorf("Mnemonic = %q, want BEQ", line.Mnemonic)
	}
}

func TestDecode_UnknownOpcodeReportsError(t *testing.T) {
	b := newTestBus(t, 0x4000, 0xFFFF)
	_, _, err := Decode(b, 0x4000)
	if err == nil {
		t.Fatal("Decode() error = nil, want a decode failure")
	}
}

func TestRange_StopsAtUndecodableWord(t *testing.T) {
	b := newTestBus(t, 0x5000, 0x4E71 /* NOP */, 0x4E75 /* RTS */, 0xFFFF)
	lines := Range(b, 0x5000, 0x5006)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2 (stop before the undecodable word)", len(lines))
	}
	if lines[0].Mnemonic != "NOP" || lines[1].Mnemonic != "RTS" {
		t.Errorf("lines = %+v, want [NOP RTS]", lines)
	}
}

func TestDecode_MOVEMConsumesMaskAndRendersRegisterList(t *testing.T) {
	// MOVEM.L D0/A0,-(A0)
	b := newTestBus(t, 0x6000, 0x48E0, 0x8080)
	line, next, err := Decode(b, 0x6000)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if next != 0x6004 {
		t.Errorf("next = $%X, want $6004 (opcode word + mask word)", next)
	}
	if line.Mnemonic != "MOVEM.L" {
		t.Errorf("Mnemonic = %q, want MOVEM.L", line.Mnemonic)
	}
	if !strings.Contains(line.Operands, "D0/A0") {
		t.Errorf("Operands = %q, want it to list D0/A0", line.Operands)
	}
}

func TestFormatRegisters(t *testing.T) {
	r := register.New()
	r.D[0] = 0x1
	r.A[7] = 0x2000
	r.PC = 0x1000
	out := FormatRegisters(r)
	for _, want := range []string{"D0=$00000001", "A7=$00002000", "PC=$00001000"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatRegisters() = %q, want it to contain %q", out, want)
		}
	}
}
