package cpu_test

import (
	"testing"

	"github.com/master-g/m68k/bus"
	"github.com/master-g/m68k/cpu"
)

// newTestCPU builds a CPU attached to ramSize bytes of RAM at address 0,
// with SSP=ramSize-4 and PC=0x1000 baked into the reset vector, then runs
// RESET so the core is ready to execute whatever the caller pokes into
// memory at 0x1000.
func newTestCPU(t *testing.T, ramSize uint32) (*cpu.CPU, *bus.RAM) {
	t.Helper()
	ram := bus.NewRAM(0, ramSize)
	ram.Reset()
	ram.WriteLong(0, ramSize-4)
	ram.WriteLong(4, 0x1000)
	b := bus.New()
	b.Map(ram)
	c := cpu.New()
	if err := c.Reset(b); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	return c, ram
}

func TestExec_ABCD(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0xC101) // ABCD D1,D0
	c.Registers.D[0] = 0x15
	c.Registers.D[1] = 0x27
	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	if got := c.Registers.D[0] & 0xFF; got != 0x42 {
		t.Errorf("D0 = $%02X, want $42", got)
	}
	if c.Registers.CCR().C {
		t.Errorf("C flag set, want clear")
	}
}

func TestExec_DIVU(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x84C3) // DIVU D3,D2
	c.Registers.D[2] = 100
	c.Registers.D[3] = 7
	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	quotient := c.Registers.D[2] & 0xFFFF
	remainder := c.Registers.D[2] >> 16
	if quotient != 14 || remainder != 2 {
		t.Errorf("D2 = quotient %d remainder %d, want 14 and 2", quotient, remainder)
	}
}

func TestExec_DIVUByZeroRaisesException(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x84C3) // DIVU D3,D2
	ram.WriteLong(0x14, 0x2000)   // vector 5 (zero divide) target
	c.Registers.D[2] = 100
	c.Registers.D[3] = 0
	sp := c.Registers.SP()

	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	if c.Registers.PC != 0x2000 {
		t.Errorf("PC = $%X, want $2000 (zero-divide vector target)", c.Registers.PC)
	}
	if !c.Registers.Supervisor() {
		t.Errorf("Supervisor() = false, want true after exception entry")
	}
	if c.Registers.SP() != sp-6 {
		t.Errorf("SP = $%X, want $%X (PC long + SR word pushed)", c.Registers.SP(), sp-6)
	}
}

func TestExec_Scc(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x57C1) // SEQ D1
	c.Registers.D[1] = 0x12345600
	cc := c.Registers.CCR()
	cc.Z = true
	c.Registers.SetCCR(cc)

	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	if got := c.Registers.D[1]; got != 0x123456FF {
		t.Errorf("D1 = $%08X, want $123456FF", got)
	}
}

func TestExec_DBccLoopsUntilCounterExpires(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x56C8) // DBNE D0,disp
	ram.WriteWord(0x1002, 0xFFFE) // branch back to $1000
	c.Registers.D[0] = 2
	cc := c.Registers.CCR()
	cc.Z = true // NE is false while Z holds, so the loop keeps decrementing
	c.Registers.SetCCR(cc)

	for i := 0; i < 3; i++ {
		if err := c.ExecuteNextInstruction(); err != nil {
			t.Fatalf("ExecuteNextInstruction() #%d error = %v", i, err)
		}
	}
	if c.Registers.D[0]&0xFFFF != 0xFFFF {
		t.Errorf("D0 low word = $%04X, want $FFFF after wrapping past zero", c.Registers.D[0]&0xFFFF)
	}
	if c.Registers.PC != 0x1004 {
		t.Errorf("PC = $%X, want $1004 (fell through once the counter wrapped)", c.Registers.PC)
	}
}

func TestExec_TRAPRaisesSoftwareException(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x4E41) // TRAP #1
	ram.WriteLong(32*4+4, 0x2500) // vector 33 target

	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	if c.Registers.PC != 0x2500 {
		t.Errorf("PC = $%X, want $2500", c.Registers.PC)
	}
}

func TestExec_ASLShiftsAndSetsFlags(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0xE300) // ASL.B #1,D0
	c.Registers.D[0] = 0x41

	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("ExecuteNextInstruction() error = %v", err)
	}
	if got := c.Registers.D[0] & 0xFF; got != 0x82 {
		t.Errorf("D0 = $%02X, want $82", got)
	}
	cc := c.Registers.CCR()
	if !cc.N || cc.Z || cc.C {
		t.Errorf("CCR = %+v, want N set, Z and C clear", cc)
	}
}

func TestExec_MOVEMStoreAndLoadRoundTrip(t *testing.T) {
	c, ram := newTestCPU(t, 0x4000)
	ram.WriteWord(0x1000, 0x48E0) // MOVEM.L D0/A0,-(A0)
	ram.WriteWord(0x1002, 0x8080) // mask: A0 then D0, descending order
	ram.WriteWord(0x1004, 0x4CD8) // MOVEM.L (A0)+,D4/A4
	ram.WriteWord(0x1006, 0x1010) // mask: D4 then A4, ascending order

	c.Registers.D[0] = 0x11223344
	c.Registers.A[0] = 0x3000

	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("store ExecuteNextInstruction() error = %v", err)
	}
	if c.Registers.A[0] != 0x2FF8 {
		t.Fatalf("A0 after store = $%X, want $2FF8", c.Registers.A[0])
	}
	if err := c.ExecuteNextInstruction(); err != nil {
		t.Fatalf("load ExecuteNextInstruction() error = %v", err)
	}
	if c.Registers.D[4] != 0x11223344 {
		t.Errorf("D4 = $%08X, want $11223344", c.Registers.D[4])
	}
	if c.Registers.A[4] != 0x3000 {
		t.Errorf("A4 = $%X, want $3000", c.Registers.A[4])
	}
	if c.Registers.A[0] != 0x3000 {
		t.Errorf("A0 after reload = $%X, want $3000 (restored by the round trip)", c.Registers.A[0])
	}
}
