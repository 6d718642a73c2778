package register

import (
	"testing"

	"github.com/master-g/m68k/size"
)

func TestRegisters_ActiveStackDefaultsToUSP(t *testing.T) {
	r := New()
	if r.ActiveStack() != USP {
		t.Errorf("ActiveStack() = %v, want USP", r.ActiveStack())
	}
}

func TestRegisters_SetSRSwitchesStack(t *testing.T) {
	r := New()
	r.SetSP(0x1000)
	if r.UserSP() != 0x1000 {
		t.Fatalf("UserSP() = %#x, want 0x1000", r.UserSP())
	}

	r.SetSR(FlagS)
	r.SetSP(0x2000)
	if r.MasterSP() != 0 {
		t.Errorf("MasterSP() = %#x, want 0 (ISP active, not MSP)", r.MasterSP())
	}
	if r.InterruptSP() != 0x2000 {
		t.Errorf("InterruptSP() = %#x, want 0x2000", r.InterruptSP())
	}

	r.SetSR(0)
	if r.SP() != 0x1000 {
		t.Errorf("SP() after leaving supervisor mode = %#x, want 0x1000", r.SP())
	}
}

func TestRegisters_SetSRMasterStack(t *testing.T) {
	r := New()
	r.SetSR(FlagS | FlagM)
	r.SetSP(0x3000)
	if r.MasterSP() != 0x3000 {
		t.Errorf("MasterSP() = %#x, want 0x3000", r.MasterSP())
	}
}

func TestRegisters_CCRRoundTrip(t *testing.T) {
	r := New()
	cc := size.ConditionCode{X: true, Z: true}
	r.SetCCR(cc)
	got := r.CCR()
	if !got.X || !got.Z || got.N || got.V || got.C {
		t.Errorf("CCR() = %+v, want X=Z=true rest false", got)
	}
}

func TestRegisters_DisplacePC(t *testing.T) {
	r := New()
	r.PC = 0x1000
	ok := r.DisplacePC(size.NewValue(size.Byte, 0xFE)) // -2
	if !ok {
		t.Fatal("DisplacePC() returned !ok for a byte displacement")
	}
	if r.PC != 0x0FFE {
		t.Errorf("PC = %#x, want 0xFFE", r.PC)
	}
}

func TestRegisters_DisplacePCRejectsLongWord(t *testing.T) {
	r := New()
	if r.DisplacePC(size.NewValue(size.LongWord, 4)) {
		t.Error("DisplacePC() accepted a LongWord displacement")
	}
}

func TestRegisters_InterruptMaskClamps(t *testing.T) {
	r := New()
	r.SetInterruptMask(9)
	if r.InterruptMask() != 7 {
		t.Errorf("InterruptMask() = %v, want 7", r.InterruptMask())
	}
}
