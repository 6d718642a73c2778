package size

import "testing"

func TestDataSize_Mask(t *testing.T) {
	if Byte.Mask() != 0xFF {
		t.Errorf("Byte.Mask() = %#x, want 0xFF", Byte.Mask())
	}
	if Word.Mask() != 0xFFFF {
		t.Errorf("Word.Mask() = %#x, want 0xFFFF", Word.Mask())
	}
	if LongWord.Mask() != 0xFFFFFFFF {
		t.Errorf("LongWord.Mask() = %#x, want 0xFFFFFFFF", LongWord.Mask())
	}
}

func TestValue_SignExtend(t *testing.T) {
	v := NewValue(Byte, 0xFF)
	ext := v.SignExtend(LongWord)
	if ext.Uint32() != 0xFFFFFFFF {
		t.Errorf("SignExtend($FF) = %#x, want 0xFFFFFFFF", ext.Uint32())
	}

	pos := NewValue(Byte, 0x7F)
	ext2 := pos.SignExtend(Word)
	if ext2.Uint32() != 0x007F {
		t.Errorf("SignExtend($7F) = %#x, want 0x007F", ext2.Uint32())
	}
}

func TestValue_AddCC(t *testing.T) {
	a := NewValue(Byte, 0xFF)
	b := NewValue(Byte, 0x01)
	result, cc := a.AddCC(Byte, b)
	if result.Uint32() != 0 {
		t.Errorf("result = %#x, want 0", result.Uint32())
	}
	if !cc.Z || !cc.C || !cc.X || cc.N || cc.V {
		t.Errorf("flags = %+v, want Z=C=X=true N=V=false", cc)
	}
}

func TestValue_AddCC_Overflow(t *testing.T) {
	a := NewValue(Byte, 0x7F)
	b := NewValue(Byte, 0x01)
	result, cc := a.AddCC(Byte, b)
	if result.Uint32() != 0x80 {
		t.Errorf("result = %#x, want 0x80", result.Uint32())
	}
	if !cc.V || !cc.N || cc.C {
		t.Errorf("flags = %+v, want V=N=true C=false", cc)
	}
}

func TestValue_SubCC_Borrow(t *testing.T) {
	a := NewValue(Byte, 0x00)
	b := NewValue(Byte, 0x01)
	result, cc := a.SubCC(Byte, b)
	if result.Uint32() != 0xFF {
		t.Errorf("result = %#x, want 0xFF", result.Uint32())
	}
	if !cc.C || !cc.X || !cc.N || cc.Z {
		t.Errorf("flags = %+v, want C=X=N=true Z=false", cc)
	}
}

func TestValue_EorCC(t *testing.T) {
	a := NewValue(Word, 0xF0F0)
	b := NewValue(Word, 0xFFFF)
	result, cc := a.EorCC(Word, b)
	if result.Uint32() != 0x0F0F {
		t.Errorf("result = %#x, want 0x0F0F", result.Uint32())
	}
	if cc.V || cc.C {
		t.Errorf("flags = %+v, want V=C=false", cc)
	}
}

func TestValue_ShiftLeft(t *testing.T) {
	v := NewValue(Byte, 0x40)
	result, cc, shifted := v.ShiftLeft(Byte, 1, false)
	if !shifted {
		t.Fatal("ShiftLeft() did not shift")
	}
	if result.Uint32() != 0x80 {
		t.Errorf("result = %#x, want 0x80", result.Uint32())
	}
	if !cc.N || cc.C {
		t.Errorf("flags = %+v, want N=true C=false", cc)
	}
}

func TestValue_ShiftRight_Arithmetic(t *testing.T) {
	v := NewValue(Byte, 0x81)
	result, cc, _ := v.ShiftRight(Byte, 1, true, false)
	if result.Uint32() != 0xC0 {
		t.Errorf("result = %#x, want 0xC0", result.Uint32())
	}
	if !cc.C || !cc.N {
		t.Errorf("flags = %+v, want C=N=true", cc)
	}
}
