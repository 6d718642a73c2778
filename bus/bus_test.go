package bus

import "testing"

func TestRAM_ReadWriteWord(t *testing.T) {
	ram := NewRAM(0, 16)
	if !ram.WriteWord(0, 0xDEAD) {
		t.Fatal("WriteWord() = false")
	}
	v, ok := ram.ReadWord(0)
	if !ok || v != 0xDEAD {
		t.Errorf("ReadWord() = %#x, %v, want 0xDEAD, true", v, ok)
	}
	b, ok := ram.ReadByte(0)
	if !ok || b != 0xDE {
		t.Errorf("ReadByte() = %#x, %v, want 0xDE (big-endian), true", b, ok)
	}
}

func TestRAM_OutOfRange(t *testing.T) {
	ram := NewRAM(0x1000, 4)
	if _, ok := ram.ReadByte(0x2000); ok {
		t.Error("ReadByte() at out-of-range address reported ok")
	}
	if ram.WriteByte(0x2000, 1) {
		t.Error("WriteByte() at out-of-range address succeeded")
	}
}

func TestAggregateBus_FirstPresentWins(t *testing.T) {
	low := NewRAM(0, 0x100)
	high := NewRAM(0x100, 0x100)
	agg := New()
	agg.Map(low)
	agg.Map(high)

	if !agg.WriteByte(0x150, 0x42) {
		t.Fatal("WriteByte() into high device failed")
	}
	v, ok := agg.ReadByte(0x150)
	if !ok || v != 0x42 {
		t.Errorf("ReadByte(0x150) = %#x, %v, want 0x42, true", v, ok)
	}

	if _, ok := agg.ReadByte(0x200); ok {
		t.Error("ReadByte() beyond every device reported ok")
	}
}
