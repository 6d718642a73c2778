package loader

import (
	"strings"
	"testing"

	"github.com/master-g/m68k/bus"
)

// srecLine builds one S1 data record (address width 2) with a correct
// checksum trailer, so these fixtures never go stale if the payload
// changes.
func srecLine(addr uint16, data []byte) string {
	count := uint8(2 + len(data) + 1)
	sum := uint32(count) + uint32(addr>>8) + uint32(addr&0xFF)
	for _, b := range data {
		sum += uint32(b)
	}
	checksum := uint8(^sum)

	const hexDigits = "0123456789ABCDEF"
	hex2 := func(b uint8) string { return string([]byte{hexDigits[b>>4], hexDigits[b&0xF]}) }

	s := "S1" + hex2(count) + hex2(uint8(addr>>8)) + hex2(uint8(addr))
	for _, b := range data {
		s += hex2(b)
	}
	s += hex2(checksum)
	return s
}

func TestFlatBinary_WriteTo(t *testing.T) {
	img, err := FlatBinary(strings.NewReader("\x4E\x71\x60\xFE"), 0x1000)
	if err != nil {
		t.Fatalf("FlatBinary() error = %v", err)
	}
	ram := bus.NewRAM(0x1000, 0x100)
	if err := img.WriteTo(ram); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	v, ok := ram.ReadWord(0x1000)
	if !ok || v != 0x4E71 {
		t.Errorf("ReadWord(0x1000) = %#x, %v, want 0x4E71, true", v, ok)
	}
}

func TestSRecord_ParsesDataAndEntry(t *testing.T) {
	data := []byte{0x4E, 0x71, 0x60, 0xFE}
	src := srecLine(0x0000, data) + "\n" + "S9030000FC\n"

	img, err := SRecord(strings.NewReader(src))
	if err != nil {
		t.Fatalf("SRecord() error = %v", err)
	}
	if img.Origin != 0 {
		t.Errorf("Origin = %#x, want 0", img.Origin)
	}
	if len(img.Data) != 4 || img.Data[0] != 0x4E || img.Data[1] != 0x71 {
		t.Errorf("Data = % X, want 4E 71 60 FE", img.Data)
	}
	if img.EntryPoint() != 0 {
		t.Errorf("EntryPoint() = %#x, want 0", img.EntryPoint())
	}
}

func TestSRecord_RejectsBadChecksum(t *testing.T) {
	_, err := SRecord(strings.NewReader("S1070000" + "4E7160FE" + "00\n"))
	if err == nil {
		t.Fatal("SRecord() error = nil, want checksum mismatch reported")
	}
}

func TestSRecord_FlatBinaryRoundTrip(t *testing.T) {
	data := []byte{0x4E, 0x71, 0x60, 0xFE}
	flat, err := FlatBinary(strings.NewReader(string(data)), 0)
	if err != nil {
		t.Fatalf("FlatBinary() error = %v", err)
	}
	srec, err := SRecord(strings.NewReader(srecLine(0x0000, data) + "\n"))
	if err != nil {
		t.Fatalf("SRecord() error = %v", err)
	}

	ramA := bus.NewRAM(0, 16)
	ramB := bus.NewRAM(0, 16)
	if err := flat.WriteTo(ramA); err != nil {
		t.Fatalf("flat WriteTo() error = %v", err)
	}
	if err := srec.WriteTo(ramB); err != nil {
		t.Fatalf("srec WriteTo() error = %v", err)
	}
	for addr := uint32(0); addr < 4; addr++ {
		a, _ := ramA.ReadByte(addr)
		b, _ := ramB.ReadByte(addr)
		if a != b {
			t.Errorf("byte %d: flat=%#x srec=%#x, want equal", addr, a, b)
		}
	}
}
