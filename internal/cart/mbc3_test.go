package cart

import "testing"

func TestMBC3_ROMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, 0)

	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default switchable bank got %02X want 01", got)
	}

	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 0x05 {
		t.Fatalf("bank5 read got %02X want 05", got)
	}

	// Writing 0 remaps to 1, unlike MBC1 this uses the full 7 bits.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC3_RAMBanking(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 4*0x2000)

	m.Write(0x0000, 0x0A) // RAM enable
	m.Write(0x4000, 0x02) // RAM bank 2
	m.Write(0xA000, 0x42)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}

	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got == 0x42 {
		t.Fatalf("RAM bank0 should not alias bank2's byte")
	}
}

func TestMBC3_RAMDisabledReadsFF(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
}

// The RTC is present but inert: selecting one of its register indices
// (0x08-0x0C) routes A000-BFFF through a single shared latch register
// instead of the RAM bank, and the latch strobe (6000-7FFF) only ever
// records the last value written to it, never a real wall-clock value.
func TestMBC3_RTCShellIsInert(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)
	m.Write(0x0000, 0x0A) // RAM enable

	m.Write(0x4000, 0x08) // select RTC seconds register
	m.Write(0xA000, 0x2A) // store through the latch
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("latch readback got %02X want 2A", got)
	}

	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // latch strobe
	if got := m.Read(0xA000); got != 0x01 {
		t.Fatalf("latch strobe should record the strobe value itself, got %02X", got)
	}

	// Deselecting the RTC register restores normal RAM banking.
	m.Write(0x4000, 0x00)
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("RAM bank0 RW after RTC deselect got %02X want 55", got)
	}
}
