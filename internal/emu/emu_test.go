package emu

import (
	"encoding/binary"
	"testing"

	"github.com/nitro-dmg/gbcore/internal/cpu"
)

// buildROM makes a minimal MBC3 32 KiB cartridge with a valid header
// and the given code placed at the entry point (0x0100).
func buildROM(code []byte) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x0100:], code)
	rom[0x0147] = 0x0F // MBC3
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM

	var hsum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		hsum = hsum - rom[addr] - 1
	}
	rom[0x014D] = hsum

	var gsum uint16
	for i, b := range rom {
		if i == 0x014E || i == 0x014F {
			continue
		}
		gsum += uint16(b)
	}
	binary.BigEndian.PutUint16(rom[0x014E:0x0150], gsum)
	return rom
}

func TestStepInstructionsRunsBoundedCount(t *testing.T) {
	// NOP forever.
	m := New(Config{})
	if err := m.LoadCartridge(buildROM([]byte{0x00}), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	ran, halted := m.StepInstructions(1000)
	if halted {
		t.Fatalf("expected no halt running NOPs")
	}
	if ran != 1000 {
		t.Fatalf("expected 1000 instructions to run, got %d", ran)
	}
}

func TestStepInstructionsDetectsSelfLoop(t *testing.T) {
	// JR -2 (opcode 0x18, offset 0xFE): jumps to itself forever.
	m := New(Config{})
	if err := m.LoadCartridge(buildROM([]byte{0x18, 0xFE}), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	ran, halted := m.StepInstructions(1000)
	if !halted {
		t.Fatalf("expected self-loop to halt execution")
	}
	if ran != 0 {
		t.Fatalf("expected halt on the first step, ran=%d", ran)
	}
	fault := m.LastFault()
	if fault == nil {
		t.Fatalf("expected a non-nil fault after halting")
	}
	if fault.Kind != cpu.KindSelfLoop {
		t.Fatalf("expected KindSelfLoop, got %v", fault.Kind)
	}
	if fault.PC != 0x0100 {
		t.Fatalf("expected fault PC=0x0100, got %#04x", fault.PC)
	}
}
