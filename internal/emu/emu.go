// Package emu wires the cpu, bus, cart, and ppu packages into a single
// Machine: load a ROM, step whole frames, and pull the framebuffer and
// audio the way cmd/gbemu's Ebiten front end (internal/ui) expects.
package emu

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nitro-dmg/gbcore/internal/bus"
	"github.com/nitro-dmg/gbcore/internal/cart"
	"github.com/nitro-dmg/gbcore/internal/cpu"
	"github.com/nitro-dmg/gbcore/internal/ioregs"
	"github.com/nitro-dmg/gbcore/internal/ppu"
)

const cpuHz = 4194304

// Buttons is the eight-button DMG input state for one frame.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= ioregs.Right
	}
	if b.Left {
		m |= ioregs.Left
	}
	if b.Up {
		m |= ioregs.Up
	}
	if b.Down {
		m |= ioregs.Down
	}
	if b.A {
		m |= ioregs.A
	}
	if b.B {
		m |= ioregs.B
	}
	if b.Select {
		m |= ioregs.SelectBtn
	}
	if b.Start {
		m |= ioregs.Start
	}
	return m
}

// Machine couples a CPU, Bus, and cartridge into a steppable emulator
// with the framebuffer/audio pull surface the UI layer drives.
type Machine struct {
	cfg Config

	c   *cpu.CPU
	bus *bus.Bus

	romPath string
	header  *cart.Header
	bootROM []byte

	fb ppu.Frame // last rendered 160x144 2-bit palette-index frame

	audioRing       *stereoRing
	audioAccum      float64
	cyclesPerSample float64

	compatPalette  int
	compatAutoDone bool
	useFetcherBG   bool
}

// New creates a Machine with no cartridge loaded. Call LoadCartridge or
// LoadROMFromFile before stepping.
func New(cfg Config) *Machine {
	m := &Machine{
		cfg:             cfg,
		audioRing:       newStereoRing(8192),
		cyclesPerSample: float64(cpuHz) / 48000.0,
		useFetcherBG:    cfg.UseFetcherBG,
	}
	return m
}

// LoadCartridge decodes rom into a fresh Bus/CPU pair (discarding any
// previously loaded cartridge) and optionally wires an external DMG
// boot ROM to run from 0x0000 before the cartridge's own entry point.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	b, err := bus.New(rom)
	if err != nil {
		return &cpu.CoreError{Kind: cpu.KindROMDecode, Msg: err.Error()}
	}
	h, _ := cart.ParseHeader(rom)

	m.bus = b
	m.header = h
	m.c = cpu.New(b)
	m.audioAccum = 0
	m.compatAutoDone = false

	if len(boot) >= 0x100 {
		b.SetBootROM(boot)
		m.c.Regs.PC = 0x0000
		m.c.Regs.SP = 0xFFFE
		m.c.Regs.IME = false
	} else {
		m.c.Reset()
		m.applyPostBootIODefaults()
	}
	m.maybeAutoCompatPalette()
	return nil
}

// applyPostBootIODefaults writes the documented DMG post-boot I/O
// register values, matching what the real boot ROM leaves behind when
// no boot ROM image is supplied.
func (m *Machine) applyPostBootIODefaults() {
	b := m.bus
	b.Write(0xFF00, 0xCF)
	b.Write(0xFF05, 0x00)
	b.Write(0xFF06, 0x00)
	b.Write(0xFF07, 0x00)
	b.Write(0xFF40, 0x91)
	b.Write(0xFF42, 0x00)
	b.Write(0xFF43, 0x00)
	b.Write(0xFF45, 0x00)
	b.Write(0xFF47, 0xFC)
	b.Write(0xFF48, 0xFF)
	b.Write(0xFF49, 0xFF)
	b.Write(0xFF4A, 0x00)
	b.Write(0xFF4B, 0x00)
	b.Write(0xFFFF, 0x00)
}

// ResetPostBoot reloads the currently-running cartridge's default
// post-boot register state without re-reading the ROM file, useful for
// a UI "restart" action.
func (m *Machine) ResetPostBoot() {
	if m.c == nil {
		return
	}
	m.c.Reset()
	m.applyPostBootIODefaults()
}

// ResetWithBoot sets PC to 0x0000 and SP to 0xFFFE and clears IME.
// Nothing else is reset: I/O registers, RAM and the cartridge keep their
// state, and the boot ROM is not re-mapped, so execution starts in it
// only while it is still mapped (installed and not yet disabled through
// FF50); otherwise it starts at the cartridge's own 0x0000.
func (m *Machine) ResetWithBoot() {
	if m.c == nil {
		return
	}
	m.c.Regs.PC = 0x0000
	m.c.Regs.SP = 0xFFFE
	m.c.Regs.IME = false
}

// LoadROMFromFile reads path and loads it as a cartridge, recording
// romPath for ROMPath/battery-save derivation. Creates a new Bus.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(rom, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// ROMPath returns the path LoadROMFromFile last loaded, empty if the
// cartridge was loaded via LoadCartridge directly.
func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the cartridge header title, empty if no cartridge
// is loaded or its header failed to parse.
func (m *Machine) ROMTitle() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// SetBootROM installs the boot ROM image used by the next
// LoadROMFromFile call (LoadCartridge takes its boot image as an
// explicit argument instead).
func (m *Machine) SetBootROM(data []byte) { m.bootROM = data }

// LoadBattery restores external cartridge RAM from data, returning
// false if the current cartridge has no battery-backed RAM.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.bus == nil {
		return false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok || len(bb.SaveRAM()) == 0 {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// SaveBattery returns a copy of the current cartridge's external RAM,
// and false if it has none.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.bus == nil {
		return nil, false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	ram := bb.SaveRAM()
	if ram == nil {
		return nil, false
	}
	return ram, true
}

// SetSerialWriter streams the serial port's output byte by byte to w,
// the sink blargg-style test ROMs print their pass/fail banner to.
func (m *Machine) SetSerialWriter(w io.Writer) {
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// SetButtons applies the pressed-button state for the next frame(s).
func (m *Machine) SetButtons(b Buttons) {
	if m.bus != nil {
		m.bus.SetJoypadState(b.mask())
	}
}

// Framebuffer returns the 160x144 2-bit palette-index frame (ppu.Frame)
// from the most recent StepFrame call. The core never maps these
// indices to a pixel color; callers (internal/ui, cmd/gbemu, cmd/gbrun)
// do that externally.
func (m *Machine) Framebuffer() ppu.Frame { return m.fb }

// Trace returns the CPU's recent (PC, mnemonic) instruction history as
// formatted strings; nil if no cartridge is loaded.
func (m *Machine) Trace() []string {
	if m.c == nil {
		return nil
	}
	var out []string
	for _, e := range m.c.Trace() {
		out = append(out, fmt.Sprintf("%04X %s", e.PC, e.Mnemonic))
	}
	return out
}

// runToVBlank steps the CPU and bus until LY just wrapped from the
// VBlank tail (153) back to 0, i.e. exactly one full frame's worth of
// dots, then reports whether the core halted (unimplemented opcode or
// detected self-loop).
func (m *Machine) runToVBlank() bool {
	if m.c == nil || m.bus == nil {
		return false
	}
	sawVBlank := false
	for {
		var pc uint16
		if m.cfg.Trace {
			pc = m.c.Regs.PC
		}
		cyc := m.c.Step()
		if m.cfg.Trace {
			fmt.Printf("PC=%04X cyc=%d A=%02X F=%02X SP=%04X\n", pc, cyc, m.c.Regs.A, m.c.Regs.F, m.c.Regs.SP)
		}
		if cyc < 0 {
			return true
		}
		m.bus.Tick(cyc)
		m.sampleAudio(cyc)
		ly := m.bus.PPU().CPURead(0xFF44)
		if ly == 144 {
			sawVBlank = true
		} else if sawVBlank && ly == 0 {
			return false
		}
	}
}

// StepFrame runs the core for one full frame and renders the result
// into Framebuffer.
func (m *Machine) StepFrame() {
	if m.runToVBlank() || m.bus == nil {
		return
	}
	m.fb = m.bus.PPU().RenderFrame()
}

// StepFrameNoRender is StepFrame without the RenderFrame call, for
// headless test-ROM runs that only care about serial output.
func (m *Machine) StepFrameNoRender() {
	m.runToVBlank()
}

// StepInstructions runs up to n CPU instructions, rendering a frame each
// time a VBlank period is crossed (so a caller bounding execution by
// instruction count, per the CLI's --max-instructions flag, still gets
// a representative Framebuffer). Returns how many instructions actually
// ran and whether the core halted before reaching n.
func (m *Machine) StepInstructions(n int) (ran int, halted bool) {
	if m.c == nil || m.bus == nil {
		return 0, false
	}
	sawVBlank := false
	for i := 0; i < n; i++ {
		cyc := m.c.Step()
		if cyc < 0 {
			return i, true
		}
		m.bus.Tick(cyc)
		m.sampleAudio(cyc)
		ly := m.bus.PPU().CPURead(0xFF44)
		if ly == 144 {
			sawVBlank = true
		} else if sawVBlank && ly == 0 {
			m.fb = m.bus.PPU().RenderFrame()
			sawVBlank = false
		}
	}
	return n, false
}

// LastFault reconstructs the CoreError describing the most recent halt
// condition from the CPU's trace ring, nil if nothing has halted yet.
// Distinguishes an unimplemented opcode from a detected JR self-loop by
// the mnemonic instructions.go records for the latter case.
func (m *Machine) LastFault() *cpu.CoreError {
	if m.c == nil {
		return nil
	}
	entries := m.c.Trace()
	if len(entries) == 0 {
		return nil
	}
	last := entries[len(entries)-1]
	kind := cpu.KindUnimplementedOpcode
	if strings.Contains(last.Mnemonic, "self-loop") {
		kind = cpu.KindSelfLoop
	} else if last.Mnemonic != "???" {
		return nil
	}
	return &cpu.CoreError{Kind: kind, PC: last.PC}
}

// APUCapBufferedStereo discards buffered audio beyond keepFrames, used
// by the UI to recover from an underrun-induced backlog without
// accumulating latency.
func (m *Machine) APUCapBufferedStereo(keepFrames int) {
	if extra := m.audioRing.available() - keepFrames; extra > 0 {
		m.audioRing.pull(extra)
	}
}

// APUClearAudioLatency drops all buffered audio frames immediately.
func (m *Machine) APUClearAudioLatency() { m.audioRing.pull(m.audioRing.available()) }

// errSaveStatesUnsupported is returned by SaveStateToFile/LoadStateFromFile:
// full core state serialization (CPU+bus+PPU+cartridge) is out of scope.
// Battery-backed cartridge RAM is still persisted via SaveBattery/LoadBattery.
var errSaveStatesUnsupported = fmt.Errorf("save states are not supported; use battery RAM (SaveBattery/LoadBattery) instead")

// SaveStateToFile always fails; see errSaveStatesUnsupported.
func (m *Machine) SaveStateToFile(path string) error { return errSaveStatesUnsupported }

// LoadStateFromFile always fails; see errSaveStatesUnsupported.
func (m *Machine) LoadStateFromFile(path string) error { return errSaveStatesUnsupported }

// WantCGBColors reports whether the active compat tint is enabled. The
// name mirrors the UI's existing toggle; no CGB hardware is emulated,
// this only selects a display palette (see compat_palette.go).
func (m *Machine) WantCGBColors() bool { return m.compatPalette > 0 }

// UseCGBBG is an alias of WantCGBColors kept for UI call-site parity.
func (m *Machine) UseCGBBG() bool { return m.WantCGBColors() }

// SetUseCGBBG turns the compat tint on (auto-detected palette) or off
// (stock grayscale).
func (m *Machine) SetUseCGBBG(on bool) {
	if !on {
		m.compatPalette = 0
		return
	}
	if id, ok := autoCompatPaletteFromHeader(m.header); ok && id > 0 {
		m.compatPalette = id%len(cgbCompatSetNames) + 1
	} else if m.compatPalette == 0 {
		m.compatPalette = 1
	}
}

// ResetCGBPostBoot re-applies post-boot defaults; withBoot is accepted
// for UI call-site parity but both paths reset identically here since
// no CGB-specific boot state exists.
func (m *Machine) ResetCGBPostBoot(withBoot bool) { m.ResetPostBoot() }

// IsCGBCompat reports whether a cartridge is loaded and therefore has
// a compat tint available to toggle.
func (m *Machine) IsCGBCompat() bool { return m.bus != nil }

// SetUseFetcherBG is retained for UI compatibility: the PPU now has a
// single renderer built on the fetcher/scanline model in
// internal/ppu/fetcher.go and scanline.go (see internal/ppu/render.go),
// so this only affects the label the UI shows, never actual output.
func (m *Machine) SetUseFetcherBG(v bool) { m.useFetcherBG = v }

// UseFetcherBG reports the UI's last-set renderer label preference.
func (m *Machine) UseFetcherBG() bool { return m.useFetcherBG }
