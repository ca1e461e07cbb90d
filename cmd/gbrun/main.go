// Command gbrun is the CLI driver for the core: point it at a ROM and it
// either opens a window (internal/ui) or, with -headless, steps a bounded
// number of instructions and reports the resulting framebuffer checksum.
// Exit codes distinguish the fault kinds internal/cpu.CoreError models, so
// CI can tell a ROM decode failure from an unimplemented opcode.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nitro-dmg/gbcore/internal/cart"
	"github.com/nitro-dmg/gbcore/internal/cpu"
	"github.com/nitro-dmg/gbcore/internal/emu"
	"github.com/nitro-dmg/gbcore/internal/ui"
)

const (
	exitOK = iota
	exitUsage
	exitROMDecode
	exitUnimplementedOpcode
	exitSelfLoop
	exitChecksumMismatch
)

type cliFlags struct {
	romPath   string
	bootROM   string
	maxInstrs int
	headless  bool
	scale     int
	outPNG    string
	expect    string
	trace     bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.IntVar(&f.maxInstrs, "max-instructions", 20_000_000, "stop after this many CPU instructions")
	flag.BoolVar(&f.headless, "headless", false, "run without opening a window")
	flag.StringVar(&f.bootROM, "bootrom", "", "optional DMG boot ROM")
	flag.IntVar(&f.scale, "scale", 3, "window scale (windowed mode only)")
	flag.StringVar(&f.outPNG, "outpng", "", "write the final framebuffer to PNG at path")
	flag.StringVar(&f.expect, "expect", "", "assert the final framebuffer CRC32 (hex)")
	flag.BoolVar(&f.trace, "trace", false, "print a PC/opcode trace line per instruction")
	flag.Parse()
	if flag.NArg() > 0 {
		f.romPath = flag.Arg(0)
	}
	return f
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func savePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: make([]byte, len(pix)), Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func exitForFault(err *cpu.CoreError) int {
	switch err.Kind {
	case cpu.KindROMDecode:
		return exitROMDecode
	case cpu.KindSelfLoop:
		return exitSelfLoop
	default:
		return exitUnimplementedOpcode
	}
}

func runHeadless(m *emu.Machine, f cliFlags) int {
	start := time.Now()
	ran, halted := m.StepInstructions(f.maxInstrs)
	dur := time.Since(start)

	if halted {
		fault := m.LastFault()
		log.Printf("halted after %d/%d instructions: %v", ran, f.maxInstrs, fault)
		return exitForFault(fault)
	}

	fr := m.Framebuffer()
	crc := crc32.ChecksumIEEE(fr[:])
	log.Printf("ran %d instructions in %s, fb_crc32=%08x", ran, dur.Truncate(time.Millisecond), crc)

	if f.outPNG != "" {
		pix := ui.FramePixels(fr, m.CurrentCompatPalette())
		if err := savePNG(pix, 160, 144, f.outPNG); err != nil {
			log.Printf("write PNG: %v", err)
		} else {
			log.Printf("wrote %s", f.outPNG)
		}
	}

	if f.expect != "" {
		want := strings.TrimPrefix(strings.ToLower(f.expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			log.Printf("checksum mismatch: got %s, want %s", got, want)
			return exitChecksumMismatch
		}
	}
	return exitOK
}

func main() {
	f := parseFlags()
	if f.romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gbrun <rom_path> [flags]")
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}

	rom := mustRead(f.romPath)
	boot := mustRead(f.bootROM)

	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
	}

	m := emu.New(emu.Config{Trace: f.trace})
	if err := m.LoadCartridge(rom, boot); err != nil {
		if ce, ok := err.(*cpu.CoreError); ok {
			log.Printf("load cartridge: %v", ce)
			os.Exit(exitForFault(ce))
		}
		log.Printf("load cartridge: %v", err)
		os.Exit(exitROMDecode)
	}

	if f.headless {
		os.Exit(runHeadless(m, f))
	}

	app := ui.NewApp(ui.Config{Title: "gbrun", Scale: f.scale}, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
