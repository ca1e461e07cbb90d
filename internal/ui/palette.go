package ui

import "github.com/nitro-dmg/gbcore/internal/ppu"

// Shades is a 4-entry RGB ramp mapping a core palette index (0..3) to
// an on-screen color: index 0 is the lightest shade and index 3 the
// darkest, as on the DMG. This is the display
// side of the palette mapping spec.md keeps out of the core: the PPU
// only ever hands off ppu.Frame indices, never pixel colors.
type Shades [4][3]byte

// classicShades is the stock DMG white/light-gray/dark-gray/black ramp
// used when no CGB-compat tint is selected (id 0).
var classicShades = Shades{
	{0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55},
	{0x00, 0x00, 0x00},
}

// compatShades are the curated tint ramps selectable via
// Machine.SetCompatPalette/CycleCompatPalette; index i here is preset
// ID i+1, matching internal/emu's cgbCompatSetNames order (0:Green
// 1:Sepia 2:Blue 3:Red 4:Pastel 5:Gray).
var compatShades = [6]Shades{
	{{0x9B, 0xBC, 0x0F}, {0x8B, 0xAC, 0x0F}, {0x30, 0x62, 0x30}, {0x0F, 0x38, 0x0F}},
	{{0xE8, 0xC9, 0xA0}, {0xB0, 0x84, 0x56}, {0x6B, 0x42, 0x26}, {0x2C, 0x1A, 0x0E}},
	{{0xC6, 0xE6, 0xFB}, {0x5E, 0x9C, 0xD6}, {0x24, 0x4C, 0x8C}, {0x0B, 0x17, 0x4A}},
	{{0xF2, 0xC9, 0x94}, {0xC2, 0x5A, 0x3E}, {0x7D, 0x1F, 0x1F}, {0x3A, 0x07, 0x07}},
	{{0xF2, 0xE2, 0xF2}, {0xC9, 0xA8, 0xD6}, {0x8C, 0x72, 0xA6}, {0x4B, 0x3B, 0x5C}},
	{{0xFF, 0xFF, 0xFF}, {0xAA, 0xAA, 0xAA}, {0x55, 0x55, 0x55}, {0x00, 0x00, 0x00}},
}

// shadesForID resolves a Machine.CurrentCompatPalette() ID to the ramp
// that paints it: 0 is the classic grayscale ramp, 1..6 a curated tint.
func shadesForID(id int) Shades {
	if id <= 0 || id > len(compatShades) {
		return classicShades
	}
	return compatShades[id-1]
}

// FramePixels maps fr's 2-bit palette indices through the ramp selected
// by compatPaletteID into an RGBA byte slice (160*144*4), ready for
// ebiten.Image.WritePixels or encoding as a PNG.
func FramePixels(fr ppu.Frame, compatPaletteID int) []byte {
	pal := shadesForID(compatPaletteID)
	out := make([]byte, len(fr)*4)
	for i, idx := range fr {
		c := pal[idx&0x03]
		out[i*4+0] = c[0]
		out[i*4+1] = c[1]
		out[i*4+2] = c[2]
		out[i*4+3] = 0xFF
	}
	return out
}
