package ppu

// vramView adapts PPU to the VRAMReader interface the fetcher expects,
// so RenderFrame can drive the same tile-fetch logic the teacher wrote
// and tested in fetcher.go/scanline.go instead of duplicating it.
type vramView struct{ p *PPU }

func (v vramView) Read(addr uint16) byte { return v.p.CPURead(addr) }

// Frame is the core's only rendering output: a 160x144 grid of 2-bit
// palette indices (0..3), row-major. It is a fixed-size array, not a
// slice, so RenderFrame hands it off by value — callers get their own
// copy and palette-to-pixel mapping (grayscale or any tint) is left
// entirely to the caller; the PPU never produces a pixel color.
type Frame [160 * 144]byte

// RenderFrame composes a full 160x144 frame of post-palette-register
// color indices from the current VRAM tile data/maps, OAM, and BGP/OBPx
// registers. With the LCD off (LCDC bit 7 clear) or the background
// disabled (LCDC bit 0 clear), the frame is all zeros.
func (p *PPU) RenderFrame() Frame {
	const w, h = 160, 144
	var fr Frame

	if p.lcdc&0x80 == 0 || p.lcdc&0x01 == 0 {
		return fr
	}

	mem := vramView{p}

	// bgIndex[y][x] holds the 2-bit BG/window color index actually
	// drawn (pre-BGP), needed to resolve OBJ-behind-BG priority (OBJ
	// attribute bit 7).
	var bgIndex [h][w]byte

	for y := 0; y < h; y++ {
		lr := p.LineRegs(y)
		if lr == (LineRegs{}) {
			// Never latched (e.g. LCD was off for this line, or the
			// caller rendered without ever ticking); fall back to the
			// live registers so a direct RenderFrame call still works.
			lr = LineRegs{SCX: p.scx, SCY: p.scy, WX: p.wx, WY: p.wy, LCDC: p.lcdc}
		}

		bgEnabled := lr.LCDC&0x01 != 0
		winEnabled := lr.LCDC&0x20 != 0 && bgEnabled

		bgMapBase := uint16(0x9800)
		if lr.LCDC&0x08 != 0 {
			bgMapBase = 0x9C00
		}
		winMapBase := uint16(0x9800)
		if lr.LCDC&0x40 != 0 {
			winMapBase = 0x9C00
		}
		tileData8000 := lr.LCDC&0x10 != 0

		row := byte(y)
		var bgRow, winRow [160]byte
		if bgEnabled {
			bgRow = RenderBGScanlineUsingFetcher(mem, bgMapBase, tileData8000, lr.SCX, lr.SCY, row)
		}

		wxStart := -1
		if winEnabled && row >= lr.WY && lr.WX < 166 {
			wxStart = int(lr.WX) - 7
			winRow = RenderWindowScanlineUsingFetcher(mem, winMapBase, tileData8000, wxStart, lr.WinLine)
		}

		for x := 0; x < w; x++ {
			idx := bgRow[x]
			if wxStart >= 0 && x >= wxStart {
				idx = winRow[x]
			}
			bgIndex[y][x] = idx
			fr[y*w+x] = shadeIndex(p.bgp, idx)
		}
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(&fr, bgIndex[:], w, h, p.lcdc&0x04 != 0)
	}

	return fr
}

// renderSprites scans OAM for up to 10 sprites per visible line (the
// real hardware's per-line OAM-search cap, applied in OAM index order
// before priority is resolved) and hands each line's candidates to
// ComposeSpriteLine for the actual pixel/priority resolution, then maps
// the winning color index through that sprite's OBP0/OBP1 register.
func (p *PPU) renderSprites(fr *Frame, bgIndex [][160]byte, w, h int, tall bool) {
	height := 8
	if tall {
		height = 16
	}

	var oam [40]Sprite
	for i := 0; i < 40; i++ {
		base := uint16(0xFE00 + i*4)
		oam[i] = Sprite{
			Y:        int(p.CPURead(base)) - 16,
			X:        int(p.CPURead(base+1)) - 8,
			Tile:     p.CPURead(base + 2),
			Attr:     p.CPURead(base + 3),
			OAMIndex: i,
		}
	}

	mem := vramView{p}

	for line := 0; line < h; line++ {
		var candidates []Sprite
		for i := 0; i < 40 && len(candidates) < 10; i++ {
			s := oam[i]
			if line < s.Y || line >= s.Y+height {
				continue
			}
			candidates = append(candidates, s)
		}
		if len(candidates) == 0 {
			continue
		}

		ci, winner := spriteLineWinners(mem, candidates, line, bgIndex[line], tall)
		for x := 0; x < w; x++ {
			if ci[x] == 0 {
				continue
			}
			s := candidates[winner[x]]
			palReg := p.obp0
			if s.Attr&0x10 != 0 {
				palReg = p.obp1
			}
			fr[line*w+x] = shadeIndex(palReg, ci[x])
		}
	}
}

// shadeIndex maps a 2-bit tile/sprite color index through a BGP/OBPx
// palette register to the 2-bit shade index the hardware actually
// displays. This is the one palette mapping the core performs; mapping
// that shade index to an on-screen pixel color is left to the caller.
func shadeIndex(palette byte, idx byte) byte {
	return (palette >> (idx * 2)) & 0x03
}
