package ppu

// drainOrRefill pops the next pixel off q, advancing the fetcher to the
// next map column (wrapping at 32 tiles) and re-fetching when the FIFO
// has run dry. Both the background and window scanline renderers below
// share this loop; the only difference between the two callers is how
// tileX/tileIndexAddr are seeded before the first Fetch.
func drainOrRefill(f *bgFetcher, q *fifo, mapBase uint16, tileData8000 bool, mapY uint16, fineY byte, tileX *uint16) byte {
	if q.Len() == 0 {
		*tileX = (*tileX + 1) & 31
		f.Configure(mapBase, tileData8000, mapBase+mapY*32+*tileX, fineY)
		f.Fetch()
	}
	px, _ := q.Pop()
	return px
}

// RenderBGScanlineUsingFetcher renders 160 BG color indices (0..3) for
// one scanline, called once per line from RenderFrame with that line's
// LineRegs-latched SCX/SCY rather than the live registers, so a
// mid-frame scroll write shows up on the right line (spec.md §4.9's
// per-line latching requirement).
func RenderBGScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(scx)
	tileX := (startX >> 3) & 31
	fineX := int(startX & 7)

	var q fifo
	f := newBGFetcher(mem, &q)
	f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
	f.Fetch()
	for i := 0; i < fineX; i++ {
		_, _ = q.Pop()
	}

	for x := 0; x < 160; x++ {
		out[x] = drainOrRefill(f, &q, mapBase, tileData8000, mapY, fineY, &tileX)
	}
	return out
}

// RenderWindowScanlineUsingFetcher renders the window layer for one
// scanline, filling pixels from wxStart (WX-7) onward using winLine as
// the window's own internal line counter (which only advances on lines
// the window actually drew, per spec.md §4.9's window-line semantics).
// Pixels before wxStart stay 0 so the caller can blend BG under them.
func RenderWindowScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}

	mapY := (uint16(winLine) >> 3) & 31
	fineY := winLine & 7
	tileX := uint16(0)

	var q fifo
	f := newBGFetcher(mem, &q)
	f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
	f.Fetch()

	for x := wxStart; x < 160; x++ {
		out[x] = drainOrRefill(f, &q, mapBase, tileData8000, mapY, fineY, &tileX)
	}
	return out
}
