package emu

// cgbCompatSetNames are the curated tint presets compat_tables.go's
// title/licensee heuristics pick between: a purely cosmetic
// post-process the UI layer applies over the core's monochrome
// palette-index frame, not real CGB hardware (palette RAM, double
// speed, VRAM banking are all out of scope; see the module's
// Non-goals). The core only tracks which preset is selected by ID; the
// actual RGB ramps live in internal/ui (see CompatPalette doc below),
// since mapping a palette index to an on-screen color is a display
// concern, not the core's. Index order must match the heuristics in
// compat_tables.go (0:Green 1:Sepia 2:Blue 3:Red 4:Pastel), plus a
// neutral Gray entry to round the curated set out to six so
// HeaderChecksum%6 always lands on a real entry.
var cgbCompatSetNames = [6]string{"Green", "Sepia", "Blue", "Red", "Pastel", "Gray"}

// maybeAutoCompatPalette applies the title/licensee heuristic in
// compat_tables.go once per LoadCartridge call. Per-ROM preferences
// are not consulted here; the UI layer applies those on its own.
func (m *Machine) maybeAutoCompatPalette() {
	if m.compatAutoDone {
		return
	}
	m.compatAutoDone = true
	if id, ok := autoCompatPaletteFromHeader(m.header); ok {
		m.compatPalette = id%len(cgbCompatSetNames) + 1
		return
	}
	m.compatPalette = 0
}

// CurrentCompatPalette returns the active palette ID: 0 means the
// stock DMG grayscale ramp, 1..len(cgbCompatSetNames) selects a tint.
// internal/ui maps this ID to an actual RGB ramp.
func (m *Machine) CurrentCompatPalette() int { return m.compatPalette }

// SetCompatPalette selects a tint by ID; an out-of-range or zero ID
// reverts to the stock grayscale ramp.
func (m *Machine) SetCompatPalette(id int) {
	if id <= 0 || id > len(cgbCompatSetNames) {
		m.compatPalette = 0
		return
	}
	m.compatPalette = id
}

// CycleCompatPalette steps the active palette by dir (+1 or -1),
// wrapping past the last tint back to the stock grayscale ramp and vice
// versa.
func (m *Machine) CycleCompatPalette(dir int) int {
	n := len(cgbCompatSetNames) + 1
	m.compatPalette = ((m.compatPalette+dir)%n + n) % n
	return m.compatPalette
}

// CompatPaletteName returns a display label for id (0 is "Classic").
func (m *Machine) CompatPaletteName(id int) string {
	if id <= 0 || id > len(cgbCompatSetNames) {
		return "Classic"
	}
	return cgbCompatSetNames[id-1]
}
