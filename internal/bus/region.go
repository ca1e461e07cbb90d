package bus

// Region is the uniform memory-region contract: an inclusive [Lo, Hi]
// address range plus variant-dependent load/store. Cartridge ROM
// banking is handled by internal/cart's own mapper logic (wired in via
// cartRegion below), so FixedROM/BankedROM are kept here only as the
// generic building blocks the contract describes; Bus does not use them.
type Region interface {
	Contains(addr uint16) bool
	Load(addr uint16) byte
	Store(addr uint16, v byte)
}

func translate(lo, addr uint16) uint16 { return addr - lo }

// FixedROM is a read-only, unbanked region; stores are dropped (a real
// cartridge mapper reinterprets them instead — see cartRegion).
type FixedROM struct {
	Lo, Hi uint16
	mem    []byte
}

func NewFixedROM(lo, hi uint16, data []byte) *FixedROM {
	r := &FixedROM{Lo: lo, Hi: hi, mem: make([]byte, int(hi-lo)+1)}
	copy(r.mem, data)
	return r
}

func (r *FixedROM) Contains(addr uint16) bool { return addr >= r.Lo && addr <= r.Hi }
func (r *FixedROM) Load(addr uint16) byte     { return r.mem[translate(r.Lo, addr)] }
func (r *FixedROM) Store(addr uint16, v byte) {}

// BankedROM reads through a caller-supplied bank selector; size is the
// bank size in bytes. Stores are dropped by default — mapper control
// writes are intercepted upstream of the region, not here.
type BankedROM struct {
	Lo, Hi uint16
	Size   int
	Bank   func() int
	data   []byte
}

func NewBankedROM(lo, hi uint16, size int, data []byte, bank func() int) *BankedROM {
	return &BankedROM{Lo: lo, Hi: hi, Size: size, Bank: bank, data: data}
}

func (r *BankedROM) Contains(addr uint16) bool { return addr >= r.Lo && addr <= r.Hi }
func (r *BankedROM) Load(addr uint16) byte {
	off := r.Bank()*r.Size + int(translate(r.Lo, addr))
	if off < 0 || off >= len(r.data) {
		return 0xFF
	}
	return r.data[off]
}
func (r *BankedROM) Store(addr uint16, v byte) {}

// RAM is a flat, fully read/write region (work RAM, high RAM).
type RAM struct {
	Lo, Hi uint16
	mem    []byte
}

func NewRAM(lo, hi uint16) *RAM {
	return &RAM{Lo: lo, Hi: hi, mem: make([]byte, int(hi-lo)+1)}
}

func (r *RAM) Contains(addr uint16) bool { return addr >= r.Lo && addr <= r.Hi }
func (r *RAM) Load(addr uint16) byte     { return r.mem[translate(r.Lo, addr)] }
func (r *RAM) Store(addr uint16, v byte) { r.mem[translate(r.Lo, addr)] = v }

// Unusable always reads 0xFF and drops writes (FEA0-FEFF).
type Unusable struct{ Lo, Hi uint16 }

func (r Unusable) Contains(addr uint16) bool { return addr >= r.Lo && addr <= r.Hi }
func (r Unusable) Load(addr uint16) byte     { return 0xFF }
func (r Unusable) Store(addr uint16, v byte) {}

// echoRAM mirrors target's window at a fixed negative offset (E000-FDFF
// mirrors C000-DDFF).
type echoRAM struct {
	Lo, Hi uint16
	offset uint16
	target *RAM
}

func newEchoRAM(lo, hi, offset uint16, target *RAM) *echoRAM {
	return &echoRAM{Lo: lo, Hi: hi, offset: offset, target: target}
}

func (r *echoRAM) Contains(addr uint16) bool { return addr >= r.Lo && addr <= r.Hi }
func (r *echoRAM) Load(addr uint16) byte     { return r.target.Load(addr - r.offset) }
func (r *echoRAM) Store(addr uint16, v byte) { r.target.Store(addr-r.offset, v) }

// cartRegion adapts internal/cart.Cartridge (which already implements
// its own mapper-specific banking) to the Region contract, covering
// both ROM (0000-7FFF) and external RAM (A000-BFFF) — a real cartridge
// reinterprets writes to the ROM half as bank-select control rather
// than storage, which is exactly what Cartridge.Write already does.
type cartRegion struct{ c Cartridge }

func (r cartRegion) Contains(addr uint16) bool {
	return addr < 0x8000 || (addr >= 0xA000 && addr <= 0xBFFF)
}
func (r cartRegion) Load(addr uint16) byte     { return r.c.Read(addr) }
func (r cartRegion) Store(addr uint16, v byte) { r.c.Write(addr, v) }

// Cartridge is the subset of internal/cart.Cartridge the bus depends
// on, kept local to avoid an import cycle concern and to document the
// exact contract this package needs.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// delegateRegion adapts any {Contains,Load/Read,Store/Write}-shaped
// component (PPU VRAM/OAM, the I/O dispatcher) to Region.
type delegateRegion struct {
	lo, hi     uint16
	load       func(uint16) byte
	store      func(uint16, byte)
}

func newDelegate(lo, hi uint16, load func(uint16) byte, store func(uint16, byte)) *delegateRegion {
	return &delegateRegion{lo: lo, hi: hi, load: load, store: store}
}

func (r *delegateRegion) Contains(addr uint16) bool { return addr >= r.lo && addr <= r.hi }
func (r *delegateRegion) Load(addr uint16) byte     { return r.load(addr) }
func (r *delegateRegion) Store(addr uint16, v byte) { r.store(addr, v) }
