package cart

import (
	"errors"
	"fmt"
)

// Cartridge defines the minimal interface the Bus needs for ROM/RAM banking.
// Implementations can be ROM-only or MBC variants. Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000–0x7FFF) and external RAM (0xA000–0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000–0x7FFF) and external RAM writes (0xA000–0xBFFF).
	Write(addr uint16, value byte)
}

// BatteryBacked is an optional interface for cartridges with external RAM to be persisted.
// Implementations should return a copy of RAM bytes (may be empty if no RAM), and accept data to load.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// ErrUnsupportedCartType is returned by NewCartridge for any cartridge
// type byte outside the MBC3 family (0x0F-0x13). ROM-only, MBC1, MBC5,
// and the rest (MBC2, MBC6, MBC7, MMM01, camera/TAMA5) are rejected for
// now rather than mapped.
var ErrUnsupportedCartType = errors.New("cart: unsupported cartridge type")

// NewCartridge parses the ROM header and constructs an MBC3 cartridge.
// Only cartridge type bytes 0x0F-0x13 are accepted; any other mapper
// type, or a header that fails to parse, is a ROM decode failure.
func NewCartridge(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("cart: %w", err)
	}
	switch h.CartType {
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), nil
	default:
		return nil, fmt.Errorf("%w: %s (type %#02x)", ErrUnsupportedCartType, h.CartTypeStr, h.CartType)
	}
}
