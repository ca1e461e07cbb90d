package cart

// MBC3 implements ROM/RAM banking (the RTC is an inert shell; no clock runs).
// Banking behavior:
// - 0000-1FFF: RAM enable (0x0A in low nibble)
// - 2000-3FFF: ROM bank low 7 bits (0 maps to 1)
// - 4000-5FFF: RTC reg select (08-0C), otherwise RAM bank (low 2 bits of the value)
// - 6000-7FFF: Latch strobe (stores the written value in latchReg)
// - A000-BFFF: latchReg while an RTC register is selected, else external
//   RAM when enabled and present
// ROM: bank 0 fixed at 0000-3FFF; switchable 4000-7FFF uses bank (1..127)

type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits (1..127)
	ramBank    byte // 0..3 (low 2 bits of the written value)

	// rtcSelect holds a 0x08-0x0C RTC register index when the 4000-5FFF
	// write selected one instead of a RAM bank; 0 means "no RTC register
	// selected, ramBank is live". latchReg is the single register the
	// RTC shell exposes: present for ROMs that probe for MBC3's real-time
	// clock, but it never advances — it only stores the last value
	// written through the 6000-7FFF latch strobe.
	rtcSelect byte
	latchReg  byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBank = 1
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.rtcSelect != 0 {
			return m.latchReg
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		rb := int(m.ramBank & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		if value >= 0x08 && value <= 0x0C {
			m.rtcSelect = value
		} else {
			m.rtcSelect = 0
			m.ramBank = value & 0x03
		}
	case addr < 0x8000:
		// Latch strobe: real MBC3 copies the live clock into the latched
		// registers on a 0->1 write. There is no live clock here, so the
		// strobe only records the last value written.
		m.latchReg = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.rtcSelect != 0 {
			m.latchReg = value
			return
		}
		if len(m.ram) == 0 {
			return
		}
		rb := int(m.ramBank & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// BatteryBacked implementation (RTC not persisted here)
func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}
