package ppu

import "sort"

// Sprite is one OAM entry already resolved to screen coordinates: X is
// the sprite's left edge on screen (OAM X minus 8), Y its top edge (OAM
// Y minus 16).
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

// ComposeSpriteLine renders the visible sprite pixels for one scanline
// into a 160-wide row of 2-bit color indices (0 is transparent),
// resolving DMG OAM priority: the sprite with the lowest X wins an
// overlap, ties broken by OAM index. bgci is the already-rendered
// BG/window color index row, consulted for the per-sprite BG-priority
// flag (Attr bit 7).
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, line int, bgci [160]byte, tall bool) [160]byte {
	ci, _ := spriteLineWinners(mem, sprites, line, bgci, tall)
	return ci
}

// spriteLineWinners is the shared implementation behind ComposeSpriteLine:
// besides the color indices it also reports which sprite (by index into
// sprites) won each pixel, -1 if none did, so the full-color renderer can
// look up that sprite's OBP0/OBP1 selection without re-deriving priority.
func spriteLineWinners(mem VRAMReader, sprites []Sprite, line int, bgci [160]byte, tall bool) (ci [160]byte, winner [160]int) {
	for i := range winner {
		winner[i] = -1
	}
	height := 8
	if tall {
		height = 16
	}

	order := make([]int, len(sprites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := sprites[order[a]], sprites[order[b]]
		if sa.X != sb.X {
			return sa.X < sb.X
		}
		return sa.OAMIndex < sb.OAMIndex
	})

	for _, oi := range order {
		s := sprites[oi]
		rowInSprite := line - s.Y
		if rowInSprite < 0 || rowInSprite >= height {
			continue
		}
		tile := s.Tile
		if tall {
			tile &^= 0x01
		}
		if s.Attr&0x40 != 0 { // Y flip
			rowInSprite = height - 1 - rowInSprite
		}
		tileAddr := 0x8000 + uint16(tile)*16 + uint16(rowInSprite)*2
		lo := mem.Read(tileAddr)
		hi := mem.Read(tileAddr + 1)
		behindBG := s.Attr&0x80 != 0
		xflip := s.Attr&0x20 != 0

		for col := 0; col < 8; col++ {
			sx := s.X + col
			if sx < 0 || sx >= 160 || winner[sx] >= 0 {
				continue
			}
			bit := col
			if !xflip {
				bit = 7 - col
			}
			lb := (lo >> uint(bit)) & 1
			hb := (hi >> uint(bit)) & 1
			pix := hb<<1 | lb
			if pix == 0 {
				continue // transparent
			}
			if behindBG && bgci[sx] != 0 {
				continue
			}
			ci[sx] = pix
			winner[sx] = oi
		}
	}
	return
}
