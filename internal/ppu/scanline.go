package ppu

import (
	"sort"

	"dotmatrix/internal/memory"
)

// maxSpritesPerLine is the hardware limit on objects per scanline.
const maxSpritesPerLine = 10

// oamEntryCount is the number of 4-byte sprite descriptors in OAM.
const oamEntryCount = 40

// Sprite attribute bits.
const (
	attrBehindBG = 0x80
	attrYFlip    = 0x40
	attrXFlip    = 0x20
	attrPalette  = 0x10
)

// sprite is one selected OAM entry. Y and X carry the hardware offsets:
// the top-left corner of the screen is Y=16, X=8.
type sprite struct {
	y, x, tile, attr uint8
	fetched          bool
}

// scanOAM examines two OAM entries per m-cycle (40 entries over the 20
// cycles of mode 2), selecting sprites whose Y range covers this line.
func (p *PPU) scanOAM(lcdc uint8, mem *memory.Memory, ly uint8) {
	height := 8
	if lcdc&LCDCObjSize != 0 {
		height = 16
	}
	target := int(ly) + 16

	for n := 0; n < oamEntryCount/OAMSearchCycles && p.oamIndex < oamEntryCount; n++ {
		base := uint16(memory.OAMStart) + uint16(p.oamIndex)*4
		p.oamIndex++

		y := int(mem.ReadByte(base))
		x := mem.ReadByte(base + 1)
		if len(p.sprites) == maxSpritesPerLine || x == 0 {
			continue
		}
		if target < y || target >= y+height {
			continue
		}
		p.sprites = append(p.sprites, sprite{
			y:    uint8(y),
			x:    x,
			tile: mem.ReadByte(base + 2),
			attr: mem.ReadByte(base + 3),
		})
	}
}

// sortSprites orders the selected sprites by ascending X for draw order.
// The sort is stable so OAM order breaks ties.
func (p *PPU) sortSprites() {
	sort.SliceStable(p.sprites, func(i, j int) bool {
		return p.sprites[i].x < p.sprites[j].x
	})
}

// transferCycle is one m-cycle of mode 3: the fetcher refills the
// background FIFO when it has room, then the pusher moves up to two
// pixels to the framebuffer.
func (p *PPU) transferCycle(lcdc uint8, mem *memory.Memory, ly uint8, framebuffer []uint32) {
	if p.bgFIFO.Len() <= 8 {
		p.fetchTileRow(lcdc, mem, ly)
	}

	for n := 0; n < 2 && p.x < ScreenWidth; n++ {
		// The window takes over mid-line at WX-7: restart the fetcher on
		// the window map from its own line counter.
		if !p.windowActive && p.windowReached(lcdc, mem, ly) {
			p.windowActive = true
			p.bgFIFO.Clear()
			p.fetcherX = 0
			p.fetchTileRow(lcdc, mem, ly)
		}

		// A sprite starting at this column pauses the push while its row
		// is fetched and merged.
		if lcdc&LCDCObjEnable != 0 {
			p.fetchSpritesAt(lcdc, mem, ly)
		}

		if p.bgFIFO.Len() == 0 {
			return // fetcher starved; try again next cycle
		}

		bg, _ := p.bgFIFO.Pop()
		var obj Pixel
		hasObj := false
		if p.objFIFO.Len() > 0 {
			obj, _ = p.objFIFO.Pop()
			hasObj = true
		}
		framebuffer[int(ly)*ScreenWidth+int(p.x)] = p.resolve(mem, bg, obj, hasObj)
		p.x++
	}
}

// windowReached reports whether the window overtakes the background at
// the current pusher position.
func (p *PPU) windowReached(lcdc uint8, mem *memory.Memory, ly uint8) bool {
	if lcdc&LCDCWindowEnable == 0 || lcdc&LCDCBGEnable == 0 {
		return false
	}
	if ly < mem.ReadByte(memory.AddrWY) {
		return false
	}
	return int(p.x) >= int(mem.ReadByte(memory.AddrWX))-7
}

// fetchTileRow fetches the two bytes of the current tile row and enqueues
// 8 pixels, MSB first, into the background FIFO.
func (p *PPU) fetchTileRow(lcdc uint8, mem *memory.Memory, ly uint8) {
	// With the background disabled the line is blank (color 0).
	if lcdc&LCDCBGEnable == 0 {
		for i := 0; i < 8; i++ {
			p.bgFIFO.Push(Pixel{Color: 0, Source: SourceBackground})
		}
		p.fetcherX++
		return
	}

	var mapBase, tileX, tileY, line uint16
	if p.windowActive {
		mapBase = 0x9800
		if lcdc&LCDCWindowTileMap != 0 {
			mapBase = 0x9C00
		}
		tileX = uint16(p.fetcherX) & 0x1F
		tileY = (uint16(p.windowLine) / 8) & 0x1F
		line = uint16(p.windowLine) & 7
	} else {
		mapBase = 0x9800
		if lcdc&LCDCBGTileMap != 0 {
			mapBase = 0x9C00
		}
		scy := uint16(mem.ReadByte(memory.AddrSCY))
		scx := uint16(mem.ReadByte(memory.AddrSCX))
		tileX = (uint16(p.fetcherX) + scx/8) & 0x1F
		tileY = ((uint16(ly) + scy) / 8) & 0x1F
		line = (uint16(ly) + scy) & 7
	}

	tileIndex := mem.ReadByte(mapBase + tileY*32 + tileX)
	addr := tileDataAddr(lcdc, tileIndex) + 2*line
	low := mem.ReadByte(addr)
	high := mem.ReadByte(addr + 1)

	for bit := 7; bit >= 0; bit-- {
		color := (high>>bit&1)<<1 | (low >> bit & 1)
		p.bgFIFO.Push(Pixel{Color: color, Source: SourceBackground})
	}
	p.fetcherX++
}

// tileDataAddr resolves a tile index against the LCDC tile-data select:
// unsigned from 0x8000, or signed from 0x9000.
func tileDataAddr(lcdc uint8, index uint8) uint16 {
	if lcdc&LCDCTileData != 0 {
		return 0x8000 + uint16(index)*16
	}
	return uint16(0x9000 + int32(int8(index))*16)
}

// fetchSpritesAt fetches the rows of all buffered sprites that start at
// the current pusher column and merges them into the sprite FIFO.
func (p *PPU) fetchSpritesAt(lcdc uint8, mem *memory.Memory, ly uint8) {
	for i := range p.sprites {
		s := &p.sprites[i]
		if s.fetched || int(s.x) != int(p.x)+8 {
			continue
		}
		s.fetched = true
		p.mergeSpriteRow(lcdc, mem, ly, s)
	}
}

// mergeSpriteRow reads a sprite's tile row and merges its 8 pixels into
// the sprite FIFO. Slots already holding an opaque pixel keep it: the
// earlier (lower-X) sprite wins.
func (p *PPU) mergeSpriteRow(lcdc uint8, mem *memory.Memory, ly uint8, s *sprite) {
	height := uint8(8)
	tile := s.tile
	if lcdc&LCDCObjSize != 0 {
		height = 16
		tile &= 0xFE // 8x16 sprites use an even/odd tile pair
	}

	row := ly + 16 - s.y
	if s.attr&attrYFlip != 0 {
		row = height - 1 - row
	}

	addr := 0x8000 + uint16(tile)*16 + 2*uint16(row)
	low := mem.ReadByte(addr)
	high := mem.ReadByte(addr + 1)

	for i := 0; i < 8; i++ {
		bit := 7 - i
		if s.attr&attrXFlip != 0 {
			bit = i
		}
		px := Pixel{
			Color:    (high>>bit&1)<<1 | (low >> bit & 1),
			Source:   SourceSprite,
			Palette:  s.attr & attrPalette >> 4,
			BehindBG: s.attr&attrBehindBG != 0,
		}
		if i < p.objFIFO.Len() {
			if p.objFIFO.At(i).Color == 0 && px.Color != 0 {
				p.objFIFO.Set(i, px)
			}
		} else {
			p.objFIFO.Push(px)
		}
	}
}

// resolve mixes a background and an optional sprite pixel and maps the
// winner through its palette register to an ARGB shade. A sprite pixel
// wins unless transparent, or flagged behind a nonzero background pixel.
func (p *PPU) resolve(mem *memory.Memory, bg Pixel, obj Pixel, hasObj bool) uint32 {
	if hasObj && obj.Color != 0 && !(obj.BehindBG && bg.Color != 0) {
		pal := mem.ReadByte(memory.AddrOBP0)
		if obj.Palette != 0 {
			pal = mem.ReadByte(memory.AddrOBP1)
		}
		return shades[pal>>(2*obj.Color)&0x3]
	}
	bgp := mem.ReadByte(memory.AddrBGP)
	return shades[bgp>>(2*bg.Color)&0x3]
}
