package ppu

import (
	"dotmatrix/internal/debug"
	"dotmatrix/internal/memory"
)

// Screen and frame timing constants. All cycle counts are m-cycles.
const (
	ScreenWidth  = 160
	ScreenHeight = 144

	ScanlineCycles  = 114 // per scanline
	OAMSearchCycles = 20  // mode 2 slice of a visible line

	VisibleLines = 144
	TotalLines   = 154

	// FrameCycles is one full frame: 154 scanlines of 114 m-cycles.
	FrameCycles = TotalLines * ScanlineCycles
)

// PPU modes, as exposed in STAT bits 0-1.
const (
	ModeHBlank        = 0
	ModeVBlank        = 1
	ModeOAMSearch     = 2
	ModePixelTransfer = 3
)

// LCDC bits.
const (
	LCDCEnable        = 0x80
	LCDCWindowTileMap = 0x40
	LCDCWindowEnable  = 0x20
	LCDCTileData      = 0x10
	LCDCBGTileMap     = 0x08
	LCDCObjSize       = 0x04
	LCDCObjEnable     = 0x02
	LCDCBGEnable      = 0x01
)

// STAT bits. Bits 3-6 enable the LCD STAT interrupt sources.
const (
	STATLYCInterrupt   = 0x40
	STATMode2Interrupt = 0x20
	STATMode1Interrupt = 0x10
	STATMode0Interrupt = 0x08
	STATCoincidence    = 0x04
)

// Interrupt sources latched into IF.
const (
	interruptVBlank = 0
	interruptStat   = 1
)

// shades maps a 2-bit shade (after palette remap) to an ARGB color,
// using the green tint of the original LCD.
var shades = [4]uint32{
	0xFF9BBC0F, // lightest
	0xFF8BAC0F,
	0xFF306230,
	0xFF0F380F, // darkest
}

// PPU is the scanline state machine. It keeps no handle on memory or the
// framebuffer between steps; both are lent for the duration of Step.
type PPU struct {
	bgFIFO  FIFO
	objFIFO FIFO

	// frameCycles counts m-cycles into the current frame, 0..FrameCycles-1.
	frameCycles uint32

	// x is the pusher's screen column on the current line, 0..160.
	x uint8
	// fetcherX is the fetcher's tile column within the active map.
	fetcherX uint8

	// sprites selected by OAM search for the current line, sorted by X.
	sprites  []sprite
	oamIndex int

	// Window state: whether the window has taken over on this line, and
	// the window's own line counter (it does not scroll with SCY).
	windowActive bool
	windowLine   uint8

	logger *debug.Logger
}

// New creates a PPU. The logger may be nil.
func New(logger *debug.Logger) *PPU {
	return &PPU{
		sprites: make([]sprite, 0, maxSpritesPerLine),
		logger:  logger,
	}
}

// Reset returns the PPU to the top of the frame.
func (p *PPU) Reset() {
	p.bgFIFO.Clear()
	p.objFIFO.Clear()
	p.frameCycles = 0
	p.x = 0
	p.fetcherX = 0
	p.sprites = p.sprites[:0]
	p.oamIndex = 0
	p.windowActive = false
	p.windowLine = 0
}

// FrameCycle returns the m-cycle position within the current frame.
func (p *PPU) FrameCycle() uint32 {
	return p.frameCycles
}

// Step advances the PPU by cycles m-cycles, mutating LY and the STAT mode
// bits in memory and, during pixel transfer, pixels in the framebuffer.
// The PPU never sees more cycles than the CPU just executed.
func (p *PPU) Step(cycles uint32, mem *memory.Memory, framebuffer []uint32) {
	for i := uint32(0); i < cycles; i++ {
		lcdc := mem.ReadByte(memory.AddrLCDC)
		if lcdc&LCDCEnable == 0 {
			p.lcdOff(mem)
			return
		}
		p.tick(lcdc, mem, framebuffer)
	}
}

// tick advances one m-cycle.
func (p *PPU) tick(lcdc uint8, mem *memory.Memory, framebuffer []uint32) {
	lineCycle := p.frameCycles % ScanlineCycles
	ly := mem.LY()

	// Line start: visible lines begin with OAM search over a clean slate.
	if lineCycle == 0 && ly < VisibleLines {
		p.enterOAMSearch(mem)
	}

	switch mem.ReadByte(memory.AddrSTAT) & 0x3 {
	case ModeOAMSearch:
		p.scanOAM(lcdc, mem, ly)
		if lineCycle == OAMSearchCycles-1 {
			p.sortSprites()
			p.setMode(mem, ModePixelTransfer)
		}
	case ModePixelTransfer:
		p.transferCycle(lcdc, mem, ly, framebuffer)
		if p.x >= ScreenWidth {
			p.exitPixelTransfer(mem)
		}
	case ModeHBlank, ModeVBlank:
		// The LCD is idle; nothing to do until the line rolls over.
	}

	// Line end: advance LY and pick the next mode.
	if lineCycle == ScanlineCycles-1 {
		p.endLine(mem, ly)
	}

	p.frameCycles++
	if p.frameCycles == FrameCycles {
		p.frameCycles = 0
	}
}

// enterOAMSearch starts mode 2: sprite buffer and FIFOs cleared, fetcher
// and pusher reset.
func (p *PPU) enterOAMSearch(mem *memory.Memory) {
	p.sprites = p.sprites[:0]
	p.oamIndex = 0
	p.bgFIFO.Clear()
	p.objFIFO.Clear()
	p.x = 0
	p.fetcherX = 0
	p.windowActive = false
	p.setMode(mem, ModeOAMSearch)
}

// exitPixelTransfer ends mode 3 after 160 pushed pixels.
func (p *PPU) exitPixelTransfer(mem *memory.Memory) {
	p.bgFIFO.Clear()
	p.objFIFO.Clear()
	p.fetcherX = 0
	p.setMode(mem, ModeHBlank)
}

// endLine advances LY, latches V-blank, and wraps the frame after line 153.
func (p *PPU) endLine(mem *memory.Memory, ly uint8) {
	if p.windowActive {
		p.windowLine++
	}

	next := ly + 1
	switch {
	case next == VisibleLines:
		p.setMode(mem, ModeVBlank)
		mem.RequestInterrupt(interruptVBlank)
		if p.logger != nil {
			p.logger.Log(debug.ComponentPPU, debug.LogLevelTrace, "entering v-blank")
		}
	case next >= TotalLines:
		next = 0
		p.windowLine = 0
	}
	mem.SetLY(next)
	p.compareLYC(mem, next)
}

// setMode writes the STAT mode bits and latches the STAT interrupt if
// that mode's enable bit is set.
func (p *PPU) setMode(mem *memory.Memory, mode uint8) {
	stat := mem.ReadByte(memory.AddrSTAT)
	if stat&0x3 == mode {
		return
	}
	mem.SetSTAT(stat&^0x3 | mode)

	var enable uint8
	switch mode {
	case ModeHBlank:
		enable = STATMode0Interrupt
	case ModeVBlank:
		enable = STATMode1Interrupt
	case ModeOAMSearch:
		enable = STATMode2Interrupt
	default:
		return // mode 3 has no STAT interrupt source
	}
	if stat&enable != 0 {
		mem.RequestInterrupt(interruptStat)
	}
}

// compareLYC updates the coincidence bit and latches the STAT interrupt
// when LY matches LYC.
func (p *PPU) compareLYC(mem *memory.Memory, ly uint8) {
	stat := mem.ReadByte(memory.AddrSTAT)
	if ly == mem.ReadByte(memory.AddrLYC) {
		mem.SetSTAT(stat | STATCoincidence)
		if stat&STATLYCInterrupt != 0 {
			mem.RequestInterrupt(interruptStat)
		}
	} else {
		mem.SetSTAT(stat &^ STATCoincidence)
	}
}

// lcdOff holds the PPU in its disabled state: LY zero, mode 0, counters
// and queues cleared.
func (p *PPU) lcdOff(mem *memory.Memory) {
	p.Reset()
	mem.SetLY(0)
	mem.SetSTAT(mem.ReadByte(memory.AddrSTAT) &^ 0x3)
}
