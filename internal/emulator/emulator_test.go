package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotmatrix/internal/memory"
	"dotmatrix/internal/ppu"
	"dotmatrix/internal/rom"
)

// loadTestEmulator builds an emulator around a generated cartridge: the
// demo boot stub plus whatever code the builder holds.
func loadTestEmulator(t *testing.T, b *rom.Builder) *Emulator {
	t.Helper()

	cart, err := memory.NewCartridge(b.Build())
	require.NoError(t, err)

	emu := New()
	require.NoError(t, emu.Load(rom.BootStub(), cart))
	emu.Pacer.Enabled = false
	return emu
}

// TestRunFrameExecutesOneFrame: a frame of NOPs consumes at least 17556
// m-cycles and carries the overshoot into the next frame.
func TestRunFrameExecutesOneFrame(t *testing.T) {
	emu := loadTestEmulator(t, rom.NewBuilder("NOPS"))
	emu.Start()

	require.NoError(t, emu.RunFrame())

	assert.GreaterOrEqual(t, emu.CyclesPerFrame, uint32(ppu.FrameCycles))
	assert.Less(t, emu.CyclesPerFrame, uint32(ppu.FrameCycles)+8, "overshoot bounded by one instruction")
}

// TestRunFrameRespectsPause: a paused emulator does nothing.
func TestRunFrameRespectsPause(t *testing.T) {
	emu := loadTestEmulator(t, rom.NewBuilder("NOPS"))
	emu.Start()
	emu.Pause()

	pc := emu.CPU.PC
	require.NoError(t, emu.RunFrame())
	assert.Equal(t, pc, emu.CPU.PC)
}

// TestBootStubHandsOffToCartridge: the stub unmaps the boot ROM and falls
// through to the entry point.
func TestBootStubHandsOffToCartridge(t *testing.T) {
	b := rom.NewBuilder("HANDOFF")
	// Entry: JP $0150; at $0150 an infinite JR loop.
	b.At(0x0100).Emit(0x00, 0xC3, 0x50, 0x01)
	b.At(0x0150).Emit(0x18, 0xFE)

	emu := loadTestEmulator(t, b)
	emu.Start()
	require.NoError(t, emu.RunFrame())

	assert.False(t, emu.Mem.BootROMMapped(), "stub disabled the overlay")
	assert.Equal(t, uint16(0x0150), emu.CPU.PC, "spinning at the loop")
}

// TestInvalidOpcodeAbortsFrame: an undefined byte surfaces as a RunFrame
// error.
func TestInvalidOpcodeAbortsFrame(t *testing.T) {
	b := rom.NewBuilder("BAD")
	b.At(0x0100).Emit(0xD3)

	emu := loadTestEmulator(t, b)
	emu.Start()

	err := emu.RunFrame()
	require.Error(t, err)
}

// TestFramebufferRendered: a cartridge that paints the background solid
// produces a uniformly dark framebuffer.
func TestFramebufferRendered(t *testing.T) {
	b := rom.NewBuilder("SOLID")
	b.At(0x0100).Emit(0x00, 0xC3, 0x50, 0x01)
	b.At(0x0150)
	b.Emit(0xF3)             // DI
	b.Emit(0x31, 0xFE, 0xFF) // LD SP,$FFFE
	b.Emit(0xAF)             // XOR A
	b.Emit(0xE0, 0x40)       // LCD off
	b.Emit(0x3E, 0xE4)       // LD A,$E4
	b.Emit(0xE0, 0x47)       // BGP
	// Tile 0 at $8000: solid color 3.
	b.Emit(0x21, 0x00, 0x80) // LD HL,$8000
	b.Emit(0x06, 0x10)       // LD B,$10
	b.Emit(0x3E, 0xFF)       // LD A,$FF
	b.Emit(0x22)             // LD (HL+),A
	b.Emit(0x05)             // DEC B
	b.Emit(0x20, 0xFC)       // JR NZ,-4
	// Tilemap stays all zeroes: every cell uses tile 0.
	b.Emit(0x3E, 0x91) // LD A,$91
	b.Emit(0xE0, 0x40) // LCD on
	b.Emit(0x18, 0xFE) // JR -2

	emu := loadTestEmulator(t, b)
	emu.Start()
	// Two frames: the first one runs the setup code with the LCD off.
	require.NoError(t, emu.RunFrame())
	require.NoError(t, emu.RunFrame())

	dark := uint32(0xFF0F380F)
	assert.Equal(t, dark, emu.Framebuffer[0])
	assert.Equal(t, dark, emu.Framebuffer[80*ppu.ScreenWidth+80])
	assert.Equal(t, dark, emu.Framebuffer[143*ppu.ScreenWidth+159])
}

// TestReset rebuilds the core at the power-on state.
func TestReset(t *testing.T) {
	emu := loadTestEmulator(t, rom.NewBuilder("RESET"))
	emu.Start()
	require.NoError(t, emu.RunFrame())
	require.NotEqual(t, uint16(0), emu.CPU.PC)

	require.NoError(t, emu.Reset())
	assert.Equal(t, uint16(0), emu.CPU.PC)
	assert.True(t, emu.Mem.BootROMMapped())
}

// TestStepInstruction drives exactly one instruction with the PPU in tow.
func TestStepInstruction(t *testing.T) {
	emu := loadTestEmulator(t, rom.NewBuilder("STEP"))
	// Enable the LCD so the PPU consumes the cycles.
	emu.Mem.WriteByte(memory.AddrLCDC, 0x91)

	cycles, err := emu.StepInstruction()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cycles, "boot stub starts with a NOP")
	assert.Equal(t, uint16(1), emu.CPU.PC)
	assert.Equal(t, cycles, emu.PPU.FrameCycle(), "PPU advanced in lockstep")
}
