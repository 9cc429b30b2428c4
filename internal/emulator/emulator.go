package emulator

import (
	"fmt"
	"time"

	"dotmatrix/internal/clock"
	"dotmatrix/internal/cpu"
	"dotmatrix/internal/debug"
	"dotmatrix/internal/memory"
	"dotmatrix/internal/ppu"
)

// Emulator owns the core and drives it in lockstep: the CPU executes one
// instruction, the PPU advances by the cycles the CPU just spent. The
// memory belongs to the CPU and is lent to the PPU for each step; the PPU
// keeps no handle across steps.
type Emulator struct {
	Mem *memory.Memory
	CPU *cpu.CPU
	PPU *ppu.PPU

	// Framebuffer is the 160x144 ARGB output the host presents.
	Framebuffer []uint32

	Logger *debug.Logger
	Pacer  *clock.FramePacer

	Running bool
	Paused  bool

	// Performance accounting for the front ends.
	FPS            float64
	CyclesPerFrame uint32
	frameCount     uint64
	fpsUpdateTime  time.Time

	// Cycles executed past the frame boundary, carried into the next frame.
	cycleCarry uint32

	cart *cartState
}

// cartState remembers the loaded images so Reset can rebuild the address
// space from scratch.
type cartState struct {
	bootROM []uint8
	cart    *memory.Cartridge
}

// New creates an emulator with a quiet logger.
func New() *Emulator {
	return NewWithLogger(debug.NewLogger(10000))
}

// NewWithLogger creates an emulator sharing the given logger.
func NewWithLogger(logger *debug.Logger) *Emulator {
	return &Emulator{
		Framebuffer:   make([]uint32, ppu.ScreenWidth*ppu.ScreenHeight),
		Logger:        logger,
		Pacer:         clock.NewFramePacer(clock.TargetFPS),
		fpsUpdateTime: time.Now(),
	}
}

// Load builds the core from a boot ROM image and a cartridge.
func (e *Emulator) Load(bootROM []uint8, cart *memory.Cartridge) error {
	mem, err := memory.New(bootROM, cart)
	if err != nil {
		return fmt.Errorf("building memory map: %w", err)
	}

	e.Mem = mem
	e.CPU = cpu.New(mem)
	e.PPU = ppu.New(e.Logger)
	e.cart = &cartState{bootROM: bootROM, cart: cart}

	if e.Logger != nil {
		e.Logger.Logf(debug.ComponentSystem, debug.LogLevelInfo,
			"loaded cartridge %q (%d KiB)", cart.Title, len(cart.Data)/1024)
	}
	return nil
}

// SetTrace attaches an instruction trace at the given level.
func (e *Emulator) SetTrace(level cpu.TraceLevel) {
	if e.CPU != nil {
		e.CPU.Trace = cpu.NewTrace(e.Logger, level)
	}
}

// RunFrame executes one video frame: CPU and PPU in lockstep until 17556
// m-cycles have elapsed, then paces to the hardware frame rate. A decode
// error aborts the frame and is fatal to the caller's run loop.
func (e *Emulator) RunFrame() error {
	if !e.Running || e.Paused {
		return nil
	}

	frameCycles := e.cycleCarry
	for frameCycles < ppu.FrameCycles {
		cycles, err := e.CPU.Step()
		if err != nil {
			if e.Logger != nil {
				e.Logger.Logf(debug.ComponentCPU, debug.LogLevelError, "halting: %v", err)
			}
			return fmt.Errorf("cpu step: %w", err)
		}
		e.PPU.Step(cycles, e.Mem, e.Framebuffer)
		frameCycles += cycles
	}
	e.cycleCarry = frameCycles - ppu.FrameCycles
	e.CyclesPerFrame = frameCycles

	e.updateFPS()
	e.Pacer.Pace()
	return nil
}

// updateFPS refreshes the frames-per-second estimate once a second.
func (e *Emulator) updateFPS() {
	e.frameCount++
	now := time.Now()
	if elapsed := now.Sub(e.fpsUpdateTime); elapsed >= time.Second {
		e.FPS = float64(e.frameCount) / elapsed.Seconds()
		e.frameCount = 0
		e.fpsUpdateTime = now
	}
}

// Start begins emulation.
func (e *Emulator) Start() {
	e.Running = true
	e.Paused = false
	e.Pacer.Reset()
}

// Stop halts emulation.
func (e *Emulator) Stop() {
	e.Running = false
}

// Pause suspends emulation, keeping state.
func (e *Emulator) Pause() {
	e.Paused = true
}

// Resume continues after a pause.
func (e *Emulator) Resume() {
	e.Paused = false
	e.Pacer.Reset()
}

// Reset rebuilds the memory map from the loaded images and restarts the
// CPU and PPU from power-on state.
func (e *Emulator) Reset() error {
	if e.cart == nil {
		return fmt.Errorf("no cartridge loaded")
	}
	if err := e.Load(e.cart.bootROM, e.cart.cart); err != nil {
		return err
	}
	for i := range e.Framebuffer {
		e.Framebuffer[i] = 0
	}
	e.cycleCarry = 0
	return nil
}

// StepInstruction executes exactly one CPU instruction with the PPU in
// tow. The debugger front end uses this for single-stepping.
func (e *Emulator) StepInstruction() (uint32, error) {
	cycles, err := e.CPU.Step()
	if err != nil {
		return 0, err
	}
	e.PPU.Step(cycles, e.Mem, e.Framebuffer)
	return cycles, nil
}
