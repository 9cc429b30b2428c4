package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dotmatrix/internal/cpu"
	"dotmatrix/internal/emulator"
)

// RegisterViewer creates a panel showing CPU state in real time. It
// returns the container and an update function the inspector calls on its
// refresh tick.
func RegisterViewer(emu *emulator.Emulator, window fyne.Window) (*fyne.Container, func()) {
	registerText := widget.NewMultiLineEntry()
	registerText.Wrapping = fyne.TextWrapOff
	registerText.Disable() // read-only but selectable for copy/paste
	registerScroll := container.NewScroll(registerText)
	registerScroll.SetMinSize(fyne.NewSize(320, 320))

	formatState := func() string {
		if emu == nil || emu.CPU == nil {
			return "CPU not available\n"
		}
		c := emu.CPU

		text := "=== CPU Registers ===\n\n"
		text += fmt.Sprintf("  AF: $%04X   A: $%02X  F: $%02X\n", c.Regs.GetPair(cpu.PairAF), c.Regs.A, c.Regs.F)
		text += fmt.Sprintf("  BC: $%04X   B: $%02X  C: $%02X\n", c.Regs.GetPair(cpu.PairBC), c.Regs.B, c.Regs.C)
		text += fmt.Sprintf("  DE: $%04X   D: $%02X  E: $%02X\n", c.Regs.GetPair(cpu.PairDE), c.Regs.D, c.Regs.E)
		text += fmt.Sprintf("  HL: $%04X   H: $%02X  L: $%02X\n", c.Regs.GetPair(cpu.PairHL), c.Regs.H, c.Regs.L)
		text += fmt.Sprintf("\n  PC: $%04X  SP: $%04X\n", c.PC, c.SP)

		flag := func(f uint8) int {
			if c.Regs.GetFlag(f) {
				return 1
			}
			return 0
		}
		text += fmt.Sprintf("\nFlags:  Z=%d N=%d H=%d C=%d\n",
			flag(cpu.FlagZ), flag(cpu.FlagN), flag(cpu.FlagH), flag(cpu.FlagC))
		text += fmt.Sprintf("IME: %v  Halted: %v\n", c.IME, c.Halted())

		if inst, _, _, err := cpu.Decode(c.Mem, c.PC); err == nil {
			text += fmt.Sprintf("\nNext: %s\n", inst)
		} else {
			text += fmt.Sprintf("\nNext: %v\n", err)
		}

		text += fmt.Sprintf("\nRunning: %v  Paused: %v\n", emu.Running, emu.Paused)
		text += fmt.Sprintf("Cycles/frame: %d  FPS: %.1f\n", emu.CyclesPerFrame, emu.FPS)
		return text
	}

	updateFunc := func() {
		registerText.SetText(formatState())
	}

	copyBtn := widget.NewButton("Copy All", func() {
		if registerText.Text != "" && window != nil {
			window.Clipboard().SetContent(registerText.Text)
		}
	})

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("CPU Registers"),
		container.NewHBox(copyBtn),
		registerScroll,
	)
	return panel, updateFunc
}
