package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"dotmatrix/internal/cpu"
	"dotmatrix/internal/emulator"
	"dotmatrix/internal/memory"
)

// model is the bubbletea state for the step debugger: the emulator plus
// what the last step looked like.
type model struct {
	emu    *emulator.Emulator
	prevPC uint16
	cycles uint32
	err    error
}

// Init performs no initial command.
func (m model) Init() tea.Cmd {
	return nil
}

// Update reacts to keys: space/j steps one instruction, f runs a whole
// frame, q quits.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.emu.CPU.PC
			cycles, err := m.emu.StepInstruction()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.cycles = cycles

		case "f":
			m.prevPC = m.emu.CPU.PC
			m.emu.Start()
			if err := m.emu.RunFrame(); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.emu.Stop()
		}
	}
	return m, nil
}

// renderPage renders 16 bytes of memory as one line, highlighting PC.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		b := m.emu.Mem.ReadByte(start + i)
		if start+i == m.emu.CPU.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

// pageTable renders the memory rows around PC plus the stack top.
func (m model) pageTable() string {
	header := "addr | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}

	rows := []string{header}
	base := m.emu.CPU.PC &^ 0xF
	for i := -2; i <= 2; i++ {
		rows = append(rows, m.renderPage(uint16(int(base)+i*16)))
	}
	rows = append(rows, "")
	rows = append(rows, m.renderPage(m.emu.CPU.SP&^0xF))
	return strings.Join(rows, "\n")
}

// status renders registers and flags.
func (m model) status() string {
	c := m.emu.CPU
	var flags string
	for _, flag := range []bool{
		c.Regs.GetFlag(cpu.FlagZ),
		c.Regs.GetFlag(cpu.FlagN),
		c.Regs.GetFlag(cpu.FlagH),
		c.Regs.GetFlag(cpu.FlagC),
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
SP: %04x
AF: %04x
BC: %04x
DE: %04x
HL: %04x
LY: %02x  cyc: %d
Z N H C
`,
		c.PC, m.prevPC,
		c.SP,
		c.Regs.GetPair(cpu.PairAF),
		c.Regs.GetPair(cpu.PairBC),
		c.Regs.GetPair(cpu.PairDE),
		c.Regs.GetPair(cpu.PairHL),
		m.emu.Mem.LY(), m.cycles,
	) + flags
}

// View renders the debugger screen: memory and registers side by side,
// with the decoded next instruction below.
func (m model) View() string {
	var next string
	if inst, size, cycles, err := cpu.Decode(m.emu.Mem, m.emu.CPU.PC); err == nil {
		next = fmt.Sprintf("next: %s  (size %d)\n%s", inst, size,
			spew.Sdump(inst, cycles))
	} else {
		next = fmt.Sprintf("next: %v", err)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		next,
		"[space/j] step  [f] frame  [q] quit",
	)
}

func main() {
	flag.Parse()

	bootPath := flag.Arg(0)
	romPath := flag.Arg(1)
	if bootPath == "" {
		bootPath = os.Getenv("BOOTROM")
	}
	if romPath == "" {
		romPath = os.Getenv("ROM")
	}
	if bootPath == "" || romPath == "" {
		fmt.Println("Usage: debugger <bootrom> <rom>")
		fmt.Println("  or set the BOOTROM and ROM environment variables")
		os.Exit(1)
	}

	bootROM, err := memory.LoadBootROM(bootPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cart, err := memory.LoadCartridge(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	emu := emulator.New()
	if err := emu.Load(bootROM, cart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// The debugger owns the clock: no pacing, stepping only.
	emu.Pacer.Enabled = false

	final, err := tea.NewProgram(model{emu: emu}).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(model); ok && m.err != nil {
		fmt.Println("Error:", m.err)
		os.Exit(1)
	}
}
