package panels

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dotmatrix/internal/emulator"
)

// memoryViewerRows is how many 16-byte rows the hex dump shows.
const memoryViewerRows = 16

// MemoryViewer creates a hex-dump panel over the emulator's address
// space, starting at a user-entered address.
func MemoryViewer(emu *emulator.Emulator) (*fyne.Container, func()) {
	baseAddr := uint16(0x0000)

	dumpText := widget.NewMultiLineEntry()
	dumpText.Wrapping = fyne.TextWrapOff
	dumpText.Disable()
	dumpScroll := container.NewScroll(dumpText)
	dumpScroll.SetMinSize(fyne.NewSize(520, 320))

	formatDump := func() string {
		if emu == nil || emu.Mem == nil {
			return "memory not available\n"
		}

		var b strings.Builder
		b.WriteString("addr   00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F\n")
		for row := 0; row < memoryViewerRows; row++ {
			addr := baseAddr + uint16(row*16)
			b.WriteString(fmt.Sprintf("$%04X ", addr))
			for col := 0; col < 16; col++ {
				b.WriteString(fmt.Sprintf(" %02X", emu.Mem.ReadByte(addr+uint16(col))))
			}
			b.WriteString("\n")
			if int(addr)+16 > 0xFFFF {
				break
			}
		}
		return b.String()
	}

	updateFunc := func() {
		dumpText.SetText(formatDump())
	}

	addrEntry := widget.NewEntry()
	addrEntry.SetPlaceHolder("address (hex, e.g. FF40)")
	addrEntry.OnSubmitted = func(s string) {
		s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "$"), "0x")
		if v, err := strconv.ParseUint(s, 16, 16); err == nil {
			// Align to a row so the dump reads cleanly.
			baseAddr = uint16(v) &^ 0xF
			updateFunc()
		}
	}

	goBtn := widget.NewButton("Go", func() {
		addrEntry.OnSubmitted(addrEntry.Text)
	})

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("Memory"),
		container.NewBorder(nil, nil, nil, goBtn, addrEntry),
		dumpScroll,
	)
	return panel, updateFunc
}
