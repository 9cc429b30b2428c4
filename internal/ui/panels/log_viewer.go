package panels

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dotmatrix/internal/debug"
	"dotmatrix/internal/emulator"
)

// logViewerLines caps how many recent entries the panel renders per tick.
const logViewerLines = 200

// LogViewer creates a panel over the debug logger's ring buffer, with
// per-component enable toggles.
func LogViewer(emu *emulator.Emulator) (*fyne.Container, func()) {
	logText := widget.NewMultiLineEntry()
	logText.Wrapping = fyne.TextWrapOff
	logText.Disable()
	logScroll := container.NewScroll(logText)
	logScroll.SetMinSize(fyne.NewSize(620, 320))

	updateFunc := func() {
		if emu == nil || emu.Logger == nil {
			logText.SetText("logger not available\n")
			return
		}
		entries := emu.Logger.RecentEntries(logViewerLines)
		var b strings.Builder
		for i := range entries {
			b.WriteString(entries[i].Format())
			b.WriteString("\n")
		}
		logText.SetText(b.String())
	}

	toggles := container.NewHBox()
	for _, component := range debug.Components {
		component := component
		check := widget.NewCheck(string(component), func(enabled bool) {
			if emu != nil && emu.Logger != nil {
				emu.Logger.SetComponentEnabled(component, enabled)
			}
		})
		if emu != nil && emu.Logger != nil {
			check.SetChecked(emu.Logger.IsComponentEnabled(component))
		}
		toggles.Add(check)
	}

	clearBtn := widget.NewButton("Clear", func() {
		if emu != nil && emu.Logger != nil {
			emu.Logger.Clear()
			updateFunc()
		}
	})

	updateFunc()

	panel := container.NewVBox(
		widget.NewLabel("Log"),
		container.NewHBox(clearBtn),
		toggles,
		logScroll,
	)
	return panel, updateFunc
}
