package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dotmatrix/internal/debug"
	"dotmatrix/internal/emulator"
	"dotmatrix/internal/memory"
	"dotmatrix/internal/ui/panels"
)

// uiTickHz is how often the panels refresh while the window is open.
const uiTickHz = 10

// inspector is a graphical state viewer: it runs the emulator headless in
// a background goroutine and shows registers, memory and the log.
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
		fmt.Println("Usage: inspector <bootrom> <rom>")
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

	logger := debug.NewLogger(10000)
	logger.SetComponentEnabled(debug.ComponentSystem, true)
	defer logger.Shutdown()

	emu := emulator.NewWithLogger(logger)
	if err := emu.Load(bootROM, cart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("dotmatrix inspector")

	registerPanel, updateRegisters := panels.RegisterViewer(emu, w)
	memoryPanel, updateMemory := panels.MemoryViewer(emu)
	logPanel, updateLog := panels.LogViewer(emu)

	tabs := container.NewAppTabs(
		container.NewTabItem("Registers", registerPanel),
		container.NewTabItem("Memory", memoryPanel),
		container.NewTabItem("Log", logPanel),
	)

	status := widget.NewLabel("paused")

	startBtn := widget.NewButton("Run", func() {
		if !emu.Running {
			emu.Start()
		} else {
			emu.Resume()
		}
		status.SetText("running")
	})
	pauseBtn := widget.NewButton("Pause", func() {
		emu.Pause()
		status.SetText("paused")
	})
	stepBtn := widget.NewButton("Step", func() {
		if emu.Running && !emu.Paused {
			return // stepping only makes sense while paused
		}
		if _, err := emu.StepInstruction(); err != nil {
			status.SetText(fmt.Sprintf("error: %v", err))
		}
		updateRegisters()
		updateMemory()
	})
	resetBtn := widget.NewButton("Reset", func() {
		emu.Pause()
		if err := emu.Reset(); err != nil {
			status.SetText(fmt.Sprintf("error: %v", err))
			return
		}
		status.SetText("reset; paused")
		updateRegisters()
		updateMemory()
	})

	controls := container.NewHBox(startBtn, pauseBtn, stepBtn, resetBtn, status)
	w.SetContent(container.NewBorder(controls, nil, nil, nil, tabs))
	w.Resize(fyne.NewSize(720, 480))

	// Frame loop: runs as fast as pacing allows while not paused.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if !emu.Running || emu.Paused {
				time.Sleep(20 * time.Millisecond)
				continue
			}
			if err := emu.RunFrame(); err != nil {
				emu.Stop()
				fyne.Do(func() {
					status.SetText(fmt.Sprintf("halted: %v", err))
				})
				return
			}
		}
	}()

	// Panel refresh tick.
	go func() {
		ticker := time.NewTicker(time.Second / uiTickHz)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fyne.Do(func() {
					updateRegisters()
					updateMemory()
					updateLog()
				})
			}
		}
	}()

	w.SetOnClosed(func() {
		close(stop)
		emu.Stop()
	})
	w.ShowAndRun()
}
