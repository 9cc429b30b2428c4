package main

import (
	"flag"
	"fmt"
	"os"

	"dotmatrix/internal/cpu"
	"dotmatrix/internal/debug"
	"dotmatrix/internal/emulator"
	"dotmatrix/internal/memory"
	"dotmatrix/internal/ui"
)

func main() {
	unlimited := flag.Bool("unlimited", false, "Run at unlimited speed (no frame limit)")
	scale := flag.Int("scale", 4, "Display scale (1-8)")
	enableLogging := flag.Bool("log", false, "Enable logging (disabled by default)")
	traceInstructions := flag.Bool("trace", false, "Trace every executed instruction (implies -log)")
	flag.Parse()

	// ROM paths come from positional args, falling back to the BOOTROM
	// and ROM environment variables.
	bootPath := flag.Arg(0)
	romPath := flag.Arg(1)
	if bootPath == "" {
		bootPath = os.Getenv("BOOTROM")
	}
	if romPath == "" {
		romPath = os.Getenv("ROM")
	}
	if bootPath == "" || romPath == "" {
		fmt.Println("Usage: emulator [flags] <bootrom> <rom>")
		fmt.Println("  or set the BOOTROM and ROM environment variables")
		fmt.Println("  -unlimited       Run at unlimited speed")
		fmt.Println("  -scale <1-8>     Display scale (default: 4)")
		fmt.Println("  -log             Enable logging")
		fmt.Println("  -trace           Trace every executed instruction")
		os.Exit(1)
	}

	if *scale < 1 || *scale > 8 {
		fmt.Fprintf(os.Stderr, "Error: scale must be between 1 and 8\n")
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
	if *enableLogging || *traceInstructions {
		logger.EnableAll()
		logger.SetMinLevel(debug.LogLevelDebug)
	}
	defer logger.Shutdown()

	emu := emulator.NewWithLogger(logger)
	if err := emu.Load(bootROM, cart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *traceInstructions {
		emu.SetTrace(cpu.TraceInstructions)
	}
	emu.Pacer.Enabled = !*unlimited

	title := cart.Title
	if title == "" {
		title = "dotmatrix"
	}

	fmt.Printf("Loaded %q (%d KiB)\n", cart.Title, len(cart.Data)/1024)
	fmt.Println("Controls:")
	fmt.Println("  Space  - Pause/Resume")
	fmt.Println("  Ctrl+R - Reset")
	fmt.Println("  Alt+F  - Toggle fullscreen")
	fmt.Println("  ESC    - Quit")

	display, err := ui.New(emu, title, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating UI: %v\n", err)
		os.Exit(1)
	}

	if err := display.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
