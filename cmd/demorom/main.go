package main

import (
	"fmt"
	"os"

	"dotmatrix/internal/rom"
)

// demorom builds a self-contained test cartridge (vertical stripes over
// the whole background) plus a stub boot ROM, for trying the emulator
// without real ROM images.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: demorom <output.gb> [bootstub.bin]")
		os.Exit(1)
	}

	b := rom.NewBuilder("STRIPES")

	// Entry point: NOP; JP $0150
	b.At(0x0100).Emit(0x00, 0xC3, 0x50, 0x01)

	b.At(0x0150)
	b.Emit(0xF3)             // DI
	b.Emit(0x31, 0xFE, 0xFF) // LD SP,$FFFE
	b.Emit(0xAF)             // XOR A
	b.Emit(0xE0, 0x40)       // LDH ($40),A    ; LCD off while we write VRAM
	b.Emit(0x3E, 0xE4)       // LD A,$E4
	b.Emit(0xE0, 0x47)       // LDH ($47),A    ; BGP: identity-ish palette

	// Tile 1 at $8010: all-ones bitplanes, a solid color-3 tile.
	b.Emit(0x21, 0x10, 0x80) // LD HL,$8010
	b.Emit(0x06, 0x10)       // LD B,$10
	b.Emit(0x3E, 0xFF)       // LD A,$FF
	b.Emit(0x22)             // .fill: LD (HL+),A
	b.Emit(0x05)             // DEC B
	b.Emit(0x20, 0xFC)       // JR NZ,.fill

	// Tilemap $9800..$9BFF: tile index = column parity, vertical stripes.
	b.Emit(0x21, 0x00, 0x98) // LD HL,$9800
	b.Emit(0x01, 0x00, 0x04) // LD BC,$0400
	b.Emit(0x7D)             // .map: LD A,L
	b.Emit(0xE6, 0x01)       // AND 1
	b.Emit(0x22)             // LD (HL+),A
	b.Emit(0x0B)             // DEC BC
	b.Emit(0x78)             // LD A,B
	b.Emit(0xB1)             // OR C
	b.Emit(0x20, 0xF7)       // JR NZ,.map

	b.Emit(0x3E, 0x91) // LD A,$91
	b.Emit(0xE0, 0x40) // LDH ($40),A    ; LCD on, BG on, tile data $8000
	b.Emit(0x76)       // HALT
	b.Emit(0x18, 0xFD) // JR back to the HALT

	if err := b.WriteFile(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", os.Args[1])

	if len(os.Args) > 2 {
		if err := os.WriteFile(os.Args[2], rom.BootStub(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", os.Args[2])
	}
}
