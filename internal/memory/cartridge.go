package memory

import (
	"fmt"
	"os"
	"strings"
)

// Cartridge header offsets.
const (
	headerTitleStart = 0x0134
	headerTitleEnd   = 0x0143
	headerCartType   = 0x0147
)

// Cartridge holds a loaded ROM image and the header fields the emulator
// cares about. Only plain ROM cartridges (no MBC) are supported.
type Cartridge struct {
	Data  []uint8
	Title string
	Type  uint8
}

// LoadCartridge reads and validates a cartridge image from disk.
func LoadCartridge(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge %s: %w", path, err)
	}
	return NewCartridge(data)
}

// NewCartridge validates a cartridge image already in memory.
func NewCartridge(data []uint8) (*Cartridge, error) {
	if len(data) < 0x8000 {
		return nil, fmt.Errorf("cartridge too small: %d bytes (need at least 32 KiB)", len(data))
	}

	cart := &Cartridge{
		Data:  data,
		Title: parseTitle(data),
		Type:  data[headerCartType],
	}
	if cart.Type != 0x00 {
		return nil, fmt.Errorf("unsupported cartridge type 0x%02X (only ROM-only cartridges)", cart.Type)
	}
	return cart, nil
}

// LoadBootROM reads the 256-byte boot ROM image from disk.
func LoadBootROM(path string) ([]uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boot ROM %s: %w", path, err)
	}
	if len(data) != 0x100 {
		return nil, fmt.Errorf("boot ROM %s must be 256 bytes, got %d", path, len(data))
	}
	return data, nil
}

// parseTitle extracts the ASCII title from the cartridge header.
func parseTitle(data []uint8) string {
	raw := data[headerTitleStart : headerTitleEnd+1]
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(raw[:end]))
}
