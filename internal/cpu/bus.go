package cpu

// Bus is the CPU's view of the memory map. Implemented by memory.Memory;
// tests substitute flat fakes.
type Bus interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, value uint8)
	ReadWord(addr uint16) uint16
	WriteWord(addr uint16, value uint16)
}
