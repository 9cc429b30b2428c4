package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invalidOpcodes are the eleven undefined SM83 opcode bytes.
var invalidOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true, 0xEB: true,
	0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// expectedSize returns the byte size of every defined unprefixed opcode.
func expectedSize(opcode uint8) uint16 {
	switch opcode {
	case 0x10, 0xCB: // STOP padding byte, prefix page
		return 2
	case 0x01, 0x11, 0x21, 0x31, // LD rr,d16
		0x08,                         // LD (a16),SP
		0xC2, 0xC3, 0xCA, 0xD2, 0xDA, // JP
		0xC4, 0xCC, 0xCD, 0xD4, 0xDC, // CALL
		0xEA, 0xFA: // LD (a16),A / LD A,(a16)
		return 3
	case 0x18, 0x20, 0x28, 0x30, 0x38, // JR
		0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E, // LD r,d8
		0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE, // ALU d8
		0xE0, 0xF0, // LDH
		0xE8, 0xF8: // ADD SP,s8 / LD HL,SP+s8
		return 2
	default:
		return 1
	}
}

// TestDecodeCoversAllOpcodes decodes every byte value: the 245 defined
// opcodes produce an instruction whose size matches the bytes consumed,
// and the 11 undefined ones produce InvalidOpcodeError.
func TestDecodeCoversAllOpcodes(t *testing.T) {
	defined := 0
	for op := 0; op <= 0xFF; op++ {
		bus := &flatBus{}
		bus.mem[0x0200] = uint8(op)
		// Plausible operand bytes; also the CB suffix when op == 0xCB.
		bus.mem[0x0201] = 0x34
		bus.mem[0x0202] = 0x12

		inst, size, cycles, err := Decode(bus, 0x0200)
		if invalidOpcodes[uint8(op)] {
			require.Error(t, err, "opcode 0x%02X must be invalid", op)
			invalid, ok := err.(*InvalidOpcodeError)
			require.True(t, ok, "opcode 0x%02X: wrong error type %T", op, err)
			assert.Equal(t, uint8(op), invalid.Opcode)
			continue
		}

		require.NoError(t, err, "opcode 0x%02X must decode", op)
		defined++
		assert.Equal(t, expectedSize(uint8(op)), size, "opcode 0x%02X size", op)
		assert.NotZero(t, cycles.Taken, "opcode 0x%02X has no cycle cost", op)
		assert.NotEmpty(t, inst.String(), "opcode 0x%02X has no disassembly", op)
	}
	assert.Equal(t, 245, defined, "defined unprefixed opcode count")
}

// TestDecodePrefixedCoversAllSuffixes: every 0xCB suffix decodes to a
// prefixed operation of size 2.
func TestDecodePrefixedCoversAllSuffixes(t *testing.T) {
	for suffix := 0; suffix <= 0xFF; suffix++ {
		bus := &flatBus{}
		bus.mem[0x0200] = 0xCB
		bus.mem[0x0201] = uint8(suffix)

		inst, size, cycles, err := Decode(bus, 0x0200)
		require.NoError(t, err, "CB %02X", suffix)
		assert.Equal(t, uint16(2), size, "CB %02X size", suffix)

		// Register forms cost 2; (HL) forms cost 4, except BIT at 3.
		expected := uint32(2)
		if suffix&0x7 == 6 {
			if inst.Op == OpBitTest {
				expected = 3
			} else {
				expected = 4
			}
		}
		assert.Equal(t, expected, cycles.Taken, "CB %02X cycles", suffix)
	}
}

// TestDecodeOperands spot-checks decoded operand structure against the
// opcode table.
func TestDecodeOperands(t *testing.T) {
	cases := []struct {
		name    string
		program []uint8
		want    Instruction
	}{
		{"LD B,C", []uint8{0x41}, Instruction{Op: OpLoad8, Dst: OperandB, Src: OperandC}},
		{"LD A,(HL+)", []uint8{0x2A}, Instruction{Op: OpLoad8, Dst: OperandA, Src: OperandHLIncIndirect}},
		{"LD (HL-),A", []uint8{0x32}, Instruction{Op: OpLoad8, Dst: OperandHLDecIndirect, Src: OperandA}},
		{"LD (C),A", []uint8{0xE2}, Instruction{Op: OpLoad8, Dst: OperandCHigh, Src: OperandA}},
		{"LDH A,(a8)", []uint8{0xF0, 0x44}, Instruction{Op: OpLoad8, Dst: OperandA, Src: OperandHighAddr, Imm: 0x44}},
		{"LD SP,d16", []uint8{0x31, 0xFE, 0xFF}, Instruction{Op: OpLoad16, Dst: OperandSP, Src: OperandImm16, Imm: 0xFFFE}},
		{"LD (a16),SP", []uint8{0x08, 0x00, 0xC0}, Instruction{Op: OpLoad16, Dst: OperandAddr, Src: OperandSP, Imm: 0xC000}},
		{"LD HL,SP+s8", []uint8{0xF8, 0xFE}, Instruction{Op: OpLoad16, Dst: OperandHL, Src: OperandSPPlusImm8, Imm: 0xFE}},
		{"ADD A,(HL)", []uint8{0x86}, Instruction{Op: OpAdd, Src: OperandHLIndirect}},
		{"SBC A,d8", []uint8{0xDE, 0x05}, Instruction{Op: OpSubCarry, Src: OperandImm8, Imm: 0x05}},
		{"INC (HL)", []uint8{0x34}, Instruction{Op: OpIncrement, Dst: OperandHLIndirect}},
		{"DEC SP", []uint8{0x3B}, Instruction{Op: OpDecrementPtr, Dst: OperandSP}},
		{"ADD HL,DE", []uint8{0x19}, Instruction{Op: OpAddPtr, Dst: OperandHL, Src: OperandDE}},
		{"JR NZ", []uint8{0x20, 0xFB}, Instruction{Op: OpJumpRelative, Cond: CondNZ, Imm: 0xFB}},
		{"JP NC,a16", []uint8{0xD2, 0x00, 0x80}, Instruction{Op: OpJump, Cond: CondNC, Imm: 0x8000}},
		{"RET Z", []uint8{0xC8}, Instruction{Op: OpReturn, Cond: CondZ}},
		{"PUSH AF", []uint8{0xF5}, Instruction{Op: OpPush, Dst: OperandAF}},
		{"POP BC", []uint8{0xC1}, Instruction{Op: OpPop, Dst: OperandBC}},
		{"RST $28", []uint8{0xEF}, Instruction{Op: OpRestart, Bit: 5}},
		{"BIT 7,H", []uint8{0xCB, 0x7C}, Instruction{Op: OpBitTest, Dst: OperandH, Bit: 7}},
		{"SET 3,(HL)", []uint8{0xCB, 0xDE}, Instruction{Op: OpBitSet, Dst: OperandHLIndirect, Bit: 3}},
		{"SWAP A", []uint8{0xCB, 0x37}, Instruction{Op: OpSwap, Dst: OperandA}},
		{"SRL B", []uint8{0xCB, 0x38}, Instruction{Op: OpShiftRightLogical, Dst: OperandB}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := &flatBus{}
			copy(bus.mem[0x0100:], tc.program)
			inst, _, _, err := Decode(bus, 0x0100)
			require.NoError(t, err)
			assert.Equal(t, tc.want, inst)
		})
	}
}

// TestDecodeIsPure: decoding performs no writes.
func TestDecodeIsPure(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x0100] = 0x36 // LD (HL),d8
	bus.mem[0x0101] = 0x77
	before := bus.mem

	_, _, _, err := Decode(bus, 0x0100)
	require.NoError(t, err)
	assert.Equal(t, before, bus.mem)
}

// TestInstructionStrings checks the disassembly forms used by the trace
// logger and the debugger.
func TestInstructionStrings(t *testing.T) {
	cases := []struct {
		inst Instruction
		want string
	}{
		{Instruction{Op: OpNop}, "NOP"},
		{Instruction{Op: OpHalt}, "HALT"},
		{Instruction{Op: OpLoad8, Dst: OperandA, Src: OperandCHigh}, "LD A,(C)"},
		{Instruction{Op: OpLoad8, Dst: OperandA, Src: OperandHLIncIndirect}, "LD A,(HL+)"},
		{Instruction{Op: OpLoad16, Dst: OperandHL, Src: OperandSPPlusImm8, Imm: 0x0F}, "LD HL,SP+15"},
		{Instruction{Op: OpAdd, Src: OperandB}, "ADD A,B"},
		{Instruction{Op: OpSub, Src: OperandHLIndirect}, "SUB (HL)"},
		{Instruction{Op: OpXor, Src: OperandImm8, Imm: 0x10}, "XOR $10"},
		{Instruction{Op: OpIncrement, Dst: OperandA}, "INC A"},
		{Instruction{Op: OpDecrementPtr, Dst: OperandSP}, "DEC SP"},
		{Instruction{Op: OpAddPtr, Dst: OperandSP, Src: OperandImm8Signed, Imm: 0x19}, "ADD SP,25"},
		{Instruction{Op: OpJump, Cond: CondNZ, Imm: 0x8000}, "JP NZ,$8000"},
		{Instruction{Op: OpJumpRelative, Imm: 0xFE}, "JR -2"},
		{Instruction{Op: OpReturn}, "RET"},
		{Instruction{Op: OpReturn, Cond: CondC}, "RET C"},
		{Instruction{Op: OpRestart, Bit: 7}, "RST $38"},
		{Instruction{Op: OpBitTest, Dst: OperandH, Bit: 7}, "BIT 7,H"},
		{Instruction{Op: OpSwap, Dst: OperandA}, "SWAP A"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.inst.String())
	}
}
