package cpu

import (
	"fmt"

	"dotmatrix/internal/debug"
)

// TraceLevel controls how much of the instruction stream is logged.
type TraceLevel int

const (
	TraceNone TraceLevel = iota
	TraceBranches
	TraceInstructions
)

// Trace feeds executed instructions to the debug logger as disassembly
// lines with register state. At TraceBranches only control flow is logged,
// which keeps the output readable when chasing a wild jump.
type Trace struct {
	logger *debug.Logger
	level  TraceLevel
}

// NewTrace creates a trace adapter over the debug logger.
func NewTrace(logger *debug.Logger, level TraceLevel) *Trace {
	return &Trace{logger: logger, level: level}
}

// SetLevel changes the trace granularity.
func (t *Trace) SetLevel(level TraceLevel) {
	t.level = level
}

// Instruction logs one decoded instruction about to execute at pc.
func (t *Trace) Instruction(pc uint16, inst Instruction, c *CPU) {
	if t.logger == nil || t.level == TraceNone {
		return
	}
	if t.level == TraceBranches && !isControlFlow(inst.Op) {
		return
	}
	t.logger.Logf(debug.ComponentCPU, debug.LogLevelDebug,
		"$%04X  %-16s AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X IME=%v",
		pc, inst.String(),
		c.Regs.GetPair(PairAF), c.Regs.GetPair(PairBC),
		c.Regs.GetPair(PairDE), c.Regs.GetPair(PairHL),
		c.SP, c.IME)
}

// Error logs a fatal decode error.
func (t *Trace) Error(err error) {
	if t.logger == nil {
		return
	}
	t.logger.Log(debug.ComponentCPU, debug.LogLevelError, fmt.Sprintf("decode: %v", err))
}

func isControlFlow(op Op) bool {
	switch op {
	case OpJump, OpJumpRelative, OpJumpHL, OpCall, OpReturn, OpReturnInterrupt, OpRestart:
		return true
	default:
		return false
	}
}
