package vm

import (
	"fmt"
	"io"

	"github.com/WillemNicolas/vulkyn/word"
)

// Interpreter is one execution context: a program plus its memory
// and the fetch-decode-execute engine over it. Per the design notes,
// no process-wide state is required — callers may instantiate several
// Interpreters in sequence, each owning its own Memory.
type Interpreter struct {
	Program *Program
	Memory  *Memory

	// Output receives DMP/RDMP writes, the VM's only I/O device.
	Output io.Writer

	// Trace, if non-nil, receives one line per executed step: the
	// instruction index, its opcode, and the flags word afterward.
	Trace io.Writer

	// MaxCycles caps the number of steps before the interpreter halts
	// with StateOK, so infinite loops in test programs terminate
	// (scenario 3 in the testable-properties list). 0 means unbounded.
	MaxCycles uint64

	cycles int
	halted bool
	final  State

	// callerBs saves Bs across nested calls so opRet can restore the
	// caller's frame base; Bs itself only ever holds the innermost
	// frame's base, per its register.go doc comment.
	callerBs []word.Word
}

// NewInterpreter builds an Interpreter over prog, with a stack capped
// at stackCap words (0 = unbounded) and at most maxCycles steps
// (0 = unbounded). DMP/RDMP output is written to output.
func NewInterpreter(prog *Program, stackCap int, maxCycles uint64, output io.Writer) *Interpreter {
	return &Interpreter{
		Program:   prog,
		Memory:    NewMemory(stackCap),
		Output:    output,
		MaxCycles: maxCycles,
	}
}

// Halted reports whether the interpreter has stopped.
func (it *Interpreter) Halted() bool { return it.halted }

// FinalState is the State recorded at halt (StateOK for a clean EXIT
// or a cycle-cap stop).
func (it *Interpreter) FinalState() State { return it.final }

// FlagSummary formats the one-line-per-set-bit halt report from §7.
func (it *Interpreter) FlagSummary() []string {
	mask := Flag(it.Memory.Registers.Get(Fl).AsU64())
	return summaryLines(mask)
}

// Run executes steps until the interpreter halts, either because it
// reached EXIT, ran off the end of the program, hit a non-OK state,
// or exhausted MaxCycles.
func (it *Interpreter) Run() error {
	for !it.halted {
		if err := it.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one instruction. It is a no-op once halted.
func (it *Interpreter) Step() error {
	if it.halted {
		return nil
	}
	if it.MaxCycles > 0 && uint64(it.cycles) >= it.MaxCycles {
		it.halted = true
		it.final = StateOK
		return nil
	}

	ni := it.Memory.Registers.Get(Ni).AsInt()
	if ni < 0 || ni >= len(it.Program.Instructions) {
		// Ran off the end of the image without EXIT: IllegalInstruction.
		it.writeFlagsAndMaybeHalt(StateIllegalInstruction)
		return nil
	}
	instr := it.Program.Instructions[ni]
	if instr.Op == OpExit {
		it.halted = true
		it.final = StateOK
		return nil
	}

	state := it.dispatch(instr)
	it.cycles++

	// Ni advances by exactly one after every instruction, including
	// branches that already overwrote it — so a branch target is
	// encoded as the index immediately before the intended landing
	// instruction. This is a deliberate, spec-mandated quirk, not a
	// bug: the original source's exec() loop calls next_instruction()
	// unconditionally after every run(instruction).
	it.Memory.Registers.Set(Ni, word.U64(uint64(it.Memory.Registers.Get(Ni).AsInt()+1)))

	if it.Trace != nil {
		fmt.Fprintf(it.Trace, "%04d %-8s fl=%#x\n", ni, instr.Op, uint64(state.Flag()))
	}

	it.writeFlagsAndMaybeHalt(state)
	return nil
}

func (it *Interpreter) writeFlagsAndMaybeHalt(state State) {
	it.final = state
	it.Memory.Registers.Set(Fl, word.U64(uint64(state.Flag())))
	if state.Flag()&FlagOK == 0 {
		it.halted = true
	}
}

func evalEither(m *Memory, e Either) word.Word {
	if e.IsReg {
		return m.Registers.Get(e.Reg)
	}
	return e.Word
}

func addrOpIndex(m *Memory, a AddrOp) int {
	base := m.Registers.Get(a.Reg).AsInt()
	return base + int(a.Offset)
}
