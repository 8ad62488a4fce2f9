package vm

import (
	"testing"

	"github.com/WillemNicolas/vulkyn/word"
)

func lit(w word.Word) Either { return Either{Word: w} }

// TestScenarioAdd covers "push 2 push 3 add exit".
func TestScenarioAdd(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(2))},
		{Op: OpPush, Either1: lit(word.U64(3))},
		{Op: OpAdd},
		{Op: OpExit},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK", it.FinalState())
	}
	if it.Memory.StackSize() != 1 {
		t.Fatalf("stack size = %d, want 1", it.Memory.StackSize())
	}
	got, _ := it.Memory.StackRead(0)
	if !got.Equal(word.U64(5)) {
		t.Errorf("stack top = %v, want U64(5)", got)
	}
}

// TestScenarioDivisionByZero covers "push 7 push 0 div exit".
func TestScenarioDivisionByZero(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(7))},
		{Op: OpPush, Either1: lit(word.U64(0))},
		{Op: OpDiv},
		{Op: OpExit},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateDivisionByZero {
		t.Fatalf("final state = %v, want StateDivisionByZero", it.FinalState())
	}
	if it.Memory.StackSize() != 0 {
		t.Errorf("stack size after failed div = %d, want 0 (both operands popped, no result pushed)", it.Memory.StackSize())
	}
}

// TestScenarioCycleCap covers the infinite-loop program
// "push 1 push 2 push 3 %lbl add add go %lbl exit" halting cleanly
// under a configured step cap rather than running forever.
func TestScenarioCycleCap(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(1))}, // 0
		{Op: OpPush, Either1: lit(word.U64(2))}, // 1
		{Op: OpPush, Either1: lit(word.U64(3))}, // 2
		{Op: OpAdd},                             // 3  (%lbl)
		{Op: OpAdd},                             // 4
		{Op: OpGo, Target: 2},                   // 5  lands on 3 after the post-increment
		{Op: OpExit},                             // 6
	}}
	it := NewInterpreter(prog, 0, 4, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if !it.Halted() {
		t.Fatal("expected interpreter to halt once MaxCycles is reached")
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK (cap reached cleanly)", it.FinalState())
	}
}

// TestScenarioHeapRoundTrip covers
// "alloc 4 smove r1 rwrite 42 r2 write 42 [r1|0] read [r1|0] 1 0 exit".
func TestScenarioHeapRoundTrip(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpAlloc, Size: 4},
		{Op: OpSmove, Reg: R1},
		{Op: OpRwrite, Literal: word.U64(42), Reg2: R2},
		{Op: OpWrite, Literal: word.U64(42), Addr: AddrOp{Reg: R1}},
		{Op: OpReadU, Addr: AddrOp{Reg: R1}, Size: 1},
		{Op: OpExit},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK", it.FinalState())
	}
	if it.Memory.StackSize() != 1 {
		t.Fatalf("stack size = %d, want 1", it.Memory.StackSize())
	}
	got, _ := it.Memory.StackRead(0)
	if !got.Equal(word.U64(42)) {
		t.Errorf("stack top = %v, want U64(42)", got)
	}
}

// TestScenarioCallReturnsValue covers
// "push 10 call %f exit %f push 1 add ret 1": CALL reserves the
// return slot beneath the caller's pushed argument, the callee adds
// 1 to it, and RET 1 drains everything but the top return value.
func TestScenarioCallReturnsValue(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(10))}, // 0
		{Op: OpCall, Target: 2},                   // 1  lands on 3 (%f) after post-increment
		{Op: OpExit},                               // 2
		{Op: OpPush, Either1: lit(word.U64(1))},   // 3  (%f)
		{Op: OpAdd},                                 // 4
		{Op: OpRet, Size: 1},                       // 5
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK", it.FinalState())
	}
	if it.Memory.StackSize() != 1 {
		t.Fatalf("stack size = %d, want 1, got stack %v", it.Memory.StackSize(), it.Memory.stack)
	}
	got, _ := it.Memory.StackRead(0)
	if !got.Equal(word.U64(11)) {
		t.Errorf("stack top = %v, want U64(11)", got)
	}
}

// TestScenarioLessThanPopOrder covers "push 5 push 3 lt exit": the
// top of stack (3) is popped first and the word beneath (5) second;
// the comparison is evaluated as (beneath OP top), i.e. 5 < 3, so the
// result is Bool(false).
func TestScenarioLessThanPopOrder(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(5))},
		{Op: OpPush, Either1: lit(word.U64(3))},
		{Op: OpLt},
		{Op: OpExit},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK", it.FinalState())
	}
	got, _ := it.Memory.StackRead(0)
	if !got.Equal(word.Bool(false)) {
		t.Errorf("stack top = %v, want Bool(false)", got)
	}
}

func TestIllegalInstructionWhenRunningOffEnd(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(1))},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateIllegalInstruction {
		t.Fatalf("final state = %v, want StateIllegalInstruction", it.FinalState())
	}
}

// TestCallSetsAndRetRestoresBs covers the same call/ret program as
// TestScenarioCallReturnsValue, checking that Bs tracks the callee's
// frame base while inside the call and is restored to the caller's
// value (0, since this is a top-level call) once RET runs.
func TestCallSetsAndRetRestoresBs(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.U64(10))}, // 0
		{Op: OpCall, Target: 2},                   // 1  lands on 3 (%f) after post-increment
		{Op: OpExit},                               // 2
		{Op: OpPush, Either1: lit(word.U64(1))},   // 3  (%f)
		{Op: OpAdd},                                 // 4
		{Op: OpRet, Size: 1},                       // 5
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Step(); err != nil { // push 10
		t.Fatal(err)
	}
	if err := it.Step(); err != nil { // call %f
		t.Fatal(err)
	}
	if got := it.Memory.Registers.Get(Bs).AsInt(); got != 0 {
		t.Errorf("Bs inside callee = %d, want 0 (the return slot's index)", got)
	}
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	if it.FinalState() != StateOK {
		t.Fatalf("final state = %v, want StateOK", it.FinalState())
	}
	if got := it.Memory.Registers.Get(Bs).AsInt(); got != 0 {
		t.Errorf("Bs after ret = %d, want 0 (restored caller value)", got)
	}
}

func TestBoolLeftOperandDominatesArithmetic(t *testing.T) {
	prog := &Program{Instructions: []Instruction{
		{Op: OpPush, Either1: lit(word.Bool(true))}, // pushed first: the left operand
		{Op: OpPush, Either1: lit(word.U64(99))},    // pushed second: the right operand
		{Op: OpAdd},
		{Op: OpExit},
	}}
	it := NewInterpreter(prog, 0, 0, nil)
	if err := it.Run(); err != nil {
		t.Fatal(err)
	}
	got, _ := it.Memory.StackRead(0)
	if !got.Equal(word.Bool(true)) {
		t.Errorf("stack top = %v, want Bool(true) (bool-as-left-operand quirk)", got)
	}
}
