package vm

import (
	"testing"

	"github.com/WillemNicolas/vulkyn/word"
)

func TestPushUpdatesTs(t *testing.T) {
	m := NewMemory(0)
	if err := m.Push(word.U64(1)); err != nil {
		t.Fatal(err)
	}
	if got := m.Registers.Get(Ts); !got.Equal(word.U64(0)) {
		t.Errorf("Ts after first push = %v, want U64(0)", got)
	}
	if err := m.Push(word.U64(2)); err != nil {
		t.Fatal(err)
	}
	if got := m.Registers.Get(Ts); !got.Equal(word.U64(1)) {
		t.Errorf("Ts after second push = %v, want U64(1)", got)
	}
}

func TestPushPopIdentity(t *testing.T) {
	m := NewMemory(0)
	w := word.I64(-7)
	if err := m.Push(w); err != nil {
		t.Fatal(err)
	}
	got, err := m.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(w) {
		t.Errorf("pop after push = %v, want %v", got, w)
	}
	if m.StackSize() != 0 {
		t.Errorf("stack size after push+pop = %d, want 0", m.StackSize())
	}
}

func TestPushPeekLeavesStackUnchanged(t *testing.T) {
	m := NewMemory(0)
	w := word.F64(3.5)
	_ = m.Push(w)
	got, err := m.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(w) {
		t.Errorf("peek = %v, want %v", got, w)
	}
	if m.StackSize() != 1 {
		t.Errorf("stack size after push+peek = %d, want 1", m.StackSize())
	}
}

func TestPopUnderflow(t *testing.T) {
	m := NewMemory(0)
	if _, err := m.Pop(); err != errStackUnderflow {
		t.Errorf("pop on empty stack = %v, want errStackUnderflow", err)
	}
}

func TestHeapReadAfterFree(t *testing.T) {
	m := NewMemory(0)
	addr, err := m.Alloc(4)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if _, err := m.HeapRead(addr, 4, 0); err != nil {
		t.Fatalf("read of live allocation failed: %v", err)
	}
	if err := m.Free(addr); err != nil {
		t.Fatalf("free failed: %v", err)
	}
	if _, err := m.HeapRead(addr, 1, 0); err != errSegFault {
		t.Errorf("read after free = %v, want errSegFault", err)
	}
}

func TestAllocRejectsOversizedBlock(t *testing.T) {
	m := NewMemory(0)
	m.HeapBlockWordsMax = 8
	if _, err := m.Alloc(9); err != errSegFault {
		t.Errorf("alloc(9) with max 8 = %v, want errSegFault", err)
	}
	if _, err := m.Alloc(8); err != nil {
		t.Errorf("alloc(8) with max 8 failed: %v", err)
	}
}

func TestInsertReservesSlotBeneathArgs(t *testing.T) {
	m := NewMemory(0)
	_ = m.Push(word.U64(10)) // argument already on the stack
	_ = m.Push(word.U64(20)) // another argument
	idx, err := m.Insert(word.U64(99), 2)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Errorf("insert index = %d, want 0", idx)
	}
	got, _ := m.StackRead(0)
	if !got.Equal(word.U64(99)) {
		t.Errorf("stack[0] = %v, want U64(99)", got)
	}
	got, _ = m.StackRead(1)
	if !got.Equal(word.U64(10)) {
		t.Errorf("stack[1] = %v, want U64(10)", got)
	}
}

func TestStackCleanPreservesReturnValue(t *testing.T) {
	m := NewMemory(0)
	_ = m.Push(word.U64(1)) // return address slot (Li)
	_ = m.Push(word.U64(2)) // frame local
	_ = m.Push(word.U64(3)) // frame local
	_ = m.Push(word.U64(42)) // return value
	if err := m.StackClean(0, 3); err != nil {
		t.Fatal(err)
	}
	if m.StackSize() != 1 {
		t.Fatalf("stack size after clean = %d, want 1", m.StackSize())
	}
	got, _ := m.StackRead(0)
	if !got.Equal(word.U64(42)) {
		t.Errorf("surviving word = %v, want U64(42)", got)
	}
}
