package vm

import (
	"fmt"

	"github.com/WillemNicolas/vulkyn/word"
)

// Memory owns the stack, the heap, and the register file. Stack and
// heap errors are plain fmt.Errorf values rather than a bespoke
// sentinel type per failure kind, following the teacher's memory
// package idiom of not minting a new error type for every bounds
// check; the interpreter classifies them back into a State with
// StateForError (via errToState in executor_arith.go).
type Memory struct {
	Registers *Registers

	stack    []word.Word
	stackCap int // 0 = unbounded

	heap              map[uint64][]word.Word
	nextHeapID        uint64
	HeapBlockWordsMax int // 0 = unbounded; guards ALLOC against a pathological size
}

// NewMemory returns empty stack and heap segments with stackCap as
// the configured maximum stack depth (0 disables the check).
func NewMemory(stackCap int) *Memory {
	return &Memory{
		Registers: NewRegisters(),
		stack:     make([]word.Word, 0, 64),
		stackCap:  stackCap,
		heap:      make(map[uint64][]word.Word),
	}
}

// StackSize is the current number of words on the stack.
func (m *Memory) StackSize() int { return len(m.stack) }

func (m *Memory) syncTs() {
	if len(m.stack) == 0 {
		m.Registers.Set(Ts, word.U64(0))
		return
	}
	m.Registers.Set(Ts, word.U64(uint64(len(m.stack)-1)))
}

// Push appends w to the stack and updates Ts.
func (m *Memory) Push(w word.Word) error {
	if m.stackCap > 0 && len(m.stack) >= m.stackCap {
		return errStackOverflow
	}
	m.stack = append(m.stack, w)
	m.syncTs()
	return nil
}

// Extend appends every word in ws, in order, as if each were pushed
// individually, then syncs Ts once.
func (m *Memory) Extend(ws []word.Word) error {
	if m.stackCap > 0 && len(m.stack)+len(ws) > m.stackCap {
		return errStackOverflow
	}
	m.stack = append(m.stack, ws...)
	m.syncTs()
	return nil
}

// Pop removes and returns the top of the stack.
func (m *Memory) Pop() (word.Word, error) {
	if len(m.stack) == 0 {
		return word.Word{}, errStackUnderflow
	}
	w := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.syncTs()
	return w, nil
}

// Peek returns the top of the stack without removing it.
func (m *Memory) Peek() (word.Word, error) {
	if len(m.stack) == 0 {
		return word.Word{}, errStackSegFault
	}
	return m.stack[len(m.stack)-1], nil
}

// Insert inserts w so that its resulting index is size-depth (i.e. it
// ends up depth words below the current top), shifting everything
// above it up by one. It returns the index w lands at. Used by CALLP
// to reserve a return-address slot beneath already-pushed arguments.
func (m *Memory) Insert(w word.Word, depth int) (int, error) {
	size := len(m.stack)
	if depth > size {
		return 0, errStackUnderflow
	}
	idx := size - depth
	m.stack = append(m.stack, word.Word{})
	copy(m.stack[idx+1:], m.stack[idx:size])
	m.stack[idx] = w
	m.syncTs()
	return idx, nil
}

// StackRead reads the word at absolute stack index addr.
func (m *Memory) StackRead(addr int) (word.Word, error) {
	if addr < 0 || addr >= len(m.stack) {
		return word.Word{}, errStackSegFault
	}
	return m.stack[addr], nil
}

// StackReadRange reads a contiguous slice of size words starting at
// absolute stack index addr.
func (m *Memory) StackReadRange(addr, size int) ([]word.Word, error) {
	if addr < 0 || size < 0 || addr+size > len(m.stack) {
		return nil, errStackSegFault
	}
	out := make([]word.Word, size)
	copy(out, m.stack[addr:addr+size])
	return out, nil
}

// StackClean drains the half-open range [start, end), shifting
// everything at or after end down to start. It is used by RET to
// discard a call frame's locals while preserving the return value
// sitting at [end, stack_size).
func (m *Memory) StackClean(start, end int) error {
	if start < 0 || end < start || end > len(m.stack) {
		return errStackOverflow
	}
	m.stack = append(m.stack[:start], m.stack[end:]...)
	m.syncTs()
	return nil
}

// Alloc creates a fresh zero-initialized block of size words and
// returns its opaque address as a Word. Addresses are monotonically
// increasing and never reused, so a freed address can never alias a
// later live allocation. It fails if HeapBlockWordsMax is set and size
// exceeds it.
func (m *Memory) Alloc(size int) (word.Word, error) {
	if m.HeapBlockWordsMax > 0 && size > m.HeapBlockWordsMax {
		return word.Word{}, errSegFault
	}
	id := m.nextHeapID
	m.nextHeapID++
	block := make([]word.Word, size)
	for i := range block {
		block[i] = word.Zero()
	}
	m.heap[id] = block
	return word.U64(id), nil
}

// HeapRead copies size words from the block at addr, starting at word
// offset offset.
func (m *Memory) HeapRead(addr word.Word, size, offset int) ([]word.Word, error) {
	block, ok := m.heap[addr.AsU64()]
	if !ok {
		return nil, errSegFault
	}
	if offset < 0 || size < 0 || offset+size > len(block) {
		return nil, errSegFault
	}
	out := make([]word.Word, size)
	copy(out, block[offset:offset+size])
	return out, nil
}

// HeapWrite overwrites one word at word offset offset within the
// block at addr.
func (m *Memory) HeapWrite(w word.Word, addr word.Word, offset int) error {
	block, ok := m.heap[addr.AsU64()]
	if !ok {
		return errSegFault
	}
	if offset < 0 || offset >= len(block) {
		return errSegFault
	}
	block[offset] = w
	return nil
}

// Free drops the block at addr. The address becomes invalid: any
// later HeapRead/HeapWrite against it fails with SegFault.
func (m *Memory) Free(addr word.Word) error {
	if _, ok := m.heap[addr.AsU64()]; !ok {
		return errSegFault
	}
	delete(m.heap, addr.AsU64())
	return nil
}

var (
	errStackOverflow  = fmt.Errorf("stack overflow")
	errStackUnderflow = fmt.Errorf("stack underflow")
	errStackSegFault  = fmt.Errorf("stack segmentation fault")
	errSegFault       = fmt.Errorf("segmentation fault")
)

// StateForError classifies an error returned by Memory's methods into
// the State the interpreter should record, or StateOK with ok=false
// if err is nil or unrecognized.
func StateForError(err error) (State, bool) {
	switch err {
	case nil:
		return StateOK, false
	case errStackOverflow:
		return StateStackOverflow, true
	case errStackUnderflow:
		return StateStackUnderflow, true
	case errStackSegFault:
		return StateSegFault, true
	case errSegFault:
		return StateSegFault, true
	default:
		return StateOK, false
	}
}
