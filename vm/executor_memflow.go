package vm

import (
	"fmt"

	"github.com/WillemNicolas/vulkyn/word"
)

func (it *Interpreter) dispatchMemoryOrFlow(instr Instruction) State {
	switch instr.Op {
	case OpPush:
		return it.opPush(instr.Either1)
	case OpPop:
		return it.opPop()
	case OpScopy:
		return it.opScopy(instr.Reg)
	case OpSmove:
		return it.opSmove(instr.Reg)
	case OpRcopy:
		return it.opRcopy(instr.Reg, instr.Reg2)
	case OpRmove:
		return it.opRmove(instr.Reg, instr.Reg2)
	case OpRwrite:
		it.Memory.Registers.Set(instr.Reg2, instr.Literal)
		return StateOK

	case OpLoad:
		return it.opLoad(instr.Addr, 1)
	case OpLoadb:
		return it.opLoad(instr.Addr, instr.Size)
	case OpReadU:
		return it.opRead(instr.Addr, instr.Size, instr.Offset, false)
	case OpReadD:
		return it.opRead(instr.Addr, instr.Size, instr.Offset, true)
	case OpSreadU:
		return it.opSRead(instr.Size, instr.Offset, false)
	case OpSreadD:
		return it.opSRead(instr.Size, instr.Offset, true)
	case OpWrite:
		return it.opWrite(instr.Literal, instr.Addr)
	case OpSwrite:
		return it.opSWrite()

	case OpAlloc:
		addr, err := it.Memory.Alloc(instr.Size)
		if err != nil {
			return errToState(err)
		}
		if err := it.Memory.Push(addr); err != nil {
			return errToState(err)
		}
		return StateOK
	case OpFree:
		addr := word.U64(uint64(addrOpIndex(it.Memory, instr.Addr)))
		if err := it.Memory.Free(addr); err != nil {
			return errToState(err)
		}
		return StateOK
	case OpSfree:
		addr, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		if err := it.Memory.Free(addr); err != nil {
			return errToState(err)
		}
		return StateOK

	case OpDmp:
		w, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		it.dump(w)
		return StateOK
	case OpRDmp:
		it.dump(evalEither(it.Memory, instr.Either1))
		return StateOK

	case OpGo:
		it.Memory.Registers.Set(Ni, word.U64(uint64(instr.Target)))
		return StateOK
	case OpGoif:
		w, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		if !w.IsZero() {
			it.Memory.Registers.Set(Ni, word.U64(uint64(instr.Target)))
		}
		return StateOK
	case OpRGoif:
		if !it.Memory.Registers.Get(instr.Reg).IsZero() {
			it.Memory.Registers.Set(Ni, word.U64(uint64(instr.Target)))
		}
		return StateOK

	case OpCall:
		return it.opCall(instr.Target)
	case OpCallp:
		return it.opCallp(instr.Target, instr.Size)
	case OpScall:
		target, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		return it.opCall(target.AsInt())
	case OpScallp:
		target, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		return it.opCallp(target.AsInt(), instr.Size)
	case OpRcall:
		return it.opCall(it.Memory.Registers.Get(instr.Reg).AsInt())
	case OpRcallp:
		return it.opCallp(it.Memory.Registers.Get(instr.Reg).AsInt(), instr.Size)
	case OpRet:
		return it.opRet(instr.Size)

	default:
		return StateIllegalInstruction
	}
}

func (it *Interpreter) opPush(e Either) State {
	if err := it.Memory.Push(evalEither(it.Memory, e)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) opPop() State {
	if _, err := it.Memory.Pop(); err != nil {
		return StateStackUnderflow
	}
	return StateOK
}

func (it *Interpreter) opScopy(reg Register) State {
	w, err := it.Memory.Peek()
	if err != nil {
		return errToState(err)
	}
	it.Memory.Registers.Set(reg, w)
	return StateOK
}

func (it *Interpreter) opSmove(reg Register) State {
	w, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	it.Memory.Registers.Set(reg, w)
	return StateOK
}

func (it *Interpreter) opRcopy(from, to Register) State {
	it.Memory.Registers.Set(to, it.Memory.Registers.Get(from))
	return StateOK
}

func (it *Interpreter) opRmove(from, to Register) State {
	it.Memory.Registers.Set(to, it.Memory.Registers.Get(from))
	it.Memory.Registers.Set(from, word.U64(0))
	return StateOK
}

func (it *Interpreter) opLoad(addr AddrOp, size int) State {
	idx := addrOpIndex(it.Memory, addr)
	words, err := it.Memory.StackReadRange(idx, size)
	if err != nil {
		return errToState(err)
	}
	if err := it.Memory.Extend(words); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) opRead(addr AddrOp, size, offset int, reverse bool) State {
	base := word.U64(uint64(addrOpIndex(it.Memory, addr)))
	return it.heapReadPush(base, size, offset, reverse)
}

func (it *Interpreter) opSRead(size, offset int, reverse bool) State {
	addr, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	return it.heapReadPush(addr, size, offset, reverse)
}

func (it *Interpreter) heapReadPush(addr word.Word, size, offset int, reverse bool) State {
	words, err := it.Memory.HeapRead(addr, size, offset)
	if err != nil {
		return errToState(err)
	}
	if reverse {
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
	}
	if err := it.Memory.Extend(words); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) opWrite(w word.Word, addr AddrOp) State {
	base := word.U64(uint64(addrOpIndex(it.Memory, addr)))
	if err := it.Memory.HeapWrite(w, base, 0); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) opSWrite() State {
	addr, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	val, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	if err := it.Memory.HeapWrite(val, addr, 0); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) dump(w word.Word) {
	if it.Output == nil {
		return
	}
	fmt.Fprintln(it.Output, w.String())
}

// opCall records the current (pre-increment) Ni as the return
// address and inserts it beneath everything already on the stack, so
// a caller's pushed arguments stay on top of the new frame rather
// than being buried under the return slot; Li and Bs are set to the
// index the return address lands at (the new frame's base), and
// execution branches to target. The caller's Bs is saved so opRet can
// restore it.
func (it *Interpreter) opCall(target int) State {
	ret := it.Memory.Registers.Get(Ni)
	idx, err := it.Memory.Insert(ret, it.Memory.StackSize())
	if err != nil {
		return errToState(err)
	}
	it.enterFrame(idx, target)
	return StateOK
}

// opCallp reserves the return-address slot beneath size
// already-pushed arguments, rather than pushing it on top.
func (it *Interpreter) opCallp(target, size int) State {
	ret := it.Memory.Registers.Get(Ni)
	idx, err := it.Memory.Insert(ret, size)
	if err != nil {
		return errToState(err)
	}
	it.enterFrame(idx, target)
	return StateOK
}

func (it *Interpreter) enterFrame(idx, target int) {
	it.callerBs = append(it.callerBs, it.Memory.Registers.Get(Bs))
	it.Memory.Registers.Set(Li, word.U64(uint64(idx)))
	it.Memory.Registers.Set(Bs, word.U64(uint64(idx)))
	it.Memory.Registers.Set(Ni, word.U64(uint64(target)))
}

// opRet reads the return address at stack index Li, branches there,
// drains [Li, stack_size-size) so only the top size words (the return
// value) survive the frame teardown, and restores the caller's Bs.
func (it *Interpreter) opRet(size int) State {
	li := it.Memory.Registers.Get(Li).AsInt()
	addr, err := it.Memory.StackRead(li)
	if err != nil {
		return errToState(err)
	}
	end := it.Memory.StackSize() - size
	if err := it.Memory.StackClean(li, end); err != nil {
		return errToState(err)
	}
	it.Memory.Registers.Set(Ni, addr)
	if n := len(it.callerBs); n > 0 {
		it.Memory.Registers.Set(Bs, it.callerBs[n-1])
		it.callerBs = it.callerBs[:n-1]
	}
	return StateOK
}
