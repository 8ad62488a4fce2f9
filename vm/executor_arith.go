package vm

import "github.com/WillemNicolas/vulkyn/word"

// dispatch routes one instruction to its family handler and returns
// the resulting State. Branch and call handlers overwrite Ni with
// their target; the caller (Step) then performs the uniform
// post-increment.
func (it *Interpreter) dispatch(instr Instruction) State {
	switch instr.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return it.stackArith(instr.Op)
	case OpRAdd, OpRSub, OpRMul, OpRDiv, OpRMod:
		return it.regArith(instr.Op, instr.Either1, instr.Either2)

	case OpBAnd, OpBOr, OpBXor, OpLsh, OpRsh:
		return it.stackBitwise(instr.Op)
	case OpRBAnd, OpRBOr, OpRBXor, OpRLsh, OpRRsh:
		return it.regBitwise(instr.Op, instr.Either1, instr.Either2)

	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return it.stackCompare(instr.Op)
	case OpREq, OpRNeq, OpRLt, OpRLte, OpRGt, OpRGte:
		return it.regCompare(instr.Op, instr.Either1, instr.Either2)

	case OpAnd, OpOr, OpNot:
		return it.stackLogical(instr.Op)
	case OpRAnd, OpROr, OpRNot:
		return it.regLogical(instr.Op, instr.Either1, instr.Either2)

	case OpNop, OpLabel:
		return StateOK

	default:
		if from, to, rform, ok := ConversionTagsFor(instr.Op); ok {
			return it.convert(from, to, rform, instr.Either1)
		}
		return it.dispatchMemoryOrFlow(instr)
	}
}

// stackArith implements ADD/MINUS/MUL/DIV/MOD: the top of stack is
// popped first (the right-hand operand, y) and the word beneath it is
// popped second (the left-hand operand, x); the result of x OP y is
// pushed. This ordering is the one that makes "push 7 push 0 div"
// divide by the just-pushed 0 rather than by 7.
func (it *Interpreter) stackArith(op Opcode) State {
	y, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	x, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	if (op == OpDiv || op == OpMod) && y.IsZero() {
		return StateDivisionByZero
	}
	if err := it.Memory.Push(applyArith(op, x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) regArith(op Opcode, a, b Either) State {
	x := evalEither(it.Memory, a)
	y := evalEither(it.Memory, b)
	if (op == OpRDiv || op == OpRMod) && y.IsZero() {
		return StateDivisionByZero
	}
	plain := stripR(op)
	if err := it.Memory.Push(applyArith(plain, x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func applyArith(op Opcode, x, y word.Word) word.Word {
	switch op {
	case OpAdd:
		return word.Add(x, y)
	case OpSub:
		return word.Sub(x, y)
	case OpMul:
		return word.Mul(x, y)
	case OpDiv:
		return word.Div(x, y)
	case OpMod:
		return word.Mod(x, y)
	default:
		return word.Zero()
	}
}

func (it *Interpreter) stackBitwise(op Opcode) State {
	y, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	x, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	if err := it.Memory.Push(applyBitwise(op, x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) regBitwise(op Opcode, a, b Either) State {
	x := evalEither(it.Memory, a)
	y := evalEither(it.Memory, b)
	if err := it.Memory.Push(applyBitwise(stripR(op), x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func applyBitwise(op Opcode, x, y word.Word) word.Word {
	switch op {
	case OpBAnd:
		return word.BAnd(x, y)
	case OpBOr:
		return word.BOr(x, y)
	case OpBXor:
		return word.BXor(x, y)
	case OpLsh:
		return word.Shl(x, y)
	case OpRsh:
		return word.Shr(x, y)
	default:
		return word.Zero()
	}
}

func (it *Interpreter) stackCompare(op Opcode) State {
	y, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	x, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	if err := it.Memory.Push(applyCompare(op, x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) regCompare(op Opcode, a, b Either) State {
	x := evalEither(it.Memory, a)
	y := evalEither(it.Memory, b)
	if err := it.Memory.Push(applyCompare(stripR(op), x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func applyCompare(op Opcode, x, y word.Word) word.Word {
	switch op {
	case OpEq:
		return word.Eq(x, y)
	case OpNeq:
		return word.Neq(x, y)
	case OpLt:
		return word.Lt(x, y)
	case OpLte:
		return word.Lte(x, y)
	case OpGt:
		return word.Gt(x, y)
	case OpGte:
		return word.Gte(x, y)
	default:
		return word.Bool(false)
	}
}

func (it *Interpreter) stackLogical(op Opcode) State {
	if op == OpNot {
		x, err := it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
		if err := it.Memory.Push(word.Not(x)); err != nil {
			return errToState(err)
		}
		return StateOK
	}
	y, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	x, err := it.Memory.Pop()
	if err != nil {
		return StateStackUnderflow
	}
	if err := it.Memory.Push(applyLogical(op, x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func (it *Interpreter) regLogical(op Opcode, a, b Either) State {
	if op == OpRNot {
		x := evalEither(it.Memory, a)
		if err := it.Memory.Push(word.Not(x)); err != nil {
			return errToState(err)
		}
		return StateOK
	}
	x := evalEither(it.Memory, a)
	y := evalEither(it.Memory, b)
	if err := it.Memory.Push(applyLogical(stripR(op), x, y)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func applyLogical(op Opcode, x, y word.Word) word.Word {
	switch op {
	case OpAnd:
		return word.And(x, y)
	case OpOr:
		return word.Or(x, y)
	default:
		return word.Bool(false)
	}
}

func (it *Interpreter) convert(from, to word.Tag, rform bool, either Either) State {
	var src word.Word
	if rform {
		src = evalEither(it.Memory, either)
	} else {
		var err error
		src, err = it.Memory.Pop()
		if err != nil {
			return StateStackUnderflow
		}
	}
	_ = from // the source tag is implied by src itself; kept for documentation of intent
	if err := it.Memory.Push(applyConversion(to, src)); err != nil {
		return errToState(err)
	}
	return StateOK
}

func applyConversion(to word.Tag, src word.Word) word.Word {
	switch to {
	case word.TagI64:
		return word.ToI64(src)
	case word.TagU64:
		return word.ToU64(src)
	case word.TagF64:
		return word.ToF64(src)
	case word.TagChar:
		return word.ToChar(src)
	case word.TagBool:
		return word.ToBool(src)
	default:
		return src
	}
}

// stripR maps an R-form opcode (e.g. "radd") back to its plain
// counterpart ("add"), since the computation the two share is
// identical — only operand sourcing differs.
func stripR(op Opcode) Opcode {
	switch op {
	case OpRAdd:
		return OpAdd
	case OpRSub:
		return OpSub
	case OpRMul:
		return OpMul
	case OpRDiv:
		return OpDiv
	case OpRMod:
		return OpMod
	case OpRBAnd:
		return OpBAnd
	case OpRBOr:
		return OpBOr
	case OpRBXor:
		return OpBXor
	case OpRLsh:
		return OpLsh
	case OpRRsh:
		return OpRsh
	case OpREq:
		return OpEq
	case OpRNeq:
		return OpNeq
	case OpRLt:
		return OpLt
	case OpRLte:
		return OpLte
	case OpRGt:
		return OpGt
	case OpRGte:
		return OpGte
	case OpRAnd:
		return OpAnd
	case OpROr:
		return OpOr
	default:
		return op
	}
}

func errToState(err error) State {
	if state, ok := StateForError(err); ok {
		return state
	}
	return StateIllegalInstruction
}
