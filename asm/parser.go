// Package asm implements vulkyn's assembler front end: a lexer and a
// two-pass, label-resolving parser that turns assembly source into a
// fully-resolved vm.Program.
package asm

import (
	"fmt"

	"github.com/WillemNicolas/vulkyn/vm"
	"github.com/WillemNicolas/vulkyn/word"
)

// unresolvedRef records a forward label reference that couldn't be
// resolved when its instruction was emitted.
type unresolvedRef struct {
	index int
	name  string
	pos   Position
}

// Parser consumes a token stream in a single forward pass, emitting
// instructions as it goes and deferring any label reference that
// names a not-yet-seen definition to a backpatch pass at the end.
type Parser struct {
	tokens []Token
	pos    int

	labels     map[string]int
	unresolved []unresolvedRef
	instrs     []vm.Instruction
}

// NewParser returns a Parser over an already-lexed token stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		labels: make(map[string]int),
	}
}

// Parse lexes source (tagged with filename for error messages) and
// parses it into a fully-resolved Program.
func Parse(filename, src string) (*vm.Program, error) {
	lexer := NewLexer(filename, src)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func (p *Parser) cur() Token { return p.tokens[p.pos] }

func (p *Parser) next() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) ruleErrorf(format string, args ...any) error {
	return NewError(p.cur().Pos, ErrorRule, fmt.Sprintf(format, args...))
}

// Parse runs the single forward pass followed by the backpatch pass,
// returning the fully-resolved Program or the first error encountered.
func (p *Parser) Parse() (*vm.Program, error) {
	if len(p.tokens) == 0 || p.tokens[0].Kind == TokenEOF {
		return nil, NewError(Position{}, ErrorEmptyInput, "empty input")
	}

	for p.cur().Kind != TokenEOF {
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}

	for _, ref := range p.unresolved {
		idx, ok := p.labels[ref.name]
		if !ok {
			return nil, NewError(ref.pos, ErrorUnresolvedLabel, "undefined label: %"+ref.name)
		}
		patchTarget(&p.instrs[ref.index], idx)
	}

	return &vm.Program{Instructions: p.instrs}, nil
}

func patchTarget(instr *vm.Instruction, idx int) {
	switch instr.Op {
	case vm.OpGo, vm.OpGoif, vm.OpRGoif, vm.OpCall:
		instr.Target = idx
	case vm.OpCallp:
		instr.Target = idx
	}
}

func (p *Parser) parseStatement() error {
	tok := p.cur()

	if tok.Kind == TokenLabel {
		p.next()
		if _, dup := p.labels[tok.Text]; dup {
			return NewError(tok.Pos, ErrorDuplicateLabel, "duplicate label: %"+tok.Text)
		}
		p.labels[tok.Text] = len(p.instrs)
		p.instrs = append(p.instrs, vm.Instruction{Op: vm.OpLabel})
		return nil
	}

	if tok.Kind != TokenWord {
		return p.ruleErrorf("expected an instruction mnemonic, found %s", tok.Kind)
	}
	op, _ := LookupOpcode(tok.Text)
	p.next()

	instr, err := p.parseOperands(op, tok.Pos)
	if err != nil {
		return err
	}
	instr.Op = op
	p.instrs = append(p.instrs, instr)
	return nil
}

// parseOperands consumes the operand grammar for op per §4.2 and
// returns the (partially built) instruction; Op is set by the caller.
func (p *Parser) parseOperands(op vm.Opcode, pos Position) (vm.Instruction, error) {
	switch op {
	case vm.OpNop, vm.OpExit, vm.OpPop, vm.OpSwrite, vm.OpSfree, vm.OpScall, vm.OpDmp:
		return vm.Instruction{}, nil

	case vm.OpPush, vm.OpRDmp:
		e, err := p.parseEither()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Either1: e}, nil

	case vm.OpScopy, vm.OpSmove:
		r, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Reg: r}, nil

	case vm.OpRcopy, vm.OpRmove:
		from, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		to, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Reg: from, Reg2: to}, nil

	case vm.OpRwrite:
		w, err := p.parseWord()
		if err != nil {
			return vm.Instruction{}, err
		}
		r, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Literal: w, Reg2: r}, nil

	case vm.OpLoad:
		addr, err := p.parseAddrOp()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Addr: addr}, nil

	case vm.OpLoadb:
		addr, err := p.parseAddrOp()
		if err != nil {
			return vm.Instruction{}, err
		}
		n, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Addr: addr, Size: n}, nil

	case vm.OpReadU, vm.OpReadD:
		addr, err := p.parseAddrOp()
		if err != nil {
			return vm.Instruction{}, err
		}
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		offset, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Addr: addr, Size: size, Offset: offset}, nil

	case vm.OpSreadU, vm.OpSreadD:
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		offset, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Size: size, Offset: offset}, nil

	case vm.OpWrite:
		w, err := p.parseWord()
		if err != nil {
			return vm.Instruction{}, err
		}
		addr, err := p.parseAddrOp()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Literal: w, Addr: addr}, nil

	case vm.OpAlloc:
		n, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Size: n}, nil

	case vm.OpFree:
		addr, err := p.parseAddrOp()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Addr: addr}, nil

	case vm.OpAdd, vm.OpSub, vm.OpMul, vm.OpDiv, vm.OpMod,
		vm.OpBAnd, vm.OpBOr, vm.OpBXor, vm.OpLsh, vm.OpRsh,
		vm.OpEq, vm.OpNeq, vm.OpLt, vm.OpLte, vm.OpGt, vm.OpGte,
		vm.OpAnd, vm.OpOr:
		return vm.Instruction{}, nil

	case vm.OpNot:
		return vm.Instruction{}, nil

	case vm.OpRAdd, vm.OpRSub, vm.OpRMul, vm.OpRDiv, vm.OpRMod,
		vm.OpRBAnd, vm.OpRBOr, vm.OpRBXor, vm.OpRLsh, vm.OpRRsh,
		vm.OpREq, vm.OpRNeq, vm.OpRLt, vm.OpRLte, vm.OpRGt, vm.OpRGte,
		vm.OpRAnd, vm.OpROr:
		e1, err := p.parseEither()
		if err != nil {
			return vm.Instruction{}, err
		}
		e2, err := p.parseEither()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Either1: e1, Either2: e2}, nil

	case vm.OpRNot:
		e, err := p.parseEither()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Either1: e}, nil

	case vm.OpGo:
		target, err := p.parseLabelRef()
		if err != nil {
			return vm.Instruction{}, err
		}
		return target, nil

	case vm.OpGoif:
		target, err := p.parseLabelRef()
		if err != nil {
			return vm.Instruction{}, err
		}
		return target, nil

	case vm.OpRGoif:
		r, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		instr, err := p.parseLabelRef()
		if err != nil {
			return vm.Instruction{}, err
		}
		instr.Reg = r
		return instr, nil

	case vm.OpCall:
		return p.parseLabelRef()

	case vm.OpCallp:
		instr, err := p.parseLabelRef()
		if err != nil {
			return vm.Instruction{}, err
		}
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		instr.Size = size
		return instr, nil

	case vm.OpScallp:
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Size: size}, nil

	case vm.OpRcall:
		r, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Reg: r}, nil

	case vm.OpRcallp:
		r, err := p.parseReg()
		if err != nil {
			return vm.Instruction{}, err
		}
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Reg: r, Size: size}, nil

	case vm.OpRet:
		size, err := p.parseUint()
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Size: size}, nil

	default:
		if _, _, rform, ok := vm.ConversionTagsFor(op); ok {
			if rform {
				e, err := p.parseEither()
				if err != nil {
					return vm.Instruction{}, err
				}
				return vm.Instruction{Either1: e}, nil
			}
			return vm.Instruction{}, nil
		}
		return vm.Instruction{}, p.ruleErrorf("unsupported opcode %q", op)
	}
}

func (p *Parser) parseReg() (vm.Register, error) {
	tok := p.cur()
	if tok.Kind != TokenReg {
		return 0, p.ruleErrorf("expected a register, found %s", tok.Kind)
	}
	p.next()
	return vm.Register(tok.Int), nil
}

func (p *Parser) parseWord() (word.Word, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokenUint:
		p.next()
		return word.U64(tok.Uint), nil
	case TokenInt:
		p.next()
		return word.I64(tok.Int), nil
	case TokenFloat:
		p.next()
		return word.F64(tok.Float), nil
	case TokenChar:
		p.next()
		return word.Char(tok.Char), nil
	default:
		return word.Word{}, p.ruleErrorf("expected a literal value, found %s", tok.Kind)
	}
}

// parseEither implements the Either grammar: a register if the next
// token is one, otherwise a Word literal.
func (p *Parser) parseEither() (vm.Either, error) {
	if p.cur().Kind == TokenReg {
		r, err := p.parseReg()
		if err != nil {
			return vm.Either{}, err
		}
		return vm.Either{IsReg: true, Reg: r}, nil
	}
	w, err := p.parseWord()
	if err != nil {
		return vm.Either{}, err
	}
	return vm.Either{Word: w}, nil
}

// parseAddrOp implements "[ Reg ]" or "[ Reg | SignedInt ]".
func (p *Parser) parseAddrOp() (vm.AddrOp, error) {
	if p.cur().Kind != TokenLBrak {
		return vm.AddrOp{}, p.ruleErrorf("expected '[', found %s", p.cur().Kind)
	}
	p.next()

	r, err := p.parseReg()
	if err != nil {
		return vm.AddrOp{}, err
	}

	addr := vm.AddrOp{Reg: r}
	if p.cur().Kind == TokenBar {
		p.next()
		off, err := p.parseSignedInt()
		if err != nil {
			return vm.AddrOp{}, err
		}
		addr.Offset = off
	}

	if p.cur().Kind != TokenRBrak {
		return vm.AddrOp{}, p.ruleErrorf("expected ']', found %s", p.cur().Kind)
	}
	p.next()
	return addr, nil
}

func (p *Parser) parseSignedInt() (int64, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokenInt:
		p.next()
		return tok.Int, nil
	case TokenUint:
		p.next()
		return int64(tok.Uint), nil
	default:
		return 0, p.ruleErrorf("expected an integer offset, found %s", tok.Kind)
	}
}

func (p *Parser) parseUint() (int, error) {
	tok := p.cur()
	if tok.Kind != TokenUint {
		return 0, p.ruleErrorf("expected an unsigned integer, found %s", tok.Kind)
	}
	p.next()
	return int(tok.Uint), nil
}

// parseLabelRef consumes a LABEL token and resolves it immediately if
// already defined; otherwise it records a forward reference to be
// backpatched once the whole stream has been parsed.
func (p *Parser) parseLabelRef() (vm.Instruction, error) {
	tok := p.cur()
	if tok.Kind != TokenLabel {
		return vm.Instruction{}, p.ruleErrorf("expected a label reference, found %s", tok.Kind)
	}
	p.next()

	if idx, ok := p.labels[tok.Text]; ok {
		return vm.Instruction{Target: idx}, nil
	}
	p.unresolved = append(p.unresolved, unresolvedRef{
		index: len(p.instrs),
		name:  tok.Text,
		pos:   tok.Pos,
	})
	return vm.Instruction{Target: 0}, nil
}
