package asm

import (
	"strings"

	"github.com/WillemNicolas/vulkyn/vm"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenUint
	TokenInt
	TokenFloat
	TokenChar
	TokenLabel  // %name
	TokenReg    // r1, ts, bs, ...
	TokenWord   // instruction mnemonic
	TokenLBrak  // [
	TokenRBrak  // ]
	TokenBar    // |
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenUint:
		return "UINT"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenChar:
		return "CHAR"
	case TokenLabel:
		return "LABEL"
	case TokenReg:
		return "REG"
	case TokenWord:
		return "WORD"
	case TokenLBrak:
		return "["
	case TokenRBrak:
		return "]"
	case TokenBar:
		return "|"
	default:
		return "?"
	}
}

// Token is one lexical unit with its source position and decoded
// value. Only the field matching Kind is populated, except that a REG
// token carries its register number in Int and its spelling in Text.
type Token struct {
	Kind TokenKind
	Pos  Position

	Uint  uint64
	Int   int64
	Float float64
	Char  rune
	Text  string // LABEL name (without %) or WORD identifier text
}

// opcodeKeywords is every recognized mnemonic, including the 40
// generated conversion opcodes, keyed by its lowercase source text.
var opcodeKeywords = func() map[string]vm.Opcode {
	m := make(map[string]vm.Opcode)
	plain := []vm.Opcode{
		vm.OpPush, vm.OpPop, vm.OpScopy, vm.OpSmove, vm.OpRcopy, vm.OpRmove, vm.OpRwrite,
		vm.OpLoad, vm.OpLoadb, vm.OpReadU, vm.OpReadD, vm.OpSreadU, vm.OpSreadD, vm.OpWrite, vm.OpSwrite,
		vm.OpAlloc, vm.OpFree, vm.OpSfree,
		vm.OpAdd, vm.OpSub, vm.OpMul, vm.OpDiv, vm.OpMod,
		vm.OpRAdd, vm.OpRSub, vm.OpRMul, vm.OpRDiv, vm.OpRMod,
		vm.OpBAnd, vm.OpBOr, vm.OpBXor, vm.OpLsh, vm.OpRsh,
		vm.OpRBAnd, vm.OpRBOr, vm.OpRBXor, vm.OpRLsh, vm.OpRRsh,
		vm.OpEq, vm.OpNeq, vm.OpLt, vm.OpLte, vm.OpGt, vm.OpGte,
		vm.OpREq, vm.OpRNeq, vm.OpRLt, vm.OpRLte, vm.OpRGt, vm.OpRGte,
		vm.OpAnd, vm.OpOr, vm.OpNot,
		vm.OpRAnd, vm.OpROr, vm.OpRNot,
		vm.OpDmp, vm.OpRDmp,
		vm.OpExit, vm.OpNop, vm.OpGo, vm.OpGoif, vm.OpRGoif,
		vm.OpCall, vm.OpCallp, vm.OpScall, vm.OpScallp, vm.OpRcall, vm.OpRcallp, vm.OpRet,
	}
	for _, op := range plain {
		m[string(op)] = op
	}
	for _, op := range vm.AllConversionOpcodes() {
		m[string(op)] = op
	}
	// The canonical mnemonic table spells the heap-read family without
	// a direction suffix ("read", "sread"); both alias the "up" (byte
	// order preserved) form, matching READD's description as the one
	// that reverses order. Write source always types "read"/"sread";
	// the readd/sreadd spellings exist for the reversed variant.
	m["read"] = vm.OpReadU
	m["sread"] = vm.OpSreadU
	return m
}()

// LookupRegister resolves a case-folded identifier to a register.
func LookupRegister(name string) (vm.Register, bool) {
	return vm.LookupRegister(strings.ToLower(name))
}

// LookupOpcode resolves a case-folded identifier to an opcode.
func LookupOpcode(name string) (vm.Opcode, bool) {
	op, ok := opcodeKeywords[strings.ToLower(name)]
	return op, ok
}
