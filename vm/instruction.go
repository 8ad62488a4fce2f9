package vm

import "github.com/WillemNicolas/vulkyn/word"

// Opcode identifies an instruction's operation. Its string value is
// the canonical, case-folded mnemonic from the source assembly (see
// the mnemonic table), except for Label, which never appears as
// source text — it is the no-op marker a label definition leaves
// behind so instruction indices stay stable.
type Opcode string

const (
	OpPush  Opcode = "push"
	OpPop   Opcode = "pop"
	OpScopy Opcode = "scopy"
	OpSmove Opcode = "smove"
	OpRcopy Opcode = "rcopy"
	OpRmove Opcode = "rmove"
	OpRwrite Opcode = "rwrite"

	OpLoad   Opcode = "load"
	OpLoadb  Opcode = "loadb"
	OpReadU  Opcode = "readu"
	OpReadD  Opcode = "readd"
	OpSreadU Opcode = "sreadu"
	OpSreadD Opcode = "sreadd"
	OpWrite  Opcode = "write"
	OpSwrite Opcode = "swrite"

	OpAlloc Opcode = "alloc"
	OpFree  Opcode = "free"
	OpSfree Opcode = "sfree"

	OpAdd Opcode = "add"
	OpSub Opcode = "sub"
	OpMul Opcode = "mul"
	OpDiv Opcode = "div"
	OpMod Opcode = "mod"

	OpRAdd Opcode = "radd"
	OpRSub Opcode = "rsub"
	OpRMul Opcode = "rmul"
	OpRDiv Opcode = "rdiv"
	OpRMod Opcode = "rmod"

	OpBAnd Opcode = "band"
	OpBOr  Opcode = "bor"
	OpBXor Opcode = "bxor"
	OpLsh  Opcode = "lsh"
	OpRsh  Opcode = "rsh"

	OpRBAnd Opcode = "rband"
	OpRBOr  Opcode = "rbor"
	OpRBXor Opcode = "rbxor"
	OpRLsh  Opcode = "rlsh"
	OpRRsh  Opcode = "rrsh"

	OpEq  Opcode = "eq"
	OpNeq Opcode = "neq"
	OpLt  Opcode = "lt"
	OpLte Opcode = "lte"
	OpGt  Opcode = "gt"
	OpGte Opcode = "gte"

	OpREq  Opcode = "req"
	OpRNeq Opcode = "rneq"
	OpRLt  Opcode = "rlt"
	OpRLte Opcode = "rlte"
	OpRGt  Opcode = "rgt"
	OpRGte Opcode = "rgte"

	OpAnd Opcode = "and"
	OpOr  Opcode = "or"
	OpNot Opcode = "not"

	OpRAnd Opcode = "rand"
	OpROr  Opcode = "ror"
	OpRNot Opcode = "rnot"

	OpDmp  Opcode = "dmp"
	OpRDmp Opcode = "rdmp"

	OpExit   Opcode = "exit"
	OpNop    Opcode = "nop"
	OpLabel  Opcode = "label"
	OpGo     Opcode = "go"
	OpGoif   Opcode = "goif"
	OpRGoif  Opcode = "rgoif"
	OpCall   Opcode = "call"
	OpCallp  Opcode = "callp"
	OpScall  Opcode = "scall"
	OpScallp Opcode = "scallp"
	OpRcall  Opcode = "rcall"
	OpRcallp Opcode = "rcallp"
	OpRet    Opcode = "ret"
)

// conversionTags enumerates Word's five tags; AllConversionOpcodes
// walks every ordered pair of distinct tags in this order.
var conversionTags = []word.Tag{word.TagI64, word.TagU64, word.TagF64, word.TagChar, word.TagBool}

var tagMnemonic = map[word.Tag]string{
	word.TagI64:  "i",
	word.TagU64:  "u",
	word.TagF64:  "f",
	word.TagChar: "c",
	word.TagBool: "b",
}

// ConversionOpcode returns the stack-form ("f2i") or register-form
// ("rf2i") opcode for converting from one tag to another. from must
// differ from to; there is no identity conversion mnemonic.
func ConversionOpcode(from, to word.Tag, rform bool) Opcode {
	s := tagMnemonic[from] + "2" + tagMnemonic[to]
	if rform {
		return Opcode("r" + s)
	}
	return Opcode(s)
}

// AllConversionOpcodes returns every one of the 20 non-identity
// stack-form conversion opcodes plus their 20 register-form
// counterparts, 40 in total.
func AllConversionOpcodes() []Opcode {
	var out []Opcode
	for _, from := range conversionTags {
		for _, to := range conversionTags {
			if from == to {
				continue
			}
			out = append(out, ConversionOpcode(from, to, false))
			out = append(out, ConversionOpcode(from, to, true))
		}
	}
	return out
}

// ConversionTagsFor parses an opcode of the form "f2i"/"rf2i" back
// into its source and destination tags, reporting ok=false for any
// other opcode. Used by the assembler to tell a conversion mnemonic's
// register form from its stack form without re-deriving the mnemonic
// table.
func ConversionTagsFor(op Opcode) (from, to word.Tag, rform bool, ok bool) {
	s := string(op)
	if len(s) > 0 && s[0] == 'r' {
		rform = true
		s = s[1:]
	}
	if len(s) != 3 || s[1] != '2' {
		return 0, 0, false, false
	}
	from, ok1 := tagForMnemonic(s[0:1])
	to, ok2 := tagForMnemonic(s[2:3])
	if !ok1 || !ok2 {
		return 0, 0, false, false
	}
	return from, to, rform, true
}

func tagForMnemonic(s string) (word.Tag, bool) {
	for tag, m := range tagMnemonic {
		if m == s {
			return tag, true
		}
	}
	return 0, false
}

// Either is an immediate-or-register operand, decoded eagerly at
// parse time into a one-byte discriminant plus payload.
type Either struct {
	IsReg bool
	Reg   Register
	Word  word.Word
}

// AddrOp resolves to a stack or heap address as Reg's value plus
// Offset (a signed displacement).
type AddrOp struct {
	Reg    Register
	Offset int64
}

// Instruction is one fully-decoded ISA instruction. Only the fields
// relevant to Op are populated; the rest are zero values.
type Instruction struct {
	Op Opcode

	Literal word.Word // literal operand, e.g. RWRITE's/WRITE's immediate
	Reg     Register
	Reg2    Register
	Addr    AddrOp

	Either1 Either
	Either2 Either

	Size   int
	Offset int
	Target int // resolved 0-based instruction index
}
