// Package word implements Vulkyn's tagged dynamic value, Word: the
// single value representation shared by the stack, the heap, and the
// register file.
package word

import (
	"fmt"
	"math"
)

// Tag identifies which variant of Word is populated.
type Tag uint8

const (
	TagU64 Tag = iota
	TagI64
	TagF64
	TagChar
	TagBool
)

func (t Tag) String() string {
	switch t {
	case TagU64:
		return "u64"
	case TagI64:
		return "i64"
	case TagF64:
		return "f64"
	case TagChar:
		return "char"
	case TagBool:
		return "bool"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Word is a copy-on-move tagged value. Exactly one of the payload
// fields is meaningful, selected by Tag.
type Word struct {
	Tag  Tag
	u64  uint64
	i64  int64
	f64  float64
	char rune
	b    bool
}

// U64 constructs an unsigned-tagged Word.
func U64(v uint64) Word { return Word{Tag: TagU64, u64: v} }

// I64 constructs a signed-tagged Word.
func I64(v int64) Word { return Word{Tag: TagI64, i64: v} }

// F64 constructs a float-tagged Word.
func F64(v float64) Word { return Word{Tag: TagF64, f64: v} }

// Char constructs a char-tagged Word from a Unicode scalar value.
func Char(v rune) Word { return Word{Tag: TagChar, char: v} }

// Bool constructs a bool-tagged Word.
func Bool(v bool) Word { return Word{Tag: TagBool, b: v} }

// Zero is the initial value of every register and every freshly
// allocated heap word: U64(0).
func Zero() Word { return U64(0) }

// AsU64 returns v's payload reinterpreted as u64 (as_usize in the
// original), truncating floats and coercing bool/char.
func (w Word) AsU64() uint64 {
	switch w.Tag {
	case TagU64:
		return w.u64
	case TagI64:
		return uint64(w.i64)
	case TagF64:
		return uint64(w.f64)
	case TagChar:
		return uint64(w.char)
	case TagBool:
		if w.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsInt returns v reinterpreted as a native int, for indexing the
// stack and the program image.
func (w Word) AsInt() int { return int(w.AsU64()) }

// AsF64 returns w's raw float payload; callers must check w.Tag ==
// TagF64 first, as this does not convert from other tags.
func (w Word) AsF64() float64 { return w.f64 }

// AsChar returns w's raw rune payload; callers must check w.Tag ==
// TagChar first, as this does not convert from other tags.
func (w Word) AsChar() rune { return w.char }

// AsBool returns w's raw bool payload; callers must check w.Tag ==
// TagBool first, as this does not convert from other tags.
func (w Word) AsBool() bool { return w.b }

// IsZero reports whether w holds the additive identity of its tag:
// 0, 0.0, the NUL rune, or false.
func (w Word) IsZero() bool {
	switch w.Tag {
	case TagU64:
		return w.u64 == 0
	case TagI64:
		return w.i64 == 0
	case TagF64:
		return w.f64 == 0
	case TagChar:
		return w.char == 0
	case TagBool:
		return !w.b
	default:
		return true
	}
}

// Equal is total equality: same tag and same payload. Cross-tag
// comparisons are always false, matching the original's derived
// PartialEq.
func (a Word) Equal(b Word) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagU64:
		return a.u64 == b.u64
	case TagI64:
		return a.i64 == b.i64
	case TagF64:
		return a.f64 == b.f64
	case TagChar:
		return a.char == b.char
	case TagBool:
		return a.b == b.b
	default:
		return false
	}
}

// Less reports a < b. Defined only for same-tagged operands; the ok
// result is false across tags (an "incomparable" partial order).
func (a Word) Less(b Word) (less bool, ok bool) {
	if a.Tag != b.Tag {
		return false, false
	}
	switch a.Tag {
	case TagU64:
		return a.u64 < b.u64, true
	case TagI64:
		return a.i64 < b.i64, true
	case TagF64:
		return a.f64 < b.f64, true
	case TagChar:
		return a.char < b.char, true
	case TagBool:
		return !a.b && b.b, true
	default:
		return false, false
	}
}

// HashKey returns a tag-domain-separated key suitable for use as a Go
// map key, so equal Words under Equal hash identically and distinct
// tags never collide. Floats canonicalize NaN and normalize ±0.0
// before hashing, per the design notes on floating heap keys.
func (w Word) HashKey() any {
	switch w.Tag {
	case TagU64:
		return [2]uint64{1, w.u64}
	case TagI64:
		return [2]uint64{2, uint64(w.i64)}
	case TagF64:
		f := w.f64
		if f == 0 {
			f = 0 // normalize -0.0 to +0.0
		}
		if math.IsNaN(f) {
			return [2]uint64{4, math.Float64bits(math.NaN())}
		}
		return [2]uint64{4, math.Float64bits(f)}
	case TagChar:
		return [2]uint64{8, uint64(w.char)}
	case TagBool:
		v := uint64(0)
		if w.b {
			v = 1
		}
		return [2]uint64{16, v}
	default:
		return [2]uint64{0, 0}
	}
}

func (w Word) String() string {
	switch w.Tag {
	case TagU64:
		return fmt.Sprintf("%d", w.u64)
	case TagI64:
		return fmt.Sprintf("%d", w.i64)
	case TagF64:
		return fmt.Sprintf("%g", w.f64)
	case TagChar:
		return fmt.Sprintf("%q", w.char)
	case TagBool:
		return fmt.Sprintf("%t", w.b)
	default:
		return "<invalid word>"
	}
}
