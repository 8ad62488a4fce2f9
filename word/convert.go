package word

// Conversion family: ToI64/ToU64/ToF64/ToChar/ToBool, each defined
// for every source tag. Bool converts to/from 0 or 1; numeric to Bool
// yields the negation of IsZero. Char conversions operate on the
// 8-bit domain used throughout the value core's Char arithmetic, so a
// round trip through Char truncates to a single byte.

func ToI64(w Word) Word {
	switch w.Tag {
	case TagI64:
		return w
	case TagU64:
		return I64(int64(w.u64))
	case TagF64:
		return I64(int64(w.f64))
	case TagChar:
		return I64(int64(w.char))
	case TagBool:
		if w.b {
			return I64(1)
		}
		return I64(0)
	default:
		return I64(0)
	}
}

func ToU64(w Word) Word {
	switch w.Tag {
	case TagU64:
		return w
	case TagI64:
		return U64(uint64(w.i64))
	case TagF64:
		if w.f64 < 0 {
			return U64(0)
		}
		return U64(uint64(w.f64))
	case TagChar:
		return U64(uint64(w.char))
	case TagBool:
		if w.b {
			return U64(1)
		}
		return U64(0)
	default:
		return U64(0)
	}
}

func ToF64(w Word) Word {
	switch w.Tag {
	case TagF64:
		return w
	case TagU64:
		return F64(float64(w.u64))
	case TagI64:
		return F64(float64(w.i64))
	case TagChar:
		return F64(float64(w.char))
	case TagBool:
		if w.b {
			return F64(1)
		}
		return F64(0)
	default:
		return F64(0)
	}
}

func ToChar(w Word) Word {
	switch w.Tag {
	case TagChar:
		return w
	case TagU64:
		return Char(rune(uint8(w.u64)))
	case TagI64:
		return Char(rune(uint8(w.i64)))
	case TagF64:
		return Char(rune(uint8(int64(w.f64))))
	case TagBool:
		if w.b {
			return Char(rune(1))
		}
		return Char(rune(0))
	default:
		return Char(0)
	}
}

func ToBool(w Word) Word { return Bool(!w.IsZero()) }
