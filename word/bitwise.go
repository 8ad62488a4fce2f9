package word

// Bitwise operators coerce both operands to u64 (floats by truncating
// cast, chars by codepoint, bools to 0/1) and always return U64,
// regardless of the operand tags.

func BAnd(left, right Word) Word { return U64(left.AsU64() & right.AsU64()) }
func BOr(left, right Word) Word  { return U64(left.AsU64() | right.AsU64()) }
func BXor(left, right Word) Word { return U64(left.AsU64() ^ right.AsU64()) }
func Shl(left, right Word) Word  { return U64(left.AsU64() << (right.AsU64() & 63)) }
func Shr(left, right Word) Word  { return U64(left.AsU64() >> (right.AsU64() & 63)) }
