package word

// Comparisons return Bool. Relational operators compare only
// same-tagged operands and report false on a tag mismatch; Eq is
// false across tags unconditionally and Neq is true across tags
// unconditionally (they do not go through Less).

func Eq(left, right Word) Word  { return Bool(left.Equal(right)) }
func Neq(left, right Word) Word { return Bool(!left.Equal(right)) }

func Lt(left, right Word) Word {
	less, ok := left.Less(right)
	return Bool(ok && less)
}

func Lte(left, right Word) Word {
	if left.Equal(right) {
		return Bool(true)
	}
	less, ok := left.Less(right)
	return Bool(ok && less)
}

func Gt(left, right Word) Word {
	less, ok := left.Less(right)
	return Bool(ok && !less && !left.Equal(right))
}

func Gte(left, right Word) Word {
	if left.Equal(right) {
		return Bool(true)
	}
	less, ok := left.Less(right)
	return Bool(ok && !less)
}
