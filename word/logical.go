package word

// Logical operators coerce each operand through IsZero (the predicate
// "value equals the additive identity of its tag") and return Bool.

func And(left, right Word) Word { return Bool(!left.IsZero() && !right.IsZero()) }
func Or(left, right Word) Word  { return Bool(!left.IsZero() || !right.IsZero()) }
func Not(v Word) Word           { return Bool(v.IsZero()) }
