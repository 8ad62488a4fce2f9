package word

import (
	"math"
	"testing"
)

func TestIsZero(t *testing.T) {
	cases := []struct {
		name string
		w    Word
		want bool
	}{
		{"u64 zero", U64(0), true},
		{"u64 nonzero", U64(1), false},
		{"i64 zero", I64(0), true},
		{"f64 zero", F64(0), true},
		{"f64 neg zero", F64(math.Copysign(0, -1)), true},
		{"char nul", Char(0), true},
		{"char a", Char('a'), false},
		{"bool false", Bool(false), true},
		{"bool true", Bool(true), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.w.IsZero(); got != c.want {
				t.Errorf("IsZero(%v) = %v, want %v", c.w, got, c.want)
			}
		})
	}
}

func TestEqualCrossTag(t *testing.T) {
	if U64(1).Equal(I64(1)) {
		t.Errorf("U64(1) should not equal I64(1)")
	}
	if !U64(1).Equal(U64(1)) {
		t.Errorf("U64(1) should equal U64(1)")
	}
}

func TestLessCrossTag(t *testing.T) {
	_, ok := U64(1).Less(I64(2))
	if ok {
		t.Errorf("Less across tags should report ok=false")
	}
	less, ok := U64(1).Less(U64(2))
	if !ok || !less {
		t.Errorf("U64(1) < U64(2) should be true")
	}
}

func TestAddPromotion(t *testing.T) {
	cases := []struct {
		name       string
		left       Word
		right      Word
		wantTag    Tag
		wantAsU64  uint64
		checkValue bool
	}{
		{"u64+u64", U64(2), U64(3), TagU64, 5, true},
		{"u64+i64 promotes to i64", U64(2), I64(3), TagI64, 5, true},
		{"i64+f64 promotes to f64", I64(2), F64(1.5), TagF64, 0, false},
		{"char+u64 stays char", Char('A'), U64(1), TagChar, uint64('B'), true},
		{"u64+char becomes char", U64(1), Char('A'), TagChar, uint64('B'), true},
		{"bool left dominates", Bool(true), U64(99), TagBool, 1, true},
		{"bool left false dominates", Bool(false), U64(99), TagBool, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Add(c.left, c.right)
			if got.Tag != c.wantTag {
				t.Fatalf("Add(%v,%v).Tag = %v, want %v", c.left, c.right, got.Tag, c.wantTag)
			}
			if c.checkValue && got.AsU64() != c.wantAsU64 {
				t.Errorf("Add(%v,%v) = %v, want AsU64=%d", c.left, c.right, got, c.wantAsU64)
			}
		})
	}
}

func TestDivModIdentity(t *testing.T) {
	x := U64(17)
	y := U64(5)
	q := Div(x, y)
	r := Mod(x, y)
	sum := Add(Mul(q, y), r)
	if !sum.Equal(x) {
		t.Errorf("(x/y)*y + x%%y = %v, want %v", sum, x)
	}
}

func TestNotIsDoubleNegation(t *testing.T) {
	cases := []Word{U64(0), U64(5), Bool(true), Bool(false), Char(0), Char('a')}
	for _, x := range cases {
		got := Not(Not(x))
		want := Bool(!x.IsZero())
		if !got.Equal(want) {
			t.Errorf("Not(Not(%v)) = %v, want %v", x, got, want)
		}
	}
}

func TestBitwiseAlwaysU64(t *testing.T) {
	got := BAnd(F64(6), Char(3))
	if got.Tag != TagU64 {
		t.Errorf("BAnd result tag = %v, want u64", got.Tag)
	}
}

func TestConvertValues(t *testing.T) {
	if ToBool(U64(0)).Equal(Bool(true)) {
		t.Errorf("ToBool(U64(0)) should be false")
	}
	if !ToBool(U64(7)).Equal(Bool(true)) {
		t.Errorf("ToBool(U64(7)) should be true")
	}
	if !ToU64(Bool(true)).Equal(U64(1)) {
		t.Errorf("ToU64(Bool(true)) should be U64(1)")
	}
	if !ToI64(Char('A')).Equal(I64(65)) {
		t.Errorf("ToI64(Char('A')) should be I64(65)")
	}
}
