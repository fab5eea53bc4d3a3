package value

import (
	"math"
	"math/big"
	"testing"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil(), false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), true},
		{Str(""), true},
		{Err(NewError(1000, "x")), false},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v.K, got, c.want)
		}
	}
}

func TestAddIntOverflowWidensToBigInt(t *testing.T) {
	a := Int(math.MaxInt64)
	b := Int(1)
	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.IsBigInt() {
		t.Fatalf("expected BigInt result, got %v", sum.K)
	}
	want := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	if sum.AsBigInt().Cmp(want) != 0 {
		t.Errorf("got %s, want %s", sum.AsBigInt(), want)
	}
}

func TestAddNarrowsBackToInt(t *testing.T) {
	big1 := BigInt(big.NewInt(10))
	sum, err := Add(big1, Int(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.IsInt() || sum.AsInt() != 15 {
		t.Errorf("expected narrowed Int(15), got %v", sum)
	}
}

func TestDivideExactStaysInt(t *testing.T) {
	v, err := Divide(Int(10), Int(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsInt() || v.AsInt() != 5 {
		t.Errorf("expected Int(5), got %v", v)
	}
}

func TestDivideInexactBecomesNumber(t *testing.T) {
	v, err := Divide(Int(1), Int(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsNumber() {
		t.Errorf("expected Number, got %v", v.K)
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := Divide(Int(1), Int(0))
	if err == nil || err.Code != 2009 {
		t.Fatalf("expected error 2009, got %v", err)
	}
}

func TestNumericEqualIntAndExactNumber(t *testing.T) {
	if !NumericEqual(Int(3), Number(3.0)) {
		t.Errorf("expected Int(3) == Number(3.0)")
	}
	if NumericEqual(Int(3), Number(3.5)) {
		t.Errorf("expected Int(3) != Number(3.5)")
	}
}

func TestCompareMixedPrecision(t *testing.T) {
	c, err := Compare(Int(2), Number(2.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c >= 0 {
		t.Errorf("expected Int(2) < Number(2.5), got cmp=%d", c)
	}
}

func TestCompareLargeExactNumberBeyondInt64DoesNotWrap(t *testing.T) {
	huge := math.Pow(2, 100) // exact integer, far outside int64 range
	c, err := Compare(BigInt(new(big.Int).Lsh(big.NewInt(1), 100)), Number(huge))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != 0 {
		t.Errorf("expected equal, got cmp=%d", c)
	}
	if !NumericEqual(BigInt(new(big.Int).Lsh(big.NewInt(1), 100)), Number(huge)) {
		t.Errorf("expected BigInt(2^100) == Number(2^100)")
	}
}

func TestRangeAtNeverMaterializes(t *testing.T) {
	r := RangeVal(0, 1_000_000_000)
	ro := r.Obj.(*RangeObj)
	v, ok := ro.At(999_999_999)
	if !ok || v != 999_999_999 {
		t.Errorf("At(999999999) = (%d, %v), want (999999999, true)", v, ok)
	}
	if _, ok := ro.At(1_000_000_000); ok {
		t.Errorf("expected out-of-range At to report ok=false")
	}
}

func TestDisplayForm(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{Str("abc"), "abc"},
	}
	for _, c := range cases {
		if got := Display(c.v); got != c.want {
			t.Errorf("Display(%v) = %q, want %q", c.v.K, got, c.want)
		}
	}
}

func TestKvcAddFieldPreservesOrderAndCasing(t *testing.T) {
	k := NewKvc(nil)
	k.AddField("Foo", nil, Int(1), true)
	k.AddField("bar", nil, Int(2), true)
	k.AddField("FOO", nil, Int(3), true) // re-declares same case-insensitive key

	if len(k.Order) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d: %v", len(k.Order), k.Order)
	}
	if k.DisplayNames["foo"] != "FOO" {
		t.Errorf("expected last-declared casing FOO, got %s", k.DisplayNames["foo"])
	}
	if k.Cache["foo"].AsInt() != 3 {
		t.Errorf("expected last-declared value to win, got %v", k.Cache["foo"])
	}
}

func TestToJSONRecordPreservesOrderAndCasing(t *testing.T) {
	k := NewKvc(nil)
	k.AddField("Zebra", nil, Int(1), true)
	k.AddField("Apple", nil, Int(2), true)
	rec := Value{K: KKvc, Obj: k}

	out, err := ToJSON(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"Zebra":1,"Apple":2}`
	if out != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestToJSONError(t *testing.T) {
	out, err := ToJSON(Err(NewError(2001, "boom")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"kind":"value","code":2001,"message":"boom","line":-1,"column":-1}`
	if out != want {
		t.Errorf("got %s, want %s", out, want)
	}
}
