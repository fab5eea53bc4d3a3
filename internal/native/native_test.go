package native

import (
	"testing"

	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

func newVM() *vm.VM {
	v := vm.New()
	Register(v)
	return v
}

func TestRangeAndLen(t *testing.T) {
	v := newVM()
	out, err := v.Interpret("Len(Range(5, 3))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt() != 3 {
		t.Errorf("got %v, want 3", out)
	}
}

func TestRangeRejectsNonInt(t *testing.T) {
	v := newVM()
	out, err := v.Interpret(`Range(1.5, 3)`)
	if err != nil {
		t.Fatalf("unexpected interpret error: %v", err)
	}
	if !out.IsError() || out.AsError().Code != 2007 {
		t.Errorf("got %v, want Error(2007)", out)
	}
}

func TestSumOfList(t *testing.T) {
	v := newVM()
	out, err := v.Interpret("Sum([1,2,3])")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt() != 6 {
		t.Errorf("got %v, want 6", out)
	}
}

func TestTakeSkipReverseDistinct(t *testing.T) {
	v := newVM()
	cases := []struct {
		src  string
		want []int64
	}{
		{"Take(2, [1,2,3,4])", []int64{1, 2}},
		{"Skip(2, [1,2,3,4])", []int64{3, 4}},
		{"Reverse([1,2,3])", []int64{3, 2, 1}},
		{"Distinct([1,1,2,2,3])", []int64{1, 2, 3}},
	}
	for _, c := range cases {
		out, err := v.Interpret(c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		items := out.AsList()
		if len(items) != len(c.want) {
			t.Fatalf("%s: got %d items, want %d", c.src, len(items), len(c.want))
		}
		for i, w := range c.want {
			if items[i].AsInt() != w {
				t.Errorf("%s: item %d = %v, want %d", c.src, i, items[i], w)
			}
		}
	}
}

func TestGuidRoundTrip(t *testing.T) {
	id := newRandomGuid()
	if id.K != value.KGuid {
		t.Fatalf("expected Guid, got %v", id.K)
	}
	s := value.Display(id)
	parsed := parseGuid(s)
	if parsed.IsError() {
		t.Fatalf("unexpected error parsing %q: %v", s, parsed.AsError())
	}
}

func TestBytesPackUnpackRoundTrip(t *testing.T) {
	v := newVM()
	out, err := v.Interpret("Bytes.pack([1,2,255], 8)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.K != value.KBytes || len(out.AsBytes()) != 3 {
		t.Fatalf("got %v, want 3-byte Bytes", out)
	}
	unpacked, err := v.Interpret("Bytes.unpack(Bytes.pack([1,2,255], 8), 8)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := unpacked.AsList()
	want := []int64{1, 2, 255}
	for i, w := range want {
		if items[i].AsInt() != w {
			t.Errorf("item %d = %v, want %d", i, items[i], w)
		}
	}
}

func TestTextNamespace(t *testing.T) {
	v := newVM()
	out, err := v.Interpret(`Text.Upper("abc")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsString() != "ABC" {
		t.Errorf("got %q, want ABC", out.AsString())
	}
}

func TestMathNamespace(t *testing.T) {
	v := newVM()
	out, err := v.Interpret("Math.Max(3, 7)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt() != 7 {
		t.Errorf("got %v, want 7", out)
	}
}

func TestFloatNamespace(t *testing.T) {
	v := newVM()
	out, err := v.Interpret("Float.IsNaN(1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsBool() || out.AsBool() {
		t.Errorf("got %v, want false", out)
	}
}

func TestChangeTypeToInteger(t *testing.T) {
	v := newVM()
	out, err := v.Interpret(`ChangeType("42", "integer")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsInt() || out.AsInt() != 42 {
		t.Errorf("got %v, want Int(42)", out)
	}
}

func TestHostNativesErrorWithoutHostEnv(t *testing.T) {
	v := vm.New()
	Register(v)
	out, err := v.Interpret(`File("/nonexistent")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsError() || out.AsError().Code != 2600 {
		t.Errorf("got %v, want Error(2600)", out)
	}
}
