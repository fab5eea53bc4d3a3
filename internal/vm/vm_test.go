package vm_test

import (
	"math/big"
	"testing"

	"github.com/funvibe/funcscript/internal/native"
	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

func newVM() *vm.VM {
	v := vm.New()
	native.Register(v)
	return v
}

func mustEval(t *testing.T, src string) value.Value {
	t.Helper()
	v := newVM()
	out, err := v.Interpret(src)
	if err != nil {
		t.Fatalf("Interpret(%q): %v", src, err)
	}
	return out
}

func TestIfCallForm(t *testing.T) {
	if got := mustEval(t, "If(true, 10, 20)"); got.AsInt() != 10 {
		t.Errorf("got %v, want 10", got)
	}
	if got := mustEval(t, "If(false, 10, 20)"); got.AsInt() != 20 {
		t.Errorf("got %v, want 20", got)
	}
}

func TestNakedRecordWithEvalClause(t *testing.T) {
	got := mustEval(t, "a:1; b:2; eval a+b")
	if !got.IsInt() || got.AsInt() != 3 {
		t.Errorf("got %v, want Int(3)", got)
	}
}

func TestSelectorSugarPreservesNonSelectedFields(t *testing.T) {
	src := `{person:{name:'Alice',age:30,extra:true}, person {name,age}}.person.extra`
	got := mustEval(t, src)
	if !got.IsBool() || !got.AsBool() {
		t.Errorf("got %v, want Bool(true)", got)
	}
	name := mustEval(t, `{person:{name:'Alice',age:30,extra:true}, person {name,age}}.person.name`)
	if name.AsString() != "Alice" {
		t.Errorf("got %v, want Alice", name)
	}
}

func TestRecordMergeRightWinsRecursive(t *testing.T) {
	got := mustEval(t, `({a:12,b:{c:10,z:10}}+{d:13,b:{c:12,x:5}}).b`)
	if !got.IsKvc() {
		t.Fatalf("expected a record, got %v", got.K)
	}
	v := newVM()
	c, err := v.GetField(got, "c")
	if err != nil || c.AsInt() != 12 {
		t.Errorf("c = %v, %v; want 12", c, err)
	}
	z, err := v.GetField(got, "z")
	if err != nil || z.AsInt() != 10 {
		t.Errorf("z = %v, %v; want 10", z, err)
	}
	x, err := v.GetField(got, "x")
	if err != nil || x.AsInt() != 5 {
		t.Errorf("x = %v, %v; want 5", x, err)
	}
}

func TestReduceInfixAndCallFormAgree(t *testing.T) {
	callForm := mustEval(t, `reduce([4,5,6],(s,x)=>s+x,-2)`)
	infix := mustEval(t, `[4,5,6] reduce (s,x)=>s+x ~ -2`)
	if callForm.AsInt() != 13 || infix.AsInt() != 13 {
		t.Errorf("got %v, %v; want 13, 13", callForm, infix)
	}
}

func TestLenOverBillionRangeIsConstantTime(t *testing.T) {
	got := mustEval(t, "Len(Range(0,1000000000))")
	if got.AsInt() != 1000000000 {
		t.Errorf("got %v, want 1000000000", got)
	}
}

func TestTemplateInterpolation(t *testing.T) {
	if got := mustEval(t, `f"hi {1+2}"`); got.AsString() != "hi 3" {
		t.Errorf("got %q, want %q", got.AsString(), "hi 3")
	}
	if got := mustEval(t, `f"{nil}"`); got.AsString() != "nil" {
		t.Errorf("got %q, want %q", got.AsString(), "nil")
	}
}

func TestLambdaArityMismatchIsRuntimeError2004(t *testing.T) {
	got := mustEval(t, `((x)=>x+1)(2)`)
	if got.AsInt() != 3 {
		t.Errorf("got %v, want 3", got)
	}
	v := newVM()
	_, err := v.Interpret(`((x)=>x)(1,2)`)
	if err == nil || err.Code != 2004 {
		t.Fatalf("expected error 2004, got %v", err)
	}
}

func TestMissingArgsPadWithNilAndShadowOuter(t *testing.T) {
	got := mustEval(t, `{ name:"E"; say:(name)=>"Hello "+name; eval say() }`)
	if got.AsString() != "Hello " {
		t.Errorf("got %q, want %q", got.AsString(), "Hello ")
	}
}

func TestSumExactAndApproxOverBillionRange(t *testing.T) {
	want, _ := new(big.Int).SetString("500000000500000000", 10)
	exact := mustEval(t, "Sum(Range(1,1000000000))")
	if exact.IsBigInt() {
		if exact.AsBigInt().Cmp(want) != 0 {
			t.Errorf("Sum got %v, want %v", exact.AsBigInt(), want)
		}
	} else if exact.IsInt() {
		if big.NewInt(exact.AsInt()).Cmp(want) != 0 {
			t.Errorf("Sum got %v, want %v", exact.AsInt(), want)
		}
	} else {
		t.Fatalf("Sum returned unexpected kind %v", exact.K)
	}

	approx := mustEval(t, "SumApprox(Range(1,1000000000))")
	wantF, _ := new(big.Float).SetInt(want).Float64()
	diff := approx.AsFloat() - wantF
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e6 {
		t.Errorf("SumApprox got %v, want within 1e6 of %v", approx.AsFloat(), wantF)
	}
}

func TestInterpretLeavesVMCleanOnErrorExit(t *testing.T) {
	v := newVM()
	if _, err := v.Interpret(`((x)=>x)(1,2)`); err == nil {
		t.Fatal("expected an error")
	}
	// A second, unrelated evaluation must succeed — proof that frames/
	// stack/providers were reset after the failing one (spec.md §8).
	out, err := v.Interpret("1+1")
	if err != nil || out.AsInt() != 2 {
		t.Fatalf("got %v, %v; want 2, nil", out, err)
	}
}

func TestAddWithNilOperandPassesOtherSideThrough(t *testing.T) {
	if got := mustEval(t, `nil + nil`); !got.IsNil() {
		t.Errorf("got %v, want Nil", got)
	}
	if got := mustEval(t, `1 + nil`); !got.IsInt() || got.AsInt() != 1 {
		t.Errorf("got %v, want Int(1)", got)
	}
	if got := mustEval(t, `nil + "x"`); got.AsString() != "x" {
		t.Errorf("got %v, want %q", got, "x")
	}
}

func TestKvcGetIsIdempotent(t *testing.T) {
	v := newVM()
	got, err := v.Interpret(`{n: Guid()}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, ferr := v.GetField(got, "n")
	if ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	second, serr := v.GetField(got, "n")
	if serr != nil {
		t.Fatalf("unexpected error: %v", serr)
	}
	if first.K != value.KGuid || second.K != value.KGuid {
		t.Fatalf("expected Guid values, got %v, %v", first.K, second.K)
	}
	if first.Obj != second.Obj {
		t.Errorf("expected memoized field to return the same value on repeat access")
	}
}
