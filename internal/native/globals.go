package native

import (
	"math/big"
	"strings"
	"time"

	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// registerGlobals wires the ungrouped global natives of spec.md §12.1.
func registerGlobals(v *vm.VM) {
	v.SetGlobal("Range", native("Range", nativeRange))
	v.SetGlobal("Len", native("Len", nativeLen))
	v.SetGlobal("First", native("First", nativeFirst))
	v.SetGlobal("And", native("And", func(args []value.Value) value.Value {
		a, b := arg(args, 0), arg(args, 1)
		if a.IsError() {
			return a
		}
		if b.IsError() {
			return b
		}
		return value.Bool(a.Truthy() && b.Truthy())
	}))
	v.SetGlobal("Or", native("Or", func(args []value.Value) value.Value {
		a, b := arg(args, 0), arg(args, 1)
		if a.IsError() {
			return a
		}
		if b.IsError() {
			return b
		}
		return value.Bool(a.Truthy() || b.Truthy())
	}))
	v.SetGlobal("In", native("In", func(args []value.Value) value.Value {
		needle, haystack := arg(args, 0), arg(args, 1)
		if needle.IsError() {
			return needle
		}
		if haystack.IsError() {
			return haystack
		}
		return value.Bool(contains(haystack, needle))
	}))
	v.SetGlobal("TemplateMerge", native("TemplateMerge", nativeTemplateMerge))
	v.SetGlobal("Sum", native("Sum", nativeSum))
	v.SetGlobal("SumApprox", native("SumApprox", nativeSumApprox))
	v.SetGlobal("Date", native("Date", nativeDate))
	v.SetGlobal("TicksToDate", native("TicksToDate", func(args []value.Value) value.Value {
		a := arg(args, 0)
		if !a.IsInt() {
			return value.Err(value.NewError(2022, "TicksToDate expects Int"))
		}
		return value.DateTime(a.AsInt())
	}))
	v.SetGlobal("Guid", native("Guid", nativeGuid))
	v.SetGlobal("ChangeType", native("ChangeType", nativeChangeType))
	v.SetGlobal("Take", native("Take", nativeTake))
	v.SetGlobal("Skip", native("Skip", nativeSkip))
	v.SetGlobal("Reverse", native("Reverse", nativeReverse))
	v.SetGlobal("Distinct", native("Distinct", nativeDistinct))
	v.SetGlobal("Contains", native("Contains", func(args []value.Value) value.Value {
		haystack, needle := arg(args, 0), arg(args, 1)
		return value.Bool(contains(haystack, needle))
	}))
	v.SetGlobal("Error", native("Error", func(args []value.Value) value.Value {
		code := arg(args, 0)
		msg := arg(args, 1)
		if !code.IsInt() {
			return value.Err(value.NewError(2022, "Error expects an Int code"))
		}
		return value.Err(value.NewError(int(code.AsInt()), value.Display(msg)))
	}))
	v.SetGlobal("Log", native("Log", func(args []value.Value) value.Value {
		if v.Host != nil {
			v.Host.Log(value.Display(arg(args, 0)))
		}
		return value.Nil()
	}))
	// If(cond, then, else) is handled at the compiler level as a call-form
	// (spec.md §4.2); no native entry is needed for it.
}

func nativeRange(args []value.Value) value.Value {
	start, count := arg(args, 0), arg(args, 1)
	if !start.IsInt() || !count.IsInt() {
		return value.Err(value.NewError(2007, "Range expects (Int, Int)"))
	}
	if count.AsInt() < 0 {
		return value.Err(value.NewError(2007, "Range count must be non-negative"))
	}
	return value.RangeVal(start.AsInt(), count.AsInt())
}

// nativeLen stays O(1) for Range (spec.md scenario 6: Len over a
// billion-element Range must not materialize it).
func nativeLen(args []value.Value) value.Value {
	x := arg(args, 0)
	switch x.K {
	case value.KList:
		return value.Int(int64(len(x.AsList())))
	case value.KString:
		return value.Int(int64(len([]rune(x.AsString()))))
	case value.KRange:
		_, count, _ := x.AsRange()
		return value.Int(count)
	case value.KBytes:
		return value.Int(int64(len(x.AsBytes())))
	case value.KNil:
		return value.Int(0)
	default:
		return value.Err(value.NewError(2008, "Len requires a length-supporting value"))
	}
}

func nativeFirst(args []value.Value) value.Value {
	x := arg(args, 0)
	switch x.K {
	case value.KList:
		items := x.AsList()
		if len(items) == 0 {
			return value.Nil()
		}
		return items[0]
	case value.KRange:
		start, count, _ := x.AsRange()
		if count == 0 {
			return value.Nil()
		}
		return value.Int(start)
	case value.KNil:
		return value.Nil()
	default:
		return value.Err(value.NewError(2008, "First requires a List or Range"))
	}
}

func nativeTemplateMerge(args []value.Value) value.Value {
	var b strings.Builder
	for _, a := range args {
		if a.IsError() {
			return a
		}
		b.WriteString(value.Display(a))
	}
	return value.Str(b.String())
}

// nativeSum computes an exact sum: Range receivers use the closed-form
// arithmetic-series formula so a billion-element Range never gets
// materialized; List receivers fold with the numeric-tower Add.
func nativeSum(args []value.Value) value.Value {
	x := arg(args, 0)
	switch x.K {
	case value.KNil:
		return value.Nil()
	case value.KRange:
		return rangeSumExact(x)
	case value.KList:
		acc := value.Int(0)
		for _, it := range x.AsList() {
			sum, err := value.Add(acc, it)
			if err != nil {
				return value.Err(err)
			}
			acc = sum
		}
		return acc
	default:
		return value.Err(value.NewError(2015, "Sum requires a List or Range"))
	}
}

func rangeSumExact(x value.Value) value.Value {
	start, count, _ := x.AsRange()
	if count == 0 {
		return value.Int(0)
	}
	// sum = count*start + count*(count-1)/2
	n := big.NewInt(count)
	s := big.NewInt(start)
	total := new(big.Int).Mul(n, s)
	tri := new(big.Int).Mul(n, new(big.Int).Sub(n, big.NewInt(1)))
	tri.Quo(tri, big.NewInt(2))
	total.Add(total, tri)
	if total.IsInt64() {
		return value.Int(total.Int64())
	}
	return value.BigInt(total)
}

// nativeSumApprox sums with a plain float64 accumulator instead of the
// overflow-checked numeric tower, trading exactness for throughput on
// very large collections.
func nativeSumApprox(args []value.Value) value.Value {
	x := arg(args, 0)
	switch x.K {
	case value.KNil:
		return value.Nil()
	case value.KRange:
		start, count, _ := x.AsRange()
		return value.Number(float64(count)*float64(start) + float64(count)*float64(count-1)/2)
	case value.KList:
		acc := 0.0
		for _, it := range x.AsList() {
			f, ok := asApproxFloat(it)
			if !ok {
				return value.Err(value.NewError(2010, "SumApprox requires numeric elements"))
			}
			acc += f
		}
		return value.Number(acc)
	default:
		return value.Err(value.NewError(2015, "SumApprox requires a List or Range"))
	}
}

func asApproxFloat(v value.Value) (float64, bool) {
	switch v.K {
	case value.KInt:
		return float64(v.AsInt()), true
	case value.KNumber:
		return v.AsFloat(), true
	case value.KBigInt:
		f, _ := new(big.Float).SetInt(v.AsBigInt()).Float64()
		return f, true
	default:
		return 0, false
	}
}

// nativeDate builds a DateTime from (year, month, day, hour?, minute?,
// second?, millisecond?) using UTC, then converts via the .NET epoch
// offset shared with the JSON projection.
func nativeDate(args []value.Value) value.Value {
	if len(args) < 3 {
		return value.Err(value.NewError(2022, "Date requires at least (year, month, day)"))
	}
	ints := make([]int, 7)
	for i := 0; i < 7 && i < len(args); i++ {
		if !args[i].IsInt() {
			return value.Err(value.NewError(2022, "Date arguments must be Int"))
		}
		ints[i] = int(args[i].AsInt())
	}
	t := time.Date(ints[0], time.Month(ints[1]), ints[2], ints[3], ints[4], ints[5], ints[6]*int(time.Millisecond), time.UTC)
	ticks := t.UnixNano()/100 + value.NetEpochOffsetTicks
	return value.DateTime(ticks)
}

func nativeChangeType(args []value.Value) value.Value {
	v, typeName := arg(args, 0), arg(args, 1)
	if !typeName.IsString() {
		return value.Err(value.NewError(2022, "ChangeType expects a type name String"))
	}
	return convertTo(v, typeName.AsString())
}

func nativeTake(args []value.Value) value.Value {
	n, x := arg(args, 0), arg(args, 1)
	if !n.IsInt() {
		return value.Err(value.NewError(2022, "Take expects (Int, List)"))
	}
	items, ok := materialize(x)
	if !ok {
		return value.Err(value.NewError(2015, "Take requires a List or Range"))
	}
	k := int(n.AsInt())
	if k < 0 {
		k = 0
	}
	if k > len(items) {
		k = len(items)
	}
	return value.List(append([]value.Value{}, items[:k]...))
}

func nativeSkip(args []value.Value) value.Value {
	n, x := arg(args, 0), arg(args, 1)
	if !n.IsInt() {
		return value.Err(value.NewError(2022, "Skip expects (Int, List)"))
	}
	items, ok := materialize(x)
	if !ok {
		return value.Err(value.NewError(2015, "Skip requires a List or Range"))
	}
	k := int(n.AsInt())
	if k < 0 {
		k = 0
	}
	if k > len(items) {
		k = len(items)
	}
	return value.List(append([]value.Value{}, items[k:]...))
}

func nativeReverse(args []value.Value) value.Value {
	items, ok := materialize(arg(args, 0))
	if !ok {
		return value.Err(value.NewError(2015, "Reverse requires a List or Range"))
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return value.List(out)
}

func nativeDistinct(args []value.Value) value.Value {
	items, ok := materialize(arg(args, 0))
	if !ok {
		return value.Err(value.NewError(2015, "Distinct requires a List or Range"))
	}
	var out []value.Value
	for _, it := range items {
		dup := false
		for _, seen := range out {
			if structuralEqual(seen, it) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return value.List(out)
}

func nativeGuid(args []value.Value) value.Value {
	if len(args) == 0 {
		return newRandomGuid()
	}
	s := arg(args, 0)
	if !s.IsString() {
		return value.Err(value.NewError(2022, "Guid expects a String"))
	}
	return parseGuid(s.AsString())
}

// materialize expands a List or Range into a concrete slice (used by
// the natives that must inspect/reshuffle the whole collection, unlike
// Len/First which stay O(1) for Range).
func materialize(x value.Value) ([]value.Value, bool) {
	switch x.K {
	case value.KList:
		return x.AsList(), true
	case value.KRange:
		start, count, _ := x.AsRange()
		out := make([]value.Value, count)
		for i := int64(0); i < count; i++ {
			out[i] = value.Int(start + i)
		}
		return out, true
	}
	return nil, false
}

func contains(haystack, needle value.Value) bool {
	items, ok := materialize(haystack)
	if !ok {
		if haystack.IsString() && needle.IsString() {
			return strings.Contains(haystack.AsString(), needle.AsString())
		}
		return false
	}
	for _, it := range items {
		if structuralEqual(it, needle) {
			return true
		}
	}
	return false
}

// structuralEqual mirrors the VM's value-equality rules for the subset
// of kinds natives need to compare (numeric cross-kind, String, Bool,
// Nil, pointer identity otherwise) without importing internal/vm.
func structuralEqual(a, b value.Value) bool {
	if a.K == value.KInt || a.K == value.KBigInt || a.K == value.KNumber ||
		b.K == value.KInt || b.K == value.KBigInt || b.K == value.KNumber {
		return value.NumericEqual(a, b)
	}
	if a.K != b.K {
		return false
	}
	switch a.K {
	case value.KNil:
		return true
	case value.KBool:
		return a.AsBool() == b.AsBool()
	case value.KString:
		return a.AsString() == b.AsString()
	default:
		return a.Obj == b.Obj
	}
}
