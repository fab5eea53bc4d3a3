// Package value implements FuncScript's tagged Value union and heap
// object model (spec.md §3), including the arbitrary-precision numeric
// tower (§4.5) and the JSON projection (§6.6).
//
// Small primitives are packed into an inline tagged struct (Kind + 8
// bytes of Data) and everything else rides in an interface field,
// avoiding an allocation for Nil/Bool/Int/Number.
package value

import (
	"math"
	"math/big"
)

// Kind identifies which alternative of the Value union is populated.
type Kind uint8

const (
	KNil Kind = iota
	KBool
	KInt
	KBigInt
	KNumber
	KError
	KString
	KList
	KRange
	KBytes
	KGuid
	KDateTime
	KKvc
	KProvider
	KFunction
	KNative
)

func (k Kind) String() string {
	switch k {
	case KNil:
		return "Nil"
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KBigInt:
		return "BigInt"
	case KNumber:
		return "Number"
	case KError:
		return "Error"
	case KString:
		return "String"
	case KList:
		return "List"
	case KRange:
		return "Range"
	case KBytes:
		return "Bytes"
	case KGuid:
		return "Guid"
	case KDateTime:
		return "DateTime"
	case KKvc:
		return "Kvc"
	case KProvider:
		return "Provider"
	case KFunction:
		return "Function"
	case KNative:
		return "NativeFn"
	default:
		return "?"
	}
}

// Object is implemented by every heap-allocated payload a Value can carry.
type Object interface {
	Kind() Kind
	Inspect() string // display form, used by TemplateMerge / text concat
}

// Value is a stack-allocated tagged union: primitives are inlined into
// Data, everything else lives behind Obj.
type Value struct {
	K   Kind
	Data uint64 // Int/Bool/Number bit pattern
	Obj  Object
}

func Nil() Value                  { return Value{K: KNil} }
func Bool(b bool) Value           { var d uint64; if b { d = 1 }; return Value{K: KBool, Data: d} }
func Int(i int64) Value           { return Value{K: KInt, Data: uint64(i)} }
func Number(f float64) Value      { return Value{K: KNumber, Data: math.Float64bits(f)} }
func BigInt(b *big.Int) Value     { return Value{K: KBigInt, Obj: &BigIntObj{V: b}} }
func Err(e *FsError) Value        { return Value{K: KError, Obj: &ErrorObj{Err: e}} }
func Str(s string) Value          { return Value{K: KString, Obj: &StringObj{S: s}} }
func List(items []Value) Value    { return Value{K: KList, Obj: &ListObj{Items: items}} }
func RangeVal(start, count int64) Value {
	return Value{K: KRange, Obj: &RangeObj{Start: start, Count: count}}
}
func Bytes(b []byte) Value    { return Value{K: KBytes, Obj: &BytesObj{B: b}} }
func GuidVal(g [16]byte) Value { return Value{K: KGuid, Obj: &GuidObj{B: g}} }
func DateTime(ticks int64) Value { return Value{K: KDateTime, Obj: &DateTimeObj{Ticks: ticks}} }

func (v Value) IsNil() bool   { return v.K == KNil }
func (v Value) IsBool() bool  { return v.K == KBool }
func (v Value) IsInt() bool   { return v.K == KInt }
func (v Value) IsBigInt() bool { return v.K == KBigInt }
func (v Value) IsNumber() bool { return v.K == KNumber }
func (v Value) IsError() bool { return v.K == KError }
func (v Value) IsString() bool { return v.K == KString }
func (v Value) IsList() bool  { return v.K == KList }
func (v Value) IsKvc() bool   { return v.K == KKvc }

func (v Value) AsBool() bool     { return v.Data == 1 }
func (v Value) AsInt() int64     { return int64(v.Data) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }

func (v Value) AsBigInt() *big.Int {
	if bo, ok := v.Obj.(*BigIntObj); ok {
		return bo.V
	}
	return nil
}

func (v Value) AsError() *FsError {
	if eo, ok := v.Obj.(*ErrorObj); ok {
		return eo.Err
	}
	return nil
}

func (v Value) AsString() string {
	if so, ok := v.Obj.(*StringObj); ok {
		return so.S
	}
	return ""
}

func (v Value) AsList() []Value {
	if lo, ok := v.Obj.(*ListObj); ok {
		return lo.Items
	}
	return nil
}

func (v Value) AsRange() (start, count int64, ok bool) {
	if ro, ok := v.Obj.(*RangeObj); ok {
		return ro.Start, ro.Count, true
	}
	return 0, 0, false
}

func (v Value) AsKvc() *Kvc {
	if k, ok := v.Obj.(*Kvc); ok {
		return k
	}
	return nil
}

func (v Value) AsProvider() *Provider {
	if p, ok := v.Obj.(*Provider); ok {
		return p
	}
	return nil
}

func (v Value) AsFunction() *Function {
	if f, ok := v.Obj.(*Function); ok {
		return f
	}
	return nil
}

func (v Value) AsNative() *NativeFn {
	if n, ok := v.Obj.(*NativeFn); ok {
		return n
	}
	return nil
}

func (v Value) AsBytes() []byte {
	if b, ok := v.Obj.(*BytesObj); ok {
		return b.B
	}
	return nil
}

// Truthy implements spec.md §4.4: "Truthy = any value except Nil,
// Bool(false), or Error."
func (v Value) Truthy() bool {
	switch v.K {
	case KNil, KError:
		return false
	case KBool:
		return v.AsBool()
	default:
		return true
	}
}

// Callable reports whether v can be invoked by OP_CALL (§4.4 "Call").
func (v Value) Callable() bool {
	return v.K == KFunction || v.K == KNative
}
