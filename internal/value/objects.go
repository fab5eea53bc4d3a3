package value

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// FsError is the structured payload of a Value::Error (spec.md §3, §6.2).
type FsError struct {
	Code    int
	Message string
	Line    int // -1 when unknown
	Column  int // -1 when unknown
}

func NewError(code int, message string) *FsError {
	return &FsError{Code: code, Message: message, Line: -1, Column: -1}
}

func (e *FsError) Error() string { return fmt.Sprintf("error %d: %s", e.Code, e.Message) }

type ErrorObj struct{ Err *FsError }

func (e *ErrorObj) Kind() Kind { return KError }
func (e *ErrorObj) Inspect() string {
	return fmt.Sprintf("Error(%d, %q)", e.Err.Code, e.Err.Message)
}

type StringObj struct{ S string }

func (s *StringObj) Kind() Kind      { return KString }
func (s *StringObj) Inspect() string { return s.S }

type ListObj struct{ Items []Value }

func (l *ListObj) Kind() Kind { return KList }
func (l *ListObj) Inspect() string {
	out := "["
	for i, it := range l.Items {
		if i > 0 {
			out += ", "
		}
		out += Display(it)
	}
	return out + "]"
}

// RangeObj is a lazy integer range — never materialized (spec.md §3).
type RangeObj struct {
	Start int64
	Count int64
}

func (r *RangeObj) Kind() Kind      { return KRange }
func (r *RangeObj) Inspect() string { return fmt.Sprintf("Range(%d, %d)", r.Start, r.Count) }

// At returns the i-th element of the range (0-indexed), without
// materializing the sequence.
func (r *RangeObj) At(i int64) (int64, bool) {
	if i < 0 || i >= r.Count {
		return 0, false
	}
	return r.Start + i, true
}

type BytesObj struct{ B []byte }

func (b *BytesObj) Kind() Kind      { return KBytes }
func (b *BytesObj) Inspect() string { return fmt.Sprintf("Bytes(%d)", len(b.B)) }

type GuidObj struct{ B [16]byte }

func (g *GuidObj) Kind() Kind      { return KGuid }
func (g *GuidObj) Inspect() string { return uuid.UUID(g.B).String() }

// DateTimeObj is a signed 64-bit tick count; 1 tick = 100ns, epoch
// compatible with .NET (spec.md §3).
type DateTimeObj struct{ Ticks int64 }

func (d *DateTimeObj) Kind() Kind      { return KDateTime }
func (d *DateTimeObj) Inspect() string { return fmt.Sprintf("DateTime(%d)", d.Ticks) }

type BigIntObj struct{ V *big.Int }

func (b *BigIntObj) Kind() Kind      { return KBigInt }
func (b *BigIntObj) Inspect() string { return b.V.String() }

// Function is a compiled user-defined function: arity, bytecode, constant
// pool, and an optional name. Functions do NOT close over locals (spec.md
// §4.2 "Lambdas", Design Notes "Closures without upvalue capture"); free
// variables are resolved through the provider chain + globals at call time.
type Function struct {
	Name   string
	Arity  int
	Chunk  *Chunk
}

func (f *Function) Kind() Kind { return KFunction }
func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("Function(%s/%d)", name, f.Arity)
}

// NativeFn wraps a host Go routine callable from FuncScript.
type NativeFn struct {
	Name string
	Fn   func(args []Value) Value
}

func (n *NativeFn) Kind() Kind      { return KNative }
func (n *NativeFn) Inspect() string { return fmt.Sprintf("NativeFn(%s)", n.Name) }

// Kvc is the lazy record (spec.md §3 "KvcObject (record)"). Lookup is
// case-insensitive; Order/DisplayNames preserve declaration order and
// original casing for iteration/JSON.
type Kvc struct {
	mu sync.Mutex

	Order        []string          // lowercased keys, declaration order
	DisplayNames map[string]string // lowercased -> original-cased
	Entries      map[string]*Function
	Cache        map[string]Value
	Evaluating   map[string]bool
	Parent       *Provider // lexical scope captured at construction
}

func NewKvc(parent *Provider) *Kvc {
	return &Kvc{
		DisplayNames: make(map[string]string),
		Entries:      make(map[string]*Function),
		Cache:        make(map[string]Value),
		Evaluating:   make(map[string]bool),
		Parent:       parent,
	}
}

func (k *Kvc) Kind() Kind { return KKvc }
func (k *Kvc) Inspect() string {
	out := "{"
	for i, lk := range k.Order {
		if i > 0 {
			out += ", "
		}
		out += k.DisplayNames[lk] + ": ..."
	}
	return out + "}"
}

// AddField registers a field in declaration order. display is the
// original-cased key; thunk may be nil if val is already known (used by
// the record-merge materialization path).
func (k *Kvc) AddField(display string, thunk *Function, val Value, hasVal bool) {
	lk := lower(display)
	if _, exists := k.DisplayNames[lk]; !exists {
		k.Order = append(k.Order, lk)
	}
	k.DisplayNames[lk] = display
	if thunk != nil {
		k.Entries[lk] = thunk
	}
	if hasVal {
		k.Cache[lk] = val
	}
}

// Lock/Unlock expose the record's interior-mutability lock to the VM
// package, which guards Cache/Evaluating access during lazy evaluation
// (spec.md §5 "Memoization uses interior mutability on the KvcObject").
func (k *Kvc) Lock()   { k.mu.Lock() }
func (k *Kvc) Unlock() { k.mu.Unlock() }

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// Provider is a scope node wrapping a "current" value (almost always a
// Kvc) and an optional parent (spec.md §3 "ProviderObject"). Providers
// form the dynamic chain used to resolve free variables at call time.
type Provider struct {
	Current Value
	Parent  *Provider
}

func (p *Provider) Kind() Kind      { return KProvider }
func (p *Provider) Inspect() string { return "Provider" }

// NewProvider pushes current onto parent.
func NewProvider(current Value, parent *Provider) *Provider {
	return &Provider{Current: current, Parent: parent}
}

// Display renders a Value the way TemplateMerge and string+X concatenation
// do (spec.md §4.2.4): strings render without quotes, Nil renders as
// "nil", everything else uses its Inspect form.
func Display(v Value) string {
	switch v.K {
	case KNil:
		return "nil"
	case KBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KNumber:
		return formatFloat(v.AsFloat())
	case KString:
		return v.AsString()
	default:
		if v.Obj != nil {
			return v.Obj.Inspect()
		}
		return "nil"
	}
}
