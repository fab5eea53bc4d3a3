package vm

import (
	"sort"
	"strings"

	"github.com/funvibe/funcscript/internal/value"
)

// step executes one instruction in the top frame (spec.md §4.4
// "Dispatch"). A frame whose ip has run off the end of its chunk is
// treated as an implicit `Return Nil`.
func (vm *VM) step() *value.FsError {
	f := vm.top()
	if f.atEnd() {
		vm.push(value.Nil())
		return vm.opReturn()
	}

	op := Opcode(f.readByte())
	switch op {
	case OP_CONST:
		idx := f.readOperand()
		vm.push(f.fn.Chunk.Constants[idx])

	case OP_NIL:
		vm.push(value.Nil())
	case OP_TRUE:
		vm.push(value.Bool(true))
	case OP_FALSE:
		vm.push(value.Bool(false))

	case OP_POP:
		vm.pop()
	case OP_DUP:
		vm.push(vm.peek(0))
	case OP_SWAP:
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

	case OP_ADD:
		return vm.binaryAdd()
	case OP_SUB:
		return vm.binaryNumeric(value.Subtract)
	case OP_MUL:
		return vm.binaryNumeric(value.Multiply)
	case OP_DIV:
		return vm.binaryNumeric(value.Divide)
	case OP_INT_DIV:
		return vm.binaryNumeric(value.IntDiv)
	case OP_MOD:
		return vm.binaryNumeric(value.Modulo)
	case OP_POW:
		return vm.binaryNumeric(value.Pow)
	case OP_NEG:
		v := vm.pop()
		if v.IsError() {
			vm.push(v)
			return nil
		}
		r, err := value.Negate(v)
		if err != nil {
			vm.push(value.Err(err))
			return nil
		}
		vm.push(r)

	case OP_NOT:
		v := vm.pop()
		vm.push(value.Bool(!v.Truthy()))

	case OP_EQ:
		b := vm.pop()
		a := vm.pop()
		vm.push(value.Bool(vm.valuesEqual(a, b)))
	case OP_LT, OP_LE, OP_GT, OP_GE:
		return vm.compareOp(op)

	case OP_GET_LOCAL:
		slot := f.readOperand()
		vm.push(vm.stack[f.base+slot])

	case OP_GET_GLOBAL:
		idx := f.readOperand()
		name := f.fn.Chunk.Constants[idx].AsString()
		v, err := vm.getGlobal(strings.ToLower(name))
		if err != nil {
			return err
		}
		vm.push(v)

	case OP_GET_PARENT:
		idx := f.readOperand()
		name := f.fn.Chunk.Constants[idx].AsString()
		v, err := vm.getParent(strings.ToLower(name))
		if err != nil {
			return err
		}
		vm.push(v)

	case OP_JUMP:
		off := f.readOperand()
		f.ip += off
	case OP_JUMP_IF_FALSE:
		off := f.readOperand()
		if !vm.peek(0).Truthy() {
			f.ip += off
		}
	case OP_JUMP_IF_NIL:
		off := f.readOperand()
		if vm.peek(0).IsNil() {
			f.ip += off
		}

	case OP_CLOSURE:
		idx := f.readOperand()
		vm.push(f.fn.Chunk.Constants[idx])

	case OP_CALL:
		argc := f.readOperand()
		return vm.call(argc)

	case OP_RETURN:
		return vm.opReturn()

	case OP_BUILD_LIST:
		n := f.readOperand()
		items := make([]value.Value, n)
		copy(items, vm.stack[len(vm.stack)-n:])
		vm.stack = vm.stack[:len(vm.stack)-n]
		vm.push(value.List(items))

	case OP_BUILD_KVC:
		n := f.readOperand()
		vm.push(vm.buildKvc(n))

	case OP_SELECT:
		idx := f.readOperand()
		selector := f.fn.Chunk.Constants[idx]
		return vm.opSelect(selector)

	case OP_MAKE_PROVIDER:
		v := vm.pop()
		vm.push(value.Value{K: value.KProvider, Obj: value.NewProvider(v, vm.curProvider())})

	case OP_PUSH_PROVIDER:
		v := vm.pop()
		var p *value.Provider
		if v.K == value.KProvider {
			p = v.AsProvider()
		} else {
			p = value.NewProvider(v, vm.curProvider())
		}
		vm.providers = append(vm.providers, p)

	case OP_POP_PROVIDER:
		vm.providers = vm.providers[:len(vm.providers)-1]

	case OP_GET_PROP:
		idx := f.readOperand()
		name := f.fn.Chunk.Constants[idx].AsString()
		recv := vm.pop()
		v, err := vm.getProp(recv, name)
		if err != nil {
			return err
		}
		vm.push(v)

	case OP_GET_INDEX:
		return vm.opIndex()

	case OP_MAP:
		return vm.opMap()
	case OP_REDUCE:
		hasSeed := f.readOperand() != 0
		return vm.opReduce(hasSeed)

	case OP_HALT:
		vm.frameCount = 0

	default:
		return value.NewError(2000, "unknown opcode")
	}
	return nil
}

func (vm *VM) opReturn() *value.FsError {
	result := vm.pop()
	f := vm.top()
	vm.stack = vm.stack[:f.base]
	vm.frameCount--
	vm.frames = vm.frames[:vm.frameCount]
	vm.push(result)
	return nil
}

// binaryAdd dispatches `+` across numeric, string, list, and record
// combinations (spec.md §4.3, §4.5).
func (vm *VM) binaryAdd() *value.FsError {
	b := vm.pop()
	a := vm.pop()
	if a.IsError() {
		vm.push(a)
		return nil
	}
	if b.IsError() {
		vm.push(b)
		return nil
	}

	switch {
	case a.IsNil() && b.IsNil():
		vm.push(value.Nil())
		return nil
	case a.IsNil():
		vm.push(b)
		return nil
	case b.IsNil():
		vm.push(a)
		return nil
	case a.K == value.KString || b.K == value.KString:
		vm.push(value.Str(value.Display(a) + value.Display(b)))
		return nil
	case a.K == value.KList && b.K == value.KList:
		vm.push(value.List(append(append([]value.Value{}, a.AsList()...), b.AsList()...)))
		return nil
	case a.K == value.KList:
		vm.push(value.List(append(append([]value.Value{}, a.AsList()...), b)))
		return nil
	case b.K == value.KList:
		vm.push(value.List(append([]value.Value{a}, b.AsList()...)))
		return nil
	case a.K == value.KKvc && b.K == value.KKvc:
		merged, err := vm.mergeKvc(a.AsKvc(), b.AsKvc())
		if err != nil {
			vm.push(value.Err(err))
			return nil
		}
		vm.push(merged)
		return nil
	default:
		r, err := value.Add(a, b)
		if err != nil {
			vm.push(value.Err(err))
			return nil
		}
		vm.push(r)
		return nil
	}
}

type numOp func(a, b value.Value) (value.Value, *value.FsError)

func (vm *VM) binaryNumeric(op numOp) *value.FsError {
	b := vm.pop()
	a := vm.pop()
	if a.IsError() {
		vm.push(a)
		return nil
	}
	if b.IsError() {
		vm.push(b)
		return nil
	}
	r, err := op(a, b)
	if err != nil {
		vm.push(value.Err(err))
		return nil
	}
	vm.push(r)
	return nil
}

func (vm *VM) compareOp(op Opcode) *value.FsError {
	b := vm.pop()
	a := vm.pop()
	if a.IsError() {
		vm.push(a)
		return nil
	}
	if b.IsError() {
		vm.push(b)
		return nil
	}
	c, err := value.Compare(a, b)
	if err != nil {
		vm.push(value.Err(err))
		return nil
	}
	var result bool
	switch op {
	case OP_LT:
		result = c < 0
	case OP_LE:
		result = c <= 0
	case OP_GT:
		result = c > 0
	case OP_GE:
		result = c >= 0
	}
	vm.push(value.Bool(result))
	return nil
}

// valuesEqual implements `=`/`==` across all value kinds (spec.md §4.5
// for numeric combinations; structural equality for the rest).
func (vm *VM) valuesEqual(a, b value.Value) bool {
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
	case value.KList:
		al, bl := a.AsList(), b.AsList()
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !vm.valuesEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	default:
		return a.Obj == b.Obj
	}
}

// opIndex implements `[expr]` over List, Range, Bytes, and String.
func (vm *VM) opIndex() *value.FsError {
	idxV := vm.pop()
	recv := vm.pop()
	if recv.IsError() {
		vm.push(recv)
		return nil
	}
	if !idxV.IsInt() {
		vm.push(value.Err(value.NewError(2008, "index must be Int")))
		return nil
	}
	i := idxV.AsInt()
	switch recv.K {
	case value.KList:
		items := recv.AsList()
		if i < 0 || i >= int64(len(items)) {
			vm.push(value.Nil())
			return nil
		}
		vm.push(items[i])
	case value.KRange:
		start, count, _ := recv.AsRange()
		if i < 0 || i >= count {
			vm.push(value.Nil())
			return nil
		}
		vm.push(value.Int(start + i))
	case value.KBytes:
		b := recv.AsBytes()
		if i < 0 || i >= int64(len(b)) {
			vm.push(value.Nil())
			return nil
		}
		vm.push(value.Int(int64(b[i])))
	case value.KString:
		s := []rune(recv.AsString())
		if i < 0 || i >= int64(len(s)) {
			vm.push(value.Nil())
			return nil
		}
		vm.push(value.Str(string(s[i])))
	default:
		vm.push(value.Nil())
	}
	return nil
}

// opSelect implements spec.md §4.3 "Select(k)": if receiver is a List,
// map the selector over each element; otherwise apply once.
func (vm *VM) opSelect(selector value.Value) *value.FsError {
	recv := vm.pop()
	if recv.IsError() {
		vm.push(recv)
		return nil
	}
	if recv.K == value.KList {
		items := recv.AsList()
		out := make([]value.Value, len(items))
		for i, it := range items {
			v, err := vm.CallValue(selector, []value.Value{it})
			if err != nil {
				return err
			}
			out[i] = v
		}
		vm.push(value.List(out))
		return nil
	}
	v, err := vm.CallValue(selector, []value.Value{recv})
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

// listOrRange materializes the receiver of a higher-order opcode into a
// concrete slice. Range receivers are expanded on demand per call
// (acceptable since Map/Reduce are user-invoked, unlike Len which must
// stay O(1) per spec.md scenario 6).
func listOrRange(recv value.Value) ([]value.Value, bool) {
	switch recv.K {
	case value.KList:
		return recv.AsList(), true
	case value.KRange:
		start, count, _ := recv.AsRange()
		out := make([]value.Value, count)
		for i := int64(0); i < count; i++ {
			out[i] = value.Int(start + i)
		}
		return out, true
	}
	return nil, false
}

func (vm *VM) opMap() *value.FsError {
	fn := vm.pop()
	recv := vm.pop()
	if recv.IsNil() {
		vm.push(value.Nil())
		return nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		vm.push(value.Err(value.NewError(2015, "map requires a List or Range")))
		return nil
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		args := []value.Value{it}
		if fn.AsFunction() != nil && fn.AsFunction().Arity == 2 {
			args = append(args, value.Int(int64(i)))
		}
		v, err := vm.CallValue(fn, args)
		if err != nil {
			return err
		}
		out[i] = v
	}
	vm.push(value.List(out))
	return nil
}

func (vm *VM) opReduce(hasSeed bool) *value.FsError {
	var seed value.Value
	if hasSeed {
		seed = vm.pop()
	}
	fn := vm.pop()
	recv := vm.pop()
	if recv.IsNil() {
		vm.push(value.Nil())
		return nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		vm.push(value.Err(value.NewError(2016, "reduce requires a List or Range")))
		return nil
	}
	acc := value.Nil()
	if hasSeed {
		acc = seed
	}
	for _, it := range items {
		v, err := vm.CallValue(fn, []value.Value{acc, it})
		if err != nil {
			return err
		}
		acc = v
	}
	vm.push(acc)
	return nil
}

// Filter/Any/FirstWhere/Sort are plain native functions (internal/native)
// that call these exported helpers, rather than dedicated opcodes —
// they have no infix grammar form (spec.md §4.2 only gives map/reduce
// one).

func (vm *VM) Filter(recv, fn value.Value) (value.Value, *value.FsError) {
	if recv.IsNil() {
		return value.Nil(), nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		return value.Value{}, value.NewError(2017, "filter requires a List or Range")
	}
	var out []value.Value
	for _, it := range items {
		v, err := vm.CallValue(fn, []value.Value{it})
		if err != nil {
			return value.Value{}, err
		}
		if v.Truthy() {
			out = append(out, it)
		}
	}
	return value.List(out), nil
}

func (vm *VM) Any(recv, fn value.Value) (value.Value, *value.FsError) {
	if recv.IsNil() {
		return value.Bool(false), nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		return value.Value{}, value.NewError(2018, "any requires a List or Range")
	}
	for _, it := range items {
		v, err := vm.CallValue(fn, []value.Value{it})
		if err != nil {
			return value.Value{}, err
		}
		if v.Truthy() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func (vm *VM) FirstWhere(recv, fn value.Value) (value.Value, *value.FsError) {
	if recv.IsNil() {
		return value.Nil(), nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		return value.Value{}, value.NewError(2019, "firstWhere requires a List or Range")
	}
	for _, it := range items {
		v, err := vm.CallValue(fn, []value.Value{it})
		if err != nil {
			return value.Value{}, err
		}
		if v.Truthy() {
			return it, nil
		}
	}
	return value.Nil(), nil
}

func (vm *VM) Sort(recv, fn value.Value) (value.Value, *value.FsError) {
	if recv.IsNil() {
		return value.Nil(), nil
	}
	items, ok := listOrRange(recv)
	if !ok {
		return value.Value{}, value.NewError(2020, "sort requires a List or Range")
	}
	out := append([]value.Value{}, items...)
	var sortErr *value.FsError
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		v, err := vm.CallValue(fn, []value.Value{out[i], out[j]})
		if err != nil {
			sortErr = err
			return false
		}
		return v.IsInt() && v.AsInt() < 0
	})
	if sortErr != nil {
		return value.Value{}, sortErr
	}
	return value.List(out), nil
}
