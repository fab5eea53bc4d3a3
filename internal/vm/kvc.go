package vm

import (
	"strings"

	"github.com/funvibe/funcscript/internal/value"
)

// kvcGet implements spec.md §4.4 "Lazy KVC evaluation" and §7 "exit-path
// discipline": every exit (cache hit, cycle fallthrough, thunk error, or
// success) pops whatever provider this call pushed and clears the
// evaluating bit, so a failing thunk never poisons later lookups.
func (vm *VM) kvcGet(k *value.Kvc, key string) (value.Value, *value.FsError) {
	key = strings.ToLower(key)

	k.Lock()
	if v, ok := k.Cache[key]; ok {
		k.Unlock()
		return v, nil
	}
	if k.Evaluating[key] {
		parent := k.Parent
		k.Unlock()
		return vm.fallToParent(parent, key)
	}
	thunk, hasThunk := k.Entries[key]
	if !hasThunk {
		parent := k.Parent
		k.Unlock()
		return vm.fallToParent(parent, key)
	}
	k.Evaluating[key] = true
	k.Unlock()

	recordAsProvider := value.NewProvider(value.Value{K: value.KKvc, Obj: k}, k.Parent)
	vm.providers = append(vm.providers, recordAsProvider)
	baseline := vm.frameCount

	vm.push(value.Value{K: value.KFunction, Obj: thunk})
	callErr := vm.call(0)
	var result value.Value
	var err *value.FsError
	if callErr != nil {
		err = callErr
	} else {
		result, err = vm.runLoop(baseline)
	}

	vm.providers = vm.providers[:len(vm.providers)-1]

	k.Lock()
	delete(k.Evaluating, key)
	if err == nil {
		k.Cache[key] = result
	}
	k.Unlock()

	if err != nil {
		return value.Value{}, err
	}
	return result, nil
}

func (vm *VM) fallToParent(parent *value.Provider, key string) (value.Value, *value.FsError) {
	if parent == nil {
		if v, ok := vm.globals[key]; ok {
			return v, nil
		}
		return value.Nil(), nil
	}
	if k, ok := lookupChain(parent, key); ok {
		return vm.kvcGet(k, key)
	}
	if v, ok := vm.globals[key]; ok {
		return v, nil
	}
	return value.Nil(), nil
}

// buildKvc materializes n (keyConst Value, thunkOrValue Value) pairs
// popped from the stack (pushed key-then-value per entry) into a new Kvc
// whose parent is the currently active provider.
func (vm *VM) buildKvc(n int) value.Value {
	pairs := make([]value.Value, 2*n)
	copy(pairs, vm.stack[len(vm.stack)-2*n:])
	vm.stack = vm.stack[:len(vm.stack)-2*n]

	// A duplicate key (e.g. a selector-sugar field re-declaring an
	// explicit one) keeps its first declaration, matching the original
	// evaluator's pop-in-reverse/insert-first semantics: the entry
	// nearer the start of the record wins, later duplicates are ignored.
	k := value.NewKvc(vm.curProvider())
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		display := pairs[2*i].AsString()
		lk := strings.ToLower(display)
		if seen[lk] {
			continue
		}
		seen[lk] = true
		v := pairs[2*i+1]
		if fn := v.AsFunction(); fn != nil && fn.Arity == 0 {
			k.AddField(display, fn, value.Value{}, false)
		} else {
			k.AddField(display, nil, v, true)
		}
	}
	return value.Value{K: value.KKvc, Obj: k}
}

// mergeKvc implements spec.md §4.4 "Record merge (Add of two Kvcs)":
// right-wins at the leaves, with recursive merge when both sides define
// a record at the same key. Both operands are forced (cache fully
// populated) before merging so parent lookups inside them still resolve
// against their original (pre-merge) scope.
func (vm *VM) mergeKvc(left, right *value.Kvc) (value.Value, *value.FsError) {
	if err := vm.forceAll(left); err != nil {
		return value.Value{}, err
	}
	if err := vm.forceAll(right); err != nil {
		return value.Value{}, err
	}

	out := value.NewKvc(nil)
	for _, lk := range left.Order {
		out.Order = append(out.Order, lk)
		out.DisplayNames[lk] = left.DisplayNames[lk]
	}
	for _, rk := range right.Order {
		if _, exists := out.DisplayNames[rk]; !exists {
			out.Order = append(out.Order, rk)
		}
		out.DisplayNames[rk] = right.DisplayNames[rk]
	}

	for _, key := range out.Order {
		lv, lok := left.Cache[key]
		rv, rok := right.Cache[key]
		switch {
		case lok && rok && lv.K == value.KKvc && rv.K == value.KKvc:
			merged, err := vm.mergeKvc(lv.AsKvc(), rv.AsKvc())
			if err != nil {
				return value.Value{}, err
			}
			out.Cache[key] = merged
		case rok:
			out.Cache[key] = rv
		default:
			out.Cache[key] = lv
		}
	}
	return value.Value{K: value.KKvc, Obj: out}, nil
}

// forceAll evaluates every field of k so Cache is fully populated,
// needed before a merge or a JSON projection.
func (vm *VM) forceAll(k *value.Kvc) *value.FsError {
	for _, key := range k.Order {
		if _, err := vm.kvcGet(k, key); err != nil {
			return err
		}
	}
	return nil
}
