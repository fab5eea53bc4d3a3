package vm

import "github.com/funvibe/funcscript/internal/value"

// lookupChain walks the provider chain starting at p looking for name
// (already lowercased), checking each node's current Kvc (spec.md §4.4
// "Provider resolution"). Returns the owning Kvc and whether found.
func lookupChain(p *value.Provider, name string) (*value.Kvc, bool) {
	for p != nil {
		if k := p.Current.AsKvc(); k != nil {
			if definesField(k, name) {
				return k, true
			}
		}
		p = p.Parent
	}
	return nil, false
}

func definesField(k *value.Kvc, name string) bool {
	if _, ok := k.Cache[name]; ok {
		return true
	}
	if _, ok := k.Entries[name]; ok {
		return true
	}
	return false
}

// getGlobal implements spec.md §4.4 "GetGlobal(k)": provider chain first,
// then the globals table, else Nil.
func (vm *VM) getGlobal(name string) (value.Value, *value.FsError) {
	if cp := vm.curProvider(); cp != nil {
		if k, ok := lookupChain(cp, name); ok {
			return vm.kvcGet(k, name)
		}
	}
	if v, ok := vm.globals[name]; ok {
		return v, nil
	}
	return value.Nil(), nil
}

// getParent implements "GetParent(k)": look up k starting one level
// above the current provider.
func (vm *VM) getParent(name string) (value.Value, *value.FsError) {
	cp := vm.curProvider()
	if cp == nil || cp.Parent == nil {
		return value.Nil(), nil
	}
	if k, ok := lookupChain(cp.Parent, name); ok {
		return vm.kvcGet(k, name)
	}
	if v, ok := vm.globals[name]; ok {
		return v, nil
	}
	return value.Nil(), nil
}

// getProp implements property access, which for records routes through
// provider/lazy semantics and for other kinds is a native-ish projection
// (spec.md §4.4 "GetProp routes through provider semantics").
func (vm *VM) getProp(recv value.Value, name string) (value.Value, *value.FsError) {
	switch recv.K {
	case value.KKvc:
		return vm.kvcGet(recv.AsKvc(), name)
	case value.KProvider:
		if k := recv.AsProvider().Current.AsKvc(); k != nil {
			return vm.kvcGet(k, name)
		}
		return value.Nil(), nil
	case value.KError:
		return recv, nil
	case value.KNil:
		return value.Nil(), nil
	default:
		return value.Nil(), nil
	}
}
