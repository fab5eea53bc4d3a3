package vm

import "github.com/funvibe/funcscript/internal/value"

// Index resolves recv[i] for List/Range/Bytes/String receivers, mirroring
// opIndex but callable directly by an embedder (spec.md §4.6) without
// going through the bytecode stack.
func (vm *VM) Index(recv value.Value, i int64) (value.Value, *value.FsError) {
	if recv.IsError() {
		return recv, nil
	}
	switch recv.K {
	case value.KList:
		items := recv.AsList()
		if i < 0 || i >= int64(len(items)) {
			return value.Nil(), nil
		}
		return items[i], nil
	case value.KRange:
		start, count, _ := recv.AsRange()
		if i < 0 || i >= count {
			return value.Nil(), nil
		}
		return value.Int(start + i), nil
	case value.KBytes:
		b := recv.AsBytes()
		if i < 0 || i >= int64(len(b)) {
			return value.Nil(), nil
		}
		return value.Int(int64(b[i])), nil
	case value.KString:
		s := []rune(recv.AsString())
		if i < 0 || i >= int64(len(s)) {
			return value.Nil(), nil
		}
		return value.Str(string(s[i])), nil
	default:
		return value.Value{}, value.NewError(2008, "value does not support indexing")
	}
}

// GetField resolves a record property by name for an embedder (spec.md
// §4.6 "property lookup on records"), forcing the field's thunk if it
// hasn't been evaluated yet.
func (vm *VM) GetField(recv value.Value, name string) (value.Value, *value.FsError) {
	return vm.getProp(recv, name)
}

// Keys lists a record's field names in declaration order, original-cased
// (spec.md §4.6 "listing record keys").
func (vm *VM) Keys(recv value.Value) ([]string, *value.FsError) {
	if recv.K != value.KKvc {
		return nil, value.NewError(2008, "value is not a record")
	}
	k := recv.AsKvc()
	out := make([]string, len(k.Order))
	for i, lk := range k.Order {
		out[i] = k.DisplayNames[lk]
	}
	return out, nil
}

// RangeInfo returns a Range's (start, count) for an embedder.
func (vm *VM) RangeInfo(recv value.Value) (start, count int64, err *value.FsError) {
	s, c, ok := recv.AsRange()
	if !ok {
		return 0, 0, value.NewError(2007, "value is not a Range")
	}
	return s, c, nil
}

// Length reports a value's integer length the same way the Len native
// does (O(1) for Range), exposed for the embedder ABI's "query length".
func (vm *VM) Length(recv value.Value) (int64, *value.FsError) {
	switch recv.K {
	case value.KList:
		return int64(len(recv.AsList())), nil
	case value.KString:
		return int64(len([]rune(recv.AsString()))), nil
	case value.KRange:
		_, count, _ := recv.AsRange()
		return count, nil
	case value.KBytes:
		return int64(len(recv.AsBytes())), nil
	case value.KNil:
		return 0, nil
	default:
		return 0, value.NewError(2008, "value does not support length")
	}
}
