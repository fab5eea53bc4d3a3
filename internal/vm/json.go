package vm

import "github.com/funvibe/funcscript/internal/value"

// ToJSON forces every record field reachable from v (spec.md §6.6:
// "each field is forced through lazy evaluation") and then delegates to
// the value package's projection, which only reads already-cached data.
func (vm *VM) ToJSON(v value.Value) (string, *value.FsError) {
	if err := vm.forceDeep(v, map[*value.Kvc]bool{}); err != nil {
		return "", err
	}
	s, err := value.ToJSON(v)
	if err != nil {
		return "", value.NewError(2000, err.Error())
	}
	return s, nil
}

// forceDeep recursively forces Kvc fields under v, including inside
// Lists and nested records, guarding against cycles with seen.
func (vm *VM) forceDeep(v value.Value, seen map[*value.Kvc]bool) *value.FsError {
	switch v.K {
	case value.KKvc:
		k := v.AsKvc()
		if seen[k] {
			return nil
		}
		seen[k] = true
		for _, key := range k.Order {
			fv, err := vm.kvcGet(k, key)
			if err != nil {
				return err
			}
			if err := vm.forceDeep(fv, seen); err != nil {
				return err
			}
		}
	case value.KList:
		for _, it := range v.AsList() {
			if err := vm.forceDeep(it, seen); err != nil {
				return err
			}
		}
	}
	return nil
}
