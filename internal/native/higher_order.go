package native

import (
	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// registerHigherOrder exposes the VM's exported Filter/Any/FirstWhere/
// Sort helpers as globals — map/reduce already have infix grammar forms
// compiled to dedicated opcodes (spec.md §4.2), but these four don't, so
// they're plain two-arg natives instead.
func registerHigherOrder(v *vm.VM) {
	v.SetGlobal("Filter", native("Filter", func(args []value.Value) value.Value {
		return runHigherOrder(v.Filter, args)
	}))
	v.SetGlobal("Any", native("Any", func(args []value.Value) value.Value {
		return runHigherOrder(v.Any, args)
	}))
	v.SetGlobal("FirstWhere", native("FirstWhere", func(args []value.Value) value.Value {
		return runHigherOrder(v.FirstWhere, args)
	}))
	v.SetGlobal("Sort", native("Sort", func(args []value.Value) value.Value {
		return runHigherOrder(v.Sort, args)
	}))
}

func runHigherOrder(op func(recv, fn value.Value) (value.Value, *value.FsError), args []value.Value) value.Value {
	recv, fn := arg(args, 0), arg(args, 1)
	v, err := op(recv, fn)
	if err != nil {
		return value.Err(err)
	}
	return v
}
