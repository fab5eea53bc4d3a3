// Package native registers FuncScript's built-in global functions and
// namespace records (spec.md §12) onto a VM's global table.
package native

import (
	"github.com/funvibe/funcscript/internal/config"
	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// Register installs every global native, the math/text/bytes/float
// namespace records, and the host-backed file natives on v.
func Register(v *vm.VM) {
	registerGlobals(v)
	registerHigherOrder(v)
	registerHostNatives(v)
	registerConversions(v)
	v.SetGlobal(config.MathNamespace, namespaceRecord(mathFns()))
	v.SetGlobal(config.TextNamespace, namespaceRecord(textFns()))
	v.SetGlobal(config.BytesNamespace, namespaceRecord(bytesFns()))
	v.SetGlobal(config.FloatNamespace, namespaceRecord(floatFns()))
}

func native(name string, fn func(args []value.Value) value.Value) value.Value {
	return value.Value{K: value.KNative, Obj: &value.NativeFn{Name: name, Fn: fn}}
}

// namespaceRecord builds an immutable, parentless Kvc whose fields are
// already-known NativeFn values (no thunk indirection needed since a
// namespace record's members never change after registration).
func namespaceRecord(fns map[string]value.Value) value.Value {
	k := value.NewKvc(nil)
	for name, fn := range fns {
		k.AddField(name, nil, fn, true)
	}
	return value.Value{K: value.KKvc, Obj: k}
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Nil()
	}
	return args[i]
}
