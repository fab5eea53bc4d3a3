// Package embed is the stable, minimal embedding ABI sketched by
// spec.md §6.4: create/destroy a VM, evaluate source to JSON or a
// handle, and drive a stored handle's kind/length/keys/index/property/
// call operations without exposing the VM's internal package.
package embed

import (
	"github.com/funvibe/funcscript/internal/hostenv"
	"github.com/funvibe/funcscript/internal/native"
	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// Machine wraps a VM for embedding callers. Each Machine is
// single-threaded, matching the VM's own concurrency model (spec.md §5).
type Machine struct {
	vm *vm.VM
}

// New creates a Machine with the native library registered and the
// default OS-backed HostEnv installed.
func New() *Machine {
	m := &Machine{vm: vm.New()}
	m.vm.Host = hostenv.OS{}
	native.Register(m.vm)
	return m
}

// SetHost swaps in a caller-supplied HostEnv (e.g. a sandboxed one for
// untrusted scripts), overriding the default OS-backed one.
func (m *Machine) SetHost(h hostenv.HostEnv) { m.vm.Host = h }

// Eval runs src and returns its result directly as JSON (spec.md §6.4
// "evaluate a source string to JSON").
func (m *Machine) Eval(src string) (string, *value.FsError) {
	v, err := m.vm.Interpret(src)
	if err != nil {
		return "", err
	}
	return m.vm.ToJSON(v)
}

// EvalToHandle runs src and stores the result in the handle table,
// returning its opaque id instead of serializing it immediately.
func (m *Machine) EvalToHandle(src string) (int64, *value.FsError) {
	v, err := m.vm.Interpret(src)
	if err != nil {
		return 0, err
	}
	return m.vm.StoreHandle(v), nil
}

// Free releases a handle previously returned by EvalToHandle or Call.
func (m *Machine) Free(id int64) bool { return m.vm.FreeHandle(id) }

func (m *Machine) resolve(id int64) (value.Value, *value.FsError) {
	v, ok := m.vm.GetHandle(id)
	if !ok {
		return value.Value{}, value.NewError(2006, "invalid handle")
	}
	return v, nil
}

// Kind reports the stored value's kind name (spec.md §4.6 "introspecting
// the kind of a stored value").
func (m *Machine) Kind(id int64) (string, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return "", err
	}
	return v.K.String(), nil
}

// ToJSON serializes a stored handle to JSON.
func (m *Machine) ToJSON(id int64) (string, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return "", err
	}
	return m.vm.ToJSON(v)
}

// Len reports a stored value's length (List/String/Range/Bytes).
func (m *Machine) Len(id int64) (int64, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return 0, err
	}
	return m.vm.Length(v)
}

// RangeInfo reports a stored Range's (start, count).
func (m *Machine) RangeInfo(id int64) (start, count int64, err *value.FsError) {
	v, rerr := m.resolve(id)
	if rerr != nil {
		return 0, 0, rerr
	}
	return m.vm.RangeInfo(v)
}

// Keys lists a stored record's field names in declaration order.
func (m *Machine) Keys(id int64) ([]string, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return nil, err
	}
	return m.vm.Keys(v)
}

// Index resolves element i of a stored List/Range/Bytes/String and
// stores the result under a new handle.
func (m *Machine) Index(id int64, i int64) (int64, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return 0, err
	}
	elem, ierr := m.vm.Index(v, i)
	if ierr != nil {
		return 0, ierr
	}
	return m.vm.StoreHandle(elem), nil
}

// Property resolves a stored record's field by name and stores the
// result under a new handle.
func (m *Machine) Property(id int64, name string) (int64, *value.FsError) {
	v, err := m.resolve(id)
	if err != nil {
		return 0, err
	}
	field, ferr := m.vm.GetField(v, name)
	if ferr != nil {
		return 0, ferr
	}
	return m.vm.StoreHandle(field), nil
}

// Call invokes a stored function value with stored argument handles,
// storing the result under a new handle (spec.md §4.6 "invoking a
// stored function value with stored argument values").
func (m *Machine) Call(id int64, argHandles []int64) (int64, *value.FsError) {
	fn, err := m.resolve(id)
	if err != nil {
		return 0, err
	}
	args := make([]value.Value, len(argHandles))
	for i, h := range argHandles {
		a, aerr := m.resolve(h)
		if aerr != nil {
			return 0, aerr
		}
		args[i] = a
	}
	result, cerr := m.vm.CallValue(fn, args)
	if cerr != nil {
		return 0, cerr
	}
	return m.vm.StoreHandle(result), nil
}
