package native

import (
	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// registerHostNatives wires the filesystem-facing globals (spec.md §6.3,
// §12.5) through v.Host rather than touching os directly, so embedders
// that swap in a sandboxed HostEnv are honored uniformly.
func registerHostNatives(v *vm.VM) {
	v.SetGlobal("File", native("File", func(args []value.Value) value.Value {
		return hostFile(v, args)
	}))
	v.SetGlobal("FileExists", native("FileExists", func(args []value.Value) value.Value {
		return hostFileExists(v, args)
	}))
	v.SetGlobal("IsFile", native("IsFile", func(args []value.Value) value.Value {
		return hostIsFile(v, args)
	}))
	v.SetGlobal("DirList", native("DirList", func(args []value.Value) value.Value {
		return hostDirList(v, args)
	}))
}

func hostPath(args []value.Value) (string, *value.FsError) {
	p := arg(args, 0)
	if !p.IsString() {
		return "", value.NewError(2022, "expected a String path")
	}
	return p.AsString(), nil
}

func hostFile(v *vm.VM, args []value.Value) value.Value {
	path, perr := hostPath(args)
	if perr != nil {
		return value.Err(perr)
	}
	if v.Host == nil {
		return value.Err(value.NewError(2600, "no host environment configured"))
	}
	text, err := v.Host.ReadText(path)
	if err != nil {
		return value.Err(err)
	}
	return value.Str(text)
}

func hostFileExists(v *vm.VM, args []value.Value) value.Value {
	path, perr := hostPath(args)
	if perr != nil {
		return value.Err(perr)
	}
	if v.Host == nil {
		return value.Err(value.NewError(2600, "no host environment configured"))
	}
	ok, err := v.Host.Exists(path)
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(ok)
}

func hostIsFile(v *vm.VM, args []value.Value) value.Value {
	path, perr := hostPath(args)
	if perr != nil {
		return value.Err(perr)
	}
	if v.Host == nil {
		return value.Err(value.NewError(2600, "no host environment configured"))
	}
	ok, err := v.Host.IsFile(path)
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(ok)
}

func hostDirList(v *vm.VM, args []value.Value) value.Value {
	path, perr := hostPath(args)
	if perr != nil {
		return value.Err(perr)
	}
	if v.Host == nil {
		return value.Err(value.NewError(2600, "no host environment configured"))
	}
	names, err := v.Host.ListDir(path)
	if err != nil {
		return value.Err(err)
	}
	out := make([]value.Value, len(names))
	for i, n := range names {
		out[i] = value.Str(n)
	}
	return value.List(out)
}
