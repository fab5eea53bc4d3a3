package vm

import (
	"strings"

	"github.com/funvibe/funcscript/internal/config"
	"github.com/funvibe/funcscript/internal/hostenv"
	"github.com/funvibe/funcscript/internal/value"
)

// CallFrame is one ongoing function invocation (spec.md §4.4).
type CallFrame struct {
	fn   *value.Function
	ip   int
	base int // index into vm.stack where this frame's locals start
}

const (
	initialStackSize = 2048
	initialFrameCap  = 64
	maxFrameCount    = config.MaxFrameCount
	maxStackSize     = config.MaxStackSize
)

// VM is the FuncScript stack machine (spec.md §4.4). A VM is
// single-threaded and synchronous; it owns one stack, one frame stack
// and one provider stack (spec.md §5).
type VM struct {
	stack []value.Value

	frames     []CallFrame
	frameCount int

	globals map[string]value.Value // case-insensitive: keys are lowercased

	providers []*value.Provider

	handles *handleTable

	Host hostenv.HostEnv
}

// New creates a VM with empty globals; callers register natives via
// SetGlobal (native.Register does this for the whole library) before
// Interpret.
func New() *VM {
	return &VM{
		stack:   make([]value.Value, 0, initialStackSize),
		frames:  make([]CallFrame, 0, initialFrameCap),
		globals: make(map[string]value.Value),
		handles: newHandleTable(),
	}
}

func (vm *VM) SetGlobal(name string, v value.Value) {
	vm.globals[strings.ToLower(name)] = v
}

// Interpret compiles and runs src to completion, returning the resulting
// Value or an FsError (spec.md §7). Compile errors are returned the same
// way, as an FsError with code 1000; both the CLI and pkg/embed call
// Interpret and receive either kind of error from it.
func (vm *VM) Interpret(src string) (value.Value, *value.FsError) {
	fn, cerr := Compile(src)
	if cerr != nil {
		return value.Value{}, cerr
	}
	return vm.Run(fn)
}

// Run executes a compiled top-level Function with no arguments.
func (vm *VM) Run(fn *value.Function) (value.Value, *value.FsError) {
	defer vm.resetOnExit()
	vm.push(value.Value{K: value.KFunction, Obj: fn})
	if err := vm.call(0); err != nil {
		return value.Value{}, err
	}
	return vm.runLoop(0)
}

// resetOnExit guarantees the universal invariant that stack/frames/
// providers are empty after any Interpret/Run call, success or failure
// (spec.md §8).
func (vm *VM) resetOnExit() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.frameCount = 0
	vm.providers = vm.providers[:0]
}

// --- stack helpers ---

func (vm *VM) push(v value.Value) {
	if len(vm.stack) >= maxStackSize {
		panic("stack overflow")
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(depth int) value.Value {
	return vm.stack[len(vm.stack)-1-depth]
}

func (vm *VM) top() *CallFrame { return &vm.frames[vm.frameCount-1] }

func (vm *VM) curProvider() *value.Provider {
	if len(vm.providers) == 0 {
		return nil
	}
	return vm.providers[len(vm.providers)-1]
}

// --- bytecode reading ---

func (f *CallFrame) readByte() byte {
	b := f.fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *CallFrame) readOperand() int {
	b0 := int(f.readByte())
	b1 := int(f.readByte())
	b2 := int(f.readByte())
	b3 := int(f.readByte())
	return b0<<24 | b1<<16 | b2<<8 | b3
}

func (f *CallFrame) atEnd() bool { return f.ip >= f.fn.Chunk.Len() }

// --- calling ---

// call invokes the callable at stack depth argc below the top
// (spec.md §4.4 "Calling"). It pushes a new CallFrame for user Functions
// and runs NativeFns to completion inline.
func (vm *VM) call(argc int) *value.FsError {
	calleeIdx := len(vm.stack) - 1 - argc
	callee := vm.stack[calleeIdx]

	switch callee.K {
	case value.KNative:
		args := make([]value.Value, argc)
		copy(args, vm.stack[calleeIdx+1:])
		vm.stack = vm.stack[:calleeIdx]
		vm.push(callee.AsNative().Fn(args))
		return nil

	case value.KFunction:
		fn := callee.AsFunction()
		if argc > fn.Arity {
			return value.NewError(2004, "arity mismatch")
		}
		for argc < fn.Arity {
			vm.push(value.Nil())
			argc++
		}
		if vm.frameCount >= maxFrameCount {
			return value.NewError(2004, "call stack too deep")
		}
		vm.frames = append(vm.frames[:vm.frameCount], CallFrame{fn: fn, ip: 0, base: calleeIdx})
		vm.frameCount++
		return nil

	default:
		return value.NewError(2005, "can only call functions")
	}
}

// CallValue invokes a Value (Function or NativeFn) with args, used by
// natives implementing higher-order operations (Filter, Sort, …).
// Exported for internal/native.
func (vm *VM) CallValue(fn value.Value, args []value.Value) (value.Value, *value.FsError) {
	if !fn.Callable() {
		return value.Value{}, value.NewError(2005, "can only call functions")
	}
	baseline := vm.frameCount
	vm.push(fn)
	for _, a := range args {
		vm.push(a)
	}
	if err := vm.call(len(args)); err != nil {
		return value.Value{}, err
	}
	return vm.runLoop(baseline)
}

// runLoop steps the VM until the frame stack shrinks back to baseline
// (spec.md §5 "run_nested"), returning the value left on the stack.
func (vm *VM) runLoop(baseline int) (value.Value, *value.FsError) {
	for vm.frameCount > baseline {
		if err := vm.step(); err != nil {
			vm.unwindTo(baseline)
			return value.Value{}, err
		}
	}
	return vm.pop(), nil
}

// unwindTo truncates frames/stack back to baseline on an error exit so a
// failing nested call (e.g. inside Map) doesn't leave stale frames.
func (vm *VM) unwindTo(baseline int) {
	if baseline < len(vm.frames) && baseline >= 0 {
		if vm.frameCount > baseline {
			base := vm.frames[baseline].base
			if base <= len(vm.stack) {
				vm.stack = vm.stack[:base]
			}
		}
	}
	vm.frameCount = baseline
}
