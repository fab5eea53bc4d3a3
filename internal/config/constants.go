// Package config holds process-wide constants shared across the
// scanner, compiler, VM, and CLI.
package config

// Version is the current FuncScript runtime version.
var Version = "0.1.0"

const SourceFileExt = ".fs"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".fs", ".funcscript"}

// TrimSourceExt removes any recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with any recognized extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// MaxFrameCount bounds call-stack depth to convert unbounded recursion
// into a catchable runtime error instead of a native stack overflow.
const MaxFrameCount = 4096

// MaxStackSize bounds the operand stack.
const MaxStackSize = 1024 * 1024

// Namespace record names registered into VM globals (spec.md §11, the
// Math/Text/Bytes/Float provider namespaces). Global lookup is
// case-insensitive, but native.Register uses these constants rather than
// repeating the literals so the two stay in sync.
const (
	MathNamespace  = "Math"
	TextNamespace  = "Text"
	BytesNamespace = "Bytes"
	FloatNamespace = "Float"
)
