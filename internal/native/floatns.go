package native

import (
	"math"

	"github.com/funvibe/funcscript/internal/value"
)

// floatFns builds the `Float` namespace record (spec.md §12.2): predicates
// over the IEEE-754 special values that the numeric tower's Number kind
// can hold.
func floatFns() map[string]value.Value {
	return map[string]value.Value{
		"IsNaN":      native("Float.IsNaN", floatIsNaN),
		"IsInfinity": native("Float.IsInfinity", floatIsInfinity),
		"IsNormal":   native("Float.IsNormal", floatIsNormal),
	}
}

func floatIsNaN(args []value.Value) value.Value {
	f, err := toF(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(math.IsNaN(f))
}

func floatIsInfinity(args []value.Value) value.Value {
	f, err := toF(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(math.IsInf(f, 0))
}

func floatIsNormal(args []value.Value) value.Value {
	f, err := toF(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0))
}
