package native

import (
	"math"
	"math/rand"

	"github.com/funvibe/funcscript/internal/value"
)

// mathFns builds the `Math` namespace record (spec.md §12.2).
func mathFns() map[string]value.Value {
	return map[string]value.Value{
		"Abs":      native("Math.Abs", unary(math.Abs)),
		"Sqrt":     native("Math.Sqrt", unary(math.Sqrt)),
		"Sin":      native("Math.Sin", unary(math.Sin)),
		"Cos":      native("Math.Cos", unary(math.Cos)),
		"Tan":      native("Math.Tan", unary(math.Tan)),
		"Asin":     native("Math.Asin", unary(math.Asin)),
		"Acos":     native("Math.Acos", unary(math.Acos)),
		"Atan":     native("Math.Atan", unary(math.Atan)),
		"Exp":      native("Math.Exp", unary(math.Exp)),
		"Ln":       native("Math.Ln", unary(math.Log)),
		"Log10":    native("Math.Log10", unary(math.Log10)),
		"Log2":     native("Math.Log2", unary(math.Log2)),
		"Ceiling":  native("Math.Ceiling", unary(math.Ceil)),
		"Floor":    native("Math.Floor", unary(math.Floor)),
		"Round":    native("Math.Round", unary(math.Round)),
		"Trunc":    native("Math.Trunc", unary(math.Trunc)),
		"Cbrt":     native("Math.Cbrt", unary(math.Cbrt)),
		"DegToRad": native("Math.DegToRad", unary(func(x float64) float64 { return x * math.Pi / 180 })),
		"RadToDeg": native("Math.RadToDeg", unary(func(x float64) float64 { return x * 180 / math.Pi })),
		"Sign":     native("Math.Sign", mathSign),
		"Max":      native("Math.Max", mathMax),
		"Min":      native("Math.Min", mathMin),
		"Pow":      native("Math.Pow", mathPow),
		"Atan2":    native("Math.Atan2", mathAtan2),
		"Clamp":    native("Math.Clamp", mathClamp),
		"Random":   native("Math.Random", mathRandom),
	}
}

func unary(fn func(float64) float64) func([]value.Value) value.Value {
	return func(args []value.Value) value.Value {
		f, err := toF(arg(args, 0))
		if err != nil {
			return value.Err(err)
		}
		return value.Number(fn(f))
	}
}

func toF(v value.Value) (float64, *value.FsError) {
	switch v.K {
	case value.KInt:
		return float64(v.AsInt()), nil
	case value.KNumber:
		return v.AsFloat(), nil
	case value.KBigInt:
		f, _ := asApproxFloat(v)
		return f, nil
	default:
		return 0, value.NewError(2010, "expected a numeric value")
	}
}

func mathSign(args []value.Value) value.Value {
	f, err := toF(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	switch {
	case f > 0:
		return value.Int(1)
	case f < 0:
		return value.Int(-1)
	default:
		return value.Int(0)
	}
}

func mathMax(args []value.Value) value.Value {
	a, b := arg(args, 0), arg(args, 1)
	c, err := value.Compare(a, b)
	if err != nil {
		return value.Err(err)
	}
	if c >= 0 {
		return a
	}
	return b
}

func mathMin(args []value.Value) value.Value {
	a, b := arg(args, 0), arg(args, 1)
	c, err := value.Compare(a, b)
	if err != nil {
		return value.Err(err)
	}
	if c <= 0 {
		return a
	}
	return b
}

func mathPow(args []value.Value) value.Value {
	r, err := value.Pow(arg(args, 0), arg(args, 1))
	if err != nil {
		return value.Err(err)
	}
	return r
}

func mathAtan2(args []value.Value) value.Value {
	y, errY := toF(arg(args, 0))
	if errY != nil {
		return value.Err(errY)
	}
	x, errX := toF(arg(args, 1))
	if errX != nil {
		return value.Err(errX)
	}
	return value.Number(math.Atan2(y, x))
}

func mathClamp(args []value.Value) value.Value {
	x, lo, hi := arg(args, 0), arg(args, 1), arg(args, 2)
	if c, err := value.Compare(x, lo); err == nil && c < 0 {
		return lo
	}
	if c, err := value.Compare(x, hi); err == nil && c > 0 {
		return hi
	}
	return x
}

func mathRandom(args []value.Value) value.Value {
	return value.Number(rand.Float64())
}
