package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// formatFloat renders a float64 the way the display form of a Number
// value should look: integral floats print without a trailing ".0" only
// when the compiler chose to keep them as Number (spec.md's Int-vs-Number
// rule is decided at parse/arithmetic time, not at display time).
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// narrowBigInt returns an Int value if b fits in an int64, else a BigInt
// value (spec.md §4.5 "narrow back to Int on each operation").
func narrowBigInt(b *big.Int) Value {
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return BigInt(new(big.Int).Set(b))
}

func toBig(v Value) *big.Int {
	if v.IsBigInt() {
		return v.AsBigInt()
	}
	return big.NewInt(v.AsInt())
}

func isExactInteger(v Value) bool {
	switch v.K {
	case KInt, KBigInt:
		return true
	case KNumber:
		f := v.AsFloat()
		return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
	}
	return false
}

// Add implements OP_ADD for the numeric combinations of spec.md §4.5.
// String/list/record combinations are handled by the VM (vm package),
// which routes every other combination here; a non-numeric operand
// yields error 2010.
func Add(a, b Value) (Value, *FsError) {
	return numericOp(a, b, func(x, y int64) (Value, bool) {
		sum := x + y
		if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum > 0) {
			return Value{}, false
		}
		return Int(sum), true
	}, func(x, y *big.Int) *big.Int {
		return new(big.Int).Add(x, y)
	}, func(x, y float64) float64 { return x + y })
}

func Subtract(a, b Value) (Value, *FsError) {
	return numericOp(a, b, func(x, y int64) (Value, bool) {
		diff := x - y
		if (y < 0 && diff < x) || (y > 0 && diff > x) {
			return Value{}, false
		}
		return Int(diff), true
	}, func(x, y *big.Int) *big.Int {
		return new(big.Int).Sub(x, y)
	}, func(x, y float64) float64 { return x - y })
}

func Multiply(a, b Value) (Value, *FsError) {
	return numericOp(a, b, func(x, y int64) (Value, bool) {
		if x == 0 || y == 0 {
			return Int(0), true
		}
		p := x * y
		if p/y != x || (x == math.MinInt64 && y == -1) {
			return Value{}, false
		}
		return Int(p), true
	}, func(x, y *big.Int) *big.Int {
		return new(big.Int).Mul(x, y)
	}, func(x, y float64) float64 { return x * y })
}

// numericOp dispatches on the widest numeric kind present, trying the
// int64 fast path first, falling through to BigInt on overflow, and
// finally Number when either operand is a Number.
func numericOp(a, b Value,
	intOp func(x, y int64) (Value, bool),
	bigOp func(x, y *big.Int) *big.Int,
	floatOp func(x, y float64) float64) (Value, *FsError) {

	for _, v := range []Value{a, b} {
		if v.K != KInt && v.K != KBigInt && v.K != KNumber {
			return Value{}, NewError(2010, fmt.Sprintf("%s is not numeric", v.K))
		}
	}
	if a.K == KNumber || b.K == KNumber {
		af, aerr := toFloat(a)
		if aerr != nil {
			return Value{}, aerr
		}
		bf, berr := toFloat(b)
		if berr != nil {
			return Value{}, berr
		}
		return Number(floatOp(af, bf)), nil
	}

	if a.K == KInt && b.K == KInt {
		if v, ok := intOp(a.AsInt(), b.AsInt()); ok {
			return v, nil
		}
	}

	return narrowBigInt(bigOp(toBig(a), toBig(b))), nil
}

func toFloat(v Value) (float64, *FsError) {
	switch v.K {
	case KInt:
		return float64(v.AsInt()), nil
	case KNumber:
		return v.AsFloat(), nil
	case KBigInt:
		f := new(big.Float).SetInt(v.AsBigInt())
		r, _ := f.Float64()
		if math.IsInf(r, 0) {
			return 0, NewError(2010, "BigInt is not representable as a float")
		}
		return r, nil
	}
	return 0, NewError(2010, fmt.Sprintf("%s is not numeric", v.K))
}

// Divide implements spec.md §4.5 "Divide": Int/Int with zero remainder
// stays Int; otherwise the result is a Number. Division by zero is 2009.
func Divide(a, b Value) (Value, *FsError) {
	if isZero(b) {
		return Value{}, NewError(2009, "division by zero")
	}
	if a.K == KInt && b.K == KInt {
		x, y := a.AsInt(), b.AsInt()
		if x%y == 0 {
			return Int(x / y), nil
		}
		return Number(float64(x) / float64(y)), nil
	}
	if a.K != KNumber && b.K != KNumber && (a.K == KBigInt || b.K == KBigInt) {
		x, y := toBig(a), toBig(b)
		q, r := new(big.Int), new(big.Int)
		q.QuoRem(x, y, r)
		if r.Sign() == 0 {
			return narrowBigInt(q), nil
		}
	}
	af, aerr := toFloat(a)
	if aerr != nil {
		return Value{}, aerr
	}
	bf, berr := toFloat(b)
	if berr != nil {
		return Value{}, berr
	}
	return Number(af / bf), nil
}

// IntDiv implements the `div` keyword: integer-only (§4.5).
func IntDiv(a, b Value) (Value, *FsError) {
	if a.K == KNumber || b.K == KNumber {
		return Value{}, NewError(2012, "div requires integer operands")
	}
	if isZero(b) {
		return Value{}, NewError(2009, "division by zero")
	}
	if a.K == KInt && b.K == KInt {
		return Int(a.AsInt() / b.AsInt()), nil
	}
	return narrowBigInt(new(big.Int).Quo(toBig(a), toBig(b))), nil
}

// Modulo implements `%` per spec.md §4.5.
func Modulo(a, b Value) (Value, *FsError) {
	if isZero(b) {
		return Value{}, NewError(2013, "modulo by zero")
	}
	if a.K == KNumber || b.K == KNumber {
		af, aerr := toFloat(a)
		if aerr != nil {
			return Value{}, aerr
		}
		bf, berr := toFloat(b)
		if berr != nil {
			return Value{}, berr
		}
		return Number(math.Mod(af, bf)), nil
	}
	if a.K == KInt && b.K == KInt {
		return Int(a.AsInt() % b.AsInt()), nil
	}
	return narrowBigInt(new(big.Int).Mod(toBig(a), toBig(b))), nil
}

// Pow implements `^`: always returns Number via f64 powf (§4.5).
func Pow(a, b Value) (Value, *FsError) {
	af, aerr := toFloat(a)
	if aerr != nil {
		return Value{}, NewError(2021, "pow requires numeric operands")
	}
	bf, berr := toFloat(b)
	if berr != nil {
		return Value{}, NewError(2021, "pow requires numeric operands")
	}
	return Number(math.Pow(af, bf)), nil
}

func Negate(a Value) (Value, *FsError) {
	switch a.K {
	case KInt:
		x := a.AsInt()
		if x == math.MinInt64 {
			return narrowBigInt(new(big.Int).Neg(big.NewInt(x))), nil
		}
		return Int(-x), nil
	case KBigInt:
		return narrowBigInt(new(big.Int).Neg(a.AsBigInt())), nil
	case KNumber:
		return Number(-a.AsFloat()), nil
	}
	return Value{}, NewError(2021, "cannot negate "+a.K.String())
}

func isZero(v Value) bool {
	switch v.K {
	case KInt:
		return v.AsInt() == 0
	case KBigInt:
		return v.AsBigInt().Sign() == 0
	case KNumber:
		return v.AsFloat() == 0
	}
	return false
}

// Compare implements the mixed-precision comparison of spec.md §4.5:
// when both sides are exact integers, compare via widened BigInt;
// otherwise compare as float64.
func Compare(a, b Value) (int, *FsError) {
	if isExactInteger(a) && isExactInteger(b) {
		return toBig(exactIntValue(a)).Cmp(toBig(exactIntValue(b))), nil
	}
	af, aerr := toFloat(a)
	if aerr != nil {
		return 0, NewError(2011, "cannot compare "+a.K.String())
	}
	bf, berr := toFloat(b)
	if berr != nil {
		return 0, NewError(2011, "cannot compare "+b.K.String())
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

// exactIntValue converts a Number known to hold an exact integer into an
// Int/BigInt Value so Compare/Equal can widen uniformly. Goes through
// big.Float rather than int64(f) so integral values outside the int64
// range (e.g. 1e30) don't silently wrap.
func exactIntValue(v Value) Value {
	if v.K == KNumber {
		bi, _ := big.NewFloat(v.AsFloat()).Int(nil)
		return narrowBigInt(bi)
	}
	return v
}

// NumericEqual implements "Equality for Int/Number compares only when
// the Number is an exact integer representable in the integer side."
func NumericEqual(a, b Value) bool {
	if a.K == KNumber && !isExactInteger(a) {
		if b.K == KNumber {
			return a.AsFloat() == b.AsFloat()
		}
		return false
	}
	if b.K == KNumber && !isExactInteger(b) {
		return false
	}
	if isExactInteger(a) && isExactInteger(b) {
		return toBig(exactIntValue(a)).Cmp(toBig(exactIntValue(b))) == 0
	}
	return false
}
