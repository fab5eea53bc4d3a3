package native

import (
	"math/big"
	"strconv"

	"github.com/funvibe/funcscript/internal/value"
	"github.com/funvibe/funcscript/internal/vm"
)

// registerConversions wires the single-arg coercion natives of spec.md
// §12.6 as globals: String, Integer, BigInteger and Boolean. Globals are
// looked up case-insensitively, so "float" would collide with the `Float`
// namespace record (§12.4) and "guid" with the Guid constructor (§12.1).
// The float, guid, datetime and bytearray targets are registered as no
// global and are reachable only via ChangeType(x, typeName).
func registerConversions(v *vm.VM) {
	v.SetGlobal("String", native("String", func(args []value.Value) value.Value {
		return convertTo(arg(args, 0), "string")
	}))
	v.SetGlobal("Integer", native("Integer", func(args []value.Value) value.Value {
		return convertTo(arg(args, 0), "integer")
	}))
	v.SetGlobal("BigInteger", native("BigInteger", func(args []value.Value) value.Value {
		return convertTo(arg(args, 0), "biginteger")
	}))
	v.SetGlobal("Boolean", native("Boolean", func(args []value.Value) value.Value {
		return convertTo(arg(args, 0), "boolean")
	}))
}

// convertTo coerces v to the named kind, backing both the dedicated
// conversion natives and ChangeType(x, typeName) (spec.md §12.6). Unknown
// type names or unrepresentable coercions yield error 2022.
func convertTo(v value.Value, typeName string) value.Value {
	switch typeName {
	case "string":
		return value.Str(value.Display(v))
	case "integer":
		return toInteger(v)
	case "biginteger":
		return toBigInteger(v)
	case "float":
		return toFloatValue(v)
	case "boolean":
		return toBoolean(v)
	case "guid":
		return toGuid(v)
	case "datetime":
		return toDateTime(v)
	case "bytearray":
		return toByteArray(v)
	default:
		return value.Err(value.NewError(2022, "unknown conversion target: "+typeName))
	}
}

func toInteger(v value.Value) value.Value {
	switch v.K {
	case value.KInt:
		return v
	case value.KNumber:
		return value.Int(int64(v.AsFloat()))
	case value.KBigInt:
		if v.AsBigInt().IsInt64() {
			return value.Int(v.AsBigInt().Int64())
		}
		return value.Err(value.NewError(2022, "BigInteger too large for Integer"))
	case value.KString:
		i, err := strconv.ParseInt(v.AsString(), 10, 64)
		if err != nil {
			return value.Err(value.NewError(2022, "cannot convert String to Integer: "+err.Error()))
		}
		return value.Int(i)
	case value.KBool:
		if v.AsBool() {
			return value.Int(1)
		}
		return value.Int(0)
	default:
		return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to Integer"))
	}
}

func toBigInteger(v value.Value) value.Value {
	switch v.K {
	case value.KBigInt:
		return v
	case value.KInt:
		return value.BigInt(big.NewInt(v.AsInt()))
	case value.KString:
		b, ok := new(big.Int).SetString(v.AsString(), 10)
		if !ok {
			return value.Err(value.NewError(2022, "cannot convert String to BigInteger"))
		}
		return value.BigInt(b)
	case value.KNumber:
		b, _ := big.NewFloat(v.AsFloat()).Int(nil)
		return value.BigInt(b)
	default:
		return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to BigInteger"))
	}
}

func toFloatValue(v value.Value) value.Value {
	f, err := toF(v)
	if err == nil {
		return value.Number(f)
	}
	if v.K == value.KString {
		f, perr := strconv.ParseFloat(v.AsString(), 64)
		if perr != nil {
			return value.Err(value.NewError(2022, "cannot convert String to Float: "+perr.Error()))
		}
		return value.Number(f)
	}
	return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to Float"))
}

func toBoolean(v value.Value) value.Value {
	switch v.K {
	case value.KBool:
		return v
	case value.KString:
		switch v.AsString() {
		case "true":
			return value.Bool(true)
		case "false":
			return value.Bool(false)
		default:
			return value.Err(value.NewError(2022, "cannot convert String to Boolean"))
		}
	default:
		return value.Bool(v.Truthy())
	}
}

func toGuid(v value.Value) value.Value {
	if v.K == value.KGuid {
		return v
	}
	if v.IsString() {
		return parseGuid(v.AsString())
	}
	return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to Guid"))
}

func toDateTime(v value.Value) value.Value {
	switch v.K {
	case value.KDateTime:
		return v
	case value.KInt:
		return value.DateTime(v.AsInt())
	default:
		return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to DateTime"))
	}
}

func toByteArray(v value.Value) value.Value {
	switch v.K {
	case value.KBytes:
		return v
	case value.KString:
		return value.Bytes([]byte(v.AsString()))
	default:
		return value.Err(value.NewError(2022, "cannot convert "+v.K.String()+" to Bytes"))
	}
}
