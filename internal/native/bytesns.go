package native

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/funvibe/funcscript/internal/value"
)

// bytesFns builds the `Bytes` namespace record (spec.md §11, §12.3): the
// Bytes value kind has no literal syntax, so these give it constructive
// natives, driving github.com/funvibe/funbit's segment builder/matcher
// the same way the teacher drives it for its own Bits/Bytes builtins.
func bytesFns() map[string]value.Value {
	return map[string]value.Value{
		"pack":   native("Bytes.pack", bytesPack),
		"unpack": native("Bytes.unpack", bytesUnpack),
		"len":    native("Bytes.len", bytesLen),
		"slice":  native("Bytes.slice", bytesSlice),
	}
}

func bytesPack(args []value.Value) value.Value {
	ints, width := arg(args, 0), arg(args, 1)
	items, ok := materialize(ints)
	if !ok {
		return value.Err(value.NewError(2015, "Bytes.pack expects a List of Int"))
	}
	if !width.IsInt() {
		return value.Err(value.NewError(2022, "Bytes.pack expects an Int bit width"))
	}
	w := uint(width.AsInt())

	b := funbit.NewBuilder()
	for _, it := range items {
		if !it.IsInt() {
			return value.Err(value.NewError(2022, "Bytes.pack expects a List of Int"))
		}
		b.AddInteger(it.AsInt(), funbit.WithSize(w))
	}
	bs, err := funbit.Build(b)
	if err != nil {
		return value.Err(value.NewError(2022, "Bytes.pack: "+err.Error()))
	}
	return value.Bytes(bs.ToBytes())
}

func bytesUnpack(args []value.Value) value.Value {
	bv, width := arg(args, 0), arg(args, 1)
	if bv.K != value.KBytes {
		return value.Err(value.NewError(2022, "Bytes.unpack expects a Bytes value"))
	}
	if !width.IsInt() {
		return value.Err(value.NewError(2022, "Bytes.unpack expects an Int bit width"))
	}
	w := uint(width.AsInt())
	if w == 0 {
		return value.Err(value.NewError(2022, "Bytes.unpack width must be > 0"))
	}

	data := bv.AsBytes()
	count := int(uint(len(data)*8) / w)
	vars := make([]int64, count)

	m := funbit.NewMatcher()
	for i := range vars {
		m.Integer(&vars[i], funbit.WithSize(w))
	}
	bs := funbit.NewBitStringFromBytes(data)
	if _, err := funbit.Match(m, bs); err != nil {
		return value.Err(value.NewError(2022, "Bytes.unpack: "+err.Error()))
	}

	out := make([]value.Value, count)
	for i, v := range vars {
		out[i] = value.Int(v)
	}
	return value.List(out)
}

func bytesLen(args []value.Value) value.Value {
	bv := arg(args, 0)
	if bv.K != value.KBytes {
		return value.Err(value.NewError(2022, "Bytes.len expects a Bytes value"))
	}
	return value.Int(int64(len(bv.AsBytes())))
}

func bytesSlice(args []value.Value) value.Value {
	bv, start, count := arg(args, 0), arg(args, 1), arg(args, 2)
	if bv.K != value.KBytes {
		return value.Err(value.NewError(2022, "Bytes.slice expects a Bytes value"))
	}
	if !start.IsInt() || !count.IsInt() {
		return value.Err(value.NewError(2022, "Bytes.slice expects (Int start, Int count)"))
	}
	data := bv.AsBytes()
	from := int(start.AsInt())
	n := int(count.AsInt())
	if from < 0 || n < 0 || from+n > len(data) {
		return value.Err(value.NewError(2022, "Bytes.slice range out of bounds"))
	}
	out := make([]byte, n)
	copy(out, data[from:from+n])
	return value.Bytes(out)
}
