package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

// NetEpochOffsetTicks is the .NET tick value of 1970-01-01T00:00:00Z
// (DateTimeTicks is epoch-compatible with .NET per spec.md §3).
const NetEpochOffsetTicks = 621355968000000000

// ticksToISO converts a DateTime's tick count to an ISO-8601 string when
// it falls within a representable Unix-era instant (spec.md §6.6).
func ticksToISO(ticks int64) (string, bool) {
	diff := new(big.Int).Sub(big.NewInt(ticks), big.NewInt(NetEpochOffsetTicks))
	nanos := diff.Mul(diff, big.NewInt(100))
	if !nanos.IsInt64() {
		return "", false
	}
	t := time.Unix(0, nanos.Int64()).UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return "", false
	}
	return t.Format(time.RFC3339Nano), true
}

// ToJSON implements the JSON projection of spec.md §6.6. Scalars map to
// their natural JSON counterparts; Lists become arrays; Records become
// objects preserving declaration order and original casing (object key
// order is not guaranteed by encoding/json, so records are rendered
// manually). Values with no direct JSON representation (Range, Bytes,
// Guid, DateTime, Function, NativeFn) are projected as tagged objects.
// Errors project inline as {"kind", "code", "message", "line", "column"}
// objects rather than
// failing the whole projection, so a partial record can still round-trip
// the fields that evaluated cleanly.
func ToJSON(v Value) (string, error) {
	var b strings.Builder
	if err := writeJSON(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJSON(b *strings.Builder, v Value) error {
	switch v.K {
	case KNil:
		b.WriteString("null")
	case KBool:
		if v.AsBool() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KInt:
		fmt.Fprintf(b, "%d", v.AsInt())
	case KBigInt:
		fmt.Fprintf(b, "%s", v.AsBigInt().String())
	case KNumber:
		f := v.AsFloat()
		switch {
		case isNonFinite(f):
			b.WriteString("null")
		case f == float64(int64(f)) && !isSpecialFloat(f):
			fmt.Fprintf(b, "%d", int64(f))
		default:
			enc, err := json.Marshal(f)
			if err != nil {
				return err
			}
			b.Write(enc)
		}
	case KString:
		enc, err := json.Marshal(v.AsString())
		if err != nil {
			return err
		}
		b.Write(enc)
	case KList:
		b.WriteByte('[')
		for i, it := range v.AsList() {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, it); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case KKvc:
		return writeKvcJSON(b, v.AsKvc())
	case KRange:
		start, count, _ := v.AsRange()
		fmt.Fprintf(b, `{"type":"range","start":%d,"count":%d}`, start, count)
	case KBytes:
		enc, _ := json.Marshal(base64.StdEncoding.EncodeToString(v.AsBytes()))
		fmt.Fprintf(b, `{"type":"bytes","base64":%s}`, string(enc))
	case KGuid:
		g := v.Obj.(*GuidObj)
		enc, _ := json.Marshal(g.Inspect())
		fmt.Fprintf(b, `{"type":"guid","value":%s}`, string(enc))
	case KDateTime:
		d := v.Obj.(*DateTimeObj)
		if iso, ok := ticksToISO(d.Ticks); ok {
			enc, _ := json.Marshal(iso)
			fmt.Fprintf(b, `{"type":"datetime","ticks":%d,"iso":%s}`, d.Ticks, string(enc))
		} else {
			fmt.Fprintf(b, `{"type":"datetime","ticks":%d}`, d.Ticks)
		}
	case KFunction:
		f := v.AsFunction()
		enc, _ := json.Marshal(f.Name)
		fmt.Fprintf(b, `{"type":"function","name":%s,"arity":%d}`, string(enc), f.Arity)
	case KNative:
		n := v.AsNative()
		enc, _ := json.Marshal(n.Name)
		fmt.Fprintf(b, `{"type":"native","name":%s}`, string(enc))
	case KError:
		e := v.AsError()
		enc, _ := json.Marshal(e.Message)
		fmt.Fprintf(b, `{"kind":"value","code":%d,"message":%s,"line":%d,"column":%d}`, e.Code, string(enc), e.Line, e.Column)
	case KProvider:
		return writeJSON(b, v.AsProvider().Current)
	default:
		b.WriteString("null")
	}
	return nil
}

func writeKvcJSON(b *strings.Builder, k *Kvc) error {
	b.WriteByte('{')
	for i, lk := range k.Order {
		if i > 0 {
			b.WriteByte(',')
		}
		display := k.DisplayNames[lk]
		enc, err := json.Marshal(display)
		if err != nil {
			return err
		}
		b.Write(enc)
		b.WriteByte(':')
		val, err := kvcFieldForJSON(k, lk)
		if err != nil {
			return err
		}
		if err := writeJSON(b, val); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// kvcFieldForJSON reads a field's current cached value for projection
// without triggering lazy evaluation itself — callers are expected to
// have already forced the record (spec.md §6.6 "projection forces every
// field"), so this only reads what's already cached, defaulting to Nil
// if a field was never forced.
func kvcFieldForJSON(k *Kvc, lowerKey string) (Value, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if v, ok := k.Cache[lowerKey]; ok {
		return v, nil
	}
	return Nil(), nil
}

func isSpecialFloat(f float64) bool {
	return f != f || f > 1e18 || f < -1e18
}

func isNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
