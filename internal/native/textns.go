package native

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/funvibe/funcscript/internal/value"
)

// textFns builds the `Text` namespace record (spec.md §12.3).
func textFns() map[string]value.Value {
	return map[string]value.Value{
		"Lower":     native("Text.Lower", textLower),
		"Upper":     native("Text.Upper", textUpper),
		"EndsWith":  native("Text.EndsWith", textEndsWith),
		"Substring": native("Text.Substring", textSubstring),
		"Find":      native("Text.Find", textFind),
		"IsBlank":   native("Text.IsBlank", textIsBlank),
		"Join":      native("Text.Join", textJoin),
		"Regex":     native("Text.Regex", textRegex),
		"Parse":     native("Text.Parse", textParse),
		"Format":    native("Text.Format", textFormat),
		"HEncode":   native("Text.HEncode", textHEncode),
	}
}

func asStr(v value.Value) (string, *value.FsError) {
	if !v.IsString() {
		return "", value.NewError(2022, "expected a String")
	}
	return v.AsString(), nil
}

func textLower(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Str(strings.ToLower(s))
}

func textUpper(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Str(strings.ToUpper(s))
}

func textEndsWith(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	suffix, err := asStr(arg(args, 1))
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(strings.HasSuffix(s, suffix))
}

func textSubstring(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	start, length := arg(args, 1), arg(args, 2)
	if !start.IsInt() {
		return value.Err(value.NewError(2022, "Substring expects an Int start"))
	}
	runes := []rune(s)
	from := int(start.AsInt())
	if from < 0 || from > len(runes) {
		return value.Err(value.NewError(2022, "Substring start out of range"))
	}
	to := len(runes)
	if length.IsInt() {
		to = from + int(length.AsInt())
		if to > len(runes) {
			to = len(runes)
		}
	}
	if to < from {
		return value.Err(value.NewError(2022, "Substring length out of range"))
	}
	return value.Str(string(runes[from:to]))
}

func textFind(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	needle, err := asStr(arg(args, 1))
	if err != nil {
		return value.Err(err)
	}
	i := strings.Index(s, needle)
	if i < 0 {
		return value.Int(-1)
	}
	return value.Int(int64(len([]rune(s[:i]))))
}

func textIsBlank(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	return value.Bool(strings.TrimSpace(s) == "")
}

func textJoin(args []value.Value) value.Value {
	sep, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	items, ok := materialize(arg(args, 1))
	if !ok {
		return value.Err(value.NewError(2015, "Join requires a List or Range"))
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = value.Display(it)
	}
	return value.Str(strings.Join(parts, sep))
}

// textRegex implements Regex(pattern, s) -> List of matches (stdlib
// regexp; the teacher's own regex builtins are likewise stdlib-backed).
func textRegex(args []value.Value) value.Value {
	pattern, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	s, err := asStr(arg(args, 1))
	if err != nil {
		return value.Err(err)
	}
	re, compileErr := regexp.Compile(pattern)
	if compileErr != nil {
		return value.Err(value.NewError(2022, "invalid regex: "+compileErr.Error()))
	}
	matches := re.FindAllString(s, -1)
	out := make([]value.Value, len(matches))
	for i, m := range matches {
		out[i] = value.Str(m)
	}
	return value.List(out)
}

// textParse attempts Int, then Number, else returns the original String.
func textParse(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	if i, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		return value.Int(i)
	}
	if f, perr := strconv.ParseFloat(s, 64); perr == nil {
		return value.Number(f)
	}
	return value.Str(s)
}

func textFormat(args []value.Value) value.Value {
	format, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	rest := args[1:]
	anys := make([]interface{}, len(rest))
	for i, r := range rest {
		anys[i] = value.Display(r)
	}
	return value.Str(fmt.Sprintf(format, anys...))
}

func textHEncode(args []value.Value) value.Value {
	s, err := asStr(arg(args, 0))
	if err != nil {
		return value.Err(err)
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteRune(r)
		}
	}
	return value.Str(b.String())
}
