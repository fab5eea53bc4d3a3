package native

import (
	"github.com/google/uuid"

	"github.com/funvibe/funcscript/internal/value"
)

// newRandomGuid backs a zero-arg `Guid()` call with a v4 UUID
// (spec.md §11: the Guid value kind is backed end to end by
// github.com/google/uuid rather than a hand-rolled 128-bit type).
func newRandomGuid() value.Value {
	id := uuid.New()
	var b [16]byte
	copy(b[:], id[:])
	return value.GuidVal(b)
}

func parseGuid(s string) value.Value {
	id, err := uuid.Parse(s)
	if err != nil {
		return value.Err(value.NewError(2022, "invalid Guid: "+err.Error()))
	}
	var b [16]byte
	copy(b[:], id[:])
	return value.GuidVal(b)
}
