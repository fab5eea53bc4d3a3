package vm

import "github.com/funvibe/funcscript/internal/value"

// handleTable is the embedder value-handle table (spec.md §4.6). Handle
// 0 is always invalid; Store reuses freed slots before growing.
type handleTable struct {
	slots []value.Value
	valid []bool
	free  []int
}

func newHandleTable() *handleTable {
	return &handleTable{
		slots: make([]value.Value, 1, 64), // index 0 reserved/invalid
		valid: make([]bool, 1, 64),
	}
}

// Store saves v and returns its opaque id (never 0).
func (h *handleTable) Store(v value.Value) int64 {
	if n := len(h.free); n > 0 {
		id := h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[id] = v
		h.valid[id] = true
		return int64(id)
	}
	h.slots = append(h.slots, v)
	h.valid = append(h.valid, true)
	return int64(len(h.slots) - 1)
}

// Get resolves id to its Value; ok is false for 0, a freed id, or an
// out-of-range id.
func (h *handleTable) Get(id int64) (value.Value, bool) {
	i := int(id)
	if i <= 0 || i >= len(h.slots) || !h.valid[i] {
		return value.Value{}, false
	}
	return h.slots[i], true
}

// Free releases id for reuse.
func (h *handleTable) Free(id int64) bool {
	i := int(id)
	if i <= 0 || i >= len(h.slots) || !h.valid[i] {
		return false
	}
	h.valid[i] = false
	h.slots[i] = value.Value{}
	h.free = append(h.free, i)
	return true
}

// StoreHandle stores v and returns its id.
func (vm *VM) StoreHandle(v value.Value) int64 { return vm.handles.Store(v) }

// GetHandle resolves id back to a Value.
func (vm *VM) GetHandle(id int64) (value.Value, bool) { return vm.handles.Get(id) }

// FreeHandle releases id.
func (vm *VM) FreeHandle(id int64) bool { return vm.handles.Free(id) }
