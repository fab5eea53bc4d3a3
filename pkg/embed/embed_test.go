package embed

import "testing"

func TestEvalReturnsJSON(t *testing.T) {
	m := New()
	out, err := m.Eval("1+2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3" {
		t.Errorf("got %q, want %q", out, "3")
	}
}

func TestEvalToHandleAndProperty(t *testing.T) {
	m := New()
	id, err := m.EvalToHandle(`{a:1, b:2}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Free(id)

	kind, kerr := m.Kind(id)
	if kerr != nil || kind != "Kvc" {
		t.Errorf("Kind = %q, %v; want Kvc", kind, kerr)
	}

	keys, kerr := m.Keys(id)
	if kerr != nil {
		t.Fatalf("unexpected error: %v", kerr)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("got %v, want [a b]", keys)
	}

	propID, perr := m.Property(id, "a")
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	defer m.Free(propID)
	propJSON, jerr := m.ToJSON(propID)
	if jerr != nil || propJSON != "1" {
		t.Errorf("got %q, %v; want 1", propJSON, jerr)
	}
}

func TestIndexIntoHandle(t *testing.T) {
	m := New()
	id, err := m.EvalToHandle(`[10,20,30]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Free(id)

	n, lerr := m.Len(id)
	if lerr != nil || n != 3 {
		t.Errorf("Len = %d, %v; want 3", n, lerr)
	}

	elemID, ierr := m.Index(id, 1)
	if ierr != nil {
		t.Fatalf("unexpected error: %v", ierr)
	}
	defer m.Free(elemID)
	elemJSON, jerr := m.ToJSON(elemID)
	if jerr != nil || elemJSON != "20" {
		t.Errorf("got %q, %v; want 20", elemJSON, jerr)
	}
}

func TestCallStoredFunction(t *testing.T) {
	m := New()
	fnID, err := m.EvalToHandle(`(x)=>x+1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Free(fnID)

	argID, aerr := m.EvalToHandle(`41`)
	if aerr != nil {
		t.Fatalf("unexpected error: %v", aerr)
	}
	defer m.Free(argID)

	resultID, cerr := m.Call(fnID, []int64{argID})
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}
	defer m.Free(resultID)
	out, jerr := m.ToJSON(resultID)
	if jerr != nil || out != "42" {
		t.Errorf("got %q, %v; want 42", out, jerr)
	}
}

func TestFreeInvalidatesHandle(t *testing.T) {
	m := New()
	id, err := m.EvalToHandle("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Free(id) {
		t.Fatal("expected Free to succeed")
	}
	if _, kerr := m.Kind(id); kerr == nil || kerr.Code != 2006 {
		t.Errorf("expected error 2006 after Free, got %v", kerr)
	}
}
