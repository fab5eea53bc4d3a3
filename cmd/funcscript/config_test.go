package main

import "testing"

func TestDefaultConfigPrompt(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Prompt != "fs> " {
		t.Errorf("got %q, want %q", cfg.Prompt, "fs> ")
	}
	if cfg.PrettyWidth != 0 || cfg.HistoryFile != "" {
		t.Errorf("expected zero-value overrides, got %+v", cfg)
	}
}

func TestPrettyPrintCompactWhenWidthZero(t *testing.T) {
	in := `{"a":1,"b":[1,2]}`
	if got := prettyPrint(in, 0); got != in {
		t.Errorf("got %q, want unchanged %q", got, in)
	}
}

func TestPrettyPrintIndents(t *testing.T) {
	in := `{"a":1}`
	want := "{\n  \"a\": 1\n}"
	if got := prettyPrint(in, 2); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrettyPrintFallsBackOnInvalidJSON(t *testing.T) {
	in := "not json"
	if got := prettyPrint(in, 2); got != in {
		t.Errorf("got %q, want unchanged %q", got, in)
	}
}
