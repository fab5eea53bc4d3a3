package lexer

import (
	"testing"

	"github.com/funvibe/funcscript/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF || tok.Kind == token.ERROR {
			break
		}
	}
	return toks
}

func TestBasicTokens(t *testing.T) {
	toks := collect(`a + 1 >= 2.5`)
	kinds := []token.Kind{token.IDENT, token.PLUS, token.NUMBER, token.GE, token.NUMBER, token.EOF}
	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(toks), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	toks := collect(`'a' "b" """c"""`)
	for i, want := range []string{"a", "b", "c"} {
		if toks[i].Kind != token.STRING || toks[i].Lexeme != want {
			t.Errorf("token %d: expected STRING %q, got %v", i, want, toks[i])
		}
	}
}

func TestTripleQuoteTrimsLeadingTrailingNewline(t *testing.T) {
	toks := collect("\"\"\"\nhello\n\"\"\"")
	if toks[0].Lexeme != "hello" {
		t.Errorf("expected %q, got %q", "hello", toks[0].Lexeme)
	}
}

func TestUnterminatedStringProducesErrorToken(t *testing.T) {
	toks := collect(`"abc`)
	last := toks[len(toks)-1]
	if last.Kind != token.ERROR {
		t.Fatalf("expected ERROR token, got %v", last)
	}
	if len(last.Lexeme) < len("Unterminated") || last.Lexeme[:len("Unterminated")] != "Unterminated" {
		t.Errorf("expected message starting with Unterminated, got %q", last.Lexeme)
	}
}

func TestFStringTemplate(t *testing.T) {
	toks := collect(`f"hi {1+2}"`)
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	expect := []token.Kind{
		token.TEMPLATE_START, token.TEMPLATE_TEXT,
		token.NUMBER, token.PLUS, token.NUMBER,
		token.TEMPLATE_END, token.EOF,
	}
	if len(kinds) != len(expect) {
		t.Fatalf("expected %v, got %v", expect, kinds)
	}
	for i := range expect {
		if kinds[i] != expect[i] {
			t.Errorf("token %d: expected %s, got %s", i, expect[i], kinds[i])
		}
	}
}

func TestFStringNestedBraceInInterpolation(t *testing.T) {
	toks := collect(`f"{ {a:1}.a }"`)
	found := false
	for _, tok := range toks {
		if tok.Kind == token.LBRACE {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a record-literal LBRACE inside interpolation, got %v", toks)
	}
}

func TestLineTracking(t *testing.T) {
	toks := collect("a\nb")
	if toks[0].Line != 1 {
		t.Errorf("expected line 1, got %d", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("expected line 2, got %d", toks[1].Line)
	}
}
