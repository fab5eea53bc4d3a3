package lexer

import "github.com/funvibe/funcscript/internal/token"

// Incomplete reports whether src looks like a truncated REPL fragment:
// an unbalanced bracket/brace/paren nesting, or a scanner ERROR token
// whose message begins with "Unterminated" (unterminated string,
// triple-quoted string, or template — spec.md §6.5). The REPL uses this
// to decide whether to keep buffering lines instead of evaluating.
func Incomplete(src string) bool {
	l := New(src)
	depth := 0
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		case token.ERROR:
			if hasUnterminatedPrefix(tok.Lexeme) {
				return true
			}
		case token.EOF:
			return depth > 0
		}
	}
}

func hasUnterminatedPrefix(msg string) bool {
	const prefix = "Unterminated"
	return len(msg) >= len(prefix) && msg[:len(prefix)] == prefix
}
