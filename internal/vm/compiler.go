package vm

import (
	"strconv"
	"strings"

	"github.com/funvibe/funcscript/internal/lexer"
	"github.com/funvibe/funcscript/internal/token"
	"github.com/funvibe/funcscript/internal/value"
)

type local struct {
	name string
	slot int
}

// funcCompiler tracks emission state for one Function under construction.
// Nested lambdas, record-field thunks, and selector bodies each push a new
// funcCompiler and pop it when their body finishes compiling.
type funcCompiler struct {
	parent *funcCompiler
	chunk  *value.Chunk
	locals []local
	arity  int
	name   string
}

// Compiler is a single-pass recursive-descent compiler (spec.md §4.2).
// There is no separate AST stage: grammar productions emit bytecode
// directly into the active funcCompiler's Chunk as they are recognized.
type Compiler struct {
	lex  *lexer.Lexer
	cur  token.Token
	prev token.Token

	fc *funcCompiler

	hadError bool
	errs     []*value.FsError
}

// NewCompiler prepares a Compiler over src. Call Compile to produce the
// top-level Function.
func NewCompiler(src string) *Compiler {
	c := &Compiler{lex: lexer.New(src)}
	c.advance()
	return c
}

// Compile parses the whole input as a single expression (or a naked
// top-level record) and returns the resulting Function, or a compile
// error (spec.md §7 "CompileError").
func Compile(src string) (*value.Function, *value.FsError) {
	c := NewCompiler(src)
	c.pushFunc("<script>", 0)

	if c.looksLikeNakedRecord() {
		c.compileRecordBody(false)
	} else {
		c.expression()
	}
	c.emitOp(OP_RETURN)

	if !c.check(token.EOF) {
		c.errorAtCurrent("unexpected trailing input")
	}

	fn := c.popFunc()
	if c.hadError {
		return nil, c.errs[0]
	}
	return fn, nil
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.lex.NextToken()
		if c.cur.Kind != token.ERROR {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) expect(k token.Kind, msg string) {
	if c.check(k) {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) {
	c.hadError = true
	c.errs = append(c.errs, &value.FsError{Code: 1000, Message: msg, Line: c.cur.Line, Column: c.cur.Column})
}

// isKeyword reports whether the current token is IDENT with lexeme kw.
func (c *Compiler) isKeyword(kw string) bool {
	return c.cur.Kind == token.IDENT && c.cur.Lexeme == kw
}

func (c *Compiler) matchKeyword(kw string) bool {
	if !c.isKeyword(kw) {
		return false
	}
	c.advance()
	return true
}

// --- emission helpers ---

func (c *Compiler) emitByte(b byte) { c.fc.chunk.WriteByte(b, c.prev.Line, c.prev.Column) }
func (c *Compiler) emitOp(op Opcode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOperand(op Opcode, operand int) {
	c.emitOp(op)
	c.emitByte(byte(operand >> 24))
	c.emitByte(byte(operand >> 16))
	c.emitByte(byte(operand >> 8))
	c.emitByte(byte(operand))
}

func (c *Compiler) emitConstant(v value.Value) {
	idx := c.fc.chunk.AddConstant(v)
	c.emitOperand(OP_CONST, idx)
}

func (c *Compiler) addConstant(v value.Value) int { return c.fc.chunk.AddConstant(v) }

// emitJump emits op with a placeholder 4-byte offset and returns the
// index of that offset for a later patchJump.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	pos := c.fc.chunk.Len()
	c.emitByte(0)
	c.emitByte(0)
	c.emitByte(0)
	c.emitByte(0)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	offset := c.fc.chunk.Len() - (pos + 4)
	code := c.fc.chunk.Code
	code[pos] = byte(offset >> 24)
	code[pos+1] = byte(offset >> 16)
	code[pos+2] = byte(offset >> 8)
	code[pos+3] = byte(offset)
}

func (c *Compiler) pushFunc(name string, arity int) {
	c.fc = &funcCompiler{parent: c.fc, chunk: value.NewChunk(), arity: arity, name: name}
}

func (c *Compiler) popFunc() *value.Function {
	fn := &value.Function{Name: c.fc.name, Arity: c.fc.arity, Chunk: c.fc.chunk}
	c.fc = c.fc.parent
	return fn
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		if c.fc.locals[i].name == name {
			return c.fc.locals[i].slot, true
		}
	}
	return 0, false
}

func (c *Compiler) addLocal(name string) int {
	slot := len(c.fc.locals) + 1 // slot 0 is reserved for the callee itself
	c.fc.locals = append(c.fc.locals, local{name: name, slot: slot})
	return slot
}

// --- naked top-level record detection ---

// looksLikeNakedRecord performs a bounded lookahead to decide whether the
// script opens with implicit record-body syntax rather than a plain
// expression (spec.md §4.2 "Record body compilation").
func (c *Compiler) looksLikeNakedRecord() bool {
	if c.isKeyword("eval") || c.isKeyword("return") {
		return true
	}
	if c.cur.Kind != token.IDENT && c.cur.Kind != token.STRING {
		return false
	}
	clone := *c.lex
	save := clone
	peek := c.cur
	_ = peek
	// look one token ahead without disturbing the real lexer
	next := clone.NextToken()
	if next.Kind == token.COLON {
		return true
	}
	if next.Kind == token.LPAREN {
		// could be `ident(params) => body`; scan for matching ')' followed by '=>'
		depth := 1
		for depth > 0 {
			t := clone.NextToken()
			if t.Kind == token.EOF || t.Kind == token.ERROR {
				return false
			}
			if t.Kind == token.LPAREN {
				depth++
			} else if t.Kind == token.RPAREN {
				depth--
			}
		}
		return clone.NextToken().Kind == token.ARROW
	}
	_ = save
	return false
}

// --- expression grammar: precedence low -> high ---

func (c *Compiler) expression() { c.parseOr() }

func (c *Compiler) parseOr() {
	c.parseAnd()
	for c.matchKeyword("or") {
		c.emitGlobalIdent("Or")
		c.emitOp(OP_SWAP)
		c.parseAnd()
		c.emitOperand(OP_CALL, 2)
	}
}

func (c *Compiler) parseAnd() {
	c.parseIn()
	for c.matchKeyword("and") {
		c.emitGlobalIdent("And")
		c.emitOp(OP_SWAP)
		c.parseIn()
		c.emitOperand(OP_CALL, 2)
	}
}

func (c *Compiler) parseIn() {
	c.parseMap()
	for c.matchKeyword("in") {
		c.emitGlobalIdent("In")
		c.emitOp(OP_SWAP)
		c.parseMap()
		c.emitOperand(OP_CALL, 2)
	}
}

func (c *Compiler) parseMap() {
	c.parseReduce()
	for c.matchKeyword("map") {
		c.parseReduce()
		c.emitOp(OP_MAP)
	}
}

func (c *Compiler) parseReduce() {
	c.parseEquality()
	for c.matchKeyword("reduce") {
		c.parseEquality()
		hasSeed := 0
		if c.match(token.TILDE) {
			c.parseEquality()
			hasSeed = 1
		}
		c.emitOperand(OP_REDUCE, hasSeed)
	}
}

func (c *Compiler) parseEquality() {
	c.parseComparison()
	for {
		switch {
		case c.match(token.ASSIGN) || c.match(token.EQ):
			c.parseComparison()
			c.emitOp(OP_EQ)
		case c.match(token.NOT_EQ):
			c.parseComparison()
			c.emitOp(OP_EQ)
			c.emitOp(OP_NOT)
		default:
			return
		}
	}
}

func (c *Compiler) parseComparison() {
	c.parseNilOps()
	for {
		switch {
		case c.match(token.LT):
			c.parseNilOps()
			c.emitOp(OP_LT)
		case c.match(token.LE):
			c.parseNilOps()
			c.emitOp(OP_LE)
		case c.match(token.GT):
			c.parseNilOps()
			c.emitOp(OP_GT)
		case c.match(token.GE):
			c.parseNilOps()
			c.emitOp(OP_GE)
		default:
			return
		}
	}
}

// parseNilOps handles ?? and ?! (spec.md §6.1); sits between comparison
// and additive since they bind to whole sub-expressions on either side.
func (c *Compiler) parseNilOps() {
	c.parseAdditive()
	for {
		switch {
		case c.match(token.QQ):
			// lhs ?? rhs: JumpIfNil is not available on a non-top value, so
			// duplicate, test, and branch.
			c.emitOp(OP_DUP)
			c.patchQQ()
		case c.match(token.QBANG):
			c.patchQBang()
		default:
			return
		}
	}
}

// patchQQ compiles `lhs ?? rhs` fully given lhs already produced a Dup on
// the stack: [lhs, lhs]. It tests the top for non-nil; if non-nil, the
// extra copy is dropped and lhs is kept; else both copies are dropped and
// rhs is evaluated.
func (c *Compiler) patchQQ() {
	jIsNil := c.emitJump(OP_JUMP_IF_NIL)
	// not nil: drop the duplicate copy, keep the original lhs
	c.emitOp(OP_POP)
	jEnd := c.emitJump(OP_JUMP)
	c.patchJump(jIsNil)
	c.emitOp(OP_POP) // drop the nil duplicate
	c.emitOp(OP_POP) // drop the original nil lhs
	c.parseAdditive()
	c.patchJump(jEnd)
}

// patchQBang compiles `lhs ?! rhs`: evaluate rhs only when lhs is
// non-nil, else the whole expression is Nil.
func (c *Compiler) patchQBang() {
	c.emitOp(OP_DUP)
	jIsNil := c.emitJump(OP_JUMP_IF_NIL)
	c.emitOp(OP_POP) // drop duplicate, keep evaluating rhs path
	c.emitOp(OP_POP) // drop original lhs; its value is discarded per spec
	c.parseAdditive()
	jEnd := c.emitJump(OP_JUMP)
	c.patchJump(jIsNil)
	c.emitOp(OP_POP) // duplicate
	// original Nil lhs remains on stack as the result
	c.patchJump(jEnd)
}

func (c *Compiler) parseAdditive() {
	c.parseMultiplicative()
	for {
		switch {
		case c.match(token.PLUS):
			c.parseMultiplicative()
			c.emitOp(OP_ADD)
		case c.match(token.MINUS):
			c.parseMultiplicative()
			c.emitOp(OP_SUB)
		default:
			return
		}
	}
}

func (c *Compiler) parseMultiplicative() {
	c.parseUnary()
	for {
		switch {
		case c.match(token.STAR):
			c.parseUnary()
			c.emitOp(OP_MUL)
		case c.match(token.SLASH):
			c.parseUnary()
			c.emitOp(OP_DIV)
		default:
			return
		}
	}
}

func (c *Compiler) parseUnary() {
	switch {
	case c.match(token.BANG):
		c.parseUnary()
		c.emitOp(OP_NOT)
	case c.match(token.MINUS):
		c.parseUnary()
		c.emitOp(OP_NEG)
	default:
		c.parsePowDivMod()
	}
}

// parsePowDivMod handles ^ (pow), div, % — spec.md §6.1 lists these as
// binding tighter than unary, just above the call/postfix chain.
func (c *Compiler) parsePowDivMod() {
	c.parsePostfix()
	for {
		switch {
		case c.match(token.CARET):
			c.parsePostfix()
			c.emitOp(OP_POW)
		case c.matchKeyword("div"):
			c.parsePostfix()
			c.emitOp(OP_INT_DIV)
		case c.match(token.PERCENT):
			c.parsePostfix()
			c.emitOp(OP_MOD)
		default:
			return
		}
	}
}

func (c *Compiler) emitGlobalIdent(name string) {
	idx := c.addConstant(value.Str(strings.ToLower(name)))
	c.emitOperand(OP_GET_GLOBAL, idx)
}

// --- postfix chain ---

func (c *Compiler) parsePostfix() {
	c.parsePrimary()
	for {
		switch {
		case c.match(token.LPAREN):
			argc := c.callArgs()
			c.emitOperand(OP_CALL, argc)
		case c.match(token.DOT), c.match(token.SAFE_DOT):
			name := c.identName("expected property name")
			idx := c.addConstant(value.Str(name))
			c.emitOperand(OP_GET_PROP, idx)
		case c.match(token.LBRACKET):
			c.expression()
			c.expect(token.RBRACKET, "expected ']'")
			c.emitOp(OP_GET_INDEX)
		case c.check(token.LBRACE):
			c.advance()
			idx := c.compileSelector()
			c.emitOperand(OP_SELECT, idx)
		default:
			return
		}
	}
}

func (c *Compiler) identName(msg string) string {
	if c.cur.Kind != token.IDENT && c.cur.Kind != token.STRING {
		c.errorAtCurrent(msg)
		return ""
	}
	name := c.cur.Lexeme
	c.advance()
	return name
}

func (c *Compiler) callArgs() int {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RPAREN, "expected ')' after arguments")
	return argc
}

// compileSelector compiles `{ a, b, c: expr }` as an arity-1 Function
// (the receiver is slot 1) that builds a projected record, and returns
// its constant index (spec.md §4.2 "Postfix chain", §9 "Selector sugar").
func (c *Compiler) compileSelector() int {
	c.pushFunc("<selector>", 1)
	c.emitOperand(OP_GET_LOCAL, 1)
	c.emitOp(OP_MAKE_PROVIDER)
	c.emitOp(OP_PUSH_PROVIDER)
	n, evalIdx := c.compileRecordEntries()
	c.emitOperand(OP_BUILD_KVC, n)
	c.emitEvalClause(evalIdx)
	c.emitOp(OP_POP_PROVIDER)
	c.emitOp(OP_RETURN)
	fn := c.popFunc()
	return c.addConstant(value.Value{K: value.KFunction, Obj: fn})
}

// --- primaries ---

func (c *Compiler) parsePrimary() {
	switch {
	case c.check(token.NUMBER):
		c.numberLiteral()
	case c.check(token.STRING):
		c.emitConstant(value.Str(c.cur.Lexeme))
		c.advance()
	case c.check(token.TEMPLATE_START):
		c.templateString()
	case c.isKeyword("true"):
		c.advance()
		c.emitOp(OP_TRUE)
	case c.isKeyword("false"):
		c.advance()
		c.emitOp(OP_FALSE)
	case c.isKeyword("nil"):
		c.advance()
		c.emitOp(OP_NIL)
	case c.isKeyword("if"):
		c.ifThenElse()
	case c.isKeyword("case"):
		c.caseExpr()
	case c.isKeyword("switch"):
		c.switchExpr()
	case c.check(token.IDENT):
		c.identifierOrCallForm()
	case c.check(token.LPAREN):
		c.parenOrLambda()
	case c.check(token.LBRACKET):
		c.listLiteral()
	case c.check(token.LBRACE):
		c.advance()
		c.compileRecordBody(true)
	default:
		c.errorAtCurrent("unexpected token " + c.cur.Kind.String())
		c.advance()
	}
}

func (c *Compiler) numberLiteral() {
	lex := c.cur.Lexeme
	c.advance()
	if !strings.ContainsAny(lex, ".eE") {
		if i, err := strconv.ParseInt(lex, 10, 64); err == nil {
			c.emitConstant(value.Int(i))
			return
		}
	}
	f, _ := strconv.ParseFloat(lex, 64)
	if f == float64(int64(f)) && !strings.ContainsAny(lex, ".eE") {
		c.emitConstant(value.Int(int64(f)))
		return
	}
	c.emitConstant(value.Number(f))
}

// templateString compiles `f"…{expr}…"` as a call to the global
// TemplateMerge (spec.md §4.2.4).
func (c *Compiler) templateString() {
	c.emitGlobalIdent("TemplateMerge")
	c.advance() // consume TEMPLATE_START
	parts := 0
	for {
		switch {
		case c.check(token.TEMPLATE_TEXT):
			c.emitConstant(value.Str(c.cur.Lexeme))
			c.advance()
			parts++
		case c.check(token.TEMPLATE_END):
			c.advance()
			c.emitOperand(OP_CALL, parts)
			return
		case c.check(token.EOF):
			c.errorAtCurrent("unterminated template")
			c.emitOperand(OP_CALL, parts)
			return
		default:
			c.expression()
			parts++
		}
	}
}

// identifierOrCallForm handles plain identifier use, the single-parameter
// lambda `x => expr`, the `If(...)` call-form, and the
// `reduce(list, fn[, seed])` call-form (spec.md §4.2).
func (c *Compiler) identifierOrCallForm() {
	name := c.cur.Lexeme
	switch name {
	case "If":
		c.advance()
		c.ifCallForm()
		return
	case "reduce":
		c.advance()
		if c.check(token.LPAREN) {
			c.reduceCallForm()
			return
		}
		c.resolveIdent(name)
		return
	}
	c.advance()
	if c.check(token.ARROW) {
		c.advance()
		c.compileLambdaBody([]string{name})
		return
	}
	c.resolveIdent(name)
}

func (c *Compiler) resolveIdent(name string) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emitOperand(OP_GET_LOCAL, slot)
		return
	}
	idx := c.addConstant(value.Str(strings.ToLower(name)))
	c.emitOperand(OP_GET_GLOBAL, idx)
}

func (c *Compiler) ifThenElse() {
	c.advance() // 'if'
	c.expression()
	if !c.matchKeyword("then") {
		c.errorAtCurrent("expected 'then'")
	}
	jElse := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.expression()
	jEnd := c.emitJump(OP_JUMP)
	c.patchJump(jElse)
	c.emitOp(OP_POP)
	if !c.matchKeyword("else") {
		c.errorAtCurrent("expected 'else'")
	}
	c.expression()
	c.patchJump(jEnd)
}

func (c *Compiler) ifCallForm() {
	c.expect(token.LPAREN, "expected '(' after If")
	c.expression()
	c.expect(token.COMMA, "expected ',' after condition")
	jElse := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.expression()
	jEnd := c.emitJump(OP_JUMP)
	c.expect(token.COMMA, "expected ',' after then-branch")
	c.patchJump(jElse)
	c.emitOp(OP_POP)
	c.expression()
	c.patchJump(jEnd)
	c.expect(token.RPAREN, "expected ')'")
}

func (c *Compiler) reduceCallForm() {
	c.expect(token.LPAREN, "expected '(' after reduce")
	c.expression() // list
	c.expect(token.COMMA, "expected ','")
	c.expression() // fn
	hasSeed := 0
	if c.match(token.COMMA) {
		c.expression()
		hasSeed = 1
	}
	c.expect(token.RPAREN, "expected ')'")
	c.emitOperand(OP_REDUCE, hasSeed)
}

// caseExpr compiles `case P1:V1, P2:V2, …, DEFAULT`.
func (c *Compiler) caseExpr() {
	c.advance() // 'case'
	var ends []int
	for {
		if c.looksLikeCaseDefault() {
			c.expression()
			break
		}
		c.expression() // predicate
		c.expect(token.COLON, "expected ':' in case arm")
		jFalse := c.emitJump(OP_JUMP_IF_FALSE)
		c.emitOp(OP_POP)
		c.expression()
		ends = append(ends, c.emitJump(OP_JUMP))
		c.patchJump(jFalse)
		c.emitOp(OP_POP)
		if !c.match(token.COMMA) {
			break
		}
	}
	for _, e := range ends {
		c.patchJump(e)
	}
}

// looksLikeCaseDefault: the final arm of `case`/`switch` has no trailing
// `:`, distinguishing it from a predicate/selector arm.
func (c *Compiler) looksLikeCaseDefault() bool {
	clone := *c.lex
	depth := 0
	for {
		t := clone.NextToken()
		switch t.Kind {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		case token.COLON:
			if depth == 0 {
				return false
			}
		case token.COMMA:
			if depth == 0 {
				return true
			}
		case token.EOF, token.ERROR:
			return true
		}
	}
}

// switchExpr compiles `switch SEL, K1:V1, …, DEFAULT`.
func (c *Compiler) switchExpr() {
	c.advance() // 'switch'
	c.expression() // selector
	c.expect(token.COMMA, "expected ',' after switch selector")
	var ends []int
	for {
		if c.looksLikeCaseDefault() {
			c.expression()
			c.emitOp(OP_SWAP)
			c.emitOp(OP_POP) // drop selector, keep default value
			break
		}
		c.emitOp(OP_DUP)
		c.expression() // case key
		c.emitOp(OP_EQ)
		jFalse := c.emitJump(OP_JUMP_IF_FALSE)
		c.emitOp(OP_POP)
		c.emitOp(OP_POP) // drop selector
		c.expect(token.COLON, "expected ':' in switch arm")
		c.expression()
		ends = append(ends, c.emitJump(OP_JUMP))
		c.patchJump(jFalse)
		c.emitOp(OP_POP)
		if !c.match(token.COMMA) {
			break
		}
	}
	for _, e := range ends {
		c.patchJump(e)
	}
}

// parenOrLambda disambiguates `(expr)` from `(params) => body` by
// bounded lookahead for a following `=>` after a balanced `)`.
func (c *Compiler) parenOrLambda() {
	if c.isLambdaAhead() {
		c.lambda()
		return
	}
	c.advance() // '('
	c.expression()
	c.expect(token.RPAREN, "expected ')'")
}

func (c *Compiler) isLambdaAhead() bool {
	clone := *c.lex
	depth := 1
	for depth > 0 {
		t := clone.NextToken()
		if t.Kind == token.EOF || t.Kind == token.ERROR {
			return false
		}
		if t.Kind == token.LPAREN {
			depth++
		} else if t.Kind == token.RPAREN {
			depth--
		}
	}
	return clone.NextToken().Kind == token.ARROW
}

// lambda compiles `(x, y) => expr`; the single-parameter form `x => expr`
// is handled in identifierOrCallForm (spec.md §4.2 "Lambdas").
func (c *Compiler) lambda() {
	c.expect(token.LPAREN, "expected '('")
	var params []string
	if !c.check(token.RPAREN) {
		for {
			params = append(params, c.identName("expected parameter name"))
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RPAREN, "expected ')'")
	c.expect(token.ARROW, "expected '=>'")
	c.compileLambdaBody(params)
}

func (c *Compiler) compileLambdaBody(params []string) {
	c.pushFunc("<lambda>", len(params))
	for _, p := range params {
		c.addLocal(p)
	}
	c.expression()
	c.emitOp(OP_RETURN)
	fn := c.popFunc()
	idx := c.addConstant(value.Value{K: value.KFunction, Obj: fn})
	c.emitOperand(OP_CLOSURE, idx)
}

func (c *Compiler) listLiteral() {
	c.advance() // '['
	n := 0
	if !c.check(token.RBRACKET) {
		for {
			c.expression()
			n++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RBRACKET, "expected ']'")
	c.emitOperand(OP_BUILD_LIST, n)
}

// --- record bodies (KVC compilation, spec.md §4.2.6) ---

// compileRecordBody compiles the inside of `{ … }` (or the naked
// top-level record) up to the closing brace (if expectBrace), emits
// BuildKvc, and — when an eval/return clause was present — drives it
// against the freshly built record (spec.md §4.2.6).
func (c *Compiler) compileRecordBody(expectBrace bool) {
	n, evalIdx := c.compileRecordEntries()
	if expectBrace {
		c.expect(token.RBRACE, "expected '}'")
	}
	c.emitOperand(OP_BUILD_KVC, n)
	c.emitEvalClause(evalIdx)
}

// emitEvalClause runs the eval/return thunk with the record (already on
// top of the stack) pushed as its provider, leaving only the thunk's
// result on the stack in place of the record (spec.md §4.2.6).
func (c *Compiler) emitEvalClause(evalIdx int) {
	if evalIdx < 0 {
		return
	}
	c.emitOp(OP_PUSH_PROVIDER)
	c.emitOperand(OP_CLOSURE, evalIdx)
	c.emitOperand(OP_CALL, 0)
	c.emitOp(OP_POP_PROVIDER)
}

// compileRecordEntries parses comma/semicolon separated entries and
// leaves (keyConst, thunkOrFuncConst) pairs on the stack, returning the
// entry count and the constant index of a trailing eval/return thunk (or
// -1 if none was present).
func (c *Compiler) compileRecordEntries() (int, int) {
	n := 0
	evalIdx := -1
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		if c.isKeyword("eval") || c.isKeyword("return") {
			c.advance()
			c.pushFunc("<eval>", 0)
			c.expression()
			c.emitOp(OP_RETURN)
			fn := c.popFunc()
			evalIdx = c.addConstant(value.Value{K: value.KFunction, Obj: fn})
		} else {
			c.recordEntry()
			n++
		}
		if !c.match(token.COMMA) && !c.match(token.SEMI) {
			break
		}
	}
	return n, evalIdx
}

// recordEntry compiles one `key: expr`, `key`, `key(params) => body`, or
// `key { selector }` entry, pushing (keyConst, valueConst/thunkClosure).
func (c *Compiler) recordEntry() {
	keyName := c.identName("expected field name")
	keyIdx := c.addConstant(value.Str(keyName))

	switch {
	case c.check(token.LPAREN):
		// key(params) => body
		c.advance()
		var params []string
		if !c.check(token.RPAREN) {
			for {
				params = append(params, c.identName("expected parameter name"))
				if !c.match(token.COMMA) {
					break
				}
			}
		}
		c.expect(token.RPAREN, "expected ')'")
		c.expect(token.ARROW, "expected '=>'")
		c.emitOperand(OP_CONST, keyIdx)
		c.compileLambdaBody(params)
		return

	case c.check(token.LBRACE):
		// key { selector-body } — projection of parent.key
		c.advance()
		c.pushFunc("<thunk:"+keyName+">", 0)
		gpIdx := c.addConstant(value.Str(strings.ToLower(keyName)))
		c.emitOperand(OP_GET_PARENT, gpIdx)
		selIdx := c.compileSelector()
		c.emitOperand(OP_SELECT, selIdx)
		c.emitOp(OP_RETURN)
		fn := c.popFunc()
		thunkIdx := c.addConstant(value.Value{K: value.KFunction, Obj: fn})
		c.emitOperand(OP_CONST, keyIdx)
		c.emitOperand(OP_CLOSURE, thunkIdx)
		return

	case c.match(token.COLON):
		c.emitOperand(OP_CONST, keyIdx)
		c.pushFunc("<thunk:"+keyName+">", 0)
		c.expression()
		c.emitOp(OP_RETURN)
		fn := c.popFunc()
		thunkIdx := c.addConstant(value.Value{K: value.KFunction, Obj: fn})
		c.emitOperand(OP_CLOSURE, thunkIdx)
		return

	default:
		// bare `key` projection: parent.key
		c.emitOperand(OP_CONST, keyIdx)
		c.pushFunc("<thunk:"+keyName+">", 0)
		gpIdx := c.addConstant(value.Str(strings.ToLower(keyName)))
		c.emitOperand(OP_GET_PARENT, gpIdx)
		c.emitOp(OP_RETURN)
		fn := c.popFunc()
		thunkIdx := c.addConstant(value.Value{K: value.KFunction, Obj: fn})
		c.emitOperand(OP_CLOSURE, thunkIdx)
		return
	}
}
