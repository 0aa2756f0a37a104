package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/token"
	"github.com/xirelogy/go-lox/internal/value"
)

// Compile parses source and emits bytecode for it into chunk.
// On failure it returns an *Error and chunk must not be executed.
func Compile(source string, chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	p := &parser{
		lex:   lexer.New(source),
		chunk: chunk,
	}

	p.advance()
	p.expression()
	p.consume(token.EOF, "expected end of expression")
	p.emitByte(OP_RETURN, p.previous.Line)

	if p.hadError {
		return &Error{Diagnostics: p.diagnostics}
	}
	return nil
}

// Diagnostic is a single reported compile error.
type Diagnostic struct {
	Line    int
	Where   string // " at 'x'", " at end" or empty for lexer errors
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Error collects the diagnostics reported while compiling.
type Error struct {
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// parser holds the state of one compilation. Once panicMode is set no
// further diagnostics are recorded; nothing in an expression-only grammar
// clears it.
type parser struct {
	lex         *lexer.Lexer
	chunk       *Chunk
	current     token.Token
	previous    token.Token
	hadError    bool
	panicMode   bool
	diagnostics []Diagnostic
}

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Type != token.Error {
			return
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) consume(t token.Type, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

func (p *parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == ruleNone {
		p.error("expected expression")
		return
	}
	p.applyPrefix(prefix)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		p.applyInfix(getRule(p.previous.Type).infix)
	}
}

func (p *parser) applyPrefix(kind ruleKind) {
	switch kind {
	case ruleGrouping:
		p.grouping()
	case ruleUnary:
		p.unary()
	case ruleNumber:
		p.number()
	case ruleLiteral:
		p.literal()
	case ruleNone, ruleBinary:
		p.error("expected expression")
	}
}

func (p *parser) applyInfix(kind ruleKind) {
	switch kind {
	case ruleBinary:
		p.binary()
	case ruleNone, ruleGrouping, ruleUnary, ruleNumber, ruleLiteral:
		p.error("expected expression")
	}
}

func (p *parser) grouping() {
	p.expression()
	p.consume(token.RParen, "expected ')' after expression")
}

func (p *parser) number() {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.error("invalid number literal")
		return
	}
	p.emitConstant(value.Number(n), p.previous.Line)
}

func (p *parser) literal() {
	line := p.previous.Line
	switch p.previous.Type {
	case token.False:
		p.emitByte(OP_FALSE, line)
	case token.True:
		p.emitByte(OP_TRUE, line)
	case token.Nil:
		p.emitByte(OP_NIL, line)
	}
}

func (p *parser) unary() {
	op := p.previous
	p.parsePrecedence(PrecUnary)

	switch op.Type {
	case token.Minus:
		p.emitByte(OP_NEG, op.Line)
	}
}

func (p *parser) binary() {
	op := p.previous
	rule := getRule(op.Type)
	p.parsePrecedence(rule.precedence + 1)

	switch op.Type {
	case token.Plus:
		p.emitByte(OP_ADD, op.Line)
	case token.Minus:
		p.emitByte(OP_SUB, op.Line)
	case token.Star:
		p.emitByte(OP_MUL, op.Line)
	case token.Slash:
		p.emitByte(OP_DIV, op.Line)
	}
}

func (p *parser) emitByte(b byte, line int) {
	p.chunk.Write(b, line)
}

func (p *parser) emitConstant(v value.Value, line int) {
	idx := p.makeConstant(v)
	p.emitByte(OP_CONST, line)
	p.emitByte(idx, line)
}

// makeConstant adds v to the pool. When the pool is full it reports an
// error and returns index 0 as a placeholder.
func (p *parser) makeConstant(v value.Value) byte {
	if len(p.chunk.Constants) >= bytecode.MaxConstants {
		p.error("too many constants in chunk")
		return 0
	}
	return byte(p.chunk.AddConstant(v))
}

func (p *parser) error(msg string) {
	p.errorAt(p.previous, msg)
}

func (p *parser) errorAtCurrent(msg string) {
	p.errorAt(p.current, msg)
}

func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	where := ""
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// the lexeme is the message itself
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.diagnostics = append(p.diagnostics, Diagnostic{
		Line:    tok.Line,
		Where:   where,
		Message: msg,
	})
}
