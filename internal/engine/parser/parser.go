// Package parser walks a token stream with a recursive-descent grammar,
// building the symbol tables and collecting diagnostics as it goes.
//
// Errors never stop the walk: every diagnostic is recorded, the run is marked
// failed, and parsing resumes at the next statement boundary.
package parser

import (
	"fmt"
	"log/slog"

	"dydcheck/internal/core/errors"
	"dydcheck/internal/engine/symtab"
	"dydcheck/internal/engine/token"
)

type Diagnostic struct {
	Line    int
	Code    errors.ErrorCode
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("LINE:%d %s", d.Line, d.Message)
}

type Result struct {
	Procedures  []symtab.Procedure
	Variables   []symtab.Variable
	Diagnostics []Diagnostic
	TokenCount  int
	// Lines is the number of end-of-line tokens consumed.
	Lines int
}

// Failed reports whether any diagnostic was raised.
func (r *Result) Failed() bool {
	return len(r.Diagnostics) > 0
}

type Option func(*Parser)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxDiagnostics stops the walk after n diagnostics. Zero means no limit.
func WithMaxDiagnostics(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDiags = n
		}
	}
}

// Parser holds the whole parse state. Every grammar method shares it.
type Parser struct {
	tokens []token.Token
	pos    int
	tok    token.Token

	reg   *symtab.Registry
	scope symtab.Scope
	line  int

	failed   bool
	bad      bool // current statement already has a syntax error
	halted   bool
	maxDiags int
	diags    []Diagnostic

	logger *slog.Logger
}

func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{
		tokens: tokens,
		reg:    symtab.New(),
		scope:  symtab.MainScope,
		line:   1,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse walks tokens once and returns the tables and diagnostics.
func Parse(tokens []token.Token, opts ...Option) *Result {
	return New(tokens, opts...).Parse()
}

func (p *Parser) Parse() *Result {
	p.next()
	p.skipEOLN()
	p.block()
	p.skipEOLN()
	if !p.at(token.EOF) {
		p.syntaxError("expected 'EOF' but found %s", p.tok)
	}

	return &Result{
		Procedures:  p.reg.Procedures(),
		Variables:   p.reg.Variables(),
		Diagnostics: append([]Diagnostic(nil), p.diags...),
		TokenCount:  len(p.tokens),
		Lines:       p.line - 1,
	}
}

// Failed is the sticky failure flag of the run so far.
func (p *Parser) Failed() bool {
	return p.failed
}

// next advances the cursor. The line counter moves when an EOLN is consumed,
// so a diagnostic raised while looking at an EOLN names the line it ends.
func (p *Parser) next() {
	if p.tok.Kind == token.EOLN {
		p.line++
	}
	if p.pos < len(p.tokens) {
		p.tok = p.tokens[p.pos]
		p.pos++
		return
	}
	p.tok = token.Token{Kind: token.EOF}
}

func (p *Parser) peek() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) at(kind token.Kind) bool {
	return p.tok.Kind == kind
}

func (p *Parser) skipEOLN() {
	for p.at(token.EOLN) {
		p.next()
	}
}

func (p *Parser) expect(kind token.Kind) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	p.syntaxError("expected '%s' but found %s", kind, p.tok)
	return false
}

// sync skips the rest of the erroneous line. It stops in front of 'end' and
// end of input so the enclosing block can still close.
func (p *Parser) sync() {
	for !p.at(token.EOLN) && !p.at(token.End) && !p.at(token.EOF) {
		p.next()
	}
	if p.at(token.EOLN) {
		p.next()
	}
	p.bad = false
}

// endStatement closes a declaration or statement: recover if it went bad,
// then drop blank lines.
func (p *Parser) endStatement() {
	if p.bad {
		p.sync()
	}
	p.skipEOLN()
}

// syntaxError reports at most one syntax error per statement.
func (p *Parser) syntaxError(format string, args ...any) {
	if p.bad {
		return
	}
	p.bad = true
	p.report(errors.CodeSyntax, fmt.Sprintf(format, args...))
}

func (p *Parser) semanticError(err error) {
	code, ok := errors.CodeOf(err)
	if !ok {
		code = errors.CodeInternal
	}
	p.report(code, errors.MessageOf(err))
}

func (p *Parser) report(code errors.ErrorCode, msg string) {
	if p.halted {
		return
	}
	d := Diagnostic{Line: p.line, Code: code, Message: msg}
	p.diags = append(p.diags, d)
	p.failed = true
	p.logger.Warn("diagnostic", "line", d.Line, "code", d.Code, "message", d.Message)

	if p.maxDiags > 0 && len(p.diags) >= p.maxDiags {
		p.diags = append(p.diags, Diagnostic{
			Line:    p.line,
			Code:    errors.CodeTooManyErrors,
			Message: fmt.Sprintf("too many errors (%d), giving up", p.maxDiags),
		})
		p.halt()
	}
}

// halt drains the cursor so every grammar method unwinds on EOF.
func (p *Parser) halt() {
	p.halted = true
	p.pos = len(p.tokens)
	p.tok = token.Token{Kind: token.EOF}
}
