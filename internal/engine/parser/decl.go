package parser

import (
	"fmt"

	"dydcheck/internal/core/errors"
	"dydcheck/internal/engine/symtab"
	"dydcheck/internal/engine/token"
)

// block := 'begin' EOLN declarations executions 'end'
func (p *Parser) block() {
	if !p.expect(token.Begin) {
		return
	}
	p.skipEOLN()
	p.declarations()
	p.executions()

	// Anything else before 'end' is reported and its line dropped.
	for !p.at(token.End) && !p.at(token.EOF) {
		p.syntaxError("unexpected %s in block", p.tok)
		p.sync()
		p.skipEOLN()
		p.executions()
	}

	if !p.expect(token.End) {
		return
	}
	p.skipEOLN()
}

func (p *Parser) declarations() {
	for p.at(token.Integer) {
		p.declaration()
		p.endStatement()
	}
}

func (p *Parser) declaration() {
	switch la := p.peek(); la.Kind {
	case token.Function:
		p.funcDeclaration()
	case token.Ident:
		p.varDeclaration()
	default:
		p.next()
		p.syntaxError("expected variable or function declaration but found %s", la)
	}
}

// var_decl := 'integer' ident ';'
func (p *Parser) varDeclaration() {
	p.next()
	if !p.at(token.Ident) {
		p.syntaxError("expected identifier but found %s", p.tok)
		return
	}
	p.declareVariable(p.tok, symtab.TypeInt, symtab.KindVariable)
	p.next()
	p.expect(token.Semicolon)
}

// func_decl := 'integer' 'function' ident '(' parameter? ')' ';' block
//
// The procedure is registered before its parameter and body so that calls to
// itself resolve. Its variable range is closed once the body is done.
func (p *Parser) funcDeclaration() {
	p.next()
	p.next()
	if !p.at(token.Ident) {
		p.syntaxError("expected function name but found %s", p.tok)
		return
	}
	nameTok := p.tok
	name := nameTok.Lexeme
	first := p.reg.NextAddress()
	p.next()
	if !p.expect(token.LParen) {
		return
	}

	outer := p.scope
	p.scope = outer.Enter(name)
	defer func() {
		p.scope = outer
		p.logger.Debug("leave procedure", "name", name, "line", p.line)
	}()
	p.logger.Debug("enter procedure", "name", name, "level", p.scope.Level, "line", p.line)

	if p.declareProcedure(nameTok, first) {
		defer p.closeProcedure(name, first)
	}
	p.parameter()

	if !p.expect(token.RParen) || !p.expect(token.Semicolon) {
		return
	}
	p.skipEOLN()
	p.block()
}

// closeProcedure fixes the procedure's variable range once its declaration
// is over, including when the header failed to parse.
func (p *Parser) closeProcedure(name string, first int) {
	last := p.reg.NextAddress() - 1
	if last < first {
		// No rows of its own: keep the range closed rather than open.
		last = first
	}
	if err := p.reg.FinalizeProcedure(name, first, last); err != nil {
		p.semanticError(err)
	}
}

// parameter := ident?
func (p *Parser) parameter() {
	if !p.at(token.Ident) {
		return
	}
	p.declareVariable(p.tok, symtab.TypeUnknown, symtab.KindParameter)
	p.next()
}

func (p *Parser) declareVariable(tok token.Token, typ symtab.Type, kind symtab.Kind) {
	p.checkTruncated(tok)
	if err := p.reg.DeclareVariable(p.scope, tok.Lexeme, typ, kind); err != nil {
		p.semanticError(err)
	}
}

func (p *Parser) declareProcedure(tok token.Token, first int) bool {
	p.checkTruncated(tok)
	if err := p.reg.DeclareProcedure(p.scope, tok.Lexeme, first, symtab.OpenAddress); err != nil {
		p.semanticError(err)
		return false
	}
	return true
}

func (p *Parser) checkTruncated(tok token.Token) {
	if tok.Truncated {
		p.report(errors.CodeTruncatedName,
			fmt.Sprintf("identifier '%s' truncated to %d characters", tok.Lexeme, token.MaxLexemeLen))
	}
}
