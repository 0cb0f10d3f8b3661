package parser

import (
	"dydcheck/internal/core/errors"
	"dydcheck/internal/engine/token"
)

// executions runs while the current token can open a statement; nested
// blocks and if-branches end at the first token that cannot.
func (p *Parser) executions() {
	for p.tok.Kind.StartsStatement() {
		p.execution()
		p.endStatement()
	}
}

func (p *Parser) execution() {
	switch p.tok.Kind {
	case token.Read, token.Write:
		p.ioStatement()
	case token.If:
		p.ifStatement()
	case token.Ident:
		p.assignment()
	case token.Begin:
		p.block()
	default:
		p.syntaxError("unexpected %s in execution", p.tok)
	}
}

// read_stmt  := 'read' '(' ident ')' ';'
// write_stmt := 'write' '(' ident ')' ';'
func (p *Parser) ioStatement() {
	stmt := p.tok.Kind
	p.next()
	if !p.expect(token.LParen) {
		return
	}
	if !p.at(token.Ident) {
		p.syntaxError("expected identifier in %s statement but found %s", stmt, p.tok)
		return
	}
	p.resolveVariable(p.tok)
	p.next()
	if !p.expect(token.RParen) {
		return
	}
	p.expect(token.Semicolon)
}

// assignment := ident ':=' expr ';'
//
// Inside a function body the function's own name is its return slot and is
// never looked up as a variable.
func (p *Parser) assignment() {
	target := p.tok
	if !p.isReturnSlot(target.Lexeme) {
		p.resolveVariable(target)
	}
	p.next()
	if !p.expect(token.Assign) {
		return
	}
	p.expr()
	p.expect(token.Semicolon)
}

func (p *Parser) isReturnSlot(name string) bool {
	return p.scope.Level > 0 && name == p.scope.Owner
}

// if_stmt := 'if' cond 'then' executions ('else' executions)?
func (p *Parser) ifStatement() {
	p.next()
	p.condition()
	if !p.expect(token.Then) {
		return
	}
	p.skipEOLN()
	p.executions()
	if p.at(token.Else) {
		p.next()
		p.skipEOLN()
		p.executions()
	}
}

func (p *Parser) resolveVariable(tok token.Token) {
	if _, ok := p.reg.LookupVariable(tok.Lexeme, p.scope.Owner); !ok {
		p.semanticError(errors.Newf(errors.CodeUndeclaredVariable,
			"variable '%s' not declared in procedure '%s'", tok.Lexeme, p.scope.Owner))
	}
}
