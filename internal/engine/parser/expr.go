package parser

import (
	"dydcheck/internal/core/errors"
	"dydcheck/internal/engine/token"
)

// cond := expr relop expr
func (p *Parser) condition() {
	p.expr()
	if !p.tok.Kind.IsRelOp() {
		p.syntaxError("expected relational operator but found %s", p.tok)
		return
	}
	p.next()
	p.expr()
}

// expr := term ('-' term)*
func (p *Parser) expr() {
	p.term()
	for p.at(token.Minus) {
		p.next()
		p.term()
	}
}

// term := factor ('*' factor)*
func (p *Parser) term() {
	p.factor()
	for p.at(token.Mul) {
		p.next()
		p.factor()
	}
}

// factor := ident | ident '(' expr ')' | const | '(' expr ')'
func (p *Parser) factor() {
	switch p.tok.Kind {
	case token.Ident:
		if p.peek().Kind == token.LParen {
			p.call()
			return
		}
		p.resolveVariable(p.tok)
		p.next()
	case token.Const:
		p.next()
	case token.LParen:
		p.next()
		p.expr()
		p.expect(token.RParen)
	default:
		p.syntaxError("unexpected %s in factor", p.tok)
	}
}

// call := ident '(' expr ')'; the callee must already be registered, which
// includes the procedure whose body is being walked.
func (p *Parser) call() {
	name := p.tok.Lexeme
	if _, ok := p.reg.LookupProcedure(name); !ok {
		p.semanticError(errors.Newf(errors.CodeUndeclaredProcedure, "procedure '%s' not declared", name))
	}
	p.next()
	p.next()
	p.expr()
	p.expect(token.RParen)
}
