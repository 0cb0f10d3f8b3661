// Package token defines the token kinds produced by the external tokenizer
// and decodes the one-token-per-line .dyd stream.
package token

import "fmt"

// Kind is the numeric token-kind code used by the tokenizer.
type Kind int

const (
	Begin Kind = iota + 1
	End
	Integer
	If
	Then
	Else
	Function
	Read
	Write
	Ident
	Const
	Eq
	Ne
	Le
	Lt
	Ge
	Gt
	Minus
	Mul
	Assign
	LParen
	RParen
	Semicolon
	EOLN
	EOF
)

// MaxLexemeLen is the longest lexeme kept from an input record.
const MaxLexemeLen = 15

var kindNames = [...]string{
	Begin:     "begin",
	End:       "end",
	Integer:   "integer",
	If:        "if",
	Then:      "then",
	Else:      "else",
	Function:  "function",
	Read:      "read",
	Write:     "write",
	Ident:     "ident",
	Const:     "const",
	Eq:        "=",
	Ne:        "<>",
	Le:        "<=",
	Lt:        "<",
	Ge:        ">=",
	Gt:        ">",
	Minus:     "-",
	Mul:       "*",
	Assign:    ":=",
	LParen:    "(",
	RParen:    ")",
	Semicolon: ";",
	EOLN:      "EOLN",
	EOF:       "EOF",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	return k >= Begin && k <= EOF
}

// StartsStatement reports whether k can open an execution statement.
func (k Kind) StartsStatement() bool {
	switch k {
	case Read, Write, If, Ident, Begin:
		return true
	default:
		return false
	}
}

// IsRelOp reports whether k is one of the six relational operators.
func (k Kind) IsRelOp() bool {
	return k >= Eq && k <= Gt
}

type Token struct {
	Kind   Kind
	Lexeme string
	// Truncated is set when the source lexeme was longer than MaxLexemeLen.
	Truncated bool
}

// String renders the token for syntax diagnostics: identifiers and constants
// show their lexeme, everything else its kind name.
func (t Token) String() string {
	switch t.Kind {
	case Ident, Const:
		if t.Lexeme != "" {
			return fmt.Sprintf("%s '%s'", t.Kind, t.Lexeme)
		}
	}
	return "'" + t.Kind.String() + "'"
}
