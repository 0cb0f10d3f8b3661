package parser

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"dydcheck/internal/core/errors"
	"dydcheck/internal/engine/symtab"
	"dydcheck/internal/engine/token"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var symbols = map[string]token.Kind{
	"=": token.Eq, "<>": token.Ne, "<=": token.Le, "<": token.Lt, ">=": token.Ge, ">": token.Gt,
	"-": token.Minus, "*": token.Mul, ":=": token.Assign, "(": token.LParen, ")": token.RParen, ";": token.Semicolon,
}

var keywords = map[string]token.Kind{
	"begin": token.Begin, "end": token.End, "integer": token.Integer, "if": token.If, "then": token.Then,
	"else": token.Else, "function": token.Function, "read": token.Read, "write": token.Write,
}

// lex is a minimal tokenizer for test programs: one EOLN per source line and
// a trailing EOF.
func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	var out []token.Token
	for _, line := range strings.Split(strings.Trim(src, "\n"), "\n") {
		for i := 0; i < len(line); {
			c := line[i]
			switch {
			case c == ' ' || c == '\t':
				i++
			case isAlnum(c):
				j := i
				for j < len(line) && (isAlnum(line[j]) || line[j] == '_') {
					j++
				}
				out = append(out, word(line[i:j]))
				i = j
			default:
				if i+1 < len(line) {
					if k, ok := symbols[line[i:i+2]]; ok {
						out = append(out, token.Token{Kind: k, Lexeme: line[i : i+2]})
						i += 2
						continue
					}
				}
				k, ok := symbols[line[i:i+1]]
				if !ok {
					t.Fatalf("test lexer: unexpected character %q", c)
				}
				out = append(out, token.Token{Kind: k, Lexeme: line[i : i+1]})
				i++
			}
		}
		out = append(out, token.Token{Kind: token.EOLN, Lexeme: "EOLN"})
	}
	return append(out, token.Token{Kind: token.EOF, Lexeme: "EOF"})
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func word(w string) token.Token {
	if k, ok := keywords[w]; ok {
		return token.Token{Kind: k, Lexeme: w}
	}
	if w[0] >= '0' && w[0] <= '9' {
		return token.Token{Kind: token.Const, Lexeme: w}
	}
	tok := token.Token{Kind: token.Ident, Lexeme: w}
	if len(w) > token.MaxLexemeLen {
		tok.Lexeme = w[:token.MaxLexemeLen]
		tok.Truncated = true
	}
	return tok
}

func parse(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	res := Parse(lex(t, src), opts...)
	checkInvariants(t, res)
	return res
}

// checkInvariants asserts table uniqueness, gap-free addresses and closed
// procedure ranges for every parse in this file.
func checkInvariants(t *testing.T, res *Result) {
	t.Helper()
	seen := make(map[[2]string]bool)
	for i, v := range res.Variables {
		key := [2]string{v.Name, v.Owner}
		if seen[key] {
			t.Errorf("variable %s/%s registered twice", v.Name, v.Owner)
		}
		seen[key] = true
		if v.Address != i {
			t.Errorf("variable %s at row %d has address %d", v.Name, i, v.Address)
		}
	}
	procs := make(map[string]bool)
	for _, p := range res.Procedures {
		if procs[p.Name] {
			t.Errorf("procedure %s registered twice", p.Name)
		}
		procs[p.Name] = true
		if p.LastAddress < p.FirstAddress {
			t.Errorf("procedure %s left with range [%d,%d]", p.Name, p.FirstAddress, p.LastAddress)
		}
	}
}

func messages(res *Result) []string {
	out := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

func TestScenario_ReadWriteDeclared(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	read(x);
	write(x);
end
`)
	assert.False(t, res.Failed())
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Procedures)
	want := []symtab.Variable{
		{Name: "x", Owner: "main", Kind: symtab.KindVariable, Type: symtab.TypeInt, Level: 0, Address: 0},
	}
	if diff := deep.Equal(res.Variables, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestScenario_ParameterConfirmedAndReturnSlot(t *testing.T) {
	res := parse(t, `
begin
	integer function f(n);
	begin
		integer n;
		f := n;
	end
end
`)
	require.Empty(t, messages(res))

	wantProcs := []symtab.Procedure{
		{Name: "f", Type: symtab.TypeFunction, Level: 1, FirstAddress: 0, LastAddress: 0},
	}
	if diff := deep.Equal(res.Procedures, wantProcs); diff != nil {
		t.Fatal(diff)
	}
	wantVars := []symtab.Variable{
		{Name: "n", Owner: "f", Kind: symtab.KindParameter, Type: symtab.TypeInt, Level: 1, Address: 0},
	}
	if diff := deep.Equal(res.Variables, wantVars); diff != nil {
		t.Fatal(diff)
	}
}

func TestScenario_UndeclaredWrite(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	write(y);
end
`)
	assert.Equal(t, []string{"LINE:3 variable 'y' not declared in procedure 'main'"}, messages(res))
	assert.Equal(t, errors.CodeUndeclaredVariable, res.Diagnostics[0].Code)
	require.Len(t, res.Variables, 1)
	assert.Equal(t, "x", res.Variables[0].Name)
}

func TestScenario_DuplicateVariable(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	integer x;
	read(x);
end
`)
	assert.Equal(t, []string{"LINE:3 variable 'x' already declared in procedure 'main'"}, messages(res))
	assert.Equal(t, errors.CodeDuplicate, res.Diagnostics[0].Code)
	assert.Len(t, res.Variables, 1)
}

func TestScenario_UndeclaredCall(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	x := g(1);
end
`)
	assert.Equal(t, []string{"LINE:3 procedure 'g' not declared"}, messages(res))
	assert.Equal(t, errors.CodeUndeclaredProcedure, res.Diagnostics[0].Code)
	assert.Empty(t, res.Procedures)
	assert.Len(t, res.Variables, 1)
}

func TestRecursiveCallResolves(t *testing.T) {
	res := parse(t, `
begin
	integer k;
	integer function F(n);
	begin
		integer n;
		if n <= 0 then F := 1;
		else F := n * F(n - 1);
	end
	integer m;
	read(m);
	k := F(m);
	write(k);
end
`)
	require.Empty(t, messages(res))

	wantProcs := []symtab.Procedure{
		{Name: "F", Type: symtab.TypeFunction, Level: 1, FirstAddress: 1, LastAddress: 1},
	}
	if diff := deep.Equal(res.Procedures, wantProcs); diff != nil {
		t.Fatal(diff)
	}
	wantVars := []symtab.Variable{
		{Name: "k", Owner: "main", Kind: symtab.KindVariable, Type: symtab.TypeInt, Level: 0, Address: 0},
		{Name: "n", Owner: "F", Kind: symtab.KindParameter, Type: symtab.TypeInt, Level: 1, Address: 1},
		{Name: "m", Owner: "main", Kind: symtab.KindVariable, Type: symtab.TypeInt, Level: 0, Address: 2},
	}
	if diff := deep.Equal(res.Variables, wantVars); diff != nil {
		t.Fatal(diff)
	}
}

func TestParameterTypeStaysUnknownWithoutDeclaration(t *testing.T) {
	res := parse(t, `
begin
	integer function g(a);
	begin
		g := a;
	end
end
`)
	require.Empty(t, messages(res))
	require.Len(t, res.Variables, 1)
	assert.Equal(t, symtab.TypeUnknown, res.Variables[0].Type)
	assert.Equal(t, symtab.KindParameter, res.Variables[0].Kind)
}

func TestNestedFunctions(t *testing.T) {
	res := parse(t, `
begin
	integer function outer(a);
	begin
		integer a;
		integer function inner(b);
		begin
			integer b;
			inner := b;
		end
		outer := inner(a);
	end
	integer z;
	z := outer(1);
end
`)
	require.Empty(t, messages(res))

	wantProcs := []symtab.Procedure{
		{Name: "outer", Type: symtab.TypeFunction, Level: 1, FirstAddress: 0, LastAddress: 1},
		{Name: "inner", Type: symtab.TypeFunction, Level: 2, FirstAddress: 1, LastAddress: 1},
	}
	if diff := deep.Equal(res.Procedures, wantProcs); diff != nil {
		t.Fatal(diff)
	}
	wantVars := []symtab.Variable{
		{Name: "a", Owner: "outer", Kind: symtab.KindParameter, Type: symtab.TypeInt, Level: 1, Address: 0},
		{Name: "b", Owner: "inner", Kind: symtab.KindParameter, Type: symtab.TypeInt, Level: 2, Address: 1},
		{Name: "z", Owner: "main", Kind: symtab.KindVariable, Type: symtab.TypeInt, Level: 0, Address: 2},
	}
	if diff := deep.Equal(res.Variables, wantVars); diff != nil {
		t.Fatal(diff)
	}
}

func TestVariablesAreNotVisibleAcrossProcedures(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	integer function f(n);
	begin
		integer n;
		f := x;
	end
end
`)
	assert.Equal(t, []string{"LINE:6 variable 'x' not declared in procedure 'f'"}, messages(res))
}

func TestProcedureWithoutVariablesHasClosedRange(t *testing.T) {
	res := parse(t, `
begin
	integer function h();
	begin
		h := 1;
	end
	integer x;
end
`)
	require.Empty(t, messages(res))
	require.Len(t, res.Procedures, 1)
	assert.Equal(t, 0, res.Procedures[0].FirstAddress)
	assert.Equal(t, 0, res.Procedures[0].LastAddress)
	require.Len(t, res.Variables, 1)
	assert.Equal(t, "main", res.Variables[0].Owner)
}

func TestReturnSlotOnlyInsideFunctions(t *testing.T) {
	res := parse(t, `
begin
	main := 1;
end
`)
	assert.Equal(t, []string{"LINE:2 variable 'main' not declared in procedure 'main'"}, messages(res))
}

func TestDuplicateProcedureKeepsFirstRange(t *testing.T) {
	res := parse(t, `
begin
	integer function f();
	begin
		f := 1;
	end
	integer function f(a);
	begin
		integer a;
		f := a;
	end
end
`)
	assert.Equal(t, []string{"LINE:6 procedure 'f' already declared"}, messages(res))
	wantProcs := []symtab.Procedure{
		{Name: "f", Type: symtab.TypeFunction, Level: 1, FirstAddress: 0, LastAddress: 0},
	}
	if diff := deep.Equal(res.Procedures, wantProcs); diff != nil {
		t.Fatal(diff)
	}
}

func TestMissingSemicolonDoesNotCascade(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	x := 1
	read(x);
	write(q);
end
`)
	assert.Equal(t, []string{
		"LINE:3 expected ';' but found 'EOLN'",
		"LINE:5 variable 'q' not declared in procedure 'main'",
	}, messages(res))
	assert.Equal(t, errors.CodeSyntax, res.Diagnostics[0].Code)
}

func TestHeaderErrorRestoresScope(t *testing.T) {
	res := parse(t, `
begin
	integer function f(n;
	integer x;
	read(x);
end
`)
	assert.Equal(t, []string{"LINE:2 expected ')' but found ';'"}, messages(res))

	wantProcs := []symtab.Procedure{
		{Name: "f", Type: symtab.TypeFunction, Level: 1, FirstAddress: 0, LastAddress: 0},
	}
	if diff := deep.Equal(res.Procedures, wantProcs); diff != nil {
		t.Fatal(diff)
	}
	require.Len(t, res.Variables, 2)
	assert.Equal(t, symtab.Variable{Name: "x", Owner: "main", Kind: symtab.KindVariable, Type: symtab.TypeInt, Level: 0, Address: 1}, res.Variables[1])
}

func TestStrayTokenInBlock(t *testing.T) {
	res := parse(t, `
begin
	integer x;
	read(x);
	integer y;
	write(x);
end
`)
	assert.Equal(t, []string{"LINE:4 unexpected 'integer' in block"}, messages(res))
	assert.Len(t, res.Variables, 1)
}

func TestTrailingTokensAfterProgram(t *testing.T) {
	res := parse(t, `
begin
	integer x;
end
x := 1;
`)
	assert.Equal(t, []string{"LINE:4 expected 'EOF' but found ident 'x'"}, messages(res))
}

func TestMissingBegin(t *testing.T) {
	res := parse(t, `
integer x;
end
`)
	assert.Equal(t, []string{"LINE:1 expected 'begin' but found 'integer'"}, messages(res))
	assert.Empty(t, res.Variables)
}

func TestIfElseBranches(t *testing.T) {
	res := parse(t, `
begin
	integer a;
	integer b;
	read(a);
	if a <> 0 then
		b := a * 2 - 1;
		write(b);
	else
		b := (a - 1) * a;
	write(a);
end
`)
	assert.Empty(t, messages(res))
	assert.Len(t, res.Variables, 2)
}

func TestMissingRelationalOperator(t *testing.T) {
	res := parse(t, `
begin
	integer a;
	if a then a := 1;
	write(a);
end
`)
	assert.Equal(t, []string{"LINE:3 expected relational operator but found 'then'"}, messages(res))
}

func TestTruncatedIdentifier(t *testing.T) {
	res := parse(t, `
begin
	integer abcdefghijklmnopq;
end
`)
	assert.Equal(t, []string{"LINE:2 identifier 'abcdefghijklmno' truncated to 15 characters"}, messages(res))
	assert.Equal(t, errors.CodeTruncatedName, res.Diagnostics[0].Code)
	require.Len(t, res.Variables, 1)
	assert.Equal(t, "abcdefghijklmno", res.Variables[0].Name)
}

func TestMaxDiagnostics(t *testing.T) {
	res := parse(t, `
begin
	write(a);
	write(b);
	write(c);
	write(d);
end
`, WithMaxDiagnostics(2))
	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, errors.CodeTooManyErrors, res.Diagnostics[2].Code)
	assert.Equal(t, "LINE:3 too many errors (2), giving up", res.Diagnostics[2].String())
}

func TestLineCounting(t *testing.T) {
	res := parse(t, `
begin

	integer x;


	write(y);
end
`)
	assert.Equal(t, []string{"LINE:6 variable 'y' not declared in procedure 'main'"}, messages(res))
	assert.Equal(t, 7, res.Lines)
}

func TestStreamWithoutEOFToken(t *testing.T) {
	tokens := lex(t, "begin\nend")
	tokens = tokens[:len(tokens)-1]
	res := Parse(tokens, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, len(tokens), res.TokenCount)
}
