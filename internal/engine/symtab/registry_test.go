package symtab

import (
	"fmt"
	"testing"

	"dydcheck/internal/core/errors"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{"x", "main", "a1", "Long_name_1", "abcdefghijklmno"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "1x", "_x", "x-y", "x y", "abcdefghijklmnop"}
	for _, name := range invalid {
		err := ValidateName(name)
		require.Error(t, err, name)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidName), name)
	}
}

func TestDeclareVariable_AssignsGlobalAddresses(t *testing.T) {
	r := New()
	f := MainScope.Enter("f")

	require.NoError(t, r.DeclareVariable(MainScope, "x", TypeInt, KindVariable))
	require.NoError(t, r.DeclareVariable(f, "n", TypeUnknown, KindParameter))
	require.NoError(t, r.DeclareVariable(f, "x", TypeInt, KindVariable))
	require.NoError(t, r.DeclareVariable(MainScope, "y", TypeInt, KindVariable))

	want := []Variable{
		{Name: "x", Owner: "main", Kind: KindVariable, Type: TypeInt, Level: 0, Address: 0},
		{Name: "n", Owner: "f", Kind: KindParameter, Type: TypeUnknown, Level: 1, Address: 1},
		{Name: "x", Owner: "f", Kind: KindVariable, Type: TypeInt, Level: 1, Address: 2},
		{Name: "y", Owner: "main", Kind: KindVariable, Type: TypeInt, Level: 0, Address: 3},
	}
	if diff := deep.Equal(r.Variables(), want); diff != nil {
		t.Fatal(diff)
	}
	assert.Equal(t, 4, r.NextAddress())
}

func TestDeclareVariable_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.DeclareVariable(MainScope, "x", TypeInt, KindVariable))

	err := r.DeclareVariable(MainScope, "x", TypeInt, KindVariable)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDuplicate))
	assert.Equal(t, "variable 'x' already declared in procedure 'main'", errors.MessageOf(err))
	assert.Len(t, r.Variables(), 1)
}

func TestDeclareVariable_ParameterConfirmation(t *testing.T) {
	r := New()
	f := MainScope.Enter("f")
	require.NoError(t, r.DeclareVariable(f, "n", TypeUnknown, KindParameter))
	require.NoError(t, r.DeclareVariable(f, "n", TypeInt, KindVariable))

	vars := r.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, TypeInt, vars[0].Type)
	assert.Equal(t, KindParameter, vars[0].Kind)
	assert.Equal(t, 0, vars[0].Address)

	// A second parameter with the same name is still a duplicate.
	err := r.DeclareVariable(f, "n", TypeUnknown, KindParameter)
	assert.True(t, errors.IsCode(err, errors.CodeDuplicate))
}

func TestDeclareVariable_InvalidName(t *testing.T) {
	r := New()
	err := r.DeclareVariable(MainScope, "9lives", TypeInt, KindVariable)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidName))
	assert.Empty(t, r.Variables())
	assert.Equal(t, 0, r.NextAddress())
}

func TestProcedures(t *testing.T) {
	r := New()
	require.NoError(t, r.DeclareProcedure(MainScope.Enter("f"), "f", 0, OpenAddress))

	p, ok := r.LookupProcedure("f")
	require.True(t, ok)
	assert.True(t, p.Open())
	assert.Equal(t, TypeFunction, p.Type)
	assert.Equal(t, 1, p.Level)

	err := r.DeclareProcedure(MainScope.Enter("f"), "f", 3, OpenAddress)
	assert.True(t, errors.IsCode(err, errors.CodeDuplicate))
	assert.Equal(t, "procedure 'f' already declared", errors.MessageOf(err))

	err = r.DeclareProcedure(MainScope, "2f", 0, OpenAddress)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidName))

	require.NoError(t, r.FinalizeProcedure("f", 0, 2))
	p, _ = r.LookupProcedure("f")
	assert.False(t, p.Open())
	assert.Equal(t, 2, p.LastAddress)

	err = r.FinalizeProcedure("g", 0, 0)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))

	_, ok = r.LookupProcedure("g")
	assert.False(t, ok)
}

func TestLookupVariable_NoScopeChain(t *testing.T) {
	r := New()
	require.NoError(t, r.DeclareVariable(MainScope, "x", TypeInt, KindVariable))

	_, ok := r.LookupVariable("x", "f")
	assert.False(t, ok, "lookups must not fall back to the enclosing procedure")

	v, ok := r.LookupVariable("x", MainProcedure)
	require.True(t, ok)
	assert.Equal(t, 0, v.Address)
}

func TestAddressesStableAcrossGrowth(t *testing.T) {
	r := New()
	for i := 0; i < 1000; i++ {
		require.NoError(t, r.DeclareVariable(MainScope, fmt.Sprintf("v%d", i), TypeInt, KindVariable))
	}
	for i, v := range r.Variables() {
		if v.Address != i {
			t.Fatalf("row %d has address %d", i, v.Address)
		}
	}
	v, ok := r.LookupVariable("v0", MainProcedure)
	require.True(t, ok)
	assert.Equal(t, 0, v.Address)
}

func TestTypeAndKindStrings(t *testing.T) {
	assert.Equal(t, "integer", TypeInt.String())
	assert.Equal(t, "function", TypeFunction.String())
	assert.Equal(t, "unknown", TypeUnknown.String())
	assert.Equal(t, "parameter", KindParameter.String())
	assert.Equal(t, "variable", KindVariable.String())
}
