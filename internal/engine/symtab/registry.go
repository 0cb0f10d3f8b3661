// Package symtab holds the variable and procedure tables built while a
// program is walked.
package symtab

import (
	"dydcheck/internal/core/errors"

	"github.com/elliotchance/orderedmap/v2"
)

// Registry owns the two tables. Entries are only ever appended; an entry's
// address never changes once assigned.
type Registry struct {
	variables  *orderedmap.OrderedMap[variableKey, *Variable]
	procedures *orderedmap.OrderedMap[string, *Procedure]
}

func New() *Registry {
	return &Registry{
		variables:  orderedmap.NewOrderedMap[variableKey, *Variable](),
		procedures: orderedmap.NewOrderedMap[string, *Procedure](),
	}
}

// ValidateName checks identifier spelling: an ASCII letter followed by
// letters, digits or underscores, at most MaxNameLen bytes.
func ValidateName(name string) error {
	if name == "" || !isLetter(name[0]) {
		return errors.Newf(errors.CodeInvalidName, "invalid identifier '%s'", name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return errors.Newf(errors.CodeInvalidName, "invalid identifier '%s'", name)
		}
	}
	if len(name) > MaxNameLen {
		return errors.Newf(errors.CodeInvalidName, "identifier '%s' longer than %d characters", name, MaxNameLen)
	}
	return nil
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

// DeclareVariable registers name in scope.Owner. Re-declaring a parameter as a
// plain variable confirms the parameter's type instead of inserting a row;
// any other collision is a DUPLICATE error.
func (r *Registry) DeclareVariable(scope Scope, name string, typ Type, kind Kind) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	key := variableKey{name: name, owner: scope.Owner}
	if existing, ok := r.variables.Get(key); ok {
		if existing.Kind == KindParameter && kind == KindVariable {
			existing.Type = typ
			return nil
		}
		return errors.Newf(errors.CodeDuplicate, "variable '%s' already declared in procedure '%s'", name, scope.Owner)
	}

	r.variables.Set(key, &Variable{
		Name:    name,
		Owner:   scope.Owner,
		Kind:    kind,
		Type:    typ,
		Level:   scope.Level,
		Address: r.variables.Len(),
	})
	return nil
}

// DeclareProcedure registers a procedure stub. Names are global.
func (r *Registry) DeclareProcedure(scope Scope, name string, first, last int) error {
	if err := ValidateName(name); err != nil {
		return errors.Newf(errors.CodeInvalidName, "invalid procedure name '%s'", name)
	}
	if _, ok := r.procedures.Get(name); ok {
		return errors.Newf(errors.CodeDuplicate, "procedure '%s' already declared", name)
	}

	r.procedures.Set(name, &Procedure{
		Name:         name,
		Type:         TypeFunction,
		Level:        scope.Level,
		FirstAddress: first,
		LastAddress:  last,
	})
	return nil
}

// FinalizeProcedure overwrites the address bounds of a registered procedure.
func (r *Registry) FinalizeProcedure(name string, first, last int) error {
	proc, ok := r.procedures.Get(name)
	if !ok {
		return errors.Newf(errors.CodeInternal, "internal error: procedure '%s' not found for update", name)
	}
	proc.FirstAddress = first
	proc.LastAddress = last
	return nil
}

func (r *Registry) LookupVariable(name, owner string) (Variable, bool) {
	v, ok := r.variables.Get(variableKey{name: name, owner: owner})
	if !ok {
		return Variable{}, false
	}
	return *v, true
}

func (r *Registry) LookupProcedure(name string) (Procedure, bool) {
	p, ok := r.procedures.Get(name)
	if !ok {
		return Procedure{}, false
	}
	return *p, true
}

// NextAddress is the address the next inserted variable will receive.
func (r *Registry) NextAddress() int {
	return r.variables.Len()
}

// Variables returns a copy of the variable table in insertion order.
func (r *Registry) Variables() []Variable {
	out := make([]Variable, 0, r.variables.Len())
	for el := r.variables.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value)
	}
	return out
}

// Procedures returns a copy of the procedure table in insertion order.
func (r *Registry) Procedures() []Procedure {
	out := make([]Procedure, 0, r.procedures.Len())
	for el := r.procedures.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value)
	}
	return out
}
