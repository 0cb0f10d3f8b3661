package symtab

// MainProcedure owns every top-level declaration.
const MainProcedure = "main"

// MaxNameLen is the longest legal identifier.
const MaxNameLen = 15

// OpenAddress marks a procedure whose body has not finished parsing.
const OpenAddress = -1

type Type int

const (
	TypeInt Type = iota
	TypeFunction
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

type Kind int

const (
	KindVariable Kind = iota
	KindParameter
)

func (k Kind) String() string {
	if k == KindParameter {
		return "parameter"
	}
	return "variable"
}

// Scope identifies where a declaration happens: the owning procedure and the
// procedure nesting depth.
type Scope struct {
	Owner string
	Level int
}

// MainScope is the scope of the outermost block.
var MainScope = Scope{Owner: MainProcedure, Level: 0}

// Enter returns the scope of a procedure declared inside s.
func (s Scope) Enter(procedure string) Scope {
	return Scope{Owner: procedure, Level: s.Level + 1}
}

type Variable struct {
	Name    string
	Owner   string
	Kind    Kind
	Type    Type
	Level   int
	Address int
}

type Procedure struct {
	Name         string
	Type         Type
	Level        int
	FirstAddress int
	LastAddress  int
}

// Open reports whether the procedure body is still being parsed.
func (p Procedure) Open() bool {
	return p.LastAddress == OpenAddress
}

type variableKey struct {
	name  string
	owner string
}
