// Package types implements the Gone type system: the built-in scalar types and the operator tables that drive
// both the checker's type rules and the IR generator's opcode selection. Operator tables are kept as static
// data per Design Note §9 ("Operator tables as data") so that type checking reduces to two map lookups and an
// equality test.
package types

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Type represents one of the Gone language's built-in types and the operations it supports.
type Type struct {
	Name       string              // Name as it appears in source, e.g. "int".
	Default    interface{}         // Zero value used when a var has no initializer.
	BinaryOps  map[string]string   // Binary operator -> name of the result type.
	UnaryOps   map[string]string   // Unary operator -> name of the result type.
}

// ---------------------
// ----- Constants -----
// ---------------------

// Int, Float, Bool and String are the four built-in scalar types. Error is the sentinel type attached to
// expressions whose type could not be determined, so checking can continue without cascading nil dereferences.
var (
	Int = &Type{
		Name:    "int",
		Default: 0,
		BinaryOps: map[string]string{
			"+": "int", "-": "int", "*": "int", "/": "int",
			"<": "bool", "<=": "bool", ">": "bool", ">=": "bool", "==": "bool", "!=": "bool",
		},
		UnaryOps: map[string]string{"+": "int", "-": "int"},
	}
	Float = &Type{
		Name:    "float",
		Default: 0.0,
		BinaryOps: map[string]string{
			"+": "float", "-": "float", "*": "float", "/": "float",
			"<": "bool", "<=": "bool", ">": "bool", ">=": "bool", "==": "bool", "!=": "bool",
		},
		UnaryOps: map[string]string{"+": "float", "-": "float"},
	}
	Bool = &Type{
		Name:      "bool",
		Default:   false,
		BinaryOps: map[string]string{"==": "bool", "!=": "bool", "&&": "bool", "||": "bool"},
		UnaryOps:  map[string]string{"!": "bool"},
	}
	String = &Type{
		Name:      "string",
		Default:   "",
		BinaryOps: map[string]string{"+": "string"},
		UnaryOps:  map[string]string{},
	}

	// Error is attached to expressions whose type could not be resolved, per spec invariant 2's exception:
	// checking continues so multiple diagnostics can surface in one run.
	Error = &Type{Name: "error"}
)

// Builtins lists the four scalar types in declaration order, used to pre-populate the global symbol table.
var Builtins = []*Type{Int, Float, Bool, String}

// ---------------------
// ----- Functions -----
// ---------------------

// Lookup returns the built-in type named name, if any.
func Lookup(name string) (*Type, bool) {
	for _, t := range Builtins {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// BinaryResult returns the result type name of applying op to two operands of type t, and whether op is
// supported by t at all.
func (t *Type) BinaryResult(op string) (string, bool) {
	if t == nil || t.BinaryOps == nil {
		return "", false
	}
	res, ok := t.BinaryOps[op]
	return res, ok
}

// UnaryResult returns the result type name of applying op to an operand of type t, and whether op is
// supported by t at all.
func (t *Type) UnaryResult(op string) (string, bool) {
	if t == nil || t.UnaryOps == nil {
		return "", false
	}
	res, ok := t.UnaryOps[op]
	return res, ok
}

// IsError reports whether t is the error sentinel type.
func (t *Type) IsError() bool {
	return t == nil || t == Error
}
