package check

import "gone/src/ast"

// Environment is the two-slot local/global scope pair Design Note §9 calls for: Gone functions cannot nest, so
// a full scope stack would be premature generality. Lookup tries Local first, then Global; insertion targets
// Local when it is set, Global otherwise.
type Environment struct {
	Local  *SymbolTable // Non-nil exactly while checking inside a function body.
	Global *SymbolTable
}

// NewGlobalEnvironment returns an Environment with only the global scope active.
func NewGlobalEnvironment() *Environment {
	return &Environment{Global: NewSymbolTable()}
}

// EnterFunction returns a copy of e with a fresh local scope active, for checking one function body.
func (e *Environment) EnterFunction() *Environment {
	return &Environment{Local: NewSymbolTable(), Global: e.Global}
}

// Lookup resolves name against local scope first, then global.
func (e *Environment) Lookup(name string) (*ast.Symbol, bool) {
	if e.Local != nil {
		if sym, ok := e.Local.Lookup(name); ok {
			return sym, true
		}
	}
	return e.Global.Lookup(name)
}

// Insert binds name in the currently active scope: local if one is open, global otherwise. If name is
// already bound there, it returns the existing symbol and ok=false without disturbing the binding.
func (e *Environment) Insert(name string, sym *ast.Symbol) (existing *ast.Symbol, ok bool) {
	if e.Local != nil {
		return e.Local.Insert(name, sym)
	}
	return e.Global.Insert(name, sym)
}

// IsGlobal reports whether the currently active scope for new declarations is the global one.
func (e *Environment) IsGlobal() bool {
	return e.Local == nil
}
