// Package check implements semantic analysis: name resolution, typing and the control-flow rules that decide
// whether a function may fall off its end without returning. Checking walks the AST built by the frontend
// package and annotates it in place with resolved types, symbols and is_global flags, exactly as
// original_source/gone/checker.py's visitor describes, adapted here to an explicit type-switch traversal
// (Design Note §9) instead of Python's dynamic visit_* dispatch.
package check

import (
	"fmt"

	"gone/src/ast"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// SymbolTable maps identifiers to the declaration that introduced them. Insertion fails if the name is
// already bound, mirroring the source's simple dictionary-backed table.
type SymbolTable struct {
	entries map[string]*ast.Symbol
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]*ast.Symbol)}
}

// Insert binds name to sym. If name is already bound in this table, Insert leaves the existing binding in
// place and returns it alongside ok=false, so the caller can report the redeclaration against the prior
// declaration's line instead of the new one.
func (t *SymbolTable) Insert(name string, sym *ast.Symbol) (existing *ast.Symbol, ok bool) {
	if prev, exists := t.entries[name]; exists {
		return prev, false
	}
	t.entries[name] = sym
	return nil, true
}

// Lookup returns the symbol bound to name in this table alone.
func (t *SymbolTable) Lookup(name string) (*ast.Symbol, bool) {
	sym, ok := t.entries[name]
	return sym, ok
}

// String implements fmt.Stringer for debugging.
func (t *SymbolTable) String() string {
	return fmt.Sprintf("SymbolTable{%d entries}", len(t.entries))
}
