// Package ast defines the syntax tree produced by the parser. Each grammar rule in spec.md gets its own Go
// struct rather than the teacher's single generic Typ+Data+Children node: Design Note §9 asks explicitly for
// "exhaustive pattern matching over tagged variants" in place of the source language's dynamic dispatch, and a
// tagged variant is most naturally a family of concrete types behind a small interface in Go. Every node still
// carries its source line the way the teacher's ir.Node does, and expressions still carry mutable Type and
// Location fields the checker and IR generator fill in later, mirroring ir.Node's Data/Entry upward annotation.
package ast

import "gone/src/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Node is implemented by every syntax tree node.
type Node interface {
	Line() int
}

// base carries the source line shared by every node kind.
type base struct {
	L int
}

// Line returns the source line this node was parsed from.
func (b base) Line() int { return b.L }

// Expr is implemented by every expression node. After checking, GetType never returns nil; after IR
// generation, GetLocation never returns the empty string.
type Expr interface {
	Node
	GetType() *types.Type
	SetType(*types.Type)
	GetLocation() string
	SetLocation(string)
}

// exprInfo is embedded by every Expr implementation to supply the upward-annotated Type and Location fields
// without repeating the same four methods on every node kind.
type exprInfo struct {
	Typ *types.Type
	Loc string
}

func (e *exprInfo) GetType() *types.Type   { return e.Typ }
func (e *exprInfo) SetType(t *types.Type)  { e.Typ = t }
func (e *exprInfo) GetLocation() string    { return e.Loc }
func (e *exprInfo) SetLocation(l string)   { e.Loc = l }

// Symbol is what a symbol table maps an identifier to: the declaration node that introduced it, together with
// its resolved type for quick access. Decl is nil for the four built-in type symbols.
type Symbol struct {
	Name string
	Decl Node
	Type *types.Type
}

// ----------------------------------
// ----- Program and statements -----
// ----------------------------------

// Program is the root of every syntax tree: a list of top-level declarations and statements.
type Program struct {
	base
	Decls []Node
}

// Statements is an ordered list of statements making up a block body.
type Statements struct {
	base
	List []Node
}

// ConstDecl declares a named, typed constant initialized from an expression.
type ConstDecl struct {
	base
	Name     string
	Expr     Expr
	IsGlobal bool
	Symbol   *Symbol
}

// VarDecl declares a named, typed variable with an optional initializer.
type VarDecl struct {
	base
	Name     string
	Typename *Typename
	Expr     Expr // nil if no initializer was given; the checker synthesizes a default-value Literal.
	IsGlobal bool
	Symbol   *Symbol
}

// ParamDecl declares one formal parameter of a function.
type ParamDecl struct {
	base
	Name     string
	Typename *Typename
	Symbol   *Symbol
}

// FuncPrototype names a function, its parameters and its return type. Used both standalone (extern) and as
// part of a full FuncDecl.
type FuncPrototype struct {
	base
	Name     string
	Params   []*ParamDecl
	Typename *Typename
	Symbol   *Symbol
}

// ExternFuncDecl declares an externally defined function with no body.
type ExternFuncDecl struct {
	base
	Prototype *FuncPrototype
}

// FuncDecl declares a function with a body.
type FuncDecl struct {
	base
	Prototype *FuncPrototype
	Body      *Statements
}

// Print evaluates and prints an expression.
type Print struct {
	base
	Expr Expr
}

// Assign stores the value of Expr into Target.
type Assign struct {
	base
	Target *StoreVar
	Expr   Expr
}

// If is a conditional statement with no else branch.
type If struct {
	base
	Cond Expr
	Then *Statements
}

// IfElse is a conditional statement with both branches.
type IfElse struct {
	base
	Cond     Expr
	Then     *Statements
	Otherwise *Statements
}

// While is a pre-tested loop.
type While struct {
	base
	Cond Expr
	Body *Statements
}

// Return returns from the enclosing function, optionally carrying a value.
type Return struct {
	base
	Expr Expr // nil for a bare "return;" inside a void context (only __init is void).
}

// -----------------------
// ----- Expressions -----
// -----------------------

// Literal is a constant value known at parse time: an int, float64, bool or string.
type Literal struct {
	base
	exprInfo
	Value interface{}
}

// Binary is an arithmetic or string-concatenation binary expression.
type Binary struct {
	base
	exprInfo
	Op          string
	Left, Right Expr
}

// Bool is a relational or logical binary expression; its result type is always bool.
type Bool struct {
	base
	exprInfo
	Op          string
	Left, Right Expr
}

// Unary is a unary expression: +x, -x or !x.
type Unary struct {
	base
	exprInfo
	Op   string
	Expr Expr
}

// LoadVar reads the current value of a variable, constant or parameter.
type LoadVar struct {
	base
	exprInfo
	Name   string
	Symbol *Symbol
}

// StoreVar names the assignment target of an Assign statement.
type StoreVar struct {
	base
	Name   string
	Symbol *Symbol
}

// Call invokes a user function or extern prototype by name.
type Call struct {
	base
	exprInfo
	Name    string
	Args    []Expr
	Callee  *FuncPrototype
}

// Typename names a type in source, e.g. in a var declaration or function signature.
type Typename struct {
	base
	Name string
	Typ  *types.Type
}

// --------------------------------------------------------------
// ----- Constructors (the parser lives outside this package) -----
// --------------------------------------------------------------

func NewProgram(line int, decls []Node) *Program { return &Program{base: base{L: line}, Decls: decls} }

func NewStatements(line int, list []Node) *Statements {
	return &Statements{base: base{L: line}, List: list}
}

func NewConstDecl(line int, name string, expr Expr) *ConstDecl {
	return &ConstDecl{base: base{L: line}, Name: name, Expr: expr}
}

func NewVarDecl(line int, name string, tn *Typename, expr Expr) *VarDecl {
	return &VarDecl{base: base{L: line}, Name: name, Typename: tn, Expr: expr}
}

func NewParamDecl(line int, name string, tn *Typename) *ParamDecl {
	return &ParamDecl{base: base{L: line}, Name: name, Typename: tn}
}

func NewFuncPrototype(line int, name string, params []*ParamDecl, tn *Typename) *FuncPrototype {
	return &FuncPrototype{base: base{L: line}, Name: name, Params: params, Typename: tn}
}

func NewExternFuncDecl(line int, proto *FuncPrototype) *ExternFuncDecl {
	return &ExternFuncDecl{base: base{L: line}, Prototype: proto}
}

func NewFuncDecl(line int, proto *FuncPrototype, body *Statements) *FuncDecl {
	return &FuncDecl{base: base{L: line}, Prototype: proto, Body: body}
}

func NewPrint(line int, expr Expr) *Print { return &Print{base: base{L: line}, Expr: expr} }

func NewAssign(line int, target *StoreVar, expr Expr) *Assign {
	return &Assign{base: base{L: line}, Target: target, Expr: expr}
}

func NewIf(line int, cond Expr, then *Statements) *If {
	return &If{base: base{L: line}, Cond: cond, Then: then}
}

func NewIfElse(line int, cond Expr, then, otherwise *Statements) *IfElse {
	return &IfElse{base: base{L: line}, Cond: cond, Then: then, Otherwise: otherwise}
}

func NewWhile(line int, cond Expr, body *Statements) *While {
	return &While{base: base{L: line}, Cond: cond, Body: body}
}

func NewReturn(line int, expr Expr) *Return { return &Return{base: base{L: line}, Expr: expr} }

func NewLiteral(line int, value interface{}) *Literal {
	return &Literal{base: base{L: line}, Value: value}
}

func NewBinary(line int, op string, left, right Expr) *Binary {
	return &Binary{base: base{L: line}, Op: op, Left: left, Right: right}
}

func NewBool(line int, op string, left, right Expr) *Bool {
	return &Bool{base: base{L: line}, Op: op, Left: left, Right: right}
}

func NewUnary(line int, op string, expr Expr) *Unary {
	return &Unary{base: base{L: line}, Op: op, Expr: expr}
}

func NewLoadVar(line int, name string) *LoadVar {
	return &LoadVar{base: base{L: line}, Name: name}
}

func NewStoreVar(line int, name string) *StoreVar {
	return &StoreVar{base: base{L: line}, Name: name}
}

func NewCall(line int, name string, args []Expr) *Call {
	return &Call{base: base{L: line}, Name: name, Args: args}
}

func NewTypename(line int, name string) *Typename {
	return &Typename{base: base{L: line}, Name: name}
}
