// Package ircode walks the checked AST and emits three-address IR into the control-flow graph the cfg package
// describes, the same division of labor original_source/gone splits between ircode.py (instruction emission)
// and bblock.py (block shape). The opcode catalog, temporary-naming scheme and per-construct block wiring all
// follow spec.md §4.4/§6.3 to the letter.
package ircode

import (
	"fmt"

	"gone/src/ast"
	"gone/src/cfg"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Module is the output of generating IR for one whole source file: the synthetic __init function carrying
// top-level code, one Function per user-defined function, and the extern declarations collected along the way.
type Module struct {
	Init    *cfg.Function
	Funcs   []*cfg.Function
	Externs []cfg.Instr // extern_func name rettype paramtypes...
}

// generator emits instructions for a single function (or __init) into one arena, tracking the current block
// cursor and the per-type temporary counters spec.md §4.4 calls for.
type generator struct {
	arena *cfg.Arena
	cur   cfg.Index
	temps map[string]int
}

// ---------------------
// ----- Functions -----
// ---------------------

// binaryOpcode maps a source operator to the opcode base name used for every type-tagged variant, e.g. "+" and
// int together produce "add_int".
var binaryOpcode = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div",
	"<": "lt", "<=": "le", ">": "gt", ">=": "ge", "==": "eq", "!=": "ne",
	"&&": "and", "||": "or",
}

var unaryOpcode = map[string]string{"+": "uadd", "-": "usub", "!": "not"}

// Generate runs IR generation over prog, whose declarations must already have been checked successfully.
func Generate(prog *ast.Program) *Module {
	mod := &Module{}

	initArena := cfg.NewArena()
	initStart := initArena.New(cfg.KindBasic)
	initGen := &generator{arena: initArena, cur: initStart, temps: map[string]int{}}

	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			mod.Funcs = append(mod.Funcs, genFunction(v))
		case *ast.ExternFuncDecl:
			mod.Externs = append(mod.Externs, genExternDecl(v.Prototype))
		default:
			initGen.genStatement(decl)
		}
	}
	initGen.emit("return_void")
	mod.Init = &cfg.Function{Name: "__init", ReturnType: "void", Arena: initArena, Start: initStart}
	return mod
}

// genExternDecl builds the module-level extern_func instruction for a prototype; it belongs to no block since
// it declares a symbol rather than executing anything.
func genExternDecl(proto *ast.FuncPrototype) cfg.Instr {
	args := make([]string, 0, len(proto.Params)+2)
	args = append(args, proto.Name, proto.Typename.Name)
	for _, p := range proto.Params {
		args = append(args, p.Typename.Name)
	}
	return cfg.Instr{Op: "extern_func", Args: args}
}

// genFunction builds one user function's control-flow graph, materializing its parameters at entry per
// spec.md's parm_T convention before emitting the body.
func genFunction(fd *ast.FuncDecl) *cfg.Function {
	arena := cfg.NewArena()
	start := arena.New(cfg.KindBasic)
	g := &generator{arena: arena, cur: start, temps: map[string]int{}}

	paramNames := make([]string, len(fd.Prototype.Params))
	paramTypes := make([]string, len(fd.Prototype.Params))
	for i1, p := range fd.Prototype.Params {
		paramNames[i1] = p.Name
		paramTypes[i1] = p.Typename.Name
		g.emit(fmt.Sprintf("parm_%s", p.Typename.Name), p.Name, fmt.Sprintf("%d", i1))
	}

	g.genStatements(fd.Body)

	return &cfg.Function{
		Name:       fd.Prototype.Name,
		ReturnType: fd.Prototype.Typename.Name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		Arena:      arena,
		Start:      start,
	}
}

// block returns the block the cursor currently points at.
func (g *generator) block() *cfg.Block {
	return g.arena.Get(g.cur)
}

// emit appends one instruction to the current block.
func (g *generator) emit(op string, args ...string) {
	g.block().Append(cfg.Instr{Op: op, Args: args})
}

// newTemp allocates the next temporary name for typeName, of the form __<typename>_<n>.
func (g *generator) newTemp(typeName string) string {
	g.temps[typeName]++
	return fmt.Sprintf("__%s_%d", typeName, g.temps[typeName])
}

// -----------------------
// ----- Statements -----
// -----------------------

// genStatements emits every statement of stmts in order into the current block (control-flow constructs switch
// the cursor as they go).
func (g *generator) genStatements(stmts *ast.Statements) {
	for _, n := range stmts.List {
		g.genStatement(n)
	}
}

// genStatement dispatches one statement or top-level declaration to its emission rule.
func (g *generator) genStatement(n ast.Node) {
	switch v := n.(type) {
	case *ast.ConstDecl:
		g.genDecl(v.Name, v.IsGlobal, v.Expr)
	case *ast.VarDecl:
		g.genDecl(v.Name, v.IsGlobal, v.Expr)
	case *ast.Print:
		src := g.genExpr(v.Expr)
		g.emit(fmt.Sprintf("print_%s", v.Expr.GetType().Name), src)
	case *ast.Assign:
		src := g.genExpr(v.Expr)
		g.emit(fmt.Sprintf("store_%s", v.Expr.GetType().Name), src, v.Target.Name)
	case *ast.Return:
		g.genReturn(v)
	case *ast.If:
		g.genIf(v)
	case *ast.IfElse:
		g.genIfElse(v)
	case *ast.While:
		g.genWhile(v)
	case *ast.Call:
		g.genExpr(v)
	}
}

// genDecl implements the declaration rule: global_T/alloc_T for the slot itself, followed by a trailing
// store_T for its initializer (every VarDecl has one by the time the checker runs, synthesized if the source
// omitted it).
func (g *generator) genDecl(name string, isGlobal bool, init ast.Expr) {
	typeName := init.GetType().Name
	if isGlobal {
		g.emit(fmt.Sprintf("global_%s", typeName), name)
	} else {
		g.emit(fmt.Sprintf("alloc_%s", typeName), name)
	}
	src := g.genExpr(init)
	g.emit(fmt.Sprintf("store_%s", typeName), src, name)
}

// genReturn implements return_T/return_void.
func (g *generator) genReturn(r *ast.Return) {
	if r.Expr == nil {
		g.emit("return_void")
		return
	}
	src := g.genExpr(r.Expr)
	g.emit(fmt.Sprintf("return_%s", r.Expr.GetType().Name), src)
}

// genIf implements the lone-if block wiring from spec.md §4.4: an IfBlock attached as the current block's
// Next, with the body living in a separate BasicBlock reachable only via ThenBranch, and a fresh merge block
// taking over as IfBlock.Next.
func (g *generator) genIf(s *ast.If) {
	ifIdx := g.arena.New(cfg.KindIf)
	g.block().Next = ifIdx
	g.cur = ifIdx
	testVar := g.genExpr(s.Cond)
	g.block().TestVar = testVar

	thenIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(ifIdx).ThenBranch = thenIdx
	g.cur = thenIdx
	g.genStatements(s.Then)

	mergeIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(ifIdx).Next = mergeIdx
	g.cur = mergeIdx
}

// genIfElse adds the else branch to the lone-if wiring above.
func (g *generator) genIfElse(s *ast.IfElse) {
	ifIdx := g.arena.New(cfg.KindIf)
	g.block().Next = ifIdx
	g.cur = ifIdx
	testVar := g.genExpr(s.Cond)
	g.block().TestVar = testVar

	thenIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(ifIdx).ThenBranch = thenIdx
	g.cur = thenIdx
	g.genStatements(s.Then)

	elseIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(ifIdx).ElseBranch = elseIdx
	g.cur = elseIdx
	g.genStatements(s.Otherwise)

	mergeIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(ifIdx).Next = mergeIdx
	g.cur = mergeIdx
}

// genWhile implements the WhileBlock wiring from spec.md §4.4. The condition lives in the WhileBlock itself
// rather than a predecessor, because a while loop re-evaluates it on every iteration; the back-edge from the
// body to the test is not represented here (Design Note §9: "modeled explicitly during linearization").
func (g *generator) genWhile(s *ast.While) {
	whileIdx := g.arena.New(cfg.KindWhile)
	g.block().Next = whileIdx
	g.cur = whileIdx
	testVar := g.genExpr(s.Cond)
	g.block().TestVar = testVar

	bodyIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(whileIdx).Body = bodyIdx
	g.cur = bodyIdx
	g.genStatements(s.Body)

	afterIdx := g.arena.New(cfg.KindBasic)
	g.arena.Get(whileIdx).Next = afterIdx
	g.cur = afterIdx
}

// -----------------------
// ----- Expressions -----
// -----------------------

// genExpr emits the instructions for e and returns the name of the temporary holding its value.
func (g *generator) genExpr(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Literal:
		return g.genLiteral(v)
	case *ast.Binary:
		return g.genBinary(v, v.Op, v.Left, v.Right, v.GetType().Name)
	case *ast.Bool:
		return g.genBinary(v, v.Op, v.Left, v.Right, v.GetType().Name)
	case *ast.Unary:
		return g.genUnary(v)
	case *ast.LoadVar:
		return g.genLoadVar(v)
	case *ast.Call:
		return g.genCall(v)
	default:
		panic(fmt.Sprintf("ircode: unrecognized expression %T", e))
	}
}

func (g *generator) genLiteral(l *ast.Literal) string {
	typeName := l.GetType().Name
	target := g.newTemp(typeName)
	g.emit(fmt.Sprintf("literal_%s", typeName), fmt.Sprint(l.Value), target)
	l.SetLocation(target)
	return target
}

// genBinary implements both arithmetic Binary and relational/logical Bool nodes: the opcode's type tag is the
// *operand* type (relational/logical opcodes are untagged by result, since the result is always bool — the
// catalog names them lt_T/and_bool etc. where T is the operand type for comparisons and fixed "bool" for
// logical operators, matching §6.3 exactly). e is the node itself, carried separately from left/right since
// Go's interface embedding doesn't let genExpr hand back enough to recover it once left/right are evaluated.
func (g *generator) genBinary(e ast.Expr, op string, left, right ast.Expr, resultType string) string {
	l := g.genExpr(left)
	r := g.genExpr(right)
	base := binaryOpcode[op]
	tag := left.GetType().Name
	if op == "&&" || op == "||" {
		tag = "bool"
	}
	target := g.newTemp(resultType)
	g.emit(fmt.Sprintf("%s_%s", base, tag), l, r, target)
	e.SetLocation(target)
	return target
}

func (g *generator) genUnary(u *ast.Unary) string {
	src := g.genExpr(u.Expr)
	typeName := u.Expr.GetType().Name
	target := g.newTemp(u.GetType().Name)
	if u.Op == "!" {
		g.emit("not_bool", src, target)
	} else {
		g.emit(fmt.Sprintf("%s_%s", unaryOpcode[u.Op], typeName), src, target)
	}
	u.SetLocation(target)
	return target
}

func (g *generator) genLoadVar(l *ast.LoadVar) string {
	target := g.newTemp(l.GetType().Name)
	g.emit(fmt.Sprintf("load_%s", l.GetType().Name), l.Name, target)
	l.SetLocation(target)
	return target
}

func (g *generator) genCall(c *ast.Call) string {
	args := make([]string, 0, len(c.Args)+2)
	args = append(args, c.Name)
	for _, a := range c.Args {
		args = append(args, g.genExpr(a))
	}
	target := g.newTemp(c.GetType().Name)
	args = append(args, target)
	g.emit("call_func", args...)
	c.SetLocation(target)
	return target
}
