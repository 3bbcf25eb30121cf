package check

import (
	"sync"

	"gone/src/ast"
	"gone/src/gonerr"
	"gone/src/types"
	"gone/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Checker walks a syntax tree and annotates it with resolved types, symbols and is_global flags. currentProto
// is nil while checking top-level code (the implicit __init context) and non-nil while checking a function
// body, so Return can tell whether it occurs inside a function.
type Checker struct {
	rep          *gonerr.Reporter
	env          *Environment
	currentProto *ast.FuncPrototype
}

// ---------------------
// ----- Functions -----
// ---------------------

// Check runs semantic analysis over prog, reporting every diagnostic to rep. It returns the global
// environment so later stages (IR generation) can resolve the same symbols without re-running the checker.
// If opt.Threads > 1, independent user function bodies are checked concurrently after every top-level name has
// been registered, the same worker-pool split ir.Optimise uses for its parallel pass.
func Check(prog *ast.Program, rep *gonerr.Reporter, opt util.Options) *Environment {
	c := &Checker{rep: rep, env: NewGlobalEnvironment()}
	for _, t := range types.Builtins {
		c.env.Global.Insert(t.Name, &ast.Symbol{Name: t.Name, Type: t})
	}

	var funcDecls []*ast.FuncDecl
	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			c.registerPrototype(v.Prototype, v)
			funcDecls = append(funcDecls, v)
		case *ast.ExternFuncDecl:
			c.registerPrototype(v.Prototype, v)
		default:
			c.checkTopLevelStatement(decl)
		}
	}

	if opt.Threads > 1 && len(funcDecls) > 1 {
		c.checkFuncBodiesParallel(funcDecls, opt.Threads)
	} else {
		for _, fd := range funcDecls {
			c.checkFuncBody(fd)
		}
	}
	return c.env
}

// checkFuncBodiesParallel splits funcDecls across opt.Threads worker goroutines, grounded on ir.Optimise's
// job-splitting scheme: each worker gets a contiguous slice, with the first res workers absorbing one extra
// item for the residual work that doesn't divide evenly. Bodies only read the already-populated global scope
// and write to their own fresh local scope, so no further synchronization is required between workers.
func (c *Checker) checkFuncBodiesParallel(funcDecls []*ast.FuncDecl, threads int) {
	t := threads
	l := len(funcDecls)
	if t > l {
		t = l
	}
	if t > util.MaxThreads {
		t = util.MaxThreads
	}
	n := l / t
	res := l % t

	errs := util.NewPerror(t)
	wg := sync.WaitGroup{}
	wg.Add(t)

	start := 0
	end := n
	for i1 := 0; i1 < t; i1++ {
		if i1 < res {
			end++
		}
		go func(slice []*ast.FuncDecl) {
			defer wg.Done()
			sub := &Checker{rep: gonerr.NewReporter(), env: c.env}
			for _, fd := range slice {
				sub.checkFuncBody(fd)
			}
			for _, e := range sub.rep.Errors() {
				errs.Append(e)
			}
			sub.rep.Close()
		}(funcDecls[start:end])
		start = end
		end += n
	}
	wg.Wait()
	errs.Stop()
	for e := range errs.Errors() {
		c.rep.Report(0, "%s", e)
	}
}

// checkTopLevelStatement checks one piece of code belonging to the implicit __init function.
func (c *Checker) checkTopLevelStatement(n ast.Node) {
	switch v := n.(type) {
	case *ast.ConstDecl:
		c.checkConstDecl(v)
	case *ast.VarDecl:
		c.checkVarDecl(v)
	case *ast.Print:
		c.checkExpr(v.Expr)
	case *ast.Assign:
		c.checkAssign(v)
	case *ast.If:
		c.checkCondition(v.Cond)
		c.checkStatements(v.Then)
	case *ast.IfElse:
		c.checkCondition(v.Cond)
		c.checkStatements(v.Then)
		c.checkStatements(v.Otherwise)
	case *ast.While:
		c.checkCondition(v.Cond)
		c.checkStatements(v.Body)
	case *ast.Return:
		c.checkReturn(v)
	case *ast.Call:
		c.checkExpr(v)
	default:
		c.rep.Report(n.Line(), "invalid top-level statement")
	}
}

// checkStatements checks every statement of stmts in order and reports whether every control path through it
// reaches a Return. A lone If contributes whatever holds after its own body (preserving the source's exact,
// deliberately approximate rule rather than the stricter "both branches required" rule used for if-else).
func (c *Checker) checkStatements(stmts *ast.Statements) bool {
	returned := false
	for _, n := range stmts.List {
		switch v := n.(type) {
		case *ast.Return:
			c.checkReturn(v)
			returned = true
		case *ast.If:
			c.checkCondition(v.Cond)
			returned = c.checkStatements(v.Then)
		case *ast.IfElse:
			c.checkCondition(v.Cond)
			thenReturned := c.checkStatements(v.Then)
			otherwiseReturned := c.checkStatements(v.Otherwise)
			if thenReturned && otherwiseReturned {
				returned = true
			}
		case *ast.While:
			c.checkCondition(v.Cond)
			c.checkStatements(v.Body)
		case *ast.ConstDecl:
			c.checkConstDecl(v)
		case *ast.VarDecl:
			c.checkVarDecl(v)
		case *ast.Print:
			c.checkExpr(v.Expr)
		case *ast.Assign:
			c.checkAssign(v)
		case *ast.Call:
			c.checkExpr(v)
		case *ast.FuncDecl, *ast.ExternFuncDecl:
			c.rep.Report(n.Line(), "nested function declarations are not allowed")
		default:
			c.rep.Report(n.Line(), "invalid statement")
		}
	}
	return returned
}

// ----------------------------
// ----- Declarations -----
// ----------------------------

// checkTypename resolves tn.Name against the environment and attaches the resolved type object.
func (c *Checker) checkTypename(tn *ast.Typename) {
	sym, ok := c.env.Lookup(tn.Name)
	if !ok || sym.Decl != nil || sym.Type == nil {
		c.rep.Report(tn.Line(), "%q is not a type", tn.Name)
		tn.Typ = types.Error
		return
	}
	tn.Typ = sym.Type
}

// declLine returns the source line sym was declared on, or 0 for the built-in type symbols that carry no
// declaration node.
func declLine(sym *ast.Symbol) int {
	if sym.Decl == nil {
		return 0
	}
	return sym.Decl.Line()
}

// checkConstDecl implements the rule: name must be fresh, type comes from the initializer.
func (c *Checker) checkConstDecl(d *ast.ConstDecl) {
	c.checkExpr(d.Expr)
	d.IsGlobal = c.env.IsGlobal()
	sym := &ast.Symbol{Name: d.Name, Decl: d, Type: d.Expr.GetType()}
	if existing, ok := c.env.Insert(d.Name, sym); !ok {
		c.rep.Report(d.Line(), "%q is already defined on line %d", d.Name, declLine(existing))
		return
	}
	d.Symbol = sym
}

// checkVarDecl implements the rule: name must be fresh, typename must resolve, an initializer (if given) must
// match the declared type, and a missing initializer is replaced with a synthetic default-value literal.
func (c *Checker) checkVarDecl(d *ast.VarDecl) {
	c.checkTypename(d.Typename)
	d.IsGlobal = c.env.IsGlobal()

	if d.Expr == nil {
		d.Expr = ast.NewLiteral(d.Line(), d.Typename.Typ.Default)
	}
	c.checkExpr(d.Expr)
	if !d.Expr.GetType().IsError() && !d.Typename.Typ.IsError() && d.Expr.GetType() != d.Typename.Typ {
		c.rep.Report(d.Line(), "cannot initialize %s %q with a value of type %s",
			d.Typename.Name, d.Name, d.Expr.GetType().Name)
	}

	sym := &ast.Symbol{Name: d.Name, Decl: d, Type: d.Typename.Typ}
	if existing, ok := c.env.Insert(d.Name, sym); !ok {
		c.rep.Report(d.Line(), "%q is already defined on line %d", d.Name, declLine(existing))
		return
	}
	d.Symbol = sym
}

// registerPrototype resolves proto's parameter and return typenames and binds its name in the global scope.
// Function names are always registered globally: Gone functions cannot nest (Design Note §9), so there is no
// other scope a function declaration could target.
func (c *Checker) registerPrototype(proto *ast.FuncPrototype, decl ast.Node) {
	for _, p := range proto.Params {
		c.checkTypename(p.Typename)
	}
	c.checkTypename(proto.Typename)

	sym := &ast.Symbol{Name: proto.Name, Decl: decl, Type: proto.Typename.Typ}
	if existing, ok := c.env.Global.Insert(proto.Name, sym); !ok {
		c.rep.Report(proto.Line(), "%q is already defined on line %d", proto.Name, declLine(existing))
		return
	}
	proto.Symbol = sym
}

// checkFuncBody checks one function's body in a fresh local scope seeded with its parameters, tracking
// whether every control path returns.
func (c *Checker) checkFuncBody(fd *ast.FuncDecl) {
	fc := &Checker{rep: c.rep, env: c.env.EnterFunction(), currentProto: fd.Prototype}
	for _, p := range fd.Prototype.Params {
		sym := &ast.Symbol{Name: p.Name, Decl: p, Type: p.Typename.Typ}
		if existing, ok := fc.env.Insert(p.Name, sym); !ok {
			fc.rep.Report(p.Line(), "%q is already defined on line %d", p.Name, declLine(existing))
			continue
		}
		p.Symbol = sym
	}

	returned := fc.checkStatements(fd.Body)
	if !returned && !fd.Prototype.Typename.Typ.IsError() {
		fc.rep.Report(fd.Line(), "function %q may fall off the end without returning a value", fd.Prototype.Name)
	}
}

// checkReturn implements the rule: must occur inside a function; the expression's type must equal the
// enclosing function's declared return type.
func (c *Checker) checkReturn(r *ast.Return) {
	if c.currentProto == nil {
		c.rep.Report(r.Line(), "return outside of a function")
		if r.Expr != nil {
			c.checkExpr(r.Expr)
		}
		return
	}
	want := c.currentProto.Typename.Typ
	if r.Expr == nil {
		if !want.IsError() {
			c.rep.Report(r.Line(), "function %q must return a value of type %s", c.currentProto.Name, want.Name)
		}
		return
	}
	c.checkExpr(r.Expr)
	if !r.Expr.GetType().IsError() && !want.IsError() && r.Expr.GetType() != want {
		c.rep.Report(r.Line(), "function %q must return %s, got %s",
			c.currentProto.Name, want.Name, r.Expr.GetType().Name)
	}
}

// checkAssign implements the rule: the target must resolve to a variable or parameter, never a constant, and
// the expression's type must equal the target's type.
func (c *Checker) checkAssign(a *ast.Assign) {
	sym, ok := c.env.Lookup(a.Target.Name)
	c.checkExpr(a.Expr)
	if !ok {
		c.rep.Report(a.Line(), "undefined name %q", a.Target.Name)
		return
	}
	if _, isConst := sym.Decl.(*ast.ConstDecl); isConst {
		c.rep.Report(a.Line(), "cannot assign to constant %q", a.Target.Name)
		return
	}
	a.Target.Symbol = sym
	if !a.Expr.GetType().IsError() && !sym.Type.IsError() && a.Expr.GetType() != sym.Type {
		c.rep.Report(a.Line(), "cannot assign a value of type %s to %s %q",
			a.Expr.GetType().Name, sym.Type.Name, a.Target.Name)
	}
}

// checkCondition checks cond and reports an error if it is not bool.
func (c *Checker) checkCondition(cond ast.Expr) {
	c.checkExpr(cond)
	if t := cond.GetType(); !t.IsError() && t != types.Bool {
		c.rep.Report(cond.Line(), "condition must be bool, got %s", t.Name)
	}
}

// --------------------------------
// ----- Expressions -----
// --------------------------------

// checkExpr dispatches on e's concrete type and annotates it with a resolved type.
func (c *Checker) checkExpr(e ast.Expr) {
	switch v := e.(type) {
	case *ast.Literal:
		c.checkLiteral(v)
	case *ast.Binary:
		c.checkBinaryLike(v, v.Op, v.Left, v.Right, false)
	case *ast.Bool:
		c.checkBinaryLike(v, v.Op, v.Left, v.Right, true)
	case *ast.Unary:
		c.checkUnary(v)
	case *ast.LoadVar:
		c.checkLoadVar(v)
	case *ast.Call:
		c.checkCall(v)
	default:
		c.rep.Report(e.Line(), "unrecognized expression")
	}
}

// checkLiteral implements the rule: boolean -> bool, integer -> int, floating-point -> float, string -> string.
func (c *Checker) checkLiteral(l *ast.Literal) {
	switch l.Value.(type) {
	case bool:
		l.SetType(types.Bool)
	case int64, int:
		l.SetType(types.Int)
	case float64:
		l.SetType(types.Float)
	case string:
		l.SetType(types.String)
	default:
		c.rep.Report(l.Line(), "literal of unrecognized kind")
		l.SetType(types.Error)
	}
}

// checkBinaryLike implements both the Binary and Bool rules: both operands must share a non-error type, and
// the operator must be supported by that type; the result type is whatever the operator table names (already
// bool for relational and logical operators). forceBool makes the result bool even if the table named another
// type; with the current operator tables it never changes the result.
func (c *Checker) checkBinaryLike(e ast.Expr, op string, left, right ast.Expr, forceBool bool) {
	c.checkExpr(left)
	c.checkExpr(right)
	lt, rt := left.GetType(), right.GetType()
	if lt.IsError() || rt.IsError() {
		e.SetType(types.Error)
		return
	}
	if lt != rt {
		c.rep.Report(e.Line(), "mismatched operand types %s and %s for %q", lt.Name, rt.Name, op)
		e.SetType(types.Error)
		return
	}
	resName, ok := lt.BinaryResult(op)
	if !ok {
		c.rep.Report(e.Line(), "operator %q is not supported for type %s", op, lt.Name)
		e.SetType(types.Error)
		return
	}
	res, _ := types.Lookup(resName)
	if forceBool && res != types.Bool {
		// Should be unreachable given the operator tables in types.go; kept as a consistency guard.
		res = types.Bool
	}
	e.SetType(res)
}

// checkUnary implements the rule: operator must appear in the operand type's unary_ops; result type equals
// the table entry.
func (c *Checker) checkUnary(u *ast.Unary) {
	c.checkExpr(u.Expr)
	t := u.Expr.GetType()
	if t.IsError() {
		u.SetType(types.Error)
		return
	}
	resName, ok := t.UnaryResult(u.Op)
	if !ok {
		c.rep.Report(u.Line(), "unary operator %q is not supported for type %s", u.Op, t.Name)
		u.SetType(types.Error)
		return
	}
	res, _ := types.Lookup(resName)
	u.SetType(res)
}

// checkLoadVar implements the rule: the loaded name must resolve, and the result takes the symbol's type.
func (c *Checker) checkLoadVar(l *ast.LoadVar) {
	sym, ok := c.env.Lookup(l.Name)
	if !ok {
		c.rep.Report(l.Line(), "undefined name %q", l.Name)
		l.SetType(types.Error)
		return
	}
	l.Symbol = sym
	l.SetType(sym.Type)
}

// checkCall implements the rule: the callee name must resolve to a function prototype or extern, and (per the
// resolved open question in SPEC_FULL.md) argument arity and types must match the prototype.
func (c *Checker) checkCall(call *ast.Call) {
	sym, ok := c.env.Lookup(call.Name)
	if !ok {
		c.rep.Report(call.Line(), "undefined function %q", call.Name)
		call.SetType(types.Error)
		c.checkArgsStandalone(call)
		return
	}
	proto := prototypeOf(sym.Decl)
	if proto == nil {
		c.rep.Report(call.Line(), "%q is not a function", call.Name)
		call.SetType(types.Error)
		c.checkArgsStandalone(call)
		return
	}
	call.Callee = proto

	for _, a := range call.Args {
		c.checkExpr(a)
	}
	if len(call.Args) != len(proto.Params) {
		c.rep.Report(call.Line(), "function %q expects %d argument(s), got %d",
			call.Name, len(proto.Params), len(call.Args))
	} else {
		for i1, a := range call.Args {
			want := proto.Params[i1].Typename.Typ
			if got := a.GetType(); !got.IsError() && !want.IsError() && got != want {
				c.rep.Report(a.Line(), "argument %d of %q must be %s, got %s",
					i1+1, call.Name, want.Name, got.Name)
			}
		}
	}
	call.SetType(proto.Typename.Typ)
}

// checkArgsStandalone still checks each argument expression when the callee itself failed to resolve, so that
// errors inside the arguments are reported too instead of being silently skipped.
func (c *Checker) checkArgsStandalone(call *ast.Call) {
	for _, a := range call.Args {
		c.checkExpr(a)
	}
}

// prototypeOf extracts the FuncPrototype a symbol's declaration carries, if any.
func prototypeOf(decl ast.Node) *ast.FuncPrototype {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return d.Prototype
	case *ast.ExternFuncDecl:
		return d.Prototype
	default:
		return nil
	}
}
