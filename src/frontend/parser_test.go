package frontend

import (
	"testing"

	"gone/src/ast"
	"gone/src/gonerr"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	rep := gonerr.NewReporter()
	defer rep.Close()
	prog, err := Parse(src, rep)
	if err != nil {
		t.Fatalf("Parse returned an error: %s", err)
	}
	if rep.HasErrors() {
		for _, e := range rep.Errors() {
			t.Errorf("unexpected diagnostic: %s", e)
		}
		t.FailNow()
	}
	return prog
}

func TestParseVarAndConstDecl(t *testing.T) {
	prog := parseOK(t, `const limit = 10; var total int = 0; var other float;`)
	if len(prog.Decls) != 3 {
		t.Fatalf("expected 3 top-level declarations, got %d", len(prog.Decls))
	}
	cd, ok := prog.Decls[0].(*ast.ConstDecl)
	if !ok || cd.Name != "limit" {
		t.Fatalf("expected ConstDecl %q, got %#v", "limit", prog.Decls[0])
	}
	vd, ok := prog.Decls[1].(*ast.VarDecl)
	if !ok || vd.Name != "total" || vd.Typename.Name != "int" || vd.Expr == nil {
		t.Fatalf("expected initialized VarDecl %q of type int, got %#v", "total", prog.Decls[1])
	}
	vd2, ok := prog.Decls[2].(*ast.VarDecl)
	if !ok || vd2.Expr != nil {
		t.Fatalf("expected uninitialized VarDecl %q, got %#v", "other", prog.Decls[2])
	}
}

func TestParseFuncDecl(t *testing.T) {
	prog := parseOK(t, `func add(a int, b int) int { return a + b; }`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Decls))
	}
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %#v", prog.Decls[0])
	}
	if fd.Prototype.Name != "add" || len(fd.Prototype.Params) != 2 || fd.Prototype.Typename.Name != "int" {
		t.Fatalf("unexpected prototype: %#v", fd.Prototype)
	}
	if len(fd.Body.List) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fd.Body.List))
	}
	ret, ok := fd.Body.List[0].(*ast.Return)
	if !ok || ret.Expr == nil {
		t.Fatalf("expected a Return with a value, got %#v", fd.Body.List[0])
	}
	bin, ok := ret.Expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a '+' Binary, got %#v", ret.Expr)
	}
}

func TestParseExternFuncDecl(t *testing.T) {
	prog := parseOK(t, `extern func puts(s int) int;`)
	ed, ok := prog.Decls[0].(*ast.ExternFuncDecl)
	if !ok || ed.Prototype.Name != "puts" {
		t.Fatalf("expected ExternFuncDecl %q, got %#v", "puts", prog.Decls[0])
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	prog := parseOK(t, `
if (1 < 2) {
	print 1;
} else {
	print 2;
}
while (true) {
	print 3;
}
`)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Decls))
	}
	if _, ok := prog.Decls[0].(*ast.IfElse); !ok {
		t.Fatalf("expected IfElse, got %#v", prog.Decls[0])
	}
	if _, ok := prog.Decls[1].(*ast.While); !ok {
		t.Fatalf("expected While, got %#v", prog.Decls[1])
	}
}

func TestParseIfWhileWithoutParens(t *testing.T) {
	prog := parseOK(t, `
if x > 0 {
	print 1;
}
while i < 3 {
	print i;
}
`)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Decls))
	}
	ifs, ok := prog.Decls[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %#v", prog.Decls[0])
	}
	if _, ok := ifs.Cond.(*ast.Bool); !ok {
		t.Fatalf("expected a Bool condition, got %#v", ifs.Cond)
	}
	wh, ok := prog.Decls[1].(*ast.While)
	if !ok {
		t.Fatalf("expected While, got %#v", prog.Decls[1])
	}
	if _, ok := wh.Cond.(*ast.Bool); !ok {
		t.Fatalf("expected a Bool condition, got %#v", wh.Cond)
	}
}

func TestParseAssignAndCallStatement(t *testing.T) {
	prog := parseOK(t, `x = 1; f(x, 2);`)
	asg, ok := prog.Decls[0].(*ast.Assign)
	if !ok || asg.Target.Name != "x" {
		t.Fatalf("expected Assign to %q, got %#v", "x", prog.Decls[0])
	}
	call, ok := prog.Decls[1].(*ast.Call)
	if !ok || call.Name != "f" || len(call.Args) != 2 {
		t.Fatalf("expected Call to %q with 2 args, got %#v", "f", prog.Decls[1])
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should bind as 1 + (2 * 3).
	prog := parseOK(t, `print 1 + 2 * 3;`)
	pr := prog.Decls[0].(*ast.Print)
	add, ok := pr.Expr.(*ast.Binary)
	if !ok || add.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", pr.Expr)
	}
	if _, ok := add.Left.(*ast.Literal); !ok {
		t.Fatalf("expected the left operand to be a literal, got %#v", add.Left)
	}
	mul, ok := add.Right.(*ast.Binary)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected the right operand to be a '*' Binary, got %#v", add.Right)
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	// a < b && c < d || e < f should bind as ((a<b) && (c<d)) || (e<f).
	prog := parseOK(t, `print a < b && c < d || e < f;`)
	pr := prog.Decls[0].(*ast.Print)
	or, ok := pr.Expr.(*ast.Bool)
	if !ok || or.Op != "||" {
		t.Fatalf("expected top-level '||', got %#v", pr.Expr)
	}
	and, ok := or.Left.(*ast.Bool)
	if !ok || and.Op != "&&" {
		t.Fatalf("expected the left operand to be '&&', got %#v", or.Left)
	}
	if _, ok := and.Left.(*ast.Bool); !ok {
		t.Fatalf("expected a relational Bool node on the left of '&&', got %#v", and.Left)
	}
}

func TestParseUnaryRightAssociative(t *testing.T) {
	prog := parseOK(t, `print - - 1;`)
	pr := prog.Decls[0].(*ast.Print)
	outer, ok := pr.Expr.(*ast.Unary)
	if !ok || outer.Op != "-" {
		t.Fatalf("expected outer '-' Unary, got %#v", pr.Expr)
	}
	if _, ok := outer.Expr.(*ast.Unary); !ok {
		t.Fatalf("expected a nested Unary, got %#v", outer.Expr)
	}
}

func TestParseSyntaxErrorAbandonsParse(t *testing.T) {
	rep := gonerr.NewReporter()
	defer rep.Close()
	// The first statement is missing its terminating ';'. Per the design, a syntax error reports and then
	// abandons the parse outright rather than resynchronizing to find later declarations.
	src := `var x int = 1
var y int = 2;`
	prog, err := Parse(src, rep)
	if err != nil {
		t.Fatalf("Parse returned an unexpected hard error: %s", err)
	}
	if !rep.HasErrors() {
		t.Fatalf("expected a diagnostic for the missing ';'")
	}
	for _, d := range prog.Decls {
		if vd, ok := d.(*ast.VarDecl); ok && vd.Name == "y" {
			t.Fatalf("expected the parse to abandon before reaching declaration %q", "y")
		}
	}
}
