package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gone/src/ast"
	"gone/src/frontend"
	"gone/src/gonerr"
	"gone/src/types"
	"gone/src/util"
)

func checkSrc(t *testing.T, src string) (*ast.Program, *gonerr.Reporter) {
	t.Helper()
	rep := gonerr.NewReporter()
	t.Cleanup(rep.Close)
	prog, err := frontend.Parse(src, rep)
	require.NoError(t, err, "Parse returned an unexpected hard error")
	require.False(t, rep.HasErrors(), "unexpected parse diagnostics: %v", rep.Errors())
	Check(prog, rep, util.Options{})
	return prog, rep
}

func wantNoErrors(t *testing.T, rep *gonerr.Reporter) {
	t.Helper()
	require.False(t, rep.HasErrors(), "unexpected diagnostics: %v", rep.Errors())
}

func wantError(t *testing.T, rep *gonerr.Reporter) {
	t.Helper()
	require.True(t, rep.HasErrors(), "expected at least one diagnostic, got none")
}

func TestCheckLiteralTypes(t *testing.T) {
	prog, rep := checkSrc(t, `
const a = 1;
const b = 1.5;
const c = true;
const d = "hi";
`)
	wantNoErrors(t, rep)
	want := []*types.Type{types.Int, types.Float, types.Bool, types.String}
	for i1, d := range prog.Decls {
		cd := d.(*ast.ConstDecl)
		require.Equal(t, want[i1], cd.Expr.GetType(), "decl %d", i1)
	}
}

func TestCheckVarDeclDefaultValue(t *testing.T) {
	prog, rep := checkSrc(t, `var x int;`)
	wantNoErrors(t, rep)
	vd := prog.Decls[0].(*ast.VarDecl)
	require.NotNil(t, vd.Expr, "expected a synthesized default-value expression")
	lit, ok := vd.Expr.(*ast.Literal)
	require.True(t, ok, "expected a literal default value, got %#v", vd.Expr)
	require.Equal(t, 0, lit.Value)
}

func TestCheckVarDeclTypeMismatch(t *testing.T) {
	_, rep := checkSrc(t, `var x int = 1.5;`)
	wantError(t, rep)
}

func TestCheckRedeclarationRejected(t *testing.T) {
	_, rep := checkSrc(t, "var x int = 1;\nvar x int = 2;\n")
	wantError(t, rep)
	errs := rep.Errors()
	require.NotEmpty(t, errs)
	require.Contains(t, errs[len(errs)-1].Error(), "line 1", "expected the redeclaration to report the prior (line 1) declaration, not its own line 2")
}

func TestCheckAssignToConstantRejected(t *testing.T) {
	_, rep := checkSrc(t, `const x = 1; x = 2;`)
	wantError(t, rep)
}

func TestCheckUndefinedNameRejected(t *testing.T) {
	_, rep := checkSrc(t, `print y;`)
	wantError(t, rep)
}

func TestCheckBinaryOperatorTypeMismatch(t *testing.T) {
	_, rep := checkSrc(t, `var x int = 1 + 1.5;`)
	wantError(t, rep)
}

func TestCheckStringConcatenation(t *testing.T) {
	_, rep := checkSrc(t, `var x string = "a" + "b";`)
	wantNoErrors(t, rep)
}

func TestCheckStringUnsupportedOperator(t *testing.T) {
	_, rep := checkSrc(t, `var x string = "a" - "b";`)
	wantError(t, rep)
}

func TestCheckConditionMustBeBool(t *testing.T) {
	_, rep := checkSrc(t, `if (1) { print 1; }`)
	wantError(t, rep)
}

func TestCheckFuncWithReturnOK(t *testing.T) {
	_, rep := checkSrc(t, `func add(a int, b int) int { return a + b; }`)
	wantNoErrors(t, rep)
}

func TestCheckFuncMayFallOffEnd(t *testing.T) {
	_, rep := checkSrc(t, `func f() int { if (true) { print 1; } }`)
	wantError(t, rep)
}

func TestCheckFuncIfElseBothReturnOK(t *testing.T) {
	_, rep := checkSrc(t, `
func f() int {
	if (true) {
		return 1;
	} else {
		return 0;
	}
}
`)
	wantNoErrors(t, rep)
}

func TestCheckReturnOutsideFunction(t *testing.T) {
	_, rep := checkSrc(t, `return 1;`)
	wantError(t, rep)
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	_, rep := checkSrc(t, `func f() int { return true; }`)
	wantError(t, rep)
}

func TestCheckCallArityMismatch(t *testing.T) {
	_, rep := checkSrc(t, `
func add(a int, b int) int { return a + b; }
var x int = add(1);
`)
	wantError(t, rep)
}

func TestCheckCallArgTypeMismatch(t *testing.T) {
	_, rep := checkSrc(t, `
func add(a int, b int) int { return a + b; }
var x int = add(1, 1.5);
`)
	wantError(t, rep)
}

func TestCheckCallOK(t *testing.T) {
	_, rep := checkSrc(t, `
extern func puts(s int) int;
func add(a int, b int) int { return a + b; }
var x int = add(puts(1), 2);
`)
	wantNoErrors(t, rep)
}

func TestCheckParallelFuncBodies(t *testing.T) {
	rep := gonerr.NewReporter()
	defer rep.Close()
	prog, err := frontend.Parse(`
func a() int { return 1; }
func b() int { return 2; }
func c() int { return 3; }
`, rep)
	require.NoError(t, err, "Parse returned an unexpected hard error")
	Check(prog, rep, util.Options{Threads: 4})
	wantNoErrors(t, rep)
}
