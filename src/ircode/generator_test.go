package ircode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gone/src/ast"
	"gone/src/cfg"
	"gone/src/check"
	"gone/src/frontend"
	"gone/src/gonerr"
	"gone/src/util"
)

func genSrc(t *testing.T, src string) *Module {
	t.Helper()
	rep := gonerr.NewReporter()
	defer rep.Close()
	prog, err := frontend.Parse(src, rep)
	require.NoError(t, err, "Parse returned an unexpected hard error")
	check.Check(prog, rep, util.Options{})
	require.False(t, rep.HasErrors(), "unexpected diagnostics: %v", rep.Errors())
	return Generate(prog)
}

func opcodes(instrs []cfg.Instr) []string {
	out := make([]string, len(instrs))
	for i1, in := range instrs {
		out[i1] = in.Op
	}
	return out
}

func TestGenerateGlobalDeclAndInit(t *testing.T) {
	mod := genSrc(t, `var total int = 0;`)
	blk := mod.Init.Arena.Get(mod.Init.Start)
	require.Equal(t, []string{"global_int", "literal_int", "store_int", "return_void"}, opcodes(blk.Instructions))
}

func TestGenerateFunctionParamsAndReturn(t *testing.T) {
	mod := genSrc(t, `func add(a int, b int) int { return a + b; }`)
	require.Len(t, mod.Funcs, 1)
	fn := mod.Funcs[0]
	blk := fn.Arena.Get(fn.Start)
	want := []string{"parm_int", "parm_int", "load_int", "load_int", "add_int", "return_int"}
	require.Equal(t, want, opcodes(blk.Instructions))
}

func TestGenerateExternDecl(t *testing.T) {
	mod := genSrc(t, `extern func puts(s int) int;`)
	require.Len(t, mod.Externs, 1)
	ext := mod.Externs[0]
	require.Equal(t, "extern_func", ext.Op)
	require.Equal(t, []string{"puts", "int", "int"}, ext.Args)
}

func TestGenerateIfWithoutElseBlockWiring(t *testing.T) {
	mod := genSrc(t, `
func f(a int) int {
	if (a < 0) {
		return 0;
	}
	return a;
}
`)
	fn := mod.Funcs[0]
	start := fn.Arena.Get(fn.Start)
	ifIdx := start.Next
	ifBlk := fn.Arena.Get(ifIdx)
	require.Equal(t, cfg.KindIf, ifBlk.Kind, "expected the start block's Next to be an IfBlock")
	require.NotEmpty(t, ifBlk.TestVar, "expected the IfBlock to record a TestVar")
	require.NotEqual(t, cfg.NoBlock, ifBlk.ThenBranch, "expected the IfBlock to have a ThenBranch")
	require.Equal(t, cfg.NoBlock, ifBlk.ElseBranch, "expected a lone if to have no ElseBranch")
	require.NotEqual(t, cfg.NoBlock, ifBlk.Next, "expected the IfBlock to have a merge block as Next")

	thenBlk := fn.Arena.Get(ifBlk.ThenBranch)
	require.Equal(t, []string{"literal_int", "return_int"}, opcodes(thenBlk.Instructions))
}

func TestGenerateAnnotatesExprsWithGenLocation(t *testing.T) {
	rep := gonerr.NewReporter()
	defer rep.Close()
	prog, err := frontend.Parse(`var total int = 1 + 2;`, rep)
	require.NoError(t, err, "Parse returned an unexpected hard error")
	check.Check(prog, rep, util.Options{})
	require.False(t, rep.HasErrors(), "unexpected diagnostics: %v", rep.Errors())
	Generate(prog)

	vd := prog.Decls[0].(*ast.VarDecl)
	require.NotEmpty(t, vd.Expr.GetLocation(), "expected the top-level '+' expression to carry its generated temp name")
	bin := vd.Expr.(*ast.Binary)
	require.NotEmpty(t, bin.Left.GetLocation(), "expected the left literal to carry its generated temp name")
	require.NotEmpty(t, bin.Right.GetLocation(), "expected the right literal to carry its generated temp name")
}

func TestGenerateWhileBlockWiring(t *testing.T) {
	mod := genSrc(t, `
var i int = 0;
while (i < 10) {
	i = i + 1;
}
`)
	init := mod.Init
	start := init.Arena.Get(init.Start)
	whileIdx := start.Next
	whileBlk := init.Arena.Get(whileIdx)
	require.Equal(t, cfg.KindWhile, whileBlk.Kind, "expected the start block's Next to be a WhileBlock")
	require.NotEqual(t, cfg.NoBlock, whileBlk.Body, "expected the WhileBlock to have a Body")
	require.NotEqual(t, cfg.NoBlock, whileBlk.Next, "expected the WhileBlock to have an after-loop block as Next")
}
