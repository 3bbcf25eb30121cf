package llvmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gone/src/check"
	"gone/src/frontend"
	"gone/src/gonerr"
	"gone/src/ircode"
	"gone/src/util"
)

// genIR runs src through the full front end and IR generator and returns the LLVM IR text Emit produces.
func genIR(t *testing.T, src string) string {
	t.Helper()
	rep := gonerr.NewReporter()
	defer rep.Close()
	prog, err := frontend.Parse(src, rep)
	require.NoError(t, err, "Parse returned an unexpected hard error")
	check.Check(prog, rep, util.Options{})
	require.False(t, rep.HasErrors(), "unexpected diagnostics: %v", rep.Errors())
	mod := ircode.Generate(prog)
	return Emit(mod, "test")
}

// An if nested inside another if's then-branch must still get its own conditional branch: before
// linearizeStraightLine dispatched on Kind, the inner IfBlock was walked as if it were a plain basic block and
// its CreateCondBr, along with its own then-branch, was silently dropped from the module.
func TestEmitIfInIfEmitsBothConditionalBranches(t *testing.T) {
	ir := genIR(t, `
func f(a int) int {
	if (a > 0) {
		if (a > 10) {
			return 2;
		}
		return 1;
	}
	return 0;
}
`)
	require.Equal(t, 2, strings.Count(ir, "br i1"), "expected the outer and inner if to each emit a conditional branch:\n%s", ir)
	require.Contains(t, ir, "tblock:")
	require.Contains(t, ir, "tblock.1:")
}

// A while loop nested inside an if's then-branch must reach its own whiletest/loop/afterloop blocks.
func TestEmitWhileInIfLinearizesNestedLoop(t *testing.T) {
	ir := genIR(t, `
func f(a int) int {
	if (a > 0) {
		var i int = 0;
		while (i < a) {
			i = i + 1;
		}
		return i;
	}
	return 0;
}
`)
	require.Contains(t, ir, "whiletest:")
	require.Contains(t, ir, "loop:")
	require.Contains(t, ir, "afterloop:")
	require.Equal(t, 2, strings.Count(ir, "br i1"))
}

// An if nested inside a while's body must still emit its own conditional branch rather than being flattened
// into the loop body's straight-line instructions.
func TestEmitIfInWhileLinearizesNestedBranch(t *testing.T) {
	ir := genIR(t, `
func f(a int) int {
	var i int = 0;
	while (i < a) {
		if (i == 0) {
			print i;
		}
		i = i + 1;
	}
	return i;
}
`)
	require.Equal(t, 2, strings.Count(ir, "br i1"))
	require.Contains(t, ir, "tblock:")
}
