package ircode

import (
	"fmt"
	"strings"

	"gone/src/cfg"
)

// dumpVisitor renders one function's block graph as indented, human-readable IR text, styled on ast.Dump and
// cfg.Walk's traversal order.
type dumpVisitor struct {
	arena *cfg.Arena
	sb    *strings.Builder
}

func (v *dumpVisitor) VisitBasic(idx cfg.Index, b *cfg.Block) { v.writeBlock(idx, "block", b) }
func (v *dumpVisitor) VisitIf(idx cfg.Index, b *cfg.Block) {
	v.writeBlock(idx, "if", b)
	if b.ThenBranch != cfg.NoBlock {
		fmt.Fprintf(v.sb, "  then -> block%d\n", b.ThenBranch)
		cfg.Walk(v.arena, b.ThenBranch, v)
	}
	if b.ElseBranch != cfg.NoBlock {
		fmt.Fprintf(v.sb, "  else -> block%d\n", b.ElseBranch)
		cfg.Walk(v.arena, b.ElseBranch, v)
	}
}
func (v *dumpVisitor) VisitWhile(idx cfg.Index, b *cfg.Block) {
	v.writeBlock(idx, "while", b)
	if b.Body != cfg.NoBlock {
		fmt.Fprintf(v.sb, "  body -> block%d\n", b.Body)
		cfg.Walk(v.arena, b.Body, v)
	}
}

func (v *dumpVisitor) writeBlock(idx cfg.Index, kind string, b *cfg.Block) {
	fmt.Fprintf(v.sb, "block%d (%s):\n", idx, kind)
	for _, in := range b.Instructions {
		fmt.Fprintf(v.sb, "  %s %s\n", in.Op, strings.Join(in.Args, " "))
	}
	if b.TestVar != "" {
		fmt.Fprintf(v.sb, "  test %s\n", b.TestVar)
	}
}

// Dump renders mod's __init function, every user function and every extern declaration as text, for the ir
// CLI subcommand and for debugging.
func Dump(mod *Module) string {
	sb := &strings.Builder{}
	for _, ext := range mod.Externs {
		fmt.Fprintf(sb, "%s %s\n", ext.Op, strings.Join(ext.Args, " "))
	}
	dumpFunction(sb, "__init", mod.Init)
	for _, fn := range mod.Funcs {
		dumpFunction(sb, fn.Name, fn)
	}
	return sb.String()
}

func dumpFunction(sb *strings.Builder, name string, fn *cfg.Function) {
	fmt.Fprintf(sb, "func %s() %s:\n", name, fn.ReturnType)
	v := &dumpVisitor{arena: fn.Arena, sb: sb}
	cfg.Walk(fn.Arena, fn.Start, v)
}
