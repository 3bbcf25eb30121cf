// Package interp implements the reference interpreter spec.md §1 calls a "non-normative debugging aid" and
// SPEC_FULL.md's supplemented-features section grounds on original_source/gone/interp.py: a tree-walking
// evaluator that runs the IR ircode.Generate produces directly, without lowering to LLVM. It exists to give the
// test suite an independent oracle for spec.md §8's round-trip property (the interpreter and the compiled LLVM
// output must produce identical print sequences). Unlike interp.py's BlockLinker, which first flattens the CFG
// into a single jump/cbranch instruction stream, this interpreter walks cfg.Block directly and recurses into
// ThenBranch/ElseBranch/Body, since Go's call stack already gives it the structured control flow a flat
// instruction array has to reconstruct with explicit program-counter jumps.
package interp

import (
	"io"

	"gone/src/cfg"
	"gone/src/ircode"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Extern is a Go function usable as the target of an extern declaration. Gone defines no concrete runtime
// library of its own, so tests register whatever externs a given program needs before calling Run.
type Extern func(args []interface{}) interface{}

// Interpreter holds the state one interpreted run needs: the module being executed, its global slots, and the
// externs a caller has registered.
type Interpreter struct {
	mod     *ircode.Module
	out     io.Writer
	globals map[string]interface{}
	externs map[string]Extern
	funcs   map[string]*cfg.Function
}

// frame is the Frame class from interp.py: one call's local variable bindings plus its positional arguments
// and its eventual return value.
type frame struct {
	vars     map[string]interface{}
	args     []interface{}
	returned bool
	retVal   interface{}
}

// ---------------------
// ----- Functions -----
// ---------------------

// New builds an interpreter for mod, writing print_T output to out.
func New(mod *ircode.Module, out io.Writer) *Interpreter {
	in := &Interpreter{mod: mod, out: out, globals: map[string]interface{}{}, externs: map[string]Extern{}, funcs: map[string]*cfg.Function{}}
	for _, fn := range mod.Funcs {
		in.funcs[fn.Name] = fn
	}
	return in
}

// RegisterExtern binds name (as declared by an extern func prototype) to a Go implementation.
func (in *Interpreter) RegisterExtern(name string, fn Extern) {
	in.externs[name] = fn
}

// Run executes __init followed by entryFunc (typically "main"), returning entryFunc's return value. Run panics
// on a call to an unregistered extern or an undefined function, mirroring interp.py's RuntimeError.
func (in *Interpreter) Run(entryFunc string) interface{} {
	in.execFunction(in.mod.Init, nil)
	fn, ok := in.funcs[entryFunc]
	if !ok {
		return nil
	}
	return in.execFunction(fn, nil)
}

// execFunction runs one function's control-flow graph to completion and returns its return value, if any.
func (in *Interpreter) execFunction(fn *cfg.Function, args []interface{}) interface{} {
	fr := &frame{vars: map[string]interface{}{}, args: args}
	in.execBlock(fn.Arena, fn.Start, fr)
	return fr.retVal
}

// execBlock runs the block graph starting at idx until a return is hit or the chain runs out of successors.
func (in *Interpreter) execBlock(arena *cfg.Arena, idx cfg.Index, fr *frame) {
	for idx != cfg.NoBlock && !fr.returned {
		blk := arena.Get(idx)
		switch blk.Kind {
		case cfg.KindIf:
			in.execInstrs(blk.Instructions, fr)
			if truthy(fr.vars[blk.TestVar]) {
				in.execBlock(arena, blk.ThenBranch, fr)
			} else if blk.ElseBranch != cfg.NoBlock {
				in.execBlock(arena, blk.ElseBranch, fr)
			}
			idx = blk.Next
		case cfg.KindWhile:
			for {
				in.execInstrs(blk.Instructions, fr)
				if !truthy(fr.vars[blk.TestVar]) || fr.returned {
					break
				}
				in.execBlock(arena, blk.Body, fr)
				if fr.returned {
					break
				}
			}
			idx = blk.Next
		default:
			in.execInstrs(blk.Instructions, fr)
			idx = blk.Next
		}
	}
}

func truthy(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

// set stores value in name, honoring the local-shadows-global rule run_store_int uses: the local frame wins
// if name is already bound there.
func (fr *frame) set(globals map[string]interface{}, name string, value interface{}) {
	if _, ok := fr.vars[name]; ok {
		fr.vars[name] = value
		return
	}
	if _, ok := globals[name]; ok {
		globals[name] = value
		return
	}
	fr.vars[name] = value
}

func (fr *frame) get(globals map[string]interface{}, name string) interface{} {
	if v, ok := fr.vars[name]; ok {
		return v
	}
	return globals[name]
}
