// Package llvmgen lowers the control-flow graph the cfg/ircode packages build into LLVM IR text, using the
// real LLVM C API bindings tinygo.org/x/go-llvm exactly as ir/llvm/transform.go does: a Context owns a Builder
// and a Module, AddFunction/AddBasicBlock/CreateXxx build up the function bodies, and the whole thing is handed
// back as module.String() rather than lowered to an object file or linked (that step stays out of scope per
// spec.md §1's Non-goals).
package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"gone/src/cfg"
	"gone/src/ircode"
	"gone/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// emitter carries the handful of LLVM handles every generation function needs, the same bundle
// transform.go's gen/genExpression/genStore free functions thread through as parameters.
type emitter struct {
	ctx      llvm.Context
	b        llvm.Builder
	m        llvm.Module
	fun      llvm.Value
	locals   map[string]llvm.Value // alloca'd slots and parameters, keyed by Gone name, local to the current function.
	globals  map[string]llvm.Value // module-level globals, keyed by Gone name, shared across all functions.
	values   map[string]llvm.Value // temporaries produced within the function currently being emitted.
	printers map[string]llvm.Value // runtime printer declarations, populated lazily.
}

// ---------------------
// ----- Functions -----
// ---------------------

// llvmType maps a Gone typename to its LLVM counterpart per spec.md §4.5.
func llvmType(ctx llvm.Context, name string) llvm.Type {
	switch name {
	case "int":
		return ctx.Int32Type()
	case "float":
		return ctx.DoubleType()
	case "bool":
		return ctx.Int1Type()
	case "void":
		return ctx.VoidType()
	default:
		panic(fmt.Sprintf("llvmgen: type %q is not supported (string arithmetic defers to a later project)", name))
	}
}

// Emit lowers mod into one LLVM module named moduleName and returns its textual IR.
func Emit(mod *ircode.Module, moduleName string) string {
	util.ResetLabels()
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()
	m := ctx.NewModule(moduleName)
	defer m.Dispose()

	e := &emitter{ctx: ctx, b: b, m: m, globals: map[string]llvm.Value{}, printers: map[string]llvm.Value{}}

	for _, ext := range mod.Externs {
		e.declareExtern(ext)
	}

	initFn := e.declareFunction("__init", "void", nil)
	userFns := make(map[string]llvm.Value, len(mod.Funcs))
	for _, fn := range mod.Funcs {
		name := fn.Name
		if name == "main" {
			name = "_gone_main"
		}
		userFns[fn.Name] = e.declareFunction(name, fn.ReturnType, fn.ParamTypes)
	}

	e.genFunctionBody(initFn, mod.Init, nil, nil)
	for _, fn := range mod.Funcs {
		e.genFunctionBody(userFns[fn.Name], fn, fn.ParamNames, fn.ParamTypes)
	}

	e.genRuntimeMain(userFns)

	return m.String()
}

// declareExtern declares an externally defined function from an extern_func instruction.
func (e *emitter) declareExtern(instr cfg.Instr) llvm.Value {
	name, ret := instr.Args[0], instr.Args[1]
	paramTypes := instr.Args[2:]
	return e.declareFunction(name, ret, paramTypes)
}

// declareFunction adds fn's signature to the module without a body.
func (e *emitter) declareFunction(name, retType string, paramTypes []string) llvm.Value {
	params := make([]llvm.Type, len(paramTypes))
	for i1, p := range paramTypes {
		params[i1] = llvmType(e.ctx, p)
	}
	ftyp := llvm.FunctionType(llvmType(e.ctx, retType), params, false)
	return llvm.AddFunction(e.m, name, ftyp)
}

// genFunctionBody lowers one cfg.Function's arena, starting at Start, into fn's body, following spec.md §4.5's
// entry/exit convention: a stack slot named "return" for non-void functions, loaded and returned from a
// dedicated exit block so every return_T in the function can simply store-and-branch.
func (e *emitter) genFunctionBody(fn llvm.Value, cfun *cfg.Function, paramNames, paramTypes []string) {
	e.fun = fn
	e.locals = map[string]llvm.Value{}
	e.values = map[string]llvm.Value{}

	entry := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelEntry))
	exit := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelExit))
	e.b.SetInsertPointAtEnd(entry)

	var retSlot llvm.Value
	isVoid := cfun.ReturnType == "void"
	if !isVoid {
		retSlot = e.b.CreateAlloca(llvmType(e.ctx, cfun.ReturnType), "return")
	}

	for i1 := range paramNames {
		slot := e.b.CreateAlloca(llvmType(e.ctx, paramTypes[i1]), paramNames[i1])
		e.b.CreateStore(fn.Param(i1), slot)
		e.locals[paramNames[i1]] = slot
	}

	e.linearize(cfun.Arena, cfun.Start, exit, retSlot)

	e.b.SetInsertPointAtEnd(exit)
	if isVoid {
		e.b.CreateRetVoid()
	} else {
		e.b.CreateRet(e.b.CreateLoad(retSlot, ""))
	}
}

// linearize walks the function's blocks starting at start, building LLVM basic blocks and branches, and
// terminates the final fall-through block with a branch to exit. This is the "block linearization for
// branching" pass from spec.md §4.5: BasicBlock emits and falls through, IfBlock opens tblock/fblock/endblock,
// WhileBlock opens whiletest/loop/afterloop.
func (e *emitter) linearize(arena *cfg.Arena, start cfg.Index, exit llvm.BasicBlock, retSlot llvm.Value) {
	idx := start
	for idx != cfg.NoBlock {
		blk := arena.Get(idx)
		switch blk.Kind {
		case cfg.KindIf:
			idx = e.linearizeIf(arena, idx, exit, retSlot)
			continue
		case cfg.KindWhile:
			idx = e.linearizeWhile(arena, idx, exit, retSlot)
			continue
		default:
			e.emitInstructions(blk.Instructions, retSlot, exit)
			if blk.Next == cfg.NoBlock {
				if !e.currentBlockTerminated() {
					e.b.CreateBr(exit)
				}
				return
			}
			idx = blk.Next
		}
	}
}

// linearizeIf lowers one IfBlock, returning the index execution continues at afterward (blk.Next, the merge
// block already wired by ircode.Generate).
func (e *emitter) linearizeIf(arena *cfg.Arena, idx cfg.Index, exit llvm.BasicBlock, retSlot llvm.Value) cfg.Index {
	blk := arena.Get(idx)
	e.emitInstructions(blk.Instructions, retSlot, exit)
	cond := e.values[blk.TestVar]

	tblock := llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelThen))
	var fblock llvm.BasicBlock
	hasElse := blk.ElseBranch != cfg.NoBlock
	if hasElse {
		fblock = llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelElse))
	}
	endblock := llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelEnd))
	if hasElse {
		e.b.CreateCondBr(cond, tblock, fblock)
	} else {
		e.b.CreateCondBr(cond, tblock, endblock)
	}

	e.b.SetInsertPointAtEnd(tblock)
	e.linearizeStraightLine(arena, blk.ThenBranch, endblock, exit, retSlot)

	if hasElse {
		e.b.SetInsertPointAtEnd(fblock)
		e.linearizeStraightLine(arena, blk.ElseBranch, endblock, exit, retSlot)
	}

	e.b.SetInsertPointAtEnd(endblock)
	return blk.Next
}

// linearizeWhile lowers one WhileBlock: an unconditional branch into a re-entrant test block, then the body
// branching back to the test (the loop's only back-edge, per Design Note §9).
func (e *emitter) linearizeWhile(arena *cfg.Arena, idx cfg.Index, exit llvm.BasicBlock, retSlot llvm.Value) cfg.Index {
	blk := arena.Get(idx)
	whiletest := llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelWhileTest))
	e.b.CreateBr(whiletest)
	e.b.SetInsertPointAtEnd(whiletest)
	e.emitInstructions(blk.Instructions, retSlot, exit)
	cond := e.values[blk.TestVar]

	loop := llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelLoop))
	afterloop := llvm.AddBasicBlock(e.fun, util.NewLabel(util.LabelAfterLoop))
	e.b.CreateCondBr(cond, loop, afterloop)

	e.b.SetInsertPointAtEnd(loop)
	e.linearizeStraightLine(arena, blk.Body, whiletest, exit, retSlot)

	e.b.SetInsertPointAtEnd(afterloop)
	return blk.Next
}

// linearizeStraightLine emits a then/else/while body starting at start, following Next until it runs out,
// then branches to cont unless the last block already branched away itself (a `return` store-and-branch-to-
// exit, the "last-branch" marker spec.md §4.5 calls for). A nested if or while along the way is not
// straight-line at all, so each block is dispatched by Kind exactly as the top-level linearize does: a
// nested KindIf/KindWhile delegates to linearizeIf/linearizeWhile and resumes at the index they return,
// matching how interp.execBlock recurses by Kind at every level instead of only at the top.
func (e *emitter) linearizeStraightLine(arena *cfg.Arena, start cfg.Index, cont, exit llvm.BasicBlock, retSlot llvm.Value) {
	idx := start
	for idx != cfg.NoBlock {
		blk := arena.Get(idx)
		switch blk.Kind {
		case cfg.KindIf:
			idx = e.linearizeIf(arena, idx, exit, retSlot)
			continue
		case cfg.KindWhile:
			idx = e.linearizeWhile(arena, idx, exit, retSlot)
			continue
		default:
			e.emitInstructions(blk.Instructions, retSlot, exit)
			if blk.Next == cfg.NoBlock {
				if !e.currentBlockTerminated() {
					e.b.CreateBr(cont)
				}
				return
			}
			idx = blk.Next
		}
	}
	if !e.currentBlockTerminated() {
		e.b.CreateBr(cont)
	}
}

// currentBlockTerminated reports whether the builder's current insert block already ends in a terminator
// (return_T's store-and-branch-to-exit is the only source of this within a straight-line chain), so linearize
// doesn't double-terminate a block LLVM requires to have exactly one terminator.
func (e *emitter) currentBlockTerminated() bool {
	blk := e.b.GetInsertBlock()
	return !blk.LastInstruction().IsNil() && !blk.LastInstruction().IsATerminatorInst().IsNil()
}

// emitInstructions lowers one straight-line instruction list, dispatching each opcode.
func (e *emitter) emitInstructions(instrs []cfg.Instr, retSlot llvm.Value, exit llvm.BasicBlock) {
	for _, instr := range instrs {
		e.emitInstr(instr, retSlot, exit)
	}
}
