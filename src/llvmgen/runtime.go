package llvmgen

import "tinygo.org/x/go-llvm"

// genRuntimeMain emits the C-linkage main the runtime ABI (spec.md §6.4) describes: it calls __init to run
// every top-level initializer, then calls the user's entry point (renamed _gone_main if the source named it
// main) and returns its value, or 0 if the source never defined one.
func (e *emitter) genRuntimeMain(userFns map[string]llvm.Value) {
	ftyp := llvm.FunctionType(e.ctx.Int32Type(), nil, false)
	main := llvm.AddFunction(e.m, "main", ftyp)
	bb := llvm.AddBasicBlock(main, "")
	e.b.SetInsertPointAtEnd(bb)

	initFn := e.m.NamedFunction("__init")
	e.b.CreateCall(initFn, nil, "")

	if _, ok := userFns["main"]; !ok {
		e.b.CreateRet(llvm.ConstInt(e.ctx.Int32Type(), 0, true))
		return
	}
	ret := e.b.CreateCall(e.m.NamedFunction("_gone_main"), nil, "")
	if ret.Type().TypeKind() == llvm.IntegerTypeKind {
		e.b.CreateRet(ret)
	} else {
		e.b.CreateRet(llvm.ConstInt(e.ctx.Int32Type(), 0, true))
	}
}
