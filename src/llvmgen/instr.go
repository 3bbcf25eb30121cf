package llvmgen

import (
	"strconv"
	"strings"

	"tinygo.org/x/go-llvm"

	"gone/src/cfg"
)

// emitInstr lowers one three-address instruction at the builder's current insert point, dispatching on the
// opcode exactly as spec.md §6.3 defines it. call_func, return_T/return_void and parm_T are handled as special
// cases (call_func and return need the emitter's function table and exit block; parm_T is a no-op here because
// genFunctionBody already materializes parameters in the prologue).
func (e *emitter) emitInstr(instr cfg.Instr, retSlot llvm.Value, exit llvm.BasicBlock) {
	switch instr.Op {
	case "call_func":
		e.emitCall(instr)
		return
	case "return_void":
		e.b.CreateBr(exit)
		return
	}
	if strings.HasPrefix(instr.Op, "return_") {
		src := e.values[instr.Args[0]]
		e.b.CreateStore(src, retSlot)
		e.b.CreateBr(exit)
		return
	}
	if strings.HasPrefix(instr.Op, "parm_") {
		return
	}

	base, tag := splitOpcode(instr.Op)
	switch base {
	case "literal":
		e.values[instr.Args[1]] = e.emitConst(tag, instr.Args[0])
	case "alloc":
		name := instr.Args[0]
		e.locals[name] = e.b.CreateAlloca(llvmType(e.ctx, tag), name)
	case "global":
		name := instr.Args[0]
		g := llvm.AddGlobal(e.m, llvmType(e.ctx, tag), name)
		g.SetInitializer(e.zeroValue(tag))
		e.globals[name] = g
	case "load":
		name, target := instr.Args[0], instr.Args[1]
		e.values[target] = e.b.CreateLoad(e.slotFor(name), "")
	case "store":
		src, name := e.values[instr.Args[0]], instr.Args[1]
		e.b.CreateStore(src, e.slotFor(name))
	case "add":
		e.emitArith(instr, tag, (*llvm.Builder).CreateAdd, (*llvm.Builder).CreateFAdd)
	case "sub":
		e.emitArith(instr, tag, (*llvm.Builder).CreateSub, (*llvm.Builder).CreateFSub)
	case "mul":
		e.emitArith(instr, tag, (*llvm.Builder).CreateMul, (*llvm.Builder).CreateFMul)
	case "div":
		e.emitArith(instr, tag, (*llvm.Builder).CreateSDiv, (*llvm.Builder).CreateFDiv)
	case "uadd":
		e.values[instr.Args[1]] = e.values[instr.Args[0]]
	case "usub":
		src := e.values[instr.Args[0]]
		target := instr.Args[1]
		if tag == "float" {
			e.values[target] = e.b.CreateFSub(e.zeroValue(tag), src, "")
		} else {
			e.values[target] = e.b.CreateSub(e.zeroValue(tag), src, "")
		}
	case "not":
		src, target := e.values[instr.Args[0]], instr.Args[1]
		e.values[target] = e.b.CreateICmp(llvm.IntEQ, src, llvm.ConstInt(e.ctx.Int1Type(), 0, false), "")
	case "and":
		e.values[instr.Args[2]] = e.b.CreateAnd(e.values[instr.Args[0]], e.values[instr.Args[1]], "")
	case "or":
		e.values[instr.Args[2]] = e.b.CreateOr(e.values[instr.Args[0]], e.values[instr.Args[1]], "")
	case "lt", "le", "gt", "ge", "eq", "ne":
		e.emitCompare(instr, base, tag)
	case "print":
		e.emitPrint(instr, tag)
	}
}

// splitOpcode separates a type-tagged opcode like "add_int" into its base name and type tag.
func splitOpcode(op string) (base, tag string) {
	idx := strings.LastIndex(op, "_")
	if idx < 0 {
		return op, ""
	}
	return op[:idx], op[idx+1:]
}

// slotFor returns the alloca or global backing name, preferring a local slot (matching the checker/environment
// rule that a local binding shadows a global one of the same name).
func (e *emitter) slotFor(name string) llvm.Value {
	if v, ok := e.locals[name]; ok {
		return v
	}
	return e.globals[name]
}

// emitConst builds a compile-time constant of the given Gone type from its textual form.
func (e *emitter) emitConst(typeName, text string) llvm.Value {
	switch typeName {
	case "int":
		n, _ := strconv.ParseInt(text, 10, 64)
		return llvm.ConstInt(e.ctx.Int32Type(), uint64(n), true)
	case "float":
		v, _ := strconv.ParseFloat(text, 64)
		return llvm.ConstFloat(e.ctx.DoubleType(), v)
	case "bool":
		if text == "true" {
			return llvm.ConstInt(e.ctx.Int1Type(), 1, false)
		}
		return llvm.ConstInt(e.ctx.Int1Type(), 0, false)
	default:
		return llvm.ConstInt(e.ctx.Int32Type(), 0, false)
	}
}

// zeroValue returns the LLVM constant for typeName's Gone-level default value (spec.md §6.2).
func (e *emitter) zeroValue(typeName string) llvm.Value {
	switch typeName {
	case "float":
		return llvm.ConstFloat(e.ctx.DoubleType(), 0.0)
	case "bool":
		return llvm.ConstInt(e.ctx.Int1Type(), 0, false)
	default:
		return llvm.ConstInt(e.ctx.Int32Type(), 0, false)
	}
}

// emitArith applies the integer builder method for int operands and the float method for float operands.
func (e *emitter) emitArith(instr cfg.Instr, tag string, intOp, floatOp func(*llvm.Builder, llvm.Value, llvm.Value, string) llvm.Value) {
	left, right, target := e.values[instr.Args[0]], e.values[instr.Args[1]], instr.Args[2]
	if tag == "float" {
		e.values[target] = floatOp(&e.b, left, right, "")
	} else {
		e.values[target] = intOp(&e.b, left, right, "")
	}
}

// emitCompare lowers a relational opcode to icmp (signed) or fcmp (ordered) per spec.md §4.5.
func (e *emitter) emitCompare(instr cfg.Instr, base, tag string) {
	left, right, target := e.values[instr.Args[0]], e.values[instr.Args[1]], instr.Args[2]
	if tag == "float" {
		pred := map[string]llvm.FloatPredicate{
			"lt": llvm.FloatOLT, "le": llvm.FloatOLE, "gt": llvm.FloatOGT,
			"ge": llvm.FloatOGE, "eq": llvm.FloatOEQ, "ne": llvm.FloatONE,
		}[base]
		e.values[target] = e.b.CreateFCmp(pred, left, right, "")
		return
	}
	pred := map[string]llvm.IntPredicate{
		"lt": llvm.IntSLT, "le": llvm.IntSLE, "gt": llvm.IntSGT,
		"ge": llvm.IntSGE, "eq": llvm.IntEQ, "ne": llvm.IntNE,
	}[base]
	e.values[target] = e.b.CreateICmp(pred, left, right, "")
}

// emitPrint calls the runtime printer matching tag, zero-extending a bool operand to i32 per the runtime ABI.
func (e *emitter) emitPrint(instr cfg.Instr, tag string) {
	pf := e.getPrinter(tag)
	arg := e.values[instr.Args[0]]
	if tag == "bool" {
		arg = e.b.CreateZExt(arg, e.ctx.Int32Type(), "")
	}
	e.b.CreateCall(pf, []llvm.Value{arg}, "")
}

// getPrinter returns (declaring if necessary) the runtime printer function for tag.
func (e *emitter) getPrinter(tag string) llvm.Value {
	name := "_print_" + tag
	if pf, ok := e.printers[name]; ok {
		return pf
	}
	var argType llvm.Type
	switch tag {
	case "float":
		argType = e.ctx.DoubleType()
	default:
		argType = e.ctx.Int32Type()
	}
	ftyp := llvm.FunctionType(e.ctx.VoidType(), []llvm.Type{argType}, false)
	pf := llvm.AddFunction(e.m, name, ftyp)
	e.printers[name] = pf
	return pf
}

// emitCall resolves and invokes a user function or extern declaration by name.
func (e *emitter) emitCall(instr cfg.Instr) {
	name := instr.Args[0]
	target := instr.Args[len(instr.Args)-1]
	argNames := instr.Args[1 : len(instr.Args)-1]

	fn := e.m.NamedFunction(name)
	args := make([]llvm.Value, len(argNames))
	for i1, a := range argNames {
		args[i1] = e.values[a]
	}
	res := e.b.CreateCall(fn, args, "")
	if fn.Type().ElementType().ReturnType().TypeKind() != llvm.VoidTypeKind {
		e.values[target] = res
	}
}
