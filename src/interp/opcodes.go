package interp

import (
	"fmt"
	"strconv"
	"strings"

	"gone/src/cfg"
)

// execInstrs runs one straight-line instruction list, the Go equivalent of interp.py's per-opcode run_*
// dispatch.
func (in *Interpreter) execInstrs(instrs []cfg.Instr, fr *frame) {
	for _, instr := range instrs {
		in.execInstr(instr, fr)
		if fr.returned {
			return
		}
	}
}

// execInstr dispatches one instruction by opcode.
func (in *Interpreter) execInstr(instr cfg.Instr, fr *frame) {
	switch instr.Op {
	case "return_void":
		fr.retVal = nil
		fr.returned = true
		return
	case "call_func":
		in.execCall(instr, fr)
		return
	}
	if strings.HasPrefix(instr.Op, "return_") {
		fr.retVal = fr.get(in.globals, instr.Args[0])
		fr.returned = true
		return
	}

	base, tag := splitOpcode(instr.Op)
	switch base {
	case "literal":
		fr.vars[instr.Args[1]] = parseLiteral(tag, instr.Args[0])
	case "alloc":
		fr.vars[instr.Args[0]] = zeroValue(tag)
	case "global":
		in.globals[instr.Args[0]] = zeroValue(tag)
	case "parm":
		idx, _ := strconv.Atoi(instr.Args[1])
		if idx < len(fr.args) {
			fr.vars[instr.Args[0]] = fr.args[idx]
		}
	case "load":
		fr.vars[instr.Args[1]] = fr.get(in.globals, instr.Args[0])
	case "store":
		fr.set(in.globals, instr.Args[1], fr.get(in.globals, instr.Args[0]))
	case "add":
		arith(fr, instr, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b }, func(a, b string) string { return a + b }, tag)
	case "sub":
		arith(fr, instr, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }, nil, tag)
	case "mul":
		arith(fr, instr, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }, nil, tag)
	case "div":
		arith(fr, instr, func(a, b float64) float64 { return a / b }, func(a, b int64) int64 { return a / b }, nil, tag)
	case "uadd":
		fr.vars[instr.Args[1]] = fr.vars[instr.Args[0]]
	case "usub":
		if tag == "float" {
			fr.vars[instr.Args[1]] = -fr.vars[instr.Args[0]].(float64)
		} else {
			fr.vars[instr.Args[1]] = -fr.vars[instr.Args[0]].(int64)
		}
	case "not":
		fr.vars[instr.Args[1]] = !fr.vars[instr.Args[0]].(bool)
	case "and":
		fr.vars[instr.Args[2]] = fr.vars[instr.Args[0]].(bool) && fr.vars[instr.Args[1]].(bool)
	case "or":
		fr.vars[instr.Args[2]] = fr.vars[instr.Args[0]].(bool) || fr.vars[instr.Args[1]].(bool)
	case "lt", "le", "gt", "ge", "eq", "ne":
		compare(fr, instr, base, tag)
	case "print":
		fmt.Fprintln(in.out, fr.vars[instr.Args[0]])
	}
}

func splitOpcode(op string) (base, tag string) {
	idx := strings.LastIndex(op, "_")
	if idx < 0 {
		return op, ""
	}
	return op[:idx], op[idx+1:]
}

func parseLiteral(tag, text string) interface{} {
	switch tag {
	case "int":
		n, _ := strconv.ParseInt(text, 10, 64)
		return n
	case "float":
		f, _ := strconv.ParseFloat(text, 64)
		return f
	case "bool":
		return text == "true"
	default:
		return text
	}
}

func zeroValue(tag string) interface{} {
	switch tag {
	case "int":
		return int64(0)
	case "float":
		return 0.0
	case "bool":
		return false
	default:
		return ""
	}
}

// arith applies the matching typed operation, dividing integers with truncation per spec.md §4.4.
func arith(fr *frame, instr cfg.Instr, floatOp func(a, b float64) float64, intOp func(a, b int64) int64, stringOp func(a, b string) string, tag string) {
	left, right, target := instr.Args[0], instr.Args[1], instr.Args[2]
	switch tag {
	case "float":
		fr.vars[target] = floatOp(fr.vars[left].(float64), fr.vars[right].(float64))
	case "string":
		fr.vars[target] = stringOp(fr.vars[left].(string), fr.vars[right].(string))
	default:
		fr.vars[target] = intOp(fr.vars[left].(int64), fr.vars[right].(int64))
	}
}

func compare(fr *frame, instr cfg.Instr, base, tag string) {
	left, right, target := instr.Args[0], instr.Args[1], instr.Args[2]
	var result bool
	switch tag {
	case "float":
		l, r := fr.vars[left].(float64), fr.vars[right].(float64)
		result = compareOrdered(base, l < r, l > r, l == r)
	case "string":
		l, r := fr.vars[left].(string), fr.vars[right].(string)
		result = compareOrdered(base, l < r, l > r, l == r)
	default:
		l, r := fr.vars[left].(int64), fr.vars[right].(int64)
		result = compareOrdered(base, l < r, l > r, l == r)
	}
	fr.vars[target] = result
}

func compareOrdered(base string, lt, gt, eq bool) bool {
	switch base {
	case "lt":
		return lt
	case "le":
		return lt || eq
	case "gt":
		return gt
	case "ge":
		return gt || eq
	case "eq":
		return eq
	case "ne":
		return !eq
	default:
		return false
	}
}

// execCall invokes a user function or a registered extern, storing the result (if any) in the target
// temporary.
func (in *Interpreter) execCall(instr cfg.Instr, fr *frame) {
	name := instr.Args[0]
	target := instr.Args[len(instr.Args)-1]
	argNames := instr.Args[1 : len(instr.Args)-1]
	args := make([]interface{}, len(argNames))
	for i1, a := range argNames {
		args[i1] = fr.get(in.globals, a)
	}

	if fn, ok := in.funcs[name]; ok {
		fr.vars[target] = in.execFunction(fn, args)
		return
	}
	if ext, ok := in.externs[name]; ok {
		fr.vars[target] = ext(args)
		return
	}
	panic(fmt.Sprintf("interp: no function or registered extern named %q", name))
}
