package ast

import "fmt"

// ----------------------------------------------------------------------
// Generic traversal. The checker and IR generator both dispatch on node
// kind directly via type switches (Design Note §9), but a single generic
// walker is still useful for debugging dumps and tests, mirroring
// original_source/gone/ast.py's NodeVisitor.generic_visit/flatten.
// ----------------------------------------------------------------------

// Visit is called once per node while walking the tree with Walk. Returning false prunes that node's children.
type Visit func(n Node, depth int) bool

// Walk traverses n and all its descendants in source order, calling visit for each node.
func Walk(n Node, visit Visit) {
	walk(n, 0, visit)
}

func walk(n Node, depth int, visit Visit) {
	if n == nil || isNilNode(n) {
		return
	}
	if !visit(n, depth) {
		return
	}
	for _, c := range children(n) {
		walk(c, depth+1, visit)
	}
}

// isNilNode guards against typed-nil interface values (e.g. a *Statements field left unset).
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Statements:
		return v == nil
	case *FuncDecl:
		return v == nil
	}
	return false
}

// children returns the direct descendants of n in source order.
func children(n Node) []Node {
	switch v := n.(type) {
	case *Program:
		return v.Decls
	case *Statements:
		return v.List
	case *ConstDecl:
		return []Node{v.Expr}
	case *VarDecl:
		out := []Node{v.Typename}
		if v.Expr != nil {
			out = append(out, v.Expr)
		}
		return out
	case *ParamDecl:
		return []Node{v.Typename}
	case *FuncPrototype:
		out := make([]Node, 0, len(v.Params)+1)
		for _, p := range v.Params {
			out = append(out, p)
		}
		return append(out, v.Typename)
	case *ExternFuncDecl:
		return []Node{v.Prototype}
	case *FuncDecl:
		return []Node{v.Prototype, v.Body}
	case *Print:
		return []Node{v.Expr}
	case *Assign:
		return []Node{v.Target, v.Expr}
	case *If:
		return []Node{v.Cond, v.Then}
	case *IfElse:
		return []Node{v.Cond, v.Then, v.Otherwise}
	case *While:
		return []Node{v.Cond, v.Body}
	case *Return:
		if v.Expr == nil {
			return nil
		}
		return []Node{v.Expr}
	case *Binary:
		return []Node{v.Left, v.Right}
	case *Bool:
		return []Node{v.Left, v.Right}
	case *Unary:
		return []Node{v.Expr}
	case *Call:
		out := make([]Node, 0, len(v.Args))
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	default:
		// Literal, LoadVar, StoreVar, Typename are leaves.
		return nil
	}
}

// Dump writes an indented textual representation of the tree rooted at n, styled on ir.Node.Print.
func Dump(n Node) string {
	s := ""
	Walk(n, func(n Node, depth int) bool {
		s += fmt.Sprintf("%*c%s\n", depth<<1, ' ', describe(n))
		return true
	})
	return s
}

func describe(n Node) string {
	switch v := n.(type) {
	case *Literal:
		return fmt.Sprintf("Literal[%v]", v.Value)
	case *LoadVar:
		return fmt.Sprintf("LoadVar[%s]", v.Name)
	case *StoreVar:
		return fmt.Sprintf("StoreVar[%s]", v.Name)
	case *Binary:
		return fmt.Sprintf("Binary[%s]", v.Op)
	case *Bool:
		return fmt.Sprintf("Bool[%s]", v.Op)
	case *Unary:
		return fmt.Sprintf("Unary[%s]", v.Op)
	case *Call:
		return fmt.Sprintf("Call[%s]", v.Name)
	case *Typename:
		return fmt.Sprintf("Typename[%s]", v.Name)
	case *VarDecl:
		return fmt.Sprintf("VarDecl[%s]", v.Name)
	case *ConstDecl:
		return fmt.Sprintf("ConstDecl[%s]", v.Name)
	case *ParamDecl:
		return fmt.Sprintf("ParamDecl[%s]", v.Name)
	case *FuncPrototype:
		return fmt.Sprintf("FuncPrototype[%s]", v.Name)
	default:
		return fmt.Sprintf("%T", n)
	}
}
