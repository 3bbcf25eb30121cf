package frontend

// parser.go implements a hand-written recursive descent / precedence climbing parser over the lexer's token
// stream, producing an *ast.Program. The teacher's parser is generated by goyacc from a grammar file that was
// never retrieved as part of this pack (no .y source or generated parser.yy.go exists anywhere under the
// teacher tree), so this parser is hand-written instead, directly encoding the precedence table spec.md lays
// out for §4.2. A syntax error is reported through the shared gonerr.Reporter and then abandons the parse
// immediately: the parser unwinds via the unexported parseError sentinel, the same panic/recover control-flow
// idiom the standard library's own text/template parser uses, and Parse returns whatever partial tree was built
// so far. No recovery/resynchronization is attempted, since a non-empty error count halts the pipeline before
// the checker runs regardless of how much of the file was parsed.

import (
	"errors"

	"gone/src/ast"
	"gone/src/gonerr"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// parser consumes the item stream produced by a lexer and builds a syntax tree.
type parser struct {
	l      *lexer
	rep    *gonerr.Reporter
	cur    item
	ahead  *item
	lexErr error
}

// parseError is panicked to unwind all the way out to parseProgram and abandon the parse.
type parseError struct{}

// ---------------------
// ----- Functions -----
// ---------------------

// newParser creates a parser reading from l, reporting diagnostics to rep.
func newParser(l *lexer, rep *gonerr.Reporter) *parser {
	p := &parser{l: l, rep: rep}
	p.advance()
	return p
}

// advance consumes and returns the current token, replacing it with the next one.
func (p *parser) advance() item {
	t := p.cur
	if p.ahead != nil {
		p.cur = *p.ahead
		p.ahead = nil
	} else {
		p.cur = p.l.nextItem()
	}
	if p.cur.typ == itemError && p.lexErr == nil {
		p.lexErr = errors.New(p.cur.val)
	}
	return t
}

// peekAhead returns the token after the current one, without consuming either.
func (p *parser) peekAhead() item {
	if p.ahead == nil {
		t := p.l.nextItem()
		p.ahead = &t
	}
	return *p.ahead
}

// errorf reports a diagnostic at the current token's line and unwinds parsing of the current construct.
func (p *parser) errorf(format string, args ...interface{}) {
	p.rep.Report(p.cur.line, format, args...)
	panic(parseError{})
}

// expect consumes the current token if it has type typ, otherwise reports an error.
func (p *parser) expect(typ itemType, what string) item {
	if p.cur.typ != typ {
		p.errorf("expected %s, found %s", what, tokenName(p.cur.typ))
	}
	return p.advance()
}

// --------------------------------
// ----- Program and top level -----
// --------------------------------

// parseProgram parses an entire source file. On the first syntax error it stops and returns whatever
// top-level items were built before the error, having already reported the error to the Reporter.
func (p *parser) parseProgram() (prog *ast.Program) {
	line := p.cur.line
	var decls []ast.Node
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				prog = ast.NewProgram(line, decls)
				return
			}
			panic(r)
		}
	}()
	for p.cur.typ != itemEOF && p.lexErr == nil {
		decls = append(decls, p.parseTopLevel())
	}
	return ast.NewProgram(line, decls)
}

// parseTopLevel parses one top-level item: a declaration, or a bare statement belonging to the implicit
// top-level initializer.
func (p *parser) parseTopLevel() ast.Node {
	switch p.cur.typ {
	case FUNC:
		return p.parseFuncDecl()
	case EXTERN:
		return p.parseExternFuncDecl()
	default:
		return p.parseStatement()
	}
}

// -----------------------
// ----- Declarations -----
// -----------------------

// parseConstDecl parses "const" IDENTIFIER "=" Expr ";".
func (p *parser) parseConstDecl() *ast.ConstDecl {
	line := p.cur.line
	p.advance() // const
	name := p.expect(IDENTIFIER, "identifier").val
	p.expect(itemType('='), "'='")
	expr := p.parseExpr()
	p.expect(itemType(';'), "';'")
	return ast.NewConstDecl(line, name, expr)
}

// parseVarDecl parses "var" IDENTIFIER Typename ("=" Expr)? ";".
func (p *parser) parseVarDecl() *ast.VarDecl {
	line := p.cur.line
	p.advance() // var
	name := p.expect(IDENTIFIER, "identifier").val
	tn := p.parseTypename()
	var expr ast.Expr
	if p.cur.typ == itemType('=') {
		p.advance()
		expr = p.parseExpr()
	}
	p.expect(itemType(';'), "';'")
	return ast.NewVarDecl(line, name, tn, expr)
}

// parseTypename parses a bare type identifier, e.g. "int".
func (p *parser) parseTypename() *ast.Typename {
	line := p.cur.line
	name := p.expect(IDENTIFIER, "type name").val
	return ast.NewTypename(line, name)
}

// parseParamDecl parses one formal parameter: IDENTIFIER Typename.
func (p *parser) parseParamDecl() *ast.ParamDecl {
	line := p.cur.line
	name := p.expect(IDENTIFIER, "parameter name").val
	tn := p.parseTypename()
	return ast.NewParamDecl(line, name, tn)
}

// parseFuncPrototype parses "func" IDENTIFIER "(" params ")" Typename.
func (p *parser) parseFuncPrototype() *ast.FuncPrototype {
	line := p.cur.line
	p.advance() // func
	name := p.expect(IDENTIFIER, "function name").val
	p.expect(itemType('('), "'('")
	var params []*ast.ParamDecl
	if p.cur.typ != itemType(')') {
		params = append(params, p.parseParamDecl())
		for p.cur.typ == itemType(',') {
			p.advance()
			params = append(params, p.parseParamDecl())
		}
	}
	p.expect(itemType(')'), "')'")
	tn := p.parseTypename()
	return ast.NewFuncPrototype(line, name, params, tn)
}

// parseExternFuncDecl parses "extern" FuncPrototype ";".
func (p *parser) parseExternFuncDecl() *ast.ExternFuncDecl {
	line := p.cur.line
	p.advance() // extern
	proto := p.parseFuncPrototype()
	p.expect(itemType(';'), "';'")
	return ast.NewExternFuncDecl(line, proto)
}

// parseFuncDecl parses FuncPrototype "{" Statement* "}".
func (p *parser) parseFuncDecl() *ast.FuncDecl {
	line := p.cur.line
	proto := p.parseFuncPrototype()
	body := p.parseBlock()
	return ast.NewFuncDecl(line, proto, body)
}

// parseBlock parses "{" Statement* "}".
func (p *parser) parseBlock() *ast.Statements {
	line := p.cur.line
	p.expect(itemType('{'), "'{'")
	var list []ast.Node
	for p.cur.typ != itemType('}') && p.cur.typ != itemEOF {
		list = append(list, p.parseStatement())
	}
	p.expect(itemType('}'), "'}'")
	return ast.NewStatements(line, list)
}

// ---------------------
// ----- Statements -----
// ---------------------

// parseStatement parses one statement.
func (p *parser) parseStatement() ast.Node {
	switch p.cur.typ {
	case CONST:
		return p.parseConstDecl()
	case VAR:
		return p.parseVarDecl()
	case PRINT:
		return p.parsePrint()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case RETURN:
		return p.parseReturn()
	case IDENTIFIER:
		return p.parseAssignOrCallStatement()
	case FUNC, EXTERN:
		p.errorf("function declarations are only allowed at the top level")
		return nil
	default:
		p.errorf("unexpected %s, expected a statement", tokenName(p.cur.typ))
		return nil
	}
}

// parsePrint parses "print" Expr ";".
func (p *parser) parsePrint() *ast.Print {
	line := p.cur.line
	p.advance() // print
	expr := p.parseExpr()
	p.expect(itemType(';'), "';'")
	return ast.NewPrint(line, expr)
}

// parseIf parses "if" "("? Expr ")"? Block ("else" Block)?. The parentheses around the condition are
// optional, matching both spellings spec.md's own examples use.
func (p *parser) parseIf() ast.Node {
	line := p.cur.line
	p.advance() // if
	paren := p.cur.typ == itemType('(')
	if paren {
		p.advance()
	}
	cond := p.parseExpr()
	if paren {
		p.expect(itemType(')'), "')'")
	}
	then := p.parseBlock()
	if p.cur.typ == ELSE {
		p.advance()
		otherwise := p.parseBlock()
		return ast.NewIfElse(line, cond, then, otherwise)
	}
	return ast.NewIf(line, cond, then)
}

// parseWhile parses "while" "("? Expr ")"? Block. The parentheses around the condition are optional,
// matching both spellings spec.md's own examples use.
func (p *parser) parseWhile() *ast.While {
	line := p.cur.line
	p.advance() // while
	paren := p.cur.typ == itemType('(')
	if paren {
		p.advance()
	}
	cond := p.parseExpr()
	if paren {
		p.expect(itemType(')'), "')'")
	}
	body := p.parseBlock()
	return ast.NewWhile(line, cond, body)
}

// parseReturn parses "return" Expr? ";".
func (p *parser) parseReturn() *ast.Return {
	line := p.cur.line
	p.advance() // return
	var expr ast.Expr
	if p.cur.typ != itemType(';') {
		expr = p.parseExpr()
	}
	p.expect(itemType(';'), "';'")
	return ast.NewReturn(line, expr)
}

// parseAssignOrCallStatement disambiguates "IDENTIFIER = Expr ;" from "IDENTIFIER ( args ) ;" by looking one
// token past the identifier.
func (p *parser) parseAssignOrCallStatement() ast.Node {
	line := p.cur.line
	name := p.cur.val
	if p.peekAhead().typ == itemType('(') {
		p.advance() // identifier
		call := p.parseCallTail(line, name)
		p.expect(itemType(';'), "';'")
		return call
	}
	p.advance() // identifier
	target := ast.NewStoreVar(line, name)
	p.expect(itemType('='), "'='")
	expr := p.parseExpr()
	p.expect(itemType(';'), "';'")
	return ast.NewAssign(line, target, expr)
}

// ----------------------
// ----- Expressions -----
// ----------------------
//
// Precedence, loosest to tightest: || , && , relational (non-associative: < > <= >= == !=), + - , * /,
// unary + - ! (right associative), primary.

// parseExpr parses a full expression at the loosest precedence level.
func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

// parseOr parses a chain of || expressions, left associative.
func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur.typ == OR {
		line := p.cur.line
		p.advance()
		right := p.parseAnd()
		left = ast.NewBool(line, "||", left, right)
	}
	return left
}

// parseAnd parses a chain of && expressions, left associative.
func (p *parser) parseAnd() ast.Expr {
	left := p.parseRelational()
	for p.cur.typ == AND {
		line := p.cur.line
		p.advance()
		right := p.parseRelational()
		left = ast.NewBool(line, "&&", left, right)
	}
	return left
}

// relOps maps each relational token to its source operator spelling.
var relOps = map[itemType]string{
	LT: "<", GT: ">", LE: "<=", GE: ">=", EQ: "==", NE: "!=",
}

// parseRelational parses at most one relational comparison; relational operators do not chain.
func (p *parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	if op, ok := relOps[p.cur.typ]; ok {
		line := p.cur.line
		p.advance()
		right := p.parseAdditive()
		return ast.NewBool(line, op, left, right)
	}
	return left
}

// parseAdditive parses a chain of + and - expressions, left associative.
func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.typ == itemType('+') || p.cur.typ == itemType('-') {
		op := string(rune(p.cur.typ))
		line := p.cur.line
		p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(line, op, left, right)
	}
	return left
}

// parseMultiplicative parses a chain of * and / expressions, left associative.
func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.cur.typ == itemType('*') || p.cur.typ == itemType('/') {
		op := string(rune(p.cur.typ))
		line := p.cur.line
		p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(line, op, left, right)
	}
	return left
}

// parseUnary parses a right-associative chain of unary + - ! operators, bottoming out at a primary expression.
func (p *parser) parseUnary() ast.Expr {
	switch p.cur.typ {
	case itemType('+'), itemType('-'):
		op := string(rune(p.cur.typ))
		line := p.cur.line
		p.advance()
		return ast.NewUnary(line, op, p.parseUnary())
	case NOT:
		line := p.cur.line
		p.advance()
		return ast.NewUnary(line, "!", p.parseUnary())
	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses a literal, a variable load, a call, or a parenthesized expression.
func (p *parser) parsePrimary() ast.Expr {
	line := p.cur.line
	switch p.cur.typ {
	case INTEGER:
		v := p.advance().val
		n, err := parseInteger(v)
		if err != nil {
			p.errorf("malformed integer literal %q", v)
		}
		return ast.NewLiteral(line, n)
	case FLOAT:
		v := p.advance().val
		f, err := parseFloat(v)
		if err != nil {
			p.errorf("malformed float literal %q", v)
		}
		return ast.NewLiteral(line, f)
	case STRING:
		v := p.advance().val
		return ast.NewLiteral(line, v[1:len(v)-1])
	case TRUE:
		p.advance()
		return ast.NewLiteral(line, true)
	case FALSE:
		p.advance()
		return ast.NewLiteral(line, false)
	case IDENTIFIER:
		name := p.advance().val
		if p.cur.typ == itemType('(') {
			return p.parseCallTail(line, name)
		}
		return ast.NewLoadVar(line, name)
	case itemType('('):
		p.advance()
		e := p.parseExpr()
		p.expect(itemType(')'), "')'")
		return e
	default:
		p.errorf("unexpected %s, expected an expression", tokenName(p.cur.typ))
		return nil
	}
}

// parseCallTail parses the "( args )" suffix of a call expression whose callee name has already been consumed.
func (p *parser) parseCallTail(line int, name string) *ast.Call {
	p.expect(itemType('('), "'('")
	var args []ast.Expr
	if p.cur.typ != itemType(')') {
		args = append(args, p.parseExpr())
		for p.cur.typ == itemType(',') {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(itemType(')'), "')'")
	return ast.NewCall(line, name, args)
}
