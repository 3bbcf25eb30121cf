// tree.go provides the two entry points into this package: Parse, which runs the lexer and parser together to
// produce a syntax tree, and TokenStream, which drains the lexer alone for the tokens CLI subcommand. The
// scanner runs concurrently with whichever consumes it, exactly as in the teacher's design: one goroutine scans
// source text for lexemes while another reads them off the items channel.

package frontend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"gone/src/ast"
	"gone/src/gonerr"
	"gone/src/util"
)

// Parse scans and parses src, returning the resulting syntax tree. Diagnostics encountered along the way are
// reported to rep rather than returned directly, so the caller can decide whether to keep going after a
// recoverable error. Parse itself returns a non-nil error, and no tree, when the scanner reports a lexical
// error: the error is the first lexical error seen, and parsing stops at that point.
func Parse(src string, rep *gonerr.Reporter) (*ast.Program, error) {
	l := lex(src)
	p := newParser(l, rep)
	prog := p.parseProgram()
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return prog, nil
}

// TokenStream scans src and writes a table of every token to standard output, without parsing.
func TokenStream(src string) error {
	l := lex(src)

	wr := util.NewWriter()
	defer wr.Close()
	sb := strings.Builder{}
	tw := tabwriter.NewWriter(&sb, 10, 20, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tLine\n")
	for {
		t := l.nextItem()
		switch t.typ {
		case itemEOF:
			err := tw.Flush()
			wr.WriteString(sb.String())
			return err
		case itemError:
			_ = tw.Flush()
			wr.WriteString(sb.String())
			return errors.New(t.val)
		default:
			if len(t.val) > 20 {
				_, _ = fmt.Fprintf(tw, "%.17q...\t%s\tline %d\n", t.val, tokenName(t.typ), t.line)
			} else {
				_, _ = fmt.Fprintf(tw, "%q\t%s\tline %d\n", t.val, tokenName(t.typ), t.line)
			}
		}
	}
}

// parseInteger parses a lexed integer literal. Gone integers are 64-bit.
func parseInteger(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// parseFloat parses a lexed float literal. Gone floats are 64-bit.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
