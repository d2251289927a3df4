// Package generator serializes a luaast tree back into Lua source text.
//
// Output is one statement per line with no indentation; presentation
// (indent, minification, randomized whitespace) is the formatter's job.
// The generator's contract is narrower and stricter: the emitted text must
// re-parse to an equivalent tree.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/scrambler"
)

// Operator precedence, per the Lua reference manual. Higher binds tighter.
const (
	precOr       = 1
	precAnd      = 2
	precCompare  = 3
	precConcat   = 4 // right associative
	precAdditive = 5
	precMult     = 6
	precUnary    = 7
	precPow      = 8 // right associative
)

var binaryPrec = map[string]int{
	"or": precOr, "and": precAnd,
	"<": precCompare, ">": precCompare, "<=": precCompare,
	">=": precCompare, "~=": precCompare, "==": precCompare,
	"..": precConcat,
	"+":  precAdditive, "-": precAdditive,
	"*": precMult, "/": precMult, "%": precMult,
	"^": precPow,
}

func rightAssoc(op string) bool {
	return op == ".." || op == "^"
}

// Generate renders the chunk as Lua source. An empty chunk produces the
// empty string. An error is returned only on a malformed tree (a nil
// expression slot or an unknown node kind), which indicates a broken pass
// upstream rather than bad user input.
func Generate(chunk *luaast.Chunk) (string, error) {
	g := &gen{}
	for _, s := range chunk.Body {
		g.stmt(s)
	}
	if g.err != nil {
		return "", g.err
	}
	return strings.Join(g.lines, "\n"), nil
}

type gen struct {
	lines []string
	err   error
}

func (g *gen) fail(format string, args ...interface{}) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

// line appends a finished statement line, guarding statements that begin
// with `(` behind a `;` so they cannot be absorbed as a call suffix of the
// previous line.
func (g *gen) line(s string) {
	if strings.HasPrefix(s, "(") {
		s = ";" + s
	}
	g.lines = append(g.lines, s)
}

func (g *gen) body(stmts []luaast.Stmt) {
	for _, s := range stmts {
		g.stmt(s)
	}
}

func (g *gen) stmt(s luaast.Stmt) {
	switch t := s.(type) {
	case *luaast.LocalStatement:
		var b strings.Builder
		b.WriteString("local ")
		for i, n := range t.Names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.Name)
		}
		if len(t.Init) > 0 {
			b.WriteString(" = ")
			g.exprList(&b, t.Init)
		}
		g.line(b.String())

	case *luaast.AssignmentStatement:
		var b strings.Builder
		for i, target := range t.Targets {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.expr(target, 0))
		}
		b.WriteString(" = ")
		g.exprList(&b, t.Values)
		g.line(b.String())

	case *luaast.CallStatement:
		g.line(g.expr(t.Call, 0))

	case *luaast.DoStatement:
		g.line("do")
		g.body(t.Body)
		g.line("end")

	case *luaast.WhileStatement:
		g.line("while " + g.expr(t.Condition, 0) + " do")
		g.body(t.Body)
		g.line("end")

	case *luaast.RepeatStatement:
		g.line("repeat")
		g.body(t.Body)
		g.line("until " + g.expr(t.Condition, 0))

	case *luaast.IfStatement:
		for i, cl := range t.Clauses {
			switch {
			case i == 0:
				g.line("if " + g.expr(cl.Condition, 0) + " then")
			case cl.Condition != nil:
				g.line("elseif " + g.expr(cl.Condition, 0) + " then")
			default:
				g.line("else")
			}
			g.body(cl.Body)
		}
		g.line("end")

	case *luaast.ForNumericStatement:
		var b strings.Builder
		b.WriteString("for ")
		b.WriteString(t.Variable.Name)
		b.WriteString(" = ")
		b.WriteString(g.expr(t.Start, 0))
		b.WriteString(", ")
		b.WriteString(g.expr(t.Limit, 0))
		if t.Step != nil {
			b.WriteString(", ")
			b.WriteString(g.expr(t.Step, 0))
		}
		b.WriteString(" do")
		g.line(b.String())
		g.body(t.Body)
		g.line("end")

	case *luaast.ForGenericStatement:
		var b strings.Builder
		b.WriteString("for ")
		for i, v := range t.Variables {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.Name)
		}
		b.WriteString(" in ")
		g.exprList(&b, t.Iterators)
		b.WriteString(" do")
		g.line(b.String())
		g.body(t.Body)
		g.line("end")

	case *luaast.FunctionDeclaration:
		var b strings.Builder
		if t.IsLocal {
			b.WriteString("local ")
		}
		b.WriteString("function ")
		b.WriteString(g.expr(t.Target, precUnary))
		if t.Method != "" {
			b.WriteString(":")
			b.WriteString(t.Method)
		}
		b.WriteString(g.paramList(t.Params, t.IsVararg))
		g.line(b.String())
		g.body(t.Body)
		g.line("end")

	case *luaast.ReturnStatement:
		if len(t.Arguments) == 0 {
			g.line("return")
			return
		}
		var b strings.Builder
		b.WriteString("return ")
		g.exprList(&b, t.Arguments)
		g.line(b.String())

	case *luaast.BreakStatement:
		g.line("break")

	case *luaast.GotoStatement:
		g.line("goto " + t.Label)

	case *luaast.LabelStatement:
		g.line("::" + t.Name + "::")

	default:
		g.fail("generator: unknown statement kind %T", s)
	}
}

func (g *gen) exprList(b *strings.Builder, exprs []luaast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.expr(e, 0))
	}
}

// expr renders e; minPrec is the lowest precedence the surrounding context
// accepts without parentheses.
func (g *gen) expr(e luaast.Expr, minPrec int) string {
	switch t := e.(type) {
	case nil:
		g.fail("generator: nil expression")
		return "nil"

	case *luaast.Identifier:
		return t.Name

	case *luaast.NumericLiteral:
		return g.number(t)

	case *luaast.StringLiteral:
		return quoteString(t.Value)

	case *luaast.BooleanLiteral:
		if t.Value {
			return "true"
		}
		return "false"

	case *luaast.NilLiteral:
		return "nil"

	case *luaast.VarargLiteral:
		return "..."

	case *luaast.FunctionExpression:
		var b strings.Builder
		b.WriteString("function")
		b.WriteString(g.paramList(t.Params, t.IsVararg))
		b.WriteString("\n")
		sub := &gen{}
		sub.body(t.Body)
		if sub.err != nil {
			g.fail("%v", sub.err)
		}
		for _, l := range sub.lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("end")
		return b.String()

	case *luaast.CallExpression:
		var b strings.Builder
		b.WriteString(g.prefix(t.Callee))
		b.WriteString("(")
		g.exprList(&b, t.Arguments)
		b.WriteString(")")
		return b.String()

	case *luaast.MethodCallExpression:
		var b strings.Builder
		b.WriteString(g.prefix(t.Receiver))
		b.WriteString(":")
		b.WriteString(t.Method)
		b.WriteString("(")
		g.exprList(&b, t.Arguments)
		b.WriteString(")")
		return b.String()

	case *luaast.BinaryExpression:
		return g.binary(t.Operator, t.Left, t.Right, minPrec)

	case *luaast.LogicalExpression:
		return g.binary(t.Operator, t.Left, t.Right, minPrec)

	case *luaast.UnaryExpression:
		operand := g.expr(t.Operand, precUnary+1)
		var s string
		if t.Operator == "not" {
			s = "not " + operand
		} else {
			s = t.Operator + operand
			// Avoid `- -x` collapsing into a comment introducer `--`.
			if t.Operator == "-" && strings.HasPrefix(operand, "-") {
				s = "-(" + operand + ")"
			}
		}
		if precUnary < minPrec {
			return "(" + s + ")"
		}
		return s

	case *luaast.MemberExpression:
		return g.prefix(t.Object) + "." + t.Member

	case *luaast.IndexExpression:
		return g.prefix(t.Object) + "[" + g.expr(t.Index, 0) + "]"

	case *luaast.TableConstructor:
		var b strings.Builder
		b.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			switch {
			case f.Key == nil:
				b.WriteString(g.expr(f.Value, 0))
			default:
				if sk, ok := f.Key.(*luaast.StringLiteral); ok && isFieldName(sk.Value) {
					b.WriteString(sk.Value)
					b.WriteString(" = ")
					b.WriteString(g.expr(f.Value, 0))
				} else {
					b.WriteString("[")
					b.WriteString(g.expr(f.Key, 0))
					b.WriteString("] = ")
					b.WriteString(g.expr(f.Value, 0))
				}
			}
		}
		b.WriteString("}")
		return b.String()

	case *luaast.ParenExpression:
		return "(" + g.expr(t.Inner, 0) + ")"
	}
	g.fail("generator: unknown expression kind %T", e)
	return "nil"
}

func (g *gen) binary(op string, left, right luaast.Expr, minPrec int) string {
	prec, ok := binaryPrec[op]
	if !ok {
		g.fail("generator: unknown operator %q", op)
		prec = precCompare
	}
	leftMin, rightMin := prec, prec+1
	if rightAssoc(op) {
		leftMin, rightMin = prec+1, prec
	}
	s := g.expr(left, leftMin) + " " + op + " " + g.expr(right, rightMin)
	if prec < minPrec {
		return "(" + s + ")"
	}
	return s
}

// prefix renders an expression required by the grammar to be a prefix
// expression (call targets, index/member objects, method receivers).
// Non-prefix shapes get wrapped in parentheses.
func (g *gen) prefix(e luaast.Expr) string {
	switch e.(type) {
	case *luaast.Identifier, *luaast.MemberExpression, *luaast.IndexExpression,
		*luaast.CallExpression, *luaast.MethodCallExpression, *luaast.ParenExpression:
		return g.expr(e, 0)
	default:
		return "(" + g.expr(e, 0) + ")"
	}
}

func (g *gen) paramList(params []*luaast.Identifier, vararg bool) string {
	var b strings.Builder
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
	}
	if vararg {
		if len(params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(")")
	return b.String()
}

func (g *gen) number(n *luaast.NumericLiteral) string {
	if n.Raw != "" {
		return n.Raw
	}
	if n.Value == float64(int64(n.Value)) {
		return strconv.FormatInt(int64(n.Value), 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// quoteString renders a double-quoted Lua string literal. Non-printable and
// non-ASCII bytes use decimal escapes, which are unambiguous in every Lua
// version.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				// Always three digits so a following literal digit cannot
				// extend the escape.
				fmt.Fprintf(&b, "\\%03d", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// isFieldName reports whether s can appear bare on the left of `=` in a
// table constructor.
func isFieldName(s string) bool {
	if s == "" || scrambler.IsKeyword(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
