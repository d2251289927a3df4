package generator

import (
	"strings"
	"testing"

	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

// roundTrip parses source, regenerates it, and re-parses the output. The
// generator's contract is that the output is valid Lua equivalent to the
// input tree, so the second parse must succeed.
func roundTrip(t *testing.T, source string) string {
	t.Helper()
	chunk, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parsing input failed: %v", err)
	}
	out, err := Generate(chunk)
	if err != nil {
		t.Fatalf("generating failed: %v", err)
	}
	if _, err := parser.Parse(out); err != nil {
		t.Fatalf("generated output does not re-parse: %v\noutput:\n%s", err, out)
	}
	return out
}

func TestGenerateEmptyChunk(t *testing.T) {
	out, err := Generate(&luaast.Chunk{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "" {
		t.Errorf("empty chunk should generate empty output, got %q", out)
	}
}

func TestGenerateStatements(t *testing.T) {
	sources := []string{
		`local x = 1`,
		`local a, b = f()`,
		`x, y = y, x`,
		`print("hello")`,
		"do\nlocal t = {}\nend",
		"while n > 0 do\nn = n - 1\nend",
		"repeat\nn = n + 1\nuntil n >= 10",
		"if a then\nf()\nelseif b then\ng()\nelse\nh()\nend",
		"for i = 1, 10, 2 do\nprint(i)\nend",
		"for k, v in pairs(t) do\nprint(k, v)\nend",
		"function m.f(a, b)\nreturn a + b\nend",
		"function obj:method(x)\nreturn self.value + x\nend",
		"local function helper(...)\nreturn ...\nend",
		`return 1, 2, 3`,
		"for i = 1, 3 do\nbreak\nend",
		"do\ngoto done\n::done::\nend",
	}
	for _, src := range sources {
		roundTrip(t, src)
	}
}

func TestGenerateExactForms(t *testing.T) {
	cases := []struct {
		name  string
		chunk *luaast.Chunk
		want  string
	}{
		{
			name: "local with init",
			chunk: &luaast.Chunk{Body: []luaast.Stmt{
				&luaast.LocalStatement{
					Names: []*luaast.Identifier{{Name: "x"}},
					Init:  []luaast.Expr{&luaast.NumericLiteral{Raw: "1", Value: 1}},
				},
			}},
			want: "local x = 1",
		},
		{
			name: "member call",
			chunk: &luaast.Chunk{Body: []luaast.Stmt{
				&luaast.CallStatement{Call: &luaast.CallExpression{
					Callee: &luaast.MemberExpression{
						Object: &luaast.Identifier{Name: "string"},
						Member: "char",
					},
					Arguments: []luaast.Expr{&luaast.NumericLiteral{Raw: "72", Value: 72}},
				}},
			}},
			want: "string.char(72)",
		},
		{
			name: "goto and label",
			chunk: &luaast.Chunk{Body: []luaast.Stmt{
				&luaast.GotoStatement{Label: "done"},
				&luaast.LabelStatement{Name: "done"},
			}},
			want: "goto done\n::done::",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Generate(tc.chunk)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if out != tc.want {
				t.Errorf("got %q, want %q", out, tc.want)
			}
		})
	}
}

func TestGeneratePrecedence(t *testing.T) {
	// (1 + 2) * 3 must keep its grouping.
	chunk := &luaast.Chunk{Body: []luaast.Stmt{
		&luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: "v"}},
			Init: []luaast.Expr{&luaast.BinaryExpression{
				Operator: "*",
				Left: &luaast.BinaryExpression{
					Operator: "+",
					Left:     &luaast.NumericLiteral{Raw: "1", Value: 1},
					Right:    &luaast.NumericLiteral{Raw: "2", Value: 2},
				},
				Right: &luaast.NumericLiteral{Raw: "3", Value: 3},
			}},
		},
	}}
	out, err := Generate(chunk)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "local v = (1 + 2) * 3" {
		t.Errorf("got %q", out)
	}
}

func TestGenerateDoubleNegationDoesNotFormComment(t *testing.T) {
	chunk := &luaast.Chunk{Body: []luaast.Stmt{
		&luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: "v"}},
			Init: []luaast.Expr{&luaast.UnaryExpression{
				Operator: "-",
				Operand: &luaast.UnaryExpression{
					Operator: "-",
					Operand:  &luaast.Identifier{Name: "x"},
				},
			}},
		},
	}}
	out, err := Generate(chunk)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(out, "--") {
		t.Errorf("double negation produced a comment introducer: %q", out)
	}
	if _, err := parser.Parse(out); err != nil {
		t.Errorf("output does not re-parse: %v", err)
	}
}

func TestGenerateParenStatementGuard(t *testing.T) {
	// A statement line beginning with `(` must be guarded so it cannot be
	// read as a call suffix of the previous line.
	chunk := &luaast.Chunk{Body: []luaast.Stmt{
		&luaast.CallStatement{Call: &luaast.CallExpression{
			Callee:    &luaast.Identifier{Name: "f"},
			Arguments: nil,
		}},
		&luaast.CallStatement{Call: &luaast.CallExpression{
			Callee: &luaast.ParenExpression{Inner: &luaast.Identifier{Name: "g"}},
		}},
	}}
	out, err := Generate(chunk)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "\n;(") {
		t.Errorf("expected a ; guard before the parenthesized call, got:\n%s", out)
	}
	if _, err := parser.Parse(out); err != nil {
		t.Errorf("output does not re-parse: %v", err)
	}
}

func TestQuoteStringEscapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", `"hello"`},
		{"say \"hi\"", `"say \"hi\""`},
		{"a\nb", `"a\nb"`},
		{"tab\there", `"tab\there"`},
		{"\x00\x01", `"\000\001"`},
		{"\x079", `"\0079"`}, // three digits so the 9 stays literal
	}
	for _, tc := range cases {
		if got := quoteString(tc.in); got != tc.want {
			t.Errorf("quoteString(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestGenerateStringRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"with \"quotes\" and \\slashes\\",
		"newline\nand\ttab",
		string([]byte{0, 1, 2, 250, 255}),
	}
	for _, v := range values {
		chunk := &luaast.Chunk{Body: []luaast.Stmt{
			&luaast.LocalStatement{
				Names: []*luaast.Identifier{{Name: "s"}},
				Init:  []luaast.Expr{&luaast.StringLiteral{Value: v}},
			},
		}}
		out, err := Generate(chunk)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		reparsed, err := parser.Parse(out)
		if err != nil {
			t.Fatalf("output does not re-parse: %v\noutput: %s", err, out)
		}
		lit := reparsed.Body[0].(*luaast.LocalStatement).Init[0].(*luaast.StringLiteral)
		if lit.Value != v {
			t.Errorf("string value changed across generate/parse: %q -> %q", v, lit.Value)
		}
	}
}
