package parser

import (
	"errors"
	"testing"

	"github.com/whit3rabbit/luamixer/internal/luaast"
)

func mustParse(t *testing.T, source string) *luaast.Chunk {
	t.Helper()
	chunk, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return chunk
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\n", "-- just a comment\n"} {
		chunk := mustParse(t, src)
		if len(chunk.Body) != 0 {
			t.Errorf("Parse(%q): expected empty chunk, got %d statements", src, len(chunk.Body))
		}
	}
}

func TestParseLocalStatement(t *testing.T) {
	chunk := mustParse(t, `local x, y = 1, "two"`)
	if len(chunk.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(chunk.Body))
	}
	local, ok := chunk.Body[0].(*luaast.LocalStatement)
	if !ok {
		t.Fatalf("expected LocalStatement, got %T", chunk.Body[0])
	}
	if len(local.Names) != 2 || local.Names[0].Name != "x" || local.Names[1].Name != "y" {
		t.Errorf("unexpected names: %+v", local.Names)
	}
	if len(local.Init) != 2 {
		t.Fatalf("expected 2 init expressions, got %d", len(local.Init))
	}
	num, ok := local.Init[0].(*luaast.NumericLiteral)
	if !ok || num.Value != 1 {
		t.Errorf("expected numeric literal 1, got %#v", local.Init[0])
	}
	str, ok := local.Init[1].(*luaast.StringLiteral)
	if !ok || str.Value != "two" {
		t.Errorf("expected string literal \"two\", got %#v", local.Init[1])
	}
}

func TestParseMemberVsIndex(t *testing.T) {
	chunk := mustParse(t, `x = a.b
y = a["not-a-name"]
z = a[1]`)
	if len(chunk.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(chunk.Body))
	}

	member := chunk.Body[0].(*luaast.AssignmentStatement).Values[0]
	if m, ok := member.(*luaast.MemberExpression); !ok || m.Member != "b" {
		t.Errorf("a.b should convert to MemberExpression, got %#v", member)
	}

	idx := chunk.Body[1].(*luaast.AssignmentStatement).Values[0]
	if _, ok := idx.(*luaast.IndexExpression); !ok {
		t.Errorf(`a["not-a-name"] should convert to IndexExpression, got %#v`, idx)
	}

	numIdx := chunk.Body[2].(*luaast.AssignmentStatement).Values[0]
	if _, ok := numIdx.(*luaast.IndexExpression); !ok {
		t.Errorf("a[1] should convert to IndexExpression, got %#v", numIdx)
	}
}

func TestParseElseifChainFlattened(t *testing.T) {
	chunk := mustParse(t, `
if a then
	f()
elseif b then
	g()
elseif c then
	h()
else
	i()
end`)
	ifStmt, ok := chunk.Body[0].(*luaast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", chunk.Body[0])
	}
	if len(ifStmt.Clauses) != 4 {
		t.Fatalf("expected 4 clauses, got %d", len(ifStmt.Clauses))
	}
	for i := 0; i < 3; i++ {
		if ifStmt.Clauses[i].Condition == nil {
			t.Errorf("clause %d should have a condition", i)
		}
	}
	if ifStmt.Clauses[3].Condition != nil {
		t.Error("final else clause should have a nil condition")
	}
}

func TestParseMethodDefinitionStripsSelf(t *testing.T) {
	chunk := mustParse(t, `
function account:deposit(amount)
	self.balance = self.balance + amount
end`)
	decl, ok := chunk.Body[0].(*luaast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", chunk.Body[0])
	}
	if decl.Method != "deposit" {
		t.Errorf("expected method name deposit, got %q", decl.Method)
	}
	if len(decl.Params) != 1 || decl.Params[0].Name != "amount" {
		t.Errorf("implicit self should be stripped, got params %+v", decl.Params)
	}
}

func TestParseLocalFunction(t *testing.T) {
	chunk := mustParse(t, `local function helper(n) return n + 1 end`)
	decl, ok := chunk.Body[0].(*luaast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", chunk.Body[0])
	}
	if !decl.IsLocal {
		t.Error("expected IsLocal")
	}
	target, ok := decl.Target.(*luaast.Identifier)
	if !ok || target.Name != "helper" {
		t.Errorf("unexpected target: %#v", decl.Target)
	}
}

func TestParseVarargAndMethodCall(t *testing.T) {
	chunk := mustParse(t, `
local function pass(...)
	return obj:method(...)
end`)
	decl := chunk.Body[0].(*luaast.FunctionDeclaration)
	if !decl.IsVararg {
		t.Error("expected vararg function")
	}
	ret := decl.Body[0].(*luaast.ReturnStatement)
	call, ok := ret.Arguments[0].(*luaast.MethodCallExpression)
	if !ok {
		t.Fatalf("expected MethodCallExpression, got %T", ret.Arguments[0])
	}
	if call.Method != "method" {
		t.Errorf("unexpected method name %q", call.Method)
	}
	if _, ok := call.Arguments[0].(*luaast.VarargLiteral); !ok {
		t.Errorf("expected vararg argument, got %T", call.Arguments[0])
	}
}

func TestParseHexNumber(t *testing.T) {
	chunk := mustParse(t, `local n = 0xFF`)
	num := chunk.Body[0].(*luaast.LocalStatement).Init[0].(*luaast.NumericLiteral)
	if num.Value != 255 {
		t.Errorf("0xFF should have value 255, got %v", num.Value)
	}
	if num.Raw != "0xFF" {
		t.Errorf("raw text should be preserved, got %q", num.Raw)
	}
}

func TestParseErrorReportsLocation(t *testing.T) {
	src := "local x = 1\nlocal = 5\n"
	_, err := Parse(src)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if perr.Line != 2 {
		t.Errorf("expected error on line 2, got %d", perr.Line)
	}
	if perr.Message == "" {
		t.Error("expected a non-empty message")
	}
}

func TestValidate(t *testing.T) {
	if !Validate("print('ok')") {
		t.Error("valid source reported invalid")
	}
	if Validate("if then end") {
		t.Error("invalid source reported valid")
	}
	if !Validate("") {
		t.Error("empty source should be valid")
	}
}
