package parser

import (
	"fmt"
	"strconv"
	"strings"

	luaparse "github.com/yuin/gopher-lua/ast"

	"github.com/whit3rabbit/luamixer/internal/luaast"
)

// convertChunk maps the upstream statement list onto our Chunk.
func convertChunk(stmts []luaparse.Stmt) (*luaast.Chunk, error) {
	body, err := convertBody(stmts)
	if err != nil {
		return nil, err
	}
	return &luaast.Chunk{Body: body}, nil
}

func convertBody(stmts []luaparse.Stmt) ([]luaast.Stmt, error) {
	body := make([]luaast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		conv, err := convertStmt(s)
		if err != nil {
			return nil, err
		}
		body = append(body, conv)
	}
	return body, nil
}

func convertStmt(s luaparse.Stmt) (luaast.Stmt, error) {
	switch t := s.(type) {
	case *luaparse.LocalAssignStmt:
		// `local function f` and `local f = function()` collapse to the same
		// upstream node. The local-function form is regenerated because the
		// upstream compiler itself binds the name before the function body in
		// both cases.
		if len(t.Names) == 1 && len(t.Exprs) == 1 {
			if fe, ok := t.Exprs[0].(*luaparse.FunctionExpr); ok {
				fn, err := convertFunctionExpr(fe)
				if err != nil {
					return nil, err
				}
				return &luaast.FunctionDeclaration{
					Target:   &luaast.Identifier{Name: t.Names[0]},
					IsLocal:  true,
					Params:   fn.Params,
					IsVararg: fn.IsVararg,
					Body:     fn.Body,
				}, nil
			}
		}
		names := make([]*luaast.Identifier, len(t.Names))
		for i, n := range t.Names {
			names[i] = &luaast.Identifier{Name: n}
		}
		init, err := convertExprs(t.Exprs)
		if err != nil {
			return nil, err
		}
		return &luaast.LocalStatement{Names: names, Init: init}, nil

	case *luaparse.AssignStmt:
		targets, err := convertExprs(t.Lhs)
		if err != nil {
			return nil, err
		}
		values, err := convertExprs(t.Rhs)
		if err != nil {
			return nil, err
		}
		return &luaast.AssignmentStatement{Targets: targets, Values: values}, nil

	case *luaparse.FuncCallStmt:
		call, err := convertExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		return &luaast.CallStatement{Call: call}, nil

	case *luaparse.DoBlockStmt:
		body, err := convertBody(t.Stmts)
		if err != nil {
			return nil, err
		}
		return &luaast.DoStatement{Body: body}, nil

	case *luaparse.WhileStmt:
		cond, err := convertExpr(t.Condition)
		if err != nil {
			return nil, err
		}
		body, err := convertBody(t.Stmts)
		if err != nil {
			return nil, err
		}
		return &luaast.WhileStatement{Condition: cond, Body: body}, nil

	case *luaparse.RepeatStmt:
		body, err := convertBody(t.Stmts)
		if err != nil {
			return nil, err
		}
		cond, err := convertExpr(t.Condition)
		if err != nil {
			return nil, err
		}
		return &luaast.RepeatStatement{Body: body, Condition: cond}, nil

	case *luaparse.IfStmt:
		return convertIf(t)

	case *luaparse.NumberForStmt:
		start, err := convertExpr(t.Init)
		if err != nil {
			return nil, err
		}
		limit, err := convertExpr(t.Limit)
		if err != nil {
			return nil, err
		}
		var step luaast.Expr
		if t.Step != nil {
			if step, err = convertExpr(t.Step); err != nil {
				return nil, err
			}
		}
		body, err := convertBody(t.Stmts)
		if err != nil {
			return nil, err
		}
		return &luaast.ForNumericStatement{
			Variable: &luaast.Identifier{Name: t.Name},
			Start:    start,
			Limit:    limit,
			Step:     step,
			Body:     body,
		}, nil

	case *luaparse.GenericForStmt:
		vars := make([]*luaast.Identifier, len(t.Names))
		for i, n := range t.Names {
			vars[i] = &luaast.Identifier{Name: n}
		}
		iters, err := convertExprs(t.Exprs)
		if err != nil {
			return nil, err
		}
		body, err := convertBody(t.Stmts)
		if err != nil {
			return nil, err
		}
		return &luaast.ForGenericStatement{Variables: vars, Iterators: iters, Body: body}, nil

	case *luaparse.FuncDefStmt:
		return convertFuncDef(t)

	case *luaparse.ReturnStmt:
		args, err := convertExprs(t.Exprs)
		if err != nil {
			return nil, err
		}
		return &luaast.ReturnStatement{Arguments: args}, nil

	case *luaparse.BreakStmt:
		return &luaast.BreakStatement{}, nil

	case *luaparse.GotoStmt:
		return &luaast.GotoStatement{Label: t.Label}, nil

	case *luaparse.LabelStmt:
		return &luaast.LabelStatement{Name: t.Name}, nil
	}
	return nil, fmt.Errorf("%w: statement %T", ErrUnsupportedNode, s)
}

func convertIf(t *luaparse.IfStmt) (luaast.Stmt, error) {
	cond, err := convertExpr(t.Condition)
	if err != nil {
		return nil, err
	}
	thenBody, err := convertBody(t.Then)
	if err != nil {
		return nil, err
	}
	stmt := &luaast.IfStatement{Clauses: []*luaast.IfClause{{Condition: cond, Body: thenBody}}}

	// The upstream tree nests `elseif` chains as a single IfStmt inside Else;
	// flatten them into the clause list.
	elseStmts := t.Else
	for len(elseStmts) == 1 {
		inner, ok := elseStmts[0].(*luaparse.IfStmt)
		if !ok {
			break
		}
		icond, err := convertExpr(inner.Condition)
		if err != nil {
			return nil, err
		}
		ibody, err := convertBody(inner.Then)
		if err != nil {
			return nil, err
		}
		stmt.Clauses = append(stmt.Clauses, &luaast.IfClause{Condition: icond, Body: ibody})
		elseStmts = inner.Else
	}
	if len(elseStmts) > 0 {
		ebody, err := convertBody(elseStmts)
		if err != nil {
			return nil, err
		}
		stmt.Clauses = append(stmt.Clauses, &luaast.IfClause{Body: ebody})
	}
	return stmt, nil
}

func convertFuncDef(t *luaparse.FuncDefStmt) (luaast.Stmt, error) {
	fn, err := convertFunctionExpr(t.Func)
	if err != nil {
		return nil, err
	}
	decl := &luaast.FunctionDeclaration{
		Params:   fn.Params,
		IsVararg: fn.IsVararg,
		Body:     fn.Body,
	}
	if t.Name.Method != "" {
		recv, err := convertExpr(t.Name.Receiver)
		if err != nil {
			return nil, err
		}
		decl.Target = recv
		decl.Method = t.Name.Method
		// The upstream parser injects the implicit `self` parameter for
		// method definitions; the `:` form regenerated here re-implies it.
		if len(decl.Params) > 0 && decl.Params[0].Name == "self" {
			decl.Params = decl.Params[1:]
		}
		return decl, nil
	}
	target, err := convertExpr(t.Name.Func)
	if err != nil {
		return nil, err
	}
	decl.Target = target
	return decl, nil
}

func convertExprs(exprs []luaparse.Expr) ([]luaast.Expr, error) {
	out := make([]luaast.Expr, 0, len(exprs))
	for _, e := range exprs {
		conv, err := convertExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

func convertExpr(e luaparse.Expr) (luaast.Expr, error) {
	switch t := e.(type) {
	case *luaparse.TrueExpr:
		return &luaast.BooleanLiteral{Value: true}, nil
	case *luaparse.FalseExpr:
		return &luaast.BooleanLiteral{Value: false}, nil
	case *luaparse.NilExpr:
		return &luaast.NilLiteral{}, nil
	case *luaparse.Comma3Expr:
		return &luaast.VarargLiteral{}, nil

	case *luaparse.NumberExpr:
		value, err := parseNumber(t.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: numeric literal %q", ErrUnsupportedNode, t.Value)
		}
		return &luaast.NumericLiteral{Raw: t.Value, Value: value}, nil

	case *luaparse.StringExpr:
		return &luaast.StringLiteral{Value: t.Value}, nil

	case *luaparse.IdentExpr:
		return &luaast.Identifier{Name: t.Value}, nil

	case *luaparse.AttrGetExpr:
		obj, err := convertExpr(t.Object)
		if err != nil {
			return nil, err
		}
		if key, ok := t.Key.(*luaparse.StringExpr); ok && isName(key.Value) {
			return &luaast.MemberExpression{Object: obj, Member: key.Value}, nil
		}
		idx, err := convertExpr(t.Key)
		if err != nil {
			return nil, err
		}
		return &luaast.IndexExpression{Object: obj, Index: idx}, nil

	case *luaparse.TableExpr:
		fields := make([]*luaast.TableField, 0, len(t.Fields))
		for _, f := range t.Fields {
			var key luaast.Expr
			if f.Key != nil {
				k, err := convertExpr(f.Key)
				if err != nil {
					return nil, err
				}
				key = k
			}
			value, err := convertExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, &luaast.TableField{Key: key, Value: value})
		}
		return &luaast.TableConstructor{Fields: fields}, nil

	case *luaparse.FuncCallExpr:
		args, err := convertExprs(t.Args)
		if err != nil {
			return nil, err
		}
		var call luaast.Expr
		if t.Receiver != nil {
			recv, err := convertExpr(t.Receiver)
			if err != nil {
				return nil, err
			}
			call = &luaast.MethodCallExpression{Receiver: recv, Method: t.Method, Arguments: args}
		} else {
			callee, err := convertExpr(t.Func)
			if err != nil {
				return nil, err
			}
			call = &luaast.CallExpression{Callee: callee, Arguments: args}
		}
		if t.AdjustRet {
			// `(f())` truncates the call to a single value.
			call = &luaast.ParenExpression{Inner: call}
		}
		return call, nil

	case *luaparse.LogicalOpExpr:
		left, err := convertExpr(t.Lhs)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(t.Rhs)
		if err != nil {
			return nil, err
		}
		return &luaast.LogicalExpression{Operator: t.Operator, Left: left, Right: right}, nil

	case *luaparse.RelationalOpExpr:
		return convertBinary(t.Operator, t.Lhs, t.Rhs)
	case *luaparse.ArithmeticOpExpr:
		return convertBinary(t.Operator, t.Lhs, t.Rhs)
	case *luaparse.StringConcatOpExpr:
		return convertBinary("..", t.Lhs, t.Rhs)

	case *luaparse.UnaryMinusOpExpr:
		return convertUnary("-", t.Expr)
	case *luaparse.UnaryNotOpExpr:
		return convertUnary("not", t.Expr)
	case *luaparse.UnaryLenOpExpr:
		return convertUnary("#", t.Expr)

	case *luaparse.FunctionExpr:
		return convertFunctionExpr(t)
	}
	return nil, fmt.Errorf("%w: expression %T", ErrUnsupportedNode, e)
}

func convertBinary(op string, lhs, rhs luaparse.Expr) (luaast.Expr, error) {
	left, err := convertExpr(lhs)
	if err != nil {
		return nil, err
	}
	right, err := convertExpr(rhs)
	if err != nil {
		return nil, err
	}
	return &luaast.BinaryExpression{Operator: op, Left: left, Right: right}, nil
}

func convertUnary(op string, operand luaparse.Expr) (luaast.Expr, error) {
	inner, err := convertExpr(operand)
	if err != nil {
		return nil, err
	}
	return &luaast.UnaryExpression{Operator: op, Operand: inner}, nil
}

func convertFunctionExpr(t *luaparse.FunctionExpr) (*luaast.FunctionExpression, error) {
	params := make([]*luaast.Identifier, 0)
	isVararg := false
	if t.ParList != nil {
		for _, n := range t.ParList.Names {
			params = append(params, &luaast.Identifier{Name: n})
		}
		isVararg = t.ParList.HasVargs
	}
	body, err := convertBody(t.Stmts)
	if err != nil {
		return nil, err
	}
	return &luaast.FunctionExpression{Params: params, IsVararg: isVararg, Body: body}, nil
}

// parseNumber interprets a Lua numeric literal: decimal, exponent and hex
// integer forms.
func parseNumber(raw string) (float64, error) {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, nil
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if trimmed != raw {
		if v, err := strconv.ParseUint(trimmed, 16, 64); err == nil {
			return float64(v), nil
		}
	}
	return 0, fmt.Errorf("malformed number %q", raw)
}

// isName reports whether s is a valid Lua identifier that is not a keyword,
// i.e. usable after a `.` in member position.
func isName(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}
