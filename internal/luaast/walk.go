package luaast

// Visitor receives every node during Walk. Returning false stops descent into
// the node's children.
type Visitor func(n Node) bool

// Walk traverses the tree rooted at n in depth-first pre-order.
func Walk(n Node, v Visitor) {
	if n == nil || !v(n) {
		return
	}
	switch t := n.(type) {
	case *Chunk:
		walkBody(t.Body, v)
	case *LocalStatement:
		for _, id := range t.Names {
			Walk(id, v)
		}
		walkExprs(t.Init, v)
	case *AssignmentStatement:
		walkExprs(t.Targets, v)
		walkExprs(t.Values, v)
	case *CallStatement:
		Walk(t.Call, v)
	case *DoStatement:
		walkBody(t.Body, v)
	case *WhileStatement:
		Walk(t.Condition, v)
		walkBody(t.Body, v)
	case *RepeatStatement:
		walkBody(t.Body, v)
		Walk(t.Condition, v)
	case *IfStatement:
		for _, cl := range t.Clauses {
			if cl.Condition != nil {
				Walk(cl.Condition, v)
			}
			walkBody(cl.Body, v)
		}
	case *ForNumericStatement:
		Walk(t.Variable, v)
		Walk(t.Start, v)
		Walk(t.Limit, v)
		if t.Step != nil {
			Walk(t.Step, v)
		}
		walkBody(t.Body, v)
	case *ForGenericStatement:
		for _, id := range t.Variables {
			Walk(id, v)
		}
		walkExprs(t.Iterators, v)
		walkBody(t.Body, v)
	case *FunctionDeclaration:
		if t.Target != nil {
			Walk(t.Target, v)
		}
		for _, p := range t.Params {
			Walk(p, v)
		}
		walkBody(t.Body, v)
	case *ReturnStatement:
		walkExprs(t.Arguments, v)
	case *BreakStatement, *GotoStatement, *LabelStatement:
	case *Identifier, *NumericLiteral, *StringLiteral, *BooleanLiteral,
		*NilLiteral, *VarargLiteral:
	case *FunctionExpression:
		for _, p := range t.Params {
			Walk(p, v)
		}
		walkBody(t.Body, v)
	case *CallExpression:
		Walk(t.Callee, v)
		walkExprs(t.Arguments, v)
	case *MethodCallExpression:
		Walk(t.Receiver, v)
		walkExprs(t.Arguments, v)
	case *BinaryExpression:
		Walk(t.Left, v)
		Walk(t.Right, v)
	case *LogicalExpression:
		Walk(t.Left, v)
		Walk(t.Right, v)
	case *UnaryExpression:
		Walk(t.Operand, v)
	case *MemberExpression:
		Walk(t.Object, v)
	case *IndexExpression:
		Walk(t.Object, v)
		Walk(t.Index, v)
	case *TableConstructor:
		for _, f := range t.Fields {
			if f.Key != nil {
				Walk(f.Key, v)
			}
			Walk(f.Value, v)
		}
	case *ParenExpression:
		Walk(t.Inner, v)
	}
}

func walkBody(body []Stmt, v Visitor) {
	for _, s := range body {
		Walk(s, v)
	}
}

func walkExprs(exprs []Expr, v Visitor) {
	for _, e := range exprs {
		Walk(e, v)
	}
}

// Rewriter maps an expression to its replacement. Returning the input
// unchanged leaves the tree alone.
type Rewriter func(e Expr) Expr

// RewriteExprs applies fn to every expression in the chunk in post-order:
// children are rewritten before their parent is offered to fn, and the node
// fn returns is spliced in without being revisited. Passes rely on this to
// replace literals with decoder expressions whose own literals must not be
// re-encoded.
func RewriteExprs(c *Chunk, fn Rewriter) {
	rewriteBody(c.Body, fn)
}

func rewriteBody(body []Stmt, fn Rewriter) {
	for _, s := range body {
		rewriteStmt(s, fn)
	}
}

func rewriteStmt(s Stmt, fn Rewriter) {
	switch t := s.(type) {
	case *LocalStatement:
		rewriteSlice(t.Init, fn)
	case *AssignmentStatement:
		rewriteSlice(t.Targets, fn)
		rewriteSlice(t.Values, fn)
	case *CallStatement:
		t.Call = rewriteExpr(t.Call, fn)
	case *DoStatement:
		rewriteBody(t.Body, fn)
	case *WhileStatement:
		t.Condition = rewriteExpr(t.Condition, fn)
		rewriteBody(t.Body, fn)
	case *RepeatStatement:
		rewriteBody(t.Body, fn)
		t.Condition = rewriteExpr(t.Condition, fn)
	case *IfStatement:
		for _, cl := range t.Clauses {
			if cl.Condition != nil {
				cl.Condition = rewriteExpr(cl.Condition, fn)
			}
			rewriteBody(cl.Body, fn)
		}
	case *ForNumericStatement:
		t.Start = rewriteExpr(t.Start, fn)
		t.Limit = rewriteExpr(t.Limit, fn)
		if t.Step != nil {
			t.Step = rewriteExpr(t.Step, fn)
		}
		rewriteBody(t.Body, fn)
	case *ForGenericStatement:
		rewriteSlice(t.Iterators, fn)
		rewriteBody(t.Body, fn)
	case *FunctionDeclaration:
		rewriteBody(t.Body, fn)
	case *ReturnStatement:
		rewriteSlice(t.Arguments, fn)
	case *BreakStatement, *GotoStatement, *LabelStatement:
	}
}

func rewriteSlice(exprs []Expr, fn Rewriter) {
	for i, e := range exprs {
		exprs[i] = rewriteExpr(e, fn)
	}
}

func rewriteExpr(e Expr, fn Rewriter) Expr {
	switch t := e.(type) {
	case *FunctionExpression:
		rewriteBody(t.Body, fn)
	case *CallExpression:
		t.Callee = rewriteExpr(t.Callee, fn)
		rewriteSlice(t.Arguments, fn)
	case *MethodCallExpression:
		t.Receiver = rewriteExpr(t.Receiver, fn)
		rewriteSlice(t.Arguments, fn)
	case *BinaryExpression:
		t.Left = rewriteExpr(t.Left, fn)
		t.Right = rewriteExpr(t.Right, fn)
	case *LogicalExpression:
		t.Left = rewriteExpr(t.Left, fn)
		t.Right = rewriteExpr(t.Right, fn)
	case *UnaryExpression:
		t.Operand = rewriteExpr(t.Operand, fn)
	case *MemberExpression:
		t.Object = rewriteExpr(t.Object, fn)
	case *IndexExpression:
		t.Object = rewriteExpr(t.Object, fn)
		t.Index = rewriteExpr(t.Index, fn)
	case *TableConstructor:
		for _, f := range t.Fields {
			if f.Key != nil {
				f.Key = rewriteExpr(f.Key, fn)
			}
			f.Value = rewriteExpr(f.Value, fn)
		}
	case *ParenExpression:
		t.Inner = rewriteExpr(t.Inner, fn)
	}
	return fn(e)
}

// RewriteBodies applies fn to every statement list in the chunk, outermost
// first. fn receives the list and returns its replacement; the replacement is
// not revisited, but statement lists nested inside the original statements
// are. Used by the control-flow flattener.
func RewriteBodies(c *Chunk, fn func(body []Stmt) []Stmt) {
	c.Body = rewriteBodies(c.Body, fn)
}

func rewriteBodies(body []Stmt, fn func([]Stmt) []Stmt) []Stmt {
	out := fn(body)
	for _, s := range out {
		switch t := s.(type) {
		case *DoStatement:
			t.Body = rewriteBodies(t.Body, fn)
		case *WhileStatement:
			rewriteExprBodies(t.Condition, fn)
			t.Body = rewriteBodies(t.Body, fn)
		case *RepeatStatement:
			t.Body = rewriteBodies(t.Body, fn)
			rewriteExprBodies(t.Condition, fn)
		case *IfStatement:
			for _, cl := range t.Clauses {
				rewriteExprBodies(cl.Condition, fn)
				cl.Body = rewriteBodies(cl.Body, fn)
			}
		case *ForNumericStatement:
			rewriteExprBodies(t.Start, fn)
			rewriteExprBodies(t.Limit, fn)
			rewriteExprBodies(t.Step, fn)
			t.Body = rewriteBodies(t.Body, fn)
		case *ForGenericStatement:
			for _, it := range t.Iterators {
				rewriteExprBodies(it, fn)
			}
			t.Body = rewriteBodies(t.Body, fn)
		case *FunctionDeclaration:
			t.Body = rewriteBodies(t.Body, fn)
		case *LocalStatement:
			for _, e := range t.Init {
				rewriteExprBodies(e, fn)
			}
		case *AssignmentStatement:
			for _, e := range t.Values {
				rewriteExprBodies(e, fn)
			}
		case *CallStatement:
			rewriteExprBodies(t.Call, fn)
		case *ReturnStatement:
			for _, e := range t.Arguments {
				rewriteExprBodies(e, fn)
			}
		case *BreakStatement, *GotoStatement, *LabelStatement:
		}
	}
	return out
}

// rewriteExprBodies rewrites statement lists hiding inside function
// expressions reachable from e, without re-entering statement bodies (those
// are covered by rewriteBodies).
func rewriteExprBodies(e Expr, fn func([]Stmt) []Stmt) {
	if e == nil {
		return
	}
	Walk(e, func(n Node) bool {
		if fe, ok := n.(*FunctionExpression); ok {
			fe.Body = rewriteBodies(fe.Body, fn)
			return false
		}
		return true
	})
}
