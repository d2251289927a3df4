package luaast

// CloneStmt returns a deep copy of s. Copies share nothing with the original,
// so a pass may splice a clone into the tree and mutate it freely.
func CloneStmt(s Stmt) Stmt {
	switch t := s.(type) {
	case *LocalStatement:
		return &LocalStatement{Names: cloneIdents(t.Names), Init: CloneExprs(t.Init)}
	case *AssignmentStatement:
		return &AssignmentStatement{Targets: CloneExprs(t.Targets), Values: CloneExprs(t.Values)}
	case *CallStatement:
		return &CallStatement{Call: CloneExpr(t.Call)}
	case *DoStatement:
		return &DoStatement{Body: CloneBody(t.Body)}
	case *WhileStatement:
		return &WhileStatement{Condition: CloneExpr(t.Condition), Body: CloneBody(t.Body)}
	case *RepeatStatement:
		return &RepeatStatement{Body: CloneBody(t.Body), Condition: CloneExpr(t.Condition)}
	case *IfStatement:
		clauses := make([]*IfClause, len(t.Clauses))
		for i, cl := range t.Clauses {
			clauses[i] = &IfClause{Condition: CloneExpr(cl.Condition), Body: CloneBody(cl.Body)}
		}
		return &IfStatement{Clauses: clauses}
	case *ForNumericStatement:
		return &ForNumericStatement{
			Variable: cloneIdent(t.Variable),
			Start:    CloneExpr(t.Start),
			Limit:    CloneExpr(t.Limit),
			Step:     CloneExpr(t.Step),
			Body:     CloneBody(t.Body),
		}
	case *ForGenericStatement:
		return &ForGenericStatement{
			Variables: cloneIdents(t.Variables),
			Iterators: CloneExprs(t.Iterators),
			Body:      CloneBody(t.Body),
		}
	case *FunctionDeclaration:
		return &FunctionDeclaration{
			Target:   CloneExpr(t.Target),
			Method:   t.Method,
			IsLocal:  t.IsLocal,
			Params:   cloneIdents(t.Params),
			IsVararg: t.IsVararg,
			Body:     CloneBody(t.Body),
		}
	case *ReturnStatement:
		return &ReturnStatement{Arguments: CloneExprs(t.Arguments)}
	case *BreakStatement:
		return &BreakStatement{}
	case *GotoStatement:
		return &GotoStatement{Label: t.Label}
	case *LabelStatement:
		return &LabelStatement{Name: t.Name}
	}
	return s
}

// CloneExpr returns a deep copy of e. Nil in, nil out.
func CloneExpr(e Expr) Expr {
	switch t := e.(type) {
	case nil:
		return nil
	case *Identifier:
		return &Identifier{Name: t.Name}
	case *NumericLiteral:
		return &NumericLiteral{Raw: t.Raw, Value: t.Value}
	case *StringLiteral:
		return &StringLiteral{Value: t.Value}
	case *BooleanLiteral:
		return &BooleanLiteral{Value: t.Value}
	case *NilLiteral:
		return &NilLiteral{}
	case *VarargLiteral:
		return &VarargLiteral{}
	case *FunctionExpression:
		return &FunctionExpression{Params: cloneIdents(t.Params), IsVararg: t.IsVararg, Body: CloneBody(t.Body)}
	case *CallExpression:
		return &CallExpression{Callee: CloneExpr(t.Callee), Arguments: CloneExprs(t.Arguments)}
	case *MethodCallExpression:
		return &MethodCallExpression{Receiver: CloneExpr(t.Receiver), Method: t.Method, Arguments: CloneExprs(t.Arguments)}
	case *BinaryExpression:
		return &BinaryExpression{Operator: t.Operator, Left: CloneExpr(t.Left), Right: CloneExpr(t.Right)}
	case *LogicalExpression:
		return &LogicalExpression{Operator: t.Operator, Left: CloneExpr(t.Left), Right: CloneExpr(t.Right)}
	case *UnaryExpression:
		return &UnaryExpression{Operator: t.Operator, Operand: CloneExpr(t.Operand)}
	case *MemberExpression:
		return &MemberExpression{Object: CloneExpr(t.Object), Member: t.Member}
	case *IndexExpression:
		return &IndexExpression{Object: CloneExpr(t.Object), Index: CloneExpr(t.Index)}
	case *TableConstructor:
		fields := make([]*TableField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = &TableField{Key: CloneExpr(f.Key), Value: CloneExpr(f.Value)}
		}
		return &TableConstructor{Fields: fields}
	case *ParenExpression:
		return &ParenExpression{Inner: CloneExpr(t.Inner)}
	}
	return e
}

// CloneBody deep-copies a statement list.
func CloneBody(body []Stmt) []Stmt {
	if body == nil {
		return nil
	}
	out := make([]Stmt, len(body))
	for i, s := range body {
		out[i] = CloneStmt(s)
	}
	return out
}

// CloneExprs deep-copies an expression list.
func CloneExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = CloneExpr(e)
	}
	return out
}

func cloneIdent(id *Identifier) *Identifier {
	if id == nil {
		return nil
	}
	return &Identifier{Name: id.Name}
}

func cloneIdents(ids []*Identifier) []*Identifier {
	if ids == nil {
		return nil
	}
	out := make([]*Identifier, len(ids))
	for i, id := range ids {
		out[i] = cloneIdent(id)
	}
	return out
}
