package transformer

import (
	"math"
	"math/rand"

	"github.com/whit3rabbit/luamixer/internal/luaast"
)

// Name of the dispatch variable introduced by flattening, before mangling.
const stateVarName = "__luamix_state"

// Limits on the flattening and unrolling rewrites.
const (
	minFlattenRun  = 4
	maxUnrollCount = 5
)

// ControlFlowObfuscator restructures the program without changing what it
// computes: constant loops are unrolled, straight-line runs are flattened
// into a state-machine dispatch loop, and branch conditions are conjoined
// with opaque predicates.
type ControlFlowObfuscator struct {
	rng   *rand.Rand
	count int
}

func NewControlFlowObfuscator(rng *rand.Rand) *ControlFlowObfuscator {
	return &ControlFlowObfuscator{rng: rng}
}

// Count reports how many rewrites (unrolls, flattened runs, predicates) the
// last Obfuscate call performed.
func (c *ControlFlowObfuscator) Count() int {
	return c.count
}

// Obfuscate applies the three rewrites in place. Flattened dispatch loops
// start with a local declaration, which keeps them out of the run detector,
// so the pass never re-flattens its own output.
func (c *ControlFlowObfuscator) Obfuscate(chunk *luaast.Chunk) int {
	c.count = 0
	luaast.RewriteBodies(chunk, c.rewriteBody)
	c.insertOpaquePredicates(chunk)
	return c.count
}

func (c *ControlFlowObfuscator) rewriteBody(body []luaast.Stmt) []luaast.Stmt {
	expanded := make([]luaast.Stmt, 0, len(body))
	for _, s := range body {
		if loop, ok := s.(*luaast.ForNumericStatement); ok {
			if unrolled := c.unroll(loop); unrolled != nil {
				expanded = append(expanded, unrolled...)
				continue
			}
		}
		expanded = append(expanded, s)
	}
	return c.flattenRuns(expanded)
}

// unroll expands a numeric for whose bounds are compile-time constants and
// whose trip count is small. Each iteration becomes a do block declaring the
// control variable locally, which preserves per-iteration scoping.
func (c *ControlFlowObfuscator) unroll(loop *luaast.ForNumericStatement) []luaast.Stmt {
	start, ok := constantValue(loop.Start)
	if !ok {
		return nil
	}
	limit, ok := constantValue(loop.Limit)
	if !ok {
		return nil
	}
	step := 1.0
	if loop.Step != nil {
		step, ok = constantValue(loop.Step)
		if !ok {
			return nil
		}
	}
	if step == 0 {
		return nil
	}
	trips := 0
	for v := start; (step > 0 && v <= limit) || (step < 0 && v >= limit); v += step {
		trips++
		if trips > maxUnrollCount {
			return nil
		}
	}
	if trips == 0 || bodyEscapes(loop.Body) {
		return nil
	}

	c.count++
	out := make([]luaast.Stmt, 0, trips)
	for v := start; (step > 0 && v <= limit) || (step < 0 && v >= limit); v += step {
		iter := []luaast.Stmt{&luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: loop.Variable.Name}},
			Init:  []luaast.Expr{numberExpr(v)},
		}}
		iter = append(iter, luaast.CloneBody(loop.Body)...)
		out = append(out, &luaast.DoStatement{Body: iter})
	}
	return out
}

// bodyEscapes reports whether body contains a break, goto, or label outside a
// nested function literal. Such a statement would change meaning once the
// loop around it disappears.
func bodyEscapes(body []luaast.Stmt) bool {
	escapes := false
	for _, s := range body {
		luaast.Walk(s, func(n luaast.Node) bool {
			switch n.(type) {
			case *luaast.BreakStatement, *luaast.GotoStatement, *luaast.LabelStatement:
				escapes = true
				return false
			case *luaast.FunctionExpression, *luaast.FunctionDeclaration:
				return false
			}
			return true
		})
	}
	return escapes
}

// flattenRuns turns maximal runs of assignment and call statements into a
// while loop dispatching on a state variable, with the clauses shuffled and
// the state numbers drawn at random. Only those two statement kinds are
// eligible: they declare nothing and cannot break or return past the loop
// the rewrite introduces.
func (c *ControlFlowObfuscator) flattenRuns(body []luaast.Stmt) []luaast.Stmt {
	out := make([]luaast.Stmt, 0, len(body))
	run := make([]luaast.Stmt, 0)

	flush := func() {
		if len(run) >= minFlattenRun {
			out = append(out, c.flatten(run)...)
		} else {
			out = append(out, run...)
		}
		run = run[:0]
	}

	for _, s := range body {
		switch s.(type) {
		case *luaast.AssignmentStatement, *luaast.CallStatement:
			run = append(run, s)
		default:
			flush()
			out = append(out, s)
		}
	}
	flush()
	return out
}

func (c *ControlFlowObfuscator) flatten(run []luaast.Stmt) []luaast.Stmt {
	c.count++

	// Distinct nonzero state ids, in execution order.
	states := make([]int, len(run))
	used := map[int]bool{0: true}
	for i := range states {
		for {
			id := 1 + c.rng.Intn(len(run)*16)
			if !used[id] {
				used[id] = true
				states[i] = id
				break
			}
		}
	}

	clauses := make([]*luaast.IfClause, len(run))
	for i, s := range run {
		next := 0
		if i+1 < len(run) {
			next = states[i+1]
		}
		clauses[i] = &luaast.IfClause{
			Condition: &luaast.BinaryExpression{
				Operator: "==",
				Left:     &luaast.Identifier{Name: stateVarName},
				Right:    numberExpr(float64(states[i])),
			},
			Body: []luaast.Stmt{
				s,
				&luaast.AssignmentStatement{
					Targets: []luaast.Expr{&luaast.Identifier{Name: stateVarName}},
					Values:  []luaast.Expr{numberExpr(float64(next))},
				},
			},
		}
	}
	c.rng.Shuffle(len(clauses), func(i, j int) {
		clauses[i], clauses[j] = clauses[j], clauses[i]
	})

	return []luaast.Stmt{
		&luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: stateVarName}},
			Init:  []luaast.Expr{numberExpr(float64(states[0]))},
		},
		&luaast.WhileStatement{
			Condition: &luaast.BinaryExpression{
				Operator: "~=",
				Left:     &luaast.Identifier{Name: stateVarName},
				Right:    numberExpr(0),
			},
			Body: []luaast.Stmt{&luaast.IfStatement{Clauses: clauses}},
		},
	}
}

// insertOpaquePredicates conjoins each if, while, and repeat-until condition
// with an expression that is always true but not obviously so.
func (c *ControlFlowObfuscator) insertOpaquePredicates(chunk *luaast.Chunk) {
	luaast.Walk(chunk, func(n luaast.Node) bool {
		switch node := n.(type) {
		case *luaast.IfStatement:
			for _, cl := range node.Clauses {
				if cl.Condition == nil {
					continue
				}
				cl.Condition = c.conjoin(cl.Condition)
			}
		case *luaast.WhileStatement:
			node.Condition = c.conjoin(node.Condition)
		case *luaast.RepeatStatement:
			node.Condition = c.conjoin(node.Condition)
		}
		return true
	})
}

// conjoin wraps cond as `pred and (cond)`. The predicate always holds, so the
// conjunction keeps cond's truth value; for repeat-until the loop still exits
// exactly when the real condition becomes true.
func (c *ControlFlowObfuscator) conjoin(cond luaast.Expr) luaast.Expr {
	c.count++
	return &luaast.LogicalExpression{
		Operator: "and",
		Left:     c.opaquePredicate(),
		Right:    &luaast.ParenExpression{Inner: cond},
	}
}

// opaquePredicate builds an arithmetic comparison that always holds.
func (c *ControlFlowObfuscator) opaquePredicate() luaast.Expr {
	a := float64(2 + c.rng.Intn(97))
	b := float64(2 + c.rng.Intn(97))
	switch c.rng.Intn(4) {
	case 0:
		// a * b == product
		return paren(&luaast.BinaryExpression{
			Operator: "==",
			Left: &luaast.BinaryExpression{
				Operator: "*",
				Left:     numberExpr(a),
				Right:    numberExpr(b),
			},
			Right: numberExpr(a * b),
		})
	case 1:
		// a < a + b
		return paren(&luaast.BinaryExpression{
			Operator: "<",
			Left:     numberExpr(a),
			Right: &luaast.BinaryExpression{
				Operator: "+",
				Left:     numberExpr(a),
				Right:    numberExpr(b),
			},
		})
	case 2:
		// a % b always sits below b
		return paren(&luaast.BinaryExpression{
			Operator: "<",
			Left: &luaast.BinaryExpression{
				Operator: "%",
				Left:     numberExpr(a),
				Right:    numberExpr(b),
			},
			Right: numberExpr(b),
		})
	default:
		// a ~= a + b
		return paren(&luaast.BinaryExpression{
			Operator: "~=",
			Left:     numberExpr(a),
			Right: &luaast.BinaryExpression{
				Operator: "+",
				Left:     numberExpr(a),
				Right:    numberExpr(b),
			},
		})
	}
}

func paren(e luaast.Expr) luaast.Expr {
	return &luaast.ParenExpression{Inner: e}
}

func constantValue(e luaast.Expr) (float64, bool) {
	switch t := e.(type) {
	case *luaast.NumericLiteral:
		return t.Value, true
	case *luaast.UnaryExpression:
		if t.Operator == "-" {
			if lit, ok := t.Operand.(*luaast.NumericLiteral); ok {
				return -lit.Value, true
			}
		}
	}
	return 0, false
}

func numberExpr(v float64) luaast.Expr {
	if v < 0 {
		return &luaast.UnaryExpression{Operator: "-", Operand: numberExpr(-v)}
	}
	if v == math.Trunc(v) {
		return intLiteral(int64(v))
	}
	return floatLiteral(v)
}
