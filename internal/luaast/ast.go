// Package luaast defines the Lua syntax tree the obfuscation passes operate on.
//
// The tree is a closed set of node kinds: every statement and expression the
// parser adapter can produce is one of the types below, and consumers dispatch
// with exhaustive type switches. Nodes own their children exclusively; there is
// no sharing between subtrees and no parent links. A tree is built once by the
// parser adapter, mutated in place by transformation passes, and discarded
// after code generation.
package luaast

// Node is implemented by every syntax tree node.
type Node interface {
	node()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	expr()
}

// Chunk is the root of every tree. An empty source file parses to a Chunk
// with an empty Body.
type Chunk struct {
	Body []Stmt
}

func (*Chunk) node() {}

// --- Statements ---

// LocalStatement is `local a, b = e1, e2`. Init may be shorter than Names
// (trailing names are nil-initialized) or empty.
type LocalStatement struct {
	Names []*Identifier
	Init  []Expr
}

// AssignmentStatement is `t1, t2 = e1, e2`. Targets are Identifier,
// MemberExpression or IndexExpression nodes.
type AssignmentStatement struct {
	Targets []Expr
	Values  []Expr
}

// CallStatement is a call expression in statement position.
type CallStatement struct {
	Call Expr
}

// DoStatement is a `do ... end` block.
type DoStatement struct {
	Body []Stmt
}

// WhileStatement is `while cond do ... end`.
type WhileStatement struct {
	Condition Expr
	Body      []Stmt
}

// RepeatStatement is `repeat ... until cond`.
type RepeatStatement struct {
	Body      []Stmt
	Condition Expr
}

// IfClause is one arm of an IfStatement. A nil Condition marks the final
// `else` arm; it may only appear last.
type IfClause struct {
	Condition Expr
	Body      []Stmt
}

// IfStatement is an `if ... [elseif ...]* [else ...] end` chain. The first
// clause is the `if`, subsequent clauses with conditions are `elseif`.
type IfStatement struct {
	Clauses []*IfClause
}

// ForNumericStatement is `for v = start, limit[, step] do ... end`.
// Step may be nil.
type ForNumericStatement struct {
	Variable *Identifier
	Start    Expr
	Limit    Expr
	Step     Expr
	Body     []Stmt
}

// ForGenericStatement is `for a, b in e1, e2 do ... end`.
type ForGenericStatement struct {
	Variables []*Identifier
	Iterators []Expr
	Body      []Stmt
}

// FunctionDeclaration is a named function statement:
//
//	function a.b.c(...) end
//	function a:m(...) end
//	local function f(...) end
//
// Target is an Identifier or MemberExpression chain. Method is non-empty for
// `function a:m()` forms. IsLocal implies Target is a bare Identifier.
type FunctionDeclaration struct {
	Target   Expr
	Method   string
	IsLocal  bool
	Params   []*Identifier
	IsVararg bool
	Body     []Stmt
}

// ReturnStatement is `return e1, e2`.
type ReturnStatement struct {
	Arguments []Expr
}

// BreakStatement is `break`.
type BreakStatement struct{}

// GotoStatement is `goto label`.
type GotoStatement struct {
	Label string
}

// LabelStatement is `::label::`.
type LabelStatement struct {
	Name string
}

func (*LocalStatement) node()      {}
func (*AssignmentStatement) node() {}
func (*CallStatement) node()       {}
func (*DoStatement) node()         {}
func (*WhileStatement) node()      {}
func (*RepeatStatement) node()     {}
func (*IfStatement) node()         {}
func (*ForNumericStatement) node() {}
func (*ForGenericStatement) node() {}
func (*FunctionDeclaration) node() {}
func (*ReturnStatement) node()     {}
func (*BreakStatement) node()      {}
func (*GotoStatement) node()       {}
func (*LabelStatement) node()      {}

func (*LocalStatement) stmt()      {}
func (*AssignmentStatement) stmt() {}
func (*CallStatement) stmt()       {}
func (*DoStatement) stmt()         {}
func (*WhileStatement) stmt()      {}
func (*RepeatStatement) stmt()     {}
func (*IfStatement) stmt()         {}
func (*ForNumericStatement) stmt() {}
func (*ForGenericStatement) stmt() {}
func (*FunctionDeclaration) stmt() {}
func (*ReturnStatement) stmt()     {}
func (*BreakStatement) stmt()      {}
func (*GotoStatement) stmt()       {}
func (*LabelStatement) stmt()      {}

// --- Expressions ---

// Identifier is a variable reference or declaration name. Member-access and
// method names are NOT Identifier nodes; they live as plain strings on
// MemberExpression, MethodCallExpression and FunctionDeclaration, which keeps
// them structurally out of reach of renaming passes.
type Identifier struct {
	Name string
}

// NumericLiteral keeps the raw source text alongside the parsed value so the
// generator can reproduce untouched literals exactly (hex forms, exponents).
type NumericLiteral struct {
	Raw   string
	Value float64
}

// StringLiteral holds the decoded string value.
type StringLiteral struct {
	Value string
}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value bool
}

// NilLiteral is `nil`.
type NilLiteral struct{}

// VarargLiteral is `...`.
type VarargLiteral struct{}

// FunctionExpression is an anonymous `function(...) end`.
type FunctionExpression struct {
	Params   []*Identifier
	IsVararg bool
	Body     []Stmt
}

// CallExpression is `f(args)`.
type CallExpression struct {
	Callee    Expr
	Arguments []Expr
}

// MethodCallExpression is `obj:m(args)`. Method is a plain string and is
// never renamed.
type MethodCallExpression struct {
	Receiver  Expr
	Method    string
	Arguments []Expr
}

// BinaryExpression covers arithmetic, relational and concatenation operators.
type BinaryExpression struct {
	Operator string
	Left     Expr
	Right    Expr
}

// LogicalExpression is `and` / `or`.
type LogicalExpression struct {
	Operator string
	Left     Expr
	Right    Expr
}

// UnaryExpression is `-e`, `not e` or `#e`.
type UnaryExpression struct {
	Operator string
	Operand  Expr
}

// MemberExpression is `obj.member`. Member is a plain string.
type MemberExpression struct {
	Object Expr
	Member string
}

// IndexExpression is `obj[index]`.
type IndexExpression struct {
	Object Expr
	Index  Expr
}

// TableField is one entry of a table constructor. Key nil means a positional
// entry. The generator emits `name = v` for string keys that form valid
// identifiers and `[k] = v` otherwise.
type TableField struct {
	Key   Expr
	Value Expr
}

// TableConstructor is `{ ... }`.
type TableConstructor struct {
	Fields []*TableField
}

// ParenExpression is an explicitly parenthesized expression. Parentheses are
// semantically meaningful in Lua (they truncate multi-value expressions to a
// single value), so they are preserved as a node rather than re-derived.
type ParenExpression struct {
	Inner Expr
}

func (*Identifier) node()           {}
func (*NumericLiteral) node()       {}
func (*StringLiteral) node()        {}
func (*BooleanLiteral) node()       {}
func (*NilLiteral) node()           {}
func (*VarargLiteral) node()        {}
func (*FunctionExpression) node()   {}
func (*CallExpression) node()       {}
func (*MethodCallExpression) node() {}
func (*BinaryExpression) node()     {}
func (*LogicalExpression) node()    {}
func (*UnaryExpression) node()      {}
func (*MemberExpression) node()     {}
func (*IndexExpression) node()      {}
func (*TableConstructor) node()     {}
func (*ParenExpression) node()      {}

func (*Identifier) expr()           {}
func (*NumericLiteral) expr()       {}
func (*StringLiteral) expr()        {}
func (*BooleanLiteral) expr()       {}
func (*NilLiteral) expr()           {}
func (*VarargLiteral) expr()        {}
func (*FunctionExpression) expr()   {}
func (*CallExpression) expr()       {}
func (*MethodCallExpression) expr() {}
func (*BinaryExpression) expr()     {}
func (*LogicalExpression) expr()    {}
func (*UnaryExpression) expr()      {}
func (*MemberExpression) expr()     {}
func (*IndexExpression) expr()      {}
func (*TableConstructor) expr()     {}
func (*ParenExpression) expr()      {}
