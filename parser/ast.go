package parser

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Stmt is any node usable as an immediate child of a Statements block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is any node usable in expression position.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed DICE file: a single Statements node
// holding every top-level declaration and statement.
type Program struct {
	Body *Statements
}

func (p *Program) Pos() Position { return p.Body.Pos() }

// Statements owns an ordered list of statement nodes (a `{...}` block, or
// the top level of a program).
type Statements struct {
	List []Stmt
	Posn Position
}

func (s *Statements) Pos() Position { return s.Posn }
func (*Statements) stmtNode()       {}
func (*Statements) exprNode()       {}

// FuncDef declares a named function: `func name(params) { body }`.
type FuncDef struct {
	Name   string
	Params []string
	Body   *Statements
	Posn   Position
}

func (d *FuncDef) Pos() Position { return d.Posn }
func (*FuncDef) stmtNode()       {}

// TaskUnitDef declares a class-like grouping of zero-arg step methods:
// `taskunit Name { step1() {...} step2() {...} }`.
type TaskUnitDef struct {
	Name    string
	Methods []*FuncDef
	Posn    Position
}

func (d *TaskUnitDef) Pos() Position { return d.Posn }
func (*TaskUnitDef) stmtNode()       {}

// Call invokes callee with the given arguments.
type Call struct {
	Callee Expr
	Args   []Expr
	Posn   Position
}

func (c *Call) Pos() Position { return c.Posn }
func (*Call) exprNode()       {}
func (*Call) stmtNode()       {}

// MethodCall is postfix `.name(args)` member invocation, e.g.
// `group.next()` or `sensor.step1()`.
type MethodCall struct {
	Receiver Expr
	Name     string
	Args     []Expr
	Posn     Position
}

func (m *MethodCall) Pos() Position { return m.Posn }
func (*MethodCall) exprNode()       {}
func (*MethodCall) stmtNode()       {}

// Assign binds name to value's result, in the current scope if unbound,
// otherwise in the nearest enclosing scope that already binds it.
type Assign struct {
	Name  string
	Value Expr
	Posn  Position
}

func (a *Assign) Pos() Position { return a.Posn }
func (*Assign) stmtNode()       {}

// If is a conditional with an optional else branch.
type If struct {
	Cond Expr
	Then *Statements
	Else *Statements // nil when absent
	Posn Position
}

func (n *If) Pos() Position { return n.Posn }
func (*If) stmtNode()       {}
func (*If) exprNode()       {}

// Loop sequentially iterates Var over [RangeLo, RangeHi).
type Loop struct {
	Var     string
	RangeLo Expr
	RangeHi Expr
	Body    *Statements
	Posn    Position
}

func (n *Loop) Pos() Position { return n.Posn }
func (*Loop) stmtNode()       {}
func (*Loop) exprNode()       {}

// ParallelLoop spawns one concurrent branch per iteration value.
type ParallelLoop struct {
	Var     string
	RangeLo Expr
	RangeHi Expr
	Body    *Statements
	Posn    Position
}

func (n *ParallelLoop) Pos() Position { return n.Posn }
func (*ParallelLoop) stmtNode()       {}
func (*ParallelLoop) exprNode()       {}

// Parallel runs every immediate statement of Body concurrently and joins.
type Parallel struct {
	Body *Statements
	Posn Position
}

func (n *Parallel) Pos() Position { return n.Posn }
func (*Parallel) stmtNode()       {}
func (*Parallel) exprNode()       {}

// Sequence is the binary, right-associative `head -> tail` chain.
type Sequence struct {
	Head Node
	Tail Node
	Posn Position
}

func (n *Sequence) Pos() Position { return n.Posn }
func (*Sequence) stmtNode()       {}

// Timed wraps a target node with a `@timed` annotation. Label is the
// explicit `@timed("...")` argument, or, for the bare `@timed` form, the
// label the parser derives from the target.
type Timed struct {
	Label  string
	Target Node
	Posn   Position
}

func (n *Timed) Pos() Position { return n.Posn }
func (*Timed) stmtNode()       {}

// Identifier references a variable, function, or taskunit class by name.
type Identifier struct {
	Name string
	Posn Position
}

func (n *Identifier) Pos() Position { return n.Posn }
func (*Identifier) exprNode()       {}

// NumberLiteral is a decimal numeric literal.
type NumberLiteral struct {
	Value float64
	Posn  Position
}

func (n *NumberLiteral) Pos() Position { return n.Posn }
func (*NumberLiteral) exprNode()       {}

// StringLiteral is a double-quoted string literal, already unescaped.
type StringLiteral struct {
	Value string
	Posn  Position
}

func (n *StringLiteral) Pos() Position { return n.Posn }
func (*StringLiteral) exprNode()       {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value bool
	Posn  Position
}

func (n *BooleanLiteral) Pos() Position { return n.Posn }
func (*BooleanLiteral) exprNode()       {}

// BinaryOp applies a binary operator: arithmetic, comparison, or logical.
type BinaryOp struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Posn  Position
}

func (n *BinaryOp) Pos() Position { return n.Posn }
func (*BinaryOp) exprNode()       {}

// ExprStmt wraps a bare expression used in statement position, e.g. a
// call whose result is discarded.
type ExprStmt struct {
	Expr Expr
	Posn Position
}

func (s *ExprStmt) Pos() Position { return s.Posn }
func (*ExprStmt) stmtNode()       {}

// UnaryOp applies a prefix operator (`!` or `-`).
type UnaryOp struct {
	Op      TokenType
	Operand Expr
	Posn    Position
}

func (n *UnaryOp) Pos() Position { return n.Posn }
func (*UnaryOp) exprNode()       {}
