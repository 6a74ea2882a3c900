package parser

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return prog
}

func TestParseFuncDef(t *testing.T) {
	prog := mustParse(t, `
func add(a, b) {
	a + b
}
`)
	if len(prog.Body.List) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(prog.Body.List))
	}
	fn, ok := prog.Body.List[0].(*FuncDef)
	if !ok {
		t.Fatalf("expected *FuncDef, got %T", prog.Body.List[0])
	}
	if fn.Name != "add" {
		t.Fatalf("expected name %q, got %q", "add", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Fatalf("unexpected params: %v", fn.Params)
	}
}

func TestParseTaskUnitDef(t *testing.T) {
	prog := mustParse(t, `
taskunit Sensor {
	step1() { mock_sensor("a", 1) }
	step2() { mock_sensor("b", 1) }
}
`)
	unit, ok := prog.Body.List[0].(*TaskUnitDef)
	if !ok {
		t.Fatalf("expected *TaskUnitDef, got %T", prog.Body.List[0])
	}
	if unit.Name != "Sensor" {
		t.Fatalf("expected name %q, got %q", "Sensor", unit.Name)
	}
	if len(unit.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(unit.Methods))
	}
	if unit.Methods[0].Name != "step1" || unit.Methods[1].Name != "step2" {
		t.Fatalf("unexpected method names: %+v", unit.Methods)
	}
}

func TestParseAssignmentVsExpression(t *testing.T) {
	prog := mustParse(t, `x = 1
y`)
	if _, ok := prog.Body.List[0].(*Assign); !ok {
		t.Fatalf("expected *Assign, got %T", prog.Body.List[0])
	}
	exprStmt, ok := prog.Body.List[1].(*ExprStmt)
	if !ok {
		t.Fatalf("expected *ExprStmt, got %T", prog.Body.List[1])
	}
	if _, ok := exprStmt.Expr.(*Identifier); !ok {
		t.Fatalf("expected wrapped *Identifier, got %T", exprStmt.Expr)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `
if (x < 1) {
	print("small")
} else {
	print("big")
}
`)
	ifStmt, ok := prog.Body.List[0].(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", prog.Body.List[0])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected non-nil Else block")
	}
}

func TestParseLoopAndParallelLoop(t *testing.T) {
	prog := mustParse(t, `
loop i in 0..5 {
	print(i)
}
p loop j in 0..3 {
	print(j)
}
`)
	loop, ok := prog.Body.List[0].(*Loop)
	if !ok {
		t.Fatalf("expected *Loop, got %T", prog.Body.List[0])
	}
	if loop.Var != "i" {
		t.Fatalf("expected loop var %q, got %q", "i", loop.Var)
	}
	ploop, ok := prog.Body.List[1].(*ParallelLoop)
	if !ok {
		t.Fatalf("expected *ParallelLoop, got %T", prog.Body.List[1])
	}
	if ploop.Var != "j" {
		t.Fatalf("expected loop var %q, got %q", "j", ploop.Var)
	}
}

func TestParseParallelBlock(t *testing.T) {
	prog := mustParse(t, `
parallel {
	mock_sensor("a", 1)
	mock_sensor("b", 1)
}
`)
	par, ok := prog.Body.List[0].(*Parallel)
	if !ok {
		t.Fatalf("expected *Parallel, got %T", prog.Body.List[0])
	}
	if len(par.Body.List) != 2 {
		t.Fatalf("expected 2 branch statements, got %d", len(par.Body.List))
	}
}

func TestParseSequenceChainIsRightAssociative(t *testing.T) {
	prog := mustParse(t, `a() -> b() -> c()`)
	seq, ok := prog.Body.List[0].(*Sequence)
	if !ok {
		t.Fatalf("expected *Sequence, got %T", prog.Body.List[0])
	}
	if _, ok := seq.Head.(*ExprStmt); !ok {
		t.Fatalf("expected head *ExprStmt, got %T", seq.Head)
	}
	tail, ok := seq.Tail.(*Sequence)
	if !ok {
		t.Fatalf("expected tail *Sequence, got %T", seq.Tail)
	}
	if _, ok := tail.Head.(*ExprStmt); !ok {
		t.Fatalf("expected inner head *ExprStmt, got %T", tail.Head)
	}
	if _, ok := tail.Tail.(*ExprStmt); !ok {
		t.Fatalf("expected inner tail *ExprStmt, got %T", tail.Tail)
	}
}

func TestParseTimedDefaultLabel(t *testing.T) {
	prog := mustParse(t, `@timed mock_sensor("a", 1)`)
	timed, ok := prog.Body.List[0].(*Timed)
	if !ok {
		t.Fatalf("expected *Timed, got %T", prog.Body.List[0])
	}
	if timed.Label != "mock_sensor" {
		t.Fatalf("expected derived label %q, got %q", "mock_sensor", timed.Label)
	}
}

func TestParseTimedExplicitLabel(t *testing.T) {
	prog := mustParse(t, `@timed("fetch") mock_sensor("a", 1)`)
	timed, ok := prog.Body.List[0].(*Timed)
	if !ok {
		t.Fatalf("expected *Timed, got %T", prog.Body.List[0])
	}
	if timed.Label != "fetch" {
		t.Fatalf("expected label %q, got %q", "fetch", timed.Label)
	}
}

func TestParseTimedCannotNest(t *testing.T) {
	_, err := Parse(`@timed @timed print("x")`)
	if err == nil {
		t.Fatalf("expected error nesting @timed")
	}
}

func TestParseMethodCall(t *testing.T) {
	prog := mustParse(t, `group.next()`)
	exprStmt, ok := prog.Body.List[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected *ExprStmt, got %T", prog.Body.List[0])
	}
	call, ok := exprStmt.Expr.(*MethodCall)
	if !ok {
		t.Fatalf("expected *MethodCall, got %T", exprStmt.Expr)
	}
	if call.Name != "next" {
		t.Fatalf("expected method name %q, got %q", "next", call.Name)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog := mustParse(t, `1 + 2 * 3 == 7 && true`)
	exprStmt, ok := prog.Body.List[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected *ExprStmt, got %T", prog.Body.List[0])
	}
	and, ok := exprStmt.Expr.(*BinaryOp)
	if !ok || and.Op != tokenAndAnd {
		t.Fatalf("expected top-level &&, got %#v", exprStmt.Expr)
	}
	eq, ok := and.Left.(*BinaryOp)
	if !ok || eq.Op != tokenEqualEqual {
		t.Fatalf("expected == under &&, got %#v", and.Left)
	}
	add, ok := eq.Left.(*BinaryOp)
	if !ok || add.Op != tokenPlus {
		t.Fatalf("expected + under ==, got %#v", eq.Left)
	}
	mul, ok := add.Right.(*BinaryOp)
	if !ok || mul.Op != tokenStar {
		t.Fatalf("expected * on right of +, got %#v", add.Right)
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	prog := mustParse(t, `(1 + 2) * 3`)
	exprStmt := prog.Body.List[0].(*ExprStmt)
	mul, ok := exprStmt.Expr.(*BinaryOp)
	if !ok || mul.Op != tokenStar {
		t.Fatalf("expected top-level *, got %#v", exprStmt.Expr)
	}
	if _, ok := mul.Left.(*BinaryOp); !ok {
		t.Fatalf("expected parenthesized + on left, got %#v", mul.Left)
	}
}

func TestParseUnaryOperators(t *testing.T) {
	prog := mustParse(t, `!found -> -x`)
	seq, ok := prog.Body.List[0].(*Sequence)
	if !ok {
		t.Fatalf("expected *Sequence, got %T", prog.Body.List[0])
	}
	head := seq.Head.(*ExprStmt)
	unary, ok := head.Expr.(*UnaryOp)
	if !ok || unary.Op != tokenBang {
		t.Fatalf("expected unary !, got %#v", head.Expr)
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse(`func () {}`)
	if err == nil {
		t.Fatalf("expected parse error for missing function name")
	}
}
