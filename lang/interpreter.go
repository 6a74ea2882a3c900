// Package lang implements DICE's runtime: environments, values, and the
// direct-recursive tree-walking evaluator that executes a parsed program.
package lang

import (
	"fmt"
	"io"
	"sync"

	"github.com/Toshiki428/DICE/parser"
)

// Interpreter owns the global environment and the sink every `print` and
// `@timed` report is written to. outMu serializes writes to Out so that
// concurrent branches' print/@timed output stays atomic at the line
// level instead of interleaving mid-write.
type Interpreter struct {
	Global *Env
	Out    io.Writer
	outMu  sync.Mutex
}

// NewInterpreter creates an interpreter writing to out and returns it with
// an empty global scope; callers register builtins with Global.Define
// before calling Run.
func NewInterpreter(out io.Writer) *Interpreter {
	return &Interpreter{Global: NewEnv(nil), Out: out}
}

func toPos(p parser.Position) Position {
	return Position{Line: p.Line, Column: p.Column}
}

// Run binds every top-level FuncDef and TaskUnitDef, executes the
// remaining top-level statements in source order, then invokes `main()`
// with no arguments if one was defined.
func (interp *Interpreter) Run(prog *parser.Program) error {
	var rest []parser.Stmt
	for _, stmt := range prog.Body.List {
		switch s := stmt.(type) {
		case *parser.FuncDef:
			interp.bindFuncDef(s, interp.Global)
		case *parser.TaskUnitDef:
			interp.bindTaskUnitDef(s, interp.Global)
		default:
			rest = append(rest, stmt)
		}
	}
	for _, stmt := range rest {
		if _, err := interp.eval(stmt, interp.Global); err != nil {
			return err
		}
	}
	main, ok := interp.Global.Get("main")
	if !ok {
		return nil
	}
	fn, ok := main.(*Function)
	if !ok {
		return NewRuntimeError(Position{}, "main is not a function")
	}
	_, err := interp.call(fn, nil, Position{})
	return err
}

func (interp *Interpreter) bindFuncDef(d *parser.FuncDef, env *Env) {
	env.Define(d.Name, &Function{Name: d.Name, Params: d.Params, Body: d.Body, Closure: env})
}

// bindTimedFuncDef binds d the way bindFuncDef does, but marks the
// resulting Function so every future call to it — not just this
// definition — reports a `[TIMED: label]` line.
func (interp *Interpreter) bindTimedFuncDef(d *parser.FuncDef, env *Env, label string) {
	env.Define(d.Name, &Function{Name: d.Name, Params: d.Params, Body: d.Body, Closure: env, TimedLabel: label})
}

func (interp *Interpreter) bindTaskUnitDef(d *parser.TaskUnitDef, env *Env) {
	methods := make([]TaskUnitMethod, len(d.Methods))
	for i, m := range d.Methods {
		methods[i] = TaskUnitMethod{Name: m.Name, Body: m.Body}
	}
	env.Define(d.Name, &TaskUnitClass{Name: d.Name, Methods: methods, Closure: env})
}

// eval walks node, executing it as a statement and/or evaluating it as an
// expression — DICE's grammar gives many nodes dual status, so one
// recursive function serves both roles.
func (interp *Interpreter) eval(node parser.Node, env *Env) (Value, error) {
	switch n := node.(type) {
	case *parser.Statements:
		return interp.evalStatements(n, env)
	case *parser.FuncDef:
		interp.bindFuncDef(n, env)
		return UnitValue, nil
	case *parser.TaskUnitDef:
		interp.bindTaskUnitDef(n, env)
		return UnitValue, nil
	case *parser.ExprStmt:
		return interp.eval(n.Expr, env)
	case *parser.Assign:
		val, err := interp.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		env.Assign(n.Name, val)
		return UnitValue, nil
	case *parser.If:
		return interp.evalIf(n, env)
	case *parser.Loop:
		return interp.evalLoop(n, env)
	case *parser.ParallelLoop:
		return interp.evalParallelLoop(n, env)
	case *parser.Parallel:
		return interp.evalParallel(n, env)
	case *parser.Sequence:
		if _, err := interp.eval(n.Head, env); err != nil {
			return nil, err
		}
		return interp.eval(n.Tail, env)
	case *parser.Timed:
		return interp.evalTimed(n, env)
	case *parser.Call:
		return interp.evalCall(n, env)
	case *parser.MethodCall:
		return interp.evalMethodCall(n, env)
	case *parser.Identifier:
		val, ok := env.Get(n.Name)
		if !ok {
			return nil, &NameError{Pos: toPos(n.Posn), Name: n.Name}
		}
		return val, nil
	case *parser.NumberLiteral:
		return Number(n.Value), nil
	case *parser.StringLiteral:
		return String(n.Value), nil
	case *parser.BooleanLiteral:
		return Bool(n.Value), nil
	case *parser.BinaryOp:
		return interp.evalBinaryOp(n, env)
	case *parser.UnaryOp:
		return interp.evalUnaryOp(n, env)
	default:
		return nil, NewRuntimeError(Position{}, "cannot evaluate node of type %T", node)
	}
}

func (interp *Interpreter) evalStatements(s *parser.Statements, env *Env) (Value, error) {
	var result Value = UnitValue
	for _, stmt := range s.List {
		val, err := interp.eval(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (interp *Interpreter) evalIf(n *parser.If, env *Env) (Value, error) {
	cond, err := interp.eval(n.Cond, env)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return interp.evalStatements(n.Then, NewEnv(env))
	}
	if n.Else != nil {
		return interp.evalStatements(n.Else, NewEnv(env))
	}
	return UnitValue, nil
}

func (interp *Interpreter) evalRange(loExpr, hiExpr parser.Expr, env *Env) (int, int, error) {
	loVal, err := interp.eval(loExpr, env)
	if err != nil {
		return 0, 0, err
	}
	hiVal, err := interp.eval(hiExpr, env)
	if err != nil {
		return 0, 0, err
	}
	lo, ok := loVal.(Number)
	if !ok {
		return 0, 0, NewRuntimeError(toPos(loExpr.Pos()), "loop range bound must be a number, got %s", loVal.String())
	}
	hi, ok := hiVal.(Number)
	if !ok {
		return 0, 0, NewRuntimeError(toPos(hiExpr.Pos()), "loop range bound must be a number, got %s", hiVal.String())
	}
	return int(lo), int(hi), nil
}

func (interp *Interpreter) evalLoop(n *parser.Loop, env *Env) (Value, error) {
	lo, hi, err := interp.evalRange(n.RangeLo, n.RangeHi, env)
	if err != nil {
		return nil, err
	}
	for i := lo; i < hi; i++ {
		iterEnv := NewEnv(env)
		iterEnv.Define(n.Var, Number(i))
		if _, err := interp.evalStatements(n.Body, iterEnv); err != nil {
			return nil, err
		}
	}
	return UnitValue, nil
}

func (interp *Interpreter) evalCall(n *parser.Call, env *Env) (Value, error) {
	callee, err := interp.eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	switch c := callee.(type) {
	case *Function:
		return interp.call(c, args, toPos(n.Posn))
	case *TaskUnitClass:
		return &TaskUnitInstance{Class: c, Env: NewEnv(c.Closure)}, nil
	default:
		return nil, NewRuntimeError(toPos(n.Posn), "value is not callable: %s", callee.String())
	}
}

func (interp *Interpreter) evalArgs(exprs []parser.Expr, env *Env) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, arg := range exprs {
		val, err := interp.eval(arg, env)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

func (interp *Interpreter) evalMethodCall(n *parser.MethodCall, env *Env) (Value, error) {
	receiver, err := interp.eval(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	args, err := interp.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	pos := toPos(n.Posn)
	switch r := receiver.(type) {
	case *ParallelTasks:
		if n.Name != "next" {
			return nil, NewRuntimeError(pos, "parallelTasks has no method %s", n.Name)
		}
		if len(args) != 0 {
			return nil, NewRuntimeError(pos, "next() takes no arguments")
		}
		return interp.callNext(r, pos)
	case *TaskUnitInstance:
		return interp.callTaskUnitMethod(r, n.Name, args, pos)
	default:
		return nil, NewRuntimeError(pos, "value has no methods: %s", receiver.String())
	}
}

// call invokes fn (a builtin or a DICE closure) with args, enforcing
// positional arity for closures.
func (interp *Interpreter) call(fn *Function, args []Value, callSite Position) (Value, error) {
	if fn.IsBuiltin() {
		return fn.Builtin(args)
	}
	if len(args) != len(fn.Params) {
		return nil, NewRuntimeError(callSite, "%s expects %d argument(s), got %d", callName(fn), len(fn.Params), len(args))
	}
	callEnv := NewEnv(fn.Closure)
	for i, param := range fn.Params {
		callEnv.Define(param, args[i])
	}
	if fn.TimedLabel != "" {
		return interp.runTimed(fn.TimedLabel, fn.Body, callEnv)
	}
	return interp.evalStatements(fn.Body, callEnv)
}

func callName(fn *Function) string {
	if fn.Name == "" {
		return "function"
	}
	return fn.Name
}

func (interp *Interpreter) evalBinaryOp(n *parser.BinaryOp, env *Env) (Value, error) {
	left, err := interp.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	pos := toPos(n.Posn)
	switch n.Op.String() {
	case "&&":
		if !Truthy(left) {
			return Bool(false), nil
		}
		right, err := interp.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(right)), nil
	case "||":
		if Truthy(left) {
			return Bool(true), nil
		}
		right, err := interp.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(right)), nil
	}
	right, err := interp.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(n.Op, left, right, pos)
}

func (interp *Interpreter) evalUnaryOp(n *parser.UnaryOp, env *Env) (Value, error) {
	operand, err := interp.eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	return applyUnaryOp(n.Op, operand, toPos(n.Posn))
}

func (interp *Interpreter) evalTimed(n *parser.Timed, env *Env) (Value, error) {
	if fd, ok := n.Target.(*parser.FuncDef); ok {
		interp.bindTimedFuncDef(fd, env, n.Label)
		return UnitValue, nil
	}
	return interp.runTimed(n.Label, n.Target, env)
}

// WriteOut writes s to the interpreter's sink under outMu, so a builtin
// registered from outside the package (runtime's print, mock_sensor) is
// as line-atomic as @timed's own reporting.
func (interp *Interpreter) WriteOut(s string) {
	interp.outMu.Lock()
	defer interp.outMu.Unlock()
	fmt.Fprint(interp.Out, s)
}
