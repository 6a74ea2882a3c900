package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Toshiki428/DICE/parser"
)

// ValueType enumerates the runtime value categories a DICE program can
// produce.
type ValueType int

const (
	TypeUnit ValueType = iota
	TypeNumber
	TypeString
	TypeBool
	TypeFunction
	TypeTaskUnitClass
	TypeTaskUnitInstance
	TypeParallelTasks
)

// Value is any runtime object the interpreter passes around. Go's
// zero-cost interface satisfaction lets each concrete kind carry its own
// payload instead of a single tagged union struct.
type Value interface {
	Type() ValueType
	String() string
}

// Unit is the value produced by statements with no meaningful result
// (assignment, print, a bare parallel block).
type Unit struct{}

func (Unit) Type() ValueType { return TypeUnit }
func (Unit) String() string  { return "()" }

// UnitValue is the shared Unit instance.
var UnitValue = Unit{}

// Number is DICE's sole numeric type, a float64 — no separate int/float
// distinction at the language level.
type Number float64

func (Number) Type() ValueType { return TypeNumber }

// String renders n the way a float renders under Python's str() — DICE has
// no integer type, so a whole-number result like 7 still prints as "7.0",
// not "7".
func (n Number) String() string {
	s := strconv.FormatFloat(float64(n), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// String is a DICE string value.
type String string

func (String) Type() ValueType   { return TypeString }
func (s String) String() string { return string(s) }

// Bool is a DICE boolean value.
type Bool bool

func (Bool) Type() ValueType { return TypeBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// BuiltinFunc is a host function exposed to DICE scripts.
type BuiltinFunc func(args []Value) (Value, error)

// Function wraps either a user-defined closure or a host builtin. Exactly
// one of Builtin or Body is set. TimedLabel is non-empty when the
// function was declared as `@timed func name(...) {...}`: every call,
// not just the definition, reports a `[TIMED: ...]` line.
type Function struct {
	Name       string
	Params     []string
	Body       *parser.Statements
	Closure    *Env
	Builtin    BuiltinFunc
	TimedLabel string
}

func (*Function) Type() ValueType { return TypeFunction }
func (f *Function) String() string {
	if f.Name != "" {
		return fmt.Sprintf("<function %s>", f.Name)
	}
	return "<function>"
}

// IsBuiltin reports whether f wraps a host builtin rather than a DICE
// closure.
func (f *Function) IsBuiltin() bool { return f.Builtin != nil }

// TaskUnitMethod is a single zero-argument step method of a taskunit.
type TaskUnitMethod struct {
	Name string
	Body *parser.Statements
}

// TaskUnitClass is the value bound to a `taskunit Name { ... }`
// declaration's name — a template for creating instances.
type TaskUnitClass struct {
	Name    string
	Methods []TaskUnitMethod
	Closure *Env
}

func (*TaskUnitClass) Type() ValueType   { return TypeTaskUnitClass }
func (c *TaskUnitClass) String() string { return fmt.Sprintf("<taskunit %s>", c.Name) }

// TaskUnitInstance is a single member of a parallelTasks group, bound to
// one TaskUnitClass and carrying its own per-instance environment. The
// step cursor lives on the ParallelTasks group, not on the instance.
type TaskUnitInstance struct {
	Class *TaskUnitClass
	Env   *Env
}

func (*TaskUnitInstance) Type() ValueType { return TypeTaskUnitInstance }
func (i *TaskUnitInstance) String() string {
	return fmt.Sprintf("<taskunit %s instance>", i.Class.Name)
}

// MethodByStep returns the instance's step-N method (1-based, `stepN`) and
// whether it exists. A missing step is a normal, silent skip: step counts
// need not match across members of a group.
func (i *TaskUnitInstance) MethodByStep(step int) (TaskUnitMethod, bool) {
	name := fmt.Sprintf("step%d", step)
	for _, m := range i.Class.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return TaskUnitMethod{}, false
}

// ParallelTasks is the value produced by `parallelTasks(a, b, ...)`: a
// group of members driven forward one step at a time by `.next()` calls.
type ParallelTasks struct {
	Members []*TaskUnitInstance
	cursor  int // next step number to run, 1-based
}

func NewParallelTasks(members []*TaskUnitInstance) *ParallelTasks {
	return &ParallelTasks{Members: members, cursor: 1}
}

func (*ParallelTasks) Type() ValueType   { return TypeParallelTasks }
func (g *ParallelTasks) String() string { return fmt.Sprintf("<parallelTasks x%d>", len(g.Members)) }

// NextStep returns the step number this call to .next() will run and
// advances the cursor.
func (g *ParallelTasks) NextStep() int {
	step := g.cursor
	g.cursor++
	return step
}

// Truthy implements DICE's truthiness rule for `if`/`&&`/`||` conditions:
// only Bool(false) is falsy. There is no `0`/`""`/Unit falsiness — DICE
// keeps boolean conditions strictly typed.
func Truthy(v Value) bool {
	if b, ok := v.(Bool); ok {
		return bool(b)
	}
	return true
}
