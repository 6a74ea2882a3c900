package lang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Toshiki428/DICE/parser"
)

func TestParallelTasksNextSkipsMembersWithoutStep(t *testing.T) {
	src := `
taskunit A {
	step1() { print("a1") }
	step2() { print("a2") }
}
taskunit B {
	step1() { print("b1") }
}
func main() {
	a = A()
	b = B()
	group = parallelTasks(a, b)
	group.next()
	group.next()
}
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	interp.Global.Define("parallelTasks", &Function{Name: "parallelTasks", Builtin: func(args []Value) (Value, error) {
		members := make([]*TaskUnitInstance, len(args))
		for i, a := range args {
			inst, ok := a.(*TaskUnitInstance)
			if !ok {
				return nil, NewRuntimeError(Position{}, "parallelTasks expects taskunit instances")
			}
			members[i] = inst
		}
		return NewParallelTasks(members), nil
	}})

	if err := interp.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a1") || !strings.Contains(out, "b1") {
		t.Fatalf("expected step1 output from both members, got %q", out)
	}
	if !strings.Contains(out, "a2") {
		t.Fatalf("expected a's step2 output, got %q", out)
	}
	if strings.Contains(out, "b2") {
		t.Fatalf("b has no step2, should not have printed b2: %q", out)
	}
}

func TestParallelTasksNextErrorsWhenGroupExhausted(t *testing.T) {
	src := `
taskunit A {
	step1() { print("a1") }
}
func main() {
	a = A()
	group = parallelTasks(a)
	group.next()
	group.next()
}
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	interp.Global.Define("parallelTasks", &Function{Name: "parallelTasks", Builtin: func(args []Value) (Value, error) {
		members := make([]*TaskUnitInstance, len(args))
		for i, a := range args {
			members[i] = a.(*TaskUnitInstance)
		}
		return NewParallelTasks(members), nil
	}})

	err = interp.Run(prog)
	if err == nil {
		t.Fatalf("expected error when group is exhausted")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
}

func TestDirectTaskUnitMethodCall(t *testing.T) {
	src := `
taskunit Sensor {
	step1() { print("reading") }
}
func main() {
	s = Sensor()
	s.step1()
}
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	if err := interp.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "reading\n" {
		t.Fatalf("expected %q, got %q", "reading\n", buf.String())
	}
}
