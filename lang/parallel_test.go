package lang

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Toshiki428/DICE/parser"
)

func TestRunBranchesJoinsAllBeforeReturning(t *testing.T) {
	var running int32
	var maxConcurrent int32
	branches := make([]func() error, 5)
	for i := range branches {
		branches[i] = func() error {
			n := atomic.AddInt32(&running, 1)
			for {
				max := atomic.LoadInt32(&maxConcurrent)
				if n <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}
	}
	if err := runBranches(branches); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&maxConcurrent) < 2 {
		t.Fatalf("expected branches to run concurrently, max concurrent was %d", maxConcurrent)
	}
}

func TestRunBranchesReturnsFirstErrorInBranchIndexOrder(t *testing.T) {
	errA := errors.New("branch 0 failed")
	errB := errors.New("branch 1 failed")
	branches := []func() error{
		func() error {
			// Slower branch, but lower index — must still win.
			time.Sleep(15 * time.Millisecond)
			return errA
		},
		func() error {
			time.Sleep(1 * time.Millisecond)
			return errB
		},
	}
	err := runBranches(branches)
	if !errors.Is(err, errA) {
		t.Fatalf("expected first-indexed branch's error to win, got %v", err)
	}
}

func TestRunBranchesNoErrorWhenAllSucceed(t *testing.T) {
	branches := []func() error{
		func() error { return nil },
		func() error { return nil },
	}
	if err := runBranches(branches); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestParallelLoopRejectsInvertedRange(t *testing.T) {
	prog, err := parser.Parse(`p loop i in 5..2 { print(i) }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	runErr := interp.Run(prog)
	if runErr == nil {
		t.Fatalf("expected RuntimeError for lo > hi")
	}
	if _, ok := runErr.(*RuntimeError); !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", runErr, runErr)
	}
}

func TestParallelLoopAllowsEmptyRange(t *testing.T) {
	prog, err := parser.Parse(`p loop i in 3..3 { print(i) }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	if err := interp.Run(prog); err != nil {
		t.Fatalf("expected lo == hi to run zero branches without error, got %v", err)
	}
}

func TestEvalParallelWrapsBranchErrorInParallelError(t *testing.T) {
	prog, err := parser.Parse(`
func boom() { 1 / 0 }
parallel {
	boom()
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	registerTestBuiltins(interp)
	runErr := interp.Run(prog)
	if runErr == nil {
		t.Fatalf("expected division-by-zero to propagate")
	}
	var perr *ParallelError
	if !errors.As(runErr, &perr) {
		t.Fatalf("expected *ParallelError, got %T: %v", runErr, runErr)
	}
	var rerr *RuntimeError
	if !errors.As(perr.Unwrap(), &rerr) {
		t.Fatalf("expected wrapped *RuntimeError, got %T: %v", perr.Unwrap(), perr.Unwrap())
	}
}
