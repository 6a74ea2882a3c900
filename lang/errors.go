package lang

import "fmt"

// Position mirrors parser.Position without importing parser back into the
// error path — errors.go is consulted from runtime as well, and keeping it
// a plain struct avoids ping-ponging types across package boundaries.
type Position struct {
	Line   int
	Column int
}

// NameError reports a reference to an unbound identifier.
type NameError struct {
	Pos  Position
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("(%d:%d): undefined name %q", e.Pos.Line, e.Pos.Column, e.Name)
}

// RuntimeError reports a type mismatch, arity mismatch, or other failure
// discovered only while evaluating a well-formed program.
type RuntimeError struct {
	Pos     Position
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("(%d:%d): %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func NewRuntimeError(pos Position, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ParallelError wraps the first error observed while joining the branches
// of a Parallel block, a ParallelLoop, or a parallelTasks .next() step, in
// branch-index order.
type ParallelError struct {
	Pos Position
	Err error
}

func (e *ParallelError) Error() string {
	return fmt.Sprintf("(%d:%d): parallel block failed: %s", e.Pos.Line, e.Pos.Column, e.Err.Error())
}

func (e *ParallelError) Unwrap() error { return e.Err }
