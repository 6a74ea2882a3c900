package lang

import (
	"golang.org/x/sync/errgroup"

	"github.com/Toshiki428/DICE/parser"
)

// runBranches fans branches out one goroutine each, joins all of them, and
// returns the first non-nil error in branch-index order — not completion
// order. errgroup's own cancel-on-first-error behavior is deliberately not
// used for this: every spawned func always returns nil to the group and
// instead records its real error at its own slot in errs, so a slow
// branch's error is never masked by a faster sibling's success.
func runBranches(branches []func() error) error {
	var g errgroup.Group
	errs := make([]error, len(branches))
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			if err := branch(); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) evalParallel(n *parser.Parallel, env *Env) (Value, error) {
	branches := make([]func() error, len(n.Body.List))
	for i, stmt := range n.Body.List {
		stmt := stmt
		branches[i] = func() error {
			_, err := interp.eval(stmt, NewEnv(env))
			return err
		}
	}
	if err := runBranches(branches); err != nil {
		return nil, &ParallelError{Pos: toPos(n.Posn), Err: err}
	}
	return UnitValue, nil
}

func (interp *Interpreter) evalParallelLoop(n *parser.ParallelLoop, env *Env) (Value, error) {
	lo, hi, err := interp.evalRange(n.RangeLo, n.RangeHi, env)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, NewRuntimeError(toPos(n.Posn), "parallel loop range has lo=%d > hi=%d", lo, hi)
	}
	if hi == lo {
		return UnitValue, nil
	}
	branches := make([]func() error, hi-lo)
	for i := lo; i < hi; i++ {
		i := i
		branches[i-lo] = func() error {
			iterEnv := NewEnv(env)
			iterEnv.Define(n.Var, Number(i))
			_, err := interp.evalStatements(n.Body, iterEnv)
			return err
		}
	}
	if err := runBranches(branches); err != nil {
		return nil, &ParallelError{Pos: toPos(n.Posn), Err: err}
	}
	return UnitValue, nil
}
