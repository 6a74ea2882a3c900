package lang

import (
	"fmt"
	"time"

	"github.com/Toshiki428/DICE/parser"
)

// runTimed evaluates target, wall-clock timing the call, and always emits
// "[TIMED: <label>] <seconds>s" to the interpreter's sink — even when
// target fails, so a failing branch's cost is still visible.
func (interp *Interpreter) runTimed(label string, target parser.Node, env *Env) (Value, error) {
	start := time.Now()
	val, err := interp.eval(target, env)
	elapsed := time.Since(start).Seconds()
	interp.WriteOut(fmt.Sprintf("[TIMED: %s] %.4fs\n", label, elapsed))
	return val, err
}
