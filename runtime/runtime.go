// Package runtime bootstraps a DICE interpreter with its standard builtins
// installed and exposes the file/stream entry points the CLI drives.
package runtime

import (
	"bytes"
	"io"
	"os"

	"github.com/Toshiki428/DICE/lang"
	"github.com/Toshiki428/DICE/parser"
)

// NewInterpreter constructs an interpreter writing to out with the
// standard builtin surface installed.
func NewInterpreter(out io.Writer) *lang.Interpreter {
	interp := lang.NewInterpreter(out)
	installBuiltins(interp)
	return interp
}

// SetArgv exposes the command-line arguments to DICE scripts through an
// `argv(i)` builtin. DICE has no collection type, so scripts index into
// argv positionally instead of receiving a list value.
func SetArgv(interp *lang.Interpreter, args []string) {
	values := make([]string, len(args))
	copy(values, args)
	interp.Global.Define("argv", &lang.Function{Name: "argv", Builtin: func(callArgs []lang.Value) (lang.Value, error) {
		if len(callArgs) != 1 {
			return nil, lang.NewRuntimeError(lang.Position{}, "argv expects 1 argument, got %d", len(callArgs))
		}
		idx, ok := callArgs[0].(lang.Number)
		if !ok {
			return nil, lang.NewRuntimeError(lang.Position{}, "argv index must be a number")
		}
		i := int(idx)
		if i < 0 || i >= len(values) {
			return nil, lang.NewRuntimeError(lang.Position{}, "argv index %d out of range (0..%d)", i, len(values)-1)
		}
		return lang.String(values[i]), nil
	}})
	interp.Global.Define("argc", &lang.Function{Name: "argc", Builtin: func(callArgs []lang.Value) (lang.Value, error) {
		if len(callArgs) != 0 {
			return nil, lang.NewRuntimeError(lang.Position{}, "argc expects no arguments")
		}
		return lang.Number(len(values)), nil
	}})
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx+1:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// EvaluateReader parses and runs DICE source read in full from r.
func EvaluateReader(interp *lang.Interpreter, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return EvaluateString(interp, string(src))
}

// EvaluateString parses and runs a DICE program from src.
func EvaluateString(interp *lang.Interpreter, src string) error {
	prog, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return interp.Run(prog)
}

// EvaluateFile loads and runs a DICE file, tolerating a leading `#!`
// shebang line for scripts invoked directly from a shell.
func EvaluateFile(interp *lang.Interpreter, path string) error {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return err
	}
	return EvaluateString(interp, string(data))
}
