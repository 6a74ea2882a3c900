package runtime

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex"

	"github.com/Toshiki428/DICE/lang"
)

// installBuiltins registers the host builtin surface DICE scripts see,
// plus the telemetry-scripting extras a host embedding DICE for
// log/sensor scripting would plausibly add.
func installBuiltins(interp *lang.Interpreter) {
	define := func(name string, fn lang.BuiltinFunc) {
		interp.Global.Define(name, &lang.Function{Name: name, Builtin: fn})
	}

	define("print", builtinPrint(interp))
	define("mock_sensor", builtinMockSensor(interp))
	define("wait", builtinWait)
	define("regex_match", builtinRegexMatch)
	define("keyword_hits", builtinKeywordHits)
	define("parallelTasks", builtinParallelTasks)
}

// builtinParallelTasks groups already-instantiated taskunit instances into
// a ParallelTasks value driven forward by repeated `.next()` calls.
func builtinParallelTasks(args []lang.Value) (lang.Value, error) {
	members := make([]*lang.TaskUnitInstance, len(args))
	for i, a := range args {
		inst, ok := a.(*lang.TaskUnitInstance)
		if !ok {
			return nil, lang.NewRuntimeError(lang.Position{}, "parallelTasks expects taskunit instances, got %s", a.String())
		}
		members[i] = inst
	}
	return lang.NewParallelTasks(members), nil
}

// builtinPrint joins its arguments with a single space and appends one
// newline. Writes go through Interpreter.WriteOut so a print running in
// one parallel branch can't interleave mid-line with another's.
func builtinPrint(interp *lang.Interpreter) lang.BuiltinFunc {
	return func(args []lang.Value) (lang.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		interp.WriteOut(strings.Join(parts, " ") + "\n")
		return lang.UnitValue, nil
	}
}

// builtinMockSensor simulates a sensor reading: sleeps for delaySeconds,
// then reports a uniform [0,100) draw rounded to two decimals.
func builtinMockSensor(interp *lang.Interpreter) lang.BuiltinFunc {
	return func(args []lang.Value) (lang.Value, error) {
		if len(args) != 2 {
			return nil, lang.NewRuntimeError(lang.Position{}, "mock_sensor expects 2 arguments, got %d", len(args))
		}
		name, ok := args[0].(lang.String)
		if !ok {
			return nil, lang.NewRuntimeError(lang.Position{}, "mock_sensor's first argument must be a string")
		}
		delay, ok := args[1].(lang.Number)
		if !ok {
			return nil, lang.NewRuntimeError(lang.Position{}, "mock_sensor's second argument must be a number")
		}
		time.Sleep(time.Duration(float64(delay) * float64(time.Second)))
		value := rand.Float64() * 100
		rounded := float64(int(value*100+0.5)) / 100
		interp.WriteOut(fmt.Sprintf("[%s] センサー値: %.2f\n", string(name), rounded))
		return lang.Number(rounded), nil
	}
}

// builtinWait pauses the calling branch for the given number of seconds,
// a plain concurrency-demonstrating primitive alongside mock_sensor.
func builtinWait(args []lang.Value) (lang.Value, error) {
	if len(args) != 1 {
		return nil, lang.NewRuntimeError(lang.Position{}, "wait expects 1 argument, got %d", len(args))
	}
	seconds, ok := args[0].(lang.Number)
	if !ok {
		return nil, lang.NewRuntimeError(lang.Position{}, "wait's argument must be a number")
	}
	time.Sleep(time.Duration(float64(seconds) * float64(time.Second)))
	return lang.UnitValue, nil
}

// builtinRegexMatch reports whether pattern matches anywhere in text,
// using coregex the way kolkov-uawk compiles and runs AWK regex patterns.
func builtinRegexMatch(args []lang.Value) (lang.Value, error) {
	if len(args) != 2 {
		return nil, lang.NewRuntimeError(lang.Position{}, "regex_match expects 2 arguments, got %d", len(args))
	}
	pattern, ok := args[0].(lang.String)
	if !ok {
		return nil, lang.NewRuntimeError(lang.Position{}, "regex_match's first argument must be a string")
	}
	text, ok := args[1].(lang.String)
	if !ok {
		return nil, lang.NewRuntimeError(lang.Position{}, "regex_match's second argument must be a string")
	}
	re, err := coregex.Compile(string(pattern))
	if err != nil {
		return nil, lang.NewRuntimeError(lang.Position{}, "invalid regex pattern %q: %v", string(pattern), err)
	}
	return lang.Bool(re.MatchString(string(text))), nil
}

// builtinKeywordHits counts the occurrences of the given keywords in text,
// using ahocorasick's multi-pattern matcher for a single linear scan
// instead of one regex_match call per keyword.
func builtinKeywordHits(args []lang.Value) (lang.Value, error) {
	if len(args) < 2 {
		return nil, lang.NewRuntimeError(lang.Position{}, "keyword_hits expects a text argument and at least one keyword")
	}
	text, ok := args[0].(lang.String)
	if !ok {
		return nil, lang.NewRuntimeError(lang.Position{}, "keyword_hits's first argument must be a string")
	}
	keywords := make([]string, len(args)-1)
	for i, arg := range args[1:] {
		kw, ok := arg.(lang.String)
		if !ok {
			return nil, lang.NewRuntimeError(lang.Position{}, "keyword_hits's keyword arguments must be strings")
		}
		keywords[i] = string(kw)
	}
	automaton, err := ahocorasick.NewBuilder().AddStrings(keywords).Build()
	if err != nil {
		return nil, lang.NewRuntimeError(lang.Position{}, "keyword_hits failed to build matcher: %v", err)
	}
	hits := automaton.Count([]byte(string(text)))
	return lang.Number(hits), nil
}
