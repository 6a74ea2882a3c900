package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/Toshiki428/DICE/lang"
	"github.com/Toshiki428/DICE/parser"
	"github.com/Toshiki428/DICE/runtime"
)

func main() {
	interp := runtime.NewInterpreter(os.Stdout)
	args := os.Args[1:]
	if len(args) > 0 {
		runtime.SetArgv(interp, args)
		script := args[0]
		var err error
		if script == "-" {
			err = runtime.EvaluateReader(interp, os.Stdin)
		} else {
			err = runtime.EvaluateFile(interp, script)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "dice: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runtime.SetArgv(interp, []string{})
	runREPL(interp)
}

func runREPL(interp *lang.Interpreter) {
	if !isInteractive() {
		runBufferedREPL(interp, bufio.NewReader(os.Stdin))
		return
	}
	runInteractiveREPL(interp)
}

func runBufferedREPL(interp *lang.Interpreter, reader *bufio.Reader) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if buffer.Len() == 0 {
					return
				}
			} else {
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(line)
		src := buffer.String()
		prog, parseErr := parser.Parse(src)
		if parseErr != nil {
			if parser.IsIncomplete(parseErr) && !errors.Is(err, io.EOF) {
				continue
			}
			fmt.Fprintf(os.Stderr, "parse error: %v\n", parseErr)
			buffer.Reset()
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}
		buffer.Reset()
		if runErr := interp.Run(prog); runErr != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

func runInteractiveREPL(interp *lang.Interpreter) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := "dice> "
		if buffer.Len() > 0 {
			prompt = ".... "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		prog, parseErr := parser.Parse(src)
		if parseErr != nil {
			if parser.IsIncomplete(parseErr) {
				continue
			}
			fmt.Fprintf(os.Stderr, "parse error: %v\n", parseErr)
			buffer.Reset()
			continue
		}

		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		if runErr := interp.Run(prog); runErr != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		}
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".dice_history")
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
