package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a parser error with optional metadata. Incomplete marks
// an error caused by running out of input mid-construct (used by the CLI's
// REPL mode to decide whether to keep buffering a line instead of failing).
type Error struct {
	Err        error
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

func newIncompleteError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Incomplete: true}
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	return newError(err)
}

// wrapLexError marks a lexer failure Incomplete when it was caused by
// running out of input mid-token (an unterminated string or a dangling
// escape), so a REPL can keep buffering instead of failing outright.
func wrapLexError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "unterminated") {
		return newIncompleteError(err)
	}
	return newError(err)
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}

// expectedErrorf formats a parse error as `(line:col): expected X, got Y`.
// Running out of input mid-construct is marked Incomplete so a REPL can
// keep buffering instead of failing.
func expectedErrorf(pos Position, expected string, got Token) error {
	err := fmt.Errorf("(%d:%d): expected %s, got %s", pos.Line, pos.Column, expected, describeToken(got))
	if got.Type == tokenEOF {
		return newIncompleteError(err)
	}
	return newError(err)
}

func describeToken(tok Token) string {
	if tok.Type == tokenIdentifier || tok.Type == tokenNumber || tok.Type == tokenString {
		return fmt.Sprintf("%s %q", tok.Type, tok.Lexeme)
	}
	return tok.Type.String()
}
