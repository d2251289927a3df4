// Package parser adapts the external Lua grammar parser
// (github.com/yuin/gopher-lua) to the tree the transformation passes work on.
// It is the only package that imports the upstream parser; everything above it
// sees luaast nodes and typed errors.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"github.com/whit3rabbit/luamixer/internal/luaast"
)

// ParseError describes a syntax failure in the input source. Line and Column
// are 1-based and zero when the underlying diagnostics did not carry a
// location.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// ErrUnsupportedNode is wrapped by conversion errors for upstream node kinds
// the adapter does not recognize. Unknown nodes are a hard error, never a
// silent omission.
var ErrUnsupportedNode = errors.New("unsupported syntax node")

var (
	bracketLocRegex = regexp.MustCompile(`\[(\d+):(\d+)\]`)
	lineLocRegex    = regexp.MustCompile(`line[: ]+(\d+)`)
)

// Parse converts Lua source text into a tree rooted at a Chunk. Empty or
// whitespace-only source parses successfully to an empty Chunk. On syntax
// failure the returned error is a *ParseError.
func Parse(source string) (*luaast.Chunk, error) {
	stmts, err := parse.Parse(strings.NewReader(source), "input")
	if err != nil {
		return nil, toParseError(err)
	}
	chunk, err := convertChunk(stmts)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// Validate reports whether the source is syntactically valid Lua. The tree is
// discarded.
func Validate(source string) bool {
	_, err := Parse(source)
	return err == nil
}

// toParseError funnels the upstream error into a ParseError, recovering a
// 1-based line and column where possible. Extraction order: explicit fields
// on the typed parse error, then a [line:col] bracket pattern in the message,
// then a textual "line N" pattern. Failing all three the message alone is
// surfaced.
func toParseError(err error) *ParseError {
	msg := strings.TrimSpace(err.Error())

	var perr *parse.Error
	if errors.As(err, &perr) {
		pe := &ParseError{Message: strings.TrimSpace(perr.Message)}
		if pe.Message == "" {
			pe.Message = msg
		}
		if perr.Pos.Line > 0 {
			pe.Line = perr.Pos.Line
			pe.Column = perr.Pos.Column
			if pe.Column < 1 {
				pe.Column = 1
			}
		}
		return pe
	}

	if m := bracketLocRegex.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return &ParseError{Message: msg, Line: line, Column: col}
	}
	if m := lineLocRegex.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ParseError{Message: msg, Line: line, Column: 1}
	}
	return &ParseError{Message: msg}
}
