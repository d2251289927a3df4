// Package api is the public embedding surface of the obfuscator. Programs
// that want to obfuscate Lua from Go import this package; the CLI is a thin
// wrapper over it.
package api

import (
	"fmt"
	"os"

	"github.com/whit3rabbit/luamixer/internal/config"
	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/obfuscator"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

// Options re-exports the configuration record so callers do not import
// internal packages.
type Options = config.Options

// Result re-exports the pipeline outcome, including statistics and the
// rename mappings.
type Result = obfuscator.Result

// Bool builds the pointer booleans used for explicit technique overrides.
func Bool(v bool) *bool {
	return config.Bool(v)
}

// DefaultOptions returns the options used when a caller passes nil.
func DefaultOptions() Options {
	return config.DefaultOptions()
}

// Obfuscate transforms Lua source according to opts and returns the
// obfuscated code. A nil opts means defaults. Invalid Lua is reported as a
// *parser.ParseError carrying line and column.
func Obfuscate(source string, opts *Options) (string, error) {
	res := ObfuscateWithResult(source, opts)
	if !res.Success {
		return "", res.Err
	}
	return res.Code, nil
}

// ObfuscateWithResult is Obfuscate with the full Result: output, success
// flag, statistics summary, and name mappings.
func ObfuscateWithResult(source string, opts *Options) Result {
	if opts == nil {
		def := config.DefaultOptions()
		opts = &def
	}
	return obfuscator.Obfuscate(source, *opts)
}

// ObfuscateFile reads a Lua file and returns its obfuscated source.
func ObfuscateFile(path string, opts *Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	out, err := Obfuscate(string(data), opts)
	if err != nil {
		return "", fmt.Errorf("obfuscating %s: %w", path, err)
	}
	return out, nil
}

// ObfuscateFileToFile obfuscates inputPath and writes the result to
// outputPath.
func ObfuscateFileToFile(inputPath, outputPath string, opts *Options) error {
	out, err := ObfuscateFile(inputPath, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

// ParseLua parses source and returns the syntax tree, for callers that want
// to inspect code without transforming it.
func ParseLua(source string) (*luaast.Chunk, error) {
	return parser.Parse(source)
}

// ValidateLua reports whether source is syntactically valid Lua.
func ValidateLua(source string) bool {
	return parser.Validate(source)
}
