// Package transformer holds the individual obfuscation passes. Tree passes
// rewrite the AST between parsing and code generation; text passes rewrite
// the generated source afterwards.
package transformer

import (
	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/scrambler"
)

// Mangler renames every non-reserved identifier in a chunk to a compact
// hex-counter name. Member and method names are plain strings in the AST and
// are never touched, so table-shape contracts with outside code survive.
type Mangler struct {
	table *scrambler.Table
}

// NewMangler returns a mangler with a fresh rename table; the counter starts
// at zero on every call so output is deterministic.
func NewMangler() *Mangler {
	return &Mangler{table: scrambler.NewTable()}
}

// Mangle rewrites identifiers in place and returns the number of distinct
// names renamed.
func (m *Mangler) Mangle(chunk *luaast.Chunk) int {
	luaast.Walk(chunk, func(n luaast.Node) bool {
		switch node := n.(type) {
		case *luaast.Identifier:
			node.Name = m.table.Rename(node.Name)
		case *luaast.GotoStatement:
			node.Label = m.table.Rename(node.Label)
		case *luaast.LabelStatement:
			node.Name = m.table.Rename(node.Name)
		}
		return true
	})
	return m.table.Count()
}

// Mappings exposes the original-to-mangled name pairs, for statistics output.
func (m *Mangler) Mappings() map[string]string {
	out := make(map[string]string, m.table.Count())
	for _, pair := range m.table.Mappings() {
		out[pair[0]] = pair[1]
	}
	return out
}
