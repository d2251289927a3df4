// Package scrambler owns the per-run rename table used by identifier
// mangling.
package scrambler

import (
	"fmt"
	"sort"
)

// Table maps original identifier names to generated ones within a single
// obfuscation run. Names are assigned from a monotonically increasing counter
// formatted as `_0x` plus a 4-hex-digit zero-padded tag, so every run starts
// at `_0x0000` and generated names never collide with each other. A Table is
// created fresh per call and discarded afterwards; it is not safe for
// concurrent use, and it is never shared across runs.
type Table struct {
	counter int
	names   map[string]string
}

// NewTable returns an empty rename table with its counter at zero.
func NewTable() *Table {
	return &Table{names: make(map[string]string)}
}

// Rename returns the generated name for original, assigning a new one on
// first sight. Reserved names (keywords and standard-library roots) are
// returned unchanged and never consume a counter value. Lookups are
// case-sensitive: `Foo` and `foo` receive distinct names.
func (t *Table) Rename(original string) string {
	if IsReserved(original) {
		return original
	}
	if mangled, ok := t.names[original]; ok {
		return mangled
	}
	mangled := fmt.Sprintf("_0x%04x", t.counter)
	t.counter++
	t.names[original] = mangled
	return mangled
}

// Lookup returns the generated name for original without assigning one.
func (t *Table) Lookup(original string) (string, bool) {
	mangled, ok := t.names[original]
	return mangled, ok
}

// Count reports how many names have been assigned.
func (t *Table) Count() int {
	return t.counter
}

// Mappings returns the original→generated pairs sorted by original name,
// for diagnostics output.
func (t *Table) Mappings() [][2]string {
	out := make([][2]string, 0, len(t.names))
	for orig, mangled := range t.names {
		out = append(out, [2]string{orig, mangled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
