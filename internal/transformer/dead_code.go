package transformer

import (
	"fmt"
	"math/rand"
	"strings"
)

// DeadCodeInserter sprinkles never-executed statements into generated
// source. It works on text rather than the AST so it can run after code
// generation, when the shape of the output is final.
type DeadCodeInserter struct {
	rng   *rand.Rand
	rate  int
	used  map[string]bool
	count int
}

// NewDeadCodeInserter returns an inserter adding a snippet at roughly rate
// percent of eligible line boundaries.
func NewDeadCodeInserter(rate int, rng *rand.Rand) *DeadCodeInserter {
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	return &DeadCodeInserter{rng: rng, rate: rate, used: make(map[string]bool)}
}

// Count reports how many snippets the last Inject call added.
func (d *DeadCodeInserter) Count() int {
	return d.count
}

// Inject inserts dead statements at safe line boundaries: never inside a
// string, comment, or bracketed expression, and never between a return and
// the end of its block, where Lua forbids further statements.
func (d *DeadCodeInserter) Inject(code string) string {
	d.count = 0
	if d.rate == 0 || strings.TrimSpace(code) == "" {
		return code
	}

	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines)+len(lines)/4)
	state := textState{}
	var tracker returnTracker

	for _, line := range lines {
		if state.safeBoundary() && tracker.statementsLegal() &&
			d.rng.Intn(100) < d.rate {
			out = append(out, indentLike(line)+d.snippet())
			d.count++
		}
		out = append(out, line)
		state = tracker.advance(line, state)
	}
	return strings.Join(out, "\n")
}

// snippet builds one dead statement with a fresh improbable name.
func (d *DeadCodeInserter) snippet() string {
	name := d.freshName()
	a := d.rng.Intn(900) + 100
	b := d.rng.Intn(900) + 100
	switch d.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("local %s = %d + %d", name, a, b)
	case 1:
		return fmt.Sprintf("local %s = %q", name, fmt.Sprintf("%x%x", a, b))
	case 2:
		return fmt.Sprintf("if %d > %d then %s = %d end", a, a+b, name, b)
	default:
		return fmt.Sprintf("local function %s() return %d end", name, a*b)
	}
}

func (d *DeadCodeInserter) freshName() string {
	for {
		name := fmt.Sprintf("_dx%05x", d.rng.Intn(1<<20))
		if !d.used[name] {
			d.used[name] = true
			return name
		}
	}
}

// indentLike copies the leading whitespace of a line so an inserted snippet
// sits at the same depth as its neighbor.
func indentLike(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}
