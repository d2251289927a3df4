package transformer

import "strings"

// textState tracks lexical context across lines of Lua source. Text passes
// use it to find line boundaries where inserting a statement cannot land
// inside a string, a comment, or a bracketed expression.
type textState struct {
	// longLevel is the '=' count of an open long bracket plus one, zero when
	// no long bracket is open. longComment distinguishes --[[ from [[.
	longLevel   int
	longComment bool
	// depth counts unclosed ( { [ pairs.
	depth int
}

// safeBoundary reports whether a statement may be inserted at the current
// position between lines.
func (s textState) safeBoundary() bool {
	return s.longLevel == 0 && s.depth == 0
}

// scanLine advances the state across one line of source.
func scanLine(line string, s textState) textState {
	s, _ = scanLineDelta(line, s)
	return s
}

// scanLineDelta advances the state and additionally reports the line's block
// keyword delta: +1 for each block opener (function, repeat, the then of an
// if, the do of a loop or do block), -1 for each end or until. Keywords
// inside strings and comments do not count.
func scanLineDelta(line string, s textState) (textState, int) {
	delta := 0
	pendingElseif := false
	i := 0
	for i < len(line) {
		if s.longLevel > 0 {
			close := longCloser(s.longLevel)
			idx := strings.Index(line[i:], close)
			if idx < 0 {
				return s, delta
			}
			i += idx + len(close)
			s.longLevel = 0
			s.longComment = false
			continue
		}
		c := line[i]
		switch {
		case c == '-':
			if i+1 < len(line) && line[i+1] == '-' {
				if lvl, n := longOpener(line[i+2:]); lvl > 0 {
					s.longLevel = lvl
					s.longComment = true
					i += 2 + n
					continue
				}
				// Line comment runs to end of line.
				return s, delta
			}
			i++
		case c == '[':
			if lvl, n := longOpener(line[i:]); lvl > 0 {
				s.longLevel = lvl
				i += n
				continue
			}
			s.depth++
			i++
		case c == '(' || c == '{':
			s.depth++
			i++
		case c == ')' || c == '}' || c == ']':
			if s.depth > 0 {
				s.depth--
			}
			i++
		case c == '\'' || c == '"':
			i = skipShortString(line, i)
		case isNameStart(c):
			start := i
			for i < len(line) && isNameChar(line[i]) {
				i++
			}
			tok := line[start:i]
			switch tok {
			case "function", "repeat", "do":
				delta++
			case "elseif":
				pendingElseif = true
			case "then":
				// The then of an elseif reuses the enclosing if block.
				if pendingElseif {
					pendingElseif = false
				} else {
					delta++
				}
			case "end", "until":
				delta--
			}
		default:
			i++
		}
	}
	return s, delta
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}

// longOpener matches a long-bracket opener at the start of src and returns
// its level (number of '='s plus one) and consumed length, or zero.
func longOpener(src string) (level, n int) {
	if len(src) == 0 || src[0] != '[' {
		return 0, 0
	}
	j := 1
	for j < len(src) && src[j] == '=' {
		j++
	}
	if j < len(src) && src[j] == '[' {
		return j, j + 1
	}
	return 0, 0
}

func longCloser(level int) string {
	return "]" + strings.Repeat("=", level-1) + "]"
}

// skipShortString advances past a quoted string starting at line[start].
// Quoted strings cannot span lines, so running off the end just stops.
func skipShortString(line string, start int) int {
	quote := line[start]
	i := start + 1
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return i
}

// returnTracker follows block keyword depth across lines and remembers where
// return statements appeared. Lua requires return to be the last statement of
// its block, so inserting after one is only legal inside a block opened
// deeper than the return itself (a nested function body, say).
type returnTracker struct {
	depth   int
	returns []int
}

// statementsLegal reports whether a statement may be added at the current
// depth without following a pending return in the same block.
func (t *returnTracker) statementsLegal() bool {
	return len(t.returns) == 0 || t.depth > t.returns[len(t.returns)-1]
}

// advance consumes one line, updating both lexical state and depth tracking.
func (t *returnTracker) advance(line string, s textState) textState {
	if s.safeBoundary() && firstToken(line) == "return" {
		if len(t.returns) == 0 || t.returns[len(t.returns)-1] != t.depth {
			t.returns = append(t.returns, t.depth)
		}
	}
	s, delta := scanLineDelta(line, s)
	t.depth += delta
	if t.depth < 0 {
		t.depth = 0
	}
	for len(t.returns) > 0 && t.depth < t.returns[len(t.returns)-1] {
		t.returns = t.returns[:len(t.returns)-1]
	}
	return s
}

// firstToken returns the leading identifier or keyword of a code line,
// ignoring indentation.
func firstToken(line string) string {
	t := strings.TrimLeft(line, " \t")
	if len(t) == 0 || !isNameStart(t[0]) {
		return ""
	}
	end := 1
	for end < len(t) && isNameChar(t[end]) {
		end++
	}
	return t[:end]
}
