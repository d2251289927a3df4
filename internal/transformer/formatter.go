package transformer

import (
	"math/rand"
	"strings"

	"github.com/whit3rabbit/luamixer/internal/config"
)

// Formatter renders the final output style. All styles strip comments first;
// what differs is how the surviving statements are laid out.
type Formatter struct {
	style config.OutputFormat
	rng   *rand.Rand
}

func NewFormatter(style config.OutputFormat, rng *rand.Rand) *Formatter {
	return &Formatter{style: style, rng: rng}
}

// Format lays out the source in the configured style.
func (f *Formatter) Format(code string) string {
	code = StripComments(code)
	switch f.style {
	case config.FormatPretty:
		return f.pretty(code)
	case config.FormatObfuscated:
		return f.scrambledLayout(code)
	case config.FormatSingleLine:
		return f.singleLine(code)
	default:
		return f.minified(code)
	}
}

// minified drops blank lines and indentation but keeps one statement per
// line.
func (f *Formatter) minified(code string) string {
	var out []string
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		out = append(out, collapseSpaces(t))
	}
	return strings.Join(out, "\n")
}

// singleLine joins the whole program into one line. Statement boundaries
// survive because the generator separates tokens and guards ambiguous
// parenthesized statements with semicolons.
func (f *Formatter) singleLine(code string) string {
	var parts []string
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		parts = append(parts, collapseSpaces(t))
	}
	return strings.Join(parts, " ")
}

// pretty re-indents with four spaces per block level, inferring nesting from
// the block keywords on each line.
func (f *Formatter) pretty(code string) string {
	var out []string
	state := textState{}
	depth := 0
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		level := depth
		if state.safeBoundary() {
			switch firstToken(t) {
			case "end", "else", "elseif", "until":
				level--
			}
		}
		if level < 0 {
			level = 0
		}
		out = append(out, strings.Repeat("    ", level)+t)

		var delta int
		state, delta = scanLineDelta(line, state)
		depth += delta
		if depth < 0 {
			depth = 0
		}
	}
	return strings.Join(out, "\n")
}

// scrambledLayout applies random indentation and blank lines so the visual
// structure stops matching the logical one.
func (f *Formatter) scrambledLayout(code string) string {
	var out []string
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		out = append(out, strings.Repeat(" ", f.rng.Intn(6))+t)
		if f.rng.Intn(100) < 15 {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// collapseSpaces squeezes runs of spaces and tabs outside strings down to
// one space.
func collapseSpaces(line string) string {
	var b strings.Builder
	i := 0
	for i < len(line) {
		c := line[i]
		switch c {
		case ' ', '\t':
			b.WriteByte(' ')
			for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
				i++
			}
		case '\'', '"':
			end := skipShortString(line, i)
			b.WriteString(line[i:end])
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// StripComments removes line and long-bracket comments while leaving string
// contents, including long strings, untouched.
func StripComments(code string) string {
	var b strings.Builder
	i := 0
	for i < len(code) {
		c := code[i]
		switch c {
		case '-':
			if i+1 < len(code) && code[i+1] == '-' {
				if lvl, n := longOpener(code[i+2:]); lvl > 0 {
					close := longCloser(lvl)
					end := strings.Index(code[i+2+n:], close)
					if end < 0 {
						return b.String()
					}
					i += 2 + n + end + len(close)
					continue
				}
				// Line comment: drop up to (not including) the newline.
				nl := strings.IndexByte(code[i:], '\n')
				if nl < 0 {
					return b.String()
				}
				i += nl
				continue
			}
			b.WriteByte(c)
			i++
		case '[':
			if lvl, n := longOpener(code[i:]); lvl > 0 {
				close := longCloser(lvl)
				end := strings.Index(code[i+n:], close)
				if end < 0 {
					b.WriteString(code[i:])
					return b.String()
				}
				b.WriteString(code[i : i+n+end+len(close)])
				i += n + end + len(close)
				continue
			}
			b.WriteByte(c)
			i++
		case '\'', '"':
			end := skipShortStringAt(code, i)
			b.WriteString(code[i:end])
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// skipShortStringAt is skipShortString generalized to multi-line input; the
// string still terminates at a newline because Lua quoted strings cannot
// cross one.
func skipShortStringAt(code string, start int) int {
	quote := code[start]
	i := start + 1
	for i < len(code) {
		switch code[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		case '\n':
			return i
		default:
			i++
		}
	}
	return i
}
