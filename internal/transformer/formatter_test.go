package transformer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/luamixer/internal/config"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

const formatterInput = `-- leading comment
local function add(a, b)
	return a + b  -- trailing comment
end

--[[ block
comment ]]
print(add(1, 2))`

func formatAs(t *testing.T, style config.OutputFormat) string {
	t.Helper()
	f := NewFormatter(style, rand.New(rand.NewSource(1)))
	out := f.Format(formatterInput)
	_, err := parser.Parse(out)
	require.NoError(t, err, "%s output must parse:\n%s", style, out)
	return out
}

func TestFormatterStripsComments(t *testing.T) {
	for _, style := range []config.OutputFormat{
		config.FormatMinified, config.FormatPretty,
		config.FormatObfuscated, config.FormatSingleLine,
	} {
		out := formatAs(t, style)
		assert.NotContains(t, out, "comment", "style %s kept a comment", style)
		assert.NotContains(t, out, "--", "style %s kept a comment marker", style)
	}
}

func TestFormatterMinified(t *testing.T) {
	out := formatAs(t, config.FormatMinified)

	for _, line := range strings.Split(out, "\n") {
		assert.NotEmpty(t, line, "minified output should have no blank lines")
		assert.False(t, strings.HasPrefix(line, " "), "minified line is indented: %q", line)
		assert.False(t, strings.HasPrefix(line, "\t"), "minified line is indented: %q", line)
	}
}

func TestFormatterSingleLine(t *testing.T) {
	out := formatAs(t, config.FormatSingleLine)
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "local function add")
}

func TestFormatterPrettyIndentsBlocks(t *testing.T) {
	out := formatAs(t, config.FormatPretty)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "local function add(a, b)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "    "), "body should be indented: %q", lines[1])
	assert.Equal(t, "end", lines[2])
}

func TestFormatterObfuscatedParses(t *testing.T) {
	out := formatAs(t, config.FormatObfuscated)
	assert.NotEmpty(t, out)
}

func TestStripCommentsKeepsStrings(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`print("not -- a comment")`, `print("not -- a comment")`},
		{"x = 1 -- gone", "x = 1 "},
		{"x = [[keep -- this]]", "x = [[keep -- this]]"},
		{"--[[ drop ]]x = 1", "x = 1"},
		{"s = '--'", "s = '--'"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripComments(tc.in), "input: %s", tc.in)
	}
}

func TestFormatterEmptyInput(t *testing.T) {
	f := NewFormatter(config.FormatMinified, rand.New(rand.NewSource(2)))
	assert.Equal(t, "", f.Format(""))
	assert.Equal(t, "", f.Format("-- only a comment"))
}
