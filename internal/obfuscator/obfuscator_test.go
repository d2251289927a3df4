package obfuscator

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/luamixer/internal/config"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

var mangledName = regexp.MustCompile(`_0x[0-9a-f]{4}`)

func TestLevelZeroLeavesCodeAlone(t *testing.T) {
	res := Obfuscate(`local x = 5`, config.Options{ProtectionLevel: 0})
	require.True(t, res.Success, "err: %v", res.Err)
	assert.Equal(t, "local x = 5", res.Code)
}

func TestLevelTwentyMangles(t *testing.T) {
	res := Obfuscate(`local myVar = 5`, config.Options{ProtectionLevel: 20})
	require.True(t, res.Success, "err: %v", res.Err)
	assert.Regexp(t, mangledName, res.Code)
	assert.NotContains(t, res.Code, "myVar")
	assert.Equal(t, 1, res.Summary.Counts.NamesMangled)
}

func TestLevelFortyEncodesStrings(t *testing.T) {
	res := Obfuscate(`local msg = "Hello"`, config.Options{ProtectionLevel: 40})
	require.True(t, res.Success, "err: %v", res.Err)
	assert.NotContains(t, res.Code, `"Hello"`)
	assert.Equal(t, 1, res.Summary.Counts.StringsEncoded)
	assert.True(t, parser.Validate(res.Code))
}

func TestEmptyInputSucceedsEmpty(t *testing.T) {
	res := Obfuscate("", config.DefaultOptions())
	require.True(t, res.Success, "err: %v", res.Err)
	assert.Equal(t, "", res.Code)
}

func TestParseFailureShortCircuits(t *testing.T) {
	res := Obfuscate("function test()", config.Options{ProtectionLevel: 50})
	assert.False(t, res.Success)
	require.Error(t, res.Err)
	assert.NotEmpty(t, res.Err.Error())
	assert.Empty(t, res.Code)

	var perr *parser.ParseError
	assert.ErrorAs(t, res.Err, &perr)
}

func TestMinifyStripsComments(t *testing.T) {
	res := Obfuscate("-- note\nlocal x = 1", config.Options{Minify: config.Bool(true)})
	require.True(t, res.Success, "err: %v", res.Err)
	assert.Contains(t, res.Code, "local x = 1")
	assert.NotContains(t, res.Code, "-- note")
}

func TestCounterRestartsAcrossCalls(t *testing.T) {
	opts := config.Options{ProtectionLevel: 20}
	first := Obfuscate(`local alpha = 1`, opts)
	second := Obfuscate(`local beta = 2`, opts)
	require.True(t, first.Success)
	require.True(t, second.Success)

	assert.Contains(t, first.Code, "_0x0000")
	assert.Contains(t, second.Code, "_0x0000")
}

func TestDeterminismWithoutRandomPasses(t *testing.T) {
	source := `
local greeting = "hi there"
local function shout(s)
	return string.upper(s)
end
print(shout(greeting))`
	opts := config.Options{
		ProtectionLevel: 40,
		EncodeNumbers:   config.Bool(false),
		ControlFlow:     config.Bool(false),
	}

	a := Obfuscate(source, opts)
	b := Obfuscate(source, opts)
	require.True(t, a.Success)
	require.True(t, b.Success)
	assert.Equal(t, a.Code, b.Code)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	source := `
local total = 0
total = total + 10
total = total * 2
total = total - 3
total = total + 100
if total > 50 then
	print(total)
end`
	opts := config.Options{
		ProtectionLevel:   100,
		DeadCodeInjection: config.Bool(true),
		Seed:              1234,
	}

	a := Obfuscate(source, opts)
	b := Obfuscate(source, opts)
	require.True(t, a.Success, "err: %v", a.Err)
	assert.Equal(t, a.Code, b.Code)
	assert.True(t, parser.Validate(a.Code), "output invalid:\n%s", a.Code)
}

func TestRoundTripValidityAcrossOptionCombinations(t *testing.T) {
	source := `
local tab = {count = 0, name = "widget"}
local function tick(t)
	t.count = t.count + 1
	if t.count > 10 then
		t.count = 0
	end
	return t.count
end
for i = 1, 3 do
	tick(tab)
end
print(tab.name, tab.count)`

	for _, level := range []int{0, 10, 20, 40, 60, 80, 100} {
		for _, deadCode := range []bool{false, true} {
			res := Obfuscate(source, config.Options{
				ProtectionLevel:   level,
				DeadCodeInjection: config.Bool(deadCode),
				Seed:              7,
			})
			require.True(t, res.Success, "level %d: %v", level, res.Err)
			assert.True(t, parser.Validate(res.Code),
				"level %d deadCode %v produced invalid output:\n%s", level, deadCode, res.Code)
		}
	}
}

func TestReservedNamesSurviveEveryLevel(t *testing.T) {
	source := `
local data = "payload"
print(string.len(data))
print(math.floor(1.5))`

	for _, level := range []int{20, 40, 60, 80, 100} {
		res := Obfuscate(source, config.Options{ProtectionLevel: level, Seed: 3})
		require.True(t, res.Success, "level %d: %v", level, res.Err)
		for _, name := range []string{"print", "string", "math"} {
			assert.Contains(t, res.Code, name, "level %d lost reserved name %s", level, name)
		}
	}
}

func TestDecoderHelpersAreMangled(t *testing.T) {
	res := Obfuscate(`local s = "conceal me"`, config.Options{ProtectionLevel: 40, Seed: 5})
	require.True(t, res.Success, "err: %v", res.Err)
	// String encoding runs before mangling, so the decoder helper's name is
	// renamed along with everything else.
	assert.NotContains(t, res.Code, "__luamix")
}

func TestAntiDebugAtHighLevel(t *testing.T) {
	res := Obfuscate(`print("guarded")`, config.Options{ProtectionLevel: 80, Seed: 11})
	require.True(t, res.Success, "err: %v", res.Err)
	assert.Greater(t, res.Summary.Counts.AntiDebugChecks, 0)
	assert.True(t, parser.Validate(res.Code), "output invalid:\n%s", res.Code)
}

func TestMappingsExposedWhenMangling(t *testing.T) {
	res := Obfuscate(`local secret = 1`, config.Options{ProtectionLevel: 20})
	require.True(t, res.Success)
	assert.Equal(t, map[string]string{"secret": "_0x0000"}, res.Mappings)
}

func TestMetricsReflectRun(t *testing.T) {
	source := `local a = "x"
local b = "y"`
	res := Obfuscate(source, config.Options{ProtectionLevel: 40, Seed: 9})
	require.True(t, res.Success)

	assert.Equal(t, len(source), res.Summary.InputBytes)
	assert.Equal(t, len(res.Code), res.Summary.OutputBytes)
	assert.Equal(t, 2, res.Summary.Counts.StringsEncoded)
	assert.Equal(t, "xor", res.Summary.Algorithm)
}
