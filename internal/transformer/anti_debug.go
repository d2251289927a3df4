package transformer

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/whit3rabbit/luamixer/internal/config"
)

// Lua bodies for each anti-debug check. Every check calls error() with an
// uninformative message when it trips; the guard function strings them
// together so a single call runs them all.
var antiDebugBodies = map[string]string{
	config.CheckDebugDetect: `if debug and debug.gethook and debug.gethook() then error("?") end`,
	config.CheckTiming: `local t0 = os.clock()
for _ = 1, 1000 do end
if os.clock() - t0 > 1 then error("?") end`,
	config.CheckStackDepth:  `if debug and debug.getinfo and debug.getinfo(200) then error("?") end`,
	config.CheckIntegrity:   `if string.sub(tostring(print), 1, 8) ~= "function" then error("?") end`,
	config.CheckEnvironment: `if rawget(_G, "os") == nil or rawget(_G, "string") == nil then error("?") end`,
	config.CheckEnvFunction: `if rawget(_G, "print") ~= print or rawget(_G, "error") ~= error then error("?") end`,
}

// AntiDebugInjector wraps the chosen checks in a guard function, calls it
// once at the top of the program, and repeats the call at a portion of block
// ends so stripping the first call is not enough.
type AntiDebugInjector struct {
	rng       *rand.Rand
	frequency int
	checks    []string
	count     int
}

// NewAntiDebugInjector selects the checks to emit; unknown names are ignored
// upstream by config resolution. frequency is the percent chance of an
// inline guard call after each block end.
func NewAntiDebugInjector(frequency int, checks []string, rng *rand.Rand) *AntiDebugInjector {
	if frequency < 0 {
		frequency = 0
	}
	if frequency > 100 {
		frequency = 100
	}
	return &AntiDebugInjector{rng: rng, frequency: frequency, checks: checks}
}

// Count reports how many checks and call sites the last Inject call added.
func (a *AntiDebugInjector) Count() int {
	return a.count
}

// Inject prepends the guard and scatters repeat calls. Empty input and an
// empty check list come back unchanged.
func (a *AntiDebugInjector) Inject(code string) string {
	a.count = 0
	if len(a.checks) == 0 || strings.TrimSpace(code) == "" {
		return code
	}

	name := fmt.Sprintf("_adx%05x", a.rng.Intn(1<<20))
	var guard strings.Builder
	fmt.Fprintf(&guard, "local function %s()\n", name)
	for _, check := range a.checks {
		body, ok := antiDebugBodies[check]
		if !ok {
			continue
		}
		guard.WriteString(body)
		guard.WriteString("\n")
		a.count++
	}
	fmt.Fprintf(&guard, "end\n%s()\n", name)

	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines)+4)
	state := textState{}
	var tracker returnTracker

	for _, line := range lines {
		out = append(out, line)
		closer := state.safeBoundary() && strings.TrimSpace(line) == "end"
		state = tracker.advance(line, state)
		// Repeat the guard call after lines that close a block.
		if closer && state.safeBoundary() && tracker.statementsLegal() &&
			a.rng.Intn(100) < a.frequency {
			out = append(out, indentLike(line)+name+"()")
			a.count++
		}
	}
	return guard.String() + strings.Join(out, "\n")
}
