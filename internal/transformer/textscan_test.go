package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLineDelta(t *testing.T) {
	cases := []struct {
		line  string
		delta int
	}{
		{"local function f()", 1},
		{"if x > 1 then", 1},
		{"elseif x < 0 then", 0},
		{"else", 0},
		{"end", -1},
		{"while true do", 1},
		{"for i = 1, 10 do", 1},
		{"repeat", 1},
		{"until done", -1},
		{"local x = 1", 0},
		{`local s = "if then end"`, 0},
		{"x = y -- end of it", 0},
		{"if a then f() end", 0},
	}
	for _, tc := range cases {
		_, delta := scanLineDelta(tc.line, textState{})
		assert.Equal(t, tc.delta, delta, "line: %s", tc.line)
	}
}

func TestScanLineStringAndBracketState(t *testing.T) {
	s := scanLine("local s = [[open", textState{})
	assert.False(t, s.safeBoundary())

	s = scanLine("still inside", s)
	assert.False(t, s.safeBoundary())

	s = scanLine("done]] print(s)", s)
	assert.True(t, s.safeBoundary())

	s = scanLine("f(1,", textState{})
	assert.False(t, s.safeBoundary())
	s = scanLine("2)", s)
	assert.True(t, s.safeBoundary())
}

func TestReturnTrackerBlocksAfterReturn(t *testing.T) {
	var tr returnTracker
	s := textState{}

	s = tr.advance("local function f()", s)
	assert.True(t, tr.statementsLegal())

	s = tr.advance("return 1", s)
	assert.False(t, tr.statementsLegal())

	s = tr.advance("end", s)
	assert.True(t, tr.statementsLegal())
	_ = s
}

func TestReturnTrackerAllowsNestedBodies(t *testing.T) {
	var tr returnTracker
	s := textState{}

	s = tr.advance("return function()", s)
	// Inside the returned function's body statements are fine.
	assert.True(t, tr.statementsLegal())

	s = tr.advance("local x = 1", s)
	assert.True(t, tr.statementsLegal())

	s = tr.advance("end", s)
	// Back at the return's own depth: nothing may follow it.
	assert.False(t, tr.statementsLegal())
	_ = s
}
