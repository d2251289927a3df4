// Package metrics summarizes what an obfuscation run did to the input.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Counts carries the per-pass tallies the pipeline collects while running.
type Counts struct {
	NamesMangled     int `json:"names_mangled"`
	StringsEncoded   int `json:"strings_encoded"`
	NumbersEncoded   int `json:"numbers_encoded"`
	ControlFlowEdits int `json:"control_flow_edits"`
	DeadStatements   int `json:"dead_statements"`
	AntiDebugChecks  int `json:"anti_debug_checks"`
}

// Summary is the full statistics record for one run.
type Summary struct {
	InputBytes   int     `json:"input_bytes"`
	OutputBytes  int     `json:"output_bytes"`
	InputLines   int     `json:"input_lines"`
	OutputLines  int     `json:"output_lines"`
	SizeRatio    float64 `json:"size_ratio"`
	Algorithm    string  `json:"algorithm"`
	OutputFormat string  `json:"output_format"`
	Counts       Counts  `json:"counts"`
	DurationMS   float64 `json:"duration_ms"`
}

// Summarize computes a Summary from the raw before/after text and the
// pipeline tallies.
func Summarize(input, output string, counts Counts, duration time.Duration, algorithm, format string) Summary {
	s := Summary{
		InputBytes:   len(input),
		OutputBytes:  len(output),
		InputLines:   countLines(input),
		OutputLines:  countLines(output),
		Algorithm:    algorithm,
		OutputFormat: format,
		Counts:       counts,
		DurationMS:   float64(duration.Microseconds()) / 1000.0,
	}
	if s.InputBytes > 0 {
		s.SizeRatio = float64(s.OutputBytes) / float64(s.InputBytes)
	}
	return s
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// JSON renders the summary as indented JSON for --stats output.
func (s Summary) JSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling statistics: %w", err)
	}
	return string(data), nil
}

// String renders a short human-readable report.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Input:  %d bytes, %d lines\n", s.InputBytes, s.InputLines)
	fmt.Fprintf(&b, "Output: %d bytes, %d lines (%.2fx)\n", s.OutputBytes, s.OutputLines, s.SizeRatio)
	fmt.Fprintf(&b, "Names mangled:      %d\n", s.Counts.NamesMangled)
	fmt.Fprintf(&b, "Strings encoded:    %d (%s)\n", s.Counts.StringsEncoded, s.Algorithm)
	fmt.Fprintf(&b, "Numbers encoded:    %d\n", s.Counts.NumbersEncoded)
	fmt.Fprintf(&b, "Control-flow edits: %d\n", s.Counts.ControlFlowEdits)
	fmt.Fprintf(&b, "Dead statements:    %d\n", s.Counts.DeadStatements)
	fmt.Fprintf(&b, "Anti-debug checks:  %d\n", s.Counts.AntiDebugChecks)
	fmt.Fprintf(&b, "Duration:           %.2f ms", s.DurationMS)
	return b.String()
}
