// Package obfuscator wires the parser, the transformation passes, and the
// code generator into the obfuscation pipeline.
package obfuscator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/whit3rabbit/luamixer/internal/config"
	"github.com/whit3rabbit/luamixer/internal/generator"
	"github.com/whit3rabbit/luamixer/internal/metrics"
	"github.com/whit3rabbit/luamixer/internal/parser"
	"github.com/whit3rabbit/luamixer/internal/transformer"
)

// Result is the outcome of one obfuscation run. On failure Code is empty and
// Err explains why; parse failures carry a *parser.ParseError with line and
// column intact.
type Result struct {
	Code     string
	Success  bool
	Err      error
	Mappings map[string]string
	Summary  metrics.Summary
}

// Per-pass offsets applied to the base seed so each randomized pass has its
// own stream. Toggling one pass then cannot shift the choices of another.
const (
	seedStrings = iota + 1
	seedNumbers
	seedControlFlow
	seedDeadCode
	seedAntiDebug
	seedFormat
)

// Obfuscate runs the full pipeline over source. Every call starts from
// fresh pass state: name counters, rename tables, and random streams never
// leak between runs.
//
// Pass order is fixed. Numbers are disguised before control flow so state
// ids stay plain; strings are encoded before mangling so the decoder
// helpers get mangled with everything else; the text passes run on the
// generated output, and formatting always comes last.
func Obfuscate(source string, opts config.Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	settings := opts.Resolve()

	// String encoding is contractually deterministic for identical inputs, so
	// without an explicit seed it falls back to a fixed one. The other
	// randomized passes seed from the clock instead.
	seed := settings.Seed
	stringSeed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		stringSeed = 1
	}

	chunk, err := parser.Parse(source)
	if err != nil {
		return failure(err)
	}

	var counts metrics.Counts
	mappings := map[string]string{}

	if settings.EncodeNumbers {
		enc := transformer.NewNumberEncoder(settings.ProtectionLevel, passRand(seed, seedNumbers))
		counts.NumbersEncoded = enc.Encode(chunk)
	}

	if settings.ControlFlow {
		cf := transformer.NewControlFlowObfuscator(passRand(seed, seedControlFlow))
		counts.ControlFlowEdits = cf.Obfuscate(chunk)
	}

	if settings.EncodeStrings && settings.Algorithm != config.AlgorithmNone {
		enc := transformer.NewStringEncoder(settings.Algorithm, passRand(stringSeed, seedStrings))
		n, err := enc.Encode(chunk)
		if err != nil {
			return failure(err)
		}
		counts.StringsEncoded = n
	}

	if settings.MangleNames {
		mangler := transformer.NewMangler()
		counts.NamesMangled = mangler.Mangle(chunk)
		mappings = mangler.Mappings()
	}

	code, err := generator.Generate(chunk)
	if err != nil {
		return failure(fmt.Errorf("generating output: %w", err))
	}

	if settings.DeadCode {
		ins := transformer.NewDeadCodeInserter(settings.DeadCodeRate, passRand(seed, seedDeadCode))
		code = ins.Inject(code)
		counts.DeadStatements = ins.Count()
	}

	if settings.AntiDebug {
		inj := transformer.NewAntiDebugInjector(settings.AntiDebugFrequency, settings.AntiDebugChecks, passRand(seed, seedAntiDebug))
		code = inj.Inject(code)
		counts.AntiDebugChecks = inj.Count()
	}

	formatter := transformer.NewFormatter(settings.OutputFormat, passRand(seed, seedFormat))
	code = formatter.Format(code)

	summary := metrics.Summarize(source, code, counts, time.Since(start),
		string(settings.Algorithm), string(settings.OutputFormat))

	return Result{
		Code:     code,
		Success:  true,
		Mappings: mappings,
		Summary:  summary,
	}
}

func passRand(seed int64, offset int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + offset))
}

func failure(err error) Result {
	return Result{Err: err}
}
