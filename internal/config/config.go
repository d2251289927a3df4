// Package config defines the obfuscation options, the protection-level
// presets that expand into them, and loading from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Algorithm selects how string literals are encoded.
type Algorithm string

const (
	AlgorithmNone    Algorithm = "none"
	AlgorithmXOR     Algorithm = "xor"
	AlgorithmBase64  Algorithm = "base64"
	AlgorithmHuffman Algorithm = "huffman"
	AlgorithmChunked Algorithm = "chunked"
)

// OutputFormat selects the final formatting style.
type OutputFormat string

const (
	FormatMinified   OutputFormat = "minified"
	FormatPretty     OutputFormat = "pretty"
	FormatObfuscated OutputFormat = "obfuscated"
	FormatSingleLine OutputFormat = "single-line"
)

// Anti-debug check names accepted in Options.AntiDebugChecks.
const (
	CheckDebugDetect = "debug-detect"
	CheckTiming      = "timing"
	CheckStackDepth  = "stack-depth"
	CheckIntegrity   = "integrity"
	CheckEnvironment = "environment"
	CheckEnvFunction = "env-function"
)

// AllAntiDebugChecks lists every supported check, in emission order.
var AllAntiDebugChecks = []string{
	CheckDebugDetect, CheckTiming, CheckStackDepth,
	CheckIntegrity, CheckEnvironment, CheckEnvFunction,
}

// Options is the user-facing configuration record for one obfuscation call.
//
// The boolean technique toggles are pointers: nil means "not specified, take
// the protection-level preset"; a non-nil value always wins over the preset.
// Out-of-range numeric values are clamped, never rejected — the level is a
// convenience knob, not a protocol.
type Options struct {
	MangleNames         *bool        `yaml:"mangle_names,omitempty" mapstructure:"mangle_names"`
	EncodeStrings       *bool        `yaml:"encode_strings,omitempty" mapstructure:"encode_strings"`
	EncryptionAlgorithm Algorithm    `yaml:"encryption_algorithm,omitempty" mapstructure:"encryption_algorithm"`
	EncodeNumbers       *bool        `yaml:"encode_numbers,omitempty" mapstructure:"encode_numbers"`
	ControlFlow         *bool        `yaml:"control_flow,omitempty" mapstructure:"control_flow"`
	DeadCodeInjection   *bool        `yaml:"dead_code_injection,omitempty" mapstructure:"dead_code_injection"`
	AntiDebug           *bool        `yaml:"anti_debug,omitempty" mapstructure:"anti_debug"`
	Minify              *bool        `yaml:"minify,omitempty" mapstructure:"minify"`
	ProtectionLevel     int          `yaml:"protection_level" mapstructure:"protection_level"`
	OutputFormat        OutputFormat `yaml:"output_format,omitempty" mapstructure:"output_format"`

	// Pass tuning. AntiDebugFrequency is a pointer so an explicit zero
	// (wrapper guard only, no inline scatter) is distinct from unset.
	DeadCodeRate       int      `yaml:"dead_code_rate,omitempty" mapstructure:"dead_code_rate"`
	AntiDebugFrequency *int     `yaml:"anti_debug_frequency,omitempty" mapstructure:"anti_debug_frequency"`
	AntiDebugChecks    []string `yaml:"anti_debug_checks,omitempty" mapstructure:"anti_debug_checks"`

	// Seed fixes the pseudo-random source used by randomized passes.
	// Zero means seed from the clock.
	Seed int64 `yaml:"seed,omitempty" mapstructure:"seed"`

	// Silent suppresses informational messages.
	Silent bool `yaml:"silent,omitempty" mapstructure:"silent"`
}

// Settings is the fully resolved form of Options: every technique toggle is
// concrete, the level is clamped, and defaults are filled in.
type Settings struct {
	MangleNames        bool
	EncodeStrings      bool
	Algorithm          Algorithm
	EncodeNumbers      bool
	ControlFlow        bool
	DeadCode           bool
	AntiDebug          bool
	Minify             bool
	ProtectionLevel    int
	OutputFormat       OutputFormat
	DeadCodeRate       int
	AntiDebugFrequency int
	AntiDebugChecks    []string
	Seed               int64
	Silent             bool
}

// Protection-level thresholds. Higher levels only ever add techniques.
const (
	levelMinify      = 10
	levelMangle      = 20
	levelStrings     = 40
	levelNumbers     = 60
	levelControlFlow = 80
	levelAntiDebug   = 80
)

// DefaultProtectionLevel is the level used by DefaultOptions. A bare
// Options{} keeps its literal zero, which disables every preset technique.
const DefaultProtectionLevel = 50

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		ProtectionLevel:     DefaultProtectionLevel,
		EncryptionAlgorithm: AlgorithmXOR,
		OutputFormat:        FormatMinified,
		DeadCodeRate:        30,
		AntiDebugFrequency:  Int(30),
	}
}

// Resolve expands the protection level into concrete technique toggles and
// applies explicit overrides on top. It never fails: invalid values clamp or
// fall back to defaults.
func (o Options) Resolve() Settings {
	level := clamp(o.ProtectionLevel, 0, 100)

	s := Settings{
		Minify:             level >= levelMinify,
		MangleNames:        level >= levelMangle,
		EncodeStrings:      level >= levelStrings,
		EncodeNumbers:      level >= levelNumbers,
		ControlFlow:        level >= levelControlFlow,
		AntiDebug:          level >= levelAntiDebug,
		ProtectionLevel:    level,
		Algorithm:          o.EncryptionAlgorithm,
		OutputFormat:       o.OutputFormat,
		DeadCodeRate:       o.DeadCodeRate,
		AntiDebugFrequency: 30,
		Seed:               o.Seed,
		Silent:             o.Silent,
	}
	if o.AntiDebugFrequency != nil {
		s.AntiDebugFrequency = clamp(*o.AntiDebugFrequency, 0, 100)
	}

	// Dead code has no preset threshold; it is opt-in.
	s.DeadCode = false

	override(&s.MangleNames, o.MangleNames)
	override(&s.EncodeStrings, o.EncodeStrings)
	override(&s.EncodeNumbers, o.EncodeNumbers)
	override(&s.ControlFlow, o.ControlFlow)
	override(&s.DeadCode, o.DeadCodeInjection)
	override(&s.AntiDebug, o.AntiDebug)
	override(&s.Minify, o.Minify)

	if s.Algorithm == "" {
		s.Algorithm = AlgorithmXOR
	}
	switch s.Algorithm {
	case AlgorithmNone, AlgorithmXOR, AlgorithmBase64, AlgorithmHuffman, AlgorithmChunked:
	default:
		s.Algorithm = AlgorithmXOR
	}

	if s.OutputFormat == "" {
		if s.Minify {
			s.OutputFormat = FormatMinified
		} else {
			s.OutputFormat = FormatPretty
		}
	}
	switch s.OutputFormat {
	case FormatMinified, FormatPretty, FormatObfuscated, FormatSingleLine:
	default:
		s.OutputFormat = FormatMinified
	}

	if s.DeadCodeRate == 0 {
		s.DeadCodeRate = 30
	}
	s.DeadCodeRate = clamp(s.DeadCodeRate, 0, 100)

	if len(o.AntiDebugChecks) == 0 {
		s.AntiDebugChecks = append([]string(nil), AllAntiDebugChecks...)
	} else {
		for _, c := range o.AntiDebugChecks {
			if known(c) {
				s.AntiDebugChecks = append(s.AntiDebugChecks, c)
			}
		}
	}
	return s
}

func known(check string) bool {
	for _, c := range AllAntiDebugChecks {
		if c == check {
			return true
		}
	}
	return false
}

func override(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bool is a convenience for building explicit overrides in Options literals.
func Bool(v bool) *bool {
	return &v
}

// Int is the same convenience for the pointer-valued tuning fields.
func Int(v int) *int {
	return &v
}

var (
	// Testing suppresses informational output during test runs.
	Testing bool
)

// PrintInfo prints formatted information to stdout unless Testing is set.
func PrintInfo(format string, args ...interface{}) {
	if !Testing {
		fmt.Printf(format, args...)
	}
}

// LoadConfig reads Options from a YAML config file and LUAMIXER_*
// environment variables layered over the defaults. An empty path means the conventional
// "config.yaml", whose absence is not an error.
func LoadConfig(configPath string) (*Options, error) {
	opts := DefaultOptions()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LUAMIXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("protection_level", opts.ProtectionLevel)
	v.SetDefault("encryption_algorithm", string(opts.EncryptionAlgorithm))
	v.SetDefault("output_format", string(opts.OutputFormat))
	v.SetDefault("dead_code_rate", opts.DeadCodeRate)
	v.SetDefault("anti_debug_frequency", *opts.AntiDebugFrequency)
	v.SetDefault("seed", 0)
	v.SetDefault("silent", false)

	defaulted := configPath == ""
	if defaulted {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		if !v.GetBool("silent") {
			PrintInfo("Info: Loaded configuration from %s\n", configPath)
		}
	} else if os.IsNotExist(err) {
		if !defaulted {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		PrintInfo("Info: Configuration file 'config.yaml' not found, using default settings.\n")
	} else {
		return nil, fmt.Errorf("error checking config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	return &opts, nil
}

// SaveConfig writes the default configuration to a YAML file, for
// `config init`.
func SaveConfig(configPath string) error {
	opts := DefaultOptions()
	data, err := yaml.Marshal(&opts)
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	PrintInfo("Info: Saved default configuration to %s\n", configPath)
	return nil
}
