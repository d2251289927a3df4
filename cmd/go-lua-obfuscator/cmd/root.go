// Package cmd implements the command line interface for the application.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/luamixer/internal/config"
)

var (
	cfgFile string          // config file path from the flag
	opts    *config.Options // loaded configuration, shared by subcommands

	// Flag variables mapped to option fields for override.
	silentMode      bool   // -> opts.Silent
	protectionLevel int    // -> opts.ProtectionLevel
	mangleNames     bool   // -> opts.MangleNames
	encodeStrings   bool   // -> opts.EncodeStrings
	encryptionAlgo  string // -> opts.EncryptionAlgorithm
	encodeNumbers   bool   // -> opts.EncodeNumbers
	controlFlow     bool   // -> opts.ControlFlow
	deadCode        bool   // -> opts.DeadCodeInjection
	antiDebug       bool   // -> opts.AntiDebug
	minify          bool   // -> opts.Minify
	outputFormat    string // -> opts.OutputFormat
	seed            int64  // -> opts.Seed
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "go-lua-obfuscator",
	Short: "A CLI tool to obfuscate Lua source code.",
	Long: `go-lua-obfuscator applies layered transformations to Lua source:
identifier mangling, string and number encoding, control-flow restructuring,
dead code injection, and anti-debug instrumentation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if opts == nil {
			loaded, err := config.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			opts = loaded
			applyFlagOverrides(opts, cmd)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// applyFlagOverrides copies flag values into the options, but only for flags
// the user actually set, so the config file keeps authority over defaults.
func applyFlagOverrides(opts *config.Options, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("silent") {
		opts.Silent = silentMode
	}
	if flags.Changed("level") {
		opts.ProtectionLevel = protectionLevel
	}
	if flags.Changed("mangle-names") {
		opts.MangleNames = config.Bool(mangleNames)
	}
	if flags.Changed("encode-strings") {
		opts.EncodeStrings = config.Bool(encodeStrings)
	}
	if flags.Changed("algorithm") {
		opts.EncryptionAlgorithm = config.Algorithm(encryptionAlgo)
	}
	if flags.Changed("encode-numbers") {
		opts.EncodeNumbers = config.Bool(encodeNumbers)
	}
	if flags.Changed("control-flow") {
		opts.ControlFlow = config.Bool(controlFlow)
	}
	if flags.Changed("dead-code") {
		opts.DeadCodeInjection = config.Bool(deadCode)
	}
	if flags.Changed("anti-debug") {
		opts.AntiDebug = config.Bool(antiDebug)
	}
	if flags.Changed("minify") {
		opts.Minify = config.Bool(minify)
	}
	if flags.Changed("format") {
		opts.OutputFormat = config.OutputFormat(outputFormat)
	}
	if flags.Changed("seed") {
		opts.Seed = seed
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "Suppress informational output (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&protectionLevel, "level", "l", config.DefaultProtectionLevel, "Protection level 0-100 (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&mangleNames, "mangle-names", true, "Enable/disable identifier mangling (overrides level)")
	rootCmd.PersistentFlags().BoolVar(&encodeStrings, "encode-strings", true, "Enable/disable string encoding (overrides level)")
	rootCmd.PersistentFlags().StringVar(&encryptionAlgo, "algorithm", string(config.AlgorithmXOR), "String encoding algorithm: none, xor, base64, huffman, chunked")
	rootCmd.PersistentFlags().BoolVar(&encodeNumbers, "encode-numbers", false, "Enable/disable number encoding (overrides level)")
	rootCmd.PersistentFlags().BoolVar(&controlFlow, "control-flow", false, "Enable/disable control-flow obfuscation (overrides level)")
	rootCmd.PersistentFlags().BoolVar(&deadCode, "dead-code", false, "Enable/disable dead code injection")
	rootCmd.PersistentFlags().BoolVar(&antiDebug, "anti-debug", false, "Enable/disable anti-debug checks (overrides level)")
	rootCmd.PersistentFlags().BoolVar(&minify, "minify", true, "Enable/disable minification (overrides level)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format: minified, pretty, obfuscated, single-line")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed for reproducible output (0 = time-based)")

	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
}
