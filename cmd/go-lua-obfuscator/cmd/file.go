package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/luamixer/pkg/api"
)

var (
	outputFile string // flag variable for output file path
	showStats  bool   // flag variable for statistics output
)

// fileCmd represents the obfuscate file command.
var fileCmd = &cobra.Command{
	Use:   "file <lua_file_path>",
	Short: "Obfuscate a single Lua file",
	Long: `Reads a single Lua file, applies the configured obfuscation
techniques, and outputs the result to stdout or a specified file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true
		filePath := args[0]

		if !opts.Silent {
			fmt.Printf("Processing file: %s\n", filePath)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", filePath, err)
		}

		res := api.ObfuscateWithResult(string(data), opts)
		if !res.Success {
			return fmt.Errorf("error obfuscating file %s: %w", filePath, res.Err)
		}
		if !opts.Silent {
			fmt.Println("File processed successfully.")
		}

		if outputFile != "" {
			if !opts.Silent {
				fmt.Printf("Info: Writing output to file: %s\n", outputFile)
			}
			if err := os.WriteFile(outputFile, []byte(res.Code), 0644); err != nil {
				return fmt.Errorf("error writing to output file %s: %w", outputFile, err)
			}
		} else {
			fmt.Print(res.Code)
			if len(res.Code) > 0 && res.Code[len(res.Code)-1] != '\n' {
				fmt.Println()
			}
		}

		if showStats {
			stats, err := res.Summary.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, stats)
		}
		return nil
	},
}

func init() {
	fileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")
	fileCmd.Flags().BoolVar(&showStats, "stats", false, "Print obfuscation statistics as JSON to stderr")
}
