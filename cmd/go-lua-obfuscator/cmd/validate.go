package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/luamixer/internal/parser"
)

// validateCmd checks that a Lua file parses without transforming it.
var validateCmd = &cobra.Command{
	Use:   "validate <lua_file_path>",
	Short: "Check that a Lua file parses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		filePath := args[0]
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", filePath, err)
		}
		if _, err := parser.Parse(string(data)); err != nil {
			return fmt.Errorf("%s: %w", filePath, err)
		}
		if opts == nil || !opts.Silent {
			fmt.Printf("%s: OK\n", filePath)
		}
		return nil
	},
}
