package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whit3rabbit/luamixer/internal/config"
)

// configCmd groups configuration utilities.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// configInitCmd writes a default config.yaml to the working directory or the
// given path.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.SaveConfig(path); err != nil {
			return fmt.Errorf("error writing default config: %w", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
