package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replet",
	Short: "Replet is an embeddable read-eval-print loop",
	Long: `Replet reads lines, parses them against a command schema and dispatches
typed commands. Without a schema it runs a small demo command set.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default replet.yaml if present)")
	rootCmd.PersistentFlags().String("schema", "", "Command schema file (YAML or JSON)")
}
