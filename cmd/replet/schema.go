package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/replet/internal/cli"
	"github.com/aretw0/replet/internal/config"
	"github.com/aretw0/replet/internal/presentation/graph"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect a command schema",
	Long: `Validates and visualizes command schemas. The schema is taken from the
argument, the --schema flag or the configuration file, in that order. Without
any of them the built-in demo schema is used.`,
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the schema for structural problems",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := compileSchema(cmd, args)
		if err != nil {
			var schemaErr *grammar.SchemaError
			if errors.As(err, &schemaErr) {
				fmt.Println("Validation failed:")
				for _, issue := range schemaErr.Issues {
					fmt.Printf("  - %s\n", issue)
				}
			} else {
				fmt.Printf("Validation failed: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Printf("Schema is valid! ✅ (%d top-level commands)\n", len(g.Schema().Commands))
	},
}

var schemaGraphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the command tree as a Mermaid diagram",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := compileSchema(cmd, args)
		if err != nil {
			fmt.Printf("Error loading schema: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if current, _ := cmd.Flags().GetString("highlight"); current != "" {
			overlay = &graph.Overlay{Current: current}
		}
		fmt.Print(graph.GenerateMermaid(g.Schema(), overlay))
	},
}

var schemaUsageCmd = &cobra.Command{
	Use:   "usage [file]",
	Short: "Print the help text the REPL shows for the schema",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := compileSchema(cmd, args)
		if err != nil {
			fmt.Printf("Error loading schema: %v\n", err)
			os.Exit(1)
		}
		text, err := g.Help()
		if err != nil {
			fmt.Printf("Error rendering help: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
	},
}

func init() {
	schemaGraphCmd.Flags().String("highlight", "", "Command path to highlight, e.g. \"remote add\"")

	schemaCmd.AddCommand(schemaValidateCmd, schemaGraphCmd, schemaUsageCmd)
	rootCmd.AddCommand(schemaCmd)
}

func compileSchema(cmd *cobra.Command, args []string) (*grammar.Grammar, error) {
	path, _ := cmd.Flags().GetString("schema")
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		path = cfg.Schema
	}

	s, err := cli.LoadSchema(path)
	if err != nil {
		return nil, err
	}
	return grammar.Compile(s)
}
