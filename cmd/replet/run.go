package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/replet/internal/cli"
	"github.com/aretw0/replet/pkg/repl"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the REPL",
	Long: `Starts the REPL on the configured line source. On a terminal this is a
line editor with completion and validation; piped input is read line by line.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.SchemaPath, _ = cmd.Flags().GetString("schema")
		opts.Source, _ = cmd.Flags().GetString("source")
		opts.Prompt, _ = cmd.Flags().GetString("prompt")
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.NoBanner, _ = cmd.Flags().GetBool("no-banner")
		opts.ContinueOnPanic, _ = cmd.Flags().GetBool("continue-on-panic")
		opts.VimMode, _ = cmd.Flags().GetBool("vim")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := cli.Execute(ctx, opts)
		stop()

		code := repl.ExitCode(err)
		if code == repl.ExitFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("source", "", "Line source: auto, readline, stdio, json or redis")
	runCmd.Flags().String("prompt", "", "Prompt text")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
	runCmd.Flags().Bool("debug", false, "Enable debug logging on stderr")
	runCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
	runCmd.Flags().Bool("continue-on-panic", false, "Keep running after a command panics")
	runCmd.Flags().Bool("vim", false, "Use vi key bindings")

	// 'run' is the default when no command is given.
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.Run = runCmd.Run
}
