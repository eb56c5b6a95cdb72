package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/replet"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of replet",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("replet version %s\n", strings.TrimSpace(replet.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
