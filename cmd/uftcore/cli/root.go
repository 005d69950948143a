// Package cli wires the uftcore subcommands together with cobra, the way
// retroio's cmd package composes its per-format readers under one root.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"uftcore/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "uftcore",
	Short: "Floppy-disk preservation toolkit: D64/BAM, DMK tracks, flux decode, copy-protection analysis",
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(d64Cmd)
	rootCmd.AddCommand(dmkCmd)
	rootCmd.AddCommand(protectCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
