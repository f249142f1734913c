//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/cottand/kiln/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "kiln [subcommand]",
	Short:        "kiln type-checks and compiles units of a small generic language",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.BuildCmd)
	rootCmd.AddCommand(cmd.HeadersCmd)
}
