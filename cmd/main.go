package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "eduverse",
	Short:         "EduVerse social learning backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	// Running the binary with no subcommand serves HTTP.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, curriculumCmd, tokensCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "eduverse: %v\n", err)
		os.Exit(1)
	}
}
