// Package main provides the report_agent CLI: the HTTP API server plus
// offline commands for templates, overrides and report files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "report_agent",
	Short:         "Inspection report assembly server and tools",
	Long:          "report_agent stores inspection jobs against report templates and assembles them into JSON, LaTeX or XLSX reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
