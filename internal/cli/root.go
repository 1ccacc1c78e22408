// Package cli wires the command line surface: run executes a collection
// sequentially, perf drives one item through the performance engine.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apitest",
	Short: "Script-driven HTTP request pipeline and load generator",
	Long: `apitest executes YAML request collections. Each item can run a
pre-request script (to shape the outgoing request) and a post-response
script (to inspect the reply), with a shared variable store carrying
state between items. The perf command hammers a single item across a
bounded worker pool and reports latency percentiles.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(perfCmd)
}
