// Package main is the entry point for the callwarden binary.
// It provides a CLI for screening call scenarios offline and for
// running the screening daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for callwarden.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "callwarden",
		Short: "Incoming call screening engine",
		Long: `callwarden screens incoming calls through a graph of filters
(block list, contacts, do-not-disturb, Rego policy, external screening
service) and produces a single verdict per call: allow, reject or
silence, plus call-log and notification decisions.

Example:
  callwarden screen --config callwarden.yaml scenario.yaml
  callwarden serve --config callwarden.yaml`,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "Enable pretty console logging")

	rootCmd.AddCommand(newScreenCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}
