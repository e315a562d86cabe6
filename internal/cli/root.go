// Package cli defines the notewire command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "notewire",
	Short: "Agent server over a personal note store",
	Long: `notewire serves a TCP protocol that routes requests to reasoning
agents and keeps a vector index of the user's notes for retrieval.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "notewire.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level (trace, debug, info, warn, error, silent)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
