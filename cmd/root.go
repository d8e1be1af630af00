// Package cmd defines the CLI commands for the pagesnap executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagesnap",
		Short: "Capture clean screenshots and HTML of websites",
		Long: `pagesnap crawls a list of websites with headless Chrome, discovers and
dismisses cookie banners, consent dialogs, and other overlays, and captures
a screenshot plus an HTML snapshot of every page it visits.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); defaults and PAGESNAP_* env vars apply without one")

	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
