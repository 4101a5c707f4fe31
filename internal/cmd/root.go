package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	root       string
	logLevel   string
}

// NewRootCommand creates and returns the root cobra command for codecopy
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "codecopy",
		Short: "Copy source files to the clipboard as formatted snippets",
		Long: `codecopy expands files and directories into filtered, formatted snippets
and puts them on the clipboard, ready to paste into a chat or an issue.

Frequently used sets of files can be kept in named lists and copied again
later. Allowlist and blocklist globs decide which files are included.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: <root>/.codecopy.yaml, then user config)")
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Project root (default: nearest directory with .git or .codecopy.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(NewCopyCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codecopy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codecopy %s\n", Version)
		},
	}
}
