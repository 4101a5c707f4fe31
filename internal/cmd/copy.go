package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lian/codecopy/internal/clipboard"
)

// NewCopyCommand creates the 'codecopy copy' command
func NewCopyCommand(opts *rootOptions) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "copy PATH...",
		Short: "Copy files and directories to the clipboard",
		Long: `Copy expands every PATH (directories recursively), applies the allowlist
and blocklist globs and puts the formatted result on the clipboard, replacing
what was there.

Examples:
  # Copy one file
  codecopy copy src/index.ts

  # Copy a directory and print instead of using the clipboard
  codecopy copy src --print > context.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, opts, args, toStdout)
		},
	}

	cmd.Flags().BoolVarP(&toStdout, "print", "p", false, "Write the result to stdout instead of the clipboard")

	return cmd
}

func runCopy(cmd *cobra.Command, opts *rootOptions, args []string, toStdout bool) error {
	s, err := openSession(cmd, opts, outputWriter(cmd, toStdout), false)
	if err != nil {
		return err
	}
	defer s.Close()

	paths, err := absPaths(args)
	if err != nil {
		return err
	}

	res, err := s.app.CopyNew(paths...)
	if err != nil {
		if errors.Is(err, clipboard.ErrUnsupported) {
			return fmt.Errorf("%w (use --print to write to stdout)", err)
		}
		return err
	}
	if res.Copied == 0 {
		return fmt.Errorf("no files to copy")
	}
	if !toStdout {
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %d of %d file(s) to clipboard\n", res.Copied, res.Expanded)
	}
	return nil
}
