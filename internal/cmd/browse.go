package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lian/codecopy/internal/tui"
)

// NewBrowseCommand creates the 'codecopy browse' command
func NewBrowseCommand(opts *rootOptions) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "browse [DIR]",
		Short: "Pick files interactively and copy them",
		Long: `Browse lists the files under DIR (default: the current directory) that pass
the allowlist and blocklist globs.

Keys:
  space/m   toggle selection          /     fuzzy filter (esc leaves it)
  y/enter   copy selection and quit   .     toggle hidden paths
  a         append selection to the clipboard of this session
  l         add selection to the list given with --list
  c         clear selection           x     clear the session clipboard
  q         quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runBrowse(cmd, opts, dir, listRef)
		},
	}

	cmd.Flags().StringVarP(&listRef, "list", "l", "", "List id or name targeted by the 'l' key")

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *rootOptions, dir, listRef string) error {
	if !isTerminal(os.Stdout) {
		return errors.New("browse needs an interactive terminal; use 'codecopy copy' in scripts")
	}

	s, err := openSession(cmd, opts, systemClipboard(), listRef != "")
	if err != nil {
		return err
	}
	defer s.Close()

	paths, err := absPaths([]string{dir})
	if err != nil {
		return err
	}

	var listID string
	if listRef != "" {
		if listID, _, err = findList(s.app.Lists, listRef); err != nil {
			return err
		}
	}

	final, err := tui.Run(tui.Options{App: s.app, Dir: paths[0], ListID: listID})
	if err != nil {
		return err
	}
	if err := final.Err(); err != nil {
		return err
	}
	if summary := final.Summary(); summary != "" {
		fmt.Fprintln(cmd.OutOrStdout(), summary)
	}
	return nil
}
