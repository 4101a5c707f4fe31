package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/lian/codecopy/internal/lists"
	"github.com/lian/codecopy/internal/models"
	"github.com/lian/codecopy/internal/view"
)

// NewListCommand creates the 'codecopy list' command group
func NewListCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage saved lists of files",
		Long: `Lists keep named sets of file snapshots that can be copied again later.

LIST arguments accept a list id or a list name.`,
	}

	cmd.AddCommand(newListCreateCommand(opts))
	cmd.AddCommand(newListRenameCommand(opts))
	cmd.AddCommand(newListDeleteCommand(opts))
	cmd.AddCommand(newListAddCommand(opts))
	cmd.AddCommand(newListRemoveCommand(opts))
	cmd.AddCommand(newListShowCommand(opts))
	cmd.AddCommand(newListCopyCommand(opts))
	cmd.AddCommand(newListClearCommand(opts))

	return cmd
}

// withStore opens a session with list storage, runs fn and closes it.
func withStore(cmd *cobra.Command, opts *rootOptions, toStdout bool, fn func(s *session) error) error {
	s, err := openSession(cmd, opts, outputWriter(cmd, toStdout), true)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func newListCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				l, err := s.app.Lists.Create(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created list %q (%s)\n", l.Name, l.ID)
				return nil
			})
		},
	}
}

func newListRenameCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename LIST NEW_NAME",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				id, name, err := findList(s.app.Lists, args[0])
				if err != nil {
					return err
				}
				if err := s.app.Lists.Rename(id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed list %q to %q\n", name, strings.TrimSpace(args[1]))
				return nil
			})
		},
	}
}

func newListDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete LIST",
		Short: "Delete a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				id, name, err := findList(s.app.Lists, args[0])
				if err != nil {
					return err
				}
				ok, err := confirm(fmt.Sprintf("Delete list %q", name), yes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
				if err := s.app.Lists.Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted list %q\n", name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func newListAddCommand(opts *rootOptions) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "Add files and directories to a list",
		Long: `Add snapshots of every file under PATH to a list. Files already in the
list are skipped.

Without --list the target is picked interactively; when no list exists yet
you are asked for the name of a new one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				id, name, err := pickList(s.app.Lists, ref)
				if err != nil {
					return err
				}
				res, err := s.app.AddToList(id, paths...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d file(s) to list %q\n", res.Accepted, res.Expanded, name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&ref, "list", "l", "", "Target list id or name")
	return cmd
}

func newListRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove LIST INDEX",
		Short: "Remove an entry from a list by its index (see 'list show')",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			return withStore(cmd, opts, false, func(s *session) error {
				id, name, err := findList(s.app.Lists, args[0])
				if err != nil {
					return err
				}
				if err := s.app.Lists.RemoveEntry(id, index); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d from list %q\n", index, name)
				return nil
			})
		},
	}
}

func newListShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [LIST]",
		Short: "Show lists and their entries as a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				all := s.app.Lists.GetAll()
				if len(args) == 1 {
					l, ok := s.app.Lists.Find(args[0])
					if !ok {
						return fmt.Errorf("list %q not found", args[0])
					}
					all = []models.List{l}
				}
				if len(all) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No lists yet. Create one with 'codecopy list create NAME'.")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), view.Render("Lists", view.Project(all)))
				return nil
			})
		},
	}
}

func newListCopyCommand(opts *rootOptions) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "copy LIST",
		Short: "Copy every entry of a list to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, toStdout, func(s *session) error {
				id, name, err := findList(s.app.Lists, args[0])
				if err != nil {
					return err
				}
				if err := s.app.CopyList(id); err != nil {
					return err
				}
				if !toStdout {
					fmt.Fprintf(cmd.OutOrStdout(), "Copied list %q to clipboard\n", name)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&toStdout, "print", "p", false, "Write the result to stdout instead of the clipboard")
	return cmd
}

func newListClearCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, false, func(s *session) error {
				n := s.app.Lists.Len()
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No lists to clear.")
					return nil
				}
				ok, err := confirm(fmt.Sprintf("Delete all %d lists", n), yes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
				if err := s.app.Lists.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d lists\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Clear without asking for confirmation")
	return cmd
}

// confirm asks a yes/no question unless yes is already set. Without a
// terminal it refuses rather than guessing.
func confirm(label string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !isTerminal(os.Stdin) {
		return false, errors.New("confirmation required: pass --yes when not running in a terminal")
	}
	p := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// pickList resolves the target list for 'list add': by reference when given,
// else by prompting. With no lists at all the prompt creates one.
func pickList(store *lists.Store, ref string) (string, string, error) {
	if ref != "" {
		return findList(store, ref)
	}
	if !isTerminal(os.Stdin) {
		return "", "", errors.New("no list given: pass --list when not running in a terminal")
	}

	all := store.GetAll()
	if len(all) == 0 {
		p := promptui.Prompt{
			Label: "New list name",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return models.ErrInvalidName
				}
				return nil
			},
		}
		name, err := p.Run()
		if err != nil {
			return "", "", fmt.Errorf("prompt: %w", err)
		}
		l, err := store.Create(name)
		if err != nil {
			return "", "", err
		}
		return l.ID, l.Name, nil
	}

	names := make([]string, len(all))
	for i, l := range all {
		names[i] = fmt.Sprintf("%s (%s)", l.Name, view.EntryCount(len(l.Entries)))
	}
	sel := promptui.Select{Label: "Select a list", Items: names}
	idx, _, err := sel.Run()
	if err != nil {
		return "", "", fmt.Errorf("prompt: %w", err)
	}
	return all[idx].ID, all[idx].Name, nil
}
