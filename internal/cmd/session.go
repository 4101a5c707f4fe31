package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lian/codecopy/internal/app"
	"github.com/lian/codecopy/internal/clipboard"
	"github.com/lian/codecopy/internal/config"
	"github.com/lian/codecopy/internal/lists"
	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/storage"
	"github.com/lian/codecopy/internal/workspace"
)

// systemClipboard returns the clipboard used when output is not printed.
// Tests replace it.
var systemClipboard = func() clipboard.Writer { return clipboard.SystemWriter{} }

// isTerminal reports whether f is an interactive terminal. Tests replace it.
var isTerminal = func(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// session is everything one command invocation needs.
type session struct {
	cfg   *config.Config
	log   logger.Logger
	app   *app.App
	store storage.Store // nil unless lists were requested
}

// openSession resolves the project root and configuration, builds the App and,
// when withLists is set, opens the list storage.
func openSession(cmd *cobra.Command, opts *rootOptions, w clipboard.Writer, withLists bool) (*session, error) {
	root, err := resolveRoot(opts.root)
	if err != nil {
		return nil, err
	}

	cfg, cfgPath, err := config.Resolve(opts.configPath, root)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), level)
	if cfgPath != "" {
		log.Debugf("Using config file %s", cfgPath)
	}
	log.Debugf("Project root: %s", root)

	ws, err := workspace.NewOS(root)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, ws, w, log)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, app: a}

	if withLists {
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		st, err := storage.Open(cfg.Storage.Backend, path)
		if err != nil {
			return nil, fmt.Errorf("open list storage: %w", err)
		}
		log.Debugf("List storage: %s (%s)", path, cfg.Storage.Backend)
		s.store = st
		a.AttachLists(lists.Open(st, a.Formatter, w, a.ListOptions(), log))
	}
	return s, nil
}

// Close releases the list storage.
func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warnf("Error closing list storage: %v", err)
		}
	}
}

// resolveRoot returns the absolute project root: the flag value, or the
// nearest ancestor of the working directory holding .git or the config file.
func resolveRoot(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return workspace.FindRoot(afero.NewOsFs(), cwd, ".git", config.FileName), nil
}

// absPaths resolves command line paths against the working directory so the
// walker sees the same files the user named.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", a, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// outputWriter picks the clipboard sink: stdout for --print, else the system
// clipboard.
func outputWriter(cmd *cobra.Command, toStdout bool) clipboard.Writer {
	if toStdout {
		return clipboard.StreamWriter{W: cmd.OutOrStdout()}
	}
	return systemClipboard()
}

// findList resolves ref to a list id by id or name.
func findList(s *lists.Store, ref string) (string, string, error) {
	l, ok := s.Find(ref)
	if !ok {
		return "", "", fmt.Errorf("list %q not found", ref)
	}
	return l.ID, l.Name, nil
}
