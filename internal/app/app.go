// Package app wires the core components together and implements the user
// facing copy operations shared by the CLI and the interactive browser.
package app

import (
	"errors"
	"fmt"

	"github.com/lian/codecopy/internal/clipboard"
	"github.com/lian/codecopy/internal/config"
	"github.com/lian/codecopy/internal/format"
	"github.com/lian/codecopy/internal/lists"
	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/models"
	"github.com/lian/codecopy/internal/walker"
	"github.com/lian/codecopy/internal/workspace"
)

// App holds one session's components. Lists is nil until AttachLists is
// called; commands that never touch lists do not open storage.
type App struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Walker    *walker.Walker
	Formatter *format.Formatter
	Clipboard *clipboard.Aggregator
	Writer    clipboard.Writer
	Lists     *lists.Store
	Log       logger.Logger
}

// Result summarises one operation.
type Result struct {
	Expanded int // entries produced by the walker
	Accepted int // entries the aggregator or list took
	Copied   int // entries written to the clipboard
}

// New builds an App rooted at ws writing to w.
func New(cfg *config.Config, ws *workspace.Workspace, w clipboard.Writer, log logger.Logger) (*App, error) {
	log = logger.OrDiscard(log)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	formatter, err := format.New(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	agg := clipboard.NewAggregator(clipboard.Options{
		MaxEntries:     cfg.MaxClipboardEntries,
		MaxContentSize: cfg.MaxContentSize,
		OnFull:         clipboard.Policy(cfg.OnFull),
	}, log)

	return &App{
		Config:    cfg,
		Workspace: ws,
		Walker:    walker.New(ws, cfg.FilterConfig(), log),
		Formatter: formatter,
		Clipboard: agg,
		Writer:    w,
		Log:       log,
	}, nil
}

// ListOptions returns the list store caps from the configuration.
func (a *App) ListOptions() lists.Options {
	return lists.Options{
		MaxLists:          a.Config.MaxLists,
		MaxEntriesPerList: a.Config.MaxEntriesPerList,
	}
}

// AttachLists sets the list store.
func (a *App) AttachLists(s *lists.Store) {
	a.Lists = s
}

// ExpandResource returns the filtered entries under resource.
func (a *App) ExpandResource(resource string) ([]models.Entry, error) {
	return a.Walker.Expand(resource)
}

// expandAll expands resources in order. An ErrNotInWorkspace aborts the
// whole operation before anything is changed.
func (a *App) expandAll(resources []string) ([]models.Entry, error) {
	var all []models.Entry
	for _, r := range resources {
		entries, err := a.ExpandResource(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r, err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

// CopyNew replaces the session clipboard with the entries under resources and
// writes the result. Entries beyond the clipboard cap are dropped.
func (a *App) CopyNew(resources ...string) (Result, error) {
	entries, err := a.expandAll(resources)
	if err != nil {
		return Result{}, err
	}
	res := Result{Expanded: len(entries)}
	if len(entries) == 0 {
		a.Log.Warnf("No files to copy")
		return res, nil
	}

	_ = a.Clipboard.StartNew(entries[0])
	for i, e := range entries[1:] {
		if !a.Clipboard.HasSpace() {
			a.Log.Warnf("Clipboard is full, dropped %d remaining file(s)", len(entries)-1-i)
			break
		}
		_ = a.Clipboard.Add(e)
	}
	res.Accepted = a.Clipboard.Len()

	res.Copied, err = clipboard.Publish(a.Clipboard, a.Formatter, a.Writer, a.Log)
	return res, err
}

// CopyAppend adds the entries under resources to the session clipboard and
// writes the combined result. The configured overflow policy applies.
func (a *App) CopyAppend(resources ...string) (Result, error) {
	entries, err := a.expandAll(resources)
	if err != nil {
		return Result{}, err
	}
	res := Result{Expanded: len(entries)}
	for _, e := range entries {
		if err := a.Clipboard.Add(e); err == nil {
			res.Accepted++
		}
	}
	if res.Accepted == 0 {
		a.Log.Warnf("Nothing added to clipboard")
		return res, nil
	}

	res.Copied, err = clipboard.Publish(a.Clipboard, a.Formatter, a.Writer, a.Log)
	return res, err
}

// ClearClipboard empties the session clipboard. The system clipboard is left
// as it is.
func (a *App) ClearClipboard() {
	a.Clipboard.Clear()
	a.Log.Infof("Clipboard cleared")
}

// AddToList adds the entries under resources to the list with id. Duplicates
// and entries beyond the list cap are logged and skipped.
func (a *App) AddToList(id string, resources ...string) (Result, error) {
	if a.Lists == nil {
		return Result{}, errors.New("list store is not open")
	}
	if _, ok := a.Lists.Get(id); !ok {
		return Result{}, models.NewValidationError(id, models.ErrListNotFound)
	}

	entries, err := a.expandAll(resources)
	if err != nil {
		return Result{}, err
	}
	res := Result{Expanded: len(entries)}
	for _, e := range entries {
		err := a.Lists.AddEntry(id, e)
		if err == nil {
			res.Accepted++
			continue
		}
		if errors.Is(err, models.ErrListFull) {
			break
		}
	}
	return res, nil
}

// CopyList writes the list with id to the clipboard.
func (a *App) CopyList(id string) error {
	if a.Lists == nil {
		return errors.New("list store is not open")
	}
	return a.Lists.CopyToClipboard(id)
}
