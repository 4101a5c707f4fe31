// Package clipboard holds the entries collected for the current clipboard copy
// and writes their rendered text to the system clipboard.
package clipboard

import (
	"strings"
	"sync"

	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/models"
)

// Policy decides what Add does once the aggregator is full.
type Policy string

const (
	// PolicyRestart discards the held entries and starts over with the new one.
	PolicyRestart Policy = "restart"
	// PolicyReject refuses the new entry with a warning.
	PolicyReject Policy = "reject"
)

// Options are the aggregator caps.
type Options struct {
	MaxEntries     int
	MaxContentSize int // bytes
	OnFull         Policy
}

// DefaultOptions holds 50 entries of at most 1 MiB and restarts when full.
func DefaultOptions() Options {
	return Options{
		MaxEntries:     50,
		MaxContentSize: 1024 * 1024,
		OnFull:         PolicyRestart,
	}
}

// Aggregator is the ordered, capped collection behind one clipboard copy.
// It lives for the process or interactive session and is never persisted.
type Aggregator struct {
	mu      sync.Mutex
	entries []models.Entry
	opts    Options
	log     logger.Logger
}

// NewAggregator creates an empty aggregator. Non-positive caps and an unknown
// policy fall back to DefaultOptions values.
func NewAggregator(opts Options, log logger.Logger) *Aggregator {
	def := DefaultOptions()
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = def.MaxEntries
	}
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = def.MaxContentSize
	}
	if opts.OnFull != PolicyReject {
		opts.OnFull = PolicyRestart
	}
	return &Aggregator{opts: opts, log: logger.OrDiscard(log)}
}

// Options returns the effective caps.
func (a *Aggregator) Options() Options { return a.opts }

// check returns the validation failure for e, if any.
func (a *Aggregator) check(e models.Entry) error {
	switch {
	case e.RelativePath == "":
		return models.NewValidationError("", models.ErrEmptyPath)
	case strings.TrimSpace(e.Content) == "":
		return models.NewValidationError(e.RelativePath, models.ErrEmptyContent)
	case len(e.Content) > a.opts.MaxContentSize:
		return models.NewValidationError(e.RelativePath, models.ErrContentTooLarge)
	}
	return nil
}

// Validate reports whether e may be held, logging a warning when it may not.
func (a *Aggregator) Validate(e models.Entry) bool {
	if err := a.check(e); err != nil {
		a.log.Warnf("Rejected %v", err)
		return false
	}
	return true
}

// StartNew discards every held entry and starts over with e. An invalid e
// leaves the aggregator empty.
func (a *Aggregator) StartNew(e models.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startNewLocked(e)
}

func (a *Aggregator) startNewLocked(e models.Entry) error {
	a.entries = nil
	if err := a.check(e); err != nil {
		a.log.Warnf("Rejected %v", err)
		return err
	}
	a.entries = []models.Entry{e}
	a.log.Infof("Started new clipboard with: %s", e.RelativePath)
	return nil
}

// Add appends e. When the aggregator is full the configured policy applies:
// PolicyRestart behaves like StartNew, PolicyReject returns ErrClipboardFull.
func (a *Aggregator) Add(e models.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.check(e); err != nil {
		a.log.Warnf("Rejected %v", err)
		return err
	}
	if len(a.entries) >= a.opts.MaxEntries {
		if a.opts.OnFull == PolicyReject {
			err := models.NewValidationError(e.RelativePath, models.ErrClipboardFull)
			a.log.Warnf("Rejected %v (limit %d)", err, a.opts.MaxEntries)
			return err
		}
		a.log.Warnf("Clipboard is full (%d entries), starting a new one", a.opts.MaxEntries)
		return a.startNewLocked(e)
	}
	a.entries = append(a.entries, e)
	a.log.Debugf("Added %s to existing clipboard", e.RelativePath)
	return nil
}

// Clear empties the aggregator.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}

// Snapshot returns a copy of the held entries in insertion order.
func (a *Aggregator) Snapshot() []models.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of held entries.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// HasSpace reports whether another entry fits without triggering the policy.
func (a *Aggregator) HasSpace() bool {
	return a.Len() < a.opts.MaxEntries
}
