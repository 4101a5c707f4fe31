// Package walker expands a file or directory into the ordered, filtered
// sequence of entries that gets copied.
package walker

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/lian/codecopy/internal/filter"
	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/models"
	"github.com/lian/codecopy/internal/workspace"
)

// DefaultMaxDepth bounds recursion below the starting resource.
const DefaultMaxDepth = 64

// Walker traverses resources depth-first in directory-listing order.
type Walker struct {
	ws       *workspace.Workspace
	filter   *filter.Filter
	cfg      filter.Config
	log      logger.Logger
	maxDepth int
}

// New creates a Walker over ws applying cfg to every file.
func New(ws *workspace.Workspace, cfg filter.Config, log logger.Logger) *Walker {
	log = logger.OrDiscard(log)
	return &Walker{
		ws:       ws,
		filter:   filter.New(log),
		cfg:      cfg,
		log:      log,
		maxDepth: DefaultMaxDepth,
	}
}

// SetMaxDepth overrides DefaultMaxDepth.
func (w *Walker) SetMaxDepth(depth int) {
	if depth > 0 {
		w.maxDepth = depth
	}
}

// Expand reads every file under resource that passes the filter and returns
// one entry per file in pre-order traversal order. Unreadable files and
// directories are logged and skipped. The only error is
// models.ErrNotInWorkspace, returned before anything is read.
func (w *Walker) Expand(resource string) ([]models.Entry, error) {
	var entries []models.Entry
	err := w.walk(resource, func(abs, rel string) {
		content, err := w.ws.ReadText(abs)
		if err != nil {
			w.log.Warnf("Skipping unreadable file %s: %v", rel, err)
			return
		}
		entries = append(entries, models.NewEntry(rel, content))
	})
	if err != nil {
		return nil, err
	}
	w.log.Infof("Expanded %s into %d entries", resource, len(entries))
	return entries, nil
}

// Paths returns the relative paths Expand would read, without reading them.
func (w *Walker) Paths(resource string) ([]string, error) {
	var paths []string
	err := w.walk(resource, func(_, rel string) {
		paths = append(paths, rel)
	})
	return paths, err
}

// walk calls visit for every included file under resource.
func (w *Walker) walk(resource string, visit func(abs, rel string)) error {
	abs := w.ws.Abs(resource)
	if _, err := w.ws.RelativePath(abs); err != nil {
		w.log.Errorf("Cannot copy %s: %v", resource, err)
		return err
	}

	kind, err := w.ws.StatFollow(abs)
	if err != nil {
		w.log.Warnf("Skipping %s: %v", resource, err)
		return nil
	}

	switch kind {
	case models.KindFile:
		w.visitFile(abs, visit)
	case models.KindDirectory:
		w.visitDir(abs, 0, make(map[string]struct{}), visit)
	default:
		w.log.Warnf("Skipping %s: not a regular file or directory", resource)
	}
	return nil
}

func (w *Walker) visitFile(abs string, visit func(abs, rel string)) {
	rel, err := w.ws.RelativePath(abs)
	if err != nil || rel == "" || rel == "." {
		w.log.Warnf("Skipping %s: no relative path", abs)
		return
	}
	if !w.filter.ShouldInclude(rel, w.cfg) {
		return
	}
	visit(abs, rel)
}

func (w *Walker) visitDir(dir string, depth int, visited map[string]struct{}, visit func(abs, rel string)) {
	if depth > w.maxDepth {
		w.log.Warnf("Skipping %s: deeper than %d levels", dir, w.maxDepth)
		return
	}

	key := w.canonical(dir)
	if _, seen := visited[key]; seen {
		w.log.Warnf("Skipping %s: already visited", dir)
		return
	}
	visited[key] = struct{}{}

	children, err := w.ws.ListChildren(dir)
	if err != nil {
		w.log.Warnf("Skipping unreadable directory %s: %v", dir, err)
		return
	}
	w.log.Debugf("Found %d items in directory: %s", len(children), dir)

	for _, child := range children {
		path := filepath.Join(dir, child.Name)
		switch child.Kind {
		case models.KindDirectory:
			if rel, err := w.ws.RelativePath(path); err == nil && w.filter.PruneDir(rel, w.cfg) {
				continue
			}
			w.visitDir(path, depth+1, visited, visit)
		case models.KindFile:
			w.visitFile(path, visit)
		default:
			w.log.Debugf("Skipping %s: %s", path, child.Kind)
		}
	}
}

// canonical resolves symlinks on the OS filesystem so a directory reached
// twice is only listed once.
func (w *Walker) canonical(dir string) string {
	if _, ok := w.ws.Fs().(*afero.OsFs); ok {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return resolved
		}
	}
	return filepath.Clean(dir)
}
