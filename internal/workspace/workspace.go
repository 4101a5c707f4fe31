// Package workspace is the host-side view of the project: it stats, lists and
// reads resources on an afero filesystem and maps them to forward-slash paths
// relative to the project root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/lian/codecopy/internal/models"
)

// Workspace binds a filesystem to a project root.
type Workspace struct {
	fs   afero.Fs
	root string
}

// New returns a Workspace rooted at root on fs. root is cleaned and made
// absolute when fs is the OS filesystem.
func New(fs afero.Fs, root string) (*Workspace, error) {
	if root == "" {
		return nil, fmt.Errorf("project root is empty: %w", models.ErrNotInWorkspace)
	}
	if _, ok := fs.(*afero.OsFs); ok {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve project root %s: %w", root, err)
		}
		root = abs
	}
	return &Workspace{fs: fs, root: filepath.Clean(root)}, nil
}

// NewOS returns a Workspace on the operating system filesystem.
func NewOS(root string) (*Workspace, error) {
	return New(afero.NewOsFs(), root)
}

// Root returns the cleaned project root.
func (w *Workspace) Root() string { return w.root }

// Fs exposes the underlying filesystem.
func (w *Workspace) Fs() afero.Fs { return w.fs }

// Abs resolves p against the project root when it is relative.
func (w *Workspace) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(w.root, p)
}

// Stat reports the kind of the resource without following symlinks when the
// filesystem supports lstat.
func (w *Workspace) Stat(path string) (models.Kind, error) {
	info, err := w.lstat(path)
	if err != nil {
		return models.KindOther, &models.ReadError{Path: path, Err: err}
	}
	return kindOf(info), nil
}

// StatFollow is Stat with symlinks resolved, for resources the user named.
func (w *Workspace) StatFollow(path string) (models.Kind, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return models.KindOther, &models.ReadError{Path: path, Err: err}
	}
	return kindOf(info), nil
}

func (w *Workspace) lstat(path string) (os.FileInfo, error) {
	if l, ok := w.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return w.fs.Stat(path)
}

func kindOf(info os.FileInfo) models.Kind {
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return models.KindFile
	case mode.IsDir():
		return models.KindDirectory
	default:
		return models.KindOther
	}
}

// ListChildren returns the directory's children in the order the filesystem
// reports them (afero sorts by name).
func (w *Workspace) ListChildren(dir string) ([]models.Child, error) {
	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil, &models.ReadError{Path: dir, Err: err}
	}
	children := make([]models.Child, 0, len(infos))
	for _, info := range infos {
		children = append(children, models.Child{Name: info.Name(), Kind: kindOf(info)})
	}
	return children, nil
}

// ReadBytes returns the raw file contents.
func (w *Workspace) ReadBytes(path string) ([]byte, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, &models.ReadError{Path: path, Err: err}
	}
	return data, nil
}

// ReadText decodes the file as UTF-8. Binary content is passed through as is.
func (w *Workspace) ReadText(path string) (string, error) {
	data, err := w.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RelativePath maps path to a forward-slash path relative to the project root.
// Paths outside the root yield models.ErrNotInWorkspace.
func (w *Workspace) RelativePath(path string) (string, error) {
	rel, err := filepath.Rel(w.root, w.Abs(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, models.ErrNotInWorkspace)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, models.ErrNotInWorkspace)
	}
	return filepath.ToSlash(rel), nil
}

// Contains reports whether path lies inside the project root.
func (w *Workspace) Contains(path string) bool {
	_, err := w.RelativePath(path)
	return err == nil
}

// FindRoot walks up from dir looking for a project marker (.git or the
// codecopy config file) and returns the first directory that has one, or dir
// itself when none is found.
func FindRoot(fs afero.Fs, dir string, markers ...string) string {
	dir = filepath.Clean(dir)
	for cur := dir; ; {
		for _, m := range markers {
			if ok, _ := afero.Exists(fs, filepath.Join(cur, m)); ok {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
