// Package filter decides whether a project-relative path should be copied,
// using an allowlist and a blocklist of glob patterns.
//
// Patterns use doublestar syntax: `*`, `**`, `?`, character classes and brace
// alternation. Dotfiles and dot-directories are matched like any other name.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lian/codecopy/internal/logger"
)

// Config is a read-only snapshot of the filter settings.
type Config struct {
	AllowlistEnabled bool
	AllowPatterns    []string
	BlocklistEnabled bool
	BlockPatterns    []string
}

// DefaultBlockPatterns excludes dependency and VCS directories at any depth.
func DefaultBlockPatterns() []string {
	return []string{"**/node_modules/**", "**/.git/**"}
}

// DefaultConfig allows everything except DefaultBlockPatterns.
func DefaultConfig() Config {
	return Config{
		BlocklistEnabled: true,
		BlockPatterns:    DefaultBlockPatterns(),
	}
}

// Filter evaluates Config snapshots. Its only state is the logger used to
// report invalid patterns and decisions.
type Filter struct {
	log logger.Logger
}

// New creates a Filter; log may be nil.
func New(log logger.Logger) *Filter {
	return &Filter{log: logger.OrDiscard(log)}
}

// ShouldInclude reports whether relativePath passes cfg. With the allowlist
// enabled a path must match at least one allow pattern; a path that passed
// is then excluded by any matching block pattern. An enabled blocklist with
// no patterns falls back to DefaultBlockPatterns.
func (f *Filter) ShouldInclude(relativePath string, cfg Config) bool {
	if cfg.AllowlistEnabled {
		pattern, ok := f.matchAny(relativePath, cfg.AllowPatterns)
		if !ok {
			f.log.Debugf("File not in allowlist: %s", relativePath)
			return false
		}
		f.log.Debugf("File matches allowlist pattern %s: %s", pattern, relativePath)
	}

	if cfg.BlocklistEnabled {
		patterns := cfg.BlockPatterns
		if len(patterns) == 0 {
			patterns = DefaultBlockPatterns()
		}
		if pattern, ok := f.matchAny(relativePath, patterns); ok {
			f.log.Debugf("File blocked by pattern %s: %s", pattern, relativePath)
			return false
		}
	}
	return true
}

// PruneDir reports whether every path below the directory relativeDir is
// blocked, so the directory need not be listed. Only block patterns of the
// form `<dir pattern>/**` can prune.
func (f *Filter) PruneDir(relativeDir string, cfg Config) bool {
	if !cfg.BlocklistEnabled {
		return false
	}
	patterns := cfg.BlockPatterns
	if len(patterns) == 0 {
		patterns = DefaultBlockPatterns()
	}
	for _, p := range patterns {
		prefix, ok := strings.CutSuffix(p, "/**")
		if !ok || prefix == "" {
			continue
		}
		if matched, err := doublestar.Match(prefix, relativeDir); err == nil && matched {
			f.log.Debugf("Directory blocked by pattern %s: %s", p, relativeDir)
			return true
		}
	}
	return false
}

// matchAny returns the first pattern matching path.
func (f *Filter) matchAny(path string, patterns []string) (string, bool) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			f.log.Warnf("Invalid glob pattern %q: %v", p, err)
			continue
		}
		if ok {
			return p, true
		}
	}
	return "", false
}

// ShouldInclude evaluates cfg without logging.
func ShouldInclude(relativePath string, cfg Config) bool {
	return New(nil).ShouldInclude(relativePath, cfg)
}
