package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lian/codecopy/internal/filter"
)

// FileName is the per-project configuration file looked up in the project root.
const FileName = ".codecopy.yaml"

// DefaultFormat renders the path line followed by a fenced block.
const DefaultFormat = "{filepath}\n```\n{content}\n```"

// Aggregator overflow policies.
const (
	OnFullRestart = "restart"
	OnFullReject  = "reject"
)

// Storage backends.
const (
	BackendBolt = "bolt"
	BackendFile = "file"
)

// Patterns is an ordered list of glob patterns. In YAML it may be written as a
// sequence or as one newline-separated string.
type Patterns []string

// UnmarshalYAML accepts both a sequence and a block string.
func (p *Patterns) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = SplitPatterns(value.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		out := make(Patterns, 0, len(raw))
		for _, r := range raw {
			if r = strings.TrimSpace(r); r != "" {
				out = append(out, r)
			}
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("line %d: patterns must be a list or a string", value.Line)
	}
}

// SplitPatterns splits a newline-separated pattern string, dropping blank lines.
func SplitPatterns(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Backend is "bolt" (single database file) or "file" (locked JSON files)
	Backend string `yaml:"backend"`

	// Path is the database file (bolt) or directory (file); empty means the
	// user config directory
	Path string `yaml:"path"`
}

// Config represents codecopy configuration options
type Config struct {
	// EnableAllowlists restricts copying to paths matching AllowlistPatterns
	EnableAllowlists bool `yaml:"enable_allowlists"`

	// AllowlistPatterns are glob patterns a path must match when allowlists are enabled
	AllowlistPatterns Patterns `yaml:"allowlist_patterns"`

	// EnableBlocklists excludes paths matching BlocklistPatterns
	EnableBlocklists bool `yaml:"enable_blocklists"`

	// BlocklistPatterns are glob patterns that exclude a path
	BlocklistPatterns Patterns `yaml:"blocklist_patterns"`

	// Format is the per-entry template with {filepath} and {content} placeholders
	Format string `yaml:"format"`

	// MaxClipboardEntries caps the number of entries held for one clipboard copy
	MaxClipboardEntries int `yaml:"max_clipboard_entries"`

	// MaxContentSize caps the size of a single entry in bytes
	MaxContentSize int `yaml:"max_content_size"`

	// OnFull is the clipboard overflow policy: "restart" or "reject"
	OnFull string `yaml:"on_full"`

	// MaxLists caps the number of named lists
	MaxLists int `yaml:"max_lists"`

	// MaxEntriesPerList caps the entries in each list
	MaxEntriesPerList int `yaml:"max_entries_per_list"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Storage configures where lists are persisted
	Storage StorageConfig `yaml:"storage"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		EnableAllowlists:    false,
		AllowlistPatterns:   Patterns{"**/*"},
		EnableBlocklists:    true,
		BlocklistPatterns:   Patterns(filter.DefaultBlockPatterns()),
		Format:              DefaultFormat,
		MaxClipboardEntries: 50,
		MaxContentSize:      1024 * 1024,
		OnFull:              OnFullRestart,
		MaxLists:            20,
		MaxEntriesPerList:   100,
		LogLevel:            "info",
		Storage: StorageConfig{
			Backend: BackendBolt,
		},
	}
}

// LoadConfig loads configuration from path on top of the defaults.
// A missing file is not an error; a malformed or invalid one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the first configuration found: explicit (if non-empty), then
// the project file in root, then the user config file. It also reports which
// file was used, or "" for defaults.
func Resolve(explicit, root string) (*Config, string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		cfg, err := LoadConfig(explicit)
		return cfg, explicit, err
	}

	candidates := []string{}
	if root != "" {
		candidates = append(candidates, filepath.Join(root, FileName))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "codecopy", "config.yaml"))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			cfg, err := LoadConfig(c)
			return cfg, c, err
		}
	}
	return DefaultConfig(), "", nil
}

// Validate checks caps and enumerated values.
func (c *Config) Validate() error {
	if c.MaxClipboardEntries <= 0 {
		return fmt.Errorf("max_clipboard_entries must be positive, got %d", c.MaxClipboardEntries)
	}
	if c.MaxContentSize <= 0 {
		return fmt.Errorf("max_content_size must be positive, got %d", c.MaxContentSize)
	}
	if c.MaxLists <= 0 {
		return fmt.Errorf("max_lists must be positive, got %d", c.MaxLists)
	}
	if c.MaxEntriesPerList <= 0 {
		return fmt.Errorf("max_entries_per_list must be positive, got %d", c.MaxEntriesPerList)
	}
	switch c.OnFull {
	case OnFullRestart, OnFullReject:
	default:
		return fmt.Errorf("on_full must be %q or %q, got %q", OnFullRestart, OnFullReject, c.OnFull)
	}
	switch c.Storage.Backend {
	case BackendBolt, BackendFile:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendBolt, BackendFile, c.Storage.Backend)
	}
	return nil
}

// FilterConfig returns the read-only filter snapshot.
func (c *Config) FilterConfig() filter.Config {
	return filter.Config{
		AllowlistEnabled: c.EnableAllowlists,
		AllowPatterns:    append([]string(nil), c.AllowlistPatterns...),
		BlocklistEnabled: c.EnableBlocklists,
		BlockPatterns:    append([]string(nil), c.BlocklistPatterns...),
	}
}

// StoragePath returns the configured storage location, defaulting to the
// user config directory.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	name := "state.db"
	if c.Storage.Backend == BackendFile {
		name = "state"
	}
	return filepath.Join(dir, "codecopy", name), nil
}
