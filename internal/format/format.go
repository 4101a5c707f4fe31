// Package format renders entries into the text placed on the clipboard.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lian/codecopy/internal/models"
)

// Placeholders substituted in a template.
const (
	PathToken    = "{filepath}"
	ContentToken = "{content}"
)

// DefaultTemplate renders the path line followed by a fenced block.
const DefaultTemplate = PathToken + "\n```\n" + ContentToken + "\n```"

// separator puts exactly one blank line between rendered blocks.
const separator = "\n\n"

// ErrMalformedTemplate is returned for templates missing a placeholder.
var ErrMalformedTemplate = errors.New("malformed template")

// Formatter renders entries with a fixed template.
type Formatter struct {
	template string
}

// New validates template and returns a Formatter. An empty template selects
// DefaultTemplate. Each placeholder must appear at least once.
func New(template string) (*Formatter, error) {
	if template == "" {
		template = DefaultTemplate
	}
	for _, token := range []string{PathToken, ContentToken} {
		if !strings.Contains(template, token) {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, token)
		}
	}
	return &Formatter{template: template}, nil
}

// Default returns a Formatter using DefaultTemplate.
func Default() *Formatter {
	return &Formatter{template: DefaultTemplate}
}

// Template returns the template in use.
func (f *Formatter) Template() string { return f.template }

// FormatEntry renders a single entry. Every placeholder occurrence is replaced
// in one pass, so placeholder text inside the path or content stays literal.
func (f *Formatter) FormatEntry(e models.Entry) string {
	r := strings.NewReplacer(PathToken, e.RelativePath, ContentToken, e.Content)
	return r.Replace(f.template)
}

// Format renders entries in input order separated by a blank line.
func (f *Formatter) Format(entries []models.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(f.FormatEntry(e))
	}
	return b.String()
}
