package clipboard

import (
	"errors"
	"fmt"
	"io"

	sysclip "github.com/atotto/clipboard"

	"github.com/lian/codecopy/internal/format"
	"github.com/lian/codecopy/internal/logger"
)

// ErrUnsupported is returned when no clipboard utility is available
// (on Linux atotto/clipboard needs xclip, xsel or wl-clipboard).
var ErrUnsupported = errors.New("clipboard not supported on this system: install xclip, xsel or wl-clipboard")

// Writer is the clipboard boundary.
type Writer interface {
	WriteText(text string) error
}

// SystemWriter writes to the operating system clipboard.
type SystemWriter struct{}

// WriteText replaces the clipboard contents with text.
func (SystemWriter) WriteText(text string) error {
	if sysclip.Unsupported {
		return ErrUnsupported
	}
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// StreamWriter prints the payload instead, for pipes and headless systems.
type StreamWriter struct {
	W io.Writer
}

// WriteText writes text followed by a newline.
func (s StreamWriter) WriteText(text string) error {
	if _, err := io.WriteString(s.W, text+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Memory keeps the last written text. Useful in tests and dry runs.
type Memory struct {
	Text   string
	Writes int
}

// WriteText records text.
func (m *Memory) WriteText(text string) error {
	m.Text = text
	m.Writes++
	return nil
}

// Publish renders the aggregator's snapshot with f and writes it to w.
// It returns the number of entries written; an empty aggregator writes nothing.
func Publish(a *Aggregator, f *format.Formatter, w Writer, log logger.Logger) (int, error) {
	log = logger.OrDiscard(log)
	entries := a.Snapshot()
	if len(entries) == 0 {
		log.Warnf("Nothing to copy")
		return 0, nil
	}
	text := f.Format(entries)
	if err := w.WriteText(text); err != nil {
		log.Errorf("Clipboard write failed: %v", err)
		return 0, err
	}
	log.Infof("Copied %d file(s) to clipboard (%d bytes)", len(entries), len(text))
	return len(entries), nil
}
