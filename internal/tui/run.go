package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser on the alternate screen and blocks until it quits.
// The returned model carries the session summary.
func Run(opts Options, programOpts ...tea.ProgramOption) (Model, error) {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, programOpts...)...)
	final, err := p.Run()
	if err != nil {
		return m, fmt.Errorf("error running program: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm, nil
	}
	return m, nil
}
