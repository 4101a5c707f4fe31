package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// item represents a single file in the list component. It implements the
// list.Item interface needed by bubbles/list.
type item struct {
	path string // forward-slash path relative to the project root
}

func (i item) Title() string { return i.path }
func (i item) Description() string { return "" }
func (i item) FilterValue() string { return i.path }

// delegate implements list.ItemDelegate to draw each row with its checkbox.
type delegate struct {
	selected map[string]bool // shared with the model
}

func newItemDelegate(selected map[string]bool) delegate {
	return delegate{selected: selected}
}

func (d delegate) Height() int { return 1 }
func (d delegate) Spacing() int { return 0 }
func (d delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render draws a single row, including the selection checkbox.
func (d delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	checkbox := "[ ] "
	if d.selected[i.path] {
		checkbox = checkedStyle.Render("[x] ")
	}
	line := checkbox + i.path

	// The focused row uses the highlighted style.
	if index == m.Index() {
		fmt.Fprint(w, selectedStyle.Render(line))
	} else {
		fmt.Fprint(w, itemStyle.Render(line))
	}
}
