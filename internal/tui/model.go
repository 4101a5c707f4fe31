// Package tui is the interactive file browser. It lists the filtered files of a
// directory, lets the user pick some and copies them through the session
// clipboard or into a saved list.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lian/codecopy/internal/app"
	"github.com/lian/codecopy/internal/view"
)

var (
	// Styles are declared once and reused by View and the delegate.
	docStyle          = lipgloss.NewStyle().Margin(1, 2)
	titleStyle        = lipgloss.NewStyle().MarginLeft(0).Bold(true).Foreground(lipgloss.Color("62"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(0)
	selectedStyle     = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("75")).Bold(true)
	checkedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	filterPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	sessionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
)

// statusDuration is how long a temporary status message stays visible.
const statusDuration = 2 * time.Second

// Options configure a browser session.
type Options struct {
	App    *app.App
	Dir    string // directory to list, absolute or relative to the project root
	ListID string // target of the add-to-list key; empty disables it
}

// Model holds the browser state for the lifetime of the program.
type Model struct {
	app           *app.App
	list          list.Model      // the bubbles list managing the file rows
	selected      map[string]bool // selection state keyed by relative path
	keys          keyMap
	err           error // fatal error shown instead of the list
	quitting      bool
	busy          bool // a copy or list update is running
	showHidden    bool
	allFiles      []string // every listed path in walk order
	statusMessage string
	isFiltering   bool
	filterQuery   string

	listID      string
	listStatus  string
	listChanged chan struct{}
	unsubscribe func()

	summary string // printed by the caller after the program exits
}

// Messages produced by commands.
type (
	clearStatusMsg struct{}
	listChangedMsg struct{}
	copyDoneMsg    struct {
		res  app.Result
		err  error
		quit bool
	}
	listDoneMsg struct {
		res app.Result
		err error
	}
)

// clearStatusCmd waits d and then asks Update to clear the status line.
func clearStatusCmd(d time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(d)
		return clearStatusMsg{}
	}
}

// waitForListChange blocks until the list store reports a change.
func waitForListChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return listChangedMsg{}
	}
}

// New scans opts.Dir and builds the initial model. A failed scan is kept in
// the model and shown instead of the list.
func New(opts Options) Model {
	m := Model{
		app:      opts.App,
		selected: make(map[string]bool),
		keys:     defaultKeyMap(),
		listID:   opts.ListID,
	}

	paths, err := m.app.Walker.Paths(opts.Dir)
	if err != nil {
		m.err = fmt.Errorf("failed initial load: %w", err)
	}
	m.allFiles = paths

	l := list.New([]list.Item{}, newItemDelegate(m.selected), 0, 0)
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	// Filtering is done here with fuzzysearch, not by the list.
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.AdditionalFullHelpKeys = m.keys.normalHelp
	m.list = l
	m.refreshListItems()

	if m.listID != "" && m.app.Lists != nil {
		ch := make(chan struct{}, 1)
		m.listChanged = ch
		m.unsubscribe = m.app.Lists.Subscribe(func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		})
		m.refreshListStatus()
	}
	return m
}

// Close releases the list store subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Summary is the result line of the last finished operation.
func (m Model) Summary() string { return m.summary }

// Err is the error that stopped the session, if any.
func (m Model) Err() error { return m.err }

// isHiddenPath reports whether any component of a forward-slash path starts
// with a dot.
func isHiddenPath(relativePath string) bool {
	for _, part := range strings.Split(relativePath, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// refreshListItems rebuilds the visible rows from allFiles. Hidden paths are
// shown when showHidden is on or when they are selected. The cursor stays on
// the same path when it is still visible.
func (m *Model) refreshListItems() {
	var visibleItems []list.Item
	for _, p := range m.allFiles {
		if !isHiddenPath(p) || m.showHidden || m.selected[p] {
			visibleItems = append(visibleItems, item{path: p})
		}
	}

	var current string
	if it, ok := m.list.SelectedItem().(item); ok {
		current = it.path
	}

	m.list.SetItems(visibleItems)

	if current != "" {
		for i, li := range visibleItems {
			if li.(item).path == current {
				m.list.Select(i)
				break
			}
		}
	}
	m.list.Title = "Select files:"
}

// applyFilter ranks allFiles against filterQuery and shows the matches, best
// first. An empty query restores the normal view.
func (m *Model) applyFilter() {
	if m.filterQuery == "" {
		m.refreshListItems()
		m.list.Title = "Filter results for '':"
		return
	}

	ranks := fuzzy.RankFindFold(m.filterQuery, m.allFiles)
	sort.Sort(ranks)

	var filteredItems []list.Item
	for _, r := range ranks {
		filteredItems = append(filteredItems, item{path: r.Target})
	}
	m.list.SetItems(filteredItems)
	m.list.Title = fmt.Sprintf("Filter results for '%s':", m.filterQuery)
}

// selectedPaths returns the selection in walk order.
func (m Model) selectedPaths() []string {
	var out []string
	for _, p := range m.allFiles {
		if m.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

// refreshListStatus re-reads the target list for the status line.
func (m *Model) refreshListStatus() {
	l, ok := m.app.Lists.Get(m.listID)
	if !ok {
		m.listStatus = "target list no longer exists"
		return
	}
	m.listStatus = fmt.Sprintf("list %q: %s", l.Name, view.EntryCount(len(l.Entries)))
}

// setStatus shows msg for statusDuration.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMessage = msg
	return clearStatusCmd(statusDuration)
}

// resources maps relative paths to paths the walker resolves against the
// project root.
func resources(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.FromSlash(p)
	}
	return out
}

// copyCmd runs CopyNew (or CopyAppend) off the UI goroutine.
func (m Model) copyCmd(paths []string, appendMode, quit bool) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		var (
			res app.Result
			err error
		)
		if appendMode {
			res, err = a.CopyAppend(resources(paths)...)
		} else {
			res, err = a.CopyNew(resources(paths)...)
		}
		return copyDoneMsg{res: res, err: err, quit: quit}
	}
}

// addToListCmd adds paths to the target list off the UI goroutine.
func (m Model) addToListCmd(paths []string) tea.Cmd {
	a, id := m.app, m.listID
	return func() tea.Msg {
		res, err := a.AddToList(id, resources(paths)...)
		return listDoneMsg{res: res, err: err}
	}
}

// Init starts listening for list store changes when a target list is set.
func (m Model) Init() tea.Cmd {
	if m.listChanged != nil {
		return waitForListChange(m.listChanged)
	}
	return nil
}

// Update handles key presses, command results and resize events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// While an error is displayed only quitting is possible.
	if m.err != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil

	case listChangedMsg:
		m.refreshListStatus()
		return m, waitForListChange(m.listChanged)

	case copyDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.summary = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.summary = fmt.Sprintf("Copied %d of %d file(s) to clipboard.", msg.res.Copied, msg.res.Expanded)
		}
		if msg.quit {
			if msg.err != nil {
				m.err = fmt.Errorf("copy failed: %w", msg.err)
			}
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.setStatus(m.summary)

	case listDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("Add to list failed: %v", msg.err))
		}
		return m, m.setStatus(fmt.Sprintf("Added %d of %d file(s) to list.", msg.res.Accepted, msg.res.Expanded))

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.quitting || m.busy {
			return m, nil
		}
		if m.isFiltering {
			if model, cmd, handled := m.updateFiltering(msg); handled {
				return model, cmd
			}
		} else if model, cmd, handled := m.updateNormal(msg); handled {
			return model, cmd
		}
	}

	// Anything not handled above (navigation keys, paging) goes to the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateFiltering handles keys while the fuzzy filter is active.
func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isFiltering = false
		m.filterQuery = ""
		m.refreshListItems()
		m.list.AdditionalFullHelpKeys = m.keys.normalHelp
		return m, nil, true

	case tea.KeyBackspace:
		if len(m.filterQuery) > 0 {
			runes := []rune(m.filterQuery)
			m.filterQuery = string(runes[:len(runes)-1])
			m.applyFilter()
		}
		return m, nil, true

	case tea.KeyCtrlJ:
		m.list.CursorDown()
		return m, nil, true

	case tea.KeyCtrlK:
		m.list.CursorUp()
		return m, nil, true

	// ctrl+m and enter are the same key: both toggle the focused row.
	case tea.KeyCtrlM:
		if it, ok := m.list.SelectedItem().(item); ok {
			m.selected[it.path] = !m.selected[it.path]
		}
		return m, nil, true

	case tea.KeyRunes, tea.KeySpace:
		m.filterQuery += string(msg.Runes)
		m.applyFilter()
		return m, nil, true
	}

	return m, nil, false
}

// updateNormal handles keys outside filter mode.
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.StartFilter):
		m.isFiltering = true
		m.filterQuery = ""
		m.list.AdditionalFullHelpKeys = m.keys.filterHelp
		m.list.Select(0)
		m.applyFilter()
		return m, nil, true

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.list.SelectedItem().(item); ok {
			wasSelected := m.selected[it.path]
			m.selected[it.path] = !wasSelected
			// A deselected hidden path disappears unless hidden paths are shown.
			if wasSelected && isHiddenPath(it.path) && !m.showHidden {
				m.refreshListItems()
			}
		}
		return m, nil, true

	case key.Matches(msg, m.keys.ToggleHidden):
		m.showHidden = !m.showHidden
		m.refreshListItems()
		if m.showHidden {
			return m, m.setStatus("Showing hidden paths"), true
		}
		return m, m.setStatus("Hiding hidden paths (except selected)"), true

	case key.Matches(msg, m.keys.ClearSelected):
		clear(m.selected)
		m.refreshListItems()
		return m, m.setStatus("Selection cleared"), true

	case key.Matches(msg, m.keys.ClearClipboard):
		m.app.ClearClipboard()
		return m, m.setStatus("Clipboard cleared"), true

	case key.Matches(msg, m.keys.Confirm):
		return m.confirm()

	case key.Matches(msg, m.keys.Append):
		paths := m.selectedPaths()
		if len(paths) == 0 {
			return m, m.setStatus("Nothing selected"), true
		}
		m.busy = true
		m.statusMessage = "Processing files..."
		return m, m.copyCmd(paths, true, false), true

	case key.Matches(msg, m.keys.AddToList):
		if m.listID == "" || m.app.Lists == nil {
			return m, m.setStatus("No target list: start browse with --list"), true
		}
		paths := m.selectedPaths()
		if len(paths) == 0 {
			return m, m.setStatus("Nothing selected"), true
		}
		m.busy = true
		m.statusMessage = "Adding to list..."
		return m, m.addToListCmd(paths), true
	}
	return m, nil, false
}

// confirm copies the selection into a new clipboard and quits. Without a
// selection it quits right away.
func (m Model) confirm() (tea.Model, tea.Cmd, bool) {
	paths := m.selectedPaths()
	if len(paths) == 0 {
		m.quitting = true
		m.summary = "Nothing selected."
		return m, tea.Quit, true
	}
	m.busy = true
	m.statusMessage = "Processing files..."
	return m, m.copyCmd(paths, false, true), true
}

// View renders the list, the status line and the session summary.
func (m Model) View() string {
	if m.err != nil {
		errStr := errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		helpStr := helpStyle.Render("\n\nPress q to exit.")
		return docStyle.Render(errStr + helpStr)
	}
	if m.quitting {
		return docStyle.Render("Exiting...")
	}

	infoLine := ""
	switch {
	case m.isFiltering:
		infoLine = filterPromptStyle.Render("Filter: ") + m.filterQuery + helpStyle.Render("_")
	case m.statusMessage != "":
		infoLine = helpStyle.Render(m.statusMessage)
	default:
		infoLine = helpStyle.Render("Press ? for help, / to filter")
	}

	session := fmt.Sprintf("clipboard: %s", view.EntryCount(m.app.Clipboard.Len()))
	if m.listStatus != "" {
		session += " | " + m.listStatus
	}

	return docStyle.Render(m.list.View() + "\n" + infoLine + "\n" + sessionStyle.Render(session))
}
