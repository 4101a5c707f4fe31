package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings used by the browser, utilizing bubbles/key
// for easy definition and display in help messages.
type keyMap struct {
	Toggle         key.Binding // Toggles selection for the focused item (space, m).
	Confirm        key.Binding // Copies the selection into a new clipboard and quits (y, enter).
	Append         key.Binding // Appends the selection to the session clipboard (a).
	AddToList      key.Binding // Adds the selection to the target list (l).
	Quit           key.Binding // Quits without copying (q, ctrl+c).
	ToggleHidden   key.Binding // Toggles visibility of hidden paths (.).
	StartFilter    key.Binding // Activates filter mode (/).
	ClearFilter    key.Binding // Clears the filter query and leaves filter mode (esc).
	ClearSelected  key.Binding // Clears the selection (c).
	ClearClipboard key.Binding // Empties the session clipboard (x).
	// ctrl+j, ctrl+k and ctrl+m in filter mode are matched on msg.Type.
}

// defaultKeyMap returns the standard key configuration.
func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space/m", "toggle select"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "copy & quit"),
		),
		Append: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "append to clipboard"),
		),
		AddToList: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "add to list"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "ctrl+q"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		ToggleHidden: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "toggle hidden paths"),
		),
		StartFilter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter list"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		ClearSelected: key.NewBinding(
			key.WithKeys("c", "C"),
			key.WithHelp("c/C", "clear selected"),
		),
		ClearClipboard: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear clipboard"),
		),
	}
}

// normalHelp lists the keys shown in the full help view outside filter mode.
func (k keyMap) normalHelp() []key.Binding {
	return []key.Binding{
		k.Toggle, k.ToggleHidden, k.StartFilter, k.Confirm, k.Append,
		k.AddToList, k.ClearSelected, k.ClearClipboard, k.Quit,
	}
}

// filterHelp lists the keys shown while filtering.
func (k keyMap) filterHelp() []key.Binding {
	return []key.Binding{k.ClearFilter, k.Quit}
}
