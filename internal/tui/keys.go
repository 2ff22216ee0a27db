package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the board TUI.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Switch  key.Binding // Focus the other list.
	Delete  key.Binding
	Move    key.Binding // Send the task to the other list.
	Dismiss key.Binding // Hide the banners of the focused list.
	Refresh key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "switch list"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Move: key.NewBinding(
		key.WithKeys("m", "enter"),
		key.WithHelp("m", "move"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x", "esc"),
		key.WithHelp("x", "dismiss"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Move, k.Delete, k.Dismiss, k.Refresh, k.Quit}
}
