package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Grading
	GradeUp   key.Binding
	GradeDown key.Binding
	FontUp    key.Binding
	FontDown  key.Binding
	Clear     key.Binding
	Notes     key.Binding

	// Notes editing
	Commit key.Binding
	Cancel key.Binding

	// Actions
	Save  key.Binding
	Copy  key.Binding
	Retry key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		GradeUp: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "harder V"),
		),
		GradeDown: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "easier V"),
		),
		FontUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "harder Font"),
		),
		FontDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "easier Font"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear grades"),
		),
		Notes: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "setter notes"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save notes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "export file"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy JSON"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.GradeUp, k.GradeDown, k.Save, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped into columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.GradeUp, k.GradeDown, k.FontUp, k.FontDown, k.Clear},
		{k.Notes, k.Commit, k.Cancel},
		{k.Save, k.Copy, k.Retry, k.Help, k.Quit},
	}
}
