package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Toggle     key.Binding
	RatingUp   key.Binding
	RatingDown key.Binding
	Status     key.Binding
	Add        key.Binding
	Delete     key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	PrevYear   key.Binding
	NextYear   key.Binding
	History    key.Binding
	View       key.Binding
	Reload     key.Binding
	Quit       key.Binding
	Help       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "toggle day"),
		),
		RatingUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "rating up"),
		),
		RatingDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "rating down"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add subject"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete subject"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "prev year"),
		),
		NextYear: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "next year"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "next view"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
