package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Freeze  key.Binding
	Hold    key.Binding
	Longer  key.Binding
	Shorter key.Binding
	Nudge   key.Binding
	Trim    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Freeze: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "freeze"),
		),
		Hold: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hold"),
		),
		Longer: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "length ×2"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "length ÷2"),
		),
		Nudge: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+128"),
		),
		Trim: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "-128"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Freeze, k.Hold, k.Longer, k.Shorter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Freeze, k.Hold},
		{k.Longer, k.Shorter, k.Nudge, k.Trim},
		{k.Help, k.Quit},
	}
}
