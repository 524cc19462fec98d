package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Color    key.Binding
	Paint    key.Binding
	Clear    key.Binding
	ShopPrev key.Binding
	ShopNext key.Binding
	Buy      key.Binding
	Pause    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev socket")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next socket")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev ring")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next ring")),
		Color:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "pick color")),
		Paint:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "paint")),
		Clear:    key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "clear")),
		ShopPrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev offer")),
		ShopNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next offer")),
		Buy:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Color, k.Paint, k.Buy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Color, k.Paint, k.Clear},
		{k.ShopPrev, k.ShopNext, k.Buy},
		{k.Pause, k.Help, k.Quit},
	}
}
