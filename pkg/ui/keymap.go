package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	NextField   key.Binding
	PrevField   key.Binding
	CycleLeft   key.Binding
	CycleRight  key.Binding
	Submit      key.Binding
	Stop        key.Binding
	Esc         key.Binding
	GetFeedback key.Binding
	Download    key.Binding
	Restart     key.Binding
	Quit        key.Binding
}

var DefaultKeyMap = KeyMap{
	NextField:   key.NewBinding(key.WithKeys("tab", "down")),
	PrevField:   key.NewBinding(key.WithKeys("shift+tab", "up")),
	CycleLeft:   key.NewBinding(key.WithKeys("left")),
	CycleRight:  key.NewBinding(key.WithKeys("right")),
	Submit:      key.NewBinding(key.WithKeys("enter")),
	Stop:        key.NewBinding(key.WithKeys("ctrl+s")),
	Esc:         key.NewBinding(key.WithKeys("esc")),
	GetFeedback: key.NewBinding(key.WithKeys("enter")),
	Download:    key.NewBinding(key.WithKeys("ctrl+d")),
	Restart:     key.NewBinding(key.WithKeys("ctrl+r")),
	Quit:        key.NewBinding(key.WithKeys("ctrl+c")),
}
