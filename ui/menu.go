package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"apiary/keys"
)

var separator = " • "

var menuStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

// MenuState selects which key set the menu bar displays.
type MenuState int

const (
	StateOverview MenuState = iota
	StateDetail
)

// Menu renders the bottom key-help bar, switching its option set between the
// overview tree and an attached member's detail stream.
type Menu struct {
	options       []keys.KeyName
	state         MenuState
	width, height int

	// keyDown highlights the most recently pressed binding; -1 means none.
	keyDown keys.KeyName
}

func NewMenu() *Menu {
	return &Menu{
		options: keys.OverviewKeys,
		state:   StateOverview,
		keyDown: -1,
	}
}

func (m *Menu) SetState(state MenuState) {
	m.state = state
	switch state {
	case StateDetail:
		m.options = keys.DetailKeys
	default:
		m.options = keys.OverviewKeys
	}
}

func (m *Menu) Keydown(name keys.KeyName) {
	m.keyDown = name
}

func (m *Menu) ClearKeydown() {
	m.keyDown = -1
}

func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) String() string {
	var s strings.Builder

	for i, k := range m.options {
		binding := keys.GlobalkeyBindings[k]

		localKeyStyle, localDescStyle := KeyStyle, DescStyle
		if m.keyDown == k {
			localKeyStyle = localKeyStyle.Underline(true)
			localDescStyle = localDescStyle.Underline(true)
		}

		s.WriteString(localKeyStyle.Render(binding.Help().Key))
		s.WriteString(" ")
		s.WriteString(localDescStyle.Render(binding.Help().Desc))

		if i != len(m.options)-1 {
			s.WriteString(SepStyle.Render(separator))
		}
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, menuStyle.Render(s.String()))
}
