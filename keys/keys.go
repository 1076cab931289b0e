// Package keys names the TUI's key bindings and their help text, the way
// the menu bar renders them.
package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyName identifies one bound action.
type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter
	KeyDetail
	KeyEsc
	KeyDrop
	KeyTab
	KeyFilter
	KeyHelp
	KeyQuit
)

// GlobalkeyBindings maps each KeyName to its bubbles/key binding,
// including the help text the menu bar renders.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "attach"),
	),
	KeyDetail: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "detail"),
	),
	KeyEsc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	KeyDrop: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "drop"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "cycle"),
	),
	KeyFilter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// OverviewKeys lists the bindings shown in the overview menu.
var OverviewKeys = []KeyName{KeyUp, KeyDown, KeyEnter, KeyDetail, KeyDrop, KeyQuit}

// DetailKeys lists the bindings shown while attached to a member's stream.
var DetailKeys = []KeyName{KeyEsc, KeyQuit}
