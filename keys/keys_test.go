package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestEveryOverviewKeyIsBound(t *testing.T) {
	for _, k := range OverviewKeys {
		binding, ok := GlobalkeyBindings[k]
		require.True(t, ok, "missing binding")
		require.NotEmpty(t, binding.Keys())
	}
}

func TestQuitBindingMatchesCtrlC(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	require.True(t, key.Matches(msg, GlobalkeyBindings[KeyQuit]))
}
