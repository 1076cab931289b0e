package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"apiary/keys"
	"apiary/pod"
	"apiary/ui"
)

func newTestModel(pods []pod.Pod) *Model {
	m := &Model{
		list: ui.NewList(),
		menu: ui.NewMenu(),
		mode: modeOverview,
	}
	m.list.SetPods(pods)
	return m
}

func TestKeyMatchesQuitOnCtrlC(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	require.True(t, keyMatches(msg, keys.KeyQuit))
}

func TestKeyMatchesRejectsUnboundKey(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}
	require.False(t, keyMatches(msg, keys.KeyQuit))
}

func TestExitDetailIfFocusedDiedRestoresOverview(t *testing.T) {
	m := newTestModel([]pod.Pod{{Name: "alpha", Status: pod.StatusDead}})
	m.mode = modeDetail
	m.menu.SetState(ui.StateDetail)

	m.exitDetailIfFocusedDied()

	require.Equal(t, modeOverview, m.mode)
}

func TestExitDetailIfFocusedDiedKeepsDetailWhenAlive(t *testing.T) {
	m := newTestModel([]pod.Pod{{Name: "alpha", Status: pod.StatusWorking}})
	m.mode = modeDetail

	m.exitDetailIfFocusedDied()

	require.Equal(t, modeDetail, m.mode)
}

func TestViewRendersOverviewByDefault(t *testing.T) {
	m := newTestModel([]pod.Pod{{Name: "alpha", Status: pod.StatusIdle}})
	out := m.View()
	require.Contains(t, out, "alpha")
}
