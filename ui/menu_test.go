package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"apiary/keys"
)

func TestNewMenuDefaultsToOverviewOptions(t *testing.T) {
	m := NewMenu()
	require.Equal(t, keys.OverviewKeys, m.options)
}

func TestSetStateSwitchesOptionSet(t *testing.T) {
	m := NewMenu()
	m.SetState(StateDetail)
	require.Equal(t, keys.DetailKeys, m.options)

	m.SetState(StateOverview)
	require.Equal(t, keys.OverviewKeys, m.options)
}

func TestStringRendersEveryBindingHelp(t *testing.T) {
	m := NewMenu()
	m.SetSize(80, 1)
	out := m.String()
	for _, k := range keys.OverviewKeys {
		binding := keys.GlobalkeyBindings[k]
		require.Contains(t, out, binding.Help().Desc)
	}
}

func TestKeydownAndClear(t *testing.T) {
	m := NewMenu()
	m.Keydown(keys.KeyQuit)
	require.Equal(t, keys.KeyQuit, m.keyDown)
	m.ClearKeydown()
	require.Equal(t, keys.KeyName(-1), m.keyDown)
}
