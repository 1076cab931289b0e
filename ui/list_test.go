package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"apiary/pod"
)

func samplePods() []pod.Pod {
	return []pod.Pod{
		{
			Name:   "alpha",
			Status: pod.StatusWorking,
			Members: []pod.Member{
				{Role: "main", Status: pod.StatusWorking},
			},
		},
		{
			Name:   "beta",
			Status: pod.StatusIdle,
			Members: []pod.Member{
				{Role: "main", Status: pod.StatusIdle},
				{Role: "reviewer", Status: pod.StatusPermission},
			},
		},
	}
}

func TestSetPodsFlattensPodAndMemberRows(t *testing.T) {
	l := NewList()
	l.SetPods(samplePods())
	require.Len(t, l.rows, 5) // 2 pod headers + 1 + 2 members
}

func TestCursorNavigationClampsAtEnds(t *testing.T) {
	l := NewList()
	l.SetPods(samplePods())

	l.CursorUp()
	require.Equal(t, 0, l.selected)

	for i := 0; i < 10; i++ {
		l.CursorDown()
	}
	require.Equal(t, len(l.rows)-1, l.selected)
}

func TestSelectedPodAndMemberTrackCursor(t *testing.T) {
	l := NewList()
	l.SetPods(samplePods())

	require.Equal(t, "alpha", l.SelectedPod().Name)
	require.Nil(t, l.SelectedMember())

	l.CursorDown()
	require.Equal(t, "alpha", l.SelectedPod().Name)
	require.NotNil(t, l.SelectedMember())
	require.Equal(t, "main", l.SelectedMember().Role)
}

func TestSetPodsClampsSelectionWhenRosterShrinks(t *testing.T) {
	l := NewList()
	l.SetPods(samplePods())
	for i := 0; i < 4; i++ {
		l.CursorDown()
	}
	l.SetPods(samplePods()[:1])
	require.Equal(t, len(l.rows)-1, l.selected)
}

func TestRenderEmptyRosterShowsHint(t *testing.T) {
	l := NewList()
	require.Contains(t, l.Render(), "no pods")
}

func TestRenderIncludesPodAndMemberNames(t *testing.T) {
	l := NewList()
	l.SetPods(samplePods())
	out := l.Render()
	require.Contains(t, out, "alpha")
	require.Contains(t, out, "beta")
	require.Contains(t, out, "reviewer")
}
