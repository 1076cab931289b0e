package discovery

import (
	"testing"
	"time"

	"apiary/pod"

	"github.com/stretchr/testify/require"
)

type fakeMultiplexer struct {
	panes    map[string][]PaneInfo
	captures map[string]string
}

func (f fakeMultiplexer) ListPanes(session string) ([]PaneInfo, error) {
	return f.panes[session], nil
}

func (f fakeMultiplexer) CapturePane(paneID string) (string, error) {
	return f.captures[paneID], nil
}

func TestDiscoverNewMembersSharedSession(t *testing.T) {
	p := pod.Pod{Name: "p", Session: "s", Members: []pod.Member{{PaneID: "%0"}}}
	q := pod.Pod{Name: "q", Session: "s", Members: []pod.Member{{PaneID: "%1"}}}
	roster := []pod.Pod{p, q}

	mux := fakeMultiplexer{
		panes: map[string][]PaneInfo{
			"s": {{PaneID: "%0"}, {PaneID: "%1"}, {PaneID: "%2"}},
		},
		captures: map[string]string{
			"%2": "@worker ready for work\n❯ ",
		},
	}

	candidates, err := DiscoverNewMembers(p, roster, mux)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "%2", candidates[0].PaneID)
	require.Equal(t, "worker", candidates[0].Role)
}

func TestCreateChildPodsSetsGroupAndInheritance(t *testing.T) {
	parent := pod.Pod{Name: "auth", Session: "auth-sess", Project: "myproj"}
	candidates := []Candidate{{PaneID: "%2", Role: "worker"}}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	children := CreateChildPods(&parent, candidates, now)

	require.Equal(t, "auth", parent.Group, "parent group initialized to its own name")
	require.Len(t, children, 1)
	require.Equal(t, "auth/worker", children[0].Name)
	require.Equal(t, "auth", children[0].Group)
	require.Equal(t, "auth-sess", children[0].Session)
	require.Equal(t, "myproj", children[0].Project)
	require.Equal(t, pod.Solo, children[0].Type)
}

func TestRemoveStaleMembers(t *testing.T) {
	p := &pod.Pod{
		Session: "s",
		Members: []pod.Member{{PaneID: "%0"}, {PaneID: "%1"}},
	}
	mux := fakeMultiplexer{panes: map[string][]PaneInfo{"s": {{PaneID: "%0"}}}}

	changed := RemoveStaleMembers(p, mux)
	require.True(t, changed)
	require.Len(t, p.Members, 1)
	require.Equal(t, "%0", p.Members[0].PaneID)
}

func TestRemoveOrphanChildPodsKeepsRoots(t *testing.T) {
	roster := []pod.Pod{
		{Name: "auth", Group: "auth", Members: []pod.Member{{PaneID: "%0"}}},
		{Name: "auth/w", Group: "auth", Members: nil},
		{Name: "auth/r", Group: "auth", Members: []pod.Member{{PaneID: "%1"}}},
	}

	kept := RemoveOrphanChildPods(roster)

	var names []string
	for _, p := range kept {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"auth", "auth/r"}, names)
}

func TestRemoveOrphanChildPodsPreservesGrouplessShells(t *testing.T) {
	roster := []pod.Pod{
		{Name: "scratch", Members: nil},
	}
	kept := RemoveOrphanChildPods(roster)
	require.Len(t, kept, 1)
}
