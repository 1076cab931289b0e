package pod

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingFileReturnsEmptyRoster(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "pods.json"))
	pods, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, pods)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "pods.json"))
	now := time.Now().UTC().Truncate(time.Second)
	original := []Pod{
		{
			Name:    "auth",
			Type:    Team,
			Session: "auth",
			Group:   "auth",
			Status:  StatusWorking,
			Members: []Member{
				{Role: "lead", Status: StatusWorking, PaneID: "%0", LastStatusChange: now},
			},
			CreatedAt: now,
		},
	}

	require.NoError(t, s.Save(original))
	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, original[0].Name, loaded[0].Name)
	require.Equal(t, original[0].Group, loaded[0].Group)
	require.Equal(t, original[0].Members[0].PaneID, loaded[0].Members[0].PaneID)
}

func TestStoreLoadCorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pods.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	s := NewStore(path)
	_, err := s.Load()
	require.Error(t, err)
}

func TestPodDataDefaultsOnAbsentFields(t *testing.T) {
	// Simulate an older record missing type/group/project/work-sec.
	d := PodData{Name: "solo", Session: "solo", Status: "Idle"}
	p := FromPodData(d)
	require.Equal(t, Solo, p.Type)
	require.Equal(t, "", p.Group)
	require.Equal(t, "", p.Project)
	require.Equal(t, 0, p.AccumulatedWorkSec)
}

type fakeMultiplexer struct {
	sessions map[string]bool
	panes    []PaneRef
}

func (f fakeMultiplexer) SessionExists(name string) (bool, error) {
	return f.sessions[name], nil
}

func (f fakeMultiplexer) ListAllPanes() ([]PaneRef, error) {
	return f.panes, nil
}

func TestLoadAndReconcileDropsDeadSessionsAndStalePanes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pods.json")
	s := NewStore(path)
	now := time.Now().UTC()

	pods := []Pod{
		{
			Name: "alive", Session: "alive", Status: StatusWorking,
			Members: []Member{
				{Role: "lead", PaneID: "%0", Status: StatusWorking, LastStatusChange: now},
				{Role: "gone", PaneID: "%1", Status: StatusIdle, LastStatusChange: now},
			},
		},
		{Name: "dead", Session: "dead", Status: StatusIdle},
	}
	require.NoError(t, s.Save(pods))

	mux := fakeMultiplexer{
		sessions: map[string]bool{"alive": true, "dead": false},
		panes:    []PaneRef{{Session: "alive", PaneID: "%0"}},
	}

	reconciled, err := s.LoadAndReconcile(mux)
	require.NoError(t, err)
	require.Len(t, reconciled, 1)
	require.Equal(t, "alive", reconciled[0].Name)
	require.Len(t, reconciled[0].Members, 1)
	require.Equal(t, "%0", reconciled[0].Members[0].PaneID)
	require.Equal(t, StatusWorking, reconciled[0].Status)

	// Reconciliation is persisted.
	reloaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
}
