package statusengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"apiary/config"
	"apiary/events"
	"apiary/pod"
	"apiary/tmux"
)

type fakeMux struct {
	sessions map[string]bool
	panes    map[string][]tmux.Pane
	captures map[string]string
}

func (f *fakeMux) SessionExists(name string) (bool, error) {
	return f.sessions[name], nil
}

func (f *fakeMux) ListAllPanes() ([]tmux.Pane, error) {
	var all []tmux.Pane
	for _, ps := range f.panes {
		all = append(all, ps...)
	}
	return all, nil
}

func (f *fakeMux) ListPanes(session string) ([]tmux.Pane, error) {
	return f.panes[session], nil
}

func (f *fakeMux) CapturePane(paneID string) (string, error) {
	return f.captures[paneID], nil
}

type fakeNotifier struct {
	calls []string
}

func (n *fakeNotifier) Notify(title, body string, sound bool) error {
	n.calls = append(n.calls, title+": "+body)
	return nil
}

func newTestEngine(t *testing.T, mux *fakeMux, cfg config.Config) (*Engine, *fakeNotifier) {
	t.Helper()
	store := pod.NewStore(filepath.Join(t.TempDir(), "pods.json"))
	tailer := events.NewTailer(filepath.Join(t.TempDir(), "events.ndjson"))
	notifier := &fakeNotifier{}
	eng := newEngine(store, mux, tailer, cfg, notifier)
	return eng, notifier
}

func TestDeadSessionDetectionMarksAndRecoversMembers(t *testing.T) {
	mux := &fakeMux{sessions: map[string]bool{}}
	eng, _ := newTestEngine(t, mux, config.Config{Polling: config.DefaultConfig().Polling})
	eng.Pods = []pod.Pod{{
		Name: "p", Session: "s",
		Members: []pod.Member{{PaneID: "%0", Status: pod.StatusWorking}},
	}}

	now := time.Now()
	eng.detectDeadSessions(now)
	require.Equal(t, pod.StatusDead, eng.Pods[0].Members[0].Status)
	require.Equal(t, pod.StatusDead, eng.Pods[0].Status)

	mux.sessions["s"] = true
	eng.detectDeadSessions(now.Add(time.Second))
	require.Equal(t, pod.StatusIdle, eng.Pods[0].Members[0].Status)
}

func TestAdaptivePollingHonorsFocusedAndWorkingIntervals(t *testing.T) {
	mux := &fakeMux{
		sessions: map[string]bool{"s": true},
		captures: map[string]string{"%0": "working away"},
	}
	cfg := config.Config{Polling: config.PollingConfig{FocusedMs: 1000, WorkingMs: 3000, IdleMs: 10000, PermissionMs: 1000, ErrorMs: 5000}}
	eng, _ := newTestEngine(t, mux, cfg)

	t0 := time.Now()
	eng.Pods = []pod.Pod{{
		Name: "other", Session: "s",
		Members: []pod.Member{{PaneID: "%0", Status: pod.StatusWorking}},
	}}
	eng.Focused = "focused-pod"

	eng.Tick(t0)
	first := eng.Pods[0].Members[0].LastPolled
	require.NotNil(t, first)

	// Not focused, working interval is 3s: a re-poll attempt 500ms later
	// must not advance last_polled.
	mux.captures["%0"] = "still working"
	eng.Tick(t0.Add(500 * time.Millisecond))
	require.Equal(t, *first, *eng.Pods[0].Members[0].LastPolled)

	// Becomes the focused Pod.
	eng.Focused = "other"
	eng.Tick(t0.Add(500 * time.Millisecond))
	require.Equal(t, *first, *eng.Pods[0].Members[0].LastPolled, "focused interval not yet elapsed")

	eng.Tick(t0.Add(1500 * time.Millisecond))
	require.True(t, eng.Pods[0].Members[0].LastPolled.After(*first), "focused interval elapsed, repoll expected")
}

func TestIngestEventsAppliesLastStatusAndCreditsWorkingTime(t *testing.T) {
	mux := &fakeMux{sessions: map[string]bool{"auth": true}}
	eng, _ := newTestEngine(t, mux, config.Config{Polling: config.DefaultConfig().Polling})

	t0 := time.Now().Add(-time.Minute)
	eng.Pods = []pod.Pod{{
		Name: "auth", Session: "auth",
		Members: []pod.Member{{PaneID: "%0", Status: pod.StatusWorking, LastStatusChange: t0}},
	}}

	path := filepath.Join(t.TempDir(), "events.ndjson")
	eng.tailer = events.NewTailer(path)
	require.NoError(t, os.WriteFile(path, []byte(
		`{"kind":"tool_start","session":"auth"}`+"\n"+
			`{"kind":"permission","session":"auth"}`+"\n",
	), 0644))

	now := time.Now()
	eng.ingestEvents(now)

	m := eng.Pods[0].Members[0]
	require.Equal(t, pod.StatusPermission, m.Status, "last event with inferred status wins")
	require.Nil(t, m.LastPolled)
	require.Greater(t, m.AccumulatedWorkSec, 0, "credited on the Working->Permission transition")
}

func TestIngestEventsMutatesSubAgentsAdditively(t *testing.T) {
	mux := &fakeMux{sessions: map[string]bool{"auth": true}}
	eng, _ := newTestEngine(t, mux, config.Config{Polling: config.DefaultConfig().Polling})
	eng.Pods = []pod.Pod{{
		Name: "auth", Session: "auth",
		Members: []pod.Member{{PaneID: "%0", Status: pod.StatusIdle}},
	}}

	path := filepath.Join(t.TempDir(), "events.ndjson")
	eng.tailer = events.NewTailer(path)
	require.NoError(t, os.WriteFile(path, []byte(
		`{"kind":"subagent_start","session":"auth","agent_id":"a1","agent_type":"Explore"}`+"\n",
	), 0644))
	eng.ingestEvents(time.Now())
	require.Len(t, eng.Pods[0].Members[0].SubAgents, 1)
	require.Equal(t, "a1", eng.Pods[0].Members[0].SubAgents[0].AgentID)

	require.NoError(t, os.WriteFile(path, []byte(
		`{"kind":"subagent_start","session":"auth","agent_id":"a1","agent_type":"Explore"}`+"\n"+
			`{"kind":"subagent_stop","session":"auth","agent_id":"a1"}`+"\n",
	), 0644))
	eng.ingestEvents(time.Now())
	require.Empty(t, eng.Pods[0].Members[0].SubAgents)
}

func TestNotifyPermissionEdgesFiresOnlyOnNewEntry(t *testing.T) {
	mux := &fakeMux{sessions: map[string]bool{"s": true}}
	eng, notifier := newTestEngine(t, mux, config.Config{
		Polling:      config.DefaultConfig().Polling,
		Notification: config.NotificationConfig{Enabled: true},
	})
	eng.Pods = []pod.Pod{{Name: "p", Status: pod.StatusPermission}}

	eng.notifyPermissionEdges()
	require.Len(t, notifier.calls, 1)

	eng.notifyPermissionEdges()
	require.Len(t, notifier.calls, 1, "already-notified Pod is not notified again")
}
