// Package statusengine drives the per-member state machine: adaptive
// polling of pane output, event-log ingestion, dead-session detection,
// discovery cadence, and permission-edge notification.
package statusengine

import (
	"apiary/discovery"
	"apiary/pod"
	"apiary/tmux"
)

// multiplexer is the full slice of tmux.Adapter the engine needs, expressed
// as an interface so tests can supply a fake without touching tmux.
type multiplexer interface {
	SessionExists(name string) (bool, error)
	ListAllPanes() ([]tmux.Pane, error)
	ListPanes(session string) ([]tmux.Pane, error)
	CapturePane(paneID string) (string, error)
}

// podMuxAdapter narrows a multiplexer down to pod.Multiplexer.
type podMuxAdapter struct{ mux multiplexer }

func (a podMuxAdapter) SessionExists(name string) (bool, error) {
	return a.mux.SessionExists(name)
}

func (a podMuxAdapter) ListAllPanes() ([]pod.PaneRef, error) {
	panes, err := a.mux.ListAllPanes()
	if err != nil {
		return nil, err
	}
	refs := make([]pod.PaneRef, len(panes))
	for i, p := range panes {
		refs[i] = pod.PaneRef{Session: p.SessionName, PaneID: p.PaneID}
	}
	return refs, nil
}

// discoveryMuxAdapter narrows a multiplexer down to discovery.Multiplexer.
type discoveryMuxAdapter struct{ mux multiplexer }

func (a discoveryMuxAdapter) ListPanes(session string) ([]discovery.PaneInfo, error) {
	panes, err := a.mux.ListPanes(session)
	if err != nil {
		return nil, err
	}
	infos := make([]discovery.PaneInfo, len(panes))
	for i, p := range panes {
		infos[i] = discovery.PaneInfo{PaneID: p.PaneID}
	}
	return infos, nil
}

func (a discoveryMuxAdapter) CapturePane(paneID string) (string, error) {
	return a.mux.CapturePane(paneID)
}
