// Package discovery implements Apiary's discovery engine: finding new
// panes within known sessions, attaching them as child Pods, and pruning
// stale members and orphaned children.
package discovery

import (
	"time"

	"apiary/classify"
	"apiary/pod"
)

// PaneInfo is the minimal pane-identity shape discovery needs from the
// multiplexer adapter.
type PaneInfo struct {
	PaneID string
}

// Multiplexer is the slice of the multiplexer adapter discovery needs.
type Multiplexer interface {
	ListPanes(session string) ([]PaneInfo, error)
	CapturePane(paneID string) (string, error)
}

// Candidate is a newly-discovered pane that passed the assistant heuristic
// and is ready to become a child Pod's sole member.
type Candidate struct {
	PaneID string
	Role   string
}

// OwnedPanes returns the set of pane ids already owned by any Pod in
// roster that shares the given session — step 1 of spec §4.5, preventing
// double-attachment of a pane to multiple Pods.
func OwnedPanes(session string, roster []pod.Pod) map[string]bool {
	owned := make(map[string]bool)
	for _, p := range roster {
		if p.Session != session {
			continue
		}
		for _, m := range p.Members {
			owned[m.PaneID] = true
		}
	}
	return owned
}

// DiscoverNewMembers finds panes in target's session not already owned by
// any Pod sharing that session, classifies each as an assistant pane or
// not, and returns one candidate per match with its inferred role.
func DiscoverNewMembers(target pod.Pod, roster []pod.Pod, mux Multiplexer) ([]Candidate, error) {
	owned := OwnedPanes(target.Session, roster)

	panes, err := mux.ListPanes(target.Session)
	if err != nil {
		// Observation failure: no change this pass, per spec §7 rule 1.
		return nil, nil
	}

	var candidates []Candidate
	offset := 0
	for _, pn := range panes {
		if owned[pn.PaneID] {
			continue
		}
		output, err := mux.CapturePane(pn.PaneID)
		if err != nil {
			continue
		}
		if !classify.IsAssistantPane(output) {
			continue
		}
		offset++
		candidates = append(candidates, Candidate{
			PaneID: pn.PaneID,
			Role:   classify.DetectRoleName(output, offset),
		})
	}
	return candidates, nil
}

// CreateChildPods creates one Solo child Pod per candidate, named
// `<parent.name>/<role>`. The parent's group is initialized to its own
// name if unset; children inherit the parent's (now-set) group, session,
// and project.
func CreateChildPods(parent *pod.Pod, candidates []Candidate, now time.Time) []pod.Pod {
	if parent.Group == "" {
		parent.Group = parent.Name
	}

	children := make([]pod.Pod, 0, len(candidates))
	for _, c := range candidates {
		children = append(children, pod.Pod{
			Name:    pod.ChildName(parent.Name, c.Role),
			Type:    pod.Solo,
			Session: parent.Session,
			Project: parent.Project,
			Group:   parent.Group,
			Status:  pod.StatusIdle,
			Members: []pod.Member{
				{
					Role:             c.Role,
					PaneID:           c.PaneID,
					Status:           pod.StatusIdle,
					LastStatusChange: now,
				},
			},
			CreatedAt: now,
		})
	}
	return children
}

// RemoveStaleMembers drops members of p whose pane id is no longer listed
// for p's session, returning whether anything changed.
func RemoveStaleMembers(p *pod.Pod, mux Multiplexer) bool {
	panes, err := mux.ListPanes(p.Session)
	if err != nil {
		return false // observation failure absorbed
	}
	live := make(map[string]bool, len(panes))
	for _, pn := range panes {
		live[pn.PaneID] = true
	}

	survivors := p.Members[:0]
	changed := false
	for _, m := range p.Members {
		if live[m.PaneID] {
			survivors = append(survivors, m)
		} else {
			changed = true
		}
	}
	p.Members = survivors
	return changed
}

// RemoveOrphanChildPods removes any member-less Pod that is not a group
// root and whose group still has at least one other Pod. Member-less
// Pods with no group are preserved (they are user-created shells).
func RemoveOrphanChildPods(roster []pod.Pod) []pod.Pod {
	groupCounts := make(map[string]int)
	for _, p := range roster {
		if p.Group != "" {
			groupCounts[p.Group]++
		}
	}

	kept := make([]pod.Pod, 0, len(roster))
	for _, p := range roster {
		isOrphan := len(p.Members) == 0 &&
			p.Group != "" &&
			!p.IsGroupRoot() &&
			groupCounts[p.Group] > 1
		if isOrphan {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
