package pod

import "time"

// SubAgentData is the JSON-serializable mirror of SubAgent.
type SubAgentData struct {
	AgentID     string `json:"agent_id"`
	AgentType   string `json:"agent_type"`
	Description string `json:"description"`
}

// MemberData is the JSON-serializable mirror of Member. LastPolled is
// intentionally absent: it is not persisted.
type MemberData struct {
	Role               string         `json:"role"`
	Status             string         `json:"status"`
	PaneID             string         `json:"pane_id"`
	LastStatusChange   time.Time      `json:"last_status_change"`
	LastOutput         string         `json:"last_output"`
	LastOutputANSI     string         `json:"last_output_ansi"`
	Cols               int            `json:"cols"`
	Rows               int            `json:"rows"`
	AccumulatedWorkSec int            `json:"accumulated_work_sec"`
	SubAgents          []SubAgentData `json:"sub_agents"`
}

// PodData is the JSON-serializable mirror of Pod, the unit of Pod-store
// persistence (spec §6: fields added in later versions must parse to a
// default when absent — Group, Project, AccumulatedWorkSec, and Type all
// decode to their zero value when the key is missing from older records).
type PodData struct {
	Name               string       `json:"name"`
	Type               string       `json:"type,omitempty"`
	Session            string       `json:"session"`
	Project            string       `json:"project,omitempty"`
	Group              string       `json:"group,omitempty"`
	Status             string       `json:"status"`
	Members            []MemberData `json:"members"`
	CreatedAt          time.Time    `json:"created_at"`
	AccumulatedWorkSec int          `json:"accumulated_work_sec,omitempty"`
}

// ToPodData converts a live Pod to its persisted representation.
func ToPodData(p *Pod) PodData {
	members := make([]MemberData, len(p.Members))
	for i, m := range p.Members {
		members[i] = toMemberData(m)
	}
	podType := string(p.Type)
	if podType == "" {
		podType = string(Solo)
	}
	return PodData{
		Name:               p.Name,
		Type:               podType,
		Session:            p.Session,
		Project:            p.Project,
		Group:              p.Group,
		Status:             string(p.Status),
		Members:            members,
		CreatedAt:          p.CreatedAt,
		AccumulatedWorkSec: p.AccumulatedWorkSec,
	}
}

func toMemberData(m Member) MemberData {
	agents := make([]SubAgentData, len(m.SubAgents))
	for i, a := range m.SubAgents {
		agents[i] = SubAgentData{
			AgentID:     a.AgentID,
			AgentType:   string(a.AgentType),
			Description: a.Description,
		}
	}
	return MemberData{
		Role:               m.Role,
		Status:             string(m.Status),
		PaneID:             m.PaneID,
		LastStatusChange:   m.LastStatusChange,
		LastOutput:         m.LastOutput,
		LastOutputANSI:     m.LastOutputANSI,
		Cols:               m.Cols,
		Rows:               m.Rows,
		AccumulatedWorkSec: m.AccumulatedWorkSec,
		SubAgents:          agents,
	}
}

// FromPodData converts a persisted PodData back to a live Pod, defaulting
// absent fields per spec §6.
func FromPodData(d PodData) Pod {
	podType := PodType(d.Type)
	if podType == "" {
		podType = Solo
	}
	status := MemberStatus(d.Status)
	if status == "" {
		status = StatusIdle
	}
	members := make([]Member, len(d.Members))
	for i, md := range d.Members {
		members[i] = fromMemberData(md)
	}
	return Pod{
		Name:               d.Name,
		Type:               podType,
		Session:            d.Session,
		Project:            d.Project,
		Group:              d.Group,
		Status:             status,
		Members:            members,
		CreatedAt:          d.CreatedAt,
		AccumulatedWorkSec: d.AccumulatedWorkSec,
	}
}

func fromMemberData(d MemberData) Member {
	status := MemberStatus(d.Status)
	if status == "" {
		status = StatusIdle
	}
	agents := make([]SubAgent, len(d.SubAgents))
	for i, ad := range d.SubAgents {
		agentType := SubAgentType(ad.AgentType)
		if agentType == "" {
			agentType = AgentTask
		}
		agents[i] = SubAgent{
			AgentID:     ad.AgentID,
			AgentType:   agentType,
			Description: ad.Description,
		}
	}
	return Member{
		Role:               d.Role,
		Status:             status,
		PaneID:             d.PaneID,
		LastStatusChange:   d.LastStatusChange,
		LastOutput:         d.LastOutput,
		LastOutputANSI:     d.LastOutputANSI,
		Cols:               d.Cols,
		Rows:               d.Rows,
		AccumulatedWorkSec: d.AccumulatedWorkSec,
		SubAgents:          agents,
	}
}
