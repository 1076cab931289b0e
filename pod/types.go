// Package pod defines Apiary's domain model: Pods (supervised units),
// their Members (observed panes), and the sub-agents those panes report.
package pod

import (
	"strconv"
	"time"
)

// PodType distinguishes a single-member Pod from a multi-member team.
type PodType string

const (
	Solo PodType = "Solo"
	Team PodType = "Team"
)

// MemberStatus is priority-ordered, highest first: Permission outranks
// Error, which outranks Working, then Idle, then Done, then Dead.
type MemberStatus string

const (
	StatusPermission MemberStatus = "Permission"
	StatusError      MemberStatus = "Error"
	StatusWorking    MemberStatus = "Working"
	StatusIdle       MemberStatus = "Idle"
	StatusDone       MemberStatus = "Done"
	StatusDead       MemberStatus = "Dead"
)

// statusPriority ranks statuses for roll-up; a lower number wins.
var statusPriority = map[MemberStatus]int{
	StatusPermission: 0,
	StatusError:      1,
	StatusWorking:    2,
	StatusIdle:       3,
	StatusDone:       4,
	StatusDead:       5,
}

// PodStatus shares MemberStatus's variants and priority ordering.
type PodStatus = MemberStatus

// SubAgentType classifies a sub-agent's reported purpose.
type SubAgentType string

const (
	AgentExplore SubAgentType = "Explore"
	AgentPlan    SubAgentType = "Plan"
	AgentBash    SubAgentType = "Bash"
	AgentTask    SubAgentType = "Task"
)

// SubAgent is a lightweight record of a task the assistant spawned
// concurrently inside the same pane.
type SubAgent struct {
	AgentID     string
	AgentType   SubAgentType
	Description string
}

// Member is one observed pane within a Pod.
type Member struct {
	Role               string
	Status             MemberStatus
	PaneID             string
	LastStatusChange   time.Time
	LastOutput         string
	LastOutputANSI     string
	Cols               int
	Rows               int
	LastPolled         *time.Time // not persisted
	AccumulatedWorkSec int
	SubAgents          []SubAgent
}

// CreditWorkingTime adds the elapsed time since LastStatusChange to the
// member's accumulated working-time counter. Called when a member
// transitions out of Working, per spec: the counter never decreases.
func (m *Member) CreditWorkingTime(now time.Time) int {
	if m.Status != StatusWorking {
		return 0
	}
	elapsed := int(now.Sub(m.LastStatusChange).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	m.AccumulatedWorkSec += elapsed
	return elapsed
}

// SetStatus transitions the member to status, crediting working-time if
// leaving Working, and stamps the transition timestamp.
func (m *Member) SetStatus(status MemberStatus, now time.Time) int {
	credited := 0
	if m.Status == StatusWorking && status != StatusWorking {
		credited = m.CreditWorkingTime(now)
	}
	m.Status = status
	m.LastStatusChange = now
	return credited
}

// Pod is a supervised unit: one multiplexer session and one or more panes.
type Pod struct {
	Name               string
	Type               PodType
	Session            string
	Project            string // optional, empty if unset
	Group              string // optional, empty if unset
	Status             PodStatus
	Members            []Member
	CreatedAt          time.Time
	AccumulatedWorkSec int
}

// IsGroupRoot reports whether this Pod is the root of its own group, i.e.
// its name equals its group tag.
func (p *Pod) IsGroupRoot() bool {
	return p.Group != "" && p.Group == p.Name
}

// RollUp recomputes the Pod's status as the priority-max of its members'
// statuses; an empty member list yields Idle.
func (p *Pod) RollUp() {
	p.Status = RollupStatus(memberStatuses(p.Members))
}

func memberStatuses(members []Member) []MemberStatus {
	statuses := make([]MemberStatus, len(members))
	for i, m := range members {
		statuses[i] = m.Status
	}
	return statuses
}

// RollupStatus returns the highest-priority status among statuses; an
// empty slice returns Idle.
func RollupStatus(statuses []MemberStatus) MemberStatus {
	if len(statuses) == 0 {
		return StatusIdle
	}
	best := statuses[0]
	for _, s := range statuses[1:] {
		if statusPriority[s] < statusPriority[best] {
			best = s
		}
	}
	return best
}

// ChildName builds the `<parent>/<role>` name of a child Pod.
func ChildName(parentName, role string) string {
	return parentName + "/" + role
}

// FormatWorkingTime renders an accumulated second count the way the
// original tool's UI does: "Xm Ys" under an hour, "Xh Ym" at or above.
func FormatWorkingTime(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return formatUnits(hours, "h", minutes, "m")
	}
	return formatUnits(minutes, "m", seconds, "s")
}

func formatUnits(major int, majorUnit string, minor int, minorUnit string) string {
	return strconv.Itoa(major) + majorUnit + " " + strconv.Itoa(minor) + minorUnit
}
