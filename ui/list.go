package ui

import (
	"fmt"
	"strings"

	"apiary/pod"
)

// rowKind distinguishes a Pod header row from one of its member rows.
type rowKind int

const (
	rowPod rowKind = iota
	rowMember
)

type row struct {
	kind        rowKind
	podIndex    int
	memberIndex int
}

// List renders the Pod/member tree: one header row per Pod, with its
// members indented underneath, and tracks which row is selected.
type List struct {
	pods          []pod.Pod
	rows          []row
	selected      int
	width, height int
}

func NewList() *List {
	return &List{}
}

// SetPods replaces the displayed roster, clamping the selection into range.
func (l *List) SetPods(pods []pod.Pod) {
	l.pods = pods
	l.rows = l.rows[:0]
	for pi, p := range pods {
		l.rows = append(l.rows, row{kind: rowPod, podIndex: pi})
		for mi := range p.Members {
			l.rows = append(l.rows, row{kind: rowMember, podIndex: pi, memberIndex: mi})
		}
	}
	if l.selected >= len(l.rows) {
		l.selected = len(l.rows) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// CursorUp moves the selection to the previous row.
func (l *List) CursorUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// CursorDown moves the selection to the next row.
func (l *List) CursorDown() {
	if l.selected < len(l.rows)-1 {
		l.selected++
	}
}

// SelectedPod returns the Pod owning the currently selected row, or nil if
// the roster is empty.
func (l *List) SelectedPod() *pod.Pod {
	if len(l.rows) == 0 {
		return nil
	}
	r := l.rows[l.selected]
	return &l.pods[r.podIndex]
}

// SelectedMember returns the currently selected member, or nil when a Pod
// header row (not a member row) is selected.
func (l *List) SelectedMember() *pod.Member {
	if len(l.rows) == 0 {
		return nil
	}
	r := l.rows[l.selected]
	if r.kind != rowMember {
		return nil
	}
	return &l.pods[r.podIndex].Members[r.memberIndex]
}

// Render draws the tree, highlighting the selected row.
func (l *List) Render() string {
	if len(l.pods) == 0 {
		return MutedStyle.Render("no pods — create one with `apiary create <name>`")
	}

	var b strings.Builder
	for i, r := range l.rows {
		selected := i == l.selected
		switch r.kind {
		case rowPod:
			b.WriteString(l.renderPodRow(l.pods[r.podIndex], selected))
		case rowMember:
			p := l.pods[r.podIndex]
			b.WriteString(l.renderMemberRow(p.Members[r.memberIndex], selected))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (l *List) renderPodRow(p pod.Pod, selected bool) string {
	icon := StatusStyle(p.Status).Render(StatusIcon(p.Status))
	name := p.Name
	elapsed := pod.FormatWorkingTime(p.AccumulatedWorkSec)
	line := fmt.Sprintf("%s %s  (%d members, %s)", icon, name, len(p.Members), elapsed)
	if selected {
		return SelectedStyle.Render(line)
	}
	return line
}

func (l *List) renderMemberRow(m pod.Member, selected bool) string {
	icon := StatusStyle(m.Status).Render(StatusIcon(m.Status))
	role := m.Role
	if role == "" {
		role = "member"
	}
	line := fmt.Sprintf("    %s %s — %s", icon, role, m.Status)
	if selected {
		return SelectedStyle.Render(line)
	}
	return MutedStyle.Render(line)
}
