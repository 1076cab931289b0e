package ui

import (
	"github.com/charmbracelet/lipgloss"

	"apiary/pod"
)

// Status colors, colorblind-safe (color + shape both carry meaning).
var (
	StatusPermissionColor = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#F59E0B"}
	StatusErrorColor      = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#EF4444"}
	StatusWorkingColor    = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
	StatusIdleColor       = lipgloss.AdaptiveColor{Light: "#22C55E", Dark: "#22C55E"}
	StatusDoneColor       = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	StatusDeadColor       = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#4B5563"}
)

// UI chrome colors.
var (
	Primary     = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#7D56F4"}
	Border      = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3C3C3C"}
	BorderFocus = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#7D56F4"}
	TextPrimary = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}
	TextMuted   = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	Background  = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1a1a1a"}
	SelectedBg  = lipgloss.AdaptiveColor{Light: "#dde4f0", Dark: "#3C3C4C"}
)

// StatusIcon returns the single-glyph icon for a status, for colorblind
// accessibility alongside color.
func StatusIcon(status pod.MemberStatus) string {
	switch status {
	case pod.StatusPermission:
		return "!"
	case pod.StatusError:
		return "×"
	case pod.StatusWorking:
		return "○"
	case pod.StatusIdle:
		return "●"
	case pod.StatusDone:
		return "+"
	case pod.StatusDead:
		return "⏸"
	default:
		return "?"
	}
}

// StatusColor returns the color associated with a status.
func StatusColor(status pod.MemberStatus) lipgloss.AdaptiveColor {
	switch status {
	case pod.StatusPermission:
		return StatusPermissionColor
	case pod.StatusError:
		return StatusErrorColor
	case pod.StatusWorking:
		return StatusWorkingColor
	case pod.StatusIdle:
		return StatusIdleColor
	case pod.StatusDone:
		return StatusDoneColor
	case pod.StatusDead:
		return StatusDeadColor
	default:
		return TextMuted
	}
}

// StatusStyle renders a status badge style for the given status.
func StatusStyle(status pod.MemberStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StatusColor(status))
}

var (
	KeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#655F5F", Dark: "#7F7A7A"})
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#7A7474", Dark: "#9C9494"})
	SepStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"})

	SelectedStyle = lipgloss.NewStyle().Background(SelectedBg).Foreground(TextPrimary)
	MutedStyle    = lipgloss.NewStyle().Foreground(TextMuted)

	BorderStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Border)
	BorderFocusStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderFocus)
)
