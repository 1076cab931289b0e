package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"apiary/detail"
)

// RenderScreen draws a full cell grid, preserving each cell's foreground and
// background color and its bold/underline/inverse attributes.
func RenderScreen(screen [][]detail.Cell) string {
	var b strings.Builder
	for y, row := range screen {
		if y > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row))
	}
	return b.String()
}

func renderRow(row []detail.Cell) string {
	var b strings.Builder
	for _, c := range row {
		if c.Width == 0 {
			continue
		}
		b.WriteString(cellStyle(c).Render(string(c.Rune)))
	}
	return b.String()
}

func cellStyle(c detail.Cell) lipgloss.Style {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(rgbHex(c.Fg))).
		Background(lipgloss.Color(rgbHex(c.Bg))).
		Bold(c.Bold).
		Underline(c.Underline).
		Reverse(c.Inverse)
	return style
}

func rgbHex(c interface {
	RGBA() (r, g, b, a uint32)
}) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
