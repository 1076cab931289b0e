package ui

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"apiary/detail"
)

func TestRenderScreenPreservesRuneText(t *testing.T) {
	screen := [][]detail.Cell{
		{
			{Rune: 'h', Width: 1, Fg: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
			{Rune: 'i', Width: 1, Fg: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		},
	}
	out := RenderScreen(screen)
	require.Contains(t, out, "h")
	require.Contains(t, out, "i")
}

func TestRenderScreenSkipsZeroWidthContinuationCells(t *testing.T) {
	screen := [][]detail.Cell{
		{
			{Rune: '⭐', Width: 2},
			{Rune: 0, Width: 0},
		},
	}
	// must not panic on a zero-width trailer cell
	require.NotPanics(t, func() { RenderScreen(screen) })
}

func TestRgbHexFormatsColor(t *testing.T) {
	require.Equal(t, "#ff0000", rgbHex(color.RGBA{R: 255, G: 0, B: 0, A: 255}))
}
