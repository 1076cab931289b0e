// Package detail renders one Pod member's live pane as a structured cell
// grid, by piping raw pane output (including escape sequences) through an
// in-memory VT100 emulator.
package detail

import (
	"image/color"
	"regexp"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/tonistiigi/vt100"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// oscSequenceRegex strips OSC 8 hyperlink sequences the vt100 emulator
// doesn't understand, so they don't leak into the cell stream as text.
var oscSequenceRegex = regexp.MustCompile(`\x1b\]8;[^;]*;[^\x1b\x07]*(?:\x1b\\|\x07)`)

// Cell is one rendered terminal cell: a rune plus the display attributes
// the TUI needs to style it.
type Cell struct {
	Rune      rune
	Fg        color.RGBA
	Bg        color.RGBA
	Bold      bool
	Underline bool
	Inverse   bool
	Width     int // 1 for narrow, 2 for wide
}

// Emulator wraps a VT100 terminal emulator, exposing its screen as a cell
// grid rather than re-encoded ANSI text.
type Emulator struct {
	mu     sync.RWMutex
	vt     *vt100.VT100
	width  int
	height int
}

// NewEmulator constructs an emulator of the given dimensions.
func NewEmulator(cols, rows int) *Emulator {
	if cols <= 0 {
		cols = defaultWidth
	}
	if rows <= 0 {
		rows = defaultHeight
	}
	return &Emulator{vt: vt100.NewVT100(rows, cols), width: cols, height: rows}
}

// Write feeds raw pane bytes (including escape sequences) to the emulator.
func (e *Emulator) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cleaned := oscSequenceRegex.ReplaceAll(p, nil)
	if _, err := e.vt.Write(cleaned); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Resize changes the emulator's dimensions; a no-op if unchanged.
func (e *Emulator) Resize(cols, rows int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cols == e.width && rows == e.height {
		return false
	}
	e.vt.Resize(rows, cols)
	e.width = cols
	e.height = rows
	return true
}

// Size returns the emulator's current (cols, rows).
func (e *Emulator) Size() (cols, rows int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.width, e.height
}

// Screen returns a read-only snapshot of the emulator's full visible
// region as a [row][col]Cell grid.
func (e *Emulator) Screen() [][]Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grid := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		row := make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			ch := e.vt.Content[y][x]
			f := e.vt.Format[y][x]
			if ch == 0 {
				ch = ' '
			}
			row[x] = Cell{
				Rune:      ch,
				Fg:        f.Fg,
				Bg:        f.Bg,
				Bold:      f.Intensity == vt100.Bright,
				Underline: f.Underscore,
				Inverse:   f.Inverse,
				Width:     runewidth.RuneWidth(ch),
			}
		}
		grid[y] = row
	}
	return grid
}

// BottomRows returns the last n rows of the screen (the portion the TUI
// renders as the detail view), or the whole screen if it has fewer rows.
func (e *Emulator) BottomRows(n int) [][]Cell {
	full := e.Screen()
	if n <= 0 || n >= len(full) {
		return full
	}
	return full[len(full)-n:]
}
