package detail

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"apiary/log"
)

// Multiplexer is the slice of the multiplexer adapter the detail stream
// needs to pipe and resize a pane.
type Multiplexer interface {
	PipePaneStart(paneID, filePath string) error
	PipePaneStop(paneID string) error
	ResizeWindow(target string, cols, rows int) error
}

// RedrawDelay is a settle time for letting a pane redraw after input
// before draining. Empirically chosen; not a contract. Nothing reads it:
// detail mode forwards no input to the pane.
var RedrawDelay = 10 * time.Millisecond

// Stream captures one pane's raw output into a file-backed pipe and feeds
// it to an in-memory terminal emulator.
type Stream struct {
	mux    Multiplexer
	paneID string
	path   string
	file   *os.File
	emu    *Emulator
	usable bool
}

// Start begins piping paneID's raw output to a uniquely-named temp file,
// resizes the hosting window to (cols, rows) to induce a seeding redraw,
// and opens the file for reading.
func Start(mux Multiplexer, paneID string, cols, rows int) (*Stream, error) {
	path := filepath.Join(os.TempDir(), "apiary-detail-"+uuid.NewString()+".pipe")

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f.Close()

	if err := mux.PipePaneStart(paneID, path); err != nil {
		os.Remove(path)
		return nil, err
	}

	if err := mux.ResizeWindow(paneID, cols, rows); err != nil {
		log.WarningLog.Printf("detail stream: resize window for %s: %v", paneID, err)
	}

	rf, err := os.Open(path)
	if err != nil {
		_ = mux.PipePaneStop(paneID)
		os.Remove(path)
		return nil, err
	}

	return &Stream{
		mux:    mux,
		paneID: paneID,
		path:   path,
		file:   rf,
		emu:    NewEmulator(cols, rows),
		usable: true,
	}, nil
}

// Drain reads all currently-available bytes non-blockingly, feeding them
// to the emulator, and returns the number of bytes read. EOF returns zero
// bytes without error.
func (s *Stream) Drain() (int, error) {
	if !s.usable {
		return 0, nil
	}
	buf := make([]byte, 64*1024)
	total := 0
	for {
		n, err := s.file.Read(buf)
		if n > 0 {
			if _, werr := s.emu.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += n
		}
		if err == io.EOF || n == 0 {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Resize updates the emulator size and, if changed, resizes the hosting
// multiplexer window to match.
func (s *Stream) Resize(cols, rows int) error {
	if !s.emu.Resize(cols, rows) {
		return nil
	}
	return s.mux.ResizeWindow(s.paneID, cols, rows)
}

// Screen returns the read-only view of the emulator's visible region.
func (s *Stream) Screen() [][]Cell {
	return s.emu.Screen()
}

// BottomRows returns the last n rows of the screen.
func (s *Stream) BottomRows(n int) [][]Cell {
	return s.emu.BottomRows(n)
}

// Stop stops the pipe and deletes the backing file. The stream is no
// longer usable after Stop returns.
func (s *Stream) Stop() error {
	if !s.usable {
		return nil
	}
	s.usable = false
	_ = s.file.Close()
	err := s.mux.PipePaneStop(s.paneID)
	os.Remove(s.path)
	return err
}
