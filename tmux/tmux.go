// Package tmux adapts Apiary's multiplexer contract onto a real tmux
// server, invoked as an external process exactly the way the teacher's
// Zellij adapter drives the zellij binary.
package tmux

import (
	"apiary/cmd"
	"apiary/log"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Pane identifies a tmux pane by its pane id (e.g. "%12"), which is stable
// across window/session renames, unlike index-based addressing.
type Pane struct {
	SessionName string
	WindowIndex int
	PaneID      string
	PaneIndex   int
	Active      bool
	CurrentCmd  string
}

var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Adapter is the tmux-backed implementation of the multiplexer contract
// described in spec.md §4.1. All process invocations go through cmdExec,
// the same seam the teacher's Zellij adapter uses for testability.
type Adapter struct {
	cmdExec cmd.Executor
}

// NewAdapter returns the production Adapter.
func NewAdapter() *Adapter {
	return &Adapter{cmdExec: cmd.MakeExecutor()}
}

// NewAdapterWithDeps returns an Adapter using the given Executor, for tests.
func NewAdapterWithDeps(cmdExec cmd.Executor) *Adapter {
	return &Adapter{cmdExec: cmdExec}
}

// isNoServerErr reports whether err/stderr indicates tmux has no running
// server at all, which this adapter folds into an empty result rather than
// a failure, per spec.md §4.1/§7 rule 1.
func isNoServerErr(output []byte, err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(string(output))
	return strings.Contains(msg, "no server running on") ||
		strings.Contains(msg, "error connecting to")
}

// ListSessions returns the names of all tmux sessions, or an empty slice
// if no tmux server is running.
func (a *Adapter) ListSessions() ([]string, error) {
	c := exec.Command("tmux", "list-sessions", "-F", "#{session_name}")
	out, err := a.cmdExec.CombinedOutput(c)
	if err != nil {
		if isNoServerErr(out, err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// SessionExists reports whether a session with this exact name exists.
// This never relies on tmux's own `-t` prefix matching, which would
// happily attach to the wrong session when names share a prefix.
func (a *Adapter) SessionExists(name string) (bool, error) {
	names, err := a.ListSessions()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ListPanes lists every pane in the given session.
func (a *Adapter) ListPanes(session string) ([]Pane, error) {
	c := exec.Command("tmux", "list-panes", "-t", session, "-F",
		"#{session_name}\t#{window_index}\t#{pane_id}\t#{pane_index}\t#{pane_active}\t#{pane_current_command}")
	out, err := a.cmdExec.CombinedOutput(c)
	if err != nil {
		if isNoServerErr(out, err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}
	return parsePanes(string(out)), nil
}

// ListAllPanes lists every pane across every session, used by Pod store
// reconciliation to test every member's pane liveness in one query.
func (a *Adapter) ListAllPanes() ([]Pane, error) {
	c := exec.Command("tmux", "list-panes", "-a", "-F",
		"#{session_name}\t#{window_index}\t#{pane_id}\t#{pane_index}\t#{pane_active}\t#{pane_current_command}")
	out, err := a.cmdExec.CombinedOutput(c)
	if err != nil {
		if isNoServerErr(out, err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-panes -a: %w", err)
	}
	return parsePanes(string(out)), nil
}

func parsePanes(out string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 6 {
			continue
		}
		windowIdx, _ := strconv.Atoi(fields[1])
		paneIdx, _ := strconv.Atoi(fields[3])
		panes = append(panes, Pane{
			SessionName: fields[0],
			WindowIndex: windowIdx,
			PaneID:      fields[2],
			PaneIndex:   paneIdx,
			Active:      fields[4] == "1",
			CurrentCmd:  fields[5],
		})
	}
	return panes
}

// CapturePane returns the plain-text contents of a pane.
func (a *Adapter) CapturePane(paneID string) (string, error) {
	c := exec.Command("tmux", "capture-pane", "-p", "-t", paneID)
	out, err := a.cmdExec.Output(c)
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane %s: %w", paneID, err)
	}
	return string(out), nil
}

// CapturePaneANSI returns the pane contents with ANSI SGR escapes intact,
// used by the detail view to seed a terminal emulator on first draw.
func (a *Adapter) CapturePaneANSI(paneID string) (string, error) {
	c := exec.Command("tmux", "capture-pane", "-e", "-p", "-t", paneID)
	out, err := a.cmdExec.Output(c)
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane -e %s: %w", paneID, err)
	}
	return string(out), nil
}

// SendKeys sends text as if typed, letting tmux interpret any key names
// (e.g. "Enter", "C-c") it recognizes.
func (a *Adapter) SendKeys(paneID, keys string) error {
	c := exec.Command("tmux", "send-keys", "-t", paneID, keys)
	return a.cmdExec.Run(c)
}

// SendKeysRaw sends keys without expanding key names, -H taking hex byte
// literals — used to forward raw input bytes to an attached Pod.
func (a *Adapter) SendKeysRaw(paneID string, data []byte) error {
	args := []string{"send-keys", "-t", paneID, "-H"}
	for _, b := range data {
		args = append(args, fmt.Sprintf("%02x", b))
	}
	c := exec.Command("tmux", args...)
	return a.cmdExec.Run(c)
}

// SendKeysLiteral sends text verbatim (-l), disabling tmux's key-name
// lookup so that literal strings like "C-c" are typed rather than
// interpreted as a control sequence.
func (a *Adapter) SendKeysLiteral(paneID, text string) error {
	c := exec.Command("tmux", "send-keys", "-l", "-t", paneID, text)
	return a.cmdExec.Run(c)
}

// NewSession creates a detached session running shellCmd in workDir.
func (a *Adapter) NewSession(name, workDir, shellCmd string) error {
	c := exec.Command("tmux", "new-session", "-d", "-s", name, "-c", workDir, shellCmd)
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux new-session %s: %w", name, err)
	}
	// Size the session to the controlling terminal rather than tmux's
	// 80x24 default, the way the teacher's Zellij adapter sizes a freshly
	// attached session to the real terminal before the first redraw.
	if cols, rows, ok := CurrentTerminalSize(); ok {
		_ = a.ResizeWindow(name, cols, rows)
	}
	return nil
}

// CurrentTerminalSize reports the controlling terminal's size, or ok=false
// if stdout isn't a terminal (e.g. running under a test harness or a pipe).
func CurrentTerminalSize() (cols, rows int, ok bool) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0, false
	}
	return cols, rows, true
}

// KillSession destroys a session and all its panes.
func (a *Adapter) KillSession(name string) error {
	c := exec.Command("tmux", "kill-session", "-t", name)
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux kill-session %s: %w", name, err)
	}
	return nil
}

// KillPane destroys a single pane.
func (a *Adapter) KillPane(paneID string) error {
	c := exec.Command("tmux", "kill-pane", "-t", paneID)
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux kill-pane %s: %w", paneID, err)
	}
	return nil
}

// SplitWindow splits the target pane, running shellCmd in the new pane,
// and returns the new pane's id.
func (a *Adapter) SplitWindow(targetPane, workDir, shellCmd string) (string, error) {
	c := exec.Command("tmux", "split-window", "-t", targetPane, "-c", workDir, "-P", "-F", "#{pane_id}", shellCmd)
	out, err := a.cmdExec.Output(c)
	if err != nil {
		return "", fmt.Errorf("tmux split-window %s: %w", targetPane, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ResizePane resizes a pane to the given columns/rows.
func (a *Adapter) ResizePane(paneID string, cols, rows int) error {
	c := exec.Command("tmux", "resize-pane", "-t", paneID, "-x", strconv.Itoa(cols), "-y", strconv.Itoa(rows))
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux resize-pane %s: %w", paneID, err)
	}
	return nil
}

// ResizeWindow resizes the whole window (all panes) to cols/rows. Used to
// force a full redraw through a pipe-pane stream after reattaching.
func (a *Adapter) ResizeWindow(target string, cols, rows int) error {
	c := exec.Command("tmux", "resize-window", "-t", target, "-x", strconv.Itoa(cols), "-y", strconv.Itoa(rows))
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux resize-window %s: %w", target, err)
	}
	return nil
}

// PaneSize returns a pane's current width/height in columns/rows.
func (a *Adapter) PaneSize(paneID string) (cols, rows int, err error) {
	c := exec.Command("tmux", "display-message", "-p", "-t", paneID, "#{pane_width}\t#{pane_height}")
	out, runErr := a.cmdExec.Output(c)
	if runErr != nil {
		return 0, 0, fmt.Errorf("tmux display-message %s: %w", paneID, runErr)
	}
	fields := strings.Split(strings.TrimSpace(string(out)), "\t")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected pane size output: %q", out)
	}
	cols, _ = strconv.Atoi(fields[0])
	rows, _ = strconv.Atoi(fields[1])
	return cols, rows, nil
}

// GetWindowSize returns a window's current width/height in columns/rows,
// used to record the original dimensions before detail mode resizes the
// window and to restore them afterward.
func (a *Adapter) GetWindowSize(target string) (cols, rows int, err error) {
	c := exec.Command("tmux", "display-message", "-p", "-t", target, "#{window_width}\t#{window_height}")
	out, runErr := a.cmdExec.Output(c)
	if runErr != nil {
		return 0, 0, fmt.Errorf("tmux display-message %s: %w", target, runErr)
	}
	fields := strings.Split(strings.TrimSpace(string(out)), "\t")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected window size output: %q", out)
	}
	cols, _ = strconv.Atoi(fields[0])
	rows, _ = strconv.Atoi(fields[1])
	return cols, rows, nil
}

// PipePaneStart begins piping a pane's output to filePath in append mode,
// first stopping any pipe already active on that pane so pipes never
// stack. Per spec.md §4.7, only one pipe-pane target is ever active per
// pane at a time.
func (a *Adapter) PipePaneStart(paneID, filePath string) error {
	if err := a.PipePaneStop(paneID); err != nil {
		log.ErrorLog.Printf("tmux: stopping prior pipe-pane on %s: %v", paneID, err)
	}
	c := exec.Command("tmux", "pipe-pane", "-t", paneID, "-o", fmt.Sprintf("cat >> %s", shellQuote(filePath)))
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux pipe-pane start %s: %w", paneID, err)
	}
	return nil
}

// PipePaneStop stops piping a pane's output, if any pipe is active.
func (a *Adapter) PipePaneStop(paneID string) error {
	c := exec.Command("tmux", "pipe-pane", "-t", paneID)
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux pipe-pane stop %s: %w", paneID, err)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// GetPrefix returns the session's configured prefix key (e.g. "C-b"),
// falling back to tmux's own default when the option cannot be read.
func (a *Adapter) GetPrefix() string {
	c := exec.Command("tmux", "show-options", "-g", "prefix")
	out, err := a.cmdExec.Output(c)
	if err != nil {
		return "C-b"
	}
	// Output looks like "prefix C-b"
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return "C-b"
	}
	return fields[1]
}

// AttachSession attaches the current process to a session for interactive
// use. When already inside a tmux client ($TMUX set) it switches the
// client non-blockingly; otherwise it execs `tmux attach` with inherited
// stdio and blocks until the user detaches.
func (a *Adapter) AttachSession(name string) error {
	if os.Getenv("TMUX") != "" {
		c := exec.Command("tmux", "switch-client", "-t", name)
		if err := a.cmdExec.Run(c); err != nil {
			return fmt.Errorf("tmux switch-client %s: %w", name, err)
		}
		return nil
	}

	c := exec.Command("tmux", "attach-session", "-t", name)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := a.cmdExec.Run(c); err != nil {
		return fmt.Errorf("tmux attach-session %s: %w", name, err)
	}
	return nil
}

// AttachCommand returns the *exec.Cmd the caller execs to attach to name,
// for use with bubbletea's tea.ExecProcess, which suspends the TUI, wires
// up inherited stdio itself, and resumes it once the command exits.
func AttachCommand(name string) *exec.Cmd {
	if os.Getenv("TMUX") != "" {
		return exec.Command("tmux", "switch-client", "-t", name)
	}
	return exec.Command("tmux", "attach-session", "-t", name)
}

// IsAvailable reports whether the tmux binary is installed and runnable.
func IsAvailable() bool {
	return exec.Command("tmux", "-V").Run() == nil
}

// StripANSI removes SGR escape sequences from s, mirroring the teacher's
// ansiEscapeRegex use when matching against list-sessions/list-panes output
// that may carry color codes.
func StripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}
