// Package app wires the status engine, discovery cadence, and detail
// streams into a bubbletea program — Apiary's interactive overview.
package app

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"apiary/detail"
	"apiary/keys"
	"apiary/log"
	"apiary/pod"
	"apiary/statusengine"
	"apiary/tmux"
	"apiary/ui"
)

const (
	tickInterval    = 250 * time.Millisecond
	refreshInterval = 1 * time.Second
	menuHeight      = 1
)

// viewMode selects what the main view area renders.
type viewMode int

const (
	modeOverview viewMode = iota
	modeDetail
)

// Model is the bubbletea model supervising every Pod. Updates run on a
// single goroutine — there is no teacher-style parallel per-instance
// update path, per spec §5.
type Model struct {
	engine *statusengine.Engine
	mux    *tmux.Adapter

	list *ui.List
	menu *ui.Menu

	mode   viewMode
	stream *detail.Stream

	detailTarget         string
	savedCols, savedRows int

	width, height int
	err           error
}

// New builds the overview model from already-constructed dependencies.
func New(engine *statusengine.Engine, mux *tmux.Adapter) *Model {
	return &Model{
		engine: engine,
		mux:    mux,
		list:   ui.NewList(),
		menu:   ui.NewMenu(),
		mode:   modeOverview,
	}
}

func (m *Model) Init() tea.Cmd {
	if err := m.engine.Load(); err != nil {
		m.err = err
	}
	m.list.SetPods(m.engine.Pods)
	return tea.Batch(tickCmd(), refreshCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-menuHeight)
		m.menu.SetSize(msg.Width, menuHeight)
		if m.stream != nil {
			_ = m.stream.Resize(msg.Width, msg.Height-menuHeight)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if focused := m.list.SelectedPod(); focused != nil {
			m.engine.Focused = focused.Name
		}
		m.engine.Tick(time.Now())
		if m.mode == modeDetail && m.stream != nil {
			if _, err := m.stream.Drain(); err != nil {
				log.WarningLog.Printf("detail stream drain: %v", err)
			}
		}
		m.list.SetPods(m.engine.Pods)
		return m, tickCmd()

	case refreshMsg:
		if err := m.engine.Refresh(time.Now()); err != nil {
			m.err = err
		}
		m.list.SetPods(m.engine.Pods)
		m.exitDetailIfFocusedDied()
		return m, refreshCmd()

	case keyupMsg:
		m.menu.ClearKeydown()
		return m, nil

	case attachFinishedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleOverviewKey(msg)
}

func (m *Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, keys.KeyQuit):
		return m, tea.Quit
	case keyMatches(msg, keys.KeyUp):
		m.list.CursorUp()
	case keyMatches(msg, keys.KeyDown):
		m.list.CursorDown()
	case keyMatches(msg, keys.KeyEnter):
		return m.attachSelected()
	case keyMatches(msg, keys.KeyDetail):
		return m.enterDetail()
	case keyMatches(msg, keys.KeyDrop):
		m.dropSelected()
	case msg.String() == "c":
		m.copySelectedName()
	}
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, keys.KeyQuit):
		return m, tea.Quit
	case keyMatches(msg, keys.KeyEsc):
		m.exitDetail()
	}
	return m, nil
}

func keyMatches(msg tea.KeyMsg, name keys.KeyName) bool {
	binding, ok := keys.GlobalkeyBindings[name]
	return ok && key.Matches(msg, binding)
}

// attachSelected suspends the TUI and execs a tmux attach to the selected
// Pod's session, resuming the overview once the user detaches.
func (m *Model) attachSelected() (tea.Model, tea.Cmd) {
	p := m.list.SelectedPod()
	if p == nil {
		return m, nil
	}
	c := tmux.AttachCommand(p.Session)
	return m, tea.ExecProcess(c, func(err error) tea.Msg {
		return attachFinishedMsg{err: err}
	})
}

// enterDetail starts a pipe-pane stream for the selected member, switching
// the main view to the detail pane per spec §4.7.
func (m *Model) enterDetail() (tea.Model, tea.Cmd) {
	member := m.list.SelectedMember()
	if member == nil {
		return m, nil
	}

	if cols, rows, err := m.mux.GetWindowSize(member.PaneID); err != nil {
		log.WarningLog.Printf("detail: recording window size for %s: %v", member.PaneID, err)
		m.detailTarget = ""
	} else {
		m.detailTarget = member.PaneID
		m.savedCols, m.savedRows = cols, rows
	}

	cols, rows := m.width, m.height-menuHeight
	stream, err := detail.Start(m.mux, member.PaneID, cols, rows)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.stream = stream
	m.mode = modeDetail
	m.menu.SetState(ui.StateDetail)
	return m, nil
}

func (m *Model) exitDetail() {
	if m.stream != nil {
		_ = m.stream.Stop()
		m.stream = nil
	}
	m.restoreWindowSize()
	m.mode = modeOverview
	m.menu.SetState(ui.StateOverview)
}

// restoreWindowSize puts the detail window back to the dimensions recorded
// by enterDetail, per spec §4.7.
func (m *Model) restoreWindowSize() {
	if m.detailTarget == "" {
		return
	}
	if err := m.mux.ResizeWindow(m.detailTarget, m.savedCols, m.savedRows); err != nil {
		log.WarningLog.Printf("detail: restoring window size for %s: %v", m.detailTarget, err)
	}
	m.detailTarget = ""
}

// exitDetailIfFocusedDied auto-returns to the overview if the attached
// member's Pod goes Dead while the detail pane is open, per spec §4.7.
func (m *Model) exitDetailIfFocusedDied() {
	if m.mode != modeDetail {
		return
	}
	p := m.list.SelectedPod()
	if p == nil || p.Status == pod.StatusDead {
		m.exitDetail()
	}
}

func (m *Model) dropSelected() {
	p := m.list.SelectedPod()
	if p == nil {
		return
	}
	dropped := *p

	kept := m.engine.Pods[:0]
	for _, existing := range m.engine.Pods {
		if existing.Name != dropped.Name {
			kept = append(kept, existing)
		}
	}
	m.engine.Pods = kept

	shared := false
	for i := range kept {
		if kept[i].Session == dropped.Session {
			shared = true
			break
		}
	}
	if shared {
		for _, member := range dropped.Members {
			_ = m.mux.KillPane(member.PaneID)
		}
	} else if exists, _ := m.mux.SessionExists(dropped.Session); exists {
		_ = m.mux.KillSession(dropped.Session)
	}

	if err := m.engine.Save(); err != nil {
		m.err = err
	}
	m.list.SetPods(m.engine.Pods)
}

func (m *Model) copySelectedName() {
	p := m.list.SelectedPod()
	if p == nil {
		return
	}
	if err := clipboard.WriteAll(p.Name); err != nil {
		m.err = err
	}
}

func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeDetail:
		body = m.renderDetail()
	default:
		body = m.list.Render()
	}

	var errLine string
	if m.err != nil {
		errLine = wordwrap.String(m.err.Error(), max(m.width, 1))
		m.err = nil
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, errLine, m.menu.String())
}

func (m *Model) renderDetail() string {
	if m.stream == nil {
		return ""
	}
	rows := m.height - menuHeight
	return ui.RenderScreen(m.stream.BottomRows(rows))
}

// Run starts the bubbletea program in the alternate screen, which suspends
// cleanly around tea.ExecProcess attach calls.
func Run(engine *statusengine.Engine, mux *tmux.Adapter) error {
	p := tea.NewProgram(New(engine, mux), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
