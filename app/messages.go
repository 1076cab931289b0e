package app

// tickMsg drives the fast loop: per-member adaptive polling and detail
// stream draining, per spec §5's tick-deadline cadence.
type tickMsg struct{}

// refreshMsg drives the slow loop: hook-event ingestion, discovery cadence,
// dead-session detection, and the roster save-if-changed, per spec §5's
// refresh-deadline cadence.
type refreshMsg struct{}

// keyupMsg clears the menu's keydown highlight shortly after a keypress.
type keyupMsg struct{}

// attachFinishedMsg reports the outcome of a suspended tmux attach.
type attachFinishedMsg struct {
	err error
}

// errMsg surfaces a transient error to the status line.
type errMsg struct {
	err error
}
