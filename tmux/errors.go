package tmux

import "errors"

// ErrSessionNotFound is wrapped around a named tmux session that doesn't
// exist when a command expects one to be already running.
var ErrSessionNotFound = errors.New("session not found")

// ErrPaneNotFound is wrapped around a session or window that reports no
// panes when at least one is expected.
var ErrPaneNotFound = errors.New("pane not found")

// ErrMultiplexerUnavailable is returned when no tmux binary is reachable
// on PATH.
var ErrMultiplexerUnavailable = errors.New("multiplexer unavailable")
