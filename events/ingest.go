// Package events tails the append-only hook-event log that external
// shell-invoked hooks write to, and maps records to status hints.
package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"apiary/pod"
)

// Kind enumerates the hook-event vocabulary of spec §4.3.
type Kind string

const (
	KindToolStart     Kind = "tool_start"
	KindToolEnd       Kind = "tool_end"
	KindPermission    Kind = "permission"
	KindError         Kind = "error"
	KindSubagentStart Kind = "subagent_start"
	KindSubagentStop  Kind = "subagent_stop"
)

// Record is one parsed line of the hook-event log.
type Record struct {
	Kind      Kind   `json:"kind"`
	Tool      string `json:"tool,omitempty"`
	Session   string `json:"session,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`
	AgentType string `json:"agent_type,omitempty"`
}

// InferredStatus maps the record's kind to a status hint, or ("", false)
// when the kind carries no status (the "other" case of spec §4.3).
func (r Record) InferredStatus() (pod.MemberStatus, bool) {
	switch r.Kind {
	case KindToolStart, KindToolEnd, KindSubagentStart, KindSubagentStop:
		return pod.StatusWorking, true
	case KindPermission:
		return pod.StatusPermission, true
	case KindError:
		return pod.StatusError, true
	default:
		return "", false
	}
}

// Tailer watches a single newline-delimited JSON log file, keeping its own
// byte cursor with truncation detection.
type Tailer struct {
	path   string
	cursor int64
}

// NewTailer returns a Tailer whose cursor starts at the file's current
// byte length, per spec §4.3 ("records a cursor at startup").
func NewTailer(path string) *Tailer {
	t := &Tailer{path: path}
	if info, err := os.Stat(path); err == nil {
		t.cursor = info.Size()
	}
	return t
}

// Poll reads newly appended, well-formed records since the last call.
// Truncation (current length < cursor) resets the cursor to zero before
// reading. Malformed lines are skipped silently. A missing file returns
// an empty slice.
func (t *Tailer) Poll() ([]Record, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log %s: %w", t.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat event log %s: %w", t.path, err)
	}
	if info.Size() < t.cursor {
		t.cursor = 0
	}

	if _, err := f.Seek(t.cursor, 0); err != nil {
		return nil, fmt.Errorf("seeking event log %s: %w", t.path, err)
	}

	chunk, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading event log %s: %w", t.path, err)
	}

	// Only consume complete lines: a trailing partial line (no newline
	// yet) may still be mid-write and is left for the next poll.
	lastNewline := bytes.LastIndexByte(chunk, '\n')
	if lastNewline < 0 {
		return nil, nil
	}
	complete := chunk[:lastNewline]
	t.cursor += int64(lastNewline) + 1

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(complete))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // malformed line, skipped silently
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("parsing event log %s: %w", t.path, err)
	}

	return records, nil
}
