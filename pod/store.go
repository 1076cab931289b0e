package pod

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PaneRef is the minimal pane-identity shape the store needs from the
// multiplexer adapter during reconciliation — just enough to test pane
// liveness without coupling this package to the tmux package's richer
// Pane type.
type PaneRef struct {
	Session string
	PaneID  string
}

// Multiplexer is the slice of the multiplexer adapter the Pod store needs
// to reconcile a persisted roster against live state.
type Multiplexer interface {
	SessionExists(name string) (bool, error)
	ListAllPanes() ([]PaneRef, error)
}

// Store persists a Pod roster to a single file, matching writes atomically
// via a temp-file-then-rename swap (spec §4.2) — generalizing the
// teacher's config.SaveState, whose plain os.WriteFile is not atomic.
type Store struct {
	path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the roster, tolerating a missing or empty file as an empty
// roster. A corrupt file is surfaced as a parse error, never silently
// discarded, per spec §7 rule 3.
func (s *Store) Load() ([]Pod, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pod store %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var podDatas []PodData
	if err := json.Unmarshal(data, &podDatas); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreParseError, s.path, err)
	}

	pods := make([]Pod, len(podDatas))
	for i, d := range podDatas {
		pods[i] = FromPodData(d)
	}
	return pods, nil
}

// Save writes the roster atomically: marshal to a sibling temp file, then
// rename over the target.
func (s *Store) Save(pods []Pod) error {
	podDatas := make([]PodData, len(pods))
	for i, p := range pods {
		podDatas[i] = ToPodData(&p)
	}

	data, err := json.MarshalIndent(podDatas, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pod store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating pod store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".pods-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp pod store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp pod store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp pod store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming pod store into place: %w", err)
	}
	return nil
}

// LoadAndReconcile loads the roster, drops Pods whose session no longer
// exists, drops members whose pane is no longer live (using a single
// ListAllPanes query), re-rolls-up any Pod whose members changed, and
// persists the result before returning it.
func (s *Store) LoadAndReconcile(mux Multiplexer) ([]Pod, error) {
	pods, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(pods) == 0 {
		return pods, nil
	}

	livePanes, err := mux.ListAllPanes()
	if err != nil {
		// Observation failure: leave the roster as loaded rather than
		// surfacing a reconciliation error, per spec §7 rule 1.
		return pods, nil
	}
	liveByID := make(map[string]bool, len(livePanes))
	for _, pr := range livePanes {
		liveByID[pr.PaneID] = true
	}

	changed := false
	kept := pods[:0]
	for _, p := range pods {
		exists, sErr := mux.SessionExists(p.Session)
		if sErr != nil {
			kept = append(kept, p)
			continue
		}
		if !exists {
			changed = true
			continue
		}

		podChanged := false
		survivors := p.Members[:0]
		for _, m := range p.Members {
			if liveByID[m.PaneID] {
				survivors = append(survivors, m)
			} else {
				podChanged = true
			}
		}
		p.Members = survivors
		if podChanged {
			p.RollUp()
			changed = true
		}
		kept = append(kept, p)
	}

	if changed {
		if err := s.Save(kept); err != nil {
			return kept, err
		}
	}
	return kept, nil
}
