package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"apiary/log"
)

const StateFileName = "state.json"

// PodsFileName is the default pods-store file name, persisted next to
// config.json and state.json under the config directory.
const PodsFileName = "pods.json"

// State is the small piece of bookkeeping Apiary persists across restarts:
// where the Pod store lives, and whether this is the first run.
type State struct {
	// PodsPath is the on-disk path to the Pod store. Recorded explicitly
	// (rather than always recomputed) so a future version can relocate it
	// without losing track of an existing store.
	PodsPath string `json:"pods_path"`
	// FirstRunCompleted is set once the TUI has launched successfully at
	// least once, gating first-run-only messaging.
	FirstRunCompleted bool `json:"first_run_completed"`

	// lastModTime tracks when we last read the state file (not serialized).
	lastModTime time.Time `json:"-"`
}

// DefaultState returns the default state for a config directory.
func DefaultState(configDir string) *State {
	return &State{
		PodsPath:          filepath.Join(configDir, PodsFileName),
		FirstRunCompleted: false,
	}
}

// LoadState loads the state from disk, creating and persisting the default
// state on first run. On any read/parse failure it falls back to the
// default rather than failing the caller.
func LoadState() *State {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultState("")
	}

	statePath := filepath.Join(configDir, StateFileName)

	lock := NewFileLock(statePath)
	if err := lock.RLock(); err != nil {
		log.WarningLog.Printf("failed to acquire read lock: %v", err)
	} else {
		defer lock.Unlock()
	}

	var modTime time.Time
	if info, err := os.Stat(statePath); err == nil {
		modTime = info.ModTime()
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			// SaveState takes an exclusive lock on the same lock file, which
			// would block on our own shared lock; release it first.
			_ = lock.Unlock()
			defaultState := DefaultState(configDir)
			if saveErr := SaveState(defaultState); saveErr != nil {
				log.WarningLog.Printf("failed to save default state: %v", saveErr)
			}
			return defaultState
		}
		log.WarningLog.Printf("failed to read state file: %v", err)
		return DefaultState(configDir)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		log.ErrorLog.Printf("failed to parse state file: %v", err)
		return DefaultState(configDir)
	}

	state.lastModTime = modTime
	return &state
}

// SaveState persists state to disk atomically: the file is written to a
// temp file in the same directory and renamed over the target, so a
// concurrently-reading process never observes a partial write.
func SaveState(state *State) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	statePath := filepath.Join(configDir, StateFileName)

	lock := NewFileLock(statePath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(configDir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, statePath); err != nil {
		return fmt.Errorf("failed to rename temp state file into place: %w", err)
	}

	if info, err := os.Stat(statePath); err == nil {
		state.lastModTime = info.ModTime()
	}
	return nil
}

// MarkFirstRunCompleted records that the TUI has launched at least once.
func (s *State) MarkFirstRunCompleted() error {
	if s.FirstRunCompleted {
		return nil
	}
	s.FirstRunCompleted = true
	return SaveState(s)
}

// GetLastModTime returns the modification time when this state was last
// read from disk.
func (s *State) GetLastModTime() time.Time {
	return s.lastModTime
}

// GetStateModTime returns the current modification time of the state file
// on disk.
func GetStateModTime() (time.Time, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return time.Time{}, err
	}
	statePath := filepath.Join(configDir, StateFileName)
	info, err := os.Stat(statePath)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// NeedsRefresh reports whether the state file has been modified since the
// given time.
func NeedsRefresh(since time.Time) bool {
	modTime, err := GetStateModTime()
	if err != nil {
		return false
	}
	return modTime.After(since)
}

// RefreshFromDisk reloads state from disk if it has been modified since it
// was last read, returning whether a refresh occurred.
func (s *State) RefreshFromDisk() (bool, error) {
	if !NeedsRefresh(s.lastModTime) {
		return false, nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return false, fmt.Errorf("failed to get config directory: %w", err)
	}
	statePath := filepath.Join(configDir, StateFileName)

	lock := NewFileLock(statePath)
	if err := lock.RLock(); err != nil {
		return false, fmt.Errorf("failed to acquire read lock: %w", err)
	}
	defer lock.Unlock()

	info, err := os.Stat(statePath)
	if err != nil {
		return false, fmt.Errorf("failed to stat state file: %w", err)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		return false, fmt.Errorf("failed to read state file: %w", err)
	}

	var newState State
	if err := json.Unmarshal(data, &newState); err != nil {
		return false, fmt.Errorf("failed to parse state file: %w", err)
	}

	s.PodsPath = newState.PodsPath
	s.FirstRunCompleted = newState.FirstRunCompleted
	s.lastModTime = info.ModTime()

	return true, nil
}
