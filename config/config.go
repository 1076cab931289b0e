package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"apiary/log"
)

const ConfigFileName = "config.json"

// PollingConfig holds the adaptive per-status polling intervals of
// spec §6, in milliseconds.
type PollingConfig struct {
	FocusedMs    int `json:"focused_ms"`
	PermissionMs int `json:"permission_ms"`
	WorkingMs    int `json:"working_ms"`
	IdleMs       int `json:"idle_ms"`
	ErrorMs      int `json:"error_ms"`
}

// IntervalFor returns the configured interval for a non-focused member in
// the given status. Done and Dead share the Idle interval.
func (p PollingConfig) IntervalFor(status string) time.Duration {
	switch status {
	case "Permission":
		return time.Duration(p.PermissionMs) * time.Millisecond
	case "Working":
		return time.Duration(p.WorkingMs) * time.Millisecond
	case "Error":
		return time.Duration(p.ErrorMs) * time.Millisecond
	default: // Idle, Done, Dead
		return time.Duration(p.IdleMs) * time.Millisecond
	}
}

// Focused returns the interval used for the focused Pod's members.
func (p PollingConfig) Focused() time.Duration {
	return time.Duration(p.FocusedMs) * time.Millisecond
}

// NotificationConfig controls desktop-notification delivery.
type NotificationConfig struct {
	Enabled bool `json:"enabled"`
	Sound   bool `json:"sound"`
}

// DetectionConfig holds user-supplied regex lists that extend the
// classifier's built-in patterns.
type DetectionConfig struct {
	Permission []string `json:"permission"`
	Error      []string `json:"error"`
	Idle       []string `json:"idle"`
}

// Config is Apiary's application configuration (spec §6's configuration
// keys), loaded from and saved to config.json under the config directory.
type Config struct {
	Polling      PollingConfig      `json:"polling"`
	Notification NotificationConfig `json:"notification"`
	Detection    DetectionConfig    `json:"detection"`
}

// GetConfigDir returns the path to the application's configuration
// directory, <config_dir>/apiary per spec §6.
func GetConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(dir, "apiary"), nil
}

// DefaultConfig returns the default configuration, matching the interval
// defaults named in spec §6.
func DefaultConfig() *Config {
	return &Config{
		Polling: PollingConfig{
			FocusedMs:    1000,
			PermissionMs: 1000,
			WorkingMs:    3000,
			IdleMs:       10000,
			ErrorMs:      5000,
		},
		Notification: NotificationConfig{
			Enabled: true,
			Sound:   false,
		},
	}
}

// LoadConfig reads config.json, falling back to defaults (and writing
// them back) when the file is absent, and backing up a corrupt file
// before falling back to defaults when parsing fails.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}
		log.WarningLog.Printf("failed to read config file: %v", err)
		return DefaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		parseErr := fmt.Errorf("%w: %s: %v", ErrConfigParseError, configPath, err)
		log.ErrorLog.Printf("failed to parse config file: %v\nConfig content preview: %s", parseErr, preview)

		backupPath := configPath + ".corrupt." + time.Now().Format("20060102-150405")
		if backupErr := os.WriteFile(backupPath, data, 0644); backupErr == nil {
			log.InfoLog.Printf("backed up corrupted config to: %s", backupPath)
		}
		return DefaultConfig()
	}

	return &cfg
}

func saveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig exports saveConfig for use by other packages.
func SaveConfig(cfg *Config) error {
	return saveConfig(cfg)
}
