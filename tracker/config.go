package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the tracker's persisted settings. Unknown keys in the file are
// ignored so older configs survive upgrades.
type Config struct {
	Version              string `json:"version"`
	Debug                bool   `json:"debug"`
	GoldGraphicID        int    `json:"gold_graphic_id"`
	UpdateIntervalSecs   int    `json:"update_interval_seconds"`
	AutosaveIntervalSecs int    `json:"autosave_interval_seconds"`
	AutoReadInsurance    bool   `json:"auto_read_insurance"`
	InsuranceCost        int64  `json:"insurance_cost"`
	// DeathDebounceSecs is how long after a counted death further death
	// callbacks are ignored. The duplicate-fire window has not been measured
	// against the client; 10s is a safe over-estimate.
	DeathDebounceSecs    int  `json:"death_debounce_seconds"`
	DesktopNotifications bool `json:"desktop_notifications"`
}

// DefaultConfig are the settings a fresh install gets.
func DefaultConfig() Config {
	return Config{
		Version:              "1",
		Debug:                false,
		GoldGraphicID:        3821,
		UpdateIntervalSecs:   5,
		AutosaveIntervalSecs: 60,
		AutoReadInsurance:    true,
		InsuranceCost:        0,
		DeathDebounceSecs:    10,
		DesktopNotifications: false,
	}
}

// UpdateInterval is the gold-scan cadence.
func (c Config) UpdateInterval() time.Duration {
	if c.UpdateIntervalSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.UpdateIntervalSecs) * time.Second
}

// AutosaveInterval is the in-progress persistence cadence.
func (c Config) AutosaveInterval() time.Duration {
	if c.AutosaveIntervalSecs <= 0 {
		return time.Minute
	}
	return time.Duration(c.AutosaveIntervalSecs) * time.Second
}

// DeathDebounce is the duplicate-death suppression window.
func (c Config) DeathDebounce() time.Duration {
	if c.DeathDebounceSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.DeathDebounceSecs) * time.Second
}

func configPath(dir string) string { return filepath.Join(dir, "config.json") }

// LoadConfig reads the config from dir, writing defaults when the file does
// not exist. A malformed file falls back to defaults without overwriting it.
func LoadConfig(dir string) (Config, error) {
	path := configPath(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		return cfg, SaveConfig(dir, cfg)
	}
	if err != nil {
		return DefaultConfig(), err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// SaveConfig writes the config atomically.
func SaveConfig(dir string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	path := configPath(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
