package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	// Annotation server connection
	Server ServerConfig `json:"server"`

	// Autocomplete behavior
	Suggest SuggestConfig `json:"suggest"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// Selection history persistence
	History HistoryConfig `json:"history"`
}

// ServerConfig holds annotation server settings
type ServerConfig struct {
	BaseURL   string `json:"base_url"`
	TimeoutMs int    `json:"timeout_ms"`
}

// SuggestConfig holds autocomplete settings
type SuggestConfig struct {
	DebounceMs  int `json:"debounce_ms"`
	TermMinLen  int `json:"term_min_len"`
	GeneMinLen  int `json:"gene_min_len"`
	MaxRecents  int `json:"max_recents"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	InitialMode string `json:"initial_mode"` // similarity form mode at startup
	ShowDebug   bool   `json:"show_debug"`   // debug overlay with recent events
}

// HistoryConfig holds selection history settings
type HistoryConfig struct {
	Enabled       bool   `json:"enabled"`
	DBPath        string `json:"db_path,omitempty"` // defaults to ~/.ontoview/history.db
	RetentionDays int    `json:"retention_days"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:   "http://localhost:5000",
			TimeoutMs: 10000,
		},
		Suggest: SuggestConfig{
			DebounceMs: 250,
			TermMinLen: 3,
			GeneMinLen: 2,
			MaxRecents: 10,
		},
		UI: UIConfig{
			InitialMode: "term",
			ShowDebug:   false,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 90,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ontoview", "config.json")
}

// Load reads config from disk, or returns defaults. Environment variables
// override the file in either case.
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}

	cfg.fillDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// fillDefaults replaces zero values a hand-edited config file may have
// dropped with the shipped defaults.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutMs <= 0 {
		c.Server.TimeoutMs = def.Server.TimeoutMs
	}
	if c.Suggest.DebounceMs <= 0 {
		c.Suggest.DebounceMs = def.Suggest.DebounceMs
	}
	if c.Suggest.TermMinLen <= 0 {
		c.Suggest.TermMinLen = def.Suggest.TermMinLen
	}
	if c.Suggest.GeneMinLen <= 0 {
		c.Suggest.GeneMinLen = def.Suggest.GeneMinLen
	}
	if c.Suggest.MaxRecents <= 0 {
		c.Suggest.MaxRecents = def.Suggest.MaxRecents
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = def.History.RetentionDays
	}
	if c.UI.InitialMode == "" {
		c.UI.InitialMode = def.UI.InitialMode
	}
}

// applyEnv overrides config values from environment variables
func (c *Config) applyEnv() {
	if url := os.Getenv("ONTOVIEW_SERVER"); url != "" {
		c.Server.BaseURL = url
	}
	if os.Getenv("ONTOVIEW_DEBUG") != "" {
		c.UI.ShowDebug = true
	}
	if path := os.Getenv("ONTOVIEW_HISTORY_DB"); path != "" {
		c.History.DBPath = path
	}
}

// Timeout returns the server timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutMs) * time.Millisecond
}

// Debounce returns the autocomplete debounce as a duration
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Suggest.DebounceMs) * time.Millisecond
}

// HistoryDBPath returns the configured history path, or the default
// location under the home directory.
func (c *Config) HistoryDBPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ontoview", "history.db")
}
