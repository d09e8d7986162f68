// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides, loaded from ~/.ragchat/config.toml.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ragchat-tui/internal/rag"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	Version string `toml:"version"`

	// Server is the RAG backend connection.
	Server ServerConfig `toml:"server"`

	// Auth holds the bearer token pair.
	Auth AuthConfig `toml:"auth"`

	// Chat holds the per-conversation query defaults.
	Chat ChatConfig `toml:"chat"`

	// UI configures rendering.
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	// BaseURL is the backend base URL, e.g. http://localhost:8000
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the blocking-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `toml:"max_retries"`
	// QueriesPerSecond rate-limits outgoing queries.
	QueriesPerSecond float64 `toml:"queries_per_second"`
}

// AuthConfig contains the stored token pair.
// SECURITY: the config file is written with 0600 permissions.
type AuthConfig struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// ChatConfig contains query defaults applied to every new conversation.
type ChatConfig struct {
	// SearchType is the retrieval strategy: "keyword", "vector", "hybrid".
	SearchType string `toml:"search_type"`
	// MaxResults is how many chunks the backend retrieves per query.
	MaxResults int `toml:"max_results"`
	// Temperature is the generation temperature in [0, 2].
	Temperature float64 `toml:"temperature"`
	// IncludeCitations asks the backend to return source citations.
	IncludeCitations bool `toml:"include_citations"`
	// Streaming selects the streaming endpoint over the blocking one.
	Streaming bool `toml:"streaming"`
}

// UIConfig contains rendering settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// Markdown renders answers through the markdown renderer.
	Markdown bool `toml:"markdown"`
	// ShowTimestamps prefixes messages with their time.
	ShowTimestamps bool `toml:"show_timestamps"`
	// Mouse enables mouse support (scrolling, card clicks).
	Mouse bool `toml:"mouse"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:          "http://localhost:8000",
			TimeoutSecs:      30,
			MaxRetries:       3,
			QueriesPerSecond: 4,
		},
		Chat: ChatConfig{
			SearchType:       string(rag.SearchHybrid),
			MaxResults:       5,
			Temperature:      0.7,
			IncludeCitations: true,
			Streaming:        true,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
			Mouse:    true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the ragchat configuration directory (~/.ragchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, falling back to defaults when it does not
// exist. Environment overrides are applied last, then validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

var (
	globalOnce sync.Once
	globalCfg  *Config
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults so callers always get a usable
// config.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalCfg = cfg
	})
	return globalCfg
}

// LoadFromPath loads configuration from an explicit file path. A missing
// file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default path with 0600 permissions.
// The write is atomic so a crash mid-save never leaves a truncated file,
// and the rename-based save plays well with the fsnotify watcher.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RAGCHAT_* environment variables on top of the
// loaded configuration:
//
//   - RAGCHAT_SERVER_URL: overrides server.base_url
//   - RAGCHAT_ACCESS_TOKEN / RAGCHAT_REFRESH_TOKEN: override auth tokens
//   - RAGCHAT_SEARCH_TYPE: overrides chat.search_type
//   - RAGCHAT_STREAMING: "1"/"true"/"0"/"false" overrides chat.streaming
//   - RAGCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RAGCHAT_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("RAGCHAT_ACCESS_TOKEN"); v != "" {
		c.Auth.AccessToken = v
	}
	if v := os.Getenv("RAGCHAT_REFRESH_TOKEN"); v != "" {
		c.Auth.RefreshToken = v
	}
	if v := os.Getenv("RAGCHAT_SEARCH_TYPE"); v != "" {
		c.Chat.SearchType = v
	}
	if v := os.Getenv("RAGCHAT_STREAMING"); v != "" {
		c.Chat.Streaming = parseBool(v, c.Chat.Streaming)
	}
	if v := os.Getenv("RAGCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// parseBool interprets common truthy/falsy strings, keeping the fallback
// for anything unrecognized.
func parseBool(s string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}

// =============================================================================
// DEFAULTS & VALIDATION
// =============================================================================

// SetDefaults fills zero values that a partial config file left unset.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = def.Server.MaxRetries
	}
	if c.Server.QueriesPerSecond == 0 {
		c.Server.QueriesPerSecond = def.Server.QueriesPerSecond
	}
	if c.Chat.SearchType == "" {
		c.Chat.SearchType = def.Chat.SearchType
	}
	if c.Chat.MaxResults == 0 {
		c.Chat.MaxResults = def.Chat.MaxResults
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := url.Parse(c.Server.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	}
	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_secs", Message: "cannot be negative"})
	}
	if c.Server.MaxRetries < 0 {
		errs = append(errs, ValidationError{Field: "server.max_retries", Message: "cannot be negative"})
	}

	validSearch := map[string]bool{
		string(rag.SearchKeyword): true,
		string(rag.SearchVector):  true,
		string(rag.SearchHybrid):  true,
	}
	if !validSearch[strings.ToLower(c.Chat.SearchType)] {
		errs = append(errs, ValidationError{
			Field:   "chat.search_type",
			Message: fmt.Sprintf("invalid type %q, must be one of: keyword, vector, hybrid", c.Chat.SearchType),
		})
	}
	if c.Chat.MaxResults < 1 || c.Chat.MaxResults > 50 {
		errs = append(errs, ValidationError{Field: "chat.max_results", Message: "must be between 1 and 50"})
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		errs = append(errs, ValidationError{Field: "chat.temperature", Message: "must be between 0 and 2"})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SearchType returns the configured search type as the wire enum.
func (c *Config) SearchType() rag.SearchType {
	return rag.SearchType(strings.ToLower(c.Chat.SearchType))
}
