package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".news-chat"
	DefaultConfigFile = "config.yaml"

	// ModeSimulated fabricates all responses locally and never opens a
	// network connection. ModeLive talks to the real RAG backend.
	ModeSimulated = "simulated"
	ModeLive      = "live"
)

// Config represents the application configuration
type Config struct {
	// Mode selects "simulated" or "live" for both the REST and streaming paths
	Mode string `yaml:"mode"`

	// Streaming selects the delivery path for sends: transport (true) or REST (false)
	Streaming bool `yaml:"streaming"`

	Backend   BackendConfig   `yaml:"backend"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// BackendConfig holds the REST and websocket endpoints of the RAG backend
type BackendConfig struct {
	BaseURL      string `yaml:"base_url"`
	WebSocketURL string `yaml:"websocket_url"`

	// RequestTimeoutSec applies to reads (history, session ops)
	RequestTimeoutSec int `yaml:"request_timeout_sec"`

	// GenerateTimeoutSec applies to the generation-heavy send endpoint,
	// which is slower than simple reads because of the RAG pipeline
	GenerateTimeoutSec int `yaml:"generate_timeout_sec"`
}

// ReconnectConfig bounds the websocket retry behavior
type ReconnectConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	DelayMs     int `yaml:"delay_ms"`
}

// SimulatorConfig paces the simulated token stream
type SimulatorConfig struct {
	// ChunkDelayMinMs/ChunkDelayMaxMs bound the randomized per-word delay
	ChunkDelayMinMs int `yaml:"chunk_delay_min_ms"`
	ChunkDelayMaxMs int `yaml:"chunk_delay_max_ms"`

	// EndDelayMs is the pause between the last chunk and the end frame
	EndDelayMs int `yaml:"end_delay_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:      ModeSimulated,
		Streaming: true,
		Backend: BackendConfig{
			BaseURL:            "http://localhost:3001",
			WebSocketURL:       "ws://localhost:3001/chat",
			RequestTimeoutSec:  60,
			GenerateTimeoutSec: 120,
		},
		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			DelayMs:     1000,
		},
		Simulator: SimulatorConfig{
			ChunkDelayMinMs: 30,
			ChunkDelayMaxMs: 80,
			EndDelayMs:      200,
		},
	}
}

// RequestTimeout returns the timeout for read-style endpoints
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSec) * time.Second
}

// GenerateTimeout returns the timeout for the send/generation endpoint
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Backend.GenerateTimeoutSec) * time.Second
}

// ReconnectDelay returns the fixed delay between reconnect attempts
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Reconnect.DelayMs) * time.Millisecond
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return filepath.Join(configDir, DefaultConfigFile), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load loads the configuration from file, creating default if not exists
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			// If save fails, just return default config without error
			// This ensures the app works even if we can't write config
			return cfg, nil
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	// Ensure config directory exists
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Mode != ModeSimulated && c.Mode != ModeLive {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeSimulated, ModeLive, c.Mode)
	}

	if c.Mode == ModeLive {
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required in live mode")
		}
		if c.Streaming && c.Backend.WebSocketURL == "" {
			return fmt.Errorf("backend.websocket_url is required in live streaming mode")
		}
	}

	if c.Backend.RequestTimeoutSec <= 0 {
		return fmt.Errorf("backend.request_timeout_sec must be positive, got %d", c.Backend.RequestTimeoutSec)
	}
	if c.Backend.GenerateTimeoutSec <= 0 {
		return fmt.Errorf("backend.generate_timeout_sec must be positive, got %d", c.Backend.GenerateTimeoutSec)
	}

	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must not be negative, got %d", c.Reconnect.MaxAttempts)
	}
	if c.Reconnect.DelayMs <= 0 {
		return fmt.Errorf("reconnect.delay_ms must be positive, got %d", c.Reconnect.DelayMs)
	}

	if c.Simulator.ChunkDelayMinMs < 0 {
		return fmt.Errorf("simulator.chunk_delay_min_ms must not be negative, got %d", c.Simulator.ChunkDelayMinMs)
	}
	if c.Simulator.ChunkDelayMaxMs < c.Simulator.ChunkDelayMinMs {
		return fmt.Errorf("simulator.chunk_delay_max_ms must be >= chunk_delay_min_ms, got %d < %d",
			c.Simulator.ChunkDelayMaxMs, c.Simulator.ChunkDelayMinMs)
	}
	if c.Simulator.EndDelayMs < 0 {
		return fmt.Errorf("simulator.end_delay_ms must not be negative, got %d", c.Simulator.EndDelayMs)
	}

	return nil
}
