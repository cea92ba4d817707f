package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got: %v", err)
	}

	if cfg.Mode != ModeSimulated {
		t.Errorf("Expected default mode %s, got %s", ModeSimulated, cfg.Mode)
	}
	if !cfg.Streaming {
		t.Error("Expected streaming to default to on")
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("Expected 5 reconnect attempts, got %d", cfg.Reconnect.MaxAttempts)
	}
	if cfg.ReconnectDelay() != time.Second {
		t.Errorf("Expected 1s reconnect delay, got %v", cfg.ReconnectDelay())
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("Expected 60s request timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.GenerateTimeout() != 120*time.Second {
		t.Errorf("Expected 120s generate timeout, got %v", cfg.GenerateTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default is valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "live mode with endpoints",
			mutate:  func(c *Config) { c.Mode = ModeLive },
			wantErr: false,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "hybrid" },
			wantErr: true,
		},
		{
			name: "live mode without base url",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Backend.BaseURL = ""
			},
			wantErr: true,
		},
		{
			name: "live streaming without websocket url",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Backend.WebSocketURL = ""
			},
			wantErr: true,
		},
		{
			name: "live non-streaming without websocket url",
			mutate: func(c *Config) {
				c.Mode = ModeLive
				c.Streaming = false
				c.Backend.WebSocketURL = ""
			},
			wantErr: false,
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Backend.RequestTimeoutSec = 0 },
			wantErr: true,
		},
		{
			name:    "zero generate timeout",
			mutate:  func(c *Config) { c.Backend.GenerateTimeoutSec = 0 },
			wantErr: true,
		},
		{
			name:    "negative reconnect attempts",
			mutate:  func(c *Config) { c.Reconnect.MaxAttempts = -1 },
			wantErr: true,
		},
		{
			name:    "zero reconnect attempts disables retries",
			mutate:  func(c *Config) { c.Reconnect.MaxAttempts = 0 },
			wantErr: false,
		},
		{
			name:    "zero reconnect delay",
			mutate:  func(c *Config) { c.Reconnect.DelayMs = 0 },
			wantErr: true,
		},
		{
			name: "chunk delay max below min",
			mutate: func(c *Config) {
				c.Simulator.ChunkDelayMinMs = 50
				c.Simulator.ChunkDelayMaxMs = 10
			},
			wantErr: true,
		},
		{
			name:    "negative chunk delay min",
			mutate:  func(c *Config) { c.Simulator.ChunkDelayMinMs = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid config, got: %v", err)
			}
		})
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeLive
	cfg.Backend.BaseURL = "http://news.example:8080"
	cfg.Reconnect.MaxAttempts = 7

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	var decoded Config
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if decoded.Mode != ModeLive {
		t.Errorf("Expected mode %s, got %s", ModeLive, decoded.Mode)
	}
	if decoded.Backend.BaseURL != "http://news.example:8080" {
		t.Errorf("Expected custom base url, got %s", decoded.Backend.BaseURL)
	}
	if decoded.Reconnect.MaxAttempts != 7 {
		t.Errorf("Expected 7 attempts, got %d", decoded.Reconnect.MaxAttempts)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("Expected round-tripped config to validate, got: %v", err)
	}
}

func TestConfigYAMLFieldNames(t *testing.T) {
	raw := `
mode: live
streaming: false
backend:
  base_url: http://localhost:3001
  websocket_url: ws://localhost:3001/chat
  request_timeout_sec: 30
  generate_timeout_sec: 90
reconnect:
  max_attempts: 2
  delay_ms: 500
simulator:
  chunk_delay_min_ms: 5
  chunk_delay_max_ms: 20
  end_delay_ms: 50
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if cfg.Mode != ModeLive {
		t.Errorf("Expected live mode, got %s", cfg.Mode)
	}
	if cfg.Streaming {
		t.Error("Expected streaming off")
	}
	if cfg.Backend.RequestTimeoutSec != 30 {
		t.Errorf("Expected 30s request timeout, got %d", cfg.Backend.RequestTimeoutSec)
	}
	if cfg.ReconnectDelay() != 500*time.Millisecond {
		t.Errorf("Expected 500ms delay, got %v", cfg.ReconnectDelay())
	}
	if cfg.Simulator.EndDelayMs != 50 {
		t.Errorf("Expected 50ms end delay, got %d", cfg.Simulator.EndDelayMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected config to validate, got: %v", err)
	}
}
