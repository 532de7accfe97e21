package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Request      RequestConfig      `yaml:"request"`
	Route        RouteConfig        `yaml:"route"`
	Agents       AgentsConfig       `yaml:"agents"`
	Log          LogConfig          `yaml:"log"`
	DB           DBConfig           `yaml:"db"`
	Cache        CacheConfig        `yaml:"cache"`
}

// OrchestratorConfig holds settings for the task engine.
type OrchestratorConfig struct {
	Workers     int      `yaml:"workers"`      // Parallel worker slots
	PollTimeout Duration `yaml:"poll_timeout"` // Bounded wait on the scheduler
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// RouteConfig holds route extraction settings.
type RouteConfig struct {
	APIKey string `yaml:"api_key"` // Google Maps Directions API key
	// MinSpacingM drops a step whose start is closer than this (meters) to
	// the previously emitted location. 0 keeps every step.
	MinSpacingM float64 `yaml:"min_spacing_m"`
}

// YouTubeConfig holds credentials for the video agent.
type YouTubeConfig struct {
	APIKey string `yaml:"api_key"`
}

// SpotifyConfig holds credentials for the music agent.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// AgentsConfig holds per-agent credentials. The text agent needs none.
type AgentsConfig struct {
	YouTube YouTubeConfig `yaml:"youtube"`
	Spotify SpotifyConfig `yaml:"spotify"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	TTL Duration `yaml:"ttl"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Orchestrator: OrchestratorConfig{
			Workers:     10,
			PollTimeout: Duration(1e9), // 1s
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(10e9), // 10s
			Backoff: BackoffConfig{
				BaseDelay: Duration(500e6), // 500ms
				MaxDelay:  Duration(30e9),  // 30s
			},
		},
		Route: RouteConfig{
			MinSpacingM: 0,
		},
		Log: LogConfig{
			Path:  "logs/tourgo.log",
			Level: "INFO",
		},
		DB: DBConfig{
			Path: "data/tourgo.db",
		},
		Cache: CacheConfig{
			TTL: Duration(Week),
		},
	}
}

// Load reads the config file at path, falling back to defaults for missing
// fields and to environment variables for missing credentials.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Route.APIKey == "" {
		return nil, fmt.Errorf("no Google Maps API key: set route.api_key or GOOGLE_MAPS_API_KEY")
	}
	return cfg, nil
}

// applyEnv fills empty credentials from the environment (never saved back
// to disk).
func (c *Config) applyEnv() {
	if c.Route.APIKey == "" {
		c.Route.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	if c.Agents.YouTube.APIKey == "" {
		c.Agents.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.Agents.Spotify.ClientID == "" {
		c.Agents.Spotify.ClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	}
	if c.Agents.Spotify.ClientSecret == "" {
		c.Agents.Spotify.ClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	}
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
