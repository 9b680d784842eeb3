// Package config defines the service configuration and its loader.
package config

import (
	"fmt"
	"time"
)

// Shared raster dimensions for every chart artifact and layout canvas.
// Charts are rendered at exactly this size so the layout compositor can
// assume a uniform input aspect ratio.
const (
	ChartWidthPx  = 1181
	ChartHeightPx = 650
	ChartDPI      = 100
)

// Config is the main configuration structure for chartd.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Charts  ChartsConfig  `yaml:"charts" json:"charts"`
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// AllowedOrigins lists the origins accepted by the CORS middleware.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type ChartsConfig struct {
	// Dir is the active chart artifact directory; trash lives in a
	// subdirectory next to the active files.
	Dir string `yaml:"dir" json:"dir"`

	// TrashRetention is how long soft-deleted charts are kept before the
	// purge pass erases them permanently.
	TrashRetention time.Duration `yaml:"trash_retention" json:"trash_retention"`

	// PurgeInterval is how often the background purge pass runs.
	PurgeInterval time.Duration `yaml:"purge_interval" json:"purge_interval"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	Model    string `yaml:"model" json:"model"`

	// MaxTurns bounds the orchestrator's tool-call loop per request.
	MaxTurns int `yaml:"max_turns" json:"max_turns"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// TrashDir derives the trash directory from the charts directory.
func (c ChartsConfig) TrashDir() string {
	return c.Dir + "/trash"
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:5175",
			},
		},
		Charts: ChartsConfig{
			Dir:            "static/charts",
			TrashRetention: 7 * 24 * time.Hour,
			PurgeInterval:  time.Hour,
		},
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-20250514",
			MaxTurns: 16,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks invariants the rest of the system depends on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Charts.Dir == "" {
		return fmt.Errorf("charts.dir is required")
	}
	if c.Charts.TrashRetention <= 0 {
		return fmt.Errorf("charts.trash_retention must be positive")
	}
	if c.LLM.MaxTurns <= 0 {
		return fmt.Errorf("llm.max_turns must be positive")
	}
	return nil
}
