// Package config provides unified configuration loading for docforge.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Converter engine names accepted in the converters section.
const (
	DocxEngineOffice   = "office"
	DocxEngineEmbedded = "embedded"
	MDEngineDirect     = "direct"
	MDEngineOffice     = "office"
)

// Config holds all configuration for docforge.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Limits        LimitsConfig        `yaml:"limits"`
	Scratch       ScratchConfig       `yaml:"scratch"`
	Converters    ConvertersConfig    `yaml:"converters"`
	History       HistoryConfig       `yaml:"history"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// LimitsConfig holds upload and conversion limits.
type LimitsConfig struct {
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ConvertTimeout time.Duration `yaml:"convert_timeout"`
}

// ScratchConfig holds scratch-file lifecycle settings.
type ScratchConfig struct {
	// Dir is the scratch root; empty means a docforge directory under
	// the system temp dir.
	Dir           string        `yaml:"dir"`
	Retention     time.Duration `yaml:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ConvertersConfig selects per-format converter engines.
type ConvertersConfig struct {
	Docx   DocxConfig   `yaml:"docx"`
	MD     MDConfig     `yaml:"md"`
	Office OfficeConfig `yaml:"office"`
}

// DocxConfig holds DOCX converter settings.
type DocxConfig struct {
	Engine string `yaml:"engine"` // office or embedded
}

// MDConfig holds Markdown converter settings.
type MDConfig struct {
	Engine string `yaml:"engine"` // direct or office
}

// OfficeConfig holds LibreOffice runner settings.
type OfficeConfig struct {
	// Binary overrides autodetection of the soffice executable.
	Binary string `yaml:"binary"`
}

// HistoryConfig holds the in-memory history settings.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or console
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     3 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 50 * 1024 * 1024,
			ConvertTimeout: 2 * time.Minute,
		},
		Scratch: ScratchConfig{
			Dir:           "",
			Retention:     5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Converters: ConvertersConfig{
			Docx: DocxConfig{Engine: DocxEngineOffice},
			MD:   MDConfig{Engine: MDEngineDirect},
		},
		History: HistoryConfig{
			MaxEntries: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Limits.MaxUploadBytes < 1 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.Limits.ConvertTimeout < time.Second {
		return fmt.Errorf("convert_timeout must be at least 1s")
	}

	if e := c.Converters.Docx.Engine; e != DocxEngineOffice && e != DocxEngineEmbedded {
		return fmt.Errorf("invalid docx engine: %s", e)
	}

	if e := c.Converters.MD.Engine; e != MDEngineDirect && e != MDEngineOffice {
		return fmt.Errorf("invalid md engine: %s", e)
	}

	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history max_entries must be positive")
	}

	if f := c.Observability.LogFormat; f != "json" && f != "console" {
		return fmt.Errorf("invalid log format: %s", f)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxUploadBytes = n
		}
	}

	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		cfg.Scratch.Dir = v
	}

	if v := os.Getenv("SOFFICE_PATH"); v != "" {
		cfg.Converters.Office.Binary = v
	}

	if v := os.Getenv("DOCX_ENGINE"); v != "" {
		cfg.Converters.Docx.Engine = v
	}

	if v := os.Getenv("MD_ENGINE"); v != "" {
		cfg.Converters.MD.Engine = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
