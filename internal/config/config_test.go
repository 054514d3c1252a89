package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.Scratch.Retention)
	assert.Equal(t, DocxEngineOffice, cfg.Converters.Docx.Engine)
	assert.Equal(t, MDEngineDirect, cfg.Converters.MD.Engine)
	assert.Equal(t, 10, cfg.History.MaxEntries)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	yaml := `
server:
  port: 9090
limits:
  max_upload_bytes: 1048576
  convert_timeout: 30s
converters:
  docx:
    engine: embedded
  md:
    engine: office
history:
  max_entries: 25
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.Limits.ConvertTimeout)
	assert.Equal(t, DocxEngineEmbedded, cfg.Converters.Docx.Engine)
	assert.Equal(t, MDEngineOffice, cfg.Converters.MD.Engine)
	assert.Equal(t, 25, cfg.History.MaxEntries)

	// Untouched sections keep defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DOCX_ENGINE", "embedded")
	t.Setenv("SOFFICE_PATH", "/opt/libreoffice/soffice")
	t.Setenv("MAX_UPLOAD_BYTES", "2097152")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, DocxEngineEmbedded, cfg.Converters.Docx.Engine)
	assert.Equal(t, "/opt/libreoffice/soffice", cfg.Converters.Office.Binary)
	assert.Equal(t, int64(2097152), cfg.Limits.MaxUploadBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero upload limit", func(c *Config) { c.Limits.MaxUploadBytes = 0 }},
		{"tiny convert timeout", func(c *Config) { c.Limits.ConvertTimeout = 10 * time.Millisecond }},
		{"unknown docx engine", func(c *Config) { c.Converters.Docx.Engine = "word" }},
		{"unknown md engine", func(c *Config) { c.Converters.MD.Engine = "pandoc" }},
		{"zero history entries", func(c *Config) { c.History.MaxEntries = 0 }},
		{"unknown log format", func(c *Config) { c.Observability.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
