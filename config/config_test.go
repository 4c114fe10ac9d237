package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "./stipend.db", cfg.DB.Path)
	assert.Equal(t, 10, cfg.Workflow.DeadlineDay)
	assert.Equal(t, "Asia/Tokyo", cfg.Calendar.Timezone)
	assert.Len(t, cfg.CORS.AllowedOrigins, 2)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STIPEND_HTTP_PORT", "9090")
	t.Setenv("STIPEND_DB_PATH", "/tmp/test.db")
	t.Setenv("STIPEND_WORKFLOW_DEADLINE_DAY", "5")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DB.Path)
	assert.Equal(t, 5, cfg.Workflow.DeadlineDay)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stipend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7000
master:
  file: ./master.yaml
calendar:
  timezone: UTC
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, "./master.yaml", cfg.Master.File)

	loc, err := cfg.Calendar.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }},
		{"db path", func(c *Config) { c.DB.Path = "" }},
		{"deadline day", func(c *Config) { c.Workflow.DeadlineDay = 31 }},
		{"timezone", func(c *Config) { c.Calendar.Timezone = "Nowhere/City" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			tt.mod(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
