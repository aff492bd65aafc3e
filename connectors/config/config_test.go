package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.API.URL)
	assert.NotEmpty(t, cfg.API.Method)
	assert.Equal(t, 120*time.Second, cfg.Timeout())
	assert.Equal(t, "data/db.json", cfg.Data.LocalFile)
	assert.Equal(t, 10, cfg.Dashboard.TopNCost)
	assert.Equal(t, 10, cfg.Dashboard.TopNHours)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
api:
  url: https://erp.example.com/api/method
  token: tok_abc
  timeout_seconds: 30
dashboard:
  top_n_cost: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com/api/method", cfg.API.URL)
	assert.Equal(t, "tok_abc", cfg.API.Token)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 5, cfg.Dashboard.TopNCost)
	// Unset fields still get defaults.
	assert.NotEmpty(t, cfg.API.Method)
	assert.Equal(t, 10, cfg.Dashboard.TopNHours)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\t:"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
