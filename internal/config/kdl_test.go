package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_FullDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "foreman-mcp.kdl", `
foreman {
    url "https://foreman.example.com"
    username "operator"
    password "s3cret"
    insecure true
    timeout "45s"
}
server {
    host "0.0.0.0"
    port 8080
    json-response true
}
log {
    level "debug"
    format "json"
}
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://foreman.example.com", cfg.ForemanURL)
	assert.Equal(t, "operator", cfg.Username)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.JSONResponse)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFile_PartialDocumentKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "foreman-mcp.kdl", `
foreman {
    url "https://foreman.example.com"
}
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://foreman.example.com", cfg.ForemanURL)
	assert.Equal(t, DefaultUsername, cfg.Username)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.kdl"))
	require.Error(t, err)
}

func TestLoadFile_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "foreman-mcp.kdl", `
foreman {
    url "https://foreman.example.com"
    timeout "soon"
}
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	writeConfig(t, configHome, filepath.Join(UserConfigDir, UserConfigFile), `
foreman {
    url "https://user.example.com"
    username "useruser"
}
server {
    port 4000
}
`)

	projectDir := t.TempDir()
	writeConfig(t, projectDir, ProjectConfigFile, `
foreman {
    url "https://project.example.com"
}
`)

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "https://project.example.com", cfg.ForemanURL, "project config wins")
	assert.Equal(t, "useruser", cfg.Username, "user config survives where project is silent")
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoad_NoFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, cfg.ForemanURL)
	assert.Equal(t, DefaultPort, cfg.Port)
}
