package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Server.URL)
	assert.Equal(t, 300*time.Millisecond, cfg.Capture.ScanInterval)
	assert.Equal(t, 45*time.Second, cfg.Capture.Cooldown)
	assert.Equal(t, 0.5, cfg.Capture.Threshold)
	assert.Equal(t, "deepface", cfg.Provider.Kind)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: https://attendance.school.example
  api_key: cm_secret
capture:
  scan_interval: 1s
  cooldown: 90s
  threshold: 0.4
camera:
  snapshot_url: http://camera.local/snapshot.jpg
provider:
  kind: mock
queue_path: /var/lib/classmark/queue.json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://attendance.school.example", cfg.Server.URL)
	assert.Equal(t, "cm_secret", cfg.Server.APIKey)
	assert.Equal(t, time.Second, cfg.Capture.ScanInterval)
	assert.Equal(t, 90*time.Second, cfg.Capture.Cooldown)
	assert.Equal(t, 0.4, cfg.Capture.Threshold)
	assert.Equal(t, "http://camera.local/snapshot.jpg", cfg.Camera.SnapshotURL)
	assert.Equal(t, "mock", cfg.Provider.Kind)
	assert.Equal(t, "/var/lib/classmark/queue.json", cfg.QueuePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: http://from-file.example
`), 0o644))

	t.Setenv("CLASSMARK_SERVER_URL", "http://from-env.example")
	t.Setenv("CLASSMARK_API_KEY", "cm_env_key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env.example", cfg.Server.URL)
	assert.Equal(t, "cm_env_key", cfg.Server.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
