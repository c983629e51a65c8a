package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: postgres
  postgres:
    url: postgres://localhost/weekdump
nats:
  url: nats://localhost:4222
poll:
  interval_seconds: 10
session:
  group_id: g1
  user_id: alice
  game_type: comment
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/weekdump", cfg.Store.Postgres.URL)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, 10*time.Second, cfg.PollInterval())
	assert.Equal(t, "g1", cfg.Session.GroupID)
	assert.Equal(t, "comment", cfg.Session.GameType)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  appwrite:
    endpoint: https://file.example/v1
session:
  group_id: from-file
`)
	t.Setenv("WEEKDUMP_ENDPOINT", "https://env.example/v1")
	t.Setenv("WEEKDUMP_GROUP_ID", "from-env")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/v1", cfg.Store.Appwrite.Endpoint)
	assert.Equal(t, "from-env", cfg.Session.GroupID)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "appwrite", cfg.Store.Backend)
	assert.Equal(t, "voting", cfg.Session.GameType)
	assert.Zero(t, cfg.PollInterval(), "zero interval means the reconciler default applies")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
