package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadDefaultsWhenNothingExists(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(LoadOptions{
		Path:      filepath.Join(tmp, "missing.yaml"),
		EnvFile:   filepath.Join(tmp, "missing.env"),
		LookupEnv: noEnv,
	})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayersFileDotenvAndEnvironment(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "matchctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`app_name: Panel
env: staging
feed_url: ws://panel:9000/ws
connect_timeout: 10s
log_level: debug
`), 0o644))
	envFile := filepath.Join(tmp, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MATCHCTL_ENV=prod\nMATCHCTL_LOG_FILE=/tmp/matchctl.log\n"), 0o644))

	env := map[string]string{"MATCHCTL_LOG_LEVEL": "WARN"}
	cfg, err := Load(LoadOptions{
		Path:    path,
		EnvFile: envFile,
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Panel", cfg.AppName)
	assert.Equal(t, "prod", cfg.Env, ".env overrides the file")
	assert.Equal(t, "ws://panel:9000/ws", cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "/tmp/matchctl.log", cfg.LogFile)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides everything")
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	tmp := t.TempDir()
	_, err := Load(LoadOptions{
		Path:    filepath.Join(tmp, "missing.yaml"),
		EnvFile: filepath.Join(tmp, "missing.env"),
		LookupEnv: func(k string) (string, bool) {
			if k == "MATCHCTL_LOG_LEVEL" {
				return "loud", true
			}
			return "", false
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	tmp := t.TempDir()
	_, err := Load(LoadOptions{
		Path:    filepath.Join(tmp, "missing.yaml"),
		EnvFile: filepath.Join(tmp, "missing.env"),
		LookupEnv: func(k string) (string, bool) {
			if k == "MATCHCTL_CONNECT_TIMEOUT" {
				return "soon", true
			}
			return "", false
		},
	})
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: [unterminated\n"), 0o644))

	_, err := Load(LoadOptions{Path: path, EnvFile: filepath.Join(tmp, "none"), LookupEnv: noEnv})
	assert.Error(t, err)
}

func TestNormalizeRejectsNonWebsocketURL(t *testing.T) {
	cfg := Default()
	cfg.FeedURL = "http://localhost:8080/ws"
	_, err := Normalize(cfg)
	assert.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "matchctl.yaml")
	want := Default()
	want.AppName = "Panel"
	want.ConnectTimeout = 7 * time.Second

	require.NoError(t, Save(path, want))
	assert.True(t, Exists(path))

	got, err := Load(LoadOptions{Path: path, EnvFile: filepath.Join(tmp, "none"), LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
