package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/syllabus/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.ValidateRequests)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".syllabus/drafts", cfg.Store.Path)
	assert.Equal(t, 30*time.Second, cfg.Repository.Timeout)
	assert.Equal(t, "syllabus:draft:", cfg.Store.Redis.Prefix)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syllabus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  addr: ":9000"
repository:
  url: https://courses.example.com/api
  token: file-token
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 24h
`), 0644))

	t.Setenv("SYLLABUS_REPOSITORY_TOKEN", "env-token")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":7000", cfg.Server.Addr, "flag wins over file")
	assert.Equal(t, "env-token", cfg.Repository.Token, "env wins over file")
	assert.Equal(t, "https://courses.example.com/api", cfg.Repository.URL)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
}

func TestLoad_UnchangedFlagKeepsFileValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syllabus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SYLLABUS_STORE_BACKEND", "postgres")
	_, err := config.Load("", nil)
	assert.ErrorContains(t, err, "unknown store backend")

	t.Setenv("SYLLABUS_STORE_BACKEND", "memory")
	t.Setenv("SYLLABUS_LOG_LEVEL", "loud")
	_, err = config.Load("", nil)
	assert.ErrorContains(t, err, "invalid log level")
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
