package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/accelerate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(config.Source{
		File:    "",
		EnvFile: filepath.Join(dir, "missing.env"),
		Getenv:  env(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "accelerate.yaml", `
target: sqlite://from-file.db
directory: motions
log_level: info
listen: ":9000"
lock_ttl: 30s
`)
	envFile := writeFile(t, dir, ".env", "ACCELERATE_TARGET=sqlite://from-dotenv.db\nACCELERATE_LISTEN=:9100\n")

	cfg, err := config.Load(config.Source{
		File:    file,
		EnvFile: envFile,
		Getenv:  env(map[string]string{"ACCELERATE_TARGET": "redis://from-env:6379", "ACCELERATE_METRICS": "true"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "redis://from-env:6379", cfg.Target, "environment beats .env")
	assert.Equal(t, ":9100", cfg.Listen, ".env beats file")
	assert.Equal(t, "motions", cfg.Directory, "file beats defaults")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.True(t, cfg.Metrics)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := config.Load(config.Source{
		File:   filepath.Join(t.TempDir(), "nope.yaml"),
		Getenv: env(nil),
	})
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	tests := []struct {
		name string
		file string
		vars map[string]string
	}{
		{name: "bad yaml", file: "target: [unclosed"},
		{name: "bad log level", file: "log_level: loud"},
		{name: "bad metrics", vars: map[string]string{"ACCELERATE_METRICS": "maybe"}},
		{name: "bad ttl", vars: map[string]string{"ACCELERATE_LOCK_TTL": "soon"}},
		{name: "negative ttl", vars: map[string]string{"ACCELERATE_LOCK_TTL": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := config.Source{EnvFile: missingEnv, Getenv: env(tt.vars)}
			if tt.file != "" {
				src.File = writeFile(t, t.TempDir(), "accelerate.yaml", tt.file)
			} else {
				src.File = writeFile(t, t.TempDir(), "accelerate.yaml", "")
			}
			_, err := config.Load(src)
			assert.Error(t, err)
		})
	}
}
