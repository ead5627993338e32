package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5010, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.True(t, cfg.Parser.Strict)
	assert.Equal(t, 100, cfg.Parser.MaxVerificationCount)
	assert.Equal(t, 512, cfg.Parser.MaxElementDepth)
	assert.Empty(t, cfg.Postgres.Host)
	assert.Empty(t, cfg.S3.Bucket)
	assert.Equal(t, []string{"*"}, cfg.CorsConfig.AllowedOrigins)
}

func TestLoadConfigFromFile(t *testing.T) {
	configYAML := `
server:
  port: 8085
  contextPath: /aasx
  workers: 2
parser:
  strict: false
  maxVerificationCount: 25
postgres:
  host: db.internal
  dbname: journal
s3:
  bucket: supplementary
  usePathStyle: true
cors:
  allowedOrigins:
    - https://dashboard.example.com
  allowCredentials: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "/aasx", cfg.Server.ContextPath)
	assert.Equal(t, 2, cfg.Server.Workers)
	assert.False(t, cfg.Parser.Strict)
	assert.Equal(t, 25, cfg.Parser.MaxVerificationCount)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "journal", cfg.Postgres.DBName)
	assert.Equal(t, "supplementary", cfg.S3.Bucket)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, []string{"https://dashboard.example.com"}, cfg.CorsConfig.AllowedOrigins)
	assert.True(t, cfg.CorsConfig.AllowCredentials)
	// unset keys keep their defaults
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CorsConfig.AllowedMethods)
	assert.Equal(t, 512, cfg.Parser.MaxElementDepth)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
