package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+): switch the working directory
// for the duration of the test and restore it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_ValoresPorDefecto(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.JWT.Enabled())
	assert.False(t, cfg.Backup.UploadEnabled())
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.Equal(t, "postgres://postgres:@localhost:5432/inventario?sslmode=disable", cfg.DB.ConnectionString())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_SECRET", "s3cr3t")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BACKUP_S3_ENDPOINT", "localhost:9000")
	t.Setenv("BACKUP_S3_BUCKET", "copias")
	t.Setenv("BACKUP_S3_USE_SSL", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.JWT.Enabled())
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Backup.UploadEnabled())
	assert.True(t, cfg.Backup.S3UseSSL)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
}

func TestLoad_RetencionInvalida(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BACKUP_RETENTION_DAYS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{User: "app", Password: "p@ss:w/rd", Host: "h", Port: 5432, DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@h:5432/inv?sslmode=disable", c.DSN())
}
