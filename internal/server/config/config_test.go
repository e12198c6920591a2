package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"labelcheck"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, BackendSQLite, c.StorageBackend)
	assert.Equal(t, 8*time.Hour, c.SessionValidityDuration)
	assert.Equal(t, 5*time.Second, c.AuthTimeout)
	assert.Equal(t, 400, c.RecordFlushInterval)
	assert.False(t, c.S3ArchiveEnabled)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("LABELCHECK_ADDR", ":9999")
	t.Setenv("LABELCHECK_BACKEND", BackendPostgres)
	t.Setenv("LABELCHECK_SESSION_TTL", "30m")
	t.Setenv("LABELCHECK_FLUSH_INTERVAL", "1")
	t.Setenv("LABELCHECK_S3_ARCHIVE", "true")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, BackendPostgres, c.StorageBackend)
	assert.Equal(t, 30*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, 1, c.RecordFlushInterval)
	assert.True(t, c.S3ArchiveEnabled)
}

func TestParseEnv_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("LABELCHECK_SESSION_TTL", "soon")
	t.Setenv("LABELCHECK_FLUSH_INTERVAL", "-5")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 8*time.Hour, c.SessionValidityDuration)
	assert.Equal(t, 400, c.RecordFlushInterval)
}

func TestParseJson_OverlaysFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	jc := map[string]any{
		"endpoint_addr_http":        ":7070",
		"storage_backend":           BackendPostgres,
		"database_dsn":              "postgres://u:p@h:5432/db",
		"session_validity_duration": "2h",
		"record_flush_interval":     10,
	}
	b, err := json.Marshal(jc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	resetArgs(t, "-c", path)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
	assert.Equal(t, BackendPostgres, c.StorageBackend)
	assert.Equal(t, "postgres://u:p@h:5432/db", c.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, c.SessionValidityDuration)
	assert.Equal(t, 10, c.RecordFlushInterval)
	// untouched fields keep defaults
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseFlags_Overrides(t *testing.T) {
	resetArgs(t, "-a", ":6060", "-b", BackendPostgres, "-t", "90", "-i", "1")

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, ":6060", c.EndpointAddrHTTP)
	assert.Equal(t, BackendPostgres, c.StorageBackend)
	assert.Equal(t, 90*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, 1, c.RecordFlushInterval)
}
