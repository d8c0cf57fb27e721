package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	unsetenv(t, "STORAGE_BACKEND", "APP_PORT", "EVENTS_SUBJECT", "DB_MAX_IDLE_CONNS")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendDynamoDB, cfg.StorageBackend)
	assert.Equal(t, "note_events", cfg.EventsSubject)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_DEFAULT_REGION", "us-east-1")
	t.Setenv("DYNAMODB_TABLE", "stoic-notes-dev")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "stoic-notes-dev", cfg.Table)
	assert.Equal(t, 7, cfg.DBMaxOpenConns)
}

func TestLoad_InvalidIntegerKeepsDefault(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_MAX_IDLE_CONNS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	doc := "region: ap-southeast-2\ntable: from-file\nstorage_backend: badger\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("CONFIG_FILE", path)
	unsetenv(t, "AWS_REGION", "AWS_DEFAULT_REGION", "STORAGE_BACKEND", "APP_PORT")
	t.Setenv("DYNAMODB_TABLE", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.Equal(t, "from-env", cfg.Table)
	assert.Equal(t, BackendBadger, cfg.StorageBackend)
	assert.Equal(t, "8080", cfg.AppPort)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestIndexNames(t *testing.T) {
	cfg := Config{Table: "stoic-notes-dev"}
	assert.Equal(t, "stoic-notes-dev-userid-noteid-index", cfg.UserIndexName())
	assert.Equal(t, "stoic-notes-dev-notebook-noteid-index", cfg.NotebookIndexName())

	cfg.UserIndex = "by-user"
	cfg.NotebookIndex = "by-notebook"
	assert.Equal(t, "by-user", cfg.UserIndexName())
	assert.Equal(t, "by-notebook", cfg.NotebookIndexName())
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_EmptyDefaultRegionCountsAsUnset(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_DEFAULT_REGION", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Region)
}

func TestMigrateOnOpen(t *testing.T) {
	assert.True(t, Config{AppEnv: "development"}.MigrateOnOpen())
	assert.True(t, Config{}.MigrateOnOpen())
	assert.False(t, Config{AppEnv: "production"}.MigrateOnOpen())
}
