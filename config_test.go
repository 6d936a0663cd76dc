package pgcrud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_MIN_CONNECTIONS", "DB_MAX_CONNECTIONS", "DB_SSLMODE", "DB_PARAMS",
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "") // registers the restore
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestConfig_ConnString(t *testing.T) {
	cfg := Config{
		Host:           "db.internal",
		Port:           6543,
		Database:       "crud_db",
		Username:       "app user",
		Password:       "p@ss:w/rd",
		MinConnections: 2,
		MaxConnections: 10,
		SSLMode:        "disable",
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	require.NoError(t, err)
	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(6543), poolCfg.ConnConfig.Port)
	assert.Equal(t, "crud_db", poolCfg.ConnConfig.Database)
	assert.Equal(t, "app user", poolCfg.ConnConfig.User)
	assert.Equal(t, "p@ss:w/rd", poolCfg.ConnConfig.Password)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Equal(t, int32(10), poolCfg.MaxConns)
}

func TestConfig_ConnStringAdditionalParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdditionalParams = "application_name=pgcrud_test"

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	require.NoError(t, err)
	assert.Equal(t, "pgcrud_test", poolCfg.ConnConfig.RuntimeParams["application_name"])
}

func TestConfig_PoolBoundsPassThrough(t *testing.T) {
	// Bounds are not checked by Config; pgxpool rejects what it cannot use.
	cfg := DefaultConfig()
	cfg.MaxConnections = 0

	_, err := pgxpool.ParseConfig(cfg.ConnString())
	assert.Error(t, err)
}

func TestConfig_StringRedactsPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = "hunter2"

	assert.NotContains(t, cfg.String(), "hunter2")
	assert.Contains(t, cfg.ConnString(), "hunter2")
	assert.Contains(t, cfg.String(), "localhost:5432/testdb")
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetEnv(t, configEnvVars...)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	unsetEnv(t, configEnvVars...)
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("DB_NAME", "crud_db")
	t.Setenv("DB_USER", "crud")
	t.Setenv("DB_PASSWORD", "db_123")
	t.Setenv("DB_MIN_CONNECTIONS", "2")
	t.Setenv("DB_MAX_CONNECTIONS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Host:           "postgres",
		Port:           15432,
		Database:       "crud_db",
		Username:       "crud",
		Password:       "db_123",
		MinConnections: 2,
		MaxConnections: 10,
		SSLMode:        "disable",
	}, cfg)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	unsetEnv(t, configEnvVars...)
	t.Setenv("DB_USER", "from_env")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=from_file\nDB_USER=ignored\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.Database)
	assert.Equal(t, "from_env", cfg.Username, "env file must not override the environment")
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "DB_PORT", "abc"},
		{"port out of range", "DB_PORT", "70000"},
		{"max connections not a number", "DB_MAX_CONNECTIONS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, configEnvVars...)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_UnvalidatedPoolBounds(t *testing.T) {
	unsetEnv(t, configEnvVars...)
	t.Setenv("DB_MIN_CONNECTIONS", "10")
	t.Setenv("DB_MAX_CONNECTIONS", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MinConnections)
	assert.Equal(t, 2, cfg.MaxConnections)
}
