package testhelper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yuku/pgcrud"
)

// GetTestConfig returns a pgcrud.Config for the test server.
// It uses PG* / DB_* environment variables, falling back to a local server.
func GetTestConfig(t testing.TB) pgcrud.Config {
	t.Helper()

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", getEnvOrDefault("PGPORT", "5432")))
	require.NoError(t, err, "invalid test database port")

	return pgcrud.Config{
		Host:             getEnvOrDefault("DB_HOST", getEnvOrDefault("PGHOST", "localhost")),
		Port:             port,
		Database:         getEnvOrDefault("DB_NAME", getEnvOrDefault("PGDATABASE", "postgres")),
		Username:         getEnvOrDefault("DB_USER", getEnvOrDefault("PGUSER", "postgres")),
		Password:         getEnvOrDefault("DB_PASSWORD", getEnvOrDefault("PGPASSWORD", "postgres")),
		MinConnections:   1,
		MaxConnections:   4,
		SSLMode:          getEnvOrDefault("PGSSLMODE", "disable"),
		AdditionalParams: "connect_timeout=5",
	}
}

// NewManager builds a Manager against the test server and closes it when
// the test ends. The test is skipped under -short or when PostgreSQL is not
// reachable.
func NewManager(t testing.TB, mutate func(*pgcrud.Config)) *pgcrud.Manager {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := GetTestConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := pgcrud.New(ctx, cfg, pgcrud.WithLogger(zerolog.New(zerolog.NewTestWriter(t))))
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// TableName returns a table name unique to this test run.
func TableName(t testing.TB, prefix string) string {
	t.Helper()
	b := make([]byte, 4)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return fmt.Sprintf("%s_%s", strings.ToLower(prefix), hex.EncodeToString(b))
}

// CreateUsersTable creates a users-like table (id SERIAL, name, email) and
// drops it when the test ends.
func CreateUsersTable(t testing.TB, m *pgcrud.Manager) string {
	t.Helper()
	table := TableName(t, "users")
	err := m.CreateTable(context.Background(), table, []pgcrud.Column{
		{Name: "id", Type: "SERIAL PRIMARY KEY"},
		{Name: "name", Type: "TEXT NOT NULL"},
		{Name: "email", Type: "TEXT UNIQUE"},
	})
	require.NoError(t, err, "failed to create table")
	DropOnCleanup(t, m, table)
	return table
}

// DropOnCleanup drops table when the test ends.
func DropOnCleanup(t testing.TB, m *pgcrud.Manager, table string) {
	t.Helper()
	t.Cleanup(func() {
		// Registered after NewManager's Close, so it runs first.
		if _, err := m.Execute(context.Background(), "DROP TABLE IF EXISTS "+table, false); err != nil {
			t.Logf("failed to drop table %s: %v", table, err)
		}
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
