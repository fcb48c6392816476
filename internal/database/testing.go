package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/power-rankings/internal/config"
)

// TestConfigEnv names the environment variable pointing at a config file for
// integration tests. Tests that need a database skip when it is unset.
const TestConfigEnv = "POWER_RANKINGS_TEST_CONFIG"

// SetupTestDB connects to the integration database and applies the schema
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigEnv)
	if path == "" {
		t.Skipf("integration test - set %s to a config file with a reachable database", TestConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB truncates the service tables and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.pool.Exec(ctx, "TRUNCATE team_rankings, ranking_runs, matches, teams"); err != nil {
		t.Logf("warning: failed to truncate test tables: %v", err)
	}
	db.Close()
}
