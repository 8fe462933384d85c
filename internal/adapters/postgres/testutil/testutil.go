package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osot/membership-api/internal/adapters/postgres"
)

// OpenMigratedPool opens a pool against TEST_DATABASE_URL and applies the
// schema. Tests are skipped when the variable is unset so the suite stays
// green without a database.
//
// Tables are truncated up-front, so each test run starts from a clean slate;
// point TEST_DATABASE_URL at a scratch database.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, stmt := range splitStatements(postgres.Schema) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	for _, table := range []string{"idempotency_keys", "uniqueness_reservations"} {
		if _, err := pool.Exec(ctx, "TRUNCATE "+table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return pool
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
