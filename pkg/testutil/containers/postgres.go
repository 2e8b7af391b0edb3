//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// registrySchema provisions the search view's backing table plus the audit
// trail. Production runs against a real view over the registry; tests use a
// plain table with the same name and columns.
const registrySchema = `
CREATE TABLE v_person_search (
	id               TEXT PRIMARY KEY,
	identifier       TEXT NOT NULL DEFAULT '',
	first_name       TEXT NOT NULL DEFAULT '',
	last_name        TEXT NOT NULL DEFAULT '',
	gender           TEXT NOT NULL DEFAULT '',
	date_of_birth    TEXT,
	phone            TEXT NOT NULL DEFAULT '',
	phone_normalized TEXT,
	region_code      TEXT NOT NULL DEFAULT '',
	region_name      TEXT NOT NULL DEFAULT '',
	subregion        TEXT NOT NULL DEFAULT '',
	group_name       TEXT NOT NULL DEFAULT '',
	organization     TEXT NOT NULL DEFAULT '',
	search_name      TEXT NOT NULL DEFAULT '',
	phonetic_code    TEXT NOT NULL DEFAULT '',
	source_record_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE audit_events (
	id          BIGSERIAL PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	result_type TEXT NOT NULL DEFAULT '',
	criteria    TEXT NOT NULL DEFAULT '',
	results     INT NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// registry schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("smartsearch"),
		tcpostgres.WithUsername("smartsearch"),
		tcpostgres.WithPassword("smartsearch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, registrySchema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DB: db}
	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
