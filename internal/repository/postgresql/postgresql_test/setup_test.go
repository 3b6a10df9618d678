package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/database"
	"github.com/google/uuid"
)

// baseEmployeesDDL is the subset of the HRIS employees table the roster query reads.
const baseEmployeesDDL = `
CREATE TABLE employees (
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    employee_code     TEXT NOT NULL,
    full_name         TEXT NOT NULL,
    employment_status TEXT NOT NULL DEFAULT 'active',
    deleted_at        TIMESTAMPTZ
)`

// TestDatabaseSetup is a connection scoped to a throwaway schema.
type TestDatabaseSetup struct {
	DB     *database.DB
	admin  *database.DB
	schema string
}

// NewTestDatabase connects to TEST_DATABASE_URL, creates a private schema and
// applies the migrations to it. The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	schema := "dtr_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Fatalf("failed to create schema: %v", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, withSearchPath(dsn, schema), database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		admin.Close()
		t.Fatalf("failed to connect to test schema: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db, admin: admin, schema: schema}
	t.Cleanup(setup.Close)

	if _, err := db.Exec(ctx, baseEmployeesDDL); err != nil {
		t.Fatalf("failed to create employees table: %v", err)
	}
	migration, err := os.ReadFile(migrationPath("0001_biometric_punches.sql"))
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}
	if _, err := db.Exec(ctx, string(migration)); err != nil {
		t.Fatalf("failed to apply migration: %v", err)
	}

	return setup
}

// Close drops the schema and closes both pools.
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = s.admin.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", s.schema))
	s.admin.Close()
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema + ",public"
}

func migrationPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", name)
}
