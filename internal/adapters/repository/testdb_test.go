package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects with the given database/sql driver ("pgx" or
// "postgres"), applies the schema and truncates every table.
func setupTestDB(t *testing.T, driver string) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("DB_USER", "kanso_user"),
		envOr("DB_PASSWORD", "secret"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	require.NoError(t, Migrate(context.Background(), db))
	cleanup(t, db)

	t.Cleanup(func() {
		cleanup(t, db)
		db.Close()
	})
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE trackers, habits, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func seedUser(t *testing.T, db *sqlx.DB, id, email string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'hash')`, id, email)
	require.NoError(t, err, "Failed to create user fixture")
}
