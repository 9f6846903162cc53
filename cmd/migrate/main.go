// Command migrate applies the SQL files under migrations/ in version
// order. Each file is applied at most once; a checksum guards against
// editing an already-applied migration, and an advisory lock keeps two
// migrators from running concurrently.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"invoice-engine/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// migratorLockID is arbitrary but must be stable across releases.
const migratorLockID = 9148304

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()

	conn := acquireLock(ctx, pool)
	defer conn.Release()

	setupSchemaMigrations(ctx, pool)

	for _, filename := range discoverMigrations() {
		applyMigration(ctx, pool, filename)
	}

	log.Println("[DONE] all migrations processed")
}

func acquireLock(ctx context.Context, pool *pgxpool.Pool) *pgxpool.Conn {
	lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := pool.Acquire(lockCtx)
	if err != nil {
		log.Fatalf("[LOCK] failed to acquire connection: %v", err)
	}

	var locked bool
	if err := conn.QueryRow(lockCtx, "SELECT pg_try_advisory_lock($1)", migratorLockID).Scan(&locked); err != nil {
		log.Fatalf("[LOCK] failed to query advisory lock: %v", err)
	}
	if !locked {
		log.Fatalf("[LOCK] another migrator is currently running")
	}
	return conn
}

func setupSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		log.Fatalf("[ERROR] failed to create schema_migrations table: %v", err)
	}
}

func discoverMigrations() []string {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		log.Fatalf("[DISCOVER] failed to read migrations directory: %v", err)
	}

	var filenames []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := extractVersion(entry.Name())
		if seen[version] {
			log.Fatalf("[DISCOVER] duplicate version: %s", version)
		}
		seen[version] = true
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames
}

func extractVersion(filename string) string {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		log.Fatalf("[DISCOVER] invalid migration filename %s, expected NNN_description.sql", filename)
	}
	return parts[0]
}

func checksumFile(filename string) string {
	content, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		log.Fatalf("[ERROR] failed to read %s for checksum: %v", filename, err)
	}
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) {
	version := extractVersion(filename)
	checksum := checksumFile(filename)

	var existing string
	err := pool.QueryRow(ctx,
		"SELECT checksum FROM schema_migrations WHERE version = $1", version,
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			log.Fatalf("[ERROR] checksum mismatch for %s: recorded %s, file %s", filename, existing, checksum)
		}
		log.Printf("[SKIP] %s", filename)
		return
	case errors.Is(err, pgx.ErrNoRows):
		// not yet applied
	default:
		log.Fatalf("[ERROR] failed to query schema_migrations for %s: %v", filename, err)
	}

	sqlBytes, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		log.Fatalf("[ERROR] failed to read migration %s: %v", filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("[ERROR] failed to begin transaction for %s: %v", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		log.Fatalf("[ERROR] failed to execute %s: %v", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum,
	); err != nil {
		log.Fatalf("[ERROR] failed to record %s: %v", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("[ERROR] failed to commit %s: %v", filename, err)
	}

	log.Printf("[APPLY] %s", filename)
}
