package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/kompas/kompas/internal/config"
)

type migrationFile struct {
	version int
	name    string
	path    string
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	if err := ensureSchemaMigrations(db); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		if err := applyUp(db, cfg.Database.MigrationsPath); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("Migration up completed successfully")
	case "down":
		if err := applyDown(db, cfg.Database.MigrationsPath); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("Migration down completed successfully")
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

func ensureSchemaMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

// loadMigrationFiles collects NNNN_name.<kind>.sql files sorted by version
func loadMigrationFiles(dir, kind string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations dir %s: %w", dir, err)
	}

	var files []migrationFile
	suffix := "." + kind + ".sql"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, suffix), "_", 2)
		if len(parts) != 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		files = append(files, migrationFile{
			version: version,
			name:    parts[1],
			path:    filepath.Join(dir, name),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applyUp(db *sql.DB, dir string) error {
	files, err := loadMigrationFiles(dir, "up")
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, f := range files {
		if applied[f.version] {
			continue
		}
		err := runMigration(db, f, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, f.version, f.name)
		if err != nil {
			return err
		}
		log.Printf("applied %04d_%s", f.version, f.name)
	}
	return nil
}

// applyDown rolls back the most recently applied migration only
func applyDown(db *sql.DB, dir string) error {
	files, err := loadMigrationFiles(dir, "down")
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if !applied[f.version] {
			continue
		}
		if err := runMigration(db, f, `DELETE FROM schema_migrations WHERE version = $1`, f.version); err != nil {
			return err
		}
		log.Printf("rolled back %04d_%s", f.version, f.name)
		return nil
	}
	return nil
}

func runMigration(db *sql.DB, f migrationFile, bookkeeping string, args ...interface{}) error {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration %04d_%s failed: %w", f.version, f.name, err)
	}
	if _, err := tx.Exec(bookkeeping, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("bookkeeping for %04d_%s failed: %w", f.version, f.name, err)
	}
	return tx.Commit()
}
