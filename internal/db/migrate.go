package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

const migrationsDirName = "migrations"

// Migrate applies every pending .sql file from the migrations directory
// in lexical order. Applied filenames are tracked in schema_migrations
// so reruns are safe. A missing directory is not an error.
func Migrate(db *gorm.DB) error {
	dir, err := locateMigrations()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`).Error; err != nil {
		return err
	}

	names, err := pendingMigrations(db, dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		contents, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		sql := strings.TrimSpace(string(contents))
		if sql == "" {
			continue
		}
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if err := db.Exec(
			"INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)",
			name, time.Now().UTC(),
		).Error; err != nil {
			return err
		}
	}

	return nil
}

func pendingMigrations(db *gorm.DB, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var count int64
		err := db.Raw("SELECT COUNT(1) FROM schema_migrations WHERE filename = ?", entry.Name()).
			Scan(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// locateMigrations walks up from the working directory so the binary
// can run from the repo root or from cmd/agile-board during development.
func locateMigrations() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, migrationsDirName)
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
