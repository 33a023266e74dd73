// package repositories provides the sqlite persistence layer.
//
// The only persisted state is the OAuth token cache; sync state stays in memory.
package repositories

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/monthly/internal/shared"
)

// Open opens (creating if needed) the database at path and applies pending migrations.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
