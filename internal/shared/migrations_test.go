package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if len(splitStatements(m.SQL)) == 0 {
				t.Errorf("migration %s has no statements", m.Name)
			}
		}
	})

	t.Run("RunMigrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT service, access_token FROM oauth_tokens LIMIT 1"); err != nil {
			t.Errorf("oauth_tokens table should exist after migrations: %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	tc := []struct {
		name   string
		script string
		want   int
	}{
		{name: "single statement", script: "CREATE TABLE a (id INTEGER);", want: 1},
		{name: "comments only", script: "-- nothing here\n-- still nothing", want: 0},
		{name: "two statements with comments", script: "CREATE TABLE a (id INTEGER); -- first\nCREATE TABLE b (id INTEGER);", want: 2},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(splitStatements(tt.script)); got != tt.want {
				t.Errorf("splitStatements() returned %d statements, want %d", got, tt.want)
			}
		})
	}
}
