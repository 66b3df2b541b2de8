package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/lopezator/migrator"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate migrates the database to the newest migration.
func Migrate(db *sql.DB) error {
	m, err := newMigrator()
	if err != nil {
		return err
	}

	if err := m.Migrate(db); err != nil {
		return fmt.Errorf("error while migrating: %w", err)
	}
	return nil
}

// Pending returns all pending migrations.
func Pending(db *sql.DB) ([]*migrator.Migration, error) {
	m, err := newMigrator()
	if err != nil {
		return nil, err
	}

	pending, err := m.Pending(db)
	if err != nil {
		return nil, fmt.Errorf("error while querying for pending migrations: %w", err)
	}

	pm := make([]*migrator.Migration, 0, len(pending))
	for _, p := range pending {
		pm = append(pm, p.(*migrator.Migration))
	}
	return pm, nil
}

func newMigrator() (*migrator.Migrator, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	m, err := migrator.New(migrator.Migrations(migrations...))
	if err != nil {
		return nil, fmt.Errorf("error while loading migrations: %w", err)
	}
	return m, nil
}

// loadMigrations builds one migration per embedded SQL file. File
// names order the migrations; fs.Glob returns them sorted.
func loadMigrations() ([]interface{}, error) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("error listing migration files: %w", err)
	}

	migrations := make([]interface{}, 0, len(files))
	for _, file := range files {
		stmts, err := fs.ReadFile(migrationFiles, file)
		if err != nil {
			return nil, fmt.Errorf("error reading migration file: %w", err)
		}
		migrations = append(migrations, &migrator.Migration{
			Name: file,
			Func: func(tx *sql.Tx) error {
				_, err := tx.Exec(string(stmts))
				return err
			},
		})
	}
	return migrations, nil
}
