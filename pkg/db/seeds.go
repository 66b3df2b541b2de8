package db

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DefaultCurrentTime is the application time a freshly seeded database
// starts at. The auction data set is from late 2001, so the default
// falls inside the window where most listings are open.
const DefaultCurrentTime = "2001-12-20 00:00:01"

// Seed initializes the mutable application state. It is idempotent and
// safe to run on an already seeded database.
func Seed(db *sql.DB) error {
	dbx := NewDBx(db)
	tx, err := dbx.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := seedCurrentTime(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func seedCurrentTime(tx *sqlx.Tx) error {
	var exists bool
	if err := tx.Get(&exists, "SELECT EXISTS(SELECT 1 FROM currenttime)"); err != nil {
		return fmt.Errorf("error checking for current time row: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := tx.Exec("INSERT INTO currenttime (time) VALUES ($1)", DefaultCurrentTime); err != nil {
		return fmt.Errorf("error seeding current time: %w", err)
	}
	return nil
}
