package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type NamedPreparerContext interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// GetNamedContext is like sqlx.GetContext but for named statements.
func GetNamedContext(ctx context.Context, p NamedPreparerContext, dest interface{}, query string, arg interface{}) error {
	st, err := p.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer st.Close()
	return st.GetContext(ctx, dest, arg)
}

// RunInTransaction runs the given callback in a transaction. The
// transaction is committed on a nil return and rolled back on error or
// panic.
func RunInTransaction(ctx context.Context, db *sqlx.DB, cb func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := cb(tx); err != nil {
		return err
	}
	return tx.Commit()
}
