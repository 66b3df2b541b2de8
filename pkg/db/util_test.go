package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/db/dbtest"
)

type UtilTestSuite struct {
	dbtest.Suite
}

func (s *UtilTestSuite) TestGetNamedContext() {
	t := s.T()
	tx := s.Begin()
	defer tx.Rollback()

	query := "SELECT :q"
	expected := "ping"
	namedParam := map[string]interface{}{"q": expected}

	var res string
	require.NoError(t, db.GetNamedContext(context.Background(), tx, &res, query, namedParam))
	require.Equal(t, expected, res)

	require.Error(t, db.GetNamedContext(context.Background(), tx, &res, "invalid", namedParam))
}

func (s *UtilTestSuite) TestRunInTransaction_CommitsOnNil() {
	t := s.T()
	ctx := context.Background()

	require.NoError(t, db.RunInTransaction(ctx, s.DB(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec("INSERT INTO countries (id, name) VALUES (998, 'Atlantis')")
		return err
	}))

	var count int
	require.NoError(t, s.DB().Get(&count, "SELECT COUNT(*) FROM countries WHERE id = 998"))
	require.Equal(t, 1, count)
}

func (s *UtilTestSuite) TestRunInTransaction_RollsBackOnError() {
	t := s.T()
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.RunInTransaction(ctx, s.DB(), func(tx *sqlx.Tx) error {
		if _, err := tx.Exec("INSERT INTO countries (id, name) VALUES (999, 'Lemuria')"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, s.DB().Get(&count, "SELECT COUNT(*) FROM countries WHERE id = 999"))
	require.Equal(t, 0, count)
}

func TestUtil(t *testing.T) {
	suite.Run(t, new(UtilTestSuite))
}
