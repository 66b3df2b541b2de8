package db_test

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/db/dbtest"
)

type SchemaTestSuite struct {
	dbtest.Suite
}

func (s *SchemaTestSuite) TestUsers_LocationMustExist() {
	t := s.T()
	tx := s.Begin()
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed("INSERT INTO users (id, rating, location_id) VALUES (:id, :rating, :location_id)")
	require.NoError(t, err)
	defer stmt.Close()

	_, err = stmt.Exec(db.User{Id: "homeless", Rating: "1"})
	require.NoError(t, err)

	_, err = stmt.Exec(db.User{Id: "lost", Rating: "1", LocationId: sql.NullInt64{Int64: 999, Valid: true}})
	requireForeignKeyError(t, err)
}

func (s *SchemaTestSuite) TestItems_RequiredColumns() {
	t := s.T()
	tx := s.Begin()
	defer tx.Rollback()

	_, err := tx.Exec("INSERT INTO locations (id, name) VALUES (1, 'Nowhere')")
	require.NoError(t, err)

	// buy_price is the only nullable money column.
	_, err = tx.Exec(`INSERT INTO items (id, name, currently, first_bid, number_of_bids, location_id, started, ends, description)
		VALUES ('1', 'Lamp', '5.00', '1.00', 0, 1, '2001-12-01 00:00:00', '2001-12-24 00:00:00', '')`)
	require.NoError(t, err)

	_, err = tx.Exec(`INSERT INTO items (id, name, buy_price, first_bid, number_of_bids, location_id, started, ends, description)
		VALUES ('2', 'Lamp', '9.00', '1.00', 0, 1, '2001-12-01 00:00:00', '2001-12-24 00:00:00', '')`)
	requireNotNullError(t, err)
}

func (s *SchemaTestSuite) TestBids_BidderMustExist() {
	t := s.T()
	tx := s.Begin()
	defer tx.Rollback()

	_, err := tx.Exec("INSERT INTO bids (id, bidder_user_id, time, amount) VALUES (1, 'ghost', '2001-12-10 00:00:00', '5.00')")
	requireForeignKeyError(t, err)
}

func requireForeignKeyError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	pgErr := &pgconn.PgError{}
	require.ErrorAs(t, err, &pgErr)
	// https://www.postgresql.org/docs/current/errcodes-appendix.html
	require.Equal(t, "23503", pgErr.Code, "expected foreign key violation")
}

func requireNotNullError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	pgErr := &pgconn.PgError{}
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, "23502", pgErr.Code, "expected not null violation")
}

func TestSchema(t *testing.T) {
	suite.Run(t, new(SchemaTestSuite))
}
