// Package dbtest provides a testify suite backed by a throwaway
// Postgres database.
package dbtest

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/auctionbase/auctionbase/pkg/db"
)

var DatabaseURL = urlFromEnv()

// Suite is a database test suite. Each Suite clones the database given
// by the `AB_DB_URL` environment variable, migrates and seeds the
// clone, and drops it again in the suite teardown. Suites can be run
// in parallel since every suite works on its own clone.
type Suite struct {
	suite.Suite

	maintenanceDB *sqlx.DB

	cloneDB   *sqlx.DB
	cloneName string
}

// DB returns the connection to this suite's database clone.
func (ts *Suite) DB() *sqlx.DB {
	return ts.cloneDB
}

// Begin starts a transaction on the suite's database clone.
func (ts *Suite) Begin() *sqlx.Tx {
	txx, err := ts.DB().Beginx()
	require.NoError(ts.T(), err)
	return txx
}

func (ts *Suite) SetupSuite() {
	t := ts.T()

	base, err := url.Parse(DatabaseURL)
	require.NoError(t, err)
	baseName := strings.TrimPrefix(base.Path, "/")
	ts.cloneName = baseName + "-tmp-" + uuid.NewString()

	// DDL on the clone has to go through a connection to a different
	// database.
	ts.maintenanceDB, err = openMaintenance(base)
	require.NoError(t, err)

	t.Logf("Using database name: %s", ts.cloneName)
	_, err = ts.maintenanceDB.Exec(fmt.Sprintf(
		`CREATE DATABASE %s TEMPLATE %s`,
		pgx.Identifier{ts.cloneName}.Sanitize(),
		pgx.Identifier{baseName}.Sanitize(),
	))
	require.NoError(t, err, "error cloning database %q", baseName)

	cloneURL := *base
	cloneURL.Path = "/" + ts.cloneName
	ts.cloneDB, err = db.Openx(cloneURL.String())
	require.NoError(t, err)

	// The clone might have been created from an older template.
	require.NoError(t, db.Migrate(ts.cloneDB.DB))
	require.NoError(t, db.Seed(ts.cloneDB.DB))
}

func (ts *Suite) TearDownSuite() {
	t := ts.T()
	require.NoError(t, ts.cloneDB.Close())
	_, err := ts.maintenanceDB.Exec(fmt.Sprintf(
		`DROP DATABASE %s WITH (FORCE)`,
		pgx.Identifier{ts.cloneName}.Sanitize(),
	))
	require.NoError(t, err)
	require.NoError(t, ts.maintenanceDB.Close())
}

func openMaintenance(base *url.URL) (*sqlx.DB, error) {
	maintURL := *base
	maintURL.Path = "/postgres"
	mdb, err := db.Openx(maintURL.String())
	if err != nil {
		return nil, fmt.Errorf("error connecting to maintenance (`%s`) database: %w", maintURL.Path, err)
	}
	return mdb, nil
}

func urlFromEnv() string {
	if u, exists := os.LookupEnv("AB_DB_URL"); exists {
		return u
	}
	return "postgres://postgres@localhost/auction-db?sslmode=disable"
}
