// Package repotest builds throwaway sqlite databases shaped like the rating
// submission store.
package repotest

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	dbbuilder "github.com/godilite/camps-trends/pkg/database"
)

const Schema = `
	CREATE TABLE teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		team_id TEXT REFERENCES teams(id)
	);
	CREATE TABLE engagement_ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		category TEXT NOT NULL,
		rating_date DATETIME NOT NULL,
		rating INTEGER NOT NULL
	);
`

// NewDB opens a single-connection in-memory database with the rating schema.
func NewDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithConnMaxLifetime(0),
		dbbuilder.WithConnMaxIdleTime(0),
	)
	require.NoError(tb, err)
	tb.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(tb, err)
	return db
}

func AddTeam(tb testing.TB, db *sql.DB, teamID string, employeeIDs ...string) {
	tb.Helper()

	_, err := db.Exec(`INSERT INTO teams (id, name) VALUES (?, ?)`, teamID, "Team "+teamID)
	require.NoError(tb, err)
	for _, id := range employeeIDs {
		_, err := db.Exec(`INSERT INTO employees (id, name, team_id) VALUES (?, ?, ?)`, id, "Employee "+id, teamID)
		require.NoError(tb, err)
	}
}

func AddRating(tb testing.TB, db *sql.DB, employeeID, category string, date time.Time, value int) {
	tb.Helper()

	_, err := db.Exec(`INSERT INTO engagement_ratings (employee_id, category, rating_date, rating) VALUES (?, ?, ?, ?)`,
		employeeID, category, date.UTC(), value)
	require.NoError(tb, err)
}
