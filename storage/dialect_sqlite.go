package storage

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// sqliteDialect rewrites canonical statements for the embedded engine.
//
// The upsert rewrite is lossy: ON CONFLICT ... DO UPDATE SET updates only the
// listed columns, while INSERT OR REPLACE replaces the whole row, so any
// column missing from the INSERT's value list falls back to its default
// instead of keeping its stored value. Reconciliation paths that rely on
// partial-column conflict updates should run against Postgres.
type sqliteDialect struct{}

func newSQLiteDialect() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return "sqlite" }

var (
	returningRe = regexp.MustCompile(`(?i)\s+RETURNING\s+\w+`)
	conflictRe  = regexp.MustCompile(`(?is)\)\s*ON\s+CONFLICT\s*\([^)]*\)\s*DO\s+UPDATE\s+SET[^;]*`)
)

func (sqliteDialect) Adapt(query string) string {
	query = strings.ReplaceAll(query, "%s", "?")
	query = returningRe.ReplaceAllString(query, "")
	if strings.Contains(strings.ToUpper(query), "ON CONFLICT") {
		query = conflictRe.ReplaceAllString(query, ") ")
		query = strings.Replace(query, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	}
	return query
}

func (d sqliteDialect) InsertReturningID(q execQueryer, query string, args ...any) (int64, error) {
	res, err := q.Exec(d.Adapt(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (sqliteDialect) RowScope(tx *sql.Tx, fn func() error) error {
	// A constraint violation does not invalidate a SQLite transaction,
	// so each row is already isolated.
	return fn()
}

func (sqliteDialect) IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
