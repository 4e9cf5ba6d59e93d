package storage

import (
	"database/sql"
	"fmt"
)

// Dialect is the statement strategy selected once when a connection is
// opened. Data-access code is written once against the canonical dialect
// (%s placeholders, RETURNING <col>, INSERT ... ON CONFLICT ... DO UPDATE)
// and each Dialect rewrites those statements for its engine.
type Dialect interface {
	Name() string

	// Adapt rewrites a canonical statement into engine-native syntax.
	// Statements that use none of the canonical features pass through
	// unchanged apart from placeholder substitution.
	Adapt(query string) string

	// InsertReturningID runs a canonical INSERT ... RETURNING <id> and
	// reports the generated key. Postgres scans the RETURNING value;
	// SQLite strips the clause and asks the engine for the last insert id.
	InsertReturningID(q execQueryer, query string, args ...any) (int64, error)

	// RowScope runs fn inside a per-row failure boundary so one bad row
	// cannot poison the surrounding transaction. Postgres wraps fn in a
	// savepoint; SQLite needs no checkpoint because a failed insert leaves
	// the transaction usable.
	RowScope(tx *sql.Tx, fn func() error) error

	// IsDuplicate reports whether err is a unique-constraint violation.
	IsDuplicate(err error) bool
}

// execQueryer is the subset of *sql.DB and *sql.Tx the dialects need.
type execQueryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type dialectFactory func() Dialect

var dialectRegistry = make(map[string]dialectFactory)

func RegisterDialect(name string, factory dialectFactory) {
	dialectRegistry[name] = factory
}

func registryDialect(name string) (Dialect, error) {
	f, ok := dialectRegistry[name]
	if !ok {
		return nil, fmt.Errorf("no dialect registered for engine: %s", name)
	}
	return f(), nil
}

func init() {
	RegisterDialect("sqlite", newSQLiteDialect)
	RegisterDialect("postgres", newPostgresDialect)
}
