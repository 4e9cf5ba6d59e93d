package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgresDialect numbers canonical placeholders; the engine already speaks
// the rest of the canonical dialect (RETURNING, column-level upsert).
type postgresDialect struct{}

func newPostgresDialect() Dialect { return postgresDialect{} }

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Adapt(query string) string {
	if !strings.Contains(query, "%s") {
		return query
	}
	var b strings.Builder
	n := 0
	for {
		i := strings.Index(query, "%s")
		if i < 0 {
			b.WriteString(query)
			return b.String()
		}
		n++
		b.WriteString(query[:i])
		fmt.Fprintf(&b, "$%d", n)
		query = query[i+2:]
	}
}

func (d postgresDialect) InsertReturningID(q execQueryer, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRow(d.Adapt(query), args...).Scan(&id)
	return id, err
}

func (postgresDialect) RowScope(tx *sql.Tx, fn func() error) error {
	if _, err := tx.Exec("SAVEPOINT import_row"); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.Exec("ROLLBACK TO SAVEPOINT import_row"); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %v (row error: %w)", rbErr, err)
		}
		return err
	}
	_, err := tx.Exec("RELEASE SAVEPOINT import_row")
	return err
}

func (postgresDialect) IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
