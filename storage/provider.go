package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DefaultPath is the embedded database file used when no connection
// descriptor is configured.
const DefaultPath = "waste_management.db"

// Config selects the backing engine. A non-empty DatabaseURL picks Postgres;
// otherwise the embedded SQLite file at Path is used. The choice is explicit
// so both engines can be exercised in one process.
type Config struct {
	DatabaseURL string
	Path        string
}

// DB is the uniform connection handle. Statements are written once in the
// canonical dialect and rewritten per engine by the selected Dialect.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open selects an engine from cfg, verifies the connection, and bootstraps
// the schema. A failed Postgres connection is returned as-is: silently
// falling back to SQLite would split the data across two stores.
func Open(cfg Config) (*DB, error) {
	var (
		db   *sql.DB
		name string
		err  error
	)
	if cfg.DatabaseURL != "" {
		name = "postgres"
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	} else {
		name = "sqlite"
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		dsn := path
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
	}

	dialect, err := registryDialect(name)
	if err != nil {
		db.Close()
		return nil, err
	}

	d := &DB{sql: db, dialect: dialect}
	if err := d.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema bootstrap: %w", err)
	}
	logrus.WithField("engine", name).Debug("storage opened")
	return d, nil
}

func (d *DB) Dialect() string { return d.dialect.Name() }

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	return d.sql.Exec(d.dialect.Adapt(query), args...)
}

func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return d.sql.Query(d.dialect.Adapt(query), args...)
}

func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	return d.sql.QueryRow(d.dialect.Adapt(query), args...)
}

func (d *DB) InsertReturningID(query string, args ...any) (int64, error) {
	return d.dialect.InsertReturningID(d.sql, query, args...)
}

func (d *DB) IsDuplicate(err error) bool { return d.dialect.IsDuplicate(err) }

// Begin starts a transaction carrying the dialect's row boundary capability.
func (d *DB) Begin() (*Tx, error) {
	tx, err := d.sql.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, dialect: d.dialect}, nil
}

type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.Exec(t.dialect.Adapt(query), args...)
}

func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRow(t.dialect.Adapt(query), args...)
}

func (t *Tx) InsertReturningID(query string, args ...any) (int64, error) {
	return t.dialect.InsertReturningID(t.tx, query, args...)
}

// RowScope runs fn inside the per-row failure boundary.
func (t *Tx) RowScope(fn func() error) error {
	return t.dialect.RowScope(t.tx, fn)
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Maps drains rows into column-name keyed maps, the row shape every read
// operation returns regardless of engine.
func Maps(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			m[c] = v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
