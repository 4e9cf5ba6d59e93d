package storage

import (
	"database/sql"
	"fmt"
)

var sqliteMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS waste_schema_version (num INTEGER)`,
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slip_no TEXT UNIQUE,
			date TEXT,
			waste_type TEXT,
			amount REAL,
			carrier TEXT,
			vehicle_no TEXT,
			processor TEXT,
			note1 TEXT,
			note2 TEXT,
			category TEXT,
			supplier TEXT,
			status TEXT DEFAULT 'completed',
			is_local INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slip_no ON records(slip_no)`,
		`CREATE INDEX IF NOT EXISTS idx_date ON records(date)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_type ON records(waste_type)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT,
			content TEXT,
			status TEXT DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sched_date ON schedules(date)`,
		`CREATE TABLE IF NOT EXISTS liquid_waste (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			year_month TEXT NOT NULL,
			discharge_date TEXT,
			receive_date TEXT,
			waste_type TEXT,
			content TEXT,
			team TEXT,
			discharger TEXT,
			quantity_ea INTEGER DEFAULT 0,
			amount_kg REAL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lw_ym ON liquid_waste(year_month)`,
		`CREATE INDEX IF NOT EXISTS idx_lw_team ON liquid_waste(team)`,
	},
}

var postgresMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS waste_schema_version (num INTEGER)`,
		`CREATE TABLE IF NOT EXISTS records (
			id SERIAL PRIMARY KEY,
			slip_no TEXT UNIQUE,
			date TEXT,
			waste_type TEXT,
			amount REAL,
			carrier TEXT,
			vehicle_no TEXT,
			processor TEXT,
			note1 TEXT,
			note2 TEXT,
			category TEXT,
			supplier TEXT,
			status TEXT DEFAULT 'completed',
			is_local INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slip_no ON records(slip_no)`,
		`CREATE INDEX IF NOT EXISTS idx_date ON records(date)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_type ON records(waste_type)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id SERIAL PRIMARY KEY,
			date TEXT,
			content TEXT,
			status TEXT DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sched_date ON schedules(date)`,
		`CREATE TABLE IF NOT EXISTS liquid_waste (
			id SERIAL PRIMARY KEY,
			year_month TEXT NOT NULL,
			discharge_date TEXT,
			receive_date TEXT,
			waste_type TEXT,
			content TEXT,
			team TEXT,
			discharger TEXT,
			quantity_ea INTEGER DEFAULT 0,
			amount_kg REAL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lw_ym ON liquid_waste(year_month)`,
		`CREATE INDEX IF NOT EXISTS idx_lw_team ON liquid_waste(team)`,
	},
}

// Migrate applies any pending schema versions. Every statement is
// "create if not exists", so rerunning on an already-built store is a no-op.
func (d *DB) Migrate() error {
	var migrations map[int][]string
	switch d.dialect.Name() {
	case "sqlite":
		migrations = sqliteMigrations
	case "postgres":
		migrations = postgresMigrations
	default:
		return fmt.Errorf("unsupported SQL dialect: %s", d.dialect.Name())
	}

	currentVersion := d.getSchemaVersion()
	maxVersion := 1 // Currently only version 1

	if currentVersion >= maxVersion {
		return nil
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := currentVersion + 1; v <= maxVersion; v++ {
		ops, ok := migrations[v]
		if !ok {
			continue
		}
		for _, op := range ops {
			if _, err := tx.Exec(op); err != nil {
				return fmt.Errorf("migration %d failed: %w", v, err)
			}
		}

		var updateSQL string
		if currentVersion == 0 {
			updateSQL = "INSERT INTO waste_schema_version (num) VALUES (%s)"
		} else {
			updateSQL = "UPDATE waste_schema_version SET num = %s"
		}
		if _, err := tx.Exec(d.dialect.Adapt(updateSQL), v); err != nil {
			return err
		}
		currentVersion = v
	}

	return tx.Commit()
}

func (d *DB) getSchemaVersion() int {
	var version sql.NullInt64
	err := d.sql.QueryRow("SELECT num FROM waste_schema_version LIMIT 1").Scan(&version)
	if err != nil || !version.Valid {
		return 0
	}
	return int(version.Int64)
}
