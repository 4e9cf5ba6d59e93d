package waste

import "os"

// Config carries the engine selection. It is passed explicitly so tests can
// run both engines in one process; FromEnv exists for callers that want the
// deployment behavior of reading the process environment.
type Config struct {
	// DatabaseURL selects the networked Postgres engine when non-empty.
	DatabaseURL string
	// SQLitePath is the embedded database file used otherwise.
	SQLitePath string
	// SeedDir is where the JSON backup files for seeding live.
	SeedDir string
}

func FromEnv() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("WASTE_DB_PATH"),
		SeedDir:     os.Getenv("WASTE_SEED_DIR"),
	}
}
