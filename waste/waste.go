// Package waste is the product facade: it owns the storage handle and
// exposes record/schedule/liquid-waste access plus the spreadsheet exchange
// paths consumed by whatever transport sits on top.
package waste

import (
	"fmt"

	"wastetrack/storage"
	"wastetrack/tabular"
)

type Service struct {
	Config *Config
	DB     *storage.DB
}

type Option func(*Service)

func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.Config = cfg }
}

// WithDB injects an already-open handle, bypassing engine selection.
func WithDB(db *storage.DB) Option {
	return func(s *Service) { s.DB = db }
}

func New(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.Config == nil {
		s.Config = &Config{}
	}
	if s.DB == nil {
		db, err := storage.Open(storage.Config{
			DatabaseURL: s.Config.DatabaseURL,
			Path:        s.Config.SQLitePath,
		})
		if err != nil {
			return nil, err
		}
		s.DB = db
	}
	return s, nil
}

func (s *Service) Close() error { return s.DB.Close() }

func (s *Service) Records() storage.RecordRepo          { return s.DB.Records() }
func (s *Service) Schedules() storage.ScheduleRepo      { return s.DB.Schedules() }
func (s *Service) LiquidWaste() storage.LiquidWasteRepo { return s.DB.LiquidWaste() }

// ImportTabular merges an uploaded table of rows into the records table.
// format is "spreadsheet" or "delimited-text".
func (s *Service) ImportTabular(content []byte, format string) (*tabular.Outcome, error) {
	return tabular.Import(s.DB, content, format)
}

// ImportSpreadsheet merges an uploaded workbook into the records table and
// always reports a per-row outcome; only an unreadable file errors.
func (s *Service) ImportSpreadsheet(content []byte) (*tabular.Outcome, error) {
	return tabular.ImportSpreadsheet(s.DB, content)
}

// ImportDelimited is the CSV counterpart of ImportSpreadsheet.
func (s *Service) ImportDelimited(content []byte) (*tabular.Outcome, error) {
	return tabular.ImportDelimited(s.DB, content)
}

// UploadLiquidWaste parses a team intake workbook and replaces that month's
// lines. Returns the detected year-month and the number of lines stored.
func (s *Service) UploadLiquidWaste(content []byte) (string, int, error) {
	yearMonth, lines, err := tabular.ParseLiquidWorkbook(content)
	if err != nil {
		return "", 0, err
	}
	if err := s.DB.LiquidWaste().ReplaceMonth(yearMonth, lines); err != nil {
		return "", 0, fmt.Errorf("replace %s: %w", yearMonth, err)
	}
	return yearMonth, len(lines), nil
}

func (s *Service) ExportRecords() ([]byte, error) {
	return tabular.ExportRecords(s.DB)
}

func (s *Service) ExportFiltered(rows []map[string]any) ([]byte, error) {
	return tabular.ExportFiltered(rows)
}

func (s *Service) ExportCostSettlement(data tabular.CostSettlement) ([]byte, error) {
	return tabular.ExportCostSettlement(data)
}

// Reset clears every table and re-seeds from the JSON backups, the
// administrative "start over" path.
func (s *Service) Reset() error {
	for _, table := range []string{"records", "schedules", "liquid_waste"} {
		if _, err := s.DB.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return s.Seed()
}
