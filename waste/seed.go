package waste

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"wastetrack/storage"
)

// Backup files produced by the deployment-to-local sync.
const (
	recordsSeedFile  = "render_records.json"
	scheduleSeedFile = "local_schedules.json"
	liquidSeedFile   = "local_liquid_waste.json"
)

type seedRecord struct {
	SlipNo    string  `json:"slip_no"`
	Date      string  `json:"date"`
	WasteType string  `json:"waste_type"`
	Amount    float64 `json:"amount"`
	Carrier   string  `json:"carrier"`
	VehicleNo string  `json:"vehicle_no"`
	Processor string  `json:"processor"`
	Note1     string  `json:"note1"`
	Note2     string  `json:"note2"`
	Category  string  `json:"category"`
	Supplier  string  `json:"supplier"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

type seedSchedule struct {
	Date    string `json:"date"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type seedLiquidLine struct {
	YearMonth     string  `json:"year_month"`
	DischargeDate string  `json:"discharge_date"`
	ReceiveDate   string  `json:"receive_date"`
	WasteType     string  `json:"waste_type"`
	Content       string  `json:"content"`
	Team          string  `json:"team"`
	Discharger    string  `json:"discharger"`
	QuantityEA    int     `json:"quantity_ea"`
	AmountKG      float64 `json:"amount_kg"`
}

// Seed fills empty tables from the JSON backup files in Config.SeedDir.
// Records are also re-seeded when existing rows lost their amount or date in
// an earlier sync; that path goes through the conflict-updating upsert so
// broken rows are repaired rather than skipped.
func (s *Service) Seed() error {
	if err := s.seedRecords(); err != nil {
		return err
	}
	if err := s.seedSchedules(); err != nil {
		return err
	}
	return s.seedLiquidWaste()
}

func (s *Service) seedRecords() error {
	repo := s.Records()
	count, err := repo.Count()
	if err != nil {
		return err
	}
	needFix, err := repo.CountNeedingFix()
	if err != nil {
		return err
	}
	if count > 0 && needFix == 0 {
		return nil
	}

	var recs []seedRecord
	ok, err := s.loadSeedFile(recordsSeedFile, &recs)
	if err != nil || !ok {
		return err
	}
	for _, r := range recs {
		rec := storage.Record{
			SlipNo:    r.SlipNo,
			Date:      r.Date,
			WasteType: r.WasteType,
			Amount:    r.Amount,
			Carrier:   r.Carrier,
			VehicleNo: r.VehicleNo,
			Processor: r.Processor,
			Note1:     r.Note1,
			Note2:     r.Note2,
			Category:  r.Category,
			Supplier:  r.Supplier,
			Status:    r.Status,
		}
		if err := repo.UpsertSeed(rec, r.CreatedAt); err != nil {
			return fmt.Errorf("seed record %s: %w", r.SlipNo, err)
		}
	}
	logrus.WithField("count", len(recs)).Info("records seeded")
	return nil
}

func (s *Service) seedSchedules() error {
	rows, err := s.Schedules().List()
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	var items []seedSchedule
	ok, err := s.loadSeedFile(scheduleSeedFile, &items)
	if err != nil || !ok {
		return err
	}
	schedules := make([]storage.Schedule, 0, len(items))
	for _, it := range items {
		schedules = append(schedules, storage.Schedule{
			Date:    it.Date,
			Content: it.Content,
			Status:  it.Status,
		})
	}
	n, err := s.Schedules().BulkInsert(schedules)
	if err != nil {
		return err
	}
	logrus.WithField("count", n).Info("schedules seeded")
	return nil
}

func (s *Service) seedLiquidWaste() error {
	rows, err := s.LiquidWaste().List("")
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	var items []seedLiquidLine
	ok, err := s.loadSeedFile(liquidSeedFile, &items)
	if err != nil || !ok {
		return err
	}
	lines := make([]storage.LiquidLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, storage.LiquidLine{
			YearMonth:     it.YearMonth,
			DischargeDate: it.DischargeDate,
			ReceiveDate:   it.ReceiveDate,
			WasteType:     it.WasteType,
			Content:       it.Content,
			Team:          it.Team,
			Discharger:    it.Discharger,
			QuantityEA:    it.QuantityEA,
			AmountKG:      it.AmountKG,
		})
	}
	n, err := s.LiquidWaste().BulkInsert(lines)
	if err != nil {
		return err
	}
	logrus.WithField("count", n).Info("liquid waste seeded")
	return nil
}

// loadSeedFile reads one backup file; a missing file is not an error, there
// is simply nothing to seed from.
func (s *Service) loadSeedFile(name string, dst any) (bool, error) {
	path := filepath.Join(s.Config.SeedDir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}
