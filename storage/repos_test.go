package storage_test

import (
	"errors"
	"fmt"
	"testing"

	"wastetrack/storage"
)

var testDBSeq int

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	testDBSeq++
	db, err := storage.Open(storage.Config{
		Path: fmt.Sprintf("file:repos_test_%d?mode=memory&cache=shared", testDBSeq),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecords_CreateRejectsDuplicateSlip(t *testing.T) {
	db := openTestDB(t)
	repo := db.Records()

	id, err := repo.Create(storage.Record{SlipNo: "S-001", Date: "2026-01-10", Amount: 1.5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected generated id")
	}

	_, err = repo.Create(storage.Record{SlipNo: "S-001", Date: "2026-01-11"})
	if !errors.Is(err, storage.ErrDuplicateSlip) {
		t.Fatalf("expected ErrDuplicateSlip, got %v", err)
	}

	rows, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["date"] != "2026-01-10" {
		t.Fatalf("existing row overwritten: %v", rows[0])
	}
}

func TestRecords_UpdateAndStatus(t *testing.T) {
	db := openTestDB(t)
	repo := db.Records()

	id, err := repo.Create(storage.Record{SlipNo: "S-002", Date: "2026-01-10", Status: "pending"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateStatus(id, "completed"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.UpdateStatus(id+999, "completed"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Update(id, storage.Record{SlipNo: "S-002", Date: "2026-01-12", Amount: 3, Status: "completed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ := repo.List()
	if rows[0]["date"] != "2026-01-12" {
		t.Fatalf("update not applied: %v", rows[0])
	}

	if err := repo.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRecords_UpsertSeedUpdatesOnConflict(t *testing.T) {
	db := openTestDB(t)
	repo := db.Records()

	if _, err := repo.Create(storage.Record{SlipNo: "S-003", Date: "", Amount: 0}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpsertSeed(storage.Record{SlipNo: "S-003", Date: "2026-02-01", Amount: 2.5, WasteType: "폐유"}, "2026-02-01 09:00:00"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert duplicated the slip: %d rows", len(rows))
	}
	if rows[0]["date"] != "2026-02-01" {
		t.Fatalf("conflict update not applied: %v", rows[0])
	}
}

func TestRecords_Master(t *testing.T) {
	db := openTestDB(t)
	repo := db.Records()

	for i, rec := range []storage.Record{
		{SlipNo: "M-1", WasteType: "폐유", Processor: "B처리", VehicleNo: "12가3456"},
		{SlipNo: "M-2", WasteType: "폐산", Processor: "A처리", VehicleNo: "12가3456"},
		{SlipNo: "M-3", WasteType: "폐유", Processor: "A처리"},
	} {
		if _, err := repo.Create(rec); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	m, err := repo.Master()
	if err != nil {
		t.Fatalf("master: %v", err)
	}
	if len(m.WasteTypes) != 2 || m.WasteTypes[0] != "폐산" {
		t.Fatalf("waste types not distinct/sorted: %v", m.WasteTypes)
	}
	if len(m.Processors) != 2 || m.Processors[0] != "A처리" {
		t.Fatalf("processors not distinct/sorted: %v", m.Processors)
	}
	if len(m.Vehicles) != 1 {
		t.Fatalf("empty vehicle not excluded: %v", m.Vehicles)
	}
}

func TestLiquidWaste_ReplaceMonthLeavesOtherMonths(t *testing.T) {
	db := openTestDB(t)
	repo := db.LiquidWaste()

	_, err := repo.BulkInsert([]storage.LiquidLine{
		{YearMonth: "2026-01", Team: "1팀", AmountKG: 10},
		{YearMonth: "2026-01", Team: "2팀", AmountKG: 20},
		{YearMonth: "2026-02", Team: "1팀", AmountKG: 30},
	})
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}

	err = repo.ReplaceMonth("2026-01", []storage.LiquidLine{
		{Team: "3팀", AmountKG: 99},
	})
	if err != nil {
		t.Fatalf("replace month: %v", err)
	}

	jan, err := repo.List("2026")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var janCount, febCount int
	for _, row := range jan {
		switch row["year_month"] {
		case "2026-01":
			janCount++
			if row["team"] != "3팀" {
				t.Fatalf("stale January line survived: %v", row)
			}
		case "2026-02":
			febCount++
		}
	}
	if janCount != 1 || febCount != 1 {
		t.Fatalf("expected 1 Jan + 1 Feb line, got %d/%d", janCount, febCount)
	}

	deleted, err := repo.DeleteMonth("2026-02")
	if err != nil || deleted != 1 {
		t.Fatalf("delete month: deleted=%d err=%v", deleted, err)
	}
}

func TestSchedules_CRUD(t *testing.T) {
	db := openTestDB(t)
	repo := db.Schedules()

	id, err := repo.Create(storage.Schedule{Date: "2026-03-01", Content: "정기 수거"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := repo.List()
	if err != nil || len(rows) != 1 {
		t.Fatalf("list: rows=%d err=%v", len(rows), err)
	}
	if rows[0]["status"] != "pending" {
		t.Fatalf("default status not applied: %v", rows[0])
	}

	if err := repo.Update(id, storage.Schedule{Date: "2026-03-02", Content: "정기 수거", Status: "completed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrate_RerunIsNoop(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
