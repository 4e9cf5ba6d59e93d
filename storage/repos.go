package storage

import (
	"errors"
	"sort"
)

var (
	ErrDuplicateSlip = errors.New("slip number already exists")
	ErrNotFound      = errors.New("row not found")
)

// RecordRepo persists waste-transfer records.
type RecordRepo interface {
	List() ([]map[string]any, error)
	Create(rec Record) (int64, error)
	InsertTx(tx *Tx, rec Record) error
	Update(id int64, rec Record) error
	UpdateStatus(id int64, status string) error
	Delete(id int64) error
	DeleteAll() error
	Master() (MasterData, error)
	UpsertSeed(rec Record, createdAt string) error
	Count() (int, error)
	CountNeedingFix() (int, error)
}

// ScheduleRepo persists calendar entries.
type ScheduleRepo interface {
	List() ([]map[string]any, error)
	Create(s Schedule) (int64, error)
	Update(id int64, s Schedule) error
	Delete(id int64) error
	BulkInsert(schedules []Schedule) (int, error)
}

// LiquidWasteRepo persists monthly per-team intake lines.
type LiquidWasteRepo interface {
	List(year string) ([]map[string]any, error)
	ReplaceMonth(yearMonth string, lines []LiquidLine) error
	DeleteMonth(yearMonth string) (int64, error)
	BulkInsert(lines []LiquidLine) (int, error)
}

func (d *DB) Records() RecordRepo { return &sqlRecordRepo{db: d} }

func (d *DB) Schedules() ScheduleRepo { return &sqlScheduleRepo{db: d} }

func (d *DB) LiquidWaste() LiquidWasteRepo { return &sqlLiquidWasteRepo{db: d} }

type sqlRecordRepo struct {
	db *DB
}

const insertRecordSQL = `INSERT INTO records (slip_no, date, waste_type, amount, carrier, vehicle_no, processor, note1, note2, category, supplier, status)
	VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`

func (r *sqlRecordRepo) List() ([]map[string]any, error) {
	rows, err := r.db.Query("SELECT * FROM records ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return Maps(rows)
}

func (r *sqlRecordRepo) Create(rec Record) (int64, error) {
	if rec.Status == "" {
		rec.Status = "completed"
	}
	id, err := r.db.InsertReturningID(`INSERT INTO records (slip_no, date, waste_type, amount, carrier, vehicle_no, processor, note1, note2, category, supplier, status, is_local)
	VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, 1)
	RETURNING id`,
		rec.SlipNo, rec.Date, rec.WasteType, rec.Amount, rec.Carrier,
		rec.VehicleNo, rec.Processor, rec.Note1, rec.Note2, rec.Category,
		rec.Supplier, rec.Status)
	if err != nil {
		if r.db.IsDuplicate(err) {
			return 0, ErrDuplicateSlip
		}
		return 0, err
	}
	return id, nil
}

// InsertTx is the import path: a plain insert inside the batch transaction,
// so a duplicate slip fails this row only.
func (r *sqlRecordRepo) InsertTx(tx *Tx, rec Record) error {
	_, err := tx.Exec(insertRecordSQL,
		rec.SlipNo, rec.Date, rec.WasteType, rec.Amount, rec.Carrier,
		rec.VehicleNo, rec.Processor, rec.Note1, rec.Note2, rec.Category,
		rec.Supplier, rec.Status)
	return err
}

func (r *sqlRecordRepo) Update(id int64, rec Record) error {
	res, err := r.db.Exec(`UPDATE records
	SET slip_no = %s, date = %s, waste_type = %s, amount = %s, carrier = %s,
		vehicle_no = %s, processor = %s, note1 = %s, note2 = %s, category = %s,
		supplier = %s, status = %s
	WHERE id = %s`,
		rec.SlipNo, rec.Date, rec.WasteType, rec.Amount, rec.Carrier,
		rec.VehicleNo, rec.Processor, rec.Note1, rec.Note2, rec.Category,
		rec.Supplier, rec.Status, id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected())
}

func (r *sqlRecordRepo) UpdateStatus(id int64, status string) error {
	res, err := r.db.Exec("UPDATE records SET status = %s WHERE id = %s", status, id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected())
}

func (r *sqlRecordRepo) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM records WHERE id = %s", id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected())
}

func (r *sqlRecordRepo) DeleteAll() error {
	_, err := r.db.Exec("DELETE FROM records")
	return err
}

func (r *sqlRecordRepo) Master() (MasterData, error) {
	var m MasterData
	for _, q := range []struct {
		column string
		dst    *[]string
	}{
		{"waste_type", &m.WasteTypes},
		{"processor", &m.Processors},
		{"vehicle_no", &m.Vehicles},
	} {
		rows, err := r.db.Query("SELECT DISTINCT " + q.column + " FROM records WHERE " + q.column + " IS NOT NULL AND " + q.column + " != ''")
		if err != nil {
			return m, err
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return m, err
			}
			*q.dst = append(*q.dst, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return m, err
		}
		rows.Close()
		sort.Strings(*q.dst)
	}
	return m, nil
}

// UpsertSeed is the reconciliation path and the one place allowed to update
// an existing slip on conflict. On SQLite the adapter degrades the
// column-level update to a full-row replace (see sqliteDialect).
func (r *sqlRecordRepo) UpsertSeed(rec Record, createdAt string) error {
	if rec.Status == "" {
		rec.Status = "completed"
	}
	_, err := r.db.Exec(`INSERT INTO records (slip_no, date, waste_type, amount, carrier, vehicle_no, processor, note1, note2, category, supplier, status, is_local, created_at)
	VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, 1, %s)
	ON CONFLICT (slip_no) DO UPDATE SET
		date = EXCLUDED.date,
		amount = EXCLUDED.amount,
		is_local = 1,
		waste_type = EXCLUDED.waste_type,
		processor = EXCLUDED.processor,
		vehicle_no = EXCLUDED.vehicle_no`,
		rec.SlipNo, rec.Date, rec.WasteType, rec.Amount, rec.Carrier,
		rec.VehicleNo, rec.Processor, rec.Note1, rec.Note2, rec.Category,
		rec.Supplier, rec.Status, createdAt)
	return err
}

func (r *sqlRecordRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}

// CountNeedingFix reports rows whose amount or date was lost by an earlier
// sync; a non-zero count triggers re-seeding.
func (r *sqlRecordRepo) CountNeedingFix() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM records WHERE amount = 0 OR date = '' OR date IS NULL").Scan(&n)
	return n, err
}

type sqlScheduleRepo struct {
	db *DB
}

func (r *sqlScheduleRepo) List() ([]map[string]any, error) {
	rows, err := r.db.Query("SELECT * FROM schedules ORDER BY date ASC, id ASC")
	if err != nil {
		return nil, err
	}
	return Maps(rows)
}

func (r *sqlScheduleRepo) Create(s Schedule) (int64, error) {
	if s.Status == "" {
		s.Status = "pending"
	}
	return r.db.InsertReturningID(
		"INSERT INTO schedules (date, content, status) VALUES (%s, %s, %s) RETURNING id",
		s.Date, s.Content, s.Status)
}

func (r *sqlScheduleRepo) Update(id int64, s Schedule) error {
	res, err := r.db.Exec(
		"UPDATE schedules SET date = %s, content = %s, status = %s WHERE id = %s",
		s.Date, s.Content, s.Status, id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected())
}

func (r *sqlScheduleRepo) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM schedules WHERE id = %s", id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected())
}

func (r *sqlScheduleRepo) BulkInsert(schedules []Schedule) (int, error) {
	count := 0
	for _, s := range schedules {
		if s.Status == "" {
			s.Status = "pending"
		}
		if _, err := r.db.Exec(
			"INSERT INTO schedules (date, content, status) VALUES (%s, %s, %s)",
			s.Date, s.Content, s.Status); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type sqlLiquidWasteRepo struct {
	db *DB
}

const insertLiquidSQL = `INSERT INTO liquid_waste
	(year_month, discharge_date, receive_date, waste_type, content, team, discharger, quantity_ea, amount_kg)
	VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)`

func (r *sqlLiquidWasteRepo) List(year string) ([]map[string]any, error) {
	if year != "" {
		res, err := r.db.Query(
			"SELECT * FROM liquid_waste WHERE year_month LIKE %s ORDER BY year_month, team, receive_date",
			year+"-%")
		if err != nil {
			return nil, err
		}
		return Maps(res)
	}
	res, err := r.db.Query("SELECT * FROM liquid_waste ORDER BY year_month, team, receive_date")
	if err != nil {
		return nil, err
	}
	return Maps(res)
}

// ReplaceMonth enforces at-most-one current version per month: the whole
// month is deleted and re-inserted in one transaction.
func (r *sqlLiquidWasteRepo) ReplaceMonth(yearMonth string, lines []LiquidLine) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM liquid_waste WHERE year_month = %s", yearMonth); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := tx.Exec(insertLiquidSQL,
			yearMonth, l.DischargeDate, l.ReceiveDate, l.WasteType, l.Content,
			l.Team, l.Discharger, l.QuantityEA, l.AmountKG); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *sqlLiquidWasteRepo) DeleteMonth(yearMonth string) (int64, error) {
	res, err := r.db.Exec("DELETE FROM liquid_waste WHERE year_month = %s", yearMonth)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sqlLiquidWasteRepo) BulkInsert(lines []LiquidLine) (int, error) {
	count := 0
	for _, l := range lines {
		if _, err := r.db.Exec(insertLiquidSQL,
			l.YearMonth, l.DischargeDate, l.ReceiveDate, l.WasteType, l.Content,
			l.Team, l.Discharger, l.QuantityEA, l.AmountKG); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func requireAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
