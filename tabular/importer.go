package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wastetrack/storage"
)

const maxErrorSamples = 3

// Outcome summarizes one import call. It is always produced, even when most
// rows failed; only total inability to read the file or reach the store
// surfaces as an error instead.
type Outcome struct {
	BatchID      string   `json:"batch_id"`
	Added        int      `json:"added"`
	Skipped      int      `json:"skipped"`
	Columns      []string `json:"columns"`
	ErrorSamples []string `json:"error_samples,omitempty"`
}

// importRows merges a rectangular table into the records store. One
// transaction spans the batch; each row runs inside the dialect's row
// boundary so a duplicate slip or a malformed cell skips that row only.
func importRows(db *storage.DB, headers []string, rows [][]string) (*Outcome, error) {
	out := &Outcome{BatchID: uuid.New().String()}
	for _, h := range headers {
		out.Columns = append(out.Columns, normalizeHeader(h))
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	records := db.Records()
	log := logrus.WithField("batch", out.BatchID)

	for idx, cells := range rows {
		row := make(map[string]string, len(out.Columns))
		for i, h := range out.Columns {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}

		rec, err := buildRecord(row)
		if err != nil {
			out.Skipped++
			if err == errBlankKey {
				continue
			}
			if len(out.ErrorSamples) < maxErrorSamples {
				sample := fmt.Sprintf("row %d: %v", idx, err)
				out.ErrorSamples = append(out.ErrorSamples, sample)
				log.WithField("row", idx).Warn(err)
			}
			continue
		}

		err = tx.RowScope(func() error {
			return records.InsertTx(tx, rec)
		})
		switch {
		case err == nil:
			out.Added++
		case db.IsDuplicate(err):
			out.Skipped++
		default:
			out.Skipped++
			if len(out.ErrorSamples) < maxErrorSamples {
				sample := fmt.Sprintf("row %d: %v", idx, err)
				out.ErrorSamples = append(out.ErrorSamples, sample)
				log.WithField("row", idx).Warn(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"added":   out.Added,
		"skipped": out.Skipped,
	}).Info("import finished")
	return out, nil
}

var errBlankKey = fmt.Errorf("blank slip number")

// buildRecord resolves one row into a Record through the alias lists.
func buildRecord(row map[string]string) (storage.Record, error) {
	var rec storage.Record

	rec.SlipNo = strings.TrimSpace(resolve(row, "slip_no", ""))
	if blankKey(rec.SlipNo) {
		return rec, errBlankKey
	}

	rec.Processor = strings.TrimSpace(resolve(row, "processor", ""))

	rec.Category = resolve(row, "category", "")
	if rec.Category == "" || strings.EqualFold(rec.Category, "nan") {
		rec.Category = inferCategory(rec.Processor)
	}

	amount, err := parseAmount(resolve(row, "amount", "0"))
	if err != nil {
		return rec, fmt.Errorf("amount: %w", err)
	}
	rec.Amount = amount

	rec.Date = resolve(row, "date", "")
	rec.WasteType = resolve(row, "waste_type", "")
	rec.Carrier = resolve(row, "carrier", "")
	rec.VehicleNo = resolve(row, "vehicle_no", "")
	rec.Note1 = resolve(row, "note1", "")
	rec.Note2 = resolve(row, "note2", "")
	rec.Supplier = resolve(row, "supplier", "")
	rec.Status = resolve(row, "status", "completed")
	return rec, nil
}

func parseAmount(v string) (float64, error) {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
