package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"wastetrack/storage"
)

// Import dispatches an upload to the right decoder by declared format.
func Import(db *storage.DB, content []byte, format string) (*Outcome, error) {
	switch format {
	case "spreadsheet":
		return ImportSpreadsheet(db, content)
	case "delimited-text":
		return ImportDelimited(db, content)
	default:
		return nil, fmt.Errorf("unknown import format: %q", format)
	}
}

// ImportSpreadsheet merges an uploaded workbook into the records store.
func ImportSpreadsheet(db *storage.DB, content []byte) (*Outcome, error) {
	headers, rows, err := decodeSpreadsheet(content)
	if err != nil {
		return nil, err
	}
	return importRows(db, headers, rows)
}

// decodeSpreadsheet tries two independent read strategies before giving up:
// a default open, then one with raw cell values, which sidesteps workbooks
// whose style metadata the default path chokes on. Both failures are
// reported together so the caller can see what was attempted.
func decodeSpreadsheet(content []byte) ([]string, [][]string, error) {
	strategies := []struct {
		name string
		opts excelize.Options
	}{
		{"default", excelize.Options{}},
		{"raw", excelize.Options{RawCellValue: true}},
	}

	var attempts []string
	for _, s := range strategies {
		headers, rows, err := readWorkbook(content, s.opts)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		return headers, rows, nil
	}
	return nil, nil, fmt.Errorf("spreadsheet could not be read: %s", strings.Join(attempts, " | "))
}

func readWorkbook(content []byte, opts excelize.Options) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content), opts)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	return rows[0], rows[1:], nil
}
