package tabular

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"wastetrack/storage"
)

// exportColumns are the human-readable labels the export sheet carries, in
// the order operators expect them.
var exportColumns = []struct {
	field string
	label string
}{
	{"date", "처리일"},
	{"slip_no", "전표번호"},
	{"waste_type", "폐기물명"},
	{"amount", "처리량(톤)"},
	{"vehicle_no", "차량번호"},
	{"processor", "처리업체"},
	{"note1", "처리방법"},
	{"category", "비고"},
	{"supplier", "장소"},
}

// ExportRecords serializes every record, date descending, with Korean
// column labels. An empty supplier defaults to 공장.
func ExportRecords(db *storage.DB) ([]byte, error) {
	rows, err := db.Records().List()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "AllRecords"
	f.SetSheetName("Sheet1", sheet)

	for c, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		f.SetCellValue(sheet, cell, col.label)
	}
	for r, row := range rows {
		for c, col := range exportColumns {
			v := row[col.field]
			if col.field == "supplier" && isEmptyCell(v) {
				v = "공장"
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFiltered serializes caller-filtered row maps as-is. Column order is
// the sorted key set of the first row.
func ExportFiltered(rows []map[string]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "FilteredRecords"
	f.SetSheetName("Sheet1", sheet)

	if len(rows) == 0 {
		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	var cols []string
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	for c, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		f.SetCellValue(sheet, cell, col)
	}
	for r, row := range rows {
		for c, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, row[col])
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isEmptyCell(v any) bool {
	if v == nil {
		return true
	}
	return fmt.Sprint(v) == ""
}
