package tabular

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wastetrack/storage"
)

// Fixed column layout of the intake sheet (A..H).
const (
	lwColDischargeDate = 0
	lwColReceiveDate   = 1
	lwColWasteType     = 2
	lwColContent       = 3
	lwColTeam          = 4
	lwColDischarger    = 5
	lwColQuantity      = 6
	lwColAmountKG      = 7
)

// ParseLiquidWorkbook extracts the monthly intake lines from a team
// liquid-waste workbook. The target sheet is the one whose name contains
// 입고리스트; its "YY.M" prefix carries the year-month (e.g. "26.1 팀별 액상폐기물
// 입고리스트" → "2026-01"). The header row is located by the 배출일 label, and
// stock (재고) rows and rows without a team are skipped.
func ParseLiquidWorkbook(content []byte) (string, []storage.LiquidLine, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, yearMonth := findIntakeSheet(f)
	if sheet == "" {
		return "", nil, fmt.Errorf("no 입고리스트 sheet found")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, err
	}

	headerRow := -1
	for r := 0; r < len(rows) && r < 10; r++ {
		for c := 0; c < len(rows[r]) && c < 10; c++ {
			if strings.Contains(rows[r][c], "배출일") {
				headerRow = r
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return "", nil, fmt.Errorf("header row (배출일) not found in sheet %q", sheet)
	}

	var lines []storage.LiquidLine
	for _, cells := range rows[headerRow+1:] {
		team := strings.TrimSpace(cellAt(cells, lwColTeam))
		if team == "" {
			continue
		}
		if strings.Contains(cellAt(cells, lwColAmountKG), "재고") {
			continue
		}

		lines = append(lines, storage.LiquidLine{
			YearMonth:     yearMonth,
			DischargeDate: normalizeDate(cellAt(cells, lwColDischargeDate)),
			ReceiveDate:   normalizeDate(cellAt(cells, lwColReceiveDate)),
			WasteType:     strings.TrimSpace(cellAt(cells, lwColWasteType)),
			Content:       strings.TrimSpace(cellAt(cells, lwColContent)),
			Team:          team,
			Discharger:    strings.TrimSpace(cellAt(cells, lwColDischarger)),
			QuantityEA:    parseInt(cellAt(cells, lwColQuantity)),
			AmountKG:      parseFloat(cellAt(cells, lwColAmountKG)),
		})
	}
	if len(lines) == 0 {
		return "", nil, fmt.Errorf("no intake rows parsed from sheet %q", sheet)
	}
	return yearMonth, lines, nil
}

// findIntakeSheet returns the first sheet whose name contains 입고리스트
// together with the year-month decoded from its "YY.M" prefix.
func findIntakeSheet(f *excelize.File) (string, string) {
	for _, name := range f.GetSheetList() {
		if !strings.Contains(name, "입고리스트") {
			continue
		}
		parts := strings.Fields(name)
		if len(parts) == 0 {
			continue
		}
		ym := strings.SplitN(parts[0], ".", 2)
		if len(ym) != 2 {
			continue
		}
		y, errY := strconv.Atoi(ym[0])
		m, errM := strconv.Atoi(ym[1])
		if errY != nil || errM != nil {
			continue
		}
		if y < 100 {
			y += 2000
		}
		return name, fmt.Sprintf("%d-%02d", y, m)
	}
	return "", ""
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/06",
	"1/2/06 15:04",
	"01-02-06",
	"1-2-06",
}

// normalizeDate maps the display formats excelize yields for date cells onto
// ISO text; unrecognized values are kept verbatim.
func normalizeDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func parseInt(v string) int {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if fv, err := strconv.ParseFloat(v, 64); err == nil {
		return int(fv)
	}
	return 0
}

func parseFloat(v string) float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	fv, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return fv
}
