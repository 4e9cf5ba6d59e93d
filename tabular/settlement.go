package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SettlementItem is one line of the monthly cost-settlement report. The
// first column holds the processor for the processing and revenue sections
// and the carrier for the transport section.
type SettlementItem struct {
	Company   string  `json:"company"`
	WasteName string  `json:"wasteName"`
	Phase     string  `json:"phase"`
	ClassCode string  `json:"classCode"`
	Amount    float64 `json:"amount"`
	EA        int     `json:"ea"`
	UnitCost  float64 `json:"unitCost"`
	Cost      float64 `json:"cost"`
	Note      string  `json:"note"`
}

// CostSettlement is the three-section monthly report: processing cost,
// separate transport cost, and miscellaneous revenue, each closed by a
// subtotal of quantity and cost.
type CostSettlement struct {
	YearMonth  string           `json:"yearMonth"`
	Processing []SettlementItem `json:"processing"`
	Transport  []SettlementItem `json:"transport"`
	Revenue    []SettlementItem `json:"revenue"`
}

// ExportCostSettlement builds the settlement workbook. Sections carry the
// labels the monthly paperwork uses; decorative cell styling is left to the
// spreadsheet on the receiving side.
func ExportCostSettlement(data CostSettlement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "비용정산"
	f.SetSheetName("Sheet1", sheet)

	row := 1
	setRow(f, sheet, row, []any{settlementTitle(data.YearMonth)})
	row += 2

	row = writeSection(f, sheet, row, "폐기물 처리비용",
		[]string{"업체명", "폐기물명", "성상", "분류 번호", "처리량 (TON)", "단가(TON/원)", "처리비용 (공급가기준)", "비 고"},
		data.Processing, "처리비용 소계", false)
	row++

	row = writeSection(f, sheet, row, "폐기물 운반별도비용",
		[]string{"업체명", "폐기물명", "성상", "분류 번호", "처리량 (TON)", "단가(TON/원)", "운반비용 (공급가기준)", "비 고"},
		data.Transport, "운반별도비용 소계", false)
	row++

	writeSection(f, sheet, row, "폐기물 잡이익비용",
		[]string{"업체명", "폐기물명", "성상", "분류 번호", "EA", "단가(EA/원)", "매각비용 (공급가기준)", "비 고"},
		data.Revenue, "잡이익비용 소계", true)

	f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Orientation: strPtr("landscape"),
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSection emits a section header, its table header, the line items, and
// the subtotal row (sum of quantity and sum of cost). byEA switches the
// quantity column between tonnage and piece count.
func writeSection(f *excelize.File, sheet string, row int, title string, headers []string, items []SettlementItem, subtotalLabel string, byEA bool) int {
	setRow(f, sheet, row, []any{title})
	row++
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	setRow(f, sheet, row, hdr)
	row++

	var costTotal, amountTotal float64
	var eaTotal int
	for _, item := range items {
		qty := any(item.Amount)
		if byEA {
			qty = item.EA
			eaTotal += item.EA
		} else {
			amountTotal += item.Amount
		}
		costTotal += item.Cost
		setRow(f, sheet, row, []any{
			item.Company, item.WasteName, item.Phase, item.ClassCode,
			qty, item.UnitCost, item.Cost, item.Note,
		})
		row++
	}

	qtyTotal := any(amountTotal)
	if byEA {
		qtyTotal = eaTotal
	}
	setRow(f, sheet, row, []any{subtotalLabel, "", "", "", qtyTotal, "", costTotal, ""})
	return row + 1
}

func settlementTitle(yearMonth string) string {
	parts := strings.SplitN(yearMonth, "-", 2)
	if len(parts) == 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			return fmt.Sprintf("%s년 %d월 지정폐기물 처리비 및 잡이익", parts[0], m)
		}
	}
	return "지정폐기물 처리비 및 잡이익"
}

func setRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	f.SetSheetRow(sheet, cell, &values)
}

func strPtr(s string) *string { return &s }
