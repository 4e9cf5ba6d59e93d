// Package tabular ingests and produces the spreadsheet/CSV files the waste
// records are exchanged through. Source files come from years of
// uncoordinated human authors, so column names, language, and order vary;
// the importer resolves fields through ordered alias lists and isolates bad
// rows instead of validating the whole sheet.
package tabular

import "strings"

// headerAliases maps each record field to the header spellings seen across
// source documents, in priority order. The first alias present in a row with
// a non-empty value wins.
var headerAliases = map[string][]string{
	"slip_no": {
		"slip_no", "전표번호", "인계번호", "인계번호(*)",
		"전자인계번호", "관리번호", "No", "no",
	},
	"date": {
		"date", "날짜", "처리일", "인계일자", "인계일자(*)", "일자",
	},
	"waste_type": {
		"waste_type", "폐기물종류", "폐기물명", "폐기물종류(성상)", "폐기물종류(성상)(*)", "품명",
	},
	"amount": {
		"amount", "중량", "처리량", "처리량(톤)", "위탁량", "위탁량(*)", "수량",
	},
	"carrier": {
		"carrier", "운반업체", "운반자명", "운반업체명", "운반자명(*)",
	},
	"vehicle_no": {
		"vehicle_no", "차량번호", "차량 번호",
	},
	"processor": {
		"processor", "처리업체", "처리자명", "처리업체명", "처리자명(*)",
	},
	"note1": {
		"note1", "비고1", "처리방법", "비고",
	},
	"note2": {
		"note2", "비고2",
	},
	"category": {
		"category", "분류", "폐기물분류", "비고",
	},
	"supplier": {
		"supplier", "공급업체", "장소",
	},
	"status": {
		"status",
	},
}

// categoryRules infer a classification from the processor name when the
// source sheet carries none. Evaluated in order, first match wins.
var categoryRules = []struct {
	substr   string
	category string
}{
	{"해동이앤티", "AO-Tar"},
	{"제일자원", "AO-TAR"},
	{"디에너지", "메탄올"},
}

// normalizeHeader compensates for headers that wrap visually onto two lines
// in the source spreadsheet.
func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\n", " ")
	h = strings.ReplaceAll(h, "\r", " ")
	for strings.Contains(h, "  ") {
		h = strings.ReplaceAll(h, "  ", " ")
	}
	return strings.TrimSpace(h)
}

// resolve returns the first non-empty value among the field's aliases, or
// def when no alias matches.
func resolve(row map[string]string, field, def string) string {
	for _, name := range headerAliases[field] {
		if v, ok := row[name]; ok {
			v = strings.TrimSpace(v)
			if v != "" {
				return v
			}
		}
	}
	return def
}

// inferCategory applies the substring rules against the processor name.
func inferCategory(processor string) string {
	for _, rule := range categoryRules {
		if strings.Contains(processor, rule.substr) {
			return rule.category
		}
	}
	return ""
}

// blankKey reports key values that mean "empty cell" rather than real data.
func blankKey(v string) bool {
	return v == "" || strings.EqualFold(v, "nan") || v == "None"
}
