package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"wastetrack/storage"
)

// ImportDelimited merges an uploaded CSV into the records store. UTF-8 is
// tried first; files saved by Korean Excel installs arrive as CP949, so that
// is the fallback encoding.
func ImportDelimited(db *storage.DB, content []byte) (*Outcome, error) {
	headers, rows, err := decodeDelimited(content)
	if err != nil {
		return nil, err
	}
	return importRows(db, headers, rows)
}

func decodeDelimited(content []byte) ([]string, [][]string, error) {
	var attempts []string

	if utf8.Valid(content) {
		headers, rows, err := parseCSV(content)
		if err == nil {
			return headers, rows, nil
		}
		attempts = append(attempts, "utf-8: "+err.Error())
	} else {
		attempts = append(attempts, "utf-8: invalid byte sequence")
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(content)
	if err != nil {
		attempts = append(attempts, "cp949: "+err.Error())
	} else {
		headers, rows, err := parseCSV(decoded)
		if err == nil {
			return headers, rows, nil
		}
		attempts = append(attempts, "cp949: "+err.Error())
	}

	return nil, nil, fmt.Errorf("delimited text could not be read: %s", strings.Join(attempts, " | "))
}

func parseCSV(content []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no header row")
	}
	headers := rows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	return headers, rows[1:], nil
}
