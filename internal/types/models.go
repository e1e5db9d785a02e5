package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed column positions of the RMS offline sheet (zero-based).
const (
	ColRegion = 3  // D
	ColAging  = 8  // I
	ColReason = 10 // K
	ColDomain = 11 // L
)

// Row is one spreadsheet record. Cells hold a string, a float64, a bool or
// nil.
type Row []any

// Grid is a whole sheet; Grid[0] is the header row.
type Grid []Row

// Text returns the trimmed text of cell i, or "" when the cell is absent.
func (r Row) Text(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return CellText(r[i])
}

// CellText converts a cell value to trimmed text. Numbers are printed
// without trailing zeros so 6 reads "6".
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// DataRows returns the number of rows after the header.
func (g Grid) DataRows() int {
	if len(g) == 0 {
		return 0
	}
	return len(g) - 1
}

// DomainCategory is the classification of a row by its column L text.
type DomainCategory string

const (
	DomainEnfra DomainCategory = "enfra"
	DomainSmsLd DomainCategory = "smsLd"
	DomainOther DomainCategory = "others"
	DomainEmpty DomainCategory = "empty"
)

// AnalysisSummary holds the domain totals. Total is the data-row count and
// is not derived from the four buckets: a malformed row lands in both
// Total and Empty.
type AnalysisSummary struct {
	Enfra  int `json:"enfra"`
	SmsLd  int `json:"smsLd"`
	Others int `json:"others"`
	Empty  int `json:"empty"`
	Total  int `json:"total"`
}

// Offline is the "Total RMS Offline" figure shown on the dashboard.
func (s AnalysisSummary) Offline() int {
	return s.Enfra + s.SmsLd
}

// Classified is the sum of the four category buckets.
func (s AnalysisSummary) Classified() int {
	return s.Enfra + s.SmsLd + s.Others + s.Empty
}
