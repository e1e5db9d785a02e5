package types

// CheckedRow is the result of validating one data row: either ValidRow or
// MalformedRow. Aggregators switch on the concrete type.
type CheckedRow interface {
	Position() int
}

// ValidRow is a data row that can be read cell by cell.
type ValidRow struct {
	Index int
	Cells Row
}

func (r ValidRow) Position() int { return r.Index }

// Has reports whether the row reaches at least n positions.
func (r ValidRow) Has(n int) bool { return len(r.Cells) >= n }

// MalformedRow is a data row that cannot be read at all.
type MalformedRow struct {
	Index  int
	Reason string
}

func (r MalformedRow) Position() int { return r.Index }

// Validate checks every data row of g. The header is skipped.
func Validate(g Grid) []CheckedRow {
	if len(g) <= 1 {
		return nil
	}
	out := make([]CheckedRow, 0, len(g)-1)
	for i := 1; i < len(g); i++ {
		row := g[i]
		if row == nil {
			out = append(out, MalformedRow{Index: i, Reason: "missing row"})
			continue
		}
		out = append(out, ValidRow{Index: i, Cells: row})
	}
	return out
}
