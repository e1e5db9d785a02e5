package aggregator

import (
	"fmt"

	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/types"
)

// recoverTo turns a panic inside an aggregator pass into a log line and
// lets reset put the aggregator back to its identity value.
func recoverTo(name string, reset func()) {
	if r := recover(); r != nil {
		logger.Component("aggregator").
			WithField("aggregator", name).
			WithError(panicError(r)).
			Error("aggregation failed, result reset")
		reset()
	}
}

// panicError formats a recovered value. A value that panics again while
// printing is reported by type only.
func panicError(r any) (err error) {
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("panic of type %T", r)
		}
	}()
	return fmt.Errorf("%v", r)
}

// Summarize counts rows per domain category. Malformed rows count as empty.
// Total is the data-row count of grid.
func Summarize(grid types.Grid) (s types.AnalysisSummary) {
	defer recoverTo("summary", func() { s = types.AnalysisSummary{} })

	for _, cr := range types.Validate(grid) {
		switch r := cr.(type) {
		case types.MalformedRow:
			s.Empty++
		case types.ValidRow:
			switch Classify(r.Cells) {
			case types.DomainEnfra:
				s.Enfra++
			case types.DomainSmsLd:
				s.SmsLd++
			case types.DomainOther:
				s.Others++
			default:
				s.Empty++
			}
		}
	}
	s.Total = grid.DataRows()
	return s
}

// Aging builds the aging-bucket histogram per domain category. Rows shorter
// than 12 positions, or with an empty aging or column L text, are skipped.
func Aging(grid types.Grid) (h types.AgingHistogram) {
	defer recoverTo("aging", func() { h = types.NewAgingHistogram() })

	h = types.NewAgingHistogram()
	for _, cr := range types.Validate(grid) {
		r, ok := cr.(types.ValidRow)
		if !ok || !r.Has(types.ColDomain+1) {
			continue
		}
		aging := r.Cells.Text(types.ColAging)
		domain := r.Cells.Text(types.ColDomain)
		if aging == "" || domain == "" {
			continue
		}
		h[ClassifyText(domain)].Add(aging)
	}
	return h
}

// Reasons builds the reason-code histogram. It ignores domain entirely.
func Reasons(grid types.Grid) (h *types.Histogram) {
	defer recoverTo("reasons", func() { h = types.NewHistogram() })

	h = types.NewHistogram()
	for _, cr := range types.Validate(grid) {
		r, ok := cr.(types.ValidRow)
		if !ok || !r.Has(types.ColReason+1) {
			continue
		}
		if reason := r.Cells.Text(types.ColReason); reason != "" {
			h.Add(reason)
		}
	}
	return h
}
