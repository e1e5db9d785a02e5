package dataset

import (
	"rms-dashboard-go/internal/aggregator"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/types"
)

// Select returns the header plus the rows a table-view query asks for.
// The region filter runs first when the query names a region.
func Select(grid types.Grid, q navigation.Query) types.Grid {
	if len(grid) == 0 {
		return grid
	}
	scoped := FilterByRegion(grid, q.Region)
	out := types.Grid{scoped[0]}
	for _, cr := range types.Validate(scoped) {
		r, ok := cr.(types.ValidRow)
		if !ok {
			continue
		}
		if matches(r.Cells, q) {
			out = append(out, r.Cells)
		}
	}
	return out
}

func matches(row types.Row, q navigation.Query) bool {
	switch q.Type {
	case navigation.OriginCard, navigation.OriginRegion:
		return domainMatches(row, q.Domain)
	case navigation.OriginAging:
		return row.Text(types.ColAging) == q.Aging && domainMatches(row, q.Domain)
	case navigation.OriginReason:
		return row.Text(types.ColReason) == q.Reason
	}
	return false
}

func domainMatches(row types.Row, d navigation.DomainKey) bool {
	c := aggregator.Classify(row)
	switch d {
	case navigation.DomainEnfra:
		return c == types.DomainEnfra
	case navigation.DomainSmsLd:
		return c == types.DomainSmsLd
	case navigation.DomainAll:
		return c == types.DomainEnfra || c == types.DomainSmsLd
	case navigation.DomainTotal:
		return true
	}
	return false
}
