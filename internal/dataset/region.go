package dataset

import (
	"strings"

	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/types"
)

// regionSynonyms groups spellings that name the same region.
var regionSynonyms = [][]string{
	{"Jacob Abad", "Jacobabad"},
}

// RegionMatches reports whether a row's region cell value belongs to region.
func RegionMatches(value, region string) bool {
	value = strings.TrimSpace(value)
	if value == region {
		return true
	}
	for _, group := range regionSynonyms {
		if contains(group, region) && contains(group, value) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FilterByRegion returns the header plus every data row whose column D
// matches region. An empty region returns grid unchanged. Rows too short
// to carry a region never match.
func FilterByRegion(grid types.Grid, region string) types.Grid {
	if region == "" || len(grid) == 0 {
		return grid
	}
	out := types.Grid{grid[0]}
	for _, cr := range types.Validate(grid) {
		r, ok := cr.(types.ValidRow)
		if !ok || !r.Has(types.ColRegion+1) {
			continue
		}
		if RegionMatches(r.Cells.Text(types.ColRegion), region) {
			out = append(out, r.Cells)
		}
	}
	logger.Component("dataset.region").
		WithField("region", region).
		WithField("rows", len(out)-1).
		Debug("filtered data by region")
	return out
}
