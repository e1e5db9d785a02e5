package aggregator

import (
	"sort"

	"rms-dashboard-go/internal/types"
)

const unknownAgingRank = 999

// agingRank is the canonical order of aging buckets. Both spellings of
// each bucket share a rank.
var agingRank = map[string]int{
	"1 - 05 Days":   1,
	"1-05 Days":     1,
	"6 - 15 Days":   2,
	"6-15 Days":     2,
	"16 - 30 Days":  3,
	"16-30 Days":    3,
	"31 - 100 Days": 4,
	"31-100 Days":   4,
	"> 100 Days":    5,
	">100 Days":     5,
}

// AgingRank returns the sort rank of an aging label; unknown labels rank last.
func AgingRank(label string) int {
	if r, ok := agingRank[label]; ok {
		return r
	}
	return unknownAgingRank
}

// SortAging orders entries by canonical bucket rank, keeping input order
// among equal ranks.
func SortAging(entries []types.LabelCount) []types.LabelCount {
	out := append([]types.LabelCount(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return AgingRank(out[i].Label) < AgingRank(out[j].Label)
	})
	return out
}

// SortReasons orders entries by descending count, keeping input order
// among equal counts.
func SortReasons(entries []types.LabelCount) []types.LabelCount {
	out := append([]types.LabelCount(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// chartable drops entries a chart cannot show: blank labels and zero counts.
func chartable(entries []types.LabelCount) []types.LabelCount {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Label != "" && e.Count > 0 {
			out = append(out, e)
		}
	}
	return out
}

// OrderedAging returns the chart-ready aging buckets of one histogram.
func OrderedAging(h *types.Histogram) []types.LabelCount {
	return SortAging(chartable(h.Entries()))
}

// OrderedReasons returns the chart-ready reason codes.
func OrderedReasons(h *types.Histogram) []types.LabelCount {
	return SortReasons(chartable(h.Entries()))
}
