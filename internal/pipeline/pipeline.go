// internal/pipeline/pipeline.go
package pipeline

import (
	"time"

	"rms-dashboard-go/internal/aggregator"
	"rms-dashboard-go/internal/dataset"
	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/types"
)

// Analyze scopes grid to region and runs the three aggregators in order:
// summary, aging, reasons. It never fails; an aggregator that breaks
// contributes its empty value.
func Analyze(grid types.Grid, region string) types.AnalysisResult {
	start := time.Now()
	scoped := dataset.FilterByRegion(grid, region)

	res := types.AnalysisResult{
		Region:  region,
		Summary: aggregator.Summarize(scoped),
		Aging:   aggregator.Aging(scoped),
		Reasons: aggregator.Reasons(scoped),
	}

	logger.Component("pipeline").WithFields(map[string]interface{}{
		"region":      region,
		"total":       res.Summary.Total,
		"enfra":       res.Summary.Enfra,
		"sms_ld":      res.Summary.SmsLd,
		"reasons":     res.Reasons.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("analysis complete")
	return res
}

// LoadAndAnalyze parses a spreadsheet payload and analyzes it. The parsed
// grid is returned alongside so callers can keep the raw snapshot.
func LoadAndAnalyze(name string, data []byte, region string) (types.AnalysisResult, types.Grid, error) {
	grid, err := dataset.Read(name, data)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}
	res := Analyze(grid, region)
	res.Source = name
	return res, grid, nil
}
