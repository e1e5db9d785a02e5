package actionable

import (
	"math"

	"rms-dashboard-go/internal/aggregator"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/types"
)

// Chart ids. The HTTP layer serves /api/charts/<id>.png.
const (
	ChartDomainPie  = "pie"
	ChartEnfraAging = "enfra-aging"
	ChartSmsLdAging = "smsld-aging"
	ChartReasons    = "reasons"
)

// ChartIDs lists every chart in display order.
var ChartIDs = []string{ChartDomainPie, ChartEnfraAging, ChartSmsLdAging, ChartReasons}

// Generate turns an analysis into the dashboard page model.
func Generate(res types.AnalysisResult) types.DashboardView {
	b := navigation.NewBuilder(res.Region)
	return types.DashboardView{
		Analysis: res,
		Cards:    Cards(res, b),
		Charts:   Charts(res, b),
	}
}

// Cards returns the four stat cards above the charts.
func Cards(res types.AnalysisResult, b navigation.Builder) []types.StatCard {
	offline, total := "Total RMS Offline", "Total Sites"
	if res.Region != "" {
		offline += " (" + res.Region + ")"
		total += " (" + res.Region + ")"
	}
	s := res.Summary
	return []types.StatCard{
		{Key: string(navigation.DomainEnfra), Label: "Total Offline on Enfra Domain", Value: s.Enfra, URL: b.URL(b.Card(navigation.DomainEnfra))},
		{Key: string(navigation.DomainSmsLd), Label: "Total Offline on SMS LD Domain", Value: s.SmsLd, URL: b.URL(b.Card(navigation.DomainSmsLd))},
		{Key: string(navigation.DomainAll), Label: offline, Value: s.Offline(), URL: b.URL(b.Card(navigation.DomainAll))},
		{Key: string(navigation.DomainTotal), Label: total, Value: s.Total, URL: b.URL(b.Card(navigation.DomainTotal))},
	}
}

// RegionCards returns the Enfra and SMS LD cards one region contributes to
// the whole-network page. Their URLs carry the region in the query itself.
func RegionCards(region string, s types.AnalysisSummary) []types.StatCard {
	b := navigation.NewBuilder("")
	return []types.StatCard{
		{Key: string(navigation.DomainEnfra), Label: region + " Enfra", Value: s.Enfra, URL: b.URL(b.RegionCard(region, navigation.DomainEnfra))},
		{Key: string(navigation.DomainSmsLd), Label: region + " SMS LD", Value: s.SmsLd, URL: b.URL(b.RegionCard(region, navigation.DomainSmsLd))},
	}
}

// Charts returns the pie and the three bar charts. Every point carries the
// table-view URL its click opens.
func Charts(res types.AnalysisResult, b navigation.Builder) []types.ChartModel {
	return []types.ChartModel{
		domainPie(res.Summary, b),
		agingBar(ChartEnfraAging, "Enfra Aging", res.Aging[types.DomainEnfra], navigation.DomainEnfra, b),
		agingBar(ChartSmsLdAging, "SMS LD Aging", res.Aging[types.DomainSmsLd], navigation.DomainSmsLd, b),
		reasonBar(res.Reasons, b),
	}
}

func domainPie(s types.AnalysisSummary, b navigation.Builder) types.ChartModel {
	sum := s.Offline()
	return types.ChartModel{
		ID:    ChartDomainPie,
		Title: "Offline by Domain",
		Kind:  types.ChartPie,
		Points: []types.ChartPoint{
			{Label: "Enfra", Value: s.Enfra, Percent: Percent(s.Enfra, sum), URL: b.URL(b.Card(navigation.DomainEnfra))},
			{Label: "SMS LD", Value: s.SmsLd, Percent: Percent(s.SmsLd, sum), URL: b.URL(b.Card(navigation.DomainSmsLd))},
		},
	}
}

func agingBar(id, title string, h *types.Histogram, d navigation.DomainKey, b navigation.Builder) types.ChartModel {
	entries := aggregator.OrderedAging(h)
	points := make([]types.ChartPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, types.ChartPoint{Label: e.Label, Value: e.Count, URL: b.URL(b.Aging(e.Label, d))})
	}
	return types.ChartModel{ID: id, Title: title, Kind: types.ChartBar, Points: points}
}

func reasonBar(h *types.Histogram, b navigation.Builder) types.ChartModel {
	entries := aggregator.OrderedReasons(h)
	points := make([]types.ChartPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, types.ChartPoint{Label: e.Label, Value: e.Count, URL: b.URL(b.Reason(e.Label))})
	}
	return types.ChartModel{ID: ChartReasons, Title: "Offline Reasons", Kind: types.ChartBar, Points: points}
}

// Percent is value's share of total rounded to one decimal; 0 when total is 0.
func Percent(value, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(value)/float64(total)*1000) / 10
}
