package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rms-dashboard-go/internal/aggregator"
	"rms-dashboard-go/internal/types"
)

// renderReport prints the summary, the per-domain aging buckets and the
// reason codes as tables.
func renderReport(res types.AnalysisResult) string {
	var b strings.Builder

	title := "All regions"
	if res.Region != "" {
		title = "Region: " + res.Region
	}
	b.WriteString(title + "\n")

	s := res.Summary
	t := table.NewWriter()
	t.SetTitle("Domain totals")
	t.AppendHeader(table.Row{"Domain", "Sites"})
	t.AppendRows([]table.Row{
		{"Enfra", s.Enfra},
		{"SMS LD", s.SmsLd},
		{"Others", s.Others},
		{"Empty", s.Empty},
	})
	t.AppendFooter(table.Row{"Total", s.Total})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight}})
	t.SetStyle(table.StyleLight)
	b.WriteString(t.Render() + "\n")

	for _, d := range []struct {
		name string
		cat  types.DomainCategory
	}{
		{"Enfra aging", types.DomainEnfra},
		{"SMS LD aging", types.DomainSmsLd},
		{"Other aging", types.DomainOther},
	} {
		b.WriteString(histogramTable(d.name, "Aging", aggregator.OrderedAging(res.Aging[d.cat])) + "\n")
	}
	b.WriteString(histogramTable("Offline reasons", "Reason", aggregator.OrderedReasons(res.Reasons)))
	return b.String()
}

func histogramTable(title, label string, entries []types.LabelCount) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{label, "Sites"})
	total := 0
	for _, e := range entries {
		t.AppendRow(table.Row{e.Label, e.Count})
		total += e.Count
	}
	if len(entries) == 0 {
		t.AppendRow(table.Row{"(none)", 0})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d buckets", len(entries)), total})
	t.SetStyle(table.StyleLight)
	return t.Render()
}
