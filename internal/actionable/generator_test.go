package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rms-dashboard-go/internal/types"
)

func sampleResult(region string) types.AnalysisResult {
	aging := types.NewAgingHistogram()
	aging[types.DomainEnfra].Add(">100 Days")
	aging[types.DomainEnfra].Add("6-15 Days")
	aging[types.DomainEnfra].Add("6-15 Days")
	aging[types.DomainSmsLd].Add("1-05 Days")

	reasons := types.NewHistogram()
	reasons.Add("Theft")
	reasons.Add("Power Failure")
	reasons.Add("Power Failure")

	return types.AnalysisResult{
		Region:  region,
		Summary: types.AnalysisSummary{Enfra: 3, SmsLd: 1, Others: 2, Empty: 1, Total: 7},
		Aging:   aging,
		Reasons: reasons,
	}
}

func TestCardsRegional(t *testing.T) {
	v := Generate(sampleResult("Larkana"))
	require.Len(t, v.Cards, 4)

	assert.Equal(t, "table_view.html?type=card&domain=enfra&region=Larkana", v.Cards[0].URL)
	assert.Equal(t, 3, v.Cards[0].Value)
	assert.Equal(t, 1, v.Cards[1].Value)
	assert.Equal(t, 4, v.Cards[2].Value)
	assert.Equal(t, "Total RMS Offline (Larkana)", v.Cards[2].Label)
	assert.Equal(t, 7, v.Cards[3].Value)
	assert.Equal(t, "table_view.html?type=card&domain=total&region=Larkana", v.Cards[3].URL)
}

func TestCardsWholeNetwork(t *testing.T) {
	v := Generate(sampleResult(""))
	assert.Equal(t, "Total Sites", v.Cards[3].Label)
	assert.Equal(t, "table_view.html?type=card&domain=all", v.Cards[2].URL)
}

func TestPieClickWithRegion(t *testing.T) {
	v := Generate(sampleResult("Larkana"))
	pie, ok := v.Chart(ChartDomainPie)
	require.True(t, ok)
	assert.Equal(t, []string{"Enfra", "SMS LD"}, pie.Labels())
	assert.Equal(t, []float64{3, 1}, pie.Series())
	assert.Equal(t, 75.0, pie.Points[0].Percent)
	assert.Equal(t, 25.0, pie.Points[1].Percent)

	u, ok := pie.URLAt(0)
	require.True(t, ok)
	assert.Equal(t, "table_view.html?type=card&domain=enfra&region=Larkana", u)
	_, ok = pie.URLAt(2)
	assert.False(t, ok)
}

func TestAgingChartOrderedCanonically(t *testing.T) {
	v := Generate(sampleResult(""))
	c, ok := v.Chart(ChartEnfraAging)
	require.True(t, ok)
	assert.Equal(t, []string{"6-15 Days", ">100 Days"}, c.Labels())
	assert.Equal(t, "table_view.html?type=aging&aging=6-15%20Days&domain=enfra", c.Points[0].URL)

	sms, _ := v.Chart(ChartSmsLdAging)
	assert.Equal(t, "table_view.html?type=aging&aging=1-05%20Days&domain=smsld", sms.Points[0].URL)
}

func TestReasonChartDescending(t *testing.T) {
	v := Generate(sampleResult("Jacob Abad"))
	c, _ := v.Chart(ChartReasons)
	assert.Equal(t, []string{"Power Failure", "Theft"}, c.Labels())
	assert.Equal(t, "table_view.html?type=reason&reason=Power%20Failure&region=Jacob%20Abad", c.Points[0].URL)
}

func TestEmptyAnalysis(t *testing.T) {
	v := Generate(types.AnalysisResult{Aging: types.NewAgingHistogram(), Reasons: types.NewHistogram()})
	require.Len(t, v.Charts, len(ChartIDs))
	pie, _ := v.Chart(ChartDomainPie)
	assert.Zero(t, pie.Points[0].Percent)
	reasons, _ := v.Chart(ChartReasons)
	assert.Empty(t, reasons.Points)
}

func TestRegionCards(t *testing.T) {
	cards := RegionCards("Jacob Abad", types.AnalysisSummary{Enfra: 2, SmsLd: 5})
	require.Len(t, cards, 2)
	assert.Equal(t, "table_view.html?type=region&region=Jacob%20Abad&domain=enfra", cards[0].URL)
	assert.Equal(t, 5, cards[1].Value)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Zero(t, Percent(5, 0))
}
