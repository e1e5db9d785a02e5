package types

import "time"

// --------------------------------------------
// Analysis of one snapshot, optionally scoped to a region
// --------------------------------------------
type AnalysisResult struct {
	Region     string          `json:"region,omitempty"`
	Summary    AnalysisSummary `json:"summary"`
	Aging      AgingHistogram  `json:"aging"`
	Reasons    *Histogram      `json:"reasons"`
	SnapshotID string          `json:"snapshot_id,omitempty"`
	Source     string          `json:"source,omitempty"`
	LoadedAt   time.Time       `json:"loaded_at,omitzero"`
}

// --------------------------------------------
// Stat card shown above the charts
// --------------------------------------------
type StatCard struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	URL   string `json:"url"`
}

// --------------------------------------------
// Chart input handed to a renderer
// --------------------------------------------
type ChartKind string

const (
	ChartPie ChartKind = "pie"
	ChartBar ChartKind = "bar"
)

type ChartPoint struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent,omitempty"`
	URL     string  `json:"url"`
}

type ChartModel struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Kind   ChartKind    `json:"kind"`
	Points []ChartPoint `json:"points"`
}

// Labels and Series split the points into the renderer's two inputs.
func (m ChartModel) Labels() []string {
	out := make([]string, len(m.Points))
	for i, p := range m.Points {
		out[i] = p.Label
	}
	return out
}

func (m ChartModel) Series() []float64 {
	out := make([]float64, len(m.Points))
	for i, p := range m.Points {
		out[i] = float64(p.Value)
	}
	return out
}

// URLAt maps a clicked category index back to its navigation URL.
func (m ChartModel) URLAt(i int) (string, bool) {
	if i < 0 || i >= len(m.Points) {
		return "", false
	}
	return m.Points[i].URL, true
}

// --------------------------------------------
// FINAL output delivered to the dashboard page
// --------------------------------------------
type DashboardView struct {
	Analysis AnalysisResult `json:"analysis"`
	Cards    []StatCard     `json:"cards"`
	Charts   []ChartModel   `json:"charts"`
}

// Chart returns the chart with the given id.
func (v DashboardView) Chart(id string) (ChartModel, bool) {
	for _, c := range v.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartModel{}, false
}
