package types

import "encoding/json"

// LabelCount is one histogram entry.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Histogram counts occurrences of labels and remembers the order in which
// labels were first seen, which is what tie-breaking sorts rely on.
type Histogram struct {
	counts map[string]int
	order  []string
}

func NewHistogram() *Histogram {
	return &Histogram{counts: map[string]int{}}
}

// Add increments label, creating it at 1 when absent.
func (h *Histogram) Add(label string) {
	if _, ok := h.counts[label]; !ok {
		h.order = append(h.order, label)
	}
	h.counts[label]++
}

func (h *Histogram) Count(label string) int {
	if h == nil {
		return 0
	}
	return h.counts[label]
}

func (h *Histogram) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// Entries returns every label with its count in first-seen order.
func (h *Histogram) Entries() []LabelCount {
	if h == nil {
		return nil
	}
	out := make([]LabelCount, 0, len(h.order))
	for _, l := range h.order {
		out = append(out, LabelCount{Label: l, Count: h.counts[l]})
	}
	return out
}

// Map returns a copy of the counts.
func (h *Histogram) Map() map[string]int {
	out := map[string]int{}
	if h == nil {
		return out
	}
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// MarshalJSON emits the plain label -> count object.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Map())
}

// AgingHistogram maps Enfra, SmsLd and Other to their aging-bucket counts.
type AgingHistogram map[DomainCategory]*Histogram

// NewAgingHistogram returns the identity value: three empty histograms.
func NewAgingHistogram() AgingHistogram {
	return AgingHistogram{
		DomainEnfra: NewHistogram(),
		DomainSmsLd: NewHistogram(),
		DomainOther: NewHistogram(),
	}
}
