package aggregator

import (
	"strings"

	"rms-dashboard-go/internal/types"
)

// smsLdMarkers are the spellings of the SMS LD domain found in column L.
var smsLdMarkers = []string{"SMS LD", "SMS-LD", "SMSLD"}

// Classify returns the domain category of a row from its column L text.
// ENFRA is checked before the SMS LD markers; the first match wins.
func Classify(row types.Row) types.DomainCategory {
	return ClassifyText(row.Text(types.ColDomain))
}

// ClassifyText classifies a raw column L value.
func ClassifyText(s string) types.DomainCategory {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return types.DomainEmpty
	}
	if strings.Contains(v, "ENFRA") {
		return types.DomainEnfra
	}
	for _, m := range smsLdMarkers {
		if strings.Contains(v, m) {
			return types.DomainSmsLd
		}
	}
	return types.DomainOther
}
