// Package navigation builds and parses the query strings that open the
// table view from a click on the dashboard.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"rms-dashboard-go/internal/types"
)

// DefaultPage is the table-view page every click-through lands on.
const DefaultPage = "table_view.html"

// Origin is what the user clicked.
type Origin string

const (
	OriginCard   Origin = "card"
	OriginRegion Origin = "region"
	OriginAging  Origin = "aging"
	OriginReason Origin = "reason"
)

// DomainKey is the domain parameter understood by the table view.
type DomainKey string

const (
	DomainEnfra DomainKey = "enfra"
	DomainSmsLd DomainKey = "smsld"
	DomainAll   DomainKey = "all"
	DomainTotal DomainKey = "total"
)

var ErrInvalidQuery = errors.New("invalid table view query")

// DomainKeyFor maps a classifier category to its table-view key. Other and
// Empty have no key of their own.
func DomainKeyFor(c types.DomainCategory) (DomainKey, bool) {
	switch c {
	case types.DomainEnfra:
		return DomainEnfra, true
	case types.DomainSmsLd:
		return DomainSmsLd, true
	}
	return "", false
}

// Builder produces click-through queries. Region is the page's active
// region; empty on the whole-network view.
type Builder struct {
	Region string
	Page   string
}

func NewBuilder(region string) Builder {
	return Builder{Region: strings.TrimSpace(region), Page: DefaultPage}
}

// Card is the query for a stat card or pie slice.
func (b Builder) Card(domain DomainKey) string {
	return b.withRegion("type=card&domain=" + escape(string(domain)))
}

// Aging is the query for one bar of a domain's aging chart.
func (b Builder) Aging(label string, domain DomainKey) string {
	return b.withRegion("type=aging&aging=" + escape(label) + "&domain=" + escape(string(domain)))
}

// Reason is the query for one bar of the reason chart.
func (b Builder) Reason(label string) string {
	return b.withRegion("type=reason&reason=" + escape(label))
}

// RegionCard is the query for a per-region card on the whole-network view.
// The region is part of the query itself, so no suffix is added.
func (b Builder) RegionCard(region string, domain DomainKey) string {
	return "type=region&region=" + escape(region) + "&domain=" + escape(string(domain))
}

// URL prefixes a query with the table-view page.
func (b Builder) URL(query string) string {
	page := b.Page
	if page == "" {
		page = DefaultPage
	}
	return page + "?" + query
}

func (b Builder) withRegion(q string) string {
	if b.Region == "" {
		return q
	}
	return q + "&region=" + escape(b.Region)
}

// marks stay literal in a URI component.
var marks = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// escape percent-encodes like encodeURIComponent.
func escape(s string) string {
	return marks.Replace(url.QueryEscape(s))
}

// Query is a decoded table-view request.
type Query struct {
	Type   Origin
	Domain DomainKey
	Aging  string
	Reason string
	Region string
}

// ParseQuery decodes the table-view parameters and checks that the ones
// each type needs are present.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Type:   Origin(strings.TrimSpace(v.Get("type"))),
		Domain: DomainKey(strings.TrimSpace(v.Get("domain"))),
		Aging:  strings.TrimSpace(v.Get("aging")),
		Reason: strings.TrimSpace(v.Get("reason")),
		Region: strings.TrimSpace(v.Get("region")),
	}
	switch q.Type {
	case OriginCard:
		if !validDomain(q.Domain) {
			return q, fmt.Errorf("%w: domain %q", ErrInvalidQuery, q.Domain)
		}
	case OriginRegion:
		if q.Region == "" || !validDomain(q.Domain) {
			return q, fmt.Errorf("%w: region view needs region and domain", ErrInvalidQuery)
		}
	case OriginAging:
		if q.Aging == "" || !validDomain(q.Domain) {
			return q, fmt.Errorf("%w: aging view needs aging and domain", ErrInvalidQuery)
		}
	case OriginReason:
		if q.Reason == "" {
			return q, fmt.Errorf("%w: reason view needs reason", ErrInvalidQuery)
		}
	default:
		return q, fmt.Errorf("%w: type %q", ErrInvalidQuery, q.Type)
	}
	return q, nil
}

func validDomain(d DomainKey) bool {
	switch d {
	case DomainEnfra, DomainSmsLd, DomainAll, DomainTotal:
		return true
	}
	return false
}

// Encode rebuilds the query string the way Builder would have produced it.
func (q Query) Encode() string {
	b := NewBuilder(q.Region)
	switch q.Type {
	case OriginCard:
		return b.Card(q.Domain)
	case OriginRegion:
		return b.RegionCard(q.Region, q.Domain)
	case OriginAging:
		return b.Aging(q.Aging, q.Domain)
	case OriginReason:
		return b.Reason(q.Reason)
	}
	return ""
}
