package navigation

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rms-dashboard-go/internal/types"
)

func TestCardWithRegion(t *testing.T) {
	b := NewBuilder("Larkana")
	assert.Equal(t, "type=card&domain=enfra&region=Larkana", b.Card(DomainEnfra))
}

func TestNoRegionOnNetworkView(t *testing.T) {
	b := NewBuilder("")
	assert.Equal(t, "type=card&domain=total", b.Card(DomainTotal))
	assert.Equal(t, "type=reason&reason=Power%20Failure", b.Reason("Power Failure"))
	assert.Equal(t, "type=aging&aging=%3E100%20Days&domain=smsld", b.Aging(">100 Days", DomainSmsLd))
}

func TestAgingAndReasonWithRegion(t *testing.T) {
	b := NewBuilder("Jacob Abad")
	assert.Equal(t, "type=aging&aging=6-15%20Days&domain=enfra&region=Jacob%20Abad", b.Aging("6-15 Days", DomainEnfra))
	assert.Equal(t, "type=reason&reason=A%26B%3DC&region=Jacob%20Abad", b.Reason("A&B=C"))
}

func TestEscapeKeepsMarks(t *testing.T) {
	assert.Equal(t, "No%20Power%20(Grid)!%20*x*%20'a'%20~%2B1", escape("No Power (Grid)! *x* 'a' ~+1"))
}

func TestRegionCardHasNoSuffix(t *testing.T) {
	b := NewBuilder("Sukkur")
	assert.Equal(t, "type=region&region=Larkana&domain=all", b.RegionCard("Larkana", DomainAll))
}

func TestURL(t *testing.T) {
	b := NewBuilder("")
	assert.Equal(t, "table_view.html?type=card&domain=all", b.URL(b.Card(DomainAll)))
	b.Page = "/table"
	assert.Equal(t, "/table?type=card&domain=all", b.URL(b.Card(DomainAll)))
}

func TestParseQueryRoundTrip(t *testing.T) {
	b := NewBuilder("Jacob Abad")
	for _, q := range []string{
		b.Card(DomainSmsLd),
		b.Aging("> 100 Days", DomainEnfra),
		b.Reason("Power & Battery"),
		b.RegionCard("Jacob Abad", DomainTotal),
	} {
		v, err := url.ParseQuery(q)
		require.NoError(t, err)
		parsed, err := ParseQuery(v)
		require.NoError(t, err, q)
		assert.Equal(t, q, parsed.Encode())
	}
}

func TestParseQueryDecodes(t *testing.T) {
	v, err := url.ParseQuery("type=aging&aging=%3E100%20Days&domain=enfra&region=Jacob%20Abad")
	require.NoError(t, err)
	q, err := ParseQuery(v)
	require.NoError(t, err)
	assert.Equal(t, Query{Type: OriginAging, Domain: DomainEnfra, Aging: ">100 Days", Region: "Jacob Abad"}, q)
}

func TestParseQueryRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"type=unknown",
		"type=card&domain=others",
		"type=aging&domain=enfra",
		"type=reason",
		"type=region&domain=all",
	} {
		v, _ := url.ParseQuery(raw)
		_, err := ParseQuery(v)
		assert.True(t, errors.Is(err, ErrInvalidQuery), raw)
	}
}

func TestDomainKeyFor(t *testing.T) {
	k, ok := DomainKeyFor(types.DomainEnfra)
	assert.True(t, ok)
	assert.Equal(t, DomainEnfra, k)
	k, ok = DomainKeyFor(types.DomainSmsLd)
	assert.True(t, ok)
	assert.Equal(t, DomainSmsLd, k)
	_, ok = DomainKeyFor(types.DomainOther)
	assert.False(t, ok)
}
