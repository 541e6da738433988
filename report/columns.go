package report

import (
	"strings"
	"unicode"
)

type field int

const (
	fieldOutlet field = iota
	fieldURL
	fieldCategory
	fieldReach
	fieldDomainAuthority
	fieldPublished
	fieldCount
)

// exactAliases are compared against the whole normalized header
var exactAliases = map[field][]string{
	fieldOutlet:          {"outlet", "outletname", "mediaoutlet", "publication", "publicationname", "website", "websitename", "site", "sitename", "name", "media", "source"},
	fieldURL:             {"url", "link", "liveurl", "publishedurl", "articleurl", "permalink", "postlink"},
	fieldCategory:        {"category", "type", "industry", "niche", "genre"},
	fieldReach:           {"potentialreach", "reach", "audience", "potentialaudience", "monthlyvisitors", "visitors", "traffic", "uniquevisitors", "impressions"},
	fieldDomainAuthority: {"domainauthority", "da", "authority", "dr", "domainrating"},
	fieldPublished:       {"publishedat", "publisheddate", "datepublished", "date", "publicationdate"},
}

// containsKeywords are looked for inside a header when no exact alias matched.
// Fields are tried in this order so "Website URL" becomes a URL, not an outlet.
var containsKeywords = []struct {
	field    field
	keywords []string
}{
	{fieldURL, []string{"url", "link"}},
	{fieldReach, []string{"reach", "audience", "visitors", "traffic", "impressions"}},
	{fieldDomainAuthority, []string{"authority", "rating"}},
	{fieldPublished, []string{"date", "published"}},
	{fieldCategory, []string{"category", "industry", "niche"}},
	{fieldOutlet, []string{"outlet", "publication", "website", "site", "media", "name"}},
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchColumns maps each recognised field to a column index. Every column serves at most
// one field. Exact aliases are tried in list order, so "outlet" beats "name" wherever the
// columns sit; among equal headers the first column wins.
func matchColumns(headers []string) map[field]int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	columns := make(map[field]int)
	taken := make(map[int]bool)

	for f := field(0); f < fieldCount; f++ {
		if i, ok := firstColumn(normalized, taken, exactAliases[f]); ok {
			columns[f] = i
			taken[i] = true
		}
	}

	for _, entry := range containsKeywords {
		if _, done := columns[entry.field]; done {
			continue
		}
		for i, h := range normalized {
			if taken[i] || h == "" {
				continue
			}
			if containsAny(h, entry.keywords) {
				columns[entry.field] = i
				taken[i] = true
				break
			}
		}
	}
	return columns
}

func firstColumn(normalized []string, taken map[int]bool, aliases []string) (int, bool) {
	for _, alias := range aliases {
		for i, h := range normalized {
			if !taken[i] && h == alias {
				return i, true
			}
		}
	}
	return 0, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
