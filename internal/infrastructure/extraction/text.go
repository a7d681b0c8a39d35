// Package extraction implements the two variants of the entity extraction
// strategy: companies and people. Both variants share the same gate order
// (skip predicate, name cascade, attribute rules, additive confidence score,
// threshold) and differ only in their rule sets and scoring policy.
package extraction

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"github.com/kirillkom/lead-research-agent/internal/core/lookup"
)

// searchText is the case-folded title+snippet haystack the attribute rules
// run against.
func searchText(title, snippet string) string {
	return strings.ToLower(title + " " + snippet)
}

// detectTools returns canonical tags for every tool whose variation appears
// in text. Order follows the table, duplicates collapsed.
func detectTools(entries []lookup.ToolEntry, text string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if seen[entry.Tool] {
			continue
		}
		for _, variation := range entry.Variations {
			if strings.Contains(text, variation) {
				found = append(found, entry.Tool)
				seen[entry.Tool] = true
				break
			}
		}
	}
	return found
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// titleCaseSlug turns a URL path segment like "acme-labs" into "Acme Labs".
func titleCaseSlug(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// registrableLabel extracts the first label of the registrable domain of a
// result URL ("https://www.acme.co.uk/about" -> "acme"). It returns "" when
// the host is unusable or belongs to a directory site whose domain is not the
// entity's own.
func registrableLabel(rawURL string, excluded []string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		domain = host
	}
	label, _, _ := strings.Cut(domain, ".")
	if len(label) <= 2 {
		return ""
	}
	for _, ex := range excluded {
		if label == ex {
			return ""
		}
	}
	return label
}

// truncate cuts text at limit runes and marks the cut.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
