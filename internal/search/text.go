package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kamusis/acco/internal/directory"
)

// SearchableText is the text a free-text query is matched against: name,
// designation, location and the specializations, space separated.
func SearchableText(p directory.Profile) string {
	return strings.Join([]string{
		p.Name,
		p.Designation,
		p.Location,
		strings.Join(p.Specializations, " "),
	}, " ")
}

// Fold lower-cases s for case-insensitive comparison.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// MatchText reports whether query occurs, ignoring case, in the profile's
// searchable text. An empty query matches every profile.
func MatchText(p directory.Profile, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Fold(SearchableText(p)), Fold(query))
}

// TextMatcher caches the folded query for repeated MatchText calls over a
// collection.
type TextMatcher struct {
	folded string
}

// NewTextMatcher prepares query for matching.
func NewTextMatcher(query string) TextMatcher {
	return TextMatcher{folded: Fold(query)}
}

// Match reports whether p matches the prepared query.
func (m TextMatcher) Match(p directory.Profile) bool {
	if m.folded == "" {
		return true
	}
	return strings.Contains(Fold(SearchableText(p)), m.folded)
}

// TextSearch returns the profiles matching query, in their original order.
func TextSearch(profiles []directory.Profile, query string, limit int) []directory.Profile {
	m := NewTextMatcher(query)
	var out []directory.Profile
	for _, p := range profiles {
		if !m.Match(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
