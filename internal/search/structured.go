package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kamusis/acco/internal/directory"
)

// MatchSelection reports whether p passes every criterion set in sel.
func MatchSelection(p directory.Profile, sel Selection) bool {
	if sel.Location != "" && p.Attrs.Location != sel.Location {
		return false
	}
	if sel.Expertise != "" && !p.HasExpertise(sel.Expertise) {
		return false
	}
	if sel.Experience != "" && p.Attrs.Experience != sel.Experience {
		return false
	}
	if sel.MinRating != nil && p.Rating < *sel.MinRating {
		return false
	}
	if sel.Price != "" && p.Attrs.Price != sel.Price {
		return false
	}
	return true
}

// Filter returns the profiles that pass sel, in their original order.
func Filter(profiles []directory.Profile, sel Selection) []directory.Profile {
	var out []directory.Profile
	for _, p := range profiles {
		if MatchSelection(p, sel) {
			out = append(out, p)
		}
	}
	return out
}

// Selection field names accepted by ParseSelection.
const (
	FieldLocation   = "location"
	FieldExpertise  = "expertise"
	FieldExperience = "experience"
	FieldRating     = "rating"
	FieldPrice      = "price"
)

// ParseSelection builds a Selection from field=value pairs. Empty values leave
// the field unset.
func ParseSelection(fields map[string]string) (Selection, error) {
	var sel Selection
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := strings.TrimSpace(fields[k])
		if v == "" {
			continue
		}
		switch strings.ToLower(k) {
		case FieldLocation:
			sel.Location = v
		case FieldExpertise:
			sel.Expertise = v
		case FieldExperience:
			sel.Experience = directory.ExperienceBracket(v)
		case FieldRating:
			r, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Selection{}, fmt.Errorf("invalid rating %q: %w", v, err)
			}
			sel.MinRating = &r
		case FieldPrice:
			sel.Price = directory.PriceBracket(v)
		default:
			return Selection{}, fmt.Errorf("unknown filter %q (want location, expertise, experience, rating or price)", k)
		}
	}
	return sel, nil
}

// ParsePairs splits "k=v" tokens into a map for ParseSelection.
func ParsePairs(tokens []string) (map[string]string, error) {
	out := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		i := strings.Index(tok, "=")
		if i <= 0 {
			return nil, fmt.Errorf("expected field=value, got %q", tok)
		}
		out[strings.TrimSpace(tok[:i])] = tok[i+1:]
	}
	return out, nil
}
